// Package migration upgrades records written by old clients. Old
// records reference categories by name instead of id; resolving them
// is a one-time upgrade path, kept out of the engines on purpose.
package migration

import (
	"github.com/finanzas/backend/internal/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/cases"
	"gorm.io/gorm"
)

// categoryRef is the resolved target of a legacy name reference.
type categoryRef struct {
	categoryID    uuid.UUID
	subcategoryID *uuid.UUID
}

// ResolveCategoryNames rewrites name-based category references on
// budgets and transactions to ids. Names are matched case folded. A
// name that no longer resolves is logged and left alone, the record
// stays readable either way.
//
// It returns the number of records that were resolved.
func ResolveCategoryNames(db *gorm.DB) (int, error) {
	refs, err := nameIndex(db)
	if err != nil {
		return 0, err
	}

	resolved := 0

	var budgets []models.Budget
	err = db.Where("category_id = ?", uuid.Nil).Where("category_name != ''").Find(&budgets).Error
	if err != nil {
		return resolved, err
	}

	for _, budget := range budgets {
		ref, ok := resolve(refs, budget.CategoryName, budget.SubcategoryName)
		if !ok {
			log.Warn().
				Str("budget", budget.ID.String()).
				Str("categoryName", budget.CategoryName).
				Str("subcategoryName", budget.SubcategoryName).
				Msg("legacy budget references an unknown category, skipping")
			continue
		}

		budget.CategoryID = ref.categoryID
		budget.SubcategoryID = ref.subcategoryID
		budget.CategoryName = ""
		budget.SubcategoryName = ""

		if err := db.Save(&budget).Error; err != nil {
			return resolved, err
		}

		resolved++
	}

	var transactions []models.Transaction
	err = db.Where("category_id = ?", uuid.Nil).Where("category_name != ''").Find(&transactions).Error
	if err != nil {
		return resolved, err
	}

	for _, transaction := range transactions {
		ref, ok := resolve(refs, transaction.CategoryName, transaction.SubcategoryName)
		if !ok {
			log.Warn().
				Str("transaction", transaction.ID.String()).
				Str("categoryName", transaction.CategoryName).
				Msg("legacy transaction references an unknown category, skipping")
			continue
		}

		transaction.CategoryID = ref.categoryID
		transaction.SubcategoryID = ref.subcategoryID
		transaction.CategoryName = ""
		transaction.SubcategoryName = ""

		if err := db.Save(&transaction).Error; err != nil {
			return resolved, err
		}

		resolved++
	}

	if resolved > 0 {
		log.Info().Int("resolved", resolved).Msg("resolved legacy category name references")
	}

	return resolved, nil
}

// nameIndex maps the case folded name of every category to its
// resolved reference. Subcategory names resolve to the subcategory
// plus its parent.
func nameIndex(db *gorm.DB) (map[string]categoryRef, error) {
	var categories []models.Category
	err := db.Find(&categories).Error
	if err != nil {
		return nil, err
	}

	folder := cases.Fold()

	refs := make(map[string]categoryRef, len(categories))
	for _, category := range categories {
		if category.IsSubcategory {
			if category.ParentID == nil {
				continue
			}

			id := category.ID
			refs[folder.String(category.Name)] = categoryRef{
				categoryID:    *category.ParentID,
				subcategoryID: &id,
			}
			continue
		}

		refs[folder.String(category.Name)] = categoryRef{categoryID: category.ID}
	}

	return refs, nil
}

// resolve looks up a legacy name pair. The subcategory name wins when
// both are set, it is the more specific reference.
func resolve(refs map[string]categoryRef, categoryName, subcategoryName string) (categoryRef, bool) {
	folder := cases.Fold()

	if subcategoryName != "" {
		ref, ok := refs[folder.String(subcategoryName)]
		if ok && ref.subcategoryID != nil {
			return ref, true
		}
	}

	ref, ok := refs[folder.String(categoryName)]
	return ref, ok
}
