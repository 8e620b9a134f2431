package models

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CategoryType distinguishes income from expense categories.
type CategoryType string

const (
	CategoryTypeIncome  CategoryType = "income"
	CategoryTypeExpense CategoryType = "expense"
)

// Category is a node in the two-level category hierarchy. Top level
// categories have no parent; subcategories reference exactly one top
// level category and inherit its type. Deeper nesting does not exist.
type Category struct {
	DefaultModel
	Name          string       `json:"name" gorm:"uniqueIndex:category_name_parent" example:"Alimentación"`
	Type          CategoryType `json:"type" example:"expense"`
	Color         string       `json:"color" example:"#FF5252"`
	Icon          string       `json:"icon" example:"coffee"`
	IsSubcategory bool         `json:"isSubcategory" example:"false"`
	ParentID      *uuid.UUID   `json:"parentId" gorm:"uniqueIndex:category_name_parent"`
	Parent        *Category    `json:"-"`
}

func (c *Category) BeforeSave(_ *gorm.DB) error {
	c.Name = strings.TrimSpace(c.Name)

	// Subcategories may leave the type unset here, it is inherited
	// from the parent in checkIntegrity.
	if c.Type == "" && c.IsSubcategory {
		return nil
	}

	if c.Type != CategoryTypeIncome && c.Type != CategoryTypeExpense {
		return ErrCategoryTypeInvalid
	}

	return nil
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	_ = c.DefaultModel.BeforeCreate(tx)
	return c.checkIntegrity(tx)
}

func (c *Category) BeforeUpdate(tx *gorm.DB) error {
	if tx.Statement.Changed("ParentID") || tx.Statement.Changed("IsSubcategory") {
		return c.checkIntegrity(tx)
	}

	return nil
}

// checkIntegrity enforces the hierarchy invariants: a subcategory has
// a parent, that parent is a top level category, and both share the
// same type.
func (c *Category) checkIntegrity(tx *gorm.DB) error {
	if !c.IsSubcategory {
		if c.ParentID != nil {
			return ErrSubcategoryFlagMissing
		}

		return nil
	}

	if c.ParentID == nil {
		return ErrParentCategoryMissing
	}

	var parent Category
	err := tx.First(&parent, "id = ?", *c.ParentID).Error
	if err != nil {
		return ErrParentCategoryMissing
	}

	if parent.IsSubcategory {
		return ErrParentIsSubcategory
	}

	// Unset types are inherited, set types have to match
	if c.Type == "" {
		c.Type = parent.Type
	} else if c.Type != parent.Type {
		return ErrSubcategoryTypeMismatch
	}

	return nil
}

// ParentCategory returns the parent category for a subcategory.
func (c Category) ParentCategory(db *gorm.DB) (Category, error) {
	var parent Category

	if c.ParentID == nil {
		return parent, ErrParentCategoryMissing
	}

	err := db.First(&parent, "id = ?", *c.ParentID).Error
	return parent, err
}

// Subcategories returns all subcategories of a top level category.
func (c Category) Subcategories(db *gorm.DB) ([]Category, error) {
	var subcategories []Category

	err := db.
		Where(&Category{IsSubcategory: true}).
		Where("parent_id = ?", c.ID).
		Order("name ASC").
		Find(&subcategories).Error

	return subcategories, err
}
