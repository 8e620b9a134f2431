package models

import (
	"errors"
	"strings"

	"github.com/finanzas/backend/internal/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Budget is a spending limit for a category (or subcategory) over one
// period. Budgets for monthly and longer periods are prorated into
// half-month budgets by the proration engine; the half-month budgets
// themselves are what transactions are tracked against.
//
// A budget is uniquely identified by its natural key: category,
// subcategory, period type and start date. The unique index backs the
// idempotence of the proration and recurrence engines.
type Budget struct {
	DefaultModel
	CategoryID          uuid.UUID                  `json:"categoryId" gorm:"uniqueIndex:budget_natural_key"`
	Category            Category                   `json:"-"`
	SubcategoryID       *uuid.UUID                 `json:"subcategoryId" gorm:"uniqueIndex:budget_natural_key"`
	PeriodType          types.PeriodType           `json:"periodType" gorm:"uniqueIndex:budget_natural_key" example:"half-month-1"`
	StartDate           types.Date                 `json:"startDate" gorm:"uniqueIndex:budget_natural_key" example:"2025-03-01"`
	EndDate             types.Date                 `json:"endDate" example:"2025-03-15"`
	Limit               decimal.Decimal            `json:"limit" gorm:"type:DECIMAL(20,8)" example:"500"`
	Spent               decimal.Decimal            `json:"spent" gorm:"type:DECIMAL(20,8)" example:"123.45"`
	Notes               string                     `json:"notes"`
	Recurring           bool                       `json:"recurring" example:"false"`
	RecurrenceFrequency *types.RecurrenceFrequency `json:"recurrenceFrequency" example:"monthly"`
	RecurrenceEndDate   *types.Date                `json:"recurrenceEndDate"`
	SyncStatus          SyncStatus                 `json:"syncStatus" gorm:"default:pending" example:"pending"`

	// Legacy name references, kept so that records written by old
	// clients can be resolved to IDs by the migration package.
	CategoryName    string `json:"categoryName,omitempty"`
	SubcategoryName string `json:"subcategoryName,omitempty"`
}

func (b *Budget) BeforeSave(_ *gorm.DB) error {
	b.Notes = strings.TrimSpace(b.Notes)

	if !b.StartDate.IsZero() && !b.EndDate.IsZero() && b.StartDate.After(b.EndDate) {
		return ErrBudgetPeriodInvalid
	}

	return nil
}

func (b *Budget) BeforeCreate(tx *gorm.DB) error {
	_ = b.DefaultModel.BeforeCreate(tx)

	if b.SyncStatus == "" {
		b.SyncStatus = SyncPending
	}

	return b.checkIntegrity(tx)
}

func (b *Budget) BeforeUpdate(tx *gorm.DB) error {
	if tx.Statement.Changed("CategoryID") || tx.Statement.Changed("SubcategoryID") {
		return b.checkIntegrity(tx)
	}

	return nil
}

// checkIntegrity verifies that the category exists and that a set
// subcategory actually belongs to it.
func (b *Budget) checkIntegrity(tx *gorm.DB) error {
	err := tx.First(&Category{}, "id = ?", b.CategoryID).Error
	if err != nil {
		return err
	}

	if b.SubcategoryID == nil {
		return nil
	}

	var subcategory Category
	err = tx.First(&subcategory, "id = ?", *b.SubcategoryID).Error
	if err != nil {
		return err
	}

	if !subcategory.IsSubcategory || subcategory.ParentID == nil || *subcategory.ParentID != b.CategoryID {
		return ErrBudgetSubcategoryWrong
	}

	return nil
}

// FindBudgetByNaturalKey looks up the budget identified by the
// natural key, if any. The nil return value means no budget exists at
// that key.
func FindBudgetByNaturalKey(db *gorm.DB, categoryID uuid.UUID, subcategoryID *uuid.UUID, periodType types.PeriodType, start types.Date) (*Budget, error) {
	var budget Budget

	q := db.
		Where("category_id = ?", categoryID).
		Where("period_type = ?", periodType).
		Where("start_date = date(?)", start)

	if subcategoryID == nil {
		q = q.Where("subcategory_id IS NULL")
	} else {
		q = q.Where("subcategory_id = ?", *subcategoryID)
	}

	err := q.First(&budget).Error
	if err != nil {
		if errors.Is(err, ErrResourceNotFound) || errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		return nil, err
	}

	return &budget, nil
}

// Period returns the date range of the budget.
func (b Budget) Period() types.Period {
	return types.Period{Start: b.StartDate, End: b.EndDate}
}
