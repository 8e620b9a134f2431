package models

import (
	"strings"
	"time"

	"github.com/finanzas/backend/internal/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Transaction is a single movement of money on an account. Positive
// amounts are income, negative amounts are expenses.
type Transaction struct {
	DefaultModel
	Concept       string          `json:"concept" example:"Supermercado"`
	CategoryID    uuid.UUID       `json:"categoryId"`
	Category      Category        `json:"-"`
	SubcategoryID *uuid.UUID      `json:"subcategoryId"`
	Amount        decimal.Decimal `json:"amount" gorm:"type:DECIMAL(20,8)" example:"-120"`
	Date          types.Date      `json:"date" example:"2025-02-25"`
	AccountID     uuid.UUID       `json:"accountId"`
	Account       Account         `json:"-"`
	Notes         string          `json:"notes"`
	SyncStatus    SyncStatus      `json:"syncStatus" gorm:"default:pending" example:"pending"`

	// Legacy name references, see Budget.
	CategoryName    string `json:"categoryName,omitempty"`
	SubcategoryName string `json:"subcategoryName,omitempty"`
}

func (t *Transaction) BeforeSave(_ *gorm.DB) error {
	t.Concept = strings.TrimSpace(t.Concept)
	t.Notes = strings.TrimSpace(t.Notes)

	if t.Date.IsZero() {
		t.Date = types.DateOf(time.Now())
	}

	return nil
}

func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	_ = t.DefaultModel.BeforeCreate(tx)

	if t.SyncStatus == "" {
		t.SyncStatus = SyncPending
	}

	return t.checkIntegrity(tx)
}

// checkIntegrity verifies that a set subcategory belongs to the
// transaction's top level category.
func (t *Transaction) checkIntegrity(tx *gorm.DB) error {
	if t.SubcategoryID == nil {
		return nil
	}

	var subcategory Category
	err := tx.First(&subcategory, "id = ?", *t.SubcategoryID).Error
	if err != nil {
		return err
	}

	if !subcategory.IsSubcategory || subcategory.ParentID == nil || *subcategory.ParentID != t.CategoryID {
		return ErrBudgetSubcategoryWrong
	}

	return nil
}

// AfterCreate books an expense against every budget of the same
// category whose period contains the transaction date. Income does
// not touch budgets.
//
// This also runs for transactions inserted by the sync pull, so that
// remote expenses are reflected in local budgets like they were on
// the device that created them.
func (t *Transaction) AfterCreate(tx *gorm.DB) error {
	if !t.Amount.IsNegative() {
		return nil
	}

	return tx.Model(&Budget{}).
		Where("category_id = ?", t.CategoryID).
		Where("start_date <= date(?) AND end_date >= date(?)", t.Date, t.Date).
		Update("spent", gorm.Expr("spent + ?", t.Amount.Abs())).Error
}
