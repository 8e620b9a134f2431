package models

import (
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AccountType is the kind of account a transaction is booked on.
type AccountType string

const (
	AccountTypeCash  AccountType = "cash"
	AccountTypeBank  AccountType = "bank"
	AccountTypeCard  AccountType = "card"
	AccountTypeOther AccountType = "other"
)

// Account is a money source or destination, e.g. a wallet or a bank
// account.
type Account struct {
	DefaultModel
	Name     string          `json:"name" gorm:"uniqueIndex" example:"Efectivo"`
	Type     AccountType     `json:"type" example:"cash"`
	Balance  decimal.Decimal `json:"balance" gorm:"type:DECIMAL(20,8)" example:"500"`
	Currency string          `json:"currency" example:"DOP"`
	Color    string          `json:"color" example:"#00C853"`
	Icon     string          `json:"icon" example:"dollar-sign"`
}

func (a *Account) BeforeSave(_ *gorm.DB) error {
	a.Name = strings.TrimSpace(a.Name)
	return nil
}
