package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Seed installs the default categories and accounts on a fresh
// database. Databases that already contain categories or accounts are
// left alone.
func Seed(db *gorm.DB) error {
	var count int64

	err := db.Model(&Category{}).Count(&count).Error
	if err != nil {
		return err
	}

	if count == 0 {
		categories := []Category{
			{Name: "Alimentación", Type: CategoryTypeExpense, Color: "#FF5252", Icon: "coffee"},
			{Name: "Vivienda", Type: CategoryTypeExpense, Color: "#AA00FF", Icon: "home"},
			{Name: "Transporte", Type: CategoryTypeExpense, Color: "#2962FF", Icon: "car"},
			{Name: "Entretenimiento", Type: CategoryTypeExpense, Color: "#00B0FF", Icon: "film"},
			{Name: "Servicios", Type: CategoryTypeExpense, Color: "#00C853", Icon: "zap"},
			{Name: "Salud", Type: CategoryTypeExpense, Color: "#d50000", Icon: "thermometer"},
			{Name: "Salario", Type: CategoryTypeIncome, Color: "#00C853", Icon: "briefcase"},
			{Name: "Inversiones", Type: CategoryTypeIncome, Color: "#6200EA", Icon: "trending-up"},
		}

		err = db.Create(&categories).Error
		if err != nil {
			return err
		}
	}

	err = db.Model(&Account{}).Count(&count).Error
	if err != nil {
		return err
	}

	if count == 0 {
		accounts := []Account{
			{Name: "Efectivo", Type: AccountTypeCash, Balance: decimal.NewFromInt(500), Currency: "DOP", Color: "#00C853", Icon: "dollar-sign"},
			{Name: "Cuenta Corriente", Type: AccountTypeBank, Balance: decimal.NewFromInt(2500), Currency: "DOP", Color: "#2962FF", Icon: "credit-card"},
		}

		err = db.Create(&accounts).Error
		if err != nil {
			return err
		}
	}

	return nil
}
