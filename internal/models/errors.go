package models

import (
	"errors"
)

var (
	ErrGeneral          = errors.New("an error occurred on the server during your request")
	ErrResourceNotFound = errors.New("there is no")

	ErrCategoryNameNotUnique   = errors.New("the category name is already in use at this level of the hierarchy")
	ErrParentCategoryMissing   = errors.New("a subcategory needs an existing parent category")
	ErrParentIsSubcategory     = errors.New("categories can only be nested one level deep")
	ErrCategoryTypeInvalid     = errors.New("the category type must be income or expense")
	ErrSubcategoryTypeMismatch = errors.New("a subcategory must have the same type as its parent category")
	ErrSubcategoryFlagMissing  = errors.New("a category with a parent must be marked as subcategory")

	ErrBudgetPeriodInvalid    = errors.New("the budget start date must not be after its end date")
	ErrBudgetNaturalKeyExists = errors.New("a budget for this category, subcategory, period type and start date already exists")
	ErrBudgetSubcategoryWrong = errors.New("the subcategory does not belong to the category of the budget")

	ErrAccountNameNotUnique = errors.New("the account name is already in use")
)
