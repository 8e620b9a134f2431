package services

import "errors"

var (
	ErrAmountNotPositive = errors.New("the budget amount must be positive")
)
