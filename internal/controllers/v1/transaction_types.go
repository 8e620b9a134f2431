package v1

import (
	"fmt"

	"github.com/finanzas/backend/internal/models"
	"github.com/finanzas/backend/internal/types"
	ez_uuid "github.com/finanzas/backend/internal/uuid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionEditable represents all user configurable parameters
type TransactionEditable struct {
	Concept       string          `json:"concept" example:"Supermercado" default:""`                    // What the transaction was for
	CategoryID    uuid.UUID       `json:"categoryId" example:"52d967d3-33f4-4b04-9ba7-772e5ab9d0ce"`    // ID of the category
	SubcategoryID *uuid.UUID      `json:"subcategoryId" example:"a6e26ce8-4307-4a7d-8688-d539c192e647"` // Optional ID of a subcategory of the category
	Amount        decimal.Decimal `json:"amount" example:"-120.50"`                                     // Amount of the transaction. Negative amounts are expenses, positive amounts are income.
	Date          types.Date      `json:"date" example:"2025-02-25"`                                    // Date of the transaction. Defaults to today.
	AccountID     uuid.UUID       `json:"accountId" example:"af892e10-7e0a-4fb8-b1bc-4b6d88107f9c"`     // ID of the account the transaction was booked on
	Notes         string          `json:"notes" example:"Weekly groceries" default:""`                  // Notes about the transaction
}

func (editable TransactionEditable) model() models.Transaction {
	return models.Transaction{
		Concept:       editable.Concept,
		CategoryID:    editable.CategoryID,
		SubcategoryID: editable.SubcategoryID,
		Amount:        editable.Amount,
		Date:          editable.Date,
		AccountID:     editable.AccountID,
		Notes:         editable.Notes,
	}
}

type TransactionLinks struct {
	Self string `json:"self" example:"https://example.com/api/v1/transactions/3b1ea324-d438-4419-882a-2fc91d71772f"` // The transaction itself
}

type Transaction struct {
	models.DefaultModel
	TransactionEditable
	SyncStatus models.SyncStatus `json:"syncStatus" example:"pending"` // Has the transaction been pushed to the remote store?
	Links      TransactionLinks  `json:"links"`
}

func newTransaction(c *gin.Context, model models.Transaction) Transaction {
	url := c.GetString(string(models.DBContextURL))

	return Transaction{
		DefaultModel: model.DefaultModel,
		TransactionEditable: TransactionEditable{
			Concept:       model.Concept,
			CategoryID:    model.CategoryID,
			SubcategoryID: model.SubcategoryID,
			Amount:        model.Amount,
			Date:          model.Date,
			AccountID:     model.AccountID,
			Notes:         model.Notes,
		},
		SyncStatus: model.SyncStatus,
		Links: TransactionLinks{
			Self: fmt.Sprintf("%s/v1/transactions/%s", url, model.ID),
		},
	}
}

type TransactionListResponse struct {
	Data       []Transaction `json:"data"`                                                          // List of Transactions
	Error      *string       `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Pagination *Pagination   `json:"pagination"`                                                    // Pagination information
}

type TransactionCreateResponse struct {
	Data  []TransactionResponse `json:"data"`                                                          // List of the created Transactions or their respective error
	Error *string               `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

func (t *TransactionCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	t.Data = append(t.Data, TransactionResponse{Error: &s})

	newStatus := status(err)
	if newStatus > currentStatus {
		return newStatus
	}

	return currentStatus
}

type TransactionResponse struct {
	Data  *Transaction `json:"data"`                                                          // Data for the Transaction
	Error *string      `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

type TransactionQueryFilter struct {
	CategoryID    ez_uuid.UUID `form:"category"`                     // By ID of the category
	SubcategoryID ez_uuid.UUID `form:"subcategory"`                  // By ID of the subcategory
	AccountID     ez_uuid.UUID `form:"account"`                      // By ID of the account
	SyncStatus    string       `form:"syncStatus"`                   // By sync status, pending or synced
	From          string       `form:"from" filterField:"false"`     // Transactions on or after this date, in YYYY-MM-DD format
	Until         string       `form:"until" filterField:"false"`    // Transactions on or before this date, in YYYY-MM-DD format
	Offset        uint         `form:"offset" filterField:"false"`   // The offset of the first Transaction returned. Defaults to 0.
	Limit         int          `form:"limit" filterField:"false"`    // Maximum number of Transactions to return. Defaults to 50.
}

func (f TransactionQueryFilter) model() (models.Transaction, error) {
	var subcategoryID *uuid.UUID
	if f.SubcategoryID.UUID != uuid.Nil {
		subcategoryID = &f.SubcategoryID.UUID
	}

	return models.Transaction{
		CategoryID:    f.CategoryID.UUID,
		SubcategoryID: subcategoryID,
		AccountID:     f.AccountID.UUID,
		SyncStatus:    models.SyncStatus(f.SyncStatus),
	}, nil
}
