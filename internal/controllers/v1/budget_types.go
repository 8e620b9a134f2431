package v1

import (
	"fmt"
	"time"

	"github.com/finanzas/backend/internal/models"
	"github.com/finanzas/backend/internal/types"
	ez_uuid "github.com/finanzas/backend/internal/uuid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BudgetEditable represents all user configurable parameters
type BudgetEditable struct {
	CategoryID          uuid.UUID                  `json:"categoryId" example:"52d967d3-33f4-4b04-9ba7-772e5ab9d0ce"`    // ID of the category the budget limits
	SubcategoryID       *uuid.UUID                 `json:"subcategoryId" example:"a6e26ce8-4307-4a7d-8688-d539c192e647"` // Optional ID of a subcategory of the category
	PeriodType          types.PeriodType           `json:"periodType" example:"monthly"`                                 // Period type of the budget
	Date                types.Date                 `json:"date" example:"2025-03-07"`                                    // A date inside the period the budget covers. Defaults to today.
	Limit               decimal.Decimal            `json:"limit" example:"1000"`                                         // The spending limit
	Notes               string                     `json:"notes" example:"Groceries for the family" default:""`         // Notes about the budget
	Recurring           bool                       `json:"recurring" example:"false" default:"false"`                    // Does the budget recreate itself after its period elapsed?
	RecurrenceFrequency *types.RecurrenceFrequency `json:"recurrenceFrequency" example:"monthly"`                        // How far a recurring budget advances. Required for recurring budgets.
	RecurrenceEndDate   *types.Date                `json:"recurrenceEndDate" example:"2025-12-31"`                       // Optional date after which the budget stops recurring
}

// model computes the period for the editable and converts it into a
// budget record.
func (editable BudgetEditable) model() (models.Budget, error) {
	if editable.Recurring && editable.RecurrenceFrequency == nil {
		return models.Budget{}, errRecurrenceFrequencyMissing
	}

	reference := time.Now()
	if !editable.Date.IsZero() {
		reference = editable.Date.Time()
	}

	period, err := types.ComputePeriod(editable.PeriodType, reference)
	if err != nil {
		return models.Budget{}, err
	}

	return models.Budget{
		CategoryID:          editable.CategoryID,
		SubcategoryID:       editable.SubcategoryID,
		PeriodType:          editable.PeriodType,
		StartDate:           period.Start,
		EndDate:             period.End,
		Limit:               editable.Limit,
		Notes:               editable.Notes,
		Recurring:           editable.Recurring,
		RecurrenceFrequency: editable.RecurrenceFrequency,
		RecurrenceEndDate:   editable.RecurrenceEndDate,
	}, nil
}

type BudgetLinks struct {
	Self string `json:"self" example:"https://example.com/api/v1/budgets/3b1ea324-d438-4419-882a-2fc91d71772f"` // The budget itself
}

type Budget struct {
	models.DefaultModel
	BudgetEditable
	StartDate  types.Date        `json:"startDate" example:"2025-03-01"` // First day of the budget period
	EndDate    types.Date        `json:"endDate" example:"2025-03-31"`   // Last day of the budget period
	Spent      decimal.Decimal   `json:"spent" example:"123.45"`         // Amount spent against the budget so far
	SyncStatus models.SyncStatus `json:"syncStatus" example:"pending"`   // Has the budget been pushed to the remote store?
	Links      BudgetLinks       `json:"links"`
}

func newBudget(c *gin.Context, model models.Budget) Budget {
	url := c.GetString(string(models.DBContextURL))

	return Budget{
		DefaultModel: model.DefaultModel,
		BudgetEditable: BudgetEditable{
			CategoryID:          model.CategoryID,
			SubcategoryID:       model.SubcategoryID,
			PeriodType:          model.PeriodType,
			Date:                model.StartDate,
			Limit:               model.Limit,
			Notes:               model.Notes,
			Recurring:           model.Recurring,
			RecurrenceFrequency: model.RecurrenceFrequency,
			RecurrenceEndDate:   model.RecurrenceEndDate,
		},
		StartDate:  model.StartDate,
		EndDate:    model.EndDate,
		Spent:      model.Spent,
		SyncStatus: model.SyncStatus,
		Links: BudgetLinks{
			Self: fmt.Sprintf("%s/v1/budgets/%s", url, model.ID),
		},
	}
}

type BudgetListResponse struct {
	Data       []Budget    `json:"data"`                                                          // List of Budgets
	Error      *string     `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Pagination *Pagination `json:"pagination"`                                                    // Pagination information
}

type BudgetCreateResponse struct {
	Data  []BudgetResponse `json:"data"`                                                          // List of the created Budgets or their respective error
	Error *string          `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

func (b *BudgetCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	b.Data = append(b.Data, BudgetResponse{Error: &s})

	newStatus := status(err)
	if newStatus > currentStatus {
		return newStatus
	}

	return currentStatus
}

type BudgetResponse struct {
	Data  *Budget `json:"data"`                                                          // Data for the Budget
	Error *string `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

type BudgetQueryFilter struct {
	CategoryID    ez_uuid.UUID `form:"category"`                   // By ID of the category
	SubcategoryID ez_uuid.UUID `form:"subcategory"`                // By ID of the subcategory
	PeriodType    string       `form:"periodType"`                 // By period type
	Recurring     bool         `form:"recurring"`                  // Only recurring or only one-off budgets
	SyncStatus    string       `form:"syncStatus"`                 // By sync status, pending or synced
	Offset        uint         `form:"offset" filterField:"false"` // The offset of the first Budget returned. Defaults to 0.
	Limit         int          `form:"limit" filterField:"false"`  // Maximum number of Budgets to return. Defaults to 50.
}

func (f BudgetQueryFilter) model() (models.Budget, error) {
	var subcategoryID *uuid.UUID
	if f.SubcategoryID.UUID != uuid.Nil {
		subcategoryID = &f.SubcategoryID.UUID
	}

	return models.Budget{
		CategoryID:    f.CategoryID.UUID,
		SubcategoryID: subcategoryID,
		PeriodType:    types.PeriodType(f.PeriodType),
		Recurring:     f.Recurring,
		SyncStatus:    models.SyncStatus(f.SyncStatus),
	}, nil
}

// RecurrenceRun reports the result of one advance of the recurring
// budgets.
type RecurrenceRun struct {
	Advanced int `json:"advanced" example:"2"` // Number of budgets that were advanced into their next period
}

type RecurrenceResponse struct {
	Data  *RecurrenceRun `json:"data"`                                                     // Result of the run
	Error *string        `json:"error" example:"an error occurred on the server during your request"` // The error, if any occurred
}
