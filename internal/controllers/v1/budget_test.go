package v1_test

import (
	"fmt"
	"net/http"
	"time"

	v1 "github.com/finanzas/backend/internal/controllers/v1"
	"github.com/finanzas/backend/internal/models"
	"github.com/finanzas/backend/internal/types"
	"github.com/finanzas/backend/test"
	"github.com/shopspring/decimal"
)

func (suite *TestSuiteStandard) TestBudgetCreate() {
	response := suite.createTestBudget(v1.BudgetEditable{
		PeriodType: "half-month-1",
		Date:       types.NewDate(2025, time.March, 7),
		Limit:      decimal.NewFromInt(500),
		Notes:      "Groceries",
	})

	suite.Assert().Equal(types.PeriodHalfMonth1, response.Data.PeriodType)
	suite.Assert().Equal("2025-03-01", response.Data.StartDate.String())
	suite.Assert().Equal("2025-03-15", response.Data.EndDate.String())
	suite.Assert().Equal(models.SyncPending, response.Data.SyncStatus)
	suite.Assert().True(response.Data.Spent.IsZero())
}

func (suite *TestSuiteStandard) TestBudgetCreateUnknownPeriodType() {
	category := suite.createTestCategory(v1.CategoryEditable{})

	r := test.Request(suite.T(), suite.router, http.MethodPost, "http://example.com/v1/budgets", []v1.BudgetEditable{
		{CategoryID: category.Data.ID, PeriodType: "weekly", Limit: decimal.NewFromInt(100)},
	})
	test.AssertHTTPStatus(suite.T(), http.StatusBadRequest, &r)
}

func (suite *TestSuiteStandard) TestBudgetCreateRecurringNeedsFrequency() {
	category := suite.createTestCategory(v1.CategoryEditable{})

	r := test.Request(suite.T(), suite.router, http.MethodPost, "http://example.com/v1/budgets", []v1.BudgetEditable{
		{CategoryID: category.Data.ID, PeriodType: "monthly", Limit: decimal.NewFromInt(100), Recurring: true},
	})
	test.AssertHTTPStatus(suite.T(), http.StatusBadRequest, &r)
}

// TestBudgetCreateProrates verifies that a monthly budget is split
// into its two half-month budgets.
func (suite *TestSuiteStandard) TestBudgetCreateProrates() {
	category := suite.createTestCategory(v1.CategoryEditable{})

	suite.createTestBudget(v1.BudgetEditable{
		CategoryID: category.Data.ID,
		PeriodType: "monthly",
		Date:       types.NewDate(2025, time.April, 10),
		Limit:      decimal.NewFromInt(1000),
	})

	url := fmt.Sprintf("http://example.com/v1/budgets?category=%s", category.Data.ID)
	r := test.Request(suite.T(), suite.router, http.MethodGet, url, nil)
	test.AssertHTTPStatus(suite.T(), http.StatusOK, &r)

	var response v1.BudgetListResponse
	test.DecodeResponse(suite.T(), &r, &response)

	// The monthly budget and its two halves
	suite.Require().Len(response.Data, 3)

	halves := make([]v1.Budget, 0)
	for _, budget := range response.Data {
		if budget.PeriodType.IsHalfMonth() {
			halves = append(halves, budget)
		}
	}

	suite.Require().Len(halves, 2)
	suite.Assert().True(halves[0].Limit.Equal(decimal.NewFromInt(500)), "First share is %s", halves[0].Limit)
	suite.Assert().True(halves[1].Limit.Equal(decimal.NewFromInt(500)), "Second share is %s", halves[1].Limit)
	suite.Assert().Equal("2025-04-01", halves[0].StartDate.String())
	suite.Assert().Equal("2025-04-16", halves[1].StartDate.String())
	suite.Assert().Equal("2025-04-30", halves[1].EndDate.String())
}

func (suite *TestSuiteStandard) TestBudgetCreateDuplicate() {
	category := suite.createTestCategory(v1.CategoryEditable{})
	editable := v1.BudgetEditable{
		CategoryID: category.Data.ID,
		PeriodType: "half-month-1",
		Date:       types.NewDate(2025, time.March, 7),
		Limit:      decimal.NewFromInt(500),
	}

	suite.createTestBudget(editable)

	r := test.Request(suite.T(), suite.router, http.MethodPost, "http://example.com/v1/budgets", []v1.BudgetEditable{editable})
	test.AssertHTTPStatus(suite.T(), http.StatusBadRequest, &r)

	var response v1.BudgetCreateResponse
	test.DecodeResponse(suite.T(), &r, &response)
	suite.Require().Len(response.Data, 1)
	suite.Assert().Equal(models.ErrBudgetNaturalKeyExists.Error(), *response.Data[0].Error)
}

func (suite *TestSuiteStandard) TestBudgetListFilter() {
	category := suite.createTestCategory(v1.CategoryEditable{})
	other := suite.createTestCategory(v1.CategoryEditable{})

	suite.createTestBudget(v1.BudgetEditable{
		CategoryID: category.Data.ID,
		PeriodType: "half-month-1",
		Date:       types.NewDate(2025, time.March, 7),
		Limit:      decimal.NewFromInt(100),
	})
	suite.createTestBudget(v1.BudgetEditable{
		CategoryID: category.Data.ID,
		PeriodType: "half-month-2",
		Date:       types.NewDate(2025, time.March, 20),
		Limit:      decimal.NewFromInt(100),
	})
	suite.createTestBudget(v1.BudgetEditable{
		CategoryID: other.Data.ID,
		PeriodType: "half-month-1",
		Date:       types.NewDate(2025, time.March, 7),
		Limit:      decimal.NewFromInt(100),
	})

	tests := []struct {
		query string
		count int
	}{
		{fmt.Sprintf("category=%s", category.Data.ID), 2},
		{"periodType=half-month-1", 2},
		{fmt.Sprintf("category=%s&periodType=half-month-2", category.Data.ID), 1},
		{"syncStatus=pending", 3},
		{"syncStatus=synced", 0},
		{"limit=1", 1},
	}

	for _, tt := range tests {
		r := test.Request(suite.T(), suite.router, http.MethodGet, fmt.Sprintf("http://example.com/v1/budgets?%s", tt.query), nil)
		test.AssertHTTPStatus(suite.T(), http.StatusOK, &r)

		var response v1.BudgetListResponse
		test.DecodeResponse(suite.T(), &r, &response)
		suite.Assert().Len(response.Data, tt.count, "Wrong number of budgets for query %q", tt.query)
	}
}

func (suite *TestSuiteStandard) TestBudgetUpdate() {
	budget := suite.createTestBudget(v1.BudgetEditable{
		PeriodType: "half-month-1",
		Date:       types.NewDate(2025, time.March, 7),
		Limit:      decimal.NewFromInt(500),
	})

	// Make the budget look synced so the update visibly resets it
	err := models.DB.Model(&models.Budget{}).Where("id = ?", budget.Data.ID).Update("sync_status", models.SyncSynced).Error
	suite.Require().NoError(err)

	r := test.Request(suite.T(), suite.router, http.MethodPatch, fmt.Sprintf("http://example.com/v1/budgets/%s", budget.Data.ID), map[string]any{
		"limit": 750,
		"notes": "More groceries",
	})
	test.AssertHTTPStatus(suite.T(), http.StatusOK, &r)

	var response v1.BudgetResponse
	test.DecodeResponse(suite.T(), &r, &response)
	suite.Assert().True(response.Data.Limit.Equal(decimal.NewFromInt(750)), "Limit is %s", response.Data.Limit)
	suite.Assert().Equal("More groceries", response.Data.Notes)

	// An updated budget needs to be pushed to the remote store again
	suite.Assert().Equal(models.SyncPending, response.Data.SyncStatus)
}

func (suite *TestSuiteStandard) TestBudgetUpdateRecurringNeedsFrequency() {
	budget := suite.createTestBudget(v1.BudgetEditable{
		PeriodType: "half-month-1",
		Date:       types.NewDate(2025, time.March, 7),
		Limit:      decimal.NewFromInt(500),
	})

	r := test.Request(suite.T(), suite.router, http.MethodPatch, fmt.Sprintf("http://example.com/v1/budgets/%s", budget.Data.ID), map[string]any{
		"recurring": true,
	})
	test.AssertHTTPStatus(suite.T(), http.StatusBadRequest, &r)
}

func (suite *TestSuiteStandard) TestBudgetDelete() {
	budget := suite.createTestBudget(v1.BudgetEditable{
		PeriodType: "half-month-1",
		Date:       types.NewDate(2025, time.March, 7),
		Limit:      decimal.NewFromInt(500),
	})

	r := test.Request(suite.T(), suite.router, http.MethodDelete, fmt.Sprintf("http://example.com/v1/budgets/%s", budget.Data.ID), nil)
	test.AssertHTTPStatus(suite.T(), http.StatusNoContent, &r)

	r = test.Request(suite.T(), suite.router, http.MethodGet, fmt.Sprintf("http://example.com/v1/budgets/%s", budget.Data.ID), nil)
	test.AssertHTTPStatus(suite.T(), http.StatusNotFound, &r)
}

func (suite *TestSuiteStandard) TestBudgetGetNonexistent() {
	r := test.Request(suite.T(), suite.router, http.MethodGet, "http://example.com/v1/budgets/a6e26ce8-4307-4a7d-8688-d539c192e647", nil)
	test.AssertHTTPStatus(suite.T(), http.StatusNotFound, &r)
}

// TestBudgetRecurrence advances an elapsed recurring budget over the
// API and verifies the generation for the next period.
func (suite *TestSuiteStandard) TestBudgetRecurrence() {
	frequency := types.FrequencyMonthly
	budget := suite.createTestBudget(v1.BudgetEditable{
		PeriodType:          "half-month-2",
		Date:                types.NewDate(2025, time.April, 20),
		Limit:               decimal.NewFromInt(300),
		Recurring:           true,
		RecurrenceFrequency: &frequency,
	})

	r := test.Request(suite.T(), suite.router, http.MethodPost, "http://example.com/v1/budgets/recurrence", nil)
	test.AssertHTTPStatus(suite.T(), http.StatusOK, &r)

	var response v1.RecurrenceResponse
	test.DecodeResponse(suite.T(), &r, &response)
	suite.Require().NotNil(response.Data)
	suite.Assert().Equal(1, response.Data.Advanced)

	url := fmt.Sprintf("http://example.com/v1/budgets?category=%s&periodType=half-month-2", budget.Data.CategoryID)
	r = test.Request(suite.T(), suite.router, http.MethodGet, url, nil)
	test.AssertHTTPStatus(suite.T(), http.StatusOK, &r)

	var list v1.BudgetListResponse
	test.DecodeResponse(suite.T(), &r, &list)
	suite.Require().Len(list.Data, 2)
	suite.Assert().Equal("2025-05-16", list.Data[1].StartDate.String())
	suite.Assert().True(list.Data[1].Recurring)

	// A second run must not create another generation for May
	r = test.Request(suite.T(), suite.router, http.MethodPost, "http://example.com/v1/budgets/recurrence", nil)
	test.AssertHTTPStatus(suite.T(), http.StatusOK, &r)
}
