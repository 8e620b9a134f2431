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

func (suite *TestSuiteStandard) TestTransactionCreate() {
	response := suite.createTestTransaction(v1.TransactionEditable{
		Concept: "Supermercado",
		Amount:  decimal.NewFromFloat(-120.50),
		Date:    types.NewDate(2025, time.March, 7),
	})

	suite.Assert().Equal("Supermercado", response.Data.Concept)
	suite.Assert().Equal("2025-03-07", response.Data.Date.String())
	suite.Assert().Equal(models.SyncPending, response.Data.SyncStatus)
	suite.Assert().Contains(response.Data.Links.Self, fmt.Sprintf("/v1/transactions/%s", response.Data.ID))
}

func (suite *TestSuiteStandard) TestTransactionCreateInvalidBody() {
	r := test.Request(suite.T(), suite.router, http.MethodPost, "http://example.com/v1/transactions", `{ invalid`)
	test.AssertHTTPStatus(suite.T(), http.StatusBadRequest, &r)
}

// TestTransactionCreateBooksSpent verifies that an expense bumps the
// spent amount of the half-month budget covering its date while
// income leaves it alone.
func (suite *TestSuiteStandard) TestTransactionCreateBooksSpent() {
	budget := suite.createTestBudget(v1.BudgetEditable{
		PeriodType: "half-month-1",
		Date:       types.NewDate(2025, time.March, 7),
		Limit:      decimal.NewFromInt(500),
	})

	suite.createTestTransaction(v1.TransactionEditable{
		CategoryID: budget.Data.CategoryID,
		Amount:     decimal.NewFromInt(-50),
		Date:       types.NewDate(2025, time.March, 10),
	})
	suite.createTestTransaction(v1.TransactionEditable{
		CategoryID: budget.Data.CategoryID,
		Amount:     decimal.NewFromInt(100),
		Date:       types.NewDate(2025, time.March, 10),
	})

	// Outside the budget period, must not be booked
	suite.createTestTransaction(v1.TransactionEditable{
		CategoryID: budget.Data.CategoryID,
		Amount:     decimal.NewFromInt(-30),
		Date:       types.NewDate(2025, time.March, 20),
	})

	r := test.Request(suite.T(), suite.router, http.MethodGet, fmt.Sprintf("http://example.com/v1/budgets/%s", budget.Data.ID), nil)
	test.AssertHTTPStatus(suite.T(), http.StatusOK, &r)

	var response v1.BudgetResponse
	test.DecodeResponse(suite.T(), &r, &response)
	suite.Assert().True(response.Data.Spent.Equal(decimal.NewFromInt(50)), "Spent is %s", response.Data.Spent)
}

func (suite *TestSuiteStandard) TestTransactionCreateWrongSubcategory() {
	category := suite.createTestCategory(v1.CategoryEditable{})
	other := suite.createTestCategory(v1.CategoryEditable{})
	subcategory := suite.createTestSubcategory(other.Data.ID, v1.CategoryEditable{})
	account := suite.createTestAccount(v1.AccountEditable{})

	r := test.Request(suite.T(), suite.router, http.MethodPost, "http://example.com/v1/transactions", []v1.TransactionEditable{
		{
			CategoryID:    category.Data.ID,
			SubcategoryID: &subcategory.Data.ID,
			AccountID:     account.Data.ID,
			Amount:        decimal.NewFromInt(-10),
		},
	})
	test.AssertHTTPStatus(suite.T(), http.StatusBadRequest, &r)

	var response v1.TransactionCreateResponse
	test.DecodeResponse(suite.T(), &r, &response)
	suite.Require().Len(response.Data, 1)
	suite.Assert().Equal(models.ErrBudgetSubcategoryWrong.Error(), *response.Data[0].Error)
}

func (suite *TestSuiteStandard) TestTransactionListFilter() {
	category := suite.createTestCategory(v1.CategoryEditable{})
	account := suite.createTestAccount(v1.AccountEditable{})

	suite.createTestTransaction(v1.TransactionEditable{
		CategoryID: category.Data.ID,
		AccountID:  account.Data.ID,
		Amount:     decimal.NewFromInt(-10),
		Date:       types.NewDate(2025, time.March, 1),
	})
	suite.createTestTransaction(v1.TransactionEditable{
		CategoryID: category.Data.ID,
		Amount:     decimal.NewFromInt(-20),
		Date:       types.NewDate(2025, time.March, 15),
	})
	suite.createTestTransaction(v1.TransactionEditable{
		Amount: decimal.NewFromInt(-30),
		Date:   types.NewDate(2025, time.April, 1),
	})

	tests := []struct {
		query string
		count int
	}{
		{fmt.Sprintf("category=%s", category.Data.ID), 2},
		{fmt.Sprintf("account=%s", account.Data.ID), 1},
		{"from=2025-03-15", 2},
		{"until=2025-03-15", 2},
		{"from=2025-03-02&until=2025-03-31", 1},
		{"syncStatus=pending", 3},
		{"limit=2", 2},
	}

	for _, tt := range tests {
		r := test.Request(suite.T(), suite.router, http.MethodGet, fmt.Sprintf("http://example.com/v1/transactions?%s", tt.query), nil)
		test.AssertHTTPStatus(suite.T(), http.StatusOK, &r)

		var response v1.TransactionListResponse
		test.DecodeResponse(suite.T(), &r, &response)
		suite.Assert().Len(response.Data, tt.count, "Wrong number of transactions for query %q", tt.query)
	}
}

func (suite *TestSuiteStandard) TestTransactionListOrder() {
	suite.createTestTransaction(v1.TransactionEditable{
		Concept: "older",
		Amount:  decimal.NewFromInt(-10),
		Date:    types.NewDate(2025, time.March, 1),
	})
	suite.createTestTransaction(v1.TransactionEditable{
		Concept: "newer",
		Amount:  decimal.NewFromInt(-10),
		Date:    types.NewDate(2025, time.March, 15),
	})

	r := test.Request(suite.T(), suite.router, http.MethodGet, "http://example.com/v1/transactions", nil)
	test.AssertHTTPStatus(suite.T(), http.StatusOK, &r)

	var response v1.TransactionListResponse
	test.DecodeResponse(suite.T(), &r, &response)
	suite.Require().Len(response.Data, 2)
	suite.Assert().Equal("newer", response.Data[0].Concept)
	suite.Assert().Equal("older", response.Data[1].Concept)
}

func (suite *TestSuiteStandard) TestTransactionListInvalidDate() {
	r := test.Request(suite.T(), suite.router, http.MethodGet, "http://example.com/v1/transactions?from=yesterday", nil)
	test.AssertHTTPStatus(suite.T(), http.StatusBadRequest, &r)
}

func (suite *TestSuiteStandard) TestTransactionGetInvalidID() {
	r := test.Request(suite.T(), suite.router, http.MethodGet, "http://example.com/v1/transactions/not-a-uuid", nil)
	test.AssertHTTPStatus(suite.T(), http.StatusBadRequest, &r)
}

func (suite *TestSuiteStandard) TestTransactionGetNonexistent() {
	r := test.Request(suite.T(), suite.router, http.MethodGet, "http://example.com/v1/transactions/a6e26ce8-4307-4a7d-8688-d539c192e647", nil)
	test.AssertHTTPStatus(suite.T(), http.StatusNotFound, &r)
}
