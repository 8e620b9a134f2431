package services_test

import (
	"time"

	"github.com/finanzas/backend/internal/models"
	"github.com/finanzas/backend/internal/services"
	"github.com/finanzas/backend/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frequency(f types.RecurrenceFrequency) *types.RecurrenceFrequency {
	return &f
}

// A recurring monthly budget whose period ended yesterday advances to
// exactly one new budget with the period shifted by one month and
// spent reset.
func (suite *TestSuiteStandard) TestAdvanceRecurringMonthly() {
	category := suite.createTestCategory(models.Category{})

	asOf := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	_ = suite.createTestBudget(models.Budget{
		CategoryID:          category.ID,
		PeriodType:          types.PeriodHalfMonth2,
		StartDate:           types.NewDate(2025, 4, 16),
		EndDate:             types.NewDate(2025, 4, 30),
		Limit:               decimal.NewFromFloat(500),
		Spent:               decimal.NewFromFloat(480),
		Recurring:           true,
		RecurrenceFrequency: frequency(types.FrequencyMonthly),
	})

	recurrer := services.NewRecurrer(models.DB)
	created, err := recurrer.AdvanceRecurring(asOf)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1, created)

	next, err := models.FindBudgetByNaturalKey(models.DB, category.ID, nil, types.PeriodHalfMonth2, types.NewDate(2025, 5, 16))
	require.NoError(suite.T(), err)
	require.NotNil(suite.T(), next, "The next generation was not created")

	assert.True(suite.T(), next.EndDate.Equal(types.NewDate(2025, 5, 30)))
	assert.True(suite.T(), next.Limit.Equal(decimal.NewFromFloat(500)))
	assert.True(suite.T(), next.Spent.IsZero(), "Spent was carried over into the new period")
	assert.True(suite.T(), next.Recurring, "The new generation must recur again")
	require.NotNil(suite.T(), next.RecurrenceFrequency)
	assert.Equal(suite.T(), types.FrequencyMonthly, *next.RecurrenceFrequency)
}

// Calling the generator twice within the same period creates nothing
// on the second call.
func (suite *TestSuiteStandard) TestAdvanceRecurringIdempotent() {
	category := suite.createTestCategory(models.Category{})

	asOf := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	_ = suite.createTestBudget(models.Budget{
		CategoryID:          category.ID,
		PeriodType:          types.PeriodHalfMonth1,
		StartDate:           types.NewDate(2025, 4, 1),
		EndDate:             types.NewDate(2025, 4, 15),
		Limit:               decimal.NewFromFloat(100),
		Recurring:           true,
		RecurrenceFrequency: frequency(types.FrequencyMonthly),
	})

	recurrer := services.NewRecurrer(models.DB)

	created, err := recurrer.AdvanceRecurring(asOf)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1, created)

	created, err = recurrer.AdvanceRecurring(asOf)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 0, created, "Second run in the same period created budgets")
}

// A recurrence end date in the past stops the budget from ever
// generating again.
func (suite *TestSuiteStandard) TestAdvanceRecurringTerminates() {
	category := suite.createTestCategory(models.Category{})

	end := types.NewDate(2025, 4, 30)
	_ = suite.createTestBudget(models.Budget{
		CategoryID:          category.ID,
		PeriodType:          types.PeriodHalfMonth1,
		StartDate:           types.NewDate(2025, 4, 1),
		EndDate:             types.NewDate(2025, 4, 15),
		Limit:               decimal.NewFromFloat(100),
		Recurring:           true,
		RecurrenceFrequency: frequency(types.FrequencyMonthly),
		RecurrenceEndDate:   &end,
	})

	recurrer := services.NewRecurrer(models.DB)
	created, err := recurrer.AdvanceRecurring(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 0, created, "A budget past its recurrence end date generated a new period")
}

// A recurring budget without a frequency is skipped, not an error.
func (suite *TestSuiteStandard) TestAdvanceRecurringMissingFrequency() {
	category := suite.createTestCategory(models.Category{})

	_ = suite.createTestBudget(models.Budget{
		CategoryID: category.ID,
		PeriodType: types.PeriodHalfMonth1,
		StartDate:  types.NewDate(2025, 4, 1),
		EndDate:    types.NewDate(2025, 4, 15),
		Limit:      decimal.NewFromFloat(100),
		Recurring:  true,
	})

	recurrer := services.NewRecurrer(models.DB)
	created, err := recurrer.AdvanceRecurring(time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 0, created)
}

// A budget whose period has not elapsed yet stays untouched.
func (suite *TestSuiteStandard) TestAdvanceRecurringNotElapsed() {
	category := suite.createTestCategory(models.Category{})

	_ = suite.createTestBudget(models.Budget{
		CategoryID:          category.ID,
		PeriodType:          types.PeriodHalfMonth1,
		StartDate:           types.NewDate(2025, 4, 1),
		EndDate:             types.NewDate(2025, 4, 15),
		Limit:               decimal.NewFromFloat(100),
		Recurring:           true,
		RecurrenceFrequency: frequency(types.FrequencyMonthly),
	})

	recurrer := services.NewRecurrer(models.DB)
	created, err := recurrer.AdvanceRecurring(time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 0, created)
}

// Advancing a recurring monthly (non half-month) budget also prorates
// the new period into its half-month budgets.
func (suite *TestSuiteStandard) TestAdvanceRecurringReprorates() {
	category := suite.createTestCategory(models.Category{})

	_ = suite.createTestBudget(models.Budget{
		CategoryID:          category.ID,
		PeriodType:          types.PeriodMonthly,
		StartDate:           types.NewDate(2025, 4, 1),
		EndDate:             types.NewDate(2025, 4, 30),
		Limit:               decimal.NewFromFloat(1000),
		Recurring:           true,
		RecurrenceFrequency: frequency(types.FrequencyMonthly),
	})

	recurrer := services.NewRecurrer(models.DB)
	created, err := recurrer.AdvanceRecurring(time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1, created)

	// The new monthly budget
	next, err := models.FindBudgetByNaturalKey(models.DB, category.ID, nil, types.PeriodMonthly, types.NewDate(2025, 5, 1))
	require.NoError(suite.T(), err)
	require.NotNil(suite.T(), next)

	// And its two half-month shares
	budgets := suite.halfMonthBudgets(category.ID)
	require.Len(suite.T(), budgets, 2)
	for _, budget := range budgets {
		assert.True(suite.T(), budget.StartDate.Time().Month() == time.May, "Prorated share is in %s, should be May", budget.StartDate.Time().Month())
		assert.True(suite.T(), budget.Limit.Equal(decimal.NewFromFloat(500)))
	}
}

// Advancing across a year boundary works: December recurs into
// January of the next year.
func (suite *TestSuiteStandard) TestAdvanceRecurringYearBoundary() {
	category := suite.createTestCategory(models.Category{})

	_ = suite.createTestBudget(models.Budget{
		CategoryID:          category.ID,
		PeriodType:          types.PeriodHalfMonth1,
		StartDate:           types.NewDate(2025, 12, 1),
		EndDate:             types.NewDate(2025, 12, 15),
		Limit:               decimal.NewFromFloat(100),
		Recurring:           true,
		RecurrenceFrequency: frequency(types.FrequencyMonthly),
	})

	recurrer := services.NewRecurrer(models.DB)
	created, err := recurrer.AdvanceRecurring(time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1, created)

	next, err := models.FindBudgetByNaturalKey(models.DB, category.ID, nil, types.PeriodHalfMonth1, types.NewDate(2026, 1, 1))
	require.NoError(suite.T(), err)
	assert.NotNil(suite.T(), next)
}
