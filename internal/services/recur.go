package services

import (
	"fmt"
	"time"

	"github.com/finanzas/backend/internal/models"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Recurrer advances recurring budgets into their next period once the
// current one has elapsed.
type Recurrer struct {
	db       *gorm.DB
	prorator Prorator
}

func NewRecurrer(db *gorm.DB) Recurrer {
	return Recurrer{db: db, prorator: NewProrator(db)}
}

// AdvanceRecurring creates the next period's budget for every
// recurring budget whose period has elapsed as of the given time. It
// returns the number of budgets created.
//
// A budget whose recurrence end date has passed is skipped. A
// recurring budget without a frequency is skipped with a warning,
// such records can arrive via sync from old clients and must not
// break everything else.
//
// The operation is idempotent: the next period is looked up by its
// natural key before creation, so a second run within the same period
// creates nothing.
func (r Recurrer) AdvanceRecurring(asOf time.Time) (int, error) {
	var budgets []models.Budget
	err := r.db.Where(&models.Budget{Recurring: true}).Find(&budgets).Error
	if err != nil {
		return 0, err
	}

	created := 0
	for _, budget := range budgets {
		ok, err := r.advance(budget, asOf)
		if err != nil {
			return created, fmt.Errorf("advancing recurring budget %s: %w", budget.ID, err)
		}

		if ok {
			created++
		}
	}

	return created, nil
}

// advance moves a single recurring budget to its next period. It
// reports whether a budget was created.
func (r Recurrer) advance(budget models.Budget, asOf time.Time) (bool, error) {
	if budget.RecurrenceEndDate != nil && budget.RecurrenceEndDate.BeforeTime(asOf) {
		return false, nil
	}

	if budget.RecurrenceFrequency == nil {
		log.Warn().
			Str("budget", budget.ID.String()).
			Msg("recurring budget has no recurrence frequency, skipping")
		return false, nil
	}

	// The period is only over once its end date has passed
	if !budget.EndDate.BeforeTime(asOf) {
		return false, nil
	}

	next, err := budget.Period().Advance(*budget.RecurrenceFrequency)
	if err != nil {
		return false, err
	}

	existing, err := models.FindBudgetByNaturalKey(r.db, budget.CategoryID, budget.SubcategoryID, budget.PeriodType, next.Start)
	if err != nil {
		return false, err
	}

	if existing != nil {
		return false, nil
	}

	generation := models.Budget{
		CategoryID:          budget.CategoryID,
		SubcategoryID:       budget.SubcategoryID,
		PeriodType:          budget.PeriodType,
		StartDate:           next.Start,
		EndDate:             next.End,
		Limit:               budget.Limit,
		Spent:               decimal.Zero,
		Notes:               budget.Notes,
		Recurring:           true,
		RecurrenceFrequency: budget.RecurrenceFrequency,
		RecurrenceEndDate:   budget.RecurrenceEndDate,
	}

	err = r.db.Create(&generation).Error
	if err != nil {
		return false, err
	}

	if !budget.PeriodType.IsHalfMonth() {
		err = r.prorator.Prorate(budget.CategoryID, budget.SubcategoryID, budget.Limit, budget.PeriodType, budget.Notes, next.Start.Time())
		if err != nil {
			return true, err
		}
	}

	return true, nil
}
