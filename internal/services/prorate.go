// Package services implements the budget lifecycle engines: proration,
// recurrence and category aggregation. All engines operate on the
// local store and rely on its single-connection pool for write
// serialization.
package services

import (
	"fmt"
	"time"

	"github.com/finanzas/backend/internal/models"
	"github.com/finanzas/backend/internal/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Prorator splits a budget amount defined over a monthly, quarterly or
// yearly period into the half-month budgets that compose it. The
// half-month budgets are what spending is tracked against.
type Prorator struct {
	db *gorm.DB
}

func NewProrator(db *gorm.DB) Prorator {
	return Prorator{db: db}
}

// Prorate writes one half-month budget per sub-period of the given
// period type: 2 for monthly, 6 for quarterly, 24 for yearly. Shares
// are equal, rounded to cents, with the rounding remainder absorbed
// into the last sub-period so that the shares sum to total exactly.
//
// A sub-period budget that already exists at its natural key gets its
// limit and notes updated in place instead of a duplicate.
//
// Writes are best-effort, not transactional: a failing write
// propagates and earlier sub-periods stay written. Since the operation
// is idempotent, rerunning it completes the remainder.
func (p Prorator) Prorate(categoryID uuid.UUID, subcategoryID *uuid.UUID, total decimal.Decimal, periodType types.PeriodType, notes string, asOf time.Time) error {
	if !total.IsPositive() {
		return ErrAmountNotPositive
	}

	// Half-month budgets are the unit of proration, there is nothing
	// to split
	if periodType.IsHalfMonth() {
		return nil
	}

	err := p.db.First(&models.Category{}, "id = ?", categoryID).Error
	if err != nil {
		return err
	}

	months, err := periodMonths(periodType, asOf)
	if err != nil {
		return err
	}

	shares := splitEven(total, 2*len(months))

	for i, month := range months {
		for j, halfType := range []types.PeriodType{types.PeriodHalfMonth1, types.PeriodHalfMonth2} {
			period, err := types.ComputePeriod(halfType, month)
			if err != nil {
				return err
			}

			err = p.writeShare(categoryID, subcategoryID, halfType, period, shares[2*i+j], notes)
			if err != nil {
				return fmt.Errorf("prorating %s into %s starting %s: %w", periodType, halfType, period.Start, err)
			}
		}
	}

	return nil
}

// writeShare creates the half-month budget for one sub-period, or
// updates limit and notes when it already exists.
func (p Prorator) writeShare(categoryID uuid.UUID, subcategoryID *uuid.UUID, halfType types.PeriodType, period types.Period, share decimal.Decimal, notes string) error {
	existing, err := models.FindBudgetByNaturalKey(p.db, categoryID, subcategoryID, halfType, period.Start)
	if err != nil {
		return err
	}

	if existing != nil {
		return p.db.Model(existing).
			Select("Limit", "Notes", "SyncStatus").
			Updates(models.Budget{
				Limit:      share,
				Notes:      notes,
				SyncStatus: models.SyncPending,
			}).Error
	}

	budget := models.Budget{
		CategoryID:    categoryID,
		SubcategoryID: subcategoryID,
		PeriodType:    halfType,
		StartDate:     period.Start,
		EndDate:       period.End,
		Limit:         share,
		Spent:         decimal.Zero,
		Notes:         notes,
	}

	return p.db.Create(&budget).Error
}

// periodMonths returns one reference date per month covered by the
// period type: the month of asOf, the 3 months of its quarter or the
// 12 months of its year.
func periodMonths(periodType types.PeriodType, asOf time.Time) ([]time.Time, error) {
	period, err := types.ComputePeriod(periodType, asOf)
	if err != nil {
		return nil, err
	}

	var count int
	switch periodType {
	case types.PeriodMonthly:
		count = 1
	case types.PeriodQuarterly:
		count = 3
	case types.PeriodYearly:
		count = 12
	default:
		return nil, fmt.Errorf("%w: %s", types.ErrUnknownPeriodType, periodType)
	}

	months := make([]time.Time, 0, count)
	for i := 0; i < count; i++ {
		months = append(months, period.Start.Time().AddDate(0, i, 0))
	}

	return months, nil
}

// splitEven splits total into n shares rounded to cents. The rounding
// remainder goes into the last share, so the shares always sum to
// total exactly.
func splitEven(total decimal.Decimal, n int) []decimal.Decimal {
	share := total.Div(decimal.NewFromInt(int64(n))).Round(2)

	shares := make([]decimal.Decimal, n)
	sum := decimal.Zero
	for i := 0; i < n-1; i++ {
		shares[i] = share
		sum = sum.Add(share)
	}
	shares[n-1] = total.Sub(sum)

	return shares
}
