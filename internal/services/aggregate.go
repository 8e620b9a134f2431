package services

import (
	"fmt"
	"sort"
	"time"

	"github.com/finanzas/backend/internal/models"
	"github.com/finanzas/backend/internal/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Aggregator rolls budgets and spend up the category hierarchy.
type Aggregator struct {
	db *gorm.DB
}

func NewAggregator(db *gorm.DB) Aggregator {
	return Aggregator{db: db}
}

// CategoryAggregate is the rolled up budget state of one top level
// category for one period.
type CategoryAggregate struct {
	CategoryID uuid.UUID       `json:"categoryId"`
	Limit      decimal.Decimal `json:"limit"`
	Spent      decimal.Decimal `json:"spent"`

	// Percentage is unclamped and drives the alert logic,
	// DisplayPercentage is clamped to [0, 100] for rendering.
	Percentage        decimal.Decimal `json:"percentage"`
	DisplayPercentage decimal.Decimal `json:"displayPercentage"`
	Warning           bool            `json:"warning"`

	// ConsolidatedID is set when no budget exists at the category
	// level itself and the totals are derived purely from subcategory
	// budgets. Such a consolidated result is never persisted and not
	// editable; the marker lets callers tell it apart from a real
	// budget.
	ConsolidatedID string `json:"consolidatedId,omitempty"`

	Subcategories []SubcategoryAggregate `json:"subcategories"`
}

// SubcategoryAggregate is the summed budget state of one subcategory.
type SubcategoryAggregate struct {
	SubcategoryID uuid.UUID       `json:"subcategoryId"`
	Name          string          `json:"name"`
	Limit         decimal.Decimal `json:"limit"`
	Spent         decimal.Decimal `json:"spent"`
	Percentage    decimal.Decimal `json:"percentage"`
}

// SubcategorySpend is the expense total of one subcategory, computed
// from transactions. It backs the breakdown for categories that only
// budget at the parent level.
type SubcategorySpend struct {
	SubcategoryID uuid.UUID       `json:"subcategoryId"`
	Name          string          `json:"name"`
	Spent         decimal.Decimal `json:"spent"`
}

// alertThreshold is the unclamped percentage above which a category is
// flagged.
var alertThreshold = decimal.NewFromInt(90)

// Aggregate sums the budgets of a category and its subcategories for
// the period of the given type containing asOf.
//
// Direct budgets (no subcategory) and subcategory budgets are summed
// separately; the category total is the sum of both. When only
// subcategory budgets exist the result is consolidated, see
// CategoryAggregate.ConsolidatedID.
func (a Aggregator) Aggregate(categoryID uuid.UUID, periodType types.PeriodType, asOf time.Time) (CategoryAggregate, error) {
	aggregate := CategoryAggregate{
		CategoryID:    categoryID,
		Subcategories: []SubcategoryAggregate{},
	}

	var category models.Category
	err := a.db.First(&category, "id = ?", categoryID).Error
	if err != nil {
		return aggregate, err
	}

	period, err := types.ComputePeriod(periodType, asOf)
	if err != nil {
		return aggregate, err
	}

	var budgets []models.Budget
	err = a.db.
		Where("category_id = ?", categoryID).
		Where("period_type = ?", periodType).
		Where("start_date = date(?)", period.Start).
		Find(&budgets).Error
	if err != nil {
		return aggregate, err
	}

	type sums struct {
		limit decimal.Decimal
		spent decimal.Decimal
	}

	direct := sums{limit: decimal.Zero, spent: decimal.Zero}
	hasDirect := false
	bySubcategory := make(map[uuid.UUID]sums)

	for _, budget := range budgets {
		if budget.SubcategoryID == nil {
			direct.limit = direct.limit.Add(budget.Limit)
			direct.spent = direct.spent.Add(budget.Spent)
			hasDirect = true
			continue
		}

		s := bySubcategory[*budget.SubcategoryID]
		s.limit = s.limit.Add(budget.Limit)
		s.spent = s.spent.Add(budget.Spent)
		bySubcategory[*budget.SubcategoryID] = s
	}

	aggregate.Limit = direct.limit
	aggregate.Spent = direct.spent

	for subcategoryID, s := range bySubcategory {
		var subcategory models.Category
		err := a.db.First(&subcategory, "id = ?", subcategoryID).Error
		if err != nil {
			return aggregate, fmt.Errorf("resolving subcategory %s: %w", subcategoryID, err)
		}

		aggregate.Subcategories = append(aggregate.Subcategories, SubcategoryAggregate{
			SubcategoryID: subcategoryID,
			Name:          subcategory.Name,
			Limit:         s.limit,
			Spent:         s.spent,
			Percentage:    percentage(s.spent, s.limit),
		})

		aggregate.Limit = aggregate.Limit.Add(s.limit)
		aggregate.Spent = aggregate.Spent.Add(s.spent)
	}

	sort.Slice(aggregate.Subcategories, func(i, j int) bool {
		return aggregate.Subcategories[i].Name < aggregate.Subcategories[j].Name
	})

	if !hasDirect && len(aggregate.Subcategories) > 0 {
		aggregate.ConsolidatedID = fmt.Sprintf("consolidated-%s", categoryID)
	}

	aggregate.Percentage = percentage(aggregate.Spent, aggregate.Limit)
	aggregate.DisplayPercentage = clampPercentage(aggregate.Percentage)
	aggregate.Warning = aggregate.Percentage.GreaterThan(alertThreshold)

	return aggregate, nil
}

// SubcategorySpend computes per-subcategory expense totals from the
// transactions of the date range. This is the breakdown shown for
// categories that only budget at the parent level.
func (a Aggregator) SubcategorySpend(categoryID uuid.UUID, period types.Period) ([]SubcategorySpend, error) {
	var transactions []models.Transaction
	err := a.db.
		Where("category_id = ?", categoryID).
		Where("subcategory_id IS NOT NULL").
		Where("amount < 0").
		Where("date >= date(?) AND date <= date(?)", period.Start, period.End).
		Find(&transactions).Error
	if err != nil {
		return nil, err
	}

	totals := make(map[uuid.UUID]decimal.Decimal)
	for _, transaction := range transactions {
		id := *transaction.SubcategoryID
		totals[id] = totals[id].Add(transaction.Amount.Abs())
	}

	spends := make([]SubcategorySpend, 0, len(totals))
	for subcategoryID, spent := range totals {
		var subcategory models.Category
		err := a.db.First(&subcategory, "id = ?", subcategoryID).Error
		if err != nil {
			return nil, fmt.Errorf("resolving subcategory %s: %w", subcategoryID, err)
		}

		spends = append(spends, SubcategorySpend{
			SubcategoryID: subcategoryID,
			Name:          subcategory.Name,
			Spent:         spent,
		})
	}

	sort.Slice(spends, func(i, j int) bool {
		return spends[i].Name < spends[j].Name
	})

	return spends, nil
}

// percentage returns spent/limit*100, or zero when there is no limit.
func percentage(spent, limit decimal.Decimal) decimal.Decimal {
	if limit.IsZero() {
		return decimal.Zero
	}

	return spent.Div(limit).Mul(decimal.NewFromInt(100)).Round(2)
}

// clampPercentage limits a percentage to [0, 100] for display.
func clampPercentage(p decimal.Decimal) decimal.Decimal {
	hundred := decimal.NewFromInt(100)

	if p.IsNegative() {
		return decimal.Zero
	}

	if p.GreaterThan(hundred) {
		return hundred
	}

	return p
}
