package syncer_test

import (
	"context"
	"sync"
	"time"

	"github.com/finanzas/backend/internal/models"
	"github.com/finanzas/backend/internal/syncer"
	"github.com/finanzas/backend/internal/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// One local pending transaction and one remote-only transaction:
// after the pass the local store has both, the pending one is synced
// and the remote store contains the local one exactly once, even
// after a second pass.
func (suite *TestSuiteStandard) TestReconcilePullAndPush() {
	category := suite.createTestCategory(models.Category{})

	local := suite.createTestTransaction(models.Transaction{
		Concept:    "Local compra",
		CategoryID: category.ID,
		Amount:     decimal.NewFromFloat(-50),
		Date:       types.NewDate(2025, 4, 3),
	})
	require.Equal(suite.T(), models.SyncPending, local.SyncStatus)

	remoteOnly := models.Transaction{
		DefaultModel: models.DefaultModel{ID: uuid.New()},
		Concept:      "Remote compra",
		CategoryID:   category.ID,
		AccountID:    local.AccountID,
		Amount:       decimal.NewFromFloat(-30),
		Date:         types.NewDate(2025, 4, 4),
		SyncStatus:   models.SyncSynced,
	}

	gateway := &memoryGateway{transactions: []models.Transaction{remoteOnly}}
	reconciler := syncer.NewReconciler(models.DB, gateway)

	reconciler.TryReconcile(context.Background())
	assert.Equal(suite.T(), syncer.StateIdle, reconciler.State())

	// Both transactions are local now, no id twice
	var transactions []models.Transaction
	require.NoError(suite.T(), models.DB.Find(&transactions).Error)
	require.Len(suite.T(), transactions, 2)

	for _, transaction := range transactions {
		assert.Equal(suite.T(), models.SyncSynced, transaction.SyncStatus, "Transaction %s is still %s", transaction.Concept, transaction.SyncStatus)
	}

	// The remote store has the local one exactly once
	count := 0
	for _, transaction := range gateway.transactions {
		if transaction.ID == local.ID {
			count++
		}
	}
	assert.Equal(suite.T(), 1, count)

	// A second pass changes nothing
	reconciler.TryReconcile(context.Background())

	require.NoError(suite.T(), models.DB.Find(&transactions).Error)
	assert.Len(suite.T(), transactions, 2, "Second pass duplicated transactions")
	assert.Len(suite.T(), gateway.transactions, 2, "Second pass duplicated remote transactions")
}

// Remote categories absent locally are pulled before anything
// referencing them.
func (suite *TestSuiteStandard) TestReconcilePullsCategories() {
	remoteCategory := models.Category{
		DefaultModel: models.DefaultModel{ID: uuid.New()},
		Name:         "Vivienda",
		Type:         models.CategoryTypeExpense,
	}

	remoteBudget := models.Budget{
		DefaultModel: models.DefaultModel{ID: uuid.New()},
		CategoryID:   remoteCategory.ID,
		PeriodType:   types.PeriodHalfMonth1,
		StartDate:    types.NewDate(2025, 4, 1),
		EndDate:      types.NewDate(2025, 4, 15),
		Limit:        decimal.NewFromFloat(800),
		SyncStatus:   models.SyncSynced,
	}

	gateway := &memoryGateway{
		categories: []models.Category{remoteCategory},
		budgets:    []models.Budget{remoteBudget},
	}
	reconciler := syncer.NewReconciler(models.DB, gateway)

	reconciler.TryReconcile(context.Background())
	require.Equal(suite.T(), syncer.StateIdle, reconciler.State())

	var category models.Category
	require.NoError(suite.T(), models.DB.First(&category, "id = ?", remoteCategory.ID).Error)
	assert.Equal(suite.T(), "Vivienda", category.Name)

	var budget models.Budget
	require.NoError(suite.T(), models.DB.First(&budget, "id = ?", remoteBudget.ID).Error)
	assert.Equal(suite.T(), models.SyncSynced, budget.SyncStatus)
}

// Budgets existing on both sides are merged field by field with the
// remote value winning where present.
func (suite *TestSuiteStandard) TestReconcileMergesBudgets() {
	category := suite.createTestCategory(models.Category{})

	local := suite.createTestBudget(models.Budget{
		CategoryID: category.ID,
		PeriodType: types.PeriodHalfMonth1,
		StartDate:  types.NewDate(2025, 4, 1),
		EndDate:    types.NewDate(2025, 4, 15),
		Limit:      decimal.NewFromFloat(100),
		Notes:      "local notes",
	})

	remote := local
	remote.Limit = decimal.NewFromFloat(250)
	remote.Notes = "" // absent remotely, local value must survive
	remote.Spent = decimal.NewFromFloat(42)

	gateway := &memoryGateway{budgets: []models.Budget{remote}}
	reconciler := syncer.NewReconciler(models.DB, gateway)

	reconciler.TryReconcile(context.Background())
	require.Equal(suite.T(), syncer.StateIdle, reconciler.State())

	var merged models.Budget
	require.NoError(suite.T(), models.DB.First(&merged, "id = ?", local.ID).Error)

	assert.True(suite.T(), merged.Limit.Equal(decimal.NewFromFloat(250)), "Limit is %s after merge", merged.Limit)
	assert.True(suite.T(), merged.Spent.Equal(decimal.NewFromFloat(42)), "Spent is %s after merge", merged.Spent)
	assert.Equal(suite.T(), "local notes", merged.Notes, "Absent remote field overwrote the local value")
}

// The same budget created independently on two devices under
// different ids collapses into the local one via the natural key.
func (suite *TestSuiteStandard) TestReconcileNaturalKeyCollision() {
	category := suite.createTestCategory(models.Category{})

	local := suite.createTestBudget(models.Budget{
		CategoryID: category.ID,
		PeriodType: types.PeriodHalfMonth1,
		StartDate:  types.NewDate(2025, 4, 1),
		EndDate:    types.NewDate(2025, 4, 15),
		Limit:      decimal.NewFromFloat(100),
	})

	remote := models.Budget{
		DefaultModel: models.DefaultModel{ID: uuid.New()},
		CategoryID:   category.ID,
		PeriodType:   types.PeriodHalfMonth1,
		StartDate:    types.NewDate(2025, 4, 1),
		EndDate:      types.NewDate(2025, 4, 15),
		Limit:        decimal.NewFromFloat(300),
		SyncStatus:   models.SyncSynced,
	}

	gateway := &memoryGateway{budgets: []models.Budget{remote}}
	reconciler := syncer.NewReconciler(models.DB, gateway)

	reconciler.TryReconcile(context.Background())
	require.Equal(suite.T(), syncer.StateIdle, reconciler.State())

	var budgets []models.Budget
	require.NoError(suite.T(), models.DB.Where("category_id = ?", category.ID).Find(&budgets).Error)
	require.Len(suite.T(), budgets, 1, "Natural key collision created a duplicate budget")

	assert.Equal(suite.T(), local.ID, budgets[0].ID)
	assert.True(suite.T(), budgets[0].Limit.Equal(decimal.NewFromFloat(300)))
}

// An unreachable remote defers the pass: no error, state idle,
// pending records untouched.
func (suite *TestSuiteStandard) TestReconcileOffline() {
	category := suite.createTestCategory(models.Category{})
	transaction := suite.createTestTransaction(models.Transaction{
		Concept:    "Offline compra",
		CategoryID: category.ID,
		Amount:     decimal.NewFromFloat(-10),
		Date:       types.NewDate(2025, 4, 3),
	})

	gateway := &memoryGateway{offline: true}
	reconciler := syncer.NewReconciler(models.DB, gateway)

	reconciler.TryReconcile(context.Background())
	assert.Equal(suite.T(), syncer.StateIdle, reconciler.State(), "Being offline is not a failure")

	var reloaded models.Transaction
	require.NoError(suite.T(), models.DB.First(&reloaded, "id = ?", transaction.ID).Error)
	assert.Equal(suite.T(), models.SyncPending, reloaded.SyncStatus)
	assert.Empty(suite.T(), gateway.transactions, "Something was pushed while offline")
}

// A remote error ends the pass early with state failed; pending
// records stay pending for the next pass.
func (suite *TestSuiteStandard) TestReconcileRemoteError() {
	category := suite.createTestCategory(models.Category{})
	transaction := suite.createTestTransaction(models.Transaction{
		Concept:    "Compra",
		CategoryID: category.ID,
		Amount:     decimal.NewFromFloat(-10),
		Date:       types.NewDate(2025, 4, 3),
	})

	gateway := &memoryGateway{failList: true}
	reconciler := syncer.NewReconciler(models.DB, gateway)

	reconciler.TryReconcile(context.Background())
	assert.Equal(suite.T(), syncer.StateFailed, reconciler.State())

	var reloaded models.Transaction
	require.NoError(suite.T(), models.DB.First(&reloaded, "id = ?", transaction.ID).Error)
	assert.Equal(suite.T(), models.SyncPending, reloaded.SyncStatus, "A failed pass must leave records pending")

	// The failed state does not block the next pass
	gateway.mu.Lock()
	gateway.failList = false
	gateway.mu.Unlock()

	reconciler.TryReconcile(context.Background())
	assert.Equal(suite.T(), syncer.StateIdle, reconciler.State())

	require.NoError(suite.T(), models.DB.First(&reloaded, "id = ?", transaction.ID).Error)
	assert.Equal(suite.T(), models.SyncSynced, reloaded.SyncStatus)
}

// A failing upsert leaves the pushed records pending.
func (suite *TestSuiteStandard) TestReconcilePushError() {
	category := suite.createTestCategory(models.Category{})
	transaction := suite.createTestTransaction(models.Transaction{
		Concept:    "Compra",
		CategoryID: category.ID,
		Amount:     decimal.NewFromFloat(-10),
		Date:       types.NewDate(2025, 4, 3),
	})

	gateway := &memoryGateway{failUpsert: true}
	reconciler := syncer.NewReconciler(models.DB, gateway)

	reconciler.TryReconcile(context.Background())
	assert.Equal(suite.T(), syncer.StateFailed, reconciler.State())

	var reloaded models.Transaction
	require.NoError(suite.T(), models.DB.First(&reloaded, "id = ?", transaction.ID).Error)
	assert.Equal(suite.T(), models.SyncPending, reloaded.SyncStatus)
}

// A pass in progress makes further calls silent no-ops.
func (suite *TestSuiteStandard) TestReconcileGuard() {
	gateway := &blockingGateway{
		memoryGateway: memoryGateway{},
		release:       make(chan struct{}),
		entered:       make(chan struct{}),
	}
	reconciler := syncer.NewReconciler(models.DB, gateway)

	done := make(chan struct{})
	go func() {
		defer close(done)
		reconciler.TryReconcile(context.Background())
	}()

	<-gateway.entered
	assert.Equal(suite.T(), syncer.StateRunning, reconciler.State())

	// This call must return immediately without a second ping
	reconciler.TryReconcile(context.Background())

	close(gateway.release)
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		suite.Assert().FailNow("Reconcile pass did not finish")
	}

	assert.Equal(suite.T(), syncer.StateIdle, reconciler.State())

	gateway.mu.Lock()
	defer gateway.mu.Unlock()
	assert.Equal(suite.T(), 1, gateway.pings, "The re-entrant call reached the gateway")
}

// blockingGateway blocks the first Ping until released, for testing
// the re-entrancy guard.
type blockingGateway struct {
	memoryGateway
	release chan struct{}
	entered chan struct{}
	once    sync.Once
}

func (g *blockingGateway) Ping(ctx context.Context) error {
	g.once.Do(func() {
		close(g.entered)
		<-g.release
	})

	return g.memoryGateway.Ping(ctx)
}
