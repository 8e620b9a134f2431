package syncer

import (
	"context"
	"errors"
	"sync"

	"github.com/finanzas/backend/internal/models"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// State is the observable condition of the reconciler.
type State string

const (
	// StateIdle means no pass is in progress and the last one, if
	// any, succeeded or was deferred for lack of connectivity.
	StateIdle State = "idle"
	// StateRunning means a pass is in progress. Further calls to
	// TryReconcile are silent no-ops until it finishes.
	StateRunning State = "running"
	// StateFailed means the last pass ended early on a remote or
	// storage error. Pending records stay pending and are picked up
	// by the next pass.
	StateFailed State = "failed"
)

// Reconciler merges the local store with the remote store: pull
// first, then push, so a record uploaded in an earlier pass is never
// re-downloaded as a duplicate while still flagged pending.
type Reconciler struct {
	db      *gorm.DB
	gateway Gateway

	mu    sync.Mutex
	state State
}

func NewReconciler(db *gorm.DB, gateway Gateway) *Reconciler {
	return &Reconciler{
		db:      db,
		gateway: gateway,
		state:   StateIdle,
	}
}

// State returns the current reconciler state.
func (r *Reconciler) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// begin claims the guard. It reports false when a pass is already in
// progress.
func (r *Reconciler) begin() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == StateRunning {
		return false
	}

	r.state = StateRunning
	return true
}

// finish releases the guard, recording whether the pass failed.
func (r *Reconciler) finish(failed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if failed {
		r.state = StateFailed
		return
	}

	r.state = StateIdle
}

// TryReconcile runs one reconciliation pass unless one is already in
// progress, in which case the call is a silent no-op.
//
// An unreachable remote is a deferred retry, not a failure: the pass
// ends immediately and the state returns to idle. Errors during the
// pass are logged, end the pass early with state failed, and do not
// propagate; records that were not pushed stay pending.
func (r *Reconciler) TryReconcile(ctx context.Context) {
	if !r.begin() {
		log.Debug().Msg("sync already in progress, skipping")
		return
	}

	if err := r.gateway.Ping(ctx); err != nil {
		log.Debug().Err(err).Msg("remote store unreachable, deferring sync")
		r.finish(false)
		return
	}

	err := r.reconcile(ctx)
	if err != nil {
		log.Error().Err(err).Msg("sync pass failed")
		r.finish(true)
		return
	}

	log.Debug().Msg("sync pass completed")
	r.finish(false)
}

// reconcile is one full pass: pull categories, transactions and
// budgets, then push pending transactions and budgets.
func (r *Reconciler) reconcile(ctx context.Context) error {
	steps := []func(context.Context) error{
		r.pullCategories,
		r.pullTransactions,
		r.pullBudgets,
		r.pushTransactions,
		r.pushBudgets,
	}

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := step(ctx); err != nil {
			return err
		}
	}

	return nil
}

// pullCategories inserts remote categories that do not exist locally.
// Categories come first so that pulled budgets and transactions can
// reference them.
func (r *Reconciler) pullCategories(ctx context.Context) error {
	remote, err := r.gateway.Categories(ctx)
	if err != nil {
		return err
	}

	for _, category := range remote {
		var count int64
		err := r.db.Model(&models.Category{}).Where("id = ?", category.ID).Count(&count).Error
		if err != nil {
			return err
		}

		if count > 0 {
			continue
		}

		if err := r.db.Create(&category).Error; err != nil {
			return err
		}
	}

	return nil
}

// pullTransactions inserts remote transactions that do not exist
// locally, already marked synced. The insert goes through the model
// hooks, so pulled expenses are booked against local budgets.
func (r *Reconciler) pullTransactions(ctx context.Context) error {
	remote, err := r.gateway.Transactions(ctx)
	if err != nil {
		return err
	}

	for _, transaction := range remote {
		var count int64
		err := r.db.Model(&models.Transaction{}).Where("id = ?", transaction.ID).Count(&count).Error
		if err != nil {
			return err
		}

		if count > 0 {
			continue
		}

		transaction.SyncStatus = models.SyncSynced
		if err := r.db.Create(&transaction).Error; err != nil {
			return err
		}
	}

	return nil
}

// pullBudgets inserts unknown remote budgets as synced and merges
// remote state into budgets that exist locally.
func (r *Reconciler) pullBudgets(ctx context.Context) error {
	remote, err := r.gateway.Budgets(ctx)
	if err != nil {
		return err
	}

	for _, budget := range remote {
		var local models.Budget
		err := r.db.First(&local, "id = ?", budget.ID).Error

		switch {
		case err == nil:
			merged := mergeBudget(local, budget)
			if err := r.db.Save(&merged).Error; err != nil {
				return err
			}

		case errors.Is(err, models.ErrResourceNotFound) || errors.Is(err, gorm.ErrRecordNotFound):
			existing, findErr := models.FindBudgetByNaturalKey(r.db, budget.CategoryID, budget.SubcategoryID, budget.PeriodType, budget.StartDate)
			if findErr != nil {
				return findErr
			}

			if existing != nil {
				// Same budget created independently on two devices
				// under different ids. Merge into the local one, the
				// push pass re-uploads it under the local id.
				merged := mergeBudget(*existing, budget)
				if err := r.db.Save(&merged).Error; err != nil {
					return err
				}
				continue
			}

			budget.SyncStatus = models.SyncSynced
			if err := r.db.Create(&budget).Error; err != nil {
				return err
			}

		default:
			return err
		}
	}

	return nil
}

// mergeBudget merges a remote budget into the local copy field by
// field: a remote value that is present wins, an absent one keeps the
// local value. This is last-remote-wins per field, not per record.
func mergeBudget(local, remote models.Budget) models.Budget {
	merged := local

	if !remote.Limit.IsZero() {
		merged.Limit = remote.Limit
	}

	if !remote.Spent.IsZero() {
		merged.Spent = remote.Spent
	}

	if remote.Notes != "" {
		merged.Notes = remote.Notes
	}

	if !remote.EndDate.IsZero() {
		merged.EndDate = remote.EndDate
	}

	if remote.Recurring {
		merged.Recurring = true
	}

	if remote.RecurrenceFrequency != nil {
		merged.RecurrenceFrequency = remote.RecurrenceFrequency
	}

	if remote.RecurrenceEndDate != nil {
		merged.RecurrenceEndDate = remote.RecurrenceEndDate
	}

	return merged
}

// pushTransactions uploads pending transactions and marks them
// synced.
func (r *Reconciler) pushTransactions(ctx context.Context) error {
	var pending []models.Transaction
	err := r.db.Where("sync_status = ?", models.SyncPending).Find(&pending).Error
	if err != nil {
		return err
	}

	if len(pending) == 0 {
		return nil
	}

	upload := make([]models.Transaction, len(pending))
	for i, transaction := range pending {
		transaction.SyncStatus = models.SyncSynced
		upload[i] = transaction
	}

	if err := r.gateway.UpsertTransactions(ctx, upload); err != nil {
		return err
	}

	for _, transaction := range pending {
		err := r.db.Model(&transaction).Update("sync_status", models.SyncSynced).Error
		if err != nil {
			return err
		}
	}

	return nil
}

// pushBudgets uploads pending budgets and marks them synced.
func (r *Reconciler) pushBudgets(ctx context.Context) error {
	var pending []models.Budget
	err := r.db.Where("sync_status = ?", models.SyncPending).Find(&pending).Error
	if err != nil {
		return err
	}

	if len(pending) == 0 {
		return nil
	}

	upload := make([]models.Budget, len(pending))
	for i, budget := range pending {
		budget.SyncStatus = models.SyncSynced
		upload[i] = budget
	}

	if err := r.gateway.UpsertBudgets(ctx, upload); err != nil {
		return err
	}

	for _, budget := range pending {
		err := r.db.Model(&budget).Update("sync_status", models.SyncSynced).Error
		if err != nil {
			return err
		}
	}

	return nil
}
