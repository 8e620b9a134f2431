// Package syncer reconciles the local store with a remote store. The
// reconciler is best-effort: connectivity problems defer the work,
// remote failures end a pass early and never reach the caller.
package syncer

import (
	"context"

	"github.com/finanzas/backend/internal/models"
)

// Gateway is the remote store the reconciler pulls from and pushes
// to.
//
// Upserts have to be idempotent and keyed by id so that a retried
// push after a half-failed pass does not duplicate records.
type Gateway interface {
	// Ping reports whether the remote store is reachable.
	Ping(ctx context.Context) error

	Categories(ctx context.Context) ([]models.Category, error)
	Transactions(ctx context.Context) ([]models.Transaction, error)
	Budgets(ctx context.Context) ([]models.Budget, error)

	UpsertCategories(ctx context.Context, categories []models.Category) error
	UpsertTransactions(ctx context.Context, transactions []models.Transaction) error
	UpsertBudgets(ctx context.Context, budgets []models.Budget) error
}
