// Package v1 implements the v1 REST API.
package v1

import (
	"github.com/finanzas/backend/internal/services"
	"github.com/finanzas/backend/internal/syncer"
	"gorm.io/gorm"
)

// Controller carries the dependencies of the v1 API handlers.
//
// Reconciler and Worker are nil when sync is disabled, the sync
// endpoints report that to clients.
type Controller struct {
	db *gorm.DB

	prorator   services.Prorator
	recurrer   services.Recurrer
	aggregator services.Aggregator

	reconciler *syncer.Reconciler
	worker     *syncer.Worker
}

func NewController(db *gorm.DB, reconciler *syncer.Reconciler, worker *syncer.Worker) Controller {
	return Controller{
		db:         db,
		prorator:   services.NewProrator(db),
		recurrer:   services.NewRecurrer(db),
		aggregator: services.NewAggregator(db),
		reconciler: reconciler,
		worker:     worker,
	}
}

// notifySync nudges the sync worker after a local mutation. A nil
// worker means sync is disabled.
func (co Controller) notifySync() {
	if co.worker != nil {
		co.worker.Notify()
	}
}
