package v1_test

import (
	"context"
	"net/http"
	"time"

	v1 "github.com/finanzas/backend/internal/controllers/v1"
	"github.com/finanzas/backend/internal/models"
	"github.com/finanzas/backend/internal/syncer"
	"github.com/finanzas/backend/test"
)

// nopGateway is an always reachable remote store without any records.
type nopGateway struct{}

func (nopGateway) Ping(_ context.Context) error { return nil }

func (nopGateway) Categories(_ context.Context) ([]models.Category, error) {
	return nil, nil
}

func (nopGateway) Transactions(_ context.Context) ([]models.Transaction, error) {
	return nil, nil
}

func (nopGateway) Budgets(_ context.Context) ([]models.Budget, error) {
	return nil, nil
}

func (nopGateway) UpsertCategories(_ context.Context, _ []models.Category) error {
	return nil
}

func (nopGateway) UpsertTransactions(_ context.Context, _ []models.Transaction) error {
	return nil
}

func (nopGateway) UpsertBudgets(_ context.Context, _ []models.Budget) error {
	return nil
}

// Without a remote store configured the sync endpoints report that
// sync is disabled.
func (suite *TestSuiteStandard) TestSyncNotConfigured() {
	r := test.Request(suite.T(), suite.router, http.MethodGet, "http://example.com/v1/sync", nil)
	test.AssertHTTPStatus(suite.T(), http.StatusServiceUnavailable, &r)

	r = test.Request(suite.T(), suite.router, http.MethodPost, "http://example.com/v1/sync", nil)
	test.AssertHTTPStatus(suite.T(), http.StatusServiceUnavailable, &r)
}

func (suite *TestSuiteStandard) TestSyncState() {
	reconciler := syncer.NewReconciler(models.DB, nopGateway{})
	worker := syncer.NewWorker(reconciler, time.Hour)
	router := testRouter(v1.NewController(models.DB, reconciler, worker))

	r := test.Request(suite.T(), router, http.MethodGet, "http://example.com/v1/sync", nil)
	test.AssertHTTPStatus(suite.T(), http.StatusOK, &r)

	var response v1.SyncStateResponse
	test.DecodeResponse(suite.T(), &r, &response)
	suite.Require().NotNil(response.Data)
	suite.Assert().Equal(syncer.StateIdle, response.Data.State)
}

func (suite *TestSuiteStandard) TestSyncTrigger() {
	reconciler := syncer.NewReconciler(models.DB, nopGateway{})
	worker := syncer.NewWorker(reconciler, time.Hour)
	router := testRouter(v1.NewController(models.DB, reconciler, worker))

	r := test.Request(suite.T(), router, http.MethodPost, "http://example.com/v1/sync", nil)
	test.AssertHTTPStatus(suite.T(), http.StatusAccepted, &r)

	var response v1.SyncStateResponse
	test.DecodeResponse(suite.T(), &r, &response)
	suite.Require().NotNil(response.Data)
}
