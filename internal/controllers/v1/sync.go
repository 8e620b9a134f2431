package v1

import (
	"net/http"

	"github.com/finanzas/backend/internal/httputil"
	"github.com/finanzas/backend/internal/syncer"
	"github.com/gin-gonic/gin"
)

// SyncState reports the state of the sync reconciler.
type SyncState struct {
	State syncer.State `json:"state" example:"idle"` // State of the reconciler, one of idle, running, failed
}

type SyncStateResponse struct {
	Data  *SyncState `json:"data"`                                                                // The reconciler state
	Error *string    `json:"error" example:"sync is not configured, set REMOTE_DB_DSN to enable it"` // The error, if any occurred
}

// RegisterSyncRoutes registers the routes for sync with
// the RouterGroup that is passed.
func (co Controller) RegisterSyncRoutes(r *gin.RouterGroup) {
	r.OPTIONS("", co.OptionsSync)
	r.GET("", co.GetSyncState)
	r.POST("", co.TriggerSync)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Sync
// @Success		204
// @Router			/v1/sync [options]
func (co Controller) OptionsSync(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Sync state
// @Description	Returns the state of the sync reconciler
// @Tags			Sync
// @Produce		json
// @Success		200	{object}	SyncStateResponse
// @Failure		503	{object}	SyncStateResponse
// @Router			/v1/sync [get]
func (co Controller) GetSyncState(c *gin.Context) {
	if co.reconciler == nil {
		s := errSyncNotConfigured.Error()
		c.JSON(http.StatusServiceUnavailable, SyncStateResponse{
			Error: &s,
		})
		return
	}

	c.JSON(http.StatusOK, SyncStateResponse{
		Data: &SyncState{State: co.reconciler.State()},
	})
}

// @Summary		Trigger sync
// @Description	Nudges the sync worker to reconcile with the remote store. Clients call this when connectivity is restored.
// @Tags			Sync
// @Produce		json
// @Success		202	{object}	SyncStateResponse
// @Failure		503	{object}	SyncStateResponse
// @Router			/v1/sync [post]
func (co Controller) TriggerSync(c *gin.Context) {
	if co.worker == nil || co.reconciler == nil {
		s := errSyncNotConfigured.Error()
		c.JSON(http.StatusServiceUnavailable, SyncStateResponse{
			Error: &s,
		})
		return
	}

	co.worker.Notify()

	c.JSON(http.StatusAccepted, SyncStateResponse{
		Data: &SyncState{State: co.reconciler.State()},
	})
}
