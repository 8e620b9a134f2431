package v1

import (
	"errors"
	"net/http"

	"github.com/finanzas/backend/internal/models"
)

type httpError struct {
	Error string `json:"error" example:"the specified resource ID is not a valid UUID"`
}

// status returns the appropriate status for a database error
func status(err error) int {
	if errors.Is(err, models.ErrGeneral) {
		return http.StatusInternalServerError
	}

	if errors.Is(err, models.ErrResourceNotFound) {
		return http.StatusNotFound
	}

	return http.StatusBadRequest
}

// Budget errors
var (
	errRecurrenceFrequencyMissing = errors.New("a recurring budget needs a recurrence frequency")
)

// Sync errors
var (
	errSyncNotConfigured = errors.New("sync is not configured, set REMOTE_DB_DSN to enable it")
)
