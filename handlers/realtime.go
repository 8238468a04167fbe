package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/camden-git/jeudelamort/realtime"
	"github.com/camden-git/jeudelamort/workers"
	"github.com/sirupsen/logrus"
)

type RealtimeHandler struct {
	Hub *realtime.Hub
}

// Connect upgrades to a websocket. Signed-in players also receive their
// personal alerts.
func (h *RealtimeHandler) Connect(w http.ResponseWriter, r *http.Request) {
	var userID string
	if account := AccountFromContext(r.Context()); account != nil {
		userID = account.ID
	}
	h.Hub.ServeWS(w, r, userID)
}

// DeathSyncer runs one pass of the death sync job.
type DeathSyncer interface {
	RunOnce(ctx context.Context) (workers.SyncReport, error)
}

type AdminSyncHandler struct {
	Sync   DeathSyncer
	Logger *logrus.Logger
}

// TriggerDeathSync runs the death sync now and reports what it found.
func (h *AdminSyncHandler) TriggerDeathSync(w http.ResponseWriter, r *http.Request) {
	report, err := h.Sync.RunOnce(r.Context())
	if errors.Is(err, workers.ErrSyncInProgress) {
		WriteAPIError(w, http.StatusConflict, "sync_in_progress", "Une vérification est déjà en cours")
		return
	}
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
