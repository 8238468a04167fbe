package handlers

import (
	"net/http"

	"github.com/camden-git/jeudelamort/services"
	"github.com/sirupsen/logrus"
)

type SetupHandler struct {
	Auth   *services.AuthService
	Logger *logrus.Logger
}

func NewSetupHandler(auth *services.AuthService, logger *logrus.Logger) *SetupHandler {
	return &SetupHandler{Auth: auth, Logger: logger}
}

// CreateFirstAdmin creates the administrator account while no account
// exists yet.
func (h *SetupHandler) CreateFirstAdmin(w http.ResponseWriter, r *http.Request) {
	var payload services.SignUpInput
	if !decodeJSON(w, r, &payload) {
		return
	}
	session, err := h.Auth.CreateFirstAdmin(r.Context(), payload)
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	h.Logger.WithField("account", session.Account.ID).Info("first administrator created")
	writeJSON(w, http.StatusCreated, session)
}
