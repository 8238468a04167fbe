package handlers

import (
	"net/http"

	"github.com/camden-git/jeudelamort/models"
	"github.com/camden-git/jeudelamort/services"
	"github.com/sirupsen/logrus"
)

type AuthHandler struct {
	Auth   *services.AuthService
	Logger *logrus.Logger
}

func NewAuthHandler(auth *services.AuthService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Auth: auth, Logger: logger}
}

type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type PasswordPayload struct {
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var payload services.SignUpInput
	if !decodeJSON(w, r, &payload) {
		return
	}
	session, err := h.Auth.SignUp(r.Context(), payload)
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	if !decodeJSON(w, r, &payload) {
		return
	}
	session, err := h.Auth.SignIn(r.Context(), payload.Email, payload.Password)
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Auth.SignOut(r.Context(), AccountFromContext(r.Context())); err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the signed-in account with its profile.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	account := AccountFromContext(r.Context())
	if account == nil {
		writeServiceError(w, h.Logger, services.ErrNotAuthenticated)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		*models.Account
		Permissions []string `json:"permissions"`
	}{account, effectivePermissions(account)})
}

func (h *AuthHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	var payload PasswordPayload
	if !decodeJSON(w, r, &payload) {
		return
	}
	session, err := h.Auth.UpdatePassword(r.Context(), AccountFromContext(r.Context()), payload.Password, payload.PasswordConfirm)
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// effectivePermissions merges direct and role-granted permissions.
func effectivePermissions(account *models.Account) []string {
	seen := make(map[string]bool)
	perms := []string{}
	add := func(keys []string) {
		for _, k := range keys {
			if !seen[k] {
				seen[k] = true
				perms = append(perms, k)
			}
		}
	}
	add(account.GlobalPermissions)
	for _, role := range account.Roles {
		if role != nil {
			add(role.GlobalPermissions)
		}
	}
	return perms
}
