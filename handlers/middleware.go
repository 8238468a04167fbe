package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/camden-git/jeudelamort/models"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// ContextKey is a custom type for context keys to avoid collisions.
type ContextKey string

const (
	// UserContextKey is the key used to store the account in the request context.
	UserContextKey ContextKey = "user"
)

// Authenticator resolves a session token to its account.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.Account, error)
}

// AccountFromContext returns the signed-in account, or nil.
func AccountFromContext(ctx context.Context) *models.Account {
	account, _ := ctx.Value(UserContextKey).(*models.Account)
	return account
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// AuthMiddleware rejects requests without a valid bearer token and stores the
// account in the request context.
func AuthMiddleware(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				WriteAPIError(w, http.StatusUnauthorized, "not_authenticated", "Vous devez être connecté")
				return
			}
			account, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				e := classify(err)
				WriteAPIError(w, http.StatusUnauthorized, e.code, e.detail)
				return
			}
			ctx := context.WithValue(r.Context(), UserContextKey, account)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth attaches the account when a valid token is given, from the
// Authorization header or the token query parameter, and otherwise lets the
// request through anonymously.
func OptionalAuth(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				token = r.URL.Query().Get("token")
			}
			if token != "" {
				if account, err := auth.Authenticate(r.Context(), token); err == nil {
					r = r.WithContext(context.WithValue(r.Context(), UserContextKey, account))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireGlobalPermission checks that the authenticated account holds
// permission. It must run after AuthMiddleware.
func RequireGlobalPermission(permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			account := AccountFromContext(r.Context())
			if account == nil {
				WriteAPIError(w, http.StatusUnauthorized, "not_authenticated", "Vous devez être connecté")
				return
			}
			if !account.HasGlobalPermission(permission) {
				WriteAPIError(w, http.StatusForbidden, "forbidden", "Permission requise : "+permission)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequestLogger logs one line per request through logger.
func RequestLogger(logger *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.WithFields(logrus.Fields{
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     ww.Status(),
				"bytes":      ww.BytesWritten(),
				"duration":   time.Since(start).String(),
				"request_id": middleware.GetReqID(r.Context()),
			}).Info("http request")
		})
	}
}
