package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"gorm.io/gorm"

	"padoca/internal/apperr"
	applog "padoca/internal/log"
	"padoca/models"
)

const (
	sessionAuthenticatedKey = "auth:authenticated"
	sessionUserIDKey        = "auth:user:id"
	sessionUserEmailKey     = "auth:user:email"
	sessionUserRoleKey      = "auth:user:role"
)

var (
	sessionManager *scs.SessionManager
	database       *gorm.DB
	imageDir       = "public/images"
)

// Configure installs the shared dependencies used by the HTTP handlers.
func Configure(sm *scs.SessionManager, db *gorm.DB) {
	sessionManager = sm
	database = db
}

// SetImageDir overrides where recipe images are stored, used by the server
// bootstrap and by tests.
func SetImageDir(dir string) {
	if dir != "" {
		imageDir = dir
	}
}

func establishSession(r *http.Request, user *models.User) error {
	if sessionManager == nil {
		return errors.New("session manager not configured")
	}
	if err := sessionManager.RenewToken(r.Context()); err != nil {
		return err
	}
	sessionManager.Put(r.Context(), sessionAuthenticatedKey, true)
	sessionManager.Put(r.Context(), sessionUserIDKey, int(user.ID))
	sessionManager.Put(r.Context(), sessionUserEmailKey, user.Email)
	sessionManager.Put(r.Context(), sessionUserRoleKey, user.Role)
	return nil
}

// ActiveSession returns true when the current request has an authenticated session.
func ActiveSession(r *http.Request) bool {
	if sessionManager == nil {
		return false
	}
	return sessionManager.GetBool(r.Context(), sessionAuthenticatedKey) &&
		sessionManager.GetInt(r.Context(), sessionUserIDKey) > 0
}

func currentRole(r *http.Request) string {
	if sessionManager == nil {
		return ""
	}
	return sessionManager.GetString(r.Context(), sessionUserRoleKey)
}

// RequireAuthentication rejects requests without an active session.
func RequireAuthentication(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !ActiveSession(r) {
			applog.Debug(r.Context(), "unauthenticated request rejected", "path", r.URL.Path)
			writeJSONError(w, http.StatusUnauthorized, "acesso negado: faça login para continuar")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects requests whose session does not carry the admin role.
// It must wrap handlers already behind RequireAuthentication.
func RequireAdmin(next http.Handler) http.Handler {
	return RequireAuthentication(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if currentRole(r) != models.RoleAdmin {
			applog.Debug(r.Context(), "non-admin request rejected", "path", r.URL.Path, "role", currentRole(r))
			writeJSONError(w, http.StatusForbidden, "acesso negado: requer privilégios de administrador")
			return
		}
		next.ServeHTTP(w, r)
	}))
}

func requireDatabase(w http.ResponseWriter, r *http.Request) bool {
	if database == nil {
		applog.Debug(r.Context(), "request without database", "path", r.URL.Path)
		writeJSONError(w, http.StatusServiceUnavailable, "serviço indisponível")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		applog.Error(context.Background(), "failed to encode json response", "error", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeDomainError translates a core error to its HTTP status. Internal
// failures are logged and masked behind the fallback message; every other
// class surfaces its own message so callers can self-diagnose.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := apperr.Status(err)
	if status == http.StatusInternalServerError {
		applog.Error(r.Context(), fallback, "error", err, "path", r.URL.Path)
		writeJSONError(w, status, fallback)
		return
	}
	writeJSONError(w, status, err.Error())
}
