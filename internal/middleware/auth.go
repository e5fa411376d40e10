package middleware

import (
	"encoding/json"
	"errors"
	"net/http"

	"achivo/internal/domain/apperror"
	"achivo/internal/domain/entity"
	"achivo/internal/domain/service"

	"go.uber.org/zap"
)

// AuthMiddleware resolves the session cookie into the request principal
type AuthMiddleware struct {
	authService service.AuthService
	cookieName  string
	logger      *zap.Logger
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(authService service.AuthService, cookieName string, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
		cookieName:  cookieName,
		logger:      logger,
	}
}

// Auth rejects requests without a live session
func (m *AuthMiddleware) Auth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(m.cookieName)
		if err != nil || cookie.Value == "" {
			writeError(w, http.StatusUnauthorized, "Authentication required")
			return
		}

		principal, err := m.authService.ResolveSession(r.Context(), cookie.Value)
		if err != nil {
			if errors.Is(err, apperror.ErrUnauthenticated) {
				writeError(w, http.StatusUnauthorized, "Session expired or invalid")
				return
			}
			m.logger.Error("failed to resolve session", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Failed to resolve session")
			return
		}

		ctx := entity.ContextWithPrincipal(r.Context(), principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// GetPrincipal extracts the principal from request context
func GetPrincipal(r *http.Request) *entity.Principal {
	return entity.PrincipalFromContext(r.Context())
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{"error": msg})
}
