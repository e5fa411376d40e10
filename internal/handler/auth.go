package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"achivo/internal/domain/apperror"
	"achivo/internal/domain/service"

	"go.uber.org/zap"
)

const defaultProvider = "google"

// CookieConfig describes the session cookie
type CookieConfig struct {
	Name   string
	Secure bool
	TTL    time.Duration
}

// AuthHandler handles sign-in and sign-out
type AuthHandler struct {
	authService service.AuthService
	siteURL     string
	cookie      CookieConfig
	logger      *zap.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService service.AuthService, siteURL string, cookie CookieConfig, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		siteURL:     strings.TrimRight(siteURL, "/"),
		cookie:      cookie,
		logger:      logger,
	}
}

// Login redirects the browser to the auth server
// @Summary Start sign-in
// @Tags auth
// @Param provider query string false "OAuth provider" default(google)
// @Success 302
// @Failure 400 {object} object{error=string}
// @Router /api/auth/login [get]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	provider := r.URL.Query().Get("provider")
	if provider == "" {
		provider = defaultProvider
	}

	redirect, err := h.authService.BeginLogin(r.Context(), provider)
	if err != nil {
		h.logger.Error("failed to begin login", zap.Error(err))
		writeError(w, err)
		return
	}

	http.Redirect(w, r, redirect.URL, http.StatusFound)
}

// Callback finishes sign-in and lands on the dashboard
// @Summary Sign-in callback
// @Tags auth
// @Param code query string false "Authorization code"
// @Param state query string false "Login state"
// @Success 302
// @Router /api/auth/callback [get]
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query()
	code := query.Get("code")
	if code == "" {
		h.redirectLoginError(w, r, "no_code")
		return
	}

	session, err := h.authService.CompleteLogin(r.Context(), code, query.Get("state"))
	if err != nil {
		h.logger.Warn("sign-in callback failed", zap.Error(err))
		h.redirectLoginError(w, r, callbackErrorCode(err))
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    session.ID.String(),
		Path:     "/",
		Expires:  session.ExpiresAt,
		MaxAge:   int(h.cookie.TTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.siteURL+"/dashboard", http.StatusFound)
}

// Logout signs out and clears the session cookie
// @Summary Sign out
// @Tags auth
// @Success 303
// @Router /api/auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if cookie, err := r.Cookie(h.cookie.Name); err == nil && cookie.Value != "" {
		if err := h.authService.Logout(r.Context(), cookie.Value); err != nil {
			h.logger.Warn("logout failed", zap.Error(err))
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.siteURL+"/login", http.StatusSeeOther)
}

func (h *AuthHandler) redirectLoginError(w http.ResponseWriter, r *http.Request, code string) {
	http.Redirect(w, r, h.siteURL+"/login?error="+url.QueryEscape(code), http.StatusFound)
}

func callbackErrorCode(err error) string {
	switch {
	case errors.Is(err, apperror.ErrAuthExchange):
		return "auth"
	case errors.Is(err, apperror.ErrAuthUnavailable):
		return "supabase"
	case errors.Is(err, apperror.ErrNoUser):
		return "no_user"
	default:
		return "general"
	}
}
