package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"diagnoease-backend/internal/transport"
)

type TokenRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

// IssueToken signs a token for the supplied email with no credential check.
// The frontend calls this after its own identity-provider sign-in; anyone who
// can reach the endpoint can mint a token for any email, so authorization
// decisions must always go through the stored role, never the token alone.
func (s *Server) IssueToken(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	var req TokenRequest
	if err := decodeJSON(r, &req); err != nil {
		log.Warn("jwt issue: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.Val.Struct(req); err != nil {
		log.Warn("jwt issue: validation error")
		details := validationDetails(s.Val.ValidationErrors(err))
		transport.WriteError(w, http.StatusBadRequest, "validation error", details)
		return
	}

	if s.Tokens == nil {
		log.Warn("jwt issue: not configured")
		transport.WriteError(w, http.StatusServiceUnavailable, "auth not configured", nil)
		return
	}

	token, err := s.Tokens.NewToken(req.Email)
	if err != nil {
		log.Error("jwt issue: token error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "token error", nil)
		return
	}

	log.Info("jwt issue: ok", slog.String("email", req.Email))
	transport.WriteJSON(w, http.StatusOK, TokenResponse{Token: token})
}

// Logout clears the legacy cookie-based token. The bearer-header scheme is
// primary; this only exists for clients that still carry the cookie.
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   s.Cfg.Env == "production",
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(-1 * time.Hour),
		MaxAge:   -1,
	})
	log.Info("logout: ok")
	transport.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}
