package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"diagnoease-backend/internal/auth"
	"diagnoease-backend/internal/cache"
	"diagnoease-backend/internal/config"
	"diagnoease-backend/internal/db"
	"diagnoease-backend/internal/middleware"
	"diagnoease-backend/internal/models"
	"diagnoease-backend/internal/payments"
	"diagnoease-backend/internal/validation"
)

type BookingMailer interface {
	SendBookingConfirmation(ctx context.Context, appointment models.Appointment) (string, error)
	SendReportDelivered(ctx context.Context, appointment models.Appointment) (string, error)
}

type Server struct {
	Cfg      *config.Config
	Cols     *db.Collections
	Val      *validation.Validator
	Log      *slog.Logger
	Cache    cache.Cache
	Tokens   *auth.Manager
	Mailer   BookingMailer
	Payments payments.Provider
}

func (s *Server) logWithRequest(r *http.Request) *slog.Logger {
	if r == nil {
		return s.Log
	}
	if id := middleware.RequestIDFromContext(r.Context()); id != "" {
		return s.Log.With(slog.String("request_id", id))
	}
	return s.Log
}
