package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"diagnoease-backend/internal/models"
	"diagnoease-backend/internal/transport"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AppointmentsByTest lists every booking for a test, optionally narrowed to
// one user's email via the query string.
func (s *Server) AppointmentsByTest(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	testID := chi.URLParam(r, "testId")
	if testID == "" {
		log.Warn("appointments by test: missing test id")
		transport.WriteError(w, http.StatusBadRequest, "missing test id", nil)
		return
	}

	filter := bson.M{"testData._id": testID}
	if email := strings.TrimSpace(r.URL.Query().Get("email")); email != "" {
		filter["user.email"] = email
	}

	s.listAppointments(w, r, log, filter, "appointments by test")
}

// AppointmentsByUser lists every booking an email owns, any status.
func (s *Server) AppointmentsByUser(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	email := chi.URLParam(r, "email")
	if email == "" {
		log.Warn("appointments by user: missing email")
		transport.WriteError(w, http.StatusBadRequest, "missing email", nil)
		return
	}

	s.listAppointments(w, r, log, bson.M{"user.email": email}, "appointments by user")
}

// UpcomingAppointments lists an email's pending bookings.
func (s *Server) UpcomingAppointments(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	email := chi.URLParam(r, "email")
	if email == "" {
		log.Warn("appointments upcoming: missing email")
		transport.WriteError(w, http.StatusBadRequest, "missing email", nil)
		return
	}

	filter := bson.M{"user.email": email, "status": models.AppointmentStatusPending}
	s.listAppointments(w, r, log, filter, "appointments upcoming")
}

// TestResults lists an email's delivered bookings, result payload included.
func (s *Server) TestResults(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	email := chi.URLParam(r, "email")
	if email == "" {
		log.Warn("test results: missing email")
		transport.WriteError(w, http.StatusBadRequest, "missing email", nil)
		return
	}

	filter := bson.M{"user.email": email, "status": models.AppointmentStatusDelivered}
	s.listAppointments(w, r, log, filter, "test results")
}

func (s *Server) listAppointments(w http.ResponseWriter, r *http.Request, log *slog.Logger, filter bson.M, op string) {
	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.Cols.Appointments.Find(ctx, filter, opts)
	if err != nil {
		log.Error(op+": database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}
	defer cursor.Close(ctx)

	items := make([]map[string]interface{}, 0)
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err == nil {
			items = append(items, normalizeID(doc))
		}
	}
	if err := cursor.Err(); err != nil {
		log.Error(op+": cursor error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	log.Info(op+": ok", slog.Int("count", len(items)))
	transport.WriteJSON(w, http.StatusOK, items)
}
