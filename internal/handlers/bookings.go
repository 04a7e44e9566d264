package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"diagnoease-backend/internal/middleware"
	"diagnoease-backend/internal/models"
	"diagnoease-backend/internal/transport"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type BookingRequest struct {
	TestID string `json:"testId" validate:"required,objectid"`
}

// slotUpdater is the slice of the tests collection the slot accounting needs.
type slotUpdater interface {
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
}

var errNoSlots = errors.New("no slots available")

// reserveSlot decrements the slot counter only while slots remain, so two
// bookings racing for the last slot cannot drive the count negative: the
// loser's update matches zero documents.
func reserveSlot(ctx context.Context, tests slotUpdater, testID string) error {
	res, err := tests.UpdateOne(ctx,
		bson.M{"_id": testID, "slots": bson.M{"$gt": 0}},
		bson.M{"$inc": bson.M{"slots": -1}},
	)
	if err != nil {
		return err
	}
	if res.ModifiedCount == 0 {
		return errNoSlots
	}
	return nil
}

// releaseSlot gives a reserved slot back after a failed appointment insert,
// so the failure does not leak capacity.
func releaseSlot(ctx context.Context, tests slotUpdater, testID string) error {
	_, err := tests.UpdateOne(ctx, bson.M{"_id": testID}, bson.M{"$inc": bson.M{"slots": 1}})
	return err
}

// CreateBooking reserves a slot and records the appointment. The decrement is
// conditional on slots remaining, so two bookings racing for the last slot
// cannot drive the count negative: the loser's update matches zero documents
// and gets a 409. The appointment embeds a server-side snapshot of the test,
// never a client-supplied one.
func (s *Server) CreateBooking(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		transport.WriteError(w, http.StatusUnauthorized, "unauthorized access", nil)
		return
	}

	var req BookingRequest
	if err := decodeJSON(r, &req); err != nil {
		log.Warn("bookings create: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := s.Val.Struct(req); err != nil {
		log.Warn("bookings create: validation error")
		details := validationDetails(s.Val.ValidationErrors(err))
		transport.WriteError(w, http.StatusBadRequest, "validation error", details)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	var user models.User
	if err := s.Cols.Users.FindOne(ctx, bson.M{"email": claims.Email}).Decode(&user); err != nil {
		if err == mongo.ErrNoDocuments {
			log.Warn("bookings create: unknown user", slog.String("email", claims.Email))
			transport.WriteError(w, http.StatusForbidden, "forbidden access", nil)
			return
		}
		log.Error("bookings create: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	var test models.Test
	if err := s.Cols.Tests.FindOne(ctx, bson.M{"_id": req.TestID}).Decode(&test); err != nil {
		if err == mongo.ErrNoDocuments {
			log.Warn("bookings create: test not found", slog.String("test_id", req.TestID))
			transport.WriteError(w, http.StatusNotFound, "test not found", nil)
			return
		}
		log.Error("bookings create: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	if err := reserveSlot(ctx, s.Cols.Tests, req.TestID); err != nil {
		if err == errNoSlots {
			log.Warn("bookings create: no slots left", slog.String("test_id", req.TestID))
			transport.WriteError(w, http.StatusConflict, "no slots available", nil)
			return
		}
		log.Error("bookings create: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	appointment := models.Appointment{
		ID: primitive.NewObjectID().Hex(),
		TestData: models.TestSnapshot{
			TestID:      test.ID,
			Name:        test.Name,
			Image:       test.Image,
			Description: test.Description,
			Price:       test.Price,
			Date:        test.Date,
			Slots:       test.Slots,
		},
		User: models.BookingUser{
			Name:  user.Name,
			Email: user.Email,
		},
		Status:    models.AppointmentStatusPending,
		CreatedAt: time.Now().In(s.Cfg.Timezone),
	}

	if _, err := s.Cols.Appointments.InsertOne(ctx, appointment); err != nil {
		if relErr := releaseSlot(ctx, s.Cols.Tests, req.TestID); relErr != nil {
			log.Error("bookings create: slot restore failed", slog.String("error", relErr.Error()))
		}
		log.Error("bookings create: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	if s.Mailer != nil {
		appointmentCopy := appointment
		go s.sendBookingConfirmationEmail(log, appointmentCopy)
	}

	log.Info("bookings create: booked",
		slog.String("appointment_id", appointment.ID),
		slog.String("test_id", test.ID),
		slog.String("email", user.Email),
	)
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"message":     "Appointment Booked Successfully",
		"appointment": appointment,
	})
}

func (s *Server) sendBookingConfirmationEmail(log *slog.Logger, appointment models.Appointment) {
	ctx, cancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer cancel()

	messageID, err := s.Mailer.SendBookingConfirmation(ctx, appointment)
	if err != nil {
		log.Warn("bookings email: send failed",
			slog.String("appointment_id", appointment.ID),
			slog.String("email", appointment.User.Email),
			slog.String("error", err.Error()),
		)
		return
	}

	log.Info("bookings email: sent",
		slog.String("appointment_id", appointment.ID),
		slog.String("email", appointment.User.Email),
		slog.String("message_id", messageID),
	)
}

// CancelBooking deletes the appointment outright. The reserved slot is not
// restored.
func (s *Server) CancelBooking(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	id := chi.URLParam(r, "id")
	if id == "" {
		log.Warn("bookings cancel: missing id")
		transport.WriteError(w, http.StatusBadRequest, "missing id", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := s.Cols.Appointments.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		log.Error("bookings cancel: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	log.Info("bookings cancel: ok", slog.String("appointment_id", id), slog.Int64("deleted", res.DeletedCount))
	transport.WriteJSON(w, http.StatusOK, map[string]int64{"deletedCount": res.DeletedCount})
}

type ReportSubmitRequest struct {
	Result             string `json:"result" validate:"required"`
	ResultDeliveryDate string `json:"resultDeliveryDate" validate:"required,isodate"`
}

// reportFilter binds the appointment id and the owning email together, so a
// mismatched pair matches nothing and a report can never land on another
// account's booking.
func reportFilter(id, email string) bson.M {
	return bson.M{"_id": id, "user.email": email}
}

// SubmitReport transitions an appointment to delivered. The filter matches id
// AND owning email together, so a mismatched pair updates nothing and a report
// can never land on another account's booking. There is no way back to pending.
func (s *Server) SubmitReport(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	email := chi.URLParam(r, "email")
	id := chi.URLParam(r, "id")
	if email == "" || id == "" {
		log.Warn("report submit: missing email or id")
		transport.WriteError(w, http.StatusBadRequest, "missing email or id", nil)
		return
	}

	var req ReportSubmitRequest
	if err := decodeJSON(r, &req); err != nil {
		log.Warn("report submit: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := s.Val.Struct(req); err != nil {
		log.Warn("report submit: validation error")
		details := validationDetails(s.Val.ValidationErrors(err))
		transport.WriteError(w, http.StatusBadRequest, "validation error", details)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	update := bson.M{
		"$set": bson.M{
			"result":             req.Result,
			"resultDeliveryDate": req.ResultDeliveryDate,
			"status":             models.AppointmentStatusDelivered,
		},
	}
	res, err := s.Cols.Appointments.UpdateOne(ctx, reportFilter(id, email), update)
	if err != nil {
		log.Error("report submit: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	if res.MatchedCount > 0 && s.Mailer != nil {
		var appointment models.Appointment
		if err := s.Cols.Appointments.FindOne(ctx, bson.M{"_id": id}).Decode(&appointment); err == nil {
			go s.sendReportDeliveredEmail(log, appointment)
		}
	}

	log.Info("report submit: ok",
		slog.String("appointment_id", id),
		slog.String("email", email),
		slog.Int64("matched", res.MatchedCount),
	)
	transport.WriteJSON(w, http.StatusOK, map[string]int64{
		"matchedCount":  res.MatchedCount,
		"modifiedCount": res.ModifiedCount,
	})
}

func (s *Server) sendReportDeliveredEmail(log *slog.Logger, appointment models.Appointment) {
	ctx, cancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer cancel()

	messageID, err := s.Mailer.SendReportDelivered(ctx, appointment)
	if err != nil {
		log.Warn("report email: send failed",
			slog.String("appointment_id", appointment.ID),
			slog.String("error", err.Error()),
		)
		return
	}

	log.Info("report email: sent",
		slog.String("appointment_id", appointment.ID),
		slog.String("message_id", messageID),
	)
}
