package handlers

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"time"

	"diagnoease-backend/internal/transport"
)

type PaymentIntentRequest struct {
	Price float64 `json:"price" validate:"required,gt=0"`
}

type PaymentIntentResponse struct {
	ClientSecret string `json:"clientSecret"`
}

// CreatePaymentIntent converts the major-unit price to cents and asks the
// gateway for a client secret. A non-positive price is rejected with a 400
// and a body, not silently dropped.
func (s *Server) CreatePaymentIntent(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	var req PaymentIntentRequest
	if err := decodeJSON(r, &req); err != nil {
		log.Warn("payments intent: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := s.Val.Struct(req); err != nil {
		log.Warn("payments intent: validation error")
		details := validationDetails(s.Val.ValidationErrors(err))
		transport.WriteError(w, http.StatusBadRequest, "validation error", details)
		return
	}

	amountCents := int64(math.Round(req.Price * 100))
	if amountCents < 1 {
		log.Warn("payments intent: amount below one cent")
		transport.WriteError(w, http.StatusBadRequest, "amount too small", nil)
		return
	}

	if s.Payments == nil {
		log.Warn("payments intent: not configured")
		transport.WriteError(w, http.StatusServiceUnavailable, "payments not configured", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	clientSecret, err := s.Payments.CreateIntent(ctx, amountCents, "usd")
	if err != nil {
		log.Error("payments intent: gateway error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusBadGateway, "payment gateway error", nil)
		return
	}

	log.Info("payments intent: ok", slog.Int64("amount_cents", amountCents))
	transport.WriteJSON(w, http.StatusOK, PaymentIntentResponse{ClientSecret: clientSecret})
}
