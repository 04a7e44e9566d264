package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCreatePaymentIntentRejectsNonPositivePrice(t *testing.T) {
	s := testServer()

	for _, body := range []string{`{"price":0}`, `{"price":-5}`} {
		req := httptest.NewRequest(http.MethodPost, "/create-payment-intent", strings.NewReader(body))
		rec := httptest.NewRecorder()
		s.CreatePaymentIntent(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %s: expected 400, got %d", body, rec.Code)
		}
	}
}

func TestCreatePaymentIntentRejectsSubCentAmount(t *testing.T) {
	s := testServer()

	req := httptest.NewRequest(http.MethodPost, "/create-payment-intent", strings.NewReader(`{"price":0.001}`))
	rec := httptest.NewRecorder()
	s.CreatePaymentIntent(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a sub-cent amount, got %d", rec.Code)
	}
}

func TestCreatePaymentIntentUnconfigured(t *testing.T) {
	s := testServer()

	req := httptest.NewRequest(http.MethodPost, "/create-payment-intent", strings.NewReader(`{"price":49.99}`))
	rec := httptest.NewRecorder()
	s.CreatePaymentIntent(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without a configured gateway, got %d", rec.Code)
	}
}
