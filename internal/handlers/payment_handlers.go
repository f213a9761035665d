package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/hoteler/hotel-bookings/internal/domain"
	"github.com/hoteler/hotel-bookings/internal/response"
)

// maxWebhookBody bounds gateway webhook payloads.
const maxWebhookBody = 64 * 1024

type createPaymentRequest struct {
	BookingID int64 `json:"bookingId"`
}

// CreatePayment handles POST /payment: creates a gateway payment intent
// for a held booking and returns the client secret.
func (h *Handlers) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var req createPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.WriteError(w, http.StatusBadRequest, "invalid JSON format", response.CodeInvalidInput)
		return
	}

	result, err := h.paymentService.CreateIntent(r.Context(), req.BookingID)
	if err != nil {
		response.Err(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, map[string]interface{}{"status": "success", "data": result})
}

// Webhook handles POST /payment/webhook. The raw body is needed intact
// for signature verification, so it is read before any decoding.
func (h *Handlers) Webhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, "failed to read request body", response.CodeInvalidInput)
		return
	}

	err = h.paymentService.HandleWebhook(r.Context(), body, r.Header.Get("Stripe-Signature"))
	if err != nil {
		// A bad signature is a malformed request from the gateway's point
		// of view, not an auth failure of our caller.
		if errors.Is(err, domain.ErrUnauthorized) {
			response.WriteError(w, http.StatusBadRequest, "webhook signature verification failed", response.CodeInvalidInput)
			return
		}
		response.Err(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"status": "success"})
}
