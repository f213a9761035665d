package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hoteler/hotel-bookings/internal/domain"
	"github.com/hoteler/hotel-bookings/internal/listing"
	"github.com/hoteler/hotel-bookings/pkg/logger"
)

// ErrorResponse is the structured JSON error body
type ErrorResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
	Code   string `json:"code,omitempty"`
}

// Error codes
const (
	CodeInvalidInput  = "INVALID_INPUT"
	CodeInvalidRange  = "INVALID_DATE_RANGE"
	CodeUnauthorized  = "UNAUTHORIZED"
	CodeForbidden     = "FORBIDDEN"
	CodeNotFound      = "NOT_FOUND"
	CodeConflict      = "CONFLICT"
	CodeGatewayError  = "GATEWAY_ERROR"
	CodeInternalError = "INTERNAL_ERROR"
)

func JSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

func WriteError(w http.ResponseWriter, statusCode int, message, code string) {
	JSON(w, statusCode, ErrorResponse{Status: "fail", Error: message, Code: code})
}

// Err maps a service error onto the HTTP error taxonomy.
func Err(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		WriteError(w, http.StatusBadRequest, err.Error(), CodeInvalidInput)
	case errors.Is(err, domain.ErrInvalidRange):
		WriteError(w, http.StatusBadRequest, err.Error(), CodeInvalidRange)
	case errors.Is(err, domain.ErrUnauthorized):
		WriteError(w, http.StatusUnauthorized, err.Error(), CodeUnauthorized)
	case errors.Is(err, domain.ErrForbidden):
		WriteError(w, http.StatusForbidden, err.Error(), CodeForbidden)
	case errors.Is(err, domain.ErrNotFound):
		WriteError(w, http.StatusNotFound, err.Error(), CodeNotFound)
	case errors.Is(err, domain.ErrConflict):
		WriteError(w, http.StatusConflict, err.Error(), CodeConflict)
	case errors.Is(err, domain.ErrGateway):
		WriteError(w, http.StatusBadGateway, err.Error(), CodeGatewayError)
	default:
		WriteError(w, http.StatusInternalServerError, "internal server error", CodeInternalError)
	}
}

// ListEnvelope is the paginated collection response shape.
type ListEnvelope struct {
	Status  string       `json:"status"`
	Results int          `json:"results"`
	Data    interface{}  `json:"data"`
	Meta    listing.Meta `json:"meta"`
}

func List(w http.ResponseWriter, results int, data interface{}, meta listing.Meta) {
	JSON(w, http.StatusOK, ListEnvelope{
		Status:  "success",
		Results: results,
		Data:    data,
		Meta:    meta,
	})
}
