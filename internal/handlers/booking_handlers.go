package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/hoteler/hotel-bookings/internal/domain"
	"github.com/hoteler/hotel-bookings/internal/listing"
	"github.com/hoteler/hotel-bookings/internal/repository"
	"github.com/hoteler/hotel-bookings/internal/response"
)

var bookingSortCols = map[string]string{
	"check_in":    "check_in",
	"check_out":   "check_out",
	"total_cents": "total_cents",
	"status":      "status",
	"created_at":  "created_at",
}

// bookingFields whitelists the projectable booking response fields.
var bookingFields = map[string]bool{
	"id":          true,
	"room_id":     true,
	"user_id":     true,
	"check_in":    true,
	"check_out":   true,
	"total_cents": true,
	"status":      true,
	"expires_at":  true,
	"created_at":  true,
	"updated_at":  true,
}

// CreateBooking handles POST /bookings
func (h *Handlers) CreateBooking(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)
	if claims == nil {
		response.WriteError(w, http.StatusUnauthorized, "authentication required", response.CodeUnauthorized)
		return
	}

	var req domain.CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.WriteError(w, http.StatusBadRequest, "invalid JSON format", response.CodeInvalidInput)
		return
	}

	booking, err := h.bookingService.Create(r.Context(), claims, &req)
	if err != nil {
		response.Err(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, map[string]interface{}{"status": "success", "data": booking})
}

// ListBookings handles GET /bookings. Non-admins only see their own
// bookings regardless of filters.
func (h *Handlers) ListBookings(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)
	if claims == nil {
		response.WriteError(w, http.StatusUnauthorized, "authentication required", response.CodeUnauthorized)
		return
	}

	params := listing.Parse(r)

	filter := domain.BookingFilter{
		UserID:        queryInt64(r, "userId"),
		RoomID:        queryInt64(r, "roomId"),
		MinCents:      queryInt64(r, "minPrice"),
		MaxCents:      queryInt64(r, "maxPrice"),
		CheckInAfter:  queryTime(r, "checkInAfter"),
		CheckInBefore: queryTime(r, "checkInBefore"),
		Search:        r.URL.Query().Get("search"),
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		st, ok := domain.ParseBookingStatus(raw)
		if !ok {
			response.WriteError(w, http.StatusBadRequest, "invalid status parameter", response.CodeInvalidInput)
			return
		}
		filter.Status = &st
	}

	bookings, total, err := h.bookingService.List(r.Context(), claims, filter, repository.ListOptions{
		OrderBy: params.OrderBy(bookingSortCols, "created_at DESC"),
		Limit:   params.Limit,
		Offset:  params.Offset(),
	})
	if err != nil {
		response.Err(w, err)
		return
	}

	data := listing.ProjectItems(bookings, params.Project(bookingFields))
	response.List(w, len(bookings), data, listing.BuildMeta(r, params, total))
}

// GetBooking handles GET /bookings/{roomID}/{bookingID}
func (h *Handlers) GetBooking(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)
	roomID, okRoom := pathID(r, "roomID")
	bookingID, okBooking := pathID(r, "bookingID")
	if !okRoom || !okBooking {
		response.WriteError(w, http.StatusBadRequest, "invalid id", response.CodeInvalidInput)
		return
	}

	booking, err := h.bookingService.Get(r.Context(), claims, roomID, bookingID)
	if err != nil {
		response.Err(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]interface{}{"status": "success", "data": booking})
}

// UpdateBooking handles PATCH /bookings/{roomID}/{bookingID}
func (h *Handlers) UpdateBooking(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)
	roomID, okRoom := pathID(r, "roomID")
	bookingID, okBooking := pathID(r, "bookingID")
	if !okRoom || !okBooking {
		response.WriteError(w, http.StatusBadRequest, "invalid id", response.CodeInvalidInput)
		return
	}

	var patch domain.BookingPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		response.WriteError(w, http.StatusBadRequest, "invalid JSON format", response.CodeInvalidInput)
		return
	}

	booking, err := h.bookingService.Update(r.Context(), claims, roomID, bookingID, patch)
	if err != nil {
		response.Err(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]interface{}{"status": "success", "data": booking})
}

// DeleteBooking handles DELETE /bookings/{roomID}/{bookingID}
func (h *Handlers) DeleteBooking(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)
	roomID, okRoom := pathID(r, "roomID")
	bookingID, okBooking := pathID(r, "bookingID")
	if !okRoom || !okBooking {
		response.WriteError(w, http.StatusBadRequest, "invalid id", response.CodeInvalidInput)
		return
	}

	if err := h.bookingService.Delete(r.Context(), claims, roomID, bookingID); err != nil {
		response.Err(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RoomDates handles GET /bookings/rooms/{roomID}/dates: the occupied
// check-in/check-out ranges of a room, for availability calendars.
func (h *Handlers) RoomDates(w http.ResponseWriter, r *http.Request) {
	roomID, ok := pathID(r, "roomID")
	if !ok {
		response.WriteError(w, http.StatusBadRequest, "invalid room id", response.CodeInvalidInput)
		return
	}

	ranges, err := h.bookingService.OccupiedRanges(r.Context(), roomID)
	if err != nil {
		response.Err(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]interface{}{"status": "success", "data": ranges})
}
