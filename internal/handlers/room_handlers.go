package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/hoteler/hotel-bookings/internal/domain"
	"github.com/hoteler/hotel-bookings/internal/listing"
	"github.com/hoteler/hotel-bookings/internal/repository"
	"github.com/hoteler/hotel-bookings/internal/response"
)

// roomSortCols whitelists sortable room fields.
var roomSortCols = map[string]string{
	"number":      "number",
	"type":        "type",
	"price_cents": "price_cents",
	"capacity":    "capacity",
	"created_at":  "created_at",
}

// roomFields whitelists the projectable room response fields.
var roomFields = map[string]bool{
	"id":           true,
	"number":       true,
	"type":         true,
	"price_cents":  true,
	"capacity":     true,
	"is_available": true,
	"amenities":    true,
	"created_at":   true,
	"updated_at":   true,
}

// CreateRoom handles POST /rooms (admin only)
func (h *Handlers) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.WriteError(w, http.StatusBadRequest, "invalid JSON format", response.CodeInvalidInput)
		return
	}

	room, err := h.roomService.Create(r.Context(), &req)
	if err != nil {
		response.Err(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, map[string]interface{}{"status": "success", "data": room})
}

// ListRooms handles GET /rooms
func (h *Handlers) ListRooms(w http.ResponseWriter, r *http.Request) {
	params := listing.Parse(r)

	filter := domain.RoomFilter{
		Type:      r.URL.Query().Get("type"),
		Available: queryBool(r, "available"),
		MinCents:  queryInt64(r, "minPrice"),
		MaxCents:  queryInt64(r, "maxPrice"),
		Search:    r.URL.Query().Get("search"),
	}

	rooms, total, err := h.roomService.List(r.Context(), filter, repository.ListOptions{
		OrderBy: params.OrderBy(roomSortCols, "number ASC"),
		Limit:   params.Limit,
		Offset:  params.Offset(),
	})
	if err != nil {
		response.Err(w, err)
		return
	}

	data := listing.ProjectItems(rooms, params.Project(roomFields))
	response.List(w, len(rooms), data, listing.BuildMeta(r, params, total))
}

// GetRoom handles GET /rooms/{roomID}
func (h *Handlers) GetRoom(w http.ResponseWriter, r *http.Request) {
	roomID, ok := pathID(r, "roomID")
	if !ok {
		response.WriteError(w, http.StatusBadRequest, "invalid room id", response.CodeInvalidInput)
		return
	}

	room, err := h.roomService.Get(r.Context(), roomID)
	if err != nil {
		response.Err(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]interface{}{"status": "success", "data": room})
}

// UpdateRoom handles PATCH /rooms/{roomID} (admin only)
func (h *Handlers) UpdateRoom(w http.ResponseWriter, r *http.Request) {
	roomID, ok := pathID(r, "roomID")
	if !ok {
		response.WriteError(w, http.StatusBadRequest, "invalid room id", response.CodeInvalidInput)
		return
	}

	var patch domain.RoomPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		response.WriteError(w, http.StatusBadRequest, "invalid JSON format", response.CodeInvalidInput)
		return
	}

	room, err := h.roomService.Update(r.Context(), roomID, patch)
	if err != nil {
		response.Err(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]interface{}{"status": "success", "data": room})
}

// DeleteRoom handles DELETE /rooms/{roomID} (admin only)
func (h *Handlers) DeleteRoom(w http.ResponseWriter, r *http.Request) {
	roomID, ok := pathID(r, "roomID")
	if !ok {
		response.WriteError(w, http.StatusBadRequest, "invalid room id", response.CodeInvalidInput)
		return
	}

	if err := h.roomService.Delete(r.Context(), roomID); err != nil {
		response.Err(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
