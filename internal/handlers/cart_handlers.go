package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/hoteler/hotel-bookings/internal/domain"
	"github.com/hoteler/hotel-bookings/internal/listing"
	"github.com/hoteler/hotel-bookings/internal/repository"
	"github.com/hoteler/hotel-bookings/internal/response"
)

// AddCartItem handles POST /cart
func (h *Handlers) AddCartItem(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)
	if claims == nil {
		response.WriteError(w, http.StatusUnauthorized, "authentication required", response.CodeUnauthorized)
		return
	}

	var req domain.CartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.WriteError(w, http.StatusBadRequest, "invalid JSON format", response.CodeInvalidInput)
		return
	}

	item, err := h.cartService.Add(r.Context(), claims.Sub, &req)
	if err != nil {
		response.Err(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, map[string]interface{}{"status": "success", "data": item})
}

// ListCart handles GET /cart
func (h *Handlers) ListCart(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)
	if claims == nil {
		response.WriteError(w, http.StatusUnauthorized, "authentication required", response.CodeUnauthorized)
		return
	}

	params := listing.Parse(r)

	items, total, err := h.cartService.List(r.Context(), claims.Sub, repository.ListOptions{
		OrderBy: "created_at DESC",
		Limit:   params.Limit,
		Offset:  params.Offset(),
	})
	if err != nil {
		response.Err(w, err)
		return
	}

	response.List(w, len(items), items, listing.BuildMeta(r, params, total))
}

// GetCartItem handles GET /cart/{itemID}
func (h *Handlers) GetCartItem(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)
	itemID, ok := pathID(r, "itemID")
	if !ok {
		response.WriteError(w, http.StatusBadRequest, "invalid cart item id", response.CodeInvalidInput)
		return
	}

	item, err := h.cartService.Get(r.Context(), itemID, claims.Sub)
	if err != nil {
		response.Err(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]interface{}{"status": "success", "data": item})
}

// UpdateCartItem handles PATCH /cart/{itemID}
func (h *Handlers) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)
	itemID, ok := pathID(r, "itemID")
	if !ok {
		response.WriteError(w, http.StatusBadRequest, "invalid cart item id", response.CodeInvalidInput)
		return
	}

	var patch domain.CartItemPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		response.WriteError(w, http.StatusBadRequest, "invalid JSON format", response.CodeInvalidInput)
		return
	}

	item, err := h.cartService.Update(r.Context(), itemID, claims.Sub, patch)
	if err != nil {
		response.Err(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]interface{}{"status": "success", "data": item})
}

// RemoveCartItem handles DELETE /cart/{itemID}
func (h *Handlers) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)
	itemID, ok := pathID(r, "itemID")
	if !ok {
		response.WriteError(w, http.StatusBadRequest, "invalid cart item id", response.CodeInvalidInput)
		return
	}

	if err := h.cartService.Remove(r.Context(), itemID, claims.Sub); err != nil {
		response.Err(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
