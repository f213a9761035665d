package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/hoteler/hotel-bookings/internal/domain"
	"github.com/hoteler/hotel-bookings/internal/response"
)

type authResponse struct {
	Status string       `json:"status"`
	Token  string       `json:"token"`
	User   *domain.User `json:"user"`
}

// Register handles POST /auth/register
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.WriteError(w, http.StatusBadRequest, "invalid JSON format", response.CodeInvalidInput)
		return
	}

	user, token, err := h.authService.Register(r.Context(), &req)
	if err != nil {
		response.Err(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, authResponse{Status: "success", Token: token, User: user})
}

// Login handles POST /auth/login
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.WriteError(w, http.StatusBadRequest, "invalid JSON format", response.CodeInvalidInput)
		return
	}

	user, token, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		response.Err(w, err)
		return
	}

	response.JSON(w, http.StatusOK, authResponse{Status: "success", Token: token, User: user})
}

// Me handles GET /users/me
func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)
	if claims == nil {
		response.WriteError(w, http.StatusUnauthorized, "authentication required", response.CodeUnauthorized)
		return
	}

	user, err := h.authService.GetUser(r.Context(), claims.Sub)
	if err != nil {
		response.Err(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]interface{}{"status": "success", "user": user})
}
