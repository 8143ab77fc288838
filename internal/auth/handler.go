package auth

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/quizdrill/backend/internal/models"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/admin/login", h.Login).Methods("POST")
}

type loginRequest struct {
	AdminKey string `json:"admin_key"`
}

type loginResponse struct {
	Token string `json:"token"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body"})
		return
	}

	token, err := h.service.IssueToken(req.AdminKey)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "invalid admin key"})
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Token: token})
}

// Middleware protects the admin subrouter. Requests pass with either a
// bearer token or the raw admin key header.
func (h *Handler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		err := h.service.Authorize(r.Header.Get("Authorization"), r.Header.Get("X-Admin-Key"))
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "admin authorization required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[handler] failed to encode response: %v", err)
	}
}
