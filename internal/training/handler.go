package training

import (
	"encoding/json"
	"errors"
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
	r.HandleFunc("/train", h.CreateSession).Methods("POST")
	r.HandleFunc("/train/{id}", h.GetSession).Methods("GET")
}

func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var config models.TrainConfig
	if err := json.NewDecoder(r.Body).Decode(&config); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body"})
		return
	}

	resp, err := h.service.CreateSession(config)
	if err != nil {
		var invalid *models.InvalidStateError
		if errors.As(err, &invalid) {
			writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: invalid.Reason})
			return
		}
		log.Printf("[handler] create train session failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "failed to create train session"})
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	trainSessionID := mux.Vars(r)["id"]

	session, err := h.service.GetSession(trainSessionID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "train session not found"})
			return
		}
		log.Printf("[handler] get train session failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "failed to get train session"})
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[handler] failed to encode response: %v", err)
	}
}
