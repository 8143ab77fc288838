package mistakes

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
	r.HandleFunc("/mistakes", h.CreateSnapshot).Methods("POST")
	r.HandleFunc("/mistakes", h.ListSnapshots).Methods("GET")
	r.HandleFunc("/mistakes/{id}", h.GetSnapshot).Methods("GET")
	r.HandleFunc("/mistakes/{id}", h.DeleteSnapshot).Methods("DELETE")
	r.HandleFunc("/mistakes/{id}/update", h.UpdateSnapshot).Methods("POST")
}

func (h *Handler) CreateSnapshot(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSnapshotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body"})
		return
	}

	snap, err := h.service.CreateSnapshot(req)
	if err != nil {
		var invalid *models.InvalidStateError
		if errors.As(err, &invalid) {
			writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: invalid.Reason})
			return
		}
		log.Printf("[handler] create snapshot failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "failed to create snapshot"})
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

func (h *Handler) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	includeArchived := r.URL.Query().Get("includeArchived") == "true"

	snaps, err := h.service.ListSnapshots(includeArchived)
	if err != nil {
		log.Printf("[handler] list snapshots failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "failed to list snapshots"})
		return
	}
	if snaps == nil {
		snaps = []models.MistakeSnapshot{}
	}
	writeJSON(w, http.StatusOK, snaps)
}

func (h *Handler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	snapshotID := mux.Vars(r)["id"]

	snap, err := h.service.GetSnapshot(snapshotID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "snapshot not found"})
			return
		}
		log.Printf("[handler] get snapshot failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "failed to get snapshot"})
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *Handler) UpdateSnapshot(w http.ResponseWriter, r *http.Request) {
	snapshotID := mux.Vars(r)["id"]

	var req models.UpdateSnapshotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body"})
		return
	}

	resp, err := h.service.ApplyReview(snapshotID, req.Answers)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "snapshot not found"})
			return
		}
		var invalid *models.InvalidStateError
		if errors.As(err, &invalid) {
			writeJSON(w, http.StatusConflict, models.ErrorResponse{Error: invalid.Reason})
			return
		}
		log.Printf("[handler] update snapshot failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "failed to update snapshot"})
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) DeleteSnapshot(w http.ResponseWriter, r *http.Request) {
	snapshotID := mux.Vars(r)["id"]

	if err := h.service.DeleteSnapshot(snapshotID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "snapshot not found"})
			return
		}
		log.Printf("[handler] delete snapshot failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "failed to delete snapshot"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[handler] failed to encode response: %v", err)
	}
}
