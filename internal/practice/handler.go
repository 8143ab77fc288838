package practice

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

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
	r.HandleFunc("/sessions", h.CreateSession).Methods("POST")
	r.HandleFunc("/sessions/{id}", h.GetSession).Methods("GET")
	r.HandleFunc("/sessions/{id}", h.DropSession).Methods("DELETE")
	r.HandleFunc("/sessions/{id}/answers", h.SubmitAnswer).Methods("POST")
	r.HandleFunc("/sessions/{id}/goto", h.Goto).Methods("POST")
	r.HandleFunc("/sessions/{id}/complete", h.Complete).Methods("POST")
	r.HandleFunc("/sessions/{id}/result", h.Result).Methods("GET")
	r.HandleFunc("/sessions/{id}/restart", h.Restart).Methods("POST")
	r.HandleFunc("/sessions/{id}/snapshot", h.SnapshotFromSession).Methods("POST")
}

type createSessionRequest struct {
	Kind    Kind   `json:"kind"`
	ScopeID string `json:"scope_id"`
	Resume  bool   `json:"resume"`
}

func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body"})
		return
	}
	if req.ScopeID == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "scope_id is required"})
		return
	}

	view, err := h.service.CreateSession(req.Kind, req.ScopeID, req.Resume)
	if err != nil {
		h.writeError(w, err, "failed to create session")
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.GetSession(mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, err, "failed to get session")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) DropSession(w http.ResponseWriter, r *http.Request) {
	h.service.DropSession(mux.Vars(r)["id"])
	w.WriteHeader(http.StatusNoContent)
}

type submitAnswerRequest struct {
	QuestionID string              `json:"question_id"`
	Selected   models.AnswerLetter `json:"selected"`
}

type submitAnswerResponse struct {
	IsCorrect     bool         `json:"is_correct"`
	CorrectAnswer int          `json:"correct_answer"`
	Explanation   string       `json:"explanation,omitempty"`
	Session       *SessionView `json:"session"`
}

func (h *Handler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var req submitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body"})
		return
	}

	result, view, err := h.service.SubmitAnswer(mux.Vars(r)["id"], req.QuestionID, req.Selected)
	if err != nil {
		h.writeError(w, err, "failed to submit answer")
		return
	}
	writeJSON(w, http.StatusOK, submitAnswerResponse{
		IsCorrect:     result.IsCorrect,
		CorrectAnswer: result.CorrectAnswer,
		Explanation:   result.Explanation,
		Session:       view,
	})
}

type gotoRequest struct {
	Index int `json:"index"`
}

func (h *Handler) Goto(w http.ResponseWriter, r *http.Request) {
	var req gotoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body"})
		return
	}

	view, err := h.service.Goto(mux.Vars(r)["id"], req.Index)
	if err != nil {
		h.writeError(w, err, "failed to navigate")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Complete(mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, err, "failed to complete session")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) Result(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Result(mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, err, "failed to score session")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) Restart(w http.ResponseWriter, r *http.Request) {
	confirm, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))

	view, err := h.service.Restart(mux.Vars(r)["id"], confirm)
	if err != nil {
		h.writeError(w, err, "failed to restart session")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

type snapshotRequest struct {
	Title string `json:"title"`
}

func (h *Handler) SnapshotFromSession(w http.ResponseWriter, r *http.Request) {
	var req snapshotRequest
	if r.Body != nil {
		// Body is optional; a missing title gets a default downstream.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	snap, err := h.service.SnapshotFromSession(mux.Vars(r)["id"], req.Title)
	if err != nil {
		h.writeError(w, err, "failed to create snapshot")
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

func (h *Handler) writeError(w http.ResponseWriter, err error, fallback string) {
	if errors.Is(err, models.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: err.Error()})
		return
	}
	var invalid *models.InvalidStateError
	if errors.As(err, &invalid) {
		writeJSON(w, http.StatusConflict, models.ErrorResponse{Error: invalid.Reason})
		return
	}
	log.Printf("[handler] %s: %v", fallback, err)
	writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: fallback})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[handler] failed to encode response: %v", err)
	}
}
