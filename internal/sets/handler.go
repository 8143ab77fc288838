package sets

import (
	"encoding/json"
	"errors"
	"io"
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

// RegisterRoutes wires the public set endpoints; RegisterAdminRoutes wires
// the guarded ones (import, delete, clone).
func (h *Handler) RegisterRoutes(api *mux.Router) {
	api.HandleFunc("/sets", h.ListSets).Methods("GET")
	api.HandleFunc("/sets/{id}", h.GetSet).Methods("GET")
	api.HandleFunc("/sets/{id}/export", h.ExportSet).Methods("GET")
	api.HandleFunc("/topics", h.ListTopics).Methods("GET")
	api.HandleFunc("/questions", h.GetQuestionsByIDs).Methods("POST")
}

func (h *Handler) RegisterAdminRoutes(admin *mux.Router) {
	admin.HandleFunc("/sets/import", h.Import).Methods("POST")
	admin.HandleFunc("/sets/import", h.ImportWithMeta).Methods("PUT")
	admin.HandleFunc("/sets/{id}", h.DeleteSet).Methods("DELETE")
	admin.HandleFunc("/sets/{id}/clone", h.CloneSet).Methods("POST")
}

func (h *Handler) ListSets(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	search := query.Get("search")
	sortBy := query.Get("sortBy")
	if sortBy == "" {
		sortBy = "date"
	}

	sets, err := h.service.List(search, sortBy)
	if err != nil {
		log.Printf("[handler] ListSets error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list sets"})
		return
	}
	if sets == nil {
		sets = []models.QuestionSet{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"sets": sets})
}

func (h *Handler) GetSet(w http.ResponseWriter, r *http.Request) {
	setID := mux.Vars(r)["id"]

	set, err := h.service.Get(setID)
	if errors.Is(err, models.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Question set not found"})
		return
	}
	if err != nil {
		log.Printf("[handler] GetSet error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to fetch question set"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"set": set})
}

func (h *Handler) DeleteSet(w http.ResponseWriter, r *http.Request) {
	setID := mux.Vars(r)["id"]

	err := h.service.Delete(setID)
	if errors.Is(err, models.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Question set not found"})
		return
	}
	if err != nil {
		log.Printf("[handler] DeleteSet error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to delete question set"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) CloneSet(w http.ResponseWriter, r *http.Request) {
	setID := mux.Vars(r)["id"]

	clone, err := h.service.Clone(r.Context(), setID)
	if errors.Is(err, models.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Question set not found"})
		return
	}
	if err != nil {
		log.Printf("[handler] CloneSet error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to clone question set"})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"set": clone})
}

func (h *Handler) ExportSet(w http.ResponseWriter, r *http.Request) {
	setID := mux.Vars(r)["id"]

	export, err := h.service.Export(setID)
	if errors.Is(err, models.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Question set not found"})
		return
	}
	if err != nil {
		log.Printf("[handler] ExportSet error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to export question set"})
		return
	}
	writeJSON(w, http.StatusOK, export)
}

func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	outcome, err := h.service.Import(r.Context(), raw)
	if err != nil {
		writeImportError(w, err)
		return
	}

	if outcome.Preview != nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"requiresSetMeta": true,
			"preview":         outcome.Preview,
		})
		return
	}
	writeJSON(w, http.StatusCreated, outcome.Result)
}

func (h *Handler) ImportWithMeta(w http.ResponseWriter, r *http.Request) {
	var payload models.ImportFormatA
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	result, err := h.service.ImportWithMeta(r.Context(), payload)
	if err != nil {
		writeImportError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func writeImportError(w http.ResponseWriter, err error) {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{
			Error:   "Validation failed",
			Details: verr.Details,
		})
		return
	}
	log.Printf("[handler] import error: %v", err)
	writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
}

func (h *Handler) ListTopics(w http.ResponseWriter, r *http.Request) {
	topics, err := h.service.Topics()
	if err != nil {
		log.Printf("[handler] ListTopics error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list topics"})
		return
	}
	if topics == nil {
		topics = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"topics": topics})
}

func (h *Handler) GetQuestionsByIDs(w http.ResponseWriter, r *http.Request) {
	var req struct {
		QuestionIDs []string `json:"question_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.QuestionIDs == nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Missing or invalid question_ids array"})
		return
	}

	questions, err := h.service.QuestionsByIDs(req.QuestionIDs)
	if err != nil {
		log.Printf("[handler] GetQuestionsByIDs error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to fetch questions"})
		return
	}
	if questions == nil {
		questions = []models.Question{}
	}
	writeJSON(w, http.StatusOK, map[string][]models.Question{"questions": questions})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
