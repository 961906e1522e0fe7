package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"complyq/internal/model"
	"complyq/internal/repository"
)

// FrameworkHandler handles framework administration endpoints
type FrameworkHandler struct {
	frameworks repository.FrameworkRepository
}

// NewFrameworkHandler creates a new framework handler
func NewFrameworkHandler(frameworks repository.FrameworkRepository) *FrameworkHandler {
	return &FrameworkHandler{frameworks: frameworks}
}

// Create handles POST /v1/frameworks
func (h *FrameworkHandler) Create(w http.ResponseWriter, r *http.Request) {
	var fw model.AssessmentFramework
	if err := json.NewDecoder(r.Body).Decode(&fw); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(fw.Sections) == 0 {
		writeError(w, http.StatusBadRequest, "framework needs at least one section")
		return
	}
	if fw.ID == "" {
		fw.ID = "fw_" + uuid.New().String()[:8]
	}

	if err := h.frameworks.Upsert(r.Context(), &fw); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, &fw)
}

// List handles GET /v1/frameworks
func (h *FrameworkHandler) List(w http.ResponseWriter, r *http.Request) {
	frameworks, err := h.frameworks.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"frameworks": frameworks})
}

// Get handles GET /v1/frameworks/{frameworkId}
func (h *FrameworkHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["frameworkId"]

	fw, err := h.frameworks.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "framework not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, fw)
}

// Update handles PUT /v1/frameworks/{frameworkId}
func (h *FrameworkHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["frameworkId"]

	var fw model.AssessmentFramework
	if err := json.NewDecoder(r.Body).Decode(&fw); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	fw.ID = id

	if err := h.frameworks.Upsert(r.Context(), &fw); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, &fw)
}

// Delete handles DELETE /v1/frameworks/{frameworkId}
func (h *FrameworkHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["frameworkId"]

	if err := h.frameworks.Delete(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
