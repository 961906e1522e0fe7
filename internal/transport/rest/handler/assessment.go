package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"complyq/internal/engine"
	"complyq/internal/model"
	"complyq/internal/service"
	"complyq/internal/transport/rest/middleware"
)

// AssessmentHandler handles the assessment flow endpoints
type AssessmentHandler struct {
	assessmentSvc *service.AssessmentService
	authSvc       *service.AuthService
}

// NewAssessmentHandler creates a new assessment handler
func NewAssessmentHandler(assessmentSvc *service.AssessmentService, authSvc *service.AuthService) *AssessmentHandler {
	return &AssessmentHandler{
		assessmentSvc: assessmentSvc,
		authSvc:       authSvc,
	}
}

// StartRequest is the request body for starting an assessment
type StartRequest struct {
	FrameworkID       string `json:"frameworkId"`
	BusinessProfileID string `json:"businessProfileId,omitempty"`
	RespondentID      string `json:"respondentId,omitempty"`
}

// ResumeRequest is the request body for resuming an assessment
type ResumeRequest struct {
	FrameworkID  string `json:"frameworkId"`
	AssessmentID string `json:"assessmentId"`
	RespondentID string `json:"respondentId,omitempty"`
}

// StartResponse carries the navigation state plus a respondent token
type StartResponse struct {
	*service.AssessmentView
	Token string `json:"token"`
}

// AnswerRequest is the request body for recording an answer
type AnswerRequest struct {
	QuestionID string            `json:"questionId"`
	Value      model.AnswerValue `json:"value"`
}

// JumpRequest is the request body for repositioning
type JumpRequest struct {
	SectionIndex  int  `json:"sectionIndex"`
	QuestionIndex *int `json:"questionIndex,omitempty"`
}

// Start handles POST /v1/assessments/start
func (h *AssessmentHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req StartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.FrameworkID == "" {
		writeError(w, http.StatusBadRequest, "frameworkId is required")
		return
	}

	view, err := h.assessmentSvc.Start(r.Context(), req.FrameworkID, req.BusinessProfileID)
	if err != nil {
		if errors.Is(err, service.ErrFrameworkNotFound) {
			writeError(w, http.StatusNotFound, "framework not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondentID := req.RespondentID
	if respondentID == "" {
		respondentID = "resp_" + uuid.New().String()[:8]
	}
	token, err := h.authSvc.GenerateRespondentToken(view.AssessmentID, respondentID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, &StartResponse{AssessmentView: view, Token: token})
}

// Resume handles POST /v1/assessments/resume
func (h *AssessmentHandler) Resume(w http.ResponseWriter, r *http.Request) {
	var req ResumeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.FrameworkID == "" || req.AssessmentID == "" {
		writeError(w, http.StatusBadRequest, "frameworkId and assessmentId are required")
		return
	}

	view, err := h.assessmentSvc.Resume(r.Context(), req.FrameworkID, req.AssessmentID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFrameworkNotFound):
			writeError(w, http.StatusNotFound, "framework not found")
		case errors.Is(err, service.ErrAssessmentNotFound):
			writeError(w, http.StatusNotFound, "no saved progress for this assessment")
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	respondentID := req.RespondentID
	if respondentID == "" {
		respondentID = "resp_" + uuid.New().String()[:8]
	}
	token, err := h.authSvc.GenerateRespondentToken(view.AssessmentID, respondentID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, &StartResponse{AssessmentView: view, Token: token})
}

// Answer handles POST /v1/assessments/current/answers
func (h *AssessmentHandler) Answer(w http.ResponseWriter, r *http.Request) {
	assessmentID := middleware.GetAssessmentID(r.Context())

	var req AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	view, err := h.assessmentSvc.Answer(r.Context(), assessmentID, req.QuestionID, req.Value)
	if err != nil {
		h.writeFlowError(w, err)
		return
	}

	status := http.StatusOK
	if view.Validation != nil {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, view)
}

// Next handles POST /v1/assessments/current/next
func (h *AssessmentHandler) Next(w http.ResponseWriter, r *http.Request) {
	assessmentID := middleware.GetAssessmentID(r.Context())

	view, err := h.assessmentSvc.Next(r.Context(), assessmentID)
	if err != nil {
		h.writeFlowError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Previous handles POST /v1/assessments/current/previous
func (h *AssessmentHandler) Previous(w http.ResponseWriter, r *http.Request) {
	assessmentID := middleware.GetAssessmentID(r.Context())

	view, err := h.assessmentSvc.Previous(r.Context(), assessmentID)
	if err != nil {
		h.writeFlowError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Jump handles POST /v1/assessments/current/jump
func (h *AssessmentHandler) Jump(w http.ResponseWriter, r *http.Request) {
	assessmentID := middleware.GetAssessmentID(r.Context())

	var req JumpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var (
		view *service.AssessmentView
		ok   bool
		err  error
	)
	if req.QuestionIndex != nil {
		view, ok, err = h.assessmentSvc.JumpToQuestion(assessmentID, req.SectionIndex, *req.QuestionIndex)
	} else {
		view, ok, err = h.assessmentSvc.JumpToSection(assessmentID, req.SectionIndex)
	}
	if err != nil {
		h.writeFlowError(w, err)
		return
	}
	if !ok {
		writeError(w, http.StatusBadRequest, "position out of range")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Progress handles GET /v1/assessments/current/progress
func (h *AssessmentHandler) Progress(w http.ResponseWriter, r *http.Request) {
	assessmentID := middleware.GetAssessmentID(r.Context())

	progress, err := h.assessmentSvc.Progress(assessmentID)
	if err != nil {
		h.writeFlowError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

// Save handles POST /v1/assessments/current/save
func (h *AssessmentHandler) Save(w http.ResponseWriter, r *http.Request) {
	assessmentID := middleware.GetAssessmentID(r.Context())

	if err := h.assessmentSvc.Save(r.Context(), assessmentID); err != nil {
		h.writeFlowError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

// Complete handles POST /v1/assessments/current/complete
func (h *AssessmentHandler) Complete(w http.ResponseWriter, r *http.Request) {
	assessmentID := middleware.GetAssessmentID(r.Context())

	result, err := h.assessmentSvc.Complete(r.Context(), assessmentID)
	if err != nil {
		h.writeFlowError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Abandon handles DELETE /v1/assessments/current
func (h *AssessmentHandler) Abandon(w http.ResponseWriter, r *http.Request) {
	assessmentID := middleware.GetAssessmentID(r.Context())

	if err := h.assessmentSvc.Abandon(r.Context(), assessmentID); err != nil {
		h.writeFlowError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "abandoned"})
}

// Help handles GET /v1/assessments/current/questions/{questionId}/help
func (h *AssessmentHandler) Help(w http.ResponseWriter, r *http.Request) {
	assessmentID := middleware.GetAssessmentID(r.Context())
	questionID := mux.Vars(r)["questionId"]

	resp, err := h.assessmentSvc.QuestionHelp(r.Context(), assessmentID, questionID)
	if err != nil {
		h.writeFlowError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Result handles GET /v1/assessments/{assessmentId}/result (admin)
func (h *AssessmentHandler) Result(w http.ResponseWriter, r *http.Request) {
	assessmentID := mux.Vars(r)["assessmentId"]

	result, err := h.assessmentSvc.Result(r.Context(), assessmentID)
	if err != nil {
		h.writeFlowError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *AssessmentHandler) writeFlowError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrAssessmentNotFound):
		writeError(w, http.StatusNotFound, "assessment not found")
	case errors.Is(err, engine.ErrUnknownQuestion):
		writeError(w, http.StatusNotFound, "unknown question")
	case errors.Is(err, engine.ErrAdvisoryContract):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
