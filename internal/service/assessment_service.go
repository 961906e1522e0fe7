package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"

	"complyq/internal/advisory"
	"complyq/internal/engine"
	"complyq/internal/model"
	"complyq/internal/repository"
)

var (
	ErrAssessmentNotFound = errors.New("assessment not found")
	ErrFrameworkNotFound  = errors.New("framework not found")
)

// AssessmentView is the navigation state returned to clients after every
// assessment operation
type AssessmentView struct {
	AssessmentID string                   `json:"assessmentId"`
	Question     *model.Question          `json:"question,omitempty"`
	Section      *model.AssessmentSection `json:"section,omitempty"`
	InFollowUp   bool                     `json:"inFollowUp"`
	Complete     bool                     `json:"complete"`
	Progress     model.AssessmentProgress `json:"progress"`
	Validation   *model.ValidationError   `json:"validation,omitempty"`
}

// AssessmentService owns the registry of live engines, one per in-flight
// assessment, and wires them to persistence and the advisory service.
type AssessmentService struct {
	mu      sync.RWMutex
	engines map[string]*engine.Engine

	frameworks  repository.FrameworkRepository
	results     repository.ResultRepository
	store       engine.ProgressStore
	advisory    advisory.Service
	broadcaster Broadcaster
	engineCfg   engine.Config
}

// NewAssessmentService creates the service. The advisory service may be nil
// when AI is disabled.
func NewAssessmentService(
	frameworks repository.FrameworkRepository,
	results repository.ResultRepository,
	store engine.ProgressStore,
	adv advisory.Service,
	engineCfg engine.Config,
) *AssessmentService {
	return &AssessmentService{
		engines:    make(map[string]*engine.Engine),
		frameworks: frameworks,
		results:    results,
		store:      store,
		advisory:   adv,
		engineCfg:  engineCfg,
	}
}

// SetBroadcaster attaches the WebSocket hub after construction (avoids import cycle)
func (s *AssessmentService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Start creates a fresh assessment run over a framework and returns the first
// question
func (s *AssessmentService) Start(ctx context.Context, frameworkID, businessProfileID string) (*AssessmentView, error) {
	fw, err := s.frameworks.GetByID(ctx, frameworkID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrFrameworkNotFound
		}
		return nil, fmt.Errorf("load framework: %w", err)
	}

	assessmentID := "asmt_" + uuid.New().String()[:12]
	eng := s.newEngine(fw, assessmentID, businessProfileID)

	s.mu.Lock()
	s.engines[assessmentID] = eng
	s.mu.Unlock()

	return s.view(assessmentID, eng, nil), nil
}

// Resume rebuilds an engine from persisted progress. Returns
// ErrAssessmentNotFound when no snapshot exists for the id.
func (s *AssessmentService) Resume(ctx context.Context, frameworkID, assessmentID string) (*AssessmentView, error) {
	s.mu.RLock()
	eng, ok := s.engines[assessmentID]
	s.mu.RUnlock()
	if ok {
		return s.view(assessmentID, eng, nil), nil
	}

	fw, err := s.frameworks.GetByID(ctx, frameworkID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrFrameworkNotFound
		}
		return nil, fmt.Errorf("load framework: %w", err)
	}

	// Discard, not Destroy: a failed resume must not save an empty snapshot
	// under the requested id.
	eng = s.newEngine(fw, assessmentID, "")
	restored, err := eng.Restore(ctx)
	if err != nil {
		eng.Discard()
		return nil, fmt.Errorf("restore assessment: %w", err)
	}
	if !restored {
		eng.Discard()
		return nil, ErrAssessmentNotFound
	}

	s.mu.Lock()
	s.engines[assessmentID] = eng
	s.mu.Unlock()

	return s.view(assessmentID, eng, nil), nil
}

// Answer records an answer. Validation failures come back inside the view,
// not as errors.
func (s *AssessmentService) Answer(ctx context.Context, assessmentID, questionID string, value model.AnswerValue) (*AssessmentView, error) {
	eng, err := s.engine(assessmentID)
	if err != nil {
		return nil, err
	}

	vErr, err := eng.AnswerQuestion(ctx, questionID, value)
	if err != nil {
		return nil, err
	}
	return s.view(assessmentID, eng, vErr), nil
}

// Next advances the flow, possibly into an AI follow-up sub-flow
func (s *AssessmentService) Next(ctx context.Context, assessmentID string) (*AssessmentView, error) {
	eng, err := s.engine(assessmentID)
	if err != nil {
		return nil, err
	}

	wasFollowUp := eng.InFollowUp()
	if _, err := eng.NextQuestion(ctx); err != nil {
		return nil, err
	}
	if !wasFollowUp && eng.InFollowUp() && s.broadcaster != nil {
		s.broadcaster.BroadcastToDashboard("followup_entered", map[string]string{
			"assessmentId": assessmentID,
		})
	}
	return s.view(assessmentID, eng, nil), nil
}

// Previous moves backward through answered questions
func (s *AssessmentService) Previous(ctx context.Context, assessmentID string) (*AssessmentView, error) {
	eng, err := s.engine(assessmentID)
	if err != nil {
		return nil, err
	}
	if _, err := eng.PreviousQuestion(); err != nil {
		return nil, err
	}
	return s.view(assessmentID, eng, nil), nil
}

// JumpToSection repositions to the first visible question of a section
func (s *AssessmentService) JumpToSection(assessmentID string, index int) (*AssessmentView, bool, error) {
	eng, err := s.engine(assessmentID)
	if err != nil {
		return nil, false, err
	}
	ok := eng.JumpToSection(index)
	return s.view(assessmentID, eng, nil), ok, nil
}

// JumpToQuestion repositions to a visible question by section/question index
func (s *AssessmentService) JumpToQuestion(assessmentID string, section, question int) (*AssessmentView, bool, error) {
	eng, err := s.engine(assessmentID)
	if err != nil {
		return nil, false, err
	}
	ok := eng.JumpToQuestion(section, question)
	return s.view(assessmentID, eng, nil), ok, nil
}

// Progress returns live progress for an assessment
func (s *AssessmentService) Progress(assessmentID string) (*model.AssessmentProgress, error) {
	eng, err := s.engine(assessmentID)
	if err != nil {
		return nil, err
	}
	p := eng.Progress()
	return &p, nil
}

// Save forces an immediate snapshot
func (s *AssessmentService) Save(ctx context.Context, assessmentID string) error {
	eng, err := s.engine(assessmentID)
	if err != nil {
		return err
	}
	return eng.Save(ctx)
}

// Complete scores the assessment, persists the result, tears the engine down,
// and returns the result
func (s *AssessmentService) Complete(ctx context.Context, assessmentID string) (*model.AssessmentResult, error) {
	eng, err := s.engine(assessmentID)
	if err != nil {
		return nil, err
	}

	result, err := eng.CalculateResults(ctx)
	if err != nil {
		return nil, fmt.Errorf("calculate results: %w", err)
	}

	if s.results != nil {
		if err := s.results.Create(ctx, result); err != nil {
			log.Printf("persist result for %s: %v", assessmentID, err)
		}
	}

	eng.Destroy(ctx)
	s.mu.Lock()
	delete(s.engines, assessmentID)
	s.mu.Unlock()

	if s.broadcaster != nil {
		s.broadcaster.BroadcastToDashboard("assessment_complete", result)
		s.broadcaster.DisconnectAssessment(assessmentID)
	}
	return result, nil
}

// Abandon tears an engine down without scoring. The final snapshot stays in
// the progress store so the run can still be resumed later.
func (s *AssessmentService) Abandon(ctx context.Context, assessmentID string) error {
	eng, err := s.engine(assessmentID)
	if err != nil {
		return err
	}

	eng.Destroy(ctx)
	s.mu.Lock()
	delete(s.engines, assessmentID)
	s.mu.Unlock()

	if s.broadcaster != nil {
		s.broadcaster.DisconnectAssessment(assessmentID)
	}
	return nil
}

// Result fetches a persisted result for a finished assessment
func (s *AssessmentService) Result(ctx context.Context, assessmentID string) (*model.AssessmentResult, error) {
	result, err := s.results.GetByAssessmentID(ctx, assessmentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAssessmentNotFound
		}
		return nil, err
	}
	return result, nil
}

// QuestionHelp asks the advisory service to explain a question; the static
// help text is the fallback
func (s *AssessmentService) QuestionHelp(ctx context.Context, assessmentID, questionID string) (*model.HelpResponse, error) {
	eng, err := s.engine(assessmentID)
	if err != nil {
		return nil, err
	}

	fw := eng.Context().FrameworkID
	q := s.findQuestion(eng, questionID)
	if q == nil {
		return nil, engine.ErrUnknownQuestion
	}

	if s.advisory != nil {
		resp, err := s.advisory.QuestionHelp(ctx, &model.HelpRequest{
			QuestionID:   q.ID,
			QuestionText: q.Prompt,
			HelpText:     q.HelpText,
			FrameworkID:  fw,
		})
		if err == nil {
			return resp, nil
		}
		log.Printf("question help for %s: %v", questionID, err)
	}

	return &model.HelpResponse{Explanation: q.HelpText}, nil
}

// Shutdown destroys every live engine, flushing a final snapshot for each
func (s *AssessmentService) Shutdown(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, eng := range s.engines {
		eng.Destroy(ctx)
		delete(s.engines, id)
	}
}

func (s *AssessmentService) engine(assessmentID string) (*engine.Engine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	eng, ok := s.engines[assessmentID]
	if !ok {
		return nil, ErrAssessmentNotFound
	}
	return eng, nil
}

func (s *AssessmentService) newEngine(fw *model.AssessmentFramework, assessmentID, businessProfileID string) *engine.Engine {
	cfg := s.engineCfg
	cfg.OnProgress = func(p model.AssessmentProgress) {
		if s.broadcaster != nil {
			s.broadcaster.BroadcastToDashboard("progress_update", map[string]interface{}{
				"assessmentId": assessmentID,
				"progress":     p,
			})
		}
	}
	cfg.OnError = func(err error) {
		log.Printf("assessment %s: %v", assessmentID, err)
	}
	return engine.New(fw, assessmentID, businessProfileID, cfg, s.store, s.advisory)
}

func (s *AssessmentService) findQuestion(eng *engine.Engine, questionID string) *model.Question {
	if q := eng.CurrentQuestion(); q != nil && q.ID == questionID {
		return q
	}
	fw, err := s.frameworks.GetByID(context.Background(), eng.Context().FrameworkID)
	if err != nil {
		return nil
	}
	return fw.QuestionByID(questionID)
}

func (s *AssessmentService) view(assessmentID string, eng *engine.Engine, vErr *model.ValidationError) *AssessmentView {
	return &AssessmentView{
		AssessmentID: assessmentID,
		Question:     eng.CurrentQuestion(),
		Section:      eng.CurrentSection(),
		InFollowUp:   eng.InFollowUp(),
		Complete:     eng.IsComplete(),
		Progress:     eng.Progress(),
		Validation:   vErr,
	}
}
