package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"complyq/internal/advisory"
	"complyq/internal/model"
)

var (
	// ErrUnknownQuestion is returned when an answer names no reachable question
	ErrUnknownQuestion = errors.New("unknown question")

	// ErrAdvisoryContract signals the advisory service returned fewer
	// recommendations than gaps. This is a contract violation, not a
	// recoverable runtime condition, so it propagates loudly.
	ErrAdvisoryContract = errors.New("advisory returned fewer recommendations than gaps")
)

// Config controls one engine instance
type Config struct {
	AutoSave         bool
	AutoSaveInterval time.Duration // Default 30s
	EnableAI         bool
	UseMockAIOnError bool

	OnProgress func(model.AssessmentProgress) // Invoked after every save
	OnError    func(error)                    // Invoked on every recoverable failure
	OnComplete func()                         // Invoked when navigation runs past the last question
}

// DefaultConfig returns the default engine configuration
func DefaultConfig() Config {
	return Config{
		AutoSave:         true,
		AutoSaveInterval: 30 * time.Second,
		EnableAI:         true,
		UseMockAIOnError: true,
	}
}

// Engine is the assessment execution state machine. It owns the answer
// mapping and navigation position exclusively; operations must not be invoked
// re-entrantly on the same instance (an internal mutex serializes the
// auto-save ticker against caller operations).
type Engine struct {
	mu sync.Mutex

	framework *model.AssessmentFramework
	actx      *model.AssessmentContext
	cfg       Config
	store     ProgressStore
	advisory  advisory.Service

	// Normal-mode position into per-section visible-question lists
	visible     [][]*model.Question
	sectionIdx  int
	questionIdx int
	complete    bool

	followUp     followUpState
	sectionStats map[string]sectionAnalysis

	recCache map[string]cachedRecommendations

	lastSavedAt *time.Time
	stopSave    chan struct{}
	saveOnce    sync.Once
}

type cachedRecommendations struct {
	recs      []model.Recommendation
	expiresAt time.Time
}

const (
	recCacheTTL        = 5 * time.Minute
	recCacheMaxEntries = 50
	storageKeyPrefix   = "assessment_progress_"
)

// New creates an engine for one assessment run. The advisory service may be
// nil when AI is disabled; store may be nil to run without persistence.
func New(fw *model.AssessmentFramework, assessmentID, businessProfileID string, cfg Config, store ProgressStore, adv advisory.Service) *Engine {
	if cfg.AutoSaveInterval <= 0 {
		cfg.AutoSaveInterval = 30 * time.Second
	}

	e := &Engine{
		framework: fw,
		actx: &model.AssessmentContext{
			FrameworkID:       fw.ID,
			AssessmentID:      assessmentID,
			BusinessProfileID: businessProfileID,
			Answers:           make(map[string]model.Answer),
			Metadata:          make(map[string]string),
		},
		cfg:          cfg,
		store:        store,
		advisory:     adv,
		followUp:     followUpState{index: -1},
		sectionStats: make(map[string]sectionAnalysis),
		recCache:     make(map[string]cachedRecommendations),
		stopSave:     make(chan struct{}),
	}
	e.recompute()

	if cfg.AutoSave && store != nil {
		go e.autoSaveLoop()
	}
	return e
}

// Context returns the assessment context (owned by the engine; callers must
// treat it as read-only)
func (e *Engine) Context() *model.AssessmentContext {
	return e.actx
}

// AnswerQuestion records or replaces the answer for a question. Validation
// failures are returned structurally, never as errors; the error return is
// reserved for unknown question ids.
func (e *Engine) AnswerQuestion(ctx context.Context, questionID string, value model.AnswerValue) (*model.ValidationError, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	q := e.findQuestion(questionID)
	if q == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownQuestion, questionID)
	}

	if vErr := Validate(q, value, e.actx); vErr != nil {
		return vErr, nil
	}

	provenance := model.ProvenanceFramework
	var meta map[string]string
	if e.followUp.active || q.IsAIGenerated() {
		provenance = model.ProvenanceAI
		if reason := q.Metadata[model.MetaAIReasoning]; reason != "" {
			meta = map[string]string{model.MetaAIReasoning: reason}
		}
	}

	e.actx.Answers[questionID] = model.Answer{
		QuestionID: questionID,
		Value:      value,
		AnsweredAt: time.Now(),
		Provenance: provenance,
		Metadata:   meta,
	}

	// The new answer may flip any condition anywhere, so visibility is
	// recomputed for every section before the lock is released.
	if section := e.currentSection(); section != nil {
		delete(e.sectionStats, section.ID)
	}
	e.recompute()
	e.clampPosition()

	if e.cfg.AutoSave && e.store != nil {
		e.saveLocked(ctx)
	}
	return nil, nil
}

// NextQuestion advances the flow and returns the new current question, or nil
// when the assessment is complete. In normal mode it first evaluates the
// follow-up trigger for the just-answered current question.
func (e *Engine) NextQuestion(ctx context.Context) (*model.Question, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.complete {
		return nil, nil
	}

	if e.followUp.active {
		e.followUp.index++
		if e.followUp.index < len(e.followUp.pending) {
			return &e.followUp.pending[e.followUp.index], nil
		}
		e.followUp.reset()
		return e.advanceNormal(), nil
	}

	if q := e.currentQuestion(); q != nil {
		if a, ok := e.actx.Answers[q.ID]; ok {
			if e.shouldTriggerFollowUp(q, &a) && e.enterFollowUp(ctx, q, &a) {
				return &e.followUp.pending[0], nil
			}
		}
	}

	return e.advanceNormal(), nil
}

// PreviousQuestion moves backward. Leaving follow-up mode at index 0 exits
// without further movement so the user keeps explicit control.
func (e *Engine) PreviousQuestion() (*model.Question, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.followUp.active {
		if e.followUp.index <= 0 {
			e.followUp.reset()
			return e.currentQuestion(), nil
		}
		e.followUp.index--
		return &e.followUp.pending[e.followUp.index], nil
	}

	if e.complete {
		e.complete = false
		return e.currentQuestion(), nil
	}

	if e.questionIdx > 0 {
		e.questionIdx--
		return e.currentQuestion(), nil
	}
	for s := e.sectionIdx - 1; s >= 0; s-- {
		if len(e.visible[s]) > 0 {
			e.sectionIdx = s
			e.questionIdx = len(e.visible[s]) - 1
			return e.currentQuestion(), nil
		}
	}
	return e.currentQuestion(), nil
}

// JumpToSection repositions to the first visible question of a section.
// Invalid indices are no-ops returning false.
func (e *Engine) JumpToSection(index int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if index < 0 || index >= len(e.visible) || len(e.visible[index]) == 0 {
		return false
	}
	e.followUp.reset()
	e.complete = false
	e.sectionIdx = index
	e.questionIdx = 0
	return true
}

// JumpToQuestion repositions to a question by section/question index into the
// current visible lists. Invalid indices are no-ops returning false.
func (e *Engine) JumpToQuestion(section, question int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if section < 0 || section >= len(e.visible) {
		return false
	}
	if question < 0 || question >= len(e.visible[section]) {
		return false
	}
	e.followUp.reset()
	e.complete = false
	e.sectionIdx = section
	e.questionIdx = question
	return true
}

// CurrentQuestion returns the question at the current position, or nil when
// the assessment is complete
func (e *Engine) CurrentQuestion() *model.Question {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.followUp.active {
		return &e.followUp.pending[e.followUp.index]
	}
	return e.currentQuestion()
}

// CurrentSection returns the section owning the current position
func (e *Engine) CurrentSection() *model.AssessmentSection {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.currentSection()
}

// InFollowUp reports whether the engine is inside an injected follow-up sub-flow
func (e *Engine) InFollowUp() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.followUp.active
}

// Answers returns a copy of the recorded answer mapping
func (e *Engine) Answers() map[string]model.Answer {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[string]model.Answer, len(e.actx.Answers))
	for k, v := range e.actx.Answers {
		out[k] = v
	}
	return out
}

// IsComplete reports whether navigation has run past the last question
func (e *Engine) IsComplete() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.complete
}

// Progress recomputes progress from the live visible lists and answer
// mapping. Never cached, so it stays correct after conditional-visibility
// changes.
func (e *Engine) Progress() model.AssessmentProgress {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.progressLocked()
}

func (e *Engine) progressLocked() model.AssessmentProgress {
	total, answered := 0, 0
	for _, qs := range e.visible {
		for _, q := range qs {
			total++
			if _, ok := e.actx.Answers[q.ID]; ok {
				answered++
			}
		}
	}
	if answered > total {
		answered = total
	}

	p := model.AssessmentProgress{
		TotalQuestions: total,
		Answered:       answered,
		LastSavedAt:    e.lastSavedAt,
	}
	if total > 0 {
		p.PercentComplete = answered * 100 / total
	}
	if section := e.currentSection(); section != nil {
		p.CurrentSectionID = section.ID
	}
	if q := e.currentQuestionOrFollowUp(); q != nil {
		p.CurrentQuestionID = q.ID
	}
	if e.framework.EstimatedMinutes > 0 {
		remaining := e.framework.EstimatedMinutes * (100 - p.PercentComplete) / 100
		p.EstimatedMinutes = &remaining
	}
	return p
}

// CalculateResults scores every visible question, derives gaps, synthesizes
// recommendations, and returns the assembled result. This is the one
// operation allowed to take substantial wall-clock time; it must not be
// invoked concurrently with itself on the same engine.
func (e *Engine) CalculateResults(ctx context.Context) (*model.AssessmentResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	sectionScores := make(map[string]int, len(e.framework.Sections))
	var allVisible []*model.Question
	var gaps []model.Gap

	for si := range e.framework.Sections {
		section := &e.framework.Sections[si]
		visible := e.visible[si]
		sectionScores[section.ID] = WeightedScore(visible, e.actx.Answers)
		allVisible = append(allVisible, visible...)

		for _, q := range visible {
			a, answered := e.actx.Answers[q.ID]
			if answered {
				score := Score(q, &a)
				if score < gapThreshold {
					gaps = append(gaps, newGap(q, section, &a, score))
				}
				continue
			}
			if q.Validation != nil && q.Validation.Required {
				gaps = append(gaps, newGap(q, section, nil, 0))
			}
		}
	}

	overall := WeightedScore(allVisible, e.actx.Answers)

	recs, err := e.buildRecommendations(ctx, gaps)
	if err != nil {
		return nil, err
	}

	return &model.AssessmentResult{
		AssessmentID:    e.actx.AssessmentID,
		FrameworkID:     e.framework.ID,
		OverallScore:    overall,
		SectionScores:   sectionScores,
		Maturity:        Maturity(overall),
		Gaps:            gaps,
		Recommendations: recs,
		CompletedAt:     time.Now(),
	}, nil
}

// Save serializes the current snapshot to the progress store
func (e *Engine) Save(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.saveLocked(ctx)
}

// Restore rehydrates answers, position, and follow-up state from a prior
// snapshot. Returns whether one existed; a failed restore reads as "no prior
// progress".
func (e *Engine) Restore(ctx context.Context) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.restoreLocked(ctx)
}

// Destroy stops the auto-save timer, clears the in-memory caches, and
// performs one final save
func (e *Engine) Destroy(ctx context.Context) {
	e.saveOnce.Do(func() { close(e.stopSave) })

	e.mu.Lock()
	defer e.mu.Unlock()

	e.recCache = make(map[string]cachedRecommendations)
	e.sectionStats = make(map[string]sectionAnalysis)
	if e.store != nil {
		e.saveLocked(ctx)
	}
}

// Discard stops the auto-save timer and drops the in-memory caches without
// persisting. Used to tear down an engine that never held real progress, so a
// failed resume cannot leave an empty snapshot behind.
func (e *Engine) Discard() {
	e.saveOnce.Do(func() { close(e.stopSave) })

	e.mu.Lock()
	defer e.mu.Unlock()
	e.recCache = make(map[string]cachedRecommendations)
	e.sectionStats = make(map[string]sectionAnalysis)
}

// Internal helpers. All assume e.mu is held.

func (e *Engine) recompute() {
	e.visible = make([][]*model.Question, len(e.framework.Sections))
	for si := range e.framework.Sections {
		e.visible[si] = VisibleQuestions(&e.framework.Sections[si], e.actx.Answers)
	}
}

func (e *Engine) clampPosition() {
	if e.sectionIdx >= len(e.visible) {
		e.sectionIdx = len(e.visible) - 1
	}
	if e.sectionIdx < 0 {
		e.sectionIdx = 0
	}
	if len(e.visible) == 0 {
		return
	}
	if e.questionIdx >= len(e.visible[e.sectionIdx]) {
		e.questionIdx = len(e.visible[e.sectionIdx]) - 1
	}
	if e.questionIdx < 0 {
		e.questionIdx = 0
	}
}

func (e *Engine) currentQuestion() *model.Question {
	if e.complete || e.sectionIdx >= len(e.visible) {
		return nil
	}
	qs := e.visible[e.sectionIdx]
	if e.questionIdx >= len(qs) {
		return nil
	}
	return qs[e.questionIdx]
}

func (e *Engine) currentQuestionOrFollowUp() *model.Question {
	if e.followUp.active {
		return &e.followUp.pending[e.followUp.index]
	}
	return e.currentQuestion()
}

func (e *Engine) currentSection() *model.AssessmentSection {
	if e.sectionIdx >= len(e.framework.Sections) {
		return nil
	}
	return &e.framework.Sections[e.sectionIdx]
}

func (e *Engine) currentSectionID() string {
	if s := e.currentSection(); s != nil {
		return s.ID
	}
	return ""
}

// findQuestion resolves an id against the framework or the pending follow-ups
func (e *Engine) findQuestion(id string) *model.Question {
	if q := e.framework.QuestionByID(id); q != nil {
		return q
	}
	for i := range e.followUp.pending {
		if e.followUp.pending[i].ID == id {
			return &e.followUp.pending[i]
		}
	}
	return nil
}

// advanceNormal moves to the next visible question, rolling into following
// sections, and flags completion when none remain
func (e *Engine) advanceNormal() *model.Question {
	e.questionIdx++
	for e.sectionIdx < len(e.visible) && e.questionIdx >= len(e.visible[e.sectionIdx]) {
		e.sectionIdx++
		e.questionIdx = 0
	}
	if e.sectionIdx >= len(e.visible) {
		e.sectionIdx = len(e.visible) - 1
		if e.sectionIdx < 0 {
			e.sectionIdx = 0
		}
		e.clampPosition()
		e.complete = true
		if e.cfg.OnComplete != nil {
			e.cfg.OnComplete()
		}
		return nil
	}
	return e.currentQuestion()
}

func (e *Engine) reportError(err error) {
	if e.cfg.OnError != nil {
		e.cfg.OnError(err)
	}
}

func (e *Engine) autoSaveLoop() {
	ticker := time.NewTicker(e.cfg.AutoSaveInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			e.mu.Lock()
			e.saveLocked(context.Background())
			e.mu.Unlock()
		case <-e.stopSave:
			return
		}
	}
}
