package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"complyq/internal/model"
)

// Low-confidence answer vocabulary; any of these as a substring triggers a follow-up
var lowConfidenceTokens = []string{
	"no", "never", "not_implemented", "non_compliant", "partial", "unsure", "unknown",
}

// Negation vocabulary for the negative-answer classification
var negationTokens = []string{
	"no", "never", "not", "none", "unable", "cannot", "don't", "haven't",
}

// followUpState overlays the engine with the injected follow-up sub-flow
type followUpState struct {
	active  bool
	pending []model.Question
	index   int // -1 when not in follow-up mode
}

func (f *followUpState) reset() {
	f.active = false
	f.pending = nil
	f.index = -1
}

// sectionAnalysis caches a section's negative-answer ratio for 30 seconds
type sectionAnalysis struct {
	negativeRatio float64
	computedAt    time.Time
}

const sectionAnalysisTTL = 30 * time.Second

// classifyNegative reports whether an answer reads as non-compliant: a string
// containing negation vocabulary, or a scale value below 50% of its max.
func classifyNegative(q *model.Question, a *model.Answer) bool {
	if a == nil || a.Value.IsEmpty() {
		return false
	}

	if q.Type == model.QuestionTypeScale && q.ScaleMax > q.ScaleMin {
		if n, ok := a.Value.Numeric(); ok {
			return n < float64(q.ScaleMax)*0.5
		}
	}

	text := strings.ToLower(a.Value.String())
	for _, token := range negationTokens {
		if strings.Contains(text, token) {
			return true
		}
	}
	return false
}

// shouldTriggerFollowUp decides, immediately before advancing, whether the
// advisory service should be consulted for follow-up questions.
func (e *Engine) shouldTriggerFollowUp(q *model.Question, a *model.Answer) bool {
	if a == nil || a.Value.IsEmpty() {
		return false
	}
	// No follow-up chains off a follow-up
	if a.Provenance == model.ProvenanceAI || q.IsAIGenerated() {
		return false
	}
	if q.Metadata[model.MetaDisableFollowUp] == "true" {
		return false
	}
	if q.Metadata[model.MetaForceFollowUp] == "true" {
		return true
	}

	// Low-confidence vocabulary in string answers
	text := strings.ToLower(a.Value.String())
	for _, token := range lowConfidenceTokens {
		if strings.Contains(text, token) {
			return true
		}
	}

	// Scale answers below 60% of the declared max
	if q.Type == model.QuestionTypeScale && q.ScaleMax > q.ScaleMin {
		if n, ok := a.Value.Numeric(); ok && n < float64(q.ScaleMax)*0.6 {
			return true
		}
	}

	negative := classifyNegative(q, a)

	// High-weight questions with negative answers
	if q.EffectiveWeight() >= 3 && negative {
		return true
	}

	// Sections trending negative pull further follow-ups for negative answers
	if negative {
		if section := e.framework.SectionOfQuestion(q.ID); section != nil {
			if e.sectionNegativeRatio(section) > 0.3 {
				return true
			}
		}
	}
	return false
}

// sectionNegativeRatio computes (and caches for 30s) the fraction of the
// section's answered questions classified negative
func (e *Engine) sectionNegativeRatio(section *model.AssessmentSection) float64 {
	if cached, ok := e.sectionStats[section.ID]; ok {
		if time.Since(cached.computedAt) < sectionAnalysisTTL {
			return cached.negativeRatio
		}
	}

	answered, negative := 0, 0
	for i := range section.Questions {
		q := &section.Questions[i]
		a, ok := e.actx.Answers[q.ID]
		if !ok {
			continue
		}
		answered++
		if classifyNegative(q, &a) {
			negative++
		}
	}

	ratio := 0.0
	if answered > 0 {
		ratio = float64(negative) / float64(answered)
	}
	e.sectionStats[section.ID] = sectionAnalysis{negativeRatio: ratio, computedAt: time.Now()}
	return ratio
}

// newAIQuestionID builds a synthetic identifier embedding a timestamp
func newAIQuestionID() string {
	return fmt.Sprintf("ai_q_%d_%s", time.Now().UnixMilli(), uuid.New().String()[:8])
}

// mockFollowUps synthesizes context-appropriate follow-up questions from a
// small fixed template set when the advisory service is unavailable. At most
// one answer-shaped question plus a timeline question.
func mockFollowUps(q *model.Question, a *model.Answer) []model.Question {
	reasoning := "Generated locally because the advisory service was unavailable"
	meta := func() map[string]string {
		return map[string]string{
			model.MetaAIGenerated: "true",
			model.MetaAIReasoning: reasoning,
		}
	}

	var followUps []model.Question

	text := strings.ToLower(a.Value.String())
	switch {
	case (q.Type == model.QuestionTypeRadio || q.Type == model.QuestionTypeSelect) && classifyNegative(q, a):
		// Barrier checklist for negative choice answers
		followUps = append(followUps, model.Question{
			ID:     newAIQuestionID(),
			Type:   model.QuestionTypeCheckbox,
			Prompt: fmt.Sprintf("What barriers prevent you from addressing %q?", q.Prompt),
			Options: []model.Option{
				{Value: "budget", Label: "Budget constraints"},
				{Value: "expertise", Label: "Lack of in-house expertise"},
				{Value: "time", Label: "Competing priorities"},
				{Value: "tooling", Label: "Missing tooling or systems"},
				{Value: "awareness", Label: "Was not aware this was required"},
			},
			Metadata: meta(),
		})

	case strings.Contains(text, "partial"):
		// Completeness scale for partial answers
		followUps = append(followUps, model.Question{
			ID:            newAIQuestionID(),
			Type:          model.QuestionTypeScale,
			Prompt:        fmt.Sprintf("How complete is your implementation of %q?", q.Prompt),
			ScaleMin:      1,
			ScaleMax:      5,
			ScaleMinLabel: "Just started",
			ScaleMaxLabel: "Nearly complete",
			Metadata:      meta(),
		})

	case q.Type == model.QuestionTypeScale && Score(q, a) < 0.5:
		// Free-text improvement prompt for low scale scores
		followUps = append(followUps, model.Question{
			ID:       newAIQuestionID(),
			Type:     model.QuestionTypeTextarea,
			Prompt:   fmt.Sprintf("What would most improve your rating on %q?", q.Prompt),
			Metadata: meta(),
		})

	default:
		// Generic context question as a last resort
		followUps = append(followUps, model.Question{
			ID:       newAIQuestionID(),
			Type:     model.QuestionTypeTextarea,
			Prompt:   fmt.Sprintf("Can you provide more context on your answer to %q?", q.Prompt),
			Metadata: meta(),
		})
	}

	if len(followUps) < 2 {
		followUps = append(followUps, model.Question{
			ID:     newAIQuestionID(),
			Type:   model.QuestionTypeRadio,
			Prompt: "When do you plan to address this area?",
			Options: []model.Option{
				{Value: "this_quarter", Label: "This quarter"},
				{Value: "this_year", Label: "Within the year"},
				{Value: "next_year", Label: "Next year or later"},
				{Value: "no_plans", Label: "No current plans"},
			},
			Metadata: meta(),
		})
	}
	return followUps
}

// enterFollowUp consults the advisory service (or the local generator) and
// installs the pending follow-up list. Returns whether follow-up mode was
// entered.
func (e *Engine) enterFollowUp(ctx context.Context, q *model.Question, a *model.Answer) bool {
	var questions []model.Question
	reasoning := ""

	if e.cfg.EnableAI && e.advisory != nil {
		req := &model.FollowUpRequest{
			QuestionID:   q.ID,
			QuestionText: q.Prompt,
			Answer:       a.Value,
			Context: model.ContextBundle{
				FrameworkID:       e.framework.ID,
				SectionID:         e.currentSectionID(),
				Answers:           e.actx.Answers,
				BusinessProfileID: e.actx.BusinessProfileID,
			},
		}

		resp, err := e.advisory.FollowUpQuestions(ctx, req)
		if err == nil && len(resp.FollowUpQuestions) > 0 {
			questions = resp.FollowUpQuestions
			reasoning = resp.Reasoning
		} else if err != nil {
			e.reportError(fmt.Errorf("follow-up generation failed: %w", err))
			if !e.cfg.UseMockAIOnError {
				return false
			}
			questions = mockFollowUps(q, a)
		} else if e.cfg.UseMockAIOnError {
			questions = mockFollowUps(q, a)
		}
	} else if e.cfg.UseMockAIOnError {
		questions = mockFollowUps(q, a)
	}

	if len(questions) == 0 {
		return false
	}

	// Tag advisory-supplied questions with AI-origin metadata
	for i := range questions {
		if questions[i].ID == "" {
			questions[i].ID = newAIQuestionID()
		}
		if questions[i].Metadata == nil {
			questions[i].Metadata = make(map[string]string)
		}
		questions[i].Metadata[model.MetaAIGenerated] = "true"
		if reasoning != "" {
			questions[i].Metadata[model.MetaAIReasoning] = reasoning
		}
	}

	e.followUp.active = true
	e.followUp.pending = questions
	e.followUp.index = 0
	return true
}
