package engine

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"complyq/internal/cache"
	"complyq/internal/model"
)

func yesNo() []model.Option {
	return []model.Option{
		{Value: "yes", Label: "Yes"},
		{Value: "no", Label: "No"},
	}
}

func testFramework() *model.AssessmentFramework {
	return &model.AssessmentFramework{
		ID:               "fw_test",
		Name:             "Test Framework",
		EstimatedMinutes: 10,
		Sections: []model.AssessmentSection{
			{
				ID:    "s1",
				Title: "Policies",
				Questions: []model.Question{
					{
						ID:         "q1",
						Type:       model.QuestionTypeRadio,
						Prompt:     "Do you have a documented security policy?",
						Weight:     3,
						Validation: &model.ValidationRules{Required: true},
						Options:    yesNo(),
					},
					{
						ID:     "q2",
						Type:   model.QuestionTypeTextarea,
						Prompt: "What prevents you from documenting one?",
						Conditions: []model.VisibilityCondition{
							{QuestionID: "q1", Operator: model.OpEquals, Value: "no"},
						},
					},
					{
						ID:      "q3",
						Type:    model.QuestionTypeRadio,
						Prompt:  "Is access reviewed quarterly?",
						Options: yesNo(),
					},
				},
			},
			{
				ID:    "s2",
				Title: "Operations",
				Questions: []model.Question{
					{
						ID:       "q4",
						Type:     model.QuestionTypeScale,
						Prompt:   "Rate your patching process",
						ScaleMin: 1,
						ScaleMax: 5,
					},
					{
						ID:     "q5",
						Type:   model.QuestionTypeCheckbox,
						Prompt: "Which safeguards are in place?",
						Options: []model.Option{
							{Value: "mfa"}, {Value: "backup"}, {Value: "logging"}, {Value: "patching"},
						},
					},
				},
			},
		},
	}
}

// quietConfig disables AI and persistence so navigation tests stay deterministic
func quietConfig() Config {
	return Config{
		AutoSave:         false,
		EnableAI:         false,
		UseMockAIOnError: false,
	}
}

func newTestEngine(cfg Config) *Engine {
	return New(testFramework(), "test-1", "", cfg, nil, nil)
}

type stubAdvisory struct {
	followUps   *model.FollowUpResponse
	followErr   error
	followCalls int

	recs     *model.RecommendationResponse
	recErr   error
	recCalls int
}

func (s *stubAdvisory) FollowUpQuestions(ctx context.Context, req *model.FollowUpRequest) (*model.FollowUpResponse, error) {
	s.followCalls++
	return s.followUps, s.followErr
}

func (s *stubAdvisory) Recommendations(ctx context.Context, req *model.RecommendationRequest) (*model.RecommendationResponse, error) {
	s.recCalls++
	return s.recs, s.recErr
}

func (s *stubAdvisory) QuestionHelp(ctx context.Context, req *model.HelpRequest) (*model.HelpResponse, error) {
	return &model.HelpResponse{Explanation: "stub"}, nil
}

func TestNewEngineStartsAtFirstQuestion(t *testing.T) {
	e := newTestEngine(quietConfig())
	defer e.Destroy(context.Background())

	q := e.CurrentQuestion()
	require.NotNil(t, q)
	assert.Equal(t, "q1", q.ID)
	assert.False(t, e.IsComplete())
	assert.False(t, e.InFollowUp())
}

func TestAnswerUnknownQuestion(t *testing.T) {
	e := newTestEngine(quietConfig())
	defer e.Destroy(context.Background())

	_, err := e.AnswerQuestion(context.Background(), "nope", model.TextValue("yes"))
	assert.ErrorIs(t, err, ErrUnknownQuestion)
}

func TestAnswerValidationFailure(t *testing.T) {
	e := newTestEngine(quietConfig())
	defer e.Destroy(context.Background())

	vErr, err := e.AnswerQuestion(context.Background(), "q1", model.TextValue("  "))
	require.NoError(t, err)
	require.NotNil(t, vErr)
	assert.Equal(t, "q1", vErr.QuestionID)

	// Rejected answers are not recorded
	assert.Empty(t, e.Answers())
}

func TestAnswerReplacesPrevious(t *testing.T) {
	e := newTestEngine(quietConfig())
	defer e.Destroy(context.Background())

	ctx := context.Background()
	_, err := e.AnswerQuestion(ctx, "q1", model.TextValue("yes"))
	require.NoError(t, err)
	_, err = e.AnswerQuestion(ctx, "q1", model.TextValue("no"))
	require.NoError(t, err)

	answers := e.Answers()
	require.Len(t, answers, 1)
	assert.Equal(t, "no", answers["q1"].Value.String())
}

func TestConditionalQuestionAppearsOnAnswer(t *testing.T) {
	e := newTestEngine(quietConfig())
	defer e.Destroy(context.Background())
	ctx := context.Background()

	// q2 is gated on q1 == "no": hidden while unanswered
	p := e.Progress()
	assert.Equal(t, 4, p.TotalQuestions)

	_, err := e.AnswerQuestion(ctx, "q1", model.TextValue("no"))
	require.NoError(t, err)

	p = e.Progress()
	assert.Equal(t, 5, p.TotalQuestions)
	assert.Equal(t, 1, p.Answered)
	assert.Equal(t, 20, p.PercentComplete)

	q, err := e.NextQuestion(ctx)
	require.NoError(t, err)
	assert.Equal(t, "q2", q.ID)
}

func TestNavigationRolloverAndComplete(t *testing.T) {
	completed := false
	cfg := quietConfig()
	cfg.OnComplete = func() { completed = true }

	e := newTestEngine(cfg)
	defer e.Destroy(context.Background())
	ctx := context.Background()

	_, err := e.AnswerQuestion(ctx, "q1", model.TextValue("yes"))
	require.NoError(t, err)

	// q2 stays hidden, so Next rolls to q3
	q, err := e.NextQuestion(ctx)
	require.NoError(t, err)
	require.NotNil(t, q)
	assert.Equal(t, "q3", q.ID)

	_, err = e.AnswerQuestion(ctx, "q3", model.TextValue("yes"))
	require.NoError(t, err)

	// Rollover into the second section
	q, err = e.NextQuestion(ctx)
	require.NoError(t, err)
	require.NotNil(t, q)
	assert.Equal(t, "q4", q.ID)

	_, err = e.AnswerQuestion(ctx, "q4", model.NumberValue(5))
	require.NoError(t, err)
	q, err = e.NextQuestion(ctx)
	require.NoError(t, err)
	require.NotNil(t, q)
	assert.Equal(t, "q5", q.ID)

	_, err = e.AnswerQuestion(ctx, "q5", model.OptionsValue("mfa", "backup", "logging", "patching"))
	require.NoError(t, err)

	q, err = e.NextQuestion(ctx)
	require.NoError(t, err)
	assert.Nil(t, q)
	assert.True(t, e.IsComplete())
	assert.True(t, completed)
	assert.Nil(t, e.CurrentQuestion())

	// Next past the end stays complete
	q, err = e.NextQuestion(ctx)
	require.NoError(t, err)
	assert.Nil(t, q)

	p := e.Progress()
	assert.Equal(t, 100, p.PercentComplete)
}

func TestPreviousAcrossSections(t *testing.T) {
	e := newTestEngine(quietConfig())
	defer e.Destroy(context.Background())
	ctx := context.Background()

	_, err := e.AnswerQuestion(ctx, "q1", model.TextValue("yes"))
	require.NoError(t, err)
	_, _ = e.NextQuestion(ctx) // q3
	_, _ = e.NextQuestion(ctx) // q4

	require.Equal(t, "q4", e.CurrentQuestion().ID)

	q, err := e.PreviousQuestion()
	require.NoError(t, err)
	assert.Equal(t, "q3", q.ID)
}

func TestPreviousAtStartStays(t *testing.T) {
	e := newTestEngine(quietConfig())
	defer e.Destroy(context.Background())

	q, err := e.PreviousQuestion()
	require.NoError(t, err)
	assert.Equal(t, "q1", q.ID)
}

func TestPreviousReopensCompletedAssessment(t *testing.T) {
	e := newTestEngine(quietConfig())
	defer e.Destroy(context.Background())
	ctx := context.Background()

	for {
		q := e.CurrentQuestion()
		if q == nil {
			break
		}
		var v model.AnswerValue
		switch q.Type {
		case model.QuestionTypeScale:
			v = model.NumberValue(5)
		case model.QuestionTypeCheckbox:
			v = model.OptionsValue("mfa")
		default:
			v = model.TextValue("yes")
		}
		_, err := e.AnswerQuestion(ctx, q.ID, v)
		require.NoError(t, err)
		if q2, _ := e.NextQuestion(ctx); q2 == nil {
			break
		}
	}
	require.True(t, e.IsComplete())

	q, err := e.PreviousQuestion()
	require.NoError(t, err)
	require.NotNil(t, q)
	assert.False(t, e.IsComplete())
	assert.Equal(t, "q5", q.ID)
}

func TestJumpBounds(t *testing.T) {
	e := newTestEngine(quietConfig())
	defer e.Destroy(context.Background())

	assert.False(t, e.JumpToSection(-1))
	assert.False(t, e.JumpToSection(5))
	assert.False(t, e.JumpToQuestion(0, 9))
	assert.Equal(t, "q1", e.CurrentQuestion().ID)

	assert.True(t, e.JumpToSection(1))
	assert.Equal(t, "q4", e.CurrentQuestion().ID)

	assert.True(t, e.JumpToQuestion(0, 1))
	assert.Equal(t, "q3", e.CurrentQuestion().ID)
}

func TestSaveRestoreRoundTrip(t *testing.T) {
	store := cache.NewMemoryProgressStore()
	ctx := context.Background()

	cfg := quietConfig()
	e1 := New(testFramework(), "rt-1", "", cfg, store, nil)
	_, err := e1.AnswerQuestion(ctx, "q1", model.TextValue("no"))
	require.NoError(t, err)
	_, err = e1.NextQuestion(ctx)
	require.NoError(t, err)
	require.Equal(t, "q2", e1.CurrentQuestion().ID)
	require.NoError(t, e1.Save(ctx))
	e1.Destroy(ctx)

	// The snapshot lands under the assessment-scoped key
	_, ok, err := store.Get(ctx, "assessment_progress_rt-1")
	require.NoError(t, err)
	require.True(t, ok)

	e2 := New(testFramework(), "rt-1", "", cfg, store, nil)
	defer e2.Destroy(ctx)
	restored, err := e2.Restore(ctx)
	require.NoError(t, err)
	require.True(t, restored)

	assert.Equal(t, "q2", e2.CurrentQuestion().ID)
	answers := e2.Answers()
	require.Len(t, answers, 1)
	assert.Equal(t, "no", answers["q1"].Value.String())
	assert.NotNil(t, e2.Progress().LastSavedAt)
}

func TestRestoreWithoutSnapshot(t *testing.T) {
	store := cache.NewMemoryProgressStore()
	e := New(testFramework(), "missing", "", quietConfig(), store, nil)
	defer e.Destroy(context.Background())

	restored, err := e.Restore(context.Background())
	require.NoError(t, err)
	assert.False(t, restored)
}

func TestDiscardDoesNotPersist(t *testing.T) {
	store := cache.NewMemoryProgressStore()
	ctx := context.Background()

	e := New(testFramework(), "ghost", "", quietConfig(), store, nil)
	restored, err := e.Restore(ctx)
	require.NoError(t, err)
	require.False(t, restored)
	e.Discard()

	_, ok, err := store.Get(ctx, "assessment_progress_ghost")
	require.NoError(t, err)
	assert.False(t, ok)
}

// A snapshot claiming follow-up mode without pending questions must not leave
// the engine pointing outside the pending list.
func TestRestoreInconsistentFollowUpState(t *testing.T) {
	store := cache.NewMemoryProgressStore()
	ctx := context.Background()

	snap := model.ProgressSnapshot{
		AssessmentID:   "bad-1",
		FrameworkID:    "fw_test",
		FollowUpActive: true,
		FollowUpIndex:  2,
		SavedAt:        time.Now(),
	}
	data, err := json.Marshal(snap)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, "assessment_progress_bad-1", string(data)))

	e := New(testFramework(), "bad-1", "", quietConfig(), store, nil)
	defer e.Discard()
	restored, err := e.Restore(ctx)
	require.NoError(t, err)
	require.True(t, restored)

	assert.False(t, e.InFollowUp())
	require.NotNil(t, e.CurrentQuestion())
	assert.Equal(t, "q1", e.CurrentQuestion().ID)
}

func TestDestroyTwiceSafe(t *testing.T) {
	e := newTestEngine(quietConfig())
	e.Destroy(context.Background())
	e.Destroy(context.Background())
}

func TestCalculateResultsCleanRun(t *testing.T) {
	stub := &stubAdvisory{}
	cfg := quietConfig()
	cfg.EnableAI = true
	e := New(testFramework(), "test-1", "", cfg, nil, stub)
	defer e.Destroy(context.Background())
	ctx := context.Background()

	for id, v := range map[string]model.AnswerValue{
		"q1": model.TextValue("yes"),
		"q3": model.TextValue("yes"),
		"q4": model.NumberValue(5),
		"q5": model.OptionsValue("mfa", "backup", "logging", "patching"),
	} {
		_, err := e.AnswerQuestion(ctx, id, v)
		require.NoError(t, err)
	}

	result, err := e.CalculateResults(ctx)
	require.NoError(t, err)

	assert.Equal(t, 100, result.OverallScore)
	assert.Equal(t, model.MaturityOptimized, result.Maturity)
	assert.Empty(t, result.Gaps)
	assert.Empty(t, result.Recommendations)
	assert.Equal(t, 100, result.SectionScores["s1"])
	assert.Equal(t, 100, result.SectionScores["s2"])

	// Zero gaps never touch the advisory service
	assert.Equal(t, 0, stub.recCalls)
}

func TestCalculateResultsUnansweredRequiredIsCriticalGap(t *testing.T) {
	e := newTestEngine(quietConfig())
	defer e.Destroy(context.Background())

	result, err := e.CalculateResults(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, result.OverallScore)
	assert.Equal(t, model.MaturityInitial, result.Maturity)

	// Only q1 is required; unanswered optional questions open no gap
	require.Len(t, result.Gaps, 1)
	assert.Equal(t, "q1", result.Gaps[0].QuestionID)
	assert.Equal(t, model.SeverityCritical, result.Gaps[0].Severity)

	// AI disabled: template fallback still produces recommendations
	require.Len(t, result.Recommendations, 1)
	assert.Equal(t, result.Gaps[0].ID, result.Recommendations[0].GapID)
}

func TestCalculateResultsAdvisoryPathAndCache(t *testing.T) {
	stub := &stubAdvisory{
		recs: &model.RecommendationResponse{
			Recommendations: []model.RecommendationDraft{
				{Priority: model.PriorityImmediate, Title: "Write the policy", Description: "Draft and publish"},
			},
		},
	}
	cfg := quietConfig()
	cfg.EnableAI = true
	e := New(testFramework(), "test-1", "", cfg, nil, stub)
	defer e.Destroy(context.Background())
	ctx := context.Background()

	result, err := e.CalculateResults(ctx)
	require.NoError(t, err)
	require.Len(t, result.Gaps, 1)
	require.Len(t, result.Recommendations, 1)

	rec := result.Recommendations[0]
	assert.Equal(t, result.Gaps[0].ID, rec.GapID)
	assert.Equal(t, "Write the policy", rec.Title)
	assert.NotEmpty(t, rec.ID)

	// Second run with identical gaps hits the cache
	_, err = e.CalculateResults(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stub.recCalls)
}

func TestCalculateResultsAdvisoryContractViolation(t *testing.T) {
	stub := &stubAdvisory{
		recs: &model.RecommendationResponse{}, // Fewer drafts than gaps
	}
	cfg := quietConfig()
	cfg.EnableAI = true
	e := New(testFramework(), "test-1", "", cfg, nil, stub)
	defer e.Destroy(context.Background())

	_, err := e.CalculateResults(context.Background())
	assert.ErrorIs(t, err, ErrAdvisoryContract)
}

func TestCalculateResultsAdvisoryFailureFallsBack(t *testing.T) {
	var reported []error
	stub := &stubAdvisory{recErr: errors.New("remote down")}
	cfg := quietConfig()
	cfg.EnableAI = true
	cfg.OnError = func(err error) { reported = append(reported, err) }
	e := New(testFramework(), "test-1", "", cfg, nil, stub)
	defer e.Destroy(context.Background())

	result, err := e.CalculateResults(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Recommendations, 1)
	assert.Equal(t, "rec_"+result.Gaps[0].ID, result.Recommendations[0].ID)

	// UseMockAIOnError is off, so the failure surfaces on the error callback
	require.NotEmpty(t, reported)
	assert.Contains(t, reported[0].Error(), "remote down")
}
