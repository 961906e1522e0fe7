package engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"complyq/internal/model"
)

func TestSeverityForScore(t *testing.T) {
	assert.Equal(t, model.SeverityCritical, severityForScore(0))
	assert.Equal(t, model.SeverityHigh, severityForScore(0.25))
	assert.Equal(t, model.SeverityHigh, severityForScore(0.49))
	assert.Equal(t, model.SeverityMedium, severityForScore(0.5))
	assert.Equal(t, model.SeverityMedium, severityForScore(0.69))
	assert.Equal(t, model.SeverityLow, severityForScore(0.8))
}

func TestNewGapUnanswered(t *testing.T) {
	q := &model.Question{ID: "q1", Prompt: "Do you have a policy?"}
	section := &model.AssessmentSection{Title: "Governance"}

	gap := newGap(q, section, nil, 0)
	assert.Equal(t, "gap_q1", gap.ID)
	assert.Equal(t, model.SeverityCritical, gap.Severity)
	assert.Equal(t, "Not addressed", gap.CurrentState)
	assert.Empty(t, gap.ActualAnswer)
}

func TestNewGapAnswered(t *testing.T) {
	q := &model.Question{ID: "q1", Prompt: "Encrypted at rest?", Options: []model.Option{
		{Value: "yes", Label: "Yes, everywhere"},
	}}
	section := &model.AssessmentSection{Title: "Security"}
	a := &model.Answer{Value: model.TextValue("partial")}

	gap := newGap(q, section, a, 0.5)
	assert.Equal(t, model.SeverityMedium, gap.Severity)
	assert.Equal(t, "partial", gap.ActualAnswer)
	assert.Equal(t, "Yes, everywhere", gap.ExpectedAnswer)
	assert.Contains(t, gap.CurrentState, "50%")
}

func makeGaps(n int, severity model.Severity) []model.Gap {
	gaps := make([]model.Gap, 0, n)
	for i := 0; i < n; i++ {
		gaps = append(gaps, model.Gap{
			ID:           fmt.Sprintf("gap_q%d_%s", i, severity),
			QuestionText: fmt.Sprintf("question %d", i),
			Severity:     severity,
		})
	}
	return gaps
}

func TestTemplateRecommendationsPriorityBuckets(t *testing.T) {
	var gaps []model.Gap
	gaps = append(gaps, makeGaps(2, model.SeverityLow)...)
	gaps = append(gaps, makeGaps(4, model.SeverityCritical)...)
	gaps = append(gaps, makeGaps(2, model.SeverityHigh)...)

	recs := templateRecommendations(gaps)
	require.Len(t, recs, 8)

	// Sorted by severity rank, then bucketed: first 3 immediate, next 3
	// short_term, rest medium_term
	for i, rec := range recs {
		switch {
		case i < 3:
			assert.Equal(t, model.PriorityImmediate, rec.Priority, "index %d", i)
		case i < 6:
			assert.Equal(t, model.PriorityShortTerm, rec.Priority, "index %d", i)
		default:
			assert.Equal(t, model.PriorityMediumTerm, rec.Priority, "index %d", i)
		}
	}

	// Critical gaps sort ahead of high, high ahead of low
	assert.Contains(t, recs[0].GapID, "critical")
	assert.Contains(t, recs[4].GapID, "high")
	assert.Contains(t, recs[7].GapID, "low")
}

func TestTemplateRecommendationsCap(t *testing.T) {
	gaps := makeGaps(14, model.SeverityMedium)
	recs := templateRecommendations(gaps)
	assert.Len(t, recs, 10)
}

func TestTemplateRecommendationsEffortBySeverity(t *testing.T) {
	recs := templateRecommendations([]model.Gap{
		{ID: "g1", Severity: model.SeverityCritical},
		{ID: "g2", Severity: model.SeverityLow},
	})
	require.Len(t, recs, 2)
	assert.Equal(t, "1-2 weeks", recs[0].Effort)
	assert.Equal(t, "2-3 months", recs[1].Effort)
}

func TestTemplateRecommendationsLinkage(t *testing.T) {
	recs := templateRecommendations([]model.Gap{{ID: "gap_q9", Severity: model.SeverityHigh}})
	require.Len(t, recs, 1)
	assert.Equal(t, "rec_gap_q9", recs[0].ID)
	assert.Equal(t, "gap_q9", recs[0].GapID)
}

func TestInferIndustry(t *testing.T) {
	fw := &model.AssessmentFramework{Sections: []model.AssessmentSection{
		{Questions: []model.Question{
			{ID: "q1", Prompt: "Do you store patient records?"},
		}},
	}}
	assert.Equal(t, "Healthcare", inferIndustry(fw, nil))

	generic := &model.AssessmentFramework{Sections: []model.AssessmentSection{
		{Questions: []model.Question{{ID: "q1", Prompt: "Do you have a privacy program?"}}},
	}}
	assert.Equal(t, "General Business", inferIndustry(generic, nil))
}

func TestInferIndustryFromAnswers(t *testing.T) {
	fw := &model.AssessmentFramework{Sections: []model.AssessmentSection{
		{Questions: []model.Question{{ID: "q1", Prompt: "Describe your business."}}},
	}}
	answers := map[string]model.Answer{
		"q1": {Value: model.TextValue("We run a SaaS platform")},
	}
	assert.Equal(t, "Technology", inferIndustry(fw, answers))
}

func TestInferExistingPolicies(t *testing.T) {
	fw := &model.AssessmentFramework{Sections: []model.AssessmentSection{
		{Questions: []model.Question{
			{ID: "q1", Prompt: "Do you have a documented privacy policy?"},
			{ID: "q2", Prompt: "Do you have an incident response policy?"},
			{ID: "q3", Prompt: "How many employees do you have?"},
		}},
	}}
	answers := map[string]model.Answer{
		"q1": {Value: model.TextValue("yes")},
		"q2": {Value: model.TextValue("no")},
		"q3": {Value: model.TextValue("yes we documented 50")},
	}

	policies := inferExistingPolicies(fw, answers)
	require.Len(t, policies, 1)
	assert.Equal(t, "Do you have a documented privacy policy?", policies[0])
}

func TestInferUrgency(t *testing.T) {
	risky := map[string]model.Answer{
		"q1": {Value: model.TextValue("we had a breach last year")},
		"q2": {Value: model.TextValue("pending audit finding")},
		"q3": {Value: model.TextValue("regulator fine expected")},
	}
	assert.Equal(t, model.UrgencyUrgent, inferUrgency(risky, 10))

	oneRisk := map[string]model.Answer{
		"q1": {Value: model.TextValue("minor incident reported")},
	}
	assert.Equal(t, model.UrgencyUrgent, inferUrgency(oneRisk, 80))
	assert.Equal(t, model.UrgencyStandard, inferUrgency(oneRisk, 20))

	clean := map[string]model.Answer{
		"q1": {Value: model.TextValue("everything operating normally")},
	}
	assert.Equal(t, model.UrgencyGradual, inferUrgency(clean, 20))
	assert.Equal(t, model.UrgencyStandard, inferUrgency(clean, 80))
}
