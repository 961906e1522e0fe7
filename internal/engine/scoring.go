package engine

import (
	"math"
	"strings"

	"complyq/internal/model"
)

// Compliance-positive and partial-compliance tokens for choice questions
var (
	positiveTokens = map[string]bool{
		"yes": true, "true": true, "implemented": true, "compliant": true,
		"always": true, "enabled": true, "full": true, "fully_implemented": true,
	}
	partialTokens = map[string]bool{
		"partial": true, "partially": true, "in_progress": true,
		"sometimes": true, "planned": true,
	}
)

// Score converts an answer into a normalized compliance score in [0,1].
//
// Radio/select answers match against fixed token tables (positive 1, partial
// 0.5, else 0). Checkbox scores selected-count over option-count. Scale
// interpolates linearly between the declared bounds, clamped into [0,1].
// Every other type scores 1 for any non-empty answer.
func Score(q *model.Question, a *model.Answer) float64 {
	if a == nil || a.Value.IsEmpty() {
		return 0
	}

	switch q.Type {
	case model.QuestionTypeRadio, model.QuestionTypeSelect:
		token := strings.ToLower(strings.TrimSpace(a.Value.String()))
		if positiveTokens[token] {
			return 1
		}
		if partialTokens[token] {
			return 0.5
		}
		return 0

	case model.QuestionTypeCheckbox:
		if len(q.Options) == 0 {
			return 1
		}
		return float64(len(a.Value.Options)) / float64(len(q.Options))

	case model.QuestionTypeScale:
		if q.ScaleMax <= q.ScaleMin {
			return 1
		}
		n, ok := a.Value.Numeric()
		if !ok {
			return 0
		}
		score := (n - float64(q.ScaleMin)) / float64(q.ScaleMax-q.ScaleMin)
		return clamp01(score)

	default:
		return 1
	}
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// WeightedScore aggregates per-question scores into a weight-normalized
// integer percentage. A set with zero total weight scores 0.
func WeightedScore(questions []*model.Question, answers map[string]model.Answer) int {
	var sum, totalWeight float64
	for _, q := range questions {
		w := q.EffectiveWeight()
		totalWeight += w
		if a, ok := answers[q.ID]; ok {
			sum += Score(q, &a) * w
		}
	}
	if totalWeight == 0 {
		return 0
	}
	return int(math.Round(sum / totalWeight * 100))
}

// Maturity classifies an overall score on the fixed five-level ladder
func Maturity(overall int) model.MaturityLevel {
	switch {
	case overall >= 90:
		return model.MaturityOptimized
	case overall >= 75:
		return model.MaturityManaged
	case overall >= 60:
		return model.MaturityDefined
	case overall >= 40:
		return model.MaturityDeveloping
	default:
		return model.MaturityInitial
	}
}
