package engine

import (
	"strconv"
	"strings"

	"complyq/internal/model"
)

// IsVisible decides whether a question (or section) gated by conds should be
// shown under the current answers. Conditions fold left to right starting from
// true; each condition is merged using the PREVIOUS condition's CombineWith
// combinator (the first merges with AND semantics). A condition whose
// referenced question has no recorded answer evaluates to false.
func IsVisible(conds []model.VisibilityCondition, answers map[string]model.Answer) bool {
	if len(conds) == 0 {
		return true
	}

	visible := true
	combine := model.CombineAnd
	for _, cond := range conds {
		met := conditionMet(cond, answers)
		if combine == model.CombineOr {
			visible = visible || met
		} else {
			visible = visible && met
		}
		combine = cond.CombineWith
		if combine == "" {
			combine = model.CombineAnd
		}
	}
	return visible
}

func conditionMet(cond model.VisibilityCondition, answers map[string]model.Answer) bool {
	ans, ok := answers[cond.QuestionID]
	if !ok {
		return false
	}

	switch cond.Operator {
	case model.OpEquals:
		return ans.Value.String() == cond.Value
	case model.OpNotEquals:
		return ans.Value.String() != cond.Value
	case model.OpContains:
		return answerContains(ans.Value, cond.Value)
	case model.OpGreaterThan:
		a, okA := ans.Value.Numeric()
		b, okB := parseNum(cond.Value)
		return okA && okB && a > b
	case model.OpLessThan:
		a, okA := ans.Value.Numeric()
		b, okB := parseNum(cond.Value)
		return okA && okB && a < b
	case model.OpIn:
		return valueIn(ans.Value, cond.Value)
	case model.OpNotIn:
		return !valueIn(ans.Value, cond.Value)
	}
	return false
}

func answerContains(v model.AnswerValue, needle string) bool {
	if v.Kind == model.KindOptions {
		for _, opt := range v.Options {
			if opt == needle {
				return true
			}
		}
		return false
	}
	return strings.Contains(v.String(), needle)
}

// valueIn matches the answer against a comma-separated candidate list
func valueIn(v model.AnswerValue, list string) bool {
	s := v.String()
	for _, candidate := range strings.Split(list, ",") {
		if strings.TrimSpace(candidate) == s {
			return true
		}
	}
	return false
}

func parseNum(s string) (float64, bool) {
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return n, err == nil
}

// VisibleQuestions returns the section's visible questions in declaration
// order. The section's own conditions gate the whole list.
func VisibleQuestions(section *model.AssessmentSection, answers map[string]model.Answer) []*model.Question {
	if !IsVisible(section.Conditions, answers) {
		return nil
	}

	visible := make([]*model.Question, 0, len(section.Questions))
	for i := range section.Questions {
		q := &section.Questions[i]
		if IsVisible(q.Conditions, answers) {
			visible = append(visible, q)
		}
	}
	return visible
}
