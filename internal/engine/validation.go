package engine

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"complyq/internal/model"
)

// Validate checks a candidate value against a question's declared rules and
// returns a structured failure, or nil when valid.
//
// The required check runs first: an empty value on an optional question is
// valid and skips every type-specific check. The optional custom predicate
// runs last and receives the raw value plus the full assessment context.
func Validate(q *model.Question, v model.AnswerValue, actx *model.AssessmentContext) *model.ValidationError {
	rules := q.Validation
	if rules == nil {
		return nil
	}

	if v.IsEmpty() {
		if rules.Required {
			return fail(q, "this question is required")
		}
		return nil
	}

	if vErr := validateByType(q, rules, v); vErr != nil {
		return vErr
	}

	if rules.Custom != nil {
		if msg := rules.Custom(v, actx); msg != "" {
			return fail(q, msg)
		}
	}
	return nil
}

func validateByType(q *model.Question, rules *model.ValidationRules, v model.AnswerValue) *model.ValidationError {
	switch q.Type {
	case model.QuestionTypeText, model.QuestionTypeTextarea:
		return validateText(q, rules, v.Text)

	case model.QuestionTypeNumber, model.QuestionTypeScale:
		n, ok := v.Numeric()
		if !ok {
			return fail(q, "a numeric value is required")
		}
		if rules.Min != nil && n < *rules.Min {
			return fail(q, fmt.Sprintf("value must be at least %g", *rules.Min))
		}
		if rules.Max != nil && n > *rules.Max {
			return fail(q, fmt.Sprintf("value must be at most %g", *rules.Max))
		}

	case model.QuestionTypeCheckbox:
		count := len(v.Options)
		if rules.MinSelections > 0 && count < rules.MinSelections {
			return fail(q, fmt.Sprintf("select at least %d options", rules.MinSelections))
		}
		if rules.MaxSelections > 0 && count > rules.MaxSelections {
			return fail(q, fmt.Sprintf("select at most %d options", rules.MaxSelections))
		}

	case model.QuestionTypeDate:
		if _, err := time.Parse("2006-01-02", strings.TrimSpace(v.Text)); err != nil {
			return fail(q, "a valid date is required (YYYY-MM-DD)")
		}

	case model.QuestionTypeFile:
		return validateFiles(q, rules, v.Files)
	}
	return nil
}

func validateText(q *model.Question, rules *model.ValidationRules, text string) *model.ValidationError {
	if rules.MinLength > 0 && len(text) < rules.MinLength {
		return fail(q, fmt.Sprintf("must be at least %d characters", rules.MinLength))
	}
	if rules.MaxLength > 0 && len(text) > rules.MaxLength {
		return fail(q, fmt.Sprintf("must be at most %d characters", rules.MaxLength))
	}
	if rules.Pattern != "" {
		re, err := regexp.Compile(rules.Pattern)
		if err != nil {
			return fail(q, "invalid validation pattern")
		}
		if !re.MatchString(text) {
			return fail(q, "value does not match the required format")
		}
	}
	return nil
}

// validateFiles reuses the generic rule fields: MinSelections/MaxSelections
// bound the file count, MaxLength is the per-file byte ceiling, Pattern is a
// pipe-delimited extension allow-list.
func validateFiles(q *model.Question, rules *model.ValidationRules, files []model.FileMeta) *model.ValidationError {
	if rules.MinSelections > 0 && len(files) < rules.MinSelections {
		return fail(q, fmt.Sprintf("attach at least %d files", rules.MinSelections))
	}
	if rules.MaxSelections > 0 && len(files) > rules.MaxSelections {
		return fail(q, fmt.Sprintf("attach at most %d files", rules.MaxSelections))
	}

	var allowed []string
	if rules.Pattern != "" {
		allowed = strings.Split(strings.ToLower(rules.Pattern), "|")
	}

	for _, f := range files {
		if rules.MaxLength > 0 && f.SizeBytes > int64(rules.MaxLength) {
			return fail(q, fmt.Sprintf("file %s exceeds the %d byte limit", f.Name, rules.MaxLength))
		}
		if len(allowed) > 0 {
			ext := strings.ToLower(strings.TrimPrefix(fileExt(f.Name), "."))
			ok := false
			for _, a := range allowed {
				if ext == strings.TrimSpace(a) {
					ok = true
					break
				}
			}
			if !ok {
				return fail(q, fmt.Sprintf("file type .%s is not allowed", ext))
			}
		}
	}
	return nil
}

func fileExt(name string) string {
	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return ""
	}
	return name[idx:]
}

func fail(q *model.Question, msg string) *model.ValidationError {
	return &model.ValidationError{QuestionID: q.ID, Message: msg}
}
