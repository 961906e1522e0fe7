package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"complyq/internal/model"
)

func fptr(f float64) *float64 { return &f }

func TestValidateNoRules(t *testing.T) {
	q := &model.Question{ID: "q1", Type: model.QuestionTypeText}
	assert.Nil(t, Validate(q, model.TextValue(""), nil))
}

func TestValidateRequired(t *testing.T) {
	q := &model.Question{
		ID:         "q1",
		Type:       model.QuestionTypeText,
		Validation: &model.ValidationRules{Required: true},
	}

	vErr := Validate(q, model.TextValue("   "), nil)
	require.NotNil(t, vErr)
	assert.Equal(t, "q1", vErr.QuestionID)

	assert.Nil(t, Validate(q, model.TextValue("something"), nil))
}

// An empty value on an optional question skips every type-specific check
func TestValidateOptionalEmptySkipsTypeChecks(t *testing.T) {
	q := &model.Question{
		ID:         "q1",
		Type:       model.QuestionTypeText,
		Validation: &model.ValidationRules{MinLength: 10},
	}
	assert.Nil(t, Validate(q, model.TextValue(""), nil))
}

func TestValidateTextLengthAndPattern(t *testing.T) {
	q := &model.Question{
		ID:   "q1",
		Type: model.QuestionTypeTextarea,
		Validation: &model.ValidationRules{
			MinLength: 5,
			MaxLength: 10,
		},
	}

	assert.NotNil(t, Validate(q, model.TextValue("abc"), nil))
	assert.NotNil(t, Validate(q, model.TextValue("abcdefghijk"), nil))
	assert.Nil(t, Validate(q, model.TextValue("abcdef"), nil))

	q.Validation = &model.ValidationRules{Pattern: `^[A-Z]{2}-\d+$`}
	assert.Nil(t, Validate(q, model.TextValue("AB-123"), nil))
	assert.NotNil(t, Validate(q, model.TextValue("ab-123"), nil))
}

func TestValidateNumberBounds(t *testing.T) {
	q := &model.Question{
		ID:   "q1",
		Type: model.QuestionTypeNumber,
		Validation: &model.ValidationRules{
			Min: fptr(0),
			Max: fptr(100),
		},
	}

	assert.Nil(t, Validate(q, model.NumberValue(50), nil))
	assert.NotNil(t, Validate(q, model.NumberValue(-1), nil))
	assert.NotNil(t, Validate(q, model.NumberValue(101), nil))

	// Non-numeric text on a number question
	vErr := Validate(q, model.TextValue("abc"), nil)
	require.NotNil(t, vErr)
	assert.Contains(t, vErr.Message, "numeric")

	// Numeric text coerces
	assert.Nil(t, Validate(q, model.TextValue("42"), nil))
}

func TestValidateCheckboxSelections(t *testing.T) {
	q := &model.Question{
		ID:   "q1",
		Type: model.QuestionTypeCheckbox,
		Validation: &model.ValidationRules{
			MinSelections: 2,
			MaxSelections: 3,
		},
	}

	assert.NotNil(t, Validate(q, model.OptionsValue("a"), nil))
	assert.Nil(t, Validate(q, model.OptionsValue("a", "b"), nil))
	assert.NotNil(t, Validate(q, model.OptionsValue("a", "b", "c", "d"), nil))
}

func TestValidateDate(t *testing.T) {
	q := &model.Question{
		ID:         "q1",
		Type:       model.QuestionTypeDate,
		Validation: &model.ValidationRules{Required: true},
	}

	assert.Nil(t, Validate(q, model.TextValue("2026-01-15"), nil))
	assert.NotNil(t, Validate(q, model.TextValue("15/01/2026"), nil))
	assert.NotNil(t, Validate(q, model.TextValue("not a date"), nil))
}

func TestValidateFiles(t *testing.T) {
	q := &model.Question{
		ID:   "q1",
		Type: model.QuestionTypeFile,
		Validation: &model.ValidationRules{
			MaxSelections: 2,
			MaxLength:     1024,
			Pattern:       "pdf|docx",
		},
	}

	ok := model.FilesValue(model.FileMeta{Name: "plan.pdf", SizeBytes: 512})
	assert.Nil(t, Validate(q, ok, nil))

	tooMany := model.FilesValue(
		model.FileMeta{Name: "a.pdf", SizeBytes: 10},
		model.FileMeta{Name: "b.pdf", SizeBytes: 10},
		model.FileMeta{Name: "c.pdf", SizeBytes: 10},
	)
	assert.NotNil(t, Validate(q, tooMany, nil))

	tooBig := model.FilesValue(model.FileMeta{Name: "plan.pdf", SizeBytes: 4096})
	vErr := Validate(q, tooBig, nil)
	require.NotNil(t, vErr)
	assert.Contains(t, vErr.Message, "byte limit")

	badExt := model.FilesValue(model.FileMeta{Name: "malware.exe", SizeBytes: 10})
	vErr = Validate(q, badExt, nil)
	require.NotNil(t, vErr)
	assert.Contains(t, vErr.Message, "not allowed")
}

func TestValidateCustomPredicate(t *testing.T) {
	q := &model.Question{
		ID:   "q1",
		Type: model.QuestionTypeText,
		Validation: &model.ValidationRules{
			Custom: func(v model.AnswerValue, actx *model.AssessmentContext) string {
				if v.Text == "forbidden" {
					return "that value is not allowed"
				}
				return ""
			},
		},
	}

	assert.Nil(t, Validate(q, model.TextValue("fine"), nil))

	vErr := Validate(q, model.TextValue("forbidden"), nil)
	require.NotNil(t, vErr)
	assert.Equal(t, "that value is not allowed", vErr.Message)
}
