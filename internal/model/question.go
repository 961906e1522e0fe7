package model

// QuestionType defines the type of question
type QuestionType string

const (
	QuestionTypeRadio    QuestionType = "radio"    // Single choice
	QuestionTypeCheckbox QuestionType = "checkbox" // Multiple choice
	QuestionTypeText     QuestionType = "text"     // Free text
	QuestionTypeTextarea QuestionType = "textarea" // Long text
	QuestionTypeNumber   QuestionType = "number"
	QuestionTypeDate     QuestionType = "date"
	QuestionTypeSelect   QuestionType = "select" // Single select dropdown
	QuestionTypeScale    QuestionType = "scale"  // Linear scale
	QuestionTypeMatrix   QuestionType = "matrix" // Matrix grid
	QuestionTypeFile     QuestionType = "file"   // File attachment
)

// ConditionOperator compares a referenced answer against a condition value
type ConditionOperator string

const (
	OpEquals      ConditionOperator = "equals"
	OpNotEquals   ConditionOperator = "not_equals"
	OpContains    ConditionOperator = "contains"
	OpGreaterThan ConditionOperator = "greater_than"
	OpLessThan    ConditionOperator = "less_than"
	OpIn          ConditionOperator = "in"
	OpNotIn       ConditionOperator = "not_in"
)

// Combinator joins a condition with the condition that follows it in the list
type Combinator string

const (
	CombineAnd Combinator = "AND"
	CombineOr  Combinator = "OR"
)

// VisibilityCondition gates a question on another question's answer.
// CombineWith governs how the NEXT condition in the list is merged, not this one.
type VisibilityCondition struct {
	QuestionID  string            `json:"questionId" bson:"questionId"`
	Operator    ConditionOperator `json:"operator" bson:"operator"`
	Value       string            `json:"value" bson:"value"`
	CombineWith Combinator        `json:"combineWith,omitempty" bson:"combineWith,omitempty"` // Default AND
}

// Option is a selectable choice on radio/checkbox/select questions
type Option struct {
	Value       string `json:"value" bson:"value"`
	Label       string `json:"label" bson:"label"`
	Description string `json:"description,omitempty" bson:"description,omitempty"`
}

// ValidationRules declares the checks an answer must pass.
// For file questions MaxLength is the per-file byte ceiling and Pattern is a
// pipe-delimited extension allow-list (e.g. "pdf|docx"), reusing the generic fields.
type ValidationRules struct {
	Required      bool     `json:"required" bson:"required"`
	MinLength     int      `json:"minLength,omitempty" bson:"minLength,omitempty"`
	MaxLength     int      `json:"maxLength,omitempty" bson:"maxLength,omitempty"`
	Min           *float64 `json:"min,omitempty" bson:"min,omitempty"`
	Max           *float64 `json:"max,omitempty" bson:"max,omitempty"`
	Pattern       string   `json:"pattern,omitempty" bson:"pattern,omitempty"`
	MinSelections int      `json:"minSelections,omitempty" bson:"minSelections,omitempty"`
	MaxSelections int      `json:"maxSelections,omitempty" bson:"maxSelections,omitempty"`

	// Custom receives the raw value and the full assessment context and returns
	// an error message, or "" when valid. Runtime only, never serialized.
	Custom func(v AnswerValue, ctx *AssessmentContext) string `json:"-" bson:"-"`
}

// Question is a single question in a framework section. Framework questions are
// immutable once defined; AI-generated questions are constructed at run time
// with a synthetic identifier embedding a timestamp.
type Question struct {
	ID         string                `json:"id" bson:"id"`
	Type       QuestionType          `json:"type" bson:"type"`
	Prompt     string                `json:"prompt" bson:"prompt"`
	HelpText   string                `json:"helpText,omitempty" bson:"helpText,omitempty"`
	Category   string                `json:"category,omitempty" bson:"category,omitempty"`
	Options    []Option              `json:"options,omitempty" bson:"options,omitempty"`
	Validation *ValidationRules      `json:"validation,omitempty" bson:"validation,omitempty"`
	Conditions []VisibilityCondition `json:"conditions,omitempty" bson:"conditions,omitempty"`
	Weight     float64               `json:"weight,omitempty" bson:"weight,omitempty"` // Default 1
	Metadata   map[string]string     `json:"metadata,omitempty" bson:"metadata,omitempty"`

	// Scale only
	ScaleMin      int    `json:"scaleMin,omitempty" bson:"scaleMin,omitempty"`
	ScaleMax      int    `json:"scaleMax,omitempty" bson:"scaleMax,omitempty"`
	ScaleMinLabel string `json:"scaleMinLabel,omitempty" bson:"scaleMinLabel,omitempty"`
	ScaleMaxLabel string `json:"scaleMaxLabel,omitempty" bson:"scaleMaxLabel,omitempty"`

	// Matrix only
	MatrixRows    []Option `json:"matrixRows,omitempty" bson:"matrixRows,omitempty"`
	MatrixColumns []Option `json:"matrixColumns,omitempty" bson:"matrixColumns,omitempty"`
}

// Metadata keys recognized on questions and answers
const (
	MetaAIGenerated     = "ai_generated"     // "true" on AI-origin questions
	MetaAIReasoning     = "ai_reasoning"     // Why the advisory service asked it
	MetaForceFollowUp   = "force_followup"   // "true" always triggers follow-up
	MetaDisableFollowUp = "disable_followup" // "true" never triggers follow-up
)

// IsAIGenerated reports whether the question was produced by the advisory service
func (q *Question) IsAIGenerated() bool {
	return q.Metadata[MetaAIGenerated] == "true"
}

// EffectiveWeight returns the question weight, defaulting to 1
func (q *Question) EffectiveWeight() float64 {
	if q.Weight <= 0 {
		return 1
	}
	return q.Weight
}
