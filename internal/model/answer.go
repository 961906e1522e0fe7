package model

import (
	"strconv"
	"strings"
	"time"
)

// ValueKind discriminates the shape of an answer value
type ValueKind string

const (
	KindText    ValueKind = "text"
	KindNumber  ValueKind = "number"
	KindOptions ValueKind = "options"
	KindGrid    ValueKind = "grid"
	KindFile    ValueKind = "file"
)

// FileMeta describes an attached file (metadata only, storage is out of scope)
type FileMeta struct {
	Name        string `json:"name" bson:"name"`
	SizeBytes   int64  `json:"sizeBytes" bson:"sizeBytes"`
	ContentType string `json:"contentType,omitempty" bson:"contentType,omitempty"`
}

// AnswerValue is a closed union over the shapes an answer can take. Kind names
// the populated branch; scoring and validation switch on it exhaustively.
type AnswerValue struct {
	Kind    ValueKind         `json:"kind" bson:"kind"`
	Text    string            `json:"text,omitempty" bson:"text,omitempty"`       // text/textarea/date, radio/select option value
	Number  *float64          `json:"number,omitempty" bson:"number,omitempty"`   // number/scale
	Options []string          `json:"options,omitempty" bson:"options,omitempty"` // checkbox/multi-select values
	Grid    map[string]string `json:"grid,omitempty" bson:"grid,omitempty"`       // matrix: row value -> column value
	Files   []FileMeta        `json:"files,omitempty" bson:"files,omitempty"`     // file attachments
}

// TextValue builds a text-shaped answer value
func TextValue(s string) AnswerValue {
	return AnswerValue{Kind: KindText, Text: s}
}

// NumberValue builds a numeric answer value
func NumberValue(n float64) AnswerValue {
	return AnswerValue{Kind: KindNumber, Number: &n}
}

// OptionsValue builds a multi-selection answer value
func OptionsValue(opts ...string) AnswerValue {
	return AnswerValue{Kind: KindOptions, Options: opts}
}

// GridValue builds a matrix answer value
func GridValue(grid map[string]string) AnswerValue {
	return AnswerValue{Kind: KindGrid, Grid: grid}
}

// FilesValue builds a file-attachment answer value
func FilesValue(files ...FileMeta) AnswerValue {
	return AnswerValue{Kind: KindFile, Files: files}
}

// IsEmpty reports whether the value carries no usable answer
func (v AnswerValue) IsEmpty() bool {
	switch v.Kind {
	case KindText:
		return strings.TrimSpace(v.Text) == ""
	case KindNumber:
		return v.Number == nil
	case KindOptions:
		return len(v.Options) == 0
	case KindGrid:
		return len(v.Grid) == 0
	case KindFile:
		if len(v.Files) == 0 {
			return true
		}
		for _, f := range v.Files {
			if f.Name != "" {
				return false
			}
		}
		return true
	}
	return true
}

// String flattens the value for keyword matching and comparisons
func (v AnswerValue) String() string {
	switch v.Kind {
	case KindText:
		return v.Text
	case KindNumber:
		if v.Number == nil {
			return ""
		}
		return strconv.FormatFloat(*v.Number, 'f', -1, 64)
	case KindOptions:
		return strings.Join(v.Options, ",")
	case KindGrid:
		parts := make([]string, 0, len(v.Grid))
		for _, col := range v.Grid {
			parts = append(parts, col)
		}
		return strings.Join(parts, ",")
	case KindFile:
		names := make([]string, 0, len(v.Files))
		for _, f := range v.Files {
			names = append(names, f.Name)
		}
		return strings.Join(names, ",")
	}
	return ""
}

// Numeric returns the value as a float where that makes sense
func (v AnswerValue) Numeric() (float64, bool) {
	if v.Kind == KindNumber && v.Number != nil {
		return *v.Number, true
	}
	if v.Kind == KindText {
		n, err := strconv.ParseFloat(strings.TrimSpace(v.Text), 64)
		if err == nil {
			return n, true
		}
	}
	return 0, false
}

// Provenance tags whether an answer belongs to a framework-defined or
// AI-generated question
type Provenance string

const (
	ProvenanceFramework Provenance = "framework"
	ProvenanceAI        Provenance = "ai"
)

// Answer records a respondent's value for one question. Answers are keyed by
// question id; a new answer for the same id replaces the old one.
type Answer struct {
	QuestionID string            `json:"questionId" bson:"questionId"`
	Value      AnswerValue       `json:"value" bson:"value"`
	AnsweredAt time.Time         `json:"answeredAt" bson:"answeredAt"`
	Provenance Provenance        `json:"provenance" bson:"provenance"`
	Metadata   map[string]string `json:"metadata,omitempty" bson:"metadata,omitempty"`
}

// ValidationError is the structured result of a failed answer validation
type ValidationError struct {
	QuestionID string `json:"questionId"`
	Message    string `json:"message"`
	Field      string `json:"field,omitempty"`
}

func (e *ValidationError) Error() string {
	return e.QuestionID + ": " + e.Message
}
