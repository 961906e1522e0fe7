package model

import "time"

// AssessmentContext is the mutable state of one assessment run. It is owned
// exclusively by one engine instance and mutated only through the engine's
// answer-recording operation.
type AssessmentContext struct {
	FrameworkID       string            `json:"frameworkId" bson:"frameworkId"`
	AssessmentID      string            `json:"assessmentId" bson:"assessmentId"`
	BusinessProfileID string            `json:"businessProfileId,omitempty" bson:"businessProfileId,omitempty"`
	Answers           map[string]Answer `json:"answers" bson:"answers"`
	Metadata          map[string]string `json:"metadata,omitempty" bson:"metadata,omitempty"`
}

// AssessmentProgress is recomputed on demand, never stored as a source of truth
type AssessmentProgress struct {
	TotalQuestions    int        `json:"totalQuestions"`
	Answered          int        `json:"answered"`
	CurrentSectionID  string     `json:"currentSectionId,omitempty"`
	CurrentQuestionID string     `json:"currentQuestionId,omitempty"`
	PercentComplete   int        `json:"percentComplete"` // 0-100
	EstimatedMinutes  *int       `json:"estimatedMinutesRemaining,omitempty"`
	LastSavedAt       *time.Time `json:"lastSavedAt,omitempty"`
}

// MaturityLevel summarizes the overall compliance score
type MaturityLevel string

const (
	MaturityInitial    MaturityLevel = "initial"
	MaturityDeveloping MaturityLevel = "developing"
	MaturityDefined    MaturityLevel = "defined"
	MaturityManaged    MaturityLevel = "managed"
	MaturityOptimized  MaturityLevel = "optimized"
)

// AssessmentResult is produced once per completed run; immutable afterwards
type AssessmentResult struct {
	AssessmentID    string           `json:"assessmentId" bson:"assessmentId"`
	FrameworkID     string           `json:"frameworkId" bson:"frameworkId"`
	OverallScore    int              `json:"overallScore" bson:"overallScore"` // 0-100
	SectionScores   map[string]int   `json:"sectionScores" bson:"sectionScores"`
	Maturity        MaturityLevel    `json:"maturity" bson:"maturity"`
	Gaps            []Gap            `json:"gaps" bson:"gaps"`
	Recommendations []Recommendation `json:"recommendations" bson:"recommendations"`
	CompletedAt     time.Time        `json:"completedAt" bson:"completedAt"`
}

// AnswerEntry is one answer in a serialized snapshot. The answer mapping is
// persisted as an explicit list so the snapshot shape stays stable.
type AnswerEntry struct {
	QuestionID string `json:"questionId"`
	Answer     Answer `json:"answer"`
}

// ProgressSnapshot is the serializable save-state of an engine instance
type ProgressSnapshot struct {
	AssessmentID     string        `json:"assessmentId"`
	FrameworkID      string        `json:"frameworkId"`
	Answers          []AnswerEntry `json:"answers"`
	SectionIndex     int           `json:"sectionIndex"`
	QuestionIndex    int           `json:"questionIndex"`
	FollowUpActive   bool          `json:"followUpActive"`
	PendingFollowUps []Question    `json:"pendingFollowUps,omitempty"`
	FollowUpIndex    int           `json:"followUpIndex"`
	SavedAt          time.Time     `json:"savedAt"`
}
