package model

// Severity classifies how badly a gap misses the target state
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// SeverityRank orders severities for sorting (critical first)
func SeverityRank(s Severity) int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityHigh:
		return 1
	case SeverityMedium:
		return 2
	default:
		return 3
	}
}

// Gap is a detected compliance shortfall tied to one question
type Gap struct {
	ID             string   `json:"id" bson:"id"`
	QuestionID     string   `json:"questionId" bson:"questionId"`
	QuestionText   string   `json:"questionText" bson:"questionText"`
	SectionTitle   string   `json:"sectionTitle" bson:"sectionTitle"`
	Category       string   `json:"category,omitempty" bson:"category,omitempty"`
	Severity       Severity `json:"severity" bson:"severity"`
	Description    string   `json:"description" bson:"description"`
	Impact         string   `json:"impact,omitempty" bson:"impact,omitempty"`
	CurrentState   string   `json:"currentState" bson:"currentState"`
	TargetState    string   `json:"targetState" bson:"targetState"`
	ExpectedAnswer string   `json:"expectedAnswer,omitempty" bson:"expectedAnswer,omitempty"`
	ActualAnswer   string   `json:"actualAnswer,omitempty" bson:"actualAnswer,omitempty"`
}

// Priority buckets a recommendation by urgency
type Priority string

const (
	PriorityImmediate  Priority = "immediate"
	PriorityShortTerm  Priority = "short_term"
	PriorityMediumTerm Priority = "medium_term"
	PriorityLongTerm   Priority = "long_term"
)

// Recommendation is a remediation suggestion addressing one gap
type Recommendation struct {
	ID          string   `json:"id" bson:"id"`
	GapID       string   `json:"gapId" bson:"gapId"`
	Priority    Priority `json:"priority" bson:"priority"`
	Title       string   `json:"title" bson:"title"`
	Description string   `json:"description" bson:"description"`
	Effort      string   `json:"effort,omitempty" bson:"effort,omitempty"`
	Impact      string   `json:"impact,omitempty" bson:"impact,omitempty"`
	Timeline    string   `json:"timeline,omitempty" bson:"timeline,omitempty"`
	Resources   []string `json:"resources,omitempty" bson:"resources,omitempty"`
}
