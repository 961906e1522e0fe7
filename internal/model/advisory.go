package model

// ContextBundle carries the assessment state the advisory service needs to
// personalize follow-ups
type ContextBundle struct {
	FrameworkID       string            `json:"frameworkId"`
	SectionID         string            `json:"sectionId,omitempty"`
	Answers           map[string]Answer `json:"answers"`
	BusinessProfileID string            `json:"businessProfileId,omitempty"`
}

// FollowUpRequest asks the advisory service for follow-up questions after a
// concerning answer
type FollowUpRequest struct {
	QuestionID   string        `json:"questionId"`
	QuestionText string        `json:"questionText"`
	Answer       AnswerValue   `json:"answer"`
	Context      ContextBundle `json:"context"`
}

// FollowUpResponse is the advisory service's follow-up payload
type FollowUpResponse struct {
	FollowUpQuestions []Question `json:"follow_up_questions"`
	Reasoning         string     `json:"reasoning,omitempty"`
}

// TimelineUrgency is the inferred remediation pace for a business
type TimelineUrgency string

const (
	UrgencyUrgent   TimelineUrgency = "urgent"
	UrgencyStandard TimelineUrgency = "standard"
	UrgencyGradual  TimelineUrgency = "gradual"
)

// RecommendationRequest asks the advisory service for personalized remediation
// recommendations for a list of gaps
type RecommendationRequest struct {
	Gaps             []Gap           `json:"gaps"`
	BusinessProfile  string          `json:"businessProfile,omitempty"`
	ExistingPolicies []string        `json:"existingPolicies,omitempty"`
	Industry         string          `json:"industry"`
	Urgency          TimelineUrgency `json:"urgency"`
}

// RecommendationDraft is one advisory-supplied recommendation, positionally
// matched to the request's gap list by index
type RecommendationDraft struct {
	ID          string   `json:"id,omitempty"`
	Priority    Priority `json:"priority"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Effort      string   `json:"effort,omitempty"`
	Impact      string   `json:"impact,omitempty"`
	Timeline    string   `json:"timeline,omitempty"`
	Resources   []string `json:"resources,omitempty"`
}

// RecommendationResponse is the advisory service's recommendation payload
type RecommendationResponse struct {
	Recommendations []RecommendationDraft `json:"recommendations"`
}

// HelpRequest asks the advisory service to explain a question (UI surface)
type HelpRequest struct {
	QuestionID   string `json:"questionId"`
	QuestionText string `json:"questionText"`
	HelpText     string `json:"helpText,omitempty"`
	FrameworkID  string `json:"frameworkId,omitempty"`
}

// HelpResponse is the advisory service's help payload
type HelpResponse struct {
	Explanation string   `json:"explanation"`
	Examples    []string `json:"examples,omitempty"`
	References  []string `json:"references,omitempty"`
}
