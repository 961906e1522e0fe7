package model

import "time"

// AssessmentSection groups an ordered run of questions
type AssessmentSection struct {
	ID          string                `json:"id" bson:"id"`
	Title       string                `json:"title" bson:"title"`
	Description string                `json:"description,omitempty" bson:"description,omitempty"`
	Order       int                   `json:"order" bson:"order"`
	Questions   []Question            `json:"questions" bson:"questions"`
	Conditions  []VisibilityCondition `json:"conditions,omitempty" bson:"conditions,omitempty"`
}

// AssessmentFramework is a versioned definition of an assessment
type AssessmentFramework struct {
	ID               string              `json:"id" bson:"_id,omitempty"`
	Name             string              `json:"name" bson:"name"`
	Description      string              `json:"description,omitempty" bson:"description,omitempty"`
	Version          string              `json:"version" bson:"version"`
	Sections         []AssessmentSection `json:"sections" bson:"sections"`
	ScoringMethod    string              `json:"scoringMethod,omitempty" bson:"scoringMethod,omitempty"`
	PassingScore     *int                `json:"passingScore,omitempty" bson:"passingScore,omitempty"`
	EstimatedMinutes int                 `json:"estimatedMinutes,omitempty" bson:"estimatedMinutes,omitempty"`
	CreatedAt        time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt        time.Time           `json:"updatedAt" bson:"updatedAt"`
}

// QuestionByID looks a question up across all sections
func (f *AssessmentFramework) QuestionByID(id string) *Question {
	for si := range f.Sections {
		for qi := range f.Sections[si].Questions {
			if f.Sections[si].Questions[qi].ID == id {
				return &f.Sections[si].Questions[qi]
			}
		}
	}
	return nil
}

// SectionOfQuestion returns the section owning a question, or nil
func (f *AssessmentFramework) SectionOfQuestion(id string) *AssessmentSection {
	for si := range f.Sections {
		for qi := range f.Sections[si].Questions {
			if f.Sections[si].Questions[qi].ID == id {
				return &f.Sections[si]
			}
		}
	}
	return nil
}
