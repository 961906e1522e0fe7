package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"complyq/internal/config"
	"complyq/internal/model"
	"complyq/internal/repository"
)

func main() {
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(ctx)

	repo := repository.NewFrameworkRepository(client, cfg.MongoDB)

	fw := sampleFramework()
	if err := repo.Upsert(ctx, fw); err != nil {
		log.Fatalf("Failed to seed framework: %v", err)
	}

	fmt.Printf("Seeded framework %s (%s) with %d sections\n", fw.ID, fw.Name, len(fw.Sections))
}

func required() *model.ValidationRules {
	return &model.ValidationRules{Required: true}
}

func sampleFramework() *model.AssessmentFramework {
	return &model.AssessmentFramework{
		ID:               "fw_dataprotection",
		Name:             "Data Protection Readiness",
		Description:      "Baseline data protection and privacy compliance assessment for small and mid-size businesses.",
		Version:          "1.0",
		EstimatedMinutes: 25,
		Sections: []model.AssessmentSection{
			{
				ID:    "sec_governance",
				Title: "Governance & Policies",
				Order: 1,
				Questions: []model.Question{
					{
						ID:         "q_privacy_policy",
						Type:       model.QuestionTypeRadio,
						Prompt:     "Do you have a documented privacy policy?",
						Weight:     3,
						Validation: required(),
						Options: []model.Option{
							{Value: "yes", Label: "Yes, reviewed within the last year"},
							{Value: "outdated", Label: "Yes, but not recently reviewed"},
							{Value: "no", Label: "No"},
						},
					},
					{
						ID:     "q_policy_review",
						Type:   model.QuestionTypeDate,
						Prompt: "When was the policy last reviewed?",
						Conditions: []model.VisibilityCondition{
							{QuestionID: "q_privacy_policy", Operator: model.OpNotEquals, Value: "no"},
						},
					},
					{
						ID:         "q_dpo_assigned",
						Type:       model.QuestionTypeRadio,
						Prompt:     "Is a specific person accountable for data protection?",
						Weight:     2,
						Validation: required(),
						Options: []model.Option{
							{Value: "yes", Label: "Yes, formally assigned"},
							{Value: "informal", Label: "Informally"},
							{Value: "no", Label: "No"},
						},
					},
					{
						ID:       "q_industry",
						Type:     model.QuestionTypeSelect,
						Prompt:   "Which industry best describes your business?",
						HelpText: "Pick the closest match; this tailors the recommendations.",
						Options: []model.Option{
							{Value: "healthcare", Label: "Healthcare"},
							{Value: "financial", Label: "Financial Services"},
							{Value: "technology", Label: "Technology"},
							{Value: "retail", Label: "Retail"},
							{Value: "manufacturing", Label: "Manufacturing"},
							{Value: "education", Label: "Education"},
							{Value: "other", Label: "Other"},
						},
					},
				},
			},
			{
				ID:    "sec_security",
				Title: "Technical Safeguards",
				Order: 2,
				Questions: []model.Question{
					{
						ID:         "q_encryption",
						Type:       model.QuestionTypeRadio,
						Prompt:     "Is personal data encrypted at rest?",
						Weight:     3,
						Validation: required(),
						Options: []model.Option{
							{Value: "yes", Label: "Yes, everywhere"},
							{Value: "partial", Label: "Partially"},
							{Value: "no", Label: "No"},
						},
					},
					{
						ID:            "q_access_maturity",
						Type:          model.QuestionTypeScale,
						Prompt:        "How mature is your access control process?",
						Weight:        2,
						ScaleMin:      1,
						ScaleMax:      5,
						ScaleMinLabel: "Ad hoc",
						ScaleMaxLabel: "Fully managed",
						Validation:    required(),
					},
					{
						ID:     "q_safeguards",
						Type:   model.QuestionTypeCheckbox,
						Prompt: "Which technical safeguards are in place?",
						Options: []model.Option{
							{Value: "mfa", Label: "Multi-factor authentication"},
							{Value: "backup", Label: "Tested backups"},
							{Value: "logging", Label: "Audit logging"},
							{Value: "patching", Label: "Patch management"},
							{Value: "dlp", Label: "Data loss prevention"},
						},
						Validation: &model.ValidationRules{MinSelections: 1, MaxSelections: 5},
					},
					{
						ID:     "q_encryption_plan",
						Type:   model.QuestionTypeTextarea,
						Prompt: "Describe your plan for closing the encryption gap.",
						Conditions: []model.VisibilityCondition{
							{QuestionID: "q_encryption", Operator: model.OpEquals, Value: "no", CombineWith: model.CombineOr},
							{QuestionID: "q_encryption", Operator: model.OpEquals, Value: "partial"},
						},
						Validation: &model.ValidationRules{MinLength: 20, MaxLength: 2000},
					},
				},
			},
			{
				ID:    "sec_incidents",
				Title: "Incident Response",
				Order: 3,
				Questions: []model.Question{
					{
						ID:         "q_incident_plan",
						Type:       model.QuestionTypeRadio,
						Prompt:     "Do you have a documented incident response plan?",
						Weight:     3,
						Validation: required(),
						Metadata: map[string]string{
							model.MetaForceFollowUp: "true",
						},
						Options: []model.Option{
							{Value: "yes", Label: "Yes, tested annually"},
							{Value: "untested", Label: "Yes, but never tested"},
							{Value: "no", Label: "No"},
						},
					},
					{
						ID:         "q_breach_count",
						Type:       model.QuestionTypeNumber,
						Prompt:     "How many data incidents did you record in the last 12 months?",
						Validation: &model.ValidationRules{Min: ptr(0), Max: ptr(1000)},
					},
					{
						ID:     "q_evidence",
						Type:   model.QuestionTypeFile,
						Prompt: "Attach your incident response plan, if available.",
						Validation: &model.ValidationRules{
							MaxSelections: 3,
							MaxLength:     10 * 1024 * 1024,
							Pattern:       "pdf|doc|docx",
						},
					},
				},
			},
		},
	}
}

func ptr(f float64) *float64 { return &f }
