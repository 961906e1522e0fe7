package engine

import (
	"fmt"
	"sort"
	"strings"

	"complyq/internal/model"
)

// severityForScore maps a question score onto the gap severity ladder:
// 0 is critical, below 0.5 is high, anything else under the gap threshold
// is medium.
func severityForScore(score float64) model.Severity {
	switch {
	case score == 0:
		return model.SeverityCritical
	case score < 0.5:
		return model.SeverityHigh
	case score < 0.7:
		return model.SeverityMedium
	default:
		return model.SeverityLow
	}
}

// gapThreshold is the score below which an answered question opens a gap
const gapThreshold = 0.7

// newGap builds a gap for a question, answered or not
func newGap(q *model.Question, section *model.AssessmentSection, a *model.Answer, score float64) model.Gap {
	actual := ""
	current := "Not addressed"
	if a != nil {
		actual = a.Value.String()
		current = fmt.Sprintf("Answered %q (score %.0f%%)", actual, score*100)
	}

	expected := ""
	if len(q.Options) > 0 {
		expected = q.Options[0].Label
	}

	return model.Gap{
		ID:             "gap_" + q.ID,
		QuestionID:     q.ID,
		QuestionText:   q.Prompt,
		SectionTitle:   section.Title,
		Category:       q.Category,
		Severity:       severityForScore(score),
		Description:    fmt.Sprintf("Compliance shortfall on %q", q.Prompt),
		Impact:         impactForSeverity(severityForScore(score)),
		CurrentState:   current,
		TargetState:    "Fully implemented and documented",
		ExpectedAnswer: expected,
		ActualAnswer:   actual,
	}
}

func impactForSeverity(s model.Severity) string {
	switch s {
	case model.SeverityCritical:
		return "Immediate regulatory and operational exposure"
	case model.SeverityHigh:
		return "Material risk of audit findings"
	case model.SeverityMedium:
		return "Partial control coverage leaves residual risk"
	default:
		return "Minor deviation from best practice"
	}
}

// Severity-keyed effort estimates for template recommendations
var effortBySeverity = map[model.Severity]string{
	model.SeverityCritical: "1-2 weeks",
	model.SeverityHigh:     "2-4 weeks",
	model.SeverityMedium:   "1-2 months",
	model.SeverityLow:      "2-3 months",
}

// templateRecommendations generates local recommendations when the advisory
// service is unavailable or disabled. It sorts a copy of the gaps by severity,
// caps at 10, and buckets priority purely by rank: first 3 immediate, next 3
// short_term, rest medium_term.
func templateRecommendations(gaps []model.Gap) []model.Recommendation {
	sorted := make([]model.Gap, len(gaps))
	copy(sorted, gaps)
	sort.SliceStable(sorted, func(i, j int) bool {
		return model.SeverityRank(sorted[i].Severity) < model.SeverityRank(sorted[j].Severity)
	})

	if len(sorted) > 10 {
		sorted = sorted[:10]
	}

	recs := make([]model.Recommendation, 0, len(sorted))
	for i, g := range sorted {
		priority := model.PriorityMediumTerm
		if i < 3 {
			priority = model.PriorityImmediate
		} else if i < 6 {
			priority = model.PriorityShortTerm
		}

		recs = append(recs, model.Recommendation{
			ID:       "rec_" + g.ID,
			GapID:    g.ID,
			Priority: priority,
			Title:    "Remediate: " + g.QuestionText,
			Description: fmt.Sprintf("Move from %q to %q by implementing the control addressed by this question.",
				g.CurrentState, g.TargetState),
			Effort:   effortBySeverity[g.Severity],
			Impact:   g.Impact,
			Timeline: effortBySeverity[g.Severity],
		})
	}
	return recs
}

// Industry keyword table for the industry-inference heuristic
var industryKeywords = []struct {
	industry string
	keywords []string
}{
	{"Healthcare", []string{"patient", "hipaa", "clinical", "medical", "phi"}},
	{"Financial Services", []string{"bank", "payment", "pci", "trading", "lending", "finance"}},
	{"Technology", []string{"software", "saas", "cloud", "api", "devops"}},
	{"Retail", []string{"store", "merchant", "ecommerce", "point of sale", "inventory"}},
	{"Manufacturing", []string{"factory", "plant", "supply chain", "production line"}},
	{"Education", []string{"student", "ferpa", "campus", "school", "university"}},
}

// inferIndustry keyword-matches question and answer text against a fixed
// industry table, falling back to "General Business"
func inferIndustry(fw *model.AssessmentFramework, answers map[string]model.Answer) string {
	var corpus strings.Builder
	for si := range fw.Sections {
		for qi := range fw.Sections[si].Questions {
			q := &fw.Sections[si].Questions[qi]
			corpus.WriteString(strings.ToLower(q.Prompt))
			corpus.WriteString(" ")
			if a, ok := answers[q.ID]; ok {
				corpus.WriteString(strings.ToLower(a.Value.String()))
				corpus.WriteString(" ")
			}
		}
	}

	text := corpus.String()
	for _, entry := range industryKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(text, kw) {
				return entry.industry
			}
		}
	}
	return "General Business"
}

// Positive-indicator language marking an existing, documented policy
var policyIndicators = []string{"yes", "implemented", "documented", "in place", "established", "compliant"}

// inferExistingPolicies scans answered policy-related questions for positive
// indicator language and collects their prompts as policy names
func inferExistingPolicies(fw *model.AssessmentFramework, answers map[string]model.Answer) []string {
	var policies []string
	for si := range fw.Sections {
		for qi := range fw.Sections[si].Questions {
			q := &fw.Sections[si].Questions[qi]
			if !strings.Contains(strings.ToLower(q.Prompt), "polic") {
				continue
			}
			a, ok := answers[q.ID]
			if !ok {
				continue
			}
			text := strings.ToLower(a.Value.String())
			for _, indicator := range policyIndicators {
				if strings.Contains(text, indicator) {
					policies = append(policies, q.Prompt)
					break
				}
			}
		}
	}
	return policies
}

// Risk language pushing the urgency heuristic towards "urgent"
var riskKeywords = []string{"breach", "incident", "audit finding", "fine", "deadline", "violation", "lawsuit"}

// inferUrgency derives a remediation pace from risk language across all
// answers plus how far along the assessment is
func inferUrgency(answers map[string]model.Answer, percentComplete int) model.TimelineUrgency {
	riskScore := 0
	for _, a := range answers {
		text := strings.ToLower(a.Value.String())
		for _, kw := range riskKeywords {
			if strings.Contains(text, kw) {
				riskScore++
			}
		}
	}

	switch {
	case riskScore >= 3:
		return model.UrgencyUrgent
	case riskScore >= 1 && percentComplete >= 50:
		return model.UrgencyUrgent
	case riskScore == 0 && percentComplete < 50:
		return model.UrgencyGradual
	default:
		return model.UrgencyStandard
	}
}
