package advisory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"complyq/internal/config"
	"complyq/internal/model"
)

// Client calls the Gemini API to generate follow-up questions, personalized
// recommendations, and question help. It implements Service.
type Client struct {
	config *config.AdvisoryConfig
	client *http.Client
}

// NewClient creates a new advisory client
func NewClient(cfg *config.AdvisoryConfig) *Client {
	return &Client{
		config: cfg,
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutMS) * time.Millisecond,
		},
	}
}

// FollowUpQuestions generates follow-up questions for a concerning answer
func (c *Client) FollowUpQuestions(ctx context.Context, req *model.FollowUpRequest) (*model.FollowUpResponse, error) {
	if !c.config.IsEnabled() {
		return nil, ErrNotConfigured
	}

	prompt := c.buildFollowUpPrompt(req)
	raw, err := c.callGemini(ctx, c.config.Models.FollowUp, prompt)
	if err != nil {
		return nil, err
	}

	var resp model.FollowUpResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, fmt.Errorf("decode follow-up response: %w", err)
	}
	return &resp, nil
}

// Recommendations generates personalized remediation recommendations for a gap list
func (c *Client) Recommendations(ctx context.Context, req *model.RecommendationRequest) (*model.RecommendationResponse, error) {
	if !c.config.IsEnabled() {
		return nil, ErrNotConfigured
	}

	prompt := c.buildRecommendationPrompt(req)
	raw, err := c.callGemini(ctx, c.config.Models.Recommend, prompt)
	if err != nil {
		return nil, err
	}

	var resp model.RecommendationResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, fmt.Errorf("decode recommendation response: %w", err)
	}
	return &resp, nil
}

// QuestionHelp explains a question for the UI layer
func (c *Client) QuestionHelp(ctx context.Context, req *model.HelpRequest) (*model.HelpResponse, error) {
	if !c.config.IsEnabled() {
		return nil, ErrNotConfigured
	}

	prompt := c.buildHelpPrompt(req)
	raw, err := c.callGemini(ctx, c.config.Models.Help, prompt)
	if err != nil {
		return nil, err
	}

	var resp model.HelpResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, fmt.Errorf("decode help response: %w", err)
	}
	return &resp, nil
}

// callGemini makes a request to the Gemini API
func (c *Client) callGemini(ctx context.Context, modelName, prompt string) (string, error) {
	reqBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"parts": []map[string]string{
					{"text": prompt},
				},
			},
		},
		"generationConfig": map[string]interface{}{
			"responseMimeType": "application/json",
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s?key=%s", c.config.ModelEndpoint(modelName), c.config.APIKey)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var geminiResp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}

	if err := json.Unmarshal(body, &geminiResp); err != nil {
		return "", err
	}

	if len(geminiResp.Candidates) > 0 && len(geminiResp.Candidates[0].Content.Parts) > 0 {
		return geminiResp.Candidates[0].Content.Parts[0].Text, nil
	}

	return "", ErrEmptyResponse
}

// Prompt builders
func (c *Client) buildFollowUpPrompt(req *model.FollowUpRequest) string {
	answered := make([]string, 0, len(req.Context.Answers))
	for qid, ans := range req.Context.Answers {
		answered = append(answered, fmt.Sprintf("- %s: %q", qid, ans.Value.String()))
	}

	return fmt.Sprintf(`You are a compliance advisor reviewing an in-progress assessment.
A respondent just gave a concerning answer. Generate 1-2 short follow-up questions
to understand the shortfall. Return ONLY valid JSON:
{
  "follow_up_questions": [{
    "id": "",
    "type": "textarea" or "radio" or "checkbox" or "scale",
    "prompt": "follow-up text",
    "options": [{"value": "v", "label": "Label"}]
  }],
  "reasoning": "one sentence on why these follow-ups matter"
}

Framework: %s
Section: %s
Question: %s
Respondent's Answer: %q

Other answers so far:
%s

Keep follow-ups specific to the answer, short, and answerable without research.`,
		req.Context.FrameworkID, req.Context.SectionID, req.QuestionText,
		req.Answer.String(), strings.Join(answered, "\n"))
}

func (c *Client) buildRecommendationPrompt(req *model.RecommendationRequest) string {
	var gaps strings.Builder
	for i, g := range req.Gaps {
		fmt.Fprintf(&gaps, "%d. [%s] %s — current: %s, target: %s\n",
			i+1, g.Severity, g.QuestionText, g.CurrentState, g.TargetState)
	}

	return fmt.Sprintf(`You are a compliance advisor. For each gap below, produce one
remediation recommendation, in the SAME ORDER as the gaps. Return ONLY valid JSON:
{
  "recommendations": [{
    "priority": "immediate" or "short_term" or "medium_term" or "long_term",
    "title": "...",
    "description": "...",
    "effort": "e.g. 2-4 weeks",
    "impact": "...",
    "timeline": "...",
    "resources": ["..."]
  }]
}

Business profile: %s
Industry: %s
Existing policies: %s
Remediation pace: %s

Gaps (respond positionally, one recommendation per gap):
%s

Tailor effort and timeline to the remediation pace. The recommendations array
MUST contain exactly one entry per gap.`,
		req.BusinessProfile, req.Industry, strings.Join(req.ExistingPolicies, ", "),
		req.Urgency, gaps.String())
}

func (c *Client) buildHelpPrompt(req *model.HelpRequest) string {
	return fmt.Sprintf(`Explain this compliance assessment question to a non-expert.
Return ONLY valid JSON:
{
  "explanation": "plain-language explanation",
  "examples": ["example 1", "example 2"],
  "references": ["relevant standard or regulation"]
}

Question: %s
Existing help text: %s
Framework: %s`,
		req.QuestionText, req.HelpText, req.FrameworkID)
}
