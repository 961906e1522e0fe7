package config

import (
	"os"
	"strconv"
)

// AdvisoryModels defines which Gemini models serve each advisory task
type AdvisoryModels struct {
	// FollowUp is for on-demand follow-up generation (needs to be fast)
	FollowUp string `json:"followUp"`

	// Recommend is for personalized recommendation generation (quality over speed)
	Recommend string `json:"recommend"`

	// Help is for question-help explanations (fast, UI-facing)
	Help string `json:"help"`
}

// AdvisoryConfig holds all advisory-service configuration
type AdvisoryConfig struct {
	APIKey    string         `json:"-"` // Never serialize
	BaseURL   string         `json:"baseUrl"`
	Models    AdvisoryModels `json:"models"`
	TimeoutMS int            `json:"timeoutMs"`
}

// DefaultAdvisoryConfig returns the default advisory configuration
func DefaultAdvisoryConfig() *AdvisoryConfig {
	timeoutMS := 10000 // 10 second default timeout
	if v := os.Getenv("ADVISORY_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			timeoutMS = n
		}
	}

	return &AdvisoryConfig{
		APIKey:  os.Getenv("GEMINI_API_KEY"),
		BaseURL: "https://generativelanguage.googleapis.com/v1beta/models",
		Models: AdvisoryModels{
			FollowUp:  getEnv("GEMINI_MODEL_FOLLOWUP", "gemini-2.5-flash-preview-05-20"),
			Recommend: getEnv("GEMINI_MODEL_RECOMMEND", "gemini-2.0-flash"),
			Help:      getEnv("GEMINI_MODEL_HELP", "gemini-2.5-flash-preview-05-20"),
		},
		TimeoutMS: timeoutMS,
	}
}

// IsEnabled returns true if the advisory API is configured
func (c *AdvisoryConfig) IsEnabled() bool {
	return c.APIKey != ""
}

// ModelEndpoint returns the full endpoint for a given model
func (c *AdvisoryConfig) ModelEndpoint(model string) string {
	return c.BaseURL + "/" + model + ":generateContent"
}
