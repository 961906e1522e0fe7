package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"complyq/internal/model"
)

// buildRecommendations synthesizes recommendations for a gap list. The
// advisory path is preferred when AI is enabled; responses are cached for
// five minutes keyed on framework id plus the sorted gap ids. Every failure
// path degrades to template generation so the caller is never blocked. The
// one exception is a contract violation by the advisory service, which fails
// loudly.
func (e *Engine) buildRecommendations(ctx context.Context, gaps []model.Gap) ([]model.Recommendation, error) {
	if len(gaps) == 0 {
		return []model.Recommendation{}, nil
	}

	if !e.cfg.EnableAI || e.advisory == nil {
		return templateRecommendations(gaps), nil
	}

	key := e.recCacheKey(gaps)
	if cached, ok := e.recCache[key]; ok && time.Now().Before(cached.expiresAt) {
		return cached.recs, nil
	}

	progress := e.progressLocked()
	req := &model.RecommendationRequest{
		Gaps:             gaps,
		BusinessProfile:  e.actx.Metadata["business_profile"],
		ExistingPolicies: inferExistingPolicies(e.framework, e.actx.Answers),
		Industry:         inferIndustry(e.framework, e.actx.Answers),
		Urgency:          inferUrgency(e.actx.Answers, progress.PercentComplete),
	}

	resp, err := e.advisory.Recommendations(ctx, req)
	if err != nil {
		if !e.cfg.UseMockAIOnError {
			e.reportError(fmt.Errorf("recommendation generation failed: %w", err))
		}
		return templateRecommendations(gaps), nil
	}

	if len(resp.Recommendations) < len(gaps) {
		return nil, fmt.Errorf("%w: got %d for %d gaps", ErrAdvisoryContract, len(resp.Recommendations), len(gaps))
	}

	// Drafts are positionally matched to the gap list by index
	recs := make([]model.Recommendation, 0, len(gaps))
	for i, gap := range gaps {
		draft := resp.Recommendations[i]
		id := draft.ID
		if id == "" {
			id = "rec_" + uuid.New().String()[:8]
		}
		recs = append(recs, model.Recommendation{
			ID:          id,
			GapID:       gap.ID,
			Priority:    draft.Priority,
			Title:       draft.Title,
			Description: draft.Description,
			Effort:      draft.Effort,
			Impact:      draft.Impact,
			Timeline:    draft.Timeline,
			Resources:   draft.Resources,
		})
	}

	e.recCache[key] = cachedRecommendations{recs: recs, expiresAt: time.Now().Add(recCacheTTL)}
	e.pruneRecCache()
	return recs, nil
}

func (e *Engine) recCacheKey(gaps []model.Gap) string {
	ids := make([]string, 0, len(gaps))
	for _, g := range gaps {
		ids = append(ids, g.ID)
	}
	sort.Strings(ids)
	return e.framework.ID + "|" + strings.Join(ids, ",")
}

// pruneRecCache drops all expired entries in one pass once the cache exceeds
// its entry bound
func (e *Engine) pruneRecCache() {
	if len(e.recCache) <= recCacheMaxEntries {
		return
	}
	now := time.Now()
	for key, cached := range e.recCache {
		if now.After(cached.expiresAt) {
			delete(e.recCache, key)
		}
	}
}
