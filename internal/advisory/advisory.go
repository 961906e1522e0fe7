package advisory

import (
	"context"
	"errors"
	"time"

	"complyq/internal/model"
)

var (
	// ErrTimeout is returned when an advisory call loses the race against its timer
	ErrTimeout = errors.New("advisory call timed out")

	// ErrNotConfigured is returned when no API key is set
	ErrNotConfigured = errors.New("advisory service not configured")

	// ErrEmptyResponse is returned when the remote model returns no candidates
	ErrEmptyResponse = errors.New("empty response from advisory model")
)

// Service is the advisory-service contract. The engine treats it as an opaque
// remote dependency; every failure has a local fallback upstream.
type Service interface {
	FollowUpQuestions(ctx context.Context, req *model.FollowUpRequest) (*model.FollowUpResponse, error)
	Recommendations(ctx context.Context, req *model.RecommendationRequest) (*model.RecommendationResponse, error)
	QuestionHelp(ctx context.Context, req *model.HelpRequest) (*model.HelpResponse, error)
}

// WithTimeout wraps a Service so every call races a hard timer. First settled
// wins; the loser's eventual completion lands in a buffered channel and is
// discarded, never mutating caller state. Single attempt, no retry.
func WithTimeout(svc Service, timeout time.Duration) Service {
	return &timeoutService{svc: svc, timeout: timeout}
}

type timeoutService struct {
	svc     Service
	timeout time.Duration
}

type raceResult[T any] struct {
	val T
	err error
}

func race[T any](ctx context.Context, timeout time.Duration, call func(context.Context) (T, error)) (T, error) {
	done := make(chan raceResult[T], 1)
	callCtx, cancel := context.WithTimeout(ctx, timeout)

	go func() {
		defer cancel()
		v, err := call(callCtx)
		done <- raceResult[T]{val: v, err: err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-done:
		return res.val, res.err
	case <-timer.C:
		var zero T
		return zero, ErrTimeout
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

func (t *timeoutService) FollowUpQuestions(ctx context.Context, req *model.FollowUpRequest) (*model.FollowUpResponse, error) {
	return race(ctx, t.timeout, func(c context.Context) (*model.FollowUpResponse, error) {
		return t.svc.FollowUpQuestions(c, req)
	})
}

func (t *timeoutService) Recommendations(ctx context.Context, req *model.RecommendationRequest) (*model.RecommendationResponse, error) {
	return race(ctx, t.timeout, func(c context.Context) (*model.RecommendationResponse, error) {
		return t.svc.Recommendations(c, req)
	})
}

func (t *timeoutService) QuestionHelp(ctx context.Context, req *model.HelpRequest) (*model.HelpResponse, error) {
	return race(ctx, t.timeout, func(c context.Context) (*model.HelpResponse, error) {
		return t.svc.QuestionHelp(c, req)
	})
}
