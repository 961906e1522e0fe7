package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"complyq/internal/cache"
	"complyq/internal/engine"
	"complyq/internal/model"
	"complyq/internal/repository"
)

type stubFrameworks struct {
	byID map[string]*model.AssessmentFramework
}

func (s *stubFrameworks) GetByID(ctx context.Context, id string) (*model.AssessmentFramework, error) {
	fw, ok := s.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return fw, nil
}

func (s *stubFrameworks) List(ctx context.Context) ([]*model.AssessmentFramework, error) {
	out := make([]*model.AssessmentFramework, 0, len(s.byID))
	for _, fw := range s.byID {
		out = append(out, fw)
	}
	return out, nil
}

func (s *stubFrameworks) Upsert(ctx context.Context, framework *model.AssessmentFramework) error {
	s.byID[framework.ID] = framework
	return nil
}

func (s *stubFrameworks) Delete(ctx context.Context, id string) error {
	delete(s.byID, id)
	return nil
}

func serviceFramework() *model.AssessmentFramework {
	return &model.AssessmentFramework{
		ID:   "fw1",
		Name: "Service Test Framework",
		Sections: []model.AssessmentSection{
			{
				ID:    "s1",
				Title: "General",
				Questions: []model.Question{
					{
						ID:      "q1",
						Type:    model.QuestionTypeRadio,
						Prompt:  "Is there a written policy?",
						Options: []model.Option{{Value: "yes"}, {Value: "no"}},
					},
				},
			},
		},
	}
}

func newTestService(store engine.ProgressStore) *AssessmentService {
	frameworks := &stubFrameworks{byID: map[string]*model.AssessmentFramework{
		"fw1": serviceFramework(),
	}}
	return NewAssessmentService(frameworks, nil, store, nil, engine.Config{})
}

// A failed resume must not write a snapshot; resuming the same unknown id
// again keeps failing instead of restoring a blank assessment.
func TestResumeUnknownAssessmentStaysUnknown(t *testing.T) {
	ctx := context.Background()
	store := cache.NewMemoryProgressStore()
	svc := newTestService(store)

	_, err := svc.Resume(ctx, "fw1", "ghost")
	require.ErrorIs(t, err, ErrAssessmentNotFound)

	_, ok, err := store.Get(ctx, "assessment_progress_ghost")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = svc.Resume(ctx, "fw1", "ghost")
	assert.ErrorIs(t, err, ErrAssessmentNotFound)
}

func TestResumeUnknownFramework(t *testing.T) {
	svc := newTestService(cache.NewMemoryProgressStore())

	_, err := svc.Resume(context.Background(), "fw-missing", "asmt_1")
	assert.ErrorIs(t, err, ErrFrameworkNotFound)
}

func TestStartThenResumeInMemory(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(cache.NewMemoryProgressStore())

	view, err := svc.Start(ctx, "fw1", "")
	require.NoError(t, err)
	require.NotNil(t, view.Question)

	again, err := svc.Resume(ctx, "fw1", view.AssessmentID)
	require.NoError(t, err)
	assert.Equal(t, view.AssessmentID, again.AssessmentID)
}
