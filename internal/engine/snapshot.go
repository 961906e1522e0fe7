package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"complyq/internal/model"
)

// saveLocked serializes the snapshot to the progress store. Failures go to
// the error callback and the returned error; they never interrupt the
// user-facing flow upstream.
func (e *Engine) saveLocked(ctx context.Context) error {
	if e.store == nil {
		return nil
	}

	now := time.Now()
	snap := model.ProgressSnapshot{
		AssessmentID:     e.actx.AssessmentID,
		FrameworkID:      e.actx.FrameworkID,
		Answers:          make([]model.AnswerEntry, 0, len(e.actx.Answers)),
		SectionIndex:     e.sectionIdx,
		QuestionIndex:    e.questionIdx,
		FollowUpActive:   e.followUp.active,
		PendingFollowUps: e.followUp.pending,
		FollowUpIndex:    e.followUp.index,
		SavedAt:          now,
	}
	// The answer mapping is flattened into an explicit entry list so the
	// snapshot shape stays stable across serializers.
	for qid, ans := range e.actx.Answers {
		snap.Answers = append(snap.Answers, model.AnswerEntry{QuestionID: qid, Answer: ans})
	}

	data, err := json.Marshal(snap)
	if err != nil {
		err = fmt.Errorf("serialize progress: %w", err)
		e.reportError(err)
		return err
	}

	if err := e.store.Set(ctx, storageKeyPrefix+e.actx.AssessmentID, string(data)); err != nil {
		err = fmt.Errorf("save progress: %w", err)
		e.reportError(err)
		return err
	}

	e.lastSavedAt = &now
	if e.cfg.OnProgress != nil {
		e.cfg.OnProgress(e.progressLocked())
	}
	return nil
}

// restoreLocked rehydrates state from a prior snapshot and recomputes
// visibility. A missing or unreadable snapshot reads as "no prior progress".
func (e *Engine) restoreLocked(ctx context.Context) (bool, error) {
	if e.store == nil {
		return false, nil
	}

	data, ok, err := e.store.Get(ctx, storageKeyPrefix+e.actx.AssessmentID)
	if err != nil {
		err = fmt.Errorf("restore progress: %w", err)
		e.reportError(err)
		return false, err
	}
	if !ok {
		return false, nil
	}

	var snap model.ProgressSnapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		err = fmt.Errorf("decode progress snapshot: %w", err)
		e.reportError(err)
		return false, err
	}

	e.actx.Answers = make(map[string]model.Answer, len(snap.Answers))
	for _, entry := range snap.Answers {
		e.actx.Answers[entry.QuestionID] = entry.Answer
	}
	e.sectionIdx = snap.SectionIndex
	e.questionIdx = snap.QuestionIndex
	e.followUp.active = snap.FollowUpActive
	e.followUp.pending = snap.PendingFollowUps
	e.followUp.index = snap.FollowUpIndex
	if !e.followUp.active {
		e.followUp.index = -1
		e.followUp.pending = nil
	}
	// A snapshot claiming follow-up mode with no pending questions, or an
	// index outside them, is inconsistent; drop back to normal mode.
	if e.followUp.active && (e.followUp.index < 0 || e.followUp.index >= len(e.followUp.pending)) {
		e.followUp.reset()
	}
	e.complete = false
	e.lastSavedAt = &snap.SavedAt

	e.recompute()
	e.clampPosition()
	return true, nil
}
