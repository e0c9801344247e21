package session

import (
	"errors"
	"testing"
	"time"

	"github.com/abhisek/neuroscreen/internal/questions"
)

func TestDiffApply_RoundTrip(t *testing.T) {
	before := newActive(t)
	after := before.Clone()

	now := t0.Add(time.Minute)
	_, _ = after.Ingest(ModalityEmotion, EmotionSample{Emotion: "happy"}, now)
	_ = after.AppendResponse(Response{QuestionID: "soc-01", Category: questions.CategorySocial, AnalysisScore: 1}, now)
	after.CurrentQuestionID = "soc-02"

	p := Diff(before, after)
	if p.Motion != nil || p.Voice != nil || p.Status != nil {
		t.Fatalf("diff includes unchanged fields: %+v", p)
	}
	if p.Emotion == nil || len(p.AppendResponses) != 1 || p.Adaptive == nil || p.CurrentQuestionID == nil {
		t.Fatalf("diff missing changed fields: %+v", p)
	}

	target := before.Clone()
	if err := p.Apply(target, t0.Add(time.Hour)); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if target.Emotion.Len() != 1 || len(target.Responses) != 1 || target.CurrentQuestionID != "soc-02" {
		t.Errorf("patch not applied: %+v", target)
	}
	if !target.LastUpdated.Equal(now) {
		t.Errorf("lastUpdated = %v, want patch time %v", target.LastUpdated, now)
	}
}

func TestApply_IsAtomic(t *testing.T) {
	s := newActive(t)
	phase := "should-not-stick"
	bad := Window[EmotionSample]{Capacity: 1, Items: make([]EmotionSample, 2)}
	p := Patch{Phase: &phase, Emotion: &bad}

	var inv *ErrInvariant
	if err := p.Apply(s, t0); !errors.As(err, &inv) {
		t.Fatalf("expected ErrInvariant, got %v", err)
	}
	if s.Phase == phase || s.Emotion.Capacity != EmotionCapacity {
		t.Error("failed patch partially applied")
	}
}

func TestApply_IllegalTransition(t *testing.T) {
	s := newActive(t)
	done := StatusCompleted
	if err := (Patch{Status: &done}).Apply(s, t0); err != nil {
		t.Fatal(err)
	}
	back := StatusActive
	var inv *ErrInvariant
	if err := (Patch{Status: &back}).Apply(s, t0); !errors.As(err, &inv) {
		t.Fatalf("expected ErrInvariant, got %v", err)
	}
}

func TestPatch_Empty(t *testing.T) {
	if !(Patch{At: t0}).Empty() {
		t.Error("patch with only a timestamp should be empty")
	}
	id := "q"
	if (Patch{CurrentQuestionID: &id}).Empty() {
		t.Error("patch with a field set should not be empty")
	}
}

func TestDiff_UnchangedCloneIsEmpty(t *testing.T) {
	s := newActive(t)
	s.Analysis = &AnalysisCache{
		ModalityScores: map[Modality]float64{ModalityEmotion: 0.5},
		OverallScore:   0.6,
		RiskLevel:      "medium",
		ComputedAt:     t0,
	}
	if p := Diff(s, s.Clone()); !p.Empty() {
		t.Fatalf("diff of an untouched clone should be empty: %+v", p)
	}

	after := s.Clone()
	after.Analysis.OverallScore = 0.7
	if p := Diff(s, after); p.Analysis == nil {
		t.Fatal("changed analysis missing from diff")
	}
}
