package session

import (
	"errors"
	"testing"
	"time"

	"github.com/abhisek/neuroscreen/internal/questions"
)

var t0 = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func newActive(t *testing.T) *Session {
	t.Helper()
	s := New("s1", PatientInfo{Name: "Ada", Age: 6}, t0)
	if err := s.Transition(StatusActive, t0); err != nil {
		t.Fatalf("activate: %v", err)
	}
	return s
}

func TestWindow_EvictsOldestFirst(t *testing.T) {
	const capacity, extra = 200, 37
	w := NewWindow[int](capacity)
	evicted := 0
	for i := 0; i < capacity+extra; i++ {
		evicted += w.Push(i)
	}
	if w.Len() != capacity {
		t.Fatalf("len = %d, want %d", w.Len(), capacity)
	}
	if evicted != extra {
		t.Errorf("evicted = %d, want %d", evicted, extra)
	}
	if w.Total != capacity+extra {
		t.Errorf("total = %d, want %d", w.Total, capacity+extra)
	}
	for i, v := range w.Items {
		if v != extra+i {
			t.Fatalf("items[%d] = %d, want %d", i, v, extra+i)
		}
	}
	if err := w.Check("test"); err != nil {
		t.Errorf("unexpected invariant violation: %v", err)
	}
}

func TestWindow_CheckOverCapacity(t *testing.T) {
	w := Window[int]{Capacity: 2, Items: []int{1, 2, 3}}
	var inv *ErrInvariant
	if err := w.Check("test"); !errors.As(err, &inv) {
		t.Fatalf("expected ErrInvariant, got %v", err)
	}
}

func TestTransition(t *testing.T) {
	s := New("s1", PatientInfo{Name: "Ada", Age: 6}, t0)
	if s.Status != StatusInitializing {
		t.Fatalf("new session status = %s", s.Status)
	}
	if err := s.Transition(StatusActive, t0.Add(time.Second)); err != nil {
		t.Fatalf("initializing -> active: %v", err)
	}
	end := t0.Add(time.Minute)
	if err := s.Transition(StatusCompleted, end); err != nil {
		t.Fatalf("active -> completed: %v", err)
	}
	if !s.EndTime.Equal(end) || !s.LastUpdated.Equal(end) {
		t.Errorf("endTime=%v lastUpdated=%v, want %v", s.EndTime, s.LastUpdated, end)
	}

	var inv *ErrInvariant
	if err := s.Transition(StatusActive, end); !errors.As(err, &inv) {
		t.Fatalf("completed -> active: expected ErrInvariant, got %v", err)
	}
	if s.Status != StatusCompleted {
		t.Errorf("status changed after failed transition: %s", s.Status)
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusInitializing, StatusActive, true},
		{StatusInitializing, StatusCompleted, false},
		{StatusActive, StatusCompleted, true},
		{StatusActive, StatusEnded, true},
		{StatusActive, StatusInitializing, false},
		{StatusCompleted, StatusEnded, false},
		{StatusEnded, StatusActive, false},
	}
	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestPatientInfo_Validate(t *testing.T) {
	tests := []struct {
		name  string
		p     PatientInfo
		field string
	}{
		{"ok", PatientInfo{Name: "Ada", Age: 4}, ""},
		{"newborn", PatientInfo{Name: "Ada", Age: 0}, ""},
		{"blank name", PatientInfo{Name: "  ", Age: 4}, "name"},
		{"negative age", PatientInfo{Name: "Ada", Age: -1}, "age"},
		{"too old", PatientInfo{Name: "Ada", Age: 121}, "age"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.p.Validate()
			if tt.field == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var ve *ErrValidation
			if !errors.As(err, &ve) || ve.Field != tt.field {
				t.Fatalf("expected validation error on %s, got %v", tt.field, err)
			}
		})
	}
}

func TestIngest(t *testing.T) {
	s := newActive(t)
	now := t0.Add(5 * time.Second)

	if _, err := s.Ingest(ModalityEmotion, EmotionSample{Emotion: "happy", Confidence: 0.9}, now); err != nil {
		t.Fatalf("ingest emotion: %v", err)
	}
	if got := s.Emotion.Items[0].Timestamp; !got.Equal(now) {
		t.Errorf("zero timestamp not stamped: %v", got)
	}
	if !s.LastUpdated.Equal(now) {
		t.Errorf("lastUpdated = %v, want %v", s.LastUpdated, now)
	}

	patterns := []string{PatternMonotone}
	if _, err := s.Ingest(ModalityVoice, VoiceSample{Pitch: 0.5, Patterns: patterns}, now); err != nil {
		t.Fatalf("ingest voice: %v", err)
	}
	patterns[0] = "mutated"
	if s.Voice.Items[0].Patterns[0] != PatternMonotone {
		t.Error("voice sample shares caller's pattern slice")
	}

	var ve *ErrValidation
	if _, err := s.Ingest(ModalityMotion, EmotionSample{Emotion: "sad"}, now); !errors.As(err, &ve) {
		t.Errorf("wrong shape: expected ErrValidation, got %v", err)
	}
	if _, err := s.Ingest(Modality("smell"), EmotionSample{}, now); !errors.As(err, &ve) {
		t.Errorf("unknown modality: expected ErrValidation, got %v", err)
	}
	if _, err := s.Ingest(ModalityEmotion, EmotionSample{}, now); !errors.As(err, &ve) {
		t.Errorf("empty label: expected ErrValidation, got %v", err)
	}
	if s.Motion.Len() != 0 {
		t.Error("failed ingest mutated the motion window")
	}
}

func TestIngest_FullWindowNeverRejects(t *testing.T) {
	s := newActive(t)
	for i := 0; i < VoiceCapacity+10; i++ {
		if _, err := s.Ingest(ModalityVoice, VoiceSample{Pitch: float64(i) / 200}, t0); err != nil {
			t.Fatalf("ingest %d: %v", i, err)
		}
	}
	if s.Voice.Len() != VoiceCapacity {
		t.Errorf("voice len = %d, want %d", s.Voice.Len(), VoiceCapacity)
	}
}

func TestIngest_InactiveSession(t *testing.T) {
	s := newActive(t)
	if err := s.Transition(StatusEnded, t0); err != nil {
		t.Fatal(err)
	}
	var inv *ErrInvariant
	if _, err := s.Ingest(ModalityEmotion, EmotionSample{Emotion: "happy"}, t0); !errors.As(err, &inv) {
		t.Fatalf("expected ErrInvariant, got %v", err)
	}
}

func TestParseModality(t *testing.T) {
	for name, want := range map[string]Modality{"emotion": ModalityEmotion, "Motion": ModalityMotion, "gesture": ModalityMotion, " voice ": ModalityVoice} {
		got, err := ParseModality(name)
		if err != nil || got != want {
			t.Errorf("ParseModality(%q) = %q, %v", name, got, err)
		}
	}
	if _, err := ParseModality("touch"); err == nil {
		t.Error("expected error for unknown modality")
	}
}

func TestAppendResponse(t *testing.T) {
	s := newActive(t)
	s.TotalQuestions = 2
	r := Response{QuestionID: "soc-01", Category: questions.CategorySocial, AnalysisScore: 0.75}
	if err := s.AppendResponse(r, t0); err != nil {
		t.Fatal(err)
	}
	r.QuestionID = "soc-02"
	r.AnalysisScore = 0.25
	if err := s.AppendResponse(r, t0); err != nil {
		t.Fatal(err)
	}
	if got := s.Adaptive.Accuracy[questions.CategorySocial].Mean(); got != 0.5 {
		t.Errorf("social accuracy = %v, want 0.5", got)
	}
	if s.Phase != PhaseReview {
		t.Errorf("phase = %q, want %q", s.Phase, PhaseReview)
	}
	if !s.Answered()["soc-02"] {
		t.Error("soc-02 not marked answered")
	}
	if s.QuestionsRemaining() != 0 {
		t.Errorf("remaining = %d", s.QuestionsRemaining())
	}

	r.AnalysisScore = 1.5
	var inv *ErrInvariant
	if err := s.AppendResponse(r, t0); !errors.As(err, &inv) {
		t.Errorf("out of range score: expected ErrInvariant, got %v", err)
	}
}

func TestClone_IsDeep(t *testing.T) {
	s := newActive(t)
	_, _ = s.Ingest(ModalityVoice, VoiceSample{Patterns: []string{PatternEcholalia}}, t0)
	_ = s.AppendResponse(Response{QuestionID: "q", Category: questions.CategorySocial, AnalysisScore: 1}, t0)
	s.Analysis = &AnalysisCache{DomainScores: map[string]float64{"social": 0.5}}

	cp := s.Clone()
	cp.Voice.Items[0].Patterns[0] = "x"
	cp.Responses[0].Answer = "changed"
	cp.Adaptive.Accuracy[questions.CategorySocial] = Accuracy{}
	cp.Analysis.DomainScores["social"] = 0

	if s.Voice.Items[0].Patterns[0] != PatternEcholalia {
		t.Error("voice patterns shared")
	}
	if s.Responses[0].Answer != "" {
		t.Error("responses shared")
	}
	if s.Adaptive.Accuracy[questions.CategorySocial].Count != 1 {
		t.Error("accuracy map shared")
	}
	if s.Analysis.DomainScores["social"] != 0.5 {
		t.Error("analysis cache shared")
	}
}

func TestSnapshot(t *testing.T) {
	s := newActive(t)
	_, _ = s.Ingest(ModalityEmotion, EmotionSample{Emotion: "sad"}, t0)
	_, _ = s.Ingest(ModalityEmotion, EmotionSample{Emotion: "happy"}, t0)
	_, _ = s.Ingest(ModalityMotion, MotionSample{Intensity: 0.4}, t0)

	snap := s.Snapshot()
	if snap.EmotionTotal != 2 || snap.MotionTotal != 1 || snap.VoiceTotal != 0 {
		t.Errorf("unexpected totals: %+v", snap)
	}
	if snap.LatestEmotion != "happy" || snap.LatestIntensity != 0.4 {
		t.Errorf("unexpected latest values: %+v", snap)
	}
}
