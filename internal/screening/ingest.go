package screening

import (
	"context"

	"github.com/abhisek/neuroscreen/internal/session"
)

// IngestResult reports the window state after one ingested sample.
type IngestResult struct {
	Modality session.Modality `json:"modality"`
	Buffered int              `json:"buffered"`
	Capacity int              `json:"capacity"`
	Evicted  int              `json:"evicted"`
}

// Ingest appends sample to the session's window of modality m. Full
// windows evict their oldest samples; ingestion never fails for fullness.
func (e *Engine) Ingest(ctx context.Context, id string, m session.Modality, sample any) (IngestResult, error) {
	if err := session.ValidateID(id); err != nil {
		return IngestResult{}, err
	}
	var res IngestResult
	_, err := e.mutate(ctx, id, func(s *session.Session) error {
		evicted, err := s.Ingest(m, sample, e.now())
		if err != nil {
			return err
		}
		res = IngestResult{Modality: m, Evicted: evicted}
		switch m {
		case session.ModalityEmotion:
			res.Buffered, res.Capacity = s.Emotion.Len(), s.Emotion.Capacity
		case session.ModalityMotion:
			res.Buffered, res.Capacity = s.Motion.Len(), s.Motion.Capacity
		case session.ModalityVoice:
			res.Buffered, res.Capacity = s.Voice.Len(), s.Voice.Capacity
		}
		return nil
	})
	if err != nil {
		return IngestResult{}, err
	}
	e.metrics.SampleIngested(string(m), res.Evicted)
	return res, nil
}
