package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/abhisek/neuroscreen/internal/screening"
	"github.com/abhisek/neuroscreen/internal/session"
)

func sessionID(r *http.Request) string {
	return chi.URLParam(r, "sessionID")
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	patient, err := req.patient()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sess, err := s.engine.Start(r.Context(), patient)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newStatusView(sess))
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	var filter session.Filter
	if v := r.URL.Query().Get("status"); v != "" {
		st := session.Status(v)
		if !st.Valid() {
			s.writeError(w, r, &session.ErrValidation{Field: "status", Reason: "unknown status " + strconv.Quote(v)})
			return
		}
		filter.Status = st
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, r, &session.ErrValidation{Field: "limit", Reason: "must be a non-negative integer"})
			return
		}
		filter.Limit = n
	}

	sessions, err := s.engine.List(r.Context(), filter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	views := make([]statusView, 0, len(sessions))
	for _, sess := range sessions {
		views = append(views, newStatusView(sess))
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": views})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	sess, err := s.engine.Status(r.Context(), sessionID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newStatusView(sess))
}

func (s *Server) handleEmotion(w http.ResponseWriter, r *http.Request) {
	var req emotionRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.ingest(w, r, session.ModalityEmotion, req.sample())
}

func (s *Server) handleMotion(w http.ResponseWriter, r *http.Request) {
	var req motionRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.ingest(w, r, session.ModalityMotion, req.sample())
}

func (s *Server) handleVoice(w http.ResponseWriter, r *http.Request) {
	var req voiceRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.ingest(w, r, session.ModalityVoice, req.sample())
}

func (s *Server) ingest(w http.ResponseWriter, r *http.Request, m session.Modality, sample any) {
	res, err := s.engine.Ingest(r.Context(), sessionID(r), m, sample)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, res)
}

func (s *Server) handleQuestion(w http.ResponseWriter, r *http.Request) {
	view, done, err := s.engine.NextQuestion(r.Context(), sessionID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if done {
		writeJSON(w, http.StatusOK, map[string]any{"done": true})
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.engine.SubmitAnswer(r.Context(), sessionID(r), screening.Answer{
		QuestionID:     req.QuestionID,
		Answer:         req.Answer,
		Confidence:     req.Confidence,
		ResponseTimeMs: req.ResponseTime,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r)
	a, err := s.engine.Analyze(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, analysisView{
		SessionID:        id,
		DomainScores:     a.Domains.Map(),
		OverallScore:     a.OverallScore,
		RiskLevel:        string(a.RiskLevel),
		Recommendations:  a.Recommendations,
		DetailedAnalysis: a.Analysis,
	})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	rep, err := s.engine.GenerateReport(r.Context(), sessionID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleEnd(w http.ResponseWriter, r *http.Request) {
	sess, err := s.engine.End(r.Context(), sessionID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newStatusView(sess))
}
