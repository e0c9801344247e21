package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/abhisek/neuroscreen/internal/session"
)

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the engine error taxonomy onto HTTP status codes:
// validation 400, not found 404, invariant violation 409.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr *session.ErrValidation
		nf   *session.ErrNotFound
		inv  *session.ErrInvariant
	)
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: verr.Error(), Kind: "validation", Field: verr.Field})
	case errors.As(err, &nf):
		writeJSON(w, http.StatusNotFound, errorBody{Error: nf.Error(), Kind: "not_found"})
	case errors.As(err, &inv):
		writeJSON(w, http.StatusConflict, errorBody{Error: inv.Error(), Kind: "invariant"})
	default:
		s.logger.Error("request error",
			zap.String("path", r.URL.Path), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error", Kind: "internal"})
	}
}

// decode reads a JSON body into dst and validates it.
func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return &session.ErrValidation{Field: "body", Reason: "must not be empty"}
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return &session.ErrValidation{Field: "body", Reason: fmt.Sprintf("exceeds %d bytes", tooLarge.Limit)}
		}
		return &session.ErrValidation{Field: "body", Reason: err.Error()}
	}
	return check(dst)
}
