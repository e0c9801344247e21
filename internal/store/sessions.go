package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/neuroscreen/internal/session"
)

// SessionRepo is a session.Store persisted in SQLite. Each row carries the
// full session as JSON plus the columns List filters on.
type SessionRepo struct {
	drv *entsql.Driver
	now func() time.Time
}

var _ session.Store = (*SessionRepo)(nil)

func (r *SessionRepo) Create(ctx context.Context, id string, patient session.PatientInfo) (err error) {
	if err := session.ValidateID(id); err != nil {
		return err
	}

	tx, err := r.drv.Tx(ctx)
	if err != nil {
		return fmt.Errorf("begin create session: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	existing, err := loadSession(ctx, tx, id)
	if err != nil {
		return err
	}
	if existing != nil {
		return &session.ErrInvariant{Reason: fmt.Sprintf("session %q already exists", id)}
	}

	s := session.New(id, patient, r.now())
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", id, err)
	}
	insert := builder().Insert(sessionsTable.Name).
		Columns("id", "patient_name", "status", "phase", "start_time", "updated_at_ms", "data").
		Values(s.ID, s.Patient.Name, string(s.Status), s.Phase, s.StartTime.UTC(), s.LastUpdated.UnixMilli(), string(data))
	if _, err = exec(ctx, tx, insert); err != nil {
		return fmt.Errorf("insert session %s: %w", id, err)
	}
	return tx.Commit()
}

func (r *SessionRepo) Get(ctx context.Context, id string) (*session.Session, error) {
	s, err := loadSession(ctx, r.drv, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, &session.ErrNotFound{ID: id}
	}
	return s, nil
}

func (r *SessionRepo) Update(ctx context.Context, id string, patch session.Patch) (err error) {
	tx, err := r.drv.Tx(ctx)
	if err != nil {
		return fmt.Errorf("begin update session: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	s, err := loadSession(ctx, tx, id)
	if err != nil {
		return err
	}
	if s == nil {
		return &session.ErrNotFound{ID: id}
	}
	if err = patch.Apply(s, r.now()); err != nil {
		return fmt.Errorf("update session %s: %w", id, err)
	}

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", id, err)
	}
	update := builder().Update(sessionsTable.Name).
		Set("status", string(s.Status)).
		Set("phase", s.Phase).
		Set("updated_at_ms", s.LastUpdated.UnixMilli()).
		Set("data", string(data)).
		Where(entsql.EQ("id", id))
	if _, err = exec(ctx, tx, update); err != nil {
		return fmt.Errorf("write session %s: %w", id, err)
	}
	return tx.Commit()
}

func (r *SessionRepo) List(ctx context.Context, filter session.Filter) ([]*session.Session, error) {
	b := builder()
	sel := b.Select("data").
		From(b.Table(sessionsTable.Name)).
		OrderBy("start_time", "id")
	if filter.Status != "" {
		sel.Where(entsql.EQ("status", string(filter.Status)))
	}
	if !filter.IdleSince.IsZero() {
		sel.Where(entsql.LTE("updated_at_ms", filter.IdleSince.UnixMilli()))
	}

	var out []*session.Session
	err := queryAll(ctx, r.drv, sel, func(rows *entsql.Rows) error {
		s, err := scanSession(rows)
		if err != nil {
			return err
		}
		// Millisecond columns are coarser than the stored timestamps.
		if filter.Match(s) {
			out = append(out, s)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return session.SortAndLimit(out, filter), nil
}

func (r *SessionRepo) Delete(ctx context.Context, id string) error {
	del := builder().Delete(sessionsTable.Name).Where(entsql.EQ("id", id))
	n, err := exec(ctx, r.drv, del)
	if err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	if n == 0 {
		return &session.ErrNotFound{ID: id}
	}
	return nil
}

// loadSession returns the session with id, or nil when no row exists.
func loadSession(ctx context.Context, q dialect.ExecQuerier, id string) (*session.Session, error) {
	b := builder()
	sel := b.Select("data").
		From(b.Table(sessionsTable.Name)).
		Where(entsql.EQ("id", id))

	var found *session.Session
	err := queryAll(ctx, q, sel, func(rows *entsql.Rows) error {
		s, err := scanSession(rows)
		found = s
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}
	return found, nil
}

func scanSession(rows *entsql.Rows) (*session.Session, error) {
	var data []byte
	if err := rows.Scan(&data); err != nil {
		return nil, err
	}
	var s session.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &s, nil
}
