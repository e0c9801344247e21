package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

func (r *eventRepo) AppendSessionEvent(ctx context.Context, data SessionEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	insert := builder().Insert(sessionEventsTable.Name).
		Columns("sequence", "timestamp", "session_id", "action", "status", "phase", "detail").
		Values(seqNum, time.Now().UTC(), data.SessionID, data.Action, data.Status, data.Phase, data.Detail)
	if _, err := exec(ctx, r.drv, insert); err != nil {
		return fmt.Errorf("save session event: %w", err)
	}
	return nil
}

func (r *eventRepo) QuerySessionEvents(ctx context.Context, opts QueryOpts) ([]SessionEventRecord, error) {
	b := builder()
	sel := b.Select("sequence", "timestamp", "session_id", "action", "status", "phase", "detail").
		From(b.Table(sessionEventsTable.Name)).
		OrderBy("sequence")
	applyOpts(sel, opts)

	var records []SessionEventRecord
	err := queryAll(ctx, r.drv, sel, func(rows *entsql.Rows) error {
		var e SessionEventRecord
		if err := rows.Scan(&e.Sequence, &e.Timestamp, &e.SessionID, &e.Action, &e.Status, &e.Phase, &e.Detail); err != nil {
			return err
		}
		records = append(records, e)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query session events: %w", err)
	}
	return records, nil
}
