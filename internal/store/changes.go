package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"staffgrid/internal/model"
)

// StoredChange is one change-log entry plus its sequence number, the cursor
// used by stream followers.
type StoredChange struct {
	Seq   int64             `json:"seq"`
	Event model.ChangeEvent `json:"event"`
}

// LastChangeSeq returns the newest sequence number (0 for an empty log).
func (s Store) LastChangeSeq(ctx context.Context) (int64, error) {
	db, err := s.Open(ctx)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	var seq sql.NullInt64
	if err := db.QueryRowContext(ctx, `SELECT MAX(seq) FROM changes`).Scan(&seq); err != nil {
		return 0, err
	}
	return seq.Int64, nil
}

// ChangesSince reads log entries with seq > after, oldest first. limit <= 0
// means no limit.
func (s Store) ChangesSince(ctx context.Context, after int64, limit int) ([]StoredChange, error) {
	db, err := s.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	q := `SELECT seq, assignment_id, kind, payload_json, affected_json, server_ts_unixms, origin
	      FROM changes WHERE seq > ? ORDER BY seq ASC`
	var rows *sql.Rows
	if limit > 0 {
		rows, err = db.QueryContext(ctx, q+` LIMIT ?`, after, limit)
	} else {
		rows, err = db.QueryContext(ctx, q, after)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []StoredChange{}
	for rows.Next() {
		var sc StoredChange
		var kind string
		var payload sql.NullString
		var affected string
		var tsMs int64
		if err := rows.Scan(&sc.Seq, &sc.Event.AssignmentID, &kind, &payload, &affected, &tsMs, &sc.Event.Origin); err != nil {
			return nil, err
		}
		sc.Event.Kind = model.ChangeKind(kind)
		sc.Event.ServerTS = time.UnixMilli(tsMs).UTC()
		if payload.Valid && payload.String != "" {
			var a model.Assignment
			if err := json.Unmarshal([]byte(payload.String), &a); err == nil {
				sc.Event.Assignment = &a
			}
		}
		_ = json.Unmarshal([]byte(affected), &sc.Event.AffectedFields)
		out = append(out, sc)
	}
	return out, rows.Err()
}
