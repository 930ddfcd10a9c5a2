package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"staffgrid/internal/model"
)

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s Store) CreateAssignment(ctx context.Context, personID, projectID, origin string) (model.Assignment, error) {
	db, err := s.Open(ctx)
	if err != nil {
		return model.Assignment{}, err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return model.Assignment{}, err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	a := model.Assignment{
		ID:          NewID("asn"),
		PersonID:    personID,
		ProjectID:   projectID,
		WeeklyHours: map[string]float64{},
		UpdatedAt:   now,
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO assignments(id, person_id, project_id, updated_at_unixms) VALUES(?, ?, ?, ?)`,
		a.ID, a.PersonID, a.ProjectID, now.UnixMilli()); err != nil {
		return model.Assignment{}, fmt.Errorf("create assignment: %w", err)
	}
	if err := appendChange(ctx, tx, model.ChangeEvent{
		AssignmentID:   a.ID,
		Kind:           model.ChangeUpdated,
		Assignment:     &a,
		ServerTS:       now,
		AffectedFields: []string{"personId", "projectId"},
		Origin:         origin,
	}); err != nil {
		return model.Assignment{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Assignment{}, err
	}
	return a, nil
}

// DeleteAssignment removes an assignment and logs a deletion event. Deleting
// an absent assignment is a no-op.
func (s Store) DeleteAssignment(ctx context.Context, id, origin string) error {
	db, err := s.Open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `DELETE FROM assignments WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM assignment_hours WHERE assignment_id = ?`, id); err != nil {
		return err
	}
	if err := appendChange(ctx, tx, model.ChangeEvent{
		AssignmentID: id,
		Kind:         model.ChangeDeleted,
		ServerTS:     time.Now().UTC(),
		Origin:       origin,
	}); err != nil {
		return err
	}
	return tx.Commit()
}

func (s Store) GetAssignment(ctx context.Context, id string) (model.Assignment, error) {
	db, err := s.Open(ctx)
	if err != nil {
		return model.Assignment{}, err
	}
	defer db.Close()
	return loadAssignment(ctx, db, id)
}

// SetHours performs the partial update behind a single-cell commit: one week
// bucket is written, the assignment is restamped, and a change event with
// the full payload is logged. Returns the updated assignment including its
// new server timestamp.
func (s Store) SetHours(ctx context.Context, assignmentID, weekKey string, hours float64, origin string) (model.Assignment, error) {
	updated, err := s.setHoursMany(ctx, []model.CellRef{{AssignmentID: assignmentID, WeekKey: weekKey}}, hours, origin)
	if err != nil {
		return model.Assignment{}, err
	}
	return updated[0], nil
}

// SetHoursBulk applies one hours value to a set of cells as one logical
// operation: one transaction, one change event per touched assignment.
func (s Store) SetHoursBulk(ctx context.Context, cells []model.CellRef, hours float64, origin string) ([]model.Assignment, error) {
	if len(cells) == 0 {
		return nil, errors.New("empty cell set")
	}
	return s.setHoursMany(ctx, cells, hours, origin)
}

func (s Store) setHoursMany(ctx context.Context, cells []model.CellRef, hours float64, origin string) ([]model.Assignment, error) {
	db, err := s.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	touched := []string{}
	seen := map[string]bool{}
	for _, c := range cells {
		var exists int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM assignments WHERE id = ?`, c.AssignmentID).Scan(&exists); err != nil {
			return nil, err
		}
		if exists == 0 {
			return nil, fmt.Errorf("assignment %s: %w", c.AssignmentID, ErrNotFound)
		}
		if hours == 0 {
			// Zero-hour weeks are stored as absence.
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM assignment_hours WHERE assignment_id = ? AND week_key = ?`,
				c.AssignmentID, c.WeekKey); err != nil {
				return nil, err
			}
		} else if _, err := tx.ExecContext(ctx,
			`INSERT INTO assignment_hours(assignment_id, week_key, hours) VALUES(?, ?, ?)
			 ON CONFLICT(assignment_id, week_key) DO UPDATE SET hours = excluded.hours`,
			c.AssignmentID, c.WeekKey, hours); err != nil {
			return nil, err
		}
		if !seen[c.AssignmentID] {
			seen[c.AssignmentID] = true
			touched = append(touched, c.AssignmentID)
		}
	}

	updated := make([]model.Assignment, 0, len(touched))
	for _, id := range touched {
		if _, err := tx.ExecContext(ctx,
			`UPDATE assignments SET updated_at_unixms = ? WHERE id = ?`, now.UnixMilli(), id); err != nil {
			return nil, err
		}
		a, err := loadAssignment(ctx, tx, id)
		if err != nil {
			return nil, err
		}
		if err := appendChange(ctx, tx, model.ChangeEvent{
			AssignmentID:   id,
			Kind:           model.ChangeUpdated,
			Assignment:     &a,
			ServerTS:       now,
			AffectedFields: []string{"weeklyHours"},
			Origin:         origin,
		}); err != nil {
			return nil, err
		}
		updated = append(updated, a)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return updated, nil
}

func loadAssignment(ctx context.Context, q querier, id string) (model.Assignment, error) {
	var a model.Assignment
	var updatedMs int64
	err := q.QueryRowContext(ctx,
		`SELECT id, person_id, project_id, updated_at_unixms FROM assignments WHERE id = ?`, id).
		Scan(&a.ID, &a.PersonID, &a.ProjectID, &updatedMs)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Assignment{}, fmt.Errorf("assignment %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Assignment{}, err
	}
	a.UpdatedAt = time.UnixMilli(updatedMs).UTC()
	a.WeeklyHours = map[string]float64{}

	rows, err := q.QueryContext(ctx,
		`SELECT week_key, hours FROM assignment_hours WHERE assignment_id = ?`, id)
	if err != nil {
		return model.Assignment{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var wk string
		var h float64
		if err := rows.Scan(&wk, &h); err != nil {
			return model.Assignment{}, err
		}
		a.WeeklyHours[wk] = h
	}
	return a, rows.Err()
}

func appendChange(ctx context.Context, tx *sql.Tx, ev model.ChangeEvent) error {
	var payload any
	if ev.Assignment != nil {
		b, err := json.Marshal(ev.Assignment)
		if err != nil {
			return err
		}
		payload = string(b)
	}
	affected, _ := json.Marshal(ev.AffectedFields)
	_, err := tx.ExecContext(ctx, `
		INSERT INTO changes(assignment_id, kind, payload_json, affected_json, server_ts_unixms, origin)
		VALUES(?, ?, ?, ?, ?, ?)`,
		ev.AssignmentID, string(ev.Kind), payload, string(affected), ev.ServerTS.UnixMilli(), ev.Origin)
	return err
}
