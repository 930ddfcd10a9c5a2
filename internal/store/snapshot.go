package store

import (
	"context"
	"time"

	"staffgrid/internal/model"
)

// Snapshot reads the full grid universe for one department (empty means
// everyone) over the given week columns. Hours outside the requested weeks
// are omitted from the rows.
func (s Store) Snapshot(ctx context.Context, department string, weekKeys []string) (*model.Snapshot, error) {
	db, err := s.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	people, err := listPeople(ctx, db, department)
	if err != nil {
		return nil, err
	}
	projects, err := listProjects(ctx, db)
	if err != nil {
		return nil, err
	}

	wanted := make(map[string]bool, len(weekKeys))
	for _, w := range weekKeys {
		wanted[w] = true
	}
	inDept := make(map[string]bool, len(people))
	for _, p := range people {
		inDept[p.ID] = true
	}

	rows, err := db.QueryContext(ctx, `
		SELECT a.id, a.person_id, a.project_id, a.updated_at_unixms
		FROM assignments a
		JOIN people p ON p.id = a.person_id
		ORDER BY p.name ASC, p.id ASC, a.id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	snap := &model.Snapshot{WeekKeys: append([]string{}, weekKeys...), People: people, Projects: projects}
	byAssignment := map[string]int{}
	for rows.Next() {
		var id, personID, projectID string
		var updatedMs int64
		if err := rows.Scan(&id, &personID, &projectID, &updatedMs); err != nil {
			return nil, err
		}
		if !inDept[personID] {
			continue
		}
		byAssignment[id] = len(snap.Rows)
		snap.Rows = append(snap.Rows, model.SnapshotRow{
			PersonID:     personID,
			AssignmentID: id,
			ProjectID:    projectID,
			WeeklyHours:  map[string]float64{},
			UpdatedAt:    time.UnixMilli(updatedMs).UTC(),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	hrows, err := db.QueryContext(ctx, `SELECT assignment_id, week_key, hours FROM assignment_hours`)
	if err != nil {
		return nil, err
	}
	defer hrows.Close()
	for hrows.Next() {
		var id, wk string
		var h float64
		if err := hrows.Scan(&id, &wk, &h); err != nil {
			return nil, err
		}
		i, ok := byAssignment[id]
		if !ok || !wanted[wk] {
			continue
		}
		snap.Rows[i].WeeklyHours[wk] = h
	}
	return snap, hrows.Err()
}
