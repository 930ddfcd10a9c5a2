package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"staffgrid/internal/model"
)

func (s Store) CreatePerson(ctx context.Context, p model.Person) (model.Person, error) {
	if strings.TrimSpace(p.Name) == "" {
		return model.Person{}, errors.New("missing person name")
	}
	if p.ID == "" {
		p.ID = NewID("per")
	}
	db, err := s.Open(ctx)
	if err != nil {
		return model.Person{}, err
	}
	defer db.Close()

	_, err = db.ExecContext(ctx,
		`INSERT INTO people(id, name, department, weekly_capacity) VALUES(?, ?, ?, ?)`,
		p.ID, p.Name, p.Department, p.WeeklyCapacity)
	if err != nil {
		return model.Person{}, fmt.Errorf("create person: %w", err)
	}
	return p, nil
}

// SetCapacity updates a person's weekly capacity (capacity edits happen at
// the CLI, not in the grid).
func (s Store) SetCapacity(ctx context.Context, personID string, hours float64) error {
	db, err := s.Open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	res, err := db.ExecContext(ctx, `UPDATE people SET weekly_capacity = ? WHERE id = ?`, hours, personID)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("person %s: %w", personID, ErrNotFound)
	}
	return nil
}

func (s Store) ListPeople(ctx context.Context) ([]model.Person, error) {
	db, err := s.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return listPeople(ctx, db, "")
}

func listPeople(ctx context.Context, db *sql.DB, department string) ([]model.Person, error) {
	q := `SELECT id, name, department, weekly_capacity FROM people`
	args := []any{}
	if strings.TrimSpace(department) != "" {
		q += ` WHERE department = ?`
		args = append(args, department)
	}
	q += ` ORDER BY name ASC, id ASC`

	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Person{}
	for rows.Next() {
		var p model.Person
		if err := rows.Scan(&p.ID, &p.Name, &p.Department, &p.WeeklyCapacity); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s Store) CreateProject(ctx context.Context, p model.Project) (model.Project, error) {
	if strings.TrimSpace(p.Name) == "" {
		return model.Project{}, errors.New("missing project name")
	}
	if p.ID == "" {
		p.ID = NewID("prj")
	}
	db, err := s.Open(ctx)
	if err != nil {
		return model.Project{}, err
	}
	defer db.Close()

	_, err = db.ExecContext(ctx,
		`INSERT INTO projects(id, name, archived) VALUES(?, ?, ?)`,
		p.ID, p.Name, boolToInt(p.Archived))
	if err != nil {
		return model.Project{}, fmt.Errorf("create project: %w", err)
	}
	return p, nil
}

func (s Store) ListProjects(ctx context.Context) ([]model.Project, error) {
	db, err := s.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return listProjects(ctx, db)
}

func listProjects(ctx context.Context, db *sql.DB) ([]model.Project, error) {
	rows, err := db.QueryContext(ctx, `SELECT id, name, archived FROM projects ORDER BY name ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Project{}
	for rows.Next() {
		var p model.Project
		var archived int
		if err := rows.Scan(&p.ID, &p.Name, &archived); err != nil {
			return nil, err
		}
		p.Archived = archived != 0
		out = append(out, p)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
