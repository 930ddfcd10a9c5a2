package store

import (
	"context"
	"time"

	"staffgrid/internal/model"
	"staffgrid/internal/week"
)

// SeedDemo populates an empty store with a small team and a few weeks of
// plan data so the grid has something to show right after init.
func (s Store) SeedDemo(ctx context.Context) error {
	people := []model.Person{
		{ID: "per-ada", Name: "Ada Fry", Department: "engineering", WeeklyCapacity: 40},
		{ID: "per-lin", Name: "Lin Osei", Department: "engineering", WeeklyCapacity: 32},
		{ID: "per-mia", Name: "Mia Ruiz", Department: "design", WeeklyCapacity: 40},
	}
	projects := []model.Project{
		{ID: "prj-atlas", Name: "Atlas"},
		{ID: "prj-borealis", Name: "Borealis"},
	}
	for _, p := range people {
		if _, err := s.CreatePerson(ctx, p); err != nil {
			return err
		}
	}
	for _, p := range projects {
		if _, err := s.CreateProject(ctx, p); err != nil {
			return err
		}
	}

	weeks := week.Horizon(time.Now(), 4)
	plan := []struct {
		person, project string
		hours           []float64
	}{
		{"per-ada", "prj-atlas", []float64{16, 16, 8, 8}},
		{"per-ada", "prj-borealis", []float64{16, 16, 24, 24}},
		{"per-lin", "prj-atlas", []float64{32, 32, 32, 0}},
		{"per-mia", "prj-borealis", []float64{20, 20, 20, 20}},
	}
	for _, row := range plan {
		a, err := s.CreateAssignment(ctx, row.person, row.project, "seed")
		if err != nil {
			return err
		}
		for i, h := range row.hours {
			if h == 0 || i >= len(weeks) {
				continue
			}
			if _, err := s.SetHours(ctx, a.ID, weeks[i], h, "seed"); err != nil {
				return err
			}
		}
	}
	return nil
}
