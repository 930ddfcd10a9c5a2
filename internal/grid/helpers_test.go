package grid

import (
	"testing"
	"time"

	"staffgrid/internal/model"
)

var testWeeks = []string{"2025-01-06", "2025-01-13", "2025-01-20", "2025-01-27"}

func testSnapshot() *model.Snapshot {
	return &model.Snapshot{
		WeekKeys: testWeeks,
		People: []model.Person{
			{ID: "p1", Name: "Ada", Department: "eng", WeeklyCapacity: 40},
			{ID: "p2", Name: "Lin", Department: "eng", WeeklyCapacity: 32},
		},
		Projects: []model.Project{
			{ID: "pr1", Name: "Atlas"},
			{ID: "pr2", Name: "Borealis"},
		},
		Rows: []model.SnapshotRow{
			{PersonID: "p1", AssignmentID: "a1", ProjectID: "pr1", WeeklyHours: map[string]float64{"2025-01-06": 8, "2025-01-13": 8}},
			{PersonID: "p1", AssignmentID: "a2", ProjectID: "pr2", WeeklyHours: map[string]float64{"2025-01-06": 16}},
			{PersonID: "p2", AssignmentID: "a3", ProjectID: "pr1", WeeklyHours: map[string]float64{"2025-01-13": 24}},
		},
	}
}

func testSession(t *testing.T) (*Session, *ManualScheduler) {
	t.Helper()
	sched := &ManualScheduler{}
	at := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	s := NewSession(testSnapshot(), sched, WithClock(func() time.Time { return at }))
	return s, sched
}

func addr(personID, assignmentID, wk string) CellAddr {
	return CellAddr{Row: RowKey{PersonID: personID, AssignmentID: assignmentID}, Week: wk}
}

func ts(minute int) time.Time {
	return time.Date(2025, 1, 10, 12, minute, 0, 0, time.UTC)
}

func fullEvent(assignmentID, personID, projectID string, hours map[string]float64, at time.Time) model.ChangeEvent {
	return model.ChangeEvent{
		AssignmentID: assignmentID,
		Kind:         model.ChangeUpdated,
		ServerTS:     at,
		Assignment: &model.Assignment{
			ID:          assignmentID,
			PersonID:    personID,
			ProjectID:   projectID,
			WeeklyHours: hours,
			UpdatedAt:   at,
		},
		AffectedFields: []string{"weeklyHours"},
	}
}
