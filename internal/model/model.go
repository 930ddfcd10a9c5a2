package model

import "time"

type Person struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Department string  `json:"department,omitempty"`
	// WeeklyCapacity is the person's nominal capacity in hours per week.
	WeeklyCapacity float64 `json:"weeklyCapacity"`
}

type Project struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Archived bool   `json:"archived"`
}

// Assignment links one person to one project and carries the planned hours
// per week. WeeklyHours is keyed by week key (Monday-anchored ISO date,
// YYYY-MM-DD). Absent weeks mean zero hours.
type Assignment struct {
	ID          string             `json:"id"`
	PersonID    string             `json:"personId"`
	ProjectID   string             `json:"projectId"`
	WeeklyHours map[string]float64 `json:"weeklyHours"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

type ChangeKind string

const (
	ChangeUpdated ChangeKind = "updated"
	ChangeDeleted ChangeKind = "deleted"
)

// ChangeEvent notifies sessions that an assignment changed. Assignment may be
// nil (id-only notification); receivers point-fetch the payload in that case.
// ServerTS orders events; arrival order carries no meaning. Origin identifies
// the session whose write produced the event so sessions can recognize their
// own echoes.
type ChangeEvent struct {
	AssignmentID   string      `json:"assignmentId"`
	Kind           ChangeKind  `json:"kind"`
	Assignment     *Assignment `json:"assignment,omitempty"`
	ServerTS       time.Time   `json:"serverTs"`
	AffectedFields []string    `json:"affectedFields,omitempty"`
	Origin         string      `json:"origin,omitempty"`
}

// AffectsHours reports whether the event touches the weeklyHours field.
// Events with no field list are treated as touching everything.
func (e ChangeEvent) AffectsHours() bool {
	if len(e.AffectedFields) == 0 {
		return true
	}
	for _, f := range e.AffectedFields {
		if f == "weeklyHours" {
			return true
		}
	}
	return false
}

// CellRef names one (assignment, week) target of a bulk write.
type CellRef struct {
	AssignmentID string `json:"assignmentId"`
	WeekKey      string `json:"weekKey"`
}

// SnapshotRow is one grid row of the snapshot read: a single assignment with
// its owning person and project and the hours for every requested week.
type SnapshotRow struct {
	PersonID     string             `json:"personId"`
	AssignmentID string             `json:"assignmentId"`
	ProjectID    string             `json:"projectId"`
	WeeklyHours  map[string]float64 `json:"weeklyHours"`
	UpdatedAt    time.Time          `json:"updatedAt"`
}

// Snapshot is the full read used to seed a grid session: the ordered week
// columns plus one row per visible assignment.
type Snapshot struct {
	WeekKeys []string      `json:"weekKeys"`
	Rows     []SnapshotRow `json:"rows"`
	People   []Person      `json:"people"`
	Projects []Project     `json:"projects"`
}
