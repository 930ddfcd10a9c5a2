package grid

import (
	"time"

	"staffgrid/internal/model"
)

// Row is one materialized grid row: an assignment's hours keyed by week.
type Row struct {
	Key       RowKey
	ProjectID string
	Hours     map[string]float64
	UpdatedAt time.Time
}

// Dataset is the cell-address → value universe of one grid session, seeded
// from a snapshot. It is owned by the Reconciler: only the reconciliation
// apply path and the editing commit path mutate it.
type Dataset struct {
	weeks   []string
	weekIdx map[string]int

	rows   []*Row
	rowIdx map[RowKey]int

	people     map[string]model.Person
	projects   map[string]model.Project
	personRows map[string][]RowKey

	totals  *Totals
	Changed Signal
}

// NewDataset seeds the row/column universe from a snapshot read.
func NewDataset(snap *model.Snapshot) *Dataset {
	d := &Dataset{
		weekIdx:    make(map[string]int, len(snap.WeekKeys)),
		rowIdx:     make(map[RowKey]int, len(snap.Rows)),
		people:     make(map[string]model.Person, len(snap.People)),
		projects:   make(map[string]model.Project, len(snap.Projects)),
		personRows: make(map[string][]RowKey),
		totals:     NewTotals(),
	}
	d.weeks = append(d.weeks, snap.WeekKeys...)
	for i, w := range d.weeks {
		d.weekIdx[w] = i
	}
	for _, p := range snap.People {
		d.people[p.ID] = p
	}
	for _, p := range snap.Projects {
		d.projects[p.ID] = p
	}
	for _, sr := range snap.Rows {
		key := RowKey{PersonID: sr.PersonID, AssignmentID: sr.AssignmentID}
		row := &Row{Key: key, ProjectID: sr.ProjectID, UpdatedAt: sr.UpdatedAt, Hours: make(map[string]float64, len(sr.WeeklyHours))}
		for w, h := range sr.WeeklyHours {
			row.Hours[w] = h
		}
		d.rowIdx[key] = len(d.rows)
		d.rows = append(d.rows, row)
		d.personRows[key.PersonID] = append(d.personRows[key.PersonID], key)
	}
	for _, p := range snap.People {
		for _, w := range d.weeks {
			d.recomputeTotal(p.ID, w)
		}
	}
	return d
}

func (d *Dataset) Weeks() []string { return d.weeks }

func (d *Dataset) WeekIndex(week string) (int, bool) {
	i, ok := d.weekIdx[week]
	return i, ok
}

func (d *Dataset) WeekAt(i int) (string, bool) {
	if i < 0 || i >= len(d.weeks) {
		return "", false
	}
	return d.weeks[i], true
}

func (d *Dataset) NumRows() int  { return len(d.rows) }
func (d *Dataset) NumWeeks() int { return len(d.weeks) }

func (d *Dataset) RowIndex(key RowKey) (int, bool) {
	i, ok := d.rowIdx[key]
	return i, ok
}

func (d *Dataset) RowAt(i int) (*Row, bool) {
	if i < 0 || i >= len(d.rows) {
		return nil, false
	}
	return d.rows[i], true
}

func (d *Dataset) Person(id string) (model.Person, bool) {
	p, ok := d.people[id]
	return p, ok
}

func (d *Dataset) Project(id string) (model.Project, bool) {
	p, ok := d.projects[id]
	return p, ok
}

// RowByAssignment finds the row carrying an assignment. Linear over the row
// set, which is at most a few hundred entries.
func (d *Dataset) RowByAssignment(assignmentID string) (*Row, bool) {
	for _, r := range d.rows {
		if r.Key.AssignmentID == assignmentID {
			return r, true
		}
	}
	return nil, false
}

// Contains reports whether addr names a cell inside the current row/column
// universe.
func (d *Dataset) Contains(addr CellAddr) bool {
	if _, ok := d.rowIdx[addr.Row]; !ok {
		return false
	}
	_, ok := d.weekIdx[addr.Week]
	return ok
}

// ValueAt returns the hours at addr. Cells outside the universe and weeks
// with no entry read as 0.
func (d *Dataset) ValueAt(addr CellAddr) float64 {
	i, ok := d.rowIdx[addr.Row]
	if !ok {
		return 0
	}
	return d.rows[i].Hours[addr.Week]
}

// Total returns the summed hours across a person's visible assignments for
// one week.
func (d *Dataset) Total(personID, week string) float64 {
	return d.totals.Get(personID, week)
}

// setHours writes one cell and incrementally refreshes the owning person's
// total for that week. Reconciler/commit path only.
func (d *Dataset) setHours(addr CellAddr, hours float64, updatedAt time.Time) bool {
	i, ok := d.rowIdx[addr.Row]
	if !ok {
		return false
	}
	if _, ok := d.weekIdx[addr.Week]; !ok {
		return false
	}
	row := d.rows[i]
	row.Hours[addr.Week] = hours
	if updatedAt.After(row.UpdatedAt) {
		row.UpdatedAt = updatedAt
	}
	d.recomputeTotal(addr.Row.PersonID, addr.Week)
	return true
}

// replaceRowHours swaps a row's full week map (remote full-payload update)
// and refreshes that person's totals for the weeks that changed.
func (d *Dataset) replaceRowHours(key RowKey, hours map[string]float64, updatedAt time.Time) bool {
	i, ok := d.rowIdx[key]
	if !ok {
		return false
	}
	row := d.rows[i]
	touched := make(map[string]struct{}, len(hours)+len(row.Hours))
	for w := range row.Hours {
		touched[w] = struct{}{}
	}
	row.Hours = make(map[string]float64, len(hours))
	for w, h := range hours {
		row.Hours[w] = h
		touched[w] = struct{}{}
	}
	row.UpdatedAt = updatedAt
	for w := range touched {
		if _, ok := d.weekIdx[w]; ok {
			d.recomputeTotal(key.PersonID, w)
		}
	}
	return true
}

// upsertRow appends a row for an assignment created outside this session
// (or replaces it if present) and refreshes the person's totals.
func (d *Dataset) upsertRow(key RowKey, projectID string, hours map[string]float64, updatedAt time.Time) {
	if _, ok := d.rowIdx[key]; ok {
		d.replaceRowHours(key, hours, updatedAt)
		return
	}
	row := &Row{Key: key, ProjectID: projectID, UpdatedAt: updatedAt, Hours: make(map[string]float64, len(hours))}
	for w, h := range hours {
		row.Hours[w] = h
	}
	d.rowIdx[key] = len(d.rows)
	d.rows = append(d.rows, row)
	d.personRows[key.PersonID] = append(d.personRows[key.PersonID], key)
	for w := range row.Hours {
		if _, ok := d.weekIdx[w]; ok {
			d.recomputeTotal(key.PersonID, w)
		}
	}
}

// removeRow drops a row from the universe and from the person's totals.
// Removing an absent row is a no-op.
func (d *Dataset) removeRow(key RowKey) bool {
	i, ok := d.rowIdx[key]
	if !ok {
		return false
	}
	removed := d.rows[i]
	d.rows = append(d.rows[:i], d.rows[i+1:]...)
	delete(d.rowIdx, key)
	for j := i; j < len(d.rows); j++ {
		d.rowIdx[d.rows[j].Key] = j
	}
	keys := d.personRows[key.PersonID]
	for j, k := range keys {
		if k == key {
			d.personRows[key.PersonID] = append(keys[:j], keys[j+1:]...)
			break
		}
	}
	for w := range removed.Hours {
		if _, ok := d.weekIdx[w]; ok {
			d.recomputeTotal(key.PersonID, w)
		}
	}
	return true
}

// recomputeTotal sums only the affected person's rows for one week; it never
// rescans the whole dataset.
func (d *Dataset) recomputeTotal(personID, week string) {
	sum := 0.0
	for _, key := range d.personRows[personID] {
		if i, ok := d.rowIdx[key]; ok {
			sum += d.rows[i].Hours[week]
		}
	}
	d.totals.Set(personID, week, sum)
}
