// Package grid implements the interactive assignment grid: cell addressing,
// selection, editing, remote-change reconciliation, column virtualization and
// keyboard navigation. The package is UI-agnostic; the TUI layer subscribes
// to its stores and renders them.
package grid

import (
	"fmt"
	"strings"
)

// RowKey identifies one grid row: a person/assignment pair. Its string form
// is "personId:assignmentId".
type RowKey struct {
	PersonID     string
	AssignmentID string
}

func (k RowKey) String() string {
	return k.PersonID + ":" + k.AssignmentID
}

func (k RowKey) IsZero() bool {
	return k.PersonID == "" && k.AssignmentID == ""
}

// ParseRowKey parses the string form produced by RowKey.String. Person ids
// never contain ':'; assignment ids may not either, so the first separator
// splits unambiguously.
func ParseRowKey(s string) (RowKey, error) {
	i := strings.IndexByte(s, ':')
	if i <= 0 || i == len(s)-1 {
		return RowKey{}, fmt.Errorf("invalid row key %q", s)
	}
	return RowKey{PersonID: s[:i], AssignmentID: s[i+1:]}, nil
}

// CellAddr identifies one editable cell: the intersection of a row and a week
// column. It is the sole identity used by selection, editing and rendering.
type CellAddr struct {
	Row  RowKey
	Week string
}

func (a CellAddr) String() string {
	return a.Row.String() + "@" + a.Week
}

func (a CellAddr) IsZero() bool {
	return a.Row.IsZero() && a.Week == ""
}
