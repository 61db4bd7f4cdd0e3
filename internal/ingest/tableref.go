package ingest

import (
	"fmt"
	"strings"
)

// TableRef is a fully-qualified destination address in the
// "project.dataset.table" form.
type TableRef struct {
	Project string
	Dataset string
	Table   string
}

// ParseTableRef splits a "project.dataset.table" identifier. Anything
// that is not exactly three non-empty dot-separated parts fails with
// ErrBadTableID; the identifier must resolve to exactly one table.
func ParseTableRef(tableID string) (TableRef, error) {
	parts := strings.Split(tableID, ".")
	if len(parts) != 3 {
		return TableRef{}, fmt.Errorf("%w: %q is not project.dataset.table", ErrBadTableID, tableID)
	}
	for _, p := range parts {
		if p == "" {
			return TableRef{}, fmt.Errorf("%w: %q has an empty component", ErrBadTableID, tableID)
		}
	}

	return TableRef{
		Project: parts[0],
		Dataset: parts[1],
		Table:   parts[2],
	}, nil
}

func (r TableRef) String() string {
	return r.Project + "." + r.Dataset + "." + r.Table
}
