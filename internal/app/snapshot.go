package app

import (
	"github.com/Startup-Mindset/job-posting/internal/display"
	"github.com/Startup-Mindset/job-posting/internal/session"
)

// Field is one column of the record under review.
type Field struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// FieldEdit is an operator change to one column.
type FieldEdit = Field

// Snapshot is a read-only copy of the session for presentation.
// Fields keep the record's column order.
type Snapshot struct {
	State        session.State `json:"state"`
	Fields       []Field       `json:"fields,omitempty"`
	Text         string        `json:"text,omitempty"`
	PublishedURL string        `json:"published_url,omitempty"`
	Error        string        `json:"error,omitempty"`
	table        *display.Table
}

// IsTable reports whether the snapshot carries a structured record.
func (s Snapshot) IsTable() bool {
	return s.table != nil
}

// Render formats the snapshot for a terminal.
func (s Snapshot) Render(maxCellWidth int) string {
	if s.table != nil {
		return display.Render(s.table, maxCellWidth)
	}

	return s.Text
}

// Snapshot returns the current session state.
func (a *App) Snapshot() Snapshot {
	snap := Snapshot{
		State:        a.session.State(),
		PublishedURL: a.session.PublishedURL(),
		Error:        a.session.LastError(),
	}

	if a.session.State() != session.StateReviewing {
		return snap
	}

	view := a.session.View()
	if !view.IsTable() {
		snap.Text = view.Text()
		return snap
	}

	table := view.Table()
	row := table.Row()

	for _, col := range table.Columns() {
		snap.Fields = append(snap.Fields, Field{Name: col, Value: row[col]})
	}

	snap.table = table

	return snap
}
