// Package display prepares normalized results for review and editing.
package display

import (
	"github.com/Startup-Mindset/job-posting/internal/models"
)

// View is what the operator reviews: a one-row table for a structured
// result, or plain text.
type View struct {
	table *Table
	text  string
}

// Adapt flattens a structured result into a table; text passes through.
// This is the only place nested values are flattened.
func Adapt(result models.Result) View {
	if result.IsStructured() {
		return View{table: NewTable(result.Record())}
	}

	return View{text: result.Text()}
}

// IsTable reports whether the view holds a table.
func (v View) IsTable() bool {
	return v.table != nil
}

// Table returns the table, or nil for a text view.
func (v View) Table() *Table {
	return v.table
}

// Text returns the text of a text view.
func (v View) Text() string {
	return v.text
}

// Table is a single job posting laid out as one row of named columns.
// Every cell is a scalar.
type Table struct {
	cells   map[string]models.Value
	columns []string
}

// NewTable builds a flat table from record. Arrays and objects are replaced
// by their string form; scalars keep their type.
func NewTable(record *models.JobRecord) *Table {
	t := &Table{cells: make(map[string]models.Value)}
	if record == nil {
		return t
	}

	for _, key := range record.Keys() {
		v, _ := record.Get(key)
		if v.IsCompound() {
			v = models.String(v.String())
		}

		t.put(key, v)
	}

	return t
}

func (t *Table) put(column string, v models.Value) {
	if _, exists := t.cells[column]; !exists {
		t.columns = append(t.columns, column)
	}

	t.cells[column] = v
}

// Columns returns the column names in order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)

	return out
}

// Get returns the cell under column.
func (t *Table) Get(column string) (models.Value, bool) {
	v, ok := t.cells[column]
	return v, ok
}

// Set stores an operator edit. Unknown columns are appended.
func (t *Table) Set(column, value string) {
	t.put(column, models.String(value))
}

// Row returns the display strings of the row keyed by column.
func (t *Table) Row() map[string]string {
	row := make(map[string]string, len(t.columns))
	for _, col := range t.columns {
		row[col] = t.cells[col].String()
	}

	return row
}

// Record converts the (possibly edited) row back into a job record.
func (t *Table) Record() *models.JobRecord {
	rec := models.NewJobRecord()
	for _, col := range t.columns {
		rec.Set(col, t.cells[col])
	}

	return rec
}
