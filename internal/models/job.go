package models

// Canonical job record keys returned by the extraction API.
const (
	FieldJobTitle    = "Job Title"
	FieldCompany     = "Company"
	FieldDescription = "Description"
	FieldLocation    = "Location"
	FieldRemote      = "Remote"
	FieldApplyURL    = "apply_Url"
	FieldFileURL     = "file_Url"
)

// Object is an insertion-ordered mapping of field names to values.
type Object struct {
	fields map[string]Value
	keys   []string
}

// JobRecord is the top-level object describing one job posting.
// Any key the extraction API returns is kept.
type JobRecord = Object

// NewObject returns an empty object.
func NewObject() *Object {
	return &Object{fields: make(map[string]Value)}
}

// NewJobRecord returns an empty job record.
func NewJobRecord() *JobRecord {
	return NewObject()
}

// Set stores v under key. Re-setting a key keeps its original position.
func (o *Object) Set(key string, v Value) {
	if _, exists := o.fields[key]; !exists {
		o.keys = append(o.keys, key)
	}

	o.fields[key] = v
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (Value, bool) {
	v, ok := o.fields[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	out := make([]string, len(o.keys))
	copy(out, o.keys)

	return out
}

// Len returns the number of fields.
func (o *Object) Len() int {
	return len(o.keys)
}

// Result is what the normalizer hands back for one response: either a
// structured record or plain text the operator reads as-is.
type Result struct {
	record *JobRecord
	text   string
}

// Structured wraps a record.
func Structured(record *JobRecord) Result {
	if record == nil {
		record = NewJobRecord()
	}

	return Result{record: record}
}

// Text wraps plain text.
func Text(s string) Result {
	return Result{text: s}
}

// IsStructured reports whether the result carries a record.
func (r Result) IsStructured() bool {
	return r.record != nil
}

// Record returns the record, or nil for a text result.
func (r Result) Record() *JobRecord {
	return r.record
}

// Text returns the plain text of a text result.
func (r Result) Text() string {
	return r.text
}
