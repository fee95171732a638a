package normalizer

import (
	"github.com/Startup-Mindset/job-posting/internal/models"
)

// valueKey is the envelope key some API deployments wrap the record in.
const valueKey = "value"

// Transformer turns a successful response body into a result.
// It never fails: anything it cannot read as a record comes back as text.
type Transformer struct{}

// NewTransformer creates a new transformer instance.
func NewTransformer() *Transformer {
	return &Transformer{}
}

// Transform unwraps the optional "value" envelope, re-parsing it when it
// holds JSON encoded as a string. Nested values are left as they are.
func (t *Transformer) Transform(body []byte) models.Result {
	v, err := models.DecodeValue(body)
	if err != nil {
		return models.Text(string(body))
	}

	top, ok := v.Object()
	if !ok {
		return models.Text(v.String())
	}

	inner, present := top.Get(valueKey)
	if !present {
		return models.Structured(top)
	}

	switch inner.Kind() {
	case models.KindObject:
		record, _ := inner.Object()
		return models.Structured(record)
	case models.KindString:
		raw, _ := inner.Str()
		return t.fromEncodedString(raw)
	default:
		return models.Text(inner.String())
	}
}

func (t *Transformer) fromEncodedString(raw string) models.Result {
	parsed, err := models.DecodeValue([]byte(raw))
	if err != nil {
		return models.Text(raw)
	}

	if record, ok := parsed.Object(); ok {
		return models.Structured(record)
	}

	return models.Text(raw)
}
