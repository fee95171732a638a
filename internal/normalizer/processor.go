// Package normalizer standardizes extraction API responses into records or plain text.
package normalizer

import (
	"github.com/Startup-Mindset/job-posting/internal/models"
)

// Processor validates a response status and transforms its body.
type Processor struct {
	validator   *Validator
	transformer *Transformer
}

// NewProcessor creates a new processor instance.
func NewProcessor() *Processor {
	return &Processor{
		validator:   NewValidator(),
		transformer: NewTransformer(),
	}
}

// Process normalizes one response. Only the status can make it fail; body
// parse problems degrade to a text result.
func (p *Processor) Process(statusCode int, body []byte) (models.Result, error) {
	if err := p.validator.Validate(statusCode); err != nil {
		return models.Result{}, err
	}

	return p.transformer.Transform(body), nil
}
