package normalizer

import (
	"errors"
	"fmt"
	"net/http"
)

// Response status errors.
var (
	// ErrMultiplePostings is the extraction API's HTTP 500 signal: the page
	// aggregates several postings and the operator should submit a more
	// specific URL.
	ErrMultiplePostings = errors.New("multiple job postings detected: please use the specific job posting URL")
	// ErrRemoteAPI matches every *RemoteAPIError.
	ErrRemoteAPI = errors.New("API error")
)

// RemoteAPIError reports a non-200, non-500 response from the extraction API.
type RemoteAPIError struct {
	StatusCode int
}

func (e *RemoteAPIError) Error() string {
	return fmt.Sprintf("%s: %d", ErrRemoteAPI, e.StatusCode)
}

// Unwrap lets errors.Is(err, ErrRemoteAPI) match.
func (e *RemoteAPIError) Unwrap() error {
	return ErrRemoteAPI
}

// Validator checks the status line of an extraction response.
type Validator struct{}

// NewValidator creates a new validator instance.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate accepts only 200. A 500 always means multiple postings,
// whatever the body says.
func (v *Validator) Validate(statusCode int) error {
	switch statusCode {
	case http.StatusOK:
		return nil
	case http.StatusInternalServerError:
		return ErrMultiplePostings
	default:
		return &RemoteAPIError{StatusCode: statusCode}
	}
}
