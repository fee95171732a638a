// Package session holds the review state of the one posting an operator is working on.
package session

import (
	"errors"
	"fmt"

	"github.com/Startup-Mindset/job-posting/internal/display"
	"github.com/Startup-Mindset/job-posting/internal/models"
)

// State is a step of the review lifecycle.
type State string

// Lifecycle: Idle -> Reviewing -> Published | Idle.
const (
	StateIdle      State = "idle"
	StateReviewing State = "reviewing"
	StatePublished State = "published"
)

// Session errors.
var (
	ErrNotReviewing = errors.New("no job posting under review")
	ErrNotEditable  = errors.New("text results cannot be edited or published")
)

// Session is owned by the caller and passed into each operator action.
// It is not safe for concurrent use.
type Session struct {
	view         display.View
	state        State
	publishedURL string
	lastError    string
}

// New returns an idle session.
func New() *Session {
	return &Session{state: StateIdle}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	return s.state
}

// View returns the result under review.
func (s *Session) View() display.View {
	return s.view
}

// PublishedURL returns the page URL after a successful publish.
func (s *Session) PublishedURL() string {
	return s.publishedURL
}

// LastError returns the message of the last failed action, if any.
func (s *Session) LastError() string {
	return s.lastError
}

// Load starts reviewing a freshly processed result, replacing whatever was
// there before.
func (s *Session) Load(result models.Result) {
	s.view = display.Adapt(result)
	s.state = StateReviewing
	s.publishedURL = ""
	s.lastError = ""
}

// Edit changes one field of the record under review.
func (s *Session) Edit(field, value string) error {
	table, err := s.editableTable()
	if err != nil {
		return err
	}

	table.Set(field, value)

	return nil
}

// Approve returns the record to publish.
func (s *Session) Approve() (*models.JobRecord, error) {
	table, err := s.editableTable()
	if err != nil {
		return nil, err
	}

	return table.Record(), nil
}

// MarkPublished finishes the review. The record is discarded.
func (s *Session) MarkPublished(url string) error {
	if s.state != StateReviewing {
		return fmt.Errorf("%w: state is %s", ErrNotReviewing, s.state)
	}

	s.view = display.View{}
	s.state = StatePublished
	s.publishedURL = url
	s.lastError = ""

	return nil
}

// Fail drops any result and returns to Idle, remembering the message.
func (s *Session) Fail(err error) {
	s.view = display.View{}
	s.state = StateIdle
	s.publishedURL = ""
	s.lastError = err.Error()
}

// Reset returns to Idle.
func (s *Session) Reset() {
	*s = Session{state: StateIdle}
}

func (s *Session) editableTable() (*display.Table, error) {
	if s.state != StateReviewing {
		return nil, fmt.Errorf("%w: state is %s", ErrNotReviewing, s.state)
	}

	if !s.view.IsTable() {
		return nil, ErrNotEditable
	}

	return s.view.Table(), nil
}
