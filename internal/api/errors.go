package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Startup-Mindset/job-posting/internal/extractor"
	"github.com/Startup-Mindset/job-posting/internal/normalizer"
	"github.com/Startup-Mindset/job-posting/internal/publisher"
	"github.com/Startup-Mindset/job-posting/internal/session"
)

// Error codes returned in the error body.
const (
	CodeMultiplePostings = "multiple_postings"
	CodeInvalidInput     = "invalid_input"
	CodeMissingField     = "missing_field"
	CodeWrongState       = "wrong_state"
	CodeRemoteError      = "remote_error"
	CodeTransportError   = "transport_error"
	CodePublishFailed    = "publish_failed"
	CodeInternal         = "internal_error"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
}

// classify maps an action error to an HTTP status and error code.
func classify(err error) (int, string) {
	var pubErr *publisher.PublishError

	switch {
	case errors.Is(err, normalizer.ErrMultiplePostings):
		return http.StatusUnprocessableEntity, CodeMultiplePostings
	case errors.Is(err, extractor.ErrInvalidInput):
		return http.StatusBadRequest, CodeInvalidInput
	case errors.Is(err, session.ErrNotReviewing), errors.Is(err, session.ErrNotEditable):
		return http.StatusConflict, CodeWrongState
	case errors.As(err, &pubErr) && pubErr.Field != "":
		return http.StatusUnprocessableEntity, CodeMissingField
	case errors.Is(err, publisher.ErrPublish):
		return http.StatusBadGateway, CodePublishFailed
	case errors.Is(err, normalizer.ErrRemoteAPI):
		return http.StatusBadGateway, CodeRemoteError
	case errors.Is(err, extractor.ErrTransport):
		return http.StatusBadGateway, CodeTransportError
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

func (s *Server) writeError(c *gin.Context, err error) {
	status, code := classify(err)

	c.AbortWithStatusJSON(status, errorBody{Error: errorDetail{
		Code:      code,
		Message:   err.Error(),
		RequestID: c.GetString(ctxRequestID),
	}})
}
