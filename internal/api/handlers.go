package api

import (
	"errors"
	"io"
	"maps"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"

	"github.com/Startup-Mindset/job-posting/internal/app"
	"github.com/Startup-Mindset/job-posting/internal/extractor"
)

var errMissingFields = errors.New("no fields to update")

type textRequest struct {
	Text string `json:"text"`
}

type urlRequest struct {
	URL string `json:"url"`
}

type editRequest struct {
	Fields map[string]string `json:"fields"`
}

func (s *Server) submitFile(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		s.writeError(c, badRequest(`multipart field "file" is required`, err))
		return
	}

	f, err := header.Open()
	if err != nil {
		s.writeError(c, badRequest("could not open upload", err))
		return
	}
	defer f.Close()

	var r io.Reader = f
	if s.maxUpload > 0 {
		r = io.LimitReader(f, s.maxUpload+1)
	}

	content, err := io.ReadAll(r)
	if err != nil {
		s.writeError(c, badRequest("could not read upload", err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.app.SubmitFile(c.Request.Context(), header.Filename, content)
	s.respond(c, snap, err)
}

func (s *Server) submitText(c *gin.Context) {
	var req textRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, badRequest("invalid JSON body", err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.app.SubmitText(c.Request.Context(), req.Text)
	s.respond(c, snap, err)
}

func (s *Server) submitURL(c *gin.Context) {
	var req urlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, badRequest("invalid JSON body", err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.app.SubmitURL(c.Request.Context(), req.URL)
	s.respond(c, snap, err)
}

func (s *Server) current(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.JSON(http.StatusOK, s.app.Snapshot())
}

func (s *Server) edit(c *gin.Context) {
	var req editRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, badRequest("invalid JSON body", err))
		return
	}

	if len(req.Fields) == 0 {
		s.writeError(c, badRequest(errMissingFields.Error(), errMissingFields))
		return
	}

	// JSON objects are unordered; apply edits in a stable order.
	edits := make([]app.FieldEdit, 0, len(req.Fields))
	for _, name := range slices.Sorted(maps.Keys(req.Fields)) {
		edits = append(edits, app.FieldEdit{Name: name, Value: req.Fields[name]})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.app.Edit(edits...)
	s.respond(c, snap, err)
}

func (s *Server) reset(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.JSON(http.StatusOK, s.app.Reset())
}

func (s *Server) publish(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.app.Publish(c.Request.Context())
	s.respond(c, snap, err)
}

func (s *Server) respond(c *gin.Context, snap app.Snapshot, err error) {
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, snap)
}

// badRequest marks a malformed HTTP request as invalid input.
func badRequest(msg string, cause error) error {
	return &requestError{msg: msg, cause: cause}
}

type requestError struct {
	cause error
	msg   string
}

func (e *requestError) Error() string { return e.msg + ": " + e.cause.Error() }

func (e *requestError) Is(target error) bool { return target == extractor.ErrInvalidInput }

func (e *requestError) Unwrap() error { return e.cause }
