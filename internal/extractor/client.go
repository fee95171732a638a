// Package extractor submits job postings to the remote extraction API.
package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Startup-Mindset/job-posting/internal/logger"
	"github.com/Startup-Mindset/job-posting/internal/models"
	"github.com/Startup-Mindset/job-posting/internal/normalizer"
	"github.com/Startup-Mindset/job-posting/pkg/utils"
)

// Input errors.
var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrInvalidURL       = fmt.Errorf("%w: invalid URL format", ErrInvalidInput)
	ErrEmptyText        = fmt.Errorf("%w: text is empty", ErrInvalidInput)
	ErrMissingEndpoint  = fmt.Errorf("%w: API endpoint is not configured", ErrInvalidInput)
	ErrTransport        = errors.New("transport error")
	ErrResponseTooLarge = fmt.Errorf("%w: response body exceeds size limit", ErrTransport)
)

// Input paths, used as error prefixes and log/metric labels.
const (
	PathFile = "file"
	PathText = "text"
	PathURL  = "URL"
)

// DefaultMaxResponseBytes caps how much of a response body is read.
const DefaultMaxResponseBytes = 10 * 1024 * 1024

// Client sends one posting per call to the extraction API and normalizes the reply.
type Client struct {
	httpClient *http.Client
	limiter    *utils.HostLimiter
	helper     *utils.HTTPHelper
	processor  *normalizer.Processor
	logger     *logger.Logger
	maxBody    int64
}

// NewClient creates a client. A nil limiter disables pacing.
func NewClient(httpClient *http.Client, limiter *utils.HostLimiter, log *logger.Logger) *Client {
	if httpClient == nil {
		httpClient = utils.NewHTTPClient(60 * time.Second)
	}

	if limiter == nil {
		limiter = utils.NewHostLimiter(0, 1)
	}

	if log == nil {
		log = logger.Nop()
	}

	return &Client{
		httpClient: httpClient,
		limiter:    limiter,
		helper:     utils.NewHTTPHelper(),
		processor:  normalizer.NewProcessor(),
		logger:     log,
		maxBody:    DefaultMaxResponseBytes,
	}
}

// ProcessFile uploads a document or image as multipart field "file".
// Size (5 MiB) and type (PDF/JPEG/PNG) limits are the caller's
// responsibility; content is sent unchecked.
func (c *Client) ProcessFile(ctx context.Context, content []byte, filename, endpoint string) (models.Result, error) {
	var buf bytes.Buffer

	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return models.Result{}, wrapPath(PathFile, fmt.Errorf("failed to create form file: %w", err))
	}

	if _, err := part.Write(content); err != nil {
		return models.Result{}, wrapPath(PathFile, fmt.Errorf("failed to write form file: %w", err))
	}

	if err := mw.Close(); err != nil {
		return models.Result{}, wrapPath(PathFile, fmt.Errorf("failed to close multipart body: %w", err))
	}

	result, err := c.submit(ctx, PathFile, endpoint, &buf, mw.FormDataContentType())
	if err != nil {
		return models.Result{}, wrapPath(PathFile, err)
	}

	return result, nil
}

// ProcessText sends pasted posting text as {"text": ...}.
func (c *Client) ProcessText(ctx context.Context, text, endpoint string) (models.Result, error) {
	if strings.TrimSpace(text) == "" {
		return models.Result{}, wrapPath(PathText, ErrEmptyText)
	}

	result, err := c.submitJSON(ctx, PathText, endpoint, map[string]string{"text": text})
	if err != nil {
		return models.Result{}, wrapPath(PathText, err)
	}

	return result, nil
}

// ProcessURL sends a posting URL as {"websiteUrl": ...}. Invalid URLs fail
// before any request is made.
func (c *Client) ProcessURL(ctx context.Context, rawURL, endpoint string) (models.Result, error) {
	if !c.helper.IsValidURL(rawURL) {
		return models.Result{}, wrapPath(PathURL, ErrInvalidURL)
	}

	result, err := c.submitJSON(ctx, PathURL, endpoint, map[string]string{"websiteUrl": rawURL})
	if err != nil {
		return models.Result{}, wrapPath(PathURL, err)
	}

	return result, nil
}

func (c *Client) submitJSON(ctx context.Context, path, endpoint string, payload map[string]string) (models.Result, error) {
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return models.Result{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	return c.submit(ctx, path, endpoint, bytes.NewReader(jsonBody), "application/json")
}

func (c *Client) submit(ctx context.Context, path, endpoint string, body io.Reader, contentType string) (models.Result, error) {
	if endpoint == "" {
		return models.Result{}, ErrMissingEndpoint
	}

	requestID := uuid.NewString()
	log := c.logger.With("path", path, "request_id", requestID)

	if err := c.limiter.WaitURL(ctx, endpoint); err != nil {
		return models.Result{}, fmt.Errorf("%w: %w", ErrTransport, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return models.Result{}, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header = c.helper.BuildHeaders(map[string]string{
		"Content-Type": contentType,
		"X-Request-ID": requestID,
	})

	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("Extraction request failed", "error", err)
		return models.Result{}, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return models.Result{}, fmt.Errorf("%w: failed to read response: %w", ErrTransport, err)
	}

	if int64(len(respBody)) > c.maxBody {
		log.Error("Extraction response too large", "status", resp.StatusCode, "limit_bytes", c.maxBody)
		return models.Result{}, fmt.Errorf("%w (%d bytes)", ErrResponseTooLarge, c.maxBody)
	}

	log.Info("Extraction response received",
		"status", resp.StatusCode,
		"bytes", len(respBody),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	result, err := c.processor.Process(resp.StatusCode, respBody)
	if err != nil {
		log.Warn("Extraction rejected", "error", err)
		return models.Result{}, err
	}

	if !result.IsStructured() {
		log.Debug("Extraction returned plain text")
	}

	return result, nil
}

func wrapPath(path string, err error) error {
	return fmt.Errorf("%s processing failed: %w", path, err)
}
