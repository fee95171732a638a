// Package publisher maps approved job records onto the workspace database
// schema and creates them as pages.
package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Startup-Mindset/job-posting/internal/logger"
	"github.com/Startup-Mindset/job-posting/pkg/utils"
)

// Workspace API defaults.
const (
	DefaultBaseURL    = "https://api.notion.com"
	DefaultAPIVersion = "2022-06-28"
)

// Client errors.
var (
	ErrUnexpectedStatusCode = errors.New("unexpected status code")
	ErrNoPageURL            = errors.New("no page URL in response")
)

// Client defines the interface for workspace communication.
type Client interface {
	CreatePage(ctx context.Context, credential string, page *PageRequest) (*Page, error)
}

// Ensure NotionClient implements Client.
var _ Client = (*NotionClient)(nil)

// NotionClient creates pages through the workspace REST API.
type NotionClient struct {
	httpClient *http.Client
	limiter    *utils.HostLimiter
	helper     *utils.HTTPHelper
	logger     *logger.Logger
	baseURL    string
	apiVersion string
}

// NewNotionClient creates a new client. Empty baseURL uses DefaultBaseURL.
func NewNotionClient(baseURL string, httpClient *http.Client, limiter *utils.HostLimiter, log *logger.Logger) *NotionClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	if httpClient == nil {
		httpClient = utils.NewHTTPClient(30 * time.Second)
	}

	if limiter == nil {
		limiter = utils.NewHostLimiter(0, 1)
	}

	if log == nil {
		log = logger.Nop()
	}

	return &NotionClient{
		httpClient: httpClient,
		limiter:    limiter,
		helper:     utils.NewHTTPHelper(),
		logger:     log,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiVersion: DefaultAPIVersion,
	}
}

// CreatePage sends the page and returns the created page.
func (c *NotionClient) CreatePage(ctx context.Context, credential string, page *PageRequest) (*Page, error) {
	jsonBody, err := json.Marshal(page)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := c.baseURL + "/v1/pages"

	if err := c.limiter.WaitURL(ctx, endpoint); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header = c.helper.BuildHeaders(map[string]string{
		"Content-Type":   "application/json",
		"Authorization":  "Bearer " + credential,
		"Notion-Version": c.apiVersion,
	})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10*1024*1024))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr APIError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
			c.logger.Error("Create page rejected", "status", resp.StatusCode, "code", apiErr.Code)
			return nil, fmt.Errorf("%w: %d: %s: %s", ErrUnexpectedStatusCode, resp.StatusCode, apiErr.Code, apiErr.Message)
		}

		c.logger.Error("Create page failed", "status", resp.StatusCode)

		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatusCode, resp.StatusCode)
	}

	var created Page
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if created.URL == "" {
		return nil, ErrNoPageURL
	}

	c.logger.Debug("Page created", "page_id", created.ID)

	return &created, nil
}
