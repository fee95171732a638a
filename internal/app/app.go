// Package app implements the operator actions on top of the extraction,
// review and publish components.
package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/Startup-Mindset/job-posting/internal/config"
	"github.com/Startup-Mindset/job-posting/internal/extractor"
	"github.com/Startup-Mindset/job-posting/internal/logger"
	"github.com/Startup-Mindset/job-posting/internal/metrics"
	"github.com/Startup-Mindset/job-posting/internal/models"
	"github.com/Startup-Mindset/job-posting/internal/publisher"
	"github.com/Startup-Mindset/job-posting/internal/secrets"
	"github.com/Startup-Mindset/job-posting/internal/session"
	"github.com/Startup-Mindset/job-posting/pkg/utils"
)

// Operator input errors. All wrap extractor.ErrInvalidInput.
var (
	ErrFileTooLarge        = fmt.Errorf("%w: file exceeds the upload limit", extractor.ErrInvalidInput)
	ErrUnsupportedFileType = fmt.Errorf("%w: unsupported file type", extractor.ErrInvalidInput)
	ErrEmptyFieldName      = fmt.Errorf("%w: field name is empty", extractor.ErrInvalidInput)
)

// Extractor turns one input into a result.
type Extractor interface {
	ProcessFile(ctx context.Context, content []byte, filename, endpoint string) (models.Result, error)
	ProcessText(ctx context.Context, text, endpoint string) (models.Result, error)
	ProcessURL(ctx context.Context, rawURL, endpoint string) (models.Result, error)
}

// Publisher sends an approved record to the destination.
type Publisher interface {
	Publish(ctx context.Context, record *models.JobRecord, destinationID, credential string) (string, error)
}

// TokenFunc resolves the publish credential at publish time.
type TokenFunc func() (string, error)

// Deps are the collaborators of an App. Nil fields get working defaults.
type Deps struct {
	Extractor Extractor
	Publisher Publisher
	Token     TokenFunc
	Metrics   *metrics.Metrics
	Logger    *logger.Logger
	Session   *session.Session
}

// App runs operator actions against a single review session.
// It is not safe for concurrent use; callers serialize actions.
type App struct {
	cfg       *config.Config
	extractor Extractor
	publisher Publisher
	token     TokenFunc
	metrics   *metrics.Metrics
	logger    *logger.Logger
	session   *session.Session
}

// New builds an App with real HTTP clients from cfg.
func New(cfg *config.Config, log *logger.Logger, m *metrics.Metrics) *App {
	limiter := utils.NewHostLimiter(cfg.Extraction.RatePerSecond, cfg.Extraction.Burst)

	ext := extractor.NewClient(utils.NewHTTPClient(cfg.ExtractionTimeout()), limiter, log)
	notion := publisher.NewNotionClient(cfg.Publish.BaseURL, utils.NewHTTPClient(cfg.PublishTimeout()), limiter, log)

	account := cfg.Publish.KeyringAccount

	return NewWithDeps(cfg, Deps{
		Extractor: ext,
		Publisher: publisher.NewPublisher(notion, log),
		Token:     func() (string, error) { return secrets.GetToken(account) },
		Metrics:   m,
		Logger:    log,
	})
}

// NewWithDeps builds an App from explicit collaborators.
func NewWithDeps(cfg *config.Config, deps Deps) *App {
	if deps.Logger == nil {
		deps.Logger = logger.Nop()
	}

	if deps.Extractor == nil {
		deps.Extractor = extractor.NewClient(nil, nil, deps.Logger)
	}

	if deps.Token == nil {
		deps.Token = func() (string, error) { return "", secrets.ErrTokenNotFound }
	}

	if deps.Session == nil {
		deps.Session = session.New()
	}

	return &App{
		cfg:       cfg,
		extractor: deps.Extractor,
		publisher: deps.Publisher,
		token:     deps.Token,
		metrics:   deps.Metrics,
		logger:    deps.Logger,
		session:   deps.Session,
	}
}

// Session returns the session the App acts on.
func (a *App) Session() *session.Session {
	return a.session
}

// SubmitFile checks the upload and sends it for extraction.
func (a *App) SubmitFile(ctx context.Context, filename string, content []byte) (Snapshot, error) {
	if !a.cfg.IsAllowedExtension(filepath.Ext(filename)) {
		return a.fail(extractor.PathFile, fmt.Errorf("file processing failed: %w: %s", ErrUnsupportedFileType, filepath.Ext(filename)))
	}

	if int64(len(content)) > a.cfg.Upload.MaxFileBytes {
		return a.fail(extractor.PathFile, fmt.Errorf("file processing failed: %w (%d > %d bytes)",
			ErrFileTooLarge, len(content), a.cfg.Upload.MaxFileBytes))
	}

	return a.submit(extractor.PathFile, func() (models.Result, error) {
		return a.extractor.ProcessFile(ctx, content, filename, a.cfg.Extraction.FileEndpoint)
	})
}

// SubmitText sends pasted posting text for extraction.
func (a *App) SubmitText(ctx context.Context, text string) (Snapshot, error) {
	return a.submit(extractor.PathText, func() (models.Result, error) {
		return a.extractor.ProcessText(ctx, text, a.cfg.Extraction.TextEndpoint)
	})
}

// SubmitURL sends a posting URL for extraction.
func (a *App) SubmitURL(ctx context.Context, rawURL string) (Snapshot, error) {
	return a.submit(extractor.PathURL, func() (models.Result, error) {
		return a.extractor.ProcessURL(ctx, rawURL, a.cfg.Extraction.TextEndpoint)
	})
}

func (a *App) submit(path string, process func() (models.Result, error)) (Snapshot, error) {
	start := time.Now()

	result, err := process()
	if err != nil {
		a.metrics.ObserveInput(path, metrics.OutcomeError, time.Since(start))
		return a.fail(path, err)
	}

	outcome := metrics.OutcomeText
	if result.IsStructured() {
		outcome = metrics.OutcomeStructured
	}

	a.metrics.ObserveInput(path, outcome, time.Since(start))
	a.session.Load(result)

	a.logger.Info("Job posting loaded for review", "path", path, "outcome", outcome)

	return a.Snapshot(), nil
}

// Edit applies operator edits to the record under review. Fields are
// applied in the given order; the first failure stops the batch. A blank
// field name rejects the whole batch before anything is applied.
func (a *App) Edit(edits ...FieldEdit) (Snapshot, error) {
	for _, e := range edits {
		if strings.TrimSpace(e.Name) == "" {
			return a.Snapshot(), ErrEmptyFieldName
		}
	}

	for _, e := range edits {
		if err := a.session.Edit(e.Name, e.Value); err != nil {
			return a.Snapshot(), err
		}
	}

	return a.Snapshot(), nil
}

// Publish sends the reviewed record to the destination. A failed publish
// keeps the record under review so the operator can fix it and retry.
func (a *App) Publish(ctx context.Context) (Snapshot, error) {
	record, err := a.session.Approve()
	if err != nil {
		return a.Snapshot(), err
	}

	if a.publisher == nil {
		return a.publishFailed(&publisher.PublishError{Reason: "publishing is not configured"})
	}

	credential, err := a.token()
	if err != nil {
		return a.publishFailed(&publisher.PublishError{Reason: "credential unavailable", Err: err})
	}

	url, err := a.publisher.Publish(ctx, record, a.cfg.Publish.DatabaseID, credential)
	if err != nil {
		return a.publishFailed(err)
	}

	if err := a.session.MarkPublished(url); err != nil {
		return a.Snapshot(), err
	}

	a.metrics.ObservePublish(metrics.OutcomeSuccess)
	a.logger.Info("Job posting published", "url", url)

	return a.Snapshot(), nil
}

func (a *App) publishFailed(err error) (Snapshot, error) {
	a.metrics.ObservePublish(metrics.OutcomeError)
	a.logger.Warn("Publish failed", "error", err)

	snap := a.Snapshot()
	snap.Error = err.Error()

	return snap, err
}

// Reset discards the current review.
func (a *App) Reset() Snapshot {
	a.session.Reset()
	return a.Snapshot()
}

// fail drops the session back to Idle and reports err.
func (a *App) fail(path string, err error) (Snapshot, error) {
	a.session.Fail(err)

	if errors.Is(err, extractor.ErrInvalidInput) {
		a.logger.Warn("Operator input rejected", "path", path, "error", err)
	} else {
		a.logger.Error("Operator action failed", "path", path, "error", err)
	}

	return a.Snapshot(), err
}
