package publisher

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Startup-Mindset/job-posting/internal/logger"
	"github.com/Startup-Mindset/job-posting/internal/models"
	"github.com/Startup-Mindset/job-posting/pkg/utils"
)

// maxTextLength is the workspace limit for one rich text segment.
const maxTextLength = 2000

// ErrPublish matches every *PublishError.
var ErrPublish = errors.New("publish failed")

// PublishError reports why a record could not be published.
type PublishError struct {
	Err    error
	Reason string
	// Field is set when a required record key is missing.
	Field string
}

func (e *PublishError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", ErrPublish, e.Reason, e.Err)
	}

	return fmt.Sprintf("%s: %s", ErrPublish, e.Reason)
}

// Is lets errors.Is(err, ErrPublish) match.
func (e *PublishError) Is(target error) bool {
	return target == ErrPublish
}

func (e *PublishError) Unwrap() error {
	return e.Err
}

// RequiredFields must be present in a record before it is published.
var RequiredFields = []string{
	models.FieldJobTitle,
	models.FieldCompany,
	models.FieldApplyURL,
	models.FieldDescription,
	models.FieldLocation,
	models.FieldRemote,
}

// Publisher creates workspace pages from approved records.
type Publisher struct {
	client Client
	logger *logger.Logger
}

// NewPublisher creates a publisher backed by the REST client.
func NewPublisher(client *NotionClient, log *logger.Logger) *Publisher {
	return NewPublisherWithClient(client, log)
}

// NewPublisherWithClient creates a publisher with a custom client (useful for testing).
func NewPublisherWithClient(client Client, log *logger.Logger) *Publisher {
	if log == nil {
		log = logger.Nop()
	}

	return &Publisher{
		client: client,
		logger: log,
	}
}

// Publish maps record onto the destination schema, creates the page in the
// database destinationID, and returns the page URL. Missing required keys
// fail before any request is made.
func (p *Publisher) Publish(ctx context.Context, record *models.JobRecord, destinationID, credential string) (string, error) {
	page, err := BuildPage(record, destinationID)
	if err != nil {
		return "", err
	}

	if credential == "" {
		return "", &PublishError{Reason: "workspace credential is not configured"}
	}

	created, err := p.client.CreatePage(ctx, credential, page)
	if err != nil {
		p.logger.Error("Publish failed", "error", err)
		return "", &PublishError{Reason: "create page", Err: err}
	}

	if created == nil || created.URL == "" {
		return "", &PublishError{Reason: "create page", Err: ErrNoPageURL}
	}

	p.logger.Info("Published job posting", "page_id", created.ID, "url", created.URL)

	return created.URL, nil
}

// BuildPage maps a record onto the destination properties.
func BuildPage(record *models.JobRecord, destinationID string) (*PageRequest, error) {
	if record == nil {
		return nil, &PublishError{Reason: "no record to publish"}
	}

	for _, key := range RequiredFields {
		if _, ok := record.Get(key); !ok {
			return nil, &PublishError{Reason: fmt.Sprintf("missing required field %q", key), Field: key}
		}
	}

	if destinationID == "" {
		return nil, &PublishError{Reason: "destination database is not configured"}
	}

	field := func(key string) string {
		v, _ := record.Get(key)
		return cellText(v)
	}

	props := map[string]any{
		PropRole:     TitleProperty{Title: richText(field(models.FieldJobTitle))},
		PropStartup:  RichTextProperty{RichText: richText(field(models.FieldCompany))},
		PropApplyURL: URLProperty{URL: optionalString(field(models.FieldApplyURL))},
		PropSummary:  RichTextProperty{RichText: richText(field(models.FieldDescription))},
		PropLocation: RichTextProperty{RichText: richText(field(models.FieldLocation))},
		PropRemote:   SelectProperty{Select: selectOption(field(models.FieldRemote))},
	}

	if fileURL, ok := record.Get(models.FieldFileURL); ok {
		if text := cellText(fileURL); text != "" {
			props[PropOriginalFile] = URLProperty{URL: &text}
		}
	}

	return &PageRequest{
		Parent:     Parent{DatabaseID: destinationID},
		Properties: props,
	}, nil
}

// cellText is the text sent for a value; null becomes empty.
func cellText(v models.Value) string {
	if v.Kind() == models.KindNull {
		return ""
	}

	return v.String()
}

// richText splits s into segments within the per-segment limit.
func richText(s string) []RichText {
	segments := []RichText{}
	runes := []rune(s)

	for len(runes) > 0 {
		n := min(len(runes), maxTextLength)
		segments = append(segments, RichText{Type: "text", Text: Text{Content: string(runes[:n])}})
		runes = runes[n:]
	}

	return segments
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}

// selectOption cleans the name; option names cannot contain commas.
func selectOption(name string) *SelectOption {
	name = utils.NewStringHelper().NormalizeWhitespace(strings.ReplaceAll(name, ",", " "))
	if name == "" {
		return nil
	}

	return &SelectOption{Name: name}
}
