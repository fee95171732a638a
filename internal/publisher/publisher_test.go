package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/Startup-Mindset/job-posting/internal/logger"
	"github.com/Startup-Mindset/job-posting/internal/models"
)

var ErrWorkspaceDown = errors.New("workspace down")

// MockClient implements the Client interface for testing.
type MockClient struct {
	CreatePageFunc func(ctx context.Context, credential string, page *PageRequest) (*Page, error)
	Calls          int
}

func (m *MockClient) CreatePage(ctx context.Context, credential string, page *PageRequest) (*Page, error) {
	m.Calls++
	if m.CreatePageFunc != nil {
		return m.CreatePageFunc(ctx, credential, page)
	}

	return &Page{Object: "page", ID: "page-1", URL: "https://www.notion.so/page-1"}, nil
}

func completeRecord() *models.JobRecord {
	rec := models.NewJobRecord()
	rec.Set(models.FieldJobTitle, models.String("Backend Engineer"))
	rec.Set(models.FieldCompany, models.String("Acme"))
	rec.Set(models.FieldApplyURL, models.String("https://acme.com/apply"))
	rec.Set(models.FieldDescription, models.String("Build APIs"))
	rec.Set(models.FieldLocation, models.String("Bogotá"))
	rec.Set(models.FieldRemote, models.String("Yes"))

	return rec
}

func TestPublisher_Publish(t *testing.T) {
	var (
		gotCredential string
		gotPage       *PageRequest
	)

	mock := &MockClient{
		CreatePageFunc: func(_ context.Context, credential string, page *PageRequest) (*Page, error) {
			gotCredential = credential
			gotPage = page

			return &Page{ID: "abc", URL: "https://www.notion.so/abc"}, nil
		},
	}

	pub := NewPublisherWithClient(mock, logger.NewLogger("error"))

	url, err := pub.Publish(context.Background(), completeRecord(), "db-123", "secret-token")
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	if url != "https://www.notion.so/abc" {
		t.Errorf("url = %q", url)
	}

	if gotCredential != "secret-token" {
		t.Errorf("credential = %q", gotCredential)
	}

	if gotPage.Parent.DatabaseID != "db-123" {
		t.Errorf("DatabaseID = %q", gotPage.Parent.DatabaseID)
	}

	if _, ok := gotPage.Properties[PropOriginalFile]; ok {
		t.Error("Original file should be omitted when file_Url is absent")
	}
}

func TestPublisher_Publish_MissingFieldMakesNoCall(t *testing.T) {
	for _, missing := range RequiredFields {
		t.Run(missing, func(t *testing.T) {
			rec := models.NewJobRecord()

			full := completeRecord()
			for _, key := range full.Keys() {
				if key == missing {
					continue
				}

				v, _ := full.Get(key)
				rec.Set(key, v)
			}

			mock := &MockClient{}
			pub := NewPublisherWithClient(mock, logger.NewLogger("error"))

			_, err := pub.Publish(context.Background(), rec, "db-123", "token")

			var pubErr *PublishError
			if !errors.As(err, &pubErr) {
				t.Fatalf("error = %v, want *PublishError", err)
			}

			if pubErr.Field != missing || !strings.Contains(err.Error(), missing) {
				t.Errorf("error %q does not name %q", err.Error(), missing)
			}

			if mock.Calls != 0 {
				t.Errorf("client called %d times, want 0", mock.Calls)
			}
		})
	}
}

func TestPublisher_Publish_ClientError(t *testing.T) {
	mock := &MockClient{
		CreatePageFunc: func(context.Context, string, *PageRequest) (*Page, error) {
			return nil, ErrWorkspaceDown
		},
	}

	pub := NewPublisherWithClient(mock, logger.NewLogger("error"))

	_, err := pub.Publish(context.Background(), completeRecord(), "db-123", "token")
	if !errors.Is(err, ErrPublish) {
		t.Errorf("error = %v, want ErrPublish", err)
	}

	if !errors.Is(err, ErrWorkspaceDown) {
		t.Errorf("error = %v should wrap the client error", err)
	}
}

func TestPublisher_Publish_MissingConfiguration(t *testing.T) {
	mock := &MockClient{}
	pub := NewPublisherWithClient(mock, logger.NewLogger("error"))

	if _, err := pub.Publish(context.Background(), completeRecord(), "", "token"); !errors.Is(err, ErrPublish) {
		t.Errorf("empty destination: error = %v, want ErrPublish", err)
	}

	if _, err := pub.Publish(context.Background(), completeRecord(), "db", ""); !errors.Is(err, ErrPublish) {
		t.Errorf("empty credential: error = %v, want ErrPublish", err)
	}

	if _, err := pub.Publish(context.Background(), nil, "db", "token"); !errors.Is(err, ErrPublish) {
		t.Errorf("nil record: error = %v, want ErrPublish", err)
	}

	if mock.Calls != 0 {
		t.Errorf("client called %d times, want 0", mock.Calls)
	}
}

func TestBuildPage_Mapping(t *testing.T) {
	rec := completeRecord()
	rec.Set(models.FieldFileURL, models.String("https://files.example.com/posting.pdf"))
	rec.Set("Skills", models.String("['Go']"))

	page, err := BuildPage(rec, "db-1")
	if err != nil {
		t.Fatalf("BuildPage failed: %v", err)
	}

	data, err := json.Marshal(page)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got struct {
		Parent     map[string]string          `json:"parent"`
		Properties map[string]json.RawMessage `json:"properties"`
	}

	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if got.Parent["database_id"] != "db-1" {
		t.Errorf("parent = %v", got.Parent)
	}

	expected := map[string]string{
		PropRole:         `{"title":[{"text":{"content":"Backend Engineer"},"type":"text"}]}`,
		PropStartup:      `{"rich_text":[{"text":{"content":"Acme"},"type":"text"}]}`,
		PropApplyURL:     `{"url":"https://acme.com/apply"}`,
		PropSummary:      `{"rich_text":[{"text":{"content":"Build APIs"},"type":"text"}]}`,
		PropLocation:     `{"rich_text":[{"text":{"content":"Bogotá"},"type":"text"}]}`,
		PropRemote:       `{"select":{"name":"Yes"}}`,
		PropOriginalFile: `{"url":"https://files.example.com/posting.pdf"}`,
	}

	if len(got.Properties) != len(expected) {
		t.Errorf("got %d properties, want %d", len(got.Properties), len(expected))
	}

	for prop, want := range expected {
		if string(got.Properties[prop]) != want {
			t.Errorf("%s = %s, want %s", prop, got.Properties[prop], want)
		}
	}
}

func TestBuildPage_EmptyFileURLOmitted(t *testing.T) {
	rec := completeRecord()
	rec.Set(models.FieldFileURL, models.String(""))

	page, err := BuildPage(rec, "db-1")
	if err != nil {
		t.Fatalf("BuildPage failed: %v", err)
	}

	if _, ok := page.Properties[PropOriginalFile]; ok {
		t.Error("Original file should be omitted for empty file_Url")
	}
}

func TestBuildPage_EmptyAndNullValues(t *testing.T) {
	rec := completeRecord()
	rec.Set(models.FieldApplyURL, models.String(""))
	rec.Set(models.FieldRemote, models.Null())
	rec.Set(models.FieldLocation, models.String(""))

	page, err := BuildPage(rec, "db-1")
	if err != nil {
		t.Fatalf("BuildPage failed: %v", err)
	}

	if u := page.Properties[PropApplyURL].(URLProperty); u.URL != nil {
		t.Errorf("empty apply URL should clear the column, got %q", *u.URL)
	}

	if s := page.Properties[PropRemote].(SelectProperty); s.Select != nil {
		t.Errorf("null Remote should clear the select, got %+v", s.Select)
	}

	if rt := page.Properties[PropLocation].(RichTextProperty); len(rt.RichText) != 0 {
		t.Errorf("empty Location should have no segments, got %d", len(rt.RichText))
	}
}

func TestRichText_SplitsLongText(t *testing.T) {
	long := strings.Repeat("á", maxTextLength*2+5)

	segments := richText(long)
	if len(segments) != 3 {
		t.Fatalf("got %d segments, want 3", len(segments))
	}

	if len([]rune(segments[2].Text.Content)) != 5 {
		t.Errorf("last segment has %d runes, want 5", len([]rune(segments[2].Text.Content)))
	}
}

func TestSelectOption_StripsCommas(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: " Hybrid, 3 days ", want: "Hybrid 3 days"},
		{input: "Remote,EU", want: "Remote EU"},
		{input: "On-site ,\n Berlin", want: "On-site Berlin"},
		{input: "Yes", want: "Yes"},
	}

	for _, tt := range tests {
		opt := selectOption(tt.input)
		if opt == nil || opt.Name != tt.want {
			t.Errorf("selectOption(%q) = %+v, want %q", tt.input, opt, tt.want)
		}
	}

	if opt := selectOption(" , "); opt != nil {
		t.Errorf("selectOption of commas only = %+v, want nil", opt)
	}
}
