package integration

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/zalando/go-keyring"

	"github.com/Startup-Mindset/job-posting/internal/api"
	"github.com/Startup-Mindset/job-posting/internal/app"
	"github.com/Startup-Mindset/job-posting/internal/config"
	"github.com/Startup-Mindset/job-posting/internal/logger"
	"github.com/Startup-Mindset/job-posting/internal/metrics"
	"github.com/Startup-Mindset/job-posting/internal/secrets"
	"github.com/Startup-Mindset/job-posting/internal/session"
)

func loadFixture(t *testing.T, name string) []byte {
	t.Helper()

	data, err := os.ReadFile(filepath.Join("..", "fixtures", name))
	if err != nil {
		t.Fatalf("Failed to read fixture %s: %v", name, err)
	}

	return data
}

// fakeBackends stands in for the extraction API and the workspace API.
type fakeBackends struct {
	extraction *httptest.Server
	workspace  *httptest.Server

	response []byte
	pages    []map[string]any
	requests []string
	status   int
	mu       sync.Mutex
}

func newFakeBackends(t *testing.T) *fakeBackends {
	t.Helper()

	fb := &fakeBackends{status: http.StatusOK}

	fb.extraction = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		fb.mu.Lock()
		defer fb.mu.Unlock()

		fb.requests = append(fb.requests, r.URL.Path+" "+string(body))
		w.WriteHeader(fb.status)
		w.Write(fb.response)
	}))
	t.Cleanup(fb.extraction.Close)

	fb.workspace = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var page map[string]any
		json.NewDecoder(r.Body).Decode(&page)

		fb.mu.Lock()
		fb.pages = append(fb.pages, page)
		fb.mu.Unlock()

		io.WriteString(w, `{"object":"page","id":"page-1","url":"https://www.notion.so/page-1"}`)
	}))
	t.Cleanup(fb.workspace.Close)

	return fb
}

func (fb *fakeBackends) respond(status int, body []byte) {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	fb.status = status
	fb.response = body
}

func newRouter(t *testing.T, fb *fakeBackends) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)
	keyring.MockInit()

	if err := secrets.SetToken("notion", "integration-token"); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.Extraction.FileEndpoint = fb.extraction.URL + "/file"
	cfg.Extraction.TextEndpoint = fb.extraction.URL + "/text"
	cfg.Publish.BaseURL = fb.workspace.URL
	cfg.Publish.DatabaseID = "db-integration"

	if err := cfg.Validate(); err != nil {
		t.Fatalf("config invalid: %v", err)
	}

	log := logger.Nop()
	m := metrics.New()
	srv := api.NewServer(app.New(cfg, log, m), m, log, api.Options{MaxUploadBytes: cfg.Upload.MaxFileBytes})

	return srv.Router()
}

func call(t *testing.T, h http.Handler, method, path, body string) (int, app.Snapshot, string) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var snap app.Snapshot
	json.Unmarshal(rec.Body.Bytes(), &snap)

	return rec.Code, snap, rec.Body.String()
}

func TestFlow_URLEditPublish(t *testing.T) {
	fb := newFakeBackends(t)
	fb.respond(http.StatusOK, loadFixture(t, "value_string.json"))
	h := newRouter(t, fb)

	code, snap, body := call(t, h, http.MethodPost, "/api/v1/jobs/url", `{"url":"https://northwind.example/careers/42"}`)
	if code != http.StatusOK {
		t.Fatalf("submit status = %d: %s", code, body)
	}

	if len(fb.requests) != 1 || !strings.Contains(fb.requests[0], `"websiteUrl":"https://northwind.example/careers/42"`) {
		t.Fatalf("extraction requests = %v", fb.requests)
	}

	fields := map[string]string{}
	for _, f := range snap.Fields {
		fields[f.Name] = f.Value
	}

	if fields["Skills"] != "['Go', 'PostgreSQL']" {
		t.Errorf("Skills = %s", fields["Skills"])
	}

	if fields["Salary"] != "{'min': 70000, 'currency': 'EUR'}" {
		t.Errorf("Salary = %s", fields["Salary"])
	}

	code, _, body = call(t, h, http.MethodPatch, "/api/v1/jobs/current", `{"fields":{"Location":"Porto, Portugal"}}`)
	if code != http.StatusOK {
		t.Fatalf("edit status = %d: %s", code, body)
	}

	code, snap, body = call(t, h, http.MethodPost, "/api/v1/jobs/current/publish", "")
	if code != http.StatusOK {
		t.Fatalf("publish status = %d: %s", code, body)
	}

	if snap.State != session.StatePublished || snap.PublishedURL != "https://www.notion.so/page-1" {
		t.Errorf("snapshot = %+v", snap)
	}

	if len(fb.pages) != 1 {
		t.Fatalf("pages created = %d, want 1", len(fb.pages))
	}

	props, _ := fb.pages[0]["properties"].(map[string]any)
	if _, ok := props["Original file"]; ok {
		t.Error("empty file_Url must not produce an Original file property")
	}

	location, _ := json.Marshal(props["Location"])
	if !strings.Contains(string(location), "Porto, Portugal") {
		t.Errorf("Location property = %s, want edited value", location)
	}

	remote, _ := json.Marshal(props["Remote"])
	if !strings.Contains(string(remote), `"Hybrid 2 days"`) {
		t.Errorf("Remote property = %s, want commas stripped", remote)
	}
}

func TestFlow_TextObjectValueWithFile(t *testing.T) {
	fb := newFakeBackends(t)
	fb.respond(http.StatusOK, loadFixture(t, "value_object.json"))
	h := newRouter(t, fb)

	if code, _, body := call(t, h, http.MethodPost, "/api/v1/jobs/text", `{"text":"Data Analyst at Contoso"}`); code != http.StatusOK {
		t.Fatalf("submit status = %d: %s", code, body)
	}

	if code, _, body := call(t, h, http.MethodPost, "/api/v1/jobs/current/publish", ""); code != http.StatusOK {
		t.Fatalf("publish status = %d: %s", code, body)
	}

	props, _ := fb.pages[0]["properties"].(map[string]any)

	original, _ := json.Marshal(props["Original file"])
	if !strings.Contains(string(original), "https://files.example/posting.pdf") {
		t.Errorf("Original file = %s", original)
	}
}

func TestFlow_BareObjectMissingFields(t *testing.T) {
	fb := newFakeBackends(t)
	fb.respond(http.StatusOK, loadFixture(t, "bare_object.json"))
	h := newRouter(t, fb)

	code, snap, body := call(t, h, http.MethodPost, "/api/v1/jobs/text", `{"text":"Designer"}`)
	if code != http.StatusOK {
		t.Fatalf("submit status = %d: %s", code, body)
	}

	if len(snap.Fields) != 3 || snap.Fields[2].Value != "True" {
		t.Errorf("fields = %+v", snap.Fields)
	}

	code, _, body = call(t, h, http.MethodPost, "/api/v1/jobs/current/publish", "")
	if code != http.StatusUnprocessableEntity || !strings.Contains(body, "missing_field") {
		t.Fatalf("publish status = %d: %s", code, body)
	}

	if len(fb.pages) != 0 {
		t.Errorf("pages created = %d, want 0", len(fb.pages))
	}
}

func TestFlow_PlainTextAndErrors(t *testing.T) {
	fb := newFakeBackends(t)
	fb.respond(http.StatusOK, loadFixture(t, "not_a_posting.txt"))
	h := newRouter(t, fb)

	code, snap, _ := call(t, h, http.MethodPost, "/api/v1/jobs/text", `{"text":"hello"}`)
	if code != http.StatusOK || !strings.Contains(snap.Text, "does not appear to contain") {
		t.Errorf("plain text result = %d %+v", code, snap)
	}

	fb.respond(http.StatusInternalServerError, []byte(`{"detail":"many"}`))

	code, _, body := call(t, h, http.MethodPost, "/api/v1/jobs/url", `{"url":"https://jobs.example.com/search"}`)
	if code != http.StatusUnprocessableEntity || !strings.Contains(body, "multiple job postings detected") {
		t.Errorf("multiple postings = %d: %s", code, body)
	}

	fb.respond(http.StatusNotFound, nil)

	code, _, body = call(t, h, http.MethodPost, "/api/v1/jobs/text", `{"text":"x"}`)
	if code != http.StatusBadGateway || !strings.Contains(body, "API error: 404") {
		t.Errorf("remote error = %d: %s", code, body)
	}

	before := len(fb.requests)

	code, _, _ = call(t, h, http.MethodPost, "/api/v1/jobs/url", `{"url":"ftp://example.com"}`)
	if code != http.StatusBadRequest {
		t.Errorf("invalid URL status = %d, want 400", code)
	}

	if len(fb.requests) != before {
		t.Error("invalid URL must not reach the extraction API")
	}

	_, snap, _ = call(t, h, http.MethodGet, "/api/v1/jobs/current", "")
	if snap.State != session.StateIdle {
		t.Errorf("state after failures = %s, want idle", snap.State)
	}
}
