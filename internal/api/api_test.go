package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/starford/vaultlink/internal/graph"
	"github.com/starford/vaultlink/internal/noteservice"
	"github.com/starford/vaultlink/internal/template"
	"github.com/starford/vaultlink/internal/testutil"
)

// testEnv sets up a temp vault and router. A non-empty authToken enables token mode.
func testEnv(t *testing.T, authToken string, files map[string]string) (http.Handler, string) {
	t.Helper()
	return testEnvWithSSE(t, authToken, nil, files)
}

func testEnvWithSSE(t *testing.T, authToken string, sseHandler http.Handler, files map[string]string) (http.Handler, string) {
	t.Helper()
	dir, store := testutil.TestVault(t, files)
	engine := graph.NewEngine(store)
	notes := noteservice.NewService(store, template.NewEngine(store, "TEMPLATE"))
	return NewRouter(engine, notes, authToken != "", authToken, sseHandler), dir
}

func do(t *testing.T, h http.Handler, method, target string, body any, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return v
}

func TestCreateAndGetNote(t *testing.T) {
	router, _ := testEnv(t, "", map[string]string{"TEMPLATE/basic.md": "# {{title}}"})

	w := do(t, router, http.MethodPost, "/notes", map[string]any{
		"templateName": "basic",
		"variables":    map[string]string{"title": "Hello"},
		"outputPath":   "hello.md",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}

	w = do(t, router, http.MethodGet, "/notes/hello.md", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	note := decode[Note](t, w)
	if note.Path != "hello.md" || note.Content != "# Hello" {
		t.Errorf("note = %+v", note)
	}
	if etag := w.Header().Get("ETag"); etag != `"`+note.Checksum+`"` {
		t.Errorf("ETag = %q", etag)
	}
}

func TestCreateNote_Errors(t *testing.T) {
	router, _ := testEnv(t, "", map[string]string{
		"TEMPLATE/basic.md": "x",
		"taken.md":          "y",
	})
	cases := []struct {
		body any
		want int
	}{
		{map[string]any{"templateName": "basic", "outputPath": "taken.md"}, http.StatusConflict},
		{map[string]any{"templateName": "nope", "outputPath": "new.md"}, http.StatusNotFound},
		{map[string]any{"templateName": "basic"}, http.StatusBadRequest},
		{map[string]any{"templateName": "basic", "outputPath": "../out.md"}, http.StatusBadRequest},
		{"not an object", http.StatusBadRequest},
	}
	for _, c := range cases {
		if w := do(t, router, http.MethodPost, "/notes", c.body); w.Code != c.want {
			t.Errorf("%v: status = %d, want %d (%s)", c.body, w.Code, c.want, w.Body.String())
		}
	}
}

func TestUpdateWithOptimisticLocking(t *testing.T) {
	router, dir := testEnv(t, "", map[string]string{"lock.md": "v1"})

	w := do(t, router, http.MethodGet, "/notes/lock.md", nil)
	etag := w.Header().Get("ETag")

	w = do(t, router, http.MethodPut, "/notes/lock.md", map[string]string{"content": "v2"}, "If-Match", etag)
	if w.Code != http.StatusOK {
		t.Fatalf("update with correct checksum = %d, body = %s", w.Code, w.Body.String())
	}

	w = do(t, router, http.MethodPut, "/notes/lock.md", map[string]string{"content": "v3"}, "If-Match", etag)
	if w.Code != http.StatusConflict {
		t.Errorf("update with stale checksum = %d, want 409", w.Code)
	}
	if got := testutil.ReadFile(t, dir, "lock.md"); got != "v2" {
		t.Errorf("file = %q", got)
	}
}

func TestUpdateWithoutIfMatch(t *testing.T) {
	router, dir := testEnv(t, "", nil)

	w := do(t, router, http.MethodPut, "/notes/sub%2Fnew.md", map[string]string{"content": "fresh"})
	if w.Code != http.StatusOK {
		t.Fatalf("update = %d, body = %s", w.Code, w.Body.String())
	}
	if got := testutil.ReadFile(t, dir, "sub/new.md"); got != "fresh" {
		t.Errorf("file = %q", got)
	}
}

func TestGetNote_Errors(t *testing.T) {
	router, _ := testEnv(t, "", nil)

	if w := do(t, router, http.MethodGet, "/notes/nope.md", nil); w.Code != http.StatusNotFound {
		t.Errorf("missing note = %d, want 404", w.Code)
	}
	if w := do(t, router, http.MethodGet, "/notes/..%2F..%2Fetc%2Fpasswd", nil); w.Code != http.StatusBadRequest {
		t.Errorf("traversal = %d, want 400", w.Code)
	}
	if w := do(t, router, http.MethodPut, "/notes/ghost.md", map[string]string{"content": "x"}, "If-Match", "abc"); w.Code != http.StatusNotFound {
		t.Errorf("if-match on missing note = %d, want 404", w.Code)
	}
}

func TestTagsEndpoints(t *testing.T) {
	router, dir := testEnv(t, "", map[string]string{
		"a.md": "#proj",
		"b.md": "#projection",
	})

	w := do(t, router, http.MethodGet, "/tags", nil)
	tags := decode[TagsResponse](t, w)
	if len(tags.Tags) != 2 || tags.Tags[0] != "#proj" {
		t.Errorf("tags = %v", tags.Tags)
	}

	w = do(t, router, http.MethodPost, "/tags/rename", RenameTagRequest{OldTag: "proj", NewTag: "project"})
	if w.Code != http.StatusOK {
		t.Fatalf("rename = %d, body = %s", w.Code, w.Body.String())
	}
	res := decode[graph.RenameResult](t, w)
	if res.Count != 1 || res.ModifiedFiles[0] != "a.md" {
		t.Errorf("rename result = %+v", res)
	}
	if got := testutil.ReadFile(t, dir, "a.md"); got != "#project" {
		t.Errorf("a.md = %q", got)
	}

	if w := do(t, router, http.MethodPost, "/tags/rename", RenameTagRequest{OldTag: "x", NewTag: ""}); w.Code != http.StatusBadRequest {
		t.Errorf("empty new tag = %d, want 400", w.Code)
	}
}

func TestLinkEndpoints(t *testing.T) {
	router, dir := testEnv(t, "", map[string]string{
		"a.md": "See [[b]] and [[missing]]",
		"b.md": "plain",
		"c.md": "c",
	})

	w := do(t, router, http.MethodGet, "/links/broken", nil)
	broken := decode[graph.BrokenLinkReport](t, w)
	if broken.TotalCount != 1 || broken.BrokenLinks[0].TargetPath != "missing" {
		t.Errorf("broken = %+v", broken)
	}

	w = do(t, router, http.MethodGet, "/backlinks/b.md", nil)
	backlinks := decode[graph.BacklinkReport](t, w)
	if backlinks.Metrics.Popularity != 1 || backlinks.Metrics.Centrality != 1.0/3 {
		t.Errorf("metrics = %+v", backlinks.Metrics)
	}
	if w := do(t, router, http.MethodGet, "/backlinks/none.md", nil); w.Code != http.StatusNotFound {
		t.Errorf("missing backlink target = %d, want 404", w.Code)
	}

	w = do(t, router, http.MethodPost, "/links", map[string]any{
		"sourceNote": "c.md", "targetNote": "b.md", "insertPosition": 0,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("link = %d, body = %s", w.Code, w.Body.String())
	}
	if got := testutil.ReadFile(t, dir, "c.md"); got != "[[b|b]]\nc" {
		t.Errorf("c.md = %q", got)
	}
	if w := do(t, router, http.MethodPost, "/links", map[string]any{
		"sourceNote": "c.md", "targetNote": "b.md", "insertPosition": 9,
	}); w.Code != http.StatusOK {
		t.Errorf("duplicate link = %d, want 200 with warning", w.Code)
	}
	if w := do(t, router, http.MethodPost, "/links", map[string]any{
		"sourceNote": "a.md", "targetNote": "c.md", "insertPosition": 9,
	}); w.Code != http.StatusBadRequest {
		t.Errorf("out of range position = %d, want 400", w.Code)
	}
}

func TestCreateMOCEndpoint(t *testing.T) {
	router, dir := testEnv(t, "", map[string]string{"x/a.md": "a"})

	w := do(t, router, http.MethodPost, "/moc", MOCRequest{Title: "Map", TargetPath: "map.md"})
	if w.Code != http.StatusCreated {
		t.Fatalf("moc = %d, body = %s", w.Code, w.Body.String())
	}
	if res := decode[graph.MOCResult](t, w); res.Count != 1 {
		t.Errorf("result = %+v", res)
	}
	testutil.ReadFile(t, dir, "map.md")

	if w := do(t, router, http.MethodPost, "/moc", MOCRequest{Title: "Map"}); w.Code != http.StatusBadRequest {
		t.Errorf("missing target = %d, want 400", w.Code)
	}
}

func TestFilesAndTemplates(t *testing.T) {
	router, _ := testEnv(t, "", map[string]string{
		"TEMPLATE/daily.md": "{{date}}",
		"notes/daily-1.md":  "x",
	})

	w := do(t, router, http.MethodGet, "/files?pattern=daily", nil)
	files := decode[FilesResponse](t, w)
	if len(files.Entries) != 2 {
		t.Errorf("entries = %+v", files.Entries)
	}

	w = do(t, router, http.MethodGet, "/files?path=notes", nil)
	if files := decode[FilesResponse](t, w); len(files.Entries) != 1 || files.Entries[0].Path != "notes/daily-1.md" {
		t.Errorf("scoped entries = %+v", files.Entries)
	}

	w = do(t, router, http.MethodGet, "/templates", nil)
	if tpl := decode[TemplatesResponse](t, w); len(tpl.Templates) != 1 || tpl.Templates[0].Name != "daily" {
		t.Errorf("templates = %+v", tpl.Templates)
	}
}

func TestAuthMiddleware(t *testing.T) {
	router, _ := testEnv(t, "secret123", nil)

	cases := []struct {
		name   string
		header []string
		want   int
	}{
		{"valid", []string{"Authorization", "Bearer secret123"}, http.StatusOK},
		{"missing", nil, http.StatusUnauthorized},
		{"wrong", []string{"Authorization", "Bearer wrong"}, http.StatusUnauthorized},
		{"scheme", []string{"Authorization", "Basic secret123"}, http.StatusUnauthorized},
	}
	for _, c := range cases {
		if w := do(t, router, http.MethodGet, "/tags", nil, c.header...); w.Code != c.want {
			t.Errorf("%s: status = %d, want %d", c.name, w.Code, c.want)
		}
	}
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	router, _ := testEnv(t, "", nil)
	if w := do(t, router, http.MethodGet, "/tags", nil); w.Code != http.StatusOK {
		t.Errorf("no auth = %d, want 200", w.Code)
	}
}

// blockingSSE writes the stream headers and waits for the client to leave.
var blockingSSE = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.WriteHeader(http.StatusOK)
	<-r.Context().Done()
})

func TestSSEEvents_AuthProtected(t *testing.T) {
	router, _ := testEnvWithSSE(t, "secret", blockingSSE, nil)
	if w := do(t, router, http.MethodGet, "/events", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("SSE no auth = %d, want 401", w.Code)
	}
}

func TestSSEEvents_ValidToken(t *testing.T) {
	router, _ := testEnvWithSSE(t, "tok", blockingSSE, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	req.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("SSE with valid token = %d, want 200", w.Code)
	}
}
