package httpapp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/inkwell-news/inkwell/internal/config"
	"github.com/inkwell-news/inkwell/internal/identity"
	"github.com/inkwell-news/inkwell/internal/model"
	"github.com/inkwell-news/inkwell/internal/store/sqlite"
)

var testVerifier = identity.Static{
	"alice-token":   {Subject: "alice", Email: "alice@example.com"},
	"bob-token":     {Subject: "bob", Email: "bob@example.com"},
	"noemail-token": {Subject: "carol"},
}

func newTestServer(t *testing.T) (*Server, *sqlite.Store) {
	t.Helper()
	st, err := sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	cfg := config.Config{AllowOrigin: "http://localhost:3000"}
	return NewServer(st, testVerifier, cfg, zap.NewNop().Sugar()), st
}

func seedArticle(t *testing.T, st *sqlite.Store) int64 {
	t.Helper()
	article := model.Article{
		Title:     "Learn React",
		Content:   "React is one of the most popular JavaScript libraries.",
		CreatedAt: time.Now(),
	}
	id, err := st.CreateArticle(context.Background(), &article)
	if err != nil {
		t.Fatalf("create article: %v", err)
	}
	return id
}

func doRequest(t *testing.T, s *Server, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, req)
	return rec
}

func decodeArticle(t *testing.T, rec *httptest.ResponseRecorder) ArticleResponse {
	t.Helper()
	var resp ArticleResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode article response: %v (body %q)", err, rec.Body.String())
	}
	return resp
}

func assertJSONBody(t *testing.T, rec *httptest.ResponseRecorder, status int, want string) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("expected status %d, got %d (body %q)", status, rec.Code, rec.Body.String())
	}
	if got := strings.TrimSpace(rec.Body.String()); got != want {
		t.Fatalf("expected body %q, got %q", want, got)
	}
}

func TestGetArticleAnonymous(t *testing.T) {
	s, st := newTestServer(t)
	id := seedArticle(t, st)

	rec := doRequest(t, s, http.MethodGet, fmt.Sprintf("/api/articles/%d", id), "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body %q)", rec.Code, rec.Body.String())
	}
	resp := decodeArticle(t, rec)
	if resp.Title != "Learn React" {
		t.Fatalf("unexpected title: %s", resp.Title)
	}
	if resp.CanUpvote {
		t.Fatal("anonymous reader must never see canUpvote true")
	}
	if resp.UpvoteIDs == nil || resp.Comments == nil {
		t.Fatalf("expected empty arrays, got upvoteIds=%v comments=%v", resp.UpvoteIDs, resp.Comments)
	}
}

func TestGetArticleNotFound(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/articles/9999", "", "")
	assertJSONBody(t, rec, http.StatusNotFound, `{"message":"Article not found"}`)
}

func TestGetArticleNonNumericID(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/articles/learn-react", "", "")
	assertJSONBody(t, rec, http.StatusNotFound, `{"message":"Article not found"}`)
}

func TestGetArticleInvalidToken(t *testing.T) {
	s, st := newTestServer(t)
	id := seedArticle(t, st)

	// An invalid token is rejected even on the public route, before the
	// handler runs.
	rec := doRequest(t, s, http.MethodGet, fmt.Sprintf("/api/articles/%d", id), "forged-token", "")
	assertJSONBody(t, rec, http.StatusForbidden, `{"error":"Unauthorized"}`)
}

func TestGetArticleMalformedAuthorization(t *testing.T) {
	s, st := newTestServer(t)
	id := seedArticle(t, st)

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/articles/%d", id), nil)
	req.Header.Set("Authorization", "alice-token") // missing Bearer prefix
	rec := httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, req)
	assertJSONBody(t, rec, http.StatusForbidden, `{"error":"Unauthorized"}`)
}

func TestUpvoteRequiresIdentity(t *testing.T) {
	s, st := newTestServer(t)
	id := seedArticle(t, st)

	rec := doRequest(t, s, http.MethodPut, fmt.Sprintf("/api/articles/%d/upvote", id), "", "")
	assertJSONBody(t, rec, http.StatusForbidden, `{"error":"Unauthorized"}`)

	article, err := st.GetArticle(context.Background(), id)
	if err != nil {
		t.Fatalf("get article: %v", err)
	}
	if article.Upvote != 0 || len(article.UpvoteIDs) != 0 {
		t.Fatalf("rejected upvote changed state: %+v", article)
	}
}

func TestUpvoteFlow(t *testing.T) {
	s, st := newTestServer(t)
	id := seedArticle(t, st)
	path := fmt.Sprintf("/api/articles/%d/upvote", id)

	rec := doRequest(t, s, http.MethodPut, path, "alice-token", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body %q)", rec.Code, rec.Body.String())
	}
	resp := decodeArticle(t, rec)
	if resp.Upvote != 1 {
		t.Fatalf("expected upvote 1, got %d", resp.Upvote)
	}
	if len(resp.UpvoteIDs) != 1 || resp.UpvoteIDs[0] != "alice" {
		t.Fatalf("expected upvoteIds [alice], got %v", resp.UpvoteIDs)
	}
	if resp.CanUpvote {
		t.Fatal("voter must see canUpvote false after voting")
	}

	// Repeats are rejected and leave the count alone.
	for i := 0; i < 2; i++ {
		rec = doRequest(t, s, http.MethodPut, path, "alice-token", "")
		assertJSONBody(t, rec, http.StatusForbidden, `{"error":"You have already upvoted this article"}`)
	}

	rec = doRequest(t, s, http.MethodGet, fmt.Sprintf("/api/articles/%d", id), "alice-token", "")
	resp = decodeArticle(t, rec)
	if resp.Upvote != 1 || resp.CanUpvote {
		t.Fatalf("duplicate upvotes changed state: upvote=%d canUpvote=%v", resp.Upvote, resp.CanUpvote)
	}

	// A different reader still sees canUpvote true.
	rec = doRequest(t, s, http.MethodGet, fmt.Sprintf("/api/articles/%d", id), "bob-token", "")
	resp = decodeArticle(t, rec)
	if !resp.CanUpvote {
		t.Fatal("bob has not voted yet, expected canUpvote true")
	}
}

func TestUpvoteMissingArticle(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodPut, "/api/articles/9999/upvote", "alice-token", "")
	assertJSONBody(t, rec, http.StatusNotFound, `{"message":"Article not found"}`)
}

func TestCommentFlow(t *testing.T) {
	s, st := newTestServer(t)
	id := seedArticle(t, st)
	path := fmt.Sprintf("/api/articles/%d/comment", id)

	rec := doRequest(t, s, http.MethodPost, path, "alice-token", `{"text":"hello"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body %q)", rec.Code, rec.Body.String())
	}
	resp := decodeArticle(t, rec)
	if len(resp.Comments) != 1 || resp.Comments[0] != " hello - alice@example.com" {
		t.Fatalf("unexpected comments: %q", resp.Comments)
	}

	rec = doRequest(t, s, http.MethodPost, path, "bob-token", `{"text":"nice post"}`)
	resp = decodeArticle(t, rec)
	if len(resp.Comments) != 2 || resp.Comments[1] != " nice post - bob@example.com" {
		t.Fatalf("unexpected comments: %q", resp.Comments)
	}
}

func TestCommentRequiresIdentity(t *testing.T) {
	s, st := newTestServer(t)
	id := seedArticle(t, st)

	rec := doRequest(t, s, http.MethodPost, fmt.Sprintf("/api/articles/%d/comment", id), "", `{"text":"hi"}`)
	assertJSONBody(t, rec, http.StatusForbidden, `{"error":"User not authenticated"}`)
}

func TestCommentRequiresEmail(t *testing.T) {
	s, st := newTestServer(t)
	id := seedArticle(t, st)

	rec := doRequest(t, s, http.MethodPost, fmt.Sprintf("/api/articles/%d/comment", id), "noemail-token", `{"text":"hi"}`)
	assertJSONBody(t, rec, http.StatusForbidden, `{"error":"User not authenticated"}`)
}

func TestCommentMissingArticle(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/articles/9999/comment", "alice-token", `{"text":"hi"}`)
	assertJSONBody(t, rec, http.StatusNotFound, `{"message":"Article not found"}`)
}

func TestCommentBadJSON(t *testing.T) {
	s, st := newTestServer(t)
	id := seedArticle(t, st)

	rec := doRequest(t, s, http.MethodPost, fmt.Sprintf("/api/articles/%d/comment", id), "alice-token", `{"text":`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d (body %q)", rec.Code, rec.Body.String())
	}
}

func TestPreflight(t *testing.T) {
	s, st := newTestServer(t)
	id := seedArticle(t, st)

	req := httptest.NewRequest(http.MethodOptions, fmt.Sprintf("/api/articles/%d/upvote", id), nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 preflight, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("unexpected allow-origin: %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Headers"); !strings.Contains(got, "authtoken") {
		t.Fatalf("expected authtoken in allow-headers, got %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Methods"); !strings.Contains(got, "PUT") {
		t.Fatalf("expected PUT in allow-methods, got %q", got)
	}
}

func TestStaticShell(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for index, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "<html") {
		t.Fatalf("expected html shell, got %q", rec.Body.String())
	}
}
