package bookmarks

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/samvad-hq/bookmark-client/pkg/httpclient"
)

type recordedRequest struct {
	Path   string
	Auth   string
	Fields map[string]any
}

type fakeBackend struct {
	mu       sync.Mutex
	requests []recordedRequest
	routes   map[string]string
}

func newFakeBackend(t *testing.T, routes map[string]string) (*fakeBackend, *httptest.Server) {
	t.Helper()
	fb := &fakeBackend{routes: routes}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		fields := map[string]any{}
		if len(body) > 0 {
			if err := json.Unmarshal(body, &fields); err != nil {
				t.Errorf("request body is not json: %q", body)
			}
		}
		fb.mu.Lock()
		fb.requests = append(fb.requests, recordedRequest{
			Path:   r.URL.Path,
			Auth:   r.Header.Get("Authorization"),
			Fields: fields,
		})
		fb.mu.Unlock()

		resp, ok := fb.routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, resp)
	}))
	t.Cleanup(srv.Close)
	return fb, srv
}

func (fb *fakeBackend) last(t *testing.T) recordedRequest {
	t.Helper()
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if len(fb.requests) == 0 {
		t.Fatalf("no requests recorded")
	}
	return fb.requests[len(fb.requests)-1]
}

type memTokens struct {
	token string
}

func (m *memTokens) Token(context.Context) (string, error) { return m.token, nil }
func (m *memTokens) Save(token string) error               { m.token = token; return nil }
func (m *memTokens) Clear() error                          { m.token = ""; return nil }

func newTestAPI(t *testing.T, srv *httptest.Server, tokens httpclient.TokenProvider) *API {
	t.Helper()
	client, err := httpclient.New(srv.URL+"/", httpclient.WithTokenProvider(tokens))
	if err != nil {
		t.Fatalf("httpclient.New: %v", err)
	}
	return New(client)
}

func TestLoginAndStoreAuthenticatesLaterCalls(t *testing.T) {
	fb, srv := newFakeBackend(t, map[string]string{
		"/api/auth/login": `{"code":0,"msg":"ok","data":{"token":"tok-1"}}`,
		"/api/tags":       `{"code":0,"msg":"ok","data":[{"id":1,"name":"go"}]}`,
	})
	tokens := &memTokens{}
	api := newTestAPI(t, srv, tokens)

	token, err := api.LoginAndStore(context.Background(), "admin", "secret", tokens)
	if err != nil {
		t.Fatalf("LoginAndStore: %v", err)
	}
	if token != "tok-1" || tokens.token != "tok-1" {
		t.Fatalf("expected stored token tok-1, got %q / %q", token, tokens.token)
	}
	login := fb.last(t)
	if login.Auth != "" {
		t.Fatalf("login should be sent without a token, got %q", login.Auth)
	}
	if login.Fields["username"] != "admin" || login.Fields["password"] != "secret" {
		t.Fatalf("unexpected login body %#v", login.Fields)
	}

	tags, err := api.ListTags(context.Background(), "")
	if err != nil {
		t.Fatalf("ListTags: %v", err)
	}
	if len(tags) != 1 || tags[0].Name != "go" {
		t.Fatalf("unexpected tags %#v", tags)
	}
	if got := fb.last(t).Auth; got != "Bearer tok-1" {
		t.Fatalf("expected bearer token on later call, got %q", got)
	}
}

func TestLoginRejectsEnvelopeError(t *testing.T) {
	_, srv := newFakeBackend(t, map[string]string{
		"/api/auth/login": `{"code":1,"msg":"wrong password","data":null}`,
	})
	api := newTestAPI(t, srv, nil)

	_, err := api.Login(context.Background(), "admin", "bad")
	if !errors.Is(err, ErrAPI) {
		t.Fatalf("expected ErrAPI, got %v", err)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Code != 1 || apiErr.Msg != "wrong password" {
		t.Fatalf("unexpected api error %#v", apiErr)
	}
}

func TestLoginRequiresCredentials(t *testing.T) {
	api := New(nil)
	if _, err := api.Login(context.Background(), " ", "x"); err == nil {
		t.Fatalf("expected error for missing username")
	}
}

func TestLogoutClearsTokenOnEmptyBody(t *testing.T) {
	_, srv := newFakeBackend(t, map[string]string{"/api/auth/logout": ""})
	tokens := &memTokens{token: "tok"}
	api := newTestAPI(t, srv, tokens)

	if err := api.Logout(context.Background(), tokens); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if tokens.token != "" {
		t.Fatalf("expected token cleared, got %q", tokens.token)
	}
}

func TestLogoutKeepsTokenOnHTTPFailure(t *testing.T) {
	_, srv := newFakeBackend(t, nil)
	tokens := &memTokens{token: "tok"}
	api := newTestAPI(t, srv, tokens)

	err := api.Logout(context.Background(), tokens)
	if !errors.Is(err, httpclient.ErrResponseNotOK) {
		t.Fatalf("expected ErrResponseNotOK, got %v", err)
	}
	if tokens.token != "tok" {
		t.Fatalf("token should survive a failed logout")
	}
}

func TestListBookmarksSendsFilters(t *testing.T) {
	fb, srv := newFakeBackend(t, map[string]string{
		"/api/bookmarks": `{"code":0,"msg":"ok","data":{"page":2,"maxPage":3,"bookmarks":[{"id":7,"url":"https://example.com","title":"Example","tags":"go,web"}]}}`,
	})
	api := newTestAPI(t, srv, nil)

	page, err := api.ListBookmarks(context.Background(), ListOptions{
		Keyword: "example",
		Page:    2,
		Tags:    []string{"go", " ", "web"},
		Exclude: []string{"old"},
	})
	if err != nil {
		t.Fatalf("ListBookmarks: %v", err)
	}
	if page.Page != 2 || page.MaxPage != 3 || len(page.Bookmarks) != 1 {
		t.Fatalf("unexpected page %#v", page)
	}
	if page.Bookmarks[0].ID != 7 || page.Bookmarks[0].TagNames()[1] != "web" {
		t.Fatalf("unexpected bookmark %#v", page.Bookmarks[0])
	}

	req := fb.last(t)
	if req.Fields["keyword"] != "example" || req.Fields["page"] != float64(2) {
		t.Fatalf("unexpected list body %#v", req.Fields)
	}
	if req.Fields["tags"] != "go,web" || req.Fields["exclude"] != "old" {
		t.Fatalf("unexpected tag filters %#v", req.Fields)
	}
}

func TestListBookmarksDefaultsToFirstPage(t *testing.T) {
	fb, srv := newFakeBackend(t, map[string]string{
		"/api/bookmarks": `{"code":0,"msg":"ok","data":{"page":1,"maxPage":1,"bookmarks":[]}}`,
	})
	api := newTestAPI(t, srv, nil)

	if _, err := api.ListBookmarks(context.Background(), ListOptions{}); err != nil {
		t.Fatalf("ListBookmarks: %v", err)
	}
	if got := fb.last(t).Fields["page"]; got != float64(1) {
		t.Fatalf("expected page 1, got %v", got)
	}
}

func TestAddBookmark(t *testing.T) {
	fb, srv := newFakeBackend(t, map[string]string{
		"/api/bookmarks/add": `{"code":0,"msg":"ok","data":{"id":9,"url":"https://example.com/a","title":"A","public":1}}`,
	})
	api := newTestAPI(t, srv, nil)

	b, err := api.AddBookmark(context.Background(), AddBookmarkRequest{
		URL:    " https://example.com/a ",
		Title:  "A",
		Tags:   []string{"x", "y"},
		Public: true,
	})
	if err != nil {
		t.Fatalf("AddBookmark: %v", err)
	}
	if b.ID != 9 || b.Public != 1 {
		t.Fatalf("unexpected bookmark %#v", b)
	}
	req := fb.last(t)
	if req.Fields["url"] != "https://example.com/a" || req.Fields["tags"] != "x,y" || req.Fields["public"] != float64(1) {
		t.Fatalf("unexpected add body %#v", req.Fields)
	}
	if _, ok := req.Fields["imgbase64"]; ok {
		t.Fatalf("empty imgbase64 should be omitted")
	}

	if _, err := api.AddBookmark(context.Background(), AddBookmarkRequest{}); err == nil {
		t.Fatalf("expected error for empty url")
	}
}

func TestDeleteBookmarks(t *testing.T) {
	fb, srv := newFakeBackend(t, map[string]string{
		"/api/bookmarks/delete":    `{"code":0,"msg":"ok","data":null}`,
		"/api/bookmarks/deleteUrl": `{"code":0,"msg":"ok"}`,
	})
	api := newTestAPI(t, srv, nil)

	if err := api.DeleteBookmark(context.Background(), 3); err != nil {
		t.Fatalf("DeleteBookmark: %v", err)
	}
	if got := fb.last(t).Fields["id"]; got != float64(3) {
		t.Fatalf("unexpected id %v", got)
	}
	if err := api.DeleteBookmarkByURL(context.Background(), "https://example.com"); err != nil {
		t.Fatalf("DeleteBookmarkByURL: %v", err)
	}
	if got := fb.last(t); got.Path != "/api/bookmarks/deleteUrl" || got.Fields["url"] != "https://example.com" {
		t.Fatalf("unexpected request %#v", got)
	}
	if err := api.DeleteBookmark(context.Background(), 0); err == nil {
		t.Fatalf("expected error for zero id")
	}
}

func TestShotURL(t *testing.T) {
	client, err := httpclient.New("http://127.0.0.1:38112/")
	if err != nil {
		t.Fatalf("httpclient.New: %v", err)
	}
	got, err := New(client).ShotURL("https://img.example.com/a b.png")
	if err != nil {
		t.Fatalf("ShotURL: %v", err)
	}
	want := "http://127.0.0.1:38112/api/bookmarks/showShot?image_url=https%3A%2F%2Fimg.example.com%2Fa%20b.png"
	if got != want {
		t.Fatalf("ShotURL = %q, want %q", got, want)
	}
}

func TestAccounts(t *testing.T) {
	fb, srv := newFakeBackend(t, map[string]string{
		"/api/accounts":           `{"code":0,"msg":"ok","data":[{"id":1,"username":"admin","owner":true}]}`,
		"/api/accounts/add":       `{"code":0,"msg":"ok","data":{"id":2,"username":"bob","owner":false}}`,
		"/api/accounts/delete":    `{"code":0,"msg":"ok"}`,
		"/api/accounts/changePwd": `{"code":0,"msg":"ok","data":{"id":2,"username":"bob"}}`,
	})
	api := newTestAPI(t, srv, nil)
	ctx := context.Background()

	accounts, err := api.ListAccounts(ctx)
	if err != nil || len(accounts) != 1 || !accounts[0].Owner {
		t.Fatalf("ListAccounts = %#v, %v", accounts, err)
	}

	acc, err := api.AddAccount(ctx, "bob", "pw", false)
	if err != nil || acc.Username != "bob" {
		t.Fatalf("AddAccount = %#v, %v", acc, err)
	}
	if got := fb.last(t).Fields["owner"]; got != false {
		t.Fatalf("expected owner=false, got %v", got)
	}

	if _, err := api.ChangePassword(ctx, ChangePasswordRequest{Username: "bob", OldPassword: "pw", Password: "pw2"}); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	if got := fb.last(t).Fields["oldPassword"]; got != "pw" {
		t.Fatalf("expected oldPassword pw, got %v", got)
	}
	if _, err := api.ChangePassword(ctx, ChangePasswordRequest{Username: "bob", Password: "x"}); err == nil {
		t.Fatalf("expected error without old password")
	}

	if err := api.DeleteAccount(ctx, "bob"); err != nil {
		t.Fatalf("DeleteAccount: %v", err)
	}
	if got := fb.last(t).Path; got != "/api/accounts/delete" {
		t.Fatalf("unexpected path %q", got)
	}
}

func TestFormEncodingOption(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got = string(body)
		_, _ = io.WriteString(w, `{"code":0,"msg":"ok","data":{"token":"t"}}`)
	}))
	defer srv.Close()

	client, err := httpclient.New(srv.URL + "/")
	if err != nil {
		t.Fatalf("httpclient.New: %v", err)
	}
	api := New(client, httpclient.WithEncoding(httpclient.EncodingForm))
	if _, err := api.Login(context.Background(), "a b", "p&w"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if !strings.Contains(got, "username=a%20b") || !strings.Contains(got, "password=p%26w") {
		t.Fatalf("unexpected form body %q", got)
	}
}
