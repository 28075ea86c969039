package sources

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	file := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(file, []byte(content), 0o644); err != nil {
		t.Fatalf("write sources file: %v", err)
	}
	return file
}

func TestLoadSourcesYAML(t *testing.T) {
	file := writeFile(t, "sources.yaml", `
sources:
  - id: home
    name: Home bookmarks
    base_url: http://127.0.0.1:38112
    page_delay_ms: 100
    max_pages: 5
    tags: [go, web]
    config:
      user_agent: bookmark-export/1.0
`)

	if err := LoadSources(file); err != nil {
		t.Fatalf("LoadSources returned error: %v", err)
	}
	if got := len(Sources()); got != 1 {
		t.Fatalf("expected 1 source, got %d", got)
	}

	s, ok := SourceByID("home")
	if !ok {
		t.Fatalf("expected source id home to be loaded")
	}
	if s.BaseURL != "http://127.0.0.1:38112/" {
		t.Fatalf("expected trailing slash on base_url, got %s", s.BaseURL)
	}
	if s.TokenKey != "bookmark-token:home" {
		t.Fatalf("unexpected default token key %q", s.TokenKey)
	}
	if s.PageDelay() != 100*time.Millisecond || s.MaxPages != 5 {
		t.Fatalf("unexpected paging settings: %v %d", s.PageDelay(), s.MaxPages)
	}
	if len(s.Tags) != 2 || s.Tags[1] != "web" {
		t.Fatalf("unexpected tags %#v", s.Tags)
	}
	if h := Headers(s); h["User-Agent"] != "bookmark-export/1.0" || len(h) != 1 {
		t.Fatalf("unexpected headers %#v", h)
	}
}

func TestLoadSourcesJSONDefaults(t *testing.T) {
	file := writeFile(t, "sources.json", `{"sources":[{"id":"a","name":"A","base_url":"https://bm.example/app/","token_key":"custom"}]}`)

	if err := LoadSources(file); err != nil {
		t.Fatalf("LoadSources returned error: %v", err)
	}
	s, _ := SourceByID("a")
	if s.TokenKey != "custom" {
		t.Fatalf("unexpected token key %q", s.TokenKey)
	}
	if s.PageDelay() != 250*time.Millisecond {
		t.Fatalf("expected default page delay, got %v", s.PageDelay())
	}
}

func TestLoadSourcesDuplicateID(t *testing.T) {
	file := writeFile(t, "sources.yaml", `
sources:
  - id: dup
    name: One
    base_url: https://one.example/
  - id: dup
    name: Two
    base_url: https://two.example/
`)
	if err := LoadSources(file); err == nil {
		t.Fatalf("expected duplicate source error, got nil")
	}
}

func TestLoadSourcesRejectsRelativeBaseURL(t *testing.T) {
	file := writeFile(t, "sources.yaml", `
sources:
  - id: rel
    name: Relative
    base_url: /api
`)
	if err := LoadSources(file); err == nil {
		t.Fatalf("expected error for relative base_url")
	}
}

func TestSourceByIDEmpty(t *testing.T) {
	if _, ok := SourceByID(" "); ok {
		t.Fatalf("expected no source for blank id")
	}
}
