// Package sources loads the registry of bookmark backends to export from (YAML/JSON).
package sources

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/samvad-hq/bookmark-client/internal/config"
)

// Source is one bookmark backend plus the filters used when exporting from it.
type Source struct {
	ID          string         `json:"id" yaml:"id"`
	Name        string         `json:"name" yaml:"name"`
	BaseURL     string         `json:"base_url" yaml:"base_url"`
	TokenKey    string         `json:"token_key" yaml:"token_key"`
	Token       string         `json:"token" yaml:"token"`
	PageDelayMs int            `json:"page_delay_ms" yaml:"page_delay_ms"`
	MaxPages    int            `json:"max_pages" yaml:"max_pages"`
	Keyword     string         `json:"keyword" yaml:"keyword"`
	Tags        []string       `json:"tags" yaml:"tags"`
	Exclude     []string       `json:"exclude" yaml:"exclude"`
	Config      map[string]any `json:"config" yaml:"config"`
}

type registry struct {
	Sources []Source `json:"sources" yaml:"sources"`
}

var (
	regMu              sync.RWMutex
	currentReg         registry
	sourcesIdx         map[string]Source
	defaultPageDelayMs = 250
)

// Sources returns a copy of the currently loaded registry.
func Sources() []Source {
	regMu.RLock()
	defer regMu.RUnlock()

	if len(currentReg.Sources) == 0 {
		return nil
	}

	out := make([]Source, len(currentReg.Sources))
	copy(out, currentReg.Sources)
	return out
}

// SourceByID returns the source entry for id, if loaded.
func SourceByID(id string) (Source, bool) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Source{}, false
	}

	regMu.RLock()
	defer regMu.RUnlock()

	s, ok := sourcesIdx[id]
	return s, ok
}

// LoadSources loads the registry from path. The extension picks the decoder;
// files without one are tried as YAML then JSON.
func LoadSources(path string) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("sources file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open sources file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("read sources file: %w", err)
	}

	reg, err := parseRegistry(raw, filepath.Ext(path))
	if err != nil {
		return err
	}
	if len(reg.Sources) == 0 {
		return errors.New("sources file contains no sources entries")
	}

	idx := make(map[string]Source, len(reg.Sources))
	for i := range reg.Sources {
		s := sanitizeSource(reg.Sources[i])
		if err := validateSource(s); err != nil {
			return fmt.Errorf("source[%d]: %w", i, err)
		}
		if _, exists := idx[s.ID]; exists {
			return fmt.Errorf("duplicate source id %q", s.ID)
		}
		reg.Sources[i] = s
		idx[s.ID] = s
	}

	regMu.Lock()
	currentReg = reg
	sourcesIdx = idx
	regMu.Unlock()

	return nil
}

type unmarshalFn func([]byte, any) error

func parseRegistry(data []byte, ext string) (registry, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))

	decoders := []struct {
		name string
		ext  string
		fn   unmarshalFn
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	var lastErr error
	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var reg registry
		if err := d.fn(data, &reg); err != nil {
			lastErr = fmt.Errorf("decode %s sources: %w", d.name, err)
			continue
		}
		return reg, nil
	}
	if lastErr != nil {
		return registry{}, lastErr
	}
	return registry{}, fmt.Errorf("sources file extension %q not recognized (expected YAML or JSON)", ext)
}

func sanitizeSource(s Source) Source {
	s.ID = strings.TrimSpace(s.ID)
	s.Name = strings.TrimSpace(s.Name)
	s.BaseURL = strings.TrimSpace(s.BaseURL)
	s.TokenKey = strings.TrimSpace(s.TokenKey)
	s.Token = strings.TrimSpace(s.Token)
	s.Keyword = strings.TrimSpace(s.Keyword)

	if s.BaseURL != "" && !strings.HasSuffix(s.BaseURL, "/") {
		s.BaseURL += "/"
	}
	if s.TokenKey == "" {
		s.TokenKey = config.DefaultTokenKey + ":" + s.ID
	}
	if s.Config == nil {
		s.Config = map[string]any{}
	}
	if s.PageDelayMs <= 0 {
		s.PageDelayMs = defaultPageDelayMs
	}
	return s
}

func validateSource(s Source) error {
	if s.ID == "" {
		return errors.New("id is required")
	}
	if s.Name == "" {
		return fmt.Errorf("name is required for source %q", s.ID)
	}
	if s.BaseURL == "" {
		return fmt.Errorf("base_url is required for source %q", s.ID)
	}
	u, err := url.Parse(s.BaseURL)
	if err != nil || !u.IsAbs() {
		return fmt.Errorf("base_url %q must be an absolute url for source %q", s.BaseURL, s.ID)
	}
	if s.MaxPages < 0 {
		return fmt.Errorf("max_pages must be >= 0 for source %q", s.ID)
	}
	return nil
}

// PageDelay returns the pause between list pages.
func (s Source) PageDelay() time.Duration {
	if s.PageDelayMs <= 0 {
		return time.Duration(defaultPageDelayMs) * time.Millisecond
	}
	return time.Duration(s.PageDelayMs) * time.Millisecond
}
