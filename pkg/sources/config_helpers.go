package sources

import "strings"

// ConfigString returns the trimmed string value for key from s.Config or fallback.
func ConfigString(s Source, key, fallback string) string {
	if raw, ok := s.Config[key]; ok {
		if val, ok := raw.(string); ok {
			if trimmed := strings.TrimSpace(val); trimmed != "" {
				return trimmed
			}
		}
	}
	return fallback
}

const (
	ConfigUserAgentKey      = "user_agent"
	ConfigAcceptLanguageKey = "accept_language"
)

// Headers builds the page fetch headers used when enriching bookmarks (skips empty values).
func Headers(s Source) map[string]string {
	headers := make(map[string]string, 2)

	if v := ConfigString(s, ConfigUserAgentKey, ""); v != "" {
		headers["User-Agent"] = v
	}
	if v := ConfigString(s, ConfigAcceptLanguageKey, ""); v != "" {
		headers["Accept-Language"] = v
	}

	return headers
}
