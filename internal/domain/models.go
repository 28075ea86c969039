package domain

import "strings"

// Bookmark is a saved URL as returned by the bookmark API.
type Bookmark struct {
	ID         int    `json:"id"`
	URL        string `json:"url"`
	Title      string `json:"title"`
	ImageURL   string `json:"image_url"`
	Excerpt    string `json:"excerpt"`
	UID        int    `json:"uid"`
	Tags       string `json:"tags"`
	Public     int    `json:"public"`
	Modified   string `json:"modified"`
	TagsDetail []Tag  `json:"tags_detail"`
}

// TagNames splits the comma separated Tags field.
func (b Bookmark) TagNames() []string {
	if strings.TrimSpace(b.Tags) == "" {
		return nil
	}
	parts := strings.Split(b.Tags, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Sparse reports whether the bookmark lacks display metadata.
func (b Bookmark) Sparse() bool {
	return strings.TrimSpace(b.Title) == "" ||
		strings.TrimSpace(b.Excerpt) == "" ||
		strings.TrimSpace(b.ImageURL) == ""
}

type Tag struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type Account struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Owner    bool   `json:"owner"`
}
