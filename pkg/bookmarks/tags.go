package bookmarks

import (
	"context"
	"fmt"

	"github.com/samvad-hq/bookmark-client/internal/domain"
	"github.com/samvad-hq/bookmark-client/pkg/httpclient"
)

const routeTags = "/api/tags"

// ListTags returns all tags.
func (a *API) ListTags(ctx context.Context, keyword string) ([]domain.Tag, error) {
	var out []domain.Tag
	if err := a.post(ctx, routeTags, httpclient.Params{}.Add("keyword", keyword), &out); err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return out, nil
}
