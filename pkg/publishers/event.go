package publishers

import (
	"time"

	"github.com/samvad-hq/bookmark-client/internal/domain"
)

// Event is the payload published downstream for one exported bookmark.
type Event struct {
	SourceID    string          `json:"source_id"`
	SourceName  string          `json:"source_name"`
	Bookmark    domain.Bookmark `json:"bookmark"`
	CollectedAt time.Time       `json:"collected_at"`
}

// NewEvent stamps a bookmark from source with the current time.
func NewEvent(sourceID, sourceName string, b domain.Bookmark) Event {
	return Event{
		SourceID:    sourceID,
		SourceName:  sourceName,
		Bookmark:    b,
		CollectedAt: time.Now().UTC(),
	}
}
