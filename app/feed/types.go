package feed

import "time"

// Item is one feed entry. RawFields carries every feed-native field as a
// name -> string value mapping, so downstream schema discovery sees the same
// surface regardless of which elements a particular feed revision exposes.
type Item struct {
	GUID        string
	Title       string
	Link        string
	Description string
	PublishedAt *time.Time

	RawFields map[string]string
}
