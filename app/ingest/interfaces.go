package ingest

import (
	"context"

	"github.com/vsafonov/torgi-sync/app/feed"
)

// Fetcher pulls one finite batch of lot items from the feed.
type Fetcher interface {
	Fetch(ctx context.Context) ([]feed.Item, error)
}

// Enricher looks up parcel data for a cadastral number. Exactly one of the
// returned strings is non-empty: payload on success, diagnostic on failure.
type Enricher interface {
	Lookup(ctx context.Context, cadNum string) (payload string, diag string)
}
