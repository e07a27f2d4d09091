package ingest

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/vsafonov/torgi-sync/app/sheets"
)

// Watermark returns the latest publish timestamp already committed to the
// store, the exclusive lower bound for new items. It is derived from the
// stored rows on every run and never persisted separately. A nil result
// means "accept everything": either the store has no data rows yet, or the
// last timestamp cell could not be parsed, and re-ingesting is the safe
// direction because appends are watermark-bounded upstream.
func Watermark(ctx context.Context, store sheets.Store, schema *Schema, maxProbeRow int) *time.Time {
	colIdx, ok := schema.Index(PubdateColumn)
	if !ok {
		slog.Warn("Publish-timestamp column missing, treating all items as new", "column", PubdateColumn)
		return nil
	}
	col := colIdx + 1

	lastRow := LocateLastFilled(ctx, store, col, maxProbeRow)
	if lastRow == 0 {
		return nil
	}

	cell, err := store.ReadCell(ctx, col, lastRow)
	if err != nil {
		slog.Warn("Failed to read watermark cell, treating all items as new", "row", lastRow, "error", err)
		return nil
	}

	ts := ParseTimestamp(cell)
	if ts == nil {
		slog.Warn("Unparsable watermark cell, treating all items as new", "row", lastRow, "value", cell)
	}
	return ts
}

// ParseTimestamp parses a stored publish timestamp. New rows are written in
// RFC 3339; older sheets may hold the feed-native RFC 2822 form, and
// dateparse covers historical hand-edited cells.
func ParseTimestamp(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	layouts := []string{time.RFC3339, time.RFC1123Z, time.RFC1123}
	for _, layout := range layouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return &ts
		}
	}

	if ts, err := dateparse.ParseAny(s); err == nil {
		return &ts
	}
	return nil
}
