package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/vsafonov/torgi-sync/app/feed"
	"github.com/vsafonov/torgi-sync/app/fields"
	"github.com/vsafonov/torgi-sync/app/sheets"
)

type Options struct {
	RetryWindow int
	MaxProbeRow int
}

// Driver composes one full sweep-and-append cycle: schema, retry sweep,
// watermark, fetch, enrich, batch append. One Run per process invocation.
type Driver struct {
	store    sheets.Store
	fetcher  Fetcher
	enricher Enricher
	pacer    *Pacer
	opts     Options
}

func NewDriver(store sheets.Store, fetcher Fetcher, enricher Enricher, pacer *Pacer, opts Options) *Driver {
	return &Driver{
		store:    store,
		fetcher:  fetcher,
		enricher: enricher,
		pacer:    pacer,
		opts:     opts,
	}
}

func (d *Driver) Run(ctx context.Context) error {
	startTime := time.Now()

	schema, err := d.loadOrDiscoverSchema(ctx)
	if err != nil {
		return err
	}
	if err := schema.Validate(); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}

	sweeper := NewSweeper(d.store, d.enricher, d.pacer, d.opts.RetryWindow, d.opts.MaxProbeRow)
	if err := sweeper.Run(ctx, schema); err != nil {
		// Per-run recoverable: the main ingestion still proceeds.
		slog.Warn("Retry sweep failed, skipping", "error", err)
	}

	watermark := Watermark(ctx, d.store, schema, d.opts.MaxProbeRow)
	if watermark != nil {
		slog.Info("Watermark computed", "last_pubdate", watermark.Format(time.RFC3339))
	} else {
		slog.Info("No watermark, accepting all items")
	}

	items, err := d.fetcher.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch feed: %w", err)
	}
	slog.Info("Feed fetched", "items", len(items))

	// Ascending order keeps the watermark a correct lower bound even if the
	// run dies mid-batch: no item is committed ahead of an older one.
	sortByPublished(items)

	var newRows [][]string
	for _, item := range items {
		if !d.isNew(item, watermark) {
			continue
		}

		row, err := d.buildRow(ctx, item, schema)
		if err != nil {
			return err
		}
		newRows = append(newRows, row)
	}

	if len(newRows) == 0 {
		slog.Info("No new lots to add", "duration", time.Since(startTime))
		return nil
	}

	if err := d.store.AppendRows(ctx, newRows); err != nil {
		return fmt.Errorf("failed to append rows: %w", err)
	}

	slog.Info("Sync completed",
		"new_rows", len(newRows),
		"total_items", len(items),
		"duration", time.Since(startTime))
	return nil
}

// loadOrDiscoverSchema loads the header of an existing store, or on first
// run discovers the column list from a feed sample and writes it.
func (d *Driver) loadOrDiscoverSchema(ctx context.Context) (*Schema, error) {
	schema, err := LoadSchema(ctx, d.store)
	if err != nil {
		return nil, fmt.Errorf("failed to load schema: %w", err)
	}
	if schema != nil {
		return schema, nil
	}

	slog.Info("Empty store, discovering schema from feed sample")
	items, err := d.fetcher.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed for schema discovery: %w", err)
	}

	schema = DiscoverSchema(items)
	slog.Info("Schema discovered", "columns", schema.Len())

	if err := d.store.WriteRow(ctx, 1, schema.Columns); err != nil {
		return nil, fmt.Errorf("failed to write header row: %w", err)
	}
	return schema, nil
}

// isNew applies the watermark cutoff. Items without a parsable timestamp are
// always considered new.
func (d *Driver) isNew(item feed.Item, watermark *time.Time) bool {
	if item.PublishedAt == nil || watermark == nil {
		return true
	}
	return item.PublishedAt.After(*watermark)
}

// buildRow normalizes, enriches and materializes a single item.
func (d *Driver) buildRow(ctx context.Context, item feed.Item, schema *Schema) ([]string, error) {
	merged := make(map[string]string, len(item.RawFields))
	for rawName, value := range item.RawFields {
		merged[fields.Normalize(rawName)] = value
	}
	// Free-text sub-fields are applied after the raw fields and win on
	// key collisions.
	for name, value := range fields.ParseFreeText(item.Description) {
		merged[name] = value
	}

	if item.PublishedAt != nil {
		merged[PubdateColumn] = item.PublishedAt.Format(time.RFC3339)
	}

	cadNum := fields.ExtractCadastral(merged, item.RawFields, item.Title+" "+item.Description)

	var enrichment Enrichment
	if cadNum != "" {
		if err := d.pacer.Wait(ctx); err != nil {
			return nil, err
		}
		enrichment.Data, enrichment.Err = d.enricher.Lookup(ctx, cadNum)
		if enrichment.Err != "" {
			slog.Warn("Enrichment failed, recorded for retry", "cadastral", cadNum, "guid", item.GUID)
		}
	} else {
		slog.Debug("No cadastral number found, skipping enrichment", "guid", item.GUID)
	}

	row := MaterializeRow(merged, cadNum, enrichment, schema)
	d.clampOversizedCells(row, schema, item.GUID)
	return row, nil
}

// clampOversizedCells empties any cell over the store's per-cell limit. The
// row is still appended; losing one oversized value must not lose the lot.
func (d *Driver) clampOversizedCells(row []string, schema *Schema, guid string) {
	for i, cell := range row {
		if len(cell) > sheets.MaxCellSize {
			slog.Warn("Cell exceeds size limit, dropping value",
				"guid", guid, "column", schema.Columns[i], "size", len(cell))
			row[i] = ""
		}
	}
}

// sortByPublished orders items ascending by publish time; items without a
// timestamp sort first.
func sortByPublished(items []feed.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].PublishedAt, items[j].PublishedAt
		switch {
		case a == nil:
			return b != nil
		case b == nil:
			return false
		default:
			return a.Before(*b)
		}
	})
}
