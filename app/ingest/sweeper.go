package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/vsafonov/torgi-sync/app/fields"
	"github.com/vsafonov/torgi-sync/app/sheets"
)

// Sweeper rescans a bounded window of recent rows for enrichments that
// failed on an earlier run and re-attempts them. Rows older than the window
// age out of retrying; an unrecoverable remote error should not be chased
// forever at one lookup per row per run.
type Sweeper struct {
	store       sheets.Store
	enricher    Enricher
	pacer       *Pacer
	window      int
	maxProbeRow int
}

func NewSweeper(store sheets.Store, enricher Enricher, pacer *Pacer, window, maxProbeRow int) *Sweeper {
	return &Sweeper{
		store:       store,
		enricher:    enricher,
		pacer:       pacer,
		window:      window,
		maxProbeRow: maxProbeRow,
	}
}

// Run re-attempts failed enrichments inside the window. Sweep failures are
// logged and skipped; they never abort the main ingestion.
func (s *Sweeper) Run(ctx context.Context, schema *Schema) error {
	cadIdx, ok := schema.Index(ColCadastral)
	if !ok {
		return fmt.Errorf("cadastral column missing from schema")
	}
	errIdx, ok := schema.Index(ColGeoError)
	if !ok {
		return fmt.Errorf("error column missing from schema")
	}
	geoIdx, ok := schema.Index(ColGeoData)
	if !ok {
		return fmt.Errorf("payload column missing from schema")
	}
	pubIdx, ok := schema.Index(PubdateColumn)
	if !ok {
		return fmt.Errorf("publish-timestamp column missing from schema")
	}

	// The grid may allocate far more rows than hold data; anchor the window
	// at the located data tail and let the allocation cap the probe.
	rowCount, err := s.store.RowCount(ctx)
	if err != nil {
		return fmt.Errorf("failed to get row count: %w", err)
	}
	ceiling := s.maxProbeRow
	if rowCount < ceiling {
		ceiling = rowCount
	}

	lastRow := LocateLastFilled(ctx, s.store, pubIdx+1, ceiling)
	if lastRow < 2 {
		return nil
	}

	fromRow := lastRow - s.window + 1
	if fromRow < 2 {
		fromRow = 2
	}

	cadCells, err := s.store.ReadColumn(ctx, cadIdx+1, fromRow, lastRow)
	if err != nil {
		return fmt.Errorf("failed to read cadastral column: %w", err)
	}
	errCells, err := s.store.ReadColumn(ctx, errIdx+1, fromRow, lastRow)
	if err != nil {
		return fmt.Errorf("failed to read error column: %w", err)
	}

	retried, fixed := 0, 0
	for i, cadCell := range cadCells {
		row := fromRow + i

		cadNum := strings.TrimSpace(cadCell)
		if !fields.IsCadastral(cadNum) {
			continue
		}
		if i >= len(errCells) || strings.TrimSpace(errCells[i]) == "" {
			continue
		}

		retried++
		slog.Info("Retrying failed enrichment", "cadastral", cadNum, "row", row)

		if err := s.pacer.Wait(ctx); err != nil {
			return err
		}

		payload, diag := s.enricher.Lookup(ctx, cadNum)
		if diag != "" {
			// Leave the row untouched; it stays eligible next run.
			slog.Warn("Enrichment retry failed", "cadastral", cadNum, "row", row)
			continue
		}

		if len(payload) > sheets.MaxCellSize {
			slog.Warn("Enrichment payload exceeds cell limit, dropping", "cadastral", cadNum, "size", len(payload))
			payload = ""
		}

		if err := s.store.WriteCell(ctx, geoIdx+1, row, payload); err != nil {
			slog.Warn("Failed to write retried payload", "row", row, "error", err)
			continue
		}
		if err := s.store.WriteCell(ctx, errIdx+1, row, ""); err != nil {
			slog.Warn("Failed to clear error cell", "row", row, "error", err)
			continue
		}
		fixed++
	}

	if retried > 0 {
		slog.Info("Retry sweep completed", "window", s.window, "retried", retried, "fixed", fixed)
	}
	return nil
}
