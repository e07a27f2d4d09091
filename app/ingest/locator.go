package ingest

import (
	"context"
	"log/slog"
	"strings"

	"github.com/vsafonov/torgi-sync/app/sheets"
)

// LocateLastFilled finds the highest row of one column holding a non-empty
// value using O(log n) single-cell reads: an exponential probe to bracket the
// boundary, then a binary search inside the bracket. Correct as long as
// filled rows form a contiguous prefix, which append-only writes guarantee.
//
// Read errors count as empty so a flaky read can only understate the fill,
// never overstate it. Row 1 is the schema header and is excluded: the result
// is 0 when no data row (>= 2) is filled.
func LocateLastFilled(ctx context.Context, store sheets.Store, col, maxRow int) int {
	filled := func(row int) bool {
		value, err := store.ReadCell(ctx, col, row)
		if err != nil {
			slog.Debug("Probe read failed, treating as empty", "col", col, "row", row, "error", err)
			return false
		}
		return strings.TrimSpace(value) != ""
	}

	if !filled(1) {
		return 0
	}

	// Exponential probe: double until the first empty cell or the ceiling.
	low, high := 1, 0
	for probe := 2; probe <= maxRow; probe *= 2 {
		if filled(probe) {
			low = probe
		} else {
			high = probe
			break
		}
	}
	if high == 0 {
		// Never hit an empty cell below the ceiling.
		high = maxRow + 1
	}

	// Binary search the filled/empty boundary in (low, high).
	for high-low > 1 {
		mid := low + (high-low)/2
		if filled(mid) {
			low = mid
		} else {
			high = mid
		}
	}

	if low < 2 {
		return 0
	}
	return low
}
