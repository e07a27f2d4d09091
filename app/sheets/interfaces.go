package sheets

import "context"

// MaxCellSize is the hard per-cell character limit of the Sheets API.
// Values exceeding it must be dropped before write, never sent.
const MaxCellSize = 50000

// Store is the range-addressable tabular store the sync engine runs on.
// Rows and columns are 1-based; row 1 holds the schema header. The store has
// no query capability, so all search logic is built on these primitives.
type Store interface {
	// RowCount returns the number of currently allocated rows in the grid.
	RowCount(ctx context.Context) (int, error)

	ReadRow(ctx context.Context, row int) ([]string, error)
	ReadCell(ctx context.Context, col, row int) (string, error)
	// ReadColumn reads one column over [fromRow, toRow], padding missing
	// trailing cells with empty strings.
	ReadColumn(ctx context.Context, col, fromRow, toRow int) ([]string, error)

	WriteRow(ctx context.Context, row int, values []string) error
	WriteCell(ctx context.Context, col, row int, value string) error
	AppendRows(ctx context.Context, rows [][]string) error
}
