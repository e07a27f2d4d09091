package ingest

import (
	"context"
	"fmt"

	"github.com/vsafonov/torgi-sync/app/feed"
)

// fakeStore is an in-memory Store. rows[0] is sheet row 1.
type fakeStore struct {
	rows      [][]string
	appended  [][]string
	failCells map[[2]int]bool
	cellReads int
}

func newFakeStore(rows ...[]string) *fakeStore {
	return &fakeStore{
		rows:      rows,
		failCells: make(map[[2]int]bool),
	}
}

func (f *fakeStore) cellAt(col, row int) string {
	if row < 1 || row > len(f.rows) {
		return ""
	}
	cells := f.rows[row-1]
	if col < 1 || col > len(cells) {
		return ""
	}
	return cells[col-1]
}

func (f *fakeStore) RowCount(ctx context.Context) (int, error) {
	return len(f.rows), nil
}

func (f *fakeStore) ReadRow(ctx context.Context, row int) ([]string, error) {
	if row < 1 || row > len(f.rows) {
		return nil, nil
	}
	return append([]string(nil), f.rows[row-1]...), nil
}

func (f *fakeStore) ReadCell(ctx context.Context, col, row int) (string, error) {
	f.cellReads++
	if f.failCells[[2]int{col, row}] {
		return "", fmt.Errorf("simulated read failure at col %d row %d", col, row)
	}
	return f.cellAt(col, row), nil
}

func (f *fakeStore) ReadColumn(ctx context.Context, col, fromRow, toRow int) ([]string, error) {
	column := make([]string, toRow-fromRow+1)
	for i := range column {
		column[i] = f.cellAt(col, fromRow+i)
	}
	return column, nil
}

func (f *fakeStore) WriteRow(ctx context.Context, row int, values []string) error {
	f.growTo(row)
	f.rows[row-1] = append([]string(nil), values...)
	return nil
}

func (f *fakeStore) WriteCell(ctx context.Context, col, row int, value string) error {
	f.growTo(row)
	cells := f.rows[row-1]
	for len(cells) < col {
		cells = append(cells, "")
	}
	cells[col-1] = value
	f.rows[row-1] = cells
	return nil
}

func (f *fakeStore) AppendRows(ctx context.Context, rows [][]string) error {
	for _, row := range rows {
		f.rows = append(f.rows, append([]string(nil), row...))
		f.appended = append(f.appended, append([]string(nil), row...))
	}
	return nil
}

func (f *fakeStore) growTo(row int) {
	for len(f.rows) < row {
		f.rows = append(f.rows, nil)
	}
}

type fakeFetcher struct {
	items   []feed.Item
	fetches int
	err     error
}

func (f *fakeFetcher) Fetch(ctx context.Context) ([]feed.Item, error) {
	f.fetches++
	if f.err != nil {
		return nil, f.err
	}
	return f.items, nil
}

// fakeEnricher resolves lookups from a fixed table; unknown identifiers get
// a canned diagnostic. Lookups are recorded in call order.
type fakeEnricher struct {
	payloads map[string]string
	diags    map[string]string
	lookups  []string
}

func (f *fakeEnricher) Lookup(ctx context.Context, cadNum string) (string, string) {
	f.lookups = append(f.lookups, cadNum)
	if diag, ok := f.diags[cadNum]; ok {
		return "", diag
	}
	if payload, ok := f.payloads[cadNum]; ok {
		return payload, ""
	}
	return "", "Status: 404\nURL: test\nHeaders: {}\nBody: not found"
}
