package ingest

import (
	"context"
	"fmt"
	"sort"

	"github.com/vsafonov/torgi-sync/app/feed"
	"github.com/vsafonov/torgi-sync/app/fields"
	"github.com/vsafonov/torgi-sync/app/sheets"
)

// Special columns every store must carry. Names are fixed for the lifetime
// of a spreadsheet; changing this set requires a manual migration of
// existing sheets.
const (
	ColCadastral = "Кадастровый номер"
	ColGeoData   = "Geoportal данные"
	ColGeoError  = "nspd_error"
	ColUnsorted  = "Unsorted"
)

// RequiredColumns must all be present in an existing header; a store without
// them cannot be written to safely and aborts the run.
var RequiredColumns = []string{ColCadastral, ColGeoData, ColGeoError, ColUnsorted}

// PubdateColumn is the canonical name of the publish-timestamp column the
// watermark is derived from.
var PubdateColumn = fields.Normalize("pubDate")

// Schema is the ordered column list fixed at first discovery. It is never
// extended afterwards: fields that appear in the feed later are routed to
// the catch-all column instead.
type Schema struct {
	Columns []string
	index   map[string]int
}

func NewSchema(columns []string) *Schema {
	index := make(map[string]int, len(columns))
	for i, name := range columns {
		index[name] = i
	}
	return &Schema{Columns: columns, index: index}
}

// Index returns the 0-based position of a column.
func (s *Schema) Index(name string) (int, bool) {
	i, ok := s.index[name]
	return i, ok
}

func (s *Schema) Len() int {
	return len(s.Columns)
}

// Validate checks that every required special column is present.
// A missing column is fatal: writing rows against a partial header would
// misalign every subsequent run.
func (s *Schema) Validate() error {
	for _, name := range RequiredColumns {
		if _, ok := s.index[name]; !ok {
			return fmt.Errorf("required column %q missing from schema", name)
		}
	}
	return nil
}

// DiscoverSchema builds the definitive column list from a sample of feed
// items: every normalized raw field name, every free-text sub-field name and
// the special columns, alphabetical, with the catch-all column forced last.
func DiscoverSchema(items []feed.Item) *Schema {
	names := map[string]struct{}{
		ColCadastral: {},
		ColGeoData:   {},
		ColGeoError:  {},
		ColUnsorted:  {},
	}

	for _, item := range items {
		for rawName := range item.RawFields {
			names[fields.Normalize(rawName)] = struct{}{}
		}
		for name := range fields.ParseFreeText(item.Description) {
			names[name] = struct{}{}
		}
	}

	columns := make([]string, 0, len(names))
	for name := range names {
		if name != ColUnsorted {
			columns = append(columns, name)
		}
	}
	sort.Strings(columns)
	columns = append(columns, ColUnsorted)

	return NewSchema(columns)
}

// LoadSchema reads the header row of an existing store. A nil schema with a
// nil error means the store is empty and discovery should run.
func LoadSchema(ctx context.Context, store sheets.Store) (*Schema, error) {
	header, err := store.ReadRow(ctx, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to read header row: %w", err)
	}

	empty := true
	for _, cell := range header {
		if cell != "" {
			empty = false
			break
		}
	}
	if empty {
		return nil, nil
	}

	return NewSchema(header), nil
}
