package ingest

import (
	"fmt"
	"sort"
	"strings"
)

// Enrichment is the tri-state outcome of a geoportal lookup. Exactly one of
// Data/Err is non-empty when a lookup was attempted; both are empty when the
// item had no identifier.
type Enrichment struct {
	Data string
	Err  string
}

// MaterializeRow turns one item's merged field mapping into a positional row
// rank-aligned to the schema. Fields without a dedicated column are folded
// into the catch-all column as "name: value" lines, so nothing is dropped.
// The returned row always has exactly schema.Len() cells.
func MaterializeRow(merged map[string]string, cadNum string, enrichment Enrichment, schema *Schema) []string {
	row := make([]string, schema.Len())
	var unsorted []string

	for name, value := range merged {
		if i, ok := schema.Index(name); ok {
			row[i] = value
		} else {
			unsorted = append(unsorted, fmt.Sprintf("%s: %s", name, value))
		}
	}

	setColumn(row, schema, ColCadastral, cadNum)
	setColumn(row, schema, ColGeoData, enrichment.Data)
	setColumn(row, schema, ColGeoError, enrichment.Err)

	if i, ok := schema.Index(ColUnsorted); ok {
		// Map iteration order is random; keep the overflow cell stable.
		sort.Strings(unsorted)
		row[i] = strings.Join(unsorted, "\n")
	}

	return row
}

func setColumn(row []string, schema *Schema, name, value string) {
	if i, ok := schema.Index(name); ok {
		row[i] = value
	}
}
