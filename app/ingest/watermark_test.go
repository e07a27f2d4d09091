package ingest

import (
	"context"
	"testing"
	"time"
)

func TestParseTimestamp(t *testing.T) {
	cases := []struct {
		input    string
		expected time.Time
	}{
		{"2023-07-03T10:00:00Z", time.Date(2023, 7, 3, 10, 0, 0, 0, time.UTC)},
		{"2023-07-03T13:00:00+03:00", time.Date(2023, 7, 3, 10, 0, 0, 0, time.UTC)},
		{"Mon, 03 Jul 2023 10:00:00 +0000", time.Date(2023, 7, 3, 10, 0, 0, 0, time.UTC)},
		{"Mon, 03 Jul 2023 10:00:00 GMT", time.Date(2023, 7, 3, 10, 0, 0, 0, time.UTC)},
	}

	for _, c := range cases {
		got := ParseTimestamp(c.input)
		if got == nil {
			t.Errorf("ParseTimestamp(%q) returned nil", c.input)
			continue
		}
		if !got.Equal(c.expected) {
			t.Errorf("ParseTimestamp(%q) = %v, expected %v", c.input, got, c.expected)
		}
	}
}

func TestParseTimestampInvalid(t *testing.T) {
	for _, input := range []string{"", "  ", "не дата"} {
		if got := ParseTimestamp(input); got != nil {
			t.Errorf("ParseTimestamp(%q) = %v, expected nil", input, got)
		}
	}
}

func watermarkSchema() *Schema {
	return NewSchema([]string{"Title", PubdateColumn, ColCadastral, ColGeoData, ColGeoError, ColUnsorted})
}

func TestWatermarkFromLastRow(t *testing.T) {
	store := newFakeStore(
		watermarkSchema().Columns,
		[]string{"Лот 1", "2023-07-01T10:00:00Z"},
		[]string{"Лот 2", "2023-07-02T10:00:00Z"},
		[]string{"Лот 3", "2023-07-03T10:00:00Z"},
	)

	got := Watermark(context.Background(), store, watermarkSchema(), 1048576)
	if got == nil {
		t.Fatal("Expected watermark, got nil")
	}
	expected := time.Date(2023, 7, 3, 10, 0, 0, 0, time.UTC)
	if !got.Equal(expected) {
		t.Errorf("Expected watermark %v, got %v", expected, got)
	}
}

func TestWatermarkEmptyStore(t *testing.T) {
	store := newFakeStore(watermarkSchema().Columns)

	if got := Watermark(context.Background(), store, watermarkSchema(), 1048576); got != nil {
		t.Errorf("Expected nil watermark for store without data rows, got %v", got)
	}
}

func TestWatermarkUnparsableCell(t *testing.T) {
	store := newFakeStore(
		watermarkSchema().Columns,
		[]string{"Лот 1", "мусор вместо даты"},
	)

	if got := Watermark(context.Background(), store, watermarkSchema(), 1048576); got != nil {
		t.Errorf("Expected nil watermark for unparsable cell, got %v", got)
	}
}

func TestWatermarkMissingColumn(t *testing.T) {
	schema := NewSchema([]string{"Title", ColCadastral, ColGeoData, ColGeoError, ColUnsorted})
	store := newFakeStore(schema.Columns)

	if got := Watermark(context.Background(), store, schema, 1048576); got != nil {
		t.Errorf("Expected nil watermark without a pubdate column, got %v", got)
	}
}
