package sheets

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cenkalti/backoff/v4"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const apiMaxRetries = 5

var _ Store = (*Client)(nil)

// Client implements Store on top of a single Google Sheets worksheet.
type Client struct {
	service   *sheets.Service
	sheetID   string
	sheetName string
}

func NewClient(ctx context.Context, sheetID, sheetName, credentialsJSON string) (*Client, error) {
	service, err := sheets.NewService(ctx, option.WithCredentialsJSON([]byte(credentialsJSON)))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Client{
		service:   service,
		sheetID:   sheetID,
		sheetName: sheetName,
	}, nil
}

func (c *Client) RowCount(ctx context.Context) (int, error) {
	var spreadsheet *sheets.Spreadsheet
	err := c.withRetry(func() error {
		var err error
		spreadsheet, err = c.service.Spreadsheets.Get(c.sheetID).
			Fields("sheets.properties").Context(ctx).Do()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to get spreadsheet properties: %w", err)
	}

	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == c.sheetName {
			if sheet.Properties.GridProperties == nil {
				break
			}
			return int(sheet.Properties.GridProperties.RowCount), nil
		}
	}

	return 0, fmt.Errorf("worksheet %q not found in spreadsheet", c.sheetName)
}

func (c *Client) ReadRow(ctx context.Context, row int) ([]string, error) {
	values, err := c.readRange(ctx, c.rowRange(row))
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, nil
	}
	return values[0], nil
}

func (c *Client) ReadCell(ctx context.Context, col, row int) (string, error) {
	values, err := c.readRange(ctx, c.cellRange(col, row))
	if err != nil {
		return "", err
	}
	if len(values) == 0 || len(values[0]) == 0 {
		return "", nil
	}
	return values[0][0], nil
}

func (c *Client) ReadColumn(ctx context.Context, col, fromRow, toRow int) ([]string, error) {
	if toRow < fromRow {
		return nil, fmt.Errorf("invalid column range: rows %d-%d", fromRow, toRow)
	}

	values, err := c.readRange(ctx, c.columnRange(col, fromRow, toRow))
	if err != nil {
		return nil, err
	}

	// The API omits trailing empty cells; pad to the requested span.
	column := make([]string, toRow-fromRow+1)
	for i, row := range values {
		if i >= len(column) {
			break
		}
		if len(row) > 0 {
			column[i] = row[0]
		}
	}
	return column, nil
}

func (c *Client) WriteRow(ctx context.Context, row int, values []string) error {
	return c.writeRange(ctx, c.rowRange(row), values)
}

func (c *Client) WriteCell(ctx context.Context, col, row int, value string) error {
	return c.writeRange(ctx, c.cellRange(col, row), []string{value})
}

func (c *Client) AppendRows(ctx context.Context, rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}

	valueRange := &sheets.ValueRange{Values: make([][]interface{}, 0, len(rows))}
	for _, row := range rows {
		valueRange.Values = append(valueRange.Values, toInterfaces(row))
	}

	err := c.withRetry(func() error {
		_, err := c.service.Spreadsheets.Values.Append(c.sheetID, c.sheetName+"!A1", valueRange).
			ValueInputOption("RAW").
			InsertDataOption("INSERT_ROWS").
			Context(ctx).Do()
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to append %d rows: %w", len(rows), err)
	}
	return nil
}

func (c *Client) readRange(ctx context.Context, rangeA1 string) ([][]string, error) {
	var resp *sheets.ValueRange
	err := c.withRetry(func() error {
		var err error
		resp, err = c.service.Spreadsheets.Values.Get(c.sheetID, rangeA1).Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read range %s: %w", rangeA1, err)
	}

	rows := make([][]string, 0, len(resp.Values))
	for _, rawRow := range resp.Values {
		row := make([]string, 0, len(rawRow))
		for _, cell := range rawRow {
			if str, ok := cell.(string); ok {
				row = append(row, str)
			} else {
				row = append(row, fmt.Sprint(cell))
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (c *Client) writeRange(ctx context.Context, rangeA1 string, values []string) error {
	valueRange := &sheets.ValueRange{
		Values: [][]interface{}{toInterfaces(values)},
	}

	err := c.withRetry(func() error {
		_, err := c.service.Spreadsheets.Values.Update(c.sheetID, rangeA1, valueRange).
			ValueInputOption("RAW").
			Context(ctx).Do()
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to write range %s: %w", rangeA1, err)
	}
	return nil
}

// withRetry retries transient API failures with exponential backoff.
// Quota and server-side errors are retryable; everything else is permanent.
func (c *Client) withRetry(operation func() error) error {
	return backoff.Retry(func() error {
		err := operation()
		if err == nil {
			return nil
		}
		if isTransient(err) {
			return err
		}
		return backoff.Permanent(err)
	}, backoff.WithMaxRetries(backoff.NewExponentialBackOff(), apiMaxRetries))
}

func isTransient(err error) bool {
	if apiErr, ok := err.(*googleapi.Error); ok {
		switch apiErr.Code {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
		return false
	}
	// Network-level failures have no status code; retry them.
	return true
}

func toInterfaces(values []string) []interface{} {
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	return row
}
