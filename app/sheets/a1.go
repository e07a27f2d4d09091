package sheets

import "fmt"

// ColumnLetter converts a 1-based column index to its A1 letter form
// (1 -> A, 26 -> Z, 27 -> AA).
func ColumnLetter(col int) string {
	letters := ""
	for col > 0 {
		col--
		letters = string(rune('A'+col%26)) + letters
		col /= 26
	}
	return letters
}

func (c *Client) cellRange(col, row int) string {
	return fmt.Sprintf("%s!%s%d", c.sheetName, ColumnLetter(col), row)
}

func (c *Client) columnRange(col, fromRow, toRow int) string {
	letter := ColumnLetter(col)
	return fmt.Sprintf("%s!%s%d:%s%d", c.sheetName, letter, fromRow, letter, toRow)
}

func (c *Client) rowRange(row int) string {
	return fmt.Sprintf("%s!%d:%d", c.sheetName, row, row)
}
