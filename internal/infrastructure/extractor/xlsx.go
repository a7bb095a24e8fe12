package extractor

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/xuri/excelize/v2"
)

// extractXLSX renders every sheet as its name followed by a column-aligned
// table of its rows.
func extractXLSX(ctx context.Context, path string) (string, error) {
	book, err := excelize.OpenFile(path)
	if err != nil {
		return "", fmt.Errorf("open workbook: %w", err)
	}
	defer book.Close()

	var out strings.Builder
	for idx, sheet := range book.GetSheetList() {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		rows, err := book.GetRows(sheet)
		if err != nil {
			return "", fmt.Errorf("read sheet %q: %w", sheet, err)
		}
		if idx > 0 {
			out.WriteByte('\n')
		}
		out.WriteString(sheet)
		out.WriteByte('\n')

		table := tabwriter.NewWriter(&out, 0, 0, 2, ' ', 0)
		for _, row := range rows {
			fmt.Fprintln(table, strings.Join(row, "\t"))
		}
		if err := table.Flush(); err != nil {
			return "", fmt.Errorf("render sheet %q: %w", sheet, err)
		}
	}
	return out.String(), nil
}
