package extractor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ledongthuc/pdf"
)

// extractPDF joins per-page plain text with "\n". Pages without a content
// stream or with undecodable text contribute an empty line.
func extractPDF(ctx context.Context, path string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("pdf parser panic: %v", r)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	total := reader.NumPage()
	pages := make([]string, 0, total)
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		pages = append(pages, pageText(i, func() (string, error) { return page.GetPlainText(nil) }))
	}
	return strings.Join(pages, "\n"), nil
}

// pageText isolates one page: an error or parser panic yields an empty page.
func pageText(num int, extract func() (string, error)) (text string) {
	defer func() {
		if r := recover(); r != nil {
			slog.Debug("pdf_page_panic", "page", num, "panic", r)
			text = ""
		}
	}()
	content, err := extract()
	if err != nil {
		return ""
	}
	return content
}
