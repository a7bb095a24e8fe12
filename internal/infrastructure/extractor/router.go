// Package extractor turns files of the supported office, PDF and text
// formats into plain text.
package extractor

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/kirillkom/doc-cataloger/internal/core/domain"
	"github.com/kirillkom/doc-cataloger/internal/infrastructure/extractor/plaintext"
)

// Router dispatches on the lower-cased file extension. Parser failures are
// logged and reported as ErrExtraction with empty text so the caller can
// skip the file.
type Router struct {
	text *plaintext.Extractor
}

func NewRouter() *Router {
	return &Router{text: plaintext.NewExtractor()}
}

func (r *Router) Extract(ctx context.Context, path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))

	var (
		text string
		err  error
	)
	switch ext {
	case ".pdf":
		text, err = extractPDF(ctx, path)
	case ".doc", ".docx":
		text, err = extractDOCX(ctx, path)
	case ".xls", ".xlsx":
		text, err = extractXLSX(ctx, path)
	case ".txt", ".py", ".php", ".html", ".js", ".css":
		text, err = r.text.Extract(ctx, path)
	default:
		text, err = r.text.ExtractGuessed(ctx, path)
	}
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", err
		}
		slog.Warn("text_extraction_failed", "path", path, "extension", ext, "error", err)
		return "", domain.WrapError(domain.ErrExtraction, "extract "+filepath.Base(path), err)
	}
	return text, nil
}
