package plaintext

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/h2non/filetype"
)

// sniffLen covers every signature filetype knows about.
const sniffLen = 261

var extraTextTypes = map[string]string{
	".md":   "text/markdown",
	".csv":  "text/csv",
	".log":  "text/plain",
	".yaml": "text/yaml",
	".yml":  "text/yaml",
	".ini":  "text/plain",
	".rst":  "text/x-rst",
}

var registerOnce sync.Once

func registerTextTypes() {
	registerOnce.Do(func() {
		for ext, typ := range extraTextTypes {
			if err := mime.AddExtensionType(ext, typ); err != nil {
				slog.Debug("mime_type_register_failed", "extension", ext, "error", err)
			}
		}
	})
}

// Extractor reads UTF-8 text files from the local filesystem.
type Extractor struct{}

func NewExtractor() *Extractor {
	registerTextTypes()
	return &Extractor{}
}

// Extract returns the file content verbatim.
func (e *Extractor) Extract(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read source document: %w", err)
	}
	if !utf8.Valid(raw) {
		return "", fmt.Errorf("unsupported encoding, expected utf-8: %s", filepath.Base(path))
	}
	return string(raw), nil
}

// ExtractGuessed handles extensions without a dedicated parser. Only names
// that map to a text/* MIME type are read; anything else yields empty text.
func (e *Extractor) ExtractGuessed(ctx context.Context, path string) (string, error) {
	mimeType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if !strings.HasPrefix(mimeType, "text/") {
		return "", nil
	}

	binary, err := looksBinary(path)
	if err != nil {
		return "", err
	}
	if binary {
		slog.Debug("binary_content_in_text_file", "path", path, "mime", mimeType)
		return "", nil
	}
	return e.Extract(ctx, path)
}

func looksBinary(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("open source document: %w", err)
	}
	defer f.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("read source header: %w", err)
	}
	kind, err := filetype.Match(head[:n])
	if err != nil {
		return false, nil
	}
	return kind != filetype.Unknown, nil
}
