package localfs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/kirillkom/doc-cataloger/internal/core/domain"
)

const (
	DefaultLogFilename   = "all_descriptions.txt"
	DefaultExcerptLength = 1000
)

// DescriptionLog appends one block per processed file to a single flat log at
// the output root. Writers must be serialized by the caller.
type DescriptionLog struct {
	filename      string
	excerptLength int
}

func NewDescriptionLog(filename string, excerptLength int) *DescriptionLog {
	if filename == "" {
		filename = DefaultLogFilename
	}
	if excerptLength <= 0 {
		excerptLength = DefaultExcerptLength
	}
	return &DescriptionLog{filename: filename, excerptLength: excerptLength}
}

func (l *DescriptionLog) Path(outputRoot string) string {
	return filepath.Join(outputRoot, l.filename)
}

func (l *DescriptionLog) Append(ctx context.Context, outputRoot string, entry domain.DescriptionEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := os.OpenFile(l.Path(outputRoot), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open description log: %w", err)
	}
	return writeBlock(f, l.format(entry))
}

// writeBlock writes the block and closes f, returning the close error.
func writeBlock(f io.WriteCloser, block string) error {
	if _, err := io.WriteString(f, block); err != nil {
		_ = f.Close()
		return fmt.Errorf("write description log: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close description log: %w", err)
	}
	return nil
}

func (l *DescriptionLog) format(entry domain.DescriptionEntry) string {
	return fmt.Sprintf("File: %s\nCategory: %s\nDescription:\n%s...\n\n",
		entry.Filename,
		entry.Category,
		Truncate(entry.Text, l.excerptLength),
	)
}
