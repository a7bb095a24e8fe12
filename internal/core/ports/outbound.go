package ports

import (
	"context"
	"time"

	"github.com/kirillkom/doc-cataloger/internal/core/domain"
)

// TextExtractor extracts plain text from a file on disk.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (string, error)
}

// DocumentClassifier assigns a category and summary to extracted text.
type DocumentClassifier interface {
	Classify(ctx context.Context, text, instructions string) (domain.Classification, error)
}

// CompletionClient sends one prompt to the classification service.
type CompletionClient interface {
	Complete(ctx context.Context, req domain.CompletionRequest) (string, error)
}

// Chunker splits text into classification-sized chunks.
type Chunker interface {
	Split(text string) []string
}

// CategoryResolver maps a category to an output folder, creating it when needed.
type CategoryResolver interface {
	Resolve(ctx context.Context, outputRoot, category string) (domain.CategoryFolder, error)
}

// FilePlacer copies a source file into a target folder.
type FilePlacer interface {
	Place(ctx context.Context, sourcePath, targetDir, filename string) (string, error)
}

// DescriptionLog appends one entry per processed file.
type DescriptionLog interface {
	Append(ctx context.Context, outputRoot string, entry domain.DescriptionEntry) error
}

// RunObserver receives per-file outcomes.
type RunObserver interface {
	StartFile()
	FinishFile(result domain.FileResult, duration time.Duration)
}
