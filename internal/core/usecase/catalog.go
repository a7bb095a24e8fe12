package usecase

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/doc-cataloger/internal/core/domain"
	"github.com/kirillkom/doc-cataloger/internal/core/ports"
)

const DefaultQueueSize = 16

type CatalogOptions struct {
	QueueSize   int
	FileTimeout time.Duration
}

type CatalogUseCase struct {
	extractor  ports.TextExtractor
	classifier ports.DocumentClassifier
	resolver   ports.CategoryResolver
	placer     ports.FilePlacer
	descLog    ports.DescriptionLog
	observer   ports.RunObserver
	opts       CatalogOptions
}

func NewCatalogUseCase(
	extractor ports.TextExtractor,
	classifier ports.DocumentClassifier,
	resolver ports.CategoryResolver,
	placer ports.FilePlacer,
	descLog ports.DescriptionLog,
	opts CatalogOptions,
) *CatalogUseCase {
	if opts.QueueSize <= 0 {
		opts.QueueSize = DefaultQueueSize
	}
	return &CatalogUseCase{
		extractor:  extractor,
		classifier: classifier,
		resolver:   resolver,
		placer:     placer,
		descLog:    descLog,
		opts:       opts,
	}
}

func (uc *CatalogUseCase) WithObserver(observer ports.RunObserver) *CatalogUseCase {
	uc.observer = observer
	return uc
}

type walkItem struct {
	path  string
	entry fs.DirEntry
	err   error
}

// Run catalogs every file under inputRoot into outputRoot. Per-file problems
// are recorded in the report; placement and description log failures end the
// run with an error naming the file. The partial report is always returned.
func (uc *CatalogUseCase) Run(ctx context.Context, inputRoot, outputRoot, instructions string) (*domain.RunReport, error) {
	inputAbs, outputAbs, err := resolveRoots(inputRoot, outputRoot)
	if err != nil {
		return nil, err
	}

	report := &domain.RunReport{
		RunID:      uuid.NewString(),
		InputRoot:  inputAbs,
		OutputRoot: outputAbs,
		StartedAt:  time.Now().UTC(),
	}
	logger := slog.With("run_id", report.RunID)
	logger.Info("catalog_run_started", "input", inputAbs, "output", outputAbs)

	walkCtx, cancelWalk := context.WithCancel(ctx)
	defer cancelWalk()

	items := make(chan walkItem, uc.opts.QueueSize)
	walkDone := make(chan error, 1)
	go func() {
		defer close(items)
		walkDone <- walkInput(walkCtx, inputAbs, outputAbs, items)
	}()

	var runErr error
	for item := range items {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		result, err := uc.processItem(ctx, logger, item, outputAbs, instructions)
		report.Add(result)
		if err != nil {
			runErr = err
			break
		}
	}

	cancelWalk()
	for range items {
	}
	walkErr := <-walkDone
	if runErr == nil {
		if err := ctx.Err(); err != nil {
			runErr = err
		} else if walkErr != nil {
			runErr = fmt.Errorf("walk input tree: %w", walkErr)
		}
	}

	report.FinishedAt = time.Now().UTC()
	logger.Info("catalog_run_finished",
		"processed", report.Count(domain.FileProcessed),
		"skipped", report.Count(domain.FileSkipped),
		"failed", report.Count(domain.FileFailed),
		"duration_ms", report.FinishedAt.Sub(report.StartedAt).Milliseconds(),
		"error", runErr,
	)
	return report, runErr
}

func resolveRoots(inputRoot, outputRoot string) (string, string, error) {
	if strings.TrimSpace(inputRoot) == "" || strings.TrimSpace(outputRoot) == "" {
		return "", "", domain.WrapError(domain.ErrInvalidInput, "catalog run", errors.New("input and output directories are required"))
	}
	inputAbs, err := filepath.Abs(inputRoot)
	if err != nil {
		return "", "", domain.WrapError(domain.ErrInvalidInput, "resolve input directory", err)
	}
	outputAbs, err := filepath.Abs(outputRoot)
	if err != nil {
		return "", "", domain.WrapError(domain.ErrInvalidInput, "resolve output directory", err)
	}
	if inputAbs == outputAbs {
		return "", "", domain.WrapError(domain.ErrInvalidInput, "catalog run", errors.New("output directory must differ from input directory"))
	}
	// Category folders of the output would receive copies of their own files.
	if isWithin(outputAbs, inputAbs) {
		return "", "", domain.WrapError(domain.ErrInvalidInput, "catalog run", errors.New("input directory must not be inside the output directory"))
	}
	info, err := os.Stat(inputAbs)
	if err != nil {
		return "", "", domain.WrapError(domain.ErrInvalidInput, "stat input directory", err)
	}
	if !info.IsDir() {
		return "", "", domain.WrapError(domain.ErrInvalidInput, "catalog run", fmt.Errorf("%s is not a directory", inputAbs))
	}
	return inputAbs, outputAbs, nil
}

// isWithin reports whether path lies strictly below root.
func isWithin(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// walkInput feeds files in lexical order. Symlinked directories are not
// followed, and an output root nested in the input is not descended into.
func walkInput(ctx context.Context, root, outputRoot string, items chan<- walkItem) error {
	send := func(item walkItem) error {
		select {
		case items <- item:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return send(walkItem{path: path, entry: d, err: err})
		}
		if d.IsDir() {
			if path == outputRoot {
				return fs.SkipDir
			}
			return nil
		}
		return send(walkItem{path: path, entry: d})
	})
}

func (uc *CatalogUseCase) processItem(
	ctx context.Context,
	logger *slog.Logger,
	item walkItem,
	outputRoot string,
	instructions string,
) (domain.FileResult, error) {
	started := time.Now()
	if uc.observer != nil {
		uc.observer.StartFile()
	}

	result, err := uc.processFile(ctx, item, outputRoot, instructions)
	result.Path = item.path
	result.Duration = time.Since(started)

	if uc.observer != nil {
		uc.observer.FinishFile(result, result.Duration)
	}
	logResult(logger, result)
	return result, err
}

func (uc *CatalogUseCase) processFile(ctx context.Context, item walkItem, outputRoot, instructions string) (domain.FileResult, error) {
	if item.err != nil {
		return skipped(domain.ReasonWalkError, item.err), nil
	}
	if !isRegularFile(item) {
		return skipped(domain.ReasonNotRegular, nil), nil
	}

	fileCtx := ctx
	if uc.opts.FileTimeout > 0 {
		var cancel context.CancelFunc
		fileCtx, cancel = context.WithTimeout(ctx, uc.opts.FileTimeout)
		defer cancel()
	}

	doc := domain.Document{
		Path:      item.path,
		Filename:  filepath.Base(item.path),
		Extension: strings.ToLower(filepath.Ext(item.path)),
	}

	text, err := uc.extractor.Extract(fileCtx, doc.Path)
	if err != nil {
		if ctx.Err() != nil {
			return skipped(domain.ReasonExtractionFailed, err), ctx.Err()
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return failed(domain.ReasonTimeout, err), nil
		}
		return skipped(domain.ReasonExtractionFailed, err), nil
	}
	if strings.TrimSpace(text) == "" {
		return skipped(domain.ReasonEmptyText, nil), nil
	}
	doc.Text = text

	classification, err := uc.classifier.Classify(fileCtx, doc.Text, instructions)
	if err != nil {
		if ctx.Err() != nil {
			return failed(domain.ReasonClassificationFailed, err), ctx.Err()
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return failed(domain.ReasonTimeout, err), nil
		}
		return failed(domain.ReasonClassificationFailed, err), nil
	}

	// A classified file is always placed and logged together; cancellation
	// takes effect before the next file.
	placeCtx := context.WithoutCancel(fileCtx)

	folder, err := uc.resolver.Resolve(placeCtx, outputRoot, classification.Category)
	if err != nil {
		res := failed(domain.ReasonPlacementFailed, err)
		res.Category = classification.Category
		return res, fmt.Errorf("catalog %s: resolve category folder: %w", doc.Path, err)
	}

	destination, err := uc.placer.Place(placeCtx, doc.Path, folder.Path, doc.Filename)
	if err != nil {
		if domain.IsKind(err, domain.ErrSourceMissing) {
			res := skipped(domain.ReasonSourceMissing, err)
			res.Category = classification.Category
			return res, nil
		}
		res := failed(domain.ReasonPlacementFailed, err)
		res.Category = classification.Category
		return res, fmt.Errorf("catalog %s: place file: %w", doc.Path, err)
	}

	entry := domain.DescriptionEntry{
		Filename: doc.Filename,
		Category: classification.Category,
		Text:     doc.Text,
	}
	if err := uc.descLog.Append(placeCtx, outputRoot, entry); err != nil {
		res := failed(domain.ReasonLogFailed, err)
		res.Category = classification.Category
		res.Destination = destination
		return res, fmt.Errorf("catalog %s: append description: %w", doc.Path, err)
	}

	return domain.FileResult{
		Status:      domain.FileProcessed,
		Category:    classification.Category,
		Destination: destination,
	}, nil
}

// isRegularFile accepts regular files and symlinks that resolve to one.
func isRegularFile(item walkItem) bool {
	if item.entry == nil {
		return false
	}
	mode := item.entry.Type()
	if mode.IsRegular() {
		return true
	}
	if mode&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(item.path)
	return err == nil && info.Mode().IsRegular()
}

func skipped(reason string, err error) domain.FileResult {
	return domain.FileResult{Status: domain.FileSkipped, Reason: reason, Error: errString(err)}
}

func failed(reason string, err error) domain.FileResult {
	return domain.FileResult{Status: domain.FileFailed, Reason: reason, Error: errString(err)}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func logResult(logger *slog.Logger, result domain.FileResult) {
	switch result.Status {
	case domain.FileProcessed:
		logger.Info("file_processed",
			"path", result.Path,
			"category", result.Category,
			"destination", result.Destination,
			"duration_ms", result.Duration.Milliseconds(),
		)
	case domain.FileSkipped:
		logger.Info("file_skipped", "path", result.Path, "reason", result.Reason, "error", result.Error)
	default:
		logger.Warn("file_failed", "path", result.Path, "reason", result.Reason, "error", result.Error)
	}
}
