package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kirillkom/doc-cataloger/internal/core/domain"
	"github.com/kirillkom/doc-cataloger/internal/core/ports"
	"github.com/kirillkom/doc-cataloger/internal/infrastructure/resilience"
)

type Options struct {
	MaxTokens   int
	Temperature float64
	// Structured asks the service for {"category","summary"} JSON per chunk.
	Structured bool
}

func DefaultOptions() Options {
	return Options{MaxTokens: 500, Temperature: 0.5}
}

// ChunkObserver is notified once per classified chunk.
type ChunkObserver interface {
	ObserveChunk()
}

// Classifier sends a document to the classification service one chunk at a
// time, in order. Any chunk that cannot be classified fails the document.
type Classifier struct {
	client   ports.CompletionClient
	chunker  ports.Chunker
	executor *resilience.Executor
	opts     Options
	observer ChunkObserver
}

func New(client ports.CompletionClient, chunker ports.Chunker, executor *resilience.Executor, opts Options) *Classifier {
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultOptions().MaxTokens
	}
	return &Classifier{
		client:   client,
		chunker:  chunker,
		executor: executor,
		opts:     opts,
	}
}

func (c *Classifier) WithObserver(observer ChunkObserver) *Classifier {
	c.observer = observer
	return c
}

func (c *Classifier) Classify(ctx context.Context, text, instructions string) (domain.Classification, error) {
	chunks := c.chunker.Split(text)
	if len(chunks) == 0 {
		return domain.Classification{}, domain.WrapError(domain.ErrInvalidInput, "classify", errors.New("empty text"))
	}

	replies := make([]string, 0, len(chunks))
	for idx, chunk := range chunks {
		reply, err := c.classifyChunk(ctx, chunk, instructions)
		if err != nil {
			return domain.Classification{}, domain.WrapError(
				domain.ErrClassificationFailed,
				fmt.Sprintf("classify chunk %d/%d", idx+1, len(chunks)),
				err,
			)
		}
		replies = append(replies, strings.TrimSpace(reply))
		if c.observer != nil {
			c.observer.ObserveChunk()
		}
	}

	var result domain.Classification
	if c.opts.Structured {
		result = mergeStructured(replies)
	} else {
		joined := strings.TrimSpace(strings.Join(replies, "\n"))
		result = domain.Classification{Category: joined, Summary: joined, Raw: joined}
	}
	if strings.TrimSpace(result.Category) == "" {
		return domain.Classification{}, domain.WrapError(domain.ErrClassificationFailed, "classify", errors.New("empty category"))
	}
	slog.Debug("document_classified", "chunks", len(chunks), "category", result.Category)
	return result, nil
}

func (c *Classifier) classifyChunk(ctx context.Context, chunk, instructions string) (string, error) {
	req := domain.CompletionRequest{
		System:      systemPrompt,
		User:        buildPrompt(chunk, instructions, c.opts.Structured),
		MaxTokens:   c.opts.MaxTokens,
		Temperature: c.opts.Temperature,
		JSON:        c.opts.Structured,
	}

	var reply string
	err := c.executor.Execute(ctx, "classify.chunk", func(callCtx context.Context) error {
		out, err := c.client.Complete(callCtx, req)
		if err != nil {
			return err
		}
		reply = out
		return nil
	}, classifyServiceError)
	return reply, err
}

func classifyServiceError(err error) resilience.ErrorClassification {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
	}
	if domain.IsKind(err, domain.ErrTemporary) {
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}
	return resilience.ErrorClassification{Retryable: false, RecordFailure: true}
}

type structuredReply struct {
	Category string `json:"category"`
	Summary  string `json:"summary"`
}

// mergeStructured takes the category from the first chunk that names one and
// joins all summaries. Unparseable replies count as free text for both.
func mergeStructured(replies []string) domain.Classification {
	var category string
	summaries := make([]string, 0, len(replies))
	for _, raw := range replies {
		var parsed structuredReply
		if err := json.Unmarshal([]byte(extractJSONObject(raw)), &parsed); err != nil {
			parsed = structuredReply{Category: raw, Summary: raw}
		}
		if category == "" {
			category = strings.TrimSpace(parsed.Category)
		}
		if s := strings.TrimSpace(parsed.Summary); s != "" {
			summaries = append(summaries, s)
		}
	}
	return domain.Classification{
		Category: category,
		Summary:  strings.Join(summaries, "\n"),
		Raw:      strings.Join(replies, "\n"),
	}
}
