package bootstrap

import (
	"fmt"

	"github.com/kirillkom/doc-cataloger/internal/config"
	"github.com/kirillkom/doc-cataloger/internal/core/ports"
	"github.com/kirillkom/doc-cataloger/internal/core/usecase"
	"github.com/kirillkom/doc-cataloger/internal/infrastructure/chunking"
	"github.com/kirillkom/doc-cataloger/internal/infrastructure/extractor"
	"github.com/kirillkom/doc-cataloger/internal/infrastructure/llm/classifier"
	"github.com/kirillkom/doc-cataloger/internal/infrastructure/llm/ollama"
	"github.com/kirillkom/doc-cataloger/internal/infrastructure/llm/openai"
	"github.com/kirillkom/doc-cataloger/internal/infrastructure/resilience"
	"github.com/kirillkom/doc-cataloger/internal/infrastructure/storage/localfs"
	"github.com/kirillkom/doc-cataloger/internal/observability/metrics"
)

const ServiceName = "cataloger"

type App struct {
	Config  config.Config
	Metrics *metrics.CatalogMetrics

	CatalogUC ports.Cataloger
}

func New(cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client, err := newCompletionClient(cfg)
	if err != nil {
		return nil, err
	}

	catalogMetrics := metrics.NewCatalogMetrics(ServiceName)

	executor := resilience.NewExecutor(resilienceConfig(cfg))
	docClassifier := classifier.New(client, chunking.NewSplitter(cfg.ChunkSize), executor, classifier.Options{
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
		Structured:  cfg.StructuredOutput,
	}).WithObserver(catalogMetrics)

	resolver := localfs.NewResolver(localfs.ResolverConfig{
		Strategy:         cfg.MatchStrategy,
		Threshold:        cfg.MatchThreshold,
		LookupKeyLength:  cfg.LookupKeyLength,
		FolderNameLength: cfg.FolderNameLength,
	})
	placer := localfs.NewPlacer(localfs.PlacerConfig{
		FilenameMaxLength: cfg.FilenameMaxLength,
		PathMaxLength:     cfg.PathMaxLength,
		CollisionPolicy:   cfg.CollisionPolicy,
	})
	descLog := localfs.NewDescriptionLog(cfg.LogFilename, cfg.ExcerptLength)

	catalogUC := usecase.NewCatalogUseCase(
		extractor.NewRouter(),
		docClassifier,
		resolver,
		placer,
		descLog,
		usecase.CatalogOptions{
			QueueSize:   cfg.QueueSize,
			FileTimeout: cfg.FileTimeout,
		},
	).WithObserver(catalogMetrics)

	return &App{
		Config:    cfg,
		Metrics:   catalogMetrics,
		CatalogUC: catalogUC,
	}, nil
}

func newCompletionClient(cfg config.Config) (ports.CompletionClient, error) {
	switch cfg.LLMProvider {
	case config.ProviderOpenAI:
		return openai.New(openai.Config{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.OpenAIModel,
		}), nil
	case config.ProviderOllama:
		return ollama.New(cfg.OllamaURL, cfg.OllamaModel), nil
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.LLMProvider)
	}
}

func resilienceConfig(cfg config.Config) resilience.Config {
	out := resilience.DefaultConfig()
	out.RetryMaxAttempts = cfg.RetryMaxAttempts
	out.RetryInitialBackoff = cfg.RetryDelay
	out.RetryMaxBackoff = cfg.RetryDelay
	out.BreakerEnabled = cfg.BreakerEnabled
	out.RateLimitPerSecond = cfg.RateLimitRPS
	return out
}
