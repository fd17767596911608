package ai

import (
	"database/sql"

	"go.uber.org/zap"

	"github.com/awtools/aw-analyzer/ai/openrouter"
	"github.com/awtools/aw-analyzer/config"
)

// New selects the analyzer for the current configuration. A configured
// OpenRouter API key gets the LLM-backed analyzer; without one the
// deterministic fallback composes the same shape locally. usageDB may be
// nil, in which case LLM calls are not recorded.
func New(cfg *config.Config, usageDB *sql.DB, logger *zap.SugaredLogger) Analyzer {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	if cfg.OpenRouter.APIKey == "" {
		logger.Infow("OpenRouter API key not configured, using deterministic fallback analyzer")
		return NewFallback()
	}

	client := openrouter.NewClient(openrouter.Config{
		APIKey:      cfg.OpenRouter.APIKey,
		Model:       cfg.OpenRouter.Model,
		Temperature: cfg.OpenRouter.Temperature,
		MaxTokens:   cfg.OpenRouter.MaxTokens,
		Logger:      logger,
		DB:          usageDB,
	})
	return NewLLM(client, logger)
}
