package commands

import (
	"database/sql"

	"github.com/awtools/aw-analyzer/ai"
	"github.com/awtools/aw-analyzer/config"
	"github.com/awtools/aw-analyzer/db"
	"github.com/awtools/aw-analyzer/errors"
	"github.com/awtools/aw-analyzer/logger"
)

// openUsageDatabase opens and migrates the LLM usage database at the
// configured path.
func openUsageDatabase(cfg *config.Config) (*sql.DB, error) {
	path := cfg.GetUsageDBPath()
	database, err := db.OpenWithMigrations(path, logger.Logger)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open usage database at %s", path)
	}
	return database, nil
}

// buildAnalyzer wires the analyzer, with usage tracking when enabled.
// The returned closer releases the usage database. A database that
// cannot be opened downgrades to untracked analysis rather than
// blocking the run.
func buildAnalyzer(cfg *config.Config) (ai.Analyzer, func()) {
	if !cfg.Usage.Enabled {
		return ai.New(cfg, nil, logger.Logger), func() {}
	}
	database, err := openUsageDatabase(cfg)
	if err != nil {
		logger.Warnw("Usage tracking unavailable", "error", err)
		return ai.New(cfg, nil, logger.Logger), func() {}
	}
	return ai.New(cfg, database, logger.Logger), func() { _ = database.Close() }
}
