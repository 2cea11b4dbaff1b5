package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"strings"

	"github.com/CTAG07/Origami/pkg/markov"
)

// App wires the database, the generator, and the logger for a single run.
type App struct {
	config *Config
	db     *sql.DB
	logger *slog.Logger
	mg     *markov.Generator
	rng    *rand.Rand
}

// NewApp opens the configured database, sets up the schema, and prepares a
// generator. logOut receives the structured log output.
func NewApp(config *Config, logOut io.Writer) (*App, error) {
	logger := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: parseLogLevel(config.LogLevel)}))

	db, err := initDB(config.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if isMemoryDSN(config.DatabasePath) {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}
	if err = db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err = markov.SetupSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set up schema: %w", err)
	}

	tokenizer := markov.NewWhitespaceTokenizer(
		markov.WithLowercase(config.Lowercase),
		markov.WithTrimPunctuation(config.TrimPunctuation),
	)
	mg, err := markov.NewGenerator(db, tokenizer)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create markov generator: %w", err)
	}
	mg.SetLogger(logger)

	logger.Debug("Database ready", "path", config.DatabasePath)

	return &App{
		config: config,
		db:     db,
		logger: logger,
		mg:     mg,
	}, nil
}

// Close releases the generator and the database.
func (a *App) Close() error {
	a.mg.Close()
	return a.db.Close()
}

// SetSeed makes every sampling call of this run reproducible.
func (a *App) SetSeed(seed uint64) {
	a.rng = rand.New(rand.NewPCG(seed, seed))
}

// Model returns the configured model, creating it if needed. When autoTrain
// is set and the model holds no words yet, the configured corpus is trained
// into it first.
func (a *App) Model(ctx context.Context, autoTrain bool) (markov.ModelInfo, error) {
	model, err := a.mg.EnsureModel(ctx, a.config.ModelName)
	if err != nil {
		return markov.ModelInfo{}, err
	}
	if !autoTrain {
		return model, nil
	}

	stats, err := a.mg.GetModelStats(ctx, model)
	if err != nil {
		return markov.ModelInfo{}, err
	}
	if stats.TotalWords > 0 {
		return model, nil
	}
	if err = a.TrainFile(ctx, model, a.config.CorpusPath); err != nil {
		return markov.ModelInfo{}, err
	}
	return model, nil
}

// TrainFile trains model on the corpus at path.
func (a *App) TrainFile(ctx context.Context, model markov.ModelInfo, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open corpus: %w", err)
	}
	defer f.Close()

	a.logger.Info("Training model", "model", model.Name, "corpus", path)
	if err = a.mg.Train(ctx, model, f); err != nil {
		return fmt.Errorf("failed to train model %q: %w", model.Name, err)
	}
	return nil
}

// generateOptions builds the sampling options from the config, with
// temperature and maxLength overriding it when set.
func (a *App) generateOptions(temperature float64, maxLength int) []markov.GenerateOption {
	opts := []markov.GenerateOption{
		markov.WithTemperature(temperature),
		markov.WithMaxLength(maxLength),
	}
	if a.rng != nil {
		opts = append(opts, markov.WithRand(a.rng))
	}
	return opts
}

func isMemoryDSN(dataSource string) bool {
	return strings.Contains(dataSource, ":memory:") || strings.Contains(dataSource, "mode=memory")
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
