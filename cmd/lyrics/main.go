// Package main implements the lyrics CLI: a first-order word Markov chain
// trained on a text corpus, with frequency reports, a terminal bar chart, and
// temperature-controlled sentence generation.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/CTAG07/Origami/pkg/markov"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// Words probed by the default run.
var (
	probeWords       = []string{"wildest", "shake"}
	probeTemperature = 1.0
	sentenceStart    = "you"
	sentenceCount    = 5
)

func main() {
	// Interrupting a long training run rolls its transaction back.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	configPath      string
	dbPath          string
	modelName       string
	corpusPath      string
	logLevel        string
	lowercase       bool
	trimPunctuation bool
	seed            uint64
}

// loadConfig reads the config file when one was given and applies the flags
// that were set explicitly on top of it.
func (o *rootOptions) loadConfig(cmd *cobra.Command) (*Config, error) {
	config := DefaultConfig()
	if o.configPath != "" {
		var err error
		if config, err = LoadConfig(o.configPath); err != nil {
			return nil, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("db") {
		config.DatabasePath = o.dbPath
	}
	if flags.Changed("model") {
		config.ModelName = o.modelName
	}
	if flags.Changed("corpus") {
		config.CorpusPath = o.corpusPath
	}
	if flags.Changed("log-level") {
		config.LogLevel = o.logLevel
	}
	if flags.Changed("lowercase") {
		config.Lowercase = o.lowercase
	}
	if flags.Changed("trim-punctuation") {
		config.TrimPunctuation = o.trimPunctuation
	}
	return config, nil
}

// withApp opens an App for the duration of fn.
func (o *rootOptions) withApp(cmd *cobra.Command, fn func(ctx context.Context, app *App) error) error {
	config, err := o.loadConfig(cmd)
	if err != nil {
		return err
	}

	app, err := NewApp(config, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := app.Close(); closeErr != nil {
			app.logger.Error("Failed to close database", "error", closeErr)
		}
	}()

	if cmd.Flags().Changed("seed") {
		app.SetSeed(o.seed)
	}

	return fn(cmd.Context(), app)
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "lyrics",
		Short: "Word Markov chain over a lyrics corpus",
		Long: `lyrics trains a first-order word Markov chain on a text corpus and uses it to
report word frequencies, chart them, and generate sentences.

Run without a subcommand it trains the corpus, samples the words that follow
"wildest" and "shake", generates five sentences starting with "you", and
draws the top word frequencies.

Examples:
  # Default run over ./lyrics.txt
  lyrics

  # Keep the model on disk and generate from it
  lyrics --db ./lyrics.db train songs.txt
  lyrics --db ./lyrics.db generate love --count 3 --temperature 0.5`,
		Version:      fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, BuildDate),
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withApp(cmd, func(ctx context.Context, app *App) error {
				return runDefault(ctx, cmd.OutOrStdout(), app)
			})
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to a JSON config file (created with defaults if missing)")
	flags.StringVar(&opts.dbPath, "db", "", "SQLite data source (default \":memory:\")")
	flags.StringVar(&opts.modelName, "model", "", "model name (default \"lyrics\")")
	flags.StringVar(&opts.corpusPath, "corpus", "", "corpus used when the model is empty (default \"lyrics.txt\")")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.BoolVar(&opts.lowercase, "lowercase", false, "lowercase words while tokenizing")
	flags.BoolVar(&opts.trimPunctuation, "trim-punctuation", false, "strip leading and trailing punctuation from words")
	flags.Uint64Var(&opts.seed, "seed", 0, "seed for reproducible sampling")

	cmd.AddCommand(
		newTrainCmd(opts),
		newReportCmd(opts),
		newChartCmd(opts),
		newNextCmd(opts),
		newGenerateCmd(opts),
		newStatsCmd(opts),
		newPruneCmd(opts),
		newExportCmd(opts),
		newImportCmd(opts),
	)

	return cmd
}

// runDefault performs the full walkthrough: next-word probes, generated
// sentences, and the frequency chart.
func runDefault(ctx context.Context, w io.Writer, app *App) error {
	model, err := app.Model(ctx, true)
	if err != nil {
		return err
	}

	for _, word := range probeWords {
		next, err := app.mg.NextWord(ctx, model, word, app.generateOptions(probeTemperature, app.config.MaxLength)...)
		switch {
		case errors.Is(err, markov.ErrWordNotFound):
			app.logger.Warn("Probe word not in corpus", "word", word)
			continue
		case errors.Is(err, markov.ErrDeadEnd):
			next = "(none)"
		case err != nil:
			return err
		}
		fmt.Fprintf(w, "Most likely word after '%s': %s\n", word, next)
	}

	err = printSentences(ctx, w, app, model, sentenceStart, sentenceCount, app.config.Temperature, app.config.MaxLength)
	if errors.Is(err, markov.ErrWordNotFound) {
		app.logger.Warn("Start word not in corpus", "word", sentenceStart)
	} else if err != nil {
		return err
	}

	fmt.Fprintln(w)
	return printChart(ctx, w, app, model, app.config.TopWords, app.config.ChartWidth, app.config.ChartHeight, "")
}
