package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/CTAG07/Origami/pkg/markov"
	"github.com/CTAG07/Origami/pkg/report"
)

func newTrainCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "train [corpus]",
		Short: "Train the model on a corpus file",
		Long: `Train reads a corpus and adds its word and transition counts to the model.
Training the same model twice accumulates counts. The corpus defaults to the
configured corpus path.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, app *App) error {
				path := app.config.CorpusPath
				if len(args) == 1 {
					path = args[0]
				}

				model, err := app.Model(ctx, false)
				if err != nil {
					return err
				}
				if err = app.TrainFile(ctx, model, path); err != nil {
					return err
				}

				stats, err := app.mg.GetModelStats(ctx, model)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Trained model %q: %d words (%d unique), %d transitions (%d unique)\n",
					model.Name, stats.TotalWords, stats.UniqueWords, stats.TotalTransitions, stats.UniqueTransitions)
				return nil
			})
		},
	}
}

func newReportCmd(opts *rootOptions) *cobra.Command {
	var top int

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the most frequent words as a table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withApp(cmd, func(ctx context.Context, app *App) error {
				if !cmd.Flags().Changed("top") {
					top = app.config.TopWords
				}

				model, err := app.Model(ctx, true)
				if err != nil {
					return err
				}
				counts, err := app.mg.WordFrequencies(ctx, model, top)
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Top %d most frequent words:\n%s\n", len(counts), report.FrequencyTable(counts))
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&top, "top", report.DefaultTopWords, "number of words to list (0 = all)")
	return cmd
}

func newChartCmd(opts *rootOptions) *cobra.Command {
	var (
		top    int
		width  int
		height int
		out    string
	)

	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Draw a bar chart of the most frequent words",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withApp(cmd, func(ctx context.Context, app *App) error {
				flags := cmd.Flags()
				if !flags.Changed("top") {
					top = app.config.TopWords
				}
				if !flags.Changed("width") {
					width = app.config.ChartWidth
				}
				if !flags.Changed("height") {
					height = app.config.ChartHeight
				}

				model, err := app.Model(ctx, true)
				if err != nil {
					return err
				}
				return printChart(ctx, cmd.OutOrStdout(), app, model, top, width, height, out)
			})
		},
	}

	cmd.Flags().IntVar(&top, "top", report.DefaultTopWords, "number of words to chart")
	cmd.Flags().IntVar(&width, "width", 72, "chart width in columns")
	cmd.Flags().IntVar(&height, "height", 22, "chart height in rows")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the chart to this file instead of stdout")
	return cmd
}

func newNextCmd(opts *rootOptions) *cobra.Command {
	var temperature float64

	cmd := &cobra.Command{
		Use:   "next <word>",
		Short: "Sample the word that follows a word",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, app *App) error {
				model, err := app.Model(ctx, true)
				if err != nil {
					return err
				}
				next, err := app.mg.NextWord(ctx, model, args[0], app.generateOptions(temperature, app.config.MaxLength)...)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Most likely word after '%s': %s\n", args[0], next)
				return nil
			})
		},
	}

	cmd.Flags().Float64VarP(&temperature, "temperature", "t", probeTemperature, "sampling temperature (0 = always the most frequent)")
	return cmd
}

func newGenerateCmd(opts *rootOptions) *cobra.Command {
	var (
		count       int
		temperature float64
		maxLength   int
	)

	cmd := &cobra.Command{
		Use:   "generate <start>",
		Short: "Generate sentences from a start word",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, app *App) error {
				flags := cmd.Flags()
				if !flags.Changed("temperature") {
					temperature = app.config.Temperature
				}
				if !flags.Changed("max-length") {
					maxLength = app.config.MaxLength
				}

				model, err := app.Model(ctx, true)
				if err != nil {
					return err
				}
				return printSentences(ctx, cmd.OutOrStdout(), app, model, args[0], count, temperature, maxLength)
			})
		},
	}

	cmd.Flags().IntVarP(&count, "count", "c", sentenceCount, "number of sentences")
	cmd.Flags().Float64VarP(&temperature, "temperature", "t", 2.0, "sampling temperature (0 = always the most frequent)")
	cmd.Flags().IntVarP(&maxLength, "max-length", "l", 10, "maximum words per sentence")
	return cmd
}

func newStatsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show the models in the database and their counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withApp(cmd, func(ctx context.Context, app *App) error {
				stats, err := app.mg.GetStats(ctx)
				if err != nil {
					return err
				}

				w := cmd.OutOrStdout()
				fmt.Fprintf(w, "Vocabulary size: %d\n", stats.VocabSize)
				for _, model := range stats.Models {
					s := stats.Stats[model.Id]
					fmt.Fprintf(w, "Model %q: %d words (%d unique), %d transitions (%d unique)\n",
						model.Name, s.TotalWords, s.UniqueWords, s.TotalTransitions, s.UniqueTransitions)
				}
				return nil
			})
		},
	}
}

func newPruneCmd(opts *rootOptions) *cobra.Command {
	var (
		minFreq    int
		vocabulary bool
	)

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Drop rare transitions or rare words from the model",
		Long: `Prune deletes transitions seen at most --min-freq times. With --vocabulary it
instead removes words seen fewer than --min-freq times, along with every
transition that touches them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withApp(cmd, func(ctx context.Context, app *App) error {
				model, err := app.Model(ctx, true)
				if err != nil {
					return err
				}

				if vocabulary {
					err = app.mg.VocabularyPrune(ctx, model, minFreq)
				} else {
					err = app.mg.PruneModel(ctx, model, minFreq)
				}
				if err != nil {
					return err
				}

				stats, err := app.mg.GetModelStats(ctx, model)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Pruned model %q: %d unique words, %d unique transitions remain\n",
					model.Name, stats.UniqueWords, stats.UniqueTransitions)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&minFreq, "min-freq", 1, "frequency threshold")
	cmd.Flags().BoolVar(&vocabulary, "vocabulary", false, "prune words instead of transitions")
	return cmd
}

func newExportCmd(opts *rootOptions) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the model as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withApp(cmd, func(ctx context.Context, app *App) error {
				model, err := app.Model(ctx, true)
				if err != nil {
					return err
				}

				if out == "" {
					return app.mg.ExportModel(ctx, model, cmd.OutOrStdout())
				}
				var buf bytes.Buffer
				if err = app.mg.ExportModel(ctx, model, &buf); err != nil {
					return err
				}
				if err = report.WriteFile(out, buf.String()); err != nil {
					return err
				}
				app.logger.Info("Exported model", "model", model.Name, "path", out)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "write to this file instead of stdout")
	return cmd
}

func newImportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Load a JSON model export, merging into a model of the same name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, app *App) error {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("failed to open export: %w", err)
				}
				defer f.Close()

				model, err := app.mg.ImportModel(ctx, f)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported model %q\n", model.Name)
				return nil
			})
		},
	}
}

// printSentences writes count numbered sentences that start with start.
func printSentences(ctx context.Context, w io.Writer, app *App, model markov.ModelInfo, start string, count int, temperature float64, maxLength int) error {
	sentences := make([]string, 0, count)
	for range count {
		sentence, err := app.mg.GenerateSentence(ctx, model, start, app.generateOptions(temperature, maxLength)...)
		if err != nil {
			return err
		}
		sentences = append(sentences, sentence)
	}

	fmt.Fprintf(w, "\nGenerated %d different sentences starting with '%s':\n", count, start)
	for i, sentence := range sentences {
		fmt.Fprintf(w, "%d. %s\n", i+1, sentence)
	}
	return nil
}

// printChart renders the top words as a bar chart to w, or to the file out
// when it is set.
func printChart(ctx context.Context, w io.Writer, app *App, model markov.ModelInfo, top, width, height int, out string) error {
	counts, err := app.mg.WordFrequencies(ctx, model, top)
	if err != nil {
		return err
	}

	chart := report.FrequencyChart(counts, report.ChartOptions{
		Width:  width,
		Height: height,
		Title:  fmt.Sprintf("Top %d Most Frequent Words", len(counts)),
	})

	if out == "" {
		_, err = io.WriteString(w, chart)
		return err
	}
	if err = report.WriteFile(out, chart); err != nil {
		return err
	}
	app.logger.Info("Wrote chart", "path", out)
	return nil
}
