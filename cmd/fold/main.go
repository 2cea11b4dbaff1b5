// Package main implements the fold CLI, which prints the permutations encoded
// by paper-folding bit patterns.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/CTAG07/Origami/pkg/folding"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		bits       int
		directions = []folding.Direction{folding.LeftToRight, folding.RightToLeft}
		showMatrix bool
		workers    int
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:   "fold",
		Short: "Print the permutations encoded by paper-folding bit patterns",
		Long: `fold builds the pattern matrix of an n-bit paper fold and reads it column by
column, printing the resulting permutation of 1..2^n.

With no flags it prints the 3-bit permutation for both fold directions.

Examples:
  # Both directions, 3 bits
  fold

  # 4 bits, right-to-left only, with the pattern matrix
  fold -n 4 -d R2L --matrix`,
		Version:      version,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: parseLogLevel(logLevel)}))

			for _, dir := range directions {
				if err := printFold(cmd.Context(), cmd.OutOrStdout(), logger, bits, dir, showMatrix, workers); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&bits, "bits", "n", 3, "number of folds (bits per column)")
	cmd.Flags().VarP(&directionList{dirs: &directions}, "direction", "d", "fold directions to print, comma separated or repeated (L2R, R2L)")
	cmd.Flags().BoolVar(&showMatrix, "matrix", false, "also print the pattern matrix rows")
	cmd.Flags().IntVar(&workers, "workers", 0, "extract columns with this many goroutines (0 = sequential)")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	return cmd
}

func printFold(ctx context.Context, w io.Writer, logger *slog.Logger, bits int, dir folding.Direction, showMatrix bool, workers int) error {
	matrix, err := folding.BuildPatternMatrix(bits, dir)
	if err != nil {
		return err
	}

	var numbers []int
	if workers > 0 {
		numbers, err = folding.ExtractPermutationConcurrent(ctx, matrix, workers)
	} else {
		numbers, err = folding.ExtractPermutation(matrix)
	}
	if err != nil {
		return err
	}

	logger.Debug("Computed fold sequence",
		slog.Int("bits", bits),
		slog.String("direction", dir.String()),
		slog.Int("length", len(numbers)),
		slog.Int("workers", workers),
	)

	if showMatrix {
		for i, row := range matrix {
			if _, err = fmt.Fprintf(w, "bit %d: %s\n", i+1, row); err != nil {
				return err
			}
		}
	}
	_, err = fmt.Fprintf(w, "All '%s' folds: %s\n", dir, formatSequence(numbers))
	return err
}

// directionList is a repeatable flag of fold directions. The first value given
// on the command line replaces the default list.
type directionList struct {
	dirs    *[]folding.Direction
	changed bool
}

func (l *directionList) Set(value string) error {
	if !l.changed {
		*l.dirs = nil
		l.changed = true
	}
	for _, part := range strings.Split(value, ",") {
		var dir folding.Direction
		if err := dir.Set(part); err != nil {
			return err
		}
		*l.dirs = append(*l.dirs, dir)
	}
	return nil
}

func (l *directionList) String() string {
	names := make([]string, len(*l.dirs))
	for i, dir := range *l.dirs {
		names[i] = dir.String()
	}
	return "[" + strings.Join(names, ",") + "]"
}

func (l *directionList) Type() string {
	return "directions"
}

// formatSequence renders numbers as "[a, b, c]".
func formatSequence(numbers []int) string {
	parts := make([]string, len(numbers))
	for i, n := range numbers {
		parts[i] = strconv.Itoa(n)
	}
	return "[" + strings.Join(parts, ", ") + "]"
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
