package folding

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// maxRows keeps a column's value inside a non-negative int.
const maxRows = 62

// ExtractPermutation reads matrix column by column. Column i is the binary
// number formed by the i-th character of every row, row 1 being the most
// significant bit; the value at index i is that number plus one.
func ExtractPermutation(matrix []string) ([]int, error) {
	width, err := validateMatrix(matrix)
	if err != nil {
		return nil, err
	}

	numbers := make([]int, width)
	extractColumns(matrix, numbers, 0, width)
	return numbers, nil
}

// ExtractPermutationConcurrent returns the same result as ExtractPermutation,
// splitting the columns into chunks that are extracted in parallel by at most
// workers goroutines. A workers value below 1 uses runtime.GOMAXPROCS(0).
func ExtractPermutationConcurrent(ctx context.Context, matrix []string, workers int) ([]int, error) {
	width, err := validateMatrix(matrix)
	if err != nil {
		return nil, err
	}
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > width {
		workers = width
	}

	numbers := make([]int, width)
	chunk := (width + workers - 1) / workers

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for start := 0; start < width; start += chunk {
		end := min(start+chunk, width)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			// Each goroutine writes a disjoint range of numbers.
			extractColumns(matrix, numbers, start, end)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return numbers, nil
}

func extractColumns(matrix []string, numbers []int, start, end int) {
	for i := start; i < end; i++ {
		value := 0
		for _, row := range matrix {
			value = value<<1 | int(row[i]-'0')
		}
		numbers[i] = value + 1
	}
}

// validateMatrix checks that matrix is a non-empty set of equal-length rows
// of '0' and '1' and returns the row length.
func validateMatrix(matrix []string) (int, error) {
	if len(matrix) == 0 {
		return 0, fmt.Errorf("%w: pattern matrix is empty", ErrInvalidArgument)
	}
	if len(matrix) > maxRows {
		return 0, fmt.Errorf("%w: pattern matrix has %d rows, maximum is %d", ErrInvalidArgument, len(matrix), maxRows)
	}

	width := len(matrix[0])
	for r, row := range matrix {
		if len(row) != width {
			return 0, fmt.Errorf("%w: row %d has length %d, want %d", ErrInvalidArgument, r+1, len(row), width)
		}
		for i := 0; i < len(row); i++ {
			if row[i] != '0' && row[i] != '1' {
				return 0, fmt.Errorf("%w: row %d has non-binary character %q at column %d", ErrInvalidArgument, r+1, row[i], i)
			}
		}
	}
	return width, nil
}
