package folding

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPermutation(t *testing.T) {
	numbers, err := ExtractPermutation([]string{"10011001", "10100101", "01010101"})
	require.NoError(t, err)
	assert.Equal(t, []int{7, 2, 3, 6, 5, 4, 1, 8}, numbers)

	// Row 1 is the most significant bit.
	numbers, err = ExtractPermutation([]string{"01", "00"})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, numbers)
}

func TestExtractPermutationInvalid(t *testing.T) {
	testCases := []struct {
		name   string
		matrix []string
	}{
		{name: "nil matrix", matrix: nil},
		{name: "empty matrix", matrix: []string{}},
		{name: "ragged rows", matrix: []string{"0101", "011"}},
		{name: "non-binary character", matrix: []string{"0101", "01x1"}},
		{name: "too many rows", matrix: make([]string, maxRows+1)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ExtractPermutation(tc.matrix)
			assert.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
}

func TestExtractPermutationConcurrent(t *testing.T) {
	ctx := context.Background()
	for _, dir := range []Direction{RightToLeft, LeftToRight} {
		for n := 1; n <= 10; n++ {
			matrix, err := BuildPatternMatrix(n, dir)
			require.NoError(t, err)
			want, err := ExtractPermutation(matrix)
			require.NoError(t, err)

			for _, workers := range []int{0, 1, 3, 8, 4096} {
				got, err := ExtractPermutationConcurrent(ctx, matrix, workers)
				require.NoError(t, err)
				assert.Equalf(t, want, got, "n=%d %s workers=%d", n, dir, workers)
			}
		}
	}
}

func TestExtractPermutationConcurrentCancelled(t *testing.T) {
	matrix, err := BuildPatternMatrix(8, RightToLeft)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = ExtractPermutationConcurrent(ctx, matrix, 4)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExtractPermutationConcurrentInvalid(t *testing.T) {
	_, err := ExtractPermutationConcurrent(context.Background(), nil, 2)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
