package folding

import "context"

// ComputeSequence returns the permutation of 1..2^n encoded by an n-bit fold
// in the given direction.
func ComputeSequence(n int, dir Direction) ([]int, error) {
	matrix, err := BuildPatternMatrix(n, dir)
	if err != nil {
		return nil, err
	}
	return ExtractPermutation(matrix)
}

// ComputeSequenceDefault is ComputeSequence with the RightToLeft direction.
func ComputeSequenceDefault(n int) ([]int, error) {
	return ComputeSequence(n, RightToLeft)
}

// ComputeSequenceConcurrent is ComputeSequence with column extraction spread
// over workers goroutines.
func ComputeSequenceConcurrent(ctx context.Context, n int, dir Direction, workers int) ([]int, error) {
	matrix, err := BuildPatternMatrix(n, dir)
	if err != nil {
		return nil, err
	}
	return ExtractPermutationConcurrent(ctx, matrix, workers)
}
