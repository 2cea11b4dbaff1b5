package folding

import (
	"fmt"
	"strings"
)

// MaxBits is the largest bit count accepted. A matrix for MaxBits holds
// MaxBits rows of 2^MaxBits bytes each.
const MaxBits = 20

// BuildRowPattern returns the bit pattern for one bit position of an n-bit fold.
//
// The pattern is the concatenation, for i = 1 .. 2^n-1, of a two-bit block
// repeated 2^(bitPosition-1) times. Even steps use "10" and odd steps "01"
// for RightToLeft; LeftToRight swaps them. Only the first 2^n characters are
// kept.
func BuildRowPattern(n, bitPosition int, dir Direction) (string, error) {
	if err := validateBits(n); err != nil {
		return "", err
	}
	if bitPosition < 1 || bitPosition > n {
		return "", fmt.Errorf("%w: bit position %d outside [1, %d]", ErrInvalidArgument, bitPosition, n)
	}
	if !dir.Valid() {
		return "", fmt.Errorf("%w: unknown fold direction %d", ErrInvalidArgument, int(dir))
	}

	length := 1 << n
	repeatCount := 1 << (bitPosition - 1)
	even, odd := dir.blocks()
	evenBlock := strings.Repeat(even, repeatCount)
	oddBlock := strings.Repeat(odd, repeatCount)

	var sb strings.Builder
	sb.Grow(length + len(evenBlock))
	// Blocks past the first 2^n characters are truncated anyway, so stop once we have enough.
	for i := 1; i < length && sb.Len() < length; i++ {
		if i%2 == 0 {
			sb.WriteString(evenBlock)
		} else {
			sb.WriteString(oddBlock)
		}
	}

	pattern := sb.String()
	if len(pattern) > length {
		pattern = pattern[:length]
	}
	return pattern, nil
}

// BuildPatternMatrix returns the n rows of the pattern matrix, row 1 first.
// The last row is bit-complemented before it is stored.
func BuildPatternMatrix(n int, dir Direction) ([]string, error) {
	if err := validateBits(n); err != nil {
		return nil, err
	}

	rows := make([]string, 0, n)
	for bitPosition := 1; bitPosition <= n; bitPosition++ {
		row, err := BuildRowPattern(n, bitPosition, dir)
		if err != nil {
			return nil, err
		}
		if bitPosition == n {
			row = complement(row)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// complement swaps every '0' and '1' in row.
func complement(row string) string {
	b := []byte(row)
	for i, c := range b {
		switch c {
		case '0':
			b[i] = '1'
		case '1':
			b[i] = '0'
		}
	}
	return string(b)
}

func validateBits(n int) error {
	if n < 1 {
		return fmt.Errorf("%w: bit count must be at least 1, got %d", ErrInvalidArgument, n)
	}
	if n > MaxBits {
		return fmt.Errorf("%w: bit count %d exceeds maximum of %d", ErrInvalidArgument, n, MaxBits)
	}
	return nil
}
