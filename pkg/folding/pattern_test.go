package folding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRowPattern(t *testing.T) {
	testCases := []struct {
		name        string
		n           int
		bitPosition int
		dir         Direction
		expected    string
	}{
		{name: "single bit R2L", n: 1, bitPosition: 1, dir: RightToLeft, expected: "01"},
		{name: "single bit L2R", n: 1, bitPosition: 1, dir: LeftToRight, expected: "10"},
		{name: "n=3 row 1 L2R", n: 3, bitPosition: 1, dir: LeftToRight, expected: "10011001"},
		{name: "n=3 row 2 L2R", n: 3, bitPosition: 2, dir: LeftToRight, expected: "10100101"},
		{name: "n=3 row 3 L2R", n: 3, bitPosition: 3, dir: LeftToRight, expected: "10101010"},
		{name: "n=3 row 1 R2L", n: 3, bitPosition: 1, dir: RightToLeft, expected: "01100110"},
		{name: "n=3 row 2 R2L", n: 3, bitPosition: 2, dir: RightToLeft, expected: "01011010"},
		{name: "n=3 row 3 R2L", n: 3, bitPosition: 3, dir: RightToLeft, expected: "01010101"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			row, err := BuildRowPattern(tc.n, tc.bitPosition, tc.dir)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, row)
		})
	}
}

func TestBuildRowPatternInvalid(t *testing.T) {
	testCases := []struct {
		name        string
		n           int
		bitPosition int
		dir         Direction
	}{
		{name: "zero bits", n: 0, bitPosition: 1},
		{name: "negative bits", n: -2, bitPosition: 1},
		{name: "too many bits", n: MaxBits + 1, bitPosition: 1},
		{name: "bit position zero", n: 3, bitPosition: 0},
		{name: "bit position past n", n: 3, bitPosition: 4},
		{name: "unknown direction", n: 3, bitPosition: 1, dir: Direction(7)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := BuildRowPattern(tc.n, tc.bitPosition, tc.dir)
			assert.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
}

func TestBuildPatternMatrix(t *testing.T) {
	matrix, err := BuildPatternMatrix(3, LeftToRight)
	require.NoError(t, err)
	assert.Equal(t, []string{"10011001", "10100101", "01010101"}, matrix)

	for _, dir := range []Direction{RightToLeft, LeftToRight} {
		for n := 1; n <= 12; n++ {
			matrix, err := BuildPatternMatrix(n, dir)
			require.NoError(t, err)
			require.Len(t, matrix, n)
			for i, row := range matrix {
				assert.Lenf(t, row, 1<<n, "n=%d %s row %d", n, dir, i+1)
			}
		}
	}
}

func TestBuildPatternMatrixComplementsLastRowOnly(t *testing.T) {
	const n = 5
	matrix, err := BuildPatternMatrix(n, RightToLeft)
	require.NoError(t, err)

	for bitPosition := 1; bitPosition <= n; bitPosition++ {
		row, err := BuildRowPattern(n, bitPosition, RightToLeft)
		require.NoError(t, err)
		if bitPosition == n {
			assert.Equal(t, complement(row), matrix[bitPosition-1])
		} else {
			assert.Equal(t, row, matrix[bitPosition-1])
		}
	}
}

func TestBuildPatternMatrixInvalid(t *testing.T) {
	_, err := BuildPatternMatrix(0, RightToLeft)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestParseDirection(t *testing.T) {
	testCases := []struct {
		input    string
		expected Direction
		wantErr  bool
	}{
		{input: "R2L", expected: RightToLeft},
		{input: "l2r", expected: LeftToRight},
		{input: " LeftToRight ", expected: LeftToRight},
		{input: "right-to-left", expected: RightToLeft},
		{input: "up", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			dir, err := ParseDirection(tc.input)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidArgument)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, dir)
		})
	}
}

func TestDirectionString(t *testing.T) {
	assert.Equal(t, "R2L", RightToLeft.String())
	assert.Equal(t, "L2R", LeftToRight.String())
	assert.Equal(t, "Direction(9)", Direction(9).String())

	var d Direction
	require.NoError(t, d.Set("L2R"))
	assert.Equal(t, LeftToRight, d)
	assert.Error(t, d.Set("sideways"))
	assert.Equal(t, LeftToRight, d)
}
