package folding

import (
	"fmt"
	"strings"
)

// Direction is the fold direction. It selects which alternating two-bit block
// ("10" or "01") a row uses at even and odd steps.
type Direction int

const (
	// RightToLeft folds the right end of the strip over the left. It is the
	// zero value and the default direction.
	RightToLeft Direction = iota
	// LeftToRight is the mirror image of RightToLeft.
	LeftToRight
)

// String returns the short name of the direction, "R2L" or "L2R".
func (d Direction) String() string {
	switch d {
	case RightToLeft:
		return "R2L"
	case LeftToRight:
		return "L2R"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Valid reports whether d is one of the defined directions.
func (d Direction) Valid() bool {
	return d == RightToLeft || d == LeftToRight
}

// ParseDirection parses "R2L", "L2R", "RightToLeft" or "LeftToRight",
// ignoring case and surrounding whitespace.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "r2l", "righttoleft", "right-to-left":
		return RightToLeft, nil
	case "l2r", "lefttoright", "left-to-right":
		return LeftToRight, nil
	}
	return 0, fmt.Errorf("%w: unknown fold direction %q", ErrInvalidArgument, s)
}

// Set implements pflag.Value so a Direction can be bound to a command-line flag.
func (d *Direction) Set(s string) error {
	parsed, err := ParseDirection(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Type implements pflag.Value.
func (d *Direction) Type() string {
	return "direction"
}

// blocks returns the block used at even and odd steps for this direction.
func (d Direction) blocks() (even, odd string) {
	if d == LeftToRight {
		return "01", "10"
	}
	return "10", "01"
}
