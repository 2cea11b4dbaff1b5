package markov

import "errors"

var (
	// ErrInvalidArgument is returned for out-of-range generation parameters.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrModelNotFound is returned when a named model does not exist.
	ErrModelNotFound = errors.New("model not found")
	// ErrWordNotFound is returned when a word never occurs in a model's corpus.
	ErrWordNotFound = errors.New("word not found in model")
	// ErrDeadEnd is returned when a word has no recorded successor, which
	// happens for a word that only ever ends the corpus.
	ErrDeadEnd = errors.New("word has no successors")
)
