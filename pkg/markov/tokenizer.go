package markov

import (
	"bufio"
	"io"
	"strings"
	"unicode"
)

// Tokenizer splits input text into words. It allows the training and
// generation logic to be independent of the tokenization strategy.
type Tokenizer interface {
	// NewStream returns a stateful StreamTokenizer for processing an io.Reader.
	NewStream(io.Reader) StreamTokenizer
	// Separator returns the string used to join words in generated output.
	Separator() string
}

// StreamTokenizer returns one word at a time from a stream.
type StreamTokenizer interface {
	// Next returns the next word. It returns io.EOF once the stream is
	// fully consumed.
	Next() (string, error)
}

// WhitespaceTokenizer splits text on Unicode whitespace. Line breaks are
// ordinary whitespace, so a corpus spread over many lines is read as a single
// sequence of words.
type WhitespaceTokenizer struct {
	separator      string
	lowercase      bool
	trimPunctuation bool
}

// Option configures a WhitespaceTokenizer.
type Option func(*WhitespaceTokenizer)

// WithSeparator sets the string used to join words during generation.
// Default: " "
func WithSeparator(sep string) Option {
	return func(t *WhitespaceTokenizer) {
		t.separator = sep
	}
}

// WithLowercase folds every word to lower case before it is counted.
// Default: false
func WithLowercase(enabled bool) Option {
	return func(t *WhitespaceTokenizer) {
		t.lowercase = enabled
	}
}

// WithTrimPunctuation strips leading and trailing punctuation from each word,
// dropping words that consist only of punctuation.
// Default: false
func WithTrimPunctuation(enabled bool) Option {
	return func(t *WhitespaceTokenizer) {
		t.trimPunctuation = enabled
	}
}

// NewWhitespaceTokenizer creates a tokenizer with default settings, which can
// be overridden with Option functions. The defaults keep words exactly as they
// appear in the corpus.
func NewWhitespaceTokenizer(opts ...Option) *WhitespaceTokenizer {
	t := &WhitespaceTokenizer{
		separator: " ",
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Separator returns the configured separator string.
func (t *WhitespaceTokenizer) Separator() string {
	return t.separator
}

// NewStream returns the stream processor.
func (t *WhitespaceTokenizer) NewStream(r io.Reader) StreamTokenizer {
	scanner := bufio.NewScanner(r)
	// Lyrics files can carry very long lines; allow up to 1MB per word.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	scanner.Split(bufio.ScanWords)
	return &whitespaceStream{scanner: scanner, tokenizer: t}
}

type whitespaceStream struct {
	scanner   *bufio.Scanner
	tokenizer *WhitespaceTokenizer
}

// Next returns the next word, skipping words that normalize to nothing.
func (s *whitespaceStream) Next() (string, error) {
	for s.scanner.Scan() {
		word := s.tokenizer.normalize(s.scanner.Text())
		if word != "" {
			return word, nil
		}
	}
	if err := s.scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

func (t *WhitespaceTokenizer) normalize(word string) string {
	if t.trimPunctuation {
		word = strings.TrimFunc(word, unicode.IsPunct)
	}
	if t.lowercase {
		word = strings.ToLower(word)
	}
	return word
}
