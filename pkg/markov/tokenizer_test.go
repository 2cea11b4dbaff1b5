package markov

import (
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"
)

func collectWords(t *testing.T, tok Tokenizer, input string) []string {
	t.Helper()
	stream := tok.NewStream(strings.NewReader(input))
	var words []string
	for {
		word, err := stream.Next()
		if errors.Is(err, io.EOF) {
			return words
		}
		if err != nil {
			t.Fatalf("Next() failed: %v", err)
		}
		words = append(words, word)
	}
}

func TestWhitespaceTokenizer(t *testing.T) {
	testCases := []struct {
		name     string
		opts     []Option
		input    string
		expected []string
	}{
		{
			name:     "Newlines are word breaks",
			input:    "Hello,  world!\nNew\tline\r\n",
			expected: []string{"Hello,", "world!", "New", "line"},
		},
		{
			name:     "Lowercase and trim punctuation",
			opts:     []Option{WithLowercase(true), WithTrimPunctuation(true)},
			input:    "Hello,  world!\n(New) line",
			expected: []string{"hello", "world", "new", "line"},
		},
		{
			name:     "Punctuation-only words dropped when trimming",
			opts:     []Option{WithTrimPunctuation(true)},
			input:    "wait ... --- what",
			expected: []string{"wait", "what"},
		},
		{
			name:     "Empty input",
			input:    " \n\n ",
			expected: nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := collectWords(t, NewWhitespaceTokenizer(tc.opts...), tc.input)
			if !reflect.DeepEqual(got, tc.expected) {
				t.Errorf("expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestWhitespaceTokenizerSeparator(t *testing.T) {
	if sep := NewWhitespaceTokenizer().Separator(); sep != " " {
		t.Errorf("expected default separator %q, got %q", " ", sep)
	}
	if sep := NewWhitespaceTokenizer(WithSeparator("_")).Separator(); sep != "_" {
		t.Errorf("expected separator %q, got %q", "_", sep)
	}
}
