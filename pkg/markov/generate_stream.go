package markov

import (
	"context"
	"fmt"
	"log/slog"
)

// GenerateStream works like GenerateSentence but returns a read-only channel
// that receives the words one at a time. Arguments are validated before the
// channel is returned. The channel is closed once generation is complete, a
// dead end is reached, or the context is cancelled.
func (g *Generator) GenerateStream(ctx context.Context, model ModelInfo, startWord string, opts ...GenerateOption) (<-chan string, error) {
	options := defaultGenerateOptions()
	for _, opt := range opts {
		opt(options)
	}
	if options.maxLength < 1 {
		return nil, fmt.Errorf("%w: max length must be at least 1, got %d", ErrInvalidArgument, options.maxLength)
	}

	startID, err := g.lookupWord(ctx, model, startWord)
	if err != nil {
		return nil, err
	}

	wordChan := make(chan string)

	go func() {
		defer close(wordChan)

		err := g.walkChain(ctx, model, startWord, startID, options, func(word string) bool {
			select {
			case <-ctx.Done():
				return false
			case wordChan <- word:
				return true
			}
		})
		if err != nil && ctx.Err() == nil {
			g.logger.ErrorContext(ctx, "Generation stream failed",
				slog.String("model_name", model.Name),
				slog.Any("error", err),
			)
		}
	}()

	return wordChan, nil
}
