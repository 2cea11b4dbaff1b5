package markov

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"slices"
	"sort"
	"strings"
)

// generateOptions is used by the generate functions to configure default options.
type generateOptions struct {
	maxLength   int
	temperature float64
	topK        int
	rng         *rand.Rand
}

func defaultGenerateOptions() *generateOptions {
	return &generateOptions{
		maxLength:   10,
		temperature: 1.0,
		topK:        0,
	}
}

// GenerateOption is a function that configures generation parameters. It's used
// as a variadic argument in functions like NextWord and GenerateSentence.
type GenerateOption func(*generateOptions)

// WithMaxLength sets the maximum number of words in a generated sentence,
// start word included. Generation stops earlier at a word with no successors.
func WithMaxLength(n int) GenerateOption {
	return func(o *generateOptions) { o.maxLength = n }
}

// WithTemperature adjusts the randomness of the word selection. Each
// transition probability p is replaced by p^(1/t) and the row renormalised.
// A value of 1.0 is standard weighted random selection.
// Values > 1.0 flatten the distribution, making rare successors more likely.
// Values < 1.0 sharpen it towards the most frequent successors.
// A value of 0 or less results in deterministic selection (always choosing the
// most frequent successor, alphabetically first on ties).
func WithTemperature(t float64) GenerateOption {
	return func(o *generateOptions) { o.temperature = t }
}

// WithTopK restricts the selection pool to the `k` most frequent successors
// at each step. A value of 0 disables Top-K sampling.
func WithTopK(k int) GenerateOption {
	return func(o *generateOptions) { o.topK = k }
}

// WithRand makes sampling draw from r instead of the global source, so a
// seeded generator gives reproducible output. r must not be shared between
// concurrent generations.
func WithRand(r *rand.Rand) GenerateOption {
	return func(o *generateOptions) { o.rng = r }
}

func (o *generateOptions) randFloat() float64 {
	if o.rng != nil {
		return o.rng.Float64()
	}
	return rand.Float64()
}

func (o *generateOptions) randIntN(n int) int {
	if o.rng != nil {
		return o.rng.IntN(n)
	}
	return rand.IntN(n)
}

// NextWord picks a word to follow word by weighted random selection over the
// transition matrix row. It returns an error wrapping ErrWordNotFound for a
// word outside the model and ErrDeadEnd for a word with no successors.
func (g *Generator) NextWord(ctx context.Context, model ModelInfo, word string, opts ...GenerateOption) (string, error) {
	options := defaultGenerateOptions()
	for _, opt := range opts {
		opt(options)
	}

	choices, err := g.Transitions(ctx, model, word)
	if err != nil {
		return "", err
	}
	if len(choices) == 0 {
		return "", fmt.Errorf("%w: %q", ErrDeadEnd, word)
	}
	return chooseNextWord(choices, options).Word, nil
}

// GenerateSentence builds a sentence that starts with startWord and grows one
// sampled successor at a time until it holds maxLength words (default 10) or
// reaches a word with no successors. Words are joined with the tokenizer's
// separator.
func (g *Generator) GenerateSentence(ctx context.Context, model ModelInfo, startWord string, opts ...GenerateOption) (string, error) {
	options := defaultGenerateOptions()
	for _, opt := range opts {
		opt(options)
	}
	if options.maxLength < 1 {
		return "", fmt.Errorf("%w: max length must be at least 1, got %d", ErrInvalidArgument, options.maxLength)
	}

	startID, err := g.lookupWord(ctx, model, startWord)
	if err != nil {
		return "", err
	}

	words := make([]string, 0, options.maxLength)
	err = g.walkChain(ctx, model, startWord, startID, options, func(word string) bool {
		words = append(words, word)
		return true
	})
	if err != nil {
		return "", err
	}
	return strings.Join(words, g.tokenizer.Separator()), nil
}

// walkChain emits startWord and then up to maxLength-1 sampled successors.
// It stops early when emit returns false or a dead end is reached.
func (g *Generator) walkChain(ctx context.Context, model ModelInfo, startWord string, startID int, options *generateOptions, emit func(string) bool) error {
	if !emit(startWord) {
		return nil
	}

	current, currentID := startWord, startID
	for generated := 1; generated < options.maxLength; generated++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		choices, err := g.transitionsByID(ctx, model, currentID)
		if err != nil {
			return fmt.Errorf("failed to get successors of '%s': %w", current, err)
		}
		if len(choices) == 0 { // Dead end in chain
			g.logger.DebugContext(ctx, "Generation terminated due to dead-end",
				slog.String("model_name", model.Name),
				slog.Int("model_id", model.Id),
				slog.String("last_word", current),
				slog.Int("generated_length", generated),
			)
			return nil
		}

		next := chooseNextWord(choices, options)
		if !emit(next.Word) {
			return nil
		}
		current, currentID = next.Word, next.id
	}

	g.logger.DebugContext(ctx, "Generation terminated by reaching maxLength",
		slog.String("model_name", model.Name),
		slog.Int("model_id", model.Id),
		slog.Int("max_length", options.maxLength),
	)
	return nil
}

// chooseNextWord abstracts the selection logic from the generation loop.
// choices must be non-empty. Choices with a count below 1 are never picked
// unless no other choice is left.
func chooseNextWord(choices []Transition, options *generateOptions) Transition {
	if slices.ContainsFunc(choices, func(c Transition) bool { return c.Count < 1 }) {
		positive := slices.DeleteFunc(slices.Clone(choices), func(c Transition) bool { return c.Count < 1 })
		if len(positive) == 0 {
			return choices[0]
		}
		choices = positive
	}

	// topK filtering
	if options.topK > 0 && options.topK < len(choices) {
		ranked := make([]Transition, len(choices))
		copy(ranked, choices)
		sort.SliceStable(ranked, func(i, j int) bool {
			if ranked[i].Count != ranked[j].Count {
				return ranked[i].Count > ranked[j].Count
			}
			return ranked[i].Word < ranked[j].Word
		})
		choices = ranked[:options.topK]
	}

	// temperature selection
	if options.temperature <= 0 { // Deterministic
		best := choices[0]
		for _, choice := range choices[1:] {
			if choice.Count > best.Count || (choice.Count == best.Count && choice.Word < best.Word) {
				best = choice
			}
		}
		return best
	}

	if options.temperature == 1.0 { // Standard weighted random
		var totalFreq int
		for _, choice := range choices {
			totalFreq += choice.Count
		}
		randChoice := options.randIntN(totalFreq)
		for _, choice := range choices {
			randChoice -= choice.Count
			if randChoice < 0 {
				return choice
			}
		}
		return choices[len(choices)-1]
	}

	// Temperature-based sampling. (count/total)^(1/t) is proportional to
	// count^(1/t), computed in log space to stay finite for small t.
	logWeights := make([]float64, len(choices))
	maxLog := math.Inf(-1)
	for i, choice := range choices {
		lw := math.Log(float64(choice.Count)) / options.temperature
		logWeights[i] = lw
		if lw > maxLog {
			maxLog = lw
		}
	}
	var totalWeight float64
	weights := make([]float64, len(choices))
	for i, lw := range logWeights {
		w := math.Exp(lw - maxLog)
		weights[i] = w
		totalWeight += w
	}
	randChoice := options.randFloat() * totalWeight
	for i, choice := range choices {
		randChoice -= weights[i]
		if randChoice < 0 {
			return choice
		}
	}
	return choices[len(choices)-1]
}
