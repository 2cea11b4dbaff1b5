package markov

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
)

// MaxMatrixWords bounds the vocabulary size TransitionMatrix will expand into
// a dense matrix.
const MaxMatrixWords = 4096

// Transition is one entry of a row of the transition matrix.
type Transition struct {
	Word        string
	Count       int
	Probability float64

	id int
}

// Matrix is the dense, row-normalised transition matrix of a model.
// Probabilities[i][j] is the probability that Words[j] follows Words[i].
// A row for a word with no successors is all zero.
type Matrix struct {
	Words         []string
	Index         map[string]int
	Probabilities [][]float64
}

// Row returns the probabilities of every word following word.
func (m *Matrix) Row(word string) ([]float64, bool) {
	i, ok := m.Index[word]
	if !ok {
		return nil, false
	}
	return m.Probabilities[i], true
}

// Transitions returns the row of the transition matrix for word: each word
// that follows it in the corpus with its count and probability, sorted by
// word. A word that never has a successor yields an empty slice. A word that
// is not part of the model returns an error wrapping ErrWordNotFound.
func (g *Generator) Transitions(ctx context.Context, model ModelInfo, word string) ([]Transition, error) {
	tokenID, err := g.lookupWord(ctx, model, word)
	if err != nil {
		return nil, err
	}
	return g.transitionsByID(ctx, model, tokenID)
}

func (g *Generator) transitionsByID(ctx context.Context, model ModelInfo, tokenID int) ([]Transition, error) {
	rows, err := g.stmtGetTransitions.QueryContext(ctx, model.Id, tokenID)
	if err != nil {
		return nil, fmt.Errorf("could not query transitions for token %d: %w", tokenID, err)
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	transitions := []Transition{}
	var total int
	for rows.Next() {
		var tr Transition
		if err = rows.Scan(&tr.id, &tr.Word, &tr.Count); err != nil {
			return nil, err
		}
		transitions = append(transitions, tr)
		total += tr.Count
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	for i := range transitions {
		transitions[i].Probability = float64(transitions[i].Count) / float64(total)
	}
	return transitions, nil
}

// TransitionMatrix builds the dense transition matrix over the model's
// vocabulary, sorted alphabetically. Each row is normalised to sum to 1.
// Vocabularies larger than MaxMatrixWords are rejected.
func (g *Generator) TransitionMatrix(ctx context.Context, model ModelInfo) (*Matrix, error) {
	words, err := g.WordFrequencies(ctx, model, 0)
	if err != nil {
		return nil, err
	}
	if len(words) > MaxMatrixWords {
		return nil, fmt.Errorf("%w: vocabulary of %d words exceeds matrix limit of %d", ErrInvalidArgument, len(words), MaxMatrixWords)
	}

	m := &Matrix{
		Words: make([]string, 0, len(words)),
		Index: make(map[string]int, len(words)),
	}
	for _, wc := range words {
		m.Words = append(m.Words, wc.Word)
	}
	sort.Strings(m.Words)
	m.Probabilities = make([][]float64, len(m.Words))
	for i, w := range m.Words {
		m.Index[w] = i
		m.Probabilities[i] = make([]float64, len(m.Words))
	}

	rows, err := g.db.QueryContext(ctx, `
SELECT pv.token_text, nv.token_text, t.frequency FROM markov_transitions t
JOIN markov_vocabulary pv ON pv.token_id = t.prev_token_id
JOIN markov_vocabulary nv ON nv.token_id = t.next_token_id
WHERE t.model_id = ?`, model.Id)
	if err != nil {
		return nil, fmt.Errorf("could not query transitions: %w", err)
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	rowTotals := make([]float64, len(m.Words))
	for rows.Next() {
		var prev, next string
		var freq int
		if err = rows.Scan(&prev, &next, &freq); err != nil {
			return nil, err
		}
		i, okPrev := m.Index[prev]
		j, okNext := m.Index[next]
		if !okPrev || !okNext {
			// Only words counted in markov_words belong to the matrix.
			continue
		}
		m.Probabilities[i][j] += float64(freq)
		rowTotals[i] += float64(freq)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	for i, total := range rowTotals {
		if total == 0 {
			continue
		}
		for j := range m.Probabilities[i] {
			m.Probabilities[i][j] /= total
		}
	}
	return m, nil
}
