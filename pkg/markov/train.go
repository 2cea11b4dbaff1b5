package markov

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// transitionKey identifies one prev -> next pair while counts are buffered.
type transitionKey struct {
	prevID int
	nextID int
}

// InsertTransition provides a low-level way to insert or increment a single
// transition (`prev -> next`) for a given model. Both words must already be
// part of the model. For most use cases, the high-level Train function is
// recommended as it is significantly more efficient for bulk data.
func (g *Generator) InsertTransition(ctx context.Context, model ModelInfo, prev, next string) error {
	prevID, err := g.lookupWord(ctx, model, prev)
	if err != nil {
		return err
	}
	nextID, err := g.lookupWord(ctx, model, next)
	if err != nil {
		return err
	}
	if _, err = g.stmtInsertTransition.ExecContext(ctx, model.Id, prevID, nextID); err != nil {
		return fmt.Errorf("could not insert transition '%s' -> '%s': %w", prev, next, err)
	}
	return nil
}

// Train processes a stream of text from an io.Reader, tokenizes it, and uses
// it to train the specified model. The whole stream is one sequence: every
// word increments its occurrence count and every pair of consecutive words
// increments the count of that transition. Counts are aggregated in memory
// and flushed in batches, all within a single database transaction.
func (g *Generator) Train(ctx context.Context, model ModelInfo, data io.Reader) error {
	// flushThreshold is the number of distinct buffered counts that triggers a write to the database.
	const flushThreshold = 1000

	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	// All transaction-specific statements will also be closed with this or the .Commit()
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	stmtInsertVocab := tx.StmtContext(ctx, g.stmtInsertVocab)
	stmtUpsertWord := tx.StmtContext(ctx, g.stmtUpsertWordCount)
	stmtUpsertTransition := tx.StmtContext(ctx, g.stmtUpsertTransitionCt)

	vocabCache := make(map[string]int)
	wordCounts := make(map[int]int)
	transitionCounts := make(map[transitionKey]int)

	flush := func() error {
		for tokenID, count := range wordCounts {
			if _, err := stmtUpsertWord.ExecContext(ctx, model.Id, tokenID, count); err != nil {
				return fmt.Errorf("failed to write word count for token %d: %w", tokenID, err)
			}
		}
		for key, count := range transitionCounts {
			if _, err := stmtUpsertTransition.ExecContext(ctx, model.Id, key.prevID, key.nextID, count); err != nil {
				return fmt.Errorf("failed to write transition (%d -> %d): %w", key.prevID, key.nextID, err)
			}
		}
		clear(wordCounts)
		clear(transitionCounts)
		return nil
	}

	stream := g.tokenizer.NewStream(data)
	prevID := -1
	var wordCount int64

	for {
		word, err := stream.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return fmt.Errorf("tokenizer error: %w", err)
		}

		tokenID, ok := vocabCache[word]
		if !ok {
			if err = stmtInsertVocab.QueryRowContext(ctx, word).Scan(&tokenID); err != nil {
				return fmt.Errorf("sql insert vocabulary error for token '%s': %w", word, err)
			}
			vocabCache[word] = tokenID
		}

		wordCounts[tokenID]++
		if prevID >= 0 {
			transitionCounts[transitionKey{prevID: prevID, nextID: tokenID}]++
		}
		prevID = tokenID
		wordCount++

		if len(wordCounts)+len(transitionCounts) >= flushThreshold {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := flush(); err != nil {
				return err
			}
		}
	}

	if err := flush(); err != nil {
		return err
	}

	g.logger.InfoContext(ctx, "Training completed",
		slog.String("model_name", model.Name),
		slog.Int("model_id", model.Id),
		slog.Int64("words_processed", wordCount),
		slog.Int("unique_words", len(vocabCache)),
	)

	return tx.Commit()
}

// lookupWord returns the token ID of word if it occurs in the model's corpus.
func (g *Generator) lookupWord(ctx context.Context, model ModelInfo, word string) (int, error) {
	var tokenID int
	err := g.stmtLookupWord.QueryRowContext(ctx, model.Id, word).Scan(&tokenID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("%w: %q", ErrWordNotFound, word)
		}
		return 0, fmt.Errorf("could not look up word '%s': %w", word, err)
	}
	return tokenID, nil
}
