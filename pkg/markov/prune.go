package markov

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
)

// PruneModel removes all transitions from a specific model that have a frequency
// less than or equal to `minFreq`. This is useful for reducing the size of a model
// by removing rare, and often noisy, transitions. Word counts are untouched.
func (g *Generator) PruneModel(ctx context.Context, model ModelInfo, minFreq int) error {
	res, err := g.stmtPruneModel.ExecContext(ctx, model.Id, minFreq)
	if err != nil {
		return fmt.Errorf("could not prune model %d: %w", model.Id, err)
	}
	rowsAffected, _ := res.RowsAffected()

	g.logger.InfoContext(ctx, "Model pruned",
		slog.String("model_name", model.Name),
		slog.Int("model_id", model.Id),
		slog.Int("min_frequency", minFreq),
		slog.Int64("transitions_removed", rowsAffected),
	)
	return nil
}

// VocabularyPrune removes from a model every word that occurs fewer than
// `minFrequency` times, together with all transitions into or out of those
// words. Vocabulary entries no longer used by any model are then deleted.
// The operation is performed within a transaction.
func (g *Generator) VocabularyPrune(ctx context.Context, model ModelInfo, minFrequency int) error {
	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction for pruning: %w", err)
	}
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	rows, err := tx.QueryContext(ctx,
		`SELECT token_id FROM markov_words WHERE model_id = ? AND frequency < ?`,
		model.Id, minFrequency)
	if err != nil {
		return fmt.Errorf("failed to query for rare words: %w", err)
	}

	var rareTokenIDs []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()
			return fmt.Errorf("failed to scan rare token id: %w", err)
		}
		rareTokenIDs = append(rareTokenIDs, id)
	}
	_ = rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error after iterating rare word rows: %w", err)
	}

	if len(rareTokenIDs) == 0 {
		g.logger.InfoContext(ctx, "No vocabulary to prune",
			slog.String("model_name", model.Name),
			slog.Int("min_frequency", minFrequency),
		)
		return tx.Commit() // Nothing to do
	}

	ids := intSliceToInterface(rareTokenIDs)
	if err := batchDelete(ctx, tx, "markov_transitions", "prev_token_id", model.Id, ids); err != nil {
		return fmt.Errorf("failed to prune transitions by prev_token_id: %w", err)
	}
	if err := batchDelete(ctx, tx, "markov_transitions", "next_token_id", model.Id, ids); err != nil {
		return fmt.Errorf("failed to prune transitions by next_token_id: %w", err)
	}
	if err := batchDelete(ctx, tx, "markov_words", "token_id", model.Id, ids); err != nil {
		return fmt.Errorf("failed to prune words: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM markov_vocabulary WHERE token_id NOT IN (SELECT token_id FROM markov_words)`)
	if err != nil {
		return fmt.Errorf("failed to delete orphaned vocabulary: %w", err)
	}
	orphans, _ := res.RowsAffected()

	g.logger.InfoContext(ctx, "Vocabulary pruned successfully",
		slog.String("model_name", model.Name),
		slog.Int("min_frequency", minFrequency),
		slog.Int("words_removed", len(rareTokenIDs)),
		slog.Int64("vocabulary_deleted", orphans),
	)

	return tx.Commit()
}

// batchDelete deletes the model's rows whose column matches one of ids. It
// splits large lists into smaller batches to avoid SQL variable limits.
func batchDelete(ctx context.Context, tx *sql.Tx, table, column string, modelID int, ids []interface{}) error {
	if len(ids) == 0 {
		return nil
	}

	// SQLite's default variable limit is 999, so around half that is good
	const batchSize = 500

	for i := 0; i < len(ids); i += batchSize {
		end := min(i+batchSize, len(ids))
		batch := ids[i:end]

		query := fmt.Sprintf("DELETE FROM %s WHERE model_id = ? AND %s IN (?%s)", table, column, strings.Repeat(",?", len(batch)-1))
		args := append([]interface{}{modelID}, batch...)

		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}
	return nil
}

// intSliceToInterface is a helper to convert []int to []interface{} for SQL args.
func intSliceToInterface(s []int) []interface{} {
	if s == nil {
		return nil
	}
	i := make([]interface{}, len(s))
	for j, v := range s {
		i[j] = v
	}
	return i
}
