package markov

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
)

// WordCount is one entry of a word frequency report.
type WordCount struct {
	Word  string
	Count int
}

// DBStats holds aggregated statistics for the entire database, including a
// list of all models and their individual stats.
type DBStats struct {
	Models    []ModelInfo        // A list of models in the database
	Stats     map[int]ModelStats // A mapping of model ids to their stats
	VocabSize int                // The number of unique words across all models
}

// ModelStats holds aggregated statistics for a single Markov model.
type ModelStats struct {
	UniqueWords       int // The number of distinct words in the corpus.
	TotalWords        int // The number of words read during training.
	UniqueTransitions int // The number of distinct prev -> next pairs.
	TotalTransitions  int // The number of consecutive word pairs read during training.
}

// WordFrequencies returns the model's words ordered by occurrence count,
// most frequent first, with ties broken alphabetically. A limit of zero or
// less returns every word.
func (g *Generator) WordFrequencies(ctx context.Context, model ModelInfo, limit int) ([]WordCount, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := g.stmtTopWords.QueryContext(ctx, model.Id, limit)
	if err != nil {
		return nil, fmt.Errorf("could not query word frequencies: %w", err)
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	var counts []WordCount
	for rows.Next() {
		var wc WordCount
		if err = rows.Scan(&wc.Word, &wc.Count); err != nil {
			return nil, err
		}
		counts = append(counts, wc)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return counts, nil
}

// GetModelStats returns the statistics for a single model.
func (g *Generator) GetModelStats(ctx context.Context, model ModelInfo) (ModelStats, error) {
	var stats ModelStats
	err := g.stmtModelWordStats.QueryRowContext(ctx, model.Id).Scan(&stats.UniqueWords, &stats.TotalWords)
	if err != nil {
		return ModelStats{}, err
	}
	err = g.stmtModelTransStats.QueryRowContext(ctx, model.Id).Scan(&stats.UniqueTransitions, &stats.TotalTransitions)
	if err != nil {
		return ModelStats{}, err
	}
	return stats, nil
}

// GetStats returns a snapshot of statistics for the entire database,
// including global counts and per-model stats.
func (g *Generator) GetStats(ctx context.Context) (*DBStats, error) {
	modelInfos, err := g.GetModelInfos(ctx)
	if err != nil {
		return nil, err
	}

	var vocabLen int
	err = g.stmtGetVocabLen.QueryRowContext(ctx).Scan(&vocabLen)
	if err != nil {
		return nil, err
	}

	models := make([]ModelInfo, 0, len(modelInfos))
	modelStats := make(map[int]ModelStats)
	for _, v := range modelInfos {
		models = append(models, v)
		stats, err := g.GetModelStats(ctx, v)
		if err != nil {
			return nil, err
		}
		modelStats[v.Id] = stats
	}
	sort.Slice(models, func(i, j int) bool { return models[i].Name < models[j].Name })

	return &DBStats{
		Models:    models,
		Stats:     modelStats,
		VocabSize: vocabLen,
	}, nil
}

// VocabStr looks up a word in the shared vocabulary and returns its corresponding ID.
// It returns an error if the word is not found.
func (g *Generator) VocabStr(ctx context.Context, word string) (int, error) {
	var tokenId int
	err := g.stmtGetTokenID.QueryRowContext(ctx, word).Scan(&tokenId)
	if err != nil {
		return 0, err
	}
	return tokenId, nil
}

// VocabInt looks up a token ID in the shared vocabulary and returns its corresponding text.
// It returns an error if the ID is not found.
func (g *Generator) VocabInt(ctx context.Context, id int) (string, error) {
	var tokenText string
	err := g.stmtGetTokenText.QueryRowContext(ctx, id).Scan(&tokenText)
	if err != nil {
		return "", err
	}
	return tokenText, nil
}
