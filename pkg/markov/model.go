package markov

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
)

// ModelInfo holds the metadata for a Markov model: its unique ID and name.
type ModelInfo struct {
	Id   int
	Name string
}

// ExportedModel is the serializable representation of a trained model,
// used for JSON-based import and export. Words are stored by text so a
// snapshot can be merged into a database with a different vocabulary.
type ExportedModel struct {
	Name        string               `json:"name"`
	Words       map[string]int       `json:"words"` // word -> occurrence count
	Transitions []ExportedTransition `json:"transitions"`
}

// ExportedTransition is the serializable representation of a single
// word-to-word transition count.
type ExportedTransition struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Frequency int    `json:"frequency"`
}

// GetModelInfos retrieves metadata for all models currently in the database,
// returning them in a map keyed by model name.
func (g *Generator) GetModelInfos(ctx context.Context) (map[string]ModelInfo, error) {
	rows, err := g.stmtGetModels.QueryContext(ctx)
	if err != nil {
		return nil, err
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	models := make(map[string]ModelInfo)
	for rows.Next() {
		var model ModelInfo
		if err = rows.Scan(&model.Id, &model.Name); err != nil {
			return nil, err
		}
		models[model.Name] = model
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return models, nil
}

// GetModelInfo retrieves the metadata for a single model specified by name.
// It returns an error wrapping ErrModelNotFound if no such model exists.
func (g *Generator) GetModelInfo(ctx context.Context, modelName string) (ModelInfo, error) {
	var modelId int
	err := g.stmtGetModelInfo.QueryRowContext(ctx, modelName).Scan(&modelId)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ModelInfo{}, fmt.Errorf("%w: %q", ErrModelNotFound, modelName)
		}
		return ModelInfo{}, err
	}
	return ModelInfo{
		Id:   modelId,
		Name: modelName,
	}, nil
}

// InsertModel creates a new model entry in the database.
func (g *Generator) InsertModel(ctx context.Context, model ModelInfo) error {
	_, err := g.stmtAddModel.ExecContext(ctx, model.Name)
	return err
}

// EnsureModel returns the named model, creating it first if it does not exist.
func (g *Generator) EnsureModel(ctx context.Context, modelName string) (ModelInfo, error) {
	model, err := g.GetModelInfo(ctx, modelName)
	if err == nil {
		return model, nil
	}
	if !errors.Is(err, ErrModelNotFound) {
		return ModelInfo{}, err
	}
	if err = g.InsertModel(ctx, ModelInfo{Name: modelName}); err != nil {
		return ModelInfo{}, fmt.Errorf("failed to create model %q: %w", modelName, err)
	}
	return g.GetModelInfo(ctx, modelName)
}

// RemoveModel deletes a model and all of its word and transition counts from
// the database. The operation is performed within a transaction.
func (g *Generator) RemoveModel(ctx context.Context, model ModelInfo) error {
	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	if _, err = tx.ExecContext(ctx, "DELETE FROM markov_transitions WHERE model_id = ?", model.Id); err != nil {
		return fmt.Errorf("failed to remove transitions for model %d: %w", model.Id, err)
	}

	if _, err = tx.ExecContext(ctx, "DELETE FROM markov_words WHERE model_id = ?", model.Id); err != nil {
		return fmt.Errorf("failed to remove words for model %d: %w", model.Id, err)
	}

	if _, err = tx.ExecContext(ctx, "DELETE FROM markov_models WHERE model_id = ?", model.Id); err != nil {
		return fmt.Errorf("failed to remove model %d: %w", model.Id, err)
	}

	g.logger.InfoContext(ctx, "Model removed successfully",
		slog.String("model_name", model.Name),
		slog.Int("model_id", model.Id),
	)

	return tx.Commit()
}

// ExportModel serializes a given model into a JSON format and writes it to the
// provided io.Writer. This is useful for backups or for transferring models.
func (g *Generator) ExportModel(ctx context.Context, model ModelInfo, w io.Writer) error {
	words, err := g.WordFrequencies(ctx, model, 0)
	if err != nil {
		return fmt.Errorf("could not query words for export: %w", err)
	}

	exported := ExportedModel{
		Name:        model.Name,
		Words:       make(map[string]int, len(words)),
		Transitions: []ExportedTransition{},
	}
	for _, wc := range words {
		exported.Words[wc.Word] = wc.Count
	}

	rows, err := g.db.QueryContext(ctx, `
SELECT pv.token_text, nv.token_text, t.frequency FROM markov_transitions t
JOIN markov_vocabulary pv ON pv.token_id = t.prev_token_id
JOIN markov_vocabulary nv ON nv.token_id = t.next_token_id
WHERE t.model_id = ?`, model.Id)
	if err != nil {
		return fmt.Errorf("could not query transitions for export: %w", err)
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	for rows.Next() {
		var tr ExportedTransition
		if err := rows.Scan(&tr.From, &tr.To, &tr.Frequency); err != nil {
			return err
		}
		exported.Transitions = append(exported.Transitions, tr)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	// Stable output makes exports diffable.
	sort.Slice(exported.Transitions, func(i, j int) bool {
		a, b := exported.Transitions[i], exported.Transitions[j]
		if a.From != b.From {
			return a.From < b.From
		}
		return a.To < b.To
	})

	g.logger.InfoContext(ctx, "Model exported",
		slog.String("model_name", model.Name),
		slog.Int("model_id", model.Id),
		slog.Int("words_exported", len(exported.Words)),
		slog.Int("transitions_exported", len(exported.Transitions)),
	)

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(exported)
}

// ImportModel reads a JSON representation of a model from an io.Reader and
// merges its data into the database. If the model name already exists, the
// counts are added to the existing ones. If the model does not exist, it is
// created. The entire operation is transactional.
func (g *Generator) ImportModel(ctx context.Context, r io.Reader) (ModelInfo, error) {
	var imported ExportedModel
	if err := json.NewDecoder(r).Decode(&imported); err != nil {
		return ModelInfo{}, fmt.Errorf("failed to decode json model: %w", err)
	}
	if imported.Name == "" {
		return ModelInfo{}, fmt.Errorf("%w: imported model has no name", ErrInvalidArgument)
	}

	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return ModelInfo{}, fmt.Errorf("could not begin transaction for import: %w", err)
	}
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	var modelID int
	err = tx.QueryRowContext(ctx, "SELECT model_id FROM markov_models WHERE model_name = ?", imported.Name).Scan(&modelID)
	if errors.Is(err, sql.ErrNoRows) {
		res, err := tx.ExecContext(ctx, "INSERT INTO markov_models (model_name) VALUES (?)", imported.Name)
		if err != nil {
			return ModelInfo{}, fmt.Errorf("failed to insert new model '%s': %w", imported.Name, err)
		}
		newID, _ := res.LastInsertId()
		modelID = int(newID)
	} else if err != nil {
		return ModelInfo{}, fmt.Errorf("failed to query for model '%s': %w", imported.Name, err)
	}

	stmtInsertVocab := tx.StmtContext(ctx, g.stmtInsertVocab)
	stmtUpsertWord := tx.StmtContext(ctx, g.stmtUpsertWordCount)
	stmtUpsertTransition := tx.StmtContext(ctx, g.stmtUpsertTransitionCt)

	vocab := make(map[string]int, len(imported.Words))
	tokenID := func(text string) (int, error) {
		if id, ok := vocab[text]; ok {
			return id, nil
		}
		var id int
		if err := stmtInsertVocab.QueryRowContext(ctx, text).Scan(&id); err != nil {
			return 0, fmt.Errorf("failed to get/insert vocab '%s': %w", text, err)
		}
		vocab[text] = id
		return id, nil
	}

	for text, count := range imported.Words {
		if count < 1 {
			return ModelInfo{}, fmt.Errorf("%w: word %q has count %d", ErrInvalidArgument, text, count)
		}
		id, err := tokenID(text)
		if err != nil {
			return ModelInfo{}, err
		}
		if _, err = stmtUpsertWord.ExecContext(ctx, modelID, id, count); err != nil {
			return ModelInfo{}, fmt.Errorf("failed to merge word count for '%s': %w", text, err)
		}
	}

	for _, tr := range imported.Transitions {
		if tr.Frequency < 1 {
			return ModelInfo{}, fmt.Errorf("%w: transition (%s -> %s) has frequency %d", ErrInvalidArgument, tr.From, tr.To, tr.Frequency)
		}
		if _, ok := imported.Words[tr.From]; !ok {
			return ModelInfo{}, fmt.Errorf("import consistency error: transition source %q not in word list", tr.From)
		}
		if _, ok := imported.Words[tr.To]; !ok {
			return ModelInfo{}, fmt.Errorf("import consistency error: transition target %q not in word list", tr.To)
		}
		fromID, _ := tokenID(tr.From)
		toID, _ := tokenID(tr.To)
		if _, err = stmtUpsertTransition.ExecContext(ctx, modelID, fromID, toID, tr.Frequency); err != nil {
			return ModelInfo{}, fmt.Errorf("failed to merge transition (%s -> %s): %w", tr.From, tr.To, err)
		}
	}

	g.logger.InfoContext(ctx, "Model imported successfully",
		slog.String("model_name", imported.Name),
		slog.Int("target_model_id", modelID),
		slog.Int("words_merged", len(imported.Words)),
		slog.Int("transitions_merged", len(imported.Transitions)),
	)

	if err = tx.Commit(); err != nil {
		return ModelInfo{}, err
	}
	return ModelInfo{Id: modelID, Name: imported.Name}, nil
}
