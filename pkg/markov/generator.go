package markov

import (
	"database/sql"
	"fmt"
	"io"
	"log/slog"
)

// SetupSchema initializes the necessary tables in the provided database. It
// should be called once on a new database before any other operations are
// performed. It is idempotent and safe to call on an already-initialized
// database.
func SetupSchema(db *sql.DB) error {

	const (
		schemaVocab = `
CREATE TABLE IF NOT EXISTS markov_vocabulary (
    token_id INTEGER PRIMARY KEY,
    token_text TEXT NOT NULL UNIQUE
);
`
		schemaModels = `
CREATE TABLE IF NOT EXISTS markov_models (
    model_id INTEGER PRIMARY KEY,
    model_name TEXT NOT NULL UNIQUE
);
`
		schemaWords = `
CREATE TABLE IF NOT EXISTS markov_words (
    model_id INTEGER NOT NULL,
    token_id INTEGER NOT NULL,
    frequency INTEGER NOT NULL DEFAULT 1,
    PRIMARY KEY (model_id, token_id)
);
`
		schemaTransitions = `
CREATE TABLE IF NOT EXISTS markov_transitions (
    model_id INTEGER NOT NULL,
    prev_token_id INTEGER NOT NULL,
    next_token_id INTEGER NOT NULL,
    frequency INTEGER NOT NULL DEFAULT 1,
    PRIMARY KEY (model_id, prev_token_id, next_token_id)
);
`
	)

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}

	// If the transaction succeeds, tx.Commit() will be called first, and the rollback will do nothing. If it fails, this will clean up.
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	if _, err = tx.Exec(schemaVocab); err != nil {
		return fmt.Errorf("could not create vocabulary schema: %w", err)
	}

	if _, err = tx.Exec(schemaModels); err != nil {
		return fmt.Errorf("could not create models schema: %w", err)
	}

	if _, err = tx.Exec(schemaWords); err != nil {
		return fmt.Errorf("could not create words schema: %w", err)
	}

	if _, err = tx.Exec(schemaTransitions); err != nil {
		return fmt.Errorf("could not create transitions schema: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}

	return nil
}

// Generator is the main entry point for interacting with the Markov chain library.
// It holds the database connection, a tokenizer, and prepared SQL statements
// for efficient database interaction.
type Generator struct {
	db                     *sql.DB
	tokenizer              Tokenizer
	stmtGetModelInfo       *sql.Stmt
	stmtGetModels          *sql.Stmt
	stmtAddModel           *sql.Stmt
	stmtPruneModel         *sql.Stmt
	stmtModelWordStats     *sql.Stmt
	stmtModelTransStats    *sql.Stmt
	stmtGetTokenID         *sql.Stmt
	stmtGetTokenText       *sql.Stmt
	stmtLookupWord         *sql.Stmt
	stmtGetTransitions     *sql.Stmt
	stmtTopWords           *sql.Stmt
	stmtGetVocabLen        *sql.Stmt
	stmtInsertVocab        *sql.Stmt
	stmtInsertTransition   *sql.Stmt
	stmtUpsertWordCount    *sql.Stmt
	stmtUpsertTransitionCt *sql.Stmt
	logger                 *slog.Logger
}

// NewGenerator creates and returns a new Generator. It takes a database connection
// and a Tokenizer implementation. It pre-compiles all necessary SQL statements,
// returning an error if any preparation fails.
func NewGenerator(db *sql.DB, tokenizer Tokenizer) (*Generator, error) {
	g := &Generator{
		db:        db,
		tokenizer: tokenizer,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	statements := []struct {
		dst   **sql.Stmt
		query string
	}{
		{&g.stmtGetModelInfo, `SELECT model_id FROM markov_models WHERE model_name = ?;`},
		{&g.stmtGetModels, `SELECT model_id, model_name FROM markov_models ORDER BY model_name;`},
		{&g.stmtAddModel, `INSERT INTO markov_models (model_name) VALUES (?);`},
		{&g.stmtPruneModel, `DELETE FROM markov_transitions WHERE model_id = ? AND frequency <= ?;`},
		{&g.stmtModelWordStats, `SELECT COUNT(*), coalesce(SUM(frequency), 0) FROM markov_words WHERE model_id = ?;`},
		{&g.stmtModelTransStats, `SELECT COUNT(*), coalesce(SUM(frequency), 0) FROM markov_transitions WHERE model_id = ?;`},
		{&g.stmtGetTokenID, `SELECT token_id FROM markov_vocabulary WHERE token_text = ?;`},
		{&g.stmtGetTokenText, `SELECT token_text FROM markov_vocabulary WHERE token_id = ?;`},
		{&g.stmtLookupWord, `
SELECT w.token_id FROM markov_words w
JOIN markov_vocabulary v ON v.token_id = w.token_id
WHERE w.model_id = ? AND v.token_text = ?;`},
		{&g.stmtGetTransitions, `
SELECT t.next_token_id, v.token_text, t.frequency FROM markov_transitions t
JOIN markov_vocabulary v ON v.token_id = t.next_token_id
WHERE t.model_id = ? AND t.prev_token_id = ?
ORDER BY v.token_text;`},
		// A negative LIMIT means no limit in SQLite.
		{&g.stmtTopWords, `
SELECT v.token_text, w.frequency FROM markov_words w
JOIN markov_vocabulary v ON v.token_id = w.token_id
WHERE w.model_id = ?
ORDER BY w.frequency DESC, v.token_text ASC
LIMIT ?;`},
		{&g.stmtGetVocabLen, `SELECT COUNT(*) FROM markov_vocabulary;`},
		{&g.stmtInsertVocab, `INSERT INTO markov_vocabulary (token_text) VALUES (?) ON CONFLICT(token_text) DO UPDATE SET token_text=excluded.token_text RETURNING token_id;`},
		{&g.stmtInsertTransition, `
INSERT INTO markov_transitions (model_id, prev_token_id, next_token_id, frequency) VALUES (?, ?, ?, 1)
ON CONFLICT(model_id, prev_token_id, next_token_id) DO UPDATE SET frequency = frequency + 1;`},
		{&g.stmtUpsertWordCount, `
INSERT INTO markov_words (model_id, token_id, frequency) VALUES (?, ?, ?)
ON CONFLICT(model_id, token_id) DO UPDATE SET frequency = frequency + excluded.frequency;`},
		{&g.stmtUpsertTransitionCt, `
INSERT INTO markov_transitions (model_id, prev_token_id, next_token_id, frequency) VALUES (?, ?, ?, ?)
ON CONFLICT(model_id, prev_token_id, next_token_id) DO UPDATE SET frequency = frequency + excluded.frequency;`},
	}

	for _, s := range statements {
		stmt, err := db.Prepare(s.query)
		if err != nil {
			g.Close()
			return nil, fmt.Errorf("could not prepare statement: %w", err)
		}
		*s.dst = stmt
	}

	return g, nil
}

// Close releases all prepared SQL statements held by the Generator. It should be
// called when the Generator is no longer needed to free up database resources.
func (g *Generator) Close() {
	for _, stmt := range []*sql.Stmt{
		g.stmtGetModelInfo,
		g.stmtGetModels,
		g.stmtAddModel,
		g.stmtPruneModel,
		g.stmtModelWordStats,
		g.stmtModelTransStats,
		g.stmtGetTokenID,
		g.stmtGetTokenText,
		g.stmtLookupWord,
		g.stmtGetTransitions,
		g.stmtTopWords,
		g.stmtGetVocabLen,
		g.stmtInsertVocab,
		g.stmtInsertTransition,
		g.stmtUpsertWordCount,
		g.stmtUpsertTransitionCt,
	} {
		if stmt != nil {
			_ = stmt.Close()
		}
	}
}

// SetLogger sets the logger for the Generator. By default, all logs are discarded.
// Providing a `log/slog.Logger` will enable logging for training, generation,
// and other operations.
func (g *Generator) SetLogger(logger *slog.Logger) {
	if logger != nil {
		g.logger = logger
	}
}

// Tokenizer returns the tokenizer the Generator was created with.
func (g *Generator) Tokenizer() Tokenizer {
	return g.tokenizer
}
