// Package sqlite persists knowledge bases in a SQLite database.
//
// Clauses are stored as text in the parser syntax, one row per clause, keeping
// whether each was a fact or a rule and the order they were saved in.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"

	_ "modernc.org/sqlite"

	"github.com/brunokim/backchain/kb"
	"github.com/brunokim/backchain/logic"
	"github.com/brunokim/backchain/parser"
)

const (
	kindFact = "fact"
	kindRule = "rule"
)

// Store is a clause store backed by a SQLite file.
type Store struct {
	db       *sql.DB
	readOnly bool
}

// Open opens or creates the database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// OpenReadOnly opens an existing database at path for Load and Counts only. The file
// is neither created nor migrated, and no journal files are written next to it.
func OpenReadOnly(ctx context.Context, path string) (*Store, error) {
	dsn := "file:" + (&url.URL{Path: path}).EscapedPath() + "?mode=ro"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db, readOnly: true}, nil
}

// Close closes the database connection. Stores opened for writing are switched back
// to a rollback journal first, so the file is complete on its own.
func (s *Store) Close() error {
	var err error
	if !s.readOnly {
		_, err = s.db.Exec("PRAGMA journal_mode=DELETE")
	}
	return errors.Join(err, s.db.Close())
}

func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS clauses (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	kind TEXT NOT NULL CHECK(kind IN ('fact', 'rule')),
	text TEXT NOT NULL
);
`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// Save replaces the stored clauses with the contents of k.
func (s *Store) Save(ctx context.Context, k *kb.KB) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM clauses"); err != nil {
		return fmt.Errorf("clear clauses: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, "INSERT INTO clauses (kind, text) VALUES (?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, fact := range k.Facts() {
		if _, err := stmt.ExecContext(ctx, kindFact, logic.NewRule(fact).String()); err != nil {
			return fmt.Errorf("insert fact %v: %w", fact, err)
		}
	}
	for _, r := range k.Rules() {
		if _, err := stmt.ExecContext(ctx, kindRule, r.String()); err != nil {
			return fmt.Errorf("insert rule %v: %w", r, err)
		}
	}
	return tx.Commit()
}

// Load reads every stored clause into a new KB.
func (s *Store) Load(ctx context.Context) (*kb.KB, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, kind, text FROM clauses ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var facts []logic.Literal
	var rules []*logic.Rule
	for rows.Next() {
		var id int64
		var kind, text string
		if err := rows.Scan(&id, &kind, &text); err != nil {
			return nil, err
		}
		clauses, err := parser.ParseClauses(text)
		if err != nil {
			return nil, fmt.Errorf("clause %d: %w", id, err)
		}
		if len(clauses) != 1 {
			return nil, fmt.Errorf("clause %d: got %d clauses in %q", id, len(clauses), text)
		}
		c := clauses[0]
		switch kind {
		case kindFact:
			if len(c.Body) > 0 {
				return nil, fmt.Errorf("clause %d: fact with body: %v", id, c)
			}
			facts = append(facts, c.Head)
		case kindRule:
			rules = append(rules, c)
		default:
			return nil, fmt.Errorf("clause %d: unknown kind %q", id, kind)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return kb.New(facts, rules)
}

// Counts returns the number of stored facts and rules.
func (s *Store) Counts(ctx context.Context) (facts, rules int, err error) {
	row := s.db.QueryRowContext(ctx, `
SELECT
	COALESCE(SUM(kind = 'fact'), 0),
	COALESCE(SUM(kind = 'rule'), 0)
FROM clauses`)
	err = row.Scan(&facts, &rules)
	return facts, rules, err
}
