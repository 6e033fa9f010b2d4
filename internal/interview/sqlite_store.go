package interview

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tferrors "github.com/loqalabs/taskflow/internal/errors"

	_ "modernc.org/sqlite"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// timestampLayout is fixed-width RFC 3339 in UTC, so stored timestamps
// compare correctly as strings.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore keeps interviews in a single SQLite table.
type SQLiteStore struct {
	db    *sql.DB
	hooks storeHooks
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type storeHooks struct {
	exec    func(ctx context.Context, db execer, query string, args ...any) (sql.Result, error)
	beginTx func(ctx context.Context, db *sql.DB) (*sql.Tx, error)
	commit  func(tx *sql.Tx) error
}

func defaultStoreHooks() storeHooks {
	return storeHooks{
		exec: func(ctx context.Context, db execer, query string, args ...any) (sql.Result, error) {
			return db.ExecContext(ctx, query, args...)
		},
		beginTx: func(ctx context.Context, db *sql.DB) (*sql.Tx, error) {
			return db.BeginTx(ctx, nil)
		},
		commit: func(tx *sql.Tx) error {
			return tx.Commit()
		},
	}
}

// NewSQLiteStore opens (creating if needed) <dataDir>/taskflow.db with WAL
// mode and runs migrations.
func NewSQLiteStore(dataDir string) (*SQLiteStore, error) {
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("interview store: create data dir: %w", err)
	}

	dbPath := filepath.Join(dataDir, "taskflow.db")
	db, err := openDB("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("interview store: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = FULL",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("interview store: pragma %q: %w", p, err)
		}
	}

	s := &SQLiteStore{db: db, hooks: defaultStoreHooks()}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("interview store: migration: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS interviews (
			id                 TEXT    PRIMARY KEY,
			original_input     TEXT    NOT NULL DEFAULT '',
			answers            TEXT    NOT NULL DEFAULT '{}',
			sequence           TEXT    NOT NULL DEFAULT '[]',
			question_cursor    INTEGER NOT NULL DEFAULT 0,
			complete           INTEGER NOT NULL DEFAULT 0,
			suggested_category TEXT    NOT NULL DEFAULT '',
			suggested_priority TEXT    NOT NULL DEFAULT '',
			issue              TEXT,
			created_at         TEXT    NOT NULL,
			updated_at         TEXT    NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_interviews_complete ON interviews(complete, updated_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

const upsertInterview = `
	INSERT INTO interviews (
		id, original_input, answers, sequence, question_cursor, complete,
		suggested_category, suggested_priority, issue, created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

const onConflictUpdate = `
	ON CONFLICT(id) DO UPDATE SET
		original_input     = excluded.original_input,
		answers            = excluded.answers,
		sequence           = excluded.sequence,
		question_cursor    = excluded.question_cursor,
		complete           = excluded.complete,
		suggested_category = excluded.suggested_category,
		suggested_priority = excluded.suggested_priority,
		issue              = excluded.issue,
		updated_at         = excluded.updated_at`

const selectInterview = `
	SELECT id, original_input, answers, sequence, question_cursor, complete,
	       suggested_category, suggested_priority, issue, created_at, updated_at
	FROM interviews`

// Create inserts a new interview. It fails if the id is taken.
func (s *SQLiteStore) Create(ctx context.Context, st *State) error {
	args, err := stateArgs(st)
	if err != nil {
		return tferrors.NewStoreError("create", st.ID, err)
	}
	if _, err := s.hooks.exec(ctx, s.db, upsertInterview, args...); err != nil {
		return tferrors.NewStoreError("create", st.ID, err)
	}
	return nil
}

// Save writes the whole interview in one UPSERT.
func (s *SQLiteStore) Save(ctx context.Context, st *State) error {
	args, err := stateArgs(st)
	if err != nil {
		return tferrors.NewStoreError("save", st.ID, err)
	}
	if _, err := s.hooks.exec(ctx, s.db, upsertInterview+onConflictUpdate, args...); err != nil {
		return tferrors.NewStoreError("save", st.ID, err)
	}
	return nil
}

// Load reads one interview.
func (s *SQLiteStore) Load(ctx context.Context, id string) (*State, error) {
	row := s.db.QueryRowContext(ctx, selectInterview+` WHERE id = ?`, id)
	st, err := scanState(row)
	if tferrors.Is(err, sql.ErrNoRows) {
		return nil, tferrors.NewNotFoundError(id)
	}
	if err != nil {
		return nil, tferrors.NewStoreError("load", id, err)
	}
	return st, nil
}

// List returns every interview, oldest first.
func (s *SQLiteStore) List(ctx context.Context) ([]*State, error) {
	rows, err := s.db.QueryContext(ctx, selectInterview+` ORDER BY created_at, id`)
	if err != nil {
		return nil, tferrors.NewStoreError("list", "", err)
	}
	defer rows.Close()

	var result []*State
	for rows.Next() {
		st, err := scanState(rows)
		if err != nil {
			return nil, tferrors.NewStoreError("list", "", err)
		}
		result = append(result, st)
	}
	if err := rows.Err(); err != nil {
		return nil, tferrors.NewStoreError("list", "", err)
	}
	return result, nil
}

// DeleteCompletedBefore removes complete interviews last updated before
// cutoff in one transaction.
func (s *SQLiteStore) DeleteCompletedBefore(ctx context.Context, cutoff time.Time) ([]string, error) {
	tx, err := s.hooks.beginTx(ctx, s.db)
	if err != nil {
		return nil, tferrors.NewStoreError("cleanup", "", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	ts := cutoff.UTC().Format(timestampLayout)
	rows, err := tx.QueryContext(ctx, `SELECT id FROM interviews WHERE complete = 1 AND updated_at < ? ORDER BY id`, ts)
	if err != nil {
		return nil, tferrors.NewStoreError("cleanup", "", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, tferrors.NewStoreError("cleanup", "", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, tferrors.NewStoreError("cleanup", "", err)
	}

	if _, err := s.hooks.exec(ctx, tx, `DELETE FROM interviews WHERE complete = 1 AND updated_at < ?`, ts); err != nil {
		return nil, tferrors.NewStoreError("cleanup", "", err)
	}
	if err := s.hooks.commit(tx); err != nil {
		return nil, tferrors.NewStoreError("cleanup", "", err)
	}
	return ids, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanState(sc scanner) (*State, error) {
	var (
		st                   State
		answers, sequence    string
		complete             int
		issue                sql.NullString
		createdAt, updatedAt string
	)
	err := sc.Scan(&st.ID, &st.OriginalInput, &answers, &sequence, &st.Cursor, &complete,
		&st.SuggestedCategory, &st.SuggestedPriority, &issue, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	st.Complete = complete != 0
	if err := json.Unmarshal([]byte(answers), &st.Answers); err != nil {
		return nil, fmt.Errorf("decoding answers of %s: %w", st.ID, err)
	}
	if st.Answers == nil {
		st.Answers = make(map[QuestionID]AnswerValue)
	}
	if err := json.Unmarshal([]byte(sequence), &st.Sequence); err != nil {
		return nil, fmt.Errorf("decoding sequence of %s: %w", st.ID, err)
	}
	if issue.Valid && issue.String != "" {
		st.Issue = &IssueRef{}
		if err := json.Unmarshal([]byte(issue.String), st.Issue); err != nil {
			return nil, fmt.Errorf("decoding issue of %s: %w", st.ID, err)
		}
	}
	if st.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("decoding created_at of %s: %w", st.ID, err)
	}
	if st.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, fmt.Errorf("decoding updated_at of %s: %w", st.ID, err)
	}
	return &st, nil
}

func stateArgs(st *State) ([]any, error) {
	answers, err := json.Marshal(st.Answers)
	if err != nil {
		return nil, fmt.Errorf("encoding answers: %w", err)
	}
	sequence, err := json.Marshal(st.Sequence)
	if err != nil {
		return nil, fmt.Errorf("encoding sequence: %w", err)
	}
	var issue any
	if st.Issue != nil {
		b, err := json.Marshal(st.Issue)
		if err != nil {
			return nil, fmt.Errorf("encoding issue: %w", err)
		}
		issue = string(b)
	}
	complete := 0
	if st.Complete {
		complete = 1
	}
	return []any{
		st.ID, st.OriginalInput, string(answers), string(sequence), st.Cursor, complete,
		string(st.SuggestedCategory), string(st.SuggestedPriority), issue,
		st.CreatedAt.UTC().Format(timestampLayout), st.UpdatedAt.UTC().Format(timestampLayout),
	}, nil
}
