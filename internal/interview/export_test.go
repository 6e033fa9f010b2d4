package interview

import (
	"context"
	"database/sql"
)

// DB exposes the internal *sql.DB for tests.
// This file only compiles during `go test`.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

// FailWrites makes every subsequent write fail with err.
func (s *SQLiteStore) FailWrites(err error) {
	s.hooks.exec = func(context.Context, execer, string, ...any) (sql.Result, error) {
		return nil, err
	}
}

// inFlightCount reports how many interview ids are currently held.
func (e *Engine) inFlightCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.inFlight)
}
