package trace

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Run is one recorded run.
type Run struct {
	Token     string `json:"token"`
	Mode      string `json:"mode"`
	Source    string `json:"source"`
	CreatedAt string `json:"created_at"`
}

// InvocationRecord is one stored invocation. Args and ActionPayload hold
// canonical JSON as written.
type InvocationRecord struct {
	Seq           int    `json:"seq"`
	Verb          string `json:"verb"`
	Args          string `json:"args"`
	ActionKind    string `json:"action_kind,omitempty"`
	ActionPayload string `json:"action_payload,omitempty"`
}

// ErrRunNotFound reports a token absent from the store.
var ErrRunNotFound = errors.New("run not found")

// ListRuns returns the most recent runs, newest first. limit <= 0 means
// no limit.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT token, mode, source, created_at FROM runs ORDER BY created_at DESC, token DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.Token, &r.Mode, &r.Source, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadRun returns one run and its invocations in sequence order.
func (s *Store) ReadRun(ctx context.Context, token string) (Run, []InvocationRecord, error) {
	var run Run
	err := s.db.QueryRowContext(ctx, `
		SELECT token, mode, source, created_at FROM runs WHERE token = ?
	`, token).Scan(&run.Token, &run.Mode, &run.Source, &run.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, nil, fmt.Errorf("%w: %s", ErrRunNotFound, token)
	}
	if err != nil {
		return Run{}, nil, fmt.Errorf("query run: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, verb, args, action_kind, action_payload
		FROM invocations
		WHERE run_token = ?
		ORDER BY seq ASC
	`, token)
	if err != nil {
		return Run{}, nil, fmt.Errorf("query invocations: %w", err)
	}
	defer rows.Close()

	invs := []InvocationRecord{}
	for rows.Next() {
		var (
			rec     InvocationRecord
			kind    sql.NullString
			payload sql.NullString
		)
		if err := rows.Scan(&rec.Seq, &rec.Verb, &rec.Args, &kind, &payload); err != nil {
			return Run{}, nil, fmt.Errorf("scan invocation: %w", err)
		}
		rec.ActionKind = kind.String
		rec.ActionPayload = payload.String
		invs = append(invs, rec)
	}
	if err := rows.Err(); err != nil {
		return Run{}, nil, fmt.Errorf("iterate invocations: %w", err)
	}

	return run, invs, nil
}
