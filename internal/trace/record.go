package trace

import (
	"context"
	"fmt"

	"github.com/roach88/verba/ast"
	"github.com/roach88/verba/interp"
)

// Recorder writes completed runs to the store. It satisfies the
// engine's Recorder interface.
type Recorder struct {
	store  *Store
	tokens TokenGenerator
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithTokenGenerator overrides the run token source. Tests use
// FixedGenerator for stable tokens.
func WithTokenGenerator(g TokenGenerator) RecorderOption {
	return func(r *Recorder) { r.tokens = g }
}

// NewRecorder creates a Recorder over the store.
func NewRecorder(store *Store, opts ...RecorderOption) *Recorder {
	r := &Recorder{
		store:  store,
		tokens: UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RecordRun persists one run and its invocations in a single
// transaction and returns the run token. Arguments and action payloads
// are stored as canonical JSON, so identical runs produce identical
// rows.
func (r *Recorder) RecordRun(ctx context.Context, mode, source string, invs []interp.Invocation) (string, error) {
	token := r.tokens.Generate()

	tx, err := r.store.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("record run: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (token, mode, source) VALUES (?, ?, ?)
	`, token, mode, source)
	if err != nil {
		return "", fmt.Errorf("record run: insert run: %w", err)
	}

	for seq, inv := range invs {
		argsJSON, err := ast.MarshalCanonical(map[string]ast.Value(inv.Args))
		if err != nil {
			return "", fmt.Errorf("record run: marshal args of %s: %w", inv.Verb, err)
		}

		var kind, payload any
		if inv.Action != nil {
			kind = inv.Action.Kind
			payloadJSON, err := ast.MarshalCanonical(inv.Action.Payload)
			if err != nil {
				return "", fmt.Errorf("record run: marshal %s payload: %w", inv.Action.Kind, err)
			}
			payload = string(payloadJSON)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO invocations (run_token, seq, verb, args, action_kind, action_payload)
			VALUES (?, ?, ?, ?, ?, ?)
		`, token, seq, inv.Verb, string(argsJSON), kind, payload)
		if err != nil {
			return "", fmt.Errorf("record run: insert invocation %d: %w", seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("record run: commit: %w", err)
	}
	return token, nil
}
