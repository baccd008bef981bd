// Package store is the SQLite knowledge store: the user's lexicon of lemmas
// and surface forms, the ignore list, the feedback log and the per-decision
// event log.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"stavekontrol/internal/typo"
)

// ErrUnavailable wraps driver-level failures so callers can surface them as
// a service-level "unavailable" condition instead of retrying internally.
var ErrUnavailable = errors.New("knowledge store unavailable")

type Store struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database at path and applies the
// schema. The WAL pragma keeps concurrent classification reads cheap.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open knowledge store: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS lexemes (
	id     INTEGER PRIMARY KEY AUTOINCREMENT,
	lemma  TEXT NOT NULL UNIQUE,
	source TEXT NOT NULL DEFAULT 'user'
);
CREATE TABLE IF NOT EXISTS surface_forms (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	lexeme_id INTEGER NOT NULL REFERENCES lexemes(id) ON DELETE CASCADE,
	form      TEXT NOT NULL,
	source    TEXT NOT NULL DEFAULT 'user',
	UNIQUE(lexeme_id, form)
);
CREATE INDEX IF NOT EXISTS idx_surface_forms_form ON surface_forms(form);
CREATE TABLE IF NOT EXISTS ignored_tokens (
	token      TEXT NOT NULL,
	scope      TEXT NOT NULL,
	expires_at INTEGER, -- unix seconds; NULL = never expires
	PRIMARY KEY (token, scope)
);
CREATE TABLE IF NOT EXISTS typo_feedback (
	id                INTEGER PRIMARY KEY AUTOINCREMENT,
	raw_token         TEXT NOT NULL,
	predicted_status  TEXT NOT NULL,
	suggestions_shown TEXT NOT NULL,
	user_action       TEXT NOT NULL,
	chosen_value      TEXT,
	created_at        TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS token_events (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	raw_token        TEXT NOT NULL,
	normalized_token TEXT NOT NULL,
	final_status     TEXT NOT NULL,
	top_suggestion   TEXT,
	confidence       REAL NOT NULL,
	latency_ms       REAL NOT NULL,
	created_at       TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);`
	if _, err := s.db.Exec(ddl); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
}

// UserLemmas returns every lemma in the lexicon.
func (s *Store) UserLemmas(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT lemma FROM lexemes ORDER BY lemma`)
	if err != nil {
		return nil, storeErr("select lexemes", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var lemma string
		if err := rows.Scan(&lemma); err != nil {
			return nil, storeErr("scan lexeme", err)
		}
		out = append(out, lemma)
	}
	return out, rows.Err()
}

// InsertLemma adds a lemma if absent, together with its identity surface
// form so exact-match lookups see it immediately.
func (s *Store) InsertLemma(ctx context.Context, lemma, source string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storeErr("begin insert lemma", err)
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO lexemes (lemma, source) VALUES (?, ?)`, lemma, source); err != nil {
		return storeErr("insert lexeme", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO surface_forms (lexeme_id, form, source)
		 SELECT id, ?, ? FROM lexemes WHERE lemma = ?`, lemma, source, lemma); err != nil {
		return storeErr("insert surface form", err)
	}
	if err := tx.Commit(); err != nil {
		return storeErr("commit insert lemma", err)
	}
	return nil
}

// AddSurfaceForm attaches an inflected form to an existing lemma.
func (s *Store) AddSurfaceForm(ctx context.Context, lemma, form, source string) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO surface_forms (lexeme_id, form, source)
		 SELECT id, ?, ? FROM lexemes WHERE lemma = ?`, form, source, lemma)
	if err != nil {
		return storeErr("insert surface form", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		if known, kerr := s.LemmaExists(ctx, lemma); kerr == nil && !known {
			return fmt.Errorf("unknown lemma %q", lemma)
		}
	}
	return nil
}

// LookupSurfaceForm finds the lemma owning an exact surface form.
func (s *Store) LookupSurfaceForm(ctx context.Context, form string) (lemma, matched string, ok bool, err error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT l.lemma, sf.form
		 FROM surface_forms sf
		 JOIN lexemes l ON l.id = sf.lexeme_id
		 WHERE sf.form = ?
		 LIMIT 1`, form)
	switch err := row.Scan(&lemma, &matched); {
	case errors.Is(err, sql.ErrNoRows):
		return "", "", false, nil
	case err != nil:
		return "", "", false, storeErr("lookup surface form", err)
	}
	return lemma, matched, true, nil
}

// LemmaExists is the exact lemma membership test.
func (s *Store) LemmaExists(ctx context.Context, lemma string) (bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT 1 FROM lexemes WHERE lemma = ? LIMIT 1`, lemma)
	var one int
	switch err := row.Scan(&one); {
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	case err != nil:
		return false, storeErr("lookup lemma", err)
	}
	return true, nil
}

// IgnoredTokens returns unexpired ignore entries.
func (s *Store) IgnoredTokens(ctx context.Context) ([]typo.IgnoredToken, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT token, scope, expires_at FROM ignored_tokens
		 WHERE expires_at IS NULL OR expires_at > ?`, time.Now().Unix())
	if err != nil {
		return nil, storeErr("select ignored tokens", err)
	}
	defer rows.Close()
	var out []typo.IgnoredToken
	for rows.Next() {
		var tok typo.IgnoredToken
		var expires sql.NullInt64
		if err := rows.Scan(&tok.Token, &tok.Scope, &expires); err != nil {
			return nil, storeErr("scan ignored token", err)
		}
		if expires.Valid {
			t := time.Unix(expires.Int64, 0)
			tok.ExpiresAt = &t
		}
		out = append(out, tok)
	}
	return out, rows.Err()
}

// InsertIgnoredToken upserts an ignore entry; a later call refreshes the
// expiry for the same (token, scope).
func (s *Store) InsertIgnoredToken(ctx context.Context, token typo.IgnoredToken) error {
	var expires interface{}
	if token.ExpiresAt != nil {
		expires = token.ExpiresAt.Unix()
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO ignored_tokens (token, scope, expires_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT(token, scope) DO UPDATE SET expires_at = excluded.expires_at`,
		token.Token, token.Scope, expires); err != nil {
		return storeErr("insert ignored token", err)
	}
	return nil
}

// InsertFeedback appends one feedback row.
func (s *Store) InsertFeedback(ctx context.Context, fb typo.Feedback) error {
	shown, err := json.Marshal(fb.SuggestionsShown)
	if err != nil {
		return fmt.Errorf("encode suggestions: %w", err)
	}
	var chosen interface{}
	if fb.ChosenValue != "" {
		chosen = fb.ChosenValue
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO typo_feedback (raw_token, predicted_status, suggestions_shown, user_action, chosen_value)
		 VALUES (?, ?, ?, ?, ?)`,
		fb.RawToken, fb.PredictedStatus, string(shown), fb.UserAction, chosen); err != nil {
		return storeErr("insert feedback", err)
	}
	return nil
}

// InsertTokenEvent appends one decision event.
func (s *Store) InsertTokenEvent(ctx context.Context, ev typo.TokenEvent) error {
	var top interface{}
	if ev.TopSuggestion != "" {
		top = ev.TopSuggestion
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO token_events (raw_token, normalized_token, final_status, top_suggestion, confidence, latency_ms)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		ev.RawToken, ev.Normalized, ev.Status, top, ev.Confidence, ev.LatencyMS); err != nil {
		return storeErr("insert token event", err)
	}
	return nil
}

// TokenEventCount supports operational checks and tests.
func (s *Store) TokenEventCount(ctx context.Context) (int, error) {
	row := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM token_events`)
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, storeErr("count token events", err)
	}
	return n, nil
}

// SeedStarterLexemes inserts the starter vocabulary used by fresh
// deployments; existing rows are left untouched.
func SeedStarterLexemes(ctx context.Context, s *Store) (int, error) {
	starter := []string{"bog", "kan", "lide"}
	inserted := 0
	for _, lemma := range starter {
		known, err := s.LemmaExists(ctx, lemma)
		if err != nil {
			return inserted, err
		}
		if known {
			continue
		}
		if err := s.InsertLemma(ctx, lemma, "seed"); err != nil {
			return inserted, err
		}
		inserted++
	}
	return inserted, nil
}

// PurgeExpiredIgnores removes ignore rows whose expiry has passed.
func (s *Store) PurgeExpiredIgnores(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM ignored_tokens WHERE expires_at IS NOT NULL AND expires_at <= ?`, time.Now().Unix())
	if err != nil {
		return 0, storeErr("purge ignored tokens", err)
	}
	return res.RowsAffected()
}
