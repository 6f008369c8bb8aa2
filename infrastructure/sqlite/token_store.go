// Package sqlite implements the persistent embed-token store.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"embedgraph-backend/domain/embed"
	apperrors "embedgraph-backend/pkg/errors"
)

// timeLayout is the canonical storage format for timestamps: RFC 3339 in UTC
// with a fixed-width nine-digit fraction. The fixed width matters: a trimmed
// fraction (time.RFC3339Nano drops trailing zeros) makes "...07.5Z" sort
// after "...07.53Z", so expiry comparisons inside SQLite would diverge from
// chronological order. With every timestamp the same width, lexicographic and
// chronological order coincide and expiry checks run as plain string
// comparisons.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// TokenStore persists embed tokens in a local SQLite database. Every mutating
// operation commits before returning; a token handed to a caller is durable.
type TokenStore struct {
	db *sql.DB
}

// OpenTokenStore opens (and if needed creates) the store at the given path.
func OpenTokenStore(path string) (*TokenStore, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// Tokens are bearer-credential-equivalent artifacts, so writes must hit
	// disk before Create returns.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=FULL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return &TokenStore{db: db}, nil
}

// Create inserts a new token row. The id and creation timestamp are assigned
// by the store. Returns a ConflictError when the token string already exists;
// the UNIQUE constraint makes detect-then-insert races impossible.
func (s *TokenStore) Create(ctx context.Context, token, cypherQuery string, expiresAt time.Time) (*embed.Token, error) {
	createdAt := time.Now().UTC()
	row := &embed.Token{
		ID:          uuid.New().String(),
		Token:       token,
		CypherQuery: cypherQuery,
		ExpiresAt:   expiresAt.UTC(),
		CreatedAt:   createdAt,
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO embed_tokens (id, embed_token, cypher_query, expires_at, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		row.ID,
		row.Token,
		row.CypherQuery,
		row.ExpiresAt.Format(timeLayout),
		row.CreatedAt.Format(timeLayout),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.NewConflictError("embed token already exists").WithCause(err)
		}
		return nil, apperrors.NewDatabaseError("create embed token", err)
	}

	return row, nil
}

// FindByToken returns the row for the given token string, or nil when no such
// row exists. Expired rows are returned as-is; expiry policy belongs to the
// caller.
func (s *TokenStore) FindByToken(ctx context.Context, token string) (*embed.Token, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, embed_token, cypher_query, expires_at, created_at
		 FROM embed_tokens
		 WHERE embed_token = ?`,
		token,
	)

	var (
		result    embed.Token
		expiresAt string
		createdAt string
	)
	err := row.Scan(&result.ID, &result.Token, &result.CypherQuery, &expiresAt, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewDatabaseError("find embed token", err)
	}

	if result.ExpiresAt, err = time.Parse(timeLayout, expiresAt); err != nil {
		return nil, apperrors.NewDatabaseError("parse expires_at", err)
	}
	if result.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, apperrors.NewDatabaseError("parse created_at", err)
	}

	return &result, nil
}

// DeleteByToken removes the row for the given token string. Idempotent;
// reports whether a row was actually removed.
func (s *TokenStore) DeleteByToken(ctx context.Context, token string) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM embed_tokens WHERE embed_token = ?`, token)
	if err != nil {
		return false, apperrors.NewDatabaseError("delete embed token", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, apperrors.NewDatabaseError("delete embed token", err)
	}
	return affected > 0, nil
}

// DeleteExpired removes every row whose expiry has passed and returns the
// number of rows removed. Called by the periodic sweep, never by the request
// path.
func (s *TokenStore) DeleteExpired(ctx context.Context) (int64, error) {
	now := time.Now().UTC().Format(timeLayout)
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM embed_tokens WHERE expires_at <= ?`, now)
	if err != nil {
		return 0, apperrors.NewDatabaseError("delete expired tokens", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.NewDatabaseError("delete expired tokens", err)
	}
	return affected, nil
}

// CountActive returns the number of rows that have not yet expired.
func (s *TokenStore) CountActive(ctx context.Context) (int64, error) {
	now := time.Now().UTC().Format(timeLayout)

	var count int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM embed_tokens WHERE expires_at > ?`, now,
	).Scan(&count)
	if err != nil {
		return 0, apperrors.NewDatabaseError("count active tokens", err)
	}
	return count, nil
}

// Ping verifies store connectivity.
func (s *TokenStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying database handle.
func (s *TokenStore) Close() error {
	return s.db.Close()
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
