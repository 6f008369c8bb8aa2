// Package embed orchestrates embed-token issuance and token-bound query
// resolution.
package embed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"embedgraph-backend/domain/embed"
	"embedgraph-backend/infrastructure/graph"
	apperrors "embedgraph-backend/pkg/errors"
)

// TokenStore is the persistence port for embed tokens.
type TokenStore interface {
	Create(ctx context.Context, token, cypherQuery string, expiresAt time.Time) (*embed.Token, error)
	FindByToken(ctx context.Context, token string) (*embed.Token, error)
	DeleteByToken(ctx context.Context, token string) (bool, error)
	DeleteExpired(ctx context.Context) (int64, error)
	CountActive(ctx context.Context) (int64, error)
}

// QueryExecutor is the read-only graph execution port.
type QueryExecutor interface {
	Execute(ctx context.Context, cypher string, params map[string]any) (*graph.GraphData, error)
}

// Options configures issuance behavior.
type Options struct {
	BaseURL           string
	DefaultExpiryDays int
	MaxExpiryDays     int
}

// Service wires the token store and query executor behind the issuance and
// proxy operations.
type Service struct {
	store    TokenStore
	executor QueryExecutor
	logger   *zap.Logger
	opts     Options

	now      func() time.Time
	newToken func() string
}

// NewService creates the embed service.
func NewService(store TokenStore, executor QueryExecutor, logger *zap.Logger, opts Options) *Service {
	if opts.DefaultExpiryDays < 1 {
		opts.DefaultExpiryDays = 1
	}
	if opts.MaxExpiryDays < opts.DefaultExpiryDays {
		opts.MaxExpiryDays = opts.DefaultExpiryDays
	}
	return &Service{
		store:    store,
		executor: executor,
		logger:   logger,
		opts:     opts,
		now:      time.Now,
		newToken: func() string { return uuid.New().String() },
	}
}

// IssueResult is the issuance response payload.
type IssueResult struct {
	EmbedURL   string    `json:"embedUrl"`
	EmbedToken string    `json:"embedToken"`
	ExpiresAt  time.Time `json:"expiresAt"`
	ExpiresIn  int64     `json:"expiresIn"` // seconds
}

// Issue creates a new embed token bound to the given query and returns the
// shareable URL. A nil expiresInDays means the configured default; explicit
// values are clamped to [1, max] rather than rejected.
func (s *Service) Issue(ctx context.Context, cypherQuery string, expiresInDays *int) (*IssueResult, error) {
	cypherQuery = strings.TrimSpace(cypherQuery)
	if cypherQuery == "" {
		return nil, apperrors.NewValidationError("Cypher query is required")
	}

	days := s.opts.DefaultExpiryDays
	if expiresInDays != nil {
		days = clamp(*expiresInDays, 1, s.opts.MaxExpiryDays)
	}

	expiresIn := int64(days) * 24 * 60 * 60
	expiresAt := s.now().Add(time.Duration(expiresIn) * time.Second)

	token := s.newToken()
	created, err := s.store.Create(ctx, token, cypherQuery, expiresAt)
	if apperrors.IsConflict(err) {
		// A UUID collision is astronomically unlikely; one regeneration
		// covers it.
		token = s.newToken()
		created, err = s.store.Create(ctx, token, cypherQuery, expiresAt)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("embed token issued",
		zap.String("tokenID", created.ID),
		zap.Int("expiresInDays", days),
		zap.Time("expiresAt", created.ExpiresAt),
	)

	return &IssueResult{
		EmbedURL:   s.embedURL(created.Token),
		EmbedToken: created.Token,
		ExpiresAt:  created.ExpiresAt,
		ExpiresIn:  expiresIn,
	}, nil
}

// Resolve runs the token-bound proxy: look up the token, reject it when
// absent or expired, otherwise execute its bound query and return the
// normalized graph. The bound query is fully self-contained; no caller
// parameters are ever passed through.
func (s *Service) Resolve(ctx context.Context, token string) (*graph.GraphData, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, apperrors.NewValidationError("Token is required")
	}

	row, err := s.store.FindByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, apperrors.NewUnauthorizedError("Invalid embed token").WithCode("INVALID_TOKEN")
	}

	if row.IsExpiredAt(s.now()) {
		message := fmt.Sprintf("Embed token expired at %s", row.ExpiresAt.Format(time.RFC3339))
		return nil, apperrors.NewUnauthorizedError(message).WithCode("TOKEN_EXPIRED")
	}

	data, err := s.executor.Execute(ctx, row.CypherQuery, nil)
	if err != nil {
		s.logger.Error("bound query execution failed",
			zap.String("tokenID", row.ID),
			zap.Error(err),
		)
		return nil, err
	}

	return data, nil
}

// Lookup returns the stored token row without applying any expiry policy.
// Used by the viewer page, which distinguishes unknown from expired tokens.
func (s *Service) Lookup(ctx context.Context, token string) (*embed.Token, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, apperrors.NewValidationError("Token is required")
	}

	row, err := s.store.FindByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, apperrors.NewNotFoundError("embed token")
	}
	return row, nil
}

// Revoke removes a token, immediately invalidating its embed URL.
func (s *Service) Revoke(ctx context.Context, token string) (bool, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return false, apperrors.NewValidationError("Token is required")
	}
	return s.store.DeleteByToken(ctx, token)
}

// ActiveTokens reports how many tokens have not yet expired.
func (s *Service) ActiveTokens(ctx context.Context) (int64, error) {
	return s.store.CountActive(ctx)
}

// SweepExpired removes expired rows once and returns the number removed.
func (s *Service) SweepExpired(ctx context.Context) (int64, error) {
	count, err := s.store.DeleteExpired(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		s.logger.Info("swept expired embed tokens", zap.Int64("removed", count))
	}
	return count, nil
}

// StartSweeper runs SweepExpired on a timer until the context is canceled.
// Expiry enforcement never depends on the sweep; the read path rejects
// expired tokens on its own.
func (s *Service) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := s.SweepExpired(ctx); err != nil {
					s.logger.Error("expired token sweep failed", zap.Error(err))
				}
			}
		}
	}()
}

func (s *Service) embedURL(token string) string {
	return fmt.Sprintf("%s/view/%s", strings.TrimRight(s.opts.BaseURL, "/"), token)
}

func clamp(value, low, high int) int {
	if value < low {
		return low
	}
	if value > high {
		return high
	}
	return value
}
