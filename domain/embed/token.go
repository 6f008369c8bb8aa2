// Package embed holds the embed-token domain entity.
package embed

import "time"

// Token binds an opaque embed token string to a fixed read-only Cypher query.
// A token is created once, read many times, and never mutated.
type Token struct {
	ID          string    `json:"id"`
	Token       string    `json:"embedToken"`
	CypherQuery string    `json:"cypherQuery"`
	ExpiresAt   time.Time `json:"expiresAt"`
	CreatedAt   time.Time `json:"createdAt"`
}

// IsExpiredAt reports whether the token is expired at the given instant.
// A token whose expiry equals the instant is already expired: validity
// requires now < expiresAt.
func (t *Token) IsExpiredAt(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// IsExpired reports whether the token is expired against wall-clock time.
func (t *Token) IsExpired() bool {
	return t.IsExpiredAt(time.Now())
}

// IsValid reports whether the token may still authorize its bound query.
func (t *Token) IsValid() bool {
	return !t.IsExpired()
}
