package sqlite

// Schema for the token store. The embed token is the public lookup key and is
// unique across rows; expires_at is indexed so sweeps and active counts are
// range scans.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS embed_tokens (
	id          TEXT PRIMARY KEY,
	embed_token TEXT UNIQUE NOT NULL,
	cypher_query TEXT NOT NULL,
	expires_at  TEXT NOT NULL,
	created_at  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_embed_tokens_expires_at ON embed_tokens(expires_at);
`
