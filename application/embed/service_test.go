package embed

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	domainembed "embedgraph-backend/domain/embed"
	"embedgraph-backend/infrastructure/graph"
	apperrors "embedgraph-backend/pkg/errors"
)

type fakeStore struct {
	rows map[string]*domainembed.Token

	createErrs  []error
	findErr     error
	createCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{rows: make(map[string]*domainembed.Token)}
}

func (f *fakeStore) Create(_ context.Context, token, cypherQuery string, expiresAt time.Time) (*domainembed.Token, error) {
	f.createCalls++
	if len(f.createErrs) > 0 {
		err := f.createErrs[0]
		f.createErrs = f.createErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	row := &domainembed.Token{
		ID:          "id-" + token,
		Token:       token,
		CypherQuery: cypherQuery,
		ExpiresAt:   expiresAt,
		CreatedAt:   time.Now().UTC(),
	}
	f.rows[token] = row
	return row, nil
}

func (f *fakeStore) FindByToken(_ context.Context, token string) (*domainembed.Token, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.rows[token], nil
}

func (f *fakeStore) DeleteByToken(_ context.Context, token string) (bool, error) {
	if _, ok := f.rows[token]; !ok {
		return false, nil
	}
	delete(f.rows, token)
	return true, nil
}

func (f *fakeStore) DeleteExpired(_ context.Context) (int64, error) {
	var removed int64
	for token, row := range f.rows {
		if row.IsExpired() {
			delete(f.rows, token)
			removed++
		}
	}
	return removed, nil
}

func (f *fakeStore) CountActive(_ context.Context) (int64, error) {
	var active int64
	for _, row := range f.rows {
		if !row.IsExpired() {
			active++
		}
	}
	return active, nil
}

type fakeExecutor struct {
	lastCypher string
	lastParams map[string]any
	data       *graph.GraphData
	err        error
	calls      int
}

func (f *fakeExecutor) Execute(_ context.Context, cypher string, params map[string]any) (*graph.GraphData, error) {
	f.calls++
	f.lastCypher = cypher
	f.lastParams = params
	if f.err != nil {
		return nil, f.err
	}
	if f.data != nil {
		return f.data, nil
	}
	return &graph.GraphData{Nodes: []graph.Node{}, Relationships: []graph.Relationship{}}, nil
}

func newTestService(store *fakeStore, executor *fakeExecutor) *Service {
	return NewService(store, executor, zap.NewNop(), Options{
		BaseURL:           "https://embed.example.com",
		DefaultExpiryDays: 7,
		MaxExpiryDays:     90,
	})
}

func intPtr(v int) *int { return &v }

func TestIssue_DefaultExpiry(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeExecutor{})

	issuedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issuedAt }

	result, err := svc.Issue(context.Background(), "MATCH (n) RETURN n LIMIT 10", nil)
	require.NoError(t, err)

	assert.Equal(t, issuedAt.Add(7*24*time.Hour), result.ExpiresAt)
	assert.Equal(t, int64(7*24*60*60), result.ExpiresIn)
	assert.Equal(t, "https://embed.example.com/view/"+result.EmbedToken, result.EmbedURL)
	assert.Contains(t, store.rows, result.EmbedToken)
}

func TestIssue_ExpiryClamped(t *testing.T) {
	tests := []struct {
		name     string
		days     *int
		wantDays int
	}{
		{"omitted uses default", nil, 7},
		{"zero clamps low", intPtr(0), 1},
		{"negative clamps low", intPtr(-3), 1},
		{"in range passes through", intPtr(30), 30},
		{"above max clamps high", intPtr(365), 90},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(newFakeStore(), &fakeExecutor{})
			issuedAt := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
			svc.now = func() time.Time { return issuedAt }

			result, err := svc.Issue(context.Background(), "MATCH (n) RETURN n", tt.days)
			require.NoError(t, err)

			assert.Equal(t, issuedAt.AddDate(0, 0, tt.wantDays), result.ExpiresAt)
			assert.Equal(t, int64(tt.wantDays)*24*60*60, result.ExpiresIn)
		})
	}
}

func TestIssue_BlankQueryRejected(t *testing.T) {
	svc := newTestService(newFakeStore(), &fakeExecutor{})

	for _, query := range []string{"", "   ", "\n\t"} {
		_, err := svc.Issue(context.Background(), query, nil)
		assert.True(t, apperrors.IsValidation(err))
	}
}

func TestIssue_RegeneratesOnCollision(t *testing.T) {
	store := newFakeStore()
	store.createErrs = []error{apperrors.NewConflictError("embed token already exists")}
	svc := newTestService(store, &fakeExecutor{})

	tokens := []string{"dup", "fresh"}
	svc.newToken = func() string {
		token := tokens[0]
		tokens = tokens[1:]
		return token
	}

	result, err := svc.Issue(context.Background(), "MATCH (n) RETURN n", nil)
	require.NoError(t, err)
	assert.Equal(t, "fresh", result.EmbedToken)
	assert.Equal(t, 2, store.createCalls)
}

func TestIssue_SecondCollisionPropagates(t *testing.T) {
	store := newFakeStore()
	store.createErrs = []error{
		apperrors.NewConflictError("embed token already exists"),
		apperrors.NewConflictError("embed token already exists"),
	}
	svc := newTestService(store, &fakeExecutor{})

	_, err := svc.Issue(context.Background(), "MATCH (n) RETURN n", nil)
	assert.True(t, apperrors.IsConflict(err))
	assert.Equal(t, 2, store.createCalls)
}

func TestResolve_RunsBoundQuery(t *testing.T) {
	store := newFakeStore()
	executor := &fakeExecutor{data: &graph.GraphData{
		Nodes:         []graph.Node{{ID: "1", Labels: []string{"Person"}, Properties: map[string]any{"name": "Ada"}}},
		Relationships: []graph.Relationship{},
	}}
	svc := newTestService(store, executor)

	result, err := svc.Issue(context.Background(), "MATCH (n:Person) RETURN n", nil)
	require.NoError(t, err)

	data, err := svc.Resolve(context.Background(), result.EmbedToken)
	require.NoError(t, err)

	assert.Equal(t, "MATCH (n:Person) RETURN n", executor.lastCypher)
	assert.Nil(t, executor.lastParams)
	assert.Len(t, data.Nodes, 1)
}

func TestResolve_UnknownToken(t *testing.T) {
	executor := &fakeExecutor{}
	svc := newTestService(newFakeStore(), executor)

	_, err := svc.Resolve(context.Background(), "no-such-token")
	require.True(t, apperrors.IsUnauthorized(err))

	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, "INVALID_TOKEN", appErr.Code)
	assert.Zero(t, executor.calls)
}

func TestResolve_ExpiredToken(t *testing.T) {
	store := newFakeStore()
	executor := &fakeExecutor{}
	svc := newTestService(store, executor)

	expiresAt := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	store.rows["stale"] = &domainembed.Token{
		ID:          "id-stale",
		Token:       "stale",
		CypherQuery: "MATCH (n) RETURN n",
		ExpiresAt:   expiresAt,
	}
	svc.now = func() time.Time { return expiresAt } // exact expiry instant is expired

	_, err := svc.Resolve(context.Background(), "stale")
	require.True(t, apperrors.IsUnauthorized(err))

	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, "TOKEN_EXPIRED", appErr.Code)
	assert.Contains(t, appErr.Message, "2025-06-01T00:00:00Z")
	assert.Zero(t, executor.calls)
}

func TestResolve_EmptyToken(t *testing.T) {
	svc := newTestService(newFakeStore(), &fakeExecutor{})

	_, err := svc.Resolve(context.Background(), "  ")
	assert.True(t, apperrors.IsValidation(err))
}

func TestResolve_ExecutionErrorPropagates(t *testing.T) {
	store := newFakeStore()
	executor := &fakeExecutor{err: apperrors.NewQueryExecutionError(assert.AnError)}
	svc := newTestService(store, executor)

	result, err := svc.Issue(context.Background(), "MATCH (n) RETURN n", nil)
	require.NoError(t, err)

	_, err = svc.Resolve(context.Background(), result.EmbedToken)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeQueryExecution))
}

func TestLookup_DistinguishesMissingFromExpired(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeExecutor{})

	store.rows["stale"] = &domainembed.Token{
		ID:        "id-stale",
		Token:     "stale",
		ExpiresAt: time.Now().Add(-time.Hour),
	}

	_, err := svc.Lookup(context.Background(), "missing")
	assert.True(t, apperrors.IsNotFound(err))

	row, err := svc.Lookup(context.Background(), "stale")
	require.NoError(t, err)
	assert.True(t, row.IsExpired())
}

func TestRevoke(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeExecutor{})

	result, err := svc.Issue(context.Background(), "MATCH (n) RETURN n", nil)
	require.NoError(t, err)

	removed, err := svc.Revoke(context.Background(), result.EmbedToken)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = svc.Revoke(context.Background(), result.EmbedToken)
	require.NoError(t, err)
	assert.False(t, removed)

	_, err = svc.Resolve(context.Background(), result.EmbedToken)
	assert.True(t, apperrors.IsUnauthorized(err))
}

func TestSweepExpired(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeExecutor{})

	store.rows["stale"] = &domainembed.Token{Token: "stale", ExpiresAt: time.Now().Add(-time.Hour)}
	store.rows["live"] = &domainembed.Token{Token: "live", ExpiresAt: time.Now().Add(time.Hour)}

	removed, err := svc.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	active, err := svc.ActiveTokens(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), active)
}
