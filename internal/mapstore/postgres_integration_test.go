package mapstore

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wayfinder/core-go/internal/db"
	"wayfinder/core-go/internal/indoor"
	"wayfinder/core-go/internal/maperr"
	"wayfinder/core-go/migrations"
)

func requireTestDatabaseURL(t *testing.T) string {
	t.Helper()
	dsn := strings.TrimSpace(os.Getenv("TEST_DATABASE_URL"))
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping Postgres integration test")
	}
	return dsn
}

func mustDeriveDatabaseURL(t *testing.T, baseURL, dbName string) string {
	t.Helper()

	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		t.Skipf("TEST_DATABASE_URL must be a URL-style DSN (e.g. postgres://...); got %q", baseURL)
	}

	u.Path = "/" + dbName
	return u.String()
}

func adminExec(ctx context.Context, adminURL, sql string) error {
	conn, err := pgx.Connect(ctx, adminURL)
	if err != nil {
		return err
	}
	defer conn.Close(ctx)

	_, err = conn.Exec(ctx, sql)
	return err
}

// openTestPool creates a throwaway database, applies the schema and returns a pool.
func openTestPool(t *testing.T) *db.Pool {
	t.Helper()
	adminURL := requireTestDatabaseURL(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	dbName := fmt.Sprintf("wayfinder_test_%d", time.Now().UnixNano())
	testDBURL := mustDeriveDatabaseURL(t, adminURL, dbName)

	require.NoError(t, adminExec(ctx, adminURL, "CREATE DATABASE "+dbName))
	t.Cleanup(func() {
		_ = adminExec(context.Background(), adminURL, "DROP DATABASE "+dbName+" WITH (FORCE)")
	})

	pool, err := db.Open(ctx, testDBURL)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	script, err := migrations.Script()
	require.NoError(t, err)
	require.NoError(t, pool.Migrate(ctx, script))
	return pool
}

func TestPostgres_RoundTrip(t *testing.T) {
	pool := openTestPool(t)
	ctx := context.Background()
	store := NewPostgres(pool)

	saved, err := store.SaveMap(ctx, buildLobbyMap(t, "Aulario I"))
	require.NoError(t, err)
	require.True(t, saved.Ref.IsPersisted())
	id, _ := saved.Ref.ID()

	got, err := store.GetMap(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, saved.Name, got.Name)
	assert.Equal(t, saved.Floors[0].Grid.Cells(), got.Floors[0].Grid.Cells())
	assert.Equal(t, saved.Nodes, got.Nodes)
	assert.Equal(t, saved.Edges, got.Edges)

	// Drop a node; its edge goes with it.
	_, err = got.RemoveNode(got.Nodes[1].Ref)
	require.NoError(t, err)
	_, err = store.SaveMap(ctx, got)
	require.NoError(t, err)

	again, err := store.GetMap(ctx, id)
	require.NoError(t, err)
	assert.Len(t, again.Nodes, 1)
	assert.Empty(t, again.Edges)

	n, m, err := store.FindNodeByBeacon(ctx, "Aulario I-door")
	require.NoError(t, err)
	assert.Equal(t, "Main door", n.Name)
	assert.Equal(t, saved.Ref, m.Ref)

	candidates, err := store.SearchCandidates(ctx)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "Aulario I", candidates[0].Map.Name)

	require.NoError(t, store.DeleteMap(ctx, id))
	_, err = store.GetMap(ctx, id)
	assert.True(t, maperr.Is(err, maperr.CodeMapNotFound))
}

func TestPostgres_SaveUnknownMap(t *testing.T) {
	pool := openTestPool(t)
	m := buildLobbyMap(t, "Ghost")
	m.SetRef(indoor.Persisted(12345))

	_, err := NewPostgres(pool).SaveMap(context.Background(), m)
	assert.True(t, maperr.Is(err, maperr.CodeMapNotFound), "got %v", err)
}

func TestPostgres_SaveChecksVersion(t *testing.T) {
	pool := openTestPool(t)
	ctx := context.Background()
	store := NewPostgres(pool)

	saved, err := store.SaveMap(ctx, buildLobbyMap(t, "Aulario I"))
	require.NoError(t, err)
	assert.EqualValues(t, 1, saved.Version)
	id, _ := saved.Ref.ID()

	stale, err := store.GetMap(ctx, id)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stale.Version)

	saved.Description = "first"
	updated, err := store.SaveMap(ctx, saved)
	require.NoError(t, err)
	assert.EqualValues(t, 2, updated.Version)

	// The stale copy still lists a node the first save kept; it must not win.
	_, err = stale.RemoveNode(stale.Nodes[1].Ref)
	require.NoError(t, err)
	_, err = store.SaveMap(ctx, stale)
	assert.True(t, maperr.Is(err, maperr.CodeMapConflict), "got %v", err)

	got, err := store.GetMap(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "first", got.Description)
	assert.Len(t, got.Nodes, 2)
	assert.EqualValues(t, 2, got.Version)
}

func TestPostgres_SaveRejectsOutOfRangeValues(t *testing.T) {
	pool := openTestPool(t)
	store := NewPostgres(pool)

	for name, m := range outOfRangeMaps(t) {
		t.Run(name, func(t *testing.T) {
			_, memErr := NewMemory().SaveMap(context.Background(), m)
			_, pgErr := store.SaveMap(context.Background(), m)
			assert.True(t, maperr.Is(pgErr, maperr.CodeValidation), "got %v", pgErr)
			assert.Equal(t, maperr.CodeOf(memErr), maperr.CodeOf(pgErr))
		})
	}

	list, err := store.ListMaps(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}
