package service

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"wallethunter/internal/db"
	"wallethunter/internal/domain"
	"wallethunter/internal/repository"
	"wallethunter/internal/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*AdminService, *repository.UserRepository, *sql.DB) {
	t.Helper()
	store, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, schema.Reconcile(context.Background(), store))

	repo := repository.NewUserRepository(store)
	return NewAdminService(store, repo), repo, store
}

func touch(t *testing.T, repo *repository.UserRepository, id int64) {
	t.Helper()
	require.NoError(t, repo.Touch(context.Background(), domain.Identity{UserID: id, Username: "u"}))
}

func TestUpdateUser_VetsAndApplies(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	touch(t, repo, 1)

	updated, fields, err := svc.UpdateUser(ctx, 1, map[string]any{
		"win_chance":     150.0, // clamps to 100
		"gen_level":      "12",
		"wallet_address": "  EQabc  ",
		"wallet_status":  "", // omitted, never clears
		"bogus_field":    "dropped",
	})
	require.NoError(t, err)
	assert.True(t, updated)
	assert.Equal(t, []string{"gen_level", "wallet_address", "win_chance"}, fields)

	u, err := repo.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 100.0, u.WinChance)
	assert.Equal(t, int64(12), u.GenLevel)
	assert.Equal(t, "EQabc", u.WalletAddress)
	assert.Equal(t, "idle", u.WalletStatus)
}

func TestUpdateUser_NothingRecognized(t *testing.T) {
	svc, repo, _ := newTestService(t)
	touch(t, repo, 1)

	updated, fields, err := svc.UpdateUser(context.Background(), 1, map[string]any{
		"unknown": 1,
	})
	require.NoError(t, err)
	assert.False(t, updated)
	assert.Empty(t, fields)
}

func TestUpdateUser_InvalidValue(t *testing.T) {
	svc, repo, _ := newTestService(t)
	touch(t, repo, 1)

	_, _, err := svc.UpdateUser(context.Background(), 1, map[string]any{
		"bal_ton": "not-a-number",
	})
	assert.ErrorIs(t, err, schema.ErrInvalidValue)
}

func TestUpdateUser_NotFound(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, _, err := svc.UpdateUser(context.Background(), 404, map[string]any{
		"gen_level": 1,
	})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSetBalance(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	touch(t, repo, 1)

	require.NoError(t, svc.SetBalance(ctx, 1, "usdt", 50))

	u, err := repo.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 50.0, u.BalUSDT)

	err = svc.SetBalance(ctx, 1, "gold", 1)
	assert.ErrorIs(t, err, schema.ErrInvalidValue)
}

func TestSetWinChance_ReturnsStoredValue(t *testing.T) {
	svc, repo, _ := newTestService(t)
	touch(t, repo, 1)

	stored, err := svc.SetWinChance(context.Background(), 1, -5)
	require.NoError(t, err)
	assert.Equal(t, 0.0, stored)
}

func TestGetStats(t *testing.T) {
	svc, repo, _ := newTestService(t)
	touch(t, repo, 1)
	touch(t, repo, 2)

	stats, err := svc.GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalUsers)
	assert.Equal(t, int64(2), stats.ActiveToday)
	assert.Equal(t, int64(2), stats.ActiveWeek)
}

// ListUsers reconciles defensively, so it works even against a store whose
// table was created by an older deployment missing the drift columns.
func TestListUsers_ReconcilesOldTable(t *testing.T) {
	store, err := db.Open(filepath.Join(t.TempDir(), "old.db"))
	require.NoError(t, err)
	defer store.Close()

	_, err = store.Exec(`CREATE TABLE users (
		user_id    INTEGER PRIMARY KEY,
		username   TEXT DEFAULT '',
		first_name TEXT DEFAULT '',
		last_name  TEXT DEFAULT '',
		language   TEXT DEFAULT '',
		created_at INTEGER DEFAULT 0,
		last_seen  INTEGER DEFAULT 0,
		win_chance REAL DEFAULT 1.0,
		gen_level  INTEGER DEFAULT 0,
		bal_mmc    REAL DEFAULT 0,
		bal_ton    REAL DEFAULT 0,
		bal_usdt   REAL DEFAULT 0,
		bal_stars  REAL DEFAULT 0
	)`)
	require.NoError(t, err)
	_, err = store.Exec(`INSERT INTO users (user_id, username) VALUES (5, 'legacy')`)
	require.NoError(t, err)

	svc := NewAdminService(store, repository.NewUserRepository(store))

	users, err := svc.ListUsers(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "legacy", users[0].Username)
	assert.Equal(t, "idle", users[0].WalletStatus)
}
