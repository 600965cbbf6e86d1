package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"

	"wallethunter/internal/db"
	"wallethunter/internal/domain"
	"wallethunter/internal/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *sql.DB {
	t.Helper()
	store, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, schema.Reconcile(context.Background(), store))
	t.Cleanup(func() { store.Close() })
	return store
}

func newTestRepo(t *testing.T) (*UserRepository, *int64) {
	t.Helper()
	repo := NewUserRepository(newTestStore(t))
	clock := int64(1000)
	repo.now = func() int64 { return clock }
	return repo, &clock
}

func identity(id int64, username string) domain.Identity {
	return domain.Identity{UserID: id, Username: username, FirstName: "F", LastName: "L", Language: "en"}
}

func TestTouch_CreatesThenRefreshesProfile(t *testing.T) {
	repo, clock := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Touch(ctx, identity(42, "first")))

	u, err := repo.GetByID(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "first", u.Username)
	assert.Equal(t, int64(1000), u.CreatedAt)
	assert.Equal(t, int64(1000), u.LastSeen)

	*clock = 2000
	require.NoError(t, repo.Touch(ctx, identity(42, "second")))

	u, err = repo.GetByID(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "second", u.Username, "profile must match the latest touch")
	assert.Equal(t, int64(1000), u.CreatedAt, "created_at is set exactly once")
	assert.Equal(t, int64(2000), u.LastSeen, "heartbeat follows every touch")
}

func TestGetByID_NotFound(t *testing.T) {
	repo, _ := newTestRepo(t)

	_, err := repo.GetByID(context.Background(), 7)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetByID_DefaultsApplied(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Touch(ctx, identity(1, "u")))

	u, err := repo.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1.0, u.WinChance)
	assert.Equal(t, int64(0), u.GenLevel)
	assert.Equal(t, "idle", u.WalletStatus)
	assert.Equal(t, "", u.WalletAddress)
	assert.Equal(t, int64(900), u.TSeedSeconds)
}

func TestList_OrderAndLimit(t *testing.T) {
	repo, clock := newTestRepo(t)
	ctx := context.Background()

	for i, ts := range []int64{3000, 1000, 2000} {
		*clock = ts
		require.NoError(t, repo.Touch(ctx, identity(int64(i+1), "u")))
	}

	users, err := repo.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, int64(1), users[0].UserID) // last_seen 3000
	assert.Equal(t, int64(3), users[1].UserID) // last_seen 2000
	assert.Equal(t, int64(2), users[2].UserID) // last_seen 1000

	one, err := repo.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, int64(1), one[0].UserID)
}

func TestList_TiesBrokenByUserID(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	for _, id := range []int64{5, 3, 9} {
		require.NoError(t, repo.Touch(ctx, identity(id, "u")))
	}

	users, err := repo.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, int64(3), users[0].UserID)
	assert.Equal(t, int64(5), users[1].UserID)
	assert.Equal(t, int64(9), users[2].UserID)
}

func TestApply_EmptyMapIsNoop(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Touch(ctx, identity(1, "u")))

	changed, err := repo.Apply(ctx, 1, map[string]any{})
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestApply_NotFound(t *testing.T) {
	repo, _ := newTestRepo(t)

	_, err := repo.Apply(context.Background(), 99, map[string]any{"gen_level": int64(5)})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestApply_RefusesUnregisteredColumn(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Touch(ctx, identity(1, "u")))

	_, err := repo.Apply(ctx, 1, map[string]any{"no_such_column": 1})
	require.Error(t, err)
}

func TestApply_WritesExactlyTheGivenColumns(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Touch(ctx, identity(1, "u")))

	changed, err := repo.Apply(ctx, 1, map[string]any{
		"win_chance": 42.5,
		"gen_level":  int64(7),
	})
	require.NoError(t, err)
	assert.True(t, changed)

	u, err := repo.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 42.5, u.WinChance)
	assert.Equal(t, int64(7), u.GenLevel)
	assert.Equal(t, "u", u.Username, "untouched columns keep their values")
}

func TestRecordEvent_AccumulatesMinutes(t *testing.T) {
	repo, clock := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Touch(ctx, identity(1, "u")))

	require.NoError(t, repo.RecordEvent(ctx, 1, domain.Event{MinutesDelta: 5}))
	require.NoError(t, repo.RecordEvent(ctx, 1, domain.Event{MinutesDelta: 3}))

	u, err := repo.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(8), u.MinutesInApp)

	*clock = 5000
	require.NoError(t, repo.RecordEvent(ctx, 1, domain.Event{}))
	u, err = repo.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), u.LastSeen, "heartbeat refreshes even on empty events")
	assert.Equal(t, int64(8), u.MinutesInApp)
}

func TestRecordEvent_EmptyWalletFieldsDoNotClear(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Touch(ctx, identity(1, "u")))
	require.NoError(t, repo.RecordEvent(ctx, 1, domain.Event{
		WalletAddress: "EQabc",
		WalletStatus:  "hunting",
	}))

	require.NoError(t, repo.RecordEvent(ctx, 1, domain.Event{MinutesDelta: 1}))

	u, err := repo.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "EQabc", u.WalletAddress)
	assert.Equal(t, "hunting", u.WalletStatus)
}

func TestRecordEvent_NotFound(t *testing.T) {
	repo, _ := newTestRepo(t)

	err := repo.RecordEvent(context.Background(), 404, domain.Event{MinutesDelta: 1})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAddBalance_AtomicIncrement(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Touch(ctx, identity(1, "u")))

	bal, err := repo.AddBalance(ctx, 1, "usdt", 10)
	require.NoError(t, err)
	assert.Equal(t, 10.0, bal)

	bal, err = repo.AddBalance(ctx, 1, "usdt", -4)
	require.NoError(t, err)
	assert.Equal(t, 6.0, bal)

	_, err = repo.AddBalance(ctx, 1, "gold", 1)
	require.Error(t, err)

	_, err = repo.AddBalance(ctx, 2, "ton", 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

// Two writers racing on a never-before-seen user_id must converge to one row
// without a duplicate-key failure, like the bot and the API server touching
// the same new user.
func TestTouch_ConcurrentFirstTouchConverges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shared.db")

	store1, err := db.Open(path)
	require.NoError(t, err)
	defer store1.Close()
	require.NoError(t, schema.Reconcile(context.Background(), store1))

	store2, err := db.Open(path)
	require.NoError(t, err)
	defer store2.Close()

	repo1 := NewUserRepository(store1)
	repo2 := NewUserRepository(store2)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, r := range []*UserRepository{repo1, repo2} {
		wg.Add(1)
		go func(i int, r *UserRepository) {
			defer wg.Done()
			errs[i] = r.Touch(context.Background(), identity(77, "racer"))
		}(i, r)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	var count int
	require.NoError(t, store1.QueryRow("SELECT COUNT(*) FROM users WHERE user_id = 77").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestCounts(t *testing.T) {
	repo, clock := newTestRepo(t)
	ctx := context.Background()

	*clock = 100
	require.NoError(t, repo.Touch(ctx, identity(1, "a")))
	*clock = 200
	require.NoError(t, repo.Touch(ctx, identity(2, "b")))

	total, err := repo.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	active, err := repo.CountActiveSince(ctx, 150)
	require.NoError(t, err)
	assert.Equal(t, int64(1), active)
}
