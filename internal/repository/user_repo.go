package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"wallethunter/internal/domain"
	"wallethunter/internal/schema"
)

var (
	// ErrNotFound reports an operation addressed to a user_id that has
	// never been touched.
	ErrNotFound = errors.New("user not found")

	// ErrSchemaDrift reports a read against a table missing a registry
	// column; schema.Reconcile has not run in this process yet.
	ErrSchemaDrift = errors.New("users table is missing a registry column")
)

// MaxListLimit caps bulk listings regardless of the caller-supplied limit.
const MaxListLimit = 500

// balanceColumns maps asset tags to their ledger columns. Only these columns
// are reachable through AddBalance.
var balanceColumns = map[string]string{
	"mmc":   "bal_mmc",
	"ton":   "bal_ton",
	"usdt":  "bal_usdt",
	"stars": "bal_stars",
}

const selectUser = `SELECT user_id, username, first_name, last_name, language, created_at, last_seen,
	win_chance, gen_level, bal_mmc, bal_ton, bal_usdt, bal_stars,
	minutes_in_app, wallet_status, wallet_address, t_wallet_seconds, t_seed_seconds
FROM users`

type UserRepository struct {
	db  *sql.DB
	now func() int64
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{
		db:  db,
		now: func() int64 { return time.Now().Unix() },
	}
}

// Touch inserts a new record on first contact and refreshes the profile and
// heartbeat on every subsequent one. created_at is written only by the insert
// arm, so concurrent first-touches from both processes converge to one row
// without surfacing a duplicate-key failure.
func (r *UserRepository) Touch(ctx context.Context, id domain.Identity) error {
	now := r.now()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (user_id, username, first_name, last_name, language, created_at, last_seen)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			username   = excluded.username,
			first_name = excluded.first_name,
			last_name  = excluded.last_name,
			language   = excluded.language,
			last_seen  = excluded.last_seen
	`, id.UserID, id.Username, id.FirstName, id.LastName, id.Language, now, now)
	if err != nil {
		return fmt.Errorf("touch user %d: %w", id.UserID, err)
	}
	return nil
}

// GetByID is a point read of the full record.
func (r *UserRepository) GetByID(ctx context.Context, userID int64) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, selectUser+" WHERE user_id = ?", userID)

	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, wrapDrift(fmt.Errorf("get user %d: %w", userID, err))
	}
	return u, nil
}

// List returns up to limit records, most recently active first. Ties are
// broken by user_id so repeated listings are stable absent new activity.
func (r *UserRepository) List(ctx context.Context, limit int) ([]domain.User, error) {
	if limit <= 0 || limit > MaxListLimit {
		limit = MaxListLimit
	}

	rows, err := r.db.QueryContext(ctx, selectUser+" ORDER BY last_seen DESC, user_id ASC LIMIT ?", limit)
	if err != nil {
		return nil, wrapDrift(fmt.Errorf("list users: %w", err))
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("list users: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	return users, nil
}

// Apply issues a single update touching exactly the columns in the vetted
// mapping. Returns false without writing when the mapping is empty. Columns
// outside the registry are refused outright; they indicate a caller bypassing
// the vetting pipeline.
func (r *UserRepository) Apply(ctx context.Context, userID int64, values map[string]any) (bool, error) {
	if len(values) == 0 {
		return false, nil
	}

	// Deterministic column order keeps statements stable across calls.
	names := make([]string, 0, len(values))
	for name := range values {
		if _, ok := schema.Lookup(name); !ok {
			return false, fmt.Errorf("apply to user %d: column %q is not in the registry", userID, name)
		}
		names = append(names, name)
	}
	sort.Strings(names)

	sets := make([]string, 0, len(names))
	args := make([]any, 0, len(names)+1)
	for _, name := range names {
		sets = append(sets, name+" = ?")
		args = append(args, values[name])
	}
	args = append(args, userID)

	res, err := r.db.ExecContext(ctx,
		"UPDATE users SET "+strings.Join(sets, ", ")+" WHERE user_id = ?", args...)
	if err != nil {
		return false, wrapDrift(fmt.Errorf("apply to user %d: %w", userID, err))
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("apply to user %d: %w", userID, err)
	}
	if n == 0 {
		return false, ErrNotFound
	}
	return true, nil
}

// RecordEvent refreshes the heartbeat and folds an interaction into the
// record: minutes accumulate, never overwrite; wallet fields overwrite only
// when supplied non-empty, so an optional field left blank never erases data.
func (r *UserRepository) RecordEvent(ctx context.Context, userID int64, ev domain.Event) error {
	sets := []string{"last_seen = ?"}
	args := []any{r.now()}

	if ev.MinutesDelta > 0 {
		sets = append(sets, "minutes_in_app = minutes_in_app + ?")
		args = append(args, ev.MinutesDelta)
	}
	if addr := strings.TrimSpace(ev.WalletAddress); addr != "" {
		sets = append(sets, "wallet_address = ?")
		args = append(args, addr)
	}
	if status := strings.TrimSpace(ev.WalletStatus); status != "" {
		sets = append(sets, "wallet_status = ?")
		args = append(args, status)
	}
	args = append(args, userID)

	res, err := r.db.ExecContext(ctx,
		"UPDATE users SET "+strings.Join(sets, ", ")+" WHERE user_id = ?", args...)
	if err != nil {
		return wrapDrift(fmt.Errorf("record event for user %d: %w", userID, err))
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("record event for user %d: %w", userID, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// AddBalance atomically increments one ledger column and returns the new
// balance. Callers needing read-modify-write consistency across the two
// processes must use this instead of a get followed by an apply.
func (r *UserRepository) AddBalance(ctx context.Context, userID int64, asset string, delta float64) (float64, error) {
	col, ok := balanceColumns[strings.ToLower(asset)]
	if !ok {
		return 0, fmt.Errorf("unknown asset %q", asset)
	}

	var balance float64
	err := r.db.QueryRowContext(ctx,
		"UPDATE users SET "+col+" = "+col+" + ? WHERE user_id = ? RETURNING "+col,
		delta, userID,
	).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("add %s balance for user %d: %w", asset, userID, err)
	}
	return balance, nil
}

// CountUsers returns the total number of records.
func (r *UserRepository) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

// CountActiveSince returns the number of records with a heartbeat at or after
// the given unix timestamp.
func (r *UserRepository) CountActiveSince(ctx context.Context, since int64) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE last_seen >= ?", since).Scan(&n); err != nil {
		return 0, fmt.Errorf("count active users: %w", err)
	}
	return n, nil
}

func scanUser(row interface{ Scan(...any) error }) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.UserID,
		&u.Username,
		&u.FirstName,
		&u.LastName,
		&u.Language,
		&u.CreatedAt,
		&u.LastSeen,
		&u.WinChance,
		&u.GenLevel,
		&u.BalMMC,
		&u.BalTON,
		&u.BalUSDT,
		&u.BalStars,
		&u.MinutesInApp,
		&u.WalletStatus,
		&u.WalletAddress,
		&u.TWalletSeconds,
		&u.TSeedSeconds,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func wrapDrift(err error) error {
	if err != nil && strings.Contains(err.Error(), "no such column") {
		return fmt.Errorf("%w: %w", ErrSchemaDrift, err)
	}
	return err
}
