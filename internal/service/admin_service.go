package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"wallethunter/internal/domain"
	"wallethunter/internal/logger"
	"wallethunter/internal/repository"
	"wallethunter/internal/schema"
)

// AdminService mediates administrative reads and edits for both the bot and
// the HTTP admin surface. Every edit goes through the vetting pipeline; the
// bot and the handlers never build SQL themselves.
type AdminService struct {
	db   *sql.DB
	repo *repository.UserRepository
	log  *slog.Logger
}

func NewAdminService(db *sql.DB, repo *repository.UserRepository) *AdminService {
	return &AdminService{
		db:   db,
		repo: repo,
		log:  logger.With("component", "admin_service"),
	}
}

// ensureSchema runs reconciliation defensively before administrative
// operations. The two processes deploy independently, so the peer may know
// columns this binary's registry gained only after its last restart.
func (s *AdminService) ensureSchema(ctx context.Context) error {
	if err := schema.Reconcile(ctx, s.db); err != nil {
		return fmt.Errorf("schema reconcile: %w", err)
	}
	return nil
}

func (s *AdminService) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, userID)
}

func (s *AdminService) ListUsers(ctx context.Context, limit int) ([]domain.User, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, limit)
}

// UpdateUser vets the raw field map and applies the surviving columns as one
// update. It returns whether anything changed and the sorted list of columns
// written.
func (s *AdminService) UpdateUser(ctx context.Context, userID int64, raw map[string]any) (bool, []string, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return false, nil, err
	}

	vetted, err := schema.Vet(raw)
	if err != nil {
		return false, nil, err
	}

	changed, err := s.repo.Apply(ctx, userID, vetted)
	if err != nil {
		return false, nil, err
	}
	if !changed {
		return false, []string{}, nil
	}

	fields := make([]string, 0, len(vetted))
	for name := range vetted {
		fields = append(fields, name)
	}
	sort.Strings(fields)

	s.log.Info("admin update applied", "user_id", userID, "fields", fields)
	return true, fields, nil
}

// SetWinChance clamps and stores the win chance percentage.
func (s *AdminService) SetWinChance(ctx context.Context, userID int64, percent float64) (float64, error) {
	_, _, err := s.UpdateUser(ctx, userID, map[string]any{"win_chance": percent})
	if err != nil {
		return 0, err
	}
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return 0, err
	}
	return u.WinChance, nil
}

// SetGenLevel clamps and stores the generator level.
func (s *AdminService) SetGenLevel(ctx context.Context, userID int64, level int64) (int64, error) {
	_, _, err := s.UpdateUser(ctx, userID, map[string]any{"gen_level": level})
	if err != nil {
		return 0, err
	}
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return 0, err
	}
	return u.GenLevel, nil
}

// SetBalance overwrites one asset ledger with an absolute value.
func (s *AdminService) SetBalance(ctx context.Context, userID int64, asset string, value float64) error {
	col, ok := map[string]string{
		"mmc":   "bal_mmc",
		"ton":   "bal_ton",
		"usdt":  "bal_usdt",
		"stars": "bal_stars",
	}[asset]
	if !ok {
		return fmt.Errorf("%w: asset must be mmc, ton, usdt or stars", schema.ErrInvalidValue)
	}
	_, _, err := s.UpdateUser(ctx, userID, map[string]any{col: value})
	return err
}

// Stats summarizes the user base for the bot's /stats command.
type Stats struct {
	TotalUsers  int64
	ActiveToday int64
	ActiveWeek  int64
}

func (s *AdminService) GetStats(ctx context.Context) (*Stats, error) {
	total, err := s.repo.CountUsers(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	today, err := s.repo.CountActiveSince(ctx, now.Add(-24*time.Hour).Unix())
	if err != nil {
		return nil, err
	}

	week, err := s.repo.CountActiveSince(ctx, now.Add(-7*24*time.Hour).Unix())
	if err != nil {
		return nil, err
	}

	return &Stats{TotalUsers: total, ActiveToday: today, ActiveWeek: week}, nil
}
