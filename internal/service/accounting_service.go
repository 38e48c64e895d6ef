package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-ops-api/internal/models"
	appErrors "github.com/noah-isme/sma-ops-api/pkg/errors"
)

type ledgerStore interface {
	TotalPoints(ctx context.Context, studentID string) (int, error)
	PointsInRange(ctx context.Context, studentID string, from, to time.Time) (int, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.PointsLedgerEntry, error)
}

type accountingCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// AccountingService derives per-student totals, monthly totals and stars
// from the points ledger. Every value is a pure function of ledger entries;
// the Redis layer only memoises the computation and is flushed whenever the
// engine credits the student.
type AccountingService struct {
	repo     ledgerStore
	cache    accountingCache
	cacheTTL time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewAccountingService constructs the service. Cache is optional.
func NewAccountingService(repo ledgerStore, cache accountingCache, cacheTTL time.Duration, logger *zap.Logger) *AccountingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccountingService{
		repo:     repo,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// StudentAccounting returns totals, current-month points and stars for a
// student as of the given time (zero value means now).
func (s *AccountingService) StudentAccounting(ctx context.Context, studentID string, asOf time.Time) (*models.StudentAccounting, error) {
	if asOf.IsZero() {
		asOf = s.now()
	}
	key := accountingCacheKey(studentID, asOf)

	if s.cache != nil {
		var cached models.StudentAccounting
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("accounting cache read failed", zap.Error(err))
		}
	}

	total, err := s.repo.TotalPoints(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sum student points")
	}

	monthStart := time.Date(asOf.Year(), asOf.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0)
	monthly, err := s.repo.PointsInRange(ctx, studentID, monthStart, monthEnd)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sum monthly points")
	}

	accounting := &models.StudentAccounting{
		StudentID:     studentID,
		TotalPoints:   total,
		MonthlyPoints: monthly,
		Stars:         models.StarsFor(total),
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, accounting, s.cacheTTL); err != nil {
			s.logger.Warn("accounting cache write failed", zap.Error(err))
		}
	}
	return accounting, nil
}

// Ledger returns a student's raw ledger entries, oldest first.
func (s *AccountingService) Ledger(ctx context.Context, studentID string) ([]models.PointsLedgerEntry, error) {
	entries, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list ledger entries")
	}
	return entries, nil
}

// InvalidateStudent flushes memoised totals after a ledger credit. A failed
// flush is logged, not fatal: the TTL bounds staleness and the ledger stays
// the source of truth.
func (s *AccountingService) InvalidateStudent(ctx context.Context, studentID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, fmt.Sprintf("accounting:%s:*", studentID)); err != nil {
		s.logger.Warn("accounting cache invalidation failed", zap.String("student_id", studentID), zap.Error(err))
	}
}

func accountingCacheKey(studentID string, asOf time.Time) string {
	return fmt.Sprintf("accounting:%s:%s", studentID, asOf.Format("2006-01"))
}
