package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-ops-api/internal/dto"
	"github.com/noah-isme/sma-ops-api/internal/models"
	"github.com/noah-isme/sma-ops-api/internal/repository"
	appErrors "github.com/noah-isme/sma-ops-api/pkg/errors"
)

const attendanceDateLayout = "2006-01-02"

type attendanceStore interface {
	Upsert(ctx context.Context, fact *models.AttendanceFact) error
	BulkUpsert(ctx context.Context, facts []models.AttendanceFact) error
	SessionsTaken(ctx context.Context, classID string, date time.Time) ([]models.AttendanceSession, error)
	StudentCounts(ctx context.Context, studentID string, from, to *time.Time) (present int, absent int, err error)
	Absences(ctx context.Context, studentID string) ([]repository.AbsenceRow, error)
}

type attendanceCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// AttendanceService records raw attendance facts and derives the read
// models: per-day session status, per-student statistics and the grouped
// absence report. All derived values are recomputed from current facts.
type AttendanceService struct {
	repo      attendanceStore
	cache     attendanceCache
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttendanceService constructs the service.
func NewAttendanceService(repo attendanceStore, cache attendanceCache, cacheTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &AttendanceService{repo: repo, cache: cache, cacheTTL: cacheTTL, validator: validate, logger: logger}
	svc.validator.RegisterValidation("attendance_status", func(fl validator.FieldLevel) bool {
		return models.AttendanceStatus(strings.ToUpper(fl.Field().String())).Valid()
	})
	svc.validator.RegisterValidation("attendance_session", func(fl validator.FieldLevel) bool {
		return models.AttendanceSession(strings.ToUpper(fl.Field().String())).Valid()
	})
	return svc
}

// RecordSession writes one session's facts for a class. Re-recording a
// (student, date, session) key overwrites the earlier fact in place.
func (s *AttendanceService) RecordSession(ctx context.Context, req dto.RecordAttendanceRequest) (int, error) {
	if err := s.validator.Struct(req); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	date, err := time.Parse(attendanceDateLayout, req.Date)
	if err != nil {
		return 0, appErrors.Clone(appErrors.ErrValidation, "date must be formatted YYYY-MM-DD")
	}
	session := models.AttendanceSession(strings.ToUpper(req.Session))

	facts := make([]models.AttendanceFact, 0, len(req.Items))
	for _, item := range req.Items {
		facts = append(facts, models.AttendanceFact{
			StudentID: item.StudentID,
			ClassID:   req.ClassID,
			Date:      date,
			Session:   session,
			Status:    models.AttendanceStatus(strings.ToUpper(item.Status)),
		})
	}
	if err := s.repo.BulkUpsert(ctx, facts); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record attendance")
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, dayStatusCacheKey(req.ClassID, date)); err != nil {
			s.logger.Warn("day status cache invalidation failed", zap.Error(err))
		}
	}
	return len(facts), nil
}

// DailyStatus reports whether each session of a class has been taken on a
// date.
func (s *AttendanceService) DailyStatus(ctx context.Context, classID, rawDate string) (*models.DayStatus, error) {
	if strings.TrimSpace(classID) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "class_id is required")
	}
	date, err := time.Parse(attendanceDateLayout, rawDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date must be formatted YYYY-MM-DD")
	}

	key := dayStatusCacheKey(classID, date)
	if s.cache != nil {
		var cached models.DayStatus
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("day status cache read failed", zap.Error(err))
		}
	}

	sessions, err := s.repo.SessionsTaken(ctx, classID, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load day status")
	}
	status := &models.DayStatus{ClassID: classID, Date: date}
	for _, session := range sessions {
		switch session {
		case models.SessionMorning:
			status.MorningTaken = true
		case models.SessionAfternoon:
			status.AfternoonTaken = true
		}
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, status, s.cacheTTL); err != nil {
			s.logger.Warn("day status cache write failed", zap.Error(err))
		}
	}
	return status, nil
}

// StudentStats aggregates a student's session counts over an optional range.
// Percentage is rounded and zero when no sessions are recorded.
func (s *AttendanceService) StudentStats(ctx context.Context, studentID string, query dto.StudentAttendanceQuery) (*models.StudentAttendanceStats, error) {
	from, err := parseOptionalDate(query.DateFrom)
	if err != nil {
		return nil, err
	}
	to, err := parseOptionalDate(query.DateTo)
	if err != nil {
		return nil, err
	}

	present, absent, err := s.repo.StudentCounts(ctx, studentID, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate attendance")
	}

	stats := &models.StudentAttendanceStats{
		StudentID:       studentID,
		TotalSessions:   present + absent,
		PresentSessions: present,
		AbsentSessions:  absent,
	}
	if stats.TotalSessions > 0 {
		stats.Percentage = int(math.Round(100 * float64(present) / float64(stats.TotalSessions)))
	}
	return stats, nil
}

// AbsenceReport groups a student's absences into one entry per date with
// the sessions missed.
func (s *AttendanceService) AbsenceReport(ctx context.Context, studentID string) ([]models.AbsenceReportEntry, error) {
	rows, err := s.repo.Absences(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load absences")
	}

	report := make([]models.AbsenceReportEntry, 0, len(rows))
	for _, row := range rows {
		day := row.Date
		if n := len(report); n > 0 && report[n-1].Date.Equal(day) {
			report[n-1].Sessions = append(report[n-1].Sessions, row.Session)
			continue
		}
		report = append(report, models.AbsenceReportEntry{
			Date:     day,
			Sessions: []models.AttendanceSession{row.Session},
		})
	}
	return report, nil
}

func parseOptionalDate(raw string) (*time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	parsed, err := time.Parse(attendanceDateLayout, raw)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date must be formatted YYYY-MM-DD")
	}
	return &parsed, nil
}

func dayStatusCacheKey(classID string, date time.Time) string {
	return fmt.Sprintf("attendance:day:%s:%s", classID, date.Format(attendanceDateLayout))
}
