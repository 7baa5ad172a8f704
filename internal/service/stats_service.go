package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/noah-isme/lingua-attendance-api/internal/dto"
	"github.com/noah-isme/lingua-attendance-api/internal/models"
	"github.com/noah-isme/lingua-attendance-api/internal/repository"
)

// ErrRecordFetchFailed indicates the statistics view could not load its
// records; callers surface an inline error and keep any cached view.
var ErrRecordFetchFailed = errors.New("attendance records unavailable")

// trendMonths is the fixed depth of the monthly trend: the anchor month
// plus the five preceding calendar months.
const trendMonths = 6

// StatsService computes attendance percentage breakdowns and monthly trends.
type StatsService interface {
	Breakdown(ctx context.Context, filter repository.AttendanceFilter) (dto.StatusBreakdownResponse, error)
	Trend(ctx context.Context, courseID uint, studentID uint, anchor time.Time) (dto.TrendResponse, error)
}

type statsService struct {
	store    repository.AttendanceRepository
	cache    *redis.Client
	cacheTTL time.Duration
	logger   zerolog.Logger
	now      func() time.Time
}

// NewStatsService constructs the aggregator. The cache is optional; pass a
// nil client to disable it.
func NewStatsService(store repository.AttendanceRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) StatsService {
	return &statsService{
		store:    store,
		cache:    cache,
		cacheTTL: ttl,
		logger:   logger.With().Str("component", "stats_service").Logger(),
		now:      time.Now,
	}
}

func (s *statsService) Breakdown(ctx context.Context, filter repository.AttendanceFilter) (dto.StatusBreakdownResponse, error) {
	cacheKey := breakdownCacheKey(filter)
	tracer := otel.Tracer("github.com/noah-isme/lingua-attendance-api/internal/service/stats")
	ctx, span := tracer.Start(ctx, "stats.breakdown")
	span.SetAttributes(attribute.String("stats.cache_key", cacheKey))
	defer span.End()

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, cacheKey).Result()
		if err == nil {
			var response dto.StatusBreakdownResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				response.CacheHit = true
				span.SetAttributes(attribute.Bool("stats.cache_hit", true))
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read breakdown cache")
			span.RecordError(err)
		}
	}

	records, err := s.store.List(ctx, filter)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "record_fetch_failed")
		s.logger.Error().Err(err).Msg("failed to load records for breakdown")
		return dto.StatusBreakdownResponse{}, ErrRecordFetchFailed
	}

	breakdown := ComputeBreakdown(records)
	span.SetAttributes(attribute.Int("stats.record_count", len(records)))

	s.writeCache(ctx, cacheKey, breakdown)
	return breakdown, nil
}

func (s *statsService) Trend(ctx context.Context, courseID uint, studentID uint, anchor time.Time) (dto.TrendResponse, error) {
	if anchor.IsZero() {
		anchor = s.now()
	}

	cacheKey := fmt.Sprintf("stats:trend:%d:%d:%s", courseID, studentID, anchor.Format("2006-01"))
	tracer := otel.Tracer("github.com/noah-isme/lingua-attendance-api/internal/service/stats")
	ctx, span := tracer.Start(ctx, "stats.trend")
	span.SetAttributes(attribute.String("stats.cache_key", cacheKey))
	defer span.End()

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, cacheKey).Result()
		if err == nil {
			var response dto.TrendResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				response.CacheHit = true
				span.SetAttributes(attribute.Bool("stats.cache_hit", true))
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read trend cache")
			span.RecordError(err)
		}
	}

	// Fetch exactly the six calendar months the trend covers.
	from := startOfMonth(anchor).AddDate(0, -(trendMonths - 1), 0)
	to := startOfMonth(anchor).AddDate(0, 1, -1)
	records, err := s.store.List(ctx, repository.AttendanceFilter{
		CourseID:  courseID,
		StudentID: studentID,
		From:      &from,
		To:        &to,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "record_fetch_failed")
		s.logger.Error().Err(err).Msg("failed to load records for trend")
		return dto.TrendResponse{}, ErrRecordFetchFailed
	}

	response := dto.TrendResponse{
		Months:      ComputeMonthlyTrend(records, anchor),
		GeneratedAt: s.now(),
	}
	span.SetAttributes(attribute.Int("stats.record_count", len(records)))

	s.writeCache(ctx, cacheKey, response)
	return response, nil
}

func (s *statsService) writeCache(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, payload, s.cacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Str("cache_key", key).Msg("failed to store stats cache")
	}
}

func breakdownCacheKey(filter repository.AttendanceFilter) string {
	from, to := "", ""
	if filter.From != nil {
		from = filter.From.Format("2006-01-02")
	}
	if filter.To != nil {
		to = filter.To.Format("2006-01-02")
	}
	return fmt.Sprintf("stats:breakdown:%d:%d:%s:%s", filter.CourseID, filter.StudentID, from, to)
}

// ComputeBreakdown counts statuses and derives round-half-up integer
// percentages. An empty record set yields all zeroes, never an error. The
// three percentages are rounded independently and may not sum to 100.
func ComputeBreakdown(records []models.AttendanceRecord) dto.StatusBreakdownResponse {
	breakdown := dto.StatusBreakdownResponse{Total: len(records)}
	for _, record := range records {
		switch record.Status {
		case models.AttendanceStatusPresent:
			breakdown.Present++
		case models.AttendanceStatusLate:
			breakdown.Late++
		case models.AttendanceStatusAbsent:
			breakdown.Absent++
		}
	}

	breakdown.PresentPercent = roundPercent(breakdown.Present, breakdown.Total)
	breakdown.LatePercent = roundPercent(breakdown.Late, breakdown.Total)
	breakdown.AbsentPercent = roundPercent(breakdown.Absent, breakdown.Total)
	return breakdown
}

// ComputeMonthlyTrend buckets records into exactly six calendar months
// ending at the anchor month, oldest first. Months without records stay in
// the output as empty buckets.
func ComputeMonthlyTrend(records []models.AttendanceRecord, anchor time.Time) []dto.MonthlyBucketResponse {
	buckets := make([]dto.MonthlyBucketResponse, 0, trendMonths)
	anchorMonth := startOfMonth(anchor)

	for i := trendMonths - 1; i >= 0; i-- {
		month := anchorMonth.AddDate(0, -i, 0)
		bucket := dto.MonthlyBucketResponse{Month: month.Format("2006-01")}

		for _, record := range records {
			day := record.Day()
			if day.Year() != month.Year() || day.Month() != month.Month() {
				continue
			}
			bucket.Total++
			switch record.Status {
			case models.AttendanceStatusPresent:
				bucket.Present++
			case models.AttendanceStatusLate:
				bucket.Late++
			case models.AttendanceStatusAbsent:
				bucket.Absent++
			}
		}

		buckets = append(buckets, bucket)
	}

	return buckets
}

func roundPercent(count, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Floor(float64(count)*100/float64(total) + 0.5))
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
