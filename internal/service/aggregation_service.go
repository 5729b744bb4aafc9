package service

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/mansoorceksport/periodize/internal/domain"
)

const dayFanout = 8

// AggregationService derives training statistics from finalized sessions.
// Per-day totals are memoized in the cache with explicit invalidation on
// writes; concurrent reads of the same cold day collapse into one
// recomputation through singleflight. Period stats fan recomputation out
// across the day range.
type AggregationService struct {
	sessions  domain.SessionRepository
	cache     domain.CacheRepository
	estimator *OneRepMaxEstimator
	ttl       time.Duration
	group     singleflight.Group
}

func NewAggregationService(sessions domain.SessionRepository, cache domain.CacheRepository, estimator *OneRepMaxEstimator, ttl time.Duration) *AggregationService {
	return &AggregationService{
		sessions:  sessions,
		cache:     cache,
		estimator: estimator,
		ttl:       ttl,
	}
}

func dayKey(userID string, date time.Time) string {
	return "aggregate:day:" + userID + ":" + date.Format("2006-01-02")
}

// DayTotals returns the memoized totals for one calendar date, recomputing
// from finalized sessions on a cache miss.
func (a *AggregationService) DayTotals(ctx context.Context, userID string, date time.Time) (*domain.DayTotals, error) {
	day := domain.DateOnly(date)
	key := dayKey(userID, day)

	v, err, _ := a.group.Do(key, func() (interface{}, error) {
		var cached domain.DayTotals
		err := a.cache.Get(ctx, key, &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, domain.ErrCacheMiss) {
			return nil, err
		}

		totals, err := a.computeDay(ctx, userID, day)
		if err != nil {
			return nil, err
		}
		if err := a.cache.Set(ctx, key, totals, a.ttl); err != nil {
			return nil, err
		}
		return totals, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.DayTotals), nil
}

func (a *AggregationService) computeDay(ctx context.Context, userID string, day time.Time) (*domain.DayTotals, error) {
	sessions, err := a.sessions.ListCompletedByDateRange(ctx, userID, day, day.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	totals := &domain.DayTotals{Date: day}
	for _, session := range sessions {
		totals.Workouts++
		totals.Volume += session.TotalVolume
		totals.Sets += session.TotalSets
	}
	return totals, nil
}

// InvalidateDay drops the memoized totals for the date so the next read
// recomputes them. Called after every write that changes what a day reports.
func (a *AggregationService) InvalidateDay(ctx context.Context, userID string, date time.Time) error {
	return a.cache.Delete(ctx, dayKey(userID, domain.DateOnly(date)))
}

// PeriodStats rolls the day totals of [from, to) into one summary, plus a
// per-exercise strength progression over the same range. Day reads run
// concurrently with bounded fan-out; each lands in the memo for later
// single-day reads.
func (a *AggregationService) PeriodStats(ctx context.Context, userID string, from, to time.Time) (*domain.PeriodStats, error) {
	start := domain.DateOnly(from)
	end := domain.DateOnly(to)
	if !end.After(start) {
		return nil, &domain.ValidationError{Field: "period", Reason: "end date must be after start date"}
	}

	days := int(end.Sub(start).Hours() / 24)
	perDay := make([]*domain.DayTotals, days)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(dayFanout)
	for i := 0; i < days; i++ {
		g.Go(func() error {
			totals, err := a.DayTotals(gctx, userID, start.AddDate(0, 0, i))
			if err != nil {
				return err
			}
			perDay[i] = totals
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := &domain.PeriodStats{StartDate: start, EndDate: end}
	for _, totals := range perDay {
		stats.WorkoutCount += totals.Workouts
		stats.TotalVolume += totals.Volume
		stats.TotalSets += totals.Sets
	}
	weeks := math.Ceil(float64(days) / 7)
	if weeks < 1 {
		weeks = 1
	}
	stats.WorkoutsPerWeek = float64(stats.WorkoutCount) / weeks

	progression, err := a.progression(ctx, userID, "", start, end)
	if err != nil {
		return nil, err
	}
	stats.PerExerciseProgression = progression
	return stats, nil
}

// StrengthProgression returns one exercise's progression series over
// [from, to): per finalized session, the heaviest weight moved and the best
// one-rep-max estimate implied by any logged set.
func (a *AggregationService) StrengthProgression(ctx context.Context, userID, exerciseID string, from, to time.Time) ([]domain.ProgressionPoint, error) {
	progression, err := a.progression(ctx, userID, exerciseID, domain.DateOnly(from), domain.DateOnly(to))
	if err != nil {
		return nil, err
	}
	return progression[exerciseID], nil
}

// progression walks finalized sessions of the range once and buckets best-set
// points per exercise. An empty exerciseID keeps every exercise.
func (a *AggregationService) progression(ctx context.Context, userID, exerciseID string, from, to time.Time) (map[string][]domain.ProgressionPoint, error) {
	sessions, err := a.sessions.ListCompletedByDateRange(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}

	out := make(map[string][]domain.ProgressionPoint)
	for _, session := range sessions {
		points := make(map[string]*domain.ProgressionPoint)
		for _, set := range session.Sets {
			if exerciseID != "" && set.ExerciseID != exerciseID {
				continue
			}
			if set.Weight <= 0 || set.Reps < 1 {
				continue
			}
			weightKG := domain.ConvertWeight(set.Weight, set.Unit, domain.WeightUnitKG)
			oneRM := a.estimator.EstimateFromSet(set.Reps, weightKG)

			point, ok := points[set.ExerciseID]
			if !ok {
				point = &domain.ProgressionPoint{Date: domain.DateOnly(*session.CompletedAt)}
				points[set.ExerciseID] = point
			}
			if weightKG > point.MaxWeight {
				point.MaxWeight = weightKG
			}
			if oneRM > point.EstimatedOneRM {
				point.EstimatedOneRM = oneRM
			}
		}
		for id, point := range points {
			out[id] = append(out[id], *point)
		}
	}
	return out, nil
}

// WarmDays precomputes the memo for a set of dates, typically after a bulk
// import. Errors are collected, not fail-fast.
func (a *AggregationService) WarmDays(ctx context.Context, userID string, dates []time.Time) error {
	var (
		mu   sync.Mutex
		errs []error
	)
	g := new(errgroup.Group)
	g.SetLimit(dayFanout)
	for _, date := range dates {
		g.Go(func() error {
			if _, err := a.DayTotals(ctx, userID, date); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}
