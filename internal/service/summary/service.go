// Package summary aggregates income and expense totals over calendar windows.
package summary

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tinoosan/fintrack/internal/errs"
	"github.com/tinoosan/fintrack/internal/ledger"
)

type Repo interface {
	// TransactionsBetween returns the user's transactions with start <= created_at <= end.
	TransactionsBetween(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]ledger.TransactionView, error)
}

// Cache stores computed summaries. Implementations swallow their own failures.
type Cache interface {
	Get(ctx context.Context, key string) (ledger.Summary, bool)
	Set(ctx context.Context, userID uuid.UUID, key string, s ledger.Summary)
	Invalidate(ctx context.Context, userID uuid.UUID)
}

type Service interface {
	Daily(ctx context.Context, userID uuid.UUID, day time.Time) (ledger.Summary, error)
	Monthly(ctx context.Context, userID uuid.UUID, year int, month time.Month) (ledger.Summary, error)
	Yearly(ctx context.Context, userID uuid.UUID, year int) (ledger.Summary, error)
	Range(ctx context.Context, userID uuid.UUID, start, end time.Time) (ledger.Summary, error)
	// Invalidate drops cached summaries after the user's transactions change.
	Invalidate(ctx context.Context, userID uuid.UUID)
	Location() *time.Location
}

type service struct {
	repo  Repo
	cache Cache
	loc   *time.Location
}

// New builds the service. A nil cache disables caching; a nil loc means UTC.
func New(repo Repo, cache Cache, loc *time.Location) Service {
	if loc == nil {
		loc = time.UTC
	}
	return &service{repo: repo, cache: cache, loc: loc}
}

func (s *service) Location() *time.Location { return s.loc }

func (s *service) Daily(ctx context.Context, userID uuid.UUID, day time.Time) (ledger.Summary, error) {
	if day.IsZero() {
		return ledger.Summary{}, errs.Field("date", "is required")
	}
	start, end := ledger.DayBounds(day, s.loc)
	return s.between(ctx, userID, start, end)
}

func (s *service) Monthly(ctx context.Context, userID uuid.UUID, year int, month time.Month) (ledger.Summary, error) {
	if err := checkYear(year); err != nil {
		return ledger.Summary{}, err
	}
	if month < time.January || month > time.December {
		return ledger.Summary{}, errs.Field("month", "must be between 1 and 12")
	}
	start, end := ledger.MonthBounds(year, month, s.loc)
	return s.between(ctx, userID, start, end)
}

func (s *service) Yearly(ctx context.Context, userID uuid.UUID, year int) (ledger.Summary, error) {
	if err := checkYear(year); err != nil {
		return ledger.Summary{}, err
	}
	start, end := ledger.YearBounds(year, s.loc)
	return s.between(ctx, userID, start, end)
}

func (s *service) Range(ctx context.Context, userID uuid.UUID, start, end time.Time) (ledger.Summary, error) {
	if start.IsZero() {
		return ledger.Summary{}, errs.Field("start", "is required")
	}
	if end.IsZero() {
		return ledger.Summary{}, errs.Field("end", "is required")
	}
	from, to := ledger.RangeBounds(start, end, s.loc)
	if to.Before(from) {
		return ledger.Summary{}, errs.Field("end", "must not be before start")
	}
	return s.between(ctx, userID, from, to)
}

func (s *service) Invalidate(ctx context.Context, userID uuid.UUID) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, userID)
	}
}

func (s *service) between(ctx context.Context, userID uuid.UUID, start, end time.Time) (ledger.Summary, error) {
	if userID == uuid.Nil {
		return ledger.Summary{}, errs.Field("user_id", "is required")
	}
	key := fmt.Sprintf("%s:%d:%d", userID, start.UnixMilli(), end.UnixMilli())
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, key); ok {
			return cached, nil
		}
	}
	txs, err := s.repo.TransactionsBetween(ctx, userID, start, end)
	if err != nil {
		return ledger.Summary{}, err
	}
	out := ledger.Summarize(userID, start, end, txs)
	if s.cache != nil {
		s.cache.Set(ctx, userID, key, out)
	}
	return out, nil
}

func checkYear(year int) error {
	if year < 1 || year > 9999 {
		return errs.Field("year", "must be between 1 and 9999")
	}
	return nil
}
