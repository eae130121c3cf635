package history

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/2beens/gymplan/internal/telemetry/metrics"
	"github.com/2beens/gymplan/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

//go:generate mockgen -source=$GOFILE -destination=service_mocks_test.go -package=history_test

var ErrInvalidCompletion = errors.New("invalid completion")

type entriesRepo interface {
	Add(ctx context.Context, entry Entry) (*Entry, error)
	Get(ctx context.Context, id int) (*Entry, error)
	List(ctx context.Context, params ListParams) (_ []Entry, total int, err error)
	ListAll(ctx context.Context, params EntryParams) ([]Entry, error)
}

type Service struct {
	repo           entriesRepo
	metricsManager *metrics.Manager
}

func NewService(repo entriesRepo, metricsManager *metrics.Manager) *Service {
	return &Service{
		repo:           repo,
		metricsManager: metricsManager,
	}
}

// LogCompletion records a finished session. A zero completion time is set to now.
func (s *Service) LogCompletion(ctx context.Context, owner string, c Completion) (_ *Entry, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.history.log-completion")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.String("owner", owner),
		attribute.String("plan", c.PlanName),
		attribute.Int("week", c.WeekNumber),
		attribute.String("day", c.Day.Day),
	)

	if owner == "" {
		return nil, fmt.Errorf("%w: owner empty", ErrInvalidCompletion)
	}
	if c.WeekNumber < 1 {
		return nil, fmt.Errorf("%w: week number %d", ErrInvalidCompletion, c.WeekNumber)
	}
	if c.CompletedAt.IsZero() {
		c.CompletedAt = time.Now()
	}

	added, err := s.repo.Add(ctx, NewEntry(owner, c))
	if err != nil {
		return nil, fmt.Errorf("add history entry: %w", err)
	}

	if s.metricsManager != nil {
		s.metricsManager.CounterCompletionsLogged.WithLabelValues(strconv.FormatBool(c.Skipped)).Inc()
	}
	log.Debugf("logged session [%s] week %d, %s, skipped: %t", c.PlanName, c.WeekNumber, c.Day.Day, c.Skipped)

	return added, nil
}

// Snapshot reads the owner's history once, for entries completed since the given time.
func (s *Service) Snapshot(ctx context.Context, owner string, since time.Time) (_ []Entry, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.history.snapshot")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	entries, err := s.repo.ListAll(ctx, EntryParams{
		Owner: owner,
		From:  &since,
	})
	if err != nil {
		return nil, fmt.Errorf("list history since %s: %w", since.Format(time.RFC3339), err)
	}
	return entries, nil
}

// Get returns one entry of the owner. Entries of other owners are reported as not found.
func (s *Service) Get(ctx context.Context, owner string, id int) (*Entry, error) {
	entry, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry.Owner != owner {
		return nil, ErrEntryNotFound
	}
	return entry, nil
}

func (s *Service) List(ctx context.Context, params ListParams) ([]Entry, int, error) {
	return s.repo.List(ctx, params)
}
