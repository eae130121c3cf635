package plan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/gymplan/internal/history"
	"github.com/2beens/gymplan/internal/progression"
	"github.com/2beens/gymplan/internal/telemetry/metrics"
	"github.com/2beens/gymplan/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

//go:generate mockgen -source=$GOFILE -destination=service_mocks_test.go -package=plan_test

var (
	ErrInvalidWeek = errors.New("invalid week number")
	ErrRestDay     = errors.New("today is a rest day")
)

type plansRepo interface {
	Get(ctx context.Context, owner string) (*Plan, error)
	Upsert(ctx context.Context, owner string, p *Plan) error
	Delete(ctx context.Context, owner string) error
}

type historyService interface {
	Snapshot(ctx context.Context, owner string, since time.Time) ([]history.Entry, error)
	LogCompletion(ctx context.Context, owner string, c history.Completion) (*history.Entry, error)
}

type DayView struct {
	PlanName       string                      `json:"planName"`
	WeekNumber     int                         `json:"weekNumber"`
	DurationWeeks  int                         `json:"durationWeeks"`
	Today          string                      `json:"today"`
	RestDay        bool                        `json:"restDay"`
	AdaptiveFactor float64                     `json:"adaptiveFactor"`
	Day            progression.MaterializedDay `json:"day"`
}

type WeekView struct {
	PlanName       string                        `json:"planName"`
	WeekNumber     int                           `json:"weekNumber"`
	CurrentWeek    int                           `json:"currentWeek"`
	DurationWeeks  int                           `json:"durationWeeks"`
	AdaptiveFactor float64                       `json:"adaptiveFactor"`
	Days           []progression.MaterializedDay `json:"days"`
}

type StatusView struct {
	PlanName        string                      `json:"planName"`
	Sport           string                      `json:"sport"`
	CreatedAt       time.Time                   `json:"createdAt"`
	DurationWeeks   int                         `json:"durationWeeks"`
	CurrentWeek     int                         `json:"currentWeek"`
	Today           string                      `json:"today"`
	TodayFocus      string                      `json:"todayFocus"`
	RestDay         bool                        `json:"restDay"`
	Strategy        progression.Strategy        `json:"strategy"`
	UserMultiplier  float64                     `json:"userMultiplier"`
	AdaptiveEnabled bool                        `json:"adaptiveEnabled"`
	AdaptiveFactor  float64                     `json:"adaptiveFactor"`
	Adherence       progression.AdherenceReport `json:"adherence"`
}

type NewServiceParams struct {
	Repo           plansRepo
	History        historyService
	Cache          *SnapshotCache
	Analyzer       *progression.AdherenceAnalyzer
	MetricsManager *metrics.Manager
	// adherence denominator taken from the plan's training days instead of the analyzer's
	DeriveSessionsFromTemplate bool
	// defaults to time.Now
	Now func() time.Time
}

type Service struct {
	repo                       plansRepo
	history                    historyService
	cache                      *SnapshotCache
	analyzer                   *progression.AdherenceAnalyzer
	metricsManager             *metrics.Manager
	deriveSessionsFromTemplate bool
	now                        func() time.Time
}

func NewService(params NewServiceParams) *Service {
	analyzer := params.Analyzer
	if analyzer == nil {
		analyzer = progression.DefaultAdherenceAnalyzer()
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		repo:                       params.Repo,
		history:                    params.History,
		cache:                      params.Cache,
		analyzer:                   analyzer,
		metricsManager:             params.MetricsManager,
		deriveSessionsFromTemplate: params.DeriveSessionsFromTemplate,
		now:                        now,
	}
}

// Plan returns the owner's active plan. The result is the caller's own copy.
func (s *Service) Plan(ctx context.Context, owner string) (_ *Plan, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.plan.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if s.cache == nil {
		return s.repo.Get(ctx, owner)
	}

	if p, ok := s.cache.Get(owner); ok {
		span.SetAttributes(attribute.Bool("cached", true))
		return p, nil
	}

	generation := s.cache.Generation(owner)
	p, err := s.repo.Get(ctx, owner)
	if err != nil {
		return nil, err
	}

	if _, err := s.cache.Fill(owner, p, generation); err != nil {
		log.Errorf("plan cache fill [%s]: %s", owner, err)
	}
	return p, nil
}

// SavePlan validates the plan and makes it the owner's active plan, superseding the previous one.
// A plan without a creation time starts now.
func (s *Service) SavePlan(ctx context.Context, owner string, p *Plan) (_ *Plan, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.plan.save")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := p.Validate(); err != nil {
		return nil, err
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now().UTC()
	}
	p.ProgressionSettings.UserMultiplier = ClampMultiplier(p.ProgressionSettings.UserMultiplier)

	if err := s.store(ctx, owner, p); err != nil {
		return nil, err
	}

	log.Debugf("plan [%s] saved for [%s], %d weeks", p.PlanName, owner, p.DurationWeeks)
	return p, nil
}

func (s *Service) DeletePlan(ctx context.Context, owner string) error {
	if s.cache != nil {
		defer s.cache.Invalidate(owner)
	}
	return s.repo.Delete(ctx, owner)
}

func (s *Service) UpdateSettings(ctx context.Context, owner string, u SettingsUpdate) (_ *Plan, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.plan.update-settings")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	current, err := s.Plan(ctx, owner)
	if err != nil {
		return nil, err
	}

	p := current.Clone()
	if err := p.ApplySettings(u); err != nil {
		return nil, err
	}

	if err := s.store(ctx, owner, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) UpdateExercise(ctx context.Context, owner, day string, index int, u ExerciseUpdate) (_ *Plan, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.plan.update-exercise")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("day", day), attribute.Int("index", index))

	current, err := s.Plan(ctx, owner)
	if err != nil {
		return nil, err
	}

	p := current.Clone()
	if err := p.UpdateExercise(day, index, u); err != nil {
		return nil, err
	}

	if err := s.store(ctx, owner, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) store(ctx context.Context, owner string, p *Plan) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal plan: %w", err)
	}
	if len(raw) > MaxPlanBytes {
		return fmt.Errorf("%w: plan takes %d bytes, limit is %d", ErrInvalidPlan, len(raw), MaxPlanBytes)
	}

	if s.cache != nil {
		defer s.cache.Invalidate(owner)
	}
	if err := s.repo.Upsert(ctx, owner, p); err != nil {
		return fmt.Errorf("store plan: %w", err)
	}
	return nil
}

// Today materializes the session scheduled for now.
func (s *Service) Today(ctx context.Context, owner string) (_ *DayView, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.plan.today")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	now := s.now()
	p, err := s.Plan(ctx, owner)
	if err != nil {
		return nil, err
	}

	week := p.CurrentWeek(now)
	today := progression.TodayName(now)
	report, err := s.adherence(ctx, owner, p, week, now)
	if err != nil {
		return nil, err
	}
	factor := s.adaptiveFactor(owner, p, report)

	day := p.MaterializeDay(today, week, factor)
	s.countMaterialization("day")
	span.SetAttributes(attribute.Int("week", week), attribute.String("today", today))

	return &DayView{
		PlanName:       p.PlanName,
		WeekNumber:     week,
		DurationWeeks:  p.DurationWeeks,
		Today:          today,
		RestDay:        day.IsRestDay(),
		AdaptiveFactor: factor,
		Day:            day,
	}, nil
}

// Week materializes a full week of the plan. Week 0 means the current week.
func (s *Service) Week(ctx context.Context, owner string, week int) (_ *WeekView, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.plan.week")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	now := s.now()
	p, err := s.Plan(ctx, owner)
	if err != nil {
		return nil, err
	}

	currentWeek := p.CurrentWeek(now)
	if week == 0 {
		week = currentWeek
	}
	if week < 1 || week > p.DurationWeeks {
		return nil, fmt.Errorf("%w: %d, plan has %d weeks", ErrInvalidWeek, week, p.DurationWeeks)
	}
	span.SetAttributes(attribute.Int("week", week))

	report, err := s.adherence(ctx, owner, p, week, now)
	if err != nil {
		return nil, err
	}
	factor := s.adaptiveFactor(owner, p, report)

	s.countMaterialization("week")
	return &WeekView{
		PlanName:       p.PlanName,
		WeekNumber:     week,
		CurrentWeek:    currentWeek,
		DurationWeeks:  p.DurationWeeks,
		AdaptiveFactor: factor,
		Days:           p.MaterializeWeek(week, factor),
	}, nil
}

// Preview materializes weeks 1..n with a neutral adaptive factor, showing how the plan
// progresses when every session gets done as planned.
func (s *Service) Preview(ctx context.Context, owner string, weeks int) (_ []WeekView, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.plan.preview")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if weeks < 1 {
		return nil, fmt.Errorf("%w: preview of %d weeks", ErrInvalidWeek, weeks)
	}

	p, err := s.Plan(ctx, owner)
	if err != nil {
		return nil, err
	}

	s.countMaterialization("preview")
	return PreviewWeeks(p, p.CurrentWeek(s.now()), weeks), nil
}

// PreviewWeeks materializes weeks 1..n of a plan, n capped at the plan duration.
func PreviewWeeks(p *Plan, currentWeek, weeks int) []WeekView {
	if weeks > p.DurationWeeks {
		weeks = p.DurationWeeks
	}
	views := make([]WeekView, 0, weeks)
	for w := 1; w <= weeks; w++ {
		views = append(views, WeekView{
			PlanName:       p.PlanName,
			WeekNumber:     w,
			CurrentWeek:    currentWeek,
			DurationWeeks:  p.DurationWeeks,
			AdaptiveFactor: progression.NeutralAdaptiveFactor,
			Days:           p.MaterializeWeek(w, progression.NeutralAdaptiveFactor),
		})
	}
	return views
}

func (s *Service) Status(ctx context.Context, owner string) (_ *StatusView, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.plan.status")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	now := s.now()
	p, err := s.Plan(ctx, owner)
	if err != nil {
		return nil, err
	}

	week := p.CurrentWeek(now)
	report, err := s.adherence(ctx, owner, p, week, now)
	if err != nil {
		return nil, err
	}

	today := progression.TodayName(now)
	todayTemplate, _ := p.DayTemplate(today)

	return &StatusView{
		PlanName:        p.PlanName,
		Sport:           p.Sport,
		CreatedAt:       p.CreatedAt,
		DurationWeeks:   p.DurationWeeks,
		CurrentWeek:     week,
		Today:           today,
		TodayFocus:      todayTemplate.Focus,
		RestDay:         todayTemplate.IsRestDay(),
		Strategy:        p.ProgressionSettings.Strategy,
		UserMultiplier:  p.ProgressionSettings.UserMultiplier,
		AdaptiveEnabled: p.ProgressionSettings.AdaptiveEnabled,
		AdaptiveFactor:  s.adaptiveFactor(owner, p, report),
		Adherence:       report,
	}, nil
}

// CompleteToday logs today's session, as materialized right now, to the history.
func (s *Service) CompleteToday(ctx context.Context, owner string, skipped bool) (_ *history.Entry, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.plan.complete-today")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	view, err := s.Today(ctx, owner)
	if err != nil {
		return nil, err
	}
	if view.RestDay {
		return nil, ErrRestDay
	}

	return s.history.LogCompletion(ctx, owner, history.Completion{
		PlanName:    view.PlanName,
		WeekNumber:  view.WeekNumber,
		Day:         view.Day,
		CompletedAt: s.now().UTC(),
		Skipped:     skipped,
	})
}

// adherence reads the history snapshot once and reports on it. Only entries that can fall
// into the window are read: week numbers repeat once the plan wraps around, and entries logged
// before the plan was created belong to an earlier plan.
func (s *Service) adherence(ctx context.Context, owner string, p *Plan, week int, now time.Time) (progression.AdherenceReport, error) {
	analyzer := s.analyzer
	if s.deriveSessionsFromTemplate {
		analyzer = analyzer.ForTemplate(p.BaseWeek.Days)
	}

	// the window never reaches back into the previous cycle, whose week numbers repeat
	since := progression.WeekStart(p.CreatedAt, now, p.DurationWeeks, week-analyzer.WindowWeeks)

	entries, err := s.history.Snapshot(ctx, owner, since)
	if err != nil {
		return progression.AdherenceReport{}, fmt.Errorf("history snapshot: %w", err)
	}

	return analyzer.Report(history.ToProgression(entries), week), nil
}

func (s *Service) adaptiveFactor(owner string, p *Plan, report progression.AdherenceReport) float64 {
	factor := progression.NeutralAdaptiveFactor
	if p.ProgressionSettings.AdaptiveEnabled {
		factor = report.Factor
	}
	if s.metricsManager != nil {
		s.metricsManager.GaugeAdaptiveFactor.WithLabelValues(owner).Set(factor)
	}
	return factor
}

func (s *Service) countMaterialization(view string) {
	if s.metricsManager != nil {
		s.metricsManager.CounterMaterializations.WithLabelValues(view).Inc()
	}
}
