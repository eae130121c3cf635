package history

import (
	"context"
	"errors"
	"time"

	"github.com/2beens/gymplan/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

var ErrEntryNotFound = errors.New("history entry not found")

type EntryParams struct {
	Owner string
	From  *time.Time
	To    *time.Time
}

type ListParams struct {
	EntryParams
	Page int
	Size int
}

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Add(ctx context.Context, entry Entry) (_ *Entry, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.history.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if entry.Exercises == nil {
		entry.Exercises = []string{}
	}

	err = r.db.QueryRow(ctx, `
		INSERT INTO gymplan_history
			(owner, plan_name, week_number, day, focus, exercises, completed_at, skipped)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id;
	`,
		entry.Owner, entry.PlanName, entry.WeekNumber, entry.Day, entry.Focus,
		entry.Exercises, entry.CompletedAt, entry.Skipped,
	).Scan(&entry.ID)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("history.id", entry.ID))
	return &entry, nil
}

func (r *Repo) Get(ctx context.Context, id int) (_ *Entry, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.history.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	entry := &Entry{}
	err = r.db.QueryRow(ctx, `
		SELECT id, owner, plan_name, week_number, day, focus, exercises, completed_at, skipped
		FROM gymplan_history
		WHERE id = $1;
	`, id).Scan(
		&entry.ID, &entry.Owner, &entry.PlanName, &entry.WeekNumber, &entry.Day,
		&entry.Focus, &entry.Exercises, &entry.CompletedAt, &entry.Skipped,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrEntryNotFound
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// List returns a page of entries, newest first, together with the total count for the params.
func (r *Repo) List(ctx context.Context, params ListParams) (_ []Entry, total int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.history.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.String("owner", params.Owner),
		attribute.Int("page", params.Page),
		attribute.Int("size", params.Size),
	)

	rows, err := r.db.Query(ctx, `
		SELECT id, owner, plan_name, week_number, day, focus, exercises, completed_at, skipped
		FROM gymplan_history
		WHERE owner = $1
		  AND ($2::timestamptz IS NULL OR completed_at >= $2)
		  AND ($3::timestamptz IS NULL OR completed_at <= $3)
		ORDER BY completed_at DESC NULLS LAST, id DESC
		LIMIT $4 OFFSET $5;
	`,
		params.Owner, params.From, params.To,
		params.Size, params.Size*(params.Page-1),
	)
	if err != nil {
		return nil, 0, err
	}

	entries, err := pgx.CollectRows(rows, scanEntry)
	if err != nil {
		return nil, 0, err
	}

	total, err = r.Count(ctx, params.EntryParams)
	if err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

// ListAll returns every entry matching the params, oldest first.
func (r *Repo) ListAll(ctx context.Context, params EntryParams) (_ []Entry, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.history.listall")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("owner", params.Owner))
	if params.From != nil {
		span.SetAttributes(attribute.String("from", params.From.String()))
	}
	if params.To != nil {
		span.SetAttributes(attribute.String("to", params.To.String()))
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, owner, plan_name, week_number, day, focus, exercises, completed_at, skipped
		FROM gymplan_history
		WHERE owner = $1
		  AND ($2::timestamptz IS NULL OR completed_at >= $2)
		  AND ($3::timestamptz IS NULL OR completed_at <= $3)
		ORDER BY completed_at ASC NULLS FIRST, id ASC;
	`,
		params.Owner, params.From, params.To,
	)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, scanEntry)
}

func (r *Repo) Count(ctx context.Context, params EntryParams) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.history.count")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var count int
	err = r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM gymplan_history
		WHERE owner = $1
		  AND ($2::timestamptz IS NULL OR completed_at >= $2)
		  AND ($3::timestamptz IS NULL OR completed_at <= $3);
	`,
		params.Owner, params.From, params.To,
	).Scan(&count)
	if err != nil {
		return -1, err
	}
	return count, nil
}

func scanEntry(row pgx.CollectableRow) (Entry, error) {
	var entry Entry
	err := row.Scan(
		&entry.ID, &entry.Owner, &entry.PlanName, &entry.WeekNumber, &entry.Day,
		&entry.Focus, &entry.Exercises, &entry.CompletedAt, &entry.Skipped,
	)
	return entry, err
}
