package plan

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/2beens/gymplan/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

var ErrPlanNotFound = errors.New("plan not found")

// Repo stores one active plan per owner, as a jsonb document.
type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Get(ctx context.Context, owner string) (_ *Plan, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.plan.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("owner", owner))

	var raw []byte
	err = r.db.QueryRow(ctx, `
		SELECT plan FROM gymplan_plan WHERE owner = $1;
	`, owner).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}

	p, err := Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("stored plan of [%s]: %w", owner, err)
	}
	return p, nil
}

// Upsert stores the plan as the owner's active one, superseding any previous plan.
func (r *Repo) Upsert(ctx context.Context, owner string, p *Plan) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.plan.upsert")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.String("owner", owner),
		attribute.String("plan", p.PlanName),
	)

	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal plan: %w", err)
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO gymplan_plan (owner, plan, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (owner) DO UPDATE
			SET plan = EXCLUDED.plan, updated_at = EXCLUDED.updated_at;
	`, owner, raw)
	return err
}

func (r *Repo) Delete(ctx context.Context, owner string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.plan.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("owner", owner))

	tag, err := r.db.Exec(ctx, `DELETE FROM gymplan_plan WHERE owner = $1;`, owner)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPlanNotFound
	}
	return nil
}
