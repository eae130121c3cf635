package db

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/exaring/otelpgx"
	"github.com/jackc/pgx/v5/pgxpool"
)

type NewDBPoolParams struct {
	DBHost   string
	DBPort   string
	DBName   string
	DBUser   string
	MaxConns int32
	// plan reads are short; anything slower than this is a stuck connection
	ConnectTimeout time.Duration
	TracingEnabled bool
}

// ConnString renders the params as a postgres URL. The user defaults to postgres.
func (p NewDBPoolParams) ConnString() string {
	user := p.DBUser
	if user == "" {
		user = "postgres"
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.User(user),
		Host:   net.JoinHostPort(p.DBHost, p.DBPort),
		Path:   "/" + p.DBName,
	}
	if p.ConnectTimeout > 0 {
		q := u.Query()
		q.Set("connect_timeout", fmt.Sprintf("%d", int(p.ConnectTimeout.Seconds())))
		u.RawQuery = q.Encode()
	}
	return u.String()
}

func NewDBPool(ctx context.Context, params NewDBPoolParams) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(params.ConnString())
	if err != nil {
		return nil, fmt.Errorf("parse db config: %w", err)
	}
	if params.MaxConns > 0 {
		poolConfig.MaxConns = params.MaxConns
	}
	return newPool(ctx, poolConfig, params.TracingEnabled)
}

// NewDBPoolFromConnString is used where the connection string comes from outside, like test containers.
func NewDBPoolFromConnString(ctx context.Context, connString string, tracingEnabled bool) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parse db config: %w", err)
	}
	return newPool(ctx, poolConfig, tracingEnabled)
}

func newPool(ctx context.Context, poolConfig *pgxpool.Config, tracingEnabled bool) (*pgxpool.Pool, error) {
	if tracingEnabled {
		poolConfig.ConnConfig.Tracer = otelpgx.NewTracer()
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	return pool, nil
}
