package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/2beens/gymplan/internal/config"
	"github.com/2beens/gymplan/internal/db"
	"github.com/2beens/gymplan/internal/history"
	"github.com/2beens/gymplan/internal/middleware"
	"github.com/2beens/gymplan/internal/plan"
	planmcp "github.com/2beens/gymplan/internal/plan/mcp"
	"github.com/2beens/gymplan/internal/telemetry/metrics"
	"github.com/2beens/gymplan/internal/telemetry/tracing"
	"github.com/2beens/gymplan/pkg"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/multierr"
)

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	apiTokenHash      string // bcrypt hash of the token mutating requests carry
	versionInfo       string

	config      *config.Config
	dbPool      *pgxpool.Pool
	redisClient *redis.Client

	historyService *history.Service
	planService    *plan.Service

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config                  *config.Config
	APITokenHash            string
	VersionInfo             string
	RedisPassword           string
	HoneycombTracingEnabled bool
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	cfg := params.Config

	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:         cfg.PostgresHost,
		DBPort:         cfg.PostgresPort,
		DBName:         cfg.PostgresDBName,
		DBUser:         cfg.PostgresUser,
		MaxConns:       cfg.PostgresMaxConns,
		ConnectTimeout: 5 * time.Second,
		TracingEnabled: params.HoneycombTracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("new db pool: %w", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Warnf("failed to ping db: %s", err)
	}

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, dbPool); err != nil {
			dbPool.Close()
			return nil, fmt.Errorf("migrate db: %w", err)
		}
	}

	pgxpoolCollector := pgxpoolprometheus.NewCollector(
		dbPool,
		map[string]string{"db_name": cfg.PostgresDBName},
	)
	promRegistry := metrics.SetupPrometheus(params.VersionInfo, pgxpoolCollector)
	metricsManager := metrics.NewManager("gymplan", "main", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
		Password: params.RedisPassword,
		DB:       0, // use default DB
	})

	rdbStatus := rdb.Ping(ctx)
	if err := rdbStatus.Err(); err != nil {
		log.Errorf("--> failed to ping redis: %s", err)
	} else {
		log.Debugf("redis ping: %s", rdbStatus.Val())
	}

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, "gymplan", rdb)
	if err != nil {
		if closeErr := closeConnections(dbPool, rdb); closeErr != nil {
			log.Errorf("close connections: %s", closeErr)
		}
		return nil, fmt.Errorf("honeycomb setup: %w", err)
	}

	historyService := history.NewService(history.NewRepo(dbPool), metricsManager)
	planService := plan.NewService(plan.NewServiceParams{
		Repo:                       plan.NewRepo(dbPool),
		History:                    historyService,
		Cache:                      plan.NewSnapshotCache(cfg.SnapshotCacheSizeBytes, cfg.SnapshotCacheTTLSec),
		Analyzer:                   cfg.AdherenceAnalyzer(),
		MetricsManager:             metricsManager,
		DeriveSessionsFromTemplate: cfg.DeriveSessionsFromTemplate,
	})

	return &Server{
		config:       cfg,
		dbPool:       dbPool,
		redisClient:  rdb,
		apiTokenHash: params.APITokenHash,
		versionInfo:  params.VersionInfo,

		historyService: historyService,
		planService:    planService,

		// telemetry
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}, nil
}

func (s *Server) routerSetup() *mux.Router {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("main-router"))

	ownerFunc := middleware.OwnerResolver(s.config.DefaultOwner)

	planHandler := plan.NewHandler(s.planService, ownerFunc)
	planHandler.SetupRoutes(r)

	historyHandler := history.NewHandler(s.historyService, ownerFunc)
	historyHandler.SetupRoutes(r)

	r.HandleFunc("/health", healthHandler(s.versionInfo,
		healthCheck{name: "db", check: s.dbPool.Ping},
		healthCheck{name: "redis", check: func(ctx context.Context) error {
			return s.redisClient.Ping(ctx).Err()
		}},
	)).Methods("GET").Name("health")

	// MCP over streamable HTTP, same tools as cmd/gymplan_mcp
	mcpServer := planmcp.NewServer(s.planService, s.config.DefaultOwner)
	mcpHandler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return mcpServer
	}, nil)
	r.PathPrefix("/mcp").Handler(otelhttp.NewHandler(mcpHandler, "mcp")).Name("mcp")

	// all the rest - unhandled paths
	r.HandleFunc("/{unknown}", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}).Methods("GET", "POST", "PUT", "DELETE", "OPTIONS").Name("unknown")

	authMiddleware := middleware.NewAuthMiddlewareHandler(s.apiTokenHash)

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.NewCorsPolicy(s.config.CorsAllowedOrigins).Middleware())
	r.Use(middleware.RateLimit(
		redis_rate.NewLimiter(s.redisClient),
		"main-router",
		s.config.RateLimitAllowedPerMin,
		s.metricsManager,
	))
	r.Use(authMiddleware.AuthCheck())
	r.Use(middleware.LimitAndDrainRequest(middleware.DefaultMaxBodyBytes))

	return r
}

type healthCheck struct {
	name  string
	check func(ctx context.Context) error
}

type healthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks"`
}

// healthHandler reports 200 when every dependency answers, 503 otherwise.
func healthHandler(version string, checks ...healthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		resp := healthResponse{
			Status:  "ok",
			Version: version,
			Checks:  make(map[string]string, len(checks)),
		}
		status := http.StatusOK
		for _, c := range checks {
			if err := c.check(ctx); err != nil {
				log.Errorf("health check [%s]: %s", c.name, err)
				resp.Checks[c.name] = "error: " + err.Error()
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[c.name] = "ok"
		}

		body, err := json.Marshal(resp)
		if err != nil {
			http.Error(w, "error, marshal health", http.StatusInternalServerError)
			return
		}
		pkg.WriteResponseBytes(w, pkg.ContentType.JSON, body, status)
	}
}

func (s *Server) Serve(host string, port int) {
	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      s.routerSetup(),
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
		ConnState:    s.connStateMetrics,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.HandlerFor(
		s.promRegistry,
		promhttp.HandlerOpts{},
	))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	s.metricsManager.GaugeLifeSignal.Set(1)
}

func (s *Server) GracefulShutdown() error {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	s.otelShutdown()
	log.Trace("otel shut down ...")

	var errs error

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("shutdown http server: %w", err))
		} else {
			log.Warnln("server shut down")
		}
	}

	if s.metricsHttpServer != nil {
		if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("shutdown metrics http server: %w", err))
		} else {
			log.Warnln("metrics server shut down")
		}
	}

	errs = multierr.Append(errs, closeConnections(s.dbPool, s.redisClient))

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}

	return errs
}

func (s *Server) connStateMetrics(_ net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		s.metricsManager.GaugeRequests.Add(1)
	case http.StateClosed:
		s.metricsManager.GaugeRequests.Add(-1)
	default:
		// do nothing
	}
}

// closeConnections closes the redis client and the db pool, either may be nil.
func closeConnections(dbPool *pgxpool.Pool, rdb *redis.Client) error {
	var errs error
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("close redis client: %w", err))
		}
	}

	if dbPool != nil {
		log.Debugln("closing db pool ...")
		dbPool.Close() // blocking operation
		log.Debugln("db pool closed")
	}

	return errs
}
