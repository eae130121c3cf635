package main

import (
	"context"
	"flag"
	"os"
	"os/exec"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/2beens/gymplan/internal"
	"github.com/2beens/gymplan/internal/config"
	"github.com/2beens/gymplan/internal/logging"
	"github.com/2beens/gymplan/pkg"

	log "github.com/sirupsen/logrus"
)

// secrets never live in config.toml
type secrets struct {
	apiTokenHash     string
	redisPassword    string
	sentryDSN        string
	honeycombEnabled bool
}

func secretsFromEnv() secrets {
	s := secrets{
		apiTokenHash:     os.Getenv("GYMPLAN_API_TOKEN_HASH"),
		redisPassword:    os.Getenv("GYMPLAN_REDIS_PASS"),
		sentryDSN:        os.Getenv("SENTRY_DSN"),
		honeycombEnabled: os.Getenv("HONEYCOMB_ENABLED") == "true",
	}

	if s.apiTokenHash == "" {
		log.Errorln("GYMPLAN_API_TOKEN_HASH not set, mutating requests will be rejected (see gymplanctl hash-token)")
	}
	if s.redisPassword == "" {
		log.Warnln("GYMPLAN_REDIS_PASS not set")
	}
	if s.honeycombEnabled {
		if os.Getenv("HONEYCOMB_API_KEY") == "" {
			log.Warnln("honeycomb enabled but HONEYCOMB_API_KEY not set")
		}
		if os.Getenv("OTEL_SERVICE_NAME") == "" {
			log.Warnln("OTEL_SERVICE_NAME not set")
		}
	} else {
		log.Debugln("honeycomb tracing disabled")
	}
	return s
}

func main() {
	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path to the TOML config file")
	flag.Parse()

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		log.Fatalf("load config: %s", err)
	}

	sec := secretsFromEnv()
	flushLogs := logging.Setup(logging.LoggerSetupParams{
		LogFileName:      cfg.LogsPath,
		LogToStdout:      cfg.LogToStdout,
		LogLevel:         cfg.LogLevel,
		LogFormatJSON:    cfg.LogFormatJSON,
		Environment:      cfg.Environment,
		SentryEnabled:    cfg.SentryEnabled,
		SentryDSN:        sec.sentryDSN,
		SentryServerName: "gymplan-service",
	})
	defer flushLogs()

	version := versionInfo()
	log.Infof("gymplan [%s] starting in [%s], version [%s]", cfg.Host, cfg.Environment, version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server, err := internal.NewServer(ctx, internal.NewServerParams{
		Config:                  cfg,
		APITokenHash:            sec.apiTokenHash,
		VersionInfo:             version,
		RedisPassword:           sec.redisPassword,
		HoneycombTracingEnabled: sec.honeycombEnabled,
	})
	if err != nil {
		log.Fatalf("new server: %s", err)
	}

	server.Serve(cfg.Host, cfg.Port)

	<-ctx.Done()
	log.Warnln("shutdown signal received")

	if err := server.GracefulShutdown(); err != nil {
		log.Errorf("graceful shutdown: %s", err)
	}
}

// versionInfo prefers the vcs revision stamped by the go toolchain and falls
// back to asking git, for binaries built outside a module-aware checkout.
func versionInfo() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" && setting.Value != "" {
				return setting.Value
			}
		}
	}

	out, err := exec.Command("git", "rev-parse", "HEAD").Output()
	if err != nil {
		log.Tracef("no version info: %s", err)
		return ""
	}
	return strings.TrimSpace(pkg.BytesToString(out))
}
