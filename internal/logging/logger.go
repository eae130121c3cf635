package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/2beens/gymplan/pkg"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

type LoggerSetupParams struct {
	LogFileName      string
	LogToStdout      bool
	LogLevel         string
	LogFormatJSON    bool
	Environment      string
	SentryEnabled    bool
	SentryDSN        string
	SentryServerName string
}

// Setup configures the global logrus logger. The returned func flushes pending
// sentry events and should be deferred by main.
func Setup(params LoggerSetupParams) (flush func()) {
	flush = func() {}

	logrus.SetLevel(GetLevel(params.LogLevel))
	if params.LogFormatJSON {
		logrus.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	}

	if params.SentryEnabled {
		if err := setupSentry(params); err != nil {
			logrus.Errorf("sentry setup: %s", err)
		} else {
			flush = func() { sentry.Flush(2 * time.Second) }
		}
	}

	out, err := logOutput(params.LogFileName, params.LogToStdout)
	if err != nil {
		logrus.SetOutput(os.Stdout)
		logrus.Errorf("log file [%s]: %s, logging to stdout only", params.LogFileName, err)
		return flush
	}
	logrus.SetOutput(out)
	return flush
}

func setupSentry(params LoggerSetupParams) error {
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              params.SentryDSN,
		Environment:      params.Environment,
		ServerName:       params.SentryServerName,
		TracesSampleRate: 1.0,
	}); err != nil {
		return err
	}
	logrus.AddHook(NewSentryHook([]logrus.Level{
		logrus.PanicLevel,
		logrus.FatalLevel,
		logrus.ErrorLevel,
	}))
	logrus.Infoln("sentry hook installed")
	return nil
}

// logOutput picks stdout, a rotated log file, or both.
func logOutput(fileName string, alsoStdout bool) (io.Writer, error) {
	if fileName == "" {
		return os.Stdout, nil
	}
	if !strings.HasSuffix(fileName, ".log") {
		fileName += ".log"
	}

	dir := filepath.Dir(fileName)
	exists, err := pkg.PathExists(dir, true)
	if err != nil {
		return nil, fmt.Errorf("stat logs dir: %w", err)
	}
	if !exists {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create logs dir: %w", err)
		}
	}

	rotated := &lumberjack.Logger{
		Filename:   fileName,
		MaxSize:    20, // megabytes
		MaxBackups: 10,
		MaxAge:     90, // days
		Compress:   true,
	}
	if alsoStdout {
		return pkg.NewFanoutWriter(os.Stdout, rotated), nil
	}
	return rotated, nil
}

// GetLevel parses a level name, falling back to info for unknown names.
func GetLevel(level string) logrus.Level {
	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}
