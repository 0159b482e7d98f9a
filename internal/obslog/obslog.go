// Package obslog builds the structured logger used across the segment
// cache subsystem. The teacher referenced a "pkg/logger" from its engine
// and ignite packages that was never actually checked into that repo;
// this package supplies it, built directly on go.uber.org/zap the way the
// rest of the teacher's code expects a *zap.SugaredLogger to be handed in.
package obslog

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level mirrors zapcore.Level so callers outside this package don't need
// to import zap directly just to pick a verbosity.
type Level = zapcore.Level

const (
	DebugLevel = zapcore.DebugLevel
	InfoLevel  = zapcore.InfoLevel
	WarnLevel  = zapcore.WarnLevel
	ErrorLevel = zapcore.ErrorLevel
)

// New builds a *zap.SugaredLogger tagged with "service", writing JSON
// records to stderr at the given level. Production deployments of this
// subsystem run behind a process supervisor that captures stderr, so we
// never open log files directly here.
func New(service string, level Level) *zap.SugaredLogger {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "ts"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(cfg),
		zapcore.Lock(zapcore.AddSync(os.Stderr)),
		zap.NewAtomicLevelAt(level),
	)

	logger := zap.New(core, zap.AddCaller(), zap.AddStacktrace(ErrorLevel))
	return logger.Sugar().With("service", service)
}

// NewDevelopment builds a console-encoded logger at debug level, for use
// in cmd/segcachectl and tests where readability matters more than
// machine-parseable output.
func NewDevelopment(service string) *zap.SugaredLogger {
	logger, err := zap.NewDevelopment()
	if err != nil {
		logger = zap.NewNop()
	}
	return logger.Sugar().With("service", service)
}

// Nop returns a logger that discards everything, for tests that don't
// care about log output.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
