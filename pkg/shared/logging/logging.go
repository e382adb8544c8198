// Package logging constructs the single *zap.Logger threaded through the
// pipeline by constructor injection (no package-level global).
package logging

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config controls the logger's level and encoding, mirroring the
// research-kit.yaml "logging" block (spec §6).
type Config struct {
	Level        string // debug | info | warn | error
	Format       string // json | console
	LogDir       string // workspace logs/ directory; empty means stdout
	MaxSizeBytes int64  // rotation threshold; 0 means the default (10MiB)
}

// New builds a *zap.Logger from Config. Unknown levels default to info;
// unknown formats default to json (the production-safe default).
func New(cfg Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	switch cfg.Format {
	case "console":
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	default:
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(cfg.writer()), level)
	return zap.New(core, zap.AddCaller()), nil
}

// writer returns the destination for log output: a rotating file under
// the workspace's logs/ directory when LogDir is set, stdout otherwise.
func (cfg Config) writer() io.Writer {
	if cfg.LogDir == "" {
		return os.Stdout
	}
	rw, err := newRotatingFile(cfg.LogDir, "research-kit.log", cfg.MaxSizeBytes)
	if err != nil {
		return os.Stdout
	}
	return rw
}

// Stage returns a child logger annotated with the fields every stage
// transition log line carries: record id, stage name, content hash.
func Stage(logger *zap.Logger, recordID, stage, definitionHash string) *zap.Logger {
	return logger.With(
		zap.String("record_id", recordID),
		zap.String("stage", stage),
		zap.String("definition_hash", definitionHash),
	)
}

// Outcome logs a single structured line recording a stage's terminal
// outcome, matching the "every stage transition ... emits one
// structured log line" requirement in SPEC_FULL.md §A.
func Outcome(logger *zap.Logger, outcome string, fields ...zap.Field) {
	logger.Info(fmt.Sprintf("stage outcome: %s", outcome), fields...)
}
