package logging

import (
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Format selects the log encoding.
type Format string

const (
	// FormatJSON is the structured encoding services ship to log collectors.
	FormatJSON Format = "json"
	// FormatConsole is a human-readable encoding for CLI tools and local runs.
	FormatConsole Format = "console"
)

// Options controls NewWithOptions.
type Options struct {
	Service string
	Level   zapcore.Level
	Format  Format
	// Output is a zap sink such as "stdout" or "stderr".
	Output string
}

// OptionsFromEnv reads LOG_LEVEL (default info) and LOG_FORMAT (default json).
func OptionsFromEnv(service string) Options {
	return Options{
		Service: service,
		Level:   parseLevel(os.Getenv("LOG_LEVEL"), zapcore.InfoLevel),
		Format:  parseFormat(os.Getenv("LOG_FORMAT"), FormatJSON),
		Output:  "stdout",
	}
}

// NewLogger builds the service logger from the environment.
func NewLogger(service string) (*zap.Logger, error) {
	return NewWithOptions(OptionsFromEnv(service))
}

// NewCLILogger builds a console logger on stderr so command output stays clean on stdout.
func NewCLILogger(name string) (*zap.Logger, error) {
	opts := OptionsFromEnv(name)
	opts.Format = parseFormat(os.Getenv("LOG_FORMAT"), FormatConsole)
	opts.Output = "stderr"
	return NewWithOptions(opts)
}

// NewWithOptions builds a logger tagged with opts.Service.
func NewWithOptions(opts Options) (*zap.Logger, error) {
	if opts.Output == "" {
		opts.Output = "stdout"
	}
	enc := encoderConfig()
	var sampling *zap.SamplingConfig
	switch opts.Format {
	case FormatConsole:
		enc.EncodeLevel = zapcore.CapitalLevelEncoder
	default:
		opts.Format = FormatJSON
		sampling = &zap.SamplingConfig{Initial: 100, Thereafter: 100}
	}

	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(opts.Level),
		Sampling:         sampling,
		Encoding:         string(opts.Format),
		EncoderConfig:    enc,
		OutputPaths:      []string{opts.Output},
		ErrorOutputPaths: []string{"stderr"},
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	if opts.Service != "" {
		logger = logger.With(zap.String("service", opts.Service))
	}
	return logger, nil
}

func parseLevel(raw string, fallback zapcore.Level) zapcore.Level {
	var level zapcore.Level
	if err := level.Set(strings.ToLower(strings.TrimSpace(raw))); err != nil {
		return fallback
	}
	return level
}

func parseFormat(raw string, fallback Format) Format {
	switch f := Format(strings.ToLower(strings.TrimSpace(raw))); f {
	case FormatJSON, FormatConsole:
		return f
	default:
		return fallback
	}
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stack",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     func(t time.Time, enc zapcore.PrimitiveArrayEncoder) { enc.AppendString(t.UTC().Format(time.RFC3339Nano)) },
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}
