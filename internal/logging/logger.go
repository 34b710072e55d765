package logging

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/gtudan/co2monitor/internal/config"
)

var logger *zap.Logger

// LogLevelEnvVar overrides the configured log level when set.
// Valid values: "debug", "info", "warn", "error"
const LogLevelEnvVar = "CO2MONITOR_LOG_LEVEL"

// Initialize builds the global logger from cfg. The LogLevelEnvVar
// environment variable takes precedence over cfg.Level.
func Initialize(cfg config.LoggingConfig) error {
	level := cfg.Level
	if env := os.Getenv(LogLevelEnvVar); env != "" {
		level = env
	}

	l, err := New(cfg, level)
	if err != nil {
		return err
	}
	logger = l
	return nil
}

// InitializeFileOnly is Initialize without console output, for commands
// that own the terminal. Without a configured log file nothing is logged.
func InitializeFileOnly(cfg config.LoggingConfig) error {
	if cfg.File.Filename == "" {
		logger = zap.NewNop()
		return nil
	}
	level := cfg.Level
	if env := os.Getenv(LogLevelEnvVar); env != "" {
		level = env
	}
	l, err := build(cfg, level, false)
	if err != nil {
		return err
	}
	logger = l
	return nil
}

// New builds a logger without installing it globally.
func New(cfg config.LoggingConfig, level string) (*zap.Logger, error) {
	return build(cfg, level, true)
}

func build(cfg config.LoggingConfig, level string, console bool) (*zap.Logger, error) {
	zapLevel, err := parseLevel(level)
	if err != nil {
		return nil, err
	}

	encoderCfg := zap.NewDevelopmentEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeCaller = zapcore.ShortCallerEncoder

	var encoder zapcore.Encoder
	if strings.ToLower(cfg.Format) == "json" {
		encoderCfg = zap.NewProductionEncoderConfig()
		encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	} else {
		encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		if console {
			encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	}

	var syncers []zapcore.WriteSyncer
	if console {
		syncers = append(syncers, zapcore.AddSync(os.Stderr))
	}
	if cfg.File.Filename != "" {
		lj := &lumberjack.Logger{
			Filename:   cfg.File.Filename,
			MaxSize:    cfg.File.MaxSizeMB,
			MaxBackups: cfg.File.MaxBackups,
			MaxAge:     cfg.File.MaxAgeDays,
			Compress:   cfg.File.Compress,
		}
		syncers = append(syncers, zapcore.AddSync(lj))
	}

	core := zapcore.NewCore(encoder, zapcore.NewMultiWriteSyncer(syncers...), zap.NewAtomicLevelAt(zapLevel))
	return zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)), nil
}

func parseLevel(level string) (zapcore.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel, nil
	case "", "info":
		return zapcore.InfoLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("failed to initialize logger: unknown level %q", level)
	}
}

// SetLogger replaces the global logger. Intended for tests.
func SetLogger(l *zap.Logger) {
	logger = l
}

// GetLogger returns the global logger instance
func GetLogger() *zap.Logger {
	if logger == nil {
		// Silent until initialized so library use and tests stay quiet
		logger = zap.NewNop()
	}
	return logger
}

// Info logs an info message
func Info(msg string, fields ...zap.Field) {
	GetLogger().Info(msg, fields...)
}

// Debug logs a debug message
func Debug(msg string, fields ...zap.Field) {
	GetLogger().Debug(msg, fields...)
}

// Warn logs a warning message
func Warn(msg string, fields ...zap.Field) {
	GetLogger().Warn(msg, fields...)
}

// Error logs an error message
func Error(msg string, fields ...zap.Field) {
	GetLogger().Error(msg, fields...)
}

// DebugEnabled reports whether debug entries would be written.
func DebugEnabled() bool {
	return GetLogger().Core().Enabled(zapcore.DebugLevel)
}

// LogDeviceEvent logs a device lifecycle event (opened, handshake, closed)
func LogDeviceEvent(path string, event string, fields ...zap.Field) {
	Info("Device event", append([]zap.Field{
		zap.String("device", path),
		zap.String("event", event),
	}, fields...)...)
}

// LogReading logs a decoded measurement
func LogReading(kind string, value string) {
	Info("Reading",
		zap.String("kind", kind),
		zap.String("value", value),
	)
}

// LogRawFrame logs frame bytes at debug level (useful for protocol issues)
func LogRawFrame(label string, data []byte, fields ...zap.Field) {
	if !DebugEnabled() {
		return
	}
	Debug(label, append([]zap.Field{
		zap.Int("length", len(data)),
		zap.String("hex", hexDump(data)),
	}, fields...)...)
}

func hexDump(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	if len(data) > 256 {
		return hex.EncodeToString(data[:256]) + "..."
	}
	return hex.EncodeToString(data)
}

// Sync flushes any buffered log entries
func Sync() {
	if logger != nil {
		_ = logger.Sync()
	}
}
