package ecslog

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// LogLevel represents the minimum log level.
type LogLevel string

const (
	DebugLevel LogLevel = "debug"
	InfoLevel  LogLevel = "info"
	WarnLevel  LogLevel = "warn"
	ErrorLevel LogLevel = "error"
	FatalLevel LogLevel = "fatal"
)

// LogFormat represents the output format for logs.
type LogFormat string

const (
	JSONFormat LogFormat = "json"
	TextFormat LogFormat = "text"
)

// Config holds logger configuration.
type Config struct {
	// Level sets the minimum log level
	Level LogLevel

	// Format sets the output format (json or text)
	Format LogFormat

	// AddCaller adds file and line number to log entries
	AddCaller bool

	// EnableColor enables colored output for text format
	EnableColor bool
}

// DefaultConfig returns a default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:       InfoLevel,
		Format:      TextFormat,
		AddCaller:   true,
		EnableColor: true,
	}
}

// NewLogger creates a new configured logger instance.
func NewLogger(config Config) *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(parseLogLevel(config.Level))
	logger.SetFormatter(newFormatter(config.Format, config.EnableColor))
	logger.SetReportCaller(config.AddCaller)
	logger.SetOutput(os.Stdout)
	return logger
}

func newFormatter(format LogFormat, enableColor bool) logrus.Formatter {
	if format == JSONFormat {
		return &logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
				logrus.FieldKeyFunc:  "caller",
			},
		}
	}
	return &logrus.TextFormatter{
		TimestampFormat: "2006-01-02 15:04:05.000",
		FullTimestamp:   true,
		ForceColors:     enableColor,
		DisableColors:   !enableColor,
	}
}

// NewLoggerFromEnv creates a logger configured from LOG_LEVEL and
// LOG_FORMAT environment variables, falling back to DefaultConfig for
// anything unset.
func NewLoggerFromEnv() *logrus.Logger {
	config := DefaultConfig()

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		config.Level = LogLevel(strings.ToLower(level))
	}
	if format := os.Getenv("LOG_FORMAT"); format != "" {
		config.Format = LogFormat(strings.ToLower(format))
	}

	return NewLogger(config)
}

var levelsByName = map[LogLevel]logrus.Level{
	DebugLevel: logrus.DebugLevel,
	InfoLevel:  logrus.InfoLevel,
	WarnLevel:  logrus.WarnLevel,
	ErrorLevel: logrus.ErrorLevel,
	FatalLevel: logrus.FatalLevel,
}

func parseLogLevel(level LogLevel) logrus.Level {
	if l, ok := levelsByName[level]; ok {
		return l
	}
	return logrus.InfoLevel
}

// WithContext creates a logger entry with standard context fields.
func WithContext(logger *logrus.Logger, fields logrus.Fields) *logrus.Entry {
	return logger.WithFields(fields)
}

// WorldLogger creates a logger entry scoped to one ecs.World instance,
// for deployments that run more than one world (e.g. per-match servers)
// and want to tell their log lines apart.
func WorldLogger(logger *logrus.Logger, worldName string) *logrus.Entry {
	return logger.WithFields(logrus.Fields{
		"world": worldName,
	})
}

// SchedulerLogger creates a logger entry scoped to one named scheduler
// group.
func SchedulerLogger(logger *logrus.Logger, group string) *logrus.Entry {
	return logger.WithFields(logrus.Fields{
		"schedulerGroup": group,
	})
}

// PluginLogger creates a logger entry scoped to one plugin hook.
func PluginLogger(logger *logrus.Logger, hookName string) *logrus.Entry {
	return logger.WithFields(logrus.Fields{
		"plugin": hookName,
	})
}

// DemoLogger creates a logger configured for CLI example programs:
// colored text, no caller info, LOG_LEVEL-overridable.
func DemoLogger(name string) *logrus.Logger {
	config := Config{
		Level:       InfoLevel,
		Format:      TextFormat,
		AddCaller:   false,
		EnableColor: true,
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		config.Level = LogLevel(strings.ToLower(level))
	}
	return NewLogger(config)
}
