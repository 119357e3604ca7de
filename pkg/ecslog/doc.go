// Package ecslog provides centralized, environment-configurable structured
// logging for ecsframe's packages and the programs that embed them.
//
// It wraps logrus to give every package (pkg/ecs, pkg/scheduler, and
// consumers of both) a consistent *logrus.Logger / *logrus.Entry shape,
// rather than each constructing its own formatter and level.
//
// # Configuration
//
// The logger can be configured via environment variables:
//   - LOG_LEVEL: minimum log level (debug, info, warn, error, fatal). Default: info
//   - LOG_FORMAT: output format (json, text). Default: text
//
// # Usage
//
//	logger := ecslog.NewLoggerFromEnv()
//	world := ecs.NewWorld(ecs.WithLogger(logger))
//	sched := scheduler.NewScheduler(scheduler.WithLogger(logger))
package ecslog
