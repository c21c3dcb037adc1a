// Package logger builds slog loggers that enrich records from context and
// optionally forward warnings and errors to Sentry.
//
// A [ContextExtractor] runs on every record, so request-scoped values such as
// the request ID or the resolved organization are always current:
//
//	log := logger.New(cfg, os.Stdout,
//		logger.StringExtractor("request_id", middlewares.GetRequestID),
//	)
//	log.InfoContext(ctx, "domain verified", slog.String("domain", d))
//
// Without SENTRY_DSN the logger writes to the given writer only.
package logger
