package logger

import (
	"context"
	"log/slog"
)

// StringExtractor builds an extractor that logs get(ctx) under key when it
// reports a non-empty value.
func StringExtractor(key string, get func(context.Context) (string, bool)) ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		v, ok := get(ctx)
		if !ok || v == "" {
			return slog.Attr{}, false
		}
		return slog.String(key, v), true
	}
}
