// Package middlewares holds the HTTP middleware of the admin and tenant
// surfaces.
//
// Ambient middleware: [RequestID], [Recover], [Timeout], [CORS] and the
// JSON [ErrorHandler]. [RequestIDExtractor] and [OrgIDExtractor] feed the
// request id and organization id into every log record.
//
// The tenant pipeline runs in this order:
//
//	internal.WithMiddleware(
//	    middlewares.RequestID(),
//	    middlewares.Recover(),
//	    middlewares.Branding(res),
//	    middlewares.Enforce(res),
//	    middlewares.Inject(middlewares.WithInjectMaxBytes(5<<20)),
//	)
//
// [Branding] stores the resolved branding in the request context, where
// [GetBranding] and [Enforce] read it. [Inject] registers a body transformer
// on the shared response writer, so the rewrite happens after the
// downstream handler (typically a reverse proxy) has produced the body.
//
// The admin surface adds [BearerAuth] and, on the verify endpoint,
// [RateLimit] backed by ulule/limiter.
package middlewares
