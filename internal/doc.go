// Package internal is the HTTP framework the service is built on: a thin
// layer over chi with a Context type, error-returning handlers, and a
// response writer that can hold a body back for rewriting.
//
// # Core Types
//
//   - App: one routing surface with middleware, handlers and mounts
//   - Context: request/response access and helpers; also a context.Context
//   - Router: what handlers use to declare routes
//   - Handler, HandlerFunc, Middleware, ErrorHandler
//   - ResponseWriter: the per-request writer shared by every layer
//
// # Response transformation
//
// Every middleware layer and the final handler of a request share one
// *ResponseWriter. A middleware registers a BodyTransformer before calling
// next; when the status line goes out, the writer asks each transformer
// whether it wants the body. If one does, and the response carries no
// Content-Encoding, the body is buffered up to a limit and handed to the
// transformers when the outermost layer finishes:
//
//	func Stamp(next internal.HandlerFunc) internal.HandlerFunc {
//	    return func(c internal.Context) error {
//	        c.ResponseWriter().AddTransformer(internal.BodyTransformer{
//	            Match: func(status int, h http.Header) bool { return status == http.StatusOK },
//	            Transform: func(h http.Header, body []byte) []byte {
//	                return append(body, "\n<!-- stamped -->"...)
//	            },
//	        })
//	        return next(c)
//	    }
//	}
//
// Bodies larger than the limit are streamed untouched. A rewritten body
// gets a fresh Content-Length and loses its ETag.
//
// # Multiple hosts
//
// Run dispatches by Host header: exact and one-level wildcard patterns map
// to Apps, and a Fallback App takes every other host, including tenants'
// custom domains.
//
//	err := internal.Run(
//	    internal.Domain("admin.platform.com", admin),
//	    internal.Fallback(tenant),
//	    internal.Address(":8080"),
//	    internal.ShutdownHook(db.Shutdown(pool)),
//	)
//
// Workers attached with WithJobs start before the listener opens and stop
// after the server drains.
package internal
