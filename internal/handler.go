package internal

// Handler declares routes on a router.
//
// Example:
//
//	type DomainHandler struct {
//	    verifier *verifier.Verifier
//	}
//
//	func (h *DomainHandler) Routes(r internal.Router) {
//	    r.GET("/orgs/{orgID}/domain/verification", h.details)
//	    r.POST("/orgs/{orgID}/domain/verify", h.verify)
//	}
type Handler interface {
	Routes(r Router)
}

// HandlerFunc is the signature for route handlers.
// Returning a non-nil error hands it to the app's ErrorHandler.
type HandlerFunc func(c Context) error

// Middleware wraps a HandlerFunc to add cross-cutting concerns.
// Middleware can inspect or modify the request, short-circuit processing,
// or register response transformers.
type Middleware func(next HandlerFunc) HandlerFunc

// ErrorHandler handles errors returned from handlers.
type ErrorHandler func(Context, error) error
