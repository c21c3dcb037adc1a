// Package injector splices tenant branding into HTML and JSON response bodies.
//
// The functions are pure: they take a body and return either a new body or
// the original one untouched. Anything they cannot parse, or a body that
// already carries branding, is returned as is, so running an injector twice
// is harmless.
//
// HTML bodies receive a style element with CSS custom properties and the
// tenant's custom CSS, an optional script, favicon and title, all placed
// right before the closing head tag:
//
//	out := injector.HTML(body, &rb.Branding)
//
// JSON object bodies receive an allow-listed "_branding" member:
//
//	out := injector.JSON(body, &rb.Branding)
package injector
