// Package handlers declares the HTTP routes of the admin and tenant
// surfaces. Handlers return *internal.HTTPError values; rendering is left
// to the app's ErrorHandler.
package handlers
