// Package sanitizer cleans tenant-supplied branding values before they reach
// a rendered page.
package sanitizer
