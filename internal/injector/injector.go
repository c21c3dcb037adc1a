package injector

import (
	"bytes"
	"mime"
	"strings"

	"github.com/dmitrymomot/whitelabel/internal/models"
)

// Kinds of body the injector handles.
const (
	KindHTML = "html"
	KindJSON = "json"
)

// Kind maps a Content-Type header to KindHTML, KindJSON or "".
func Kind(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	switch {
	case mt == "text/html":
		return KindHTML
	case mt == "application/json", strings.HasSuffix(mt, "+json"):
		return KindJSON
	default:
		return ""
	}
}

// Apply injects b into body according to contentType. It reports the kind
// of injection performed, or "" when the body was left unchanged.
func Apply(contentType string, body []byte, b *models.Branding) ([]byte, string) {
	var out []byte
	kind := Kind(contentType)
	switch kind {
	case KindHTML:
		out = HTML(body, b)
	case KindJSON:
		out = JSON(body, b)
	default:
		return body, ""
	}
	if bytes.Equal(out, body) {
		return body, ""
	}
	return out, kind
}
