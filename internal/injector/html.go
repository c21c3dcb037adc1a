package injector

import (
	"bytes"
	"html"
	"regexp"
	"strings"

	"github.com/dmitrymomot/whitelabel/internal/models"
	"github.com/dmitrymomot/whitelabel/pkg/sanitizer"
)

// Element ids marking injected content.
const (
	StyleID  = "whitelabel-branding"
	ScriptID = "whitelabel-script"
)

var (
	closeStyle  = regexp.MustCompile(`(?i)</(style)`)
	closeScript = regexp.MustCompile(`(?i)</(script)`)
	// </head must be followed by '>', whitespace or '/' so </header> never matches.
	closeHead = regexp.MustCompile(`(?i)</head[\s/>]`)

	styleMarker  = []byte(`id="` + StyleID + `"`)
	scriptMarker = []byte(`id="` + ScriptID + `"`)
)

// HTML returns body with the branding fragment inserted before the first
// </head>. The body is returned unchanged when b is nil, there is no head
// end tag, or the markers of a previous injection are present.
func HTML(body []byte, b *models.Branding) []byte {
	if b == nil || len(body) == 0 {
		return body
	}
	if bytes.Contains(body, styleMarker) || bytes.Contains(body, scriptMarker) {
		return body
	}

	loc := closeHead.FindIndex(body)
	if loc == nil {
		return body
	}
	at := loc[0]

	fragment := Fragment(b)
	if fragment == "" {
		return body
	}

	out := make([]byte, 0, len(body)+len(fragment))
	out = append(out, body[:at]...)
	out = append(out, fragment...)
	return append(out, body[at:]...)
}

// Fragment renders the elements HTML would insert.
func Fragment(b *models.Branding) string {
	if b == nil {
		return ""
	}

	var sb strings.Builder

	vars := CSSVariables(b)
	css := strings.TrimSpace(b.CustomCSS)
	if vars != "" || css != "" {
		sb.WriteString(`<style id="` + StyleID + `">`)
		sb.WriteString(vars)
		if css != "" {
			sb.WriteString(closeStyle.ReplaceAllString(css, `<\/$1`))
		}
		sb.WriteString("</style>")
	}

	if js := strings.TrimSpace(b.CustomJS); js != "" {
		sb.WriteString(`<script id="` + ScriptID + `">`)
		sb.WriteString(closeScript.ReplaceAllString(js, `<\/$1`))
		sb.WriteString("</script>")
	}

	if u, ok := sanitizer.HTTPURL(b.FaviconURL); ok {
		sb.WriteString(`<link rel="icon" href="` + html.EscapeString(u) + `">`)
	}

	if title := sanitizer.StripHTML(b.ProductName); title != "" {
		sb.WriteString("<title>" + html.EscapeString(title) + "</title>")
	}

	return sb.String()
}
