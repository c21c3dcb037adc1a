package injector

import (
	"regexp"
	"strings"

	"github.com/dmitrymomot/whitelabel/internal/models"
)

var (
	hexColor = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
	fontKey  = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)
	// Quotes are allowed for family names; nothing that could end a
	// declaration or a rule.
	fontValue = regexp.MustCompile(`^[A-Za-z0-9 ,.'"_-]+$`)
)

// CSSVariables renders the branding colors and fonts as a :root rule of
// --brand-* custom properties. Invalid values are skipped. It returns an
// empty string when nothing is valid.
func CSSVariables(b *models.Branding) string {
	if b == nil {
		return ""
	}

	var decls []string
	for _, c := range []struct{ name, value string }{
		{"primary", b.PrimaryColor},
		{"secondary", b.SecondaryColor},
		{"accent", b.AccentColor},
		{"background", b.BackgroundColor},
		{"text", b.TextColor},
	} {
		if v := strings.TrimSpace(c.value); hexColor.MatchString(v) {
			decls = append(decls, "--brand-"+c.name+":"+v)
		}
	}

	for _, k := range b.FontKeys() {
		key := strings.ToLower(strings.TrimSpace(k))
		v := strings.TrimSpace(b.Fonts[k])
		if fontKey.MatchString(key) && fontValue.MatchString(v) {
			decls = append(decls, "--brand-font-"+key+":"+v)
		}
	}

	if len(decls) == 0 {
		return ""
	}
	return ":root{" + strings.Join(decls, ";") + "}"
}
