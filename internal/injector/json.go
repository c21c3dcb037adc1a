package injector

import (
	"bytes"
	"encoding/json"

	"github.com/dmitrymomot/whitelabel/internal/models"
)

// BrandingKey is the reserved member added to JSON objects.
const BrandingKey = "_branding"

// JSON returns body with a BrandingKey member appended to its top-level
// object. Bodies that are not a JSON object, or already have the key, are
// returned unchanged. The original member order and formatting are kept.
func JSON(body []byte, b *models.Branding) []byte {
	if b == nil {
		return body
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) < 2 || trimmed[0] != '{' || trimmed[len(trimmed)-1] != '}' {
		return body
	}

	var members map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &members); err != nil {
		return body
	}
	if _, ok := members[BrandingKey]; ok {
		return body
	}

	value, err := json.Marshal(b.Public())
	if err != nil {
		return body
	}

	end := bytes.LastIndexByte(body, '}')
	head := bytes.TrimRight(body[:end], " \t\r\n")

	out := make([]byte, 0, len(body)+len(value)+len(BrandingKey)+4)
	out = append(out, head...)
	if len(members) > 0 {
		out = append(out, ',')
	}
	out = append(out, `"`+BrandingKey+`":`...)
	out = append(out, value...)
	return append(out, body[end:]...)
}
