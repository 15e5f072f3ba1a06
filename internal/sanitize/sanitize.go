// Package sanitize strips the usual XSS vectors out of untrusted input.
//
// This is best-effort defense in depth, not a security boundary: it does not
// parse HTML, and a production system rendering user content should put a
// vetted HTML sanitizer in front of it.
package sanitize

import (
	"regexp"
	"strings"
)

const (
	// MaxStringLength caps generic sanitized strings
	MaxStringLength = 10000
	// MaxEmailLength caps sanitized email addresses (RFC 5321 path limit)
	MaxEmailLength = 254
)

var (
	angleBrackets = regexp.MustCompile(`[<>]`)
	jsProtocol    = regexp.MustCompile(`(?i)javascript:`)
	eventHandlers = regexp.MustCompile(`(?i)on\w+=`)
	emailDisallow = regexp.MustCompile(`[^\w@.\-]`)
)

// String applies the fixed sanitization policy, in order: strip angle
// brackets, strip the javascript: scheme, strip inline on<event>= handlers,
// trim surrounding whitespace, truncate to MaxStringLength.
func String(raw string) string {
	clean := angleBrackets.ReplaceAllString(raw, "")
	clean = jsProtocol.ReplaceAllString(clean, "")
	clean = eventHandlers.ReplaceAllString(clean, "")
	clean = strings.TrimSpace(clean)

	if len(clean) > MaxStringLength {
		clean = clean[:MaxStringLength]
	}
	return clean
}

// Email sanitizes an email address: the generic policy plus lowercasing,
// a stricter character allow-list (word characters, @, ., -) and the
// shorter length cap.
func Email(raw string) string {
	clean := String(raw)
	clean = strings.ToLower(clean)
	clean = emailDisallow.ReplaceAllString(clean, "")

	if len(clean) > MaxEmailLength {
		clean = clean[:MaxEmailLength]
	}
	return clean
}
