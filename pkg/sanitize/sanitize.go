// Package sanitize reduces user supplied text to plain text before it is stored.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer drops markup from user generated content.
type Sanitizer struct {
	policy *bluemonday.Policy
}

// New creates a Sanitizer based on bluemonday's strict policy, which keeps no
// elements at all.
func New() *Sanitizer {
	return &Sanitizer{policy: bluemonday.StrictPolicy()}
}

// Text removes tags from s and trims surrounding whitespace. The result is
// plain text: entities escaped by the policy are decoded again, so ordinary
// characters such as & and < survive unchanged and the output is never longer
// than the input.
func (s *Sanitizer) Text(text string) string {
	if s == nil || s.policy == nil {
		return strings.TrimSpace(text)
	}
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(text)))
}
