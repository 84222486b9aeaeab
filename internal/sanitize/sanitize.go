// Package sanitize makes HTML fragments safe for API responses. Two
// policies exist: a strict policy that strips all markup, and a permissive
// policy that retains a fixed allow-list of tags and attributes.
//
// Sanitization runs as a bounded fixed-point loop: a pass that removed
// markup can expose markup that was nested inside it, so the policy is
// reapplied until the fragment stops changing. The iteration count is
// capped so adversarial input cannot loop indefinitely.
package sanitize

import (
	"github.com/microcosm-cc/bluemonday"
)

// DefaultElements is the fixed allow-list of tags the permissive policy
// retains.
var DefaultElements = []string{
	"p", "h2", "h3", "h4", "b", "strong", "i", "u", "ul", "ol",
	"span", "li", "a", "em",
}

// DefaultAttributes is the fixed allow-list of attributes the permissive
// policy retains on allowed tags.
var DefaultAttributes = []string{
	"alt", "width", "href", "height", "title", "value", "style",
}

// maxPasses caps the fixed-point loop. Sanitization of well-formed input
// converges in two passes; the cap only matters for adversarial fragments.
const maxPasses = 10

// Sanitizer holds the strict and permissive policies for a deployment.
type Sanitizer struct {
	strict     *bluemonday.Policy
	permissive *bluemonday.Policy
}

// New builds a Sanitizer with the default allow-lists.
func New() *Sanitizer {
	return NewWithAllowList(DefaultElements, DefaultAttributes)
}

// NewWithAllowList builds a Sanitizer whose permissive policy retains the
// given tags and attributes. The strict policy always strips everything.
func NewWithAllowList(elements, attributes []string) *Sanitizer {
	permissive := bluemonday.NewPolicy()
	permissive.AllowElements(elements...)
	permissive.AllowAttrs(attributes...).Globally()

	return &Sanitizer{
		strict:     bluemonday.StrictPolicy(),
		permissive: permissive,
	}
}

// Strip removes all markup from the fragment. Used for every string field
// not explicitly declared HTML-permitting.
func (s *Sanitizer) Strip(fragment string) string {
	return fixedPoint(s.strict, fragment)
}

// Clean removes everything outside the allow-list from the fragment. Used
// for fields declared HTML-permitting.
func (s *Sanitizer) Clean(fragment string) string {
	return fixedPoint(s.permissive, fragment)
}

// fixedPoint applies the policy until the fragment stops changing or the
// pass cap is hit. Termination contract: every pass either removes markup
// or leaves the fragment unchanged, so the loop ends as soon as a pass is
// a no-op.
func fixedPoint(policy *bluemonday.Policy, fragment string) string {
	for i := 0; i < maxPasses; i++ {
		next := policy.Sanitize(fragment)
		if next == fragment {
			return next
		}
		fragment = next
	}
	return fragment
}
