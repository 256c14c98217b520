// Package sanitize holds the shared HTML sanitization policies. Policies
// are immutable after construction and safe for concurrent use.
package sanitize

import (
	"github.com/microcosm-cc/bluemonday"
)

var (
	// strictPolicy removes all HTML tags and attributes.
	strictPolicy = bluemonday.StrictPolicy()

	// ugcPolicy allows safe user-generated formatting such as <p>, <b>,
	// <em>, <a> and lists while stripping scripts and event handlers.
	ugcPolicy = bluemonday.UGCPolicy()
)

// Text strips all HTML tags and returns plain text.
func Text(input string) string {
	return strictPolicy.Sanitize(input)
}

// HTML sanitizes rich text content, keeping safe formatting tags.
func HTML(input string) string {
	return ugcPolicy.Sanitize(input)
}
