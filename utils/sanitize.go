package utils

import "github.com/microcosm-cc/bluemonday"

var sanitizer = bluemonday.StrictPolicy()

// Sanitize strips all HTML from user supplied profile text.
func Sanitize(input string) string {
	return sanitizer.Sanitize(input)
}
