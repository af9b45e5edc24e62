// Package htmlsanitize strips dangerous markup from user-generated content
// (post bodies, comments) before it is stored.
package htmlsanitize

import "github.com/microcosm-cc/bluemonday"

var policy = bluemonday.UGCPolicy()

// Sanitize returns s with unsafe HTML removed. Safe formatting tags
// (p, strong, em, a with http/https href, lists) survive.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return policy.Sanitize(s)
}
