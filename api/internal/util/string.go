package util

import (
	"regexp"
	"strings"
)

// Opening and closing markdown fences, with or without a json language tag.
var reCodeFence = regexp.MustCompile("```(?:json)?")

// StripCodeFences removes every ``` / ```json marker from a model reply and
// trims the remainder.
func StripCodeFences(s string) string {
	s = reCodeFence.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
