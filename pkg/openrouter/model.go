package openrouter

import "strings"

// onlineSuffix requests the web-augmented variant of a model.
const onlineSuffix = ":online"

// ModelID derives the effective model identifier from a base model name and
// an online flag. Any existing :online suffix on the base is stripped first,
// so the derivation is stable regardless of how the base was written.
func ModelID(base string, online bool) string {
	base = strings.ReplaceAll(strings.TrimSpace(base), onlineSuffix, "")
	if online {
		return base + onlineSuffix
	}
	return base
}
