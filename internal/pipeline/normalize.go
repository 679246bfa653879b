package pipeline

import (
	"regexp"
	"strings"
)

// URL and whitespace patterns applied to every model response.
var (
	httpURLRe  = regexp.MustCompile(`https?://\S+`)
	wwwURLRe   = regexp.MustCompile(`www\.\S+`)
	hSpaceRe   = regexp.MustCompile(`[ \t]+`)
	blankRunRe = regexp.MustCompile(`\n{3,}`)
)

// StripURLs removes http(s):// and www.-prefixed tokens from text.
func StripURLs(text string) string {
	text = httpURLRe.ReplaceAllString(text, "")
	return wwwURLRe.ReplaceAllString(text, "")
}

// Normalize cleans a model response before it is shown or chained into the
// next prompt: URLs removed, horizontal whitespace collapsed, per-line
// trailing whitespace stripped, runs of three or more newlines collapsed to
// two, and the whole text trimmed with exactly one trailing newline.
// Idempotent: normalizing already-normalized text returns it unchanged.
func Normalize(text string) string {
	text = StripURLs(text)
	text = hSpaceRe.ReplaceAllString(text, " ")

	lines := strings.Split(text, "\n")
	for i, ln := range lines {
		lines[i] = strings.TrimRight(ln, " \t")
	}
	text = strings.Join(lines, "\n")

	// Collapse blank-line runs after per-line trimming, so lines that became
	// empty above cannot leave a three-newline run behind.
	text = blankRunRe.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text) + "\n"
}
