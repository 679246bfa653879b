package pipeline

import (
	"regexp"
	"strings"

	"github.com/sells-group/forecast-cli/internal/model"
)

// questionIDRe matches a block-introducing question id line, e.g. "Q12" or
// "Q3 (revised)". The id token is the first whitespace-delimited word.
var questionIDRe = regexp.MustCompile(`^Q\d+\b`)

// questionLabels maps the fixed block labels to record fields, in grammar
// order. Label text is case-sensitive and must be followed directly by a
// colon; anything else on a line is ignored.
var questionLabels = []struct {
	label string
	set   func(*model.QuestionRecord, string)
}{
	{"Axis", func(r *model.QuestionRecord, v string) { r.Axis = v }},
	{"Title", func(r *model.QuestionRecord, v string) { r.Title = v }},
	{"Horizon", func(r *model.QuestionRecord, v string) { r.Horizon = v }},
	{"Question", func(r *model.QuestionRecord, v string) { r.Question = v }},
	{"Why it matters", func(r *model.QuestionRecord, v string) { r.WhyItMatters = v }},
	{"Decision link", func(r *model.QuestionRecord, v string) { r.DecisionLink = v }},
	{"Signal hints", func(r *model.QuestionRecord, v string) { r.Signals = v }},
}

// ParseQuestions converts final stage output into ordered question records.
// The text is split into blocks at each line starting with Q<integer>; a
// block yields a record only when both its id and Question line are present.
// Malformed or incomplete blocks are dropped silently, and repeated ids are
// kept as-is — well-formed model output is the only uniqueness guarantee.
func ParseQuestions(raw string) []model.QuestionRecord {
	var records []model.QuestionRecord
	for _, block := range splitBlocks(raw) {
		if !strings.HasPrefix(strings.TrimSpace(block), "Q") {
			continue
		}
		rec := parseBlock(block)
		if rec.ID != "" && rec.Question != "" {
			records = append(records, rec)
		}
	}
	return records
}

// splitBlocks cuts the text at every line boundary that precedes a
// Q<integer> line. Text before the first such line forms its own block.
func splitBlocks(raw string) []string {
	lines := strings.Split(strings.TrimSpace(raw), "\n")

	var blocks []string
	var current []string
	for _, ln := range lines {
		if questionIDRe.MatchString(ln) && len(current) > 0 {
			blocks = append(blocks, strings.Join(current, "\n"))
			current = nil
		}
		current = append(current, ln)
	}
	if len(current) > 0 {
		blocks = append(blocks, strings.Join(current, "\n"))
	}
	return blocks
}

// parseBlock fills a record from one block's lines. The first Q<integer>
// line sets the id; labeled lines set their fields; everything else is
// ignored without error.
func parseBlock(block string) model.QuestionRecord {
	var rec model.QuestionRecord
	for _, ln := range strings.Split(block, "\n") {
		ln = strings.TrimSpace(ln)

		if rec.ID == "" && questionIDRe.MatchString(ln) {
			rec.ID = strings.Fields(ln)[0]
			continue
		}

		for _, lf := range questionLabels {
			prefix := lf.label + ":"
			if strings.HasPrefix(ln, prefix) {
				lf.set(&rec, strings.TrimSpace(ln[len(prefix):]))
				break
			}
		}
	}
	return rec
}
