package model

import (
	"strings"

	"github.com/rotisserie/eris"
)

// ErrEmptyBrief indicates the caller supplied a blank company brief.
// The check runs before any completion call is made.
var ErrEmptyBrief = eris.New("brief: company brief is empty")

// constraintsHeading separates the free-text brief from the optional
// constraints block in the combined prompt input.
const constraintsHeading = "Extra constraints:"

// Brief is the caller-supplied company/sector description, optionally
// extended with free-text constraints. Immutable for the duration of a run.
type Brief struct {
	Text        string `json:"text"`
	Constraints string `json:"constraints,omitempty"`
}

// Validate checks that the brief has non-blank text.
func (b Brief) Validate() error {
	if strings.TrimSpace(b.Text) == "" {
		return ErrEmptyBrief
	}
	return nil
}

// Full returns the brief text with the constraints block appended under the
// fixed separator heading. Constraints made of only whitespace are omitted.
func (b Brief) Full() string {
	text := strings.TrimSpace(b.Text)
	constraints := strings.TrimSpace(b.Constraints)
	if constraints == "" {
		return text
	}
	return text + "\n\n" + constraintsHeading + "\n" + constraints
}
