package model

// QuestionRecord is a parsed forecasting question with eight fixed fields.
// Records are constructed once by the parser and never mutated.
type QuestionRecord struct {
	ID           string `json:"id"`
	Axis         string `json:"axis"`
	Title        string `json:"title"`
	Horizon      string `json:"horizon"`
	Question     string `json:"question"`
	WhyItMatters string `json:"why_it_matters"`
	DecisionLink string `json:"decision_link"`
	Signals      string `json:"signals"`
}

// Columns is the fixed tabular header, in field order.
var Columns = []string{
	"id",
	"axis",
	"title",
	"horizon",
	"question",
	"why_it_matters",
	"decision_link",
	"signals",
}

// Horizons lists the horizon labels the generate prompt asks for. The parser
// does not validate against this set; it exists for display and prompts.
var Horizons = []string{"12m", "24m", "36m", "60m"}

// Row returns the record's cells in Columns order.
func (q QuestionRecord) Row() []string {
	return []string{
		q.ID,
		q.Axis,
		q.Title,
		q.Horizon,
		q.Question,
		q.WhyItMatters,
		q.DecisionLink,
		q.Signals,
	}
}
