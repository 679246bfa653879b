package pipeline

import "fmt"

// Prompt templates for the three pipeline stages. Each fixes the output
// grammar the next stage (or the parser) expects; editorial rules are
// carried as literal instruction text and enforced by the model, not here.

const researchPrompt = `You are a strategic intelligence analyst.

Rules:
- Use current information if web access is available.
- Do not output URLs.
- Keep language concise and business-oriented.
- Focus on medium-term (6-24 months) and long-term (24-60 months).

Company brief:
%s

Output EXACTLY:

STRATEGIC AXES:
1) <Axis name> — <why it matters for this company>
2) ...
(5 to 9 axes total)

KEY UNCERTAINTIES BY AXIS:
- <Axis name>: <3 uncertainties separated by semicolons>
- ...

FORECASTER NOTES:
- 6 short bullets describing what expert forecasters can uniquely add.
`

const generatePrompt = `You are designing forecasting questions to be asked to professional forecasters (Metaculus-style).

Objective:
- Create high-value questions that reduce decision uncertainty for the company.
- Questions MUST be relevant to this specific company and sector.
- Medium-term focus first (6-24m), then include some longer-term directional questions (24-60m).
- Resolution criteria can be light; clarity and decision value are top priority.

Hard rules:
- No URLs.
- No vague wording like "significantly" without threshold.
- Keep each question answerable by an external forecaster using public + domain signals.
- Keep outputs clean and compact.

Company brief:
%s

Research notes:
%s

Produce exactly %d questions.

Output format:

AXES SUMMARY:
- <Axis> | <business KPI/decision impacted> | <main horizon>
...

QUESTIONS:
Q1
Axis: <one axis from summary>
Title: <short>
Horizon: <12m|24m|36m|60m>
Question: <clear forecasting question>
Why it matters: <1 sentence for business impact>
Decision link: <decision influenced by this answer>
Signal hints: <2-4 signal types forecasters should track>

Q2
...
`

const refreshPrompt = `You are a quality editor for strategic forecasting questions.

Tasks:
- Tighten wording.
- Remove duplicates.
- Make horizons explicit and balanced across 12m/24m/36m+.
- Ensure each question is tied to a decision.
- Use up-to-date framing if relevant.

No URLs. Keep exact output structure with AXES SUMMARY then QUESTIONS.

Company brief:
%s

Draft:
%s
`

// RenderResearch renders the research-stage instruction text for a brief.
func RenderResearch(brief string) string {
	return fmt.Sprintf(researchPrompt, brief)
}

// RenderGenerate renders the generate-stage instruction text from the brief,
// the normalized research notes, and the requested question count.
func RenderGenerate(brief, researchNotes string, questionCount int) string {
	return fmt.Sprintf(generatePrompt, brief, researchNotes, questionCount)
}

// RenderRefresh renders the quality-pass instruction text over a draft.
func RenderRefresh(draft, brief string) string {
	return fmt.Sprintf(refreshPrompt, brief, draft)
}
