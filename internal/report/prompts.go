package report

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// --- Map phase prompts ---
const AnalystSystemPrompt = "You are a police document analyst. Extract key information accurately."

const extractionUserPrompt = `Extract key information from this police document section (Pages %s):

%s

List:
1. Incident type, date, time, location
2. People (names, roles)
3. Events (chronological)
4. Evidence
5. Officer actions
6. Quotes

Be concise with bullet points.`

// --- Reduce phase prompts ---
const ReportWriterSystemPrompt = "You are a professional police report writer."

const synthesisUserPrompt = `Create a police report from these sections:

%[1]s

Officer: %[2]s
Date: %[3]s

Format:
POLICE INCIDENT REPORT

CASE INFORMATION
Case #: %[4]s
Type: [classify]
Date/Time: [extract]
Location: [address]
Report Date: %[3]s

PARTIES INVOLVED
Victims: [details]
Suspects: [details]
Witnesses: [details]

NARRATIVE
[Professional chronological narrative in active voice, past tense]

EVIDENCE
[List items]

OFFICER: %[2]s`

// --- Single pass prompts ---
const NotesSystemPrompt = "You are a professional police report writer. Convert officer notes into standardized police reports."

const notesUserPrompt = `Convert these police notes into a professional report:

NOTES:
%[1]s

Officer: %[2]s
Date: %[3]s
%[5]s
Create a standardized report with:

POLICE INCIDENT REPORT

CASE INFORMATION
Case Number: %[4]s
Incident Type: [classify]
Date/Time: [extract]
Location: [full address]
Report Date: %[3]s

PARTIES INVOLVED
Victim(s): [name, details]
Suspect(s): [name, description]
Witness(es): [name, contact]

INCIDENT NARRATIVE
[Write chronologically in active voice, past tense. Include officer arrival, observations, statements with quotes, evidence, and actions taken.]

EVIDENCE COLLECTED
[List items with descriptions]

OFFICER INFORMATION
Reporting Officer: %[2]s

Use only provided information. Be professional and factual.`

// ReportTimestamp renders t in the long form used on report headers,
// e.g. "October 16, 2026 at 14:05".
func ReportTimestamp(t time.Time) string {
	return t.Format("January 2, 2006 at 15:04")
}

// caseNumberPlaceholder is the case number the writer fills in, e.g. "2026-10-####".
func caseNumberPlaceholder(t time.Time) string {
	return t.Format("2006-01") + "-####"
}

func buildExtractionPrompt(chunk Chunk, charLimit int) string {
	return fmt.Sprintf(extractionUserPrompt, chunk.PageRange(), truncateRunes(chunk.Text, charLimit))
}

func buildSynthesisPrompt(combined, officerName string, now time.Time) string {
	return fmt.Sprintf(synthesisUserPrompt, combined, officerName, ReportTimestamp(now), caseNumberPlaceholder(now))
}

func buildNotesPrompt(notes, officerName, incidentType string, now time.Time) string {
	var typeLine string
	if incidentType = strings.TrimSpace(incidentType); incidentType != "" {
		typeLine = "Type: " + incidentType + "\n"
	}
	return fmt.Sprintf(notesUserPrompt, notes, officerName, ReportTimestamp(now), caseNumberPlaceholder(now), typeLine)
}

// combineSummaries labels each summary "SECTION n" in order.
func combineSummaries(summaries []string) string {
	var b strings.Builder
	for i, summary := range summaries {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "SECTION %d:\n%s", i+1, summary)
	}
	return b.String()
}

// truncateRunes returns at most limit characters of s. A non-positive limit
// disables truncation.
func truncateRunes(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i]
		}
		n++
	}
	return s
}
