package report

import "strings"

// Request is one report-generation job.
type Request struct {
	NotesText    string
	OfficerName  string
	IncidentType string
	// ForceChunked routes the notes through map-reduce regardless of size.
	ForceChunked bool
}

// ValidationError rejects a Request before any generation call is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Validate checks the fields every report needs.
func (r Request) Validate() error {
	if strings.TrimSpace(r.NotesText) == "" {
		return &ValidationError{Field: "notes", Message: "Notes are required"}
	}
	if strings.TrimSpace(r.OfficerName) == "" {
		return &ValidationError{Field: "officerName", Message: "Officer name is required"}
	}
	return nil
}
