package models

import "time"

// Report job statuses. The in-flight values mirror the pipeline stages.
const (
	StatusPending    = "PENDING"
	StatusSinglePass = "SINGLE_PASS"
	StatusChunked    = "CHUNKED"
	StatusCompleted  = "COMPLETED"
	StatusFailed     = "FAILED"
)

// ReportJob is the Firestore record tracking one report generation.
type ReportJob struct {
	ReportID     string    `firestore:"reportId"`
	UserID       string    `firestore:"userId,omitempty"`
	OfficerName  string    `firestore:"officerName"`
	IncidentType string    `firestore:"incidentType,omitempty"`
	Source       string    `firestore:"source,omitempty"` // gs:// URI when triggered by an upload
	Status       string    `firestore:"status"`
	Strategy     string    `firestore:"strategy,omitempty"`
	ChunkCount   int       `firestore:"chunkCount,omitempty"`
	PageCount    int       `firestore:"pageCount,omitempty"`
	ErrorDetails string    `firestore:"errorDetails,omitempty"`
	ArchiveURI   string    `firestore:"archiveUri,omitempty"`
	CreatedAt    time.Time `firestore:"createdAt"`
	UpdatedAt    time.Time `firestore:"updatedAt"`
}

// ReportJobUpdate is a partial update; empty fields are left untouched.
type ReportJobUpdate struct {
	Status       string
	Strategy     string
	ChunkCount   int
	ErrorDetails string
	ArchiveURI   string
}
