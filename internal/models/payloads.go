package models

// These structs define the JSON payloads of the HTTP functions and the
// local server. Field names match what the web client already sends.

// GenerateReportRequest is the input for the report-generator function.
type GenerateReportRequest struct {
	Notes           string `json:"notes"`
	OfficerName     string `json:"officerName"`
	IncidentType    string `json:"incidentType,omitempty"`
	IsLargeDocument bool   `json:"isLargeDocument,omitempty"`
	PageCount       int    `json:"pageCount,omitempty"`
}

// GenerateReportResponse is the output of the report-generator function.
type GenerateReportResponse struct {
	Success    bool   `json:"success"`
	Report     string `json:"report,omitempty"`
	Error      string `json:"error,omitempty"`
	ReportID   string `json:"reportId,omitempty"`
	Strategy   string `json:"strategy,omitempty"`
	ArchiveURI string `json:"archiveUri,omitempty"`
}

// PDFMetadata describes an uploaded PDF.
type PDFMetadata struct {
	Pages    int    `json:"pages"`
	FileName string `json:"fileName"`
	FileSize int64  `json:"fileSize"`
}

// PDFExtractResponse is the output of the pdf-extractor function.
type PDFExtractResponse struct {
	Success  bool         `json:"success"`
	Text     string       `json:"text,omitempty"`
	Metadata *PDFMetadata `json:"metadata,omitempty"`
	Error    string       `json:"error,omitempty"`
}
