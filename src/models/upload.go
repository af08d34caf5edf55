// backend/src/models/upload.go
package models

// RowError reports one rejected row. Row numbers are 1-based as the user sees
// the file: the header row is row 1, so data row i is reported as i+2.
type RowError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

// UploadResult is the summary returned by the upload endpoint. Uploads always
// return a summary, even on partial failure.
type UploadResult struct {
	Imported     int        `json:"imported"`
	Errors       int        `json:"errors"`
	ErrorDetails []RowError `json:"errorDetails"`
	ReportType   ReportType `json:"reportType"`
	FileHash     string     `json:"fileHash"`
}
