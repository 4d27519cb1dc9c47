package dto

// ExportFormat enumerates supported complaint register formats.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportFile is a rendered document ready to stream to the caller.
type ExportFile struct {
	Filename    string
	ContentType string
	Content     []byte
}
