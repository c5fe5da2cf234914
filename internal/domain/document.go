package domain

import "context"

// DocumentRepository resolves the grounding text for document-scoped conversations
type DocumentRepository interface {
	// ReportContext returns the rendered report HTML of a documentation entry
	ReportContext(ctx context.Context, documentationID string) (string, error)

	// PDFContext returns the extracted text preview of an analysis owned by userID
	PDFContext(ctx context.Context, analysisID, userID string) (string, error)
}
