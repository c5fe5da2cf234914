package mongo

import (
	"context"
	"errors"

	"github.com/Sharadgup/AGI-Innovation/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DocumentRepository reads report and pdf grounding text
type DocumentRepository struct {
	db *DB
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db *DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

type reportDocument struct {
	ReportHTML string `bson:"report_html"`
}

type pdfAnalysisDocument struct {
	ExtractedTextPreview string `bson:"extracted_text_preview"`
}

// ReportContext returns the report HTML of a documentation entry
func (r *DocumentRepository) ReportContext(ctx context.Context, documentationID string) (string, error) {
	oid, err := objectID(documentationID)
	if err != nil {
		return "", err
	}

	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var doc reportDocument
	err = r.db.Database.Collection(CollectionDocumentation).
		FindOne(ctx, bson.M{"_id": oid}, options.FindOne().SetProjection(bson.M{"report_html": 1})).
		Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", domain.ErrContextNotFound
	}
	if err != nil {
		return "", classify("get report context", err)
	}

	return doc.ReportHTML, nil
}

// PDFContext returns the extracted text preview of an analysis owned by userID.
// Analyses owned by someone else are reported as not found.
func (r *DocumentRepository) PDFContext(ctx context.Context, analysisID, userID string) (string, error) {
	aid, err := objectID(analysisID)
	if err != nil {
		return "", err
	}
	uid, err := objectID(userID)
	if err != nil {
		return "", domain.ErrContextNotFound
	}

	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var doc pdfAnalysisDocument
	err = r.db.Database.Collection(CollectionPDFAnalysis).
		FindOne(ctx, bson.M{"_id": aid, "user_id": uid}, options.FindOne().SetProjection(bson.M{"extracted_text_preview": 1})).
		Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", domain.ErrContextNotFound
	}
	if err != nil {
		return "", classify("get pdf context", err)
	}

	return doc.ExtractedTextPreview, nil
}
