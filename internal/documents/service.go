package documents

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"

	"edu-backend/internal/shared/storage/object"
	"edu-backend/internal/shared/telemetry"
)

// TopicExtractor kicks off topic extraction for an uploaded document.
type TopicExtractor interface {
	ExtractTopics(ctx context.Context, userID, documentID string) error
}

// Service contains business logic for documents.
type Service struct {
	Store           object.ObjectStore
	Repo            DocumentsRepo
	StorageProvider string
	Extractor       TopicExtractor
}

// Upload saves the file to object storage and records the document. When an
// extractor is configured, topic extraction runs in the background.
func (s *Service) Upload(ctx context.Context, userId, fileName string, r io.Reader) (Document, error) {
	if fileName == "" {
		return Document{}, ErrInvalidInput
	}

	storageKey, size, mimeType, err := s.Store.Save(ctx, userId, fileName, r)
	if err != nil {
		return Document{}, err
	}

	doc := Document{
		ID:              uuid.NewString(),
		UserID:          userId,
		FileName:        fileName,
		MimeType:        mimeType,
		SizeBytes:       size,
		StorageProvider: s.StorageProvider,
		StorageKey:      storageKey,
		CreatedAt:       time.Now().UTC(),
	}

	if err := s.Repo.Create(ctx, doc); err != nil {
		return Document{}, err
	}

	s.kickExtraction(doc)

	return doc, nil
}

// CreateFromS3 records a document already uploaded to S3 via a presigned URL.
func (s *Service) CreateFromS3(ctx context.Context, userId, s3Key, originalFileName, contentType string, sizeBytes int64) (Document, error) {
	if userId == "" || s3Key == "" || originalFileName == "" || contentType == "" || sizeBytes <= 0 {
		return Document{}, ErrInvalidInput
	}

	doc := Document{
		ID:               uuid.NewString(),
		UserID:           userId,
		FileName:         originalFileName,
		OriginalFilename: originalFileName,
		MimeType:         contentType,
		ContentType:      contentType,
		SizeBytes:        sizeBytes,
		StorageProvider:  "s3",
		StorageKey:       s3Key,
		CreatedAt:        time.Now().UTC(),
	}

	if err := s.Repo.Create(ctx, doc); err != nil {
		return Document{}, err
	}

	s.kickExtraction(doc)

	return doc, nil
}

// Current returns the most recent document for a user.
func (s *Service) Current(ctx context.Context, userId string) (Document, error) {
	if userId == "" {
		return Document{}, errors.New("user id required")
	}
	return s.Repo.GetCurrentByUser(ctx, userId)
}

// Get returns a document by ID, scoped to its owner.
func (s *Service) Get(ctx context.Context, userId, documentID string) (Document, error) {
	if userId == "" || documentID == "" {
		return Document{}, ErrInvalidInput
	}
	return s.Repo.GetByID(ctx, userId, documentID)
}

// List returns documents for a user ordered newest-first.
func (s *Service) List(ctx context.Context, userId string, limit, offset int) ([]Document, error) {
	if userId == "" {
		return nil, errors.New("user id required")
	}
	return s.Repo.ListByUser(ctx, userId, limit, offset)
}

func (s *Service) kickExtraction(doc Document) {
	if s.Extractor == nil {
		return
	}
	go func() {
		if err := s.Extractor.ExtractTopics(context.Background(), doc.UserID, doc.ID); err != nil {
			telemetry.Warn("documents.extraction_failed", map[string]any{
				"user_id":     doc.UserID,
				"document_id": doc.ID,
				"error":       err.Error(),
			})
		}
	}()
}
