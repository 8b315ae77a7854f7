package topics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"edu-backend/internal/documents"
	"edu-backend/internal/extract"
	"edu-backend/internal/shared/metrics"
	"edu-backend/internal/shared/storage/object"
	"edu-backend/internal/shared/telemetry"
)

const chunkSize = 1200

// Service segments extracted document text into persisted learning topics.
type Service struct {
	Repo    Repo
	DocRepo documents.DocumentsRepo
	Store   object.ObjectStore
}

// Extract segments a document into topics, discards noise headings, and
// persists the surviving topics with their body chunks.
func (s *Service) Extract(ctx context.Context, userID, documentID string) ([]DocumentTopic, error) {
	if userID == "" || documentID == "" {
		return nil, errors.New("userID and documentID are required")
	}
	if s.DocRepo == nil || s.Store == nil {
		return nil, errors.New("missing document store dependencies")
	}

	doc, err := s.DocRepo.GetByID(ctx, userID, documentID)
	if err != nil {
		return nil, fmt.Errorf("document lookup id=%s: %w", documentID, err)
	}

	extractedKey := doc.ExtractedTextKey
	if extractedKey == "" {
		if _, err := extract.ExtractText(ctx, s.Store, doc.StorageKey, doc.MimeType, doc.FileName); err != nil {
			return nil, fmt.Errorf("document %s mime %s: %w", doc.ID, doc.MimeType, err)
		}
		extractedKey = doc.StorageKey + ".extracted.txt"
		if err := s.DocRepo.UpdateExtraction(ctx, doc.UserID, doc.ID, extractedKey, time.Now().UTC()); err != nil {
			return nil, fmt.Errorf("document %s: update extraction: %w", doc.ID, err)
		}
	}

	text, err := loadText(ctx, s.Store, extractedKey)
	if err != nil {
		return nil, fmt.Errorf("document %s: load extracted text: %w", doc.ID, err)
	}

	sections := SegmentText(text)

	now := time.Now().UTC()
	var kept []DocumentTopic
	var chunks []Chunk
	rejected := 0
	for _, section := range sections {
		if section.Heading == "" {
			continue
		}
		if IsBadHeadingCandidate(section.Heading) {
			rejected++
			continue
		}
		topic := DocumentTopic{
			ID:         uuid.NewString(),
			DocumentID: doc.ID,
			UserID:     userID,
			Title:      section.Heading,
			Position:   len(kept),
			Metadata: map[string]any{
				"charCount": len(section.Body),
			},
			CreatedAt: now,
		}
		kept = append(kept, topic)
		for i, content := range chunkBody(section.Body) {
			chunks = append(chunks, Chunk{
				ID:         uuid.NewString(),
				DocumentID: doc.ID,
				TopicID:    topic.ID,
				Index:      i,
				Content:    content,
				CreatedAt:  now,
			})
		}
	}

	if err := s.Repo.CreateTopics(ctx, kept); err != nil {
		return nil, fmt.Errorf("persist topics: %w", err)
	}
	if err := s.Repo.CreateChunks(ctx, chunks); err != nil {
		return nil, fmt.Errorf("persist chunks: %w", err)
	}

	metrics.IncTopicExtraction()
	metrics.AddHeadingsRejected(rejected)
	telemetry.Info("topics.extracted", map[string]any{
		"user_id":           userID,
		"document_id":       doc.ID,
		"topics":            len(kept),
		"chunks":            len(chunks),
		"headings_rejected": rejected,
	})

	return kept, nil
}

// ExtractTopics runs Extract for callers that only care about the error,
// such as the upload hook in the documents service.
func (s *Service) ExtractTopics(ctx context.Context, userID, documentID string) error {
	_, err := s.Extract(ctx, userID, documentID)
	return err
}

// ListByDocument returns a document's extracted topics.
func (s *Service) ListByDocument(ctx context.Context, documentID string) ([]DocumentTopic, error) {
	if documentID == "" {
		return nil, errors.New("documentID is required")
	}
	return s.Repo.ListByDocument(ctx, documentID)
}

func chunkBody(body string) []string {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil
	}

	var out []string
	var buf strings.Builder
	for _, para := range strings.Split(body, "\n") {
		if buf.Len() > 0 && buf.Len()+len(para)+1 > chunkSize {
			out = append(out, strings.TrimSpace(buf.String()))
			buf.Reset()
		}
		buf.WriteString(para)
		buf.WriteString("\n")
	}
	if rest := strings.TrimSpace(buf.String()); rest != "" {
		out = append(out, rest)
	}
	return out
}

func loadText(ctx context.Context, store object.ObjectStore, key string) (string, error) {
	body, err := store.Open(ctx, key)
	if err != nil {
		return "", err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
