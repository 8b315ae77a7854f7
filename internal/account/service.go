package account

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"edu-backend/internal/documents"
	"edu-backend/internal/exams"
)

type Service struct {
	DocRepo  documents.DocumentsRepo
	QuizRepo exams.Repo
}

type ClaimResult struct {
	MigratedDocuments int `json:"migratedDocuments"`
	MigratedQuizSets  int `json:"migratedQuizSets"`
}

func NewService(docRepo documents.DocumentsRepo, quizRepo exams.Repo) *Service {
	return &Service{DocRepo: docRepo, QuizRepo: quizRepo}
}

func (s *Service) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (ClaimResult, error) {
	if strings.TrimSpace(guestUserID) == "" || strings.TrimSpace(authedUserID) == "" {
		return ClaimResult{}, errors.New("guestUserID and authedUserID are required")
	}

	if docPG, ok := s.DocRepo.(*documents.PGRepo); ok && docPG != nil && docPG.DB != nil {
		if quizPG, ok := s.QuizRepo.(*exams.PGRepo); ok && quizPG != nil && quizPG.DB != nil {
			return claimWithTx(ctx, docPG.DB, guestUserID, authedUserID)
		}
	}

	docCount, err := claimDocs(ctx, s.DocRepo, guestUserID, authedUserID)
	if err != nil {
		return ClaimResult{}, err
	}
	quizCount, err := claimQuizSets(ctx, s.QuizRepo, guestUserID, authedUserID)
	if err != nil {
		return ClaimResult{}, err
	}
	return ClaimResult{MigratedDocuments: docCount, MigratedQuizSets: quizCount}, nil
}

func claimWithTx(ctx context.Context, db *sql.DB, guestUserID, authedUserID string) (ClaimResult, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return ClaimResult{}, err
	}
	defer tx.Rollback()

	docRes, err := tx.ExecContext(ctx, `UPDATE documents SET user_id = $1 WHERE user_id = $2 AND deleted_at IS NULL`, authedUserID, guestUserID)
	if err != nil {
		return ClaimResult{}, err
	}
	docCount, _ := docRes.RowsAffected()

	quizRes, err := tx.ExecContext(ctx, `UPDATE quiz_sets SET user_id = $1 WHERE user_id = $2`, authedUserID, guestUserID)
	if err != nil {
		return ClaimResult{}, err
	}
	quizCount, _ := quizRes.RowsAffected()

	if _, err := tx.ExecContext(ctx, `UPDATE attempts SET user_id = $1 WHERE user_id = $2`, authedUserID, guestUserID); err != nil {
		return ClaimResult{}, err
	}

	if err := tx.Commit(); err != nil {
		return ClaimResult{}, err
	}
	return ClaimResult{MigratedDocuments: int(docCount), MigratedQuizSets: int(quizCount)}, nil
}

type guestClaimer interface {
	ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error)
}

func claimDocs(ctx context.Context, repo documents.DocumentsRepo, guestUserID, authedUserID string) (int, error) {
	if claimer, ok := repo.(guestClaimer); ok {
		return claimer.ClaimGuest(ctx, guestUserID, authedUserID)
	}
	return 0, errors.New("documents repo does not support claim")
}

func claimQuizSets(ctx context.Context, repo exams.Repo, guestUserID, authedUserID string) (int, error) {
	if claimer, ok := repo.(guestClaimer); ok {
		return claimer.ClaimGuest(ctx, guestUserID, authedUserID)
	}
	return 0, errors.New("quiz set repo does not support claim")
}
