package learners

import (
	"context"
	"errors"
	"time"

	"edu-backend/internal/shared/telemetry"
)

// masteryAlpha is the EMA weight of the most recent attempt score.
const masteryAlpha = 0.3

// Service contains business logic for learner mastery tracking.
type Service struct {
	Repo Repo
}

// RecordAttempt folds a graded attempt into the learner's topic mastery.
// Attempts with no graded questions are ignored.
func (s *Service) RecordAttempt(ctx context.Context, userID, topicID string, correct, graded int) error {
	if userID == "" || topicID == "" {
		return errors.New("userID and topicID are required")
	}
	if graded <= 0 {
		return nil
	}
	score := float64(correct) / float64(graded)

	profile, err := s.Repo.Get(ctx, userID, topicID)
	now := time.Now().UTC()
	switch {
	case errors.Is(err, ErrNotFound):
		profile = Profile{
			UserID:  userID,
			TopicID: topicID,
			// First attempt seeds the average directly.
			Mastery: score,
		}
	case err != nil:
		return err
	default:
		profile.Mastery = masteryAlpha*score + (1-masteryAlpha)*profile.Mastery
	}

	profile.AttemptCount++
	profile.CorrectCount += correct
	profile.LastAttemptAt = &now
	profile.UpdatedAt = now

	if err := s.Repo.Upsert(ctx, profile); err != nil {
		return err
	}

	telemetry.Info("learner.mastery_updated", map[string]any{
		"user_id":  userID,
		"topic_id": topicID,
		"score":    score,
		"mastery":  profile.Mastery,
		"attempts": profile.AttemptCount,
	})
	return nil
}

// Profile returns the learner's profile for one topic.
func (s *Service) Profile(ctx context.Context, userID, topicID string) (Profile, error) {
	if userID == "" || topicID == "" {
		return Profile{}, errors.New("userID and topicID are required")
	}
	return s.Repo.Get(ctx, userID, topicID)
}

// Profiles returns all topic profiles for a learner, most recent first.
func (s *Service) Profiles(ctx context.Context, userID string) ([]Profile, error) {
	if userID == "" {
		return nil, errors.New("userID is required")
	}
	return s.Repo.ListByUser(ctx, userID)
}
