package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"quizmaster-service/internal/domain"
)

// ProfileStore abstracts how profiles and the leaderboard projection are
// persisted (in-memory, Redis, Postgres). UpsertProfile must fold the
// profile into the leaderboard and rerank it as part of the same write.
type ProfileStore interface {
	LoadCurrentProfile(ctx context.Context) (*domain.UserProfile, error)
	SaveCurrentProfile(ctx context.Context, profile *domain.UserProfile) error
	FindProfileByEmail(ctx context.Context, email string) (*domain.UserProfile, error)
	UpsertProfile(ctx context.Context, profile domain.UserProfile) error
	LoadLeaderboard(ctx context.Context) ([]domain.LeaderboardEntry, error)
}

// ProfileService contains the identity and progression use cases.
type ProfileService struct {
	store ProfileStore
	newID func() string
}

func NewProfileService(store ProfileStore) *ProfileService {
	return &ProfileService{store: store, newID: uuid.NewString}
}

// Login claims a profile by email, creating it on first sight. Logging in
// again with the same email returns the existing profile; the username is
// updated to the latest value (last write wins). Idempotent by email.
func (s *ProfileService) Login(ctx context.Context, username, email string) (domain.UserProfile, error) {
	profile, err := s.store.FindProfileByEmail(ctx, email)
	switch {
	case errors.Is(err, domain.ErrProfileNotFound):
		profile = &domain.UserProfile{
			ID:       s.newID(),
			Username: username,
			Email:    email,
			Level:    1,
		}
	case err != nil:
		return domain.UserProfile{}, fmt.Errorf("find profile: %w", err)
	default:
		profile.Username = username
	}

	if err := s.store.UpsertProfile(ctx, *profile); err != nil {
		return domain.UserProfile{}, fmt.Errorf("upsert profile: %w", err)
	}
	if err := s.store.SaveCurrentProfile(ctx, profile); err != nil {
		return domain.UserProfile{}, fmt.Errorf("save current profile: %w", err)
	}
	return *profile, nil
}

// Logout clears the active identity.
func (s *ProfileService) Logout(ctx context.Context) error {
	return s.store.SaveCurrentProfile(ctx, nil)
}

// Current returns the active profile, or nil when nobody is logged in.
func (s *ProfileService) Current(ctx context.Context) (*domain.UserProfile, error) {
	return s.store.LoadCurrentProfile(ctx)
}

// CompleteQuiz folds a finished session into the active profile and the
// leaderboard. With no active identity there is nothing to update and the
// call returns nil without error.
func (s *ProfileService) CompleteQuiz(ctx context.Context, session *domain.QuizSession) (*domain.UserProfile, error) {
	if !session.Finished() {
		return nil, nil
	}
	profile, err := s.store.LoadCurrentProfile(ctx)
	if err != nil {
		return nil, fmt.Errorf("load current profile: %w", err)
	}
	if profile == nil {
		return nil, nil
	}

	updated := ApplyResult(*profile, session.Score, ExperienceGained(session))
	if err := s.store.UpsertProfile(ctx, updated); err != nil {
		return nil, fmt.Errorf("upsert profile: %w", err)
	}
	if err := s.store.SaveCurrentProfile(ctx, &updated); err != nil {
		return nil, fmt.Errorf("save current profile: %w", err)
	}
	return &updated, nil
}

// Leaderboard returns the full ranked projection, already sorted.
func (s *ProfileService) Leaderboard(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	return s.store.LoadLeaderboard(ctx)
}
