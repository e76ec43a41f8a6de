package memory

import (
	"context"
	"sync"

	"quizmaster-service/internal/app"
	"quizmaster-service/internal/domain"
)

// ProfileStore is an in-memory implementation of app.ProfileStore. It
// keeps the same three logical tables as the durable backends: the users
// list, the current-identity slot, and the ranked leaderboard.
type ProfileStore struct {
	mu          sync.RWMutex
	users       []domain.UserProfile
	current     *domain.UserProfile
	leaderboard []domain.LeaderboardEntry
}

func NewProfileStore() *ProfileStore {
	return &ProfileStore{}
}

func (s *ProfileStore) LoadCurrentProfile(_ context.Context) (*domain.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil, nil
	}
	profile := *s.current
	return &profile, nil
}

func (s *ProfileStore) SaveCurrentProfile(_ context.Context, profile *domain.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if profile == nil {
		s.current = nil
		return nil
	}
	copied := *profile
	s.current = &copied
	return nil
}

func (s *ProfileStore) FindProfileByEmail(_ context.Context, email string) (*domain.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.users {
		if s.users[i].Email == email {
			profile := s.users[i]
			return &profile, nil
		}
	}
	return nil, domain.ErrProfileNotFound
}

func (s *ProfileStore) UpsertProfile(_ context.Context, profile domain.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	for i := range s.users {
		if s.users[i].ID == profile.ID {
			s.users[i] = profile
			found = true
			break
		}
	}
	if !found {
		s.users = append(s.users, profile)
	}

	s.leaderboard = app.UpsertEntry(s.leaderboard, profile)
	return nil
}

func (s *ProfileStore) LoadLeaderboard(_ context.Context) ([]domain.LeaderboardEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.LeaderboardEntry{}, s.leaderboard...), nil
}
