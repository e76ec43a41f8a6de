package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"quizmaster-service/internal/app"
	"quizmaster-service/internal/domain"
)

const (
	usersKey       = "quizmaster:users"
	currentUserKey = "quizmaster:current_user"
	leaderboardKey = "quizmaster:leaderboard"
)

// ProfileStore persists profiles in Redis as three JSON blobs: the users
// list, the current-identity slot, and the ranked leaderboard. The layout
// is deliberately a plain key-value one, searched linearly, so any blob
// store could take its place.
type ProfileStore struct {
	client *redis.Client
}

func NewProfileStore(client *redis.Client) *ProfileStore {
	return &ProfileStore{client: client}
}

func (s *ProfileStore) LoadCurrentProfile(ctx context.Context) (*domain.UserProfile, error) {
	raw, err := s.client.Get(ctx, currentUserKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load current profile: %w", err)
	}
	var profile domain.UserProfile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return nil, fmt.Errorf("unmarshal current profile: %w", err)
	}
	return &profile, nil
}

func (s *ProfileStore) SaveCurrentProfile(ctx context.Context, profile *domain.UserProfile) error {
	if profile == nil {
		if err := s.client.Del(ctx, currentUserKey).Err(); err != nil {
			return fmt.Errorf("clear current profile: %w", err)
		}
		return nil
	}
	raw, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("marshal current profile: %w", err)
	}
	if err := s.client.Set(ctx, currentUserKey, raw, 0).Err(); err != nil {
		return fmt.Errorf("save current profile: %w", err)
	}
	return nil
}

func (s *ProfileStore) FindProfileByEmail(ctx context.Context, email string) (*domain.UserProfile, error) {
	users, err := s.loadUsers(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Email == email {
			profile := users[i]
			return &profile, nil
		}
	}
	return nil, domain.ErrProfileNotFound
}

func (s *ProfileStore) UpsertProfile(ctx context.Context, profile domain.UserProfile) error {
	users, err := s.loadUsers(ctx)
	if err != nil {
		return err
	}

	found := false
	for i := range users {
		if users[i].ID == profile.ID {
			users[i] = profile
			found = true
			break
		}
	}
	if !found {
		users = append(users, profile)
	}

	entries, err := s.LoadLeaderboard(ctx)
	if err != nil {
		return err
	}
	entries = app.UpsertEntry(entries, profile)

	usersRaw, err := json.Marshal(users)
	if err != nil {
		return fmt.Errorf("marshal users: %w", err)
	}
	entriesRaw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshal leaderboard: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, usersKey, usersRaw, 0)
	pipe.Set(ctx, leaderboardKey, entriesRaw, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("persist profile write: %w", err)
	}
	return nil
}

func (s *ProfileStore) LoadLeaderboard(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	raw, err := s.client.Get(ctx, leaderboardKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return []domain.LeaderboardEntry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load leaderboard: %w", err)
	}
	var entries []domain.LeaderboardEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("unmarshal leaderboard: %w", err)
	}
	return entries, nil
}

func (s *ProfileStore) loadUsers(ctx context.Context) ([]domain.UserProfile, error) {
	raw, err := s.client.Get(ctx, usersKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	var users []domain.UserProfile
	if err := json.Unmarshal(raw, &users); err != nil {
		return nil, fmt.Errorf("unmarshal users: %w", err)
	}
	return users, nil
}
