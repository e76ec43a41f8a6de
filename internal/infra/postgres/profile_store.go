package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quizmaster-service/internal/app"
	"quizmaster-service/internal/domain"
)

const (
	usersState       = "users"
	currentUserState = "current_user"
	leaderboardState = "leaderboard"
)

// ProfileStore persists profiles in Postgres using a single app_state
// table of JSONB blobs, one row per logical table. The layout matches the
// Redis backend so either can serve as the durable medium.
type ProfileStore struct {
	pool *pgxpool.Pool
}

func NewProfileStore(pool *pgxpool.Pool) *ProfileStore {
	return &ProfileStore{pool: pool}
}

func (s *ProfileStore) LoadCurrentProfile(ctx context.Context) (*domain.UserProfile, error) {
	var profile domain.UserProfile
	ok, err := s.loadState(ctx, currentUserState, &profile)
	if err != nil || !ok {
		return nil, err
	}
	return &profile, nil
}

func (s *ProfileStore) SaveCurrentProfile(ctx context.Context, profile *domain.UserProfile) error {
	if profile == nil {
		if _, err := s.pool.Exec(ctx, `DELETE FROM app_state WHERE key=$1`, currentUserState); err != nil {
			return fmt.Errorf("clear current profile: %w", err)
		}
		return nil
	}
	return s.saveState(ctx, currentUserState, profile)
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

	if err := s.saveState(ctx, usersState, users); err != nil {
		return err
	}
	return s.saveState(ctx, leaderboardState, entries)
}

func (s *ProfileStore) LoadLeaderboard(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	entries := []domain.LeaderboardEntry{}
	if _, err := s.loadState(ctx, leaderboardState, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *ProfileStore) loadUsers(ctx context.Context) ([]domain.UserProfile, error) {
	var users []domain.UserProfile
	if _, err := s.loadState(ctx, usersState, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *ProfileStore) loadState(ctx context.Context, key string, dest interface{}) (bool, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM app_state WHERE key=$1`, key).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load state %q: %w", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("unmarshal state %q: %w", key, err)
	}
	return true, nil
}

func (s *ProfileStore) saveState(ctx context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal state %q: %w", key, err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO app_state (key, data) VALUES ($1, $2)
		 ON CONFLICT (key) DO UPDATE SET data = EXCLUDED.data`,
		key, raw)
	if err != nil {
		return fmt.Errorf("save state %q: %w", key, err)
	}
	return nil
}
