package redis

import (
	"context"
	"errors"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"quizmaster-service/internal/domain"
)

func TestProfileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	profile := domain.UserProfile{
		ID:          "u1",
		Username:    "Alice",
		Email:       "alice@example.com",
		TotalScore:  250,
		Level:       2,
		Experience:  40,
		GamesPlayed: 3,
	}
	if err := store.UpsertProfile(ctx, profile); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	loaded, err := store.FindProfileByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if *loaded != profile {
		t.Fatalf("round trip mismatch: wrote %+v, read %+v", profile, *loaded)
	}

	_, err = store.FindProfileByEmail(ctx, "nobody@example.com")
	if !errors.Is(err, domain.ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestProfileStoreWritesExpectedKeys(t *testing.T) {
	ctx := context.Background()
	mr, store := newTestStoreWithServer(t)

	if err := store.UpsertProfile(ctx, domain.UserProfile{ID: "u1", Username: "Alice", Email: "a@x.com", TotalScore: 10, Level: 1}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if !mr.Exists("quizmaster:users") || !mr.Exists("quizmaster:leaderboard") {
		t.Fatalf("expected users and leaderboard blobs to be written")
	}

	profile := domain.UserProfile{ID: "u1", Username: "Alice", Email: "a@x.com", Level: 1}
	if err := store.SaveCurrentProfile(ctx, &profile); err != nil {
		t.Fatalf("save current: %v", err)
	}
	if !mr.Exists("quizmaster:current_user") {
		t.Fatalf("expected current user key to be set")
	}

	if err := store.SaveCurrentProfile(ctx, nil); err != nil {
		t.Fatalf("clear current: %v", err)
	}
	if mr.Exists("quizmaster:current_user") {
		t.Fatalf("expected current user key to be removed")
	}
}

func TestProfileStoreLeaderboardRanks(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	scores := []int{50, 80, 80, 30}
	for i, score := range scores {
		profile := domain.UserProfile{
			ID:         "u" + string(rune('1'+i)),
			Username:   "player",
			Email:      "p@x.com",
			TotalScore: score,
			Level:      1,
		}
		if err := store.UpsertProfile(ctx, profile); err != nil {
			t.Fatalf("upsert %d: %v", i, err)
		}
	}

	entries, err := store.LoadLeaderboard(ctx)
	if err != nil {
		t.Fatalf("load leaderboard: %v", err)
	}
	gotRanks := map[string]int{}
	for _, entry := range entries {
		gotRanks[entry.UserID] = entry.Rank
	}
	wantRanks := map[string]int{"u1": 3, "u2": 1, "u3": 2, "u4": 4}
	for user, want := range wantRanks {
		if gotRanks[user] != want {
			t.Fatalf("expected %s at rank %d, got %d", user, want, gotRanks[user])
		}
	}
}

func TestProfileStoreEmptyLeaderboard(t *testing.T) {
	store := newTestStore(t)
	entries, err := store.LoadLeaderboard(context.Background())
	if err != nil {
		t.Fatalf("load leaderboard: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty leaderboard, got %+v", entries)
	}
}

func newTestStore(t *testing.T) *ProfileStore {
	t.Helper()
	_, store := newTestStoreWithServer(t)
	return store
}

func newTestStoreWithServer(t *testing.T) (*miniredis.Miniredis, *ProfileStore) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, NewProfileStore(client)
}
