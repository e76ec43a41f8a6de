package app

import (
	"sort"

	"quizmaster-service/internal/domain"
)

// UpsertEntry folds a profile into the ranked leaderboard projection and
// reranks it. An existing entry for the same user keeps its position in
// the underlying slice and only has its score and level overwritten; new
// users are appended. The sort is stable, so equal scores keep their
// prior relative order — that is the tie-break rule.
func UpsertEntry(entries []domain.LeaderboardEntry, profile domain.UserProfile) []domain.LeaderboardEntry {
	found := false
	for i := range entries {
		if entries[i].UserID == profile.ID {
			entries[i].Score = profile.TotalScore
			entries[i].Level = profile.Level
			found = true
			break
		}
	}
	if !found {
		entries = append(entries, domain.LeaderboardEntry{
			UserID:   profile.ID,
			Username: profile.Username,
			Score:    profile.TotalScore,
			Level:    profile.Level,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}
