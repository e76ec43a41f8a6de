package app

import (
	"math"

	"quizmaster-service/internal/domain"
)

const xpDivisor = 5

// ExperienceGained converts a finished session's score into experience.
func ExperienceGained(session *domain.QuizSession) int {
	if session == nil {
		return 0
	}
	return session.Score / xpDivisor
}

// levelUpThreshold is the experience needed to leave the given level.
func levelUpThreshold(level int) float64 {
	return 100 * math.Pow(float64(level), 1.5)
}

// ApplyResult folds a finished session's score and experience deltas into
// a profile. Level-ups cascade: a large award can cross several thresholds
// in one application, so experience always ends strictly below the
// threshold of the resulting level.
func ApplyResult(profile domain.UserProfile, scoreDelta, experienceDelta int) domain.UserProfile {
	experience := float64(profile.Experience + experienceDelta)
	level := profile.Level
	if level < 1 {
		level = 1
	}

	for experience >= levelUpThreshold(level) {
		experience -= levelUpThreshold(level)
		level++
	}

	profile.TotalScore += scoreDelta
	profile.Experience = int(math.Floor(experience))
	profile.Level = level
	profile.GamesPlayed++
	return profile
}
