package memory

import (
	"context"
	"testing"
	"time"

	"quizmaster-service/internal/app"
	"quizmaster-service/internal/domain"
)

func TestQuestionRepositoryCaches(t *testing.T) {
	source := &countingSource{}
	repo := NewQuestionRepository(source, time.Minute)

	if _, err := repo.Questions(context.Background(), "general", domain.DifficultyEasy, 3); err != nil {
		t.Fatalf("questions: %v", err)
	}
	if source.calls != 1 {
		t.Fatalf("expected source called once, got %d", source.calls)
	}

	if _, err := repo.Questions(context.Background(), "general", domain.DifficultyEasy, 3); err != nil {
		t.Fatalf("questions 2: %v", err)
	}
	if source.calls != 1 {
		t.Fatalf("expected cache hit, source calls %d", source.calls)
	}
}

func TestQuestionRepositoryKeysByRequest(t *testing.T) {
	source := &countingSource{}
	repo := NewQuestionRepository(source, time.Minute)

	_, _ = repo.Questions(context.Background(), "general", domain.DifficultyEasy, 3)
	_, _ = repo.Questions(context.Background(), "general", domain.DifficultyHard, 3)
	_, _ = repo.Questions(context.Background(), "science", domain.DifficultyEasy, 3)

	if source.calls != 3 {
		t.Fatalf("expected a source call per distinct request, got %d", source.calls)
	}
}

type countingSource struct {
	calls int
}

func (s *countingSource) Questions(_ context.Context, category string, difficulty domain.Difficulty, count int) ([]domain.Question, error) {
	s.calls++
	return app.FallbackQuestions(category, difficulty, count), nil
}
