package app

import (
	"context"
	"fmt"
	"log"

	"quizmaster-service/internal/domain"
)

// QuestionSource produces a sequence of questions for one quiz attempt.
type QuestionSource interface {
	Questions(ctx context.Context, category string, difficulty domain.Difficulty, count int) ([]domain.Question, error)
}

// FallbackQuestions builds the deterministic substitute set used whenever
// the real source fails or returns degenerate data. Every question is
// well-formed, so the engine never sees malformed input.
func FallbackQuestions(category string, difficulty domain.Difficulty, count int) []domain.Question {
	questions := make([]domain.Question, 0, count)
	for i := 0; i < count; i++ {
		questions = append(questions, domain.Question{
			ID:            fmt.Sprintf("fallback-%d", i),
			Category:      category,
			Difficulty:    difficulty,
			Prompt:        fmt.Sprintf("Fallback Question %d: What is the capital of France?", i+1),
			Options:       []string{"London", "Berlin", "Paris", "Madrid"},
			CorrectAnswer: "Paris",
			Kind:          domain.KindMultipleChoice,
		})
	}
	return questions
}

// FallbackSource wraps a QuestionSource and substitutes the deterministic
// fallback set on any failure: source error, short result, or a question
// that fails validation. Failures are logged, never surfaced.
type FallbackSource struct {
	inner QuestionSource
}

// NewFallbackSource wraps inner. A nil inner always yields the fallback
// set, which keeps the service usable without an API credential.
func NewFallbackSource(inner QuestionSource) *FallbackSource {
	return &FallbackSource{inner: inner}
}

func (s *FallbackSource) Questions(ctx context.Context, category string, difficulty domain.Difficulty, count int) ([]domain.Question, error) {
	if s.inner == nil {
		return FallbackQuestions(category, difficulty, count), nil
	}

	questions, err := s.inner.Questions(ctx, category, difficulty, count)
	if err != nil {
		log.Printf("question source failed, using fallback set: %v", err)
		return FallbackQuestions(category, difficulty, count), nil
	}
	if len(questions) < count {
		log.Printf("question source returned %d of %d questions, using fallback set", len(questions), count)
		return FallbackQuestions(category, difficulty, count), nil
	}
	questions = questions[:count]
	for _, q := range questions {
		if err := q.Validate(); err != nil {
			log.Printf("question %q failed validation, using fallback set: %v", q.ID, err)
			return FallbackQuestions(category, difficulty, count), nil
		}
	}
	return questions, nil
}
