package domain

import "errors"

var (
	// ErrNoQuestions is returned when a session is started with an empty question set.
	ErrNoQuestions = errors.New("no questions provided")
	// ErrInvalidSettings indicates quiz settings that fail validation.
	ErrInvalidSettings = errors.New("invalid quiz settings")
	// ErrMalformedQuestion indicates a question whose correct answer is not among its options.
	ErrMalformedQuestion = errors.New("malformed question")
	// ErrProfileNotFound is returned when no profile exists for a lookup key.
	ErrProfileNotFound = errors.New("profile not found")
)
