package domain

import "time"

// Difficulty controls question hardness and the per-question time allotment.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// Difficulties lists the supported levels in ascending hardness.
var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

// TimePerQuestion returns the countdown in seconds for one question.
func (d Difficulty) TimePerQuestion() int {
	switch d {
	case DifficultyEasy:
		return 45
	case DifficultyMedium:
		return 30
	case DifficultyHard:
		return 20
	default:
		return 30
	}
}

// Valid reports whether d is one of the supported difficulties.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// QuestionKind distinguishes multiple-choice from true/false questions.
// Only rendering differs between the two; scoring treats them identically.
type QuestionKind string

const (
	KindMultipleChoice QuestionKind = "mcq"
	KindBoolean        QuestionKind = "boolean"
)

// Question is an immutable quiz question with exactly one correct option.
type Question struct {
	ID            string       `json:"id"`
	Category      string       `json:"category"`
	Difficulty    Difficulty   `json:"difficulty"`
	Prompt        string       `json:"question"`
	Options       []string     `json:"options"`
	CorrectAnswer string       `json:"correctAnswer"`
	Kind          QuestionKind `json:"type"`
}

// Validate checks the structural invariants a question must satisfy before
// it may enter a session: at least two options, and the correct answer
// must be one of them.
func (q Question) Validate() error {
	if q.Prompt == "" || len(q.Options) < 2 {
		return ErrMalformedQuestion
	}
	for _, opt := range q.Options {
		if opt == q.CorrectAnswer {
			return nil
		}
	}
	return ErrMalformedQuestion
}

// QuizSettings is the immutable configuration for one quiz attempt.
type QuizSettings struct {
	Category        string     `json:"category"`
	Difficulty      Difficulty `json:"difficulty"`
	QuestionCount   int        `json:"questionCount"`
	TimePerQuestion int        `json:"timePerQuestion"`
}

// AnsweredRecord captures one submitted answer. An empty SelectedAnswer
// denotes a timeout. Records are append-only.
type AnsweredRecord struct {
	QuestionID     string  `json:"questionId"`
	SelectedAnswer string  `json:"selectedAnswer"`
	IsCorrect      bool    `json:"isCorrect"`
	TimeTaken      float64 `json:"timeTaken"`
}

// QuizSession is the mutable aggregate for a single quiz attempt. It is
// owned by the engine while playing and read-only to callers.
type QuizSession struct {
	Questions      []Question       `json:"questions"`
	CurrentIndex   int              `json:"currentQuestionIndex"`
	Score          int              `json:"score"`
	CorrectAnswers int              `json:"correctAnswers"`
	WrongAnswers   int              `json:"wrongAnswers"`
	StartedAt      time.Time        `json:"startTime"`
	EndedAt        *time.Time       `json:"endTime,omitempty"`
	Answers        []AnsweredRecord `json:"answers"`
}

// Finished reports whether the session has been completed.
func (s *QuizSession) Finished() bool {
	return s != nil && s.EndedAt != nil
}

// GameStatus is the lifecycle state of a quiz attempt. Loading belongs to
// the transport layer (question fetch in flight); the engine only ever
// asserts Idle, Playing, and Finished.
type GameStatus string

const (
	StatusIdle     GameStatus = "IDLE"
	StatusLoading  GameStatus = "LOADING"
	StatusPlaying  GameStatus = "PLAYING"
	StatusFinished GameStatus = "FINISHED"
)

// UserProfile is the durable per-player record, keyed naturally by email.
type UserProfile struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	TotalScore  int    `json:"totalScore"`
	Level       int    `json:"level"`
	Experience  int    `json:"experience"`
	GamesPlayed int    `json:"gamesPlayed"`
}

// LeaderboardEntry is the ranked projection of a profile.
type LeaderboardEntry struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Score    int    `json:"score"`
	Level    int    `json:"level"`
	Rank     int    `json:"rank"`
}
