package app

import (
	"math"
	"sync"
	"time"

	"quizmaster-service/internal/domain"
)

const basePoints = 100

// Engine owns the lifecycle of a single quiz attempt: question sequencing,
// answer scoring, and completion detection. One engine serves one player;
// the transport layer drives it and renders its state.
type Engine struct {
	mu       sync.RWMutex
	now      func() time.Time
	status   domain.GameStatus
	session  *domain.QuizSession
	settings *domain.QuizSettings
	answered bool
}

func NewEngine() *Engine {
	return NewEngineWithClock(time.Now)
}

// NewEngineWithClock allows deterministic timestamps in tests.
func NewEngineWithClock(now func() time.Time) *Engine {
	return &Engine{now: now, status: domain.StatusIdle}
}

// Start begins a fresh session over the given questions, replacing any
// prior session unconditionally.
func (e *Engine) Start(questions []domain.Question, settings domain.QuizSettings) error {
	if len(questions) == 0 {
		return domain.ErrNoQuestions
	}
	if settings.TimePerQuestion <= 0 {
		return domain.ErrInvalidSettings
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.settings = &settings
	e.session = &domain.QuizSession{
		Questions: questions,
		StartedAt: e.now(),
		Answers:   make([]domain.AnsweredRecord, 0, len(questions)),
	}
	e.answered = false
	e.status = domain.StatusPlaying
	return nil
}

// SubmitAnswer scores the current question and returns the appended
// record and the points awarded. An empty answer models a timeout and
// never matches. The call is a no-op unless the engine is Playing and the
// current question has not been scored yet, so racing callers can never
// produce two records for one question.
func (e *Engine) SubmitAnswer(answer string, timeTaken float64) (domain.AnsweredRecord, int, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session == nil || e.status != domain.StatusPlaying || e.answered {
		return domain.AnsweredRecord{}, 0, false
	}

	question := e.session.Questions[e.session.CurrentIndex]
	correct := answer != "" && answer == question.CorrectAnswer

	points := 0
	if correct {
		bonus := math.Max(0, float64(e.settings.TimePerQuestion)-timeTaken) * 2
		points = basePoints + int(math.Floor(bonus))
	}

	record := domain.AnsweredRecord{
		QuestionID:     question.ID,
		SelectedAnswer: answer,
		IsCorrect:      correct,
		TimeTaken:      timeTaken,
	}
	e.session.Answers = append(e.session.Answers, record)
	e.session.Score += points
	if correct {
		e.session.CorrectAnswers++
	} else {
		e.session.WrongAnswers++
	}
	e.answered = true
	return record, points, true
}

// NextQuestion advances the session, or finishes it when the last
// question has been passed. It reports whether this call performed the
// Playing→Finished transition, so completion side effects run exactly
// once. Finishing stamps the end timestamp; further calls are no-ops
// and return false.
func (e *Engine) NextQuestion() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session == nil || e.status != domain.StatusPlaying {
		return false
	}

	if e.session.CurrentIndex+1 < len(e.session.Questions) {
		e.session.CurrentIndex++
		e.answered = false
		return false
	}

	ended := e.now()
	e.session.EndedAt = &ended
	e.status = domain.StatusFinished
	return true
}

// Reset discards all session state and returns to Idle. Always safe.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.status = domain.StatusIdle
	e.session = nil
	e.settings = nil
	e.answered = false
}

func (e *Engine) Status() domain.GameStatus {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.status
}

// Session returns a read-only snapshot of the current session, or nil.
func (e *Engine) Session() *domain.QuizSession {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.session == nil {
		return nil
	}
	snapshot := *e.session
	snapshot.Questions = append([]domain.Question(nil), e.session.Questions...)
	snapshot.Answers = append([]domain.AnsweredRecord(nil), e.session.Answers...)
	return &snapshot
}

func (e *Engine) Settings() *domain.QuizSettings {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.settings == nil {
		return nil
	}
	snapshot := *e.settings
	return &snapshot
}

// CurrentQuestion returns the question awaiting an answer, if any.
func (e *Engine) CurrentQuestion() (domain.Question, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.session == nil || e.status != domain.StatusPlaying {
		return domain.Question{}, false
	}
	return e.session.Questions[e.session.CurrentIndex], true
}
