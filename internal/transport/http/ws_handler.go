package http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"quizmaster-service/internal/app"
	"quizmaster-service/internal/domain"
)

// WSHandler is the presentation boundary: it upgrades connections, owns
// the per-question countdown, and drives a per-connection quiz engine.
type WSHandler struct {
	profiles  *app.ProfileService
	questions app.QuestionSource
	upgrader  websocket.Upgrader
	clock     func() time.Time
}

func NewWSHandler(profiles *app.ProfileService, questions app.QuestionSource) *WSHandler {
	return &WSHandler{
		profiles:  profiles,
		questions: questions,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clock: time.Now,
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type startPayload struct {
	Category      string            `json:"category"`
	Difficulty    domain.Difficulty `json:"difficulty"`
	QuestionCount int               `json:"questionCount"`
}

type answerPayload struct {
	Answer string `json:"answer"`
}

type questionView struct {
	Question        domain.Question `json:"question"`
	Index           int             `json:"index"`
	Total           int             `json:"total"`
	TimePerQuestion int             `json:"timePerQuestion"`
}

type answerResult struct {
	QuestionID     string `json:"questionId"`
	SelectedAnswer string `json:"selectedAnswer"`
	Correct        bool   `json:"correct"`
	Points         int    `json:"points"`
	CorrectAnswer  string `json:"correctAnswer"`
	Score          int    `json:"score"`
}

type resultsView struct {
	Session     *domain.QuizSession       `json:"session"`
	Profile     *domain.UserProfile       `json:"profile,omitempty"`
	Leaderboard []domain.LeaderboardEntry `json:"leaderboard"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// countdownEvent arms (or disarms) the per-question timer goroutine.
type countdownEvent struct {
	duration time.Duration
	stop     bool
}

// ServeWS upgrades the request and runs one player's quiz loop until the
// connection drops.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("name")
	email := r.URL.Query().Get("email")
	if username == "" || email == "" {
		http.Error(w, "missing name or email", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	profile, err := h.profiles.Login(r.Context(), username, email)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}

	engine := app.NewEngine()
	send := make(chan outboundMessage[any], 16)
	countdown := make(chan countdownEvent, 1)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	countdownDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	// The countdown goroutine is the "time is up" half of the contract:
	// when the timer fires it submits an empty answer. The engine's
	// single-answer guard makes a race with a user click harmless.
	go func() {
		defer close(countdownDone)
		var timer *time.Timer
		var timerC <-chan time.Time
		var allotted time.Duration
		stopTimer := func() {
			if timer != nil {
				timer.Stop()
				timer = nil
				timerC = nil
			}
		}
		defer stopTimer()
		for {
			select {
			case ev := <-countdown:
				stopTimer()
				if !ev.stop {
					allotted = ev.duration
					timer = time.NewTimer(ev.duration)
					timerC = timer.C
				}
			case <-timerC:
				timerC = nil
				record, points, ok := engine.SubmitAnswer("", allotted.Seconds())
				if !ok {
					continue
				}
				result := h.answerResultFor(engine, record, points)
				select {
				case send <- outboundMessage[any]{Type: "answerResult", Payload: result}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	send <- outboundMessage[any]{Type: "profile", Payload: profile}

	var questionShownAt time.Time

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "start":
			var payload startPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- errMsg("invalid start payload")
				continue
			}
			if !payload.Difficulty.Valid() || payload.QuestionCount <= 0 {
				send <- errMsg("invalid difficulty or question count")
				continue
			}

			send <- outboundMessage[any]{Type: "status", Payload: domain.StatusLoading}
			questions, err := h.questions.Questions(r.Context(), payload.Category, payload.Difficulty, payload.QuestionCount)
			if err != nil {
				send <- errMsg(err.Error())
				continue
			}
			settings := domain.QuizSettings{
				Category:        payload.Category,
				Difficulty:      payload.Difficulty,
				QuestionCount:   payload.QuestionCount,
				TimePerQuestion: payload.Difficulty.TimePerQuestion(),
			}
			if err := engine.Start(questions, settings); err != nil {
				send <- errMsg(err.Error())
				continue
			}
			questionShownAt = h.clock()
			h.presentQuestion(engine, send, countdown)

		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- errMsg("invalid answer payload")
				continue
			}
			countdown <- countdownEvent{stop: true}
			timeTaken := h.clock().Sub(questionShownAt).Seconds()
			record, points, ok := engine.SubmitAnswer(payload.Answer, timeTaken)
			if !ok {
				continue
			}
			send <- outboundMessage[any]{Type: "answerResult", Payload: h.answerResultFor(engine, record, points)}

		case "next":
			// Completion runs only when this call finished the session:
			// a repeated "next" on a Finished session must not apply the
			// result to the profile a second time.
			if finished := engine.NextQuestion(); finished {
				countdown <- countdownEvent{stop: true}
				h.presentResults(r.Context(), engine, send)
				continue
			}
			if engine.Status() != domain.StatusPlaying {
				continue
			}
			questionShownAt = h.clock()
			h.presentQuestion(engine, send, countdown)

		case "reset":
			countdown <- countdownEvent{stop: true}
			engine.Reset()
			send <- outboundMessage[any]{Type: "status", Payload: domain.StatusIdle}

		case "leaderboard":
			entries, err := h.profiles.Leaderboard(r.Context())
			if err != nil {
				send <- errMsg(err.Error())
				continue
			}
			send <- outboundMessage[any]{Type: "leaderboard", Payload: entries}

		default:
			send <- errMsg("unsupported message type")
		}
	}

	close(closeSignals)
	<-countdownDone
	close(send)
	<-writerDone
}

func (h *WSHandler) presentQuestion(engine *app.Engine, send chan<- outboundMessage[any], countdown chan<- countdownEvent) {
	question, ok := engine.CurrentQuestion()
	if !ok {
		return
	}
	session := engine.Session()
	settings := engine.Settings()
	send <- outboundMessage[any]{Type: "question", Payload: questionView{
		Question:        question,
		Index:           session.CurrentIndex,
		Total:           len(session.Questions),
		TimePerQuestion: settings.TimePerQuestion,
	}}
	countdown <- countdownEvent{duration: time.Duration(settings.TimePerQuestion) * time.Second}
}

func (h *WSHandler) presentResults(ctx context.Context, engine *app.Engine, send chan<- outboundMessage[any]) {
	session := engine.Session()
	profile, err := h.profiles.CompleteQuiz(ctx, session)
	if err != nil {
		log.Printf("complete quiz: %v", err)
	}
	entries, err := h.profiles.Leaderboard(ctx)
	if err != nil {
		log.Printf("load leaderboard: %v", err)
	}
	send <- outboundMessage[any]{Type: "results", Payload: resultsView{
		Session:     session,
		Profile:     profile,
		Leaderboard: entries,
	}}
}

func (h *WSHandler) answerResultFor(engine *app.Engine, record domain.AnsweredRecord, points int) answerResult {
	result := answerResult{
		QuestionID:     record.QuestionID,
		SelectedAnswer: record.SelectedAnswer,
		Correct:        record.IsCorrect,
		Points:         points,
	}
	if session := engine.Session(); session != nil {
		result.Score = session.Score
		for _, q := range session.Questions {
			if q.ID == record.QuestionID {
				result.CorrectAnswer = q.CorrectAnswer
				break
			}
		}
	}
	return result
}

func errMsg(message string) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: message}}
}
