package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"smart-learning-portal/internal/app"
	"smart-learning-portal/internal/domain"
)

// WSHandler drives a student's quiz attempt over a websocket: it opens the
// session, owns the one-second countdown ticker, relays answer selections,
// and reports the submitted result. The ticker stops the instant the session
// leaves the in-progress state, so a timeout and a manual submit can never
// both land.
type WSHandler struct {
	attempts *app.AttemptService
	boards   *app.LeaderboardService
	accounts *app.AccountService
	upgrader websocket.Upgrader
}

func NewWSHandler(attempts *app.AttemptService, boards *app.LeaderboardService, accounts *app.AccountService) *WSHandler {
	return &WSHandler{
		attempts: attempts,
		boards:   boards,
		accounts: accounts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	Question int `json:"question"`
	Option   int `json:"option"`
}

// questionView strips the correct index before a question reaches a client.
type questionView struct {
	ID        string   `json:"id"`
	Text      string   `json:"text"`
	ImageData string   `json:"imageData,omitempty"`
	Options   []string `json:"options"`
}

type startedPayload struct {
	QuizID    string         `json:"quizId"`
	Questions []questionView `json:"questions"`
	TimeLimit int            `json:"timeLimit"` // seconds
	Remaining int            `json:"remaining"` // seconds, < TimeLimit on resume
}

type tickPayload struct {
	Remaining int `json:"remaining"`
}

type resultPayload struct {
	Attempt domain.QuizAttempt `json:"attempt"`
	Rank    int                `json:"rank"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades the connection and runs one attempt session end to end.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	studentID := r.URL.Query().Get("studentId")
	if studentID == "" {
		http.Error(w, "missing studentId", http.StatusBadRequest)
		return
	}
	student, err := h.accounts.ByID(r.Context(), studentID)
	if err != nil {
		http.Error(w, "unknown student", http.StatusNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	session, err := h.attempts.Start(r.Context(), student)
	if err != nil {
		h.writeStartError(conn, r.Context(), studentID, err)
		return
	}
	if !session.Claim() {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: "attempt already open on another connection"}})
		return
	}
	defer session.Release()
	defer h.attempts.Leave(studentID)

	// Zero-minute quizzes submit during Start; report and stop.
	if result, ok := session.Result(); ok {
		h.writeResult(conn, r.Context(), "submitted", result)
		return
	}

	quiz := session.Quiz()
	views := make([]questionView, len(quiz.Questions))
	for i, q := range quiz.Questions {
		views[i] = questionView{ID: q.ID, Text: q.Text, ImageData: q.ImageData, Options: q.Options}
	}
	if err := conn.WriteJSON(outboundMessage[startedPayload]{Type: "started", Payload: startedPayload{
		QuizID:    quiz.ID,
		Questions: views,
		TimeLimit: quiz.Duration(),
		Remaining: session.Remaining(),
	}}); err != nil {
		return
	}

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	tickerDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	go func() {
		defer close(tickerDone)
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				remaining, attempt, err := session.Tick(context.Background())
				if err != nil {
					// Submitted on the read path; nothing left to drive.
					return
				}
				if attempt != nil {
					h.sendResult(send, closeSignals, *attempt)
					// Nudge the read loop to finish.
					_ = conn.SetReadDeadline(time.Now())
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "tick", Payload: tickPayload{Remaining: remaining}}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid answer payload"}}
				continue
			}
			if err := session.Select(payload.Question, payload.Option); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
				continue
			}
			send <- outboundMessage[any]{Type: "selected", Payload: payload}
		case "submit":
			attempt, err := session.Submit(r.Context())
			if err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
				continue
			}
			h.sendResult(send, closeSignals, attempt)
		default:
			send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}
		}
	}

	close(closeSignals)
	<-tickerDone
	close(send)
	<-writerDone
}

func (h *WSHandler) sendResult(send chan<- outboundMessage[any], closeSignals <-chan struct{}, attempt domain.QuizAttempt) {
	rank, err := h.boards.Rank(context.Background(), "", attempt.StudentID)
	if err != nil {
		log.Printf("leaderboard rank: %v", err)
	}
	select {
	case send <- outboundMessage[any]{Type: "submitted", Payload: resultPayload{Attempt: attempt, Rank: rank}}:
	case <-closeSignals:
	}
}

// writeStartError reports why a session could not open. A prior attempt is
// not an error to the student: the recorded result is played back instead.
func (h *WSHandler) writeStartError(conn *websocket.Conn, ctx context.Context, studentID string, err error) {
	if errors.Is(err, domain.ErrAlreadyAttempted) {
		attempt, perr := h.attempts.PriorAttempt(ctx, studentID)
		if perr == nil {
			h.writeResult(conn, ctx, "completed", attempt)
			return
		}
		err = perr
	}
	_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
}

func (h *WSHandler) writeResult(conn *websocket.Conn, ctx context.Context, msgType string, attempt domain.QuizAttempt) {
	rank, err := h.boards.Rank(ctx, "", attempt.StudentID)
	if err != nil {
		log.Printf("leaderboard rank: %v", err)
	}
	_ = conn.WriteJSON(outboundMessage[resultPayload]{Type: msgType, Payload: resultPayload{Attempt: attempt, Rank: rank}})
}
