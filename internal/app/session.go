package app

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"smart-learning-portal/internal/domain"
)

type sessionState int

const (
	stateNotStarted sessionState = iota
	stateInProgress
	stateSubmitted
)

// AttemptSession is one student's live run through the published quiz:
// answer selection, countdown, and the single submit (manual or timeout).
// All transitions happen under one mutex, so a timeout tick racing a manual
// submit can never persist two attempts.
type AttemptSession struct {
	mu        sync.Mutex
	state     sessionState
	quiz      domain.Quiz
	student   domain.User
	answers   []int
	remaining int // seconds
	result    *domain.QuizAttempt

	// claimed marks the single connection allowed to drive this session.
	claimed atomic.Bool

	attempts AttemptStore
	now      func() time.Time
	genID    func() string
}

// NewAttemptSession is exported for infrastructure layers and tests that
// seed session stores directly; the service normally constructs sessions.
func NewAttemptSession(quiz domain.Quiz, student domain.User, attempts AttemptStore) *AttemptSession {
	return newAttemptSession(quiz, student, attempts, time.Now, NewID)
}

func newAttemptSession(quiz domain.Quiz, student domain.User, attempts AttemptStore, now func() time.Time, genID func() string) *AttemptSession {
	return &AttemptSession{
		state:    stateNotStarted,
		quiz:     quiz,
		student:  student,
		attempts: attempts,
		now:      now,
		genID:    genID,
	}
}

// begin moves the session into the in-progress state: a fresh answer vector
// of unanswered sentinels and a full countdown. A zero-minute quiz is an
// immediate timeout and submits on the spot with TimeTaken 0.
func (s *AttemptSession) begin(ctx context.Context) (*domain.QuizAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != stateNotStarted {
		return nil, domain.ErrAttemptNotInProgress
	}
	s.answers = make([]int, len(s.quiz.Questions))
	for i := range s.answers {
		s.answers[i] = domain.Unanswered
	}
	s.remaining = s.quiz.Duration()
	s.state = stateInProgress

	if s.remaining == 0 {
		attempt, err := s.submitLocked(ctx)
		if err != nil {
			return nil, err
		}
		return &attempt, nil
	}
	return nil, nil
}

// Select records the option chosen for a question; reselecting overwrites.
func (s *AttemptSession) Select(questionIdx, optionIdx int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != stateInProgress {
		return domain.ErrAttemptNotInProgress
	}
	if questionIdx < 0 || questionIdx >= len(s.quiz.Questions) {
		return domain.ErrIndexOutOfRange
	}
	if optionIdx < 0 || optionIdx >= len(s.quiz.Questions[questionIdx].Options) {
		return domain.ErrIndexOutOfRange
	}
	s.answers[questionIdx] = optionIdx
	return nil
}

// Tick advances the countdown by one second. The edge from one second left
// to zero is a timeout: the attempt is submitted inside the same critical
// section and returned. Ticks after submission report the terminal state so
// a stale timer can never fire a second submit.
func (s *AttemptSession) Tick(ctx context.Context) (int, *domain.QuizAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != stateInProgress {
		return 0, nil, domain.ErrAttemptNotInProgress
	}
	if s.remaining > 1 {
		s.remaining--
		return s.remaining, nil, nil
	}
	s.remaining = 0
	attempt, err := s.submitLocked(ctx)
	if err != nil {
		return 0, nil, err
	}
	return 0, &attempt, nil
}

// Submit scores the answer vector and persists the attempt. The session is
// read-only afterwards.
func (s *AttemptSession) Submit(ctx context.Context) (domain.QuizAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != stateInProgress {
		return domain.QuizAttempt{}, domain.ErrAttemptNotInProgress
	}
	return s.submitLocked(ctx)
}

func (s *AttemptSession) submitLocked(ctx context.Context) (domain.QuizAttempt, error) {
	attempt := domain.QuizAttempt{
		ID:          s.genID(),
		QuizID:      s.quiz.ID,
		StudentID:   s.student.ID,
		StudentName: s.student.Name,
		USN:         s.student.USN,
		Score:       scoreAnswers(s.quiz, s.answers),
		Total:       len(s.quiz.Questions),
		TimeTaken:   s.quiz.Duration() - s.remaining,
		Answers:     append([]int(nil), s.answers...),
		SubmittedAt: s.now(),
	}

	// Flip to submitted before touching the store so no second submit path
	// can open up even if persistence fails.
	s.state = stateSubmitted
	s.result = &attempt

	if err := s.attempts.Save(ctx, attempt); err != nil {
		return domain.QuizAttempt{}, err
	}
	return attempt, nil
}

// scoreAnswers counts strict matches against each question's correct index.
// The unanswered sentinel is negative and valid indices are not, so skipped
// questions always score as wrong, as do questions with a malformed correct
// index (authoring validation keeps those out of published quizzes).
func scoreAnswers(quiz domain.Quiz, answers []int) int {
	score := 0
	for i, q := range quiz.Questions {
		if i < len(answers) && answers[i] >= 0 && answers[i] == q.CorrectIndex {
			score++
		}
	}
	return score
}

// Remaining reports the countdown in seconds.
func (s *AttemptSession) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remaining
}

// InProgress reports whether the session still accepts answers and ticks.
func (s *AttemptSession) InProgress() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == stateInProgress
}

// Result returns the persisted attempt once the session has been submitted.
func (s *AttemptSession) Result() (domain.QuizAttempt, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return domain.QuizAttempt{}, false
	}
	return *s.result, true
}

// Quiz returns the quiz this session runs against.
func (s *AttemptSession) Quiz() domain.Quiz {
	return s.quiz
}

// Student returns the acting student.
func (s *AttemptSession) Student() domain.User {
	return s.student
}

// Claim reserves the session for a single driving connection. It returns
// false when another connection already holds the session.
func (s *AttemptSession) Claim() bool {
	return s.claimed.CompareAndSwap(false, true)
}

// Release frees the session for a later reconnect.
func (s *AttemptSession) Release() {
	s.claimed.Store(false)
}
