package app

import (
	"context"
	"errors"
	"time"

	"smart-learning-portal/internal/domain"
)

// AttemptService owns the quiz attempt lifecycle: opening a session against
// the published quiz, resuming a dropped connection, and tearing the session
// down once the attempt is persisted.
type AttemptService struct {
	sessions SessionStore
	quizzes  PublishedQuizSource
	attempts AttemptStore
	now      func() time.Time
	genID    func() string
}

func NewAttemptService(sessions SessionStore, quizzes PublishedQuizSource, attempts AttemptStore) *AttemptService {
	return NewAttemptServiceWithClock(sessions, quizzes, attempts, time.Now, NewID)
}

// NewAttemptServiceWithClock is a hook for deterministic timestamps and IDs
// in tests.
func NewAttemptServiceWithClock(sessions SessionStore, quizzes PublishedQuizSource, attempts AttemptStore, now func() time.Time, genID func() string) *AttemptService {
	return &AttemptService{
		sessions: sessions,
		quizzes:  quizzes,
		attempts: attempts,
		now:      now,
		genID:    genID,
	}
}

// Start opens an attempt session for the student against the published quiz.
// An in-progress session for the same student is returned as-is so a dropped
// connection can resume. A recorded attempt yields ErrAlreadyAttempted; the
// caller reads the prior result instead.
func (s *AttemptService) Start(ctx context.Context, student domain.User) (*AttemptSession, error) {
	if student.Role != domain.RoleStudent {
		return nil, domain.ErrForbidden
	}

	if session, ok := s.sessions.Get(student.ID); ok && session.InProgress() {
		return session, nil
	}

	quiz, err := s.quizzes.Published(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := s.attempts.ByStudent(ctx, student.ID, quiz.ID); err == nil {
		return nil, domain.ErrAlreadyAttempted
	} else if !errors.Is(err, domain.ErrAttemptNotFound) {
		return nil, err
	}

	session := newAttemptSession(quiz, student, s.attempts, s.now, s.genID)
	if _, err := session.begin(ctx); err != nil {
		return nil, err
	}
	s.sessions.Put(student.ID, session)
	return session, nil
}

// Leave drops the student's session once it is no longer in progress. An
// in-progress session is kept so the student can reconnect and resume with
// the countdown still running down.
func (s *AttemptService) Leave(studentID string) {
	session, ok := s.sessions.Get(studentID)
	if !ok {
		return
	}
	if !session.InProgress() {
		s.sessions.Delete(studentID)
	}
}

// PriorAttempt returns the student's recorded attempt for the published quiz.
func (s *AttemptService) PriorAttempt(ctx context.Context, studentID string) (domain.QuizAttempt, error) {
	quiz, err := s.quizzes.Published(ctx)
	if err != nil {
		return domain.QuizAttempt{}, err
	}
	return s.attempts.ByStudent(ctx, studentID, quiz.ID)
}
