package app

import (
	"context"

	"github.com/google/uuid"

	"smart-learning-portal/internal/domain"
)

// PublishedQuizSource resolves the currently published quiz. Implemented by
// quiz stores directly and by the caching layers that wrap them.
type PublishedQuizSource interface {
	Published(ctx context.Context) (domain.Quiz, error)
}

// QuizStore persists quizzes. Quizzes are append-only; publication state is
// the only mutable bit and is cleared wholesale via Unpublish.
type QuizStore interface {
	PublishedQuizSource
	Save(ctx context.Context, quiz domain.Quiz) error
	Unpublish(ctx context.Context) error
}

// AttemptStore persists quiz attempts. Save must reject a second attempt for
// the same (student, quiz) pair with domain.ErrDuplicateAttempt; All returns
// attempts in submission order.
type AttemptStore interface {
	Save(ctx context.Context, attempt domain.QuizAttempt) error
	ByStudent(ctx context.Context, studentID, quizID string) (domain.QuizAttempt, error)
	All(ctx context.Context) ([]domain.QuizAttempt, error)
}

// UserStore persists accounts. Save must reject a duplicate email with
// domain.ErrEmailTaken.
type UserStore interface {
	Save(ctx context.Context, user domain.User) error
	ByEmail(ctx context.Context, email string) (domain.User, error)
	ByID(ctx context.Context, id string) (domain.User, error)
}

// MaterialStore persists study materials; All returns newest first.
type MaterialStore interface {
	Save(ctx context.Context, material domain.StudyMaterial) error
	All(ctx context.Context) ([]domain.StudyMaterial, error)
}

// ProjectStore persists project submissions and their review state.
type ProjectStore interface {
	Save(ctx context.Context, project domain.Project) error
	Get(ctx context.Context, id string) (domain.Project, error)
	Update(ctx context.Context, project domain.Project) error
	ByStudent(ctx context.Context, studentID string) ([]domain.Project, error)
	All(ctx context.Context) ([]domain.Project, error)
}

// SessionStore tracks live attempt sessions keyed by student ID.
type SessionStore interface {
	Put(studentID string, session *AttemptSession)
	Get(studentID string) (*AttemptSession, bool)
	Delete(studentID string)
}

// Notifier delivers project-decision notifications to students. The default
// implementation only logs; real delivery is an external collaborator.
type Notifier interface {
	ProjectDecided(ctx context.Context, email, title string, status domain.ProjectStatus)
}

// NewID returns a fresh record identifier.
func NewID() string {
	return uuid.NewString()
}
