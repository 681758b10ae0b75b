package app

import (
	"context"
	"fmt"
	"time"

	"smart-learning-portal/internal/domain"
)

// minOptions is the smallest option set the authoring form produces.
const minOptions = 4

// AuthoringService lets an administrator publish quizzes. Publishing is the
// only write path for quizzes, and it unpublishes any predecessor first so
// at most one quiz is ever live.
type AuthoringService struct {
	quizzes QuizStore
	now     func() time.Time
	genID   func() string
}

func NewAuthoringService(quizzes QuizStore) *AuthoringService {
	return &AuthoringService{quizzes: quizzes, now: time.Now, genID: NewID}
}

// PublishQuiz validates the drafted questions, retires the currently
// published quiz, and saves the new one as published. Question and quiz IDs
// are assigned here; drafts arrive without them.
func (s *AuthoringService) PublishQuiz(ctx context.Context, admin domain.User, questions []domain.Question, timeMinutes int) (domain.Quiz, error) {
	if admin.Role != domain.RoleAdmin {
		return domain.Quiz{}, domain.ErrForbidden
	}
	if err := validateQuestions(questions); err != nil {
		return domain.Quiz{}, err
	}
	if timeMinutes < 0 {
		return domain.Quiz{}, fmt.Errorf("%w: time limit cannot be negative", domain.ErrValidation)
	}

	quiz := domain.Quiz{
		ID:          s.genID(),
		Questions:   make([]domain.Question, len(questions)),
		TimeMinutes: timeMinutes,
		Published:   true,
		CreatedAt:   s.now(),
	}
	for i, q := range questions {
		q.ID = s.genID()
		quiz.Questions[i] = q
	}

	if err := s.quizzes.Unpublish(ctx); err != nil {
		return domain.Quiz{}, err
	}
	if err := s.quizzes.Save(ctx, quiz); err != nil {
		return domain.Quiz{}, err
	}
	return quiz, nil
}

func validateQuestions(questions []domain.Question) error {
	if len(questions) == 0 {
		return fmt.Errorf("%w: quiz needs at least one question", domain.ErrValidation)
	}
	for i, q := range questions {
		if q.Text == "" {
			return fmt.Errorf("%w: question %d has no text", domain.ErrValidation, i+1)
		}
		if len(q.Options) < minOptions {
			return fmt.Errorf("%w: question %d needs at least %d options", domain.ErrValidation, i+1, minOptions)
		}
		for j, opt := range q.Options {
			if opt == "" {
				return fmt.Errorf("%w: question %d option %d is empty", domain.ErrValidation, i+1, j+1)
			}
		}
		if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
			return fmt.Errorf("%w: question %d correct index out of range", domain.ErrValidation, i+1)
		}
	}
	return nil
}
