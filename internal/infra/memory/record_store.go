package memory

import (
	"context"
	"sync"

	"smart-learning-portal/internal/domain"
)

// UserStore is an in-memory implementation of app.UserStore.
type UserStore struct {
	mu      sync.RWMutex
	byID    map[string]domain.User
	byEmail map[string]string // email -> id
}

func NewUserStore() *UserStore {
	return &UserStore{
		byID:    make(map[string]domain.User),
		byEmail: make(map[string]string),
	}
}

func (s *UserStore) Save(_ context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byEmail[user.Email]; ok {
		return domain.ErrEmailTaken
	}
	s.byID[user.ID] = user
	s.byEmail[user.Email] = user.ID
	return nil
}

func (s *UserStore) ByEmail(_ context.Context, email string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[email]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return s.byID[id], nil
}

func (s *UserStore) ByID(_ context.Context, id string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.byID[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return user, nil
}

// MaterialStore is an in-memory implementation of app.MaterialStore.
// Materials are prepended so All reads newest first.
type MaterialStore struct {
	mu        sync.RWMutex
	materials []domain.StudyMaterial
}

func NewMaterialStore() *MaterialStore {
	return &MaterialStore{}
}

func (s *MaterialStore) Save(_ context.Context, material domain.StudyMaterial) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.materials = append([]domain.StudyMaterial{material}, s.materials...)
	return nil
}

func (s *MaterialStore) All(_ context.Context) ([]domain.StudyMaterial, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.StudyMaterial(nil), s.materials...), nil
}

// QuizStore is an in-memory implementation of app.QuizStore.
type QuizStore struct {
	mu      sync.RWMutex
	quizzes []domain.Quiz
}

func NewQuizStore() *QuizStore {
	return &QuizStore{}
}

func (s *QuizStore) Save(_ context.Context, quiz domain.Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quizzes = append(s.quizzes, quiz)
	return nil
}

func (s *QuizStore) Published(_ context.Context) (domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, quiz := range s.quizzes {
		if quiz.Published {
			return quiz, nil
		}
	}
	return domain.Quiz{}, domain.ErrNoPublishedQuiz
}

func (s *QuizStore) Unpublish(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.quizzes {
		s.quizzes[i].Published = false
	}
	return nil
}

// AttemptStore is an in-memory implementation of app.AttemptStore. The
// one-attempt-per-(student, quiz) invariant lives at this write boundary.
type AttemptStore struct {
	mu       sync.RWMutex
	attempts []domain.QuizAttempt
	index    map[string]int // studentID+"\x00"+quizID -> slice position
}

func NewAttemptStore() *AttemptStore {
	return &AttemptStore{index: make(map[string]int)}
}

func attemptKey(studentID, quizID string) string {
	return studentID + "\x00" + quizID
}

func (s *AttemptStore) Save(_ context.Context, attempt domain.QuizAttempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := attemptKey(attempt.StudentID, attempt.QuizID)
	if _, ok := s.index[key]; ok {
		return domain.ErrDuplicateAttempt
	}
	s.index[key] = len(s.attempts)
	s.attempts = append(s.attempts, attempt)
	return nil
}

func (s *AttemptStore) ByStudent(_ context.Context, studentID, quizID string) (domain.QuizAttempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pos, ok := s.index[attemptKey(studentID, quizID)]
	if !ok {
		return domain.QuizAttempt{}, domain.ErrAttemptNotFound
	}
	return s.attempts[pos], nil
}

func (s *AttemptStore) All(_ context.Context) ([]domain.QuizAttempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.QuizAttempt(nil), s.attempts...), nil
}

// ProjectStore is an in-memory implementation of app.ProjectStore.
type ProjectStore struct {
	mu       sync.RWMutex
	projects []domain.Project
	index    map[string]int
}

func NewProjectStore() *ProjectStore {
	return &ProjectStore{index: make(map[string]int)}
}

func (s *ProjectStore) Save(_ context.Context, project domain.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.index[project.ID] = len(s.projects)
	s.projects = append(s.projects, project)
	return nil
}

func (s *ProjectStore) Get(_ context.Context, id string) (domain.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pos, ok := s.index[id]
	if !ok {
		return domain.Project{}, domain.ErrProjectNotFound
	}
	return s.projects[pos], nil
}

func (s *ProjectStore) Update(_ context.Context, project domain.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	pos, ok := s.index[project.ID]
	if !ok {
		return domain.ErrProjectNotFound
	}
	s.projects[pos] = project
	return nil
}

func (s *ProjectStore) ByStudent(_ context.Context, studentID string) ([]domain.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Project
	for _, p := range s.projects {
		if p.StudentID == studentID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *ProjectStore) All(_ context.Context) ([]domain.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Project(nil), s.projects...), nil
}
