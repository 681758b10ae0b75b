package postgres

import (
	"context"

	"smart-learning-portal/internal/app"
	"smart-learning-portal/internal/domain"
)

// The app layer takes one store per collection; these views carve the shared
// Store into the per-collection interfaces.

func (s *Store) Users() app.UserStore         { return userView{s} }
func (s *Store) Materials() app.MaterialStore { return materialView{s} }
func (s *Store) Quizzes() app.QuizStore       { return quizView{s} }
func (s *Store) Attempts() app.AttemptStore   { return attemptView{s} }
func (s *Store) Projects() app.ProjectStore   { return projectView{s} }

type userView struct{ s *Store }

func (v userView) Save(ctx context.Context, user domain.User) error { return v.s.SaveUser(ctx, user) }
func (v userView) ByEmail(ctx context.Context, email string) (domain.User, error) {
	return v.s.UserByEmail(ctx, email)
}
func (v userView) ByID(ctx context.Context, id string) (domain.User, error) {
	return v.s.UserByID(ctx, id)
}

type materialView struct{ s *Store }

func (v materialView) Save(ctx context.Context, m domain.StudyMaterial) error {
	return v.s.SaveMaterial(ctx, m)
}
func (v materialView) All(ctx context.Context) ([]domain.StudyMaterial, error) {
	return v.s.AllMaterials(ctx)
}

type quizView struct{ s *Store }

func (v quizView) Save(ctx context.Context, quiz domain.Quiz) error { return v.s.SaveQuiz(ctx, quiz) }
func (v quizView) Published(ctx context.Context) (domain.Quiz, error) {
	return v.s.Published(ctx)
}
func (v quizView) Unpublish(ctx context.Context) error { return v.s.Unpublish(ctx) }

type attemptView struct{ s *Store }

func (v attemptView) Save(ctx context.Context, a domain.QuizAttempt) error {
	return v.s.SaveAttempt(ctx, a)
}
func (v attemptView) ByStudent(ctx context.Context, studentID, quizID string) (domain.QuizAttempt, error) {
	return v.s.AttemptByStudent(ctx, studentID, quizID)
}
func (v attemptView) All(ctx context.Context) ([]domain.QuizAttempt, error) {
	return v.s.AllAttempts(ctx)
}

type projectView struct{ s *Store }

func (v projectView) Save(ctx context.Context, p domain.Project) error {
	return v.s.SaveProject(ctx, p)
}
func (v projectView) Get(ctx context.Context, id string) (domain.Project, error) {
	return v.s.GetProject(ctx, id)
}
func (v projectView) Update(ctx context.Context, p domain.Project) error {
	return v.s.UpdateProject(ctx, p)
}
func (v projectView) ByStudent(ctx context.Context, studentID string) ([]domain.Project, error) {
	return v.s.ProjectsByStudent(ctx, studentID)
}
func (v projectView) All(ctx context.Context) ([]domain.Project, error) {
	return v.s.AllProjects(ctx)
}
