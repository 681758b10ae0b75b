package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"smart-learning-portal/internal/domain"
)

// ProjectService handles student project submissions and the one-shot admin
// decision on each of them.
type ProjectService struct {
	projects ProjectStore
	notifier Notifier
	now      func() time.Time
	genID    func() string
}

func NewProjectService(projects ProjectStore, notifier Notifier) *ProjectService {
	return &ProjectService{projects: projects, notifier: notifier, now: time.Now, genID: NewID}
}

// Submit records a new project in the pending state.
func (s *ProjectService) Submit(ctx context.Context, student domain.User, title, summary, imageData, pdfData, pdfName string) (domain.Project, error) {
	if student.Role != domain.RoleStudent {
		return domain.Project{}, domain.ErrForbidden
	}
	if title == "" {
		return domain.Project{}, fmt.Errorf("%w: project title is required", domain.ErrValidation)
	}
	if summary == "" {
		return domain.Project{}, fmt.Errorf("%w: project summary is required", domain.ErrValidation)
	}

	project := domain.Project{
		ID:           s.genID(),
		StudentID:    student.ID,
		StudentName:  student.Name,
		StudentEmail: student.Email,
		Title:        title,
		Summary:      summary,
		ImageData:    imageData,
		PDFData:      pdfData,
		PDFName:      pdfName,
		Status:       domain.ProjectPending,
		SubmittedAt:  s.now(),
	}
	if err := s.projects.Save(ctx, project); err != nil {
		return domain.Project{}, err
	}
	return project, nil
}

// Decide transitions a pending project to approved or rejected, exactly
// once, and notifies the owning student. A second decision on the same
// project is rejected with ErrProjectDecided.
func (s *ProjectService) Decide(ctx context.Context, admin domain.User, projectID string, approve bool) (domain.Project, error) {
	if admin.Role != domain.RoleAdmin {
		return domain.Project{}, domain.ErrForbidden
	}

	project, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return domain.Project{}, err
	}
	if project.Status != domain.ProjectPending {
		return domain.Project{}, domain.ErrProjectDecided
	}

	if approve {
		project.Status = domain.ProjectApproved
	} else {
		project.Status = domain.ProjectRejected
	}
	if err := s.projects.Update(ctx, project); err != nil {
		return domain.Project{}, err
	}

	s.notifier.ProjectDecided(ctx, project.StudentEmail, project.Title, project.Status)
	return project, nil
}

// ByStudent lists a student's own submissions.
func (s *ProjectService) ByStudent(ctx context.Context, studentID string) ([]domain.Project, error) {
	return s.projects.ByStudent(ctx, studentID)
}

// All lists every submission for the admin review queue.
func (s *ProjectService) All(ctx context.Context) ([]domain.Project, error) {
	return s.projects.All(ctx)
}

// LogNotifier writes decision notifications to the process log instead of
// delivering them; delivery is out of scope.
type LogNotifier struct{}

func (LogNotifier) ProjectDecided(_ context.Context, email, title string, status domain.ProjectStatus) {
	log.Printf("notify %s: project %q %s", email, title, status)
}
