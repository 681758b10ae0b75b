package app

import (
	"context"
	"fmt"
	"time"

	"smart-learning-portal/internal/domain"
)

// MaterialService handles admin-published study materials.
type MaterialService struct {
	materials MaterialStore
	now       func() time.Time
	genID     func() string
}

func NewMaterialService(materials MaterialStore) *MaterialService {
	return &MaterialService{materials: materials, now: time.Now, genID: NewID}
}

// Add publishes a new study material. Title, description and content are
// required; the PDF attachment is optional.
func (s *MaterialService) Add(ctx context.Context, admin domain.User, title, description, content, pdfData, pdfName string) (domain.StudyMaterial, error) {
	if admin.Role != domain.RoleAdmin {
		return domain.StudyMaterial{}, domain.ErrForbidden
	}
	if title == "" || description == "" || content == "" {
		return domain.StudyMaterial{}, fmt.Errorf("%w: title, description and content are required", domain.ErrValidation)
	}

	material := domain.StudyMaterial{
		ID:          s.genID(),
		Title:       title,
		Description: description,
		Content:     content,
		PDFData:     pdfData,
		PDFName:     pdfName,
		CreatedAt:   s.now(),
	}
	if err := s.materials.Save(ctx, material); err != nil {
		return domain.StudyMaterial{}, err
	}
	return material, nil
}

// List returns all materials, newest first.
func (s *MaterialService) List(ctx context.Context) ([]domain.StudyMaterial, error) {
	return s.materials.All(ctx)
}
