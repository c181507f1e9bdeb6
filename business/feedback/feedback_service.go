package feedback

import (
	"context"
	"fmt"

	"campusEvents/domain"
	"campusEvents/pkg/apperror"

	"github.com/google/uuid"
)

type FeedbackRepository interface {
	Create(ctx context.Context, fb *domain.Feedback) error
	FindByStudent(ctx context.Context, studentID uuid.UUID, limit int) ([]domain.Feedback, error)
}

type StudentResolver interface {
	FindByID(ctx context.Context, id uuid.UUID) (domain.Student, error)
}

type FeedbackService struct {
	repo     FeedbackRepository
	students StudentResolver
}

func NewFeedbackService(repo FeedbackRepository, students StudentResolver) *FeedbackService {
	return &FeedbackService{repo: repo, students: students}
}

func (s *FeedbackService) Submit(ctx context.Context, studentID uuid.UUID, rating int, comment string) (domain.Feedback, error) {
	if err := ctx.Err(); err != nil {
		return domain.Feedback{}, fmt.Errorf("context error: %w", err)
	}
	if rating < 1 || rating > 5 {
		return domain.Feedback{}, apperror.Validation("rating must be between 1 and 5")
	}

	if _, err := s.students.FindByID(ctx, studentID); err != nil {
		if apperror.IsNotFound(err) {
			return domain.Feedback{}, err
		}
		return domain.Feedback{}, apperror.Dependency("failed to resolve student", err)
	}

	fb := domain.Feedback{
		StudentID: studentID,
		Rating:    rating,
		Comment:   comment,
	}
	if err := s.repo.Create(ctx, &fb); err != nil {
		return domain.Feedback{}, apperror.Dependency("failed to save feedback", err)
	}
	return fb, nil
}

func (s *FeedbackService) ListByStudent(ctx context.Context, studentID uuid.UUID, limit int) ([]domain.Feedback, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	items, err := s.repo.FindByStudent(ctx, studentID, limit)
	if err != nil {
		return nil, apperror.Dependency("failed to list feedback", err)
	}
	return items, nil
}
