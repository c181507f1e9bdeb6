package students

import (
	"context"
	"fmt"

	"campusEvents/domain"
	"campusEvents/pkg/apperror"

	"github.com/google/uuid"
)

type StudentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (domain.Student, error)
	FindByParticipantID(ctx context.Context, participantID string) (domain.Student, error)
	FindAll(ctx context.Context, limit, offset int) ([]domain.Student, error)
}

type StudentService struct {
	repo StudentRepository
}

func NewStudentService(repo StudentRepository) *StudentService {
	return &StudentService{repo: repo}
}

func (s *StudentService) GetByID(ctx context.Context, id uuid.UUID) (domain.Student, error) {
	if err := ctx.Err(); err != nil {
		return domain.Student{}, fmt.Errorf("context error: %w", err)
	}

	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if apperror.IsNotFound(err) {
			return domain.Student{}, err
		}
		return domain.Student{}, apperror.Dependency("failed to load student", err)
	}
	return student, nil
}

func (s *StudentService) GetByParticipantID(ctx context.Context, participantID string) (domain.Student, error) {
	if err := ctx.Err(); err != nil {
		return domain.Student{}, fmt.Errorf("context error: %w", err)
	}
	if participantID == "" {
		return domain.Student{}, apperror.Validation("participant id is required")
	}

	student, err := s.repo.FindByParticipantID(ctx, participantID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return domain.Student{}, err
		}
		return domain.Student{}, apperror.Dependency("failed to load student", err)
	}
	return student, nil
}

func (s *StudentService) List(ctx context.Context, limit, offset int) ([]domain.Student, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	students, err := s.repo.FindAll(ctx, limit, offset)
	if err != nil {
		return nil, apperror.Dependency("failed to list students", err)
	}
	return students, nil
}
