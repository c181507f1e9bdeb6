package postgres

import (
	"context"
	"errors"
	"fmt"

	"campusEvents/domain"
	"campusEvents/pkg/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StudentRepository struct {
	DB *gorm.DB
}

func NewStudentRepository(db *gorm.DB) *StudentRepository {
	return &StudentRepository{
		DB: db,
	}
}

func (r *StudentRepository) FindByID(ctx context.Context, id uuid.UUID) (domain.Student, error) {
	if err := ctx.Err(); err != nil {
		return domain.Student{}, fmt.Errorf("context error: %w", err)
	}

	var student domain.Student
	err := r.DB.WithContext(ctx).Preload("Direction").First(&student, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Student{}, apperror.NotFound("student not found")
		}
		return domain.Student{}, fmt.Errorf("failed to find student: %w", err)
	}

	return student, nil
}

func (r *StudentRepository) FindByParticipantID(ctx context.Context, participantID string) (domain.Student, error) {
	if err := ctx.Err(); err != nil {
		return domain.Student{}, fmt.Errorf("context error: %w", err)
	}

	var student domain.Student
	err := r.DB.WithContext(ctx).Preload("Direction").
		First(&student, "participant_id = ?", participantID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Student{}, apperror.NotFound("student not found")
		}
		return domain.Student{}, fmt.Errorf("failed to find student: %w", err)
	}

	return student, nil
}

func (r *StudentRepository) FindAll(ctx context.Context, limit, offset int) ([]domain.Student, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	query := r.DB.WithContext(ctx).Preload("Direction").Order("created_at, id")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var students []domain.Student
	if err := query.Find(&students).Error; err != nil {
		return nil, fmt.Errorf("failed to find students: %w", err)
	}

	return students, nil
}

// FindIDsWithEmbedding lists the ids of students that can be scored,
// ordered for stable batch runs.
func (r *StudentRepository) FindIDsWithEmbedding(ctx context.Context) ([]uuid.UUID, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var ids []uuid.UUID
	err := r.DB.WithContext(ctx).Model(&domain.Student{}).
		Where("profile_embedding IS NOT NULL").
		Order("created_at, id").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list student ids: %w", err)
	}

	return ids, nil
}

func (r *StudentRepository) FindParticipantIDs(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var ids []string
	err := r.DB.WithContext(ctx).Model(&domain.Student{}).
		Pluck("participant_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list participant ids: %w", err)
	}

	return ids, nil
}

func (r *StudentRepository) CreateBatch(ctx context.Context, students []domain.Student) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}
	if len(students) == 0 {
		return nil
	}

	if err := r.DB.WithContext(ctx).CreateInBatches(students, len(students)).Error; err != nil {
		return fmt.Errorf("failed to insert students: %w", err)
	}

	return nil
}
