package favorites

import (
	"context"
	"fmt"

	"campusEvents/domain"
	"campusEvents/pkg/apperror"

	"github.com/google/uuid"
)

type FavoriteRepository interface {
	Exists(ctx context.Context, studentID, eventID uuid.UUID) (bool, error)
	Create(ctx context.Context, favorite *domain.Favorite) error
	Delete(ctx context.Context, studentID, eventID uuid.UUID) error
	// FindByStudent returns favorites with the event payload attached,
	// newest first.
	FindByStudent(ctx context.Context, studentID uuid.UUID, limit int) ([]domain.Favorite, error)
	CountByStudent(ctx context.Context, studentID uuid.UUID) (int64, error)
}

type EventRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (domain.Event, error)
}

type FavoriteService struct {
	repo   FavoriteRepository
	events EventRepository
}

func NewFavoriteService(repo FavoriteRepository, events EventRepository) *FavoriteService {
	return &FavoriteService{repo: repo, events: events}
}

// Add stores a favorite. Adding the same pair twice is a conflict, not a
// silent success.
func (s *FavoriteService) Add(ctx context.Context, studentID, eventID uuid.UUID) (domain.Favorite, error) {
	if err := ctx.Err(); err != nil {
		return domain.Favorite{}, fmt.Errorf("context error: %w", err)
	}

	if _, err := s.events.FindByID(ctx, eventID); err != nil {
		if apperror.IsNotFound(err) {
			return domain.Favorite{}, err
		}
		return domain.Favorite{}, apperror.Dependency("failed to load event", err)
	}

	exists, err := s.repo.Exists(ctx, studentID, eventID)
	if err != nil {
		return domain.Favorite{}, apperror.Dependency("failed to check favorite", err)
	}
	if exists {
		return domain.Favorite{}, apperror.Conflict("event is already in favorites")
	}

	favorite := domain.Favorite{StudentID: studentID, EventID: eventID}
	if err := s.repo.Create(ctx, &favorite); err != nil {
		if apperror.IsConflict(err) {
			return domain.Favorite{}, err
		}
		return domain.Favorite{}, apperror.Dependency("failed to add favorite", err)
	}

	return favorite, nil
}

func (s *FavoriteService) Remove(ctx context.Context, studentID, eventID uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := s.repo.Delete(ctx, studentID, eventID); err != nil {
		if apperror.IsNotFound(err) {
			return err
		}
		return apperror.Dependency("failed to remove favorite", err)
	}
	return nil
}

func (s *FavoriteService) ListByStudent(ctx context.Context, studentID uuid.UUID, limit int) ([]domain.Favorite, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	favorites, err := s.repo.FindByStudent(ctx, studentID, limit)
	if err != nil {
		return nil, apperror.Dependency("failed to list favorites", err)
	}
	return favorites, nil
}

func (s *FavoriteService) Count(ctx context.Context, studentID uuid.UUID) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("context error: %w", err)
	}

	count, err := s.repo.CountByStudent(ctx, studentID)
	if err != nil {
		return 0, apperror.Dependency("failed to count favorites", err)
	}
	return count, nil
}

// Check reports whether a pair is already stored.
func (s *FavoriteService) Check(ctx context.Context, studentID, eventID uuid.UUID) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("context error: %w", err)
	}

	exists, err := s.repo.Exists(ctx, studentID, eventID)
	if err != nil {
		return false, apperror.Dependency("failed to check favorite", err)
	}
	return exists, nil
}
