package botusers

import (
	"context"
	"fmt"
	"time"

	"campusEvents/domain"
	"campusEvents/pkg/apperror"
)

type BotUserRepository interface {
	// FindByTelegramID loads the bot user with the linked student, when
	// one is attached.
	FindByTelegramID(ctx context.Context, telegramID int64) (domain.BotUser, error)
	Save(ctx context.Context, user *domain.BotUser) error
	Delete(ctx context.Context, telegramID int64) error
}

type StudentResolver interface {
	FindByParticipantID(ctx context.Context, participantID string) (domain.Student, error)
}

type BotUserService struct {
	repo     BotUserRepository
	students StudentResolver
}

func NewBotUserService(repo BotUserRepository, students StudentResolver) *BotUserService {
	return &BotUserService{repo: repo, students: students}
}

func (s *BotUserService) Get(ctx context.Context, telegramID int64) (domain.BotUser, error) {
	if err := ctx.Err(); err != nil {
		return domain.BotUser{}, fmt.Errorf("context error: %w", err)
	}

	user, err := s.repo.FindByTelegramID(ctx, telegramID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return domain.BotUser{}, err
		}
		return domain.BotUser{}, apperror.Dependency("failed to load bot user", err)
	}
	return user, nil
}

// Register creates or refreshes a bot user. A non-empty participant id
// links the user to the matching student.
func (s *BotUserService) Register(ctx context.Context, telegramID int64, username, email, participantID string) (domain.BotUser, error) {
	if err := ctx.Err(); err != nil {
		return domain.BotUser{}, fmt.Errorf("context error: %w", err)
	}

	user, err := s.repo.FindByTelegramID(ctx, telegramID)
	if err != nil && !apperror.IsNotFound(err) {
		return domain.BotUser{}, apperror.Dependency("failed to load bot user", err)
	}

	user.TelegramID = telegramID
	if username != "" {
		user.Username = username
	}
	if email != "" {
		user.Email = email
	}
	user.LastActivity = time.Now()

	if participantID != "" {
		student, err := s.students.FindByParticipantID(ctx, participantID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return domain.BotUser{}, err
			}
			return domain.BotUser{}, apperror.Dependency("failed to resolve student", err)
		}
		user.StudentID = &student.ID
		user.IsLinked = true
	}

	if err := s.repo.Save(ctx, &user); err != nil {
		return domain.BotUser{}, apperror.Dependency("failed to save bot user", err)
	}
	return user, nil
}

// TouchActivity bumps the user's last activity timestamp.
func (s *BotUserService) TouchActivity(ctx context.Context, telegramID int64) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	user, err := s.repo.FindByTelegramID(ctx, telegramID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return err
		}
		return apperror.Dependency("failed to load bot user", err)
	}

	user.LastActivity = time.Now()
	if err := s.repo.Save(ctx, &user); err != nil {
		return apperror.Dependency("failed to save bot user", err)
	}
	return nil
}

func (s *BotUserService) Delete(ctx context.Context, telegramID int64) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := s.repo.Delete(ctx, telegramID); err != nil {
		if apperror.IsNotFound(err) {
			return err
		}
		return apperror.Dependency("failed to delete bot user", err)
	}
	return nil
}
