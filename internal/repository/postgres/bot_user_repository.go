package postgres

import (
	"context"
	"errors"
	"fmt"

	"campusEvents/domain"
	"campusEvents/pkg/apperror"

	"gorm.io/gorm"
)

type BotUserRepository struct {
	DB *gorm.DB
}

func NewBotUserRepository(db *gorm.DB) *BotUserRepository {
	return &BotUserRepository{
		DB: db,
	}
}

func (r *BotUserRepository) FindByTelegramID(ctx context.Context, telegramID int64) (domain.BotUser, error) {
	if err := ctx.Err(); err != nil {
		return domain.BotUser{}, fmt.Errorf("context error: %w", err)
	}

	var user domain.BotUser
	err := r.DB.WithContext(ctx).
		Preload("Student").
		Preload("Student.Direction").
		First(&user, "telegram_id = ?", telegramID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.BotUser{}, apperror.NotFound("bot user not found")
		}
		return domain.BotUser{}, fmt.Errorf("failed to find bot user: %w", err)
	}

	return user, nil
}

func (r *BotUserRepository) Save(ctx context.Context, user *domain.BotUser) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Save(user).Error; err != nil {
		return fmt.Errorf("failed to save bot user: %w", err)
	}

	return nil
}

func (r *BotUserRepository) Delete(ctx context.Context, telegramID int64) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	result := r.DB.WithContext(ctx).Delete(&domain.BotUser{}, "telegram_id = ?", telegramID)
	if result.Error != nil {
		return fmt.Errorf("failed to delete bot user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("bot user not found")
	}

	return nil
}
