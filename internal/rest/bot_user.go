package rest

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"campusEvents/domain"
	"campusEvents/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type BotUserService interface {
	Get(ctx context.Context, telegramID int64) (domain.BotUser, error)
	Register(ctx context.Context, telegramID int64, username, email, participantID string) (domain.BotUser, error)
	TouchActivity(ctx context.Context, telegramID int64) error
	Delete(ctx context.Context, telegramID int64) error
}

type BotUserHandler struct {
	botUserService BotUserService
	validator      *validator.Validate
	timeout        time.Duration
}

func NewBotUserHandler(botUserService BotUserService) *BotUserHandler {
	return &BotUserHandler{
		botUserService: botUserService,
		validator:      validator.New(),
		timeout:        10 * time.Second,
	}
}

type RegisterBotUserRequest struct {
	TelegramID    int64  `json:"telegram_id" validate:"required"`
	Username      string `json:"username"`
	Email         string `json:"email" validate:"omitempty,email"`
	ParticipantID string `json:"participant_id"`
}

func (h *BotUserHandler) GetBotUser(c echo.Context) error {
	telegramID, err := strconv.ParseInt(c.Param("telegram_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid telegram id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	user, err := h.botUserService.Get(ctx, telegramID)
	if err != nil {
		logger.Error("Failed to find bot user", "error", err)
		return c.JSON(statusFromError(err), ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(user))
}

func (h *BotUserHandler) RegisterBotUser(c echo.Context) error {
	var req RegisterBotUserRequest

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validator.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	user, err := h.botUserService.Register(ctx, req.TelegramID, req.Username, req.Email, req.ParticipantID)
	if err != nil {
		logger.Error("Failed to register bot user", "error", err)
		return c.JSON(statusFromError(err), ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(user))
}

func (h *BotUserHandler) TouchBotUserActivity(c echo.Context) error {
	telegramID, err := strconv.ParseInt(c.Param("telegram_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid telegram id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.botUserService.TouchActivity(ctx, telegramID); err != nil {
		logger.Error("Failed to update bot user activity", "error", err)
		return c.JSON(statusFromError(err), ResponseError{Message: err.Error()})
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *BotUserHandler) DeleteBotUser(c echo.Context) error {
	telegramID, err := strconv.ParseInt(c.Param("telegram_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid telegram id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.botUserService.Delete(ctx, telegramID); err != nil {
		logger.Error("Failed to delete bot user", "error", err)
		return c.JSON(statusFromError(err), ResponseError{Message: err.Error()})
	}

	return c.NoContent(http.StatusNoContent)
}
