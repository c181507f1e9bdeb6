package rest

import (
	"context"
	"net/http"
	"time"

	"campusEvents/domain"
	"campusEvents/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type FavoriteService interface {
	Add(ctx context.Context, studentID, eventID uuid.UUID) (domain.Favorite, error)
	Remove(ctx context.Context, studentID, eventID uuid.UUID) error
	ListByStudent(ctx context.Context, studentID uuid.UUID, limit int) ([]domain.Favorite, error)
	Count(ctx context.Context, studentID uuid.UUID) (int64, error)
	Check(ctx context.Context, studentID, eventID uuid.UUID) (bool, error)
}

type FavoriteHandler struct {
	favoriteService FavoriteService
	validator       *validator.Validate
	timeout         time.Duration
}

func NewFavoriteHandler(favoriteService FavoriteService) *FavoriteHandler {
	return &FavoriteHandler{
		favoriteService: favoriteService,
		validator:       validator.New(),
		timeout:         10 * time.Second,
	}
}

type AddFavoriteRequest struct {
	EventID string `json:"event_id" validate:"required,uuid"`
}

func (h *FavoriteHandler) AddFavorite(c echo.Context) error {
	studentID, err := uuid.Parse(c.Param("student_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid student id"})
	}

	var req AddFavoriteRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validator.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	eventID, err := uuid.Parse(req.EventID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid event id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	favorite, err := h.favoriteService.Add(ctx, studentID, eventID)
	if err != nil {
		logger.Error("Failed to add favorite", "error", err)
		return c.JSON(statusFromError(err), ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message":  "favorite successfully added",
		"favorite": favorite,
	})
}

func (h *FavoriteHandler) RemoveFavorite(c echo.Context) error {
	studentID, err := uuid.Parse(c.Param("student_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid student id"})
	}

	eventID, err := uuid.Parse(c.Param("event_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid event id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.favoriteService.Remove(ctx, studentID, eventID); err != nil {
		logger.Error("Failed to remove favorite", "error", err)
		return c.JSON(statusFromError(err), ResponseError{Message: err.Error()})
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *FavoriteHandler) GetFavorites(c echo.Context) error {
	studentID, err := uuid.Parse(c.Param("student_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid student id"})
	}

	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid limit"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	favorites, err := h.favoriteService.ListByStudent(ctx, studentID, limit)
	if err != nil {
		logger.Error("Failed to list favorites", "error", err)
		return c.JSON(statusFromError(err), ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":   "successfully get favorites",
		"favorites": favorites,
	})
}

func (h *FavoriteHandler) CountFavorites(c echo.Context) error {
	studentID, err := uuid.Parse(c.Param("student_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid student id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	count, err := h.favoriteService.Count(ctx, studentID)
	if err != nil {
		logger.Error("Failed to count favorites", "error", err)
		return c.JSON(statusFromError(err), ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "successfully count favorites",
		"count":   count,
	})
}

func (h *FavoriteHandler) CheckFavorite(c echo.Context) error {
	studentID, err := uuid.Parse(c.Param("student_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid student id"})
	}

	eventID, err := uuid.Parse(c.Param("event_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid event id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	exists, err := h.favoriteService.Check(ctx, studentID, eventID)
	if err != nil {
		logger.Error("Failed to check favorite", "error", err)
		return c.JSON(statusFromError(err), ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":     "successfully check favorite",
		"is_favorite": exists,
	})
}
