package rest

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"campusEvents/business/recommend"
	"campusEvents/domain"
	"campusEvents/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type RecommendService interface {
	Get(ctx context.Context, studentID uuid.UUID, limit int) ([]domain.Recommendation, error)
	RecalculateForStudent(ctx context.Context, studentID uuid.UUID, minScore float64, limit int) (recommend.RecalculateStats, error)
	RecalculateAll(ctx context.Context, minScore float64, batchSize int) (recommend.RecalculateStats, error)
	Delete(ctx context.Context, id uint64) error
}

type RecommendationHandler struct {
	recommendService RecommendService
	validator        *validator.Validate
	timeout          time.Duration
	// recalculating every student can far outlive an interactive request
	recalcTimeout time.Duration
	defaultLimit  int
	minScore      float64
}

func NewRecommendationHandler(recommendService RecommendService, recalcTimeout time.Duration, defaultLimit int, minScore float64) *RecommendationHandler {
	if defaultLimit <= 0 {
		defaultLimit = 10
	}

	return &RecommendationHandler{
		recommendService: recommendService,
		validator:        validator.New(),
		timeout:          10 * time.Second,
		recalcTimeout:    recalcTimeout,
		defaultLimit:     defaultLimit,
		minScore:         minScore,
	}
}

type RecalculateStudentRequest struct {
	MinScore *float64 `json:"min_score" validate:"omitempty,min=-1,max=1"`
	Limit    int      `json:"limit" validate:"omitempty,min=1"`
}

type RecalculateAllRequest struct {
	MinScore  *float64 `json:"min_score" validate:"omitempty,min=-1,max=1"`
	BatchSize int      `json:"batch_size" validate:"omitempty,min=1"`
}

func (h *RecommendationHandler) GetRecommendations(c echo.Context) error {
	studentID, err := uuid.Parse(c.Param("student_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid student id"})
	}

	limit, err := queryInt(c, "limit", h.defaultLimit)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid limit"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	recs, err := h.recommendService.Get(ctx, studentID, limit)
	if err != nil {
		logger.Error("Failed to get recommendations", "error", err)
		return c.JSON(statusFromError(err), ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":         "successfully get recommendations",
		"recommendations": recs,
	})
}

func (h *RecommendationHandler) RecalculateForStudent(c echo.Context) error {
	studentID, err := uuid.Parse(c.Param("student_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid student id"})
	}

	var req RecalculateStudentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validator.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	minScore := h.minScore
	if req.MinScore != nil {
		minScore = *req.MinScore
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.recalcTimeout)
	defer cancel()

	stats, err := h.recommendService.RecalculateForStudent(ctx, studentID, minScore, req.Limit)
	if err != nil {
		logger.Error("Failed to recalculate recommendations for student", "error", err)
		return c.JSON(statusFromError(err), ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "recommendations successfully recalculated",
		"stats":   stats,
	})
}

func (h *RecommendationHandler) RecalculateAll(c echo.Context) error {
	var req RecalculateAllRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validator.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	minScore := h.minScore
	if req.MinScore != nil {
		minScore = *req.MinScore
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.recalcTimeout)
	defer cancel()

	stats, err := h.recommendService.RecalculateAll(ctx, minScore, req.BatchSize)
	if err != nil {
		logger.Error("Failed to recalculate all recommendations", "error", err)
		return c.JSON(statusFromError(err), ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "recommendations successfully recalculated",
		"stats":   stats,
	})
}

func (h *RecommendationHandler) DeleteRecommendation(c echo.Context) error {
	recommendationID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid recommendation id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.recommendService.Delete(ctx, recommendationID); err != nil {
		logger.Error("Failed to delete recommendation", "error", err)
		return c.JSON(statusFromError(err), ResponseError{Message: err.Error()})
	}

	return c.NoContent(http.StatusNoContent)
}
