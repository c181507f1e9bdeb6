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

type FeedbackService interface {
	Submit(ctx context.Context, studentID uuid.UUID, rating int, comment string) (domain.Feedback, error)
	ListByStudent(ctx context.Context, studentID uuid.UUID, limit int) ([]domain.Feedback, error)
}

type FeedbackHandler struct {
	feedbackService FeedbackService
	validator       *validator.Validate
	timeout         time.Duration
}

func NewFeedbackHandler(feedbackService FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{
		feedbackService: feedbackService,
		validator:       validator.New(),
		timeout:         10 * time.Second,
	}
}

type SubmitFeedbackRequest struct {
	StudentID string `json:"student_id" validate:"required,uuid"`
	Rating    int    `json:"rating" validate:"required,min=1,max=5"`
	Comment   string `json:"comment"`
}

func (h *FeedbackHandler) SubmitFeedback(c echo.Context) error {
	var req SubmitFeedbackRequest

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validator.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	studentID, err := uuid.Parse(req.StudentID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid student id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	feedback, err := h.feedbackService.Submit(ctx, studentID, req.Rating, req.Comment)
	if err != nil {
		logger.Error("Failed to submit feedback", "error", err)
		return c.JSON(statusFromError(err), ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message":  "feedback successfully submitted",
		"feedback": feedback,
	})
}

func (h *FeedbackHandler) GetFeedbackByStudent(c echo.Context) error {
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

	feedback, err := h.feedbackService.ListByStudent(ctx, studentID, limit)
	if err != nil {
		logger.Error("Failed to list feedback", "error", err)
		return c.JSON(statusFromError(err), ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":  "successfully get feedback",
		"feedback": feedback,
	})
}
