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

type StudentService interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Student, error)
	GetByParticipantID(ctx context.Context, participantID string) (domain.Student, error)
	List(ctx context.Context, limit, offset int) ([]domain.Student, error)
}

type StudentHandler struct {
	studentService StudentService
	validator      *validator.Validate
	timeout        time.Duration
}

func NewStudentHandler(studentService StudentService) *StudentHandler {
	return &StudentHandler{
		studentService: studentService,
		validator:      validator.New(),
		timeout:        10 * time.Second,
	}
}

func (h *StudentHandler) GetAllStudents(c echo.Context) error {
	limit, err := queryInt(c, "limit", 100)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid limit"})
	}

	offset, err := queryInt(c, "offset", 0)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid offset"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	students, err := h.studentService.List(ctx, limit, offset)
	if err != nil {
		logger.Error("Failed to list students", "error", err)
		return c.JSON(statusFromError(err), ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":  "successfully get all students",
		"students": students,
	})
}

func (h *StudentHandler) GetStudentByID(c echo.Context) error {
	studentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid student id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	student, err := h.studentService.GetByID(ctx, studentID)
	if err != nil {
		logger.Error("Failed to find student", "error", err)
		return c.JSON(statusFromError(err), ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "successfully get student",
		"student": student,
	})
}

func (h *StudentHandler) GetStudentByParticipantID(c echo.Context) error {
	participantID := c.Param("participant_id")

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	student, err := h.studentService.GetByParticipantID(ctx, participantID)
	if err != nil {
		logger.Error("Failed to find student by participant id", "error", err)
		return c.JSON(statusFromError(err), ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "successfully get student",
		"student": student,
	})
}
