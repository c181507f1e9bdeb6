package rest

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"campusEvents/domain"
	"campusEvents/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type EventService interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Event, error)
	ListActive(ctx context.Context, limit int) ([]domain.Event, error)
	Bulk(ctx context.Context, ids []uuid.UUID) ([]domain.Event, error)
	ListByClusters(ctx context.Context, clusterIDs []uuid.UUID, limit int) ([]domain.Event, error)
	Like(ctx context.Context, id uuid.UUID) (domain.Event, error)
	Dislike(ctx context.Context, id uuid.UUID) (domain.Event, error)
}

type EventHandler struct {
	eventService EventService
	validator    *validator.Validate
	timeout      time.Duration
}

func NewEventHandler(eventService EventService) *EventHandler {
	return &EventHandler{
		eventService: eventService,
		validator:    validator.New(),
		timeout:      10 * time.Second,
	}
}

type BulkEventsRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,dive,uuid"`
}

type EventsByClustersRequest struct {
	ClusterIDs []string `json:"cluster_ids" validate:"required,min=1,dive,uuid"`
	Limit      int      `json:"limit" validate:"omitempty,min=1"`
}

func (h *EventHandler) GetActiveEvents(c echo.Context) error {
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid limit"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	events, err := h.eventService.ListActive(ctx, limit)
	if err != nil {
		logger.Error("Failed to list active events", "error", err)
		return c.JSON(statusFromError(err), ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "successfully get active events",
		"events":  events,
	})
}

func (h *EventHandler) GetEventByID(c echo.Context) error {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid event id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	event, err := h.eventService.GetByID(ctx, eventID)
	if err != nil {
		logger.Error("Failed to find event", "error", err)
		return c.JSON(statusFromError(err), ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "successfully get event",
		"event":   event,
	})
}

func (h *EventHandler) GetEventsBulk(c echo.Context) error {
	var req BulkEventsRequest

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validator.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ids, err := parseUUIDs(req.IDs)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	events, err := h.eventService.Bulk(ctx, ids)
	if err != nil {
		logger.Error("Failed to load events bulk", "error", err)
		return c.JSON(statusFromError(err), ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "successfully get events",
		"events":  events,
	})
}

func (h *EventHandler) GetEventsByClusters(c echo.Context) error {
	var req EventsByClustersRequest

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validator.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	clusterIDs, err := parseUUIDs(req.ClusterIDs)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	events, err := h.eventService.ListByClusters(ctx, clusterIDs, req.Limit)
	if err != nil {
		logger.Error("Failed to list events by clusters", "error", err)
		return c.JSON(statusFromError(err), ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "successfully get events by clusters",
		"events":  events,
	})
}

func (h *EventHandler) LikeEvent(c echo.Context) error {
	return h.react(c, h.eventService.Like, "event liked")
}

func (h *EventHandler) DislikeEvent(c echo.Context) error {
	return h.react(c, h.eventService.Dislike, "event disliked")
}

func (h *EventHandler) react(c echo.Context, fn func(context.Context, uuid.UUID) (domain.Event, error), message string) error {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid event id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	event, err := fn(ctx, eventID)
	if err != nil {
		logger.Error("Failed to record event reaction", "error", err)
		return c.JSON(statusFromError(err), ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": message,
		"event":   event,
	})
}

func parseUUIDs(raw []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func queryInt(c echo.Context, name string, defaultVal int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return defaultVal, nil
	}
	return strconv.Atoi(raw)
}
