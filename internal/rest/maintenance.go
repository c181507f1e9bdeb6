package rest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"campusEvents/business/maintenance"
	"campusEvents/domain"
	"campusEvents/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type MaintenanceService interface {
	Info() maintenance.Result
	ProcessEventsCSV(ctx context.Context, inputPath, outputPath string) (maintenance.Result, error)
	LoadEventsJSON(ctx context.Context, params maintenance.LoadEventsParams) (maintenance.Result, error)
	ProcessStudentsExcel(ctx context.Context, inputPath, outputPath string) (maintenance.Result, error)
	LoadStudentsJSON(ctx context.Context, path string, limit int) (maintenance.Result, error)
	PreprocessDirections(ctx context.Context, inputPath, outputPath string) (maintenance.Result, error)
	ClusterizeDirections(ctx context.Context, forcePreprocess bool) (maintenance.Result, error)
	Recalculate(ctx context.Context, minScore float64, batchSize int) (maintenance.Result, error)
	ResetDatabase(ctx context.Context, confirm string) (maintenance.Result, error)
}

// RunHistory lists past maintenance runs for the audit endpoint.
type RunHistory interface {
	FindRecent(ctx context.Context, limit int) ([]domain.MaintenanceRun, error)
}

type MaintenanceHandler struct {
	maintenanceService MaintenanceService
	runs               RunHistory
	validator          *validator.Validate
	// ingest and recalculation runs need far more than an interactive request
	timeout    time.Duration
	uploadsDir string
}

func NewMaintenanceHandler(maintenanceService MaintenanceService, runs RunHistory, timeout time.Duration, uploadsDir string) *MaintenanceHandler {
	return &MaintenanceHandler{
		maintenanceService: maintenanceService,
		runs:               runs,
		validator:          validator.New(),
		timeout:            timeout,
		uploadsDir:         uploadsDir,
	}
}

// maintenanceError is the error payload shape for maintenance operations.
// The log survives even when the operation fails partway.
type maintenanceError struct {
	Detail struct {
		Message string `json:"message"`
		Log     string `json:"log,omitempty"`
	} `json:"detail"`
}

func newMaintenanceError(err error, log string) maintenanceError {
	var payload maintenanceError
	payload.Detail.Message = err.Error()
	payload.Detail.Log = log
	return payload
}

type ProcessFilesRequest struct {
	InputPath  string `json:"input_path"`
	OutputPath string `json:"output_path"`
}

type LoadEventsRequest struct {
	Path                string  `json:"path"`
	AssignClusters      bool    `json:"assign_clusters"`
	ClusterTopK         int     `json:"cluster_top_k" validate:"omitempty,min=1"`
	SimilarityThreshold float64 `json:"similarity_threshold" validate:"omitempty,min=0,max=1"`
	Limit               int     `json:"limit" validate:"omitempty,min=1"`
}

type LoadStudentsRequest struct {
	Path  string `json:"path"`
	Limit int    `json:"limit" validate:"omitempty,min=1"`
}

type ClusterizeRequest struct {
	ForcePreprocess bool `json:"force_preprocess"`
}

type ResetDatabaseRequest struct {
	Confirm string `json:"confirm"`
}

func (h *MaintenanceHandler) GetInfo(c echo.Context) error {
	return c.JSON(http.StatusOK, h.maintenanceService.Info())
}

func (h *MaintenanceHandler) ProcessEventsCSV(c echo.Context) error {
	req, err := h.bindProcessRequest(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, newMaintenanceError(err, ""))
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	result, err := h.maintenanceService.ProcessEventsCSV(ctx, req.InputPath, req.OutputPath)
	if err != nil {
		logger.Error("Failed to process events csv", "error", err)
		return c.JSON(statusFromError(err), newMaintenanceError(err, result.Log))
	}

	return c.JSON(http.StatusOK, result)
}

func (h *MaintenanceHandler) LoadEventsJSON(c echo.Context) error {
	var req LoadEventsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, newMaintenanceError(err, ""))
	}

	if err := h.validator.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, newMaintenanceError(err, ""))
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	result, err := h.maintenanceService.LoadEventsJSON(ctx, maintenance.LoadEventsParams{
		Path:                req.Path,
		AssignClusters:      req.AssignClusters,
		ClusterTopK:         req.ClusterTopK,
		SimilarityThreshold: req.SimilarityThreshold,
		Limit:               req.Limit,
	})
	if err != nil {
		logger.Error("Failed to load events json", "error", err)
		return c.JSON(statusFromError(err), newMaintenanceError(err, result.Log))
	}

	return c.JSON(http.StatusOK, result)
}

func (h *MaintenanceHandler) ProcessStudentsExcel(c echo.Context) error {
	req, err := h.bindProcessRequest(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, newMaintenanceError(err, ""))
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	result, err := h.maintenanceService.ProcessStudentsExcel(ctx, req.InputPath, req.OutputPath)
	if err != nil {
		logger.Error("Failed to process students excel", "error", err)
		return c.JSON(statusFromError(err), newMaintenanceError(err, result.Log))
	}

	return c.JSON(http.StatusOK, result)
}

func (h *MaintenanceHandler) LoadStudentsJSON(c echo.Context) error {
	var req LoadStudentsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, newMaintenanceError(err, ""))
	}

	if err := h.validator.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, newMaintenanceError(err, ""))
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	result, err := h.maintenanceService.LoadStudentsJSON(ctx, req.Path, req.Limit)
	if err != nil {
		logger.Error("Failed to load students json", "error", err)
		return c.JSON(statusFromError(err), newMaintenanceError(err, result.Log))
	}

	return c.JSON(http.StatusOK, result)
}

func (h *MaintenanceHandler) PreprocessDirections(c echo.Context) error {
	req, err := h.bindProcessRequest(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, newMaintenanceError(err, ""))
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	result, err := h.maintenanceService.PreprocessDirections(ctx, req.InputPath, req.OutputPath)
	if err != nil {
		logger.Error("Failed to preprocess directions", "error", err)
		return c.JSON(statusFromError(err), newMaintenanceError(err, result.Log))
	}

	return c.JSON(http.StatusOK, result)
}

func (h *MaintenanceHandler) ClusterizeDirections(c echo.Context) error {
	var req ClusterizeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, newMaintenanceError(err, ""))
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	result, err := h.maintenanceService.ClusterizeDirections(ctx, req.ForcePreprocess)
	if err != nil {
		logger.Error("Failed to clusterize directions", "error", err)
		return c.JSON(statusFromError(err), newMaintenanceError(err, result.Log))
	}

	return c.JSON(http.StatusOK, result)
}

func (h *MaintenanceHandler) Recalculate(c echo.Context) error {
	var req RecalculateAllRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, newMaintenanceError(err, ""))
	}

	if err := h.validator.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, newMaintenanceError(err, ""))
	}

	minScore := 0.0
	if req.MinScore != nil {
		minScore = *req.MinScore
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	result, err := h.maintenanceService.Recalculate(ctx, minScore, req.BatchSize)
	if err != nil {
		logger.Error("Failed to recalculate recommendations", "error", err)
		return c.JSON(statusFromError(err), newMaintenanceError(err, result.Log))
	}

	return c.JSON(http.StatusOK, result)
}

func (h *MaintenanceHandler) ResetDatabase(c echo.Context) error {
	var req ResetDatabaseRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, newMaintenanceError(err, ""))
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	result, err := h.maintenanceService.ResetDatabase(ctx, req.Confirm)
	if err != nil {
		logger.Error("Failed to reset database", "error", err)
		return c.JSON(statusFromError(err), newMaintenanceError(err, result.Log))
	}

	return c.JSON(http.StatusOK, result)
}

func (h *MaintenanceHandler) GetRuns(c echo.Context) error {
	limit, err := queryInt(c, "limit", 50)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid limit"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	runs, err := h.runs.FindRecent(ctx, limit)
	if err != nil {
		logger.Error("Failed to list maintenance runs", "error", err)
		return c.JSON(statusFromError(err), ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "successfully get maintenance runs",
		"runs":    runs,
	})
}

// bindProcessRequest accepts either a JSON body with server-side paths or
// a multipart upload whose file is saved under the uploads directory and
// used as the input path.
func (h *MaintenanceHandler) bindProcessRequest(c echo.Context) (ProcessFilesRequest, error) {
	var req ProcessFilesRequest

	contentType := c.Request().Header.Get(echo.HeaderContentType)
	if strings.HasPrefix(contentType, echo.MIMEMultipartForm) {
		saved, err := h.saveUpload(c)
		if err != nil {
			return req, err
		}
		req.InputPath = saved
		req.OutputPath = c.FormValue("output_path")
		return req, nil
	}

	if err := c.Bind(&req); err != nil {
		return req, err
	}
	return req, nil
}

func (h *MaintenanceHandler) saveUpload(c echo.Context) (string, error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return "", fmt.Errorf("missing file upload: %w", err)
	}

	src, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	if err := os.MkdirAll(h.uploadsDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create uploads directory: %w", err)
	}

	dest := filepath.Join(h.uploadsDir, filepath.Base(fileHeader.Filename))
	out, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		return "", fmt.Errorf("failed to save upload: %w", err)
	}

	return dest, nil
}
