package maintenance

import (
	"context"
	"fmt"
	"os"
	"strings"

	"campusEvents/business/clustering"
	"campusEvents/business/ingest"
	"campusEvents/business/recommend"
	"campusEvents/domain"
	"campusEvents/pkg/apperror"
	"campusEvents/pkg/logger"
	"campusEvents/pkg/metrics"

	"gorm.io/datatypes"
)

// ResetToken is the literal confirmation a database reset demands.
const ResetToken = "RESET"

// Operation names, stable across the HTTP surface and the audit trail.
const (
	OpProcessCSV           = "process-csv"
	OpLoadJSON             = "load-json"
	OpProcessStudents      = "process-students"
	OpLoadStudents         = "load-students"
	OpPreprocessDirections = "preprocess-directions"
	OpClusterizeDirections = "clusterize-directions"
	OpRecalculate          = "recalculate"
	OpResetDatabase        = "reset-database"
)

// ---- Collaborator interfaces ----

type EventProcessor interface {
	ProcessCSV(ctx context.Context, inputPath, outputPath string) (ingest.ProcessEventsStats, error)
}

type EventLoader interface {
	LoadJSON(ctx context.Context, path string, opts ingest.LoadEventsOptions) (ingest.LoadStats, error)
}

type StudentProcessor interface {
	ProcessExcel(ctx context.Context, inputPath, outputPath string) (ingest.ProcessStudentsStats, error)
}

type StudentLoader interface {
	LoadJSON(ctx context.Context, path string, limit int) (ingest.LoadStats, error)
}

type DirectionPreprocessor interface {
	PreprocessExcel(inputPath, outputPath string) (ingest.PreprocessStats, error)
}

type DirectionClusterizer interface {
	ClusterizeDirections(ctx context.Context, titles []string, force bool) (clustering.ClusterizeStats, error)
}

type Recalculator interface {
	RecalculateAll(ctx context.Context, minScore float64, batchSize int) (recommend.RecalculateStats, error)
}

// DatabaseResetter truncates every table in foreign-key order.
type DatabaseResetter interface {
	Reset(ctx context.Context) error
}

type RunRecorder interface {
	Record(ctx context.Context, run *domain.MaintenanceRun) error
}

// Paths are the server-side default locations for source and processed
// files; a request can always override them.
type Paths struct {
	EventsInput      string
	EventsOutput     string
	StudentsInput    string
	StudentsOutput   string
	DirectionsInput  string
	DirectionsOutput string
}

// Defaults reported by Info alongside the paths.
type Defaults struct {
	ClusterTopK         int
	SimilarityThreshold float64
}

// Result is what every maintenance operation returns, even on partial
// success.
type Result struct {
	Message string         `json:"message"`
	Stats   map[string]any `json:"stats,omitempty"`
	Log     string         `json:"log,omitempty"`
}

// Service wraps the ingestion, clustering and recommendation pipelines as
// named administrative operations with an audit trail.
type Service struct {
	events      EventProcessor
	eventLoader EventLoader
	students    StudentProcessor
	studentLoad StudentLoader
	directions  DirectionPreprocessor
	clusterizer DirectionClusterizer
	recommender Recalculator
	resetter    DatabaseResetter
	runs        RunRecorder
	paths       Paths
	defaults    Defaults
}

func NewService(
	events EventProcessor,
	eventLoader EventLoader,
	students StudentProcessor,
	studentLoad StudentLoader,
	directions DirectionPreprocessor,
	clusterizer DirectionClusterizer,
	recommender Recalculator,
	resetter DatabaseResetter,
	runs RunRecorder,
	paths Paths,
	defaults Defaults,
) *Service {
	return &Service{
		events:      events,
		eventLoader: eventLoader,
		students:    students,
		studentLoad: studentLoad,
		directions:  directions,
		clusterizer: clusterizer,
		recommender: recommender,
		resetter:    resetter,
		runs:        runs,
		paths:       paths,
		defaults:    defaults,
	}
}

// Info reports the configured paths and clustering defaults.
func (s *Service) Info() Result {
	return Result{
		Message: "maintenance configuration",
		Stats: map[string]any{
			"events_input_file":            s.paths.EventsInput,
			"events_output_file":           s.paths.EventsOutput,
			"students_input_file":          s.paths.StudentsInput,
			"students_output_file":         s.paths.StudentsOutput,
			"directions_input_file":        s.paths.DirectionsInput,
			"directions_output_file":       s.paths.DirectionsOutput,
			"cluster_top_k_default":        s.defaults.ClusterTopK,
			"similarity_threshold_default": s.defaults.SimilarityThreshold,
		},
	}
}

// ProcessEventsCSV normalizes a raw events export into the processed JSON
// file. Empty paths fall back to the configured defaults.
func (s *Service) ProcessEventsCSV(ctx context.Context, inputPath, outputPath string) (Result, error) {
	inputPath = orDefault(inputPath, s.paths.EventsInput)
	outputPath = orDefault(outputPath, s.paths.EventsOutput)

	log := newOpLog()
	log.Add("reading events from %s", inputPath)

	stats, err := s.events.ProcessCSV(ctx, inputPath, outputPath)
	if err != nil {
		return s.finish(ctx, OpProcessCSV, Result{Log: log.String()}, err)
	}

	log.Add("processed %d events, %d malformed rows excluded", stats.Processed, stats.Malformed)
	log.Add("saved to %s", outputPath)

	return s.finish(ctx, OpProcessCSV, Result{
		Message: fmt.Sprintf("processed %d events", stats.Processed),
		Stats: map[string]any{
			"processed":   stats.Processed,
			"malformed":   stats.Malformed,
			"input_file":  inputPath,
			"output_file": outputPath,
		},
		Log: log.String(),
	}, nil)
}

type LoadEventsParams struct {
	Path                string
	AssignClusters      bool
	ClusterTopK         int
	SimilarityThreshold float64
	Limit               int
}

// LoadEventsJSON inserts processed events into the store.
func (s *Service) LoadEventsJSON(ctx context.Context, params LoadEventsParams) (Result, error) {
	path := orDefault(params.Path, s.paths.EventsOutput)
	topK := params.ClusterTopK
	if topK <= 0 {
		topK = s.defaults.ClusterTopK
	}
	threshold := params.SimilarityThreshold
	if threshold <= 0 {
		threshold = s.defaults.SimilarityThreshold
	}

	log := newOpLog()
	log.Add("loading events from %s", path)

	stats, err := s.eventLoader.LoadJSON(ctx, path, ingest.LoadEventsOptions{
		AssignClusters:      params.AssignClusters,
		ClusterTopK:         topK,
		SimilarityThreshold: threshold,
		Limit:               params.Limit,
	})
	if err != nil {
		return s.finish(ctx, OpLoadJSON, Result{Log: log.String()}, err)
	}

	log.Add("added %d, skipped %d of %d events", stats.Added, stats.Skipped, stats.Total)

	return s.finish(ctx, OpLoadJSON, Result{
		Message: fmt.Sprintf("added %d, skipped %d of %d events", stats.Added, stats.Skipped, stats.Total),
		Stats: map[string]any{
			"added":                stats.Added,
			"skipped":              stats.Skipped,
			"total_in_file":        stats.Total,
			"assign_clusters":      params.AssignClusters,
			"cluster_top_k":        topK,
			"similarity_threshold": threshold,
			"output_file":          path,
		},
		Log: log.String(),
	}, nil)
}

// ProcessStudentsExcel normalizes the raw assessment export and embeds
// student profiles.
func (s *Service) ProcessStudentsExcel(ctx context.Context, inputPath, outputPath string) (Result, error) {
	inputPath = orDefault(inputPath, s.paths.StudentsInput)
	outputPath = orDefault(outputPath, s.paths.StudentsOutput)

	log := newOpLog()
	log.Add("reading students from %s", inputPath)

	stats, err := s.students.ProcessExcel(ctx, inputPath, outputPath)
	if err != nil {
		return s.finish(ctx, OpProcessStudents, Result{Log: log.String()}, err)
	}

	log.Add("processed %d students, skipped %d", stats.Processed, stats.Skipped)
	log.Add("saved to %s", outputPath)

	return s.finish(ctx, OpProcessStudents, Result{
		Message: fmt.Sprintf("processed %d students", stats.Processed),
		Stats: map[string]any{
			"processed":   stats.Processed,
			"skipped":     stats.Skipped,
			"input_file":  inputPath,
			"output_file": outputPath,
		},
		Log: log.String(),
	}, nil)
}

// LoadStudentsJSON inserts processed students into the store.
func (s *Service) LoadStudentsJSON(ctx context.Context, path string, limit int) (Result, error) {
	path = orDefault(path, s.paths.StudentsOutput)

	log := newOpLog()
	log.Add("loading students from %s", path)

	stats, err := s.studentLoad.LoadJSON(ctx, path, limit)
	if err != nil {
		return s.finish(ctx, OpLoadStudents, Result{Log: log.String()}, err)
	}

	log.Add("added %d, skipped %d of %d students", stats.Added, stats.Skipped, stats.Total)

	return s.finish(ctx, OpLoadStudents, Result{
		Message: fmt.Sprintf("added %d, skipped %d of %d students", stats.Added, stats.Skipped, stats.Total),
		Stats: map[string]any{
			"added":         stats.Added,
			"skipped":       stats.Skipped,
			"total_in_file": stats.Total,
			"input_file":    path,
		},
		Log: log.String(),
	}, nil)
}

// PreprocessDirections filters the raw assessment export for the
// directions pipeline.
func (s *Service) PreprocessDirections(ctx context.Context, inputPath, outputPath string) (Result, error) {
	inputPath = orDefault(inputPath, s.paths.DirectionsInput)
	outputPath = orDefault(outputPath, s.paths.DirectionsOutput)

	log := newOpLog()
	log.Add("preprocessing %s", inputPath)

	stats, err := s.directions.PreprocessExcel(inputPath, outputPath)
	if err != nil {
		return s.finish(ctx, OpPreprocessDirections, Result{Log: log.String()}, err)
	}

	log.Add("kept %d rows, %d columns", stats.Rows, stats.Columns)
	log.Add("saved to %s", outputPath)

	return s.finish(ctx, OpPreprocessDirections, Result{
		Message: fmt.Sprintf("kept %d rows", stats.Rows),
		Stats: map[string]any{
			"rows":        stats.Rows,
			"columns":     stats.Columns,
			"input_file":  inputPath,
			"output_file": outputPath,
		},
		Log: log.String(),
	}, nil)
}

// ClusterizeDirections rebuilds the cluster and direction taxonomy from
// the filtered assessment file. forcePreprocess reruns the preprocessing
// stage first; it is also implied when the filtered file does not exist.
func (s *Service) ClusterizeDirections(ctx context.Context, forcePreprocess bool) (Result, error) {
	log := newOpLog()

	if forcePreprocess || !fileExists(s.paths.DirectionsOutput) {
		log.Add("preprocessing %s", s.paths.DirectionsInput)
		stats, err := s.directions.PreprocessExcel(s.paths.DirectionsInput, s.paths.DirectionsOutput)
		if err != nil {
			return s.finish(ctx, OpClusterizeDirections, Result{Log: log.String()}, err)
		}
		log.Add("kept %d rows", stats.Rows)
	}

	titles, err := ingest.DirectionTitles(s.paths.DirectionsOutput)
	if err != nil {
		return s.finish(ctx, OpClusterizeDirections, Result{Log: log.String()}, err)
	}
	log.Add("clustering %d direction titles", len(titles))

	stats, err := s.clusterizer.ClusterizeDirections(ctx, titles, forcePreprocess)
	if err != nil {
		return s.finish(ctx, OpClusterizeDirections, Result{Log: log.String()}, err)
	}

	message := "directions clusterized"
	if stats.Skipped {
		message = "no new directions, clusterization skipped"
		log.Add("no new directions found")
	} else {
		log.Add("created %d clusters for %d directions", stats.ClustersCreated, stats.DirectionsCreated)
	}

	return s.finish(ctx, OpClusterizeDirections, Result{
		Message: message,
		Stats: map[string]any{
			"directions_total":   stats.DirectionsTotal,
			"new_directions":     stats.NewDirections,
			"clusters_created":   stats.ClustersCreated,
			"directions_created": stats.DirectionsCreated,
			"skipped":            stats.Skipped,
		},
		Log: log.String(),
	}, nil)
}

// Recalculate rebuilds recommendations for every embedded student.
func (s *Service) Recalculate(ctx context.Context, minScore float64, batchSize int) (Result, error) {
	log := newOpLog()
	log.Add("recalculating recommendations, min_score=%.2f batch_size=%d", minScore, batchSize)

	stats, err := s.recommender.RecalculateAll(ctx, minScore, batchSize)
	if err != nil {
		return s.finish(ctx, OpRecalculate, Result{Log: log.String()}, err)
	}

	log.Add("students processed: %d, failed: %d", stats.StudentsProcessed, stats.StudentsFailed)
	log.Add("recommendations saved: %d of %d calculated", stats.TotalSaved, stats.TotalCalculated)

	return s.finish(ctx, OpRecalculate, Result{
		Message: fmt.Sprintf("recalculated recommendations for %d students", stats.StudentsProcessed),
		Stats: map[string]any{
			"total_calculated":   stats.TotalCalculated,
			"total_saved":        stats.TotalSaved,
			"students_processed": stats.StudentsProcessed,
			"students_failed":    stats.StudentsFailed,
			"events_processed":   stats.EventsProcessed,
		},
		Log: log.String(),
	}, nil)
}

// ResetDatabase truncates every table. It refuses to run unless confirm
// equals the literal reset token; nothing destructive executes otherwise.
func (s *Service) ResetDatabase(ctx context.Context, confirm string) (Result, error) {
	if confirm != ResetToken {
		return Result{}, apperror.Confirmation(
			fmt.Sprintf("database reset requires the confirmation token %q", ResetToken),
		)
	}

	log := newOpLog()
	log.Add("truncating all tables")

	if err := s.resetter.Reset(ctx); err != nil {
		return s.finish(ctx, OpResetDatabase, Result{Log: log.String()}, err)
	}

	log.Add("database reset complete")

	return s.finish(ctx, OpResetDatabase, Result{
		Message: "database reset",
		Log:     log.String(),
	}, nil)
}

// finish records the audit row and the operation metric, then hands the
// result (or the original error) back.
func (s *Service) finish(ctx context.Context, op string, result Result, opErr error) (Result, error) {
	status := "success"
	summary := result.Message
	if opErr != nil {
		status = "error"
		summary = opErr.Error()
	}

	metrics.MaintenanceRunsTotal.WithLabelValues(op, status).Inc()

	if s.runs != nil {
		run := domain.MaintenanceRun{
			Operation: op,
			Status:    status,
			Summary:   summary,
			Stats:     datatypes.JSONMap(result.Stats),
			Log:       result.Log,
		}
		if err := s.runs.Record(ctx, &run); err != nil {
			logger.Error("failed to record maintenance run", "operation", op, "error", err)
		}
	}

	if opErr != nil {
		return result, opErr
	}
	return result, nil
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ---- op log ----

type opLog struct {
	lines []string
}

func newOpLog() *opLog {
	return &opLog{}
}

func (l *opLog) Add(format string, args ...any) {
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

func (l *opLog) String() string {
	return strings.Join(l.lines, "\n")
}
