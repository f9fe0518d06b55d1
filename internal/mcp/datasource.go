package mcp

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/liftlog/internal/models"
	"github.com/meltforce/liftlog/internal/records"
	"github.com/meltforce/liftlog/internal/storage"
)

// DataSource abstracts the data layer for MCP tools. Both LocalSource (direct
// database access) and HTTPClient (remote via REST API) satisfy this
// interface.
type DataSource interface {
	QueryWorkouts(ctx context.Context, userID int, start, end time.Time) ([]models.Workout, error)
	GetWorkout(ctx context.Context, userID int, id uuid.UUID) (*models.Workout, error)
	CurrentRecords(ctx context.Context, userID int, exercise string) ([]models.PersonalRecord, error)
	ExerciseSetHistory(ctx context.Context, userID int, exercise string) ([]storage.ExerciseSetEntry, error)
	ListExercises(ctx context.Context, userID int) ([]models.Exercise, error)
	GetTrainingStats(ctx context.Context, userID int) (*storage.TrainingStats, error)
	SubmitWorkout(ctx context.Context, userID int, w *models.Workout) error
}

// LocalSource serves MCP tools straight from the database, running workout
// writes through the same pipeline the HTTP handlers use.
type LocalSource struct {
	*storage.DB
	pipeline *records.Pipeline
}

// NewLocalSource wraps a DB with a write pipeline.
func NewLocalSource(db *storage.DB, log *slog.Logger) *LocalSource {
	return &LocalSource{DB: db, pipeline: records.NewPipeline(db, log)}
}

// SubmitWorkout annotates and persists a workout.
func (s *LocalSource) SubmitWorkout(ctx context.Context, userID int, w *models.Workout) error {
	return s.pipeline.Submit(ctx, userID, w)
}

// Compile-time check: *LocalSource satisfies DataSource.
var _ DataSource = (*LocalSource)(nil)
