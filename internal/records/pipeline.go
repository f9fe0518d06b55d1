package records

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/liftlog/internal/models"
)

// Store is the persistence surface the write pipeline needs.
type Store interface {
	// ExerciseHistory returns all sets from the user's workouts with a start
	// time strictly before the given time, excluding the workout with the
	// given ID, grouped by exercise name.
	ExerciseHistory(ctx context.Context, userID int, before time.Time, exclude uuid.UUID) (History, error)

	// SaveWorkout upserts the workout (full replace of its exercise list) and
	// replaces its record rows with recs, atomically.
	SaveWorkout(ctx context.Context, w *models.Workout, recs []models.PersonalRecord) error

	// ListWorkouts returns all of the user's workouts ordered by start time
	// ascending.
	ListWorkouts(ctx context.Context, userID int) ([]models.Workout, error)
}

// Pipeline orchestrates workout writes: load history, annotate, persist the
// workout body with its derived record rows.
type Pipeline struct {
	store Store
	log   *slog.Logger
}

// NewPipeline creates a write pipeline over the given store.
func NewPipeline(store Store, log *slog.Logger) *Pipeline {
	return &Pipeline{store: store, log: log}
}

// Submit annotates and persists a workout. Works for both creation and edit:
// history excludes the workout's own ID, so an edit is never compared against
// its unmodified copy, and excludes any workout starting at or after this
// one's start time, so submission order does not affect the outcome.
func (p *Pipeline) Submit(ctx context.Context, userID int, w *models.Workout) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	w.UserID = userID

	history, err := p.store.ExerciseHistory(ctx, userID, w.StartTime, w.ID)
	if err != nil {
		return fmt.Errorf("loading exercise history: %w", err)
	}

	Annotate(w, history)
	recs := RecordsFor(w)

	if err := p.store.SaveWorkout(ctx, w, recs); err != nil {
		return fmt.Errorf("saving workout: %w", err)
	}

	p.log.Info("workout saved", "workout_id", w.ID, "user_id", userID,
		"exercises", len(w.Exercises), "records", len(recs))
	return nil
}

// Rebuild replays the user's entire workout history in chronological order,
// recomputing every flag and record row from raw sets alone. The record table
// is a materialized view of the sets; this is its regeneration procedure.
// Returns the number of workouts rewritten.
func (p *Pipeline) Rebuild(ctx context.Context, userID int) (int, error) {
	workouts, err := p.store.ListWorkouts(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("listing workouts: %w", err)
	}
	sort.SliceStable(workouts, func(i, j int) bool {
		return workouts[i].StartTime.Before(workouts[j].StartTime)
	})

	for i := range workouts {
		w := &workouts[i]

		// Only strictly earlier workouts count; two sessions sharing a start
		// time do not see each other.
		history := make(History)
		for j := range workouts[:i] {
			if !workouts[j].StartTime.Before(w.StartTime) {
				continue
			}
			for _, ex := range workouts[j].Exercises {
				history[ex.Name] = append(history[ex.Name], ex.Sets...)
			}
		}

		Annotate(w, history)
		if err := p.store.SaveWorkout(ctx, w, RecordsFor(w)); err != nil {
			return i, fmt.Errorf("rebuilding workout %s: %w", w.ID, err)
		}
	}

	p.log.Info("records rebuilt", "user_id", userID, "workouts", len(workouts))
	return len(workouts), nil
}
