package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/meltforce/liftlog/internal/models"
	"github.com/meltforce/liftlog/internal/records"
)

// ErrWorkoutNotFound is returned when a workout lookup matches no row.
var ErrWorkoutNotFound = errors.New("workout not found")

// SaveWorkout upserts a workout (full replace of its exercise list, PR flags
// embedded in the exercises JSON) and replaces its personal-record rows with
// recs, in one transaction. Implements records.Store.
func (db *DB) SaveWorkout(ctx context.Context, w *models.Workout, recs []models.PersonalRecord) error {
	exercises, err := json.Marshal(w.Exercises)
	if err != nil {
		return fmt.Errorf("marshaling exercises: %w", err)
	}

	return db.withTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO workouts (id, user_id, start_time, end_time, exercises)
			 VALUES ($1,$2,$3,$4,$5)
			 ON CONFLICT (id) DO UPDATE
				SET start_time = $3, end_time = $4, exercises = $5
				WHERE workouts.user_id = $2
			 RETURNING created_at`,
			w.ID, w.UserID, w.StartTime, w.EndTime, exercises,
		).Scan(&w.CreatedAt)
		if err != nil {
			return fmt.Errorf("upserting workout: %w", err)
		}

		// Record rows are derived from this workout's sets; regenerate them
		// wholesale so rows never outlive their source set.
		if _, err := tx.Exec(ctx,
			`DELETE FROM personal_records WHERE workout_id = $1`, w.ID); err != nil {
			return fmt.Errorf("clearing workout records: %w", err)
		}
		return insertRecords(ctx, tx, recs)
	})
}

// GetWorkout retrieves a single workout by ID.
func (db *DB) GetWorkout(ctx context.Context, userID int, workoutID uuid.UUID) (*models.Workout, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT id, user_id, start_time, end_time, exercises, created_at
		 FROM workouts
		 WHERE id = $1 AND user_id = $2`,
		workoutID, userID)

	w, err := scanWorkout(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrWorkoutNotFound
		}
		return nil, fmt.Errorf("querying workout: %w", err)
	}
	return w, nil
}

// QueryWorkouts retrieves a user's workouts in a time range, newest first.
func (db *DB) QueryWorkouts(ctx context.Context, userID int, start, end time.Time) ([]models.Workout, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, user_id, start_time, end_time, exercises, created_at
		 FROM workouts
		 WHERE user_id = $1 AND start_time >= $2 AND start_time < $3
		 ORDER BY start_time DESC`,
		userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying workouts: %w", err)
	}
	defer rows.Close()

	return scanWorkoutRows(rows)
}

// ListWorkouts retrieves all of a user's workouts ordered by start time
// ascending. Implements records.Store.
func (db *DB) ListWorkouts(ctx context.Context, userID int) ([]models.Workout, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, user_id, start_time, end_time, exercises, created_at
		 FROM workouts
		 WHERE user_id = $1
		 ORDER BY start_time ASC, created_at ASC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("listing workouts: %w", err)
	}
	defer rows.Close()

	return scanWorkoutRows(rows)
}

// DeleteWorkout removes a workout. Its personal-record rows go with it via
// the ON DELETE CASCADE foreign key.
func (db *DB) DeleteWorkout(ctx context.Context, userID int, workoutID uuid.UUID) error {
	tag, err := db.Pool.Exec(ctx,
		`DELETE FROM workouts WHERE id = $1 AND user_id = $2`, workoutID, userID)
	if err != nil {
		return fmt.Errorf("deleting workout: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrWorkoutNotFound
	}
	return nil
}

// ExerciseHistory returns all sets from the user's workouts starting strictly
// before the given time, excluding the workout with the given ID, grouped by
// exercise name. Implements records.Store.
func (db *DB) ExerciseHistory(ctx context.Context, userID int, before time.Time, exclude uuid.UUID) (records.History, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT exercises
		 FROM workouts
		 WHERE user_id = $1 AND start_time < $2 AND id <> $3`,
		userID, before, exclude)
	if err != nil {
		return nil, fmt.Errorf("querying exercise history: %w", err)
	}
	defer rows.Close()

	history := make(records.History)
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scanning exercise history: %w", err)
		}
		var exercises []models.WorkoutExercise
		if err := json.Unmarshal(raw, &exercises); err != nil {
			return nil, fmt.Errorf("unmarshaling exercise history: %w", err)
		}
		for _, ex := range exercises {
			history[ex.Name] = append(history[ex.Name], ex.Sets...)
		}
	}
	return history, rows.Err()
}

// ExerciseSetEntry is one historical set of an exercise with its workout
// provenance, used for history views and client-side snapshots.
type ExerciseSetEntry struct {
	WorkoutID uuid.UUID `json:"workout_id"`
	StartTime time.Time `json:"start_time"`
	SetIndex  int       `json:"set_index"`
	Weight    float64   `json:"weight"`
	Reps      int       `json:"reps"`
	Completed bool      `json:"completed"`
	Missed    bool      `json:"missed"`
	IsPR      bool      `json:"isPR"`
}

// ExerciseSetHistory returns every set logged under the given exercise name
// across all of the user's workouts, oldest workout first.
func (db *DB) ExerciseSetHistory(ctx context.Context, userID int, exercise string) ([]ExerciseSetEntry, error) {
	workouts, err := db.ListWorkouts(ctx, userID)
	if err != nil {
		return nil, err
	}

	var entries []ExerciseSetEntry
	for _, w := range workouts {
		for _, ex := range w.Exercises {
			if ex.Name != exercise {
				continue
			}
			for si, set := range ex.Sets {
				entries = append(entries, ExerciseSetEntry{
					WorkoutID: w.ID,
					StartTime: w.StartTime,
					SetIndex:  si,
					Weight:    set.Weight,
					Reps:      set.Reps,
					Completed: set.IsCompleted(),
					Missed:    set.Missed,
					IsPR:      set.IsPR,
				})
			}
		}
	}
	return entries, nil
}

func scanWorkout(row pgx.Row) (*models.Workout, error) {
	var w models.Workout
	var raw []byte
	if err := row.Scan(&w.ID, &w.UserID, &w.StartTime, &w.EndTime, &raw, &w.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &w.Exercises); err != nil {
		return nil, fmt.Errorf("unmarshaling exercises: %w", err)
	}
	return &w, nil
}

func scanWorkoutRows(rows pgx.Rows) ([]models.Workout, error) {
	var result []models.Workout
	for rows.Next() {
		w, err := scanWorkout(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning workout: %w", err)
		}
		result = append(result, *w)
	}
	return result, rows.Err()
}
