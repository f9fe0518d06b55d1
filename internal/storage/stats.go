package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// TrainingStats holds aggregate statistics about a user's stored data.
type TrainingStats struct {
	TotalWorkouts   int64          `json:"total_workouts"`
	TotalSets       int64          `json:"total_sets"`
	TotalRecords    int64          `json:"total_records"`
	EarliestWorkout *time.Time     `json:"earliest_workout"`
	LatestWorkout   *time.Time     `json:"latest_workout"`
	ByExercise      []ExerciseStat `json:"by_exercise"`
}

// ExerciseStat summarizes one exercise: how many sets were logged and the
// heaviest current record.
type ExerciseStat struct {
	Name       string  `json:"name"`
	SetCount   int64   `json:"set_count"`
	BestWeight float64 `json:"best_weight"`
	BestReps   int     `json:"best_reps"`
}

// GetTrainingStats returns aggregate statistics for a user's training data.
func (db *DB) GetTrainingStats(ctx context.Context, userID int) (*TrainingStats, error) {
	stats := &TrainingStats{}

	err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(*), MIN(start_time), MAX(start_time)
		 FROM workouts WHERE user_id = $1`, userID,
	).Scan(&stats.TotalWorkouts, &stats.EarliestWorkout, &stats.LatestWorkout)
	if err != nil {
		return nil, fmt.Errorf("counting workouts: %w", err)
	}

	err = db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM personal_records WHERE user_id = $1`, userID,
	).Scan(&stats.TotalRecords)
	if err != nil {
		return nil, fmt.Errorf("counting records: %w", err)
	}

	// Sets live inside the workouts' exercises JSON; unnest per exercise.
	rows, err := db.Pool.Query(ctx,
		`SELECT ex->>'name' AS name, SUM(jsonb_array_length(ex->'sets')) AS set_count
		 FROM workouts, jsonb_array_elements(exercises) AS ex
		 WHERE user_id = $1
		 GROUP BY 1
		 ORDER BY set_count DESC, name ASC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("aggregating sets: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s ExerciseStat
		if err := rows.Scan(&s.Name, &s.SetCount); err != nil {
			return nil, fmt.Errorf("scanning exercise stat: %w", err)
		}
		stats.TotalSets += s.SetCount
		stats.ByExercise = append(stats.ByExercise, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Attach the heaviest current record per exercise.
	for i := range stats.ByExercise {
		err := db.Pool.QueryRow(ctx,
			`SELECT weight, reps FROM personal_records
			 WHERE user_id = $1 AND exercise_name = $2
			 ORDER BY weight DESC, reps DESC, achieved_at DESC
			 LIMIT 1`,
			userID, stats.ByExercise[i].Name,
		).Scan(&stats.ByExercise[i].BestWeight, &stats.ByExercise[i].BestReps)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("best record for %s: %w", stats.ByExercise[i].Name, err)
		}
	}

	return stats, nil
}
