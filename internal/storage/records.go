package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/meltforce/liftlog/internal/models"
)

// insertRecords batch-inserts personal-record rows inside an open transaction.
func insertRecords(ctx context.Context, tx pgx.Tx, recs []models.PersonalRecord) error {
	if len(recs) == 0 {
		return nil
	}

	query := `INSERT INTO personal_records
		(user_id, exercise_name, weight, reps, workout_id, set_index, achieved_at) VALUES `
	args := make([]any, 0, len(recs)*7)
	valueStrings := make([]string, 0, len(recs))

	for i, r := range recs {
		base := i * 7
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d,$%d,$%d,$%d,$%d,$%d,$%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7,
		))
		args = append(args, r.UserID, r.ExerciseName, r.Weight, r.Reps, r.WorkoutID, r.SetIndex, r.AchievedAt)
	}

	query += strings.Join(valueStrings, ",")

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting personal records: %w", err)
	}
	return nil
}

// CurrentRecords returns the user's current personal records: per
// (exercise, weight), the row with the most reps, ties broken by the latest
// achieved_at. Superseded rows stay in the table but are never returned here.
// Pass an empty exercise name for all exercises.
func (db *DB) CurrentRecords(ctx context.Context, userID int, exercise string) ([]models.PersonalRecord, error) {
	query := `SELECT DISTINCT ON (exercise_name, weight)
		 id, user_id, exercise_name, weight, reps, workout_id, set_index, achieved_at
		 FROM personal_records
		 WHERE user_id = $1`
	args := []any{userID}
	if exercise != "" {
		query += ` AND exercise_name = $2`
		args = append(args, exercise)
	}
	query += ` ORDER BY exercise_name ASC, weight ASC, reps DESC, achieved_at DESC`

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying current records: %w", err)
	}
	defer rows.Close()

	return scanRecordRows(rows)
}

// WorkoutRecords returns the record rows a single workout produced, in set
// order.
func (db *DB) WorkoutRecords(ctx context.Context, userID int, workoutID uuid.UUID) ([]models.PersonalRecord, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, user_id, exercise_name, weight, reps, workout_id, set_index, achieved_at
		 FROM personal_records
		 WHERE user_id = $1 AND workout_id = $2
		 ORDER BY exercise_name ASC, set_index ASC`,
		userID, workoutID)
	if err != nil {
		return nil, fmt.Errorf("querying workout records: %w", err)
	}
	defer rows.Close()

	return scanRecordRows(rows)
}

func scanRecordRows(rows pgx.Rows) ([]models.PersonalRecord, error) {
	var result []models.PersonalRecord
	for rows.Next() {
		var r models.PersonalRecord
		if err := rows.Scan(&r.ID, &r.UserID, &r.ExerciseName, &r.Weight, &r.Reps,
			&r.WorkoutID, &r.SetIndex, &r.AchievedAt); err != nil {
			return nil, fmt.Errorf("scanning personal record: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}
