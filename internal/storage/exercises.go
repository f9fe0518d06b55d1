package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/meltforce/liftlog/internal/models"
)

// ErrExerciseNotFound is returned when an exercise lookup matches no row.
var ErrExerciseNotFound = errors.New("exercise not found")

// ListExercises returns the user's exercise catalog, alphabetical.
func (db *DB) ListExercises(ctx context.Context, userID int) ([]models.Exercise, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, user_id, name, created_at
		 FROM exercises
		 WHERE user_id = $1
		 ORDER BY name ASC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("listing exercises: %w", err)
	}
	defer rows.Close()

	var result []models.Exercise
	for rows.Next() {
		var e models.Exercise
		if err := rows.Scan(&e.ID, &e.UserID, &e.Name, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning exercise: %w", err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

// CreateExercise adds a catalog entry. Returns the existing entry's ID if the
// name is already present.
func (db *DB) CreateExercise(ctx context.Context, userID int, name string) (*models.Exercise, error) {
	row := db.Pool.QueryRow(ctx, `
		INSERT INTO exercises (user_id, name)
		VALUES ($1, $2)
		ON CONFLICT (user_id, name) DO UPDATE SET name = $2
		RETURNING id, user_id, name, created_at
	`, userID, name)

	var e models.Exercise
	if err := row.Scan(&e.ID, &e.UserID, &e.Name, &e.CreatedAt); err != nil {
		return nil, fmt.Errorf("creating exercise: %w", err)
	}
	return &e, nil
}

// RenameExercise changes a catalog entry's display name going forward.
// Past workouts and past personal-record rows keep the old name: exercise
// identity is the name string, so the old name's history simply stops
// accumulating and the new name starts fresh. Histories are never merged.
func (db *DB) RenameExercise(ctx context.Context, userID, exerciseID int, newName string) (*models.Exercise, error) {
	row := db.Pool.QueryRow(ctx, `
		UPDATE exercises SET name = $3
		WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, name, created_at
	`, exerciseID, userID, newName)

	var e models.Exercise
	if err := row.Scan(&e.ID, &e.UserID, &e.Name, &e.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrExerciseNotFound
		}
		return nil, fmt.Errorf("renaming exercise: %w", err)
	}
	return &e, nil
}
