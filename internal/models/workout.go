package models

import (
	"time"

	"github.com/google/uuid"
)

// Set is a single logged set within an exercise.
//
// Completed is a tri-state: nil means the set predates the completed flag and
// counts as performed (legacy imports). Missed permanently excludes a set from
// record consideration regardless of Completed.
type Set struct {
	Weight    float64 `json:"weight"`
	Reps      int     `json:"reps"`
	Note      string  `json:"note,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
	Missed    bool    `json:"missed,omitempty"`
	IsPR      bool    `json:"isPR,omitempty"`
}

// IsCompleted reports whether the set counts as performed.
// An absent completed flag defaults to true.
func (s Set) IsCompleted() bool {
	return s.Completed == nil || *s.Completed
}

// WorkoutExercise groups the ordered sets logged for one exercise in a session.
// Exercises are matched across workouts by exact name; renaming an exercise in
// the catalog does not rewrite the name on past workouts.
type WorkoutExercise struct {
	Name      string `json:"name"`
	Sets      []Set  `json:"sets"`
	Completed bool   `json:"completed,omitempty"`
}

// Workout is a single training session owned by one user. Edits replace the
// exercise list wholesale.
type Workout struct {
	ID        uuid.UUID         `json:"id"`
	UserID    int               `json:"user_id"`
	StartTime time.Time         `json:"start_time"`
	EndTime   *time.Time        `json:"end_time,omitempty"`
	Exercises []WorkoutExercise `json:"exercises"`
	CreatedAt time.Time         `json:"created_at"`
}

// PersonalRecord is a row in the records table: the best rep count achieved at
// a given weight for a given exercise, as of the workout that produced it.
// Rows are derived from the workout's own sets and are regenerated whenever
// the source workout changes.
type PersonalRecord struct {
	ID           int64     `json:"id"`
	UserID       int       `json:"user_id"`
	ExerciseName string    `json:"exercise_name"`
	Weight       float64   `json:"weight"`
	Reps         int       `json:"reps"`
	WorkoutID    uuid.UUID `json:"workout_id"`
	SetIndex     int       `json:"set_index"`
	AchievedAt   time.Time `json:"achieved_at"`
}

// Exercise is a catalog entry. The catalog drives name suggestions and
// renames; workout rows carry the name as plain text.
type Exercise struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
