package client

import (
	"fmt"
	"time"

	"github.com/meltforce/liftlog/internal/models"
	"github.com/meltforce/liftlog/internal/records"
)

// Session is an in-progress workout being edited on the client, paired with a
// history snapshot fetched from the server. Every mutation recomputes all PR
// flags from scratch, so the flags shown live match what the server will
// compute on submission (as long as the snapshot is current).
type Session struct {
	Workout models.Workout  `json:"workout"`
	History records.History `json:"history"`
}

// NewSession starts a workout at the given time against a history snapshot.
func NewSession(start time.Time, history records.History) *Session {
	if history == nil {
		history = records.History{}
	}
	return &Session{
		Workout: models.Workout{StartTime: start},
		History: history,
	}
}

// AddExercise appends an exercise entry and returns its index.
func (s *Session) AddExercise(name string) int {
	s.Workout.Exercises = append(s.Workout.Exercises, models.WorkoutExercise{Name: name})
	return len(s.Workout.Exercises) - 1
}

// RenameExercise changes an exercise entry's name. The entry's sets are then
// judged against the new name's history; flags under the old name are
// recomputed along with everything else.
func (s *Session) RenameExercise(exercise int, name string) error {
	ex, err := s.exerciseAt(exercise)
	if err != nil {
		return err
	}
	ex.Name = name
	s.refresh()
	return nil
}

// AddSet appends a set to an exercise and recomputes flags.
func (s *Session) AddSet(exercise int, set models.Set) error {
	ex, err := s.exerciseAt(exercise)
	if err != nil {
		return err
	}
	ex.Sets = append(ex.Sets, set)
	s.refresh()
	return nil
}

// UpdateSet replaces a set in place and recomputes flags. Later sets in the
// workout may gain or lose flags as a result.
func (s *Session) UpdateSet(exercise, set int, updated models.Set) error {
	ex, err := s.exerciseAt(exercise)
	if err != nil {
		return err
	}
	if set < 0 || set >= len(ex.Sets) {
		return fmt.Errorf("no set at index %d", set)
	}
	ex.Sets[set] = updated
	s.refresh()
	return nil
}

// RemoveSet deletes a set and recomputes flags.
func (s *Session) RemoveSet(exercise, set int) error {
	ex, err := s.exerciseAt(exercise)
	if err != nil {
		return err
	}
	if set < 0 || set >= len(ex.Sets) {
		return fmt.Errorf("no set at index %d", set)
	}
	ex.Sets = append(ex.Sets[:set], ex.Sets[set+1:]...)
	s.refresh()
	return nil
}

// ToggleCompleted flips a set's completed state and recomputes flags.
func (s *Session) ToggleCompleted(exercise, set int) error {
	ex, err := s.exerciseAt(exercise)
	if err != nil {
		return err
	}
	if set < 0 || set >= len(ex.Sets) {
		return fmt.Errorf("no set at index %d", set)
	}
	done := !ex.Sets[set].IsCompleted()
	ex.Sets[set].Completed = &done
	s.refresh()
	return nil
}

// ToggleMissed flips a set's missed state and recomputes flags.
func (s *Session) ToggleMissed(exercise, set int) error {
	ex, err := s.exerciseAt(exercise)
	if err != nil {
		return err
	}
	if set < 0 || set >= len(ex.Sets) {
		return fmt.Errorf("no set at index %d", set)
	}
	ex.Sets[set].Missed = !ex.Sets[set].Missed
	s.refresh()
	return nil
}

// Finish stamps the workout's end time.
func (s *Session) Finish(end time.Time) {
	s.Workout.EndTime = &end
}

func (s *Session) exerciseAt(i int) (*models.WorkoutExercise, error) {
	if i < 0 || i >= len(s.Workout.Exercises) {
		return nil, fmt.Errorf("no exercise at index %d", i)
	}
	return &s.Workout.Exercises[i], nil
}

func (s *Session) refresh() {
	records.Annotate(&s.Workout, s.History)
}
