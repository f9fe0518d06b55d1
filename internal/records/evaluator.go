// Package records implements personal-record detection: deciding, for every
// set of a workout, whether it beats the best rep count previously achieved at
// that weight for that exercise. The functions here are pure; loading history
// and persisting the results is the pipeline's job.
package records

import (
	"github.com/meltforce/liftlog/internal/models"
)

// History holds candidate sets from strictly earlier workouts, keyed by
// exercise name. Sets need not be pre-filtered for eligibility; the evaluator
// filters again.
type History map[string][]models.Set

// Eligible reports whether a set counts toward record thresholds: not missed,
// and completed (or predating the completed flag).
func Eligible(s models.Set) bool {
	return !s.Missed && s.IsCompleted()
}

// Evaluate reports whether reps at weight beats every eligible set at exactly
// that weight across history and the earlier sets of the same exercise in the
// same workout. Strict: matching the best is not a record.
func Evaluate(weight float64, reps int, history, priorInWorkout []models.Set) bool {
	best, found := bestAt(weight, history)
	if b, ok := bestAt(weight, priorInWorkout); ok && (!found || b > best) {
		best, found = b, true
	}
	return !found || reps > best
}

// bestAt returns the maximum eligible rep count at exactly weight.
func bestAt(weight float64, sets []models.Set) (int, bool) {
	best, found := 0, false
	for _, s := range sets {
		if !Eligible(s) || s.Weight != weight {
			continue
		}
		if !found || s.Reps > best {
			best, found = s.Reps, true
		}
	}
	return best, found
}

// Annotate recomputes IsPR for every set of every exercise in w against the
// supplied history. Set k of an exercise sees history plus all eligible sets
// logged earlier in the same workout under the same exercise name, in
// exercise-then-set order. Ineligible sets are always flagged false. Later
// sets never influence earlier ones, so re-running Annotate over an already
// annotated workout yields identical flags.
func Annotate(w *models.Workout, history History) {
	prior := make(map[string][]models.Set)
	for ei := range w.Exercises {
		ex := &w.Exercises[ei]
		for si := range ex.Sets {
			set := &ex.Sets[si]
			if !Eligible(*set) {
				set.IsPR = false
			} else {
				set.IsPR = Evaluate(set.Weight, set.Reps, history[ex.Name], prior[ex.Name])
			}
			prior[ex.Name] = append(prior[ex.Name], *set)
		}
	}
}

// RecordsFor derives the record rows an annotated workout contributes: for
// each (exercise, weight) with at least one flagged set, the flagged set with
// the most reps. SetIndex is the set's position within its exercise.
func RecordsFor(w *models.Workout) []models.PersonalRecord {
	var recs []models.PersonalRecord
	idx := make(map[string]map[float64]int) // exercise -> weight -> position in recs

	for _, ex := range w.Exercises {
		for si, set := range ex.Sets {
			if !set.IsPR {
				continue
			}
			rec := models.PersonalRecord{
				UserID:       w.UserID,
				ExerciseName: ex.Name,
				Weight:       set.Weight,
				Reps:         set.Reps,
				WorkoutID:    w.ID,
				SetIndex:     si,
				AchievedAt:   w.StartTime,
			}
			byWeight, ok := idx[ex.Name]
			if !ok {
				byWeight = make(map[float64]int)
				idx[ex.Name] = byWeight
			}
			if pos, ok := byWeight[set.Weight]; ok {
				if set.Reps > recs[pos].Reps {
					recs[pos] = rec
				}
				continue
			}
			byWeight[set.Weight] = len(recs)
			recs = append(recs, rec)
		}
	}
	return recs
}
