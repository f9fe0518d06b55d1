package records

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/liftlog/internal/models"
)

// fakeStore implements Store in memory for pipeline tests.
type fakeStore struct {
	workouts map[uuid.UUID]*models.Workout
	records  map[uuid.UUID][]models.PersonalRecord
	saves    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		workouts: make(map[uuid.UUID]*models.Workout),
		records:  make(map[uuid.UUID][]models.PersonalRecord),
	}
}

func (f *fakeStore) ExerciseHistory(_ context.Context, userID int, before time.Time, exclude uuid.UUID) (History, error) {
	history := make(History)
	for id, w := range f.workouts {
		if w.UserID != userID || id == exclude || !w.StartTime.Before(before) {
			continue
		}
		for _, ex := range w.Exercises {
			history[ex.Name] = append(history[ex.Name], ex.Sets...)
		}
	}
	return history, nil
}

func (f *fakeStore) SaveWorkout(_ context.Context, w *models.Workout, recs []models.PersonalRecord) error {
	cp := *w
	f.workouts[w.ID] = &cp
	f.records[w.ID] = recs
	f.saves++
	return nil
}

func (f *fakeStore) ListWorkouts(_ context.Context, userID int) ([]models.Workout, error) {
	var out []models.Workout
	for _, w := range f.workouts {
		if w.UserID == userID {
			out = append(out, *w)
		}
	}
	return out, nil
}

func day(d int) time.Time {
	return time.Date(2024, 6, d, 18, 0, 0, 0, time.UTC)
}

func testPipeline(store Store) *Pipeline {
	return NewPipeline(store, slog.Default())
}

// TestSubmitFirstWorkout verifies a first-ever completed set is a record and
// produces a record row.
func TestSubmitFirstWorkout(t *testing.T) {
	store := newFakeStore()
	p := testPipeline(store)

	w := &models.Workout{
		StartTime: day(1),
		Exercises: []models.WorkoutExercise{
			{Name: "Bench Press", Sets: []models.Set{completedSet(100, 8)}},
		},
	}
	if err := p.Submit(context.Background(), 1, w); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if w.ID == uuid.Nil {
		t.Error("Submit should assign a workout ID")
	}
	if !w.Exercises[0].Sets[0].IsPR {
		t.Error("first completed set should be flagged")
	}
	if got := len(store.records[w.ID]); got != 1 {
		t.Errorf("record rows = %d, want 1", got)
	}
}

// TestSubmitUsesEarlierWorkoutsAsHistory verifies day-2 sets compete against
// day-1 history (100x8 then 100x10 on day 2 is a record).
func TestSubmitUsesEarlierWorkoutsAsHistory(t *testing.T) {
	store := newFakeStore()
	p := testPipeline(store)
	ctx := context.Background()

	day1 := &models.Workout{
		StartTime: day(1),
		Exercises: []models.WorkoutExercise{
			{Name: "Bench Press", Sets: []models.Set{completedSet(100, 8)}},
		},
	}
	if err := p.Submit(ctx, 1, day1); err != nil {
		t.Fatalf("Submit day1: %v", err)
	}

	day2 := &models.Workout{
		StartTime: day(2),
		Exercises: []models.WorkoutExercise{
			{Name: "Bench Press", Sets: []models.Set{completedSet(100, 8), completedSet(100, 10)}},
		},
	}
	if err := p.Submit(ctx, 1, day2); err != nil {
		t.Fatalf("Submit day2: %v", err)
	}

	sets := day2.Exercises[0].Sets
	if sets[0].IsPR {
		t.Error("100x8 ties day-1 best; not a record")
	}
	if !sets[1].IsPR {
		t.Error("100x10 beats day-1 best; should be a record")
	}
}

// TestSubmitChronologyNotSubmissionOrder verifies a later-dated workout
// submitted first does not count as history for an earlier-dated one.
func TestSubmitChronologyNotSubmissionOrder(t *testing.T) {
	store := newFakeStore()
	p := testPipeline(store)
	ctx := context.Background()

	later := &models.Workout{
		StartTime: day(5),
		Exercises: []models.WorkoutExercise{
			{Name: "Squat", Sets: []models.Set{completedSet(140, 10)}},
		},
	}
	if err := p.Submit(ctx, 1, later); err != nil {
		t.Fatalf("Submit later: %v", err)
	}

	earlier := &models.Workout{
		StartTime: day(3),
		Exercises: []models.WorkoutExercise{
			{Name: "Squat", Sets: []models.Set{completedSet(140, 5)}},
		},
	}
	if err := p.Submit(ctx, 1, earlier); err != nil {
		t.Fatalf("Submit earlier: %v", err)
	}

	if !earlier.Exercises[0].Sets[0].IsPR {
		t.Error("day-3 140x5 should be a record: the day-5 workout is not its history")
	}
}

// TestSubmitEditExcludesOwnCopy verifies an edit is not compared against the
// workout's own stored copy.
func TestSubmitEditExcludesOwnCopy(t *testing.T) {
	store := newFakeStore()
	p := testPipeline(store)
	ctx := context.Background()

	w := &models.Workout{
		StartTime: day(1),
		Exercises: []models.WorkoutExercise{
			{Name: "Bench Press", Sets: []models.Set{completedSet(100, 10)}},
		},
	}
	if err := p.Submit(ctx, 1, w); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	// Edit in place: same ID, lower reps. Without self-exclusion the stored
	// 100x10 would suppress the flag.
	edited := &models.Workout{
		ID:        w.ID,
		StartTime: w.StartTime,
		Exercises: []models.WorkoutExercise{
			{Name: "Bench Press", Sets: []models.Set{completedSet(100, 9)}},
		},
	}
	if err := p.Submit(ctx, 1, edited); err != nil {
		t.Fatalf("Submit edit: %v", err)
	}

	if !edited.Exercises[0].Sets[0].IsPR {
		t.Error("edited set should be flagged: own prior copy is excluded from history")
	}
	recs := store.records[w.ID]
	if len(recs) != 1 || recs[0].Reps != 9 {
		t.Errorf("record rows after edit = %+v, want single 100x9", recs)
	}
}

// TestSubmitScopedToUser verifies another user's workouts never enter history.
func TestSubmitScopedToUser(t *testing.T) {
	store := newFakeStore()
	p := testPipeline(store)
	ctx := context.Background()

	other := &models.Workout{
		StartTime: day(1),
		Exercises: []models.WorkoutExercise{
			{Name: "Bench Press", Sets: []models.Set{completedSet(100, 20)}},
		},
	}
	if err := p.Submit(ctx, 2, other); err != nil {
		t.Fatalf("Submit other user: %v", err)
	}

	mine := &models.Workout{
		StartTime: day(2),
		Exercises: []models.WorkoutExercise{
			{Name: "Bench Press", Sets: []models.Set{completedSet(100, 5)}},
		},
	}
	if err := p.Submit(ctx, 1, mine); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if !mine.Exercises[0].Sets[0].IsPR {
		t.Error("user 1 has no history; 100x5 should be a record")
	}
}

// TestRebuildReproducesFlags verifies the reconciliation procedure: replaying
// all workouts from raw sets reproduces the flags Submit assigned (the record
// table is a cache, never a source of truth).
func TestRebuildReproducesFlags(t *testing.T) {
	store := newFakeStore()
	p := testPipeline(store)
	ctx := context.Background()

	workouts := []*models.Workout{
		{StartTime: day(1), Exercises: []models.WorkoutExercise{
			{Name: "Bench Press", Sets: []models.Set{completedSet(100, 8), completedSet(100, 10)}},
			{Name: "Squat", Sets: []models.Set{completedSet(140, 5)}},
		}},
		{StartTime: day(3), Exercises: []models.WorkoutExercise{
			{Name: "Bench Press", Sets: []models.Set{
				completedSet(100, 10),
				{Weight: 100, Reps: 15, Completed: boolPtr(false)},
				completedSet(100, 11),
			}},
		}},
		{StartTime: day(5), Exercises: []models.WorkoutExercise{
			{Name: "Squat", Sets: []models.Set{completedSet(140, 5), completedSet(145, 3)}},
		}},
	}
	for _, w := range workouts {
		if err := p.Submit(ctx, 1, w); err != nil {
			t.Fatalf("Submit: %v", err)
		}
	}

	before := make(map[uuid.UUID][]bool)
	for id, w := range store.workouts {
		before[id] = flags(w)
	}

	n, err := p.Rebuild(ctx, 1)
	if err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	if n != len(workouts) {
		t.Errorf("rebuilt %d workouts, want %d", n, len(workouts))
	}

	for id, w := range store.workouts {
		after := flags(w)
		want := before[id]
		if len(after) != len(want) {
			t.Fatalf("workout %s: flag count changed: %d vs %d", id, len(after), len(want))
		}
		for i := range want {
			if after[i] != want[i] {
				t.Errorf("workout %s set %d: rebuild flag = %v, submit flag = %v", id, i, after[i], want[i])
			}
		}
	}
}
