package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/liftlog/internal/models"
)

// newTestServer creates an httptest server that routes requests to the given
// handlers by path. Unexpected paths fail the test.
func newTestServer(t *testing.T, handlers map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := handlers[r.URL.Path]
		if !ok {
			t.Errorf("unexpected request path: %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}))
}

func writeTestJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("encoding response: %v", err)
	}
}

// TestHTTPClientQueryWorkouts verifies the time range is passed as query
// params and the response decodes.
func TestHTTPClientQueryWorkouts(t *testing.T) {
	id := uuid.New()
	srv := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/workouts": func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("start") == "" || r.URL.Query().Get("end") == "" {
				t.Error("expected start and end query params")
			}
			writeTestJSON(t, w, []models.Workout{{ID: id, UserID: 1}})
		},
	})
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "test-key")
	workouts, err := c.QueryWorkouts(context.Background(), 1, time.Now().AddDate(0, 0, -7), time.Now())
	if err != nil {
		t.Fatalf("QueryWorkouts: %v", err)
	}
	if len(workouts) != 1 {
		t.Fatalf("got %d workouts, want 1", len(workouts))
	}
	if workouts[0].ID != id {
		t.Errorf("workout ID = %s, want %s", workouts[0].ID, id)
	}
}

// TestHTTPClientGetWorkout verifies the workout UUID is part of the path.
func TestHTTPClientGetWorkout(t *testing.T) {
	id := uuid.New()
	srv := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/workouts/" + id.String(): func(w http.ResponseWriter, r *http.Request) {
			writeTestJSON(t, w, models.Workout{ID: id})
		},
	})
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "test-key")
	w, err := c.GetWorkout(context.Background(), 1, id)
	if err != nil {
		t.Fatalf("GetWorkout: %v", err)
	}
	if w.ID != id {
		t.Errorf("workout ID = %s, want %s", w.ID, id)
	}
}

// TestHTTPClientCurrentRecords verifies the exercise filter is forwarded.
func TestHTTPClientCurrentRecords(t *testing.T) {
	srv := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/records": func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("exercise"); got != "Bench Press" {
				t.Errorf("exercise param = %q, want %q", got, "Bench Press")
			}
			writeTestJSON(t, w, []models.PersonalRecord{
				{ExerciseName: "Bench Press", Weight: 100, Reps: 8},
			})
		},
	})
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "test-key")
	recs, err := c.CurrentRecords(context.Background(), 1, "Bench Press")
	if err != nil {
		t.Fatalf("CurrentRecords: %v", err)
	}
	if len(recs) != 1 || recs[0].Reps != 8 {
		t.Errorf("unexpected records: %+v", recs)
	}
}

// TestHTTPClientCurrentRecordsNoFilter verifies no exercise param is sent when
// the filter is empty.
func TestHTTPClientCurrentRecordsNoFilter(t *testing.T) {
	srv := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/records": func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Has("exercise") {
				t.Error("did not expect exercise query param")
			}
			writeTestJSON(t, w, []models.PersonalRecord{})
		},
	})
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "test-key")
	if _, err := c.CurrentRecords(context.Background(), 1, ""); err != nil {
		t.Fatalf("CurrentRecords: %v", err)
	}
}

// TestHTTPClientSubmitWorkout verifies a new workout is POSTed to the sync
// endpoint with the API key, and the server's computed result (ID, PR flags)
// is copied back into the workout.
func TestHTTPClientSubmitWorkout(t *testing.T) {
	assigned := uuid.New()
	srv := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/sync/workouts": func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("method = %s, want POST", r.Method)
			}
			if got := r.Header.Get("X-API-Key"); got != "test-key" {
				t.Errorf("X-API-Key = %q, want %q", got, "test-key")
			}
			var in models.Workout
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				t.Fatalf("decoding workout: %v", err)
			}
			in.ID = assigned
			in.Exercises[0].Sets[0].IsPR = true
			w.WriteHeader(http.StatusCreated)
			writeTestJSON(t, w, in)
		},
	})
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "test-key")
	workout := &models.Workout{
		StartTime: time.Now(),
		Exercises: []models.WorkoutExercise{
			{Name: "Squat", Sets: []models.Set{{Weight: 140, Reps: 5}}},
		},
	}
	if err := c.SubmitWorkout(context.Background(), 1, workout); err != nil {
		t.Fatalf("SubmitWorkout: %v", err)
	}
	if workout.ID != assigned {
		t.Errorf("workout ID = %s, want %s", workout.ID, assigned)
	}
	if !workout.Exercises[0].Sets[0].IsPR {
		t.Error("expected server-computed PR flag to round-trip")
	}
}

// TestHTTPClientSubmitWorkoutEdit verifies a workout with an ID is PUT to the
// workouts endpoint instead of the sync create endpoint.
func TestHTTPClientSubmitWorkoutEdit(t *testing.T) {
	id := uuid.New()
	srv := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/workouts/" + id.String(): func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPut {
				t.Errorf("method = %s, want PUT", r.Method)
			}
			var in models.Workout
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				t.Fatalf("decoding workout: %v", err)
			}
			writeTestJSON(t, w, in)
		},
	})
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "test-key")
	workout := &models.Workout{ID: id, StartTime: time.Now()}
	if err := c.SubmitWorkout(context.Background(), 1, workout); err != nil {
		t.Fatalf("SubmitWorkout: %v", err)
	}
	if workout.ID != id {
		t.Errorf("workout ID = %s, want %s", workout.ID, id)
	}
}

// TestHTTPClientErrorStatus verifies non-200 responses surface as errors.
func TestHTTPClientErrorStatus(t *testing.T) {
	srv := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/stats": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		},
	})
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "test-key")
	if _, err := c.GetTrainingStats(context.Background(), 1); err == nil {
		t.Error("expected error for 500 response")
	}
}
