package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/liftlog/internal/models"
	"github.com/meltforce/liftlog/internal/storage"
)

// HTTPClient implements DataSource by calling the LiftLog REST API. Used for
// remote MCP mode where the binary runs locally (stdio) but data lives on the
// remote server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL. The API
// key authenticates writes through the sync endpoints.
func NewHTTPClient(baseURL, apiKey string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values, out any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("httpclient: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("httpclient: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("httpclient: decode %s: %w", path, err)
	}
	return nil
}

func timeParams(start, end time.Time) url.Values {
	v := url.Values{}
	v.Set("start", start.Format(time.RFC3339))
	v.Set("end", end.Format(time.RFC3339))
	return v
}

// QueryWorkouts retrieves workouts in a time range. The server scopes results
// to the caller's identity; userID is unused remotely.
func (c *HTTPClient) QueryWorkouts(ctx context.Context, _ int, start, end time.Time) ([]models.Workout, error) {
	var workouts []models.Workout
	if err := c.get(ctx, "/api/v1/workouts", timeParams(start, end), &workouts); err != nil {
		return nil, err
	}
	return workouts, nil
}

func (c *HTTPClient) GetWorkout(ctx context.Context, _ int, id uuid.UUID) (*models.Workout, error) {
	var w models.Workout
	if err := c.get(ctx, "/api/v1/workouts/"+id.String(), nil, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

func (c *HTTPClient) CurrentRecords(ctx context.Context, _ int, exercise string) ([]models.PersonalRecord, error) {
	params := url.Values{}
	if exercise != "" {
		params.Set("exercise", exercise)
	}
	var recs []models.PersonalRecord
	if err := c.get(ctx, "/api/v1/records", params, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

func (c *HTTPClient) ExerciseSetHistory(ctx context.Context, _ int, exercise string) ([]storage.ExerciseSetEntry, error) {
	params := url.Values{}
	params.Set("exercise", exercise)
	var entries []storage.ExerciseSetEntry
	if err := c.get(ctx, "/api/v1/history", params, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *HTTPClient) ListExercises(ctx context.Context, _ int) ([]models.Exercise, error) {
	var exercises []models.Exercise
	if err := c.get(ctx, "/api/v1/exercises", nil, &exercises); err != nil {
		return nil, err
	}
	return exercises, nil
}

func (c *HTTPClient) GetTrainingStats(ctx context.Context, _ int) (*storage.TrainingStats, error) {
	var stats storage.TrainingStats
	if err := c.get(ctx, "/api/v1/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// SubmitWorkout posts a workout through the API-key-protected sync endpoint
// and copies the server's computed result (ID, flags) back into w.
func (c *HTTPClient) SubmitWorkout(ctx context.Context, _ int, w *models.Workout) error {
	data, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("httpclient: marshal workout: %w", err)
	}

	method, path := http.MethodPost, "/api/v1/sync/workouts"
	if w.ID != uuid.Nil {
		method, path = http.MethodPut, "/api/v1/workouts/"+w.ID.String()
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("httpclient: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("httpclient: submit workout: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("httpclient: read body: %w", err)
	}
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("httpclient: submit returned %d: %s", resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, w); err != nil {
		return fmt.Errorf("httpclient: decode workout: %w", err)
	}
	return nil
}
