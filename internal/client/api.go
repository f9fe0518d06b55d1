package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/meltforce/liftlog/internal/models"
	"github.com/meltforce/liftlog/internal/records"
)

// API sends workouts to the LiftLog server over HTTP.
type API struct {
	serverURL  string
	apiKey     string
	httpClient *http.Client
}

// NewAPI creates an HTTP client for the LiftLog server. The API key
// authenticates the sync endpoints.
func NewAPI(serverURL, apiKey string) *API {
	return &API{
		serverURL: serverURL,
		apiKey:    apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// FetchHistory retrieves the user's full set history from the server, grouped
// by exercise name, for live PR evaluation.
func (c *API) FetchHistory() (records.History, error) {
	req, err := http.NewRequest(http.MethodGet, c.serverURL+"/api/v1/sync/history", nil)
	if err != nil {
		return nil, fmt.Errorf("creating history request: %w", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching history: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("history request failed (status %d): %s", resp.StatusCode, body)
	}

	var history records.History
	if err := json.NewDecoder(resp.Body).Decode(&history); err != nil {
		return nil, fmt.Errorf("decoding history: %w", err)
	}
	return history, nil
}

// SubmitWorkout POSTs a finished workout to the server's sync endpoint and
// returns the stored workout with server-computed PR flags.
// Retries up to 3 times with exponential backoff on failure.
func (c *API) SubmitWorkout(w models.Workout) (*models.Workout, error) {
	data, err := json.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("marshaling workout: %w", err)
	}

	var lastErr error
	for attempt := range 3 {
		if attempt > 0 {
			time.Sleep(time.Duration(1<<uint(attempt-1)) * time.Second)
		}

		req, err := http.NewRequest(http.MethodPost, c.serverURL+"/api/v1/sync/workouts", bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("creating submit request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-API-Key", c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode == http.StatusCreated || resp.StatusCode == http.StatusOK {
			var stored models.Workout
			if err := json.Unmarshal(body, &stored); err != nil {
				return nil, fmt.Errorf("decoding stored workout: %w", err)
			}
			return &stored, nil
		}
		lastErr = fmt.Errorf("submit failed (status %d): %s", resp.StatusCode, body)
	}

	return nil, fmt.Errorf("after 3 attempts: %w", lastErr)
}
