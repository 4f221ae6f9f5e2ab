// Package repo holds clients for external collaborators. The schedule
// data provider owns busy blocks, preferences, and meeting history; the
// engine only consumes snapshots of them.
package repo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/syncupstack/syncup-engine/internal/models"
)

// ProviderClient wraps the schedule data provider's per-user APIs.
type ProviderClient struct {
	baseURL         string
	busyPath        string
	preferencesPath string
	historyPath     string
	httpClient      *http.Client
}

// NewProviderClient constructs a client targeting the configured data
// provider. Path templates take the user ID as their single %s verb.
func NewProviderClient(baseURL, busyPath, preferencesPath, historyPath string, timeout time.Duration) *ProviderClient {
	return &ProviderClient{
		baseURL:         strings.TrimRight(baseURL, "/"),
		busyPath:        busyPath,
		preferencesPath: preferencesPath,
		historyPath:     historyPath,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Configured reports whether a base URL is set; an unconfigured client
// means callers must supply schedule data inline.
func (c *ProviderClient) Configured() bool {
	return c != nil && c.baseURL != ""
}

// FetchBusyBlocks queries the provider for one user's busy blocks in
// the range. An empty result means "no commitments", not an error.
func (c *ProviderClient) FetchBusyBlocks(ctx context.Context, userID string, start, end time.Time) ([]models.BusyBlock, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("data provider not configured")
	}

	payload := map[string]interface{}{
		"start": start.Format(time.RFC3339),
		"end":   end.Format(time.RFC3339),
	}

	var response struct {
		Blocks []struct {
			Start  time.Time `json:"start"`
			End    time.Time `json:"end"`
			Source string    `json:"source"`
		} `json:"blocks"`
	}

	if err := c.postJSON(ctx, c.url(c.busyPath, userID), payload, &response); err != nil {
		return nil, fmt.Errorf("provider busy request failed: %w", err)
	}

	blocks := make([]models.BusyBlock, 0, len(response.Blocks))
	for _, b := range response.Blocks {
		blocks = append(blocks, models.BusyBlock{
			UserID:   userID,
			Interval: models.TimeInterval{Start: b.Start, End: b.End},
			Source:   b.Source,
		})
	}
	return blocks, nil
}

// FetchPreferences queries the provider for a user's declared template.
// A nil result means the user declared nothing; the engine then uses
// its default working-hour template.
func (c *ProviderClient) FetchPreferences(ctx context.Context, userID string) (*models.SchedulePreferences, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("data provider not configured")
	}

	var response struct {
		Timezone     string              `json:"timezone"`
		Days         []int               `json:"days"`
		WorkingHours []models.ClockRange `json:"working_hours"`
	}

	if err := c.postJSON(ctx, c.url(c.preferencesPath, userID), map[string]interface{}{}, &response); err != nil {
		return nil, fmt.Errorf("provider preferences request failed: %w", err)
	}

	if response.Timezone == "" && len(response.Days) == 0 && len(response.WorkingHours) == 0 {
		return nil, nil
	}

	prefs := &models.SchedulePreferences{
		Timezone:     response.Timezone,
		WorkingHours: response.WorkingHours,
	}
	for _, d := range response.Days {
		prefs.Days = append(prefs.Days, time.Weekday(d))
	}
	return prefs, nil
}

// FetchHistory queries the provider for a user's historical meetings.
func (c *ProviderClient) FetchHistory(ctx context.Context, userID string) ([]models.HistoricalMeeting, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("data provider not configured")
	}

	var response struct {
		Meetings []struct {
			Start           time.Time `json:"start"`
			DurationMinutes int       `json:"duration_minutes"`
			WasSuccessful   bool      `json:"was_successful"`
		} `json:"meetings"`
	}

	if err := c.postJSON(ctx, c.url(c.historyPath, userID), map[string]interface{}{}, &response); err != nil {
		return nil, fmt.Errorf("provider history request failed: %w", err)
	}

	meetings := make([]models.HistoricalMeeting, 0, len(response.Meetings))
	for _, m := range response.Meetings {
		meetings = append(meetings, models.HistoricalMeeting{
			Start:           m.Start,
			DurationMinutes: m.DurationMinutes,
			WasSuccessful:   m.WasSuccessful,
			DayOfWeek:       m.Start.Weekday(),
		})
	}
	return meetings, nil
}

func (c *ProviderClient) url(pathTemplate, userID string) string {
	return c.baseURL + fmt.Sprintf(pathTemplate, userID)
}

func (c *ProviderClient) postJSON(ctx context.Context, url string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
