// mock-provider is a stand-in schedule data provider for local
// development. It serves canned busy blocks, preferences, and history
// in the shapes the engine's provider client expects.
package main

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"
)

type busyBlock struct {
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Source string    `json:"source"`
}

type clockRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type preferences struct {
	Timezone     string       `json:"timezone"`
	Days         []int        `json:"days"`
	WorkingHours []clockRange `json:"working_hours"`
}

type meeting struct {
	Start           time.Time `json:"start"`
	DurationMinutes int       `json:"duration_minutes"`
	WasSuccessful   bool      `json:"was_successful"`
}

func main() {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/api/v1/users/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		now := time.Now().UTC().Truncate(time.Hour)
		switch {
		case strings.HasSuffix(r.URL.Path, "/busy"):
			writeJSON(w, map[string]any{
				"blocks": []busyBlock{
					{Start: now.Add(26 * time.Hour), End: now.Add(27 * time.Hour), Source: "calendar"},
					{Start: now.Add(50 * time.Hour), End: now.Add(51 * time.Hour), Source: "hangout"},
				},
			})
		case strings.HasSuffix(r.URL.Path, "/preferences"):
			writeJSON(w, preferences{
				Timezone:     "America/New_York",
				Days:         []int{1, 2, 3, 4, 5},
				WorkingHours: []clockRange{{Start: "09:00", End: "18:00"}},
			})
		case strings.HasSuffix(r.URL.Path, "/history"):
			tuesday := nextWeekday(now, time.Tuesday).Add(18 * time.Hour)
			writeJSON(w, map[string]any{
				"meetings": []meeting{
					{Start: tuesday.AddDate(0, 0, -21), DurationMinutes: 60, WasSuccessful: true},
					{Start: tuesday.AddDate(0, 0, -14), DurationMinutes: 45, WasSuccessful: true},
					{Start: tuesday.AddDate(0, 0, -7), DurationMinutes: 60, WasSuccessful: true},
				},
			})
		default:
			http.NotFound(w, r)
		}
	})

	log.Println("mock-provider listening on :9090")
	log.Fatal(http.ListenAndServe(":9090", mux))
}

func nextWeekday(from time.Time, day time.Weekday) time.Time {
	base := from.Truncate(24 * time.Hour)
	for base.Weekday() != day {
		base = base.AddDate(0, 0, 1)
	}
	return base
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
