// Package ingest converts already-fetched calendar payloads into busy
// blocks. It never talks to calendar providers itself.
package ingest

import (
	"bytes"
	"fmt"
	"io"
	"time"

	ical "github.com/emersion/go-ical"

	"github.com/syncupstack/syncup-engine/internal/interval"
	"github.com/syncupstack/syncup-engine/internal/models"
)

// SourceCalendar tags blocks that originated from an iCalendar payload.
const SourceCalendar = "calendar"

// BusyBlocksFromICS parses an iCalendar payload and returns the events
// overlapping the window as busy blocks for the given user. Events
// missing start or end carry no scheduling information and are skipped;
// events with an inverted time range are structurally invalid and
// raise.
func BusyBlocksFromICS(userID string, payload []byte, windowStart, windowEnd time.Time) ([]models.BusyBlock, error) {
	dec := ical.NewDecoder(bytes.NewReader(payload))

	var blocks []models.BusyBlock
	for {
		cal, err := dec.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse calendar: %w", err)
		}

		for _, component := range cal.Children {
			if component.Name != ical.CompEvent {
				continue
			}
			event := ical.Event{Component: component}

			start, err := event.DateTimeStart(nil)
			if err != nil {
				continue
			}
			end, err := event.DateTimeEnd(nil)
			if err != nil {
				continue
			}

			iv, err := interval.New(start, end)
			if err != nil {
				summary, _ := event.Props.Text(ical.PropSummary)
				return nil, fmt.Errorf("event %q: %w", summary, err)
			}

			if iv.Start.Before(windowEnd) && iv.End.After(windowStart) {
				blocks = append(blocks, models.BusyBlock{
					UserID:   userID,
					Interval: iv,
					Source:   SourceCalendar,
				})
			}
		}
	}

	return blocks, nil
}
