// Package calendar provides a read-only Google Calendar feed for the planner
// timeline. Events are displayed next to tasks; nothing is ever written back.
package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/gosuda/tempora/internal/config"
	"github.com/gosuda/tempora/internal/domain"
)

// GoogleFeed implements domain.CalendarFeed against the Google Calendar API.
type GoogleFeed struct {
	srv        *gcal.Service
	calendarID string
}

// NewGoogleFeed builds a feed from an OAuth client-secrets file and a stored
// token file. Only the read-only scope is requested.
func NewGoogleFeed(ctx context.Context, cfg *config.GoogleConfig) (*GoogleFeed, error) {
	secrets, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("calendar.NewGoogleFeed: reading credentials: %w", err)
	}

	oauthCfg, err := google.ConfigFromJSON(secrets, gcal.CalendarReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("calendar.NewGoogleFeed: parsing credentials: %w", err)
	}

	token, err := tokenFromFile(cfg.TokenFile)
	if err != nil {
		return nil, fmt.Errorf("calendar.NewGoogleFeed: %w", err)
	}

	srv, err := gcal.NewService(ctx, option.WithHTTPClient(oauthCfg.Client(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("calendar.NewGoogleFeed: building service: %w", err)
	}

	return &GoogleFeed{srv: srv, calendarID: cfg.CalendarID}, nil
}

// tokenFromFile reads an oauth2.Token from a JSON file.
func tokenFromFile(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading token: %w", err)
	}
	defer f.Close()

	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, fmt.Errorf("decoding token: %w", err)
	}
	return tok, nil
}

// ListEvents fetches events overlapping [from, to). Start and End keep the
// API's raw strings so the planner can read the wall-clock hour verbatim
// instead of round-tripping through a timezone conversion.
func (f *GoogleFeed) ListEvents(ctx context.Context, from, to time.Time) ([]domain.CalendarEvent, error) {
	call := f.srv.Events.List(f.calendarID).
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx)

	events, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("calendar.GoogleFeed.ListEvents: %w", err)
	}

	out := make([]domain.CalendarEvent, 0, len(events.Items))
	for _, item := range events.Items {
		out = append(out, convertEvent(item))
	}
	return out, nil
}

func convertEvent(item *gcal.Event) domain.CalendarEvent {
	ev := domain.CalendarEvent{
		ID:       item.Id,
		Summary:  item.Summary,
		Location: item.Location,
	}

	// All-day events carry Date, timed events DateTime.
	if item.Start != nil {
		if item.Start.DateTime != "" {
			ev.Start = item.Start.DateTime
		} else {
			ev.Start = item.Start.Date
		}
	}
	if item.End != nil {
		if item.End.DateTime != "" {
			ev.End = item.End.DateTime
		} else {
			ev.End = item.End.Date
		}
	}

	for _, a := range item.Attendees {
		if a.Email != "" {
			ev.Attendees = append(ev.Attendees, a.Email)
		}
	}
	return ev
}
