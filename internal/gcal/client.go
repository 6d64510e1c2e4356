package gcal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/chris-regnier/focusflow/internal/calsync"
	"github.com/chris-regnier/focusflow/internal/event"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const dateLayout = "2006-01-02"

// Client is a calsync.Remote backed by one Google calendar.
type Client struct {
	svc        *calendar.Service
	calendarID string
	log        *zap.Logger
}

var _ calsync.Remote = (*Client)(nil)

// New creates a client for calendarID ("primary" when empty). Callers pass
// option.WithTokenSource for real use.
func New(ctx context.Context, calendarID string, log *zap.Logger, opts ...option.ClientOption) (*Client, error) {
	svc, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating calendar service: %w", err)
	}
	if calendarID == "" {
		calendarID = "primary"
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{svc: svc, calendarID: calendarID, log: log}, nil
}

// CalendarInfo describes a calendar in the user's list.
type CalendarInfo struct {
	ID         string `json:"id"`
	Summary    string `json:"summary"`
	Primary    bool   `json:"primary,omitempty"`
	AccessRole string `json:"access_role"`
}

// ListCalendars returns the calendars the user can see.
func (c *Client) ListCalendars(ctx context.Context) ([]CalendarInfo, error) {
	var out []CalendarInfo
	err := c.svc.CalendarList.List().Context(ctx).Pages(ctx, func(page *calendar.CalendarList) error {
		for _, item := range page.Items {
			out = append(out, CalendarInfo{
				ID:         item.Id,
				Summary:    item.Summary,
				Primary:    item.Primary,
				AccessRole: item.AccessRole,
			})
		}
		return nil
	})
	if err != nil {
		return nil, mapError("listing calendars", err)
	}
	return out, nil
}

// ListEvents returns single events overlapping [from, to).
func (c *Client) ListEvents(ctx context.Context, from, to time.Time) ([]calsync.RemoteEvent, error) {
	call := c.svc.Events.List(c.calendarID).
		TimeMin(from.UTC().Format(time.RFC3339)).
		TimeMax(to.UTC().Format(time.RFC3339)).
		SingleEvents(true).
		ShowDeleted(false).
		MaxResults(250).
		Context(ctx)

	var out []calsync.RemoteEvent
	err := call.Pages(ctx, func(page *calendar.Events) error {
		for _, item := range page.Items {
			if item.Status == "cancelled" {
				continue
			}
			re, err := fromAPI(item)
			if err != nil {
				c.log.Warn("skipping unreadable google event", zap.String("google_id", item.Id), zap.Error(err))
				continue
			}
			out = append(out, re)
		}
		return nil
	})
	if err != nil {
		return nil, mapError("listing events", err)
	}
	c.log.Debug("listed google events", zap.String("calendar", c.calendarID), zap.Int("count", len(out)))
	return out, nil
}

// GetEvent fetches one event. Cancelled events report ErrRemoteNotFound.
func (c *Client) GetEvent(ctx context.Context, id string) (calsync.RemoteEvent, error) {
	item, err := c.svc.Events.Get(c.calendarID, id).Context(ctx).Do()
	if err != nil {
		return calsync.RemoteEvent{}, mapError("getting event "+id, err)
	}
	if item.Status == "cancelled" {
		return calsync.RemoteEvent{}, fmt.Errorf("getting event %s: %w", id, calsync.ErrRemoteNotFound)
	}
	return fromAPI(item)
}

// InsertEvent creates e on the calendar.
func (c *Client) InsertEvent(ctx context.Context, e event.Event) (calsync.RemoteEvent, error) {
	item, err := c.svc.Events.Insert(c.calendarID, toAPI(e, false)).Context(ctx).Do()
	if err != nil {
		return calsync.RemoteEvent{}, mapError("inserting event", err)
	}
	return fromAPI(item)
}

// UpdateEvent overwrites the synced fields of remote event id with e.
func (c *Client) UpdateEvent(ctx context.Context, id string, e event.Event) (calsync.RemoteEvent, error) {
	item, err := c.svc.Events.Patch(c.calendarID, id, toAPI(e, true)).Context(ctx).Do()
	if err != nil {
		return calsync.RemoteEvent{}, mapError("updating event "+id, err)
	}
	return fromAPI(item)
}

// DeleteEvent removes remote event id.
func (c *Client) DeleteEvent(ctx context.Context, id string) error {
	if err := c.svc.Events.Delete(c.calendarID, id).Context(ctx).Do(); err != nil {
		return mapError("deleting event "+id, err)
	}
	return nil
}

func fromAPI(item *calendar.Event) (calsync.RemoteEvent, error) {
	re := calsync.RemoteEvent{
		ID:          item.Id,
		ETag:        item.Etag,
		Title:       item.Summary,
		Description: item.Description,
		Location:    item.Location,
	}
	var err error
	if re.Start, re.AllDay, err = parseDateTime(item.Start); err != nil {
		return calsync.RemoteEvent{}, fmt.Errorf("event %s start: %w", item.Id, err)
	}
	if re.End, _, err = parseDateTime(item.End); err != nil {
		return calsync.RemoteEvent{}, fmt.Errorf("event %s end: %w", item.Id, err)
	}
	if item.Updated != "" {
		u, err := time.Parse(time.RFC3339, item.Updated)
		if err != nil {
			return calsync.RemoteEvent{}, fmt.Errorf("event %s updated: %w", item.Id, err)
		}
		re.Updated = u.UTC().Truncate(time.Second)
	}
	return re, nil
}

func parseDateTime(dt *calendar.EventDateTime) (time.Time, bool, error) {
	switch {
	case dt == nil:
		return time.Time{}, false, fmt.Errorf("missing time")
	case dt.DateTime != "":
		t, err := time.Parse(time.RFC3339, dt.DateTime)
		if err != nil {
			return time.Time{}, false, err
		}
		return t.UTC().Truncate(time.Second), false, nil
	case dt.Date != "":
		t, err := time.Parse(dateLayout, dt.Date)
		if err != nil {
			return time.Time{}, false, err
		}
		return t, true, nil
	}
	return time.Time{}, false, fmt.Errorf("missing time")
}

// toAPI converts a local event. All-day events use exclusive end dates.
// With patch set, fields are sent even when empty so they are cleared remotely.
func toAPI(e event.Event, patch bool) *calendar.Event {
	item := &calendar.Event{
		Summary:     e.Title,
		Description: e.Description,
		Location:    e.Location,
	}
	if e.AllDay {
		start := e.Start.UTC().Format(dateLayout)
		end := e.End.UTC().Format(dateLayout)
		if end <= start {
			end = e.Start.UTC().AddDate(0, 0, 1).Format(dateLayout)
		}
		item.Start = &calendar.EventDateTime{Date: start}
		item.End = &calendar.EventDateTime{Date: end}
		if patch {
			item.Start.NullFields = []string{"DateTime"}
			item.End.NullFields = []string{"DateTime"}
		}
	} else {
		item.Start = &calendar.EventDateTime{DateTime: e.Start.UTC().Format(time.RFC3339)}
		item.End = &calendar.EventDateTime{DateTime: e.End.UTC().Format(time.RFC3339)}
		if patch {
			item.Start.NullFields = []string{"Date"}
			item.End.NullFields = []string{"Date"}
		}
	}
	if patch {
		item.ForceSendFields = []string{"Summary", "Description", "Location"}
	}
	return item
}

// mapError wraps API failures with the calsync sentinel that describes them.
func mapError(op string, err error) error {
	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) || errors.Is(err, ErrNotAuthorized) {
		return fmt.Errorf("%s: %w: %w", op, ErrNotAuthorized, err)
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch {
		case gerr.Code == http.StatusNotFound, gerr.Code == http.StatusGone:
			return fmt.Errorf("%s: %w", op, calsync.ErrRemoteNotFound)
		case gerr.Code == http.StatusUnauthorized:
			return fmt.Errorf("%s: %w: %w", op, ErrNotAuthorized, err)
		case gerr.Code == http.StatusTooManyRequests, gerr.Code >= 500, rateLimited(gerr):
			return fmt.Errorf("%s: %w: %w", op, calsync.ErrTransient, err)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return fmt.Errorf("%s: %w: %w", op, calsync.ErrTransient, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func rateLimited(gerr *googleapi.Error) bool {
	if gerr.Code != http.StatusForbidden {
		return false
	}
	for _, item := range gerr.Errors {
		if item.Reason == "rateLimitExceeded" || item.Reason == "userRateLimitExceeded" {
			return true
		}
	}
	return false
}
