package calendar

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/teemow/meetsched/internal/google"
	"github.com/teemow/meetsched/internal/instrumentation"
	"github.com/teemow/meetsched/internal/slots"
)

// Client wraps the Google Calendar service as the pipeline's busy
// source: it answers "which intervals are busy on these dates" with
// UTC-normalized intervals.
type Client struct {
	svc         *calendar.Service
	account     string
	calendarIDs []string
	metrics     *instrumentation.Metrics
}

// WithMetrics attaches a metrics recorder to the client. API calls are
// recorded per operation. Returns the client for chaining.
func (c *Client) WithMetrics(m *instrumentation.Metrics) *Client {
	if m != nil {
		c.metrics = m
	}
	return c
}

// Account returns the account name this client is associated with
func (c *Client) Account() string {
	return c.account
}

// HasTokenForAccount checks if a valid OAuth token exists for the specified account
func HasTokenForAccount(account string) bool {
	return google.HasTokenForAccount(account)
}

// NewClientForAccountWithProvider creates a new Calendar client with
// OAuth2 authentication for a specific account. The OAuth token is
// retrieved from the provided token provider. Busy intervals are
// queried against the given calendar ids; an empty list means the
// primary calendar.
func NewClientForAccountWithProvider(ctx context.Context, account string, tokenProvider google.TokenProvider, calendarIDs []string) (*Client, error) {
	if tokenProvider == nil {
		return nil, fmt.Errorf("token provider cannot be nil")
	}

	token, err := tokenProvider.GetTokenForAccount(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("failed to get Google OAuth token for account %s: %w", account, err)
	}

	conf := google.GetOAuthConfig()
	client := oauth2.NewClient(ctx, conf.TokenSource(ctx, token))

	// Force HTTP/1.1 by disabling HTTP/2
	transport := client.Transport.(*oauth2.Transport)
	transport.Base = &http.Transport{
		ForceAttemptHTTP2: false,
	}

	svc, err := calendar.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}

	if len(calendarIDs) == 0 {
		calendarIDs = []string{"primary"}
	}

	return &Client{
		svc:         svc,
		account:     account,
		calendarIDs: calendarIDs,
		metrics:     &instrumentation.Metrics{},
	}, nil
}

// NewClientForAccount creates a new Calendar client for a specific
// account using the default file-based token provider and the primary
// calendar.
func NewClientForAccount(ctx context.Context, account string) (*Client, error) {
	return NewClientForAccountWithProvider(ctx, account, google.NewFileTokenProvider(), nil)
}

// BusyIntervals returns the busy intervals covering the given calendar
// dates, interpreted in the given fixed UTC offset. Malformed dates are
// skipped; the query spans midnight to midnight of each remaining date.
// All returned instants are UTC.
func (c *Client) BusyIntervals(ctx context.Context, dates []string, offset string) (busy []slots.BusyInterval, err error) {
	timeMin, timeMax, ok := dateSpan(dates, offset)
	if !ok {
		return nil, nil
	}

	start := time.Now()
	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceCalendar, instrumentation.OperationQuery)
	defer func() {
		status := instrumentation.StatusSuccess
		if err != nil {
			status = instrumentation.StatusError
			instrumentation.SetSpanError(span, err)
		} else {
			instrumentation.SetSpanSuccess(span)
		}
		span.End()
		c.metrics.RecordGoogleAPIOperation(ctx, instrumentation.ServiceCalendar, instrumentation.OperationQuery, status, time.Since(start))
	}()

	items := make([]*calendar.FreeBusyRequestItem, len(c.calendarIDs))
	for i, id := range c.calendarIDs {
		items[i] = &calendar.FreeBusyRequestItem{Id: id}
	}

	res, err := c.svc.Freebusy.Query(&calendar.FreeBusyRequest{
		TimeMin: timeMin.Format(time.RFC3339),
		TimeMax: timeMax.Format(time.RFC3339),
		Items:   items,
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to query freebusy: %w", err)
	}

	return busyFromResponse(res), nil
}

// dateSpan computes the UTC query window covering all valid dates,
// midnight to midnight in the given offset. ok is false when no date
// parses.
func dateSpan(dates []string, offset string) (timeMin, timeMax time.Time, ok bool) {
	loc, err := slots.ParseOffset(offset)
	if err != nil {
		loc = time.UTC
	}

	for _, date := range dates {
		day, err := time.ParseInLocation(slots.DateFormat, date, loc)
		if err != nil {
			continue
		}

		start := day.UTC()
		end := day.AddDate(0, 0, 1).UTC()
		if !ok || start.Before(timeMin) {
			timeMin = start
		}
		if !ok || end.After(timeMax) {
			timeMax = end
		}
		ok = true
	}
	return timeMin, timeMax, ok
}

// busyFromResponse flattens a freebusy response into UTC busy
// intervals, dropping ranges that fail to parse.
func busyFromResponse(res *calendar.FreeBusyResponse) []slots.BusyInterval {
	if res == nil {
		return nil
	}

	var busy []slots.BusyInterval
	for _, cal := range res.Calendars {
		for _, b := range cal.Busy {
			start, err := time.Parse(time.RFC3339, b.Start)
			if err != nil {
				continue
			}
			end, err := time.Parse(time.RFC3339, b.End)
			if err != nil {
				continue
			}
			busy = append(busy, slots.BusyInterval{Start: start.UTC(), End: end.UTC()})
		}
	}
	return busy
}
