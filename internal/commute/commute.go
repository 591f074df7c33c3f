// Package commute reads a GTFS-realtime feed and reports delays at a stop.
package commute

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"google.golang.org/protobuf/proto"
)

const (
	// DelayThreshold is the smallest delay reported as "delayed".
	DelayThreshold = 60 * time.Second

	feedCacheTTL  = 30 * time.Second
	maxFeedBytes  = 16 << 20
	fetchTimeout  = 10 * time.Second
	feedCacheSize = 8
)

// ErrNotConfigured is returned when no feed URL is set.
var ErrNotConfigured = errors.New("commute feed not configured")

// FeedError wraps a failure to fetch or decode the feed.
type FeedError struct {
	Err error
}

func (e *FeedError) Error() string { return "commute feed unavailable: " + e.Err.Error() }
func (e *FeedError) Unwrap() error { return e.Err }

type Update struct {
	TripID       string `json:"trip_id"`
	RouteID      string `json:"route_id"`
	DelaySeconds int32  `json:"delay_seconds"`
}

type Status struct {
	StopID   string   `json:"stop_id"`
	Entities int      `json:"entities"`
	Updates  []Update `json:"updates"`
	Delayed  bool     `json:"delayed"`
	Summary  string   `json:"summary,omitempty"`
}

type Client struct {
	feedURL     string
	defaultStop string
	http        *http.Client
	cache       *expirable.LRU[string, *gtfs.FeedMessage]
	logger      *slog.Logger
}

func NewClient(feedURL, defaultStop string, logger *slog.Logger) *Client {
	return &Client{
		feedURL:     feedURL,
		defaultStop: defaultStop,
		http:        &http.Client{Timeout: fetchTimeout},
		cache:       expirable.NewLRU[string, *gtfs.FeedMessage](feedCacheSize, nil, feedCacheTTL),
		logger:      logger,
	}
}

// Configured reports whether a feed URL is set.
func (c *Client) Configured() bool {
	return c.feedURL != ""
}

// Status reports trip updates touching stopID. An empty stopID keeps every
// trip update in the feed.
func (c *Client) Status(ctx context.Context, stopID string) (*Status, error) {
	feed, err := c.feed(ctx)
	if err != nil {
		return nil, err
	}
	return status(feed, stopID), nil
}

// Summary is Status for the default stop plus a one-line description.
func (c *Client) Summary(ctx context.Context) (*Status, error) {
	st, err := c.Status(ctx, c.defaultStop)
	if err != nil {
		return nil, err
	}
	st.Summary = summarize(st)
	return st, nil
}

func (c *Client) feed(ctx context.Context) (*gtfs.FeedMessage, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	if feed, ok := c.cache.Get(c.feedURL); ok {
		return feed, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.feedURL, nil)
	if err != nil {
		return nil, &FeedError{Err: err}
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &FeedError{Err: err}
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Error("failed to close feed body", "error", err)
		}
	}()
	if resp.StatusCode != http.StatusOK {
		return nil, &FeedError{Err: fmt.Errorf("feed returned status %d", resp.StatusCode)}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, &FeedError{Err: err}
	}
	feed := &gtfs.FeedMessage{}
	if err := proto.Unmarshal(data, feed); err != nil {
		return nil, &FeedError{Err: fmt.Errorf("failed to decode feed: %w", err)}
	}

	c.logger.Debug("commute feed fetched", "entities", len(feed.GetEntity()), "bytes", len(data))
	c.cache.Add(c.feedURL, feed)
	return feed, nil
}

func status(feed *gtfs.FeedMessage, stopID string) *Status {
	st := &Status{StopID: stopID, Entities: len(feed.GetEntity()), Updates: []Update{}}
	for _, e := range feed.GetEntity() {
		tu := e.GetTripUpdate()
		if tu == nil {
			continue
		}
		delay, ok := tripDelay(tu, stopID)
		if !ok {
			continue
		}
		st.Updates = append(st.Updates, Update{
			TripID:       tu.GetTrip().GetTripId(),
			RouteID:      tu.GetTrip().GetRouteId(),
			DelaySeconds: delay,
		})
		if time.Duration(delay)*time.Second >= DelayThreshold {
			st.Delayed = true
		}
	}
	return st
}

// tripDelay returns the delay of tu at stopID, falling back to the
// trip-level delay. It reports false when the trip does not serve stopID.
func tripDelay(tu *gtfs.TripUpdate, stopID string) (int32, bool) {
	if stopID == "" {
		for _, stu := range tu.GetStopTimeUpdate() {
			if d := eventDelay(stu); d != 0 {
				return d, true
			}
		}
		return tu.GetDelay(), true
	}
	for _, stu := range tu.GetStopTimeUpdate() {
		if stu.GetStopId() != stopID {
			continue
		}
		if d := eventDelay(stu); d != 0 {
			return d, true
		}
		return tu.GetDelay(), true
	}
	return 0, false
}

func eventDelay(stu *gtfs.TripUpdate_StopTimeUpdate) int32 {
	if a := stu.GetArrival(); a != nil && a.Delay != nil {
		return a.GetDelay()
	}
	return stu.GetDeparture().GetDelay()
}

func summarize(st *Status) string {
	where := "on the network"
	if st.StopID != "" {
		where = "at stop " + st.StopID
	}
	if len(st.Updates) == 0 {
		return "No trains reported " + where
	}

	var late int
	var worst int32
	for _, u := range st.Updates {
		if time.Duration(u.DelaySeconds)*time.Second >= DelayThreshold {
			late++
			worst = max(worst, u.DelaySeconds)
		}
	}
	if late == 0 {
		return fmt.Sprintf("All %d trains %s are on time", len(st.Updates), where)
	}
	return fmt.Sprintf("%d of %d trains %s are delayed, up to %d minutes", late, len(st.Updates), where, (worst+59)/60)
}
