package tasks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/desertthunder/mlcc/internal/models"
	"github.com/desertthunder/mlcc/internal/services"
	"golang.org/x/sync/errgroup"
)

// ProgressUpdate represents a progress event during a long-running read.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
}

// Operation phase enumeration
type Phase int

const (
	FetchChannels Phase = iota
	FetchDetails
)

func (p Phase) String() string {
	switch p {
	case FetchChannels:
		return "fetch_channels"
	case FetchDetails:
		return "fetch_details"
	default:
		return ""
	}
}

// DumpOpts configures [Dump].
type DumpOpts struct {
	Workers    int      // Concurrent detail fetches (default: 4, max: 10)
	ChannelIDs []string // Restrict the dump to these channels
}

// DumpError is a channel whose detail could not be fetched.
type DumpError struct {
	ChannelID string `json:"channel_id"`
	Error     string `json:"error"`
}

// ChannelDump is every channel merged with its detail.
type ChannelDump struct {
	FetchedAt time.Time        `json:"fetched_at"`
	Channels  []models.Channel `json:"channels"`
	Errors    []DumpError      `json:"errors,omitempty"`
}

// Details returns the detail of every dumped channel, keyed by channel id.
func (d *ChannelDump) Details() map[string]*models.ChannelDetail {
	details := make(map[string]*models.ChannelDetail, len(d.Channels))
	for _, ch := range d.Channels {
		details[ch.ID] = &models.ChannelDetail{
			ChannelID:        ch.ID,
			State:            ch.State,
			InputAttachments: ch.InputAttachments,
			Outputs:          ch.Outputs,
			Graphics:         ch.Graphics,
			Alerts:           ch.Alerts,
			GraphicsEnabled:  ch.GraphicsEnabled,
		}
	}
	return details
}

// Dump lists channels and fetches every channel detail concurrently.
//
// A failed detail fetch is reported in [ChannelDump.Errors] and does not abort the others;
// only a failed channel list or a cancelled context fails the dump.
func Dump(ctx context.Context, api services.ChannelAPI, progress chan<- ProgressUpdate, opts DumpOpts) (*ChannelDump, error) {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.Workers > 10 {
		opts.Workers = 10
	}

	sendProgress(progress, ProgressUpdate{Phase: FetchChannels, Step: 1, Total: 1, Message: "Fetching channels..."})

	channels, err := api.ListChannels(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list channels: %w", err)
	}
	channels = filterChannels(channels, opts.ChannelIDs)

	dump := &ChannelDump{FetchedAt: time.Now().UTC(), Channels: channels}

	var (
		mu        sync.Mutex
		completed int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)

	for i := range channels {
		g.Go(func() error {
			ch := channels[i]
			detail, err := api.GetChannel(gctx, ch.ID)

			mu.Lock()
			defer mu.Unlock()
			completed++

			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				dump.Errors = append(dump.Errors, DumpError{ChannelID: ch.ID, Error: err.Error()})
				sendProgress(progress, ProgressUpdate{
					Phase:   FetchDetails,
					Step:    completed,
					Total:   len(channels),
					Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", completed, len(channels), ch.Name, err),
				})
				return nil
			}

			dump.Channels[i] = ch.WithDetail(detail)
			sendProgress(progress, ProgressUpdate{
				Phase:   FetchDetails,
				Step:    completed,
				Total:   len(channels),
				Message: fmt.Sprintf("[%d/%d] ✓ %s", completed, len(channels), ch.Name),
			})
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return dump, nil
}

func filterChannels(channels []models.Channel, ids []string) []models.Channel {
	if len(ids) == 0 {
		return channels
	}
	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}

	var filtered []models.Channel
	for _, ch := range channels {
		if _, ok := wanted[ch.ID]; ok {
			filtered = append(filtered, ch)
		}
	}
	return filtered
}

// sendProgress sends a progress update without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}
