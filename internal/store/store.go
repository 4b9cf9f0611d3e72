// package store caches polled query results keyed by resource
package store

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mlcc/internal/shared"
)

// DefaultInterval is the refresh period of a subscription.
const DefaultInterval = 3 * time.Second

// Key identifies a cached resource.
type Key string

// ChannelsKey is the key of the channel list.
const ChannelsKey Key = "channels"

// ChannelKey is the key of the detail of one channel.
func ChannelKey(channelID string) Key {
	return Key("channels/" + channelID)
}

// DiscoverKey is the key of the discovered outputs of one channel.
func DiscoverKey(channelID string) Key {
	return Key("channels/" + channelID + "/outputs/discover")
}

// Fetcher loads the current value of a resource.
type Fetcher func(ctx context.Context) (any, error)

// Snapshot is the cached state of one resource.
type Snapshot struct {
	Key       Key
	Data      any       // Last successfully fetched value; kept when a later fetch fails
	IsLoading bool      // No fetch has settled yet
	IsError   bool      // The most recent fetch failed
	Err       error     // Error of the most recent fetch
	UpdatedAt time.Time // When the most recent fetch settled
}

// Options configures a [Store].
type Options struct {
	Interval time.Duration // Default refresh period (default: 3s)
	Buffer   int           // Capacity of the updates channel (default: 16)
	Logger   *log.Logger
}

// Store keeps one polling loop per subscribed key and the latest snapshot of each.
//
// Overlapping fetches of the same key are allowed; whichever response settles last is kept.
type Store struct {
	mu       sync.Mutex
	interval time.Duration
	logger   *log.Logger
	entries  map[Key]*entry
	updates  chan Snapshot
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	closed   bool
}

type entry struct {
	fetch    Fetcher
	interval time.Duration
	snapshot Snapshot
	refetch  chan struct{}
	cancel   context.CancelFunc
}

// New creates a store. Call [Store.Close] to stop every subscription.
func New(opts Options) *Store {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Buffer <= 0 {
		opts.Buffer = 16
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(io.Discard)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Store{
		interval: opts.Interval,
		logger:   opts.Logger,
		entries:  make(map[Key]*entry),
		updates:  make(chan Snapshot, opts.Buffer),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Subscribe starts polling key with the default interval.
func (s *Store) Subscribe(key Key, fetch Fetcher) {
	s.SubscribeEvery(key, s.interval, fetch)
}

// SubscribeEvery starts polling key every interval, fetching once immediately.
//
// An interval of zero fetches once and afterwards only on [Store.Invalidate].
// Subscribing an already subscribed key is a no-op.
func (s *Store) SubscribeEvery(key Key, interval time.Duration, fetch Fetcher) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	if _, ok := s.entries[key]; ok {
		return
	}

	ctx, cancel := context.WithCancel(s.ctx)
	e := &entry{
		fetch:    fetch,
		interval: interval,
		snapshot: Snapshot{Key: key, IsLoading: true},
		refetch:  make(chan struct{}, 1),
		cancel:   cancel,
	}
	s.entries[key] = e

	s.wg.Add(1)
	go s.poll(ctx, key, e)
}

// Unsubscribe stops polling key and drops its snapshot.
//
// Fetches still in flight are discarded when they settle.
func (s *Store) Unsubscribe(key Key) {
	s.mu.Lock()
	e, ok := s.entries[key]
	delete(s.entries, key)
	s.mu.Unlock()

	if ok {
		e.cancel()
	}
}

// Subscribed reports whether key currently has a polling loop.
func (s *Store) Subscribed(key Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[key]
	return ok
}

// Get returns the snapshot of key. Unknown keys yield an empty snapshot.
func (s *Store) Get(key Key) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[key]; ok {
		return e.snapshot
	}
	return Snapshot{Key: key}
}

// Invalidate triggers an immediate refetch of key without waiting for the next tick.
func (s *Store) Invalidate(key Key) {
	s.mu.Lock()
	e, ok := s.entries[key]
	s.mu.Unlock()

	if !ok {
		return
	}

	select {
	case e.refetch <- struct{}{}:
	default:
	}
}

// Updates delivers every settled fetch. Snapshots are dropped when the buffer is full.
func (s *Store) Updates() <-chan Snapshot {
	return s.updates
}

// Close stops all subscriptions and waits for in-flight fetches to return.
func (s *Store) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.entries = make(map[Key]*entry)
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
}

func (s *Store) poll(ctx context.Context, key Key, e *entry) {
	defer s.wg.Done()

	s.spawnFetch(ctx, key, e)

	var tick <-chan time.Time
	if e.interval > 0 {
		ticker := time.NewTicker(e.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-tick:
			s.spawnFetch(ctx, key, e)
		case <-e.refetch:
			s.spawnFetch(ctx, key, e)
		}
	}
}

// spawnFetch runs one fetch without waiting for the previous one.
func (s *Store) spawnFetch(ctx context.Context, key Key, e *entry) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		data, err := e.fetch(ctx)
		if ctx.Err() != nil {
			return
		}
		s.settle(key, e, data, err)
	}()
}

func (s *Store) settle(key Key, e *entry, data any, err error) {
	s.mu.Lock()
	if s.entries[key] != e {
		s.mu.Unlock()
		return
	}

	snap := e.snapshot
	snap.IsLoading = false
	snap.UpdatedAt = time.Now()
	if err != nil {
		snap.IsError = true
		snap.Err = err
	} else {
		snap.Data = data
		snap.IsError = false
		snap.Err = nil
	}
	e.snapshot = snap
	s.mu.Unlock()

	if err != nil {
		s.logger.Warn("fetch failed", "key", key, "error", err)
	} else {
		s.logger.Debug("fetch settled", "key", key)
	}

	select {
	case s.updates <- snap:
	default:
		s.logger.Debug("update dropped", "key", key)
	}
}
