package store

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/desertthunder/mlcc/internal/models"
	tu "github.com/desertthunder/mlcc/internal/testing"
)

func waitFor(t *testing.T, s *Store, key Key, cond func(Snapshot) bool) Snapshot {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case snap := <-s.Updates():
			if snap.Key == key && cond(snap) {
				return snap
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %s", key)
			return Snapshot{}
		}
	}
}

func TestKeys(t *testing.T) {
	if ChannelKey("c1") != "channels/c1" {
		t.Errorf("unexpected channel key %s", ChannelKey("c1"))
	}
	if DiscoverKey("c1") != "channels/c1/outputs/discover" {
		t.Errorf("unexpected discover key %s", DiscoverKey("c1"))
	}
}

func TestStore(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		s := New(Options{})
		defer s.Close()
		if s.interval != 3*time.Second {
			t.Errorf("expected default interval 3s, got %s", s.interval)
		}
	})

	t.Run("Loading Until First Fetch Settles", func(t *testing.T) {
		s := New(Options{Interval: time.Hour})
		defer s.Close()

		release := make(chan struct{})
		s.Subscribe(ChannelsKey, func(ctx context.Context) (any, error) {
			<-release
			return []models.Channel{{ID: "c1"}}, nil
		})

		snap := s.Get(ChannelsKey)
		if !snap.IsLoading || snap.Data != nil {
			t.Errorf("expected loading snapshot, got %+v", snap)
		}

		close(release)
		snap = waitFor(t, s, ChannelsKey, func(Snapshot) bool { return true })
		if snap.IsLoading || snap.IsError {
			t.Errorf("expected settled snapshot, got %+v", snap)
		}
		if got := Channels(s.Get(ChannelsKey)); len(got) != 1 || got[0].ID != "c1" {
			t.Errorf("unexpected channels %+v", got)
		}
	})

	t.Run("Polls On Every Tick", func(t *testing.T) {
		s := New(Options{Interval: 10 * time.Millisecond})
		defer s.Close()

		var calls atomic.Int32
		s.Subscribe(ChannelsKey, func(ctx context.Context) (any, error) {
			return int(calls.Add(1)), nil
		})

		waitFor(t, s, ChannelsKey, func(snap Snapshot) bool { return snap.Data.(int) >= 3 })
	})

	t.Run("Failure Keeps Last Data And Keeps Polling", func(t *testing.T) {
		s := New(Options{Interval: 10 * time.Millisecond})
		defer s.Close()

		var calls atomic.Int32
		s.Subscribe(ChannelsKey, func(ctx context.Context) (any, error) {
			switch calls.Add(1) {
			case 1:
				return "first", nil
			case 2:
				return nil, errors.New("boom")
			default:
				return "recovered", nil
			}
		})

		failed := waitFor(t, s, ChannelsKey, func(snap Snapshot) bool { return snap.IsError })
		if failed.Data != "first" {
			t.Errorf("expected last good data to survive, got %v", failed.Data)
		}
		if failed.Err == nil || failed.Err.Error() != "boom" {
			t.Errorf("expected error boom, got %v", failed.Err)
		}

		recovered := waitFor(t, s, ChannelsKey, func(snap Snapshot) bool { return snap.Data == "recovered" })
		if recovered.IsError || recovered.Err != nil {
			t.Errorf("expected error to clear, got %+v", recovered)
		}
	})

	t.Run("Invalidate Refetches Immediately", func(t *testing.T) {
		s := New(Options{Interval: time.Hour})
		defer s.Close()

		var calls atomic.Int32
		key := ChannelKey("c1")
		s.Subscribe(key, func(ctx context.Context) (any, error) {
			return int(calls.Add(1)), nil
		})

		waitFor(t, s, key, func(snap Snapshot) bool { return snap.Data == 1 })
		s.Invalidate(key)
		waitFor(t, s, key, func(snap Snapshot) bool { return snap.Data == 2 })

		s.Invalidate("unknown")
	})

	t.Run("Zero Interval Fetches Once", func(t *testing.T) {
		s := New(Options{Interval: 5 * time.Millisecond})
		defer s.Close()

		var calls atomic.Int32
		key := DiscoverKey("c1")
		s.SubscribeEvery(key, 0, func(ctx context.Context) (any, error) {
			calls.Add(1)
			return []models.DiscoveredOutput{{URL: "https://x"}}, nil
		})

		snap := waitFor(t, s, key, func(Snapshot) bool { return true })
		time.Sleep(30 * time.Millisecond)
		if calls.Load() != 1 {
			t.Errorf("expected a single fetch, got %d", calls.Load())
		}
		if len(Discovered(snap)) != 1 {
			t.Errorf("unexpected discovered outputs %+v", Discovered(snap))
		}
	})

	t.Run("Subscribe Is Idempotent", func(t *testing.T) {
		s := New(Options{Interval: time.Hour})
		defer s.Close()

		var first, second atomic.Int32
		s.Subscribe(ChannelsKey, func(ctx context.Context) (any, error) { first.Add(1); return 1, nil })
		s.Subscribe(ChannelsKey, func(ctx context.Context) (any, error) { second.Add(1); return 2, nil })

		waitFor(t, s, ChannelsKey, func(Snapshot) bool { return true })
		if second.Load() != 0 {
			t.Error("second subscription should not replace the first")
		}
	})

	t.Run("Latest Response Wins", func(t *testing.T) {
		s := New(Options{Interval: time.Hour})
		defer s.Close()

		slow := make(chan struct{})
		var calls atomic.Int32
		key := ChannelKey("c1")
		s.Subscribe(key, func(ctx context.Context) (any, error) {
			if calls.Add(1) == 1 {
				<-slow
				return "stale", nil
			}
			return "fresh", nil
		})

		s.Invalidate(key)
		waitFor(t, s, key, func(snap Snapshot) bool { return snap.Data == "fresh" })
		close(slow)
		waitFor(t, s, key, func(snap Snapshot) bool { return snap.Data == "stale" })

		if s.Get(key).Data != "stale" {
			t.Errorf("expected the response that landed last to be cached")
		}
	})

	t.Run("Unsubscribe Discards In Flight Fetch", func(t *testing.T) {
		s := New(Options{Interval: time.Hour})
		defer s.Close()

		release := make(chan struct{})
		var once sync.Once
		key := ChannelKey("gone")
		s.Subscribe(key, func(ctx context.Context) (any, error) {
			once.Do(func() { <-release })
			return "late", ctx.Err()
		})

		s.Unsubscribe(key)
		close(release)

		if s.Subscribed(key) {
			t.Error("key should no longer be subscribed")
		}
		if snap := s.Get(key); snap.Data != nil || snap.IsLoading {
			t.Errorf("expected empty snapshot, got %+v", snap)
		}
	})

	t.Run("Close Stops Polling", func(t *testing.T) {
		s := New(Options{Interval: 5 * time.Millisecond})

		var calls atomic.Int32
		s.Subscribe(ChannelsKey, func(ctx context.Context) (any, error) {
			calls.Add(1)
			return nil, nil
		})
		waitFor(t, s, ChannelsKey, func(Snapshot) bool { return true })

		s.Close()
		after := calls.Load()
		time.Sleep(30 * time.Millisecond)
		if calls.Load() != after {
			t.Errorf("expected no fetches after Close, got %d more", calls.Load()-after)
		}

		s.Subscribe(ChannelKey("c1"), func(ctx context.Context) (any, error) { return nil, nil })
		if s.Subscribed(ChannelKey("c1")) {
			t.Error("subscribe after Close should be ignored")
		}
		s.Close()
	})
}

func TestQueries(t *testing.T) {
	api := tu.NewMockChannelAPI()
	api.Channels = []models.Channel{{ID: "c1", State: models.StateIdle}}
	api.Details["c1"] = &models.ChannelDetail{ChannelID: "c1", Outputs: []models.Output{{ID: "o1"}}}

	ctx := context.Background()

	data, err := ChannelsFetcher(api)(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := Channels(Snapshot{Data: data}); len(got) != 1 {
		t.Errorf("unexpected channels %+v", got)
	}

	data, err = ChannelFetcher(api, "c1")(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := Detail(Snapshot{Data: data}); got == nil || got.ChannelID != "c1" {
		t.Errorf("unexpected detail %+v", got)
	}

	if Detail(Snapshot{Data: "wrong type"}) != nil {
		t.Error("expected nil detail for foreign data")
	}
	if Channels(Snapshot{}) != nil {
		t.Error("expected nil channels for empty snapshot")
	}
}
