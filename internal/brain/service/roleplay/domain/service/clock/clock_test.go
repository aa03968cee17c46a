package clock_test

import (
	"context"
	"testing"
	"time"

	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/service/clock"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/store/inmemory"
)

func TestNowPrefersCachedValue(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	hot := inmemory.NewHotStore()
	if err := hot.Set(ctx, clock.HotKey, "2026-08-24T09:30:00", time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}

	c := clock.New(hot, 8, time.Hour)
	got := c.Now(ctx)
	if got.Hour() != 9 || got.Minute() != 30 {
		t.Errorf("Now = %v, want cached 09:30", got)
	}
	if _, off := got.Zone(); off != 8*3600 {
		t.Errorf("zone offset = %d, want %d", off, 8*3600)
	}
	if c.Today(ctx) != "2026-08-24" {
		t.Errorf("Today = %q, want 2026-08-24", c.Today(ctx))
	}
}

func TestNowFallsBackToOSClockAndCaches(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	hot := inmemory.NewHotStore()
	if err := hot.Set(ctx, clock.HotKey, "not a timestamp", time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}

	c := clock.New(hot, 8, time.Hour)
	before := time.Now()
	got := c.Now(ctx)
	if got.Before(before.Add(-time.Minute)) || got.After(before.Add(time.Minute)) {
		t.Errorf("Now = %v, want close to the OS clock", got)
	}

	cached, err := hot.Get(ctx, clock.HotKey)
	if err != nil {
		t.Fatalf("cache not written back: %v", err)
	}
	if _, perr := time.Parse(clock.Layout, cached); perr != nil {
		t.Errorf("written cache %q does not parse: %v", cached, perr)
	}
}

func TestFuncAdapter(t *testing.T) {
	t.Parallel()

	fixed := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)
	var c clock.Clock = clock.Func(func(context.Context) time.Time { return fixed })
	if got := c.Now(context.Background()); !got.Equal(fixed) {
		t.Errorf("Now = %v, want %v", got, fixed)
	}
}
