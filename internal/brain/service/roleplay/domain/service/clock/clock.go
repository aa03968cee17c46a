// Package clock provides the character's civil wall-clock time.
//
// Every time-dependent service takes the Clock interface so tests can pin
// the moment a character is living in.
package clock

import (
	"context"
	"time"

	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/repo"
	"github.com/Missonix/SSAI-brain/pkg/logger"
)

// HotKey is the hot-store key caching the current civil time.
const HotKey = "beijing_time"

// Layout is the cached timestamp format.
const Layout = "2006-01-02T15:04:05"

// DateLayout formats a civil date.
const DateLayout = "2006-01-02"

// Clock yields the current instant in the configured civil zone.
type Clock interface {
	Now(ctx context.Context) time.Time
}

// Func adapts a function to the Clock interface. Test helper.
type Func func(ctx context.Context) time.Time

// Now implements Clock.
func (f Func) Now(ctx context.Context) time.Time { return f(ctx) }

// VirtualClock reads the cached civil time from the hot store and falls
// back to the OS clock, writing the cache back on fallback. The cache lets
// operators pin a character into a different "today".
type VirtualClock struct {
	hot repo.HotStore
	loc *time.Location
	ttl time.Duration
}

var _ Clock = (*VirtualClock)(nil)

// New creates a VirtualClock for the given UTC offset (hours) and cache TTL.
func New(hot repo.HotStore, utcOffsetHours int, ttl time.Duration) *VirtualClock {
	return &VirtualClock{
		hot: hot,
		loc: time.FixedZone("civil", utcOffsetHours*3600),
		ttl: ttl,
	}
}

// Now returns the current civil time. Hot-store failures degrade silently
// to the OS clock; the cache write-back is best effort.
func (c *VirtualClock) Now(ctx context.Context) time.Time {
	if cached, err := c.hot.Get(ctx, HotKey); err == nil {
		if t, perr := time.ParseInLocation(Layout, cached, c.loc); perr == nil {
			return t
		}
		logger.Warn("[Clock] unparseable cached time %q, falling back to OS clock", cached)
	}

	now := time.Now().In(c.loc)
	if err := c.hot.Set(ctx, HotKey, now.Format(Layout), c.ttl); err != nil {
		logger.Warn("[Clock] failed to cache civil time: %v", err)
	}
	return now
}

// Today returns the current civil date as YYYY-MM-DD.
func (c *VirtualClock) Today(ctx context.Context) string {
	return c.Now(ctx).Format(DateLayout)
}
