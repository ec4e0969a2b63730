package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEntryDefaults(t *testing.T) {
	before := time.Now()
	e := NewEntry("v")
	assert.Equal(t, "v", e.Value)
	assert.Equal(t, DefaultTimeToLive, e.TTL)
	assert.False(t, e.CreatedAt.Before(before))
	assert.False(t, e.HasExpired())
}

func TestEntryExpiresAt(t *testing.T) {
	created := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	e := NewEntryAt(1, created, time.Minute)
	assert.Equal(t, created.Add(time.Minute), e.ExpiresAt())
	assert.False(t, e.ExpiredAt(created.Add(time.Minute)))
	assert.True(t, e.ExpiredAt(created.Add(time.Minute+time.Nanosecond)))
}

func TestEntryExplicitExpiryKeepsCreatedAt(t *testing.T) {
	created := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	expires := created.Add(90 * time.Second)
	e := NewEntryAtExpires("x", created, expires)
	assert.Equal(t, created, e.CreatedAt)
	assert.Equal(t, 90*time.Second, e.TTL)
	assert.Equal(t, expires, e.ExpiresAt())

	moved := e.WithExpires(created.Add(time.Hour))
	assert.Equal(t, created, moved.CreatedAt)
	assert.Equal(t, time.Hour, moved.TTL)
	assert.Equal(t, 90*time.Second, e.TTL, "original is untouched")
}

func TestEntryNonPositiveTTLIsExpired(t *testing.T) {
	created := time.Now()
	assert.True(t, NewEntryAt("x", created, 0).ExpiredAt(created))
	assert.True(t, NewEntryAt("x", created, -time.Second).ExpiredAt(created))
	assert.True(t, NewEntryExpires("x", time.Now().Add(-time.Minute)).HasExpired())
}

func TestEntryHasExpiredIsLive(t *testing.T) {
	e := NewEntryTTL("x", 20*time.Millisecond)
	assert.False(t, e.HasExpired())
	time.Sleep(30 * time.Millisecond)
	assert.True(t, e.HasExpired())
}

func TestEntryWithTimestamp(t *testing.T) {
	created := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	e := NewEntryAt("x", created, time.Minute)
	later := created.Add(time.Hour)
	r := e.WithTimestamp(later)
	assert.Equal(t, later, r.CreatedAt)
	assert.Equal(t, time.Minute, r.TTL)
	assert.Equal(t, "x", r.Value)
}
