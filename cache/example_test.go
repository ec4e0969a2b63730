package cache_test

import (
	"context"
	"fmt"
	"time"

	"github.com/agentuity/go-ttlcache/cache"
	"github.com/agentuity/go-ttlcache/logger"
)

func ExampleExpiring() {
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	now := cache.ClockFunc(func() time.Time { return clock })

	c := cache.NewExpiring[string, string](context.Background(), func(key, value string) {
		fmt.Printf("expired %s=%s\n", key, value)
	}, cache.WithClock(now), cache.WithDefaultTTL(time.Minute), cache.WithLogger(logger.NewTestLogger()))
	defer c.Close()

	c.Add("a", "b")
	c.Add("a", "ignored")
	fmt.Println(c.ContainsKey("a"), c.Get("a"))

	clock = clock.Add(2 * time.Minute)
	fmt.Println(c.ContainsKey("a"))
	// Output:
	// true b
	// expired a=b
	// false
}
