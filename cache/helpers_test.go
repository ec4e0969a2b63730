package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/agentuity/go-ttlcache/logger"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type expiredEvent struct {
	key   string
	value string
}

// recorder collects expiration notifications.
type recorder struct {
	mu     sync.Mutex
	events []expiredEvent
}

func (r *recorder) handle(key string, value string) {
	r.mu.Lock()
	r.events = append(r.events, expiredEvent{key, value})
	r.mu.Unlock()
}

func (r *recorder) all() []expiredEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]expiredEvent(nil), r.events...)
}

// fakeStore is an in-memory RemoteStore that can be told to fail.
type fakeStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	puts    int
	gets    int
	failPut bool
	failGet bool
	missGet bool
}

var _ RemoteStore = (*fakeStore)(nil)

var errUnavailable = errors.New("remote unavailable")

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string][]byte)}
}

func (s *fakeStore) Put(_ context.Context, typeTag, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.puts++
	if s.failPut {
		return errUnavailable
	}
	s.objects[typeTag+"/"+key] = append([]byte(nil), value...)
	return nil
}

func (s *fakeStore) Get(_ context.Context, typeTag, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gets++
	if s.failGet {
		return nil, false, errUnavailable
	}
	if s.missGet {
		return nil, false, nil
	}
	v, ok := s.objects[typeTag+"/"+key]
	return v, ok, nil
}

func (s *fakeStore) counts() (puts, gets int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.puts, s.gets
}

func (s *fakeStore) set(f func(s *fakeStore)) {
	s.mu.Lock()
	f(s)
	s.mu.Unlock()
}

func quietLogger() logger.Logger {
	return logger.NewTestLogger()
}
