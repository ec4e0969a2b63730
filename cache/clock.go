package cache

import "time"

// Clock supplies the time used to stamp and expire entries.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a plain function, such as time.Now, to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the wall clock. It is the default for WithClock.
var SystemClock Clock = ClockFunc(time.Now)
