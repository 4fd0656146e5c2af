package application

import "time"

// Clock interface supaya gampang ditest
type Clock interface {
	Now() time.Time
}

// SystemClock implementasi default, pakai time.Now()
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// ElapsedMS returns whole milliseconds between start and c.Now(), never negative.
func ElapsedMS(c Clock, start time.Time) int64 {
	ms := c.Now().Sub(start).Milliseconds()
	if ms < 0 {
		return 0
	}
	return ms
}
