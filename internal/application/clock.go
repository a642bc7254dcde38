package application

import "time"

// Clock interface supaya gampang ditest
type Clock interface {
	Now() time.Time
}

// SystemClock implementasi default, pakai time.Now()
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// DayKey formats t as the local calendar date used to key usage counters.
func DayKey(t time.Time) string { return t.Format("2006-01-02") }
