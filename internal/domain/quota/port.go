package quota

import "context"

// CounterStore port (interface untuk durable usage persistence).
// Keys are (day, counter-name); day is the local date as "2006-01-02".
// Increment must be atomic: concurrent callers may never lose an update.
type CounterStore interface {
	Get(ctx context.Context, day, key string) (int, error)
	Increment(ctx context.Context, day, key string, delta int) error
	AddCost(ctx context.Context, day, key string, cost float64) error
	DayUsage(ctx context.Context, day string) (map[string]float64, error)
	ResetDay(ctx context.Context, day string) error
}
