package clock

import "time"

// Clock supplies timestamps for idempotency records and published events.
// Tests swap in a manual clock to keep those values deterministic.
type Clock interface {
	Now() time.Time
}
