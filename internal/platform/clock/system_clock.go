package clock

import (
	"time"

	clockport "github.com/clinicflow/scheduling-api/internal/ports/out/clock"
)

var _ clockport.Clock = SystemClock{}

// SystemClock stamps idempotency records and events with UTC wall time.
type SystemClock struct{}

func NewSystemClock() SystemClock { return SystemClock{} }

func (SystemClock) Now() time.Time { return time.Now().UTC() }
