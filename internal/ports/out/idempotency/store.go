package idempotency

import (
	"context"
	"time"

	"github.com/clinicflow/scheduling-api/internal/domain"
)

// Key is the caller-provided idempotency key (Idempotency-Key header).
//
// Keys share a single namespace across every mutation; a key first used for
// a create and later sent with a status update replays the create result.
type Key string

type Operation string

const (
	OperationCreate       Operation = "create"
	OperationUpdateStatus Operation = "update_status"
)

// Record is the snapshot of a successful mutation result.
type Record struct {
	Operation   Operation          `json:"operation"`
	Appointment domain.Appointment `json:"appointment"`
	CreatedAt   time.Time          `json:"createdAt"`
}

// Store persists idempotency records.
//
// Put never overwrites: the first record stored under a key wins and later
// Puts for that key are silently ignored.
type Store interface {
	Get(ctx context.Context, key Key) (Record, bool, error)
	Put(ctx context.Context, key Key, rec Record) error
}
