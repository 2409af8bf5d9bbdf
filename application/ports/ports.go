// Package ports defines the interfaces the application layer depends on.
// Implementations live under infrastructure.
package ports

import (
	"context"
	"time"

	"policyapi/domain/policy"
)

// PolicyRepository abstracts the backing policy table.
type PolicyRepository interface {
	// GetByID returns the record or a typed not-found error.
	GetByID(ctx context.Context, policyID string) (*policy.Record, error)
	Put(ctx context.Context, record policy.Record) error
	Delete(ctx context.Context, policyID string) error
	// ScanAll reads the full table, following continuation keys.
	ScanAll(ctx context.Context) ([]policy.Record, error)
	// QueryByState uses the state secondary index.
	QueryByState(ctx context.Context, state string) ([]policy.Record, error)
	// QueryByStatus uses the policy_status secondary index.
	QueryByStatus(ctx context.Context, status string) ([]policy.Record, error)
}

// Cache is the response cache in front of the repository. Expired entries are
// treated as absent on read; there is no background sweep.
type Cache interface {
	Get(key string) (interface{}, bool)
	Set(key string, value interface{}, ttl time.Duration)
	Invalidate(key string)
	InvalidateAll()
}

// EventPublisher emits policy change events after successful writes.
type EventPublisher interface {
	PublishPolicyEvent(ctx context.Context, detailType, policyID string, detail interface{}) error
}

// Metrics records operational metrics. Implementations must be safe to call
// on every request; failures are swallowed.
type Metrics interface {
	CacheHit(operation string)
	CacheMiss(operation string)
	RequestDuration(method, path string, status int, duration time.Duration)
}
