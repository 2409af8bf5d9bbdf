// Package memory provides an in-memory policy repository used by tests and
// local development.
package memory

import (
	"context"
	"sync"

	"policyapi/application/ports"
	"policyapi/domain/policy"
	apperrors "policyapi/pkg/errors"
)

// PolicyStore is a map-backed ports.PolicyRepository. Iteration order of
// ScanAll follows insertion order so list results are deterministic.
type PolicyStore struct {
	mu      sync.RWMutex
	records map[string]policy.Record
	order   []string
}

// NewPolicyStore creates an empty store.
func NewPolicyStore() *PolicyStore {
	return &PolicyStore{
		records: make(map[string]policy.Record),
	}
}

var _ ports.PolicyRepository = (*PolicyStore)(nil)

// GetByID returns the stored record or a typed not-found error.
func (s *PolicyStore) GetByID(ctx context.Context, policyID string) (*policy.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[policyID]
	if !ok {
		return nil, apperrors.NewNotFoundError("Policy")
	}
	return &record, nil
}

// Put stores a record, replacing any existing one with the same key.
func (s *PolicyStore) Put(ctx context.Context, record policy.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[record.PolicyID]; !exists {
		s.order = append(s.order, record.PolicyID)
	}
	s.records[record.PolicyID] = record
	return nil
}

// Delete removes a record by key.
func (s *PolicyStore) Delete(ctx context.Context, policyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[policyID]; !exists {
		return nil
	}
	delete(s.records, policyID)
	for i, id := range s.order {
		if id == policyID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// ScanAll returns every record in insertion order.
func (s *PolicyStore) ScanAll(ctx context.Context) ([]policy.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]policy.Record, 0, len(s.order))
	for _, id := range s.order {
		records = append(records, s.records[id])
	}
	return records, nil
}

// QueryByState filters the full set by state.
func (s *PolicyStore) QueryByState(ctx context.Context, state string) ([]policy.Record, error) {
	return s.filter(func(r policy.Record) bool { return r.State == state })
}

// QueryByStatus filters the full set by policy_status.
func (s *PolicyStore) QueryByStatus(ctx context.Context, status string) ([]policy.Record, error) {
	return s.filter(func(r policy.Record) bool { return r.PolicyStatus == status })
}

func (s *PolicyStore) filter(match func(policy.Record) bool) ([]policy.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var records []policy.Record
	for _, id := range s.order {
		if r := s.records[id]; match(r) {
			records = append(records, r)
		}
	}
	return records, nil
}
