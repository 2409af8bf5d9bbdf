// Package services contains the application service layer for policy queries.
package services

import (
	"context"
	"errors"
	"math"
	"time"

	"policyapi/application/ports"
	"policyapi/application/query"
	"policyapi/domain/policy"
	"policyapi/infrastructure/cache"
	apperrors "policyapi/pkg/errors"

	"github.com/aws/smithy-go"
	"go.uber.org/zap"
)

// Cache lifetimes per operation. Service info is effectively static, write
// visibility for everything else is bounded at 30s, stats tolerate 60s.
const (
	infoTTL   = time.Hour
	listTTL   = 30 * time.Second
	searchTTL = 30 * time.Second
	statsTTL  = 60 * time.Second
)

// APIVersion is reported by the service info endpoint.
const APIVersion = "1.0.0"

// ServiceInfo describes the API surface.
type ServiceInfo struct {
	Message   string   `json:"message"`
	Version   string   `json:"version"`
	Endpoints []string `json:"endpoints"`
}

// ListResult is the response body for list queries. TotalCount is the
// post-filter, pre-pagination match count; FilteredCount is the size of the
// returned page.
type ListResult struct {
	Items         []policy.Record `json:"items"`
	TotalCount    int             `json:"total_count"`
	FilteredCount int             `json:"filtered_count"`
	HasMore       bool            `json:"has_more"`
}

// SearchMetadata reports how a search executed.
type SearchMetadata struct {
	ExecutionTimeMS float64  `json:"execution_time_ms"`
	FiltersApplied  []string `json:"filters_applied"`
}

// SearchResult is the response body for structured searches. TotalCount
// counts every record matching the filters; ReturnedCount is the page size.
type SearchResult struct {
	Items          []policy.Record `json:"items"`
	TotalCount     int             `json:"total_count"`
	ReturnedCount  int             `json:"returned_count"`
	HasMore        bool            `json:"has_more"`
	SearchMetadata SearchMetadata  `json:"search_metadata"`
}

// MutationResult wraps a write acknowledgement together with the stored item.
type MutationResult struct {
	Message string        `json:"message"`
	Policy  policy.Record `json:"policy"`
}

// PolicyService implements the policy query operations on top of a
// repository, a cache and optional event/metric sinks.
type PolicyService struct {
	repo    ports.PolicyRepository
	cache   ports.Cache
	events  ports.EventPublisher
	metrics ports.Metrics
	logger  *zap.Logger
	itemTTL time.Duration
}

// NewPolicyService creates a policy service. itemTTL controls how long a
// single fetched policy stays cached.
func NewPolicyService(
	repo ports.PolicyRepository,
	responseCache ports.Cache,
	events ports.EventPublisher,
	metrics ports.Metrics,
	logger *zap.Logger,
	itemTTL time.Duration,
) *PolicyService {
	return &PolicyService{
		repo:    repo,
		cache:   responseCache,
		events:  events,
		metrics: metrics,
		logger:  logger,
		itemTTL: itemTTL,
	}
}

// Info returns the static service description.
func (s *PolicyService) Info(ctx context.Context) ServiceInfo {
	key := cache.Key("info", nil)
	if cached, ok := s.cache.Get(key); ok {
		s.metrics.CacheHit("info")
		if info, ok := cached.(ServiceInfo); ok {
			return info
		}
	}
	s.metrics.CacheMiss("info")

	info := ServiceInfo{
		Message: "Policy Data API",
		Version: APIVersion,
		Endpoints: []string{
			"GET /",
			"GET /items",
			"POST /items",
			"GET /items/{policy_id}",
			"PUT /items/{policy_id}",
			"DELETE /items/{policy_id}",
			"POST /items/search",
			"GET /items/stats",
		},
	}
	s.cache.Set(key, info, infoTTL)
	return info
}

// List returns policies matching the given filters, paginated.
func (s *PolicyService) List(ctx context.Context, filters query.ListFilters, page query.PageRequest) (*ListResult, error) {
	limit, offset := page.Clamp()

	key := cache.Key("list", map[string]interface{}{
		"filters": filters,
		"limit":   limit,
		"offset":  offset,
	})
	if cached, ok := s.cache.Get(key); ok {
		s.metrics.CacheHit("list")
		if result, ok := cached.(*ListResult); ok {
			return result, nil
		}
	}
	s.metrics.CacheMiss("list")

	items, err := s.fetchForListFilters(ctx, filters)
	if err != nil {
		return nil, err
	}

	filtered := filters.Apply(items)
	pageItems, total, hasMore := query.Paginate(filtered, limit, offset)

	result := &ListResult{
		Items:         pageItems,
		TotalCount:    total,
		FilteredCount: len(pageItems),
		HasMore:       hasMore,
	}
	s.cache.Set(key, result, listTTL)
	return result, nil
}

// Get returns a single policy by ID.
func (s *PolicyService) Get(ctx context.Context, policyID string) (*policy.Record, error) {
	if err := policy.ValidateUUID(policyID, "policy_id"); err != nil {
		return nil, err
	}

	key := "policy:" + policyID
	if cached, ok := s.cache.Get(key); ok {
		s.metrics.CacheHit("get")
		if record, ok := cached.(*policy.Record); ok {
			return record, nil
		}
	}
	s.metrics.CacheMiss("get")

	record, err := s.repo.GetByID(ctx, policyID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, err
		}
		s.logger.Error("Failed to load policy", zap.String("policyID", policyID), zap.Error(err))
		return nil, apperrors.NewStoreError("get", err).WithCode(apperrors.CodeGetError)
	}

	s.cache.Set(key, record, s.itemTTL)
	return record, nil
}

// Create validates, sanitizes and stores a new policy.
func (s *PolicyService) Create(ctx context.Context, record policy.Record) (*MutationResult, error) {
	if err := record.ValidateForCreate(); err != nil {
		return nil, err
	}

	record.LastUpdated = policy.Today()
	record = record.Sanitized()

	if err := s.repo.Put(ctx, record); err != nil {
		s.logger.Error("Failed to store policy", zap.String("policyID", record.PolicyID), zap.Error(err))
		return nil, apperrors.NewStoreError("create", err).WithCode(apperrors.CodeCreateError)
	}

	s.cache.InvalidateAll()
	s.publish(ctx, "policy.created", record.PolicyID, record)

	return &MutationResult{Message: "Policy created successfully", Policy: record}, nil
}

// Update replaces the fields of an existing policy. The policy must already
// exist; the path ID wins over any ID in the body.
func (s *PolicyService) Update(ctx context.Context, policyID string, record policy.Record) (*MutationResult, error) {
	if err := policy.ValidateUUID(policyID, "policy_id"); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByID(ctx, policyID); err != nil {
		if apperrors.IsNotFound(err) {
			return nil, err
		}
		s.logger.Error("Failed to load policy for update", zap.String("policyID", policyID), zap.Error(err))
		return nil, apperrors.NewStoreError("update", err).WithCode(apperrors.CodeUpdateError)
	}

	record.PolicyID = policyID
	record.LastUpdated = policy.Today()
	if err := record.ValidateForUpdate(); err != nil {
		return nil, err
	}
	record = record.Sanitized()

	if err := s.repo.Put(ctx, record); err != nil {
		s.logger.Error("Failed to store updated policy", zap.String("policyID", policyID), zap.Error(err))
		return nil, apperrors.NewStoreError("update", err).WithCode(apperrors.CodeUpdateError)
	}

	s.cache.Invalidate("policy:" + policyID)
	s.cache.InvalidateAll()
	s.publish(ctx, "policy.updated", policyID, record)

	return &MutationResult{Message: "Policy updated successfully", Policy: record}, nil
}

// Delete removes a policy. Not found is reported as an error so callers can
// distinguish a no-op delete.
func (s *PolicyService) Delete(ctx context.Context, policyID string) error {
	if err := policy.ValidateUUID(policyID, "policy_id"); err != nil {
		return err
	}

	if _, err := s.repo.GetByID(ctx, policyID); err != nil {
		if apperrors.IsNotFound(err) {
			return err
		}
		s.logger.Error("Failed to load policy for delete", zap.String("policyID", policyID), zap.Error(err))
		return apperrors.NewStoreError("delete", err).WithCode(apperrors.CodeDeleteError)
	}

	if err := s.repo.Delete(ctx, policyID); err != nil {
		s.logger.Error("Failed to delete policy", zap.String("policyID", policyID), zap.Error(err))
		return apperrors.NewStoreError("delete", err).WithCode(apperrors.CodeDeleteError)
	}

	s.cache.Invalidate("policy:" + policyID)
	s.cache.InvalidateAll()
	s.publish(ctx, "policy.deleted", policyID, map[string]string{"policy_id": policyID})

	return nil
}

// Search runs a structured multi-criteria search with sorting and pagination.
func (s *PolicyService) Search(ctx context.Context, req query.SearchRequest) (*SearchResult, error) {
	key := cache.Key("search", req)
	if cached, ok := s.cache.Get(key); ok {
		s.metrics.CacheHit("search")
		if result, ok := cached.(*SearchResult); ok {
			return result, nil
		}
	}
	s.metrics.CacheMiss("search")

	if err := req.Filters.Validate(); err != nil {
		return nil, err
	}

	started := time.Now()

	var items []policy.Record
	var err error
	if state, ok := req.Filters.SingleState(); ok {
		items, err = s.queryByState(ctx, state)
	} else {
		items, err = s.scanAll(ctx)
	}
	if err != nil {
		return nil, apperrors.NewStoreError("search", err).WithCode(apperrors.CodeSearchError)
	}

	matched := req.Filters.Apply(items)

	sorted, applied := query.SortRecords(matched, req.Sort)
	if req.Sort.Field != "" && !applied {
		s.logger.Warn("Ignoring unsupported sort field", zap.String("field", req.Sort.Field))
	}

	limit, offset := req.Pagination.Clamp()
	pageItems, total, hasMore := query.Paginate(sorted, limit, offset)

	elapsed := math.Round(float64(time.Since(started).Microseconds())/10) / 100

	result := &SearchResult{
		Items:         pageItems,
		TotalCount:    total,
		ReturnedCount: len(pageItems),
		HasMore:       hasMore,
		SearchMetadata: SearchMetadata{
			ExecutionTimeMS: elapsed,
			FiltersApplied:  req.Filters.Applied(),
		},
	}
	s.cache.Set(key, result, searchTTL)
	return result, nil
}

// Stats aggregates the whole table into distribution counts, averages,
// ranges and the compliance rate.
func (s *PolicyService) Stats(ctx context.Context) (*query.Stats, error) {
	key := cache.Key("stats", nil)
	if cached, ok := s.cache.Get(key); ok {
		s.metrics.CacheHit("stats")
		if stats, ok := cached.(*query.Stats); ok {
			return stats, nil
		}
	}
	s.metrics.CacheMiss("stats")

	items, err := s.scanAll(ctx)
	if err != nil {
		return nil, apperrors.NewStoreError("stats", err).WithCode(apperrors.CodeStatsError)
	}

	stats := query.ComputeStats(items)
	s.cache.Set(key, &stats, statsTTL)
	return &stats, nil
}

// fetchForListFilters picks the cheapest read path for the given filters:
// a state or status index query when only that one filter is set, otherwise
// a full scan. Index failures fall back to the scan path.
func (s *PolicyService) fetchForListFilters(ctx context.Context, filters query.ListFilters) ([]policy.Record, error) {
	if state, ok := filters.OnlyState(); ok {
		return s.queryByState(ctx, state)
	}
	if status, ok := filters.OnlyPolicyStatus(); ok {
		return s.queryByStatus(ctx, status)
	}
	items, err := s.scanAll(ctx)
	if err != nil {
		return nil, apperrors.NewStoreError("list", err).WithCode(apperrors.CodeScanError)
	}
	return items, nil
}

func (s *PolicyService) queryByState(ctx context.Context, state string) ([]policy.Record, error) {
	items, err := s.repo.QueryByState(ctx, state)
	if err == nil {
		return items, nil
	}
	s.logger.Warn("State index query failed, falling back to scan",
		zap.String("state", state),
		zap.String("fault", faultCode(err)),
		zap.Error(err),
	)
	items, err = s.scanAll(ctx)
	if err != nil {
		return nil, apperrors.NewStoreError("list", err).WithCode(apperrors.CodeScanError)
	}
	filtered := make([]policy.Record, 0, len(items))
	for _, item := range items {
		if item.State == state {
			filtered = append(filtered, item)
		}
	}
	return filtered, nil
}

func (s *PolicyService) queryByStatus(ctx context.Context, status string) ([]policy.Record, error) {
	items, err := s.repo.QueryByStatus(ctx, status)
	if err == nil {
		return items, nil
	}
	s.logger.Warn("Status index query failed, falling back to scan",
		zap.String("policyStatus", status),
		zap.String("fault", faultCode(err)),
		zap.Error(err),
	)
	items, err = s.scanAll(ctx)
	if err != nil {
		return nil, apperrors.NewStoreError("list", err).WithCode(apperrors.CodeScanError)
	}
	filtered := make([]policy.Record, 0, len(items))
	for _, item := range items {
		if item.PolicyStatus == status {
			filtered = append(filtered, item)
		}
	}
	return filtered, nil
}

func (s *PolicyService) scanAll(ctx context.Context) ([]policy.Record, error) {
	items, err := s.repo.ScanAll(ctx)
	if err != nil {
		s.logger.Error("Table scan failed", zap.Error(err))
		return nil, err
	}
	return items, nil
}

// publish emits a change event without affecting the request outcome.
func (s *PolicyService) publish(ctx context.Context, detailType, policyID string, detail interface{}) {
	if err := s.events.PublishPolicyEvent(ctx, detailType, policyID, detail); err != nil {
		s.logger.Warn("Failed to publish policy event",
			zap.String("detailType", detailType),
			zap.String("policyID", policyID),
			zap.Error(err),
		)
	}
}

// faultCode extracts the SDK error code when the failure came from the
// service, otherwise classifies it as a client-side fault.
func faultCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return "ClientFault"
}
