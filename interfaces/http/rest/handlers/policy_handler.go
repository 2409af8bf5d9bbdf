package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"policyapi/application/query"
	"policyapi/application/services"
	"policyapi/domain/policy"
	apperrors "policyapi/pkg/errors"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// PolicyHandler serves the policy CRUD, search and stats endpoints.
type PolicyHandler struct {
	service *services.PolicyService
	logger  *zap.Logger
}

// NewPolicyHandler creates a policy handler.
func NewPolicyHandler(service *services.PolicyService, logger *zap.Logger) *PolicyHandler {
	return &PolicyHandler{service: service, logger: logger}
}

// Info handles GET / and reports the API surface.
func (h *PolicyHandler) Info(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.service.Info(r.Context()))
}

// List handles GET /items with flat query-parameter filters and pagination.
func (h *PolicyHandler) List(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()

	filters, err := query.ParseListFilters(values)
	if err != nil {
		RespondAppError(w, r, h.logger, err)
		return
	}
	page, err := parsePageParams(values)
	if err != nil {
		RespondAppError(w, r, h.logger, err)
		return
	}

	result, err := h.service.List(r.Context(), filters, page)
	if err != nil {
		RespondAppError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Get handles GET /items/{policy_id}.
func (h *PolicyHandler) Get(w http.ResponseWriter, r *http.Request) {
	policyID := chi.URLParam(r, "policyID")
	if policyID == "" {
		RespondError(w, r, h.logger, http.StatusBadRequest, "Policy ID is required", apperrors.CodeMissingPolicyID)
		return
	}

	record, err := h.service.Get(r.Context(), policyID)
	if err != nil {
		RespondAppError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, record)
}

// Create handles POST /items.
func (h *PolicyHandler) Create(w http.ResponseWriter, r *http.Request) {
	record, ok := h.decodeRecord(w, r)
	if !ok {
		return
	}

	result, err := h.service.Create(r.Context(), record)
	if err != nil {
		RespondAppError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, result)
}

// Update handles PUT /items/{policy_id}. The body replaces the stored record;
// the path parameter wins over any policy_id in the body.
func (h *PolicyHandler) Update(w http.ResponseWriter, r *http.Request) {
	policyID := chi.URLParam(r, "policyID")
	if policyID == "" {
		RespondError(w, r, h.logger, http.StatusBadRequest, "Policy ID is required", apperrors.CodeMissingPolicyID)
		return
	}

	record, ok := h.decodeRecord(w, r)
	if !ok {
		return
	}

	result, err := h.service.Update(r.Context(), policyID, record)
	if err != nil {
		RespondAppError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Delete handles DELETE /items/{policy_id}. Success is an empty 204.
func (h *PolicyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	policyID := chi.URLParam(r, "policyID")
	if policyID == "" {
		RespondError(w, r, h.logger, http.StatusBadRequest, "Policy ID is required", apperrors.CodeMissingPolicyID)
		return
	}

	if err := h.service.Delete(r.Context(), policyID); err != nil {
		RespondAppError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Search handles POST /items/search with structured filters, sort and
// pagination in the body.
func (h *PolicyHandler) Search(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil || len(body) == 0 {
		RespondError(w, r, h.logger, http.StatusBadRequest, "Request body is required", apperrors.CodeMissingBody)
		return
	}

	var req query.SearchRequest
	if err := json.Unmarshal(body, &req); err != nil {
		RespondError(w, r, h.logger, http.StatusBadRequest, "Invalid JSON in request body", apperrors.CodeInvalidJSON)
		return
	}

	result, err := h.service.Search(r.Context(), req)
	if err != nil {
		RespondAppError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Stats handles GET /items/stats.
func (h *PolicyHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		RespondAppError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// decodeRecord reads and decodes a policy record body. Unknown fields are
// logged and dropped rather than rejected.
func (h *PolicyHandler) decodeRecord(w http.ResponseWriter, r *http.Request) (policy.Record, bool) {
	body, err := io.ReadAll(r.Body)
	if err != nil || len(body) == 0 {
		RespondError(w, r, h.logger, http.StatusBadRequest, "Request body is required", apperrors.CodeMissingBody)
		return policy.Record{}, false
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		RespondError(w, r, h.logger, http.StatusBadRequest, "Invalid JSON in request body", apperrors.CodeInvalidJSON)
		return policy.Record{}, false
	}
	for key := range raw {
		if !knownRecordFields[key] {
			h.logger.Debug("Dropping unknown field in request body", zap.String("field", key))
		}
	}

	var record policy.Record
	if err := json.Unmarshal(body, &record); err != nil {
		RespondError(w, r, h.logger, http.StatusBadRequest, "Invalid JSON in request body", apperrors.CodeInvalidJSON)
		return policy.Record{}, false
	}
	return record, true
}

var knownRecordFields = map[string]bool{
	"policy_id":       true,
	"customer_id":     true,
	"agent_id":        true,
	"policy_type":     true,
	"vehicle_type":    true,
	"policy_status":   true,
	"premium_amount":  true,
	"deductible":      true,
	"coverage_limit":  true,
	"state":           true,
	"risk_rating":     true,
	"start_date":      true,
	"end_date":        true,
	"last_updated":    true,
	"is_compliant":    true,
	"product_version": true,
	"notes":           true,
}

// parsePageParams reads limit/offset query parameters. Non-numeric values are
// validation errors; range clamping happens later in the query layer.
func parsePageParams(values map[string][]string) (query.PageRequest, error) {
	var page query.PageRequest
	if v, err := parseIntParam(values, "limit"); err != nil {
		return page, err
	} else {
		page.Limit = v
	}
	if v, err := parseIntParam(values, "offset"); err != nil {
		return page, err
	} else {
		page.Offset = v
	}
	return page, nil
}

func parseIntParam(values map[string][]string, name string) (*int, error) {
	vs, ok := values[name]
	if !ok || len(vs) == 0 || vs[0] == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(vs[0])
	if err != nil {
		return nil, apperrors.NewValidationErrorf("Invalid %s value: %s. Must be a number", name, vs[0])
	}
	return &n, nil
}
