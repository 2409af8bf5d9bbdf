package rest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"policyapi/application/services"
	"policyapi/infrastructure/cache"
	"policyapi/infrastructure/config"
	"policyapi/infrastructure/messaging/eventbridge"
	"policyapi/infrastructure/persistence/memory"
	"policyapi/pkg/observability"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testPolicyID = "e4000000-0000-4000-8000-000000000001"

func testConfig() *config.Config {
	return &config.Config{
		ServerAddress: ":0",
		Environment:   "test",
	}
}

func newTestServer(t *testing.T, cfg *config.Config) *httptest.Server {
	t.Helper()
	logger := zap.NewNop()
	metrics := observability.NewNoopMetrics()
	svc := services.NewPolicyService(memory.NewPolicyStore(), cache.NewMemory(),
		eventbridge.NewNoopPublisher(), metrics, logger, 30*time.Second)
	srv := httptest.NewServer(NewRouter(cfg, svc, metrics, logger))
	t.Cleanup(srv.Close)
	return srv
}

func createBody() string {
	return `{
		"policy_id": "` + testPolicyID + `",
		"customer_id": "e4000000-0000-4000-8000-000000000002",
		"agent_id": "e4000000-0000-4000-8000-000000000003",
		"policy_type": "Liability",
		"vehicle_type": "Sedan",
		"policy_status": "Active",
		"state": "California",
		"premium_amount": "$1,200"
	}`
}

func decodeError(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestSecurityHeadersOnEveryResponse(t *testing.T) {
	srv := newTestServer(t, testConfig())

	for _, path := range []string{"/", "/items", "/nope"} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		resp.Body.Close()

		assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"), path)
		assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"), path)
		assert.Equal(t, "no-store", resp.Header.Get("Cache-Control"), path)
		assert.Equal(t, "max-age=31536000; includeSubDomains", resp.Header.Get("Strict-Transport-Security"), path)
		assert.NotEmpty(t, resp.Header.Get("X-Request-ID"), path)
	}
}

func TestPreflightShortCircuit(t *testing.T) {
	srv := newTestServer(t, testConfig())

	req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/items", nil)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "CORS preflight", body["message"])
}

func TestAPIKeyGate(t *testing.T) {
	cfg := testConfig()
	cfg.RequireAPIKey = true
	cfg.ValidAPIKeys = []string{"secret-key"}
	srv := newTestServer(t, cfg)

	t.Run("missing key rejected", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/items")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		body := decodeError(t, resp)
		assert.Equal(t, "UNAUTHORIZED", body["code"])
		assert.NotEmpty(t, body["error_id"])
	})

	t.Run("wrong key rejected", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, srv.URL+"/items", nil)
		req.Header.Set("x-api-key", "wrong")
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("valid key accepted", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, srv.URL+"/items", nil)
		req.Header.Set("x-api-key", "secret-key")
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("preflight bypasses the gate", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/items", nil)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestInfoEndpoint(t *testing.T) {
	srv := newTestServer(t, testConfig())

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "1.0.0", body["version"])
	assert.Len(t, body["endpoints"], 8)
}

func TestPolicyLifecycle(t *testing.T) {
	srv := newTestServer(t, testConfig())

	t.Run("create", func(t *testing.T) {
		resp, err := http.Post(srv.URL+"/items", "application/json", strings.NewReader(createBody()))
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusCreated, resp.StatusCode)
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "Policy created successfully", body["message"])
	})

	t.Run("get", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/items/" + testPolicyID)
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)
		var record map[string]interface{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&record))
		assert.Equal(t, testPolicyID, record["policy_id"])
	})

	t.Run("list", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/items?state=California")
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, float64(1), body["filtered_count"])
		assert.Equal(t, false, body["has_more"])
	})

	t.Run("update", func(t *testing.T) {
		updated := strings.Replace(createBody(), `"Active"`, `"Cancelled"`, 1)
		req, _ := http.NewRequest(http.MethodPut, srv.URL+"/items/"+testPolicyID, strings.NewReader(updated))
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "Policy updated successfully", body["message"])
	})

	t.Run("search", func(t *testing.T) {
		searchBody := `{"filters": {"states": ["California"]}, "sort": {"field": "premium_amount", "order": "desc"}}`
		resp, err := http.Post(srv.URL+"/items/search", "application/json", strings.NewReader(searchBody))
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, float64(1), body["returned_count"])
		meta, ok := body["search_metadata"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, []interface{}{"states"}, meta["filters_applied"])
	})

	t.Run("stats", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/items/stats")
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, float64(1), body["total_policies"])
	})

	t.Run("delete returns empty 204", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/items/"+testPolicyID, nil)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})

	t.Run("get after delete is 404", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/items/" + testPolicyID)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		body := decodeError(t, resp)
		assert.Equal(t, "NOT_FOUND", body["code"])
	})
}

func TestErrorEnvelopes(t *testing.T) {
	srv := newTestServer(t, testConfig())

	t.Run("unknown route", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/teapot")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		body := decodeError(t, resp)
		assert.Equal(t, "Endpoint not found", body["error"])
		assert.Equal(t, "NOT_FOUND", body["code"])
		assert.Equal(t, "/teapot", body["path"])
		assert.NotEmpty(t, body["timestamp"])
		assert.NotEmpty(t, body["error_id"])
	})

	t.Run("wrong method maps to 404", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPut, srv.URL+"/items", strings.NewReader("{}"))
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("missing body", func(t *testing.T) {
		resp, err := http.Post(srv.URL+"/items", "application/json", nil)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "MISSING_BODY", decodeError(t, resp)["code"])
	})

	t.Run("invalid json", func(t *testing.T) {
		resp, err := http.Post(srv.URL+"/items", "application/json", strings.NewReader("{nope"))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_JSON", decodeError(t, resp)["code"])
	})

	t.Run("validation error", func(t *testing.T) {
		resp, err := http.Post(srv.URL+"/items", "application/json", strings.NewReader(`{"policy_id": "nope"}`))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "VALIDATION_ERROR", decodeError(t, resp)["code"])
	})

	t.Run("invalid list filter", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/items?state=Texas")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "VALIDATION_ERROR", decodeError(t, resp)["code"])
	})

	t.Run("bad uuid in path", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/items/not-a-uuid")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "VALIDATION_ERROR", decodeError(t, resp)["code"])
	})
}
