package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"renovestimate/config"
)

// newTestRequestEvent creates a RequestEvent suitable for handler tests.
func newTestRequestEvent(app *pocketbase.PocketBase, req *http.Request, rec *httptest.ResponseRecorder) *core.RequestEvent {
	e := &core.RequestEvent{}
	e.App = app
	e.Request = req
	e.Response = rec
	return e
}

// withEstimate stores estimate in the request context the way
// EstimateAccessMiddleware does.
func withEstimate(req *http.Request, estimate *core.Record) *http.Request {
	return req.WithContext(context.WithValue(req.Context(), EstimateKey, estimate))
}

// decodeResponse parses the JSON envelope written to rec.
func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) (APIResponse, map[string]any) {
	t.Helper()
	var raw struct {
		APIResponse
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatalf("response is not a JSON envelope: %v\nbody: %s", err, rec.Body.String())
	}
	var data map[string]any
	if len(raw.Data) > 0 && raw.Data[0] == '{' {
		if err := json.Unmarshal(raw.Data, &data); err != nil {
			t.Fatalf("data is not a JSON object: %v", err)
		}
	}
	return raw.APIResponse, data
}

func testConfig() *config.Config {
	return config.DefaultConfig()
}
