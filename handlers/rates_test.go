package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"renovestimate/testhelpers"
)

func TestHandleRatesList(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	testhelpers.CreateTestRateOverride(t, app, "catalog", "roofing", "chaume", 200)

	tests := []struct {
		name        string
		target      string
		wantVersion string
		wantChaume  float64
	}{
		{"default version", "/api/rates", "wizard", 190},
		{"catalog with override", "/api/rates?version=catalog", "catalog", 200},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			rec := httptest.NewRecorder()
			if err := HandleRatesList(app, testConfig())(newTestRequestEvent(app, req, rec)); err != nil {
				t.Fatalf("handler returned error: %v", err)
			}
			if rec.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d", rec.Code)
			}
			_, data := decodeResponse(t, rec)
			if data["pricing_version"] != tt.wantVersion {
				t.Errorf("expected %s, got %v", tt.wantVersion, data["pricing_version"])
			}

			categories, _ := data["categories"].([]any)
			var roofing map[string]any
			for _, c := range categories {
				if m, _ := c.(map[string]any); m["key"] == "roofing" {
					roofing = m
				}
			}
			if roofing == nil {
				t.Fatal("expected a roofing category")
			}
			rates, _ := roofing["rates"].(map[string]any)
			if rates["chaume"] != tt.wantChaume {
				t.Errorf("expected chaume at %v, got %v", tt.wantChaume, rates["chaume"])
			}
		})
	}
}

func TestHandleRatesList_UnknownVersion(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	req := httptest.NewRequest(http.MethodGet, "/api/rates?version=legacy", nil)
	rec := httptest.NewRecorder()
	if err := HandleRatesList(app, testConfig())(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rec.Code)
	}
}

func TestHandleRateDiscrepancies(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	req := httptest.NewRequest(http.MethodGet, "/api/rates/discrepancies", nil)
	rec := httptest.NewRecorder()
	if err := HandleRateDiscrepancies(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	_, data := decodeResponse(t, rec)

	diffs, _ := data["discrepancies"].([]any)
	found := false
	for _, d := range diffs {
		m, _ := d.(map[string]any)
		if m["category"] == "roofing" && m["type"] == "ardoise" {
			found = true
		}
	}
	if !found {
		t.Error("expected slate roofing among the discrepancies")
	}
	if inc, _ := data["inconsistencies"].([]any); len(inc) == 0 {
		t.Error("expected the known inconsistencies")
	}
}

func TestHandleStepOptions(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	req := httptest.NewRequest(http.MethodGet, "/api/steps?version=catalog", nil)
	rec := httptest.NewRecorder()
	if err := HandleStepOptions(app, testConfig())(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	_, data := decodeResponse(t, rec)

	steps, _ := data["steps"].([]any)
	if len(steps) != 13 {
		t.Fatalf("expected 13 wizard steps, got %d", len(steps))
	}
	first, _ := steps[0].(map[string]any)
	if first["key"] != "project" || first["needs_project"] != false {
		t.Errorf("expected the project step first, got %v", first)
	}

	options, _ := data["options"].(map[string]any)
	roofing, _ := options["roofingType"].([]any)
	for _, o := range roofing {
		m, _ := o.(map[string]any)
		if m["value"] == "ardoise" && m["rate"] != 240.0 {
			t.Errorf("expected catalog slate at 240, got %v", m["rate"])
		}
	}
}

func multipartUpload(t *testing.T, target, filename, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	part.Write([]byte(content))
	w.Close()

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestHandleRateImportValidate(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	handler := HandleRateImportValidate(app)

	req := multipartUpload(t, "/api/rates/import?version=wizard", "tarifs.csv",
		"categorie;type;tarif\nroofing;ardoise;230\nroofing;;10\n")
	rec := httptest.NewRecorder()
	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	resp, data := decodeResponse(t, rec)
	if data["valid_rows"] != 1.0 || data["error_rows"] != 1.0 {
		t.Errorf("expected 1 valid / 1 error row, got %v / %v", data["valid_rows"], data["error_rows"])
	}
	if !strings.Contains(resp.Message, "errors") {
		t.Errorf("expected an error summary, got %q", resp.Message)
	}

	// Nothing is stored before commit.
	overrides, _ := app.FindAllRecords("rate_overrides")
	if len(overrides) != 0 {
		t.Errorf("expected no stored overrides, got %d", len(overrides))
	}
}

func TestHandleRateImportValidate_Errors(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	handler := HandleRateImportValidate(app)

	tests := []struct {
		name string
		req  *http.Request
	}{
		{"unknown version", multipartUpload(t, "/api/rates/import?version=legacy", "tarifs.csv", "category,type,rate\nroofing,ardoise,1\n")},
		{"unsupported file", multipartUpload(t, "/api/rates/import?version=wizard", "tarifs.pdf", "%PDF")},
		{"no file", httptest.NewRequest(http.MethodPost, "/api/rates/import?version=wizard", nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			if err := handler(newTestRequestEvent(app, tt.req, rec)); err != nil {
				t.Fatalf("handler returned error: %v", err)
			}
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected status 400, got %d", rec.Code)
			}
		})
	}
}

func TestHandleRateImportCommit(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	handler := HandleRateImportCommit(app)

	tests := []struct {
		name     string
		body     string
		wantCode int
	}{
		{"valid", `{"pricing_version":"wizard","overrides":[{"category":"roofing","type":"ardoise","rate":230}]}`, http.StatusOK},
		{"empty", `{"pricing_version":"wizard","overrides":[]}`, http.StatusBadRequest},
		{"mixed versions", `{"pricing_version":"wizard","overrides":[{"pricing_version":"catalog","category":"roofing","type":"tuile","rate":80}]}`, http.StatusUnprocessableEntity},
		{"unknown version", `{"pricing_version":"legacy","overrides":[{"category":"roofing","type":"ardoise","rate":1}]}`, http.StatusBadRequest},
		{"malformed", `{"overrides":`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/rates/import/commit", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
				t.Fatalf("handler returned error: %v", err)
			}
			if rec.Code != tt.wantCode {
				t.Errorf("expected status %d, got %d: %s", tt.wantCode, rec.Code, rec.Body.String())
			}
		})
	}

	overrides, _ := app.FindAllRecords("rate_overrides")
	if len(overrides) != 1 {
		t.Errorf("expected 1 stored override, got %d", len(overrides))
	}
}

func TestHandleRateImportErrors(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	req := httptest.NewRequest(http.MethodPost, "/api/rates/import/errors",
		strings.NewReader(`[{"row":3,"field":"rate","message":"rate must be a number"}]`))
	rec := httptest.NewRecorder()
	if err := HandleRateImportErrors(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Errorf("unexpected content type %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "Tarifs_Erreurs_") {
		t.Errorf("unexpected content disposition %q", cd)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")) {
		t.Error("expected an xlsx (zip) body")
	}
}
