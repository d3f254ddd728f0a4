package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"renovestimate/testhelpers"
)

func TestHandleQuoteExportExcel(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	est := testhelpers.CreateTestEstimate(t, app, "Famille Martin")
	submitStep(t, app, est, "project", `{"projectType":"construction","surface":100}`)

	req := httptest.NewRequest(http.MethodGet, "/estimates/"+est.Id+"/export/excel", nil)
	req.SetPathValue("id", est.Id)
	rec := httptest.NewRecorder()
	if err := HandleQuoteExportExcel(app, testConfig())(newTestRequestEvent(app, withEstimate(req, est), rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, est.GetString("reference")+".xlsx") {
		t.Errorf("unexpected content disposition %q", cd)
	}

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("response is not a workbook: %v", err)
	}
	defer f.Close()
	if f.GetSheetName(0) != "Devis" {
		t.Errorf("expected sheet Devis, got %q", f.GetSheetName(0))
	}
}

func TestHandleQuoteExportPDF(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	est := testhelpers.CreateTestEstimate(t, app, "Famille Martin")
	submitStep(t, app, est, "project", `{"projectType":"construction","surface":100}`)

	req := httptest.NewRequest(http.MethodGet, "/estimates/"+est.Id+"/export/pdf", nil)
	req.SetPathValue("id", est.Id)
	rec := httptest.NewRecorder()
	if err := HandleQuoteExportPDF(app, testConfig())(newTestRequestEvent(app, withEstimate(req, est), rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("expected application/pdf, got %q", ct)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Error("expected a PDF body")
	}
}

func TestHandleQuoteExport_NotFound(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	handlers := map[string]func(*testing.T) *httptest.ResponseRecorder{
		"excel": func(t *testing.T) *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodGet, "/estimates/missing/export/excel", nil)
			req.SetPathValue("id", "missing")
			rec := httptest.NewRecorder()
			if err := HandleQuoteExportExcel(app, testConfig())(newTestRequestEvent(app, req, rec)); err != nil {
				t.Fatalf("handler returned error: %v", err)
			}
			return rec
		},
		"pdf": func(t *testing.T) *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodGet, "/estimates/missing/export/pdf", nil)
			req.SetPathValue("id", "missing")
			rec := httptest.NewRecorder()
			if err := HandleQuoteExportPDF(app, testConfig())(newTestRequestEvent(app, req, rec)); err != nil {
				t.Fatalf("handler returned error: %v", err)
			}
			return rec
		},
	}
	for name, run := range handlers {
		t.Run(name, func(t *testing.T) {
			if rec := run(t); rec.Code != http.StatusNotFound {
				t.Errorf("expected status 404, got %d", rec.Code)
			}
		})
	}
}
