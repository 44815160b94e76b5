package openapi

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
)

var testEndpoints = []string{"benchmarks", "models", "status"}

func TestGenerateSpec(t *testing.T) {
	doc := GenerateSpec("http://localhost:8080", testEndpoints)

	if doc.OpenAPI != "3.1.0" {
		t.Errorf("got openapi %q, want 3.1.0", doc.OpenAPI)
	}
	if doc.Info == nil || doc.Info.Title == "" {
		t.Error("spec has no title")
	}
	if len(doc.Servers) == 0 || doc.Servers[0].URL != "http://localhost:8080" {
		t.Errorf("server URL not propagated: %+v", doc.Servers)
	}

	for _, path := range []string{
		"/v1/models",
		"/v1/benchmarks",
		"/v1/status",
		"/api/v1/auth/login",
		"/api/v1/keys",
		"/api/v1/keys/{keyID}",
		"/api/v1/newsletter",
		"/api/v1/contact",
	} {
		if doc.Paths.Find(path) == nil {
			t.Errorf("missing path %s", path)
		}
	}

	for _, scheme := range []string{"apiKey", "bearerAuth"} {
		if _, ok := doc.Components.SecuritySchemes[scheme]; !ok {
			t.Errorf("missing security scheme %s", scheme)
		}
	}
	for _, schema := range []string{"ErrorResponse", "Model", "BenchmarkResult", "StatusResponse"} {
		if _, ok := doc.Components.Schemas[schema]; !ok {
			t.Errorf("missing schema %s", schema)
		}
	}

	// The document must round-trip through JSON cleanly.
	b, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal spec: %v", err)
	}
	var back map[string]interface{}
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal spec: %v", err)
	}
}

func TestHandlerCachesPerHost(t *testing.T) {
	h := NewHandler(testEndpoints)

	req := httptest.NewRequest("GET", "http://api.leap.ai/openapi.json", nil)
	rec := httptest.NewRecorder()
	h.ServeSpec(rec, req)
	if rec.Code != 200 {
		t.Fatalf("got status %d", rec.Code)
	}

	var doc struct {
		Servers []struct {
			URL string `json:"url"`
		} `json:"servers"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(doc.Servers) == 0 || doc.Servers[0].URL != "http://api.leap.ai" {
		t.Errorf("server URL not derived from Host: %+v", doc.Servers)
	}

	// A second request for the same host serves from cache.
	rec2 := httptest.NewRecorder()
	h.ServeSpec(rec2, httptest.NewRequest("GET", "http://api.leap.ai/openapi.json", nil))
	if rec2.Body.String() != rec.Body.String() {
		t.Error("cached response differs from first render")
	}
}
