package openapi

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
)

// Handler serves the generated spec over HTTP. The document is built once
// per base URL and cached; the API surface is fixed at startup.
type Handler struct {
	endpoints []string

	mu    sync.Mutex
	cache map[string]*openapi3.T
}

func NewHandler(gatewayEndpoints []string) *Handler {
	return &Handler{
		endpoints: gatewayEndpoints,
		cache:     make(map[string]*openapi3.T),
	}
}

// ServeSpec writes the OpenAPI document, using the request's Host header
// for the server URL.
func (h *Handler) ServeSpec(w http.ResponseWriter, r *http.Request) {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	baseURL := scheme + "://" + r.Host

	h.mu.Lock()
	doc, ok := h.cache[baseURL]
	if !ok {
		doc = GenerateSpec(baseURL, h.endpoints)
		h.cache[baseURL] = doc
	}
	h.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(doc)
}
