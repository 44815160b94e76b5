package handler

import (
	"log/slog"
	"net/http"
	"sort"

	"github.com/leap-ai/ozone/internal/model"
	"github.com/leap-ai/ozone/internal/server/middleware"
	"github.com/leap-ai/ozone/internal/service"
	"github.com/leap-ai/ozone/internal/store"
)

// benchmarkResultLimit caps the benchmarks listing.
const benchmarkResultLimit = 100

// capability names an access right a key's permission set can grant.
type capability string

const (
	capabilityRead  capability = "read"
	capabilityWrite capability = "write"
	// capabilityNone marks endpoints any authenticated key may call.
	capabilityNone capability = ""
)

// endpointSpec describes one gateway endpoint: the capability a key must
// hold and whether a successful call consumes a unit of the key's quota.
type endpointSpec struct {
	requires capability
	metered  bool
	serve    func(g *Gateway, w http.ResponseWriter, r *http.Request, p *service.Principal)
}

// Gateway serves the external data API under /v1. Requests reach it
// already authenticated; the gateway resolves the endpoint, enforces the
// key's capabilities and quota, and serves catalog data.
type Gateway struct {
	store     *store.Store
	log       *slog.Logger
	endpoints map[string]endpointSpec
}

// NewGateway constructs the gateway with its fixed endpoint table.
func NewGateway(st *store.Store, log *slog.Logger) *Gateway {
	g := &Gateway{store: st, log: log}
	g.endpoints = map[string]endpointSpec{
		"models":     {requires: capabilityRead, metered: true, serve: (*Gateway).serveModels},
		"benchmarks": {requires: capabilityRead, metered: true, serve: (*Gateway).serveBenchmarks},
		"status":     {requires: capabilityNone, metered: false, serve: (*Gateway).serveStatus},
	}
	return g
}

// EndpointNames returns the sorted list of gateway endpoints, used for
// 404 responses and the OpenAPI document.
func (g *Gateway) EndpointNames() []string {
	names := make([]string, 0, len(g.endpoints))
	for name := range g.endpoints {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Handle dispatches a gateway request. The evaluation order is fixed:
// endpoint resolution, method check, quota check, capability check, quota
// consumption, then the data fetch. A request rejected at any stage
// consumes nothing.
func (g *Gateway) Handle(w http.ResponseWriter, r *http.Request, endpoint string) {
	principal := middleware.KeyPrincipal(r.Context())
	if principal == nil {
		writeError(w, http.StatusUnauthorized, "API key required")
		return
	}

	spec, ok := g.endpoints[endpoint]
	if !ok {
		writeJSON(w, http.StatusNotFound, model.ErrorResponse{
			Error:              "Endpoint not found",
			AvailableEndpoints: g.EndpointNames(),
		})
		return
	}

	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	// Exhausted keys are refused before the capability check, so a key
	// that is both over quota and under-privileged reports 429, not 403.
	if spec.metered && principal.UsageCount >= principal.RateLimit {
		writeError(w, http.StatusTooManyRequests, "Rate limit exceeded")
		return
	}

	if !g.hasCapability(principal, spec.requires) {
		writeError(w, http.StatusForbidden, "API key lacks required permission: "+string(spec.requires))
		return
	}

	if spec.metered {
		consumed, err := g.store.ConsumeAPIKeyUsage(r.Context(), principal.KeyID)
		if err != nil {
			g.log.Error("usage consume failed", "key_id", principal.KeyID, "error", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		if !consumed {
			writeError(w, http.StatusTooManyRequests, "Rate limit exceeded")
			return
		}
		principal.UsageCount++
	}

	spec.serve(g, w, r, principal)
}

func (g *Gateway) hasCapability(p *service.Principal, c capability) bool {
	switch c {
	case capabilityNone:
		return true
	case capabilityRead:
		return p.Permissions.Read
	case capabilityWrite:
		return p.Permissions.Write
	default:
		return false
	}
}

func (g *Gateway) serveModels(w http.ResponseWriter, r *http.Request, _ *service.Principal) {
	models, err := g.store.ListActiveModels(r.Context())
	if err != nil {
		g.log.Error("list models failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, model.ListResponse{
		Data: models,
		Meta: &model.ListMeta{Count: len(models), Endpoint: "models"},
	})
}

func (g *Gateway) serveBenchmarks(w http.ResponseWriter, r *http.Request, _ *service.Principal) {
	limit := clampInt(queryInt(r, "limit", benchmarkResultLimit), 1, benchmarkResultLimit)
	rows, err := g.store.ListVerifiedBenchmarks(r.Context(), limit)
	if err != nil {
		g.log.Error("list benchmarks failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, model.ListResponse{
		Data: rows,
		Meta: &model.ListMeta{Count: len(rows), Endpoint: "benchmarks"},
	})
}

func (g *Gateway) serveStatus(w http.ResponseWriter, r *http.Request, p *service.Principal) {
	writeJSON(w, http.StatusOK, model.StatusResponse{
		Status:       "active",
		Version:      model.GatewayVersion,
		OzoneVersion: model.OzoneVersion,
		APIVersion:   model.APIVersion,
		UserID:       p.AccountID,
		Permissions:  p.Permissions,
		Usage: model.UsageInfo{
			Current: p.UsageCount,
			Limit:   p.RateLimit,
		},
	})
}
