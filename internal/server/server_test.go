package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/leap-ai/ozone/internal/model"
	"github.com/leap-ai/ozone/internal/service"
	"github.com/leap-ai/ozone/internal/store"
)

// testEnv bundles everything an HTTP-level test needs.
type testEnv struct {
	srv   *Server
	store *store.Store
	keys  *service.KeyService
	auth  *service.AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := store.NewStore("") // in-memory
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	keySvc := service.NewKeyService(st)
	authSvc := service.NewAuthService(st, "test-secret")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg := DefaultConfig()
	cfg.PublicRateLimit = 10000 // keep IP limiting out of the way

	return &testEnv{
		srv:   New(cfg, st, keySvc, authSvc, logger),
		store: st,
		keys:  keySvc,
		auth:  authSvc,
	}
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := service.HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	return hash
}

// newAccountWithKey creates an account and an issued key, returning the
// account and the plaintext key.
func (e *testEnv) newAccountWithKey(t *testing.T) (*model.Account, string) {
	t.Helper()
	ctx := context.Background()

	acct := &model.Account{
		Email:        fmt.Sprintf("user-%d@leap.ai", time.Now().UnixNano()),
		PasswordHash: hashPassword(t, "correct-horse-battery"),
		Name:         "Gateway User",
		IsActive:     true,
	}
	if err := e.store.CreateAccount(ctx, acct); err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}

	issued, err := e.keys.Issue(ctx, acct.ID, "test")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return acct, issued.Plaintext
}

func (e *testEnv) seedModel(t *testing.T) *model.Model {
	t.Helper()
	m := &model.Model{
		Name:      "O3-Mini",
		Version:   "1.2",
		ModelType: "language",
		IsActive:  true,
	}
	if err := e.store.CreateModel(context.Background(), m); err != nil {
		t.Fatalf("CreateModel: %v", err)
	}
	return m
}

func (e *testEnv) do(t *testing.T, method, path, apiKey string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	if apiKey != "" {
		req.Header.Set("x-api-key", apiKey)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	e.srv.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

// ---------------------------------------------------------------------------
// Gateway
// ---------------------------------------------------------------------------

func TestGatewayRequiresKey(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodGet, "/v1/models", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("got status %d, want 401", rec.Code)
	}

	var body map[string]string
	decodeJSON(t, rec, &body)
	if body["error"] != "API key required" {
		t.Errorf("got error %q", body["error"])
	}
}

func TestGatewayRejectsUnknownKey(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodGet, "/v1/models", "leap_not_a_real_key", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("got status %d, want 401", rec.Code)
	}

	var body map[string]string
	decodeJSON(t, rec, &body)
	if body["error"] != "Invalid API key" {
		t.Errorf("got error %q", body["error"])
	}
}

func TestGatewayListModels(t *testing.T) {
	e := newTestEnv(t)
	e.seedModel(t)
	_, key := e.newAccountWithKey(t)

	rec := e.do(t, http.MethodGet, "/v1/models", key, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Data []model.Model `json:"data"`
		Meta struct {
			Count    int    `json:"count"`
			Endpoint string `json:"endpoint"`
		} `json:"meta"`
	}
	decodeJSON(t, rec, &body)

	if len(body.Data) != 1 || body.Data[0].Name != "O3-Mini" {
		t.Errorf("unexpected models payload: %+v", body.Data)
	}
	if body.Meta.Count != 1 || body.Meta.Endpoint != "models" {
		t.Errorf("unexpected meta: %+v", body.Meta)
	}
}

func TestGatewayUnknownEndpoint(t *testing.T) {
	e := newTestEnv(t)
	_, key := e.newAccountWithKey(t)

	rec := e.do(t, http.MethodGet, "/v1/weather", key, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("got status %d, want 404", rec.Code)
	}

	var body model.ErrorResponse
	decodeJSON(t, rec, &body)
	want := []string{"benchmarks", "models", "status"}
	if len(body.AvailableEndpoints) != len(want) {
		t.Fatalf("got endpoints %v, want %v", body.AvailableEndpoints, want)
	}
	for i, ep := range want {
		if body.AvailableEndpoints[i] != ep {
			t.Errorf("endpoint[%d] = %q, want %q", i, body.AvailableEndpoints[i], ep)
		}
	}
}

func TestGatewayMethodNotAllowed(t *testing.T) {
	e := newTestEnv(t)
	_, key := e.newAccountWithKey(t)

	rec := e.do(t, http.MethodPost, "/v1/models", key, map[string]string{"x": "y"})
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("got status %d, want 405", rec.Code)
	}
}

func TestGatewayStatusNotMetered(t *testing.T) {
	e := newTestEnv(t)
	e.seedModel(t)
	acct, key := e.newAccountWithKey(t)

	// Fresh key: usage starts at zero.
	rec := e.do(t, http.MethodGet, "/v1/status", key, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var status model.StatusResponse
	decodeJSON(t, rec, &status)
	if status.Usage.Current != 0 {
		t.Errorf("fresh key usage.current = %d, want 0", status.Usage.Current)
	}
	if status.UserID != acct.ID {
		t.Errorf("got user_id %q, want %q", status.UserID, acct.ID)
	}
	if status.Status != "active" || status.APIVersion != "v1" {
		t.Errorf("unexpected status payload: %+v", status)
	}

	// One metered call, then status reflects it.
	if rec := e.do(t, http.MethodGet, "/v1/models", key, nil); rec.Code != http.StatusOK {
		t.Fatalf("models call failed: %d", rec.Code)
	}
	rec = e.do(t, http.MethodGet, "/v1/status", key, nil)
	decodeJSON(t, rec, &status)
	if status.Usage.Current != 1 {
		t.Errorf("usage.current = %d after one metered call, want 1", status.Usage.Current)
	}
	if status.Usage.Limit != model.DefaultRateLimit {
		t.Errorf("usage.limit = %d, want %d", status.Usage.Limit, model.DefaultRateLimit)
	}

	// Status calls themselves never consume quota.
	for i := 0; i < 5; i++ {
		e.do(t, http.MethodGet, "/v1/status", key, nil)
	}
	rec = e.do(t, http.MethodGet, "/v1/status", key, nil)
	decodeJSON(t, rec, &status)
	if status.Usage.Current != 1 {
		t.Errorf("status calls consumed quota: usage.current = %d", status.Usage.Current)
	}
}

func TestGatewayQuotaExhaustion(t *testing.T) {
	e := newTestEnv(t)
	e.seedModel(t)
	acct, _ := e.newAccountWithKey(t)

	// A key with a tiny quota, inserted directly.
	plaintext := model.KeyPrefix + "deadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeef"
	key := &model.APIKey{
		AccountID:   acct.ID,
		Name:        "tiny quota",
		KeyHash:     store.HashAPIKey(plaintext),
		KeyPrefix:   model.KeyPrefix,
		Permissions: model.DefaultPermissions(),
		RateLimit:   2,
		IsActive:    true,
	}
	if err := e.store.CreateAPIKey(context.Background(), key); err != nil {
		t.Fatalf("CreateAPIKey: %v", err)
	}

	for i := 0; i < 2; i++ {
		if rec := e.do(t, http.MethodGet, "/v1/models", plaintext, nil); rec.Code != http.StatusOK {
			t.Fatalf("call %d: got status %d, want 200", i, rec.Code)
		}
	}

	rec := e.do(t, http.MethodGet, "/v1/models", plaintext, nil)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("got status %d at quota, want 429", rec.Code)
	}
	var body map[string]string
	decodeJSON(t, rec, &body)
	if body["error"] != "Rate limit exceeded" {
		t.Errorf("got error %q", body["error"])
	}

	// Status still works when the quota is gone.
	if rec := e.do(t, http.MethodGet, "/v1/status", plaintext, nil); rec.Code != http.StatusOK {
		t.Errorf("status blocked at quota: %d", rec.Code)
	}

	// Endpoint resolution precedes the quota gate: an unknown endpoint is
	// still a 404 for an exhausted key.
	if rec := e.do(t, http.MethodGet, "/v1/weather", plaintext, nil); rec.Code != http.StatusNotFound {
		t.Errorf("unknown endpoint at quota: got %d, want 404", rec.Code)
	}
}

func TestGatewayCapabilityCheck(t *testing.T) {
	e := newTestEnv(t)
	acct, _ := e.newAccountWithKey(t)

	// A key with no read capability.
	plaintext := model.KeyPrefix + "cafecafecafecafecafecafecafecafecafecafecafecafecafecafecafecafe"
	key := &model.APIKey{
		AccountID:   acct.ID,
		Name:        "no read",
		KeyHash:     store.HashAPIKey(plaintext),
		KeyPrefix:   model.KeyPrefix,
		Permissions: model.Permissions{Read: false, Write: false},
		RateLimit:   model.DefaultRateLimit,
		IsActive:    true,
	}
	if err := e.store.CreateAPIKey(context.Background(), key); err != nil {
		t.Fatalf("CreateAPIKey: %v", err)
	}

	rec := e.do(t, http.MethodGet, "/v1/models", plaintext, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("got status %d, want 403", rec.Code)
	}

	// Denied requests never consume quota.
	got, err := e.store.GetAPIKey(context.Background(), key.ID)
	if err != nil {
		t.Fatalf("GetAPIKey: %v", err)
	}
	if got.UsageCount != 0 {
		t.Errorf("forbidden request consumed quota: %d", got.UsageCount)
	}

	// Status needs no capability beyond authentication.
	if rec := e.do(t, http.MethodGet, "/v1/status", plaintext, nil); rec.Code != http.StatusOK {
		t.Errorf("status denied for capability-less key: %d", rec.Code)
	}
}

// ---------------------------------------------------------------------------
// Dashboard
// ---------------------------------------------------------------------------

func (e *testEnv) login(t *testing.T, email, password string) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: got status %d: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Token string `json:"token"`
	}
	decodeJSON(t, rec, &body)
	if body.Token == "" {
		t.Fatal("login returned empty token")
	}
	return body.Token
}

func (e *testEnv) doBearer(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.srv.ServeHTTP(rec, req)
	return rec
}

func TestDashboardKeyLifecycle(t *testing.T) {
	e := newTestEnv(t)
	e.seedModel(t)

	acct := &model.Account{
		Email:        "dash@leap.ai",
		PasswordHash: hashPassword(t, "correct-horse-battery"),
		Name:         "Dash",
		IsActive:     true,
	}
	if err := e.store.CreateAccount(context.Background(), acct); err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}

	token := e.login(t, "dash@leap.ai", "correct-horse-battery")

	// Create a key: the plaintext appears exactly once.
	rec := e.doBearer(t, http.MethodPost, "/api/v1/keys", token, map[string]string{"name": "production"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create key: got status %d: %s", rec.Code, rec.Body.String())
	}
	var created struct {
		ID      string `json:"id"`
		FullKey string `json:"full_key"`
		Name    string `json:"name"`
	}
	decodeJSON(t, rec, &created)
	if created.FullKey == "" || created.ID == "" {
		t.Fatalf("create response missing key material: %+v", created)
	}

	// The new key works against the gateway.
	if rec := e.do(t, http.MethodGet, "/v1/models", created.FullKey, nil); rec.Code != http.StatusOK {
		t.Fatalf("issued key rejected by gateway: %d", rec.Code)
	}

	// Listing shows the key but never the plaintext or hash.
	rec = e.doBearer(t, http.MethodGet, "/api/v1/keys", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list keys: got status %d", rec.Code)
	}
	if bytes.Contains(rec.Body.Bytes(), []byte(created.FullKey)) {
		t.Error("key listing leaked the plaintext")
	}
	if bytes.Contains(rec.Body.Bytes(), []byte(store.HashAPIKey(created.FullKey))) {
		t.Error("key listing leaked the hash")
	}

	// Revoke, then the gateway rejects the key.
	rec = e.doBearer(t, http.MethodDelete, "/api/v1/keys/"+created.ID, token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("revoke: got status %d: %s", rec.Code, rec.Body.String())
	}
	if rec := e.do(t, http.MethodGet, "/v1/models", created.FullKey, nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("revoked key still accepted: %d", rec.Code)
	}

	// Revoking someone else's key fails.
	other := &model.Account{
		Email:        "other@leap.ai",
		PasswordHash: hashPassword(t, "correct-horse-battery"),
		IsActive:     true,
	}
	if err := e.store.CreateAccount(context.Background(), other); err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	issued, err := e.keys.Issue(context.Background(), other.ID, "theirs")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	rec = e.doBearer(t, http.MethodDelete, "/api/v1/keys/"+issued.Key.ID, token, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("cross-account revoke: got status %d, want 404", rec.Code)
	}
}

func TestDashboardRequiresSession(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodGet, "/api/v1/keys", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("got status %d, want 401", rec.Code)
	}

	rec = e.doBearer(t, http.MethodGet, "/api/v1/keys", "not-a-jwt", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token: got status %d, want 401", rec.Code)
	}
}

// ---------------------------------------------------------------------------
// Public site endpoints
// ---------------------------------------------------------------------------

func TestNewsletterSubscribe(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodPost, "/api/v1/newsletter", "", map[string]string{
		"email": "Fan@Example.com",
		"name":  "Fan",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("first subscribe: got status %d: %s", rec.Code, rec.Body.String())
	}

	// Re-subscribing the same address is a 200, not a conflict.
	rec = e.do(t, http.MethodPost, "/api/v1/newsletter", "", map[string]string{
		"email": "fan@example.com",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("re-subscribe: got status %d, want 200", rec.Code)
	}

	rec = e.do(t, http.MethodPost, "/api/v1/newsletter", "", map[string]string{
		"email": "not an email",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid email: got status %d, want 400", rec.Code)
	}
}

func TestContactForm(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodPost, "/api/v1/contact", "", map[string]string{
		"name":    "Dana",
		"email":   "dana@example.com",
		"company": "Example Corp",
		"message": "API access please",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("contact: got status %d: %s", rec.Code, rec.Body.String())
	}

	rec = e.do(t, http.MethodPost, "/api/v1/contact", "", map[string]string{
		"email": "dana@example.com",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing name: got status %d, want 400", rec.Code)
	}
}

// ---------------------------------------------------------------------------
// System
// ---------------------------------------------------------------------------

func TestHealthEndpoints(t *testing.T) {
	e := newTestEnv(t)

	if rec := e.do(t, http.MethodGet, "/healthz", "", nil); rec.Code != http.StatusOK {
		t.Errorf("healthz: got status %d", rec.Code)
	}
	if rec := e.do(t, http.MethodGet, "/readyz", "", nil); rec.Code != http.StatusOK {
		t.Errorf("readyz: got status %d", rec.Code)
	}
}

func TestOpenAPIEndpoint(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodGet, "/openapi.json", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("openapi.json: got status %d", rec.Code)
	}

	var doc struct {
		OpenAPI string                 `json:"openapi"`
		Paths   map[string]interface{} `json:"paths"`
	}
	decodeJSON(t, rec, &doc)
	if doc.OpenAPI != "3.1.0" {
		t.Errorf("got openapi version %q", doc.OpenAPI)
	}
	for _, path := range []string{"/v1/models", "/v1/benchmarks", "/v1/status", "/api/v1/keys"} {
		if _, ok := doc.Paths[path]; !ok {
			t.Errorf("spec missing path %s", path)
		}
	}
}
