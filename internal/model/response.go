package model

// Version strings reported by the status endpoint and the MCP status tool.
const (
	GatewayVersion = "1.0.0"
	OzoneVersion   = "O3-1.2.0"
	APIVersion     = "v1"
)

// ListResponse is the standard envelope for gateway list endpoints.
type ListResponse struct {
	Data interface{} `json:"data"`
	Meta *ListMeta   `json:"meta,omitempty"`
}

// ListMeta carries item count and the endpoint that produced the list.
type ListMeta struct {
	Count    int    `json:"count"`
	Endpoint string `json:"endpoint,omitempty"`
}

// ErrorResponse is the envelope for every error the API returns. Internal
// error text is never placed here; callers see only the taxonomy message.
type ErrorResponse struct {
	Error              string   `json:"error"`
	AvailableEndpoints []string `json:"available_endpoints,omitempty"`
}

// StatusResponse is the payload of the gateway status endpoint.
type StatusResponse struct {
	Status       string      `json:"status"`
	Version      string      `json:"version"`
	OzoneVersion string      `json:"ozone_version"`
	APIVersion   string      `json:"api_version"`
	UserID       string      `json:"user_id"`
	Permissions  Permissions `json:"permissions"`
	Usage        UsageInfo   `json:"usage"`
}

// UsageInfo reports a key's consumed quota against its limit.
type UsageInfo struct {
	Current int64 `json:"current"`
	Limit   int64 `json:"limit"`
}
