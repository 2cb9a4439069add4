package registry

// Tenant is a registered customer namespace, addressed by the first path
// segment of the gateway URL.
type Tenant struct {
	ID       int64
	Slug     string
	IsActive bool
}

// API binds a per-tenant slug to an upstream base URL.
type API struct {
	ID              int64
	TenantID        int64
	Slug            string
	UpstreamBaseURL string
	IsActive        bool
}

// APIKey is an opaque tenant secret, stored only as a SHA-256 hex digest.
type APIKey struct {
	ID        int64
	TenantID  int64
	PlanID    int64
	HashedKey string
	IsActive  bool
}

// Client is an optional sub-identity within a tenant carrying its own plan,
// asserted per-request via the X-Client-ID header.
type Client struct {
	ID       int64
	TenantID int64
	PlanID   int64
	ClientID string
}

// Plan is a request-rate quota set. RequestsPerMonth is nil when the plan
// carries no monthly cap.
type Plan struct {
	ID                int64
	RequestsPerMinute int64
	RequestsPerMonth  *int64
	IsActive          bool
}
