package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrymomot/gatekit/internal/registry"
)

// Registry is the read-only slice of the control-plane schema the resolver
// consumes. *registry.Store satisfies it.
type Registry interface {
	TenantBySlug(ctx context.Context, slug string) (registry.Tenant, error)
	APIBySlug(ctx context.Context, tenantID int64, slug string) (registry.API, error)
	KeyByHash(ctx context.Context, tenantID int64, hashedKey string) (registry.APIKey, error)
	ClientByID(ctx context.Context, tenantID int64, clientID string) (registry.Client, error)
	PlanByID(ctx context.Context, id int64) (registry.Plan, error)
}

// Request carries the routing slugs and credential headers of one inbound call.
type Request struct {
	TenantSlug string
	APISlug    string
	APIKey     string // raw X-API-Key value; hashed before lookup
	ClientID   string // optional X-Client-ID value
}

// Identity is the resolved caller: registry rows plus the plan whose quotas
// apply. Client is nil when no X-Client-ID was supplied.
type Identity struct {
	Tenant registry.Tenant
	API    registry.API
	Key    registry.APIKey
	Client *registry.Client
	Plan   registry.Plan
}

// Resolver authenticates and authorizes inbound requests against the registry.
type Resolver struct {
	reg Registry
}

// NewResolver creates a resolver backed by the given registry.
func NewResolver(reg Registry) *Resolver {
	return &Resolver{reg: reg}
}

// Resolve walks the lookup ladder, short-circuiting on the first failure:
// missing key, unknown tenant, unknown api, key miss (tenant-scoped, so a
// key issued by another tenant never matches), unknown client, and finally
// a missing or inactive plan. When a client id is supplied the client's plan
// replaces the key's plan; the client also becomes the rate-limit subject.
//
// Registry infrastructure failures pass through unwrapped by these sentinel
// errors so the caller can map them to a 5xx instead of a client error.
func (r *Resolver) Resolve(ctx context.Context, req Request) (Identity, error) {
	if req.APIKey == "" {
		return Identity{}, ErrMissingAPIKey
	}

	hashed := HashKey(req.APIKey)

	tenant, err := r.reg.TenantBySlug(ctx, req.TenantSlug)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return Identity{}, ErrUnknownTenant
		}
		return Identity{}, fmt.Errorf("auth: tenant lookup: %w", err)
	}

	api, err := r.reg.APIBySlug(ctx, tenant.ID, req.APISlug)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return Identity{}, ErrUnknownAPI
		}
		return Identity{}, fmt.Errorf("auth: api lookup: %w", err)
	}

	key, err := r.reg.KeyByHash(ctx, tenant.ID, hashed)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return Identity{}, ErrInvalidAPIKey
		}
		return Identity{}, fmt.Errorf("auth: key lookup: %w", err)
	}

	identity := Identity{Tenant: tenant, API: api, Key: key}

	planID := key.PlanID
	if req.ClientID != "" {
		client, err := r.reg.ClientByID(ctx, tenant.ID, req.ClientID)
		if err != nil {
			if errors.Is(err, registry.ErrNotFound) {
				return Identity{}, ErrInvalidClientID
			}
			return Identity{}, fmt.Errorf("auth: client lookup: %w", err)
		}
		identity.Client = &client
		planID = client.PlanID
	}

	plan, err := r.reg.PlanByID(ctx, planID)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return Identity{}, ErrInvalidPlan
		}
		return Identity{}, fmt.Errorf("auth: plan lookup: %w", err)
	}
	if !plan.IsActive {
		return Identity{}, ErrInvalidPlan
	}
	identity.Plan = plan

	return identity, nil
}
