package registry

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store runs read-only queries against the registry tables owned by the
// control plane. Table and column names are fixed by the shared schema.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wraps an already-connected pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// TenantBySlug returns the active tenant with the given slug.
func (s *Store) TenantBySlug(ctx context.Context, slug string) (Tenant, error) {
	const q = `SELECT id, slug, is_active FROM tenants_tenant WHERE slug = $1 AND is_active = true`

	var t Tenant
	if err := s.pool.QueryRow(ctx, q, slug).Scan(&t.ID, &t.Slug, &t.IsActive); err != nil {
		return Tenant{}, mapErr(err)
	}
	return t, nil
}

// APIBySlug returns the tenant's active api registration with the given slug.
func (s *Store) APIBySlug(ctx context.Context, tenantID int64, slug string) (API, error) {
	const q = `SELECT id, tenant_id, slug, upstream_base_url, is_active
		FROM apis_api WHERE tenant_id = $1 AND slug = $2 AND is_active = true`

	var a API
	if err := s.pool.QueryRow(ctx, q, tenantID, slug).Scan(&a.ID, &a.TenantID, &a.Slug, &a.UpstreamBaseURL, &a.IsActive); err != nil {
		return API{}, mapErr(err)
	}
	return a, nil
}

// KeyByHash returns the tenant's active api key matching the hashed secret.
// Scoping the lookup to the tenant prevents cross-tenant key reuse.
func (s *Store) KeyByHash(ctx context.Context, tenantID int64, hashedKey string) (APIKey, error) {
	const q = `SELECT id, tenant_id, plan_id, hashed_key, is_active
		FROM apis_apikey WHERE hashed_key = $1 AND tenant_id = $2 AND is_active = true`

	var k APIKey
	if err := s.pool.QueryRow(ctx, q, hashedKey, tenantID).Scan(&k.ID, &k.TenantID, &k.PlanID, &k.HashedKey, &k.IsActive); err != nil {
		return APIKey{}, mapErr(err)
	}
	return k, nil
}

// ClientByID returns the tenant's client with the given external identifier.
func (s *Store) ClientByID(ctx context.Context, tenantID int64, clientID string) (Client, error) {
	const q = `SELECT id, tenant_id, plan_id, client_id
		FROM apis_client WHERE client_id = $1 AND tenant_id = $2`

	var c Client
	if err := s.pool.QueryRow(ctx, q, clientID, tenantID).Scan(&c.ID, &c.TenantID, &c.PlanID, &c.ClientID); err != nil {
		return Client{}, mapErr(err)
	}
	return c, nil
}

// PlanByID returns the plan row regardless of its active flag; callers decide
// how to treat inactive plans.
func (s *Store) PlanByID(ctx context.Context, id int64) (Plan, error) {
	const q = `SELECT id, requests_per_minute, requests_per_month, is_active FROM billing_plan WHERE id = $1`

	var p Plan
	if err := s.pool.QueryRow(ctx, q, id).Scan(&p.ID, &p.RequestsPerMinute, &p.RequestsPerMonth, &p.IsActive); err != nil {
		return Plan{}, mapErr(err)
	}
	return p, nil
}

func mapErr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return errors.Join(ErrQueryFailed, err)
}
