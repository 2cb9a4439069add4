package auth

import "errors"

var (
	// ErrMissingAPIKey is returned when the X-API-Key header is absent.
	ErrMissingAPIKey = errors.New("missing api key")

	// ErrUnknownTenant is returned when no active tenant matches the slug.
	ErrUnknownTenant = errors.New("tenant not found")

	// ErrUnknownAPI is returned when no active api matches the tenant and slug.
	ErrUnknownAPI = errors.New("api not found")

	// ErrInvalidAPIKey is returned when no active key of the tenant matches the hashed secret.
	ErrInvalidAPIKey = errors.New("invalid or inactive api key")

	// ErrInvalidClientID is returned when the asserted client id is unknown for the tenant.
	ErrInvalidClientID = errors.New("invalid client id")

	// ErrInvalidPlan is returned when the active plan is missing or inactive.
	ErrInvalidPlan = errors.New("plan invalid")
)
