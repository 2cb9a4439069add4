// Package auth resolves inbound credentials into a caller identity.
//
// The model is two-tier: the api key authenticates the tenant's caller, and
// an optional X-Client-ID selects a sub-identity with its own plan. A tenant
// may hand one key to an internal gateway fanning out to many downstream
// clients; without the header the key itself is the quota subject.
package auth
