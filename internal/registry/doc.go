// Package registry reads the control-plane tables the data plane joins at
// request time: tenants, apis, api keys, clients and billing plans. All
// access is read-only; the control plane owns the schema and its lifecycle.
//
// Lookups that match no row return ErrNotFound so callers can distinguish a
// registry miss (a client error) from an infrastructure failure.
package registry
