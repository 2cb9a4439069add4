// Package gateway is the data-plane entry point: it routes
// /{tenant}/{api}/{path} requests through authentication, quota
// enforcement, upstream forwarding, and usage recording, and maps every
// pipeline failure to a stable JSON error contract.
package gateway
