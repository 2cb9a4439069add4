// Package counter abstracts the key/value store that backs quota and usage
// counters: atomic increment plus TTL.
//
// Two implementations share the contract. RedisStore wraps a go-redis client
// and is preferred. MemoryStore is the in-process fallback selected once at
// startup when the remote probe fails; its quotas hold within a single
// process but are not shared across replicas. Selection happens in Open and
// is fixed for the process lifetime.
package counter
