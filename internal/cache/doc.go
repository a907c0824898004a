// Package cache implements the in-process query result cache.
//
// The cache maps a deterministic fingerprint of (query text, bind
// parameters) to a previously computed result. Entries expire after a
// caller-supplied TTL, the entry count is bounded by a configured
// capacity with LRU eviction, and hit/miss/eviction counters are kept
// for the admin stats endpoint.
//
// Usage:
//
//	c := cache.New(cache.Config{Capacity: 1024})
//	city, err := cache.Cached(ctx, c, cache.Query{
//	    Text:   queryGetCity,
//	    Params: []any{id},
//	    TTL:    5 * time.Minute,
//	    Tags:   []string{"cities"},
//	}, fetchCity)
package cache
