// Package cache stores validated insights by query key.
//
// The default MemoryCache is unbounded and never evicts. LRUCache bounds the
// number of entries and RedisCache shares entries between processes. New
// selects a backend from a Policy.
package cache
