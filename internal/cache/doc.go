// Package cache keeps downloaded energy datasets on disk with a TTL.
//
// Remote sources are fetched once and reused until the entry expires:
//   - one JSON file per source under ~/.energyscope/cache/
//   - keys are the SHA-256 of the normalized source URL
//   - TTL defaults to one day and is set by config, ENERGYSCOPE_CACHE_TTL_SECONDS or flags
//   - expired entries are removed on read or by Purge
package cache
