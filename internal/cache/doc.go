// Package cache defines the disk-backed store that maps resolved cache keys to
// flat <StoragePath>/<prefix><label> files. The store exposes stat/read/write
// primitives over an afero filesystem and surfaces file info (size, modtime)
// so that higher layers can decide freshness from metadata alone. Writes
// truncate in place; there is no temp file + rename step, so a crash mid-write
// may leave a partial file that the codec later rejects as malformed.
// The persist package depends on this package for all filesystem logic.
package cache
