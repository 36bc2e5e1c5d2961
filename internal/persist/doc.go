// Package persist implements the typed cache entry store on top of the cache
// and codec packages.
//
// A Persister[T] answers two questions: "give me the value for key K if it is
// not older than maxAge" (Load) and "store this value under K" (Save). Load
// decides freshness from file metadata only and treats missing or expired
// entries as absence, never as errors. Save either writes inline or hands the
// work to a Dispatcher and returns immediately; detached failures are only
// visible in the logs. Expired files are left on disk and simply overwritten
// by the next Save.
package persist
