// Package server hosts the Fiber HTTP service that fronts the typed cache:
// request-id middleware, the namespace registry built from config, and the
// /cache/:namespace/* handlers. Each namespace owns one Persister sharing the
// process-wide Store and detached-write Dispatcher. Diagnostics live in the
// routes subpackage so this package stays free of presentation concerns.
package server
