// Package resource implements the request-lifecycle and collection pattern
// shared by every entity the console manages.
//
// # Overview
//
// A Slice owns one Collection (the ordered client-side copy of an entity type
// plus a detail slot) and one Tracker (a RequestState per operation). Remote
// calls are passed in as functions, so the package knows nothing about HTTP:
//
//	patients := resource.New("patients", func(p prms.Patient) string { return p.ID })
//	err := patients.FetchAll(ctx, client.Patients.List)
//	state := patients.State(resource.OpFetchAll) // succeeded / failed + message
//	rows := patients.Items()
//
// # Lifecycle
//
// Each op moves idle -> pending -> succeeded | failed. Invoking the op again
// moves it straight back to pending and clears the previous error. Errors are
// recorded in the RequestState; the methods also return them so command-line
// callers can exit non-zero, but the UI reads state, not return values.
//
// # Mutations
//
// Updates are pessimistic. The collection changes only after the remote call
// confirmed success:
//
//   - FetchAll / Load: ReplaceAll with exactly what the server returned
//   - Save: UpsertOne (in place by identifier, else append)
//   - Delete: RemoveOne (no-op when absent)
//   - FetchOne: SetCurrent
//
// A create or update result without an identifier fails the op with a
// ConsistencyError wrapping ErrMissingID and leaves the collection untouched.
//
// # Overlapping requests
//
// Every invocation gets a monotonic sequence number. By default the last call
// to resolve wins. WithStaleGuard instead discards any response older than the
// last one applied for that op, so a slow superseded fetch cannot overwrite a
// newer list.
//
// # Concurrency
//
// Collection and Tracker are guarded by RWMutexes; Slice serializes outcome
// recording with collection mutation. Remote calls run outside any lock.
package resource
