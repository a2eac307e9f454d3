// Package store persists the ordered list of tracked repositories.
//
// The package defines the [Store] interface and two backends:
//
//   - [File] keeps a human-diffable YAML document. Writes go to a temporary
//     file in the same directory which is synced and renamed over the
//     previous document, so a crash never leaves a torn file behind.
//   - [Bolt] keeps the same records in a bbolt database, one bucket rewritten
//     per transaction.
//
// Use [Open] to pick a backend by name:
//
//	st, err := store.Open(store.BackendFile, "/home/u/.config/gitroster/repositories.yaml")
//	records, err := st.Load()
//	if errors.Is(err, store.ErrNotFound) {
//	    // first run, empty registry
//	}
//
// Both backends serialize Save calls with a mutex.
package store
