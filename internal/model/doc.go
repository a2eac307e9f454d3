// Package model defines the data structures shared by the registry, the
// store and the sync engine.
//
// # Repository
//
// A [Repository] is one tracked remote. Its name, URL and local path never
// change after construction. Status, branch, last commit and the last
// outcome message are mutated only through [Repository.Transition] and
// [Repository.Complete], both of which take the repository's own lock.
// Complete writes the new status and head in the same critical section.
//
// Readers take a [Snapshot], an immutable copy with a version counter, so a
// status change from a background operation is never observed half-written.
//
// # Status
//
// [Status] follows a small state machine:
//
//	NotCloned -> Cloning -> UpToDate | Error
//	UpToDate | Error -> Updating -> UpToDate | Error
//
// Error is not terminal. Any state may fall into Error when an operation's
// precondition fails.
//
// # Record
//
// [Record] is the persisted form: name, url, local_path, status, branch and
// last_commit, all strings.
package model
