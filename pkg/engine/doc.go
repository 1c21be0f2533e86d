// Package engine implements the publishing lanes: claiming and publishing due
// posts, refreshing metrics for published ones, and renewing expiring
// platform credentials.
//
// Each lane tick is a short-lived, self-contained unit of work. Correctness
// under concurrent engine instances is enforced at the storage layer (the
// claim transaction), not by in-process locking, so any number of instances
// may run the same lanes against one database.
package engine
