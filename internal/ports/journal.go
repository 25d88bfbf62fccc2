// Package ports defines the interfaces (contracts) that adapters must implement.
// These are the boundaries of the hexagonal architecture. The kernel and domain
// packages depend only on these interfaces, never on concrete adapters.
package ports

import "time"

// Journal persists library lifecycle events to durable storage.
// The backing store (bbolt) is profile-scoped: each kernel profile gets its own
// namespace. Concurrent reads are safe; writes are serialized by the adapter.
//
// Crash safety: Append must be transactional. A crash mid-write must not
// corrupt previously committed entries.
type Journal interface {
	// Append records one lifecycle entry for a profile and returns its
	// sequence number (monotonic per profile, starting at 1).
	Append(profile string, entry JournalEntry) (uint64, error)

	// Entries returns up to limit entries for a profile, newest first.
	// limit <= 0 returns all entries. Returns nil, nil for an unknown profile.
	Entries(profile string, limit int) ([]JournalEntry, error)

	// Snapshot returns the last recorded entry per library for a profile.
	// Returns an empty map for an unknown profile.
	Snapshot(profile string) (map[string]JournalEntry, error)

	// DeleteProfile removes all entries for a profile.
	// Idempotent: deleting a nonexistent profile is not an error.
	DeleteProfile(profile string) error

	// Profiles lists the profiles that have entries, sorted.
	Profiles() ([]string, error)
}

// JournalEntry is one persisted lifecycle transition.
type JournalEntry struct {
	Seq     uint64    `json:"seq"`
	Library string    `json:"library"`
	Action  string    `json:"action"` // "register", "initiate", "terminate"
	Scope   string    `json:"scope"`  // "builtin" or "dynamic"
	State   string    `json:"state"`  // library state after the transition
	Error   string    `json:"error,omitempty"`
	At      time.Time `json:"at"`
}
