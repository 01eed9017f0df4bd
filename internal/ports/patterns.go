package ports

// EventScanner derives ignition event types from free-text observer notes
// using multi-pattern matching (Aho-Corasick). A single pass over the note
// finds all matching keywords simultaneously, regardless of how many
// keywords are in the table. This is O(n + m + z) where n=note length,
// m=total pattern length, z=number of matches.
type EventScanner interface {
	// Scan returns the event types whose keywords appear in the note,
	// deduplicated, in first-match order. Returns nil when nothing
	// matches. Matching is case-insensitive.
	Scan(note string) []string
}
