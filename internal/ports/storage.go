// Package ports defines the interfaces (contracts) that adapters must implement.
// These are the boundaries of the hexagonal architecture. Domain logic depends
// only on these interfaces, never on concrete implementations.
package ports

import "github.com/tomas/vigia/internal/domain/risk"

// Storage persists the fitted model, assessment history, and per-zone state.
// The backing store (bbolt) is project-scoped: each projectID gets its own
// namespace. Concurrent reads are safe; writes are serialized by the adapter.
//
// Crash safety: all Save/Append operations must be transactional. A crash
// mid-write must not corrupt previously committed data.
type Storage interface {
	// SaveModel persists the fitted Bayesian model state for a project.
	// Overwrites any prior model.
	SaveModel(projectID string, state *ModelState) error

	// LoadModel retrieves the fitted model state for a project.
	// Returns nil, nil if no model has been trained yet.
	LoadModel(projectID string) (*ModelState, error)

	// AppendAssessments adds assessments to the project's history in
	// chronological key order. Appending an empty batch is a no-op.
	AppendAssessments(projectID string, assessments []risk.Assessment) error

	// RecentAssessments returns up to limit assessments, newest first.
	RecentAssessments(projectID string, limit int) ([]risk.Assessment, error)

	// SaveZoneState records the latest assessment for a zone.
	SaveZoneState(projectID string, zone string, a *risk.Assessment) error

	// LoadZoneStates returns the latest assessment per zone.
	// Returns an empty map (not nil) when no zones exist.
	LoadZoneStates(projectID string) (map[string]risk.Assessment, error)

	// DeleteProject removes all data for a project.
	// Idempotent: deleting a nonexistent project is not an error.
	DeleteProject(projectID string) error
}

// ModelState is the serializable form of a fitted Bayesian model. It is a
// plain-data snapshot: structure plus flat CPT rows, enough to reconstruct
// the model without refitting.
type ModelState struct {
	Variables []ModelVariable `json:"variables"`
	CPTs      []ModelCPT      `json:"cpts"`
	TrainedAt int64           `json:"trained_at"` // unix seconds
	Samples   int             `json:"samples"`    // observations fitted from
}

// ModelVariable mirrors one network node.
type ModelVariable struct {
	Name    string   `json:"name"`
	States  []string `json:"states"`
	Parents []string `json:"parents,omitempty"`
}

// ModelCPT holds one variable's flat probability table.
// Layout matches the in-memory CPT: Values[parentIndex*card + stateIndex].
type ModelCPT struct {
	Variable string    `json:"variable"`
	Values   []float64 `json:"values"`
}
