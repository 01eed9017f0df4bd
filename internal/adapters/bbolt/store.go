// Package bbolt implements the ports.Storage interface using bbolt (embedded
// B+ tree). Each project gets its own top-level bucket. Within that bucket,
// "model", "assessments" and "zones" sub-buckets hold the fitted model,
// assessment history and per-zone latest state. Writes are transactional;
// a crash mid-write cannot corrupt previously committed data.
package bbolt

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/tomas/vigia/internal/domain/risk"
	"github.com/tomas/vigia/internal/ports"
)

// Bucket keys
var (
	bucketModel       = []byte("model")
	bucketAssessments = []byte("assessments")
	bucketZones       = []byte("zones")
	keyState          = []byte("state")
)

// Store implements ports.Storage backed by bbolt.
type Store struct {
	db *bolt.DB
}

// NewStore opens (or creates) a bbolt database at the given path.
func NewStore(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("bbolt open: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying bbolt database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveModel persists the fitted model state for a project.
func (s *Store) SaveModel(projectID string, state *ports.ModelState) error {
	if state == nil {
		return fmt.Errorf("nil model state")
	}
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal model: %w", err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		proj, err := tx.CreateBucketIfNotExists([]byte(projectID))
		if err != nil {
			return err
		}
		mb, err := proj.CreateBucketIfNotExists(bucketModel)
		if err != nil {
			return err
		}
		return mb.Put(keyState, data)
	})
}

// LoadModel retrieves the fitted model state for a project.
// Returns nil, nil if no model has been trained yet.
func (s *Store) LoadModel(projectID string) (*ports.ModelState, error) {
	var data []byte

	err := s.db.View(func(tx *bolt.Tx) error {
		proj := tx.Bucket([]byte(projectID))
		if proj == nil {
			return nil
		}
		mb := proj.Bucket(bucketModel)
		if mb == nil {
			return nil
		}
		// Copy bytes out of the transaction (bbolt slices are only valid within tx)
		if v := mb.Get(keyState); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("bbolt view: %w", err)
	}
	if data == nil {
		return nil, nil
	}

	var state ports.ModelState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("unmarshal model: %w", err)
	}
	return &state, nil
}

// assessmentKey builds a chronologically sortable key: 8 bytes of unix-nano
// assessment time plus a 4-byte bucket sequence to disambiguate identical
// timestamps. Big-endian, so bbolt's byte order is time order.
func assessmentKey(a *risk.Assessment, seq uint64) []byte {
	key := make([]byte, 12)
	binary.BigEndian.PutUint64(key[:8], uint64(a.AssessedAt.UnixNano()))
	binary.BigEndian.PutUint32(key[8:], uint32(seq))
	return key
}

// AppendAssessments adds a batch of assessments to the project's history.
func (s *Store) AppendAssessments(projectID string, assessments []risk.Assessment) error {
	if len(assessments) == 0 {
		return nil
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		proj, err := tx.CreateBucketIfNotExists([]byte(projectID))
		if err != nil {
			return err
		}
		ab, err := proj.CreateBucketIfNotExists(bucketAssessments)
		if err != nil {
			return err
		}
		for i := range assessments {
			seq, err := ab.NextSequence()
			if err != nil {
				return err
			}
			data, err := encodeAssessment(&assessments[i])
			if err != nil {
				return fmt.Errorf("encode assessment %s: %w", assessments[i].ID, err)
			}
			if err := ab.Put(assessmentKey(&assessments[i], seq), data); err != nil {
				return err
			}
		}
		return nil
	})
}

// RecentAssessments returns up to limit assessments, newest first.
func (s *Store) RecentAssessments(projectID string, limit int) ([]risk.Assessment, error) {
	if limit <= 0 {
		return nil, nil
	}

	var out []risk.Assessment
	err := s.db.View(func(tx *bolt.Tx) error {
		proj := tx.Bucket([]byte(projectID))
		if proj == nil {
			return nil
		}
		ab := proj.Bucket(bucketAssessments)
		if ab == nil {
			return nil
		}

		c := ab.Cursor()
		for k, v := c.Last(); k != nil && len(out) < limit; k, v = c.Prev() {
			a, err := decodeAssessment(v)
			if err != nil {
				return fmt.Errorf("decode assessment at key %x: %w", k, err)
			}
			out = append(out, *a)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SaveZoneState records the latest assessment for a zone.
func (s *Store) SaveZoneState(projectID string, zone string, a *risk.Assessment) error {
	if zone == "" {
		return fmt.Errorf("empty zone")
	}
	data, err := encodeAssessment(a)
	if err != nil {
		return fmt.Errorf("encode zone state: %w", err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		proj, err := tx.CreateBucketIfNotExists([]byte(projectID))
		if err != nil {
			return err
		}
		zb, err := proj.CreateBucketIfNotExists(bucketZones)
		if err != nil {
			return err
		}
		return zb.Put([]byte(zone), data)
	})
}

// LoadZoneStates returns the latest assessment per zone.
func (s *Store) LoadZoneStates(projectID string) (map[string]risk.Assessment, error) {
	out := make(map[string]risk.Assessment)

	err := s.db.View(func(tx *bolt.Tx) error {
		proj := tx.Bucket([]byte(projectID))
		if proj == nil {
			return nil
		}
		zb := proj.Bucket(bucketZones)
		if zb == nil {
			return nil
		}
		return zb.ForEach(func(k, v []byte) error {
			a, err := decodeAssessment(v)
			if err != nil {
				return fmt.Errorf("decode zone %q: %w", k, err)
			}
			out[string(k)] = *a
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteProject removes all data for a project. Idempotent.
func (s *Store) DeleteProject(projectID string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket([]byte(projectID)) == nil {
			return nil
		}
		return tx.DeleteBucket([]byte(projectID))
	})
}
