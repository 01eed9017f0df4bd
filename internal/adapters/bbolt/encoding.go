// Binary encoding for assessment blobs.
//
// Each stored assessment is a version-prefixed gob blob. The version byte
// lets a future format change coexist with old records: decode dispatches
// on the prefix instead of guessing.
package bbolt

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/tomas/vigia/internal/domain/risk"
)

// assessmentFormatV1 is the current blob format: gob of risk.Assessment.
const assessmentFormatV1 = byte(1)

// encodeAssessment serializes an assessment with a version prefix.
func encodeAssessment(a *risk.Assessment) ([]byte, error) {
	if a == nil {
		return nil, fmt.Errorf("nil assessment")
	}

	var buf bytes.Buffer
	buf.WriteByte(assessmentFormatV1)
	if err := gob.NewEncoder(&buf).Encode(a); err != nil {
		return nil, fmt.Errorf("gob encode: %w", err)
	}
	return buf.Bytes(), nil
}

// decodeAssessment deserializes a version-prefixed assessment blob.
func decodeAssessment(data []byte) (*risk.Assessment, error) {
	if len(data) < 2 {
		return nil, fmt.Errorf("blob too short (%d bytes)", len(data))
	}
	if data[0] != assessmentFormatV1 {
		return nil, fmt.Errorf("unknown format version %d", data[0])
	}

	var a risk.Assessment
	if err := gob.NewDecoder(bytes.NewReader(data[1:])).Decode(&a); err != nil {
		return nil, fmt.Errorf("gob decode: %w", err)
	}
	return &a, nil
}
