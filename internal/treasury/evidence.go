package treasury

import (
	"encoding/base64"
	"fmt"
	"mime"
	"os"
	"path/filepath"
)

// EvidenceState is the lifecycle of an evidence-file ingestion.
type EvidenceState int

const (
	EvidenceIdle EvidenceState = iota
	EvidencePending
	EvidenceReady
	EvidenceFailed
)

// EvidenceSlot holds the asynchronous result of ingesting an evidence file.
// While a read is pending, evidence is treated as absent and finalize guards
// must re-check after resolution. There is no cancellation: selecting a new
// file supersedes the prior pending read, whose late resolution is dropped
// (last write wins).
type EvidenceSlot struct {
	state EvidenceState
	value string
	gen   int
}

// State returns the current lifecycle state.
func (s *EvidenceSlot) State() EvidenceState { return s.state }

// Begin marks the slot pending and returns the generation token the eventual
// resolution must present. A second Begin supersedes the first.
func (s *EvidenceSlot) Begin() int {
	s.gen++
	s.state = EvidencePending
	s.value = ""
	return s.gen
}

// Resolve completes the ingestion started by Begin. Stale tokens are
// ignored and leave the slot untouched. Returns whether the resolution was
// applied.
func (s *EvidenceSlot) Resolve(token int, value string, err error) bool {
	if token != s.gen {
		return false
	}
	if err != nil {
		s.state = EvidenceFailed
		s.value = ""
		return true
	}
	s.state = EvidenceReady
	s.value = value
	return true
}

// Clear resets the slot to idle, invalidating any in-flight read.
func (s *EvidenceSlot) Clear() {
	s.gen++
	s.state = EvidenceIdle
	s.value = ""
}

// Value returns the embeddable evidence string. ok is false unless the slot
// is ready; pending and failed reads both read as absent.
func (s *EvidenceSlot) Value() (value string, ok bool) {
	if s.state != EvidenceReady {
		return "", false
	}
	return s.value, true
}

// DataURI builds the embeddable representation of an evidence binary.
func DataURI(filename string, data []byte) string {
	ctype := mime.TypeByExtension(filepath.Ext(filename))
	if ctype == "" {
		ctype = "application/octet-stream"
	}
	return fmt.Sprintf("data:%s;base64,%s", ctype, base64.StdEncoding.EncodeToString(data))
}

// Ingest reads an evidence file and resolves it into the slot. The slot
// drops the result if another selection superseded this one meanwhile.
func Ingest(slot *EvidenceSlot, path string) error {
	token := slot.Begin()
	data, err := os.ReadFile(path)
	if err != nil {
		slot.Resolve(token, "", err)
		return fmt.Errorf("reading evidence %s: %w", path, err)
	}
	slot.Resolve(token, DataURI(filepath.Base(path), data), nil)
	return nil
}
