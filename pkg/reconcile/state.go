package reconcile

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fulmenhq/fcman/pkg/safeio"
)

// State records which files a deep check has already verified, so a
// long verify interrupted by a signal can resume where it left off.
// It persists as a JSON array of pretty paths; JSON keeps names with
// unusual characters (including newlines) intact.
//
// A nil *State is valid and means no state file is in use.
type State struct {
	path     string
	verified []string
	seen     map[string]bool
}

// LoadState reads a state file. A missing file yields an empty state.
func LoadState(path string) (*State, error) {
	s := &State{path: path, seen: make(map[string]bool)}

	data, err := os.ReadFile(path) // #nosec G304 -- user-chosen state file
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("reading state file %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &s.verified); err != nil {
		return nil, fmt.Errorf("state file %s: %w", path, err)
	}
	for _, p := range s.verified {
		s.seen[p] = true
	}
	return s, nil
}

// Verified reports whether the path passed checksum verification in a
// previous run.
func (s *State) Verified(pretty string) bool {
	return s != nil && s.seen[pretty]
}

// MarkVerified records a successful checksum comparison. Mismatched
// files are never marked, so they are re-verified on the next run.
func (s *State) MarkVerified(pretty string) {
	if s == nil || s.seen[pretty] {
		return
	}
	s.seen[pretty] = true
	s.verified = append(s.verified, pretty)
}

// Save writes the verified list back to the state file.
func (s *State) Save() error {
	if s == nil {
		return nil
	}
	data, err := json.Marshal(s.verified)
	if err != nil {
		return err
	}
	return safeio.WriteFileAtomic(s.path, data, 0o644)
}
