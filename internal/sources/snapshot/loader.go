package snapshot

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Loader reads and parses a snapshot file.
type Loader struct {
	filePath string
}

// NewLoader creates a snapshot loader for the given file.
func NewLoader(filePath string) *Loader {
	return &Loader{filePath: filePath}
}

// Load reads and parses the snapshot yaml.
func (l *Loader) Load() (*Snapshot, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}

	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot yaml: %w", err)
	}

	if len(snap.BridgeDomains) == 0 {
		return nil, fmt.Errorf("snapshot %s contains no bridge domains", l.filePath)
	}

	return &snap, nil
}
