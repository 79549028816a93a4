// pkg/chunk/format.go

package chunk

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FormatFile is the manifest written into every storage root.
const FormatFile = "glacier.json"

const FormatVersion = 1

// Format describes how a storage root was formatted. It is persisted
// next to the chunk files and checked on every open, so two instances
// with different settings cannot silently share a root.
type Format struct {
	UUID        string
	ChunkSize   int
	Compression string
	Encrypted   bool
	Version     int
}

// CheckConfig fails when the settings of an existing root do not match
// the ones the caller asked for.
func (f *Format) CheckConfig(chunkSize int, compression string, encrypted bool) error {
	if f.ChunkSize != chunkSize {
		return fmt.Errorf("chunk size mismatch: formatted with %d, opened with %d", f.ChunkSize, chunkSize)
	}
	if f.Compression != compression {
		return fmt.Errorf("compression mismatch: formatted with %s, opened with %s", f.Compression, compression)
	}
	if f.Encrypted != encrypted {
		return fmt.Errorf("encryption mismatch: formatted with encrypted=%v", f.Encrypted)
	}
	return nil
}

// StoreFormat writes the manifest into dir.
func StoreFormat(dir string, f *Format) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, FormatFile), data, 0644)
}

// LoadFormat reads the manifest of dir. It returns (nil, nil) when the
// root was never formatted.
func LoadFormat(dir string) (*Format, error) {
	data, err := os.ReadFile(filepath.Join(dir, FormatFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var f Format
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %s", FormatFile, err)
	}
	return &f, nil
}
