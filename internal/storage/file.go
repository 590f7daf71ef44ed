package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// FileStore keeps the world as a single zstd-compressed JSON document.
type FileStore struct {
	path string

	enc *zstd.Encoder
	dec *zstd.Decoder

	mu sync.Mutex
}

func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("snapshot path must be set")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating snapshot directory: %w", err)
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("creating zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		_ = enc.Close()
		return nil, fmt.Errorf("creating zstd decoder: %w", err)
	}

	return &FileStore{path: path, enc: enc, dec: dec}, nil
}

func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Save(snap *Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	jsonData, err := json.Marshal(NewAsset(SnapshotID, snap))
	if err != nil {
		return fmt.Errorf("marshalling json: %w", err)
	}

	return atomicWrite(s.path, s.enc.EncodeAll(jsonData, nil), 0o644)
}

func (s *FileStore) Load() (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	compressed, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	jsonData, err := s.dec.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("decompressing snapshot: %w", err)
	}

	asset := &Asset[*Snapshot]{}
	if err := json.Unmarshal(jsonData, asset); err != nil {
		return nil, fmt.Errorf("unmarshalling asset: %w", err)
	}
	if asset.Spec == nil {
		return nil, fmt.Errorf("%s: snapshot body missing", filepath.Base(s.path))
	}
	if err := asset.Validate(); err != nil {
		return nil, fmt.Errorf("validating %s: %w", filepath.Base(s.path), err)
	}

	return asset.Spec, nil
}

func (s *FileStore) Close() error {
	s.dec.Close()
	return s.enc.Close()
}

// atomicWrite writes data to a temp file then renames it to the target path.
// This prevents partial or empty files if the process is interrupted.
func atomicWrite(path string, data []byte, perm os.FileMode) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, perm); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		if removeErr := os.Remove(tmp); removeErr != nil {
			slog.Warn("failed to remove temp file after rename failure", "path", tmp, "error", removeErr)
		}
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
