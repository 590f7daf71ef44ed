package command

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pixil98/go-errors"

	"github.com/TomCrypto/Team-208-s-Game/internal/storage"
)

type StorageDriver string

const (
	StorageNone   StorageDriver = ""
	StorageFile   StorageDriver = "file"
	StorageSQLite StorageDriver = "sqlite"
)

type StorageConfig struct {
	Driver StorageDriver `json:"driver"`
	Path   string        `json:"path"`
}

func (c *StorageConfig) Validate() error {
	el := errors.NewErrorList()

	switch c.Driver {
	case StorageNone:
		if c.Path != "" {
			el.Add(fmt.Errorf("storage path set without a driver"))
		}
		return el.Err()
	case StorageFile, StorageSQLite:
	default:
		el.Add(fmt.Errorf("unknown storage driver %q", c.Driver))
	}

	if c.Path == "" {
		el.Add(fmt.Errorf("storage: path is required"))
	} else if _, err := os.Stat(filepath.Dir(c.Path)); err != nil {
		el.Add(fmt.Errorf("storage: invalid path %q: %w", c.Path, err))
	}

	return el.Err()
}

// BuildPersistence opens the configured store. It returns nil when storage is disabled.
func (c *StorageConfig) BuildPersistence() (storage.Persistence, error) {
	switch c.Driver {
	case StorageNone:
		return nil, nil
	case StorageFile:
		return storage.NewFileStore(c.Path)
	case StorageSQLite:
		return storage.OpenSQLite(c.Path)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", c.Driver)
	}
}
