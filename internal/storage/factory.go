package storage

import (
	"fmt"
	"log/slog"
)

// NewStorage creates a storage backend based on the URI scheme:
//   - memory:// -> MemoryStorage
//   - file:// (or a bare path) -> FileStorage
//   - sqlite:// and postgres:// -> SQLStorage
func NewStorage(uri *StorageURI, logger *slog.Logger) (Store, error) {
	switch {
	case uri.Scheme == "memory":
		return NewMemoryStorage(logger), nil

	case uri.Scheme == "file":
		return NewFileStorage(uri.Path, logger)

	case uri.IsSQLScheme():
		return NewSQLStorage(uri, logger)

	default:
		return nil, fmt.Errorf("unsupported storage scheme: %s", uri.Scheme)
	}
}
