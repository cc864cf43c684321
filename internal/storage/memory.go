package storage

import (
	"context"
	"log/slog"

	"github.com/pitidev/workhub/internal/models"
)

// MemoryStorage implements Store without persistence. Data is lost on restart.
type MemoryStorage struct {
	*BaseStorage
}

// NewMemoryStorage creates an empty in-memory storage
func NewMemoryStorage(logger *slog.Logger) *MemoryStorage {
	logger.Warn("Using in-memory storage, data will not survive a restart")
	return &MemoryStorage{BaseStorage: NewBaseStorage(logger)}
}

func (m *MemoryStorage) CreateUser(ctx context.Context, u *models.User) error {
	return m.BaseStorage.CreateUser(ctx, u, nil)
}

func (m *MemoryStorage) CreateProject(ctx context.Context, p *models.Project) error {
	return m.BaseStorage.CreateProject(ctx, p, nil)
}

func (m *MemoryStorage) UpdateProject(ctx context.Context, p *models.Project) error {
	return m.BaseStorage.UpdateProject(ctx, p, nil)
}

func (m *MemoryStorage) DeleteProject(ctx context.Context, id string) error {
	return m.BaseStorage.DeleteProject(ctx, id, nil)
}

// Ping always succeeds
func (m *MemoryStorage) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op
func (m *MemoryStorage) Close() error {
	return nil
}
