package storage

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"sync"

	"github.com/pitidev/workhub/internal/models"
)

// BaseStorage provides shared in-memory CRUD operations for document-style backends.
// It handles locking, uniqueness checks and copying. Concrete backends (MemoryStorage,
// FileStorage) embed this and provide their own persistence mechanisms.
type BaseStorage struct {
	mu     sync.RWMutex
	data   *models.Storage
	logger *slog.Logger
}

// NewBaseStorage creates a new BaseStorage with empty data
func NewBaseStorage(logger *slog.Logger) *BaseStorage {
	return &BaseStorage{
		data:   models.NewStorage(),
		logger: logger,
	}
}

// SetData sets the in-memory data (used by backends after loading)
func (b *BaseStorage) SetData(data *models.Storage) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data = data
}

// MarshalData serializes the storage data to JSON.
// NOTE: Caller must NOT hold the lock - this method acquires its own lock.
// For use within locked contexts, use marshalDataLocked instead.
func (b *BaseStorage) MarshalData() ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.marshalDataLocked()
}

// marshalDataLocked serializes data without acquiring lock.
// Caller MUST hold at least a read lock.
func (b *BaseStorage) marshalDataLocked() ([]byte, error) {
	return json.MarshalIndent(b.data, "", "  ")
}

// UnmarshalData deserializes JSON data into storage
func (b *BaseStorage) UnmarshalData(jsonData []byte) error {
	var data models.Storage
	if err := json.Unmarshal(jsonData, &data); err != nil {
		return err
	}
	if data.Users == nil {
		data.Users = make(map[string]*models.User)
	}
	if data.Projects == nil {
		data.Projects = make(map[string]*models.Project)
	}
	b.mu.Lock()
	b.data = &data
	b.mu.Unlock()
	return nil
}

// PersistFunc is a callback function that backends implement for persistence.
// It runs with the write lock held.
type PersistFunc func() error

// CreateUser adds a user. The email must not be taken by another user.
// If persist fails, the in-memory change is rolled back.
func (b *BaseStorage) CreateUser(ctx context.Context, u *models.User, persist PersistFunc) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.data.Users[u.ID]; exists {
		return ErrAlreadyExists
	}
	if b.userByEmailLocked(u.Email) != nil {
		return ErrAlreadyExists
	}

	stored := *u
	b.data.Users[u.ID] = &stored

	if persist != nil {
		if err := persist(); err != nil {
			delete(b.data.Users, u.ID)
			b.logger.Error("Storage write failed",
				"operation", "create_user",
				"user_id", u.ID,
				"error", err)
			return ErrStorageUnavailable
		}
	}

	b.logger.Info("User created", "user_id", u.ID)
	return nil
}

// GetUser retrieves a user by ID
func (b *BaseStorage) GetUser(ctx context.Context, id string) (*models.User, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	user, exists := b.data.Users[id]
	if !exists {
		return nil, ErrNotFound
	}
	c := *user
	return &c, nil
}

// GetUserByEmail retrieves a user by email address
func (b *BaseStorage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	user := b.userByEmailLocked(email)
	if user == nil {
		return nil, ErrNotFound
	}
	c := *user
	return &c, nil
}

func (b *BaseStorage) userByEmailLocked(email string) *models.User {
	email = models.NormalizeEmail(email)
	for _, u := range b.data.Users {
		if models.NormalizeEmail(u.Email) == email {
			return u
		}
	}
	return nil
}

// CreateProject adds a project.
// The persist callback is called after the in-memory operation succeeds.
func (b *BaseStorage) CreateProject(ctx context.Context, p *models.Project, persist PersistFunc) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.data.Projects[p.ID]; exists {
		return ErrAlreadyExists
	}

	stored := *p
	b.data.Projects[p.ID] = &stored

	if persist != nil {
		if err := persist(); err != nil {
			delete(b.data.Projects, p.ID)
			b.logger.Error("Storage write failed",
				"operation", "create_project",
				"project_id", p.ID,
				"error", err)
			return ErrStorageUnavailable
		}
	}

	b.logger.Info("Project created",
		"project_id", p.ID,
		"owner_id", p.OwnerID)
	return nil
}

// GetProject retrieves a project by ID
func (b *BaseStorage) GetProject(ctx context.Context, id string) (*models.Project, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	project, exists := b.data.Projects[id]
	if !exists {
		return nil, ErrNotFound
	}
	c := *project
	return &c, nil
}

// UpdateProject replaces a stored project.
// The persist callback is called after the in-memory operation succeeds.
func (b *BaseStorage) UpdateProject(ctx context.Context, p *models.Project, persist PersistFunc) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	existing, exists := b.data.Projects[p.ID]
	if !exists {
		return ErrNotFound
	}

	stored := *p
	b.data.Projects[p.ID] = &stored

	if persist != nil {
		if err := persist(); err != nil {
			b.data.Projects[p.ID] = existing
			b.logger.Error("Storage write failed",
				"operation", "update_project",
				"project_id", p.ID,
				"error", err)
			return ErrStorageUnavailable
		}
	}

	b.logger.Info("Project updated", "project_id", p.ID)
	return nil
}

// DeleteProject deletes a project.
// The persist callback is called after the in-memory operation succeeds.
func (b *BaseStorage) DeleteProject(ctx context.Context, id string, persist PersistFunc) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	project, exists := b.data.Projects[id]
	if !exists {
		return ErrNotFound
	}

	delete(b.data.Projects, id)

	if persist != nil {
		if err := persist(); err != nil {
			b.data.Projects[id] = project
			b.logger.Error("Storage write failed",
				"operation", "delete_project",
				"project_id", id,
				"error", err)
			return ErrStorageUnavailable
		}
	}

	b.logger.Info("Project deleted", "project_id", id)
	return nil
}

// ListProjects returns the projects owned by ownerID, oldest first
func (b *BaseStorage) ListProjects(ctx context.Context, ownerID string) ([]*models.Project, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	projects := make([]*models.Project, 0)
	for _, p := range b.data.Projects {
		if p.OwnerID != ownerID {
			continue
		}
		c := *p
		projects = append(projects, &c)
	}
	sortProjects(projects)

	return projects, nil
}

func sortProjects(projects []*models.Project) {
	sort.Slice(projects, func(i, j int) bool {
		if projects[i].CreatedAt.Equal(projects[j].CreatedAt) {
			return projects[i].ID < projects[j].ID
		}
		return projects[i].CreatedAt.Before(projects[j].CreatedAt)
	})
}
