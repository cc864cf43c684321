package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pitidev/workhub/internal/models"
)

// fileSizeWarnBytes is the storage file size above which every write logs a warning
const fileSizeWarnBytes = 50 * 1024 * 1024

// FileStorage implements Store on a single JSON document on disk.
// Every write rewrites the whole file atomically.
type FileStorage struct {
	*BaseStorage
	filePath string
}

// NewFileStorage creates a new file-based storage, creating the file if missing
func NewFileStorage(filePath string, logger *slog.Logger) (*FileStorage, error) {
	fs := &FileStorage{
		BaseStorage: NewBaseStorage(logger),
		filePath:    filePath,
	}

	if err := fs.load(); err != nil {
		return nil, fmt.Errorf("failed to load storage: %w", err)
	}

	return fs, nil
}

// load reads storage from file or creates empty storage
func (fs *FileStorage) load() error {
	if _, err := os.Stat(fs.filePath); os.IsNotExist(err) {
		fs.logger.Info("Storage file not found, creating empty storage",
			"file_path", fs.filePath)

		dir := filepath.Dir(fs.filePath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create storage directory: %w", err)
		}

		fs.mu.Lock()
		defer fs.mu.Unlock()
		if err := fs.saveToFile(); err != nil {
			return fmt.Errorf("failed to create storage file: %w", err)
		}
		return nil
	}

	fileData, err := os.ReadFile(fs.filePath)
	if err != nil {
		return fmt.Errorf("failed to read storage file: %w", err)
	}

	if err := fs.UnmarshalData(fileData); err != nil {
		return fmt.Errorf("failed to parse storage file (invalid JSON syntax): %w", err)
	}

	fs.mu.RLock()
	fs.logger.Info("Storage file loaded",
		"file_path", fs.filePath,
		"user_count", len(fs.data.Users),
		"project_count", len(fs.data.Projects))
	fs.mu.RUnlock()

	return nil
}

// saveToFile writes data to file atomically (temp file + rename).
// Caller MUST hold the write lock.
func (fs *FileStorage) saveToFile() error {
	jsonData, err := fs.marshalDataLocked()
	if err != nil {
		return fmt.Errorf("failed to marshal storage: %w", err)
	}

	dir := filepath.Dir(fs.filePath)
	tempFile, err := os.CreateTemp(dir, ".workhub-*.json.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tempFile.Name()

	defer func() {
		if tempFile != nil {
			tempFile.Close()
			os.Remove(tempPath)
		}
	}()

	if _, err := tempFile.Write(jsonData); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tempFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	tempFile = nil

	if err := os.Rename(tempPath, fs.filePath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	if info, err := os.Stat(fs.filePath); err == nil && info.Size() > fileSizeWarnBytes {
		fs.logger.Warn("Storage file size exceeds recommended threshold, consider a sqlite:// or postgres:// backend",
			"file_path", fs.filePath,
			"current_size_mb", float64(info.Size())/(1024*1024),
			"project_count", len(fs.data.Projects))
	}

	return nil
}

func (fs *FileStorage) CreateUser(ctx context.Context, u *models.User) error {
	return fs.BaseStorage.CreateUser(ctx, u, fs.saveToFile)
}

func (fs *FileStorage) CreateProject(ctx context.Context, p *models.Project) error {
	return fs.BaseStorage.CreateProject(ctx, p, fs.saveToFile)
}

func (fs *FileStorage) UpdateProject(ctx context.Context, p *models.Project) error {
	return fs.BaseStorage.UpdateProject(ctx, p, fs.saveToFile)
}

func (fs *FileStorage) DeleteProject(ctx context.Context, id string) error {
	return fs.BaseStorage.DeleteProject(ctx, id, fs.saveToFile)
}

// Ping checks that the storage file is still readable
func (fs *FileStorage) Ping(ctx context.Context) error {
	if _, err := os.Stat(fs.filePath); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}

// Close is a no-op; every write is already on disk
func (fs *FileStorage) Close() error {
	return nil
}
