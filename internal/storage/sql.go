package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/pitidev/workhub/internal/models"
)

// SQLStorage implements Store on a relational database through GORM.
// It backs the sqlite:// and postgres:// storage schemes.
type SQLStorage struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewSQLStorage opens the database named by uri and migrates the schema
func NewSQLStorage(uri *StorageURI, logger *slog.Logger) (*SQLStorage, error) {
	var dialector gorm.Dialector
	switch uri.Scheme {
	case "sqlite":
		if dir := filepath.Dir(uri.Path); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		dialector = sqlite.Open(uri.Path)
	case "postgres", "postgresql":
		dialector = postgres.Open(uri.Raw)
	default:
		return nil, fmt.Errorf("unsupported SQL storage scheme: %s", uri.Scheme)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Project{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database schema: %w", err)
	}

	logger.Info("SQL storage ready",
		"scheme", uri.Scheme,
		"uri", uri.Redacted())

	return &SQLStorage{db: db, logger: logger}, nil
}

// CreateUser inserts a user; a taken email or ID yields ErrAlreadyExists
func (s *SQLStorage) CreateUser(ctx context.Context, u *models.User) error {
	if _, err := s.GetUserByEmail(ctx, u.Email); err == nil {
		return ErrAlreadyExists
	}

	stored := *u
	if err := s.db.WithContext(ctx).Create(&stored).Error; err != nil {
		return s.writeError("create_user", u.ID, err)
	}

	s.logger.Info("User created", "user_id", u.ID)
	return nil
}

// GetUser retrieves a user by ID
func (s *SQLStorage) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, s.readError(err)
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email address
func (s *SQLStorage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		First(&user, "email = ?", models.NormalizeEmail(email)).Error
	if err != nil {
		return nil, s.readError(err)
	}
	return &user, nil
}

// CreateProject inserts a project
func (s *SQLStorage) CreateProject(ctx context.Context, p *models.Project) error {
	if _, err := s.GetProject(ctx, p.ID); err == nil {
		return ErrAlreadyExists
	}

	stored := *p
	if err := s.db.WithContext(ctx).Create(&stored).Error; err != nil {
		return s.writeError("create_project", p.ID, err)
	}

	s.logger.Info("Project created",
		"project_id", p.ID,
		"owner_id", p.OwnerID)
	return nil
}

// GetProject retrieves a project by ID
func (s *SQLStorage) GetProject(ctx context.Context, id string) (*models.Project, error) {
	var project models.Project
	if err := s.db.WithContext(ctx).First(&project, "id = ?", id).Error; err != nil {
		return nil, s.readError(err)
	}
	return &project, nil
}

// UpdateProject saves every column of an existing project
func (s *SQLStorage) UpdateProject(ctx context.Context, p *models.Project) error {
	if _, err := s.GetProject(ctx, p.ID); err != nil {
		return err
	}

	stored := *p
	if err := s.db.WithContext(ctx).Save(&stored).Error; err != nil {
		return s.writeError("update_project", p.ID, err)
	}

	s.logger.Info("Project updated", "project_id", p.ID)
	return nil
}

// DeleteProject deletes a project
func (s *SQLStorage) DeleteProject(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Delete(&models.Project{}, "id = ?", id)
	if result.Error != nil {
		return s.writeError("delete_project", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	s.logger.Info("Project deleted", "project_id", id)
	return nil
}

// ListProjects returns the projects owned by ownerID, oldest first
func (s *SQLStorage) ListProjects(ctx context.Context, ownerID string) ([]*models.Project, error) {
	projects := make([]*models.Project, 0)
	err := s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at, id").
		Find(&projects).Error
	if err != nil {
		return nil, s.readError(err)
	}
	return projects, nil
}

// Ping checks the database connection
func (s *SQLStorage) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}

// Close closes the underlying connection pool
func (s *SQLStorage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *SQLStorage) readError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	s.logger.Error("Storage read failed", "error", err)
	return ErrStorageUnavailable
}

func (s *SQLStorage) writeError(operation, id string, err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrAlreadyExists
	}
	s.logger.Error("Storage write failed",
		"operation", operation,
		"id", id,
		"error", err)
	return ErrStorageUnavailable
}
