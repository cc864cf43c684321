package models

import "time"

// ProjectStatus is the lifecycle state of a project
type ProjectStatus string

const (
	StatusPlanned   ProjectStatus = "planned"
	StatusActive    ProjectStatus = "active"
	StatusCompleted ProjectStatus = "completed"
	StatusArchived  ProjectStatus = "archived"
)

// ProjectStatuses lists every valid status
var ProjectStatuses = []ProjectStatus{StatusPlanned, StatusActive, StatusCompleted, StatusArchived}

// User is an account that can log in and own projects
type User struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name"`
	Email        string    `json:"email" gorm:"uniqueIndex"`
	PasswordHash string    `json:"password_hash,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Public returns a copy of the user that is safe to send to clients
func (u *User) Public() *User {
	c := *u
	c.PasswordHash = ""
	return &c
}

// Project is a unit of work owned by a user
type Project struct {
	ID          string        `json:"id" gorm:"primaryKey"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Status      ProjectStatus `json:"status"`
	OwnerID     string        `json:"owner_id" gorm:"index"`
	StartDate   *time.Time    `json:"start_date,omitempty"`
	DueDate     *time.Time    `json:"due_date,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// Storage is the root structure persisted by document-style backends
type Storage struct {
	Users    map[string]*User    `json:"users"`
	Projects map[string]*Project `json:"projects"`
}

// NewStorage creates an empty storage structure
func NewStorage() *Storage {
	return &Storage{
		Users:    make(map[string]*User),
		Projects: make(map[string]*Project),
	}
}

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the body of POST /auth/register
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by login and register
type AuthResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	User         *User  `json:"user"`
}

// RefreshRequest is the body of POST /auth/refresh-token
type RefreshRequest struct {
	Token string `json:"token"`
}

// RefreshResponse carries the new access token
type RefreshResponse struct {
	Token string `json:"token"`
}

// ProjectInput holds the client-editable fields of a project
type ProjectInput struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Status      ProjectStatus `json:"status,omitempty"`
	StartDate   *time.Time    `json:"start_date,omitempty"`
	DueDate     *time.Time    `json:"due_date,omitempty"`
}

// Apply copies the input fields onto p
func (in *ProjectInput) Apply(p *Project) {
	p.Name = in.Name
	p.Description = in.Description
	if in.Status != "" {
		p.Status = in.Status
	}
	p.StartDate = in.StartDate
	p.DueDate = in.DueDate
}
