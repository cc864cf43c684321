package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pitidev/workhub/internal/apierrors"
	"github.com/pitidev/workhub/internal/auth"
	"github.com/pitidev/workhub/internal/models"
	"github.com/pitidev/workhub/internal/storage"
)

// ProjectHandler handles project CRUD operations for the authenticated user.
// Projects owned by someone else are reported as not found.
type ProjectHandler struct {
	store  storage.Store
	logger *slog.Logger
	now    func() time.Time
}

// NewProjectHandler creates a new project handler
func NewProjectHandler(store storage.Store, logger *slog.Logger) *ProjectHandler {
	return &ProjectHandler{
		store:  store,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// ListProjects handles GET /projects
func (h *ProjectHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFrom(r.Context())
	if principal == nil {
		apierrors.WriteUnauthorized(w, "Authentication required")
		return
	}

	projects, err := h.store.ListProjects(r.Context(), principal.UserID)
	if err != nil {
		h.logger.Error("Failed to list projects", "user_id", principal.UserID, "error", err)
		writeStorageError(w, err, "project")
		return
	}

	writeJSON(w, http.StatusOK, projects, h.logger)
}

// CreateProject handles POST /projects
func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFrom(r.Context())
	if principal == nil {
		apierrors.WriteUnauthorized(w, "Authentication required")
		return
	}

	var in models.ProjectInput
	if !decodeBody(w, r, &in) {
		return
	}
	if err := models.ValidateProjectInput(&in); err != nil {
		h.logger.Warn("Project validation failed",
			"name", in.Name,
			"error", err,
			"remote_addr", r.RemoteAddr)
		apierrors.WriteValidationError(w, err)
		return
	}

	now := h.now()
	project := &models.Project{
		ID:        uuid.NewString(),
		Status:    models.StatusPlanned,
		OwnerID:   principal.UserID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	in.Apply(project)

	if err := h.store.CreateProject(r.Context(), project); err != nil {
		h.logger.Error("Failed to create project", "name", project.Name, "error", err)
		writeStorageError(w, err, "project")
		return
	}

	writeJSON(w, http.StatusCreated, project, h.logger)
}

// GetProject handles GET /projects/{id}
func (h *ProjectHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	project, ok := h.ownedProject(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, project, h.logger)
}

// UpdateProject handles PUT /projects/{id}
func (h *ProjectHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	project, ok := h.ownedProject(w, r)
	if !ok {
		return
	}

	var in models.ProjectInput
	if !decodeBody(w, r, &in) {
		return
	}
	if err := models.ValidateProjectInput(&in); err != nil {
		apierrors.WriteValidationError(w, err)
		return
	}

	in.Apply(project)
	project.UpdatedAt = h.now()

	if err := h.store.UpdateProject(r.Context(), project); err != nil {
		h.logger.Error("Failed to update project", "project_id", project.ID, "error", err)
		writeStorageError(w, err, "project")
		return
	}

	writeJSON(w, http.StatusOK, project, h.logger)
}

// DeleteProject handles DELETE /projects/{id}
func (h *ProjectHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	project, ok := h.ownedProject(w, r)
	if !ok {
		return
	}

	if err := h.store.DeleteProject(r.Context(), project.ID); err != nil {
		h.logger.Error("Failed to delete project", "project_id", project.ID, "error", err)
		writeStorageError(w, err, "project")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ownedProject loads the {id} project and checks that the caller owns it.
// On failure the error response is already written.
func (h *ProjectHandler) ownedProject(w http.ResponseWriter, r *http.Request) (*models.Project, bool) {
	principal := auth.PrincipalFrom(r.Context())
	if principal == nil {
		apierrors.WriteUnauthorized(w, "Authentication required")
		return nil, false
	}

	id := chi.URLParam(r, "id")
	project, err := h.store.GetProject(r.Context(), id)
	if err != nil {
		writeStorageError(w, err, "project")
		return nil, false
	}
	if project.OwnerID != principal.UserID {
		writeStorageError(w, storage.ErrNotFound, "project")
		return nil, false
	}
	return project, true
}
