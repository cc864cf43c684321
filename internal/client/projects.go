package client

import (
	"context"
	"net/url"

	"github.com/pitidev/workhub/internal/models"
)

// ListProjects returns the projects owned by the authenticated user
func (c *Client) ListProjects(ctx context.Context) ([]*models.Project, error) {
	var projects []*models.Project
	if err := c.GetJSON(ctx, "/projects", &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// GetProject returns a single project
func (c *Client) GetProject(ctx context.Context, id string) (*models.Project, error) {
	var project models.Project
	if err := c.GetJSON(ctx, projectPath(id), &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// CreateProject creates a project and returns it as stored by the server
func (c *Client) CreateProject(ctx context.Context, in *models.ProjectInput) (*models.Project, error) {
	var project models.Project
	if err := c.PostJSON(ctx, "/projects", in, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// UpdateProject replaces the editable fields of a project
func (c *Client) UpdateProject(ctx context.Context, id string, in *models.ProjectInput) (*models.Project, error) {
	var project models.Project
	if err := c.PutJSON(ctx, projectPath(id), in, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// DeleteProject deletes a project
func (c *Client) DeleteProject(ctx context.Context, id string) error {
	_, err := c.Delete(ctx, projectPath(id))
	return err
}

func projectPath(id string) string {
	return "/projects/" + url.PathEscape(id)
}
