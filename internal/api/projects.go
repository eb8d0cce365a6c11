package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mglenn/ttm/internal/models"
)

type projectListResponse struct {
	Projects    []models.Project `json:"projects"`
	Pages       int              `json:"pages"`
	CurrentPage int              `json:"current_page"`
}

// ListProjects fetches all projects, walking the paginated collection. A
// malformed payload degrades to an empty list.
func (c *Client) ListProjects(ctx context.Context) ([]models.Project, error) {
	projects := []models.Project{}
	for page := 1; ; page++ {
		var body projectListResponse
		path := fmt.Sprintf("/api/projects?page=%d&per_page=%d", page, listPageSize)
		if err := c.get(ctx, path, &body, "Failed to load projects"); err != nil {
			return nil, err
		}
		projects = append(projects, body.Projects...)
		if body.CurrentPage >= body.Pages || len(body.Projects) == 0 {
			break
		}
	}
	return projects, nil
}

// GetProject fetches a single project by id.
func (c *Client) GetProject(ctx context.Context, id int64) (models.Project, error) {
	var project models.Project
	err := c.get(ctx, fmt.Sprintf("/api/projects/%d", id), &project, "Failed to load project")
	return project, err
}

type projectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CreateProject creates a project and returns the server's canonical record.
func (c *Client) CreateProject(ctx context.Context, name, description string) (models.Project, error) {
	var created models.Project
	err := c.mutate(ctx, http.MethodPost, "/api/projects",
		projectRequest{Name: name, Description: description}, &created, "Failed to create project")
	return created, err
}

// UpdateProject updates a project in place by id.
func (c *Client) UpdateProject(ctx context.Context, id int64, name, description string) (models.Project, error) {
	var updated models.Project
	err := c.mutate(ctx, http.MethodPut, fmt.Sprintf("/api/projects/%d", id),
		projectRequest{Name: name, Description: description}, &updated, "Failed to update project")
	return updated, err
}

// DeleteProject deletes a project by id. The backend rejects the delete
// when dependent tasks exist; that message is surfaced verbatim.
func (c *Client) DeleteProject(ctx context.Context, id int64) error {
	return c.mutate(ctx, http.MethodDelete, fmt.Sprintf("/api/projects/%d", id),
		nil, nil, "Failed to delete project")
}
