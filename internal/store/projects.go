package store

import (
	"context"
	"sync"

	"github.com/bugtrackhq/bugtrack/internal/api"
	"github.com/bugtrackhq/bugtrack/pkg/models"
)

// ProjectAPI is the slice of the backend client the project cache
// needs. Satisfied by *api.Client.
type ProjectAPI interface {
	ListProjects(ctx context.Context) ([]models.Project, error)
	CreateProject(ctx context.Context, input api.ProjectInput) (*models.Project, error)
	GetProject(ctx context.Context, id string) (*models.Project, error)
	UpdateProject(ctx context.Context, id string, input api.ProjectInput) (*models.Project, error)
	DeleteProject(ctx context.Context, id string) error
	AddMember(ctx context.Context, projectID string, input api.MemberInput) (*models.Project, error)
	RemoveMember(ctx context.Context, projectID, memberID string) (*models.Project, error)
}

// ProjectStore caches the user's projects and tracks the currently
// selected one. Mutations update the cache only from the backend's
// response; a failed call leaves the cache untouched.
type ProjectStore struct {
	mu      sync.Mutex
	client  ProjectAPI
	entries []models.Project
	current *models.Project
}

// NewProjectStore creates an empty project cache over the client.
func NewProjectStore(client ProjectAPI) *ProjectStore {
	return &ProjectStore{client: client}
}

// Fetch replaces the cached collection with the backend's listing.
func (p *ProjectStore) Fetch(ctx context.Context) error {
	projects, err := p.client.ListProjects(ctx)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.entries = projects
	p.mu.Unlock()
	return nil
}

// Get fetches a single project and makes it current.
func (p *ProjectStore) Get(ctx context.Context, id string) (*models.Project, error) {
	project, err := p.client.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	p.current = project
	p.mu.Unlock()
	return project, nil
}

// Create creates a project and prepends the backend's copy.
func (p *ProjectStore) Create(ctx context.Context, input api.ProjectInput) (*models.Project, error) {
	if input.Key != "" {
		if err := models.ValidateProjectKey(input.Key); err != nil {
			return nil, err
		}
	}

	project, err := p.client.CreateProject(ctx, input)
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	p.entries = append([]models.Project{*project}, p.entries...)
	p.mu.Unlock()
	return project, nil
}

// Update applies input and replaces the cached entry (and the current
// project if it is the one updated).
func (p *ProjectStore) Update(ctx context.Context, id string, input api.ProjectInput) (*models.Project, error) {
	project, err := p.client.UpdateProject(ctx, id, input)
	if err != nil {
		return nil, err
	}
	p.replace(*project)
	return project, nil
}

// Delete removes a project from the backend and the cache; the current
// pointer is cleared if it referenced the deleted project.
func (p *ProjectStore) Delete(ctx context.Context, id string) error {
	if err := p.client.DeleteProject(ctx, id); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	kept := p.entries[:0]
	for _, project := range p.entries {
		if project.ID != id {
			kept = append(kept, project)
		}
	}
	p.entries = kept
	if p.current != nil && p.current.ID == id {
		p.current = nil
	}
	return nil
}

// AddMember invites a user; the backend answers with the updated
// project, which replaces the cached entry.
func (p *ProjectStore) AddMember(ctx context.Context, projectID string, input api.MemberInput) (*models.Project, error) {
	project, err := p.client.AddMember(ctx, projectID, input)
	if err != nil {
		return nil, err
	}
	p.replace(*project)
	return project, nil
}

// RemoveMember removes a team member and refreshes the cached project.
func (p *ProjectStore) RemoveMember(ctx context.Context, projectID, memberID string) (*models.Project, error) {
	project, err := p.client.RemoveMember(ctx, projectID, memberID)
	if err != nil {
		return nil, err
	}
	p.replace(*project)
	return project, nil
}

func (p *ProjectStore) replace(updated models.Project) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, project := range p.entries {
		if project.ID == updated.ID {
			p.entries[i] = updated
		}
	}
	if p.current != nil && p.current.ID == updated.ID {
		p.current = &updated
	}
}

// Projects returns a copy of the cached collection.
func (p *ProjectStore) Projects() []models.Project {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.Project(nil), p.entries...)
}

// Current returns the currently selected project, or nil.
func (p *ProjectStore) Current() *models.Project {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return nil
	}
	copied := *p.current
	return &copied
}
