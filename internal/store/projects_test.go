package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bugtrackhq/bugtrack/internal/api"
	"github.com/bugtrackhq/bugtrack/pkg/models"
)

// fakeProjectAPI scripts the backend for project cache tests.
type fakeProjectAPI struct {
	listResult  []models.Project
	createCalls int
}

func (f *fakeProjectAPI) ListProjects(context.Context) ([]models.Project, error) {
	return f.listResult, nil
}

func (f *fakeProjectAPI) CreateProject(_ context.Context, input api.ProjectInput) (*models.Project, error) {
	f.createCalls++
	return &models.Project{ID: "new", Title: input.Title, Key: input.Key}, nil
}

func (f *fakeProjectAPI) GetProject(_ context.Context, id string) (*models.Project, error) {
	return &models.Project{ID: id}, nil
}

func (f *fakeProjectAPI) UpdateProject(_ context.Context, id string, input api.ProjectInput) (*models.Project, error) {
	return &models.Project{ID: id, Title: input.Title}, nil
}

func (f *fakeProjectAPI) DeleteProject(context.Context, string) error {
	return nil
}

func (f *fakeProjectAPI) AddMember(_ context.Context, projectID string, input api.MemberInput) (*models.Project, error) {
	return &models.Project{
		ID: projectID,
		TeamMembers: []models.TeamMember{
			{User: models.User{Email: input.Email}, Role: input.Role},
		},
	}, nil
}

func (f *fakeProjectAPI) RemoveMember(_ context.Context, projectID, _ string) (*models.Project, error) {
	return &models.Project{ID: projectID}, nil
}

func TestProjectCreatePrepends(t *testing.T) {
	client := &fakeProjectAPI{listResult: []models.Project{{ID: "old"}}}
	projects := NewProjectStore(client)
	require.NoError(t, projects.Fetch(context.Background()))

	created, err := projects.Create(context.Background(), api.ProjectInput{Title: "Tracker", Key: "TRACK"})
	require.NoError(t, err)
	assert.Equal(t, "new", created.ID)

	cached := projects.Projects()
	require.Len(t, cached, 2)
	assert.Equal(t, "new", cached[0].ID)
}

func TestProjectCreateValidatesKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr bool
	}{
		{name: "Valid key", key: "BUG", wantErr: false},
		{name: "Valid alphanumeric", key: "PROJ2", wantErr: false},
		{name: "Lowercase rejected", key: "bug", wantErr: true},
		{name: "Too long rejected", key: "ABCDEFGHIJK", wantErr: true},
		{name: "Punctuation rejected", key: "BUG-1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeProjectAPI{}
			projects := NewProjectStore(client)

			_, err := projects.Create(context.Background(), api.ProjectInput{Title: "X", Key: tt.key})
			if tt.wantErr {
				assert.Error(t, err)
				// Validation failures never reach the backend.
				assert.Zero(t, client.createCalls)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, 1, client.createCalls)
			}
		})
	}
}

func TestProjectDeleteClearsCurrent(t *testing.T) {
	client := &fakeProjectAPI{listResult: []models.Project{{ID: "p1"}, {ID: "p2"}}}
	projects := NewProjectStore(client)
	require.NoError(t, projects.Fetch(context.Background()))
	_, err := projects.Get(context.Background(), "p1")
	require.NoError(t, err)

	require.NoError(t, projects.Delete(context.Background(), "p1"))

	cached := projects.Projects()
	require.Len(t, cached, 1)
	assert.Equal(t, "p2", cached[0].ID)
	assert.Nil(t, projects.Current())
}

func TestAddMemberReplacesCachedProject(t *testing.T) {
	client := &fakeProjectAPI{listResult: []models.Project{{ID: "p1"}}}
	projects := NewProjectStore(client)
	require.NoError(t, projects.Fetch(context.Background()))

	updated, err := projects.AddMember(context.Background(), "p1", api.MemberInput{
		Email: "dev@example.com",
		Role:  models.RoleDeveloper,
	})
	require.NoError(t, err)
	require.Len(t, updated.TeamMembers, 1)

	cached := projects.Projects()
	require.Len(t, cached, 1)
	assert.Len(t, cached[0].TeamMembers, 1)
}
