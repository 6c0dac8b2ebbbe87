package filter

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bugtrackhq/bugtrack/internal/localstore"
)

// maxRecentSearches caps the recent-search history.
const maxRecentSearches = 5

// QuickPreset is a built-in one-click filter. Its fields overlay onto
// the active spec; comma-separated lists take their first value, and
// an assignee of "me" resolves to the current user.
type QuickPreset struct {
	ID       string
	Name     string
	Status   string
	Priority string
	Type     string
	Assignee string
	SortBy   SortField
}

// QuickPresets are the built-in one-click filters.
var QuickPresets = []QuickPreset{
	{ID: "my-open", Name: "My Open Issues", Status: "todo,in-progress", Assignee: "me"},
	{ID: "high-priority", Name: "High Priority", Priority: "high,critical"},
	{ID: "recent", Name: "Recently Updated", SortBy: SortUpdatedAt},
	{ID: "bugs", Name: "All Bugs", Type: "bug"},
}

// QuickPresetByID looks up a built-in preset.
func QuickPresetByID(id string) (QuickPreset, bool) {
	for _, preset := range QuickPresets {
		if preset.ID == id {
			return preset, true
		}
	}
	return QuickPreset{}, false
}

// firstOf takes the first value of a comma-separated list.
func firstOf(value string) string {
	if i := strings.IndexByte(value, ','); i >= 0 {
		return value[:i]
	}
	return value
}

// ApplyTo overlays the preset onto spec, leaving fields the preset
// does not set untouched.
func (p QuickPreset) ApplyTo(spec Spec, userID string) Spec {
	if p.Status != "" {
		spec.Status = firstOf(p.Status)
	}
	if p.Priority != "" {
		spec.Priority = firstOf(p.Priority)
	}
	if p.Type != "" {
		spec.Type = p.Type
	}
	if p.Assignee == "me" {
		spec.Assignee = userID
	} else if p.Assignee != "" {
		spec.Assignee = p.Assignee
	}
	if p.SortBy != "" {
		spec.SortBy = p.SortBy
	}
	return spec
}

// SavedPreset is a user-named filter spec persisted client-locally.
// Loading a preset is pure assignment into the active spec, never a
// merge.
type SavedPreset struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Filters   Spec      `json:"filters"`
	ProjectID string    `json:"projectId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// PresetStore persists saved presets and recent searches in the
// client-local store.
type PresetStore struct {
	store *localstore.Store
}

// NewPresetStore wraps a localstore.
func NewPresetStore(store *localstore.Store) *PresetStore {
	return &PresetStore{store: store}
}

// Save stores a new named preset. A projectID scopes the preset to a
// project; empty means it applies everywhere.
func (p *PresetStore) Save(name string, filters Spec, projectID string) (SavedPreset, error) {
	if strings.TrimSpace(name) == "" {
		return SavedPreset{}, fmt.Errorf("preset name must not be empty")
	}

	presets, err := p.all()
	if err != nil {
		return SavedPreset{}, err
	}

	preset := SavedPreset{
		ID:        uuid.NewString(),
		Name:      name,
		Filters:   filters,
		ProjectID: projectID,
		CreatedAt: time.Now().UTC(),
	}
	presets = append(presets, preset)

	if err := p.store.Put(localstore.KeySavedFilters, presets); err != nil {
		return SavedPreset{}, err
	}
	return preset, nil
}

// List returns saved presets. With a projectID, project-scoped presets
// of other projects are excluded; global presets always appear.
func (p *PresetStore) List(projectID string) ([]SavedPreset, error) {
	presets, err := p.all()
	if err != nil {
		return nil, err
	}
	if projectID == "" {
		return presets, nil
	}

	var scoped []SavedPreset
	for _, preset := range presets {
		if preset.ProjectID == "" || preset.ProjectID == projectID {
			scoped = append(scoped, preset)
		}
	}
	return scoped, nil
}

// Get finds a preset by id or name.
func (p *PresetStore) Get(idOrName string) (SavedPreset, error) {
	presets, err := p.all()
	if err != nil {
		return SavedPreset{}, err
	}
	for _, preset := range presets {
		if preset.ID == idOrName || preset.Name == idOrName {
			return preset, nil
		}
	}
	return SavedPreset{}, fmt.Errorf("no saved filter preset %q", idOrName)
}

// Delete removes a preset by id.
func (p *PresetStore) Delete(id string) error {
	presets, err := p.all()
	if err != nil {
		return err
	}

	kept := presets[:0]
	for _, preset := range presets {
		if preset.ID != id {
			kept = append(kept, preset)
		}
	}
	if len(kept) == len(presets) {
		return fmt.Errorf("no saved filter preset %q", id)
	}
	return p.store.Put(localstore.KeySavedFilters, kept)
}

func (p *PresetStore) all() ([]SavedPreset, error) {
	var presets []SavedPreset
	err := p.store.Get(localstore.KeySavedFilters, &presets)
	if errors.Is(err, localstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return presets, nil
}

// RecentSearches returns the saved search terms, most recent first.
func (p *PresetStore) RecentSearches() ([]string, error) {
	var searches []string
	err := p.store.Get(localstore.KeyRecentSearches, &searches)
	if errors.Is(err, localstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return searches, nil
}

// RecordSearch prepends a term to the recent-search history,
// deduplicating and keeping at most maxRecentSearches entries. Blank
// terms are ignored.
func (p *PresetStore) RecordSearch(term string) error {
	if strings.TrimSpace(term) == "" {
		return nil
	}

	recent, err := p.RecentSearches()
	if err != nil {
		return err
	}

	updated := []string{term}
	for _, existing := range recent {
		if existing != term {
			updated = append(updated, existing)
		}
	}
	if len(updated) > maxRecentSearches {
		updated = updated[:maxRecentSearches]
	}

	return p.store.Put(localstore.KeyRecentSearches, updated)
}
