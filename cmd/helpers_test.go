package cmd

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bugtrackhq/bugtrack/internal/api"
	"github.com/bugtrackhq/bugtrack/internal/board"
	"github.com/bugtrackhq/bugtrack/internal/filter"
	"github.com/bugtrackhq/bugtrack/internal/localstore"
	"github.com/bugtrackhq/bugtrack/pkg/models"
)

func TestFindTicket(t *testing.T) {
	columns := board.OrganizeColumns([]models.Ticket{
		{ID: "1", Status: models.StatusTodo},
		{ID: "2", Status: models.StatusInProgress},
		{ID: "3", Status: models.StatusInProgress},
	})

	position, ok := findTicket(columns, "3")
	require.True(t, ok)
	assert.Equal(t, models.StatusInProgress, position.Column)
	assert.Equal(t, 1, position.Index)

	_, ok = findTicket(columns, "missing")
	assert.False(t, ok)
}

func TestWithLoginHintOnExpiredSession(t *testing.T) {
	backend := &api.Error{StatusCode: http.StatusUnauthorized, Message: "token expired"}
	wrapped := fmt.Errorf("failed to list tickets: %w", backend)

	err := withLoginHint(wrapped)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token expired")
	assert.Contains(t, err.Error(), "run 'bugtrack auth login'")
}

func TestWithLoginHintLeavesOtherErrorsAlone(t *testing.T) {
	backend := &api.Error{StatusCode: http.StatusNotFound, Message: "no such ticket"}
	wrapped := fmt.Errorf("failed to view ticket: %w", backend)
	assert.Equal(t, wrapped, withLoginHint(wrapped))

	plain := errors.New("network unreachable")
	assert.Equal(t, plain, withLoginHint(plain))
	assert.NoError(t, withLoginHint(nil))
}

func TestResolvePresetQuick(t *testing.T) {
	local, err := localstore.Open(t.TempDir())
	require.NoError(t, err)
	defer local.Close()

	presets := filter.NewPresetStore(local)
	spec, err := resolvePreset(ticketsListCmd, nil, presets, "bugs", filter.DefaultSpec())
	require.NoError(t, err)
	assert.Equal(t, "bug", spec.Type)
}

func TestResolvePresetSaved(t *testing.T) {
	local, err := localstore.Open(t.TempDir())
	require.NoError(t, err)
	defer local.Close()

	presets := filter.NewPresetStore(local)
	want := filter.DefaultSpec()
	want.Priority = "critical"
	_, err = presets.Save("urgent", want, "")
	require.NoError(t, err)

	spec, err := resolvePreset(ticketsListCmd, nil, presets, "urgent", filter.DefaultSpec())
	require.NoError(t, err)
	assert.Equal(t, "critical", spec.Priority)
}

func TestResolvePresetUnknown(t *testing.T) {
	local, err := localstore.Open(t.TempDir())
	require.NoError(t, err)
	defer local.Close()

	presets := filter.NewPresetStore(local)
	_, err = resolvePreset(ticketsListCmd, nil, presets, "nope", filter.DefaultSpec())
	assert.Error(t, err)
}
