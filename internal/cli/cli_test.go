package cli

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/inovacc/gitroster/internal/engine"
	"github.com/inovacc/gitroster/internal/model"
	"github.com/inovacc/gitroster/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshot(id, name string, status model.Status) model.Snapshot {
	return model.Snapshot{ID: id, Record: model.Record{Name: name, URL: "https://example.com/" + name + ".git", Status: status}}
}

func TestSyncModel_QuitsWhenAllFinal(t *testing.T) {
	a := snapshot("a", "alpha", model.StatusNotCloned)
	b := snapshot("b", "beta", model.StatusNotCloned)

	m := NewSyncModel("Cloning", []model.Snapshot{a, b, a}, nil)
	assert.False(t, m.Done())
	assert.Contains(t, m.View(), "Cloning")

	a.Status = model.StatusCloning

	next, cmd := m.Update(eventMsg(registry.Event{Kind: registry.EventChanged, Snapshot: a, Op: engine.OpClone}))
	m = next.(SyncModel)
	require.NotNil(t, cmd)
	assert.False(t, m.Done())

	a.Status = model.StatusUpToDate
	a.Branch = "main"
	a.Message = "cloned"

	next, _ = m.Update(eventMsg(registry.Event{Kind: registry.EventChanged, Snapshot: a, Op: engine.OpClone, Final: true}))
	m = next.(SyncModel)
	assert.Contains(t, m.View(), "main | cloned")

	b.Status = model.StatusError

	next, cmd = m.Update(eventMsg(registry.Event{Kind: registry.EventChanged, Snapshot: b, Final: true, Err: errors.New("boom")}))
	m = next.(SyncModel)

	assert.True(t, m.Done())
	assert.Equal(t, 1, m.Failed())
	assert.Contains(t, m.View(), "boom")
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestSyncModel_IgnoresOtherEvents(t *testing.T) {
	a := snapshot("a", "alpha", model.StatusUpToDate)
	m := NewSyncModel("Pulling", []model.Snapshot{a}, nil)

	other := snapshot("x", "other", model.StatusUpToDate)
	next, _ := m.Update(eventMsg(registry.Event{Kind: registry.EventChanged, Snapshot: other, Final: true}))
	m = next.(SyncModel)
	assert.False(t, m.Done())

	next, _ = m.Update(eventMsg(registry.Event{Kind: registry.EventAdded, Snapshot: a}))
	m = next.(SyncModel)
	assert.False(t, m.Done())

	m.Finish("a", errors.New("refused"))
	assert.True(t, m.Done())
	assert.Equal(t, 1, m.Failed())
}

func TestSyncModel_NothingToTrack(t *testing.T) {
	m := NewSyncModel("Pulling", nil, nil)
	assert.True(t, m.Done())
	assert.IsType(t, tea.QuitMsg{}, m.Init()())
}

func TestPicker_Select(t *testing.T) {
	snaps := []model.Snapshot{
		snapshot("a", "alpha", model.StatusUpToDate),
		snapshot("b", "beta", model.StatusError),
	}

	m := NewPicker("Repositories", snaps)

	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = next.(PickerModel)

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(PickerModel)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(PickerModel)

	got, ok := m.Selected()
	require.True(t, ok)
	assert.Equal(t, "b", got.ID)
	require.NotNil(t, cmd)
	assert.Empty(t, m.View())
}

func TestPicker_Cancel(t *testing.T) {
	m := NewPicker("Repositories", []model.Snapshot{snapshot("a", "alpha", model.StatusNotCloned)})

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(PickerModel)

	_, ok := m.Selected()
	assert.False(t, ok)
}

func TestRepoItem(t *testing.T) {
	s := snapshot("a", "alpha", model.StatusUpToDate)
	s.Branch = "main"

	item := repoItem{snap: s}
	assert.Contains(t, item.Title(), "alpha")
	assert.Equal(t, "https://example.com/alpha.git | UpToDate | main", item.Description())
	assert.Contains(t, item.FilterValue(), "alpha")
}
