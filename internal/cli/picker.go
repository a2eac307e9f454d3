package cli

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/inovacc/gitroster/internal/model"
)

type repoItem struct {
	snap model.Snapshot
}

func (i repoItem) Title() string {
	return fmt.Sprintf("%s %s", StatusIcon(i.snap.Status), i.snap.Name)
}

func (i repoItem) Description() string {
	desc := fmt.Sprintf("%s | %s", i.snap.URL, i.snap.Status)

	if i.snap.Branch != "" {
		desc = fmt.Sprintf("%s | %s", desc, i.snap.Branch)
	}

	return desc
}

func (i repoItem) FilterValue() string {
	return i.snap.Name + " " + i.snap.URL
}

// PickerModel lets the user choose one repository.
type PickerModel struct {
	list     list.Model
	selected *model.Snapshot
	quitting bool
}

// NewPicker lists snaps under title.
func NewPicker(title string, snaps []model.Snapshot) PickerModel {
	items := make([]list.Item, len(snaps))
	for i, s := range snaps {
		items[i] = repoItem{snap: s}
	}

	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)

	return PickerModel{list: l}
}

func (m PickerModel) Init() tea.Cmd {
	return nil
}

func (m PickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v)

		return m, nil

	case tea.KeyMsg:
		// Keys belong to the filter input while it is being edited.
		if m.list.FilterState() == list.Filtering {
			break
		}

		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.quitting = true

			return m, tea.Quit

		case "enter":
			if i, ok := m.list.SelectedItem().(repoItem); ok {
				m.selected = &i.snap
			}

			return m, tea.Quit
		}
	}

	var cmd tea.Cmd

	m.list, cmd = m.list.Update(msg)

	return m, cmd
}

func (m PickerModel) View() string {
	if m.quitting || m.selected != nil {
		return ""
	}

	return docStyle.Render(m.list.View())
}

// Selected returns the chosen repository, if the user picked one.
func (m PickerModel) Selected() (model.Snapshot, bool) {
	if m.selected == nil {
		return model.Snapshot{}, false
	}

	return *m.selected, true
}
