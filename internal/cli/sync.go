package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/inovacc/gitroster/internal/model"
	"github.com/inovacc/gitroster/internal/registry"
)

type syncRow struct {
	snap  model.Snapshot
	done  bool
	err   error
	title string
}

// SyncModel shows the progress of clone or pull operations on a set of
// repositories and quits when every one of them has finished.
type SyncModel struct {
	spinner spinner.Model
	verb    string
	order   []string
	rows    map[string]*syncRow
	events  <-chan registry.Event
	pending int
}

type eventMsg registry.Event

type feedClosedMsg struct{}

// NewSyncModel tracks targets through events. verb labels running rows,
// e.g. "Cloning".
func NewSyncModel(verb string, targets []model.Snapshot, events <-chan registry.Event) SyncModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	m := SyncModel{
		spinner: s,
		verb:    verb,
		rows:    make(map[string]*syncRow, len(targets)),
		events:  events,
	}

	for _, t := range targets {
		if _, ok := m.rows[t.ID]; ok {
			continue
		}

		m.order = append(m.order, t.ID)
		m.rows[t.ID] = &syncRow{snap: t, title: t.Name}
		m.pending++
	}

	return m
}

// Finish marks id as done without waiting for an event, for operations
// that were refused before they started.
func (m *SyncModel) Finish(id string, err error) {
	row, ok := m.rows[id]
	if !ok || row.done {
		return
	}

	row.done = true
	row.err = err
	m.pending--
}

func (m SyncModel) Init() tea.Cmd {
	if m.pending == 0 {
		return tea.Quit
	}

	return tea.Batch(m.spinner.Tick, m.waitForEvent)
}

func (m SyncModel) waitForEvent() tea.Msg {
	ev, ok := <-m.events
	if !ok {
		return feedClosedMsg{}
	}

	return eventMsg(ev)
}

func (m SyncModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case eventMsg:
		m.apply(registry.Event(msg))

		if m.pending == 0 {
			return m, tea.Quit
		}

		return m, m.waitForEvent

	case feedClosedMsg:
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd

		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	}

	return m, nil
}

func (m *SyncModel) apply(ev registry.Event) {
	if ev.Kind != registry.EventChanged {
		return
	}

	row, ok := m.rows[ev.Snapshot.ID]
	if !ok {
		return
	}

	row.snap = ev.Snapshot

	if ev.Final && !row.done {
		row.done = true
		row.err = ev.Err
		m.pending--
	}
}

// Done reports whether every tracked operation has finished.
func (m SyncModel) Done() bool {
	return m.pending == 0
}

// Failed returns the number of operations that ended in an error.
func (m SyncModel) Failed() int {
	n := 0

	for _, row := range m.rows {
		if row.err != nil {
			n++
		}
	}

	return n
}

func (m SyncModel) View() string {
	var b strings.Builder

	b.WriteString("\n")

	for _, id := range m.order {
		row := m.rows[id]

		switch {
		case !row.done:
			fmt.Fprintf(&b, "  %s %s %s\n", m.spinner.View(), m.verb, nameStyle.Render(row.title))
		case row.err != nil:
			fmt.Fprintf(&b, "  %s %s %s\n", StatusIcon(model.StatusError), nameStyle.Render(row.title), errorStyle.Render(row.err.Error()))
		default:
			fmt.Fprintf(&b, "  %s %s %s\n", StatusIcon(row.snap.Status), nameStyle.Render(row.title), mutedStyle.Render(Describe(row.snap)))
		}
	}

	b.WriteString("\n")

	return b.String()
}

// Describe summarizes the branch and last outcome of s.
func Describe(s model.Snapshot) string {
	parts := make([]string, 0, 2)

	if s.Branch != "" {
		parts = append(parts, s.Branch)
	}

	if s.Message != "" {
		parts = append(parts, s.Message)
	}

	return strings.Join(parts, " | ")
}
