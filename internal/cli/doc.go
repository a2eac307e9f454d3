// Package cli provides the terminal views of gitroster.
//
// The package uses [Bubbletea] for interactive terminal UIs and [Lipgloss]
// for styling. Views follow the Bubbletea Model-View-Update architecture
// and read repository state only from registry events and snapshots.
//
// # Components
//
//   - SyncModel: live progress of clone and pull operations
//   - PickerModel: filterable list for choosing one repository
//
// Views are only started when stdout is a terminal; commands fall back to
// plain line output otherwise.
//
// [Bubbletea]: https://github.com/charmbracelet/bubbletea
// [Lipgloss]: https://github.com/charmbracelet/lipgloss
package cli
