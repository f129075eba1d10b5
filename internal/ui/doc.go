// Package ui implements the interactive stopwatch using bubbletea's Elm architecture.
//
// The TUI has two views:
//  1. [TimerView] : the HH:MM:SS clock, the scrolling period list and the total
//  2. [ConfirmView] : s/n confirmation before clearing every period
//
// The (view) [Model] subscribes to the stopwatch and forwards each snapshot through a buffered
// channel with a non-blocking send, so the tick goroutine is never held up by rendering.
// Transitions, export and clipboard copy run as [tea.Cmd]s and report back through the Msg union.
//
// Export, copy and clear are disabled while no period has been recorded. Quitting, by key or by
// cancelling the model's context, restores the window title.
package ui
