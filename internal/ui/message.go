package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/boletim/internal/models"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgSnapshot MsgKind = iota
	MsgActionDone
	MsgExported
	MsgCopied
	MsgShutdown
)

// actionResult is the payload of [MsgActionDone].
type actionResult struct {
	action string
	err    error
}

// exportResult is the payload of [MsgExported].
type exportResult struct {
	path string
	err  error
}

// snapshotMsg is the constructor for [MsgSnapshot]
func snapshotMsg(snap models.Snapshot) Msg {
	return Msg{kind: MsgSnapshot, data: snap}
}

// actionDoneMsg is the constructor for [MsgActionDone]
func actionDoneMsg(action string, err error) Msg {
	return Msg{kind: MsgActionDone, data: actionResult{action, err}}
}

// exportedMsg is the constructor for [MsgExported]
func exportedMsg(path string, err error) Msg {
	return Msg{kind: MsgExported, data: exportResult{path, err}}
}

// shutdownMsg is sent when the model's context is cancelled.
func shutdownMsg() Msg {
	return Msg{kind: MsgShutdown}
}

// copiedMsg is the constructor for [MsgCopied]
func copiedMsg(err error) Msg {
	return Msg{kind: MsgCopied, data: err}
}
