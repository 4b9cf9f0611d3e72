package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/mlcc/internal/store"
	"github.com/desertthunder/mlcc/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	gen  uint64
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgSnapshot MsgKind = iota
	MsgNotification
	MsgMutationDone
	MsgGateElapsed
	MsgNotificationsExpired
)

// mutationResult is the payload of [MsgMutationDone].
type mutationResult struct {
	gate    string
	pending string
	err     error
}

// snapshotMsg is the constructor for [MsgSnapshot]
func snapshotMsg(gen uint64, snap store.Snapshot) Msg {
	return Msg{kind: MsgSnapshot, gen: gen, data: snap}
}

// notificationMsg is the constructor for [MsgNotification]
func notificationMsg(gen uint64, n tasks.Notification) Msg {
	return Msg{kind: MsgNotification, gen: gen, data: n}
}

// mutationDoneMsg is the constructor for [MsgMutationDone]; gate and pending are empty when unused.
func mutationDoneMsg(gate, pending string, err error) Msg {
	return Msg{kind: MsgMutationDone, data: mutationResult{gate: gate, pending: pending, err: err}}
}

// gateElapsedMsg is the constructor for [MsgGateElapsed]
func gateElapsedMsg(gate string) Msg {
	return Msg{kind: MsgGateElapsed, data: gate}
}

// notificationsExpiredMsg is the constructor for [MsgNotificationsExpired]
func notificationsExpiredMsg() Msg {
	return Msg{kind: MsgNotificationsExpired}
}
