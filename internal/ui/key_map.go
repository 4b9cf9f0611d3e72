package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up          key.Binding
	down        key.Binding
	prevPage    key.Binding
	nextPage    key.Binding
	rowsPerPage key.Binding
	focus       key.Binding
	view        key.Binding
	prevChannel key.Binding
	nextChannel key.Binding
	pickChannel key.Binding
	nextOutput  key.Binding
	openOutput  key.Binding
	start       key.Binding
	stop        key.Binding
	prepare     key.Binding
	switchInput key.Binding
	nextGraphic key.Binding
	insert      key.Binding
	stopGfx     key.Binding
	dataType    key.Binding
	add         key.Binding
	remove      key.Binding
	enter       key.Binding
	back        key.Binding
	yes         key.Binding
	no          key.Binding
	toggle      key.Binding
	restart     key.Binding
	help        key.Binding
	quit        key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:          key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:        key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		prevPage:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev page")),
		nextPage:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next page")),
		rowsPerPage: key.NewBinding(key.WithKeys("+"), key.WithHelp("+", "rows per page")),
		focus:       key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "focus next table")),
		view:        key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "home/config")),
		prevChannel: key.NewBinding(key.WithKeys("["), key.WithHelp("[", "prev channel")),
		nextChannel: key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next channel")),
		pickChannel: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "choose channel")),
		nextOutput:  key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "next output")),
		openOutput:  key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "open output")),
		start:       key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "start channel")),
		stop:        key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "stop channel")),
		prepare:     key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "prepare input")),
		switchInput: key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "switch input")),
		nextGraphic: key.NewBinding(key.WithKeys("."), key.WithHelp(".", "next graphic")),
		insert:      key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "insert graphic")),
		stopGfx:     key.NewBinding(key.WithKeys("G"), key.WithHelp("G", "stop graphics")),
		dataType:    key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "outputs/graphics")),
		add:         key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		remove:      key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		enter:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		back:        key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		yes:         key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "yes")),
		no:          key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "no")),
		toggle:      key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "indefinite")),
		restart:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "try again")),
		help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.view, k.pickChannel, k.focus, k.help, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.prevPage, k.nextPage, k.rowsPerPage, k.focus},
		{k.view, k.prevChannel, k.nextChannel, k.pickChannel, k.nextOutput, k.openOutput},
		{k.start, k.stop, k.prepare, k.switchInput, k.nextGraphic, k.insert, k.stopGfx},
		{k.dataType, k.add, k.remove, k.enter, k.help, k.quit},
	}
}
