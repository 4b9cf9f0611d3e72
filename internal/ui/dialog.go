package ui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/mlcc/internal/models"
)

// dialogResult is what a key press did to an open dialog.
type dialogResult int

const (
	dialogOpen dialogResult = iota
	dialogCancelled
	dialogConfirmed
)

// confirmDialog asks before starting or stopping a channel.
//
// Once confirmed it stays open, ignoring keys, until the request settles.
type confirmDialog struct {
	channel models.Channel
	action  models.StatusAction
	pending bool
}

func (d *confirmDialog) Update(msg tea.KeyMsg, keys keyMap) dialogResult {
	if d.pending {
		return dialogOpen
	}
	switch {
	case key.Matches(msg, keys.yes), key.Matches(msg, keys.enter):
		return dialogConfirmed
	case key.Matches(msg, keys.no), key.Matches(msg, keys.back):
		return dialogCancelled
	}
	return dialogOpen
}

func (d *confirmDialog) View() string {
	title := styles.heading.Render(fmt.Sprintf("Confirm %s Channel", capitalize(string(d.action))))
	body := fmt.Sprintf("Please confirm you wish to %s the channel %s", styles.heading.Render(string(d.action)), d.channel.Name)
	footer := styles.help.Render("y confirm • n cancel")
	if d.pending {
		footer = styles.muted.Render("Sending request...")
	}
	return styles.dialog.Render(lipgloss.JoinVertical(lipgloss.Left, title, "", body, "", footer))
}

// graphicDialog asks how long to show a graphic.
type graphicDialog struct {
	graphic    models.Graphic
	indefinite bool
	seconds    textinput.Model
}

func newGraphicDialog(graphic models.Graphic) *graphicDialog {
	seconds := textinput.New()
	seconds.Placeholder = "seconds"
	seconds.CharLimit = 6
	seconds.Prompt = "Duration: "

	return &graphicDialog{graphic: graphic, indefinite: true, seconds: seconds}
}

// Duration returns nil when the graphic is shown indefinitely.
func (d *graphicDialog) Duration() (*time.Duration, error) {
	if d.indefinite {
		return nil, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(d.seconds.Value()))
	if err != nil || n <= 0 {
		return nil, fmt.Errorf("duration must be a positive number of seconds")
	}
	duration := time.Duration(n) * time.Second
	return &duration, nil
}

func (d *graphicDialog) Valid() bool {
	_, err := d.Duration()
	return err == nil
}

func (d *graphicDialog) Update(msg tea.KeyMsg, keys keyMap) (dialogResult, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.back):
		return dialogCancelled, nil
	case key.Matches(msg, keys.toggle):
		d.indefinite = !d.indefinite
		if d.indefinite {
			d.seconds.Blur()
			return dialogOpen, nil
		}
		return dialogOpen, d.seconds.Focus()
	case key.Matches(msg, keys.enter):
		if d.Valid() {
			return dialogConfirmed, nil
		}
		return dialogOpen, nil
	}

	if d.indefinite {
		return dialogOpen, nil
	}
	var cmd tea.Cmd
	d.seconds, cmd = d.seconds.Update(msg)
	return dialogOpen, cmd
}

func (d *graphicDialog) View() string {
	toggle := "[x] Show indefinitely"
	if !d.indefinite {
		toggle = "[ ] Show indefinitely"
	}

	lines := []string{
		styles.heading.Render("Confirm Insert Graphic"),
		"",
		fmt.Sprintf("Please confirm how long to display the graphic %s on the channel", styles.heading.Render(d.graphic.Name)),
		"",
		toggle,
	}
	if !d.indefinite {
		lines = append(lines, d.seconds.View())
		if _, err := d.Duration(); err != nil && d.seconds.Value() != "" {
			lines = append(lines, styles.err.Render(err.Error()))
		}
	}

	confirm := "enter confirm"
	if !d.Valid() {
		confirm = styles.muted.Render(confirm)
	}
	lines = append(lines, "", styles.help.Render("ctrl+t toggle • "+confirm+" • esc cancel"))
	return styles.dialog.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// configDialog collects the name and URL of a new output or graphic.
type configDialog struct {
	dataType models.ConfigDataType
	inputs   []textinput.Model
	focus    int
	err      string
}

const (
	fieldName = iota
	fieldURL
)

func newConfigDialog(dataType models.ConfigDataType) *configDialog {
	name := textinput.New()
	name.Prompt = "Name: "
	name.Focus()

	url := textinput.New()
	url.Prompt = "Url:  "
	url.SetValue("https://")

	return &configDialog{dataType: dataType, inputs: []textinput.Model{name, url}}
}

// Item returns the entered item; it is validated before the dialog confirms.
func (d *configDialog) Item() models.ConfigItem {
	return models.ConfigItem{
		Name: strings.TrimSpace(d.inputs[fieldName].Value()),
		URL:  strings.TrimSpace(d.inputs[fieldURL].Value()),
	}
}

func (d *configDialog) Update(msg tea.KeyMsg) (dialogResult, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return dialogCancelled, nil
	case "tab", "shift+tab", "up", "down":
		d.inputs[d.focus].Blur()
		d.focus = (d.focus + 1) % len(d.inputs)
		return dialogOpen, d.inputs[d.focus].Focus()
	case "enter":
		if d.focus == fieldName {
			d.inputs[d.focus].Blur()
			d.focus = fieldURL
			return dialogOpen, d.inputs[d.focus].Focus()
		}
		item := d.Item()
		if item.Name == "" || item.URL == "" {
			d.err = "Required"
			return dialogOpen, nil
		}
		if err := item.Validate(); err != nil {
			d.err = err.Error()
			return dialogOpen, nil
		}
		return dialogConfirmed, nil
	}

	d.err = ""
	var cmd tea.Cmd
	d.inputs[d.focus], cmd = d.inputs[d.focus].Update(msg)
	return dialogOpen, cmd
}

func (d *configDialog) View() string {
	lines := []string{styles.heading.Render("Add " + capitalize(d.dataType.Singular())), ""}
	for _, in := range d.inputs {
		lines = append(lines, in.View())
	}
	if d.err != "" {
		lines = append(lines, styles.err.Render(d.err))
	}
	lines = append(lines, "", styles.help.Render("tab next field • enter confirm • esc cancel"))
	return styles.dialog.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
