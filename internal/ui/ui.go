package ui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/mlcc/internal/formatter"
	"github.com/desertthunder/mlcc/internal/gate"
	"github.com/desertthunder/mlcc/internal/models"
	"github.com/desertthunder/mlcc/internal/selection"
	"github.com/desertthunder/mlcc/internal/services"
	"github.com/desertthunder/mlcc/internal/shared"
	"github.com/desertthunder/mlcc/internal/store"
	"github.com/desertthunder/mlcc/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	HomeView ViewState = iota
	ConfigView
)

// panel is the table that receives cursor and paging keys.
type panel int

const (
	panelInputs panel = iota
	panelAlerts
	panelItems
	panelDiscovered
)

// Names of the gated actions in [gate.Set].
const (
	GatePrepare = "prepare"
	GateSwitch  = "switch"
)

// Ungated actions that stay disabled until their request settles.
const (
	pendingStatus       = "status"
	pendingStopGraphics = "stop_graphics"
)

// Options wires the model to the rest of the application.
type Options struct {
	API         services.ChannelAPI
	Store       *store.Store
	Coordinator *tasks.Coordinator
	Gates       *gate.Set          // Debounce gates for prepare/switch (default: 5s)
	RowsPerPage int                // Initial page size (default: 5)
	OpenURL     func(string) error // Opens an output preview (default: shared.OpenBrowser)
	Logger      *log.Logger
}

// generations tells apart listeners started by models that were rebuilt by the [Boundary].
var generations atomic.Uint64

// Model represents the TUI application state.
type Model struct {
	ctx    context.Context
	opts   Options
	gen    uint64
	view   ViewState
	focus  panel
	sel    selection.State
	width  int
	height int

	channels     []models.Channel
	channelsSnap store.Snapshot
	detail       *models.ChannelDetail
	detailSnap   store.Snapshot
	detailKey    store.Key
	discovered   []models.DiscoveredOutput
	discoverSnap store.Snapshot
	discoverKey  store.Key

	inputs          pagedTable
	alerts          pagedTable
	items           pagedTable
	discoveredTable pagedTable

	confirm     *confirmDialog
	graphicForm *graphicDialog
	configForm  *configDialog
	picking     bool
	picker      list.Model
	pending     map[string]bool

	notes   *tasks.NotificationQueue
	spinner spinner.Model
	help    help.Model
	keys    keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, opts Options) *Model {
	if opts.Gates == nil {
		opts.Gates = gate.NewSet(gate.DefaultDelay)
	}
	if opts.OpenURL == nil {
		opts.OpenURL = shared.OpenBrowser
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(io.Discard)
	}
	perPage := validRowsPerPage(opts.RowsPerPage)

	s := spinner.New()
	s.Spinner = spinner.Dot

	return &Model{
		ctx:             ctx,
		opts:            opts,
		gen:             generations.Add(1),
		view:            HomeView,
		sel:             selection.State{DataType: models.DataTypeOutputs},
		inputs:          newPagedTable("No inputs found", perPage, "Name", "Attached to Pipeline"),
		alerts:          newPagedTable("No records found", perPage, "State Updated At", "State", "Message"),
		items:           newPagedTable("No records found", perPage, "Name", "Url"),
		discoveredTable: newPagedTable("No outputs discovered", perPage, "Type", "Name", "URL", ""),
		notes:           tasks.NewNotificationQueue(tasks.DefaultMaxVisible),
		pending:         make(map[string]bool),
		spinner:         s,
		help:            help.New(),
		keys:            newKeyMap(),
	}
}

// Init subscribes to the channel list and starts listening for store and coordinator events.
func (m *Model) Init() tea.Cmd {
	m.opts.Store.Subscribe(store.ChannelsKey, store.ChannelsFetcher(m.opts.API))
	m.applySnapshot(m.opts.Store.Get(store.ChannelsKey))
	return tea.Batch(m.spinner.Tick, m.waitForSnapshot(), m.waitForNotification())
}

// Close drops the per-channel subscriptions of the model.
func (m *Model) Close() {
	if m.detailKey != "" {
		m.opts.Store.Unsubscribe(m.detailKey)
		m.detailKey = ""
	}
	if m.discoverKey != "" {
		m.opts.Store.Unsubscribe(m.discoverKey)
		m.discoverKey = ""
	}
}

// Selection returns the reconciled selection.
func (m *Model) Selection() selection.State { return m.sel }

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.picking {
			m.picker.SetSize(msg.Width-4, msg.Height-4)
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		return m.handleMsg(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgSnapshot:
		m.applySnapshot(msg.data.(store.Snapshot))
		if msg.gen != m.gen {
			return m, nil
		}
		return m, m.waitForSnapshot()

	case MsgNotification:
		n := msg.data.(tasks.Notification)
		m.notes.Push(n)
		cmds := []tea.Cmd{expireAfter(n)}
		if msg.gen == m.gen {
			cmds = append(cmds, m.waitForNotification())
		}
		return m, tea.Batch(cmds...)

	case MsgMutationDone:
		result := msg.data.(mutationResult)
		if result.pending != "" {
			delete(m.pending, result.pending)
			if result.pending == pendingStatus {
				m.confirm = nil
			}
		}
		if result.gate == "" {
			return m, nil
		}
		if d := m.opts.Gates.Get(result.gate).Settle(result.err); d > 0 {
			return m, gateTick(result.gate, d)
		}

	case MsgGateElapsed:
		name := msg.data.(string)
		g := m.opts.Gates.Get(name)
		if !g.Elapse() {
			if remaining := g.Remaining(); remaining > 0 {
				return m, gateTick(name, remaining)
			}
		}

	case MsgNotificationsExpired:
		m.notes.Expire(time.Now())
	}

	return m, nil
}

func gateTick(name string, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return gateElapsedMsg(name) })
}

func expireAfter(n tasks.Notification) tea.Cmd {
	return tea.Tick(time.Until(n.CreatedAt.Add(n.TTL)), func(time.Time) tea.Msg { return notificationsExpiredMsg() })
}

func (m *Model) waitForSnapshot() tea.Cmd {
	updates, gen := m.opts.Store.Updates(), m.gen
	return func() tea.Msg {
		snap, ok := <-updates
		if !ok {
			return nil
		}
		return snapshotMsg(gen, snap)
	}
}

func (m *Model) waitForNotification() tea.Cmd {
	if m.opts.Coordinator == nil {
		return nil
	}
	notifications, gen := m.opts.Coordinator.Notifications(), m.gen
	return func() tea.Msg {
		n, ok := <-notifications
		if !ok {
			return nil
		}
		return notificationMsg(gen, n)
	}
}

// applySnapshot stores snap when it belongs to a key the model follows, then reconciles.
func (m *Model) applySnapshot(snap store.Snapshot) {
	switch {
	case snap.Key == store.ChannelsKey:
		m.channelsSnap = snap
		if !snap.IsLoading {
			m.channels = store.Channels(snap)
		}
	case snap.Key != "" && snap.Key == m.detailKey:
		m.detailSnap = snap
		m.detail = store.Detail(snap)
	case snap.Key != "" && snap.Key == m.discoverKey:
		m.discoverSnap = snap
		m.discovered = store.Discovered(snap)
	default:
		return
	}
	m.reconcile()
}

// reconcile runs the selection reconciler and follows the selected channel with subscriptions.
func (m *Model) reconcile() {
	m.sel = selection.Reconcile(m.sel, m.channels, m.detail)
	if m.syncSubscriptions() {
		m.sel = selection.Reconcile(m.sel, m.channels, m.detail)
	}
	m.refreshTables()
}

func (m *Model) syncSubscriptions() bool {
	changed := false
	channelID := m.sel.ChannelID

	var wantDetail store.Key
	if channelID != "" {
		wantDetail = store.ChannelKey(channelID)
	}
	if wantDetail != m.detailKey {
		if m.detailKey != "" {
			m.opts.Store.Unsubscribe(m.detailKey)
		}
		m.detailKey = wantDetail
		m.detail, m.detailSnap = nil, store.Snapshot{}
		if wantDetail != "" {
			m.opts.Store.Subscribe(wantDetail, store.ChannelFetcher(m.opts.API, channelID))
			m.detailSnap = m.opts.Store.Get(wantDetail)
			m.detail = store.Detail(m.detailSnap)
		}
		m.opts.Logger.Debug("following channel", "channel", channelID)
		changed = true
	}

	var wantDiscover store.Key
	if channelID != "" && m.view == ConfigView && m.sel.DataType == models.DataTypeOutputs {
		wantDiscover = store.DiscoverKey(channelID)
	}
	if wantDiscover != m.discoverKey {
		if m.discoverKey != "" {
			m.opts.Store.Unsubscribe(m.discoverKey)
		}
		m.discoverKey = wantDiscover
		m.discovered, m.discoverSnap = nil, store.Snapshot{}
		if wantDiscover != "" {
			m.opts.Store.SubscribeEvery(wantDiscover, 0, store.DiscoverFetcher(m.opts.API, channelID))
			m.discoverSnap = m.opts.Store.Get(wantDiscover)
			m.discovered = store.Discovered(m.discoverSnap)
		}
		changed = true
	}

	return changed
}

// selectedChannel is the selected list entry merged with its detail.
func (m *Model) selectedChannel() (models.Channel, bool) {
	ch, ok := selection.SelectedChannel(m.sel, m.channels)
	if !ok {
		return models.Channel{}, false
	}
	return ch.WithDetail(m.detail), true
}

func (m *Model) refreshTables() {
	ch, _ := m.selectedChannel()

	inputs := make([][]string, 0, len(ch.InputAttachments))
	for _, in := range ch.InputAttachments {
		attached := "NO"
		if in.Active {
			attached = "YES"
		}
		inputs = append(inputs, []string{in.Name, attached})
	}
	m.inputs.SetRows(inputs)

	alerts := make([][]string, 0, len(ch.Alerts))
	for _, a := range ch.Alerts {
		alerts = append(alerts, []string{formatter.FormatTime(a.Time()), a.State, a.Message})
	}
	m.alerts.SetRows(alerts)

	items := [][]string{}
	if m.sel.DataType == models.DataTypeGraphics {
		for _, g := range ch.Graphics {
			items = append(items, []string{g.Name, g.URL})
		}
	} else {
		for _, o := range ch.Outputs {
			items = append(items, []string{o.Name, o.URL})
		}
	}
	m.items.SetRows(items)

	discovered := make([][]string, 0, len(m.discovered))
	for _, d := range m.discovered {
		action := "enter to add"
		if m.detail != nil && m.detail.HasURL(models.DataTypeOutputs, d.URL) {
			action = "added"
		}
		discovered = append(discovered, []string{d.Type, d.Name, d.URL, action})
	}
	m.discoveredTable.SetRows(discovered)
}

func (m *Model) focusedTable() *pagedTable {
	switch m.focus {
	case panelAlerts:
		return &m.alerts
	case panelItems:
		return &m.items
	case panelDiscovered:
		return &m.discoveredTable
	default:
		return &m.inputs
	}
}

func (m *Model) cycleFocus() {
	switch m.focus {
	case panelInputs:
		m.focus = panelAlerts
	case panelAlerts:
		m.focus = panelInputs
	case panelItems:
		if m.discoverKey != "" {
			m.focus = panelDiscovered
		}
	case panelDiscovered:
		m.focus = panelItems
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch {
	case m.confirm != nil:
		return m.handleConfirmKeys(msg)
	case m.graphicForm != nil:
		return m.handleGraphicKeys(msg)
	case m.configForm != nil:
		return m.handleConfigFormKeys(msg)
	case m.picking:
		return m.handlePickerKeys(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.view):
		m.toggleView()
		return m, nil
	case key.Matches(msg, m.keys.prevChannel):
		m.sel = selection.PrevChannel(m.sel, m.channels)
		m.reconcile()
		return m, nil
	case key.Matches(msg, m.keys.nextChannel):
		m.sel = selection.NextChannel(m.sel, m.channels)
		m.reconcile()
		return m, nil
	case key.Matches(msg, m.keys.pickChannel):
		if len(m.channels) > 0 {
			m.picker = newChannelPicker(m.channels, m.sel.ChannelID, max(m.width-4, 40), max(m.height-4, 12))
			m.picking = true
		}
		return m, nil
	case key.Matches(msg, m.keys.focus):
		m.cycleFocus()
		return m, nil
	case key.Matches(msg, m.keys.up):
		m.focusedTable().Up()
		return m, nil
	case key.Matches(msg, m.keys.down):
		m.focusedTable().Down()
		return m, nil
	case key.Matches(msg, m.keys.prevPage):
		m.focusedTable().PrevPage()
		return m, nil
	case key.Matches(msg, m.keys.nextPage):
		m.focusedTable().NextPage()
		return m, nil
	case key.Matches(msg, m.keys.rowsPerPage):
		m.focusedTable().CycleRowsPerPage()
		return m, nil
	}

	if m.view == ConfigView {
		return m.handleConfigKeys(msg)
	}
	return m.handleHomeKeys(msg)
}

func (m *Model) toggleView() {
	if m.view == HomeView {
		m.view = ConfigView
		m.focus = panelItems
	} else {
		m.view = HomeView
		m.focus = panelInputs
	}
	m.reconcile()
}

func (m *Model) handleHomeKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ch, ok := m.selectedChannel()
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.nextOutput):
		if m.detail != nil && len(m.detail.Outputs) > 0 {
			m.sel = selection.SelectOutput(m.sel, nextID(m.sel.OutputID, m.detail.Outputs, func(o models.Output) string { return o.ID }))
		}

	case key.Matches(msg, m.keys.openOutput):
		if output, ok := selection.SelectedOutput(m.sel, m.detail); ok {
			if err := m.opts.OpenURL(output.URL); err != nil {
				m.opts.Logger.Warn("failed to open output", "url", output.URL, "error", err)
				n := tasks.NewNotification(tasks.LevelError, "Unable to open output "+output.Name, tasks.DefaultNotificationTTL)
				m.notes.Push(n)
				return m, expireAfter(n)
			}
		}

	case key.Matches(msg, m.keys.start):
		if models.CanStart(ch.State) && !m.pending[pendingStatus] {
			m.confirm = &confirmDialog{channel: ch, action: models.ActionStart}
		}

	case key.Matches(msg, m.keys.stop):
		if models.CanStop(ch.State) && !m.pending[pendingStatus] {
			m.confirm = &confirmDialog{channel: ch, action: models.ActionStop}
		}

	case key.Matches(msg, m.keys.prepare):
		return m, m.gatedInputAction(ch, GatePrepare)

	case key.Matches(msg, m.keys.switchInput):
		return m, m.gatedInputAction(ch, GateSwitch)

	case key.Matches(msg, m.keys.nextGraphic):
		if m.detail != nil && len(m.detail.Graphics) > 0 {
			m.sel = selection.SelectGraphic(m.sel, nextID(m.sel.GraphicID, m.detail.Graphics, func(g models.Graphic) string { return g.ID }))
		}

	case key.Matches(msg, m.keys.insert):
		graphic, ok := selection.SelectedGraphic(m.sel, m.detail)
		if ok && ch.GraphicsEnabled && models.CanInsertGraphic(ch) {
			m.graphicForm = newGraphicDialog(graphic)
		}

	case key.Matches(msg, m.keys.stopGfx):
		if ch.GraphicsEnabled && ch.State == models.StateRunning && !m.pending[pendingStopGraphics] {
			id, coord := ch.ID, m.opts.Coordinator
			return m, m.mutate("", pendingStopGraphics, func(ctx context.Context) error { return coord.StopGraphics(ctx, id) })
		}
	}

	return m, nil
}

// gatedInputAction prepares or switches to the input under the cursor when its gate is armed.
func (m *Model) gatedInputAction(ch models.Channel, name string) tea.Cmd {
	idx := m.inputs.Cursor()
	if idx >= len(ch.InputAttachments) {
		return nil
	}
	input := ch.InputAttachments[idx].Name
	if !models.CanSwitchInput(ch, input) {
		return nil
	}
	if !m.opts.Gates.Get(name).Invoke() {
		return nil
	}

	id, coord := ch.ID, m.opts.Coordinator
	if name == GatePrepare {
		return m.mutate(name, "", func(ctx context.Context) error { return coord.PrepareInput(ctx, id, input) })
	}
	return m.mutate(name, "", func(ctx context.Context) error { return coord.SwitchInput(ctx, id, input) })
}

func (m *Model) handleConfigKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ch, ok := m.selectedChannel()
	if !ok {
		return m, nil
	}
	coord, id := m.opts.Coordinator, ch.ID

	switch {
	case key.Matches(msg, m.keys.dataType):
		next := models.DataTypeGraphics
		if m.sel.DataType == models.DataTypeGraphics {
			next = models.DataTypeOutputs
		}
		m.sel = selection.SelectDataType(m.sel, next)
		m.focus = panelItems
		m.reconcile()

	case key.Matches(msg, m.keys.add):
		m.configForm = newConfigDialog(m.sel.DataType)
		return m, textinput.Blink

	case key.Matches(msg, m.keys.remove):
		if m.focus != panelItems {
			return m, nil
		}
		itemID, ok := m.itemAt(ch, m.items.Cursor())
		if !ok {
			return m, nil
		}
		dataType := m.sel.DataType
		return m, m.mutate("", "", func(ctx context.Context) error {
			return coord.RemoveConfigItem(ctx, id, dataType, itemID)
		})

	case key.Matches(msg, m.keys.enter):
		if m.focus != panelDiscovered {
			return m, nil
		}
		idx := m.discoveredTable.Cursor()
		if idx >= len(m.discovered) {
			return m, nil
		}
		d := m.discovered[idx]
		if m.detail != nil && m.detail.HasURL(models.DataTypeOutputs, d.URL) {
			return m, nil
		}
		item := models.ConfigItem{Name: d.Name, URL: d.URL}
		return m, m.mutate("", "", func(ctx context.Context) error {
			_, err := coord.AddConfigItem(ctx, id, models.DataTypeOutputs, item)
			return err
		})
	}

	return m, nil
}

func (m *Model) itemAt(ch models.Channel, idx int) (string, bool) {
	if m.sel.DataType == models.DataTypeGraphics {
		if idx < len(ch.Graphics) {
			return ch.Graphics[idx].ID, true
		}
		return "", false
	}
	if idx < len(ch.Outputs) {
		return ch.Outputs[idx].ID, true
	}
	return "", false
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.confirm.Update(msg, m.keys) {
	case dialogConfirmed:
		id, action, coord := m.confirm.channel.ID, m.confirm.action, m.opts.Coordinator
		cmd := m.mutate("", pendingStatus, func(ctx context.Context) error { return coord.SetStatus(ctx, id, action) })
		if cmd == nil {
			m.confirm = nil
			return m, nil
		}
		m.confirm.pending = true
		return m, cmd
	case dialogCancelled:
		m.confirm = nil
	}
	return m, nil
}

func (m *Model) handleGraphicKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	result, cmd := m.graphicForm.Update(msg, m.keys)
	switch result {
	case dialogConfirmed:
		duration, _ := m.graphicForm.Duration()
		graphicID, coord := m.graphicForm.graphic.ID, m.opts.Coordinator
		channelID := m.sel.ChannelID
		m.graphicForm = nil
		return m, m.mutate("", "", func(ctx context.Context) error {
			return coord.InsertGraphic(ctx, channelID, graphicID, duration)
		})
	case dialogCancelled:
		m.graphicForm = nil
	}
	return m, cmd
}

func (m *Model) handleConfigFormKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	result, cmd := m.configForm.Update(msg)
	switch result {
	case dialogConfirmed:
		item, dataType := m.configForm.Item(), m.configForm.dataType
		channelID, coord := m.sel.ChannelID, m.opts.Coordinator
		m.configForm = nil
		return m, m.mutate("", "", func(ctx context.Context) error {
			_, err := coord.AddConfigItem(ctx, channelID, dataType, item)
			return err
		})
	case dialogCancelled:
		m.configForm = nil
	}
	return m, cmd
}

func (m *Model) handlePickerKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.picker.SettingFilter() {
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.picker.SelectedItem().(channelItem); ok {
			m.sel = selection.SelectChannel(m.sel, item.channel.ID)
			m.reconcile()
		}
		m.picking = false
		return m, nil
	case key.Matches(msg, m.keys.back):
		m.picking = false
		return m, nil
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	return m, cmd
}

// mutate runs fn off the update loop and reports the outcome for gateName.
//
// A non-empty pending kind stays in flight until the outcome arrives.
func (m *Model) mutate(gateName, pending string, fn func(ctx context.Context) error) tea.Cmd {
	if m.opts.Coordinator == nil {
		return nil
	}
	if pending != "" {
		m.pending[pending] = true
	}
	ctx := m.ctx
	return func() tea.Msg {
		return mutationDoneMsg(gateName, pending, fn(ctx))
	}
}

func nextID[T any](current string, items []T, id func(T) string) string {
	for i, item := range items {
		if id(item) == current {
			return id(items[(i+1)%len(items)])
		}
	}
	return id(items[0])
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.picking {
		return m.picker.View()
	}

	var body string
	switch {
	case m.confirm != nil:
		body = m.confirm.View()
	case m.graphicForm != nil:
		body = m.graphicForm.View()
	case m.configForm != nil:
		body = m.configForm.View()
	case m.view == ConfigView:
		body = m.renderConfig()
	default:
		body = m.renderHome()
	}

	sections := []string{m.renderHeader(), body}
	if notes := m.renderNotifications(); notes != "" {
		sections = append(sections, notes)
	}
	sections = append(sections, m.help.View(m.keys))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) renderHeader() string {
	home, config := styles.tab.Render("Home"), styles.tab.Render("Config")
	if m.view == HomeView {
		home = styles.activeTab.Render("Home")
	} else {
		config = styles.activeTab.Render("Config")
	}
	return styles.title.Render("MediaLive Control Centre") + "\n" + lipgloss.JoinHorizontal(lipgloss.Top, home, config)
}

// renderChannelLine shows the channel selector, or why there is nothing to select.
func (m *Model) renderChannelLine() (string, bool) {
	switch {
	case m.channelsSnap.IsLoading && len(m.channels) == 0:
		return m.spinner.View() + " Loading channels...", false
	case m.channelsSnap.IsError && len(m.channels) == 0:
		return styles.err.Render(fmt.Sprintf("Unable to load channels: %v", m.channelsSnap.Err)), false
	case len(m.channels) == 0:
		return styles.muted.Render("No channels found"), false
	}

	ch, ok := m.selectedChannel()
	if !ok {
		return styles.muted.Render("No channel selected"), false
	}
	position := 0
	for i, c := range m.channels {
		if c.ID == ch.ID {
			position = i + 1
		}
	}
	line := fmt.Sprintf("Channel: ‹ %s › (%d/%d)", styles.heading.Render(ch.Name), position, len(m.channels))
	if m.channelsSnap.IsError {
		line += "  " + styles.warn.Render("refresh failed")
	}
	return line, true
}

func (m *Model) detailLoading() bool {
	return m.detail == nil && !m.detailSnap.IsError
}

func (m *Model) renderHome() string {
	line, ok := m.renderChannelLine()
	if !ok {
		return line
	}
	ch, _ := m.selectedChannel()

	sections := []string{line, m.renderOutputs()}

	if m.detailLoading() {
		sections = append(sections, m.spinner.View()+" Loading channel...")
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	startBtn, stopBtn := "[s] Start Channel", "[x] Stop Channel"
	busy := m.pending[pendingStatus]
	if models.CanStart(ch.State) && !busy {
		startBtn = styles.ok.Render(startBtn)
	} else {
		startBtn = styles.muted.Render(startBtn)
	}
	if models.CanStop(ch.State) && !busy {
		stopBtn = styles.err.Render(stopBtn)
	} else {
		stopBtn = styles.muted.Render(stopBtn)
	}
	sections = append(sections,
		"",
		styles.heading.Render("Channel Controls"),
		startBtn+"  "+stopBtn,
		styles.Badge(ch.State),
		"",
		styles.heading.Render("Inputs")+m.statusNote(ch, "Input"),
		m.inputs.View(m.focus == panelInputs),
		m.renderInputActions(ch),
		"",
		styles.heading.Render("Graphics")+m.statusNote(ch, "Graphics"),
		m.renderGraphics(ch),
		"",
		styles.heading.Render("Alerts"),
		m.alerts.View(m.focus == panelAlerts),
	)
	if m.detailSnap.IsError {
		sections = append(sections, styles.warn.Render(fmt.Sprintf("Channel refresh failed: %v", m.detailSnap.Err)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) statusNote(ch models.Channel, kind string) string {
	if ch.State == models.StateRunning {
		return ""
	}
	return "  " + styles.help.Render(kind+" controls are unavailable whilst a channel is not running")
}

func (m *Model) renderOutputs() string {
	if m.detail == nil {
		return ""
	}
	if len(m.detail.Outputs) == 0 {
		return styles.muted.Render("No outputs available to display")
	}
	names := make([]string, 0, len(m.detail.Outputs))
	for _, o := range m.detail.Outputs {
		if o.ID == m.sel.OutputID {
			names = append(names, styles.selected.Render(" "+o.Name+" "))
		} else {
			names = append(names, " "+o.Name+" ")
		}
	}
	return "Output: " + strings.Join(names, "│") + styles.help.Render("  o next • b open")
}

func (m *Model) renderInputActions(ch models.Channel) string {
	if ch.State != models.StateRunning || m.inputs.Len() == 0 {
		return ""
	}
	prepare := "[p] Prepare"
	if g := m.opts.Gates.Get(GatePrepare); !g.Armed() {
		prepare = styles.muted.Render(fmt.Sprintf("%s (%s)", prepare, g.Remaining().Round(time.Second)))
	}
	switchBtn := "[w] Switch"
	if g := m.opts.Gates.Get(GateSwitch); !g.Armed() {
		switchBtn = styles.muted.Render(fmt.Sprintf("%s (%s)", switchBtn, g.Remaining().Round(time.Second)))
	}
	return prepare + "  " + switchBtn
}

func (m *Model) renderGraphics(ch models.Channel) string {
	if !ch.GraphicsEnabled {
		return styles.warn.Render("Motion graphics not enabled for this channel")
	}
	graphic, ok := selection.SelectedGraphic(m.sel, m.detail)
	if !ok {
		return styles.muted.Render("No graphics available")
	}
	insert, stop := "[g] Insert", "[G] Stop Graphics"
	if !models.CanInsertGraphic(ch) {
		insert, stop = styles.muted.Render(insert), styles.muted.Render(stop)
	} else if m.pending[pendingStopGraphics] {
		stop = styles.muted.Render("[G] Stopping Graphics")
	}
	return fmt.Sprintf("Graphic: ‹ %s ›  %s  %s", graphic.Name, insert, stop) + styles.help.Render("  . next")
}

func (m *Model) renderConfig() string {
	line, ok := m.renderChannelLine()
	if !ok {
		return line
	}
	ch, _ := m.selectedChannel()

	outputs, graphics := styles.tab.Render("Outputs"), styles.tab.Render("Graphics")
	if m.sel.DataType == models.DataTypeGraphics {
		graphics = styles.activeTab.Render("Graphics")
	} else {
		outputs = styles.activeTab.Render("Outputs")
	}

	sections := []string{line, "", lipgloss.JoinHorizontal(lipgloss.Top, outputs, graphics) + styles.help.Render("  t switch")}

	if m.detailLoading() {
		return lipgloss.JoinVertical(lipgloss.Left, append(sections, m.spinner.View()+" Loading channel...")...)
	}

	if m.sel.DataType == models.DataTypeGraphics && !ch.GraphicsEnabled {
		sections = append(sections, styles.err.Render("Motion graphics are not enabled for this channel"))
	}
	sections = append(sections, m.items.View(m.focus == panelItems), styles.help.Render("[a] Add New +  [d] Delete"))

	if m.sel.DataType == models.DataTypeOutputs {
		sections = append(sections, "", styles.heading.Render("Discovered Outputs"))
		switch {
		case m.discoverSnap.IsLoading:
			sections = append(sections, m.spinner.View()+" Discovering outputs...")
		case m.discoverSnap.IsError:
			sections = append(sections, styles.err.Render("Unable to discover any outputs"))
		default:
			sections = append(sections, m.discoveredTable.View(m.focus == panelDiscovered))
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) renderNotifications() string {
	items := m.notes.Items()
	if len(items) == 0 {
		return ""
	}
	lines := make([]string, 0, len(items))
	for _, n := range items {
		if n.Level == tasks.LevelError {
			lines = append(lines, styles.err.Render("✗ "+n.Message))
		} else {
			lines = append(lines, styles.ok.Render("✓ "+n.Message))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
