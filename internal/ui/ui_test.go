package ui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/mlcc/internal/gate"
	"github.com/desertthunder/mlcc/internal/models"
	"github.com/desertthunder/mlcc/internal/store"
	"github.com/desertthunder/mlcc/internal/tasks"
	tu "github.com/desertthunder/mlcc/internal/testing"
)

type fixture struct {
	api   *tu.MockChannelAPI
	store *store.Store
	gates *gate.Set
	now   time.Time
	model *Model
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{api: tu.NewMockChannelAPI(), now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	f.store = store.New(store.Options{Interval: time.Hour})
	t.Cleanup(f.store.Close)

	f.gates = gate.NewSet(gate.DefaultDelay, gate.WithClock(func() time.Time { return f.now }))
	coord := tasks.NewCoordinator(f.api, f.store, tasks.CoordinatorOpts{})
	f.model = NewModel(context.Background(), Options{
		API:         f.api,
		Store:       f.store,
		Coordinator: coord,
		Gates:       f.gates,
		OpenURL:     func(string) error { return nil },
	})
	f.model.Init()
	return f
}

// load feeds snapshots as if they came from a listener of an older generation.
func (f *fixture) load(channels []models.Channel, detail *models.ChannelDetail) {
	f.model.Update(snapshotMsg(0, store.Snapshot{Key: store.ChannelsKey, Data: channels}))
	if detail != nil {
		f.model.Update(snapshotMsg(0, store.Snapshot{Key: store.ChannelKey(detail.ChannelID), Data: detail}))
	}
}

func (f *fixture) press(keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = f.model.Update(keyPress(k))
	}
	return cmd
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+t":
		return tea.KeyMsg{Type: tea.KeyCtrlT}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func runningChannel(id string) models.Channel {
	return models.Channel{
		ID:    id,
		Name:  "Channel " + id,
		State: models.StateRunning,
		InputAttachments: []models.InputAttachment{
			{Name: "in1", Active: true},
			{Name: "in2"},
		},
	}
}

func TestSnapshots(t *testing.T) {
	t.Run("Reconciles Selection", func(t *testing.T) {
		f := newFixture(t)
		f.load(
			[]models.Channel{runningChannel("c1"), runningChannel("c2")},
			&models.ChannelDetail{ChannelID: "c1", Outputs: []models.Output{{ID: "o1", Name: "Main", URL: "https://cdn.example.com/o1"}}},
		)

		sel := f.model.Selection()
		if sel.ChannelID != "c1" {
			t.Errorf("expected channel c1, got %q", sel.ChannelID)
		}
		if sel.OutputID != "o1" {
			t.Errorf("expected output o1, got %q", sel.OutputID)
		}
		if !f.store.Subscribed(store.ChannelKey("c1")) {
			t.Error("expected the detail of c1 to be subscribed")
		}
	})

	t.Run("Selected Channel Disappears", func(t *testing.T) {
		f := newFixture(t)
		f.load([]models.Channel{runningChannel("c1"), runningChannel("c2")}, nil)
		f.load([]models.Channel{runningChannel("c2")}, nil)

		if got := f.model.Selection().ChannelID; got != "c2" {
			t.Errorf("expected fallback to c2, got %q", got)
		}
		if f.store.Subscribed(store.ChannelKey("c1")) {
			t.Error("expected the detail of c1 to be unsubscribed")
		}
		if !f.store.Subscribed(store.ChannelKey("c2")) {
			t.Error("expected the detail of c2 to be subscribed")
		}

		f.load([]models.Channel{}, nil)
		if got := f.model.Selection().ChannelID; got != "" {
			t.Errorf("expected no selection, got %q", got)
		}
		if !strings.Contains(f.model.View(), "No channels found") {
			t.Error("expected the empty channel message")
		}
	})

	t.Run("Ignores Loading Channel List", func(t *testing.T) {
		f := newFixture(t)
		f.load([]models.Channel{runningChannel("c1")}, nil)
		f.model.Update(snapshotMsg(0, store.Snapshot{Key: store.ChannelsKey, IsLoading: true}))

		if got := f.model.Selection().ChannelID; got != "c1" {
			t.Errorf("expected selection to survive a loading snapshot, got %q", got)
		}
	})

	t.Run("Ignores Stale Detail", func(t *testing.T) {
		f := newFixture(t)
		f.load([]models.Channel{runningChannel("c1")}, nil)
		f.model.Update(snapshotMsg(0, store.Snapshot{
			Key:  store.ChannelKey("c9"),
			Data: &models.ChannelDetail{ChannelID: "c9", Outputs: []models.Output{{ID: "o9"}}},
		}))

		if got := f.model.Selection().OutputID; got != "" {
			t.Errorf("expected no output from another channel, got %q", got)
		}
	})

	t.Run("Rearms Listener For Current Generation Only", func(t *testing.T) {
		f := newFixture(t)
		snap := store.Snapshot{Key: store.ChannelsKey, Data: []models.Channel{runningChannel("c1")}}

		if _, cmd := f.model.Update(snapshotMsg(0, snap)); cmd != nil {
			t.Error("expected no listener from an old generation")
		}
		if _, cmd := f.model.Update(snapshotMsg(f.model.gen, snap)); cmd == nil {
			t.Error("expected the listener to be re-armed")
		}
	})
}

func TestChannelControls(t *testing.T) {
	t.Run("Start Requires Startable State", func(t *testing.T) {
		f := newFixture(t)
		f.load([]models.Channel{runningChannel("c1")}, &models.ChannelDetail{ChannelID: "c1"})

		f.press("s")
		if f.model.confirm != nil {
			t.Fatal("expected no confirmation for a running channel")
		}
	})

	t.Run("Confirm Starts Channel", func(t *testing.T) {
		f := newFixture(t)
		idle := runningChannel("c1")
		idle.State = models.StateIdle
		f.load([]models.Channel{idle}, &models.ChannelDetail{ChannelID: "c1"})

		f.press("s")
		if f.model.confirm == nil {
			t.Fatal("expected a confirmation dialog")
		}
		if !strings.Contains(f.model.View(), "Confirm Start Channel") {
			t.Error("expected the dialog title in the view")
		}

		cmd := f.press("y")
		if cmd == nil {
			t.Fatal("expected a mutation command")
		}
		cmd()

		calls := f.api.CallsTo("UpdateStatus")
		if len(calls) != 1 || calls[0].ChannelID != "c1" {
			t.Fatalf("expected one status call for c1, got %+v", calls)
		}
		if calls[0].Args[0] != models.ActionStart {
			t.Errorf("expected start action, got %v", calls[0].Args[0])
		}
	})

	t.Run("Cancel Closes Dialog", func(t *testing.T) {
		f := newFixture(t)
		idle := runningChannel("c1")
		idle.State = models.StateIdle
		f.load([]models.Channel{idle}, &models.ChannelDetail{ChannelID: "c1"})

		f.press("s")
		if cmd := f.press("n"); cmd != nil {
			t.Error("expected no command on cancel")
		}
		if f.model.confirm != nil {
			t.Error("expected the dialog to close")
		}
		if len(f.api.CallsTo("UpdateStatus")) != 0 {
			t.Error("expected no status call")
		}
	})

	t.Run("Dialog Stays Open Until Status Settles", func(t *testing.T) {
		f := newFixture(t)
		idle := runningChannel("c1")
		idle.State = models.StateIdle
		f.load([]models.Channel{idle}, &models.ChannelDetail{ChannelID: "c1"})

		cmd := f.press("s", "y")
		if cmd == nil {
			t.Fatal("expected a mutation command")
		}
		if f.model.confirm == nil || !f.model.confirm.pending {
			t.Fatal("expected the dialog to stay open while the request is in flight")
		}
		if !strings.Contains(f.model.View(), "Sending request...") {
			t.Error("expected the pending footer in the view")
		}
		if again := f.press("y"); again != nil {
			t.Error("expected confirm to be disabled while pending")
		}
		f.press("n")
		if f.model.confirm == nil {
			t.Error("expected cancel to be disabled while pending")
		}

		f.model.Update(cmd())
		if f.model.confirm != nil {
			t.Error("expected the dialog to close once the request settles")
		}
		if calls := f.api.CallsTo("UpdateStatus"); len(calls) != 1 {
			t.Errorf("expected one status call, got %d", len(calls))
		}
	})

	t.Run("Failed Status Closes Dialog", func(t *testing.T) {
		f := newFixture(t)
		f.api.Errs["UpdateStatus"] = errors.New("boom")
		idle := runningChannel("c1")
		idle.State = models.StateIdle
		f.load([]models.Channel{idle}, &models.ChannelDetail{ChannelID: "c1"})

		cmd := f.press("s", "y")
		f.model.Update(cmd())
		if f.model.confirm != nil {
			t.Error("expected the dialog to close after a failure")
		}
		if f.press("s"); f.model.confirm == nil {
			t.Error("expected start to be possible again after a failure")
		}
	})

	t.Run("Stop Graphics Ignores Repeats While Pending", func(t *testing.T) {
		f := newFixture(t)
		f.load([]models.Channel{runningChannel("c1")}, &models.ChannelDetail{
			ChannelID:       "c1",
			GraphicsEnabled: true,
			Graphics:        []models.Graphic{{ID: "g1", Name: "Bug", URL: "https://gfx.example.com/bug"}},
		})

		cmd := f.press("G")
		if cmd == nil {
			t.Fatal("expected a stop graphics command")
		}
		if again := f.press("G", "G"); again != nil {
			t.Error("expected repeated presses to be ignored while pending")
		}
		if !strings.Contains(f.model.View(), "Stopping Graphics") {
			t.Error("expected the muted stopping label")
		}

		f.model.Update(cmd())
		if calls := f.api.CallsTo("StopGraphics"); len(calls) != 1 {
			t.Errorf("expected one stop graphics call, got %d", len(calls))
		}
		if again := f.press("G"); again == nil {
			t.Error("expected stop graphics to be possible once settled")
		}
	})
}

func TestInputGating(t *testing.T) {
	t.Run("Active Input Cannot Be Prepared", func(t *testing.T) {
		f := newFixture(t)
		f.load([]models.Channel{runningChannel("c1")}, &models.ChannelDetail{ChannelID: "c1"})

		if cmd := f.press("p"); cmd != nil {
			t.Error("expected no command for the active input")
		}
	})

	t.Run("Prepare Is Debounced", func(t *testing.T) {
		f := newFixture(t)
		f.load([]models.Channel{runningChannel("c1")}, &models.ChannelDetail{ChannelID: "c1"})

		cmd := f.press("j", "p")
		if cmd == nil {
			t.Fatal("expected a prepare command")
		}
		if again := f.press("p"); again != nil {
			t.Error("expected a second press to be ignored while in flight")
		}

		msg := cmd()
		if calls := f.api.CallsTo("PrepareInput"); len(calls) != 1 || calls[0].Args[0] != "in2" {
			t.Fatalf("expected one prepare call for in2, got %+v", calls)
		}

		_, tick := f.model.Update(msg)
		if tick == nil {
			t.Fatal("expected a cool-down tick after success")
		}
		if state := f.gates.Get(GatePrepare).State(); state != gate.CoolingDown {
			t.Errorf("expected cooling down, got %v", state)
		}
		if again := f.press("p"); again != nil {
			t.Error("expected presses to be ignored during the cool-down")
		}

		f.now = f.now.Add(gate.DefaultDelay)
		f.model.Update(gateElapsedMsg(GatePrepare))
		if !f.gates.Get(GatePrepare).Armed() {
			t.Fatal("expected the gate to re-arm")
		}
		if again := f.press("p"); again == nil {
			t.Error("expected prepare to be possible again")
		}
	})

	t.Run("Failure Rearms At Once", func(t *testing.T) {
		f := newFixture(t)
		f.api.Errs["SwitchInput"] = errors.New("boom")
		f.load([]models.Channel{runningChannel("c1")}, &models.ChannelDetail{ChannelID: "c1"})

		cmd := f.press("j", "w")
		if cmd == nil {
			t.Fatal("expected a switch command")
		}
		if _, tick := f.model.Update(cmd()); tick != nil {
			t.Error("expected no cool-down after a failure")
		}
		if !f.gates.Get(GateSwitch).Armed() {
			t.Error("expected the gate to be armed")
		}
	})

	t.Run("Gates Are Independent", func(t *testing.T) {
		f := newFixture(t)
		f.load([]models.Channel{runningChannel("c1")}, &models.ChannelDetail{ChannelID: "c1"})

		if cmd := f.press("j", "p"); cmd == nil {
			t.Fatal("expected a prepare command")
		}
		if cmd := f.press("w"); cmd == nil {
			t.Error("expected switch to be unaffected by prepare")
		}
	})
}

func TestGraphicDialog(t *testing.T) {
	detail := &models.ChannelDetail{
		ChannelID:       "c1",
		GraphicsEnabled: true,
		Graphics:        []models.Graphic{{ID: "g1", Name: "Lower Third", URL: "https://gfx.example.com/g1"}},
	}

	t.Run("Requires Positive Seconds", func(t *testing.T) {
		f := newFixture(t)
		f.load([]models.Channel{runningChannel("c1")}, detail)

		f.press("g")
		if f.model.graphicForm == nil {
			t.Fatal("expected the graphic dialog")
		}

		f.press("ctrl+t", "a", "b", "c", "enter")
		if f.model.graphicForm == nil {
			t.Fatal("expected an invalid duration to keep the dialog open")
		}
		if f.model.graphicForm.Valid() {
			t.Error("expected abc to be invalid")
		}
	})

	t.Run("Inserts With Duration", func(t *testing.T) {
		f := newFixture(t)
		f.load([]models.Channel{runningChannel("c1")}, detail)

		cmd := f.press("g", "ctrl+t", "5", "enter")
		if cmd == nil {
			t.Fatal("expected an insert command")
		}
		cmd()

		calls := f.api.CallsTo("StartGraphic")
		if len(calls) != 1 {
			t.Fatalf("expected one insert call, got %d", len(calls))
		}
		duration, ok := calls[0].Args[1].(*time.Duration)
		if !ok || duration == nil || *duration != 5*time.Second {
			t.Errorf("expected 5s, got %v", calls[0].Args[1])
		}
	})

	t.Run("Indefinite By Default", func(t *testing.T) {
		d := newGraphicDialog(models.Graphic{ID: "g1"})
		duration, err := d.Duration()
		if err != nil || duration != nil {
			t.Errorf("expected an indefinite duration, got %v, %v", duration, err)
		}
	})

	t.Run("Disabled Graphics", func(t *testing.T) {
		f := newFixture(t)
		f.load([]models.Channel{runningChannel("c1")}, &models.ChannelDetail{ChannelID: "c1", Graphics: detail.Graphics})

		f.press("g")
		if f.model.graphicForm != nil {
			t.Error("expected no dialog when graphics are disabled")
		}
		if !strings.Contains(f.model.View(), "Motion graphics not enabled for this channel") {
			t.Error("expected the disabled message")
		}
	})
}

func TestConfigView(t *testing.T) {
	t.Run("Form Defaults", func(t *testing.T) {
		d := newConfigDialog(models.DataTypeOutputs)
		if got := d.inputs[fieldURL].Value(); got != "https://" {
			t.Errorf("expected https:// default, got %q", got)
		}
	})

	t.Run("Adds Output", func(t *testing.T) {
		f := newFixture(t)
		f.load([]models.Channel{runningChannel("c1")}, &models.ChannelDetail{ChannelID: "c1"})

		f.press("tab")
		if f.model.view != ConfigView {
			t.Fatal("expected the config view")
		}
		if !f.store.Subscribed(store.DiscoverKey("c1")) {
			t.Error("expected discovery to start on the outputs tab")
		}

		f.press("a", "P", "r", "o", "g", "enter")
		if cmd := f.press("enter"); cmd != nil {
			t.Fatal("expected a bare scheme to be rejected")
		}

		cmd := f.press("c", "d", "n", ".", "i", "o", "enter")
		if cmd == nil {
			t.Fatal("expected an add command")
		}
		cmd()

		calls := f.api.CallsTo("AddConfigItem")
		if len(calls) != 1 {
			t.Fatalf("expected one add call, got %d", len(calls))
		}
		item := calls[0].Args[1].(models.ConfigItem)
		if item.Name != "Prog" || item.URL != "https://cdn.io" {
			t.Errorf("unexpected item %+v", item)
		}
	})

	t.Run("Graphics Tab Stops Discovery", func(t *testing.T) {
		f := newFixture(t)
		f.load([]models.Channel{runningChannel("c1")}, &models.ChannelDetail{ChannelID: "c1"})

		f.press("tab", "t")
		if f.model.Selection().DataType != models.DataTypeGraphics {
			t.Fatal("expected the graphics tab")
		}
		if f.store.Subscribed(store.DiscoverKey("c1")) {
			t.Error("expected discovery to stop")
		}
		if !strings.Contains(f.model.View(), "Motion graphics are not enabled for this channel") {
			t.Error("expected the disabled warning")
		}
	})

	t.Run("Removes Item Under Cursor", func(t *testing.T) {
		f := newFixture(t)
		f.load([]models.Channel{runningChannel("c1")}, &models.ChannelDetail{
			ChannelID: "c1",
			Outputs:   []models.Output{{ID: "o1", Name: "A"}, {ID: "o2", Name: "B"}},
		})

		cmd := f.press("tab", "j", "d")
		if cmd == nil {
			t.Fatal("expected a remove command")
		}
		cmd()

		calls := f.api.CallsTo("RemoveConfigItem")
		if len(calls) != 1 || calls[0].Args[1] != "o2" {
			t.Errorf("expected o2 to be removed, got %+v", calls)
		}
	})
}

func TestNotifications(t *testing.T) {
	f := newFixture(t)
	f.load([]models.Channel{runningChannel("c1")}, nil)

	n := tasks.NewNotification(tasks.LevelSuccess, "Channel start requested", time.Second)
	if _, cmd := f.model.Update(notificationMsg(0, n)); cmd == nil {
		t.Error("expected an expiry tick")
	}
	if !strings.Contains(f.model.View(), "Channel start requested") {
		t.Error("expected the notification in the view")
	}

	f.model.notes.Expire(n.CreatedAt.Add(time.Second))
	if strings.Contains(f.model.View(), "Channel start requested") {
		t.Error("expected the notification to expire")
	}
}

type panicModel struct {
	builds *int
}

func (m panicModel) Init() tea.Cmd { return nil }

func (m panicModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && k.String() == "!" {
		panic("exploded")
	}
	return m, nil
}

func (m panicModel) View() string { return "healthy" }

func TestBoundary(t *testing.T) {
	builds := 0
	b := NewBoundary(func() tea.Model {
		builds++
		return panicModel{builds: &builds}
	}, nil)

	b.Update(keyPress("!"))
	if b.Err() == nil {
		t.Fatal("expected the panic to be recovered")
	}
	view := b.View()
	if !strings.Contains(view, "Unexpected Error Occurred!") || !strings.Contains(view, "exploded") {
		t.Errorf("unexpected fallback view %q", view)
	}

	b.Update(keyPress("r"))
	if b.Err() != nil {
		t.Fatal("expected the error to clear")
	}
	if builds != 2 {
		t.Errorf("expected the model to be rebuilt, got %d builds", builds)
	}
	if b.View() != "healthy" {
		t.Error("expected the rebuilt model to render")
	}
}

func TestPalette(t *testing.T) {
	if styles.StateColor(models.StateIdle) == styles.StateColor(models.StateRunning) {
		t.Error("expected idle and running to use different colors")
	}
	if styles.StateColor(models.StateStarting) != styles.StateColor(models.StateStopping) {
		t.Error("expected transitional states to share a color")
	}
	if !strings.Contains(styles.Badge(models.StateRunning), "RUNNING") {
		t.Error("expected the state in the badge")
	}
}

func TestPagedTable(t *testing.T) {
	rows := make([][]string, 12)
	for i := range rows {
		rows[i] = []string{string(rune('a' + i))}
	}

	t.Run("Pages", func(t *testing.T) {
		tbl := newPagedTable("empty", 5, "Name")
		tbl.SetRows(rows)

		if got := len(tbl.VisibleRows()); got != 5 {
			t.Errorf("expected 5 visible rows, got %d", got)
		}
		tbl.NextPage()
		tbl.NextPage()
		if tbl.Page() != 2 || len(tbl.VisibleRows()) != 2 {
			t.Errorf("expected the last page with 2 rows, got page %d with %d", tbl.Page(), len(tbl.VisibleRows()))
		}
		tbl.NextPage()
		if tbl.Page() != 2 {
			t.Error("expected to stay on the last page")
		}
		if tbl.Cursor() != 10 {
			t.Errorf("expected the cursor at the first row of the page, got %d", tbl.Cursor())
		}
	})

	t.Run("Shrinking Rows Clamps Cursor", func(t *testing.T) {
		tbl := newPagedTable("empty", 5, "Name")
		tbl.SetRows(rows)
		for range 11 {
			tbl.Down()
		}
		tbl.SetRows(rows[:3])
		if tbl.Cursor() != 2 || tbl.Page() != 0 {
			t.Errorf("expected cursor 2 on page 0, got %d on %d", tbl.Cursor(), tbl.Page())
		}
	})

	t.Run("Cycles Rows Per Page", func(t *testing.T) {
		tbl := newPagedTable("empty", 7, "Name")
		if tbl.RowsPerPage() != 5 {
			t.Errorf("expected an invalid size to fall back to 5, got %d", tbl.RowsPerPage())
		}
		for _, want := range []int{10, 20, 5} {
			tbl.CycleRowsPerPage()
			if tbl.RowsPerPage() != want {
				t.Errorf("expected %d rows per page, got %d", want, tbl.RowsPerPage())
			}
		}
	})

	t.Run("Empty Message", func(t *testing.T) {
		tbl := newPagedTable("No records found", 5, "Name")
		if !strings.Contains(tbl.View(false), "No records found") {
			t.Error("expected the empty message")
		}
	})
}
