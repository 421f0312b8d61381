package update

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/sakina/internal/catalog"
	"github.com/sandeepkv93/sakina/internal/clock"
	"github.com/sandeepkv93/sakina/internal/model"
	"github.com/sandeepkv93/sakina/internal/progress"
	"github.com/sandeepkv93/sakina/internal/scheduler"
	"github.com/sandeepkv93/sakina/internal/storage"
)

func testCatalog() *catalog.Catalog {
	return &catalog.Catalog{
		Morning: []catalog.Item{
			{ID: "kursi", Title: "Ayat al-Kursi", Count: 1},
			{ID: "ikhlas", Title: "Al-Ikhlas", Count: 3},
		},
		Evening: []catalog.Item{
			{ID: "falaq", Title: "Al-Falaq", Count: 3},
		},
		Relief: []catalog.Item{
			{ID: "yunus", Title: "Dua of Yunus", Count: 1},
		},
	}
}

type testEnv struct {
	model *Model
	store *progress.Store
	clock *clock.Fixed
}

func newTestModel(t *testing.T, mutate ...func(*Deps)) testEnv {
	t.Helper()
	clk := clock.NewFixed(time.Date(2026, 2, 9, 7, 0, 0, 0, time.UTC))
	store := progress.NewStore(storage.NewMemoryKV(), clk)
	deps := Deps{Store: store, Catalog: testCatalog(), Clock: clk}
	for _, fn := range mutate {
		fn(&deps)
	}
	m := NewModel(deps)
	return testEnv{model: &m, store: store, clock: clk}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m Model, msgs ...tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, msg := range msgs {
		var updated tea.Model
		updated, cmd = m.Update(msg)
		m = updated.(Model)
	}
	return m, cmd
}

// completions runs cmd and collects the completion messages it yields.
func completions(t *testing.T, cmd tea.Cmd) []CompletionMsg {
	t.Helper()
	if cmd == nil {
		return nil
	}
	var out []CompletionMsg
	switch msg := cmd().(type) {
	case CompletionMsg:
		out = append(out, msg)
	case tea.BatchMsg:
		for _, c := range msg {
			out = append(out, completions(t, c)...)
		}
	}
	return out
}

type recordingNotifier struct {
	sent []Notification
}

func (r *recordingNotifier) Send(n Notification) error {
	r.sent = append(r.sent, n)
	return nil
}

type brokenKV struct{}

func (brokenKV) ReadString(context.Context, string) (string, error) { return "", storage.ErrNotFound }
func (brokenKV) WriteString(context.Context, string, string) error  { return errors.New("read-only") }

func TestNewModelDefaults(t *testing.T) {
	env := newTestModel(t)
	m := *env.model
	if m.CurrentView != ViewHome {
		t.Fatalf("expected default view %q, got %q", ViewHome, m.CurrentView)
	}
	if m.Keys.Quit != "q" || m.Keys.Tasbih != "4" {
		t.Fatalf("unexpected keys: %+v", m.Keys)
	}
	if cmd := m.Init(); cmd != nil {
		t.Fatal("expected no init cmd without scheduler or watcher")
	}
}

func TestUpdateKeySwitchesView(t *testing.T) {
	env := newTestModel(t)
	cases := []struct {
		key  string
		want View
	}{
		{"2", ViewMorning},
		{"3", ViewEvening},
		{"4", ViewTasbih},
		{"5", ViewRelief},
		{"1", ViewHome},
	}
	m := *env.model
	for _, tc := range cases {
		m, _ = press(t, m, runes(tc.key))
		if m.CurrentView != tc.want {
			t.Fatalf("key %s: expected %q, got %q", tc.key, tc.want, m.CurrentView)
		}
	}
}

func TestUpdateSwitchViewMsg(t *testing.T) {
	env := newTestModel(t)
	m, _ := press(t, *env.model, SwitchViewMsg{View: ViewEvening})
	if m.CurrentView != ViewEvening {
		t.Fatalf("expected evening view, got %q", m.CurrentView)
	}
	m, _ = press(t, m, SwitchViewMsg{View: View("Unknown")})
	if m.CurrentView != ViewEvening {
		t.Fatalf("expected view unchanged for unknown view, got %q", m.CurrentView)
	}
}

func TestUpdateStatusAndError(t *testing.T) {
	env := newTestModel(t)
	m, _ := press(t, *env.model, SetStatusMsg{Text: "ready"})
	if m.Status.Text != "ready" || m.Status.IsError {
		t.Fatalf("unexpected status: %+v", m.Status)
	}

	m, _ = press(t, m, AppErrorMsg{Err: errors.New("boom")})
	if m.LastError == nil || m.LastError.Error() != "boom" {
		t.Fatalf("expected last error boom, got: %v", m.LastError)
	}
	if !m.Status.IsError || m.Status.Text != "boom" {
		t.Fatalf("unexpected error status: %+v", m.Status)
	}

	m, _ = press(t, m, ClearStatusMsg{})
	if m.Status.Text != "" || m.Status.IsError {
		t.Fatalf("expected cleared status, got: %+v", m.Status)
	}
}

func TestUpdateQuitKey(t *testing.T) {
	env := newTestModel(t)
	m, cmd := press(t, *env.model, runes("q"))
	if !m.Quitting {
		t.Fatal("expected quitting flag true")
	}
	if cmd == nil {
		t.Fatal("expected quit command")
	}
}

func TestHomeEnterOpensSelectedSection(t *testing.T) {
	env := newTestModel(t)
	m, _ := press(t, *env.model, runes("j"), runes("j"), tea.KeyMsg{Type: tea.KeyEnter})
	if m.CurrentView != ViewTasbih {
		t.Fatalf("expected tasbih view, got %q", m.CurrentView)
	}
}

func TestTapItemCompletesAndReorders(t *testing.T) {
	env := newTestModel(t)
	m, _ := press(t, *env.model, runes("2"))

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeySpace})
	got := completions(t, cmd)
	if len(got) != 1 || got[0].Completion.ItemID != "kursi" {
		t.Fatalf("expected one completion for kursi, got %+v", got)
	}
	if !strings.Contains(m.Status.Text, "Ayat al-Kursi complete") {
		t.Fatalf("unexpected status %q", m.Status.Text)
	}

	items := m.orderedItems(model.SectionMorning)
	if items[0].ID != "ikhlas" || items[1].ID != "kursi" {
		t.Fatalf("expected completed item moved last, got %s,%s", items[0].ID, items[1].ID)
	}

	// The cursor now rests on the next incomplete item.
	m, cmd = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Fatal("expected no completion on an advancing tap")
	}
	if p := env.store.GetItemProgress(model.SectionMorning, "ikhlas"); p.Current != 1 || p.Target != 3 {
		t.Fatalf("unexpected ikhlas progress %+v", p)
	}

	m, _ = press(t, m, runes("j"), tea.KeyMsg{Type: tea.KeySpace})
	if !strings.Contains(m.Status.Text, "already complete") {
		t.Fatalf("expected already complete status, got %q", m.Status.Text)
	}
	if env.store.GetItemProgress(model.SectionMorning, "kursi").Current != 1 {
		t.Fatal("tap on a complete item must not change it")
	}
}

func TestCompletionMsgNotifiesOnSectionComplete(t *testing.T) {
	notifier := &recordingNotifier{}
	env := newTestModel(t, func(d *Deps) {
		d.Notifier = notifier
		d.DesktopNotifications = true
	})
	m, _ := press(t, *env.model, runes("5"))
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeySpace})
	for _, msg := range completions(t, cmd) {
		m, _ = press(t, m, msg)
	}
	if m.LastCompletion == nil || m.LastCompletion.Section != model.SectionRelief {
		t.Fatalf("unexpected last completion %+v", m.LastCompletion)
	}
	if len(notifier.sent) != 1 || !strings.Contains(notifier.sent[0].Body, "Keys to relief complete") {
		t.Fatalf("expected section completion notification, got %+v", notifier.sent)
	}
}

func TestResetKeys(t *testing.T) {
	env := newTestModel(t)
	m, _ := press(t, *env.model, runes("3"), runes(" "), runes(" "))
	if env.store.GetItemProgress(model.SectionEvening, "falaq").Current != 2 {
		t.Fatal("expected two taps recorded")
	}

	m, _ = press(t, m, runes("r"))
	if got := env.store.GetItemProgress(model.SectionEvening, "falaq"); got.Current != 0 || got.Target != 3 {
		t.Fatalf("expected item reset, got %+v", got)
	}

	m, _ = press(t, m, runes(" "), runes("R"))
	if len(env.store.Load().Sections.Evening.Items) != 0 {
		t.Fatal("expected evening section cleared")
	}
	if !strings.Contains(m.Status.Text, "Evening remembrance reset") {
		t.Fatalf("unexpected status %q", m.Status.Text)
	}
}

func TestResetAllNeedsConfirmation(t *testing.T) {
	env := newTestModel(t)
	if _, err := env.store.UpdateTasbihCount(5); err != nil {
		t.Fatalf("seed tasbih: %v", err)
	}

	m, _ := press(t, *env.model, runes("X"), runes("n"))
	if m.ConfirmResetAll || env.store.TasbihProgress().Count != 5 {
		t.Fatal("expected reset cancelled")
	}

	m, _ = press(t, m, runes("X"))
	if !m.ConfirmResetAll {
		t.Fatal("expected confirmation prompt")
	}
	m, _ = press(t, m, runes("y"))
	if m.ConfirmResetAll || env.store.TasbihProgress().Count != 0 {
		t.Fatal("expected all progress reset")
	}
}

func TestTasbihSequenceInView(t *testing.T) {
	env := newTestModel(t)
	m, _ := press(t, *env.model, runes("4"))

	var fired []CompletionMsg
	for i := 0; i < 16; i++ {
		var cmd tea.Cmd
		m, cmd = press(t, m, tea.KeyMsg{Type: tea.KeySpace})
		got := completions(t, cmd)
		if len(got) > 0 && i != 14 {
			t.Fatalf("completion fired on tap %d", i+1)
		}
		fired = append(fired, got...)
	}
	if len(fired) != 1 {
		t.Fatalf("expected exactly one completion, got %d", len(fired))
	}
	if env.store.TasbihProgress().Count != model.TasbihUnit {
		t.Fatalf("expected count capped at %d, got %d", model.TasbihUnit, env.store.TasbihProgress().Count)
	}
	out := m.View()
	if !strings.Contains(out, "count: 15 / 15") || !strings.Contains(out, "sequence complete") {
		t.Fatalf("unexpected tasbih view:\n%s", out)
	}

	m, _ = press(t, m, runes("r"))
	if env.store.TasbihProgress().Count != 0 {
		t.Fatal("expected tasbih reset")
	}
}

func TestPaletteCommands(t *testing.T) {
	env := newTestModel(t)
	m, _ := press(t, *env.model, runes("/"))
	if !m.Palette.Active {
		t.Fatal("expected palette active")
	}
	m, _ = press(t, m, runes("tap evening falaq"), tea.KeyMsg{Type: tea.KeyEnter})
	if m.Palette.Active {
		t.Fatal("expected palette closed after enter")
	}
	if env.store.GetItemProgress(model.SectionEvening, "falaq").Current != 1 {
		t.Fatal("expected palette tap recorded")
	}
	if m.Status.IsError || !strings.Contains(m.Status.Text, "Al-Falaq 1/3") {
		t.Fatalf("unexpected status %+v", m.Status)
	}

	m, _ = press(t, m, runes("/"), runes("show tasbih"), tea.KeyMsg{Type: tea.KeyEnter})
	if m.CurrentView != ViewTasbih {
		t.Fatalf("expected tasbih view, got %q", m.CurrentView)
	}

	m, _ = press(t, m, runes("/"), runes("progress"), tea.KeyMsg{Type: tea.KeyEnter})
	if !strings.HasPrefix(m.Status.Text, "overall ") || !strings.Contains(m.Status.Text, "evening 0%") {
		t.Fatalf("unexpected progress summary %q", m.Status.Text)
	}

	m, _ = press(t, m, runes("/"), runes("tap morning missing"), tea.KeyMsg{Type: tea.KeyEnter})
	if !m.Status.IsError || !strings.Contains(m.Status.Text, "invalid_argument") {
		t.Fatalf("expected invalid argument error, got %+v", m.Status)
	}

	m, _ = press(t, m, runes("/"), runes("reset evening"), tea.KeyMsg{Type: tea.KeyEnter})
	if len(env.store.Load().Sections.Evening.Items) != 0 {
		t.Fatal("expected palette reset to clear evening")
	}

	m, _ = press(t, m, runes("/"), tea.KeyMsg{Type: tea.KeyEsc})
	if m.Palette.Active || m.Status.Text != "command palette closed" {
		t.Fatalf("expected palette closed, got %+v", m.Status)
	}
}

func TestPaletteTapCompletionReturnsCmd(t *testing.T) {
	env := newTestModel(t)
	_, cmd := press(t, *env.model, runes("/"), runes("tap morning kursi"), tea.KeyMsg{Type: tea.KeyEnter})
	if got := completions(t, cmd); len(got) != 1 {
		t.Fatalf("expected one completion, got %+v", got)
	}
}

func TestInitWithSchedulerAndWatcher(t *testing.T) {
	engine := scheduler.NewEngine(1)
	env := newTestModel(t, func(d *Deps) {
		d.Scheduler = engine
		d.Watcher = progress.NewWatcher(d.Store, time.Minute)
	})
	if cmd := env.model.Init(); cmd == nil {
		t.Fatal("expected wait cmds when scheduler and watcher are attached")
	}
}

func TestReminderDueNotifiesAndRearms(t *testing.T) {
	engine := scheduler.NewEngine(4)
	notifier := &recordingNotifier{}
	env := newTestModel(t, func(d *Deps) {
		d.Scheduler = engine
		d.Notifier = notifier
		d.DesktopNotifications = true
	})
	ev := scheduler.ReminderEvent{
		ID:        "rem-1",
		Section:   model.SectionEvening,
		Title:     "Evening remembrance",
		Body:      "Time for the evening remembrance",
		At:        "17:00",
		TriggerAt: time.Date(2026, 2, 9, 17, 0, 0, 0, time.UTC),
	}

	m, cmd := press(t, *env.model, ReminderDueMsg{Event: ev})
	if len(m.ReminderLog) != 1 || m.ReminderLog[0].ID != "rem-1" {
		t.Fatalf("unexpected reminder log: %#v", m.ReminderLog)
	}
	if cmd == nil {
		t.Fatal("expected reminder listener rearm cmd")
	}
	if !strings.Contains(m.Status.Text, "reminder: Time for the evening remembrance") {
		t.Fatalf("unexpected status %q", m.Status.Text)
	}
	if len(notifier.sent) != 1 {
		t.Fatalf("expected one desktop notification, got %d", len(notifier.sent))
	}
	if engine.Pending() != 1 {
		t.Fatalf("expected next occurrence queued, got %d", engine.Pending())
	}
}

func TestReminderSuppressedWhenSectionComplete(t *testing.T) {
	engine := scheduler.NewEngine(4)
	notifier := &recordingNotifier{}
	env := newTestModel(t, func(d *Deps) {
		d.Scheduler = engine
		d.Notifier = notifier
		d.DesktopNotifications = true
	})
	if _, err := env.store.IncrementItem(model.SectionMorning, "kursi", 1); err != nil {
		t.Fatalf("seed morning: %v", err)
	}

	ev := scheduler.ReminderEvent{ID: "rem-2", Section: model.SectionMorning, At: "06:00", TriggerAt: time.Date(2026, 2, 9, 6, 0, 0, 0, time.UTC)}
	m, _ := press(t, *env.model, ReminderDueMsg{Event: ev})
	if !strings.Contains(m.Status.Text, "reminder skipped") {
		t.Fatalf("expected suppressed reminder, got %q", m.Status.Text)
	}
	if len(notifier.sent) != 0 {
		t.Fatal("expected no notification for a complete section")
	}
	if engine.Pending() != 1 {
		t.Fatal("expected the reminder rearmed for tomorrow anyway")
	}
}

func TestRolloverMsgResetsUIState(t *testing.T) {
	env := newTestModel(t)
	m, _ := press(t, *env.model, runes("2"), runes("j"), runes("X"))
	m, _ = press(t, m, RolloverMsg{Date: "2026-02-10"})
	if m.Cursors[model.SectionMorning] != 0 || m.ConfirmResetAll {
		t.Fatalf("expected ui state reset, got cursors=%v confirm=%v", m.Cursors, m.ConfirmResetAll)
	}
	if !strings.Contains(m.Status.Text, "new day 2026-02-10") {
		t.Fatalf("unexpected status %q", m.Status.Text)
	}
}

func TestViewContainsCoreState(t *testing.T) {
	env := newTestModel(t)
	m := *env.model
	m.Status = StatusBar{Text: "all good"}
	out := m.View()
	for _, want := range []string{"sakina | 2026-02-09 | Home", "status: all good", "Morning remembrance", "suggested now: Morning remembrance [2]"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}

	m, _ = press(t, m, runes("2"), runes("?"))
	out = m.View()
	if !strings.Contains(out, "tap selected item") {
		t.Fatalf("expected section help in output:\n%s", out)
	}
}

func TestViewWarnsWhenPersistenceFails(t *testing.T) {
	clk := clock.NewFixed(time.Date(2026, 2, 9, 7, 0, 0, 0, time.UTC))
	m := NewModel(Deps{Store: progress.NewStore(brokenKV{}, clk), Catalog: testCatalog(), Clock: clk})
	out := m.View()
	if !strings.Contains(out, "may not survive a restart") {
		t.Fatalf("expected persistence warning:\n%s", out)
	}
}
