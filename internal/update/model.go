package update

import (
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"runtime"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"

	"github.com/sandeepkv93/sakina/internal/catalog"
	"github.com/sandeepkv93/sakina/internal/clock"
	"github.com/sandeepkv93/sakina/internal/counter"
	"github.com/sandeepkv93/sakina/internal/model"
	"github.com/sandeepkv93/sakina/internal/observability"
	sprogress "github.com/sandeepkv93/sakina/internal/progress"
	"github.com/sandeepkv93/sakina/internal/scheduler"
)

type View string

const (
	ViewHome    View = "Home"
	ViewMorning View = "Morning"
	ViewEvening View = "Evening"
	ViewTasbih  View = "Tasbih"
	ViewRelief  View = "Relief"
)

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Home    string
	Morning string
	Evening string
	Tasbih  string
	Relief  string
	Help    string
	Quit    string
}

type CommandPaletteState struct {
	Active bool
	Input  string
}

type Notification struct {
	Title string
	Body  string
	Level string
	At    time.Time
}

type DesktopNotifier interface {
	Send(Notification) error
}

type NoopDesktopNotifier struct{}

func (NoopDesktopNotifier) Send(Notification) error { return nil }

type ExecDesktopNotifier struct{}

func (ExecDesktopNotifier) Send(n Notification) error {
	switch runtime.GOOS {
	case "linux":
		return exec.Command("notify-send", n.Title, n.Body).Run()
	case "darwin":
		script := fmt.Sprintf(`display notification "%s" with title "%s"`, escapeAppleScript(n.Body), escapeAppleScript(n.Title))
		return exec.Command("osascript", "-e", script).Run()
	default:
		return nil
	}
}

// Deps are the collaborators the model drives. Store and Catalog are
// required; the rest may be nil.
type Deps struct {
	Store                *sprogress.Store
	Catalog              catalog.Provider
	Scheduler            *scheduler.Engine
	Watcher              *sprogress.Watcher
	Notifier             DesktopNotifier
	Metrics              *observability.Metrics
	Clock                clock.Clock
	Logger               *slog.Logger
	DesktopNotifications bool
}

type Model struct {
	CurrentView     View
	Cursors         map[model.Section]int
	HomeCursor      int
	Palette         CommandPaletteState
	HelpVisible     bool
	ConfirmResetAll bool
	Notifications   []Notification
	ReminderLog     []scheduler.ReminderEvent
	LastCompletion  *counter.Completion
	DesktopEnabled  bool
	Status          StatusBar
	Keys            GlobalKeyMap
	Quitting        bool
	LastError       error

	store      *sprogress.Store
	aggregator *sprogress.Aggregator
	catalog    catalog.Provider
	scheduler  *scheduler.Engine
	watcher    *sprogress.Watcher
	notifier   DesktopNotifier
	metrics    *observability.Metrics
	clock      clock.Clock
	logger     *slog.Logger

	// Bubble components used for rich TUI controls
	sectionList    list.Model
	homeTable      table.Model
	commandInput   textinput.Model
	tasbihProgress progress.Model
	overallBar     progress.Model
	helpModel      help.Model
	detailViewport viewport.Model
}

type listItem struct {
	title       string
	description string
}

func (i listItem) FilterValue() string { return i.title + " " + i.description }
func (i listItem) Title() string       { return i.title }
func (i listItem) Description() string { return i.description }

type SwitchViewMsg struct {
	View View
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

type ReminderDueMsg struct {
	Event scheduler.ReminderEvent
}

type RolloverMsg struct {
	Date clock.Date
}

// CompletionMsg carries a counter's one-shot completion signal into the
// update loop.
type CompletionMsg struct {
	Completion counter.Completion
}

func NewModel(deps Deps) Model {
	m := Model{
		CurrentView:    ViewHome,
		Cursors:        make(map[model.Section]int),
		DesktopEnabled: deps.DesktopNotifications,
		store:          deps.Store,
		aggregator:     sprogress.NewAggregator(deps.Store, deps.Catalog),
		catalog:        deps.Catalog,
		scheduler:      deps.Scheduler,
		watcher:        deps.Watcher,
		notifier:       deps.Notifier,
		metrics:        deps.Metrics,
		clock:          deps.Clock,
		logger:         deps.Logger,
		Keys: GlobalKeyMap{
			Home:    "1",
			Morning: "2",
			Evening: "3",
			Tasbih:  "4",
			Relief:  "5",
			Help:    "?",
			Quit:    "q",
		},
	}
	if m.notifier == nil {
		m.notifier = NoopDesktopNotifier{}
	}
	if m.clock == nil {
		m.clock = clock.Local{}
	}
	if m.logger == nil {
		m.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	m.initBubbleComponents()
	return m
}

func (m *Model) initBubbleComponents() {
	m.sectionList = list.New([]list.Item{}, list.NewDefaultDelegate(), 56, 14)
	m.sectionList.SetShowHelp(false)
	m.sectionList.SetShowStatusBar(false)
	m.sectionList.SetFilteringEnabled(false)

	cols := []table.Column{
		{Title: "Section", Width: 22},
		{Title: "Progress", Width: 9},
		{Title: "Done", Width: 5},
		{Title: "At", Width: 6},
	}
	m.homeTable = table.New(table.WithColumns(cols), table.WithRows([]table.Row{}), table.WithFocused(true), table.WithHeight(6))

	m.commandInput = textinput.New()
	m.commandInput.Prompt = "/"
	m.commandInput.CharLimit = 128
	m.commandInput.Width = 48
	m.commandInput.Placeholder = "tap morning ayat-al-kursi"

	m.tasbihProgress = progress.New(progress.WithDefaultGradient(), progress.WithWidth(40))
	m.overallBar = progress.New(progress.WithDefaultGradient(), progress.WithWidth(30))

	m.helpModel = help.New()
	m.detailViewport = viewport.New(54, 14)
}

func viewSection(v View) (model.Section, bool) {
	switch v {
	case ViewMorning:
		return model.SectionMorning, true
	case ViewEvening:
		return model.SectionEvening, true
	case ViewTasbih:
		return model.SectionTasbih, true
	case ViewRelief:
		return model.SectionRelief, true
	default:
		return "", false
	}
}

func sectionView(s model.Section) View {
	switch s {
	case model.SectionMorning:
		return ViewMorning
	case model.SectionEvening:
		return ViewEvening
	case model.SectionTasbih:
		return ViewTasbih
	case model.SectionRelief:
		return ViewRelief
	default:
		return ViewHome
	}
}

func isKnownView(v View) bool {
	switch v {
	case ViewHome, ViewMorning, ViewEvening, ViewTasbih, ViewRelief:
		return true
	default:
		return false
	}
}
