package update

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/sakina/internal/model"
	"github.com/sandeepkv93/sakina/internal/views"
)

func (m Model) Init() tea.Cmd {
	var cmds []tea.Cmd
	if m.scheduler != nil {
		cmds = append(cmds, waitForReminderCmd(m.scheduler.C()))
	}
	if m.watcher != nil {
		cmds = append(cmds, waitForRolloverCmd(m.watcher.C()))
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		if m.Palette.Active {
			return m.handlePaletteKey(typed)
		}

		keyStr := typed.String()
		if m.ConfirmResetAll {
			if keyStr == "y" {
				return m.resetAll(), nil
			}
			m.ConfirmResetAll = false
			m.Status = StatusBar{Text: "reset cancelled"}
			return m, nil
		}

		switch keyStr {
		case "/":
			m.openPalette()
			return m, nil
		case m.Keys.Home:
			m.CurrentView = ViewHome
			return m, nil
		case m.Keys.Morning:
			m.CurrentView = ViewMorning
			return m, nil
		case m.Keys.Evening:
			m.CurrentView = ViewEvening
			return m, nil
		case m.Keys.Tasbih:
			m.CurrentView = ViewTasbih
			return m, nil
		case m.Keys.Relief:
			m.CurrentView = ViewRelief
			return m, nil
		case m.Keys.Help:
			m.HelpVisible = !m.HelpVisible
			if m.HelpVisible {
				m.Status = StatusBar{Text: "help shown", IsError: false}
			} else {
				m.Status = StatusBar{Text: "help hidden", IsError: false}
			}
			return m, nil
		case "X":
			m.ConfirmResetAll = true
			m.Status = StatusBar{Text: "reset all of today's progress? press y to confirm"}
			return m, nil
		case "ctrl+c", m.Keys.Quit:
			m.Quitting = true
			return m, tea.Quit
		}
		if m.CurrentView == ViewHome {
			return m.handleHomeKey(typed), nil
		}
		return m.handleSectionKey(typed)
	case SwitchViewMsg:
		if isKnownView(typed.View) {
			m.CurrentView = typed.View
		}
		return m, nil
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		m.notify("Status", typed.Text, levelFromError(typed.IsError))
		return m, nil
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	case AppErrorMsg:
		m.LastError = typed.Err
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
			m.notify("Error", typed.Err.Error(), "error")
		}
		return m, nil
	case CompletionMsg:
		done := typed.Completion
		m.LastCompletion = &done
		if m.aggregator.IsSectionComplete(done.Section) || done.Section == model.SectionTasbih {
			m.notify(done.Section.Title(), fmt.Sprintf("%s complete for today", done.Section.Title()), "info")
		}
		return m, nil
	case ReminderDueMsg:
		m.applyReminder(typed.Event)
		if m.scheduler != nil {
			return m, waitForReminderCmd(m.scheduler.C())
		}
		return m, nil
	case RolloverMsg:
		m.applyRollover(typed.Date)
		if m.watcher != nil {
			return m, waitForRolloverCmd(m.watcher.C())
		}
		return m, nil
	}

	return m, nil
}

func (m Model) handleHomeKey(msg tea.KeyMsg) Model {
	sections := model.AllSections()
	switch msg.String() {
	case "j", "down":
		m.HomeCursor = min(m.HomeCursor+1, len(sections)-1)
	case "k", "up":
		m.HomeCursor = max(m.HomeCursor-1, 0)
	case "enter", " ":
		m.CurrentView = sectionView(sections[m.HomeCursor])
	}
	return m
}

func (m Model) handleSectionKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	section, ok := viewSection(m.CurrentView)
	if !ok {
		return m, nil
	}
	switch msg.String() {
	case "j", "down":
		m.moveCursor(section, 1)
	case "k", "up":
		m.moveCursor(section, -1)
	case " ", "enter":
		return m.tapSelected()
	case "r":
		return m.resetSelected(), nil
	case "R":
		return m.resetSection(section), nil
	}
	return m, nil
}

func (m Model) View() string {
	status := ""
	if m.Status.Text != "" {
		if m.Status.IsError {
			status = fmt.Sprintf("status: error: %s", m.Status.Text)
		} else {
			status = fmt.Sprintf("status: %s", m.Status.Text)
		}
	}

	leftPane := ""
	rightPane := ""
	switch m.CurrentView {
	case ViewHome:
		leftPane = m.renderHomeView()
	case ViewMorning, ViewEvening, ViewRelief:
		section, _ := viewSection(m.CurrentView)
		leftPane = m.renderSectionView(section)
		rightPane = m.renderItemDetail(section)
	case ViewTasbih:
		leftPane = m.renderTasbihView()
	}
	rightPane += views.RenderCommandPalette(m.Palette.Active, m.commandInput.View()) + m.renderHelpIfVisible()

	warning := ""
	if !m.store.PersistenceHealthy() {
		warning = "progress could not be saved and may not survive a restart"
	}

	notification := ""
	if len(m.Notifications) > 0 {
		last := m.Notifications[len(m.Notifications)-1]
		notification = views.RenderNotification(last.Level, last.Body)
	}

	return views.RenderApp(views.AppData{
		Header:       fmt.Sprintf("sakina | %s | %s", m.clock.Today(), m.CurrentView),
		LeftPane:     leftPane,
		RightPane:    rightPane,
		StatusLine:   status,
		StatusError:  m.Status.IsError,
		Warning:      warning,
		Notification: notification,
		Footer:       fmt.Sprintf("keys: %s home | %s morning | %s evening | %s tasbih | %s relief | / cmd | %s help | %s quit", m.Keys.Home, m.Keys.Morning, m.Keys.Evening, m.Keys.Tasbih, m.Keys.Relief, m.Keys.Help, m.Keys.Quit),
	})
}

func (m Model) renderHomeView() string {
	rec := m.store.Load()
	rows := make([]table.Row, 0, 4)
	for _, s := range model.AllSections() {
		done := ""
		at := ""
		if rec.IsCompleted(s) {
			done = "yes"
			at = completedAt(rec, s)
		}
		rows = append(rows, table.Row{s.Title(), fmt.Sprintf("%d%%", m.aggregator.SectionPercentage(s)), done, at})
	}
	tbl := m.homeTable
	tbl.SetRows(rows)
	tbl.SetCursor(m.HomeCursor)

	overall := m.aggregator.OverallPercentage()
	data := views.HomePanelData{
		Date:       string(rec.Date),
		TableView:  tbl.View(),
		Overall:    overall,
		OverallBar: m.overallBar.ViewAs(float64(overall) / 100),
	}
	if s, ok := model.SuggestedSection(m.clock.Now()); ok {
		data.Suggested = s.Title()
		data.SuggestedKey = m.viewKey(sectionView(s))
	}
	return views.RenderHomePanel(data)
}

func completedAt(rec model.ProgressRecord, s model.Section) string {
	if s == model.SectionTasbih {
		if at := rec.Sections.Tasbih.CompletedAt; at != nil {
			return at.Format("15:04")
		}
		return ""
	}
	sec, err := rec.ItemSection(s)
	if err != nil || sec.CompletedAt == nil {
		return ""
	}
	return sec.CompletedAt.Format("15:04")
}

func (m Model) viewKey(v View) string {
	switch v {
	case ViewMorning:
		return m.Keys.Morning
	case ViewEvening:
		return m.Keys.Evening
	case ViewTasbih:
		return m.Keys.Tasbih
	case ViewRelief:
		return m.Keys.Relief
	default:
		return m.Keys.Home
	}
}

func (m Model) renderSectionView(section model.Section) string {
	items := m.orderedItems(section)
	listItems := make([]list.Item, 0, len(items))
	data := make([]views.ItemData, 0, len(items))
	for _, item := range items {
		desc := fmt.Sprintf("%d/%d", item.Current, item.Target)
		if item.Done() {
			desc += " done"
		}
		listItems = append(listItems, listItem{title: item.Title, description: desc})
		data = append(data, views.ItemData{ID: item.ID, Title: item.Title, Current: item.Current, Target: item.Target, Completed: item.Done()})
	}

	selectedID := ""
	l := m.sectionList
	l.Title = section.Title()
	l.SetItems(listItems)
	if len(items) > 0 {
		cursor := min(max(m.Cursors[section], 0), len(items)-1)
		l.Select(cursor)
		selectedID = items[cursor].ID
	}

	return views.RenderSectionPanel(views.SectionPanelData{
		Title:      section.Title(),
		Percentage: m.aggregator.SectionPercentage(section),
		Completed:  m.aggregator.IsSectionComplete(section),
		ListView:   l.View(),
		Items:      data,
		SelectedID: selectedID,
	})
}

func (m Model) renderItemDetail(section model.Section) string {
	item, ok := m.selectedItem(section)
	if !ok {
		return "detail:\n(no item selected)"
	}
	vp := m.detailViewport
	vp.SetContent(views.RenderMarkdown(views.ItemMarkdown(views.ItemDetailData{
		Title:     item.Title,
		Text:      item.Text,
		Reference: item.Reference,
		Current:   item.Current,
		Target:    item.Target,
	})))
	return strings.TrimSpace(vp.View())
}

func (m Model) renderTasbihView() string {
	c := m.tasbihCounter(&completionCollector{})
	state := c.State()
	pct := c.Percentage()
	total := m.store.TasbihProgress()
	return views.RenderTasbihPanel(views.TasbihPanelData{
		Count:        state.Current,
		Unit:         state.Target,
		Percentage:   pct,
		ProgressView: m.tasbihProgress.ViewAs(float64(pct) / 100),
		Completed:    state.Complete,
		Total:        total.Count,
		TotalTarget:  total.Target,
	})
}
