package update

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/sakina/internal/commands"
	"github.com/sandeepkv93/sakina/internal/counter"
	"github.com/sandeepkv93/sakina/internal/model"
)

func (m Model) handlePaletteKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closePalette()
		m.Status = StatusBar{Text: "command palette closed", IsError: false}
	case "enter":
		m.Palette.Input = m.commandInput.Value()
		return m.executePaletteCommand()
	default:
		if msg.Type == tea.KeyRunes {
			m.commandInput.SetValue(m.commandInput.Value() + string(msg.Runes))
			m.Palette.Input = m.commandInput.Value()
			return m, nil
		}
		var cmd tea.Cmd
		m.commandInput, cmd = m.commandInput.Update(msg)
		_ = cmd
		m.Palette.Input = m.commandInput.Value()
	}
	return m, nil
}

func (m *Model) openPalette() {
	m.Palette.Active = true
	m.Palette.Input = ""
	m.commandInput.SetValue("")
	m.commandInput.Focus()
	m.Status = StatusBar{Text: "command palette active", IsError: false}
}

func (m *Model) closePalette() {
	m.Palette.Active = false
	m.Palette.Input = ""
	m.commandInput.SetValue("")
	m.commandInput.Blur()
}

func (m Model) executePaletteCommand() (Model, tea.Cmd) {
	raw := strings.TrimSpace(m.Palette.Input)
	m.closePalette()

	cmd, err := commands.Parse(raw)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}

	collector := &completionCollector{}
	res, err := commands.Execute(cmd, commands.Handlers{
		Tap: func(a commands.TapArgs) (commands.Result, error) {
			var c *counter.Counter
			label := "tasbih"
			if a.Section.Kind() == model.KindCounter {
				c = m.tasbihCounter(collector)
			} else {
				item, ok := m.lookupItem(a.Section, a.ItemID)
				if !ok {
					return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: fmt.Sprintf("no %s item %q", a.Section, a.ItemID)}
				}
				c = m.itemCounter(a.Section, item.Item, collector)
				label = item.Title
			}
			out, err := c.Tap()
			if err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: tapStatus(label, out).Text}, nil
		},
		Reset: func(a commands.ResetArgs) (commands.Result, error) {
			if a.All {
				m = m.resetAll()
				return commands.Result{Message: m.Status.Text}, nil
			}
			if err := m.store.ResetSection(a.Section); err != nil {
				return commands.Result{}, err
			}
			m.Cursors[a.Section] = 0
			return commands.Result{Message: fmt.Sprintf("%s reset", a.Section.Title())}, nil
		},
		Show: func(a commands.ShowArgs) (commands.Result, error) {
			m.CurrentView = sectionView(a.Section)
			return commands.Result{Message: fmt.Sprintf("showing %s", strings.ToLower(string(m.CurrentView)))}, nil
		},
		Progress: func(commands.ProgressArgs) (commands.Result, error) {
			return commands.Result{Message: m.progressSummary()}, nil
		},
	})
	if err != nil {
		m.logger.Warn("command failed", "command", raw, "error", err)
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		m.notify("Command Failed", err.Error(), "error")
		return m, nil
	}
	m.Status = StatusBar{Text: res.Message, IsError: false}
	return m, collector.cmd()
}

func (m Model) lookupItem(section model.Section, id string) (sectionItem, bool) {
	for _, item := range m.orderedItems(section) {
		if item.ID == id {
			return item, true
		}
	}
	return sectionItem{}, false
}

func (m Model) progressSummary() string {
	parts := []string{fmt.Sprintf("overall %d%%", m.aggregator.OverallPercentage())}
	for _, s := range model.AllSections() {
		parts = append(parts, fmt.Sprintf("%s %d%%", s, m.aggregator.SectionPercentage(s)))
	}
	return strings.Join(parts, " | ")
}
