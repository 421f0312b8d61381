package update

import (
	"fmt"
	"sort"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/sakina/internal/catalog"
	"github.com/sandeepkv93/sakina/internal/counter"
	"github.com/sandeepkv93/sakina/internal/model"
)

// sectionItem is a catalog entry joined with today's counter.
type sectionItem struct {
	catalog.Item
	Current int
	Target  int
}

func (s sectionItem) Done() bool {
	return s.Current >= s.Target
}

// orderedItems lists a section's catalog items with completed ones moved
// after the rest, keeping catalog order within each group.
func (m Model) orderedItems(section model.Section) []sectionItem {
	if m.catalog == nil {
		return nil
	}
	rec := m.store.Load()
	sec, err := rec.ItemSection(section)
	if err != nil {
		return nil
	}
	items := m.catalog.Items(section)
	out := make([]sectionItem, 0, len(items))
	for _, item := range items {
		si := sectionItem{Item: item, Target: max(item.Count, 1)}
		if p, ok := sec.Items[item.ID]; ok {
			si.Current = p.Current
			si.Target = p.Target
		}
		out = append(out, si)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return !out[i].Done() && out[j].Done()
	})
	return out
}

func (m Model) selectedItem(section model.Section) (sectionItem, bool) {
	items := m.orderedItems(section)
	if len(items) == 0 {
		return sectionItem{}, false
	}
	cursor := min(max(m.Cursors[section], 0), len(items)-1)
	return items[cursor], true
}

func (m *Model) moveCursor(section model.Section, delta int) {
	n := len(m.orderedItems(section))
	if n == 0 {
		m.Cursors[section] = 0
		return
	}
	next := m.Cursors[section] + delta
	m.Cursors[section] = min(max(next, 0), n-1)
}

// completionCollector buffers counter signals raised during one update so
// they can be replayed as messages.
type completionCollector struct {
	fired []counter.Completion
}

func (c *completionCollector) signal(done counter.Completion) {
	c.fired = append(c.fired, done)
}

func (c *completionCollector) cmd() tea.Cmd {
	if len(c.fired) == 0 {
		return nil
	}
	cmds := make([]tea.Cmd, 0, len(c.fired))
	for _, done := range c.fired {
		cmds = append(cmds, func() tea.Msg { return CompletionMsg{Completion: done} })
	}
	return tea.Batch(cmds...)
}

func (m Model) itemCounter(section model.Section, item catalog.Item, c *completionCollector) *counter.Counter {
	return counter.NewItemCounter(m.store, section, item, c.signal, counter.WithMetrics(m.metrics))
}

func (m Model) tasbihCounter(c *completionCollector) *counter.Counter {
	return counter.NewTasbihCounter(m.store, c.signal, counter.WithMetrics(m.metrics))
}

func (m Model) tapSelected() (Model, tea.Cmd) {
	section, ok := viewSection(m.CurrentView)
	if !ok {
		return m, nil
	}
	collector := &completionCollector{}
	var (
		c     *counter.Counter
		label string
	)
	if section.Kind() == model.KindCounter {
		c = m.tasbihCounter(collector)
		label = "tasbih"
	} else {
		item, found := m.selectedItem(section)
		if !found {
			m.Status = StatusBar{Text: "nothing to tap in this section", IsError: true}
			return m, nil
		}
		c = m.itemCounter(section, item.Item, collector)
		label = item.Title
	}

	res, err := c.Tap()
	if err != nil {
		m.logger.Error("tap failed", "section", section, "error", err)
		m.LastError = err
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}
	m.Status = tapStatus(label, res)
	return m, collector.cmd()
}

func tapStatus(label string, res counter.Result) StatusBar {
	switch res.Outcome {
	case counter.AlreadyComplete:
		return StatusBar{Text: fmt.Sprintf("%s already complete (%d/%d)", label, res.Current, res.Target)}
	case counter.Completed:
		return StatusBar{Text: fmt.Sprintf("%s complete (%d/%d)", label, res.Current, res.Target)}
	default:
		return StatusBar{Text: fmt.Sprintf("%s %d/%d", label, res.Current, res.Target)}
	}
}

func (m Model) resetSelected() Model {
	section, ok := viewSection(m.CurrentView)
	if !ok {
		return m
	}
	if section.Kind() == model.KindCounter {
		if err := m.tasbihCounter(&completionCollector{}).Reset(); err != nil {
			m.Status = StatusBar{Text: err.Error(), IsError: true}
			return m
		}
		m.Status = StatusBar{Text: "tasbih counter reset"}
		return m
	}
	item, found := m.selectedItem(section)
	if !found {
		return m
	}
	if err := m.itemCounter(section, item.Item, &completionCollector{}).Reset(); err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m
	}
	m.Status = StatusBar{Text: fmt.Sprintf("%s reset", item.Title)}
	return m
}

func (m Model) resetSection(section model.Section) Model {
	if err := m.store.ResetSection(section); err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m
	}
	m.Cursors[section] = 0
	m.Status = StatusBar{Text: fmt.Sprintf("%s reset", section.Title())}
	return m
}

func (m Model) resetAll() Model {
	m.store.ResetAll()
	m.Cursors = make(map[model.Section]int)
	m.ConfirmResetAll = false
	m.Status = StatusBar{Text: "all progress for today reset"}
	return m
}
