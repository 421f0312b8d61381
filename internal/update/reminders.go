package update

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/sakina/internal/clock"
	"github.com/sandeepkv93/sakina/internal/model"
	"github.com/sandeepkv93/sakina/internal/progress"
	"github.com/sandeepkv93/sakina/internal/scheduler"
)

func waitForReminderCmd(ch <-chan scheduler.ReminderEvent) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return ReminderDueMsg{Event: ev}
	}
}

func waitForRolloverCmd(ch <-chan progress.RolloverEvent) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return RolloverMsg{Date: ev.Date}
	}
}

// applyReminder surfaces a due reminder unless its section is already
// complete today, then queues tomorrow's occurrence.
func (m *Model) applyReminder(ev scheduler.ReminderEvent) {
	m.ReminderLog = append(m.ReminderLog, ev)
	if len(m.ReminderLog) > 20 {
		m.ReminderLog = m.ReminderLog[len(m.ReminderLog)-20:]
	}

	if m.store.Load().IsCompleted(ev.Section) {
		m.logger.Info("reminder suppressed", "section", ev.Section, "id", ev.ID)
		m.Status = StatusBar{Text: fmt.Sprintf("%s already complete, reminder skipped", ev.Section.Title())}
	} else {
		m.logger.Info("reminder due", "section", ev.Section, "id", ev.ID)
		m.Status = StatusBar{Text: fmt.Sprintf("reminder: %s", ev.Body)}
		m.notify(ev.Title, ev.Body, "info")
	}

	if m.scheduler == nil || ev.At == "" {
		return
	}
	next, err := m.scheduler.Rearm(ev)
	if err != nil {
		m.logger.Warn("reminder rearm failed", "section", ev.Section, "error", err)
		m.Status = StatusBar{Text: fmt.Sprintf("reminder reschedule failed: %v", err), IsError: true}
		return
	}
	m.logger.Debug("reminder rearmed", "section", next.Section, "at", next.TriggerAt)
}

func (m *Model) applyRollover(date clock.Date) {
	m.Cursors = make(map[model.Section]int)
	m.ConfirmResetAll = false
	m.LastCompletion = nil
	m.Status = StatusBar{Text: fmt.Sprintf("new day %s, progress reset", date)}
	m.notify("New day", m.Status.Text, "info")
}

func (m *Model) notify(title, body, level string) {
	if strings.TrimSpace(body) == "" {
		return
	}
	n := Notification{
		Title: title,
		Body:  body,
		Level: level,
		At:    m.clock.Now(),
	}
	m.Notifications = append(m.Notifications, n)
	if len(m.Notifications) > 40 {
		m.Notifications = m.Notifications[len(m.Notifications)-40:]
	}
	if m.DesktopEnabled && m.notifier != nil {
		if err := m.notifier.Send(n); err != nil {
			m.logger.Warn("desktop notification failed", "error", err)
		}
	}
}
