package scheduler

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sandeepkv93/sakina/internal/model"
)

// NextReminder builds the next occurrence of a daily reminder after now.
func NextReminder(rs model.ReminderSchedule, now time.Time) (ReminderEvent, error) {
	at, err := rs.NextOccurrence(now)
	if err != nil {
		return ReminderEvent{}, err
	}
	return ReminderEvent{
		ID:        uuid.NewString(),
		Section:   rs.Section,
		Title:     rs.Title,
		Body:      rs.Body,
		At:        rs.At,
		TriggerAt: at,
	}, nil
}

// Rearm queues the following day's occurrence of a fired reminder.
func (e *Engine) Rearm(ev ReminderEvent) (ReminderEvent, error) {
	rs := model.ReminderSchedule{Section: ev.Section, At: ev.At, Title: ev.Title, Body: ev.Body, Enabled: true}
	next, err := NextReminder(rs, ev.TriggerAt)
	if err != nil {
		return ReminderEvent{}, err
	}
	if err := e.Schedule(next); err != nil {
		return ReminderEvent{}, err
	}
	return next, nil
}

// ScheduleDaily queues the next occurrence of every enabled schedule,
// replacing whatever was pending for its section. Invalid schedules are
// skipped and reported together.
func (e *Engine) ScheduleDaily(schedules []model.ReminderSchedule, now time.Time) ([]ReminderEvent, error) {
	var (
		queued []ReminderEvent
		errs   []error
	)
	for _, rs := range schedules {
		if err := rs.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("%s reminder: %w", rs.Section, err))
			continue
		}
		e.Cancel(rs.Section)
		if !rs.Enabled {
			continue
		}
		ev, err := NextReminder(rs, now)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s reminder: %w", rs.Section, err))
			continue
		}
		if err := e.Schedule(ev); err != nil {
			errs = append(errs, err)
			continue
		}
		queued = append(queued, ev)
	}
	return queued, errors.Join(errs...)
}
