package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidReminderTime = errors.New("model: invalid reminder time")

// ReminderSchedule is a once-a-day local reminder for one section.
type ReminderSchedule struct {
	Section Section
	At      string // HH:MM, local time
	Title   string
	Body    string
	Enabled bool
}

func DefaultReminderSchedules() []ReminderSchedule {
	return []ReminderSchedule{
		{Section: SectionMorning, At: "06:00", Title: "Morning remembrance", Body: "Time for the morning remembrance", Enabled: true},
		{Section: SectionEvening, At: "17:00", Title: "Evening remembrance", Body: "Time for the evening remembrance", Enabled: true},
		{Section: SectionTasbih, Title: "Tasbih prayer", Body: "A reminder for the tasbih prayer"},
		{Section: SectionRelief, Title: "Keys to relief", Body: "A reminder for the supplications of relief"},
	}
}

func (r ReminderSchedule) Validate() error {
	if !r.Section.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidSection, r.Section)
	}
	if !r.Enabled {
		return nil
	}
	if _, _, err := ParseClockTime(r.At); err != nil {
		return err
	}
	return nil
}

// NextOccurrence returns today's HH:MM in now's location, or tomorrow's when
// that moment is not strictly in the future.
func (r ReminderSchedule) NextOccurrence(now time.Time) (time.Time, error) {
	hour, minute, err := ParseClockTime(r.At)
	if err != nil {
		return time.Time{}, err
	}
	y, mo, d := now.Date()
	next := time.Date(y, mo, d, hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = time.Date(y, mo, d+1, hour, minute, 0, 0, now.Location())
	}
	return next, nil
}

func ParseClockTime(raw string) (int, int, error) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidReminderTime, raw)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidReminderTime, raw)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidReminderTime, raw)
	}
	return hour, minute, nil
}
