package clock

import (
	"errors"
	"sync"
	"time"
)

const DateLayout = "2006-01-02"

var ErrInvalidDate = errors.New("clock: invalid date")

// Date is a local calendar date in YYYY-MM-DD form.
type Date string

func DateOf(t time.Time) Date {
	return Date(t.Format(DateLayout))
}

func ParseDate(raw string) (Date, error) {
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return "", ErrInvalidDate
	}
	return DateOf(t), nil
}

func (d Date) IsValid() bool {
	_, err := time.Parse(DateLayout, string(d))
	return err == nil
}

func (d Date) String() string { return string(d) }

// Clock supplies the device's notion of now. Today is derived from the
// clock's local time, never a UTC-shifted one.
type Clock interface {
	Now() time.Time
	Today() Date
}

type Local struct{}

func (Local) Now() time.Time { return time.Now() }

func (Local) Today() Date { return DateOf(time.Now()) }

// Fixed is a settable clock for tests and replays.
type Fixed struct {
	mu  sync.Mutex
	now time.Time
}

func NewFixed(now time.Time) *Fixed {
	return &Fixed{now: now}
}

func (f *Fixed) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *Fixed) Today() Date {
	return DateOf(f.Now())
}

func (f *Fixed) Set(now time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = now
}

func (f *Fixed) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}
