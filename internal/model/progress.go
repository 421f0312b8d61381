package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sandeepkv93/sakina/internal/clock"
)

const (
	// TasbihTarget is the doctrinal total across the four units of the prayer.
	TasbihTarget = 300
	// TasbihUnit is the per-unit count tracked by the interactive counter.
	TasbihUnit = 15
)

var ErrMalformedRecord = errors.New("model: malformed progress record")

type ItemProgress struct {
	Current int `json:"current"`
	Target  int `json:"target"`
}

func (p ItemProgress) Done() bool {
	return p.Current >= p.Target
}

type ItemSection struct {
	Completed   bool                    `json:"completed"`
	CompletedAt *time.Time              `json:"completedAt,omitempty"`
	Items       map[string]ItemProgress `json:"items"`
}

func EmptyItemSection() ItemSection {
	return ItemSection{Items: make(map[string]ItemProgress)}
}

// AllDone reports whether every recorded item reached its target. A section
// with no recorded items is never done.
func (s ItemSection) AllDone() bool {
	if len(s.Items) == 0 {
		return false
	}
	for _, item := range s.Items {
		if !item.Done() {
			return false
		}
	}
	return true
}

// Settle recomputes the completion flag. CompletedAt is stamped only on the
// incomplete to complete transition and cleared when the section falls back.
func (s *ItemSection) Settle(now time.Time) {
	done := s.AllDone()
	switch {
	case done && !s.Completed:
		at := now
		s.CompletedAt = &at
	case !done:
		s.CompletedAt = nil
	}
	s.Completed = done
}

func (s ItemSection) Clone() ItemSection {
	out := ItemSection{
		Completed:   s.Completed,
		CompletedAt: cloneTime(s.CompletedAt),
		Items:       make(map[string]ItemProgress, len(s.Items)),
	}
	for id, item := range s.Items {
		out.Items[id] = item
	}
	return out
}

type CounterSection struct {
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	Count       int        `json:"count"`
	Target      int        `json:"target"`
}

func EmptyCounterSection() CounterSection {
	return CounterSection{Target: TasbihTarget}
}

func (s *CounterSection) Settle(now time.Time) {
	done := s.Count >= s.Target
	switch {
	case done && !s.Completed:
		at := now
		s.CompletedAt = &at
	case !done:
		s.CompletedAt = nil
	}
	s.Completed = done
}

func (s CounterSection) Clone() CounterSection {
	out := s
	out.CompletedAt = cloneTime(s.CompletedAt)
	return out
}

type Sections struct {
	Morning ItemSection    `json:"morning"`
	Evening ItemSection    `json:"evening"`
	Tasbih  CounterSection `json:"tasbih"`
	Relief  ItemSection    `json:"relief"`
}

// ProgressRecord is the single per-day progress row. It is only valid while
// Date equals the device's local today.
type ProgressRecord struct {
	Date     clock.Date `json:"date"`
	Sections Sections   `json:"sections"`
}

func NewProgressRecord(date clock.Date) ProgressRecord {
	return ProgressRecord{
		Date: date,
		Sections: Sections{
			Morning: EmptyItemSection(),
			Evening: EmptyItemSection(),
			Tasbih:  EmptyCounterSection(),
			Relief:  EmptyItemSection(),
		},
	}
}

// ItemSection returns a pointer into the record for an item-based section.
func (r *ProgressRecord) ItemSection(s Section) (*ItemSection, error) {
	switch s {
	case SectionMorning:
		return &r.Sections.Morning, nil
	case SectionEvening:
		return &r.Sections.Evening, nil
	case SectionRelief:
		return &r.Sections.Relief, nil
	default:
		return nil, fmt.Errorf("%w: %q has no items", ErrInvalidSection, s)
	}
}

func (r *ProgressRecord) ResetSection(s Section) error {
	switch s.Kind() {
	case KindCounter:
		r.Sections.Tasbih = EmptyCounterSection()
		return nil
	case KindItems:
		sec, err := r.ItemSection(s)
		if err != nil {
			return err
		}
		*sec = EmptyItemSection()
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidSection, s)
	}
}

// IsCompleted reads the stored completion flag of any section.
func (r ProgressRecord) IsCompleted(s Section) bool {
	if s.Kind() == KindCounter {
		return r.Sections.Tasbih.Completed
	}
	sec, err := r.ItemSection(s)
	if err != nil {
		return false
	}
	return sec.Completed
}

func (r ProgressRecord) Clone() ProgressRecord {
	return ProgressRecord{
		Date: r.Date,
		Sections: Sections{
			Morning: r.Sections.Morning.Clone(),
			Evening: r.Sections.Evening.Clone(),
			Tasbih:  r.Sections.Tasbih.Clone(),
			Relief:  r.Sections.Relief.Clone(),
		},
	}
}

func (r ProgressRecord) Validate() error {
	if !r.Date.IsValid() {
		return fmt.Errorf("%w: date %q", ErrMalformedRecord, r.Date)
	}
	for _, s := range []Section{SectionMorning, SectionEvening, SectionRelief} {
		sec, _ := r.ItemSection(s)
		for id, item := range sec.Items {
			if strings.TrimSpace(id) == "" {
				return fmt.Errorf("%w: %s has an empty item id", ErrMalformedRecord, s)
			}
			if item.Target < 1 || item.Current < 0 || item.Current > item.Target {
				return fmt.Errorf("%w: %s/%s has %d/%d", ErrMalformedRecord, s, id, item.Current, item.Target)
			}
		}
	}
	if r.Sections.Tasbih.Target < 1 || r.Sections.Tasbih.Count < 0 {
		return fmt.Errorf("%w: tasbih has %d/%d", ErrMalformedRecord, r.Sections.Tasbih.Count, r.Sections.Tasbih.Target)
	}
	return nil
}

func (r ProgressRecord) Marshal() ([]byte, error) {
	return json.Marshal(r)
}

// UnmarshalRecord decodes and validates a persisted record. Completion flags
// are re-derived from the counters so a hand-edited blob cannot disagree
// with them.
func UnmarshalRecord(raw []byte) (ProgressRecord, error) {
	var rec ProgressRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return ProgressRecord{}, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	if err := rec.Validate(); err != nil {
		return ProgressRecord{}, err
	}
	for _, s := range []Section{SectionMorning, SectionEvening, SectionRelief} {
		sec, _ := rec.ItemSection(s)
		if sec.Items == nil {
			sec.Items = make(map[string]ItemProgress)
		}
		normalizeCompletion(&sec.Completed, &sec.CompletedAt, sec.AllDone())
	}
	tasbih := &rec.Sections.Tasbih
	normalizeCompletion(&tasbih.Completed, &tasbih.CompletedAt, tasbih.Count >= tasbih.Target)
	return rec, nil
}

func normalizeCompletion(completed *bool, at **time.Time, done bool) {
	*completed = done
	if !done {
		*at = nil
	}
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
