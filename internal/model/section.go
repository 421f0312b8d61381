package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidSection = errors.New("model: invalid section")

type Section string

const (
	SectionMorning Section = "morning"
	SectionEvening Section = "evening"
	SectionTasbih  Section = "tasbih"
	SectionRelief  Section = "relief"
)

// SectionKind tells item-based sections apart from the fixed counter.
type SectionKind int

const (
	KindItems SectionKind = iota + 1
	KindCounter
)

func AllSections() []Section {
	return []Section{SectionMorning, SectionEvening, SectionTasbih, SectionRelief}
}

func (s Section) IsValid() bool {
	switch s {
	case SectionMorning, SectionEvening, SectionTasbih, SectionRelief:
		return true
	default:
		return false
	}
}

func (s Section) Kind() SectionKind {
	switch s {
	case SectionTasbih:
		return KindCounter
	case SectionMorning, SectionEvening, SectionRelief:
		return KindItems
	default:
		return 0
	}
}

func (s Section) Title() string {
	switch s {
	case SectionMorning:
		return "Morning remembrance"
	case SectionEvening:
		return "Evening remembrance"
	case SectionTasbih:
		return "Tasbih prayer"
	case SectionRelief:
		return "Keys to relief"
	default:
		return string(s)
	}
}

func ParseSection(raw string) (Section, error) {
	s := Section(strings.ToLower(strings.TrimSpace(raw)))
	if !s.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidSection, raw)
	}
	return s, nil
}

// SuggestedSection picks the remembrance that fits the local hour:
// morning from 05:00 to noon, evening from 15:00 to 21:00.
func SuggestedSection(now time.Time) (Section, bool) {
	hour := now.Hour()
	switch {
	case hour >= 5 && hour < 12:
		return SectionMorning, true
	case hour >= 15 && hour < 21:
		return SectionEvening, true
	default:
		return "", false
	}
}
