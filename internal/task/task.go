// Package task defines the to-do entity and the rules used to present it.
package task

import (
	"fmt"
	"strings"
	"time"
)

// Priority orders tasks in the list. Lower rank sorts first.
type Priority int

const (
	High Priority = iota
	Medium
	Low
)

// Priorities lists every variant in rank order.
var Priorities = []Priority{High, Medium, Low}

type Task struct {
	ID        string
	Title     string
	DueDate   time.Time
	Priority  Priority
	CreatedAt time.Time
	Completed bool
	Selected  bool
}

// Rank is the sort key: HIGH=0, MEDIUM=1, LOW=2.
func (p Priority) Rank() int {
	switch p {
	case High:
		return 0
	case Medium:
		return 1
	case Low:
		return 2
	default:
		return len(Priorities)
	}
}

func (p Priority) String() string {
	switch p {
	case High:
		return "HIGH"
	case Medium:
		return "MEDIUM"
	case Low:
		return "LOW"
	default:
		return fmt.Sprintf("Priority(%d)", int(p))
	}
}

// Next returns the next more urgent priority, stopping at High.
func (p Priority) Next() Priority {
	if p == Low {
		return Medium
	}
	return High
}

// Prev returns the next less urgent priority, stopping at Low.
func (p Priority) Prev() Priority {
	if p == High {
		return Medium
	}
	return Low
}

func (p Priority) MarshalText() ([]byte, error) {
	if p.Rank() >= len(Priorities) {
		return nil, fmt.Errorf("invalid priority %d", int(p))
	}
	return []byte(p.String()), nil
}

func (p *Priority) UnmarshalText(b []byte) error {
	v, err := ParsePriority(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// ParsePriority accepts HIGH/MEDIUM/LOW in any case and the h/m/l short forms.
func ParsePriority(s string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high", "h":
		return High, nil
	case "medium", "med", "m":
		return Medium, nil
	case "low", "l":
		return Low, nil
	}
	return Medium, fmt.Errorf("unknown priority %q", s)
}

// NormalizeDue returns the canonical stored form of a due date.
func NormalizeDue(t time.Time) time.Time {
	return t.UTC()
}
