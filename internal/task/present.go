package task

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
)

const (
	CompletedColor = lipgloss.Color("#007AFF")
	CompletedLabel = "Done"
)

func PriorityColor(p Priority) lipgloss.Color {
	switch p {
	case High:
		return lipgloss.Color("#4CAF50")
	case Medium:
		return lipgloss.Color("#FFA000")
	case Low:
		return lipgloss.Color("#757575")
	}
	return lipgloss.Color("")
}

// PriorityLabel is the long form shown next to a task.
func PriorityLabel(p Priority) string {
	switch p {
	case High:
		return "High priority"
	case Medium:
		return "Medium priority"
	case Low:
		return "Low priority"
	}
	return ""
}

// PriorityShortLabel is the form used on selectors and buttons.
func PriorityShortLabel(p Priority) string {
	switch p {
	case High:
		return "High"
	case Medium:
		return "Medium"
	case Low:
		return "Low"
	}
	return ""
}

// DueDateLabel describes due relative to now in whole calendar days.
func DueDateLabel(due, now time.Time) string {
	days := CalendarDaysBetween(now, due)
	switch {
	case days < 0:
		return "overdue"
	case days == 0:
		return "today"
	case days == 1:
		return "tomorrow"
	default:
		return fmt.Sprintf("in %d days", days)
	}
}

// CalendarDaysBetween counts midnights from from's date to to's date, both
// read in from's location. Time of day is ignored. The difference is taken
// in Unix seconds so dates beyond the range of time.Duration stay exact.
func CalendarDaysBetween(from, to time.Time) int {
	loc := from.Location()
	to = to.In(loc)
	a := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int((b.Unix() - a.Unix()) / 86400)
}
