// Package todolist holds the ordered task collection and the operations
// that change it.
//
// Reduce is a pure function from (state, action) to a new state; Store wraps
// it with ID generation, a clock, and change observers.
package todolist

import (
	"slices"
	"time"

	"todo/internal/task"
)

type State struct {
	Tasks []task.Task
}

// Action is one store mutation.
type Action interface {
	Kind() string
	// Targets lists the task IDs the action addresses.
	Targets() []string
}

type Add struct {
	ID        string
	Title     string
	DueDate   time.Time
	Priority  task.Priority
	CreatedAt time.Time
}

type Update struct {
	Task task.Task
}

type Delete struct {
	ID string
}

type ToggleSelected struct {
	ID string
}

type ResetSelected struct{}

type MarkComplete struct {
	IDs []string
}

type MarkIncomplete struct {
	IDs []string
}

type ToggleComplete struct {
	ID string
}

func (Add) Kind() string            { return "add" }
func (Update) Kind() string         { return "update" }
func (Delete) Kind() string         { return "delete" }
func (ToggleSelected) Kind() string { return "toggle-selected" }
func (ResetSelected) Kind() string  { return "reset-selected" }
func (MarkComplete) Kind() string   { return "mark-complete" }
func (MarkIncomplete) Kind() string { return "mark-incomplete" }
func (ToggleComplete) Kind() string { return "toggle-complete" }

func (a Add) Targets() []string            { return []string{a.ID} }
func (a Update) Targets() []string         { return []string{a.Task.ID} }
func (a Delete) Targets() []string         { return []string{a.ID} }
func (a ToggleSelected) Targets() []string { return []string{a.ID} }
func (ResetSelected) Targets() []string    { return nil }
func (a MarkComplete) Targets() []string   { return a.IDs }
func (a MarkIncomplete) Targets() []string { return a.IDs }
func (a ToggleComplete) Targets() []string { return []string{a.ID} }

// Reduce applies a to s and returns the resulting state. s.Tasks is never
// modified in place.
func Reduce(s State, a Action) State {
	tasks := slices.Clone(s.Tasks)

	switch a := a.(type) {
	case Add:
		tasks = append(tasks, task.Task{
			ID:        a.ID,
			Title:     a.Title,
			DueDate:   task.NormalizeDue(a.DueDate),
			Priority:  a.Priority,
			CreatedAt: a.CreatedAt,
		})
	case Update:
		if i := indexOf(tasks, a.Task.ID); i >= 0 {
			t := a.Task
			t.DueDate = task.NormalizeDue(t.DueDate)
			tasks[i] = t
		}
	case Delete:
		tasks = slices.DeleteFunc(tasks, func(t task.Task) bool { return t.ID == a.ID })
	case ToggleSelected:
		if i := indexOf(tasks, a.ID); i >= 0 {
			tasks[i].Selected = !tasks[i].Selected
		}
	case ResetSelected:
		for i := range tasks {
			tasks[i].Selected = false
		}
	case MarkComplete:
		setCompleted(tasks, a.IDs, true)
	case MarkIncomplete:
		setCompleted(tasks, a.IDs, false)
	case ToggleComplete:
		if i := indexOf(tasks, a.ID); i >= 0 {
			tasks[i].Completed = !tasks[i].Completed
		}
	}

	return normalize(State{Tasks: tasks})
}

// normalize restores the collection order: priority rank, then insertion
// order. The sort must stay stable.
func normalize(s State) State {
	slices.SortStableFunc(s.Tasks, func(a, b task.Task) int {
		return a.Priority.Rank() - b.Priority.Rank()
	})
	return s
}

func setCompleted(tasks []task.Task, ids []string, done bool) {
	for _, id := range ids {
		if i := indexOf(tasks, id); i >= 0 {
			tasks[i].Completed = done
		}
	}
}

func indexOf(tasks []task.Task, id string) int {
	return slices.IndexFunc(tasks, func(t task.Task) bool { return t.ID == id })
}
