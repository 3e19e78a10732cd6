package todolist

import (
	"slices"
	"time"

	"github.com/google/uuid"

	"todo/internal/task"
)

// Change is passed to observers after every dispatch.
type Change struct {
	Action Action
	Before State
	After  State
}

type Option func(*Store)

// WithClock replaces time.Now as the source of CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDs replaces the UUID generator used by Add.
func WithIDs(next func() string) Option {
	return func(s *Store) { s.newID = next }
}

// Store is the single source of truth for the task list. It is not safe for
// concurrent use; the UI loop is its only caller.
type Store struct {
	state     State
	now       func() time.Time
	newID     func() string
	observers []func(Change)
}

func New(opts ...Option) *Store {
	s := &Store{
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Observe registers fn to run after every dispatched action.
func (s *Store) Observe(fn func(Change)) {
	s.observers = append(s.observers, fn)
}

func (s *Store) Dispatch(a Action) {
	before := s.state
	s.state = Reduce(before, a)
	for _, fn := range s.observers {
		fn(Change{Action: a, Before: before, After: s.state})
	}
}

// Add creates a task. Callers must pass a non-blank title and a due date.
func (s *Store) Add(title string, due time.Time, p task.Priority) task.Task {
	a := Add{
		ID:        s.newID(),
		Title:     title,
		DueDate:   due,
		Priority:  p,
		CreatedAt: s.now(),
	}
	s.Dispatch(a)
	t, _ := s.Get(a.ID)
	return t
}

// Update replaces the stored task with t's ID. It reports false, leaving
// the list unchanged and observers uncalled, when no such task exists.
func (s *Store) Update(t task.Task) bool {
	if _, ok := s.Get(t.ID); !ok {
		return false
	}
	s.Dispatch(Update{Task: t})
	return true
}

func (s *Store) Delete(id string) {
	s.Dispatch(Delete{ID: id})
}

func (s *Store) ToggleSelected(id string) {
	s.Dispatch(ToggleSelected{ID: id})
}

func (s *Store) ResetSelected() {
	s.Dispatch(ResetSelected{})
}

func (s *Store) MarkComplete(ids []string) {
	s.Dispatch(MarkComplete{IDs: ids})
}

func (s *Store) MarkIncomplete(ids []string) {
	s.Dispatch(MarkIncomplete{IDs: ids})
}

func (s *Store) ToggleComplete(id string) {
	s.Dispatch(ToggleComplete{ID: id})
}

// DeleteSelected removes every selected task, clears the selection and
// returns how many tasks were removed.
func (s *Store) DeleteSelected() int {
	ids := s.SelectedIDs()
	for _, id := range ids {
		s.Delete(id)
	}
	s.ResetSelected()
	return len(ids)
}

// CompleteSelected marks the selection incomplete when every selected task
// is already completed, and complete otherwise. The selection is cleared.
// It returns the number of tasks addressed.
func (s *Store) CompleteSelected() int {
	selected := s.Selected()
	if len(selected) == 0 {
		return 0
	}
	ids := make([]string, 0, len(selected))
	allDone := true
	for _, t := range selected {
		ids = append(ids, t.ID)
		allDone = allDone && t.Completed
	}
	if allDone {
		s.MarkIncomplete(ids)
	} else {
		s.MarkComplete(ids)
	}
	s.ResetSelected()
	return len(ids)
}

// State returns the current snapshot.
func (s *Store) State() State {
	return State{Tasks: s.Tasks()}
}

// Tasks returns a copy of the ordered collection.
func (s *Store) Tasks() []task.Task {
	return slices.Clone(s.state.Tasks)
}

func (s *Store) Len() int {
	return len(s.state.Tasks)
}

func (s *Store) Get(id string) (task.Task, bool) {
	if i := indexOf(s.state.Tasks, id); i >= 0 {
		return s.state.Tasks[i], true
	}
	return task.Task{}, false
}

// Selected returns the tasks flagged for a bulk action, in list order.
func (s *Store) Selected() []task.Task {
	var out []task.Task
	for _, t := range s.state.Tasks {
		if t.Selected {
			out = append(out, t)
		}
	}
	return out
}

func (s *Store) SelectedIDs() []string {
	var ids []string
	for _, t := range s.state.Tasks {
		if t.Selected {
			ids = append(ids, t.ID)
		}
	}
	return ids
}
