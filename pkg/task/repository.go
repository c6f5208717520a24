package task

import (
	"fmt"
	"sort"
)

// Repository owns the named task definitions of one run.
type Repository struct {
	tasks  []*Task
	byName map[string]*Task
}

// NewRepository creates an empty repository.
func NewRepository() *Repository {
	return &Repository{byName: make(map[string]*Task)}
}

// Register adds a task and returns it as the handle to use afterwards.
func (r *Repository) Register(t *Task) (*Task, error) {
	if t == nil {
		return nil, fmt.Errorf("cannot register a nil task")
	}
	if _, ok := r.byName[t.name]; ok {
		return nil, fmt.Errorf("task %q is already defined", t.name)
	}
	r.tasks = append(r.tasks, t)
	r.byName[t.name] = t
	return t, nil
}

// Lookup finds a task by name.
func (r *Repository) Lookup(name string) (*Task, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// FirstOfKind returns the first registered task of kind.
func (r *Repository) FirstOfKind(kind Kind) (*Task, bool) {
	for _, t := range r.tasks {
		if t.kind == kind {
			return t, true
		}
	}
	return nil, false
}

// All returns the tasks in registration order.
func (r *Repository) All() []*Task {
	return append([]*Task(nil), r.tasks...)
}

// ValidateAll validates every task and returns the first error per task,
// keyed by task name.
func (r *Repository) ValidateAll() map[string]error {
	errs := make(map[string]error)
	for _, t := range r.tasks {
		if err := t.Validate(); err != nil {
			errs[t.name] = err
		}
	}
	return errs
}

// CleanTargets returns the sorted, de-duplicated directories registered by
// validated tasks.
func (r *Repository) CleanTargets() []string {
	seen := make(map[string]struct{})
	var dirs []string
	for _, t := range r.tasks {
		for _, dir := range t.cleanTargets {
			if _, ok := seen[dir]; ok {
				continue
			}
			seen[dir] = struct{}{}
			dirs = append(dirs, dir)
		}
	}
	sort.Strings(dirs)
	return dirs
}
