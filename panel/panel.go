// Package panel holds the state shared by every read-only data panel: the
// fetched list, a short preview with a show more / show less toggle, a
// panel-local error and a guard against results that arrive after a reset.
package panel

import "sync"

// DefaultPreview is the number of items shown while collapsed.
const DefaultPreview = 2

// Ticket identifies one fetch. Commit only accepts the latest ticket.
type Ticket uint64

// View is a consistent copy of a panel for rendering.
type View[T any] struct {
	Items     []T // visible items
	Total     int
	Expanded  bool
	CanToggle bool
	Loading   bool
	Loaded    bool
	Err       error
}

// List is safe for use from concurrent commands.
type List[T any] struct {
	mu       sync.Mutex
	preview  int
	epoch    uint64
	items    []T
	err      error
	loading  bool
	loaded   bool
	expanded bool
}

// New returns an empty list showing preview items while collapsed.
func New[T any](preview int) *List[T] {
	if preview <= 0 {
		preview = DefaultPreview
	}
	return &List[T]{preview: preview}
}

// Begin marks a fetch as started and supersedes any fetch still in flight.
func (l *List[T]) Begin() Ticket {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.epoch++
	l.loading = true
	l.err = nil
	return Ticket(l.epoch)
}

// Commit stores the outcome of the fetch identified by t. It reports false
// and changes nothing when t was superseded by a later Begin or Reset.
// On error the previous items stay.
func (l *List[T]) Commit(t Ticket, items []T, err error) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if Ticket(l.epoch) != t {
		return false
	}
	l.loading = false
	if err != nil {
		l.err = err
		return true
	}
	l.items = append([]T(nil), items...)
	l.err = nil
	l.loaded = true
	if len(l.items) <= l.preview {
		l.expanded = false
	}
	return true
}

// Fail records an error that did not come from a fetch, such as a missing
// API key.
func (l *List[T]) Fail(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.epoch++
	l.loading = false
	l.err = err
}

// Reset empties the list and drops every fetch still in flight.
func (l *List[T]) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.epoch++
	l.items = nil
	l.err = nil
	l.loading = false
	l.loaded = false
	l.expanded = false
}

// Toggle flips between the preview and the full list.
func (l *List[T]) Toggle() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.items) > l.preview {
		l.expanded = !l.expanded
	}
}

// Visible returns the items currently shown.
func (l *List[T]) Visible() []T {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.visible()
}

func (l *List[T]) visible() []T {
	n := len(l.items)
	if !l.expanded && n > l.preview {
		n = l.preview
	}
	return append([]T(nil), l.items[:n]...)
}

// All returns every fetched item.
func (l *List[T]) All() []T {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]T(nil), l.items...)
}

// Len is the number of fetched items.
func (l *List[T]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}

// Err returns the panel-local error, if any.
func (l *List[T]) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// Loading reports whether a fetch is in flight.
func (l *List[T]) Loading() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loading
}

// Snapshot returns the render state in one consistent read.
func (l *List[T]) Snapshot() View[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return View[T]{
		Items:     l.visible(),
		Total:     len(l.items),
		Expanded:  l.expanded,
		CanToggle: len(l.items) > l.preview,
		Loading:   l.loading,
		Loaded:    l.loaded,
		Err:       l.err,
	}
}

// Expanded reports whether the full list is shown.
func (l *List[T]) Expanded() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.expanded
}

// CanToggle reports whether there is more than the preview to show.
func (l *List[T]) CanToggle() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items) > l.preview
}
