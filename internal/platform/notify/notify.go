// Package notify is a tiny typed subscriber registry for state snapshots.
package notify

import (
	"sort"
	"sync"
)

// Registry calls subscribers in subscription order. The zero value is ready
// to use.
type Registry[T any] struct {
	mu   sync.Mutex
	next int
	fns  map[int]func(T)
}

// Add registers fn and returns a func that removes it.
func (r *Registry[T]) Add(fn func(T)) func() {
	r.mu.Lock()
	if r.fns == nil {
		r.fns = map[int]func(T){}
	}
	id := r.next
	r.next++
	r.fns[id] = fn
	r.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.fns, id)
			r.mu.Unlock()
		})
	}
}

// Notify runs outside the registry lock so subscribers may unsubscribe.
func (r *Registry[T]) Notify(v T) {
	r.mu.Lock()
	ids := make([]int, 0, len(r.fns))
	for id := range r.fns {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(T), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, r.fns[id])
	}
	r.mu.Unlock()
	for _, fn := range fns {
		fn(v)
	}
}

func (r *Registry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.fns)
}
