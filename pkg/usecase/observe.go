package usecase

import (
	"sort"
	"sync"
)

// observers fans state transitions out to subscribers
type observers[T any] struct {
	mu   sync.Mutex
	next int
	fns  map[int]func(T)
}

func (o *observers[T]) add(fn func(T)) func() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.fns == nil {
		o.fns = make(map[int]func(T))
	}
	id := o.next
	o.next++
	o.fns[id] = fn

	return func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		delete(o.fns, id)
	}
}

func (o *observers[T]) snapshot() []func(T) {
	o.mu.Lock()
	defer o.mu.Unlock()

	ids := make([]int, 0, len(o.fns))
	for id := range o.fns {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	fns := make([]func(T), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, o.fns[id])
	}
	return fns
}

// publisher serializes transitions so subscribers see them in the order they
// were applied. A transition takes order before the owner's state lock and
// notifies after releasing the state lock, so subscribers may read state.
type publisher[T any] struct {
	order sync.Mutex
	subs  observers[T]
}

func (p *publisher[T]) begin() {
	p.order.Lock()
}

// abort ends a transition that changed nothing
func (p *publisher[T]) abort() {
	p.order.Unlock()
}

// notify delivers v and ends the transition
func (p *publisher[T]) notify(v T) {
	defer p.order.Unlock()
	for _, fn := range p.subs.snapshot() {
		fn(v)
	}
}
