package store

import (
	"context"
	"sort"
	"sync"
)

// WriteHook sees every Update mapping before it is committed. Returning an
// error aborts that Update without applying any of its writes.
type WriteHook func(values map[string]any) error

// MemoryStore keeps the whole tree in process. It backs local development and
// every test in the repository.
type MemoryStore struct {
	mu     sync.RWMutex
	root   any
	subs   map[int]*subscription
	nextID int
	hook   WriteHook
}

// subscription queues snapshots in commit order. At most one goroutine runs
// onChange for it at a time; the others only append to the queue.
type subscription struct {
	segs     []string
	onChange func(Snapshot)

	mu      sync.Mutex
	queue   []Snapshot
	running bool
	closed  bool
}

// push must be called with the store lock held.
func (sub *subscription) push(snap Snapshot) {
	sub.mu.Lock()
	sub.queue = append(sub.queue, snap)
	sub.mu.Unlock()
}

func (sub *subscription) drain() {
	sub.mu.Lock()
	if sub.running {
		sub.mu.Unlock()
		return
	}
	sub.running = true
	sub.runLocked()
}

// runLocked delivers until the queue is empty and releases sub.mu.
func (sub *subscription) runLocked() {
	for len(sub.queue) > 0 && !sub.closed {
		snap := sub.queue[0]
		sub.queue = sub.queue[1:]
		sub.mu.Unlock()
		sub.onChange(snap)
		sub.mu.Lock()
	}
	sub.queue = nil
	sub.running = false
	sub.mu.Unlock()
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{subs: make(map[int]*subscription)}
}

// SetWriteHook installs an instrumentation hook; nil removes it.
func (s *MemoryStore) SetWriteHook(h WriteHook) {
	s.mu.Lock()
	s.hook = h
	s.mu.Unlock()
}

func (s *MemoryStore) Get(ctx context.Context, path string) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	segs, err := SplitPath(path)
	if err != nil {
		return Snapshot{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{Key: lastSegment(segs), value: cloneValue(valueAt(s.root, segs))}, nil
}

func (s *MemoryStore) Update(ctx context.Context, values map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	updates, err := prepareUpdate(values)
	if err != nil {
		return err
	}
	if len(updates) == 0 {
		return nil
	}

	s.mu.Lock()
	if s.hook != nil {
		if err := s.hook(values); err != nil {
			s.mu.Unlock()
			return err
		}
	}
	for _, u := range updates {
		s.root = setAt(s.root, u.segs, cloneValue(u.value))
	}
	affected := s.notifyLocked(updates)
	s.mu.Unlock()

	for _, sub := range affected {
		sub.drain()
	}
	return nil
}

func (s *MemoryStore) Subscribe(path string, onChange func(Snapshot)) (func(), error) {
	segs, err := SplitPath(path)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	sub := &subscription{
		segs:     segs,
		onChange: onChange,
		queue:    []Snapshot{{Key: lastSegment(segs), value: cloneValue(valueAt(s.root, segs))}},
		running:  true,
	}
	s.subs[id] = sub
	s.mu.Unlock()

	// the initial value goes out before Subscribe returns
	sub.mu.Lock()
	sub.runLocked()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
			sub.mu.Lock()
			sub.closed = true
			sub.mu.Unlock()
		})
	}, nil
}

// notifyLocked queues the new value for every subscription the updates touch.
func (s *MemoryStore) notifyLocked(updates []pathValue) []*subscription {
	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	var out []*subscription
	for _, id := range ids {
		sub := s.subs[id]
		for _, u := range updates {
			if related(sub.segs, u.segs) {
				sub.push(Snapshot{Key: lastSegment(sub.segs), value: cloneValue(valueAt(s.root, sub.segs))})
				out = append(out, sub)
				break
			}
		}
	}
	return out
}

func lastSegment(segs []string) string {
	if len(segs) == 0 {
		return ""
	}
	return segs[len(segs)-1]
}
