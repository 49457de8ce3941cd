package locale

import "sync"

// Source provides the active language and notifies subscribers on change.
type Source interface {
	Current() Lang
	Subscribe(fn func(Lang)) (unsubscribe func())
}

// Static is a Source that never changes.
type Static Lang

func (s Static) Current() Lang { return Lang(s) }

func (Static) Subscribe(func(Lang)) func() { return func() {} }

// Switcher is a settable Source.
type Switcher struct {
	mu   sync.Mutex
	cur  Lang
	next int
	subs map[int]func(Lang)
}

func NewSwitcher(initial Lang) *Switcher {
	if _, ok := Parse(string(initial)); !ok {
		initial = Default
	}
	return &Switcher{cur: initial, subs: map[int]func(Lang){}}
}

func (s *Switcher) Current() Lang {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur
}

// Set changes the language and notifies subscribers if it differs.
// Callbacks run outside the lock.
func (s *Switcher) Set(l Lang) {
	if _, ok := Parse(string(l)); !ok {
		return
	}
	s.mu.Lock()
	if s.cur == l {
		s.mu.Unlock()
		return
	}
	s.cur = l
	fns := make([]func(Lang), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(l)
	}
}

func (s *Switcher) Subscribe(fn func(Lang)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.next
	s.next++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}
