package player

import "sync"

const eventBufferSize = 16

// Subscription delivers events of type T to one subscriber.
type Subscription[T any] struct {
	Events <-chan T
	Done   <-chan struct{}

	eventCh chan T
	doneCh  chan struct{}
	once    sync.Once
}

func newSubscription[T any]() *Subscription[T] {
	s := &Subscription[T]{
		eventCh: make(chan T, eventBufferSize),
		doneCh:  make(chan struct{}),
	}
	s.Events = s.eventCh
	s.Done = s.doneCh
	return s
}

// send delivers e without blocking; a full buffer drops it.
func (s *Subscription[T]) send(e T) {
	select {
	case s.eventCh <- e:
	default:
	}
}

func (s *Subscription[T]) close() {
	s.once.Do(func() { close(s.doneCh) })
}

// hub fans events out to subscribers. Callers hold their own lock around publish.
type hub[T any] struct {
	mu   sync.Mutex
	subs []*Subscription[T]
}

func (h *hub[T]) subscribe() *Subscription[T] {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub := newSubscription[T]()
	h.subs = append(h.subs, sub)
	return sub
}

func (h *hub[T]) unsubscribe(sub *Subscription[T]) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for i, s := range h.subs {
		if s == sub {
			h.subs = append(h.subs[:i], h.subs[i+1:]...)
			sub.close()
			return
		}
	}
}

func (h *hub[T]) publish(e T) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, s := range h.subs {
		s.send(e)
	}
}

func (h *hub[T]) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, s := range h.subs {
		s.close()
	}
	h.subs = nil
}
