package exchange

import (
	"sync"

	"github.com/google/uuid"
)

// Verdict resolves a held exchange. Forwarded is false when the
// exchange was discarded; Request then is nil.
type Verdict struct {
	Request   *Request
	Forwarded bool
}

// Store owns every Exchange for its lifetime: created on capture,
// removed on explicit delete or clear. Wait handles for held exchanges
// are keyed strictly by exchange ID inside the store, so no
// continuation state leaks outside it.
type Store struct {
	mu        sync.Mutex
	exchanges map[string]*Exchange
	order     []string
	waiters   map[string]chan Verdict
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		exchanges: make(map[string]*Exchange),
		waiters:   make(map[string]chan Verdict),
	}
}

// Put captures a request, assigning an ID if it lacks one, and returns
// the stored exchange.
func (s *Store) Put(req *Request) *Exchange {
	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	ex := &Exchange{Request: req}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.exchanges[req.ID]; !exists {
		s.order = append(s.order, req.ID)
	}
	s.exchanges[req.ID] = ex
	return ex
}

// Get returns the exchange for the given request ID.
func (s *Store) Get(id string) (*Exchange, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ex, ok := s.exchanges[id]
	return ex, ok
}

// AttachResponse correlates a response to its stored request. It is a
// no-op when the request is unknown (e.g. was dropped) or already has a
// response; it returns whether the response was attached.
func (s *Store) AttachResponse(resp *Response) bool {
	if resp == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ex, ok := s.exchanges[resp.RequestID]
	if !ok || ex.Response != nil {
		return false
	}
	if resp.ID == "" {
		resp.ID = uuid.New().String()
	}
	ex.Response = resp
	return true
}

// Delete removes an exchange. Any waiter for it is resolved as
// not-forwarded so a suspended caller never leaks.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteLocked(id)
}

func (s *Store) deleteLocked(id string) {
	if _, ok := s.exchanges[id]; !ok {
		return
	}
	delete(s.exchanges, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	if ch, ok := s.waiters[id]; ok {
		delete(s.waiters, id)
		ch <- Verdict{}
	}
}

// Clear removes every exchange, resolving all waiters as not-forwarded.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, ch := range s.waiters {
		delete(s.waiters, id)
		ch <- Verdict{}
	}
	s.exchanges = make(map[string]*Exchange)
	s.order = nil
}

// List returns all exchanges in capture order.
func (s *Store) List() []*Exchange {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Exchange, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.exchanges[id])
	}
	return out
}

// Len returns the number of stored exchanges.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.exchanges)
}

// Hold registers a one-shot wait handle for the exchange and marks its
// request as intercepted. The returned channel receives exactly one
// Verdict when Resolve or Delete fires. Holding an unknown exchange
// returns a channel resolved immediately as not-forwarded.
func (s *Store) Hold(id string) <-chan Verdict {
	ch := make(chan Verdict, 1)
	s.mu.Lock()
	defer s.mu.Unlock()
	ex, ok := s.exchanges[id]
	if !ok {
		ch <- Verdict{}
		return ch
	}
	ex.Request.Intercepted = true
	s.waiters[id] = ch
	return ch
}

// Resolve signals the wait handle for id, if one is registered, and
// removes it. A second resolve for the same id is a no-op. It returns
// whether a waiter was signalled.
func (s *Store) Resolve(id string, v Verdict) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.waiters[id]
	if !ok {
		return false
	}
	delete(s.waiters, id)
	ch <- v
	return true
}

// HeldIDs returns the IDs of currently held exchanges in capture order.
func (s *Store) HeldIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.waiters))
	for _, id := range s.order {
		if _, ok := s.waiters[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

// Held reports whether the exchange is currently suspended.
func (s *Store) Held(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.waiters[id]
	return ok
}
