package datalake

import (
	"sync"
)

type variable struct {
	name  string
	typ   VarType
	value any
	set   bool
}

// MemStore is the in-process Store used by the groundlink binary and the
// tests. A host application embedding the engine supplies its own Store.
type MemStore struct {
	mu        sync.RWMutex
	vars      map[string]*variable
	listeners map[string]map[int]Listener
	nextToken int
}

var _ Store = (*MemStore)(nil)

func NewMemStore() *MemStore {
	return &MemStore{
		vars:      make(map[string]*variable),
		listeners: make(map[string]map[int]Listener),
	}
}

func (s *MemStore) CreateVariable(id, name string, typ VarType) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.vars[id]; ok {
		return
	}
	s.vars[id] = &variable{name: name, typ: typ}
}

func (s *MemStore) SetValue(id string, value any) {
	s.mu.Lock()
	v, ok := s.vars[id]
	if !ok {
		s.mu.Unlock()
		return
	}
	v.value = value
	v.set = true

	var fns []Listener
	for _, fn := range s.listeners[id] {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(id, value)
	}
}

func (s *MemStore) GetValue(id string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.vars[id]
	if !ok || !v.set {
		return nil, false
	}
	return v.value, true
}

func (s *MemStore) Listen(id string, fn Listener) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listeners[id] == nil {
		s.listeners[id] = make(map[int]Listener)
	}
	token := s.nextToken
	s.nextToken++
	s.listeners[id][token] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners[id], token)
	}
}

// VariableCount returns the number of registered variables. Test helper.
func (s *MemStore) VariableCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.vars)
}

// VariableName returns the display name a variable was registered with.
func (s *MemStore) VariableName(id string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vars[id]
	if !ok {
		return "", false
	}
	return v.name, true
}
