package store

import (
	"sync"

	"stagehand/internal/device"
	"stagehand/internal/scope"
)

// sharedStore backs the SUITE and EXECUTION scopes. Workers read and write it
// concurrently; entries are removed one at a time with LoadAndDelete or
// CompareAndDelete so each handle is released exactly once.
type sharedStore struct {
	name    string
	handles sync.Map // device key -> *Handle
}

// NewShared creates a store safe for concurrent use by many workers.
func NewShared(name string) Store {
	return &sharedStore{name: name}
}

func (s *sharedStore) Get(d *device.Device) (*Handle, bool) {
	v, ok := s.handles.Load(d.Key())
	if !ok {
		return nil, false
	}
	return v.(*Handle), true
}

func (s *sharedStore) Put(d *device.Device, h *Handle) {
	s.handles.Store(d.Key(), h)
}

func (s *sharedStore) FindByType(t device.Type) (*Handle, bool) {
	var found *Handle
	s.handles.Range(func(_, v any) bool {
		h := v.(*Handle)
		if h.Device().Type == t {
			found = h
			return false
		}
		return true
	})
	return found, found != nil
}

func (s *sharedStore) Clear() error {
	var removed []*Handle
	s.handles.Range(func(k, _ any) bool {
		if v, loaded := s.handles.LoadAndDelete(k); loaded {
			removed = append(removed, v.(*Handle))
		}
		return true
	})
	return releaseAll(s.name, removed)
}

func (s *sharedStore) ClearScope(sc scope.Scope) error {
	var removed []*Handle
	s.handles.Range(func(k, v any) bool {
		h := v.(*Handle)
		if h.Scope() == sc && s.handles.CompareAndDelete(k, v) {
			removed = append(removed, h)
		}
		return true
	})
	return releaseAll(s.name, removed)
}

func (s *sharedStore) Len() int {
	n := 0
	s.handles.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

func (s *sharedStore) Handles() []*Handle {
	var out []*Handle
	s.handles.Range(func(_, v any) bool {
		out = append(out, v.(*Handle))
		return true
	})
	return out
}
