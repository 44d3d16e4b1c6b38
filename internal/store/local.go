package store

import (
	"stagehand/internal/device"
	"stagehand/internal/scope"
)

// localStore is the worker-bound store for METHOD and CLASS handles. Only the
// owning worker touches it, so it carries no locking.
type localStore struct {
	name    string
	handles map[string]*Handle
	order   []string
}

// NewLocal creates an unsynchronized store owned by a single worker.
func NewLocal(name string) Store {
	return &localStore{
		name:    name,
		handles: make(map[string]*Handle),
	}
}

func (s *localStore) Get(d *device.Device) (*Handle, bool) {
	h, ok := s.handles[d.Key()]
	return h, ok
}

func (s *localStore) Put(d *device.Device, h *Handle) {
	key := d.Key()
	if _, exists := s.handles[key]; !exists {
		s.order = append(s.order, key)
	}
	s.handles[key] = h
}

func (s *localStore) FindByType(t device.Type) (*Handle, bool) {
	for _, key := range s.order {
		if h := s.handles[key]; h.Device().Type == t {
			return h, true
		}
	}
	return nil, false
}

func (s *localStore) Clear() error {
	return s.clearMatching(func(*Handle) bool { return true })
}

func (s *localStore) ClearScope(sc scope.Scope) error {
	return s.clearMatching(func(h *Handle) bool { return h.Scope() == sc })
}

func (s *localStore) clearMatching(match func(*Handle) bool) error {
	if len(s.handles) == 0 {
		return nil
	}

	var removed []*Handle
	kept := s.order[:0]
	for _, key := range s.order {
		h := s.handles[key]
		if match(h) {
			removed = append(removed, h)
			delete(s.handles, key)
			continue
		}
		kept = append(kept, key)
	}
	s.order = kept

	return releaseAll(s.name, removed)
}

func (s *localStore) Len() int {
	return len(s.handles)
}

func (s *localStore) Handles() []*Handle {
	out := make([]*Handle, 0, len(s.order))
	for _, key := range s.order {
		out = append(out, s.handles[key])
	}
	return out
}
