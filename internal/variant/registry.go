package variant

import (
	"fmt"
	"reflect"
	"sync"
)

// Candidate is one concrete implementation eligible to satisfy a capability.
type Candidate struct {
	// Name labels the candidate in logs and explanations. Defaults to Type.
	Name string
	// Type is the concrete type New produces; used for exact-type pins.
	Type reflect.Type
	// Criteria is scored against the active device.
	Criteria Criteria
	// New returns the instance handed to the caller when this candidate wins.
	New func() any
}

// Instance makes a candidate that always returns value. When no criteria are
// given and value implements Matcher, its own criteria are used.
func Instance(value any, criteria ...Criteria) Candidate {
	c := Candidate{
		Type: reflect.TypeOf(value),
		New:  func() any { return value },
	}
	c.Criteria = pickCriteria(value, criteria)
	return c
}

// Constructor makes a candidate that builds a fresh T on every resolution.
// When no criteria are given they are read from the zero value of T, or from
// a zero *T when only the pointer implements Matcher. Only when T is an
// interface type is fn called once at registration to find them.
func Constructor[T any](fn func() T, criteria ...Criteria) Candidate {
	t := reflect.TypeOf((*T)(nil)).Elem()
	c := Candidate{
		Type: t,
		New:  func() any { return fn() },
	}
	switch {
	case len(criteria) > 0:
		c.Criteria = criteria[0]
	case t.Kind() == reflect.Interface:
		c.Criteria = pickCriteria(fn(), nil)
	default:
		c.Criteria = zeroCriteria(t)
	}
	return c
}

func zeroCriteria(t reflect.Type) Criteria {
	if t.Kind() == reflect.Pointer {
		return pickCriteria(reflect.New(t.Elem()).Interface(), nil)
	}
	if m, ok := reflect.Zero(t).Interface().(Matcher); ok {
		return m.MatchCriteria()
	}
	return pickCriteria(reflect.New(t).Interface(), nil)
}

func pickCriteria(value any, explicit []Criteria) Criteria {
	if len(explicit) > 0 {
		return explicit[0]
	}
	if m, ok := value.(Matcher); ok {
		return m.MatchCriteria()
	}
	return Criteria{}
}

func (c Candidate) label() string {
	if c.Name != "" {
		return c.Name
	}
	if c.Type != nil {
		return c.Type.String()
	}
	return "<anonymous>"
}

// Registry is the dispatch table from capability type to its candidates, in
// registration order. It is safe for concurrent use; registration normally
// happens once at startup.
type Registry struct {
	mu         sync.RWMutex
	candidates map[reflect.Type][]Candidate
	order      []reflect.Type
}

// NewRegistry creates an empty candidate registry.
func NewRegistry() *Registry {
	return &Registry{
		candidates: make(map[reflect.Type][]Candidate),
	}
}

// Register adds a candidate for capability. Candidates keep their
// registration order, which breaks score ties.
func (r *Registry) Register(capability reflect.Type, c Candidate) error {
	if capability == nil {
		return fmt.Errorf("cannot register candidate for nil capability")
	}
	if c.New == nil {
		return fmt.Errorf("candidate %s for %s has no constructor", c.label(), capability)
	}
	if c.Type == nil {
		return fmt.Errorf("candidate %s for %s has no type", c.label(), capability)
	}
	if !c.Type.AssignableTo(capability) {
		return fmt.Errorf("candidate %s does not implement %s", c.label(), capability)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.candidates[capability]; !exists {
		r.order = append(r.order, capability)
	}
	r.candidates[capability] = append(r.candidates[capability], c)
	return nil
}

// Candidates returns the candidates registered for capability.
func (r *Registry) Candidates(capability reflect.Type) []Candidate {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := r.candidates[capability]
	out := make([]Candidate, len(list))
	copy(out, list)
	return out
}

// CandidatesFor returns the candidates a request for capability considers.
// For an interface capability these are its own candidates. A concrete
// capability also sees the candidates of every registered interface it
// implements, so a request can pin one implementation out of a variant set.
func (r *Registry) CandidatesFor(capability reflect.Type) []Candidate {
	if capability == nil || capability.Kind() == reflect.Interface {
		return r.Candidates(capability)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := append([]Candidate(nil), r.candidates[capability]...)
	for _, iface := range r.order {
		if iface.Kind() == reflect.Interface && capability.Implements(iface) {
			out = append(out, r.candidates[iface]...)
		}
	}
	return out
}

// Capabilities returns every capability with at least one candidate, in the
// order they were first registered.
func (r *Registry) Capabilities() []reflect.Type {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]reflect.Type, len(r.order))
	copy(out, r.order)
	return out
}

// TypeOf returns the reflect.Type of T, including interface types.
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// RegisterFor registers c as a candidate for capability T.
func RegisterFor[T any](r *Registry, c Candidate) error {
	return r.Register(TypeOf[T](), c)
}
