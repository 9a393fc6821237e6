package triage

import "reflect"

// Store is an episode-scoped, type-keyed payload table. Each payload type has
// at most one current value; writing a type that is already present replaces
// the earlier value. Insertion order is retained for diagnostic dumps.
//
// A store belongs to exactly one episode and is only written while that
// episode's failure unwinds, so it needs no synchronisation of its own.
type Store struct {
	slots map[reflect.Type]any
	order []reflect.Type
}

func newStore() *Store {
	return &Store{
		slots: make(map[reflect.Type]any),
	}
}

// Put writes v into the store under its payload type P, replacing any value
// of the same type already present.
func Put[P any](s *Store, v P) {
	if s == nil {
		return
	}
	s.put(typeOf[P](), v)
}

// Get returns the store's current value of payload type P.
func Get[P any](s *Store) (P, bool) {
	var zero P
	if s == nil {
		return zero, false
	}
	v, ok := s.value(typeOf[P]())
	if !ok {
		return zero, false
	}
	p, ok := v.(P)
	if !ok {
		return zero, false
	}
	return p, true
}

// Contains reports whether the store holds a value of payload type P.
func Contains[P any](s *Store) bool {
	if s == nil {
		return false
	}
	_, ok := s.value(typeOf[P]())
	return ok
}

// Len returns the number of distinct payload types in the store.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.slots)
}

func (s *Store) put(t reflect.Type, v any) {
	if _, ok := s.slots[t]; !ok {
		s.order = append(s.order, t)
	}
	s.slots[t] = v
}

// putAny stores v under its dynamic type. Untyped nils carry no type and are
// dropped.
func (s *Store) putAny(v any) {
	t := reflect.TypeOf(v)
	if t == nil {
		return
	}
	s.put(t, v)
}

func (s *Store) value(t reflect.Type) (any, bool) {
	v, ok := s.slots[t]
	return v, ok
}

// typeOf returns the reflect.Type of P itself, including interface types,
// which reflect.TypeOf on a value cannot name.
func typeOf[P any]() reflect.Type {
	return reflect.TypeOf((*P)(nil)).Elem()
}
