// Package storage provides the three component store layouts from
// spec.md §4.2: sparse mapping, dense array-of-structures, and dense
// structure-of-arrays. All three satisfy ecs.Store[C].
package storage

import "github.com/orbitkernel/physics/internal/core/ecs"

// Sparse is a map-backed store: O(1) random access, unspecified iteration
// order, the right choice for small or sparsely-covered populations.
// Grounded on the teacher's SparseSet (internal/core/ecs/storage/sparse_set.go)
// generalized from an EntityID-keyed component-agnostic set to a
// generic entity-to-value map.
type Sparse[C ecs.Component] struct {
	values map[ecs.Entity]C
}

// NewSparse creates an empty sparse store.
func NewSparse[C ecs.Component]() *Sparse[C] {
	return &Sparse[C]{values: make(map[ecs.Entity]C)}
}

func (s *Sparse[C]) Insert(e ecs.Entity, c C) (previous C, hadPrevious bool) {
	previous, hadPrevious = s.values[e]
	s.values[e] = c
	return previous, hadPrevious
}

func (s *Sparse[C]) Remove(e ecs.Entity) (removed C, ok bool) {
	removed, ok = s.values[e]
	if ok {
		delete(s.values, e)
	}
	return removed, ok
}

func (s *Sparse[C]) Contains(e ecs.Entity) bool {
	_, ok := s.values[e]
	return ok
}

func (s *Sparse[C]) Get(e ecs.Entity) (c C, ok bool) {
	c, ok = s.values[e]
	return c, ok
}

func (s *Sparse[C]) IterEntities(fn func(ecs.Entity)) {
	for e := range s.values {
		fn(e)
	}
}

func (s *Sparse[C]) Len() int {
	return len(s.values)
}

func (s *Sparse[C]) Clear() {
	s.values = make(map[ecs.Entity]C)
}
