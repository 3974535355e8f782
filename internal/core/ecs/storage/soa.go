package storage

import "github.com/orbitkernel/physics/internal/core/ecs"

// Vector3SoA is a structure-of-arrays store for any component that wraps a
// single ecs.Vector3: three contiguous float64 slices (X, Y, Z), one per
// field, indexed identically by the shared dense index. Random single-entity
// Get legitimately returns absent even when the entity is present —
// reassembling a whole component from three arrays on every access would
// defeat the layout's purpose (spec.md §4.2); callers needing per-entity
// access must pick Sparse or Dense instead. Field-array access is the only
// supported bulk path, consumed directly by the SIMD primitives.
type Vector3SoA[C ecs.Component] struct {
	index    map[ecs.Entity]int
	entities []ecs.Entity
	x, y, z  []float64

	toVec   func(C) ecs.Vector3
	fromVec func(ecs.Vector3) C
}

// NewVector3SoA creates an empty SoA store for a Vector3-shaped component,
// given the pair of functions needed to move data in and out of the
// concrete component type.
func NewVector3SoA[C ecs.Component](toVec func(C) ecs.Vector3, fromVec func(ecs.Vector3) C) *Vector3SoA[C] {
	return &Vector3SoA[C]{
		index:   make(map[ecs.Entity]int),
		toVec:   toVec,
		fromVec: fromVec,
	}
}

func (s *Vector3SoA[C]) Insert(e ecs.Entity, c C) (previous C, hadPrevious bool) {
	v := s.toVec(c)
	if i, ok := s.index[e]; ok {
		previous = s.fromVec(ecs.Vector3{X: s.x[i], Y: s.y[i], Z: s.z[i]})
		s.x[i], s.y[i], s.z[i] = v.X, v.Y, v.Z
		return previous, true
	}
	s.index[e] = len(s.entities)
	s.entities = append(s.entities, e)
	s.x = append(s.x, v.X)
	s.y = append(s.y, v.Y)
	s.z = append(s.z, v.Z)
	return previous, false
}

func (s *Vector3SoA[C]) Remove(e ecs.Entity) (removed C, ok bool) {
	i, ok := s.index[e]
	if !ok {
		return removed, false
	}
	removed = s.fromVec(ecs.Vector3{X: s.x[i], Y: s.y[i], Z: s.z[i]})
	last := len(s.entities) - 1

	if i != last {
		moved := s.entities[last]
		s.entities[i] = moved
		s.x[i], s.y[i], s.z[i] = s.x[last], s.y[last], s.z[last]
		s.index[moved] = i
	}

	s.entities = s.entities[:last]
	s.x, s.y, s.z = s.x[:last], s.y[:last], s.z[:last]
	delete(s.index, e)
	return removed, true
}

func (s *Vector3SoA[C]) Contains(e ecs.Entity) bool {
	_, ok := s.index[e]
	return ok
}

// Get always reports absent, by contract (see type doc).
func (s *Vector3SoA[C]) Get(ecs.Entity) (c C, ok bool) {
	return c, false
}

func (s *Vector3SoA[C]) IterEntities(fn func(ecs.Entity)) {
	for _, e := range s.entities {
		fn(e)
	}
}

func (s *Vector3SoA[C]) Len() int {
	return len(s.entities)
}

func (s *Vector3SoA[C]) Clear() {
	s.index = make(map[ecs.Entity]int)
	s.entities, s.x, s.y, s.z = nil, nil, nil, nil
}

// FieldArrays returns the three parallel field slices for bulk/SIMD
// operations, all of equal length. Mutating the slices in place is the
// supported way to bulk-update this store.
func (s *Vector3SoA[C]) FieldArrays() (x, y, z []float64) {
	return s.x, s.y, s.z
}

// Entities returns the dense entity slice, index-aligned with FieldArrays.
func (s *Vector3SoA[C]) Entities() []ecs.Entity {
	return s.entities
}

// Scalar is a structure-of-arrays store for a single-scalar-field component
// (Mass). Same absent-on-Get contract as Vector3SoA.
type Scalar[C ecs.Component] struct {
	index    map[ecs.Entity]int
	entities []ecs.Entity
	values   []float64

	toScalar   func(C) float64
	fromScalar func(float64) C
}

// NewScalar creates an empty SoA store for a single-float64-field
// component.
func NewScalar[C ecs.Component](toScalar func(C) float64, fromScalar func(float64) C) *Scalar[C] {
	return &Scalar[C]{
		index:      make(map[ecs.Entity]int),
		toScalar:   toScalar,
		fromScalar: fromScalar,
	}
}

func (s *Scalar[C]) Insert(e ecs.Entity, c C) (previous C, hadPrevious bool) {
	v := s.toScalar(c)
	if i, ok := s.index[e]; ok {
		previous = s.fromScalar(s.values[i])
		s.values[i] = v
		return previous, true
	}
	s.index[e] = len(s.entities)
	s.entities = append(s.entities, e)
	s.values = append(s.values, v)
	return previous, false
}

func (s *Scalar[C]) Remove(e ecs.Entity) (removed C, ok bool) {
	i, ok := s.index[e]
	if !ok {
		return removed, false
	}
	removed = s.fromScalar(s.values[i])
	last := len(s.entities) - 1

	if i != last {
		moved := s.entities[last]
		s.entities[i] = moved
		s.values[i] = s.values[last]
		s.index[moved] = i
	}

	s.entities = s.entities[:last]
	s.values = s.values[:last]
	delete(s.index, e)
	return removed, true
}

func (s *Scalar[C]) Contains(e ecs.Entity) bool {
	_, ok := s.index[e]
	return ok
}

func (s *Scalar[C]) Get(ecs.Entity) (c C, ok bool) {
	return c, false
}

func (s *Scalar[C]) IterEntities(fn func(ecs.Entity)) {
	for _, e := range s.entities {
		fn(e)
	}
}

func (s *Scalar[C]) Len() int {
	return len(s.entities)
}

func (s *Scalar[C]) Clear() {
	s.index = make(map[ecs.Entity]int)
	s.entities, s.values = nil, nil
}

// FieldArray returns the single backing field slice for bulk operations.
func (s *Scalar[C]) FieldArray() []float64 {
	return s.values
}

// Entities returns the dense entity slice, index-aligned with FieldArray.
func (s *Scalar[C]) Entities() []ecs.Entity {
	return s.entities
}
