package storage

import "github.com/orbitkernel/physics/internal/core/ecs"

// Dense is an array-of-structures store: an entity→index map alongside a
// packed slice of whole components. Insert/remove are O(1) via swap-remove;
// iteration over Components() is sequential and cache-friendly. Grounded on
// the teacher's SparseSet swap-remove (internal/core/ecs/storage/sparse_set.go)
// and the other_examples bodies.dispose() pattern (move-last-into-hole,
// fix up the sparse map for the moved element).
type Dense[C ecs.Component] struct {
	index      map[ecs.Entity]int
	entities   []ecs.Entity
	components []C
}

// NewDense creates an empty dense AoS store.
func NewDense[C ecs.Component]() *Dense[C] {
	return &Dense[C]{index: make(map[ecs.Entity]int)}
}

func (d *Dense[C]) Insert(e ecs.Entity, c C) (previous C, hadPrevious bool) {
	if i, ok := d.index[e]; ok {
		previous = d.components[i]
		d.components[i] = c
		return previous, true
	}
	d.index[e] = len(d.entities)
	d.entities = append(d.entities, e)
	d.components = append(d.components, c)
	return previous, false
}

// Remove swap-removes the entity's slot: the last element takes its place
// and the map entry for that moved element is updated, preserving the
// store's core invariant that the map and the dense array agree in length
// and membership.
func (d *Dense[C]) Remove(e ecs.Entity) (removed C, ok bool) {
	i, ok := d.index[e]
	if !ok {
		return removed, false
	}
	removed = d.components[i]
	last := len(d.entities) - 1

	if i != last {
		movedEntity := d.entities[last]
		d.entities[i] = movedEntity
		d.components[i] = d.components[last]
		d.index[movedEntity] = i
	}

	d.entities = d.entities[:last]
	d.components = d.components[:last]
	delete(d.index, e)
	return removed, true
}

func (d *Dense[C]) Contains(e ecs.Entity) bool {
	_, ok := d.index[e]
	return ok
}

func (d *Dense[C]) Get(e ecs.Entity) (c C, ok bool) {
	i, ok := d.index[e]
	if !ok {
		return c, false
	}
	return d.components[i], true
}

func (d *Dense[C]) IterEntities(fn func(ecs.Entity)) {
	for _, e := range d.entities {
		fn(e)
	}
}

func (d *Dense[C]) Len() int {
	return len(d.entities)
}

func (d *Dense[C]) Clear() {
	d.index = make(map[ecs.Entity]int)
	d.entities = nil
	d.components = nil
}

// Components returns the packed backing slice for bulk read access. The
// caller must not mutate entity/index correspondence by reordering it.
func (d *Dense[C]) Components() []C {
	return d.components
}

// ComponentsMut returns the packed backing slice for in-place bulk mutation.
// Mutating values is safe; changing the slice's length is not.
func (d *Dense[C]) ComponentsMut() []C {
	return d.components
}

// Entities returns the dense entity slice, index-aligned with Components().
func (d *Dense[C]) Entities() []ecs.Entity {
	return d.entities
}
