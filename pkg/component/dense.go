package component

import "github.com/bxrne/nbodysim/pkg/entity"

// VectorCodec converts a 3-field record type to and from its flat
// components, letting DenseVectorStorage stay generic over Position,
// Velocity, Acceleration, and Force without reflection.
type VectorCodec[T any] struct {
	Decompose func(T) (x, y, z float64)
	Compose   func(x, y, z float64) T
}

// DenseVectorStorage is the "true SoA" dense column form for 3-field
// component records: three contiguous float64 slices plus an entity→slot
// map, supporting append-only insert and swap-remove with slot-map
// fix-up. Field slices are exposed directly for SIMD kernels.
type DenseVectorStorage[T any] struct {
	codec   VectorCodec[T]
	slots   map[entity.Entity]int
	order   []entity.Entity
	x, y, z []float64
}

// NewDenseVectorStorage creates an empty dense storage using codec to
// translate between T and its flat x/y/z components.
func NewDenseVectorStorage[T any](codec VectorCodec[T]) *DenseVectorStorage[T] {
	return &DenseVectorStorage[T]{
		codec: codec,
		slots: make(map[entity.Entity]int),
	}
}

// Insert appends or overwrites e's record.
func (d *DenseVectorStorage[T]) Insert(e entity.Entity, value T) {
	x, y, z := d.codec.Decompose(value)
	if slot, ok := d.slots[e]; ok {
		d.x[slot], d.y[slot], d.z[slot] = x, y, z
		return
	}
	d.slots[e] = len(d.order)
	d.order = append(d.order, e)
	d.x = append(d.x, x)
	d.y = append(d.y, y)
	d.z = append(d.z, z)
}

// Remove swap-removes e's record, moving the last slot into its place and
// fixing up the slot map, then returns the removed value.
func (d *DenseVectorStorage[T]) Remove(e entity.Entity) (T, bool) {
	slot, ok := d.slots[e]
	if !ok {
		var zero T
		return zero, false
	}
	removed := d.codec.Compose(d.x[slot], d.y[slot], d.z[slot])
	last := len(d.order) - 1

	if slot != last {
		movedEntity := d.order[last]
		d.x[slot], d.y[slot], d.z[slot] = d.x[last], d.y[last], d.z[last]
		d.order[slot] = movedEntity
		d.slots[movedEntity] = slot
	}

	d.x = d.x[:last]
	d.y = d.y[:last]
	d.z = d.z[:last]
	d.order = d.order[:last]
	delete(d.slots, e)
	return removed, true
}

// Get returns a copy of e's record and whether it is present.
func (d *DenseVectorStorage[T]) Get(e entity.Entity) (T, bool) {
	slot, ok := d.slots[e]
	if !ok {
		var zero T
		return zero, false
	}
	return d.codec.Compose(d.x[slot], d.y[slot], d.z[slot]), true
}

// Set overwrites e's record in place; GetMut on the dense form is
// expressed through Get+Set since raw slice pointers would dangle across
// swap-removes of other entities.
func (d *DenseVectorStorage[T]) Set(e entity.Entity, value T) bool {
	slot, ok := d.slots[e]
	if !ok {
		return false
	}
	d.x[slot], d.y[slot], d.z[slot] = d.codec.Decompose(value)
	return true
}

// Contains reports whether e has a record.
func (d *DenseVectorStorage[T]) Contains(e entity.Entity) bool {
	_, ok := d.slots[e]
	return ok
}

// Clear removes all records.
func (d *DenseVectorStorage[T]) Clear() {
	d.slots = make(map[entity.Entity]int)
	d.order = nil
	d.x, d.y, d.z = nil, nil, nil
}

// Len returns the number of stored records.
func (d *DenseVectorStorage[T]) Len() int {
	return len(d.order)
}

// X returns the dense, contiguous x-field slice in slot order, suitable
// for SIMD kernels.
func (d *DenseVectorStorage[T]) X() []float64 { return d.x }

// Y returns the dense, contiguous y-field slice in slot order.
func (d *DenseVectorStorage[T]) Y() []float64 { return d.y }

// Z returns the dense, contiguous z-field slice in slot order.
func (d *DenseVectorStorage[T]) Z() []float64 { return d.z }

// Entities returns the slot-order slice of live entities backing the
// field arrays; Entities()[i] owns X()[i], Y()[i], Z()[i].
func (d *DenseVectorStorage[T]) Entities() []entity.Entity { return d.order }

// ScalarCodec converts a 1-field record type to and from its flat value,
// used for Mass's dense form.
type ScalarCodec[T any] struct {
	Decompose func(T) float64
	Compose   func(float64) T
}

// DenseScalarStorage is the dense column form for single-field records
// (Mass).
type DenseScalarStorage[T any] struct {
	codec ScalarCodec[T]
	slots map[entity.Entity]int
	order []entity.Entity
	v     []float64
}

// NewDenseScalarStorage creates an empty dense scalar storage.
func NewDenseScalarStorage[T any](codec ScalarCodec[T]) *DenseScalarStorage[T] {
	return &DenseScalarStorage[T]{codec: codec, slots: make(map[entity.Entity]int)}
}

// Insert appends or overwrites e's record.
func (d *DenseScalarStorage[T]) Insert(e entity.Entity, value T) {
	v := d.codec.Decompose(value)
	if slot, ok := d.slots[e]; ok {
		d.v[slot] = v
		return
	}
	d.slots[e] = len(d.order)
	d.order = append(d.order, e)
	d.v = append(d.v, v)
}

// Remove swap-removes e's record and returns it.
func (d *DenseScalarStorage[T]) Remove(e entity.Entity) (T, bool) {
	slot, ok := d.slots[e]
	if !ok {
		var zero T
		return zero, false
	}
	removed := d.codec.Compose(d.v[slot])
	last := len(d.order) - 1

	if slot != last {
		movedEntity := d.order[last]
		d.v[slot] = d.v[last]
		d.order[slot] = movedEntity
		d.slots[movedEntity] = slot
	}

	d.v = d.v[:last]
	d.order = d.order[:last]
	delete(d.slots, e)
	return removed, true
}

// Get returns a copy of e's record and whether it is present.
func (d *DenseScalarStorage[T]) Get(e entity.Entity) (T, bool) {
	slot, ok := d.slots[e]
	if !ok {
		var zero T
		return zero, false
	}
	return d.codec.Compose(d.v[slot]), true
}

// Set overwrites e's record in place.
func (d *DenseScalarStorage[T]) Set(e entity.Entity, value T) bool {
	slot, ok := d.slots[e]
	if !ok {
		return false
	}
	d.v[slot] = d.codec.Decompose(value)
	return true
}

// Contains reports whether e has a record.
func (d *DenseScalarStorage[T]) Contains(e entity.Entity) bool {
	_, ok := d.slots[e]
	return ok
}

// Clear removes all records.
func (d *DenseScalarStorage[T]) Clear() {
	d.slots = make(map[entity.Entity]int)
	d.order = nil
	d.v = nil
}

// Len returns the number of stored records.
func (d *DenseScalarStorage[T]) Len() int { return len(d.order) }

// Values returns the dense, contiguous value slice in slot order.
func (d *DenseScalarStorage[T]) Values() []float64 { return d.v }

// Entities returns the slot-order slice of live entities.
func (d *DenseScalarStorage[T]) Entities() []entity.Entity { return d.order }
