// Package entity provides generational entity handles and the World that
// allocates and recycles them.
package entity

import "fmt"

// Entity is an opaque handle naming a simulation object. Two handles are
// equal iff both Index and Generation match; a handle whose Generation no
// longer matches the slot's current generation refers to a dead entity.
type Entity struct {
	Index      uint64
	Generation uint32
}

// String returns a debug representation of the entity.
func (e Entity) String() string {
	return fmt.Sprintf("Entity(%d, gen=%d)", e.Index, e.Generation)
}
