package kdtree

import (
	"github.com/pkg/errors"

	"github.com/df07/go-kdtracer/pkg/core"
)

// ErrInvalidTree is wrapped by every Validate failure
var ErrInvalidTree = errors.New("invalid kd-tree")

// Validate checks the structural invariants: every leaf box is the tight
// union of its primitives' boxes, every internal box is the union of its
// children's boxes, and every primitive is reachable from exactly one leaf.
func (t *Tree) Validate() error {
	if t.Empty() {
		if t.prims.Len() != 0 {
			return errors.Wrapf(ErrInvalidTree, "no nodes for %d primitives", t.prims.Len())
		}
		return nil
	}

	seen := make([]int, t.prims.Len())
	if err := t.validateNode(0, seen); err != nil {
		return err
	}
	for i, n := range seen {
		if n != 1 {
			return errors.Wrapf(ErrInvalidTree, "primitive %d referenced %d times", i, n)
		}
	}
	return nil
}

func (t *Tree) validateNode(id int, seen []int) error {
	if id < 0 || id >= len(t.nodes) {
		return errors.Wrapf(ErrInvalidTree, "node handle %d out of range", id)
	}
	node := &t.nodes[id]

	if node.IsLeaf() {
		if node.Count == 0 {
			return errors.Wrapf(ErrInvalidTree, "leaf %d is empty", id)
		}
		box := core.EmptyAABB()
		for _, i := range t.indices[node.Start : node.Start+node.Count] {
			box = box.Union(t.prims.BoundingBox(i))
			seen[i]++
		}
		if box != node.Box {
			return errors.Wrapf(ErrInvalidTree, "leaf %d box %v is not the union %v of its primitives", id, node.Box, box)
		}
		return nil
	}

	if err := t.validateNode(node.Left, seen); err != nil {
		return err
	}
	if err := t.validateNode(node.Right, seen); err != nil {
		return err
	}
	union := t.nodes[node.Left].Box.Union(t.nodes[node.Right].Box)
	if union != node.Box {
		return errors.Wrapf(ErrInvalidTree, "node %d box %v is not the union %v of its children", id, node.Box, union)
	}
	return nil
}
