package kdtree

import (
	"github.com/df07/go-kdtracer/pkg/core"
)

// Hit returns the nearest primitive hit with T in (tMin, tMax).
// Both children of an internal node are visited, nearer box first, and a
// subtree is skipped once its entry distance exceeds the best hit so far.
func (t *Tree) Hit(ray core.Ray, tMin, tMax float64) (Hit, bool) {
	if t.Empty() {
		return Hit{}, false
	}

	hit, near := t.nodes[0].Box.Intersect(ray)
	if !hit || near > tMax {
		return Hit{}, false
	}
	return t.hitNode(0, ray, tMin, tMax)
}

func (t *Tree) hitNode(id int, ray core.Ray, tMin, tMax float64) (Hit, bool) {
	node := &t.nodes[id]

	if node.IsLeaf() {
		var closest Hit
		found := false
		for _, i := range t.indices[node.Start : node.Start+node.Count] {
			if h, ok := t.prims.Intersect(i, ray, tMin, tMax); ok {
				h.Index = i
				closest = h
				tMax = h.T
				found = true
			}
		}
		return closest, found
	}

	first, second := node.Left, node.Right
	firstHit, firstNear := t.nodes[first].Box.Intersect(ray)
	secondHit, secondNear := t.nodes[second].Box.Intersect(ray)
	if secondHit && (!firstHit || secondNear < firstNear) {
		first, second = second, first
		firstHit, secondHit = secondHit, firstHit
		firstNear, secondNear = secondNear, firstNear
	}

	var closest Hit
	found := false
	if firstHit && firstNear <= tMax {
		if h, ok := t.hitNode(first, ray, tMin, tMax); ok {
			closest, found = h, true
			tMax = h.T
		}
	}
	if secondHit && secondNear <= tMax {
		if h, ok := t.hitNode(second, ray, tMin, tMax); ok {
			closest, found = h, true
		}
	}
	return closest, found
}
