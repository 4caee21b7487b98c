// Package kdtree is a bounding-volume KD-tree over an indexed set of
// primitives. The tree only stores primitive indices; the primitives
// themselves stay with their owner (a mesh or a scene).
package kdtree

import (
	"github.com/df07/go-kdtracer/pkg/core"
)

// DefaultMaxDepth bounds recursion when Options.MaxDepth is unset
const DefaultMaxDepth = 32

// Hit is the nearest primitive hit found by a traversal
type Hit struct {
	Index int     // Primitive index, filled in by the tree
	T     float64 // Ray parameter
	U, V  float64 // Primitive-specific surface parameters (barycentrics for triangles)
}

// Primitives is the indexed set a tree is built over
type Primitives interface {
	Len() int
	BoundingBox(i int) core.AABB
	Centroid(i int) core.Vec3
	// Intersect reports a hit with T strictly inside (tMin, tMax)
	Intersect(i int, ray core.Ray, tMin, tMax float64) (Hit, bool)
}

// Options controls tree construction
type Options struct {
	MaxDepth int // Depth at which nodes become leaves regardless of size (0 = DefaultMaxDepth)
}

// Node is either an internal node with two children or a leaf holding a
// range of the tree's reordered index slice.
type Node struct {
	Box         core.AABB
	Axis        core.Axis // Split axis (internal nodes only)
	Left, Right int       // Child handles, -1 for leaves
	Start       int       // First position in the index slice (leaves only)
	Count       int       // Number of primitives (leaves only)
}

// IsLeaf reports whether the node holds primitives directly
func (n *Node) IsLeaf() bool {
	return n.Left < 0
}

// Stats summarizes a built tree
type Stats struct {
	Primitives  int
	Nodes       int
	Leaves      int
	MaxDepth    int
	MaxLeafSize int
}

// Tree is an arena-allocated KD-tree. Node 0 is the root. A built tree is
// read-only and safe for concurrent traversal.
type Tree struct {
	prims    Primitives
	nodes    []Node
	indices  []int
	maxDepth int
	stats    Stats
}

// Build constructs a tree over every primitive in prims
func Build(prims Primitives, opts Options) *Tree {
	n := prims.Len()
	t := &Tree{
		prims:    prims,
		indices:  make([]int, n),
		maxDepth: opts.MaxDepth,
	}
	if t.maxDepth <= 0 {
		t.maxDepth = DefaultMaxDepth
	}
	t.stats.Primitives = n

	if n == 0 {
		return t
	}

	for i := range t.indices {
		t.indices[i] = i
	}
	// A balanced tree has about 2n nodes
	t.nodes = make([]Node, 0, 2*n)
	t.build(0, n, 0)
	t.stats.Nodes = len(t.nodes)

	return t
}

// build creates the node for indices[start:end] and returns its handle
func (t *Tree) build(start, end, depth int) int {
	box := core.EmptyAABB()
	for _, i := range t.indices[start:end] {
		box = box.Union(t.prims.BoundingBox(i))
	}

	if depth > t.stats.MaxDepth {
		t.stats.MaxDepth = depth
	}

	count := end - start
	if count == 1 || depth >= t.maxDepth {
		return t.leaf(box, start, count)
	}

	// Split at the mean centroid along the longest axis
	axis := box.LongestAxis()
	mean := 0.0
	for _, i := range t.indices[start:end] {
		mean += t.prims.Centroid(i).Component(axis)
	}
	mean /= float64(count)

	mid := t.partition(start, end, axis, mean)
	if mid == start || mid == end {
		// Nothing separated the set; subdividing further would not terminate
		return t.leaf(box, start, count)
	}

	id := len(t.nodes)
	t.nodes = append(t.nodes, Node{Box: box, Axis: axis})
	left := t.build(start, mid, depth+1)
	right := t.build(mid, end, depth+1)
	t.nodes[id].Left = left
	t.nodes[id].Right = right

	return id
}

// partition moves primitives with centroid below mean to the front of the
// range and returns the first position of the right side
func (t *Tree) partition(start, end int, axis core.Axis, mean float64) int {
	mid := start
	for j := start; j < end; j++ {
		if t.prims.Centroid(t.indices[j]).Component(axis) < mean {
			t.indices[mid], t.indices[j] = t.indices[j], t.indices[mid]
			mid++
		}
	}
	return mid
}

func (t *Tree) leaf(box core.AABB, start, count int) int {
	id := len(t.nodes)
	t.nodes = append(t.nodes, Node{Box: box, Left: -1, Right: -1, Start: start, Count: count})
	t.stats.Leaves++
	if count > t.stats.MaxLeafSize {
		t.stats.MaxLeafSize = count
	}
	return id
}

// Empty reports whether the tree has no nodes
func (t *Tree) Empty() bool {
	return len(t.nodes) == 0
}

// Bounds returns the root box, or an empty box for an empty tree
func (t *Tree) Bounds() core.AABB {
	if t.Empty() {
		return core.EmptyAABB()
	}
	return t.nodes[0].Box
}

// Stats returns construction statistics
func (t *Tree) Stats() Stats {
	return t.stats
}
