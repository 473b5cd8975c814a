// Package octree builds and queries the spatial index over the star catalog.
// Construction runs in two phases: a dynamic octree accepts unordered
// insertions, then a single depth-first rewrite produces an immutable tree
// whose stars live in one contiguous array in traversal order, with each
// node holding an index range instead of per-star pointers.
//
// Bright stars live near the root; each level fainter stars are admitted,
// so a traversal can stop descending as soon as a node's magnitude floor is
// fainter than the query's limiting magnitude.
package octree

import (
	"math"

	"github.com/nightsky-software/stardb-go/internal/astro"
	"github.com/nightsky-software/stardb-go/internal/catalog"
)

const (
	// A node keeps accumulating stars fainter than its floor until it has
	// this many, then splits them into children.
	splitThreshold = 75

	// Each level admits stars half a magnitude fainter.
	exclusionMagDecay = 0.5

	sqrt3 = 1.7320508075688772
)

// Quat is a rotation quaternion (scalar first).
type Quat struct {
	W, X, Y, Z float32
}

// IdentityQuat is the no-rotation orientation.
var IdentityQuat = Quat{W: 1}

// InverseRotate applies the inverse of the quaternion's rotation to v,
// mapping a camera-space direction into world space.
func (q Quat) InverseRotate(v catalog.Vec3) catalog.Vec3 {
	// R^T * v for the rotation matrix of q.
	w, x, y, z := q.W, q.X, q.Y, q.Z
	return catalog.Vec3{
		X: (1-2*(y*y+z*z))*v.X + 2*(x*y+w*z)*v.Y + 2*(x*z-w*y)*v.Z,
		Y: 2*(x*y-w*z)*v.X + (1-2*(x*x+z*z))*v.Y + 2*(y*z+w*x)*v.Z,
		Z: 2*(x*z+w*y)*v.X + 2*(y*z-w*x)*v.Y + (1-2*(x*x+y*y))*v.Z,
	}
}

// dynamicNode is a node of the build-time octree. It owns its children.
type dynamicNode struct {
	center       catalog.Vec3
	exclusionMag float32
	stars        []*catalog.Star
	children     *[8]*dynamicNode
}

func newDynamicNode(center catalog.Vec3, exclusionMag float32) *dynamicNode {
	return &dynamicNode{center: center, exclusionMag: exclusionMag}
}

// insert places a star at the shallowest node whose magnitude floor it
// satisfies and whose region contains its position. scale is this node's
// half-width.
func (n *dynamicNode) insert(s *catalog.Star, scale float32) {
	if s.AbsoluteMagnitude() <= n.exclusionMag {
		n.stars = append(n.stars, s)
		return
	}

	if n.children == nil {
		if len(n.stars) < splitThreshold {
			n.stars = append(n.stars, s)
			return
		}
		n.split(scale * 0.5)
	}
	n.childFor(s.Position()).insert(s, scale*0.5)
}

// split creates the eight children and pushes down every star fainter than
// this node's floor. scale is the child half-width (and child center offset).
func (n *dynamicNode) split(scale float32) {
	var children [8]*dynamicNode
	for i := range children {
		center := n.center
		if i&1 != 0 {
			center.X += scale
		} else {
			center.X -= scale
		}
		if i&2 != 0 {
			center.Y += scale
		} else {
			center.Y -= scale
		}
		if i&4 != 0 {
			center.Z += scale
		} else {
			center.Z -= scale
		}
		children[i] = newDynamicNode(center, n.exclusionMag+exclusionMagDecay)
	}
	n.children = &children

	kept := n.stars[:0]
	for _, s := range n.stars {
		if s.AbsoluteMagnitude() <= n.exclusionMag {
			kept = append(kept, s)
		} else {
			n.childFor(s.Position()).insert(s, scale)
		}
	}
	n.stars = kept
}

func (n *dynamicNode) childFor(p catalog.Vec3) *dynamicNode {
	i := 0
	if p.X >= n.center.X {
		i |= 1
	}
	if p.Y >= n.center.Y {
		i |= 2
	}
	if p.Z >= n.center.Z {
		i |= 4
	}
	return n.children[i]
}

// Node is one region of the immutable octree. Its stars are the half-open
// range [First, First+Count) of the tree's contiguous star array.
type Node struct {
	Center       catalog.Vec3
	ExclusionMag float32
	First        int
	Count        int
	Children     *[8]*Node
}

// Tree is the finished spatial index: the node hierarchy plus the single
// contiguous star array in depth-first order.
type Tree struct {
	Root     *Node
	Stars    []catalog.Star
	RootSize float32
}

// DefaultRootSize bounds the whole catalog; large enough to contain the
// local group of galaxies, in light years.
const DefaultRootSize = 1.0e9

// DefaultRootMagnitude is the apparent magnitude at the far corner of the
// root cell from which the root's absolute magnitude floor is derived.
const DefaultRootMagnitude = 6.0

// RootExclusionMag returns the absolute magnitude floor of the root node
// for a given root size.
func RootExclusionMag(rootSize float32) float32 {
	return float32(astro.AppToAbsMag(DefaultRootMagnitude, float64(rootSize)*sqrt3))
}

// Build sorts the staged stars into an octree and rewrites it into the
// immutable contiguous form. The returned tree owns its star array; the
// input pointers are dead after Build.
func Build(stars []*catalog.Star, rootCenter catalog.Vec3, rootSize float32) *Tree {
	root := newDynamicNode(rootCenter, RootExclusionMag(rootSize))
	for _, s := range stars {
		root.insert(s, rootSize)
	}

	t := &Tree{
		Stars:    make([]catalog.Star, 0, len(stars)),
		RootSize: rootSize,
	}
	t.Root = t.flatten(root)
	return t
}

// flatten copies the dynamic node's stars into the contiguous array in
// depth-first order and fixes the node's index range.
func (t *Tree) flatten(dyn *dynamicNode) *Node {
	n := &Node{
		Center:       dyn.center,
		ExclusionMag: dyn.exclusionMag,
		First:        len(t.Stars),
		Count:        len(dyn.stars),
	}
	for _, s := range dyn.stars {
		t.Stars = append(t.Stars, *s)
	}

	if dyn.children != nil {
		var children [8]*Node
		for i, c := range dyn.children {
			children[i] = t.flatten(c)
		}
		n.Children = &children
	}
	return n
}

// CountNodes returns the number of nodes in the tree.
func (t *Tree) CountNodes() int {
	return countNodes(t.Root)
}

func countNodes(n *Node) int {
	if n == nil {
		return 0
	}
	count := 1
	if n.Children != nil {
		for _, c := range n.Children {
			count += countNodes(c)
		}
	}
	return count
}

type halfSpace struct {
	normal catalog.Vec3
	origin catalog.Vec3
}

func (p halfSpace) signedDistance(v catalog.Vec3) float32 {
	return p.normal.Dot(v.Sub(p.origin))
}

// ProcessVisibleStars emits every star inside the infinite view frustum
// whose absolute magnitude is at or brighter than limitingMag. The frustum
// is defined by the eye position, an orientation quaternion, a vertical
// field of view in radians, and an aspect ratio. Emission order is
// unspecified.
func (t *Tree) ProcessVisibleStars(pos catalog.Vec3, orientation Quat, fovY, aspect, limitingMag float32, emit func(*catalog.Star)) {
	h := float32(math.Tan(float64(fovY) / 2))
	w := h * aspect

	cameraNormals := [5]catalog.Vec3{
		{X: 0, Y: 1, Z: -h},
		{X: 0, Y: -1, Z: -h},
		{X: 1, Y: 0, Z: -w},
		{X: -1, Y: 0, Z: -w},
		{X: 0, Y: 0, Z: -1},
	}

	var planes [5]halfSpace
	for i, n := range cameraNormals {
		length := n.Length()
		n = catalog.Vec3{X: n.X / length, Y: n.Y / length, Z: n.Z / length}
		planes[i] = halfSpace{normal: orientation.InverseRotate(n), origin: pos}
	}

	t.processVisible(t.Root, &planes, limitingMag, t.RootSize, emit)
}

func (t *Tree) processVisible(n *Node, planes *[5]halfSpace, limitingMag, scale float32, emit func(*catalog.Star)) {
	boundingRadius := scale * sqrt3
	for _, p := range planes {
		if p.signedDistance(n.Center) < -boundingRadius {
			return
		}
	}

	for i := n.First; i < n.First+n.Count; i++ {
		s := &t.Stars[i]
		if s.AbsoluteMagnitude() <= limitingMag {
			emit(s)
		}
	}

	// Children only hold stars fainter than this node's floor.
	if n.Children == nil || n.ExclusionMag >= limitingMag {
		return
	}
	for _, c := range n.Children {
		t.processVisible(c, planes, limitingMag, scale*0.5, emit)
	}
}

// ProcessCloseStars emits every star within radius of pos, with no
// magnitude filtering.
func (t *Tree) ProcessCloseStars(pos catalog.Vec3, radius float32, emit func(*catalog.Star)) {
	t.processClose(t.Root, pos, radius, t.RootSize, emit)
}

func (t *Tree) processClose(n *Node, pos catalog.Vec3, radius, scale float32, emit func(*catalog.Star)) {
	reach := radius + scale*sqrt3
	d := n.Center.Sub(pos)
	if d.Dot(d) > reach*reach {
		return
	}

	r2 := radius * radius
	for i := n.First; i < n.First+n.Count; i++ {
		s := &t.Stars[i]
		dv := s.Position().Sub(pos)
		if dv.Dot(dv) <= r2 {
			emit(s)
		}
	}

	if n.Children == nil {
		return
	}
	for _, c := range n.Children {
		t.processClose(c, pos, radius, scale*0.5, emit)
	}
}
