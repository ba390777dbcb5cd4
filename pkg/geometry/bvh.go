package geometry

import (
	"math"

	"github.com/df07/go-mis-pathtracer/pkg/core"
)

// Leaf threshold: if we have this many or fewer surfaces, store them in a leaf node
const leafThreshold = 8

// bvhNode represents a node in the bounding volume hierarchy
type bvhNode struct {
	bounds   core.AABB
	left     *bvhNode
	right    *bvhNode
	surfaces []Surface // leaf payload, nil for internal nodes
}

// BVH accelerates the discrete surfaces of a GeometryList with a bounding
// volume hierarchy. Isosurfaces are still marched as a list.
type BVH struct {
	root        *bvhNode
	isosurfaces []Isosurface
}

// NewBVH builds a hierarchy over the list's current contents. Later
// additions to the list are not seen by the BVH.
func NewBVH(list *GeometryList) *BVH {
	surfaces := make([]Surface, len(list.surfaces))
	copy(surfaces, list.surfaces)

	bvh := &BVH{isosurfaces: list.isosurfaces}
	if len(surfaces) > 0 {
		bvh.root = buildBVH(surfaces)
	}
	return bvh
}

// buildBVH splits at the midpoint of the longest axis of the bounds
func buildBVH(surfaces []Surface) *bvhNode {
	bounds := core.EmptyAABB()
	for _, s := range surfaces {
		bounds = bounds.Union(s.Primitive.BoundingBox())
	}

	if len(surfaces) <= leafThreshold {
		return &bvhNode{bounds: bounds, surfaces: surfaces}
	}

	axis := bounds.LongestAxis()
	lo, hi := bounds.Min.Axis(axis), bounds.Max.Axis(axis)
	if hi <= lo {
		return &bvhNode{bounds: bounds, surfaces: surfaces}
	}
	split := 0.5 * (lo + hi)

	var left, right []Surface
	for _, s := range surfaces {
		if s.Primitive.BoundingBox().Center().Axis(axis) < split {
			left = append(left, s)
		} else {
			right = append(right, s)
		}
	}

	// Ensure we don't create empty partitions
	if len(left) == 0 || len(right) == 0 {
		return &bvhNode{bounds: bounds, surfaces: surfaces}
	}

	return &bvhNode{
		bounds: bounds,
		left:   buildBVH(left),
		right:  buildBVH(right),
	}
}

// NearestIntersection implements Manager
func (b *BVH) NearestIntersection(ray core.Ray) (SurfaceIntersection, bool) {
	geoRay := ray.Advance(core.EpsRayGeometry)
	nearest, found := SurfaceIntersection{}, false
	if b.root != nil {
		nearest, found = b.root.nearest(geoRay, nearest, found)
	}
	return nearestWithFields(b.isosurfaces, ray, nearest, found)
}

func (n *bvhNode) nearest(ray core.Ray, best SurfaceIntersection, found bool) (SurfaceIntersection, bool) {
	tMax := math.Inf(1)
	if found {
		tMax = best.Distance
	}
	if !n.bounds.Hit(ray, 0, tMax) {
		return best, found
	}

	if n.surfaces != nil {
		for _, s := range n.surfaces {
			isect, ok := s.Intersect(ray)
			if ok && (!found || isect.Distance < best.Distance) {
				best, found = isect, true
			}
		}
		return best, found
	}

	best, found = n.left.nearest(ray, best, found)
	return n.right.nearest(ray, best, found)
}

// WasOccluded implements Manager
func (b *BVH) WasOccluded(ray core.Ray, maxDistance float64) bool {
	geoRay := ray.Advance(core.EpsRayGeometry)
	geoDist := maxDistance - 2*core.EpsRayGeometry
	if b.root != nil && geoDist > 0 && b.root.occluded(geoRay, geoDist) {
		return true
	}
	return fieldsOccluded(b.isosurfaces, ray, maxDistance)
}

func (n *bvhNode) occluded(ray core.Ray, maxDistance float64) bool {
	if !n.bounds.Hit(ray, 0, maxDistance) {
		return false
	}
	if n.surfaces != nil {
		for _, s := range n.surfaces {
			if isect, ok := s.Primitive.Intersect(ray); ok && isect.Distance < maxDistance {
				return true
			}
		}
		return false
	}
	return n.left.occluded(ray, maxDistance) || n.right.occluded(ray, maxDistance)
}

// Bounds implements Manager
func (b *BVH) Bounds() core.AABB {
	if b.root == nil {
		return core.EmptyAABB()
	}
	return b.root.bounds
}

// Stats returns the number of nodes, leaves and the maximum depth
func (b *BVH) Stats() (nodes, leaves, depth int) {
	var walk func(n *bvhNode, d int)
	walk = func(n *bvhNode, d int) {
		nodes++
		depth = max(depth, d)
		if n.surfaces != nil {
			leaves++
			return
		}
		walk(n.left, d+1)
		walk(n.right, d+1)
	}
	if b.root != nil {
		walk(b.root, 0)
	}
	return nodes, leaves, depth
}
