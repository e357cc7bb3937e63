// Package systems provides ECS systems for the simulation.
package systems

import (
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/shoal/components"
	"github.com/pthm-cable/shoal/vec"
)

// CellKey identifies a grid cell: (floor(x/cellSize), floor(y/cellSize)).
type CellKey struct {
	X, Y int
}

// Neighbor is a snapshot of a fish taken when the grid was rebuilt.
// Steering reads only these snapshots, so the order fish are updated in
// does not matter.
type Neighbor struct {
	E        ecs.Entity
	Location vec.Vec2
	Velocity vec.Vec2
	Mass     float64
	DistSq   float64 // squared distance from the query origin, set by queries
}

// SpatialGrid is a uniform grid keyed by cell coordinates.
// Buckets are created lazily, so the grid is unbounded and needs no world size.
type SpatialGrid struct {
	cellSize float64
	cells    map[CellKey][]Neighbor
	count    int
}

// NewSpatialGrid creates an empty grid.
func NewSpatialGrid(cellSize float64) *SpatialGrid {
	return &SpatialGrid{
		cellSize: cellSize,
		cells:    make(map[CellKey][]Neighbor),
	}
}

// Key returns the cell containing p.
func (g *SpatialGrid) Key(p vec.Vec2) CellKey {
	return CellKey{
		X: int(math.Floor(p.X / g.cellSize)),
		Y: int(math.Floor(p.Y / g.cellSize)),
	}
}

// Clear drops all buckets.
func (g *SpatialGrid) Clear() {
	clear(g.cells)
	g.count = 0
}

// Insert adds a fish to the bucket of its current location.
func (g *SpatialGrid) Insert(e ecs.Entity, f *components.Fish) {
	key := g.Key(f.Location)
	g.cells[key] = append(g.cells[key], Neighbor{
		E:        e,
		Location: f.Location,
		Velocity: f.Velocity,
		Mass:     f.Mass,
	})
	g.count++
}

// UpdateGrid rebuilds the grid from scratch for the given entities.
func (g *SpatialGrid) UpdateGrid(entities []ecs.Entity, fishMap *ecs.Map1[components.Fish]) {
	g.Clear()
	for _, e := range entities {
		f := fishMap.Get(e)
		if f == nil {
			continue
		}
		g.Insert(e, f)
	}
}

// Query returns every snapshot within radius of p (inclusive).
func (g *SpatialGrid) Query(p vec.Vec2, radius float64) []Neighbor {
	return g.QueryInto(nil, p, radius)
}

// QueryInto appends every snapshot within radius of p to dst and returns it.
// Reuse dst across calls to avoid allocations.
func (g *SpatialGrid) QueryInto(dst []Neighbor, p vec.Vec2, radius float64) []Neighbor {
	if radius < 0 {
		return dst
	}
	fMinX := math.Floor((p.X - radius) / g.cellSize)
	fMaxX := math.Floor((p.X + radius) / g.cellSize)
	fMinY := math.Floor((p.Y - radius) / g.cellSize)
	fMaxY := math.Floor((p.Y + radius) / g.cellSize)

	radiusSq := radius * radius

	// Cell coordinates that do not fit an int cover every occupied cell.
	if !cellCoordFits(fMinX) || !cellCoordFits(fMaxX) || !cellCoordFits(fMinY) || !cellCoordFits(fMaxY) {
		for _, bucket := range g.cells {
			dst = appendWithin(dst, bucket, p, radiusSq)
		}
		return dst
	}
	minX, maxX := int(fMinX), int(fMaxX)
	minY, maxY := int(fMinY), int(fMaxY)

	// Scan whichever is smaller: the cell range or the occupied cells.
	span := float64(maxX-minX+1) * float64(maxY-minY+1)
	if span > float64(len(g.cells)) {
		for key, bucket := range g.cells {
			if key.X < minX || key.X > maxX || key.Y < minY || key.Y > maxY {
				continue
			}
			dst = appendWithin(dst, bucket, p, radiusSq)
		}
		return dst
	}

	for cx := minX; cx <= maxX; cx++ {
		for cy := minY; cy <= maxY; cy++ {
			bucket, ok := g.cells[CellKey{X: cx, Y: cy}]
			if !ok {
				continue
			}
			dst = appendWithin(dst, bucket, p, radiusSq)
		}
	}
	return dst
}

func appendWithin(dst, bucket []Neighbor, p vec.Vec2, radiusSq float64) []Neighbor {
	for _, n := range bucket {
		distSq := n.Location.DistanceSquared(p)
		if distSq <= radiusSq {
			n.DistSq = distSq
			dst = append(dst, n)
		}
	}
	return dst
}

// Resize is equivalent to Clear: cells do not depend on world bounds.
func (g *SpatialGrid) Resize(width, height float64) {
	g.Clear()
}

// CellSize returns the cell edge length.
func (g *SpatialGrid) CellSize() float64 {
	return g.cellSize
}

// OccupiedCells returns the number of non-empty buckets.
func (g *SpatialGrid) OccupiedCells() int {
	return len(g.cells)
}

// AgentCount returns the number of fish inserted since the last Clear.
func (g *SpatialGrid) AgentCount() int {
	return g.count
}

// MaxCellOccupancy returns the size of the fullest bucket.
func (g *SpatialGrid) MaxCellOccupancy() int {
	maxN := 0
	for _, bucket := range g.cells {
		if len(bucket) > maxN {
			maxN = len(bucket)
		}
	}
	return maxN
}

// ForEachCell calls fn for every occupied cell. Iteration order is unspecified.
func (g *SpatialGrid) ForEachCell(fn func(key CellKey, bucket []Neighbor)) {
	for key, bucket := range g.cells {
		fn(key, bucket)
	}
}

// maxCellCoord bounds cell coordinates so range spans stay exact in float64.
const maxCellCoord = 1 << 40

func cellCoordFits(c float64) bool {
	return c >= -maxCellCoord && c <= maxCellCoord
}
