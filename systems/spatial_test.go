package systems

import (
	"math"
	"math/rand"
	"reflect"
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/shoal/components"
	"github.com/pthm-cable/shoal/vec"
)

// testFlock creates one fish per position in a fresh ark world.
func testFlock(positions []vec.Vec2, masses []float64) (*ecs.Map1[components.Fish], []ecs.Entity) {
	world := ecs.NewWorld()
	fishMap := ecs.NewMap1[components.Fish](world)

	entities := make([]ecs.Entity, 0, len(positions))
	for i, p := range positions {
		mass := 1.0
		if masses != nil {
			mass = masses[i]
		}
		f := components.NewFish(uint32(i), mass, components.DefaultFactors())
		f.Location = p
		entities = append(entities, fishMap.NewEntity(&f))
	}
	return fishMap, entities
}

func entitySet(ns []Neighbor) map[ecs.Entity]bool {
	set := make(map[ecs.Entity]bool, len(ns))
	for _, n := range ns {
		set[n.E] = true
	}
	return set
}

func TestQueryMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for trial := 0; trial < 50; trial++ {
		n := 1 + rng.Intn(200)
		positions := make([]vec.Vec2, n)
		for i := range positions {
			// Include some points outside the nominal world
			positions[i] = vec.New(rng.Float64()*1000-100, rng.Float64()*800-100)
		}
		fishMap, entities := testFlock(positions, nil)

		cellSize := 10 + rng.Float64()*150
		grid := NewSpatialGrid(cellSize)
		grid.UpdateGrid(entities, fishMap)

		for q := 0; q < 20; q++ {
			p := vec.New(rng.Float64()*1000-100, rng.Float64()*800-100)
			r := rng.Float64() * 300
			if q == 0 {
				// Exact hit on a fish with zero radius
				p = positions[0]
				r = 0
			}

			var want []Neighbor
			for i, pos := range positions {
				if pos.DistanceSquared(p) <= r*r {
					want = append(want, Neighbor{E: entities[i]})
				}
			}

			got := grid.Query(p, r)
			if len(got) != len(want) || !reflect.DeepEqual(entitySet(got), entitySet(want)) {
				t.Fatalf("trial %d query %d (p=%v r=%v cell=%v): got %d fish, want %d",
					trial, q, p, r, cellSize, len(got), len(want))
			}
		}
	}
}

func TestQueryNoDuplicates(t *testing.T) {
	positions := []vec.Vec2{{X: 0, Y: 0}, {X: 50, Y: 50}, {X: 99.9, Y: 99.9}, {X: 100, Y: 100}}
	fishMap, entities := testFlock(positions, nil)
	grid := NewSpatialGrid(50)
	grid.UpdateGrid(entities, fishMap)

	got := grid.Query(vec.New(50, 50), 1000)
	if len(got) != len(positions) {
		t.Fatalf("got %d results, want %d", len(got), len(positions))
	}
	seen := make(map[ecs.Entity]bool)
	for _, n := range got {
		if seen[n.E] {
			t.Errorf("entity %v returned twice", n.E)
		}
		seen[n.E] = true
	}
}

func TestQueryDistSq(t *testing.T) {
	fishMap, entities := testFlock([]vec.Vec2{{X: 3, Y: 4}}, nil)
	grid := NewSpatialGrid(100)
	grid.UpdateGrid(entities, fishMap)

	got := grid.Query(vec.New(0, 0), 5)
	if len(got) != 1 {
		t.Fatalf("got %d results, want 1 (boundary is inclusive)", len(got))
	}
	if got[0].DistSq != 25 {
		t.Errorf("DistSq = %v, want 25", got[0].DistSq)
	}
}

func TestEveryFishInExactlyOneCell(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	positions := make([]vec.Vec2, 300)
	for i := range positions {
		positions[i] = vec.New(rng.Float64()*800, rng.Float64()*600)
	}
	fishMap, entities := testFlock(positions, nil)
	grid := NewSpatialGrid(64)
	grid.UpdateGrid(entities, fishMap)

	counts := make(map[ecs.Entity]int)
	grid.ForEachCell(func(key CellKey, bucket []Neighbor) {
		for _, n := range bucket {
			counts[n.E]++
			if grid.Key(n.Location) != key {
				t.Errorf("fish at %v stored in cell %v, want %v", n.Location, key, grid.Key(n.Location))
			}
		}
	})
	for _, e := range entities {
		if counts[e] != 1 {
			t.Errorf("entity %v appears in %d cells, want 1", e, counts[e])
		}
	}
	if grid.AgentCount() != len(entities) {
		t.Errorf("AgentCount = %d, want %d", grid.AgentCount(), len(entities))
	}
}

func snapshotCells(g *SpatialGrid) map[CellKey][]ecs.Entity {
	out := make(map[CellKey][]ecs.Entity)
	g.ForEachCell(func(key CellKey, bucket []Neighbor) {
		for _, n := range bucket {
			out[key] = append(out[key], n.E)
		}
	})
	return out
}

func TestUpdateGridIdempotent(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	positions := make([]vec.Vec2, 150)
	for i := range positions {
		positions[i] = vec.New(rng.Float64()*800, rng.Float64()*600)
	}
	fishMap, entities := testFlock(positions, nil)
	grid := NewSpatialGrid(50)

	grid.UpdateGrid(entities, fishMap)
	first := snapshotCells(grid)
	grid.UpdateGrid(entities, fishMap)
	second := snapshotCells(grid)

	if !reflect.DeepEqual(first, second) {
		t.Error("rebuilding the grid twice produced different cell mappings")
	}
	if grid.AgentCount() != len(entities) {
		t.Errorf("AgentCount after rebuild = %d, want %d", grid.AgentCount(), len(entities))
	}
}

func TestGridStatistics(t *testing.T) {
	positions := []vec.Vec2{
		{X: 5, Y: 5}, {X: 6, Y: 6}, {X: 7, Y: 7}, // cell (0,0)
		{X: 15, Y: 5},                            // cell (1,0)
		{X: -5, Y: -5},                           // cell (-1,-1)
	}
	fishMap, entities := testFlock(positions, nil)
	grid := NewSpatialGrid(10)
	grid.UpdateGrid(entities, fishMap)

	if got := grid.CellSize(); got != 10 {
		t.Errorf("CellSize = %v, want 10", got)
	}
	if got := grid.OccupiedCells(); got != 3 {
		t.Errorf("OccupiedCells = %d, want 3", got)
	}
	if got := grid.AgentCount(); got != 5 {
		t.Errorf("AgentCount = %d, want 5", got)
	}
	if got := grid.MaxCellOccupancy(); got != 3 {
		t.Errorf("MaxCellOccupancy = %d, want 3", got)
	}
	if got := grid.Key(vec.New(-5, -5)); got != (CellKey{X: -1, Y: -1}) {
		t.Errorf("Key(-5,-5) = %v, want (-1,-1)", got)
	}

	grid.Resize(2000, 2000)
	if grid.OccupiedCells() != 0 || grid.AgentCount() != 0 {
		t.Errorf("Resize should clear the grid, got %d cells %d fish", grid.OccupiedCells(), grid.AgentCount())
	}
}

func TestQueryIntoReusesBuffer(t *testing.T) {
	fishMap, entities := testFlock([]vec.Vec2{{X: 1, Y: 1}, {X: 2, Y: 2}}, nil)
	grid := NewSpatialGrid(10)
	grid.UpdateGrid(entities, fishMap)

	buf := make([]Neighbor, 0, 8)
	buf = grid.QueryInto(buf, vec.New(0, 0), 5)
	if len(buf) != 2 {
		t.Fatalf("len = %d, want 2", len(buf))
	}
	buf = grid.QueryInto(buf[:0], vec.New(100, 100), 5)
	if len(buf) != 0 {
		t.Errorf("len = %d, want 0", len(buf))
	}
}

func TestQueryHugeRadius(t *testing.T) {
	positions := []vec.Vec2{vec.New(10, 10), vec.New(790, 590), vec.New(-50, 400)}
	fishMap, entities := testFlock(positions, nil)
	grid := NewSpatialGrid(50)
	grid.UpdateGrid(entities, fishMap)

	tests := []struct {
		name   string
		p      vec.Vec2
		radius float64
	}{
		{"1e300", vec.New(400, 300), 1e300},
		{"infinite", vec.New(400, 300), math.Inf(1)},
		{"far origin", vec.New(1e100, -1e100), 1e300},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := grid.Query(tt.p, tt.radius); len(got) != len(positions) {
				t.Errorf("query r=%v: got %d fish, want %d", tt.radius, len(got), len(positions))
			}
		})
	}
}
