package spatial

import (
	"sort"
	"testing"
)

func TestNewSpatialGridDimensions(t *testing.T) {
	tests := []struct {
		name         string
		w, h, cell   float64
		wantC, wantR int
		wantCellSize float64
	}{
		{"exact fit", 160, 120, 40, 4, 3, 40},
		{"partial cells round up", 170, 121, 40, 5, 4, 40},
		{"zero cell size defaults", 64, 64, 0, 2, 2, 32},
		{"tiny arena", 1, 1, 32, 1, 1, 32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewSpatialGrid(tt.w, tt.h, tt.cell, 16)
			c, r, cs := g.Dimensions()
			if c != tt.wantC || r != tt.wantR || cs != tt.wantCellSize {
				t.Errorf("Expected %dx%d @%v, got %dx%d @%v", tt.wantC, tt.wantR, tt.wantCellSize, c, r, cs)
			}
		})
	}
}

func TestQueryRadiusFindsNeighbours(t *testing.T) {
	g := NewSpatialGrid(160, 120, 32, 8)
	g.Insert(0, 10, 10)
	g.Insert(1, 40, 10)
	g.Insert(2, 150, 110)

	got := append([]uint32(nil), g.QueryRadius(20, 10, 15)...)
	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })

	if len(got) != 2 || got[0] != 0 || got[1] != 1 {
		t.Errorf("Expected slots [0 1], got %v", got)
	}

	far := g.QueryRadius(150, 110, 1)
	if len(far) != 1 || far[0] != 2 {
		t.Errorf("Expected slot 2 alone, got %v", far)
	}
}

func TestInsertOutsideClampsToEdge(t *testing.T) {
	g := NewSpatialGrid(64, 64, 32, 4)
	g.Insert(7, -50, 500)

	got := g.QueryRadius(0, 63, 1)
	if len(got) != 1 || got[0] != 7 {
		t.Errorf("Expected slot 7 in the bottom-left cell, got %v", got)
	}
}

func TestClearKeepsNothing(t *testing.T) {
	g := NewSpatialGrid(64, 64, 32, 4)
	for i := uint32(0); i < 10; i++ {
		g.Insert(i, float64(i*6), float64(i*6))
	}
	if g.Len() != 10 {
		t.Fatalf("Expected 10 slots, got %d", g.Len())
	}

	g.Clear()
	if g.Len() != 0 {
		t.Errorf("Expected empty grid, got %d", g.Len())
	}
	if got := g.QueryRadius(32, 32, 100); len(got) != 0 {
		t.Errorf("Expected no candidates, got %v", got)
	}
}
