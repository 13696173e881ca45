package debug

import (
	"math"
	"testing"

	"github.com/Faultbox/tristream/internal/stream"
	"github.com/Faultbox/tristream/pkg/tricoord"
)

func TestOutlinesClassify(t *testing.T) {
	gen, near, far, failed := tricoord.New(0, 0, 0), tricoord.New(0, 0, 1), tricoord.New(5, -3, -2), tricoord.New(1, 0, 0)
	// Snapshot slices are sorted, as the scheduler publishes them.
	snap := &stream.Snapshot{
		InRange:    []tricoord.TriCoord{gen, near, failed},
		Generating: []tricoord.TriCoord{gen},
		Generated:  []tricoord.TriCoord{near, far},
		Failed:     []tricoord.TriCoord{failed},
	}

	outlines := Outlines(snap)
	if len(outlines) != 4 {
		t.Fatalf("expected 4 outlines, got %d", len(outlines))
	}

	want := map[tricoord.TriCoord][3]float32{
		gen:    ColorGenerating,
		near:   ColorGeneratedNear,
		far:    ColorGeneratedFar,
		failed: ColorFailed,
	}
	for _, o := range outlines {
		if o.Color != want[o.Coord] {
			t.Errorf("%v (%s): color %v, want %v", o.Coord, o.State, o.Color, want[o.Coord])
		}
		if o.Corners != tricoord.Corners(o.Coord) {
			t.Errorf("%v: unexpected corners", o.Coord)
		}
	}
}

func TestOutlinesNil(t *testing.T) {
	if Outlines(nil) != nil {
		t.Error("expected nil outlines for nil snapshot")
	}
}

func TestOutlineLines(t *testing.T) {
	o := newOutline(tricoord.New(0, 0, 0), stream.StateGenerated, true, ColorGeneratedNear)
	lines := OutlineLines([]Outline{o}, 1.5)
	if len(lines) != 6 {
		t.Fatalf("expected 6 vertices, got %d", len(lines))
	}
	for i, v := range lines {
		if v.Y != 1.5 || v.R != 1 || v.G != 0 || v.B != 0 {
			t.Errorf("vertex %d = %+v", i, v)
		}
	}
	// Segments close the triangle.
	if lines[5].X != lines[0].X || lines[5].Z != lines[0].Z {
		t.Error("outline is not closed")
	}
}

func TestRadiusCircle(t *testing.T) {
	center := tricoord.Coord[float32]{X: 3, Z: -4}
	lines := RadiusCircle(center, 10, 0)
	if len(lines) != defaultCircleDetail*2 {
		t.Fatalf("expected %d vertices, got %d", defaultCircleDetail*2, len(lines))
	}
	for i, v := range lines {
		d := math.Hypot(float64(v.X-center.X), float64(v.Z-center.Z))
		if math.Abs(d-10) > 1e-3 {
			t.Fatalf("vertex %d at distance %v", i, d)
		}
	}
}

func TestOriginAxes(t *testing.T) {
	axes := OriginAxes(4)
	if len(axes) != 4 || axes[1].X != 4 || axes[3].Z != 4 {
		t.Errorf("unexpected axes %+v", axes)
	}
}

func TestLinesFollowToggles(t *testing.T) {
	snap := &stream.Snapshot{
		PlayerKnown: true,
		Player:      tricoord.Coord[float32]{X: 3, Z: -1},
		InRange:     []tricoord.TriCoord{tricoord.New(0, 0, 0)},
		Generated:   []tricoord.TriCoord{tricoord.New(0, 0, 0)},
	}
	outlines := Outlines(snap)

	tests := []struct {
		name          string
		origin, chunk bool
		want          int
	}{
		{"off", false, false, 0},
		{"origin", true, false, 4},
		{"chunks", false, true, 6 + 2*defaultCircleDetail},
		{"both", true, true, 4 + 6 + 2*defaultCircleDetail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap.Control = stream.ControlValues{Radius: 10, OriginGizmo: tt.origin, ChunkGizmo: tt.chunk}
			if got := len(Lines(snap, outlines)); got != tt.want {
				t.Errorf("expected %d line vertices, got %d", tt.want, got)
			}
		})
	}

	snap.PlayerKnown = false
	snap.Control.ChunkGizmo = true
	snap.Control.OriginGizmo = false
	if got := len(Lines(snap, outlines)); got != 6 {
		t.Errorf("expected only outlines without a player, got %d vertices", got)
	}
	if Lines(nil, nil) != nil {
		t.Error("expected nil lines for a nil snapshot")
	}
}
