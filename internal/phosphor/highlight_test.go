package phosphor

import (
	"testing"

	"crtscope/internal/geom"
)

func TestDirectionChangesDetectsSharpTurn(t *testing.T) {
	original := []geom.Point{
		{X: 0, Y: 0},
		{X: 10, Y: 0},
		{X: 10, Y: 10},
	}
	highlights := DirectionChanges(original)
	if len(highlights) != 1 {
		t.Fatalf("expected one highlight for a 90-degree turn, got %d", len(highlights))
	}
	if highlights[0].Index != 1 {
		t.Errorf("expected highlight at index 1, got %d", highlights[0].Index)
	}
}

func TestDirectionChangesIgnoresStraightLine(t *testing.T) {
	original := []geom.Point{
		{X: 0, Y: 0},
		{X: 10, Y: 0},
		{X: 20, Y: 0},
	}
	if highlights := DirectionChanges(original); len(highlights) != 0 {
		t.Errorf("a straight line should produce no highlights, got %d", len(highlights))
	}
}

func TestDirectionChangesTooShort(t *testing.T) {
	if highlights := DirectionChanges([]geom.Point{{X: 0, Y: 0}, {X: 1, Y: 1}}); highlights != nil {
		t.Errorf("fewer than 3 points should produce no highlights, got %v", highlights)
	}
}

func TestDirectionChangesInvariantToInterpolation(t *testing.T) {
	// Inserting a point that lies exactly on an existing straight
	// segment (as temporal interpolation would, between two original
	// points moving at constant velocity) must not introduce a new
	// highlight nor change the one already present.
	withoutExtra := []geom.Point{
		{X: 0, Y: 0},
		{X: 10, Y: 0},
		{X: 10, Y: 10},
	}
	withExtra := []geom.Point{
		{X: 0, Y: 0},
		{X: 5, Y: 0},
		{X: 10, Y: 0},
		{X: 10, Y: 10},
	}

	a := DirectionChanges(withoutExtra)
	b := DirectionChanges(withExtra)
	if len(a) != 1 || len(b) != 1 {
		t.Fatalf("expected exactly one highlight in each case, got %d and %d", len(a), len(b))
	}
	if a[0].Brightness != b[0].Brightness {
		t.Errorf("inserting a collinear point changed highlight brightness: %v vs %v", a[0].Brightness, b[0].Brightness)
	}
}
