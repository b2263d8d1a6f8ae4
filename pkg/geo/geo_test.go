package geo

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
)

func TestDistanceKnownPair(t *testing.T) {
	// Marina Bay Sands to Changi Airport, roughly 17.1 km.
	a := orb.Point{103.8614, 1.2834}
	b := orb.Point{103.9915, 1.3644}
	d := Distance(a, b)
	if d < 16_000 || d > 19_000 {
		t.Errorf("Distance = %f m, want ~17100", d)
	}
}

func TestEquirectangularMatchesAtSegmentScale(t *testing.T) {
	// ~111 m apart. The approximation should be within 1% here.
	a := orb.Point{103.800, 1.300}
	b := orb.Point{103.801, 1.300}
	exact := Distance(a, b)
	approx := EquirectangularDist(a, b)
	if rel := math.Abs(approx-exact) / exact; rel > 0.01 {
		t.Errorf("relative error = %f (exact %f, approx %f)", rel, exact, approx)
	}
}

func TestPointToSegmentDist(t *testing.T) {
	a := orb.Point{103.800, 1.300}
	b := orb.Point{103.802, 1.300}

	// Directly above the midpoint.
	dist, ratio := PointToSegmentDist(orb.Point{103.801, 1.301}, a, b)
	if math.Abs(ratio-0.5) > 0.01 {
		t.Errorf("ratio = %f, want 0.5", ratio)
	}
	if dist < 100 || dist > 125 {
		t.Errorf("dist = %f m, want ~111", dist)
	}

	// Beyond the far endpoint: ratio clamps to 1.
	_, ratio = PointToSegmentDist(orb.Point{103.805, 1.300}, a, b)
	if ratio != 1 {
		t.Errorf("ratio = %f, want clamped 1", ratio)
	}

	// Degenerate zero-length segment.
	dist, ratio = PointToSegmentDist(orb.Point{103.801, 1.300}, a, a)
	if ratio != 0 {
		t.Errorf("degenerate ratio = %f, want 0", ratio)
	}
	if dist < 100 || dist > 125 {
		t.Errorf("degenerate dist = %f m, want ~111", dist)
	}
}
