package geo

import (
	"math"
	"testing"
)

var (
	campus = Point{Lat: 12.9716, Lon: 77.5946}
	// roughly 1km north of campus (1 degree latitude ~ 111.19 km)
	farAway = Point{Lat: 12.9716 + 1.0/111.19, Lon: 77.5946}
)

func TestDistanceSelf(t *testing.T) {
	pts := []Point{
		{0, 0},
		campus,
		{-33.8688, 151.2093},
		{51.5074, -0.1278},
	}
	for _, p := range pts {
		if d := Distance(p, p); d != 0 {
			t.Errorf("Distance(%v, %v) = %g, want 0", p, p, d)
		}
	}
}

func TestDistanceSymmetry(t *testing.T) {
	a := campus
	b := Point{Lat: 13.0827, Lon: 80.2707}
	ab, ba := Distance(a, b), Distance(b, a)
	if math.Abs(ab-ba) > 1e-9 {
		t.Errorf("Distance not symmetric: %g vs %g", ab, ba)
	}
}

func TestDistanceKnownSeparation(t *testing.T) {
	d := Distance(campus, farAway)
	if d < 900 || d > 1100 {
		t.Errorf("Distance ~1km apart = %gm, want within [900, 1100]", d)
	}
}

func TestWithinRadius(t *testing.T) {
	tests := []struct {
		name    string
		p       Point
		radiusM float64
		want    bool
	}{
		{name: "same point", p: campus, radiusM: 50, want: true},
		{name: "1km away default radius", p: farAway, radiusM: 50, want: false},
		{name: "1km away huge radius", p: farAway, radiusM: 2000, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WithinRadius(tt.p, campus, tt.radiusM); got != tt.want {
				t.Errorf("WithinRadius() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWithinRadiusMonotonic(t *testing.T) {
	// growing the radius can only flip the verdict false -> true
	prev := false
	for radius := 0.0; radius <= 5000; radius += 100 {
		got := WithinRadius(farAway, campus, radius)
		if prev && !got {
			t.Fatalf("verdict flipped true->false at radius %g", radius)
		}
		prev = got
	}
	if !prev {
		t.Fatal("expected point within 5km radius")
	}
}
