package pattern_test

import (
	"math"
	"testing"

	"github.com/kmorrill/tonicmidi/pattern"
)

func almost(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestLFOShapes(t *testing.T) {
	// One cycle per beat, depth 10 around 64; sample at quarter-phase
	// points where every waveform has an exact value.
	cases := []struct {
		shape pattern.Shape
		beats []float64
		want  []float64
	}{
		{pattern.ShapeSine, []float64{0, 0.25, 0.5, 0.75}, []float64{64, 74, 64, 54}},
		{pattern.ShapeTriangle, []float64{0, 0.25, 0.5, 0.75}, []float64{54, 64, 74, 64}},
		{pattern.ShapeSquare, []float64{0, 0.25, 0.5, 0.75}, []float64{74, 74, 54, 54}},
		{pattern.ShapeRamp, []float64{0, 0.25, 0.5, 0.75}, []float64{54, 59, 64, 69}},
	}
	for _, c := range cases {
		l := pattern.NewLFO(c.shape, 1, 10, 64)
		for i, b := range c.beats {
			got := l.UpdateAt(b)
			if !almost(got, c.want[i]) {
				t.Errorf("shape %d at beat %v = %v, want %v", c.shape, b, got, c.want[i])
			}
		}
	}
}

func TestLFODeltaAccumulation(t *testing.T) {
	l := pattern.NewLFO(pattern.ShapeRamp, 1, 10, 64)

	var last float64
	for i := 0; i < 4; i++ {
		last = l.Update(0.25)
	}
	// Four quarter-beat deltas land back on phase 1.0 = phase 0
	if !almost(last, 54) {
		t.Errorf("after one full cycle of deltas = %v, want 54", last)
	}
}

func TestLFOUpdateAtPinsPhase(t *testing.T) {
	l := pattern.NewLFO(pattern.ShapeRamp, 1, 10, 64)

	l.Update(0.9) // drift in
	l.UpdateAt(2.5)
	got := l.Update(0.25) // continues from the pinned phase

	if !almost(got, 69) { // phase 2.75 -> ramp at 0.75
		t.Errorf("delta after pin = %v, want 69", got)
	}
}

func TestLFODefaults(t *testing.T) {
	l := pattern.NewLFO(pattern.ShapeSine, 0, 0, 0)
	if l.Rate != 0.25 || l.Depth != 63 || l.Off != 64 {
		t.Errorf("defaults = rate %v depth %v off %v", l.Rate, l.Depth, l.Off)
	}
}

func TestParseShape(t *testing.T) {
	cases := map[string]pattern.Shape{
		"sine":     pattern.ShapeSine,
		"triangle": pattern.ShapeTriangle,
		"tri":      pattern.ShapeTriangle,
		"square":   pattern.ShapeSquare,
		"saw":      pattern.ShapeRamp,
		"ramp":     pattern.ShapeRamp,
		"":         pattern.ShapeSine,
		"bogus":    pattern.ShapeSine,
	}
	for in, want := range cases {
		if got := pattern.ParseShape(in); got != want {
			t.Errorf("ParseShape(%q) = %d, want %d", in, got, want)
		}
	}
}
