package pattern

import "math"

// Shape selects the LFO waveform.
type Shape uint8

const (
	ShapeSine Shape = iota
	ShapeTriangle
	ShapeSquare
	ShapeRamp
)

// ParseShape maps a config string to a Shape, defaulting to sine.
func ParseShape(s string) Shape {
	switch s {
	case "triangle", "tri":
		return ShapeTriangle
	case "square", "sq":
		return ShapeSquare
	case "ramp", "saw":
		return ShapeRamp
	}
	return ShapeSine
}

// LFO is a beat-synced modulation source producing CC-range values:
// Offset +/- Depth around the waveform, clamped by the consumer. Rate
// is in cycles per beat. It supports both delta accumulation and
// evaluation at an absolute beat position, so the transport's per-pulse
// updates stay drift-free.
type LFO struct {
	Shape Shape
	Rate  float64 // cycles per beat
	Depth float64 // half-swing in CC units
	Off   float64 // center value

	phase float64 // cycles, fractional
}

// NewLFO creates an LFO. Zero depth/offset default to a full-range
// sweep centered at 64.
func NewLFO(shape Shape, rate, depth, offset float64) *LFO {
	if rate <= 0 {
		rate = 0.25
	}
	if depth == 0 {
		depth = 63
	}
	if offset == 0 {
		offset = 64
	}
	return &LFO{Shape: shape, Rate: rate, Depth: depth, Off: offset}
}

func (l *LFO) wave(phase float64) float64 {
	p := phase - math.Floor(phase)
	switch l.Shape {
	case ShapeTriangle:
		// -1 at 0, +1 at 0.5
		return 1 - 4*math.Abs(p-0.5)
	case ShapeSquare:
		if p < 0.5 {
			return 1
		}
		return -1
	case ShapeRamp:
		return 2*p - 1
	default:
		return math.Sin(2 * math.Pi * p)
	}
}

// Update advances the phase by elapsed beats and returns the value.
func (l *LFO) Update(deltaBeats float64) float64 {
	l.phase += deltaBeats * l.Rate
	return l.Off + l.Depth*l.wave(l.phase)
}

// UpdateAt evaluates the LFO at an absolute beat position, pinning the
// phase so later delta updates continue from there.
func (l *LFO) UpdateAt(beats float64) float64 {
	l.phase = beats * l.Rate
	return l.Off + l.Depth*l.wave(l.phase)
}
