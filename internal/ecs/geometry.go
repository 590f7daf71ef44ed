package ecs

import "math"

// Overlaps reports whether two volumes centred on the given positions intersect.
// Mixed shapes are tested as a circle against a box.
func Overlaps(pa *Position, va *Volume, pb *Position, vb *Volume) bool {
	switch {
	case va.shape == ShapeCircle && vb.shape == ShapeCircle:
		return pa.Distance(pb) < (va.width+vb.width)/2
	case va.shape == ShapeBox && vb.shape == ShapeBox:
		return math.Abs(pa.x-pb.x) < (va.width+vb.width)/2 &&
			math.Abs(pa.y-pb.y) < (va.height+vb.height)/2
	case va.shape == ShapeCircle:
		return circleBox(pa, va.width/2, pb, vb)
	default:
		return circleBox(pb, vb.width/2, pa, va)
	}
}

func circleBox(c *Position, r float64, b *Position, box *Volume) bool {
	hw, hh := box.width/2, box.height/2
	nx := math.Max(b.x-hw, math.Min(c.x, b.x+hw))
	ny := math.Max(b.y-hh, math.Min(c.y, b.y+hh))
	return math.Hypot(c.x-nx, c.y-ny) < r
}

// InBounds reports whether (x, y) lies inside the unit square every location spans.
func InBounds(x, y float64) bool {
	return x >= 0 && x <= 1 && y >= 0 && y <= 1
}
