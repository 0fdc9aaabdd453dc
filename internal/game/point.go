package game

import "math"

// Point is a 2D integer vector. It is used for positions, velocities and move
// targets alike. Plain value type, copied freely.
type Point struct {
	X, Y int32
}

// Add returns the componentwise sum p + q.
func (p Point) Add(q Point) Point {
	return Point{p.X + q.X, p.Y + q.Y}
}

// Sub returns the componentwise difference p - q.
func (p Point) Sub(q Point) Point {
	return Point{p.X - q.X, p.Y - q.Y}
}

// Len2 returns the squared length. Prefer this over Len when only comparing
// magnitudes.
func (p Point) Len2() float64 {
	x := float64(p.X)
	y := float64(p.Y)
	return x*x + y*y
}

// Len returns the vector length.
func (p Point) Len() float64 {
	return math.Sqrt(p.Len2())
}

// Scale rescales the vector to have exactly targetLen magnitude, rounding the
// resulting components to the nearest integer. The zero vector is returned
// unchanged since it has no direction.
func (p Point) Scale(targetLen float64) Point {
	if p.X == 0 && p.Y == 0 {
		return p
	}
	mult := targetLen / p.Len()
	return Point{
		X: int32(math.Round(float64(p.X) * mult)),
		Y: int32(math.Round(float64(p.Y) * mult)),
	}
}

// Dist2 returns the squared distance to q. Computed in int64 so that even
// extreme move targets cannot overflow.
func (p Point) Dist2(q Point) int64 {
	dx := int64(p.X) - int64(q.X)
	dy := int64(p.Y) - int64(q.Y)
	return dx*dx + dy*dy
}
