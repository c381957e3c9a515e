// Package octile implements the admissible, consistent distance metric for
// 8-connected grids with unit cardinal cost and sqrt(2) diagonal cost.
package octile

import "math"

var sqrt2 = math.Sqrt(2)

// Grid is an (x, y) position on the occupancy grid. Coordinates are
// non-negative; equality is componentwise.
type Grid struct {
	X, Y uint64
}

// Abstract is a representative centroid of an abstraction-layer cluster.
// It is never an externally meaningful coordinate.
type Abstract struct {
	X, Y float64
}

// GridDistance computes the octile distance between two grid positions.
//
// Coordinates are promoted to float64 before subtracting so that wide
// unsigned widths never wrap on the subtraction itself.
func GridDistance(p1, p2 Grid) float64 {
	return distance(float64(p1.X), float64(p1.Y), float64(p2.X), float64(p2.Y))
}

// AbstractDistance computes the octile distance between two abstract positions.
func AbstractDistance(p1, p2 Abstract) float64 {
	return distance(p1.X, p1.Y, p2.X, p2.Y)
}

// MixedDistance computes the octile distance between an abstract position
// and a grid position.
func MixedDistance(p1 Abstract, p2 Grid) float64 {
	return distance(p1.X, p1.Y, float64(p2.X), float64(p2.Y))
}

func distance(x1, y1, x2, y2 float64) float64 {
	dx := math.Abs(x1 - x2)
	dy := math.Abs(y1 - y2)
	return sqrt2*math.Min(dx, dy) + math.Abs(dx-dy)
}
