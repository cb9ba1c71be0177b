// Package tile decomposes a scan region into fixed-size request tiles.
package tile

import (
	"fmt"
	"iter"
	"math"

	"github.com/twpayne/go-geom"
)

// Tile is one square request window. Index is its 0-based position in the
// enumeration order.
type Tile struct {
	Index  int
	Bounds *geom.Bounds
}

// BBox returns the corners as minX, minY, maxX, maxY.
func (t Tile) BBox() [4]float64 {
	return [4]float64{
		t.Bounds.Min(0), t.Bounds.Min(1),
		t.Bounds.Max(0), t.Bounds.Max(1),
	}
}

func (t Tile) String() string {
	b := t.BBox()
	return fmt.Sprintf("#%d [%.4f %.4f %.4f %.4f]", t.Index, b[0], b[1], b[2], b[3])
}

// Enumerate walks the region between upper (top-left) and lower
// (bottom-right) in tiles of the given side. The outer axis runs from
// floor(upper.X) up to floor(lower.X); the inner axis covers floor(lower.Y)
// up to floor(upper.Y) but is visited top-down. Each step (long, lat)
// produces the window (long, lat-side)..(long+side, lat). Both ranges are
// half-open, so a remainder narrower than side at the far edge is not
// covered, and an inverted axis yields nothing.
//
// The returned sequence holds no state and may be ranged over repeatedly.
func Enumerate(upper, lower geom.Coord, side float64) iter.Seq[Tile] {
	return func(yield func(Tile) bool) {
		if side <= 0 {
			return
		}
		longs := steps(math.Floor(upper.X()), math.Floor(lower.X()), side)
		lats := steps(math.Floor(lower.Y()), math.Floor(upper.Y()), side)

		i := 0
		for _, long := range longs {
			for j := len(lats) - 1; j >= 0; j-- {
				lat := lats[j]
				t := Tile{
					Index:  i,
					Bounds: geom.NewBounds(geom.XY).Set(long, lat-side, long+side, lat),
				}
				if !yield(t) {
					return
				}
				i++
			}
		}
	}
}

// Count returns how many tiles Enumerate yields for the same arguments.
func Count(upper, lower geom.Coord, side float64) int {
	if side <= 0 {
		return 0
	}
	nx := len(steps(math.Floor(upper.X()), math.Floor(lower.X()), side))
	ny := len(steps(math.Floor(lower.Y()), math.Floor(upper.Y()), side))
	return nx * ny
}

// steps mirrors a half-open integer range: start, start+step, ... < end.
func steps(start, end, step float64) []float64 {
	if end <= start {
		return nil
	}
	n := int(math.Ceil((end - start) / step))
	out := make([]float64, n)
	for i := range n {
		out[i] = start + float64(i)*step
	}
	return out
}
