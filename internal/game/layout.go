package game

import "math"

// LayoutDimensions is a near-square grid for the tableau. The zero value means
// there is no valid layout and the presentation should not be updated.
type LayoutDimensions struct {
	MajorAxisSize int `json:"major_axis_size"`
	MinorAxisSize int `json:"minor_axis_size"`
}

// IsZero reports whether d is the degenerate "no layout" value.
func (d LayoutDimensions) IsZero() bool {
	return d.MajorAxisSize == 0 || d.MinorAxisSize == 0
}

// Orientation of the viewport, supplied by the presentation layer.
type Orientation int

const (
	Landscape Orientation = iota
	Portrait
)

// Grid maps the layout onto rows and columns, with the major axis along the
// viewport's dominant axis.
func (d LayoutDimensions) Grid(o Orientation) (rows, cols int) {
	if o == Portrait {
		return d.MajorAxisSize, d.MinorAxisSize
	}
	return d.MinorAxisSize, d.MajorAxisSize
}

// SolveLayout finds the grid closest to a square that fits cardCount cards.
//
// Only the two minor-axis candidates around sqrt(cardCount) are considered;
// the one with the smallest difference between axes wins, and ties go to the
// one leaving fewer empty cells.
func SolveLayout(cardCount int) LayoutDimensions {
	if cardCount <= 0 {
		return LayoutDimensions{}
	}
	root := math.Sqrt(float64(cardCount))
	var best LayoutDimensions
	bestDiff, bestWaste := math.MaxInt, math.MaxInt
	for _, minor := range []int{int(math.Floor(root)), int(math.Ceil(root))} {
		if minor < 1 {
			continue
		}
		major := (cardCount + minor - 1) / minor
		if major < minor {
			major, minor = minor, major
		}
		diff, waste := major-minor, major*minor-cardCount
		if diff < bestDiff || (diff == bestDiff && waste < bestWaste) {
			best = LayoutDimensions{MajorAxisSize: major, MinorAxisSize: minor}
			bestDiff, bestWaste = diff, waste
		}
	}
	return best
}
