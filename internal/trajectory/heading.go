package trajectory

import (
	"fmt"
	"math"

	"github.com/banshee-data/holonomic/internal/geometry"
)

// headingWindow is one keyframe's raised-cosine influence. The window is
// 1 at index and falls to exactly 0 at the neighbouring keyframes, so two
// adjacent windows always sum to 1 between their keyframes.
type headingWindow struct {
	index       int
	leftLength  int // 0 for the first keyframe
	rightLength int // 0 for the last keyframe

	// heading contributes on the right side; leftHeading is the same
	// heading shifted by whole turns to lie within π of the left neighbour.
	heading     float64
	leftHeading float64
}

func newHeadingWindow(left *HeadingKeyframe, here HeadingKeyframe, right *HeadingKeyframe) headingWindow {
	w := headingWindow{
		index:       here.Index,
		heading:     here.Heading.Radians,
		leftHeading: here.Heading.Radians,
	}
	if left != nil {
		w.leftLength = here.Index - left.Index
		w.leftHeading = nearestTurn(left.Heading.Radians, here.Heading.Radians)
	}
	if right != nil {
		w.rightLength = right.Index - here.Index
	}
	return w
}

// weight returns the window's contribution at sample t.
func (w headingWindow) weight(t int) float64 {
	switch {
	case t == w.index:
		return w.heading
	case t < w.index:
		if w.index-t > w.leftLength {
			return 0
		}
		return raisedCosine(t-w.index, w.leftLength) * w.leftHeading
	default:
		if t-w.index > w.rightLength {
			return 0
		}
		return raisedCosine(t-w.index, w.rightLength) * w.heading
	}
}

func raisedCosine(offset, length int) float64 {
	return (math.Cos(float64(offset)*math.Pi/float64(length)) + 1) / 2
}

// nearestTurn returns heading shifted by a whole number of turns so that it
// lies within π of reference, which makes the blend between them sweep the
// shorter arc.
func nearestTurn(reference, heading float64) float64 {
	return reference + geometry.AngleModulus(heading-reference)
}

// InterpolateHeadings produces one robot heading per path sample, in
// [0, 2π), such that every keyframe's heading appears at its own index and
// headings in between blend smoothly along the shorter direction. The
// keyframes must start at index 0, end at n-1 and strictly increase.
func InterpolateHeadings(keyframes []HeadingKeyframe, n int) ([]geometry.Rotation2d, error) {
	if err := validateKeyframes(keyframes, n); err != nil {
		return nil, err
	}

	windows := make([]headingWindow, len(keyframes))
	for i := range keyframes {
		var left, right *HeadingKeyframe
		if i > 0 {
			left = &keyframes[i-1]
		}
		if i < len(keyframes)-1 {
			right = &keyframes[i+1]
		}
		windows[i] = newHeadingWindow(left, keyframes[i], right)
	}

	headings := make([]geometry.Rotation2d, n)
	next := 0 // first window that can still influence t
	for t := 0; t < n; t++ {
		for next < len(windows)-1 && windows[next+1].index <= t {
			next++
		}
		var angle float64
		// Only the keyframes bracketing t have non-zero windows there.
		for j := max(0, next-1); j <= min(len(windows)-1, next+1); j++ {
			angle += windows[j].weight(t)
		}
		headings[t] = geometry.NewRotation2d(geometry.NormalizeAngle(angle))
	}

	// Keyframes are written back verbatim so rounding in the blend can never
	// disturb them.
	for _, k := range keyframes {
		headings[k.Index] = geometry.NewRotation2d(geometry.NormalizeAngle(k.Heading.Radians))
	}
	return headings, nil
}

func validateKeyframes(keyframes []HeadingKeyframe, n int) error {
	if n < 1 {
		return fmt.Errorf("%w: no path samples", ErrInvalidKeyframes)
	}
	if len(keyframes) < 2 && n > 1 {
		return fmt.Errorf("%w: need keyframes at the first and last sample, got %d", ErrInvalidKeyframes, len(keyframes))
	}
	if len(keyframes) == 0 {
		return fmt.Errorf("%w: no keyframes", ErrInvalidKeyframes)
	}
	if keyframes[0].Index != 0 {
		return fmt.Errorf("%w: first keyframe at index %d, want 0", ErrInvalidKeyframes, keyframes[0].Index)
	}
	if last := keyframes[len(keyframes)-1].Index; last != n-1 {
		return fmt.Errorf("%w: last keyframe at index %d, want %d", ErrInvalidKeyframes, last, n-1)
	}
	for i := 1; i < len(keyframes); i++ {
		if keyframes[i].Index <= keyframes[i-1].Index {
			return fmt.Errorf("%w: index %d follows %d", ErrInvalidKeyframes, keyframes[i].Index, keyframes[i-1].Index)
		}
	}
	return nil
}
