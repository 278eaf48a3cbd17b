// Package touch turns raw touch panel samples into gestures.
package touch

import "github.com/LeonardoBeccarini/wallcontroller/internal/model"

const (
	// stepThreshold is the smallest per-sample move that counts as motion.
	stepThreshold = 10
	// longPressSteps is the number of stationary steps a long press needs.
	longPressSteps = 9

	rawXMin, rawXMax = 370, 3700
	rawYMin, rawYMax = 470, 3600
	screenW, screenH = 320, 240
)

// MapRaw converts raw panel coordinates to screen pixels.
func MapRaw(x, y int) model.Point {
	return model.Point{
		X: scale(x, rawXMin, rawXMax, screenW),
		Y: scale(y, rawYMin, rawYMax, screenH),
	}
}

func scale(v, lo, hi, size int) int {
	if v <= lo {
		return 0
	}
	if v >= hi {
		return size - 1
	}
	return (v - lo) * size / (hi - lo)
}

// Classifier collects the points of one touch sequence.
type Classifier struct {
	points []model.Point
}

func (c *Classifier) Add(p model.Point) { c.points = append(c.points, p) }

func (c *Classifier) Len() int { return len(c.points) }

func (c *Classifier) Reset() { c.points = c.points[:0] }

func step(d int) int {
	if d > stepThreshold || d < -stepThreshold {
		return d
	}
	return 0
}

func stepGesture(dx, dy int) model.Gesture {
	switch {
	case dx != 0 && dy != 0:
		return model.GestureOff
	case dx > 0:
		return model.GestureSwipeRight
	case dx < 0:
		return model.GestureSwipeLeft
	case dy > 0:
		return model.GestureSwipeDown
	case dy < 0:
		return model.GestureSwipeUp
	default:
		return model.GestureLongPress
	}
}

// Classify votes over the steps of the collected path. Ties go to the
// classification seen first.
func (c *Classifier) Classify() model.Gesture {
	if len(c.points) < 2 {
		return model.GestureShortPress
	}
	votes := make(map[model.Gesture]int)
	var order []model.Gesture
	for i := 1; i < len(c.points); i++ {
		g := stepGesture(step(c.points[i].X-c.points[i-1].X), step(c.points[i].Y-c.points[i-1].Y))
		if votes[g] == 0 {
			order = append(order, g)
		}
		votes[g]++
	}
	best := order[0]
	for _, g := range order[1:] {
		if votes[g] > votes[best] {
			best = g
		}
	}
	if best == model.GestureLongPress && votes[best] < longPressSteps {
		return model.GestureShortPress
	}
	return best
}
