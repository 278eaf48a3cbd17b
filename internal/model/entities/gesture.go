package entities

// Gesture is the classification of one touch sequence.
type Gesture int

const (
	// GestureOff means no gesture could be recognised.
	GestureOff Gesture = iota
	GestureShortPress
	GestureLongPress
	GestureSwipeLeft
	GestureSwipeRight
	GestureSwipeUp
	GestureSwipeDown
)

var gestureNames = [...]string{
	GestureOff:        "invalid",
	GestureShortPress: "short",
	GestureLongPress:  "long",
	GestureSwipeLeft:  "swipe-left",
	GestureSwipeRight: "swipe-right",
	GestureSwipeUp:    "swipe-up",
	GestureSwipeDown:  "swipe-down",
}

// String returns the name published on the touched topic.
func (g Gesture) String() string {
	if g < 0 || int(g) >= len(gestureNames) {
		return "invalid"
	}
	return gestureNames[g]
}

// IsSwipe reports whether g is one of the four swipe directions.
func (g Gesture) IsSwipe() bool {
	return g >= GestureSwipeLeft && g <= GestureSwipeDown
}

// Point is a position in screen coordinates (320x240 panel).
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}
