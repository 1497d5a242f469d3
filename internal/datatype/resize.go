package datatype

import "strings"

// ResizeMode selects how an input whose resolution differs from its
// operation's resolution is mapped onto it.
type ResizeMode uint8

const (
	// Center aligns the centers of both images without scaling.
	Center ResizeMode = iota
	// None aligns the lower-left corners without scaling.
	None
	// Fit scales uniformly so the input fits inside the operation.
	Fit
	// Stretch scales each axis independently to cover the operation.
	Stretch
)

func (m ResizeMode) String() string {
	switch m {
	case Center:
		return "center"
	case None:
		return "none"
	case Fit:
		return "fit"
	case Stretch:
		return "stretch"
	}
	return "invalid"
}

// ParseResizeMode converts a lowercase policy name into a ResizeMode.
func ParseResizeMode(s string) (ResizeMode, bool) {
	switch strings.ToLower(s) {
	case "", "center":
		return Center, true
	case "none":
		return None, true
	case "fit":
		return Fit, true
	case "stretch":
		return Stretch, true
	}
	return Center, false
}
