// Package datatype defines the data types a socket can carry and the policies
// used to reconcile resolutions between connected sockets.
package datatype

import "strings"

// DataType is a bit-flag set. A declared socket type may hold several flags
// (every type it accepts); a resolved, actual type holds exactly one.
type DataType uint8

const (
	// Unknown is the zero value and marks a socket whose type is not resolved yet.
	Unknown DataType = 0
	// Value is a single scalar channel.
	Value DataType = 1 << (iota - 1)
	// Vector is a three component vector.
	Vector
	// Color is an RGBA color.
	Color
)

// Has reports whether every flag of other is present in d.
func (d DataType) Has(other DataType) bool {
	return other != Unknown && d&other == other
}

// IsSingle reports whether exactly one flag is set.
func (d DataType) IsSingle() bool {
	return d != Unknown && d&(d-1) == 0
}

// Channels returns the number of meaningful channels for a single type.
func (d DataType) Channels() int {
	switch d {
	case Value:
		return 1
	case Vector:
		return 3
	case Color:
		return 4
	}
	return 0
}

func (d DataType) String() string {
	if d == Unknown {
		return "unknown"
	}
	var parts []string
	if d&Value != 0 {
		parts = append(parts, "value")
	}
	if d&Vector != 0 {
		parts = append(parts, "vector")
	}
	if d&Color != 0 {
		parts = append(parts, "color")
	}
	return strings.Join(parts, "|")
}

// Parse converts a lowercase type name into a DataType.
func Parse(s string) (DataType, bool) {
	switch strings.ToLower(s) {
	case "value":
		return Value, true
	case "vector":
		return Vector, true
	case "color", "colour":
		return Color, true
	}
	return Unknown, false
}

// fallbacks lists, per requested type, the alternatives in priority order.
var fallbacks = map[DataType][2]DataType{
	Value:  {Color, Vector},
	Vector: {Color, Value},
	Color:  {Vector, Value},
}

// ConvertToSupported picks the type a socket declaring supported should use
// when offered requested. The boolean is false when no rule applies; the
// declared set is returned unchanged in that case so the caller can log it
// and carry on.
func ConvertToSupported(supported, requested DataType) (DataType, bool) {
	if supported&requested != 0 && requested.IsSingle() {
		return requested, true
	}
	for _, candidate := range fallbacks[requested] {
		if supported&candidate != 0 {
			return candidate, true
		}
	}
	return supported, false
}
