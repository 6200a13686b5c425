package enums

import "fmt"

// MovementType maps to the movement_type_enum enum in Postgres.
type MovementType string

const (
	MovementTypeIn     MovementType = "in"
	MovementTypeOut    MovementType = "out"
	MovementTypeAdjust MovementType = "adjust"
)

var validMovementTypes = []MovementType{
	MovementTypeIn,
	MovementTypeOut,
	MovementTypeAdjust,
}

// IsValid reports whether the value matches the canonical movement type enum.
func (t MovementType) IsValid() bool {
	for _, candidate := range validMovementTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// Sign returns the stock multiplier for the movement type. Adjustments carry
// their own sign in the quantity, so the multiplier is positive.
func (t MovementType) Sign() int {
	if t == MovementTypeOut {
		return -1
	}
	return 1
}

// ParseMovementType converts raw input into MovementType.
func ParseMovementType(value string) (MovementType, error) {
	for _, candidate := range validMovementTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid movement type %q", value)
}
