package models

import "fmt"

// UnitFacing is the compass direction a generated unit faces.
type UnitFacing string

const (
	FacingNorth     UnitFacing = "North"
	FacingSouth     UnitFacing = "South"
	FacingEast      UnitFacing = "East"
	FacingWest      UnitFacing = "West"
	FacingNorthEast UnitFacing = "North-East"
	FacingNorthWest UnitFacing = "North-West"
	FacingSouthEast UnitFacing = "South-East"
	FacingSouthWest UnitFacing = "South-West"
)

// AllFacings lists every accepted facing in display order.
var AllFacings = []UnitFacing{
	FacingNorth, FacingSouth, FacingEast, FacingWest,
	FacingNorthEast, FacingNorthWest, FacingSouthEast, FacingSouthWest,
}

func (f UnitFacing) Valid() bool {
	for _, v := range AllFacings {
		if f == v {
			return true
		}
	}
	return false
}

// ParseFacing converts the exact display string to the enum.
func ParseFacing(s string) (UnitFacing, error) {
	f := UnitFacing(s)
	if !f.Valid() {
		return "", fmt.Errorf("invalid facing: %q", s)
	}
	return f, nil
}

// MixedFloorUnitType is the unit type recorded on floors whose units are generated from a mix.
const MixedFloorUnitType = "Mixed"
