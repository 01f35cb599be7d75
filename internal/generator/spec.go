package generator

import (
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/poofware/mono-repo/backend/services/structure-service/internal/models"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("facing", func(fl validator.FieldLevel) bool {
		return models.UnitFacing(fl.Field().String()).Valid()
	})
	return v
}

// UnitMixEntry asks for Count units of one type on a floor.
//
// Key is minted once when the entry is created and survives relabelling of
// UnitType, so a renamed type keeps its configuration. An empty Key falls back
// to matching configurations by the exact UnitType label.
type UnitMixEntry struct {
	Key      string `json:"key,omitempty"`
	UnitType string `json:"unit_type" validate:"required"`
	Count    int    `json:"count" validate:"min=1"`
}

// MintKey returns a new stable identifier for a mix entry or unit-type config.
func MintKey() string { return uuid.NewString() }

// GenerationSpec is the complete operator intent for one batch.
type GenerationSpec struct {
	BuildingID          string                 `json:"building_id" validate:"required"`
	FloorCount          int                    `json:"floor_count" validate:"min=1"`
	SameMixForAllFloors bool                   `json:"same_mix_for_all_floors"`
	GlobalMix           []UnitMixEntry         `json:"global_mix" validate:"dive"`
	PerFloorMix         map[int][]UnitMixEntry `json:"per_floor_mix" validate:"dive,dive"`
}

func (s *GenerationSpec) Validate() error {
	return validate.Struct(s)
}

// TotalUnits is the number of units a resolved mix generates.
func TotalUnits(mix []UnitMixEntry) int {
	total := 0
	for _, e := range mix {
		total += e.Count
	}
	return total
}
