package dtos

import (
	"github.com/poofware/mono-repo/backend/services/structure-service/internal/generator"
)

type UnitMixEntryRequest struct {
	Key      string `json:"key,omitempty"`
	UnitType string `json:"unit_type" validate:"required"`
	Count    int    `json:"count" validate:"min=1"`
}

// AssetRequest carries an inline image; Data is base64 in JSON bodies.
type AssetRequest struct {
	Filename    string `json:"filename" validate:"required"`
	ContentType string `json:"content_type,omitempty"`
	Data        []byte `json:"data" validate:"required"`
}

type UnitTypeConfigRequest struct {
	Key       string         `json:"key,omitempty"`
	UnitType  string         `json:"unit_type" validate:"required"`
	Area      float64        `json:"area" validate:"gte=0"`
	Facing    string         `json:"facing" validate:"required,oneof=North South East West North-East North-West South-East South-West"`
	Thumbnail *AssetRequest  `json:"thumbnail,omitempty" validate:"omitempty"`
	Gallery   []AssetRequest `json:"gallery,omitempty" validate:"omitempty,dive"`
}

// AssetRef is the multipart field suffix for this config's files:
// thumbnail_{ref} and images_{ref}.
func (c UnitTypeConfigRequest) AssetRef() string {
	if c.Key != "" {
		return c.Key
	}
	return c.UnitType
}

// GenerateStructureRequest is the body of the generate endpoint. ResumeRunID,
// when set, names a failed run of the same building to continue from.
type GenerateStructureRequest struct {
	FloorCount          int                           `json:"floor_count" validate:"min=1"`
	SameMixForAllFloors bool                          `json:"same_mix_for_all_floors"`
	GlobalMix           []UnitMixEntryRequest         `json:"global_mix,omitempty" validate:"omitempty,dive"`
	PerFloorMix         map[int][]UnitMixEntryRequest `json:"per_floor_mix,omitempty" validate:"omitempty,dive,dive"`
	UnitTypes           []UnitTypeConfigRequest       `json:"unit_types" validate:"dive"`
	ResumeRunID         string                        `json:"resume_run_id,omitempty" validate:"omitempty,uuid"`
}

type GenerateStructureResponse struct {
	RunID         string            `json:"run_id"`
	BuildingID    string            `json:"building_id"`
	Status        generator.Status  `json:"status"`
	Reason        string            `json:"reason,omitempty"`
	FloorsCreated int               `json:"floors_created"`
	UnitsCreated  int               `json:"units_created"`
	RolledBack    bool              `json:"rolled_back"`
	Report        *generator.Report `json:"report"`
}
