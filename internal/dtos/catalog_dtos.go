package dtos

import (
	"github.com/poofware/mono-repo/backend/services/structure-service/internal/catalog"
)

type BuildingFloorsResponse struct {
	BuildingID string          `json:"building_id"`
	Floors     []catalog.Floor `json:"floors"`
}

type BuildingUnitsResponse struct {
	BuildingID string         `json:"building_id"`
	Units      []catalog.Unit `json:"units"`
}

type BulkGenerateRequest struct {
	ParentID         string         `json:"parent_id" validate:"required"`
	TotalCount       int            `json:"total_count" validate:"min=1"`
	SharedAttributes map[string]any `json:"shared_attributes,omitempty"`
}

type BulkGenerateResponse struct {
	CreatedCount int `json:"created_count"`
}
