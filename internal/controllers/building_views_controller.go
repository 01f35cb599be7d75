package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/poofware/mono-repo/backend/services/structure-service/internal/dtos"
	"github.com/poofware/mono-repo/backend/services/structure-service/internal/services"
	"github.com/poofware/mono-repo/backend/services/structure-service/internal/utils"
)

type BuildingViewsController struct {
	views    *services.BuildingViewService
	bulk     *services.BulkGenerateService
	validate *validator.Validate
}

func NewBuildingViewsController(views *services.BuildingViewService, bulk *services.BulkGenerateService) *BuildingViewsController {
	return &BuildingViewsController{views: views, bulk: bulk, validate: validator.New()}
}

// GET /api/v1/structure/admin/buildings/{building_id}/floors
func (c *BuildingViewsController) ListFloorsHandler(w http.ResponseWriter, r *http.Request) {
	buildingID := mux.Vars(r)["building_id"]
	floors, err := c.views.Floors(r.Context(), buildingID)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.BuildingFloorsResponse{BuildingID: buildingID, Floors: floors})
}

// GET /api/v1/structure/admin/buildings/{building_id}/units
func (c *BuildingViewsController) ListUnitsHandler(w http.ResponseWriter, r *http.Request) {
	buildingID := mux.Vars(r)["building_id"]
	units, err := c.views.Units(r.Context(), buildingID)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.BuildingUnitsResponse{BuildingID: buildingID, Units: units})
}

// POST /api/v1/structure/admin/bulk-generate
func (c *BuildingViewsController) BulkGenerateHandler(w http.ResponseWriter, r *http.Request) {
	var req dtos.BulkGenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err)
		return
	}
	if err := c.validate.Struct(req); err != nil {
		respondValidation(w, err)
		return
	}
	resp, err := c.bulk.Generate(r.Context(), req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, resp)
}
