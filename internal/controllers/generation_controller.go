package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/poofware/mono-repo/backend/services/structure-service/internal/dtos"
	"github.com/poofware/mono-repo/backend/services/structure-service/internal/services"
	"github.com/poofware/mono-repo/backend/services/structure-service/internal/utils"
)

const maxGenerateFormBytes = 64 << 20

type GenerationController struct {
	generationService *services.GenerationService
	validate          *validator.Validate
}

func NewGenerationController(s *services.GenerationService) *GenerationController {
	return &GenerationController{
		generationService: s,
		validate:          validator.New(),
	}
}

// POST /api/v1/structure/admin/buildings/{building_id}/generate
//
// Accepts a JSON body, or a multipart form with the JSON in a "spec" field
// and per-type files named thumbnail_{ref} and images_{ref}.
func (c *GenerationController) GenerateHandler(w http.ResponseWriter, r *http.Request) {
	logger := utils.Logger.WithField("handler", "GenerateHandler")

	adminID, err := getAdminID(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	buildingID := mux.Vars(r)["building_id"]
	logger = logger.WithField("adminID", adminID).WithField("buildingID", buildingID)

	var req dtos.GenerateStructureRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxGenerateFormBytes); err != nil {
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Failed to parse form", nil, err)
			return
		}
		form := r.MultipartForm
		specField := form.Value["spec"]
		if len(specField) == 0 {
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "spec field is required", nil, nil)
			return
		}
		if err := json.Unmarshal([]byte(specField[0]), &req); err != nil {
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid spec JSON", nil, err)
			return
		}
		if err := attachAssets(&req, form); err != nil {
			utils.HandleAppError(w, err)
			return
		}
	} else if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err)
		return
	}

	if err := c.validate.Struct(req); err != nil {
		respondValidation(w, err)
		return
	}

	resp, err := c.generationService.Generate(r.Context(), adminID, buildingID, req)
	if err != nil {
		logger.WithError(err).Warn("Structure generation failed")
		utils.HandleAppError(w, err)
		return
	}
	logger.WithField("unitsCreated", resp.UnitsCreated).Info("Structure generation succeeded")
	utils.RespondWithJSON(w, http.StatusCreated, resp)
}

func attachAssets(req *dtos.GenerateStructureRequest, form *multipart.Form) error {
	for i := range req.UnitTypes {
		ut := &req.UnitTypes[i]
		ref := ut.AssetRef()

		if headers := form.File["thumbnail_"+ref]; len(headers) > 0 {
			asset, err := readAsset(headers[0])
			if err != nil {
				return err
			}
			ut.Thumbnail = &asset
		}
		for _, fh := range form.File["images_"+ref] {
			asset, err := readAsset(fh)
			if err != nil {
				return err
			}
			ut.Gallery = append(ut.Gallery, asset)
		}
	}
	return nil
}

func readAsset(fh *multipart.FileHeader) (dtos.AssetRequest, error) {
	invalid := func(err error) error {
		return &utils.AppError{
			StatusCode: http.StatusBadRequest,
			Code:       utils.ErrCodeInvalidPayload,
			Message:    fmt.Sprintf("Could not read file %q", fh.Filename),
			Err:        errors.Join(utils.ErrInvalidAsset, err),
		}
	}
	f, err := fh.Open()
	if err != nil {
		return dtos.AssetRequest{}, invalid(err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return dtos.AssetRequest{}, invalid(err)
	}
	if len(data) == 0 {
		return dtos.AssetRequest{}, invalid(errors.New("empty file"))
	}
	return dtos.AssetRequest{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
