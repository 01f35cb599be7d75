package services

import (
	"context"
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/poofware/mono-repo/backend/services/structure-service/internal/catalog"
	"github.com/poofware/mono-repo/backend/services/structure-service/internal/utils"
)

// StructureLister reads a building's floors and units from the catalog.
type StructureLister interface {
	ListFloors(ctx context.Context, buildingID string) ([]catalog.Floor, error)
	ListUnits(ctx context.Context, buildingID string) ([]catalog.Unit, error)
}

// BuildingViewService caches the per-building floor and unit listings.
// It satisfies generator.ViewInvalidator.
type BuildingViewService struct {
	lister StructureLister
	cache  *cache.Cache
}

func NewBuildingViewService(lister StructureLister, ttl time.Duration) *BuildingViewService {
	return &BuildingViewService{
		lister: lister,
		cache:  cache.New(ttl, 2*ttl),
	}
}

func floorsKey(buildingID string) string { return "floors:" + buildingID }
func unitsKey(buildingID string) string  { return "units:" + buildingID }

func (s *BuildingViewService) Floors(ctx context.Context, buildingID string) ([]catalog.Floor, error) {
	if v, ok := s.cache.Get(floorsKey(buildingID)); ok {
		return v.([]catalog.Floor), nil
	}
	floors, err := s.lister.ListFloors(ctx, buildingID)
	if err != nil {
		return nil, viewError(err)
	}
	s.cache.SetDefault(floorsKey(buildingID), floors)
	return floors, nil
}

func (s *BuildingViewService) Units(ctx context.Context, buildingID string) ([]catalog.Unit, error) {
	if v, ok := s.cache.Get(unitsKey(buildingID)); ok {
		return v.([]catalog.Unit), nil
	}
	units, err := s.lister.ListUnits(ctx, buildingID)
	if err != nil {
		return nil, viewError(err)
	}
	s.cache.SetDefault(unitsKey(buildingID), units)
	return units, nil
}

func (s *BuildingViewService) InvalidateBuilding(buildingID string) {
	s.cache.Delete(floorsKey(buildingID))
	s.cache.Delete(unitsKey(buildingID))
	utils.Logger.WithField("building_id", buildingID).Debug("Invalidated cached building views")
}

func viewError(err error) error {
	if catalog.IsNotFound(err) {
		return &utils.AppError{
			StatusCode: http.StatusNotFound,
			Code:       utils.ErrCodeNotFound,
			Message:    "Building not found",
			Err:        err,
		}
	}
	return &utils.AppError{
		StatusCode: http.StatusBadGateway,
		Code:       utils.ErrCodeExternalServiceFailure,
		Message:    "Catalog service call failed",
		Err:        err,
	}
}
