package catalog

const (
	pathFloors         = "/api/v1/catalog/floors"
	pathFloorByID      = "/api/v1/catalog/floors/%s"
	pathUnits          = "/api/v1/catalog/units"
	pathUnitByID       = "/api/v1/catalog/units/%s"
	pathBuildingFloors = "/api/v1/catalog/buildings/%s/floors"
	pathBuildingUnits  = "/api/v1/catalog/buildings/%s/units"
	pathBulkGenerate   = "/api/v1/catalog/bulk-generate"
)
