package routes

const (
	// Health
	Health = "/health"

	// Admin endpoints
	AdminBase              = "/api/v1/structure/admin"
	AdminGenerateStructure = "/api/v1/structure/admin/buildings/{building_id}/generate"
	AdminBuildingFloors    = "/api/v1/structure/admin/buildings/{building_id}/floors"
	AdminBuildingUnits     = "/api/v1/structure/admin/buildings/{building_id}/units"
	AdminBulkGenerate      = "/api/v1/structure/admin/bulk-generate"
)
