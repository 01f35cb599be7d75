package catalog

// CreateFloorRequest is the JSON body of the create-floor call.
type CreateFloorRequest struct {
	BuildingID        string `json:"building_id"`
	FloorNumber       int    `json:"floor_number"`
	UnitType          string `json:"unit_type"`
	TotalSubUnits     int    `json:"total_sub_units"`
	AvailableSubUnits int    `json:"available_sub_units"`
}

type Floor struct {
	ID                string `json:"id"`
	BuildingID        string `json:"building_id,omitempty"`
	FloorNumber       int    `json:"floor_number"`
	UnitType          string `json:"unit_type,omitempty"`
	TotalSubUnits     int    `json:"total_sub_units"`
	AvailableSubUnits int    `json:"available_sub_units"`
}

// File is an in-memory upload attached to a multipart request.
type File struct {
	Filename    string
	ContentType string
	Data        []byte
}

// CreateUnitRequest is sent as multipart/form-data; Thumbnail and Images are optional.
type CreateUnitRequest struct {
	BuildingID  string
	FloorID     string
	PlotNo      string
	UnitType    string
	Extent      float64
	VillaFacing string
	Thumbnail   *File
	Images      []File
}

type Unit struct {
	ID           string   `json:"id"`
	BuildingID   string   `json:"building_id,omitempty"`
	FloorID      string   `json:"floor_id,omitempty"`
	PlotNo       string   `json:"plot_no,omitempty"`
	UnitType     string   `json:"unit_type,omitempty"`
	Extent       float64  `json:"extent,omitempty"`
	VillaFacing  string   `json:"villa_facing,omitempty"`
	ThumbnailURL string   `json:"thumbnail_url,omitempty"`
	ImageURLs    []string `json:"image_urls,omitempty"`
}

// BulkGenerateRequest drives the single-call server-side generation path.
type BulkGenerateRequest struct {
	ParentID         string         `json:"parent_id"`
	TotalCount       int            `json:"total_count"`
	SharedAttributes map[string]any `json:"shared_attributes,omitempty"`
}

type BulkGenerateResponse struct {
	CreatedCount int `json:"created_count"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
