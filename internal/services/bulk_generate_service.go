package services

import (
	"context"

	"github.com/poofware/mono-repo/backend/services/structure-service/internal/catalog"
	"github.com/poofware/mono-repo/backend/services/structure-service/internal/dtos"
	"github.com/poofware/mono-repo/backend/services/structure-service/internal/generator"
	"github.com/poofware/mono-repo/backend/services/structure-service/internal/utils"
)

type BulkGenerator interface {
	BulkGenerate(ctx context.Context, req catalog.BulkGenerateRequest) (*catalog.BulkGenerateResponse, error)
}

// BulkGenerateService forwards single-call server-side generation as-is.
type BulkGenerateService struct {
	catalog BulkGenerator
	views   generator.ViewInvalidator
}

func NewBulkGenerateService(c BulkGenerator, views generator.ViewInvalidator) *BulkGenerateService {
	return &BulkGenerateService{catalog: c, views: views}
}

func (s *BulkGenerateService) Generate(ctx context.Context, req dtos.BulkGenerateRequest) (*dtos.BulkGenerateResponse, error) {
	resp, err := s.catalog.BulkGenerate(ctx, catalog.BulkGenerateRequest{
		ParentID:         req.ParentID,
		TotalCount:       req.TotalCount,
		SharedAttributes: req.SharedAttributes,
	})
	if err != nil {
		return nil, viewError(err)
	}
	if s.views != nil {
		s.views.InvalidateBuilding(req.ParentID)
	}
	utils.Logger.WithField("parent_id", req.ParentID).Infof("Bulk generated %d records", resp.CreatedCount)
	return &dtos.BulkGenerateResponse{CreatedCount: resp.CreatedCount}, nil
}
