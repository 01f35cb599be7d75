package controllers

import (
	"context"
	"net/http"

	"github.com/poofware/mono-repo/backend/services/structure-service/internal/dtos"
	"github.com/poofware/mono-repo/backend/services/structure-service/internal/utils"
)

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthController checks DB connectivity when run auditing is enabled.
type HealthController struct {
	db Pinger
}

// NewHealthController accepts a nil db when auditing is disabled.
func NewHealthController(db Pinger) *HealthController {
	return &HealthController{db: db}
}

// HealthCheckHandler => GET /health
func (c *HealthController) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	if c.db != nil {
		if err := c.db.Ping(r.Context()); err != nil {
			utils.Logger.WithError(err).Error("structure-service DB unreachable")
			utils.RespondErrorWithCode(w, http.StatusServiceUnavailable, utils.ErrCodeInternal, "Database unreachable", nil, err)
			return
		}
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.HealthCheckResponse{Status: "OK"})
}
