package api

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"

	"xfin/internal/domain/repository"
	xhttp "xfin/pkg/http"
)

// HealthHandler reports process liveness and storage connectivity.
type HealthHandler struct {
	records repository.RecordStorage
}

func NewHealthHandler(records repository.RecordStorage) *HealthHandler {
	return &HealthHandler{records: records}
}

func (h *HealthHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.healthz)
}

func (h *HealthHandler) healthz(c echo.Context) error {
	checks := map[string]string{"server": "ok"}

	if h.records != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := h.records.Health(ctx); err != nil {
			checks["storage"] = err.Error()
		} else {
			checks["storage"] = "ok"
		}
	}

	return xhttp.DataResponse(c, xhttp.Envelope{Success: true, Data: checks})
}
