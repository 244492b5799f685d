package api

import (
	"time"

	"github.com/labstack/echo/v4"

	"xfin/internal/collector"
	"xfin/internal/domain/models"
	"xfin/internal/domain/repository"
	"xfin/internal/movers"
	xhttp "xfin/pkg/http"
	"xfin/pkg/logger"
)

// MoversHandler serves the cross-source aggregation view and the raw
// paginated gainer/loser history.
type MoversHandler struct {
	aggregator *movers.Aggregator
	snapshots  repository.SnapshotStore
	records    repository.RecordStorage
	metrics    repository.Metrics
	log        *logger.Logger
}

func NewMoversHandler(
	agg *movers.Aggregator,
	snapshots repository.SnapshotStore,
	records repository.RecordStorage,
	metrics repository.Metrics,
	log *logger.Logger,
) *MoversHandler {
	return &MoversHandler{
		aggregator: agg,
		snapshots:  snapshots,
		records:    records,
		metrics:    metrics,
		log:        log,
	}
}

func (h *MoversHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/movers", h.aggregate)
	g.GET("/gainers/data", h.gainersData)
	g.GET("/losers/data", h.losersData)
}

func (h *MoversHandler) aggregate(c echo.Context) error {
	var req models.MoversRequest
	if detail := xhttp.ReadAndValidateRequest(c, &req); detail != nil {
		return xhttp.BadRequestResponse(c, detail)
	}
	scope, _ := models.ParseScope(req.Scope)

	ctx := c.Request().Context()
	gainers, err := h.snapshots.GetSnapshot(ctx, models.CategoryGainersLosers, collector.LabelGainers)
	if err != nil {
		h.log.Error("gainers snapshot read failed", logger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
	losers, err := h.snapshots.GetSnapshot(ctx, models.CategoryGainersLosers, collector.LabelLosers)
	if err != nil {
		h.log.Error("losers snapshot read failed", logger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}

	start := time.Now()
	result := h.aggregator.Aggregate(gainers, losers, scope)
	h.metrics.RecordAggregation(string(scope), time.Since(start).Seconds())

	return xhttp.DataResponse(c, xhttp.Envelope{Success: true, Data: result})
}

func (h *MoversHandler) gainersData(c echo.Context) error {
	return h.queryRecords(c, models.OriginGainers)
}

func (h *MoversHandler) losersData(c echo.Context) error {
	return h.queryRecords(c, models.OriginLosers)
}

func (h *MoversHandler) queryRecords(c echo.Context, origin models.Origin) error {
	var req models.PageRequest
	if detail := xhttp.ReadAndValidateRequest(c, &req); detail != nil {
		return xhttp.BadRequestResponse(c, detail)
	}

	rows, total, err := h.records.Query(c.Request().Context(), origin, req.Page, req.Limit)
	if err != nil {
		h.log.Error("record query failed",
			logger.String("origin", string(origin)), logger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}

	return xhttp.DataResponse(c, xhttp.NewPageResponse(rows, req.Page, req.Limit, total))
}
