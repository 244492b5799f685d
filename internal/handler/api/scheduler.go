package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"xfin/internal/calendar"
	"xfin/internal/domain/models"
	"xfin/internal/registry"
	"xfin/internal/scheduler"
	xhttp "xfin/pkg/http"
	"xfin/pkg/logger"
)

// configResponse is the GET /config body: the full per-category schedule map
// under a "config" key.
type configResponse struct {
	Success bool                             `json:"success"`
	Config  map[string]models.ScheduleConfig `json:"config"`
}

// holidaysResponse is the GET /holidays body.
type holidaysResponse struct {
	Success  bool     `json:"success"`
	Holidays []string `json:"holidays"`
}

// SchedulerHandler exposes schedule configuration, the holiday calendar, run
// status and the manual trigger gateway.
type SchedulerHandler struct {
	registry  *registry.Registry
	calendar  *calendar.Calendar
	scheduler *scheduler.Scheduler
	log       *logger.Logger
}

func NewSchedulerHandler(reg *registry.Registry, cal *calendar.Calendar, sched *scheduler.Scheduler, log *logger.Logger) *SchedulerHandler {
	return &SchedulerHandler{
		registry:  reg,
		calendar:  cal,
		scheduler: sched,
		log:       log,
	}
}

func (h *SchedulerHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/config", h.getConfig)
	g.POST("/config", h.updateConfig)
	g.GET("/holidays", h.listHolidays)
	g.POST("/holidays", h.addHoliday)
	g.DELETE("/holidays", h.removeHoliday)
	g.DELETE("/holidays/:date", h.removeHoliday)
	g.GET("/status", h.statusAll)
	g.GET("/:category/status", h.statusOne)
	g.POST("/:category/trigger", h.trigger)
}

func (h *SchedulerHandler) getConfig(c echo.Context) error {
	all := h.registry.All()
	out := make(map[string]models.ScheduleConfig, len(all))
	for cat, cfg := range all {
		out[cat.String()] = cfg
	}
	return xhttp.DataResponse(c, configResponse{Success: true, Config: out})
}

func (h *SchedulerHandler) updateConfig(c echo.Context) error {
	var req models.UpdateScheduleRequest
	if detail := xhttp.ReadAndValidateRequest(c, &req); detail != nil {
		return xhttp.BadRequestResponse(c, detail)
	}

	cat, err := resolveCategory(req.SchedulerType)
	if err != nil {
		return xhttp.ErrorResponse(c, http.StatusBadRequest, "unknown scheduler_type: "+req.SchedulerType)
	}

	updated, err := h.registry.Update(c.Request().Context(), cat, req.Config)
	if err != nil {
		var ve *registry.ValidationError
		if errors.As(err, &ve) {
			return xhttp.ErrorResponse(c, http.StatusBadRequest, ve.Error())
		}
		h.log.Error("schedule update failed",
			logger.String("category", cat.String()), logger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}

	return xhttp.DataResponse(c, xhttp.Envelope{Success: true, Data: updated})
}

func (h *SchedulerHandler) listHolidays(c echo.Context) error {
	return xhttp.DataResponse(c, holidaysResponse{Success: true, Holidays: h.calendar.List()})
}

func (h *SchedulerHandler) addHoliday(c echo.Context) error {
	var req models.HolidayRequest
	if detail := xhttp.ReadAndValidateRequest(c, &req); detail != nil {
		return xhttp.BadRequestResponse(c, detail)
	}

	if err := h.calendar.Add(c.Request().Context(), req.Date); err != nil {
		var ve *calendar.ValidationError
		if errors.As(err, &ve) {
			return xhttp.ErrorResponse(c, http.StatusBadRequest, ve.Error())
		}
		h.log.Error("holiday add failed", logger.String("date", req.Date), logger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
	return xhttp.SuccessResponse(c)
}

func (h *SchedulerHandler) removeHoliday(c echo.Context) error {
	date := c.Param("date")
	if date == "" {
		var req models.HolidayRequest
		if detail := xhttp.ReadAndValidateRequest(c, &req); detail != nil {
			return xhttp.BadRequestResponse(c, detail)
		}
		date = req.Date
	}
	if err := h.calendar.Remove(c.Request().Context(), date); err != nil {
		var ve *calendar.ValidationError
		if errors.As(err, &ve) {
			return xhttp.ErrorResponse(c, http.StatusBadRequest, ve.Error())
		}
		h.log.Error("holiday remove failed", logger.String("date", date), logger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
	return xhttp.SuccessResponse(c)
}

func (h *SchedulerHandler) statusAll(c echo.Context) error {
	all := h.scheduler.StatusAll()
	out := make(map[string]models.RunStatus, len(all))
	for cat, st := range all {
		out[cat.String()] = st
	}
	return xhttp.DataResponse(c, xhttp.Envelope{Success: true, Data: out})
}

func (h *SchedulerHandler) statusOne(c echo.Context) error {
	cat, err := resolveCategory(c.Param("category"))
	if err != nil {
		return xhttp.NotFoundResponse(c, "unknown category: "+c.Param("category"))
	}

	st, ok := h.scheduler.Status(cat)
	if !ok {
		return xhttp.NotFoundResponse(c, "no status for category: "+cat.String())
	}
	// Status is its own body, not wrapped in an envelope.
	return xhttp.DataResponse(c, st)
}

func (h *SchedulerHandler) trigger(c echo.Context) error {
	cat, err := resolveCategory(c.Param("category"))
	if err != nil {
		return xhttp.NotFoundResponse(c, "unknown category: "+c.Param("category"))
	}

	accepted, ok := h.scheduler.Trigger(c.Request().Context(), cat)
	if !ok {
		return xhttp.NotFoundResponse(c, "no runner for category: "+cat.String())
	}
	if !accepted {
		return xhttp.MessageResponse(c, false, "collection already running for "+cat.String())
	}

	st, _ := h.scheduler.Status(cat)
	return xhttp.DataResponse(c, xhttp.Envelope{
		Success: true,
		Message: "collection completed for " + cat.String(),
		Data:    st,
	})
}

// resolveCategory accepts either a category name or a UI tab alias.
func resolveCategory(s string) (models.Category, error) {
	if cat, ok := models.CategoryForTab(s); ok {
		return cat, nil
	}
	return models.ParseCategory(s)
}
