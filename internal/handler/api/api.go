package api

import (
	"github.com/labstack/echo/v4"
)

// API composes every HTTP handler group and satisfies the server's Handler
// contract.
type API struct {
	scheduler *SchedulerHandler
	movers    *MoversHandler
	status    *StatusHandler
	health    *HealthHandler
}

func New(scheduler *SchedulerHandler, movers *MoversHandler, status *StatusHandler, health *HealthHandler) *API {
	return &API{
		scheduler: scheduler,
		movers:    movers,
		status:    status,
		health:    health,
	}
}

func (a *API) RegisterRoutes(e *echo.Echo) {
	a.health.RegisterRoutes(e)
	a.scheduler.RegisterRoutes(e)
	a.movers.RegisterRoutes(e)
	a.status.RegisterRoutes(e)
}
