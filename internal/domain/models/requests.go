package models

// Requests for scheduler HTTP endpoints. Defined in domain for consistency and reuse.

type UpdateScheduleRequest struct {
	SchedulerType string        `json:"scheduler_type" validate:"required"`
	Config        SchedulePatch `json:"config"`
}

type HolidayRequest struct {
	Date string `json:"date" validate:"required"`
}

type MoversRequest struct {
	Scope string `query:"scope" json:"scope" default:"all" validate:"oneof=all broad-index sector-index other"`
}

type PageRequest struct {
	Page  int `query:"page" json:"page" default:"1" validate:"gte=1"`
	Limit int `query:"limit" json:"limit" default:"50" validate:"gte=1,lte=500"`
}
