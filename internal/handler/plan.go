package handler

import (
	"meet-and-greet/internal/dto"
	"meet-and-greet/internal/model"
	"net/http"

	"github.com/labstack/echo/v4"
)

type PlanHandler struct {
	plans model.PlanCatalog
}

func NewPlanHandler(plans model.PlanCatalog) *PlanHandler {
	return &PlanHandler{
		plans: plans,
	}
}

func (h *PlanHandler) GetPlans(c echo.Context) error {
	return c.JSON(http.StatusOK, dto.OK(dto.PlansResponse{
		Default: h.plans.Default(),
		Plans:   h.plans.Plans(),
	}))
}
