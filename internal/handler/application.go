package handler

import (
	"meet-and-greet/internal/dto"
	"meet-and-greet/internal/model"
	"meet-and-greet/internal/service"
	"net/http"

	"github.com/labstack/echo/v4"
)

type ApplicationHandler struct {
	applicationService service.ApplicationService
}

func NewApplicationHandler(applicationService service.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{
		applicationService: applicationService,
	}
}

func (h *ApplicationHandler) CreateApplication(c echo.Context) error {
	ctx := c.Request().Context()

	var req model.Submission
	if err := c.Bind(&req); err != nil {
		return err
	}

	applicationID, err := h.applicationService.Save(ctx, req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, dto.Result{
		Success:       true,
		ApplicationID: applicationID,
	})
}

// ListApplications returns every application, or only those for ?email=.
func (h *ApplicationHandler) ListApplications(c echo.Context) error {
	ctx := c.Request().Context()

	var (
		apps []*model.Application
		err  error
	)
	if email := c.QueryParam("email"); email != "" {
		apps, err = h.applicationService.GetByEmail(ctx, email)
	} else {
		apps, err = h.applicationService.ListAll(ctx)
	}
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.OK(apps))
}

func (h *ApplicationHandler) GetApplication(c echo.Context) error {
	ctx := c.Request().Context()

	app, err := h.applicationService.GetByID(ctx, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.OK(app))
}

func (h *ApplicationHandler) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.UpdateStatusRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	if err := h.applicationService.UpdateStatus(ctx, c.Param("id"), req.Status); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.Result{Success: true})
}
