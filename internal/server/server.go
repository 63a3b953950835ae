package server

import (
	"context"
	"meet-and-greet/internal/handler"
	"meet-and-greet/internal/logger"
	"meet-and-greet/internal/metrics"
	appmiddleware "meet-and-greet/internal/middleware"
	"meet-and-greet/internal/model"
	"meet-and-greet/internal/service"
	"meet-and-greet/internal/session"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type Options struct {
	SubmitTimeout time.Duration
}

type Server struct {
	echo               *echo.Echo
	planHandler        *handler.PlanHandler
	wizardHandler      *handler.WizardHandler
	applicationHandler *handler.ApplicationHandler
}

func NewServer(
	applicationService service.ApplicationService,
	sessions session.Store,
	plans model.PlanCatalog,
	log logger.Logger,
	opts Options,
) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler(log)

	e.Use(middleware.RequestID())
	e.Use(appmiddleware.RequestLogger(log))
	// Metrics wraps Recover so recovered panics are counted as 500s.
	e.Use(appmiddleware.Metrics())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	if opts.SubmitTimeout <= 0 {
		opts.SubmitTimeout = 10 * time.Second
	}

	s := &Server{
		echo:               e,
		planHandler:        handler.NewPlanHandler(plans),
		wizardHandler:      handler.NewWizardHandler(sessions, plans, applicationService, log, opts.SubmitTimeout),
		applicationHandler: handler.NewApplicationHandler(applicationService),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.echo.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	api.GET("/plans", s.planHandler.GetPlans)

	// -------- wizard sessions --------
	wizard := api.Group("/wizard")
	wizard.POST("", s.wizardHandler.CreateSession)
	wizard.GET("/:id", s.wizardHandler.GetSession)
	wizard.PATCH("/:id/fields", s.wizardHandler.UpdateFields)
	wizard.POST("/:id/advance", s.wizardHandler.Advance)
	wizard.POST("/:id/retreat", s.wizardHandler.Retreat)
	wizard.POST("/:id/reset", s.wizardHandler.Reset)
	wizard.POST("/:id/plan", s.wizardHandler.SelectPlan)
	wizard.POST("/:id/payment", s.wizardHandler.SelectPayment)
	wizard.POST("/:id/submit", s.wizardHandler.Submit)

	// -------- applications --------
	applications := api.Group("/applications")
	applications.POST("", s.applicationHandler.CreateApplication)
	applications.GET("", s.applicationHandler.ListApplications)
	applications.GET("/:id", s.applicationHandler.GetApplication)
	applications.PATCH("/:id/status", s.applicationHandler.UpdateStatus)
}

// Handler exposes the router, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
