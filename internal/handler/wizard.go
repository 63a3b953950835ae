package handler

import (
	"context"
	"meet-and-greet/internal/dto"
	"meet-and-greet/internal/logger"
	"meet-and-greet/internal/model"
	"meet-and-greet/internal/session"
	"meet-and-greet/internal/wizard"
	"net/http"
	"sort"
	"time"

	"github.com/labstack/echo/v4"
)

type WizardHandler struct {
	sessions      session.Store
	plans         model.PlanCatalog
	submitter     wizard.Submitter
	logger        logger.Logger
	submitTimeout time.Duration
}

func NewWizardHandler(
	sessions session.Store,
	plans model.PlanCatalog,
	submitter wizard.Submitter,
	log logger.Logger,
	submitTimeout time.Duration,
) *WizardHandler {
	return &WizardHandler{
		sessions:      sessions,
		plans:         plans,
		submitter:     submitter,
		logger:        log,
		submitTimeout: submitTimeout,
	}
}

func (h *WizardHandler) CreateSession(c echo.Context) error {
	ctx := c.Request().Context()

	state := wizard.NewState(h.plans)
	sessionID, err := h.sessions.Create(ctx, state)
	if err != nil {
		return err
	}

	m := wizard.Restore(state, h.plans, h.submitter, h.logger)
	return c.JSON(http.StatusCreated, dto.OK(dto.WizardResponse{SessionID: sessionID, Snapshot: m.Snapshot()}))
}

func (h *WizardHandler) GetSession(c echo.Context) error {
	ctx := c.Request().Context()
	sessionID := c.Param("id")

	state, err := h.sessions.Load(ctx, sessionID)
	if err != nil {
		return err
	}

	m := wizard.Restore(state, h.plans, h.submitter, h.logger)
	return c.JSON(http.StatusOK, dto.OK(dto.WizardResponse{SessionID: sessionID, Snapshot: m.Snapshot()}))
}

// UpdateFields applies every field in the body or none of them.
func (h *WizardHandler) UpdateFields(c echo.Context) error {
	var req dto.UpdateFieldsRequest
	// Bind would also copy the :id path param into the map.
	if err := new(echo.DefaultBinder).BindBody(c, &req); err != nil {
		return err
	}

	names := make([]string, 0, len(req))
	for name := range req {
		names = append(names, name)
	}
	sort.Strings(names)

	return h.mutate(c, func(ctx context.Context, m *wizard.Machine) error {
		for _, name := range names {
			if err := m.UpdateField(name, req[name]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (h *WizardHandler) Advance(c echo.Context) error {
	return h.mutate(c, func(ctx context.Context, m *wizard.Machine) error {
		return m.Advance()
	})
}

func (h *WizardHandler) Retreat(c echo.Context) error {
	return h.mutate(c, func(ctx context.Context, m *wizard.Machine) error {
		return m.Retreat()
	})
}

func (h *WizardHandler) Reset(c echo.Context) error {
	return h.mutate(c, func(ctx context.Context, m *wizard.Machine) error {
		return m.Reset()
	})
}

func (h *WizardHandler) SelectPlan(c echo.Context) error {
	var req dto.SelectPlanRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	return h.mutate(c, func(ctx context.Context, m *wizard.Machine) error {
		_, err := m.SelectPlan(req.PlanID)
		return err
	})
}

func (h *WizardHandler) SelectPayment(c echo.Context) error {
	var req dto.SelectPaymentRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	return h.mutate(c, func(ctx context.Context, m *wizard.Machine) error {
		return m.SelectPaymentMethod(req.PaymentMethod)
	})
}

// Submit keeps the failed state too, so the wizard can show the error and
// the applicant can retry from the payment step.
func (h *WizardHandler) Submit(c echo.Context) error {
	ctx := c.Request().Context()
	sessionID := c.Param("id")

	unlock, err := h.sessions.Lock(ctx, sessionID)
	if err != nil {
		return err
	}
	defer unlock()

	state, err := h.sessions.Load(ctx, sessionID)
	if err != nil {
		return err
	}
	m := wizard.Restore(state, h.plans, h.submitter, h.logger)

	submitCtx, cancel := context.WithTimeout(ctx, h.submitTimeout)
	defer cancel()

	submitErr := m.Submit(submitCtx)
	if submitErr == nil || m.State() != state {
		if err := h.sessions.Save(ctx, sessionID, m.State()); err != nil {
			return err
		}
	}
	if submitErr != nil {
		return submitErr
	}

	snap := m.Snapshot()
	return c.JSON(http.StatusOK, dto.Result{
		Success:       true,
		ApplicationID: snap.ApplicationID,
		Data:          dto.WizardResponse{SessionID: sessionID, Snapshot: snap},
	})
}

// mutate runs op against the session's machine under the session lock and
// stores the result only when op succeeds.
func (h *WizardHandler) mutate(c echo.Context, op func(ctx context.Context, m *wizard.Machine) error) error {
	ctx := c.Request().Context()
	sessionID := c.Param("id")

	unlock, err := h.sessions.Lock(ctx, sessionID)
	if err != nil {
		return err
	}
	defer unlock()

	state, err := h.sessions.Load(ctx, sessionID)
	if err != nil {
		return err
	}

	m := wizard.Restore(state, h.plans, h.submitter, h.logger)
	if err := op(ctx, m); err != nil {
		return err
	}

	if err := h.sessions.Save(ctx, sessionID, m.State()); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.OK(dto.WizardResponse{SessionID: sessionID, Snapshot: m.Snapshot()}))
}
