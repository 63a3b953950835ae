// Package wizard drives an applicant through the five application steps and
// hands the finished draft to the record service.
package wizard

import (
	"context"
	"errors"
	"meet-and-greet/internal/apperr"
	"meet-and-greet/internal/logger"
	"meet-and-greet/internal/metrics"
	"meet-and-greet/internal/model"
	"sync"
)

type Step int

const (
	StepPersonalInfo Step = iota
	StepMeetingDetails
	StepMeetingPlan
	StepPayment
	StepConfirmation
)

var stepNames = [...]string{
	StepPersonalInfo:   "personal info",
	StepMeetingDetails: "meeting details",
	StepMeetingPlan:    "meeting plan",
	StepPayment:        "payment",
	StepConfirmation:   "confirmation",
}

func (s Step) String() string {
	if s < StepPersonalInfo || s > StepConfirmation {
		return "unknown"
	}
	return stepNames[s]
}

func clampStep(s Step) Step {
	switch {
	case s < StepPersonalInfo:
		return StepPersonalInfo
	case s > StepConfirmation:
		return StepConfirmation
	}
	return s
}

// Fields that must be filled before leaving a step.
var stepFields = map[Step][]string{
	StepPersonalInfo:   {model.FieldFullName, model.FieldEmail, model.FieldPhone},
	StepMeetingDetails: {model.FieldMotivation, model.FieldLocation, model.FieldPreferredDate},
	StepMeetingPlan:    {model.FieldSelectedPlan},
}

var (
	ErrUnknownField         = model.ErrUnknownField
	ErrWrongStep            = errors.New("operation is not available on the current step")
	ErrUnknownPlan          = errors.New("unknown meeting plan")
	ErrUnknownPaymentMethod = errors.New("unknown payment method")
	ErrNotReady             = errors.New("application is not ready to submit")
	ErrSubmitRequired       = errors.New("submit the application to continue")
	ErrSubmitInProgress     = errors.New("application submission already in progress")
	ErrDraftLocked          = errors.New("application already submitted")
)

// Submitter persists a finished application and returns its id.
type Submitter interface {
	Save(ctx context.Context, sub model.Submission) (string, error)
}

// State is everything a wizard needs to resume; it is what session stores
// keep between requests.
type State struct {
	Step          Step        `json:"step"`
	Draft         model.Draft `json:"draft"`
	ApplicationID string      `json:"applicationId,omitempty"`
	LastError     string      `json:"lastError,omitempty"`
}

func NewState(plans model.PlanCatalog) State {
	return State{
		Step:  StepPersonalInfo,
		Draft: model.NewDraft(plans.Default()),
	}
}

// Machine is safe for concurrent use. A submit holds no lock while the
// record service runs, but every other operation is refused until it ends.
type Machine struct {
	mu         sync.Mutex
	plans      model.PlanCatalog
	submitter  Submitter
	logger     logger.Logger
	state      State
	submitting bool
}

func New(plans model.PlanCatalog, submitter Submitter, log logger.Logger) *Machine {
	return Restore(NewState(plans), plans, submitter, log)
}

// Restore rebuilds a machine around a previously saved state.
func Restore(state State, plans model.PlanCatalog, submitter Submitter, log logger.Logger) *Machine {
	state.Step = clampStep(state.Step)
	return &Machine{
		plans:     plans,
		submitter: submitter,
		logger:    log.WithFields(map[string]interface{}{"component": "wizard"}),
		state:     state,
	}
}

func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Machine) Step() Step {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Step
}

// UpdateField sets one free-text draft field. No validation happens here.
func (m *Machine) UpdateField(name, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.editable(); err != nil {
		return err
	}
	return m.state.Draft.Set(name, value)
}

// Advance moves one step forward once the current step is complete.
func (m *Machine) Advance() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.submitting {
		return ErrSubmitInProgress
	}

	switch m.state.Step {
	case StepConfirmation:
		return nil
	case StepPayment:
		return ErrSubmitRequired
	}

	if missing := m.state.Draft.Missing(stepFields[m.state.Step]...); len(missing) > 0 {
		return apperr.MissingFields(missing)
	}
	if m.state.Step == StepMeetingPlan {
		if _, ok := m.plans.Lookup(m.state.Draft.SelectedPlan); !ok {
			return ErrUnknownPlan
		}
	}

	m.moveTo(m.state.Step + 1)
	return nil
}

// Retreat moves one step back and keeps everything entered so far.
func (m *Machine) Retreat() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.submitting {
		return ErrSubmitInProgress
	}
	if m.state.Step == StepConfirmation {
		return nil
	}
	m.moveTo(clampStep(m.state.Step - 1))
	return nil
}

// SelectPlan picks a plan and returns the resulting total.
func (m *Machine) SelectPlan(id model.PlanID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.editable(); err != nil {
		return 0, err
	}
	if m.state.Step != StepMeetingPlan {
		return 0, ErrWrongStep
	}
	plan, ok := m.plans.Lookup(id)
	if !ok {
		return 0, ErrUnknownPlan
	}

	m.state.Draft.SelectedPlan = plan.ID
	return plan.Price, nil
}

func (m *Machine) SelectPaymentMethod(method model.PaymentMethod) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.editable(); err != nil {
		return err
	}
	if m.state.Step != StepPayment {
		return ErrWrongStep
	}
	pm, err := model.ParsePaymentMethod(string(method))
	if err != nil {
		return ErrUnknownPaymentMethod
	}

	m.state.Draft.PaymentMethod = pm
	return nil
}

// Submit saves the draft. A failed save leaves the wizard on the payment
// step with the draft untouched and the service message in LastError.
func (m *Machine) Submit(ctx context.Context) error {
	m.mu.Lock()
	if m.submitting {
		m.mu.Unlock()
		return ErrSubmitInProgress
	}
	if !m.readyLocked() {
		m.mu.Unlock()
		metrics.WizardSubmissions.WithLabelValues("not_ready").Inc()
		return ErrNotReady
	}
	if missing := m.state.Draft.MissingFields(); len(missing) > 0 {
		m.mu.Unlock()
		metrics.WizardSubmissions.WithLabelValues("not_ready").Inc()
		return apperr.MissingFields(missing)
	}

	price, _ := m.plans.Price(m.state.Draft.SelectedPlan)
	sub := model.Submission{Draft: m.state.Draft, PlanPrice: price}
	m.submitting = true
	m.mu.Unlock()

	id, err := m.submitter.Save(ctx, sub)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.submitting = false

	if err != nil {
		m.state.LastError = apperr.Message(err)
		metrics.WizardSubmissions.WithLabelValues("failure").Inc()
		m.logger.WithError(err).Warn("application submit failed", map[string]interface{}{
			"email": sub.Email,
		})
		return err
	}

	m.state.ApplicationID = id
	m.state.LastError = ""
	m.moveTo(StepConfirmation)
	metrics.WizardSubmissions.WithLabelValues("success").Inc()
	m.logger.Info("application submitted", map[string]interface{}{
		"applicationId": id,
		"plan":          sub.SelectedPlan,
		"planPrice":     sub.PlanPrice,
	})
	return nil
}

// Reset starts a fresh application. It is allowed from any step, so a
// half-filled draft can be abandoned as well as a confirmed one.
func (m *Machine) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.submitting {
		return ErrSubmitInProgress
	}
	m.state = NewState(m.plans)
	m.logger.Debug("wizard reset", nil)
	return nil
}

// Total is the price of the currently selected plan, or 0 if none is set.
func (m *Machine) Total() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	price, _ := m.plans.Price(m.state.Draft.SelectedPlan)
	return price
}

func (m *Machine) CanSubmit() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.submitting && m.readyLocked()
}

func (m *Machine) readyLocked() bool {
	return m.state.Step == StepPayment && m.state.Draft.PaymentMethod != ""
}

func (m *Machine) editable() error {
	if m.submitting {
		return ErrSubmitInProgress
	}
	if m.state.Step == StepConfirmation {
		return ErrDraftLocked
	}
	return nil
}

func (m *Machine) moveTo(step Step) {
	if step == m.state.Step {
		return
	}
	m.logger.Debug("wizard step changed", map[string]interface{}{
		"from": m.state.Step.String(),
		"to":   step.String(),
	})
	m.state.Step = step
}
