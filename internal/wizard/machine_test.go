package wizard

import (
	"context"
	"errors"
	"math/rand"
	"meet-and-greet/internal/apperr"
	"meet-and-greet/internal/logger"
	"meet-and-greet/internal/logger/loggertest"
	"meet-and-greet/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSubmitter struct {
	mock.Mock
}

func (m *mockSubmitter) Save(ctx context.Context, sub model.Submission) (string, error) {
	args := m.Called(ctx, sub)
	return args.String(0), args.Error(1)
}

func newMachine(t *testing.T, sub Submitter) *Machine {
	return New(model.DefaultPlanCatalog(), sub, loggertest.New(t))
}

func fillPersonal(t *testing.T, m *Machine) {
	require.NoError(t, m.UpdateField(model.FieldFullName, "Jane Doe"))
	require.NoError(t, m.UpdateField(model.FieldEmail, "jane@example.com"))
	require.NoError(t, m.UpdateField(model.FieldPhone, "555-0100"))
}

func fillDetails(t *testing.T, m *Machine) {
	require.NoError(t, m.UpdateField(model.FieldMotivation, "fan"))
	require.NoError(t, m.UpdateField(model.FieldLocation, "NYC"))
	require.NoError(t, m.UpdateField(model.FieldPreferredDate, "2026-01-20"))
}

// toPayment walks a fresh machine to the payment step.
func toPayment(t *testing.T, m *Machine) {
	fillPersonal(t, m)
	require.NoError(t, m.Advance())
	fillDetails(t, m)
	require.NoError(t, m.Advance())
	require.NoError(t, m.Advance())
	require.Equal(t, StepPayment, m.Step())
}

func TestMachine_StartsOnPersonalInfoWithDefaultPlan(t *testing.T) {
	m := newMachine(t, new(mockSubmitter))

	assert.Equal(t, StepPersonalInfo, m.Step())
	assert.Equal(t, model.PlanPremium, m.State().Draft.SelectedPlan)
	assert.Equal(t, 1000, m.Total())
}

func TestMachine_StepStaysInRange(t *testing.T) {
	m := newMachine(t, new(mockSubmitter))
	fillPersonal(t, m)
	fillDetails(t, m)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		if rng.Intn(2) == 0 {
			_ = m.Advance()
		} else {
			_ = m.Retreat()
		}
		step := m.Step()
		assert.GreaterOrEqual(t, int(step), int(StepPersonalInfo))
		assert.LessOrEqual(t, int(step), int(StepConfirmation))
	}
}

func TestMachine_RetreatClampsAndKeepsData(t *testing.T) {
	m := newMachine(t, new(mockSubmitter))

	require.NoError(t, m.Retreat())
	assert.Equal(t, StepPersonalInfo, m.Step())

	fillPersonal(t, m)
	require.NoError(t, m.Advance())
	require.NoError(t, m.Retreat())

	assert.Equal(t, StepPersonalInfo, m.Step())
	assert.Equal(t, "Jane Doe", m.State().Draft.FullName)
}

func TestMachine_AdvanceValidatesCurrentStep(t *testing.T) {
	m := newMachine(t, new(mockSubmitter))
	require.NoError(t, m.UpdateField(model.FieldFullName, "Jane Doe"))

	err := m.Advance()

	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperr.KindValidation, appErr.Kind)
	assert.Equal(t, "missing: email, phone", appErr.Details)
	assert.Equal(t, StepPersonalInfo, m.Step())
}

func TestMachine_AdvanceFromPaymentRequiresSubmit(t *testing.T) {
	m := newMachine(t, new(mockSubmitter))
	toPayment(t, m)

	assert.ErrorIs(t, m.Advance(), ErrSubmitRequired)
	assert.Equal(t, StepPayment, m.Step())
}

func TestMachine_UpdateFieldUnknown(t *testing.T) {
	m := newMachine(t, new(mockSubmitter))

	assert.ErrorIs(t, m.UpdateField("nickname", "JD"), ErrUnknownField)
	assert.ErrorIs(t, m.UpdateField(model.FieldSelectedPlan, "basic"), ErrUnknownField)
}

func TestMachine_SelectPlanTotals(t *testing.T) {
	tests := []struct {
		plan  model.PlanID
		total int
	}{
		{model.PlanStandard, 750},
		{model.PlanBasic, 500},
		{model.PlanPremium, 1000},
	}

	for _, tt := range tests {
		t.Run(string(tt.plan), func(t *testing.T) {
			m := newMachine(t, new(mockSubmitter))
			fillPersonal(t, m)
			require.NoError(t, m.Advance())
			fillDetails(t, m)
			require.NoError(t, m.Advance())

			total, err := m.SelectPlan(tt.plan)
			require.NoError(t, err)
			assert.Equal(t, tt.total, total)
			assert.Equal(t, tt.total, m.Total())
			assert.Equal(t, tt.total, m.Snapshot().Total)
		})
	}
}

func TestMachine_SelectPlanGuards(t *testing.T) {
	m := newMachine(t, new(mockSubmitter))

	_, err := m.SelectPlan(model.PlanBasic)
	assert.ErrorIs(t, err, ErrWrongStep)

	fillPersonal(t, m)
	require.NoError(t, m.Advance())
	fillDetails(t, m)
	require.NoError(t, m.Advance())

	_, err = m.SelectPlan("platinum")
	assert.ErrorIs(t, err, ErrUnknownPlan)
	assert.Equal(t, model.PlanPremium, m.State().Draft.SelectedPlan)
}

func TestMachine_AlternatePlanCatalog(t *testing.T) {
	plans, err := model.NewPlanCatalog("solo", model.Plan{ID: "solo", Name: "Solo", Price: 42})
	require.NoError(t, err)

	m := New(plans, new(mockSubmitter), logger.NewNoOpLogger())

	assert.Equal(t, model.PlanID("solo"), m.State().Draft.SelectedPlan)
	assert.Equal(t, 42, m.Total())
}

func TestMachine_SelectPaymentMethodGuards(t *testing.T) {
	m := newMachine(t, new(mockSubmitter))
	assert.ErrorIs(t, m.SelectPaymentMethod(model.PaymentCrypto), ErrWrongStep)

	toPayment(t, m)
	assert.ErrorIs(t, m.SelectPaymentMethod("cash"), ErrUnknownPaymentMethod)
	assert.False(t, m.CanSubmit())

	require.NoError(t, m.SelectPaymentMethod(model.PaymentGiftCard))
	assert.True(t, m.CanSubmit())
}

func TestMachine_SubmitIsNoOpUntilReady(t *testing.T) {
	sub := new(mockSubmitter)
	m := newMachine(t, sub)

	before := m.State()
	assert.ErrorIs(t, m.Submit(context.Background()), ErrNotReady)
	assert.Equal(t, before, m.State())

	toPayment(t, m)
	before = m.State()
	assert.ErrorIs(t, m.Submit(context.Background()), ErrNotReady)
	assert.Equal(t, before, m.State())

	sub.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestMachine_SubmitSuccess(t *testing.T) {
	sub := new(mockSubmitter)
	sub.On("Save", mock.Anything, mock.MatchedBy(func(s model.Submission) bool {
		return s.Email == "jane@example.com" &&
			s.SelectedPlan == model.PlanPremium &&
			s.PlanPrice == 1000 &&
			s.PaymentMethod == model.PaymentCrypto
	})).Return("app-1", nil).Once()

	m := newMachine(t, sub)
	toPayment(t, m)
	require.NoError(t, m.SelectPaymentMethod(model.PaymentCrypto))

	require.NoError(t, m.Submit(context.Background()))

	assert.Equal(t, StepConfirmation, m.Step())
	assert.Equal(t, "app-1", m.State().ApplicationID)
	assert.ErrorIs(t, m.UpdateField(model.FieldFullName, "John"), ErrDraftLocked)
	assert.ErrorIs(t, m.Submit(context.Background()), ErrNotReady)
	sub.AssertExpectations(t)
}

func TestMachine_SubmitFailureStaysOnPayment(t *testing.T) {
	sub := new(mockSubmitter)
	sub.On("Save", mock.Anything, mock.Anything).
		Return("", apperr.Persistence("Failed to save application: connection reset", errors.New("connection reset"))).Once()
	sub.On("Save", mock.Anything, mock.Anything).Return("app-2", nil).Once()

	m := newMachine(t, sub)
	toPayment(t, m)
	require.NoError(t, m.SelectPaymentMethod(model.PaymentCrypto))
	draft := m.State().Draft

	err := m.Submit(context.Background())

	assert.True(t, apperr.Is(err, apperr.KindPersistence))
	assert.Equal(t, StepPayment, m.Step())
	assert.Equal(t, draft, m.State().Draft)
	assert.Equal(t, "Failed to save application: connection reset", m.Snapshot().LastError)

	require.NoError(t, m.Submit(context.Background()))
	assert.Equal(t, StepConfirmation, m.Step())
	assert.Empty(t, m.State().LastError)
	sub.AssertNumberOfCalls(t, "Save", 2)
}

func TestMachine_SubmitRejectsConcurrentSubmit(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})

	sub := new(mockSubmitter)
	sub.On("Save", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			close(entered)
			<-release
		}).
		Return("app-1", nil).Once()

	m := newMachine(t, sub)
	toPayment(t, m)
	require.NoError(t, m.SelectPaymentMethod(model.PaymentCrypto))

	done := make(chan error, 1)
	go func() { done <- m.Submit(context.Background()) }()
	<-entered

	assert.ErrorIs(t, m.Submit(context.Background()), ErrSubmitInProgress)
	assert.ErrorIs(t, m.Reset(), ErrSubmitInProgress)
	assert.ErrorIs(t, m.Retreat(), ErrSubmitInProgress)
	assert.False(t, m.CanSubmit())

	close(release)
	require.NoError(t, <-done)
	sub.AssertNumberOfCalls(t, "Save", 1)
}

func TestMachine_ResetFromConfirmation(t *testing.T) {
	sub := new(mockSubmitter)
	sub.On("Save", mock.Anything, mock.Anything).Return("app-1", nil)

	m := newMachine(t, sub)
	toPayment(t, m)
	require.NoError(t, m.SelectPaymentMethod(model.PaymentGiftCard))
	require.NoError(t, m.Submit(context.Background()))

	require.NoError(t, m.Reset())

	st := m.State()
	assert.Equal(t, StepPersonalInfo, st.Step)
	assert.Equal(t, model.NewDraft(model.PlanPremium), st.Draft)
	assert.Empty(t, st.ApplicationID)
	assert.Empty(t, st.LastError)
}

func TestMachine_ResetAbandonsDraftMidFlow(t *testing.T) {
	sub := new(mockSubmitter)
	m := newMachine(t, sub)
	fillPersonal(t, m)
	require.NoError(t, m.Advance())
	fillDetails(t, m)
	require.NoError(t, m.Advance())
	_, err := m.SelectPlan(model.PlanBasic)
	require.NoError(t, err)
	require.Equal(t, StepMeetingPlan, m.Step())

	require.NoError(t, m.Reset())

	st := m.State()
	assert.Equal(t, StepPersonalInfo, st.Step)
	assert.Equal(t, model.NewDraft(model.PlanPremium), st.Draft)
	sub.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestRestore_ClampsStep(t *testing.T) {
	plans := model.DefaultPlanCatalog()

	m := Restore(State{Step: 9, Draft: model.NewDraft(plans.Default())}, plans, new(mockSubmitter), logger.NewNoOpLogger())

	assert.Equal(t, StepConfirmation, m.Step())
	assert.Equal(t, "confirmation", m.Snapshot().StepName)
}

func TestSnapshot(t *testing.T) {
	m := newMachine(t, new(mockSubmitter))
	fillPersonal(t, m)
	require.NoError(t, m.Advance())

	snap := m.Snapshot()

	assert.Equal(t, 1, snap.Step)
	assert.Equal(t, "meeting details", snap.StepName)
	assert.Len(t, snap.Steps, 5)
	require.NotNil(t, snap.Plan)
	assert.Equal(t, "Premium Package", snap.Plan.Name)
	assert.False(t, snap.Submitted)
}
