package wizard

import "meet-and-greet/internal/model"

// Snapshot is the read-only view rendered to clients.
type Snapshot struct {
	Step          int         `json:"step"`
	StepName      string      `json:"stepName"`
	Steps         []string    `json:"steps"`
	Draft         model.Draft `json:"draft"`
	Plan          *model.Plan `json:"plan,omitempty"`
	Total         int         `json:"total"`
	CanSubmit     bool        `json:"canSubmit"`
	Submitted     bool        `json:"submitted"`
	ApplicationID string      `json:"applicationId,omitempty"`
	LastError     string      `json:"lastError,omitempty"`
}

func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Snapshot{
		Step:          int(m.state.Step),
		StepName:      m.state.Step.String(),
		Steps:         append([]string(nil), stepNames[:]...),
		Draft:         m.state.Draft,
		CanSubmit:     !m.submitting && m.readyLocked(),
		Submitted:     m.state.Step == StepConfirmation,
		ApplicationID: m.state.ApplicationID,
		LastError:     m.state.LastError,
	}
	if plan, ok := m.plans.Lookup(m.state.Draft.SelectedPlan); ok {
		s.Plan = &plan
		s.Total = plan.Price
	}
	return s
}
