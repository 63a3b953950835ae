package model

import "time"

// Application is a saved application as the service returns it.
type Application struct {
	ID            string        `json:"id"`
	FullName      string        `json:"fullName"`
	Email         string        `json:"email"`
	Phone         string        `json:"phone"`
	Motivation    string        `json:"motivation"`
	Location      string        `json:"location"`
	PreferredDate string        `json:"preferredDate"`
	SelectedPlan  PlanID        `json:"selectedPlan"`
	PlanPrice     int           `json:"planPrice"`
	PaymentMethod PaymentMethod `json:"paymentMethod,omitempty"`
	Status        Status        `json:"status"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// NewApplicationRow maps a draft onto storage columns. planPrice is the
// price resolved at submission time and is never re-derived.
func NewApplicationRow(d Draft, planPrice int) *ApplicationRow {
	row := &ApplicationRow{
		FullName:      d.FullName,
		Email:         d.Email,
		Phone:         d.Phone,
		Motivation:    d.Motivation,
		Location:      d.Location,
		PreferredDate: d.PreferredDate,
		SelectedPlan:  string(d.SelectedPlan),
		PlanPrice:     planPrice,
		Status:        string(StatusPending),
	}
	if d.PaymentMethod != "" {
		pm := string(d.PaymentMethod)
		row.PaymentMethod = &pm
	}
	return row
}

func (r *ApplicationRow) ToApplication() *Application {
	app := &Application{
		ID:            r.ID,
		FullName:      r.FullName,
		Email:         r.Email,
		Phone:         r.Phone,
		Motivation:    r.Motivation,
		Location:      r.Location,
		PreferredDate: r.PreferredDate,
		SelectedPlan:  PlanID(r.SelectedPlan),
		PlanPrice:     r.PlanPrice,
		Status:        Status(r.Status),
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
	if r.PaymentMethod != nil {
		app.PaymentMethod = PaymentMethod(*r.PaymentMethod)
	}
	return app
}
