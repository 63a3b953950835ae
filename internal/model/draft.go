package model

import (
	"errors"
	"fmt"
)

type PaymentMethod string

const (
	PaymentCrypto   PaymentMethod = "crypto"
	PaymentGiftCard PaymentMethod = "giftcard"
)

var ErrUnknownField = errors.New("unknown draft field")

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch m := PaymentMethod(s); m {
	case PaymentCrypto, PaymentGiftCard:
		return m, nil
	}
	return "", fmt.Errorf("unknown payment method %q", s)
}

// Draft field names as the form posts them.
const (
	FieldFullName      = "fullName"
	FieldEmail         = "email"
	FieldPhone         = "phone"
	FieldMotivation    = "motivation"
	FieldLocation      = "location"
	FieldPreferredDate = "preferredDate"
	FieldSelectedPlan  = "selectedPlan"
	FieldPaymentMethod = "paymentMethod"
)

// Draft is an application that has not been saved yet.
type Draft struct {
	// personal info
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`

	// meeting details
	Motivation    string `json:"motivation"`
	Location      string `json:"location"`
	PreferredDate string `json:"preferredDate"`

	SelectedPlan  PlanID        `json:"selectedPlan"`
	PaymentMethod PaymentMethod `json:"paymentMethod,omitempty"`
}

func NewDraft(plan PlanID) Draft {
	return Draft{SelectedPlan: plan}
}

// Set assigns one of the free-text fields.
func (d *Draft) Set(field, value string) error {
	switch field {
	case FieldFullName:
		d.FullName = value
	case FieldEmail:
		d.Email = value
	case FieldPhone:
		d.Phone = value
	case FieldMotivation:
		d.Motivation = value
	case FieldLocation:
		d.Location = value
	case FieldPreferredDate:
		d.PreferredDate = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return nil
}

func (d Draft) value(field string) string {
	switch field {
	case FieldFullName:
		return d.FullName
	case FieldEmail:
		return d.Email
	case FieldPhone:
		return d.Phone
	case FieldMotivation:
		return d.Motivation
	case FieldLocation:
		return d.Location
	case FieldPreferredDate:
		return d.PreferredDate
	case FieldSelectedPlan:
		return string(d.SelectedPlan)
	case FieldPaymentMethod:
		return string(d.PaymentMethod)
	}
	return ""
}

// RequiredFields must all be non-empty before a draft is saved. Payment
// method is not among them.
var RequiredFields = []string{
	FieldFullName,
	FieldEmail,
	FieldPhone,
	FieldMotivation,
	FieldLocation,
	FieldPreferredDate,
}

// Missing returns which of fields are empty, in the order given.
func (d Draft) Missing(fields ...string) []string {
	var missing []string
	for _, f := range fields {
		if d.value(f) == "" {
			missing = append(missing, f)
		}
	}
	return missing
}

func (d Draft) MissingFields() []string {
	return d.Missing(RequiredFields...)
}

// Submission is a completed draft together with the price resolved for its
// plan at submission time.
type Submission struct {
	Draft
	PlanPrice int `json:"planPrice"`
}
