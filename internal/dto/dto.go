package dto

import (
	"meet-and-greet/internal/model"
	"meet-and-greet/internal/wizard"
)

// Result is the envelope every endpoint answers with.
type Result struct {
	Success       bool        `json:"success"`
	Error         string      `json:"error,omitempty"`
	ApplicationID string      `json:"applicationId,omitempty"`
	Data          interface{} `json:"data,omitempty"`
}

func OK(data interface{}) Result {
	return Result{Success: true, Data: data}
}

func Fail(message string) Result {
	return Result{Success: false, Error: message}
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateFieldsRequest maps camelCase draft field names to new values.
type UpdateFieldsRequest map[string]string

type SelectPlanRequest struct {
	PlanID model.PlanID `json:"planId"`
}

type SelectPaymentRequest struct {
	PaymentMethod model.PaymentMethod `json:"paymentMethod"`
}

type WizardResponse struct {
	SessionID string `json:"sessionId"`
	wizard.Snapshot
}

type PlansResponse struct {
	Default model.PlanID `json:"default"`
	Plans   []model.Plan `json:"plans"`
}
