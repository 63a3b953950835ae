package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const ApplicationsTable = "meeting_applications"

// ApplicationRow is the storage shape of a saved application.
type ApplicationRow struct {
	ID            string    `gorm:"primaryKey;size:36;not null" json:"id"`
	FullName      string    `gorm:"column:full_name;size:255;not null" json:"full_name"`
	Email         string    `gorm:"column:email;size:255;index;not null" json:"email"`
	Phone         string    `gorm:"column:phone;size:64;not null" json:"phone"`
	Motivation    string    `gorm:"column:motivation;type:text;not null" json:"motivation"`
	Location      string    `gorm:"column:location;size:255;not null" json:"location"`
	PreferredDate string    `gorm:"column:preferred_date;size:32;not null" json:"preferred_date"`
	SelectedPlan  string    `gorm:"column:selected_plan;size:32;not null" json:"selected_plan"`
	PlanPrice     int       `gorm:"column:plan_price;not null" json:"plan_price"`
	PaymentMethod *string   `gorm:"column:payment_method;size:32" json:"payment_method"`
	Status        string    `gorm:"column:status;size:32;index;not null;default:'pending'" json:"status"`
	CreatedAt     time.Time `gorm:"column:created_at;precision:6;index" json:"created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at;precision:6" json:"updated_at"`
}

func (ApplicationRow) TableName() string { return ApplicationsTable }

// BeforeCreate assigns the row id when the caller left it empty.
func (r *ApplicationRow) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// ApplicationPatch is the set of columns a status update may touch.
type ApplicationPatch struct {
	Status    Status
	UpdatedAt time.Time
}

func (p ApplicationPatch) Columns() map[string]interface{} {
	return map[string]interface{}{
		"status":     string(p.Status),
		"updated_at": p.UpdatedAt,
	}
}
