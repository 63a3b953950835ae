package repository

import (
	"context"
	"errors"
	"meet-and-greet/internal/client"
	"meet-and-greet/internal/model"
	"time"
)

type supabaseApplicationRepoImpl struct {
	client *client.SupabaseClient
	table  string
}

// NewSupabaseApplicationRepository stores applications in a Supabase table.
// The table generates ids and timestamps itself.
func NewSupabaseApplicationRepository(c *client.SupabaseClient, table string) ApplicationRepository {
	if table == "" {
		table = model.ApplicationsTable
	}
	return &supabaseApplicationRepoImpl{
		client: c,
		table:  table,
	}
}

type supabaseInsertRow struct {
	ID            string  `json:"id,omitempty"`
	FullName      string  `json:"full_name"`
	Email         string  `json:"email"`
	Phone         string  `json:"phone"`
	Motivation    string  `json:"motivation"`
	Location      string  `json:"location"`
	PreferredDate string  `json:"preferred_date"`
	SelectedPlan  string  `json:"selected_plan"`
	PlanPrice     int     `json:"plan_price"`
	PaymentMethod *string `json:"payment_method"`
	Status        string  `json:"status"`
}

type supabasePatch struct {
	Status    string `json:"status"`
	UpdatedAt string `json:"updated_at"`
}

func (r *supabaseApplicationRepoImpl) Insert(ctx context.Context, row *model.ApplicationRow) error {
	payload := []supabaseInsertRow{{
		ID:            row.ID,
		FullName:      row.FullName,
		Email:         row.Email,
		Phone:         row.Phone,
		Motivation:    row.Motivation,
		Location:      row.Location,
		PreferredDate: row.PreferredDate,
		SelectedPlan:  row.SelectedPlan,
		PlanPrice:     row.PlanPrice,
		PaymentMethod: row.PaymentMethod,
		Status:        row.Status,
	}}

	var stored []*model.ApplicationRow
	if err := r.client.From(r.table).Insert(ctx, payload, &stored); err != nil {
		return err
	}
	if len(stored) == 0 {
		return errors.New("insert returned no rows")
	}

	*row = *stored[0]
	return nil
}

func (r *supabaseApplicationRepoImpl) Find(ctx context.Context, filter ApplicationFilter) ([]*model.ApplicationRow, error) {
	q := r.client.From(r.table)
	if filter.ID != "" {
		q = q.Eq("id", filter.ID)
	}
	if filter.Email != "" {
		q = q.Eq("email", filter.Email)
	}
	if len(filter.Statuses) > 0 {
		q = q.In("status", statusStrings(filter.Statuses))
	}

	var rows []*model.ApplicationRow
	if err := q.Order("created_at", false).Select(ctx, "*", &rows); err != nil {
		return nil, err
	}

	return rows, nil
}

func (r *supabaseApplicationRepoImpl) Update(ctx context.Context, filter ApplicationFilter, patch model.ApplicationPatch) (int64, error) {
	if filter.ID == "" {
		return 0, ErrUnfilteredUpdate
	}

	q := r.client.From(r.table).Eq("id", filter.ID)
	if filter.Email != "" {
		q = q.Eq("email", filter.Email)
	}
	if len(filter.Statuses) > 0 {
		q = q.In("status", statusStrings(filter.Statuses))
	}

	var updated []*model.ApplicationRow
	err := q.Update(ctx, supabasePatch{
		Status:    string(patch.Status),
		UpdatedAt: patch.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}, &updated)
	if err != nil {
		return 0, err
	}

	return int64(len(updated)), nil
}
