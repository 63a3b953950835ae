package repository

import (
	"context"
	"errors"
	"meet-and-greet/internal/model"

	"gorm.io/gorm"
)

// ApplicationFilter narrows a lookup or an update. Zero fields do not filter.
type ApplicationFilter struct {
	ID       string
	Email    string
	Statuses []model.Status
}

// ApplicationRepository is the row-level gateway to the applications table.
// Every call is a single request against the store.
type ApplicationRepository interface {
	// Insert stores a new row and fills in its id and timestamps.
	Insert(ctx context.Context, row *model.ApplicationRow) error
	// Find returns matching rows, newest first.
	Find(ctx context.Context, filter ApplicationFilter) ([]*model.ApplicationRow, error)
	// Update patches the rows matching filter and reports how many changed.
	Update(ctx context.Context, filter ApplicationFilter, patch model.ApplicationPatch) (int64, error)
}

var ErrUnfilteredUpdate = errors.New("update requires an application id")

type applicationRepoImpl struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &applicationRepoImpl{
		db: db,
	}
}

func (r *applicationRepoImpl) Insert(ctx context.Context, row *model.ApplicationRow) error {
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *applicationRepoImpl) Find(ctx context.Context, filter ApplicationFilter) ([]*model.ApplicationRow, error) {
	var rows []*model.ApplicationRow
	err := applyFilter(r.db.WithContext(ctx), filter).
		Order("created_at DESC").
		Order("id DESC").
		Find(&rows).Error

	if err != nil {
		return nil, err
	}

	return rows, nil
}

func (r *applicationRepoImpl) Update(ctx context.Context, filter ApplicationFilter, patch model.ApplicationPatch) (int64, error) {
	if filter.ID == "" {
		return 0, ErrUnfilteredUpdate
	}

	result := applyFilter(r.db.WithContext(ctx).Model(&model.ApplicationRow{}), filter).
		Updates(patch.Columns())

	return result.RowsAffected, result.Error
}

func applyFilter(tx *gorm.DB, filter ApplicationFilter) *gorm.DB {
	if filter.ID != "" {
		tx = tx.Where("id = ?", filter.ID)
	}
	if filter.Email != "" {
		tx = tx.Where("email = ?", filter.Email)
	}
	if len(filter.Statuses) > 0 {
		tx = tx.Where("status IN ?", statusStrings(filter.Statuses))
	}
	return tx
}

func statusStrings(statuses []model.Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
