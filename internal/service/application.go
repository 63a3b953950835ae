package service

import (
	"context"
	"fmt"
	"meet-and-greet/internal/apperr"
	"meet-and-greet/internal/logger"
	"meet-and-greet/internal/metrics"
	"meet-and-greet/internal/model"
	"meet-and-greet/internal/repository"
	"strings"
	"time"
)

// ApplicationService validates applications and moves them in and out of
// the persistence gateway. Every method is a single, independent call;
// failures come back as *apperr.Error.
type ApplicationService interface {
	Save(ctx context.Context, sub model.Submission) (string, error)
	ListAll(ctx context.Context) ([]*model.Application, error)
	GetByID(ctx context.Context, id string) (*model.Application, error)
	GetByEmail(ctx context.Context, email string) ([]*model.Application, error)
	UpdateStatus(ctx context.Context, id string, status string) error
}

type applicationServiceImpl struct {
	applicationRepo repository.ApplicationRepository
	plans           model.PlanCatalog
	logger          logger.Logger
	now             func() time.Time
}

type Option func(*applicationServiceImpl)

// WithClock replaces time.Now as the source of updated_at on status changes.
func WithClock(now func() time.Time) Option {
	return func(s *applicationServiceImpl) {
		s.now = now
	}
}

func NewApplicationService(
	applicationRepo repository.ApplicationRepository,
	plans model.PlanCatalog,
	log logger.Logger,
	opts ...Option,
) ApplicationService {
	s := &applicationServiceImpl{
		applicationRepo: applicationRepo,
		plans:           plans,
		logger:          log.WithFields(map[string]interface{}{"component": "application_service"}),
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *applicationServiceImpl) Save(ctx context.Context, sub model.Submission) (string, error) {
	log := s.logger.WithFields(map[string]interface{}{
		"operation": "save",
		"email":     sub.Email,
		"plan":      sub.SelectedPlan,
	})

	if missing := sub.MissingFields(); len(missing) > 0 {
		return "", s.fail(log, "save", apperr.MissingFields(missing))
	}

	price, ok := s.plans.Price(sub.SelectedPlan)
	if !ok {
		return "", s.fail(log, "save", apperr.Validation(fmt.Sprintf("Unknown meeting plan %q", sub.SelectedPlan)))
	}
	if sub.PlanPrice != 0 && sub.PlanPrice != price {
		return "", s.fail(log, "save", apperr.Validation(fmt.Sprintf("Plan price %d does not match the %s plan", sub.PlanPrice, sub.SelectedPlan)))
	}
	if sub.PaymentMethod != "" {
		if _, err := model.ParsePaymentMethod(string(sub.PaymentMethod)); err != nil {
			return "", s.fail(log, "save", apperr.Validation(fmt.Sprintf("Unknown payment method %q", sub.PaymentMethod)))
		}
	}

	row := model.NewApplicationRow(sub.Draft, price)
	if err := s.applicationRepo.Insert(ctx, row); err != nil {
		return "", s.fail(log, "save", apperr.Persistence(apperr.MsgSaveFailed+": "+err.Error(), err))
	}

	metrics.ApplicationsSaved.WithLabelValues(row.SelectedPlan).Inc()
	log.Info("application saved", map[string]interface{}{
		"applicationId": row.ID,
		"planPrice":     row.PlanPrice,
	})

	return row.ID, nil
}

func (s *applicationServiceImpl) ListAll(ctx context.Context) ([]*model.Application, error) {
	log := s.logger.WithFields(map[string]interface{}{"operation": "list_all"})

	rows, err := s.applicationRepo.Find(ctx, repository.ApplicationFilter{})
	if err != nil {
		return nil, s.fail(log, "list_all", apperr.Persistence(apperr.MsgFetchFailed, err))
	}

	return toApplications(rows), nil
}

func (s *applicationServiceImpl) GetByID(ctx context.Context, id string) (*model.Application, error) {
	log := s.logger.WithFields(map[string]interface{}{"operation": "get_by_id", "applicationId": id})

	if strings.TrimSpace(id) == "" {
		return nil, s.fail(log, "get_by_id", apperr.NotFound("empty application id"))
	}

	rows, err := s.applicationRepo.Find(ctx, repository.ApplicationFilter{ID: id})
	if err != nil {
		return nil, s.fail(log, "get_by_id", apperr.Persistence(apperr.MsgFetchFailed, err))
	}
	if len(rows) == 0 {
		return nil, s.fail(log, "get_by_id", apperr.NotFound("id: "+id))
	}

	return rows[0].ToApplication(), nil
}

func (s *applicationServiceImpl) GetByEmail(ctx context.Context, email string) ([]*model.Application, error) {
	log := s.logger.WithFields(map[string]interface{}{"operation": "get_by_email", "email": email})

	if strings.TrimSpace(email) == "" {
		return nil, s.fail(log, "get_by_email", apperr.Validation("Email is required"))
	}

	rows, err := s.applicationRepo.Find(ctx, repository.ApplicationFilter{Email: email})
	if err != nil {
		return nil, s.fail(log, "get_by_email", apperr.Persistence(apperr.MsgFetchFailed, err))
	}

	return toApplications(rows), nil
}

// UpdateStatus moves an application along the status lifecycle. The
// transition check rides on the update itself; only a miss costs a second
// read, to tell an unknown id from a refused transition.
func (s *applicationServiceImpl) UpdateStatus(ctx context.Context, id string, status string) error {
	log := s.logger.WithFields(map[string]interface{}{
		"operation":     "update_status",
		"applicationId": id,
		"status":        status,
	})

	next, err := model.ParseStatus(status)
	if err != nil {
		return s.fail(log, "update_status", apperr.Validation(fmt.Sprintf("Unknown application status %q", status)))
	}
	if strings.TrimSpace(id) == "" {
		return s.fail(log, "update_status", apperr.NotFound("empty application id"))
	}

	if from := next.Predecessors(); len(from) > 0 {
		n, err := s.applicationRepo.Update(ctx,
			repository.ApplicationFilter{ID: id, Statuses: from},
			model.ApplicationPatch{Status: next, UpdatedAt: s.now().UTC()},
		)
		if err != nil {
			return s.fail(log, "update_status", apperr.Persistence(apperr.MsgStatusFailed, err))
		}
		if n > 0 {
			metrics.StatusUpdates.WithLabelValues(string(next)).Inc()
			log.Info("application status updated", nil)
			return nil
		}
	}

	rows, err := s.applicationRepo.Find(ctx, repository.ApplicationFilter{ID: id})
	if err != nil {
		return s.fail(log, "update_status", apperr.Persistence(apperr.MsgStatusFailed, err))
	}
	if len(rows) == 0 {
		return s.fail(log, "update_status", apperr.NotFound("id: "+id))
	}

	current := model.Status(rows[0].Status)
	if current == next {
		log.Debug("application already has requested status", nil)
		return nil
	}

	return s.fail(log, "update_status", apperr.Validation(fmt.Sprintf("Cannot change status from %s to %s", current, next)))
}

func (s *applicationServiceImpl) fail(log logger.Logger, operation string, err *apperr.Error) error {
	metrics.ApplicationFailures.WithLabelValues(operation, string(err.Kind)).Inc()

	fields := map[string]interface{}{
		"kind":    err.Kind,
		"message": err.Message,
	}
	if err.Details != "" {
		fields["details"] = err.Details
	}
	if err.Err != nil {
		log.WithError(err.Err).Error("application operation failed", fields)
	} else {
		log.Warn("application operation rejected", fields)
	}
	return err
}

func toApplications(rows []*model.ApplicationRow) []*model.Application {
	out := make([]*model.Application, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.ToApplication())
	}
	return out
}
