package service

import (
	"context"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/rzyfront/vendix-core/internal/domain"
	"github.com/rzyfront/vendix-core/internal/infra/scoped"
	"github.com/rzyfront/vendix-core/internal/port"
)

var userTracer = otel.Tracer("service/users")

// UserService manages admin users inside the caller's organization.
type UserService struct {
	store  *scoped.Store
	tasks  port.TaskRunner
	logger *zap.Logger
}

// NewUserService creates a new user service.
func NewUserService(store *scoped.Store, tasks port.TaskRunner, logger *zap.Logger) *UserService {
	return &UserService{store: store, tasks: tasks, logger: logger}
}

func (s *UserService) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	ctx, span := userTracer.Start(ctx, "UserService.GetUser")
	defer span.End()

	return s.store.GetUser(ctx, userID)
}

func (s *UserService) ListUsers(ctx context.Context, f domain.UserFilter, page, limit int) ([]domain.User, int64, error) {
	ctx, span := userTracer.Start(ctx, "UserService.ListUsers")
	defer span.End()

	return s.store.ListUsers(ctx, f, page, limit)
}

func (s *UserService) CreateUser(ctx context.Context, u *domain.User, password string) (*domain.User, error) {
	ctx, span := userTracer.Start(ctx, "UserService.CreateUser")
	defer span.End()

	if u.Email == "" {
		return nil, &domain.ErrValidation{Field: "email", Message: "email is required"}
	}
	if len(password) < 8 {
		return nil, &domain.ErrValidation{Field: "password", Message: "password must be at least 8 characters"}
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	u.PasswordHash = hash
	if u.Status == "" {
		u.Status = "active"
	}

	created, err := s.store.CreateUser(ctx, u)
	if err != nil {
		return nil, err
	}

	recordAudit(s.tasks, s.store, ctx, "create", "user", strconv.FormatInt(created.ID, 10), created.Email)
	s.logger.Info("user created", zap.Int64("user_id", created.ID), zap.String("email", created.Email))
	return created, nil
}

func (s *UserService) UpdateUser(ctx context.Context, u *domain.User) (*domain.User, error) {
	ctx, span := userTracer.Start(ctx, "UserService.UpdateUser")
	defer span.End()

	existing, err := s.store.GetUser(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	// Password changes go through a dedicated flow.
	u.PasswordHash = existing.PasswordHash
	u.Email = existing.Email

	updated, err := s.store.UpdateUser(ctx, u)
	if err != nil {
		return nil, err
	}
	recordAudit(s.tasks, s.store, ctx, "update", "user", strconv.FormatInt(updated.ID, 10), "")
	return updated, nil
}

// BulkUpdateStatus updates the status of many users in one scoped write.
func (s *UserService) BulkUpdateStatus(ctx context.Context, userIDs []int64, status string) (int64, error) {
	ctx, span := userTracer.Start(ctx, "UserService.BulkUpdateStatus")
	defer span.End()

	if len(userIDs) == 0 {
		return 0, &domain.ErrValidation{Field: "user_ids", Message: "at least one user id is required"}
	}
	switch status {
	case "active", "suspended", "disabled":
	default:
		return 0, &domain.ErrValidation{Field: "status", Message: "unknown status: " + status}
	}

	affected, err := s.store.BulkUpdateUserStatus(ctx, userIDs, status)
	if err != nil {
		return 0, err
	}
	recordAudit(s.tasks, s.store, ctx, "bulk_update_status", "user", strconv.Itoa(len(userIDs))+" users", status)
	return affected, nil
}

func (s *UserService) DeleteUser(ctx context.Context, userID int64) error {
	ctx, span := userTracer.Start(ctx, "UserService.DeleteUser")
	defer span.End()

	if err := s.store.DeleteUser(ctx, userID); err != nil {
		return err
	}
	recordAudit(s.tasks, s.store, ctx, "delete", "user", strconv.FormatInt(userID, 10), "")
	return nil
}

// ListAudit exposes the organization's audit trail.
func (s *UserService) ListAudit(ctx context.Context, page, limit int) ([]domain.AuditEntry, int64, error) {
	ctx, span := userTracer.Start(ctx, "UserService.ListAudit")
	defer span.End()

	return s.store.ListAudit(ctx, page, limit)
}
