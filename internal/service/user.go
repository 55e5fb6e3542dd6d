package service

import (
	"context"
	"fmt"
	"log/slog"

	"marketplace-admin-backend/internal/domain"
	"marketplace-admin-backend/internal/events"
	"marketplace-admin-backend/internal/logger"
	"marketplace-admin-backend/internal/metrics"
	"marketplace-admin-backend/internal/repository"
)

type userService struct {
	userRepo  repository.UserRepository
	publisher events.Publisher
	emailSvc  EmailService
	metrics   *metrics.Metrics
	now       Clock
	locks     *keyedMutex
	log       *slog.Logger
}

func NewUserService(userRepo repository.UserRepository, publisher events.Publisher, emailSvc EmailService, m *metrics.Metrics, now Clock) UserService {
	if now == nil {
		now = systemClock
	}
	return &userService{
		userRepo:  userRepo,
		publisher: publisher,
		emailSvc:  emailSvc,
		metrics:   m,
		now:       now,
		locks:     newKeyedMutex(),
		log:       logger.WithComponent("user_service"),
	}
}

func (s *userService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	return s.userRepo.Get(ctx, userID)
}

func (s *userService) ListUsers(ctx context.Context, filter domain.UserFilter) ([]domain.User, error) {
	users, err := s.userRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, nil
}

func (s *userService) SuspendUser(ctx context.Context, actorID, userID, reason string) (*domain.User, error) {
	logger.EnterMethod("userService.SuspendUser", "userID", userID, "actor", actorID)
	return s.moderate(ctx, actorID, userID, "suspend_user", events.UserSuspended, func(u *domain.User) error {
		return u.Suspend(reason, s.now())
	})
}

func (s *userService) ReactivateUser(ctx context.Context, actorID, userID string) (*domain.User, error) {
	logger.EnterMethod("userService.ReactivateUser", "userID", userID, "actor", actorID)
	return s.moderate(ctx, actorID, userID, "reactivate_user", events.UserReactivated, func(u *domain.User) error {
		return u.Reactivate()
	})
}

func (s *userService) moderate(ctx context.Context, actorID, userID, action string, eventType events.Type, apply func(*domain.User) error) (*domain.User, error) {
	u, err := s.update(ctx, userID, apply)
	if err != nil {
		logger.ExitMethodWithError("userService."+action, err, "userID", userID)
		return nil, err
	}

	s.metrics.ModerationActionsTotal.WithLabelValues(action).Inc()
	publish(ctx, s.publisher, events.Event{
		Type:       eventType,
		EntityID:   u.ID,
		Actor:      actorID,
		Status:     string(u.Status),
		Attributes: map[string]string{"reason": u.SuspendedReason.OrElse("")},
		OccurredAt: s.now(),
	})
	if err := s.emailSvc.SendAccountStatusNotification(ctx, u); err != nil {
		s.log.Error("Failed to send account status notification", "userID", u.ID, "error", err)
	}
	logger.ExitMethod("userService."+action, "userID", userID, "status", u.Status)
	return u, nil
}

// update applies one status change under the user's lock. The lock is
// released before any event or email goes out.
func (s *userService) update(ctx context.Context, userID string, apply func(*domain.User) error) (*domain.User, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	u, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	from := u.Status
	if err := apply(u); err != nil {
		return nil, err
	}
	if err := s.userRepo.Update(ctx, u, from); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return u, nil
}
