package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"marketplace-admin-backend/internal/domain"
	"marketplace-admin-backend/internal/events"
	"marketplace-admin-backend/internal/metrics"
	"marketplace-admin-backend/internal/repository"
	"marketplace-admin-backend/internal/repository/memory"
	"marketplace-admin-backend/internal/service"
)

func TestUserService_SuspendAndReactivate(t *testing.T) {
	mockUserRepo := new(MockUserRepo)
	mockEmailSvc := new(MockEmailService)
	publisher := &recordingPublisher{}
	clock := newTestClock()
	svc := service.NewUserService(mockUserRepo, publisher, mockEmailSvc, metrics.New(), clock.Now)
	ctx := context.Background()

	t.Run("Suspend", func(t *testing.T) {
		u := &domain.User{ID: "usr_1", Name: "Ana", Email: "ana@example.com", Status: domain.UserStatusActive}
		mockUserRepo.On("Get", ctx, "usr_1").Return(u, nil).Once()
		mockUserRepo.On("Update", ctx, mock.MatchedBy(func(u *domain.User) bool {
			return u.Status == domain.UserStatusSuspended && u.SuspendedReason.OrElse("") == "fraud" && u.SuspendedAt.IsSet()
		}), domain.UserStatusActive).Return(nil).Once()
		mockEmailSvc.On("SendAccountStatusNotification", ctx, mock.MatchedBy(func(u *domain.User) bool {
			return u.Status == domain.UserStatusSuspended
		})).Return(nil).Once()

		got, err := svc.SuspendUser(ctx, "admin_1", "usr_1", "fraud")
		require.NoError(t, err)
		assert.Equal(t, clock.Now(), got.SuspendedAt.OrElse(time.Time{}))
		published := publisher.ofType(events.UserSuspended)
		require.Len(t, published, 1)
		assert.Equal(t, "admin_1", published[0].Actor)
	})

	t.Run("Reactivate", func(t *testing.T) {
		u := &domain.User{ID: "usr_1", Status: domain.UserStatusSuspended, SuspendedReason: domain.Some("fraud")}
		mockUserRepo.On("Get", ctx, "usr_1").Return(u, nil).Once()
		mockUserRepo.On("Update", ctx, mock.MatchedBy(func(u *domain.User) bool {
			return u.Status == domain.UserStatusActive && !u.SuspendedReason.IsSet()
		}), domain.UserStatusSuspended).Return(nil).Once()
		mockEmailSvc.On("SendAccountStatusNotification", ctx, mock.Anything).Return(errors.New("smtp down")).Once()

		got, err := svc.ReactivateUser(ctx, "admin_1", "usr_1")
		require.NoError(t, err)
		assert.Equal(t, domain.UserStatusActive, got.Status)
	})

	t.Run("Wrong source status", func(t *testing.T) {
		u := &domain.User{ID: "usr_2", Status: domain.UserStatusActive}
		mockUserRepo.On("Get", ctx, "usr_2").Return(u, nil).Once()

		_, err := svc.ReactivateUser(ctx, "admin_1", "usr_2")
		assert.True(t, errors.Is(err, domain.ErrInvalidState))
	})

	t.Run("Reason required", func(t *testing.T) {
		u := &domain.User{ID: "usr_3", Status: domain.UserStatusActive}
		mockUserRepo.On("Get", ctx, "usr_3").Return(u, nil).Once()

		_, err := svc.SuspendUser(ctx, "admin_1", "usr_3", " ")
		assert.True(t, errors.Is(err, domain.ErrInvalidArgument))
	})

	t.Run("Missing user", func(t *testing.T) {
		mockUserRepo.On("Get", ctx, "usr_404").Return(nil, domain.ErrNotFound).Once()

		_, err := svc.SuspendUser(ctx, "admin_1", "usr_404", "spam")
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})

	mockUserRepo.AssertExpectations(t)
	mockEmailSvc.AssertExpectations(t)
}

func TestUserService_ListUsers(t *testing.T) {
	mockUserRepo := new(MockUserRepo)
	svc := service.NewUserService(mockUserRepo, events.NewLogPublisher(), service.NewLogEmailService(), metrics.New(), nil)
	ctx := context.Background()

	filter := domain.UserFilter{Status: domain.Some(domain.UserStatusSuspended)}
	mockUserRepo.On("List", ctx, filter).Return(nil, nil).Once()

	users, err := svc.ListUsers(ctx, filter)
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)
	mockUserRepo.AssertExpectations(t)
}

// slowUserRepo widens the window between reading and writing a user.
type slowUserRepo struct {
	repository.UserRepository
	delay time.Duration
}

func (r *slowUserRepo) Get(ctx context.Context, id string) (*domain.User, error) {
	time.Sleep(r.delay)
	return r.UserRepository.Get(ctx, id)
}

func TestUserService_ConcurrentSuspend(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, memory.Seed(ctx, store, time.Now()))
	repo := &slowUserRepo{UserRepository: store.UserRepository, delay: 2 * time.Millisecond}
	publisher := &recordingPublisher{}

	// Two service instances stand in for two API processes sharing one store.
	services := []service.UserService{
		service.NewUserService(repo, publisher, service.NewLogEmailService(), metrics.New(), nil),
		service.NewUserService(repo, publisher, service.NewLogEmailService(), metrics.New(), nil),
	}

	results := make([]error, 8)
	var g errgroup.Group
	for i := range results {
		i := i
		g.Go(func() error {
			_, results[i] = services[i%2].SuspendUser(ctx, "admin_1", "usr_buyer_ana", "chargeback abuse")
			return nil
		})
	}
	require.NoError(t, g.Wait())

	var ok, invalid int
	for _, err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrInvalidState):
			invalid++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 7, invalid)
	assert.Len(t, publisher.ofType(events.UserSuspended), 1)

	u, err := store.UserRepository.Get(ctx, "usr_buyer_ana")
	require.NoError(t, err)
	assert.Equal(t, domain.UserStatusSuspended, u.Status)
}
