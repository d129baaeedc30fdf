package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/domain/identity"
	"github.com/procurement/backend/internal/domain/notification"
	"github.com/procurement/backend/internal/domain/shared"
	"github.com/procurement/backend/internal/infrastructure/cache"
	"github.com/procurement/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNotificationService_Notify(t *testing.T) {
	ctx := context.Background()

	t.Run("stores the notification", func(t *testing.T) {
		repo := new(testutil.MockNotificationRepository)
		userID := uuid.New()
		repo.On("Create", mock.Anything, mock.MatchedBy(func(n *notification.Notification) bool {
			return n.UserID == userID && n.Title == "Đơn hàng giao trễ" && !n.Read
		})).Return(nil)
		svc := NewNotificationService(repo, new(testutil.MockUserRepository), nil, zap.NewNop())

		svc.Notify(ctx, userID, "Đơn hàng giao trễ", "PO00001 trễ 3 ngày", notification.TypeWarning, "/purchase-orders/1")
		repo.AssertExpectations(t)
	})

	t.Run("repository failure is swallowed", func(t *testing.T) {
		repo := new(testutil.MockNotificationRepository)
		repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("db down"))
		svc := NewNotificationService(repo, new(testutil.MockUserRepository), nil, zap.NewNop())

		assert.NotPanics(t, func() {
			svc.Notify(ctx, uuid.New(), "x", "", notification.TypeInfo, "")
		})
	})

	t.Run("missing recipient is dropped", func(t *testing.T) {
		repo := new(testutil.MockNotificationRepository)
		svc := NewNotificationService(repo, new(testutil.MockUserRepository), nil, zap.NewNop())

		svc.Notify(ctx, uuid.Nil, "x", "", notification.TypeInfo, "")
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestNotificationService_NotifyRole(t *testing.T) {
	ctx := context.Background()
	repo := new(testutil.MockNotificationRepository)
	users := new(testutil.MockUserRepository)
	accountant, err := identity.NewUser("Lê Văn Kế", "ketoan@congty.vn", "matkhau123", identity.RoleChiefAccountant)
	require.NoError(t, err)
	users.On("FindFirstByRole", mock.Anything, identity.RoleChiefAccountant).Return(accountant, nil)
	users.On("FindFirstByRole", mock.Anything, identity.RoleDirector).Return(nil, shared.NewNotFoundError("User", identity.RoleDirector))
	repo.On("Create", mock.Anything, mock.MatchedBy(func(n *notification.Notification) bool {
		return n.UserID == accountant.ID
	})).Return(nil)
	svc := NewNotificationService(repo, users, nil, zap.NewNop())

	svc.NotifyRole(ctx, identity.RoleChiefAccountant, "UNC chờ duyệt", "", notification.TypeInfo, "")
	svc.NotifyRole(ctx, identity.RoleDirector, "PO chờ duyệt", "", notification.TypeInfo, "")

	repo.AssertNumberOfCalls(t, "Create", 1)
}

func TestNotificationService_NotifyOnce(t *testing.T) {
	ctx := context.Background()
	repo := new(testutil.MockNotificationRepository)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()
	svc := NewNotificationService(repo, new(testutil.MockUserRepository), store, zap.NewNop())
	userID := uuid.New()

	svc.NotifyOnce(ctx, "overdue:po-1", time.Hour, userID, "Trễ hạn", "", notification.TypeWarning, "")
	svc.NotifyOnce(ctx, "overdue:po-1", time.Hour, userID, "Trễ hạn", "", notification.TypeWarning, "")
	svc.NotifyOnce(ctx, "overdue:po-2", time.Hour, userID, "Trễ hạn", "", notification.TypeWarning, "")

	repo.AssertNumberOfCalls(t, "Create", 2)
}

func TestNotificationService_List(t *testing.T) {
	ctx := context.Background()
	repo := new(testutil.MockNotificationRepository)
	userID := uuid.New()
	repo.On("FindLatest", mock.Anything, userID, notification.InboxSize).Return([]notification.Notification{
		{ID: uuid.New(), UserID: userID, Title: "a", Read: false},
		{ID: uuid.New(), UserID: userID, Title: "b", Read: true},
		{ID: uuid.New(), UserID: userID, Title: "c", Read: false},
	}, nil)
	repo.On("MarkAllRead", mock.Anything, userID).Return(nil)
	svc := NewNotificationService(repo, new(testutil.MockUserRepository), nil, zap.NewNop())

	inbox, err := svc.List(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, inbox.Items, 3)
	assert.Equal(t, 2, inbox.Unread)

	require.NoError(t, svc.MarkAllRead(ctx, userID))
	repo.AssertExpectations(t)
}
