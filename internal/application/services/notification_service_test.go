package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astren/core/internal/domain/entities"
	"github.com/astren/core/internal/infrastructure/logger"
)

func newNotificationService(t *testing.T) *NotificationService {
	t.Helper()
	store := newTestStore(t)
	require.NoError(t, store.SaveNotifications([]entities.Notification{}))
	return NewNotificationService(store, logger.NewNop())
}

func TestPushPrependsNewest(t *testing.T) {
	svc := newNotificationService(t)

	_, err := svc.Push(7, NotificationTypeOverdue, "Tarea vencida", "Informe mensual venció")
	require.NoError(t, err)
	_, err = svc.Push(7, NotificationTypeCompleted, "Tarea completada", "Entrega lista")
	require.NoError(t, err)

	inbox := svc.List()
	require.Len(t, inbox, 2)
	assert.Equal(t, NotificationTypeCompleted, inbox[0].Type)
	assert.Equal(t, 2, svc.UnreadCount())
}

func TestMarkReadAndMarkAllRead(t *testing.T) {
	svc := newNotificationService(t)

	n, err := svc.Push(7, NotificationTypeOverdue, "Tarea vencida", "")
	require.NoError(t, err)
	_, err = svc.Push(7, NotificationTypeOverdue, "Otra vencida", "")
	require.NoError(t, err)

	require.NoError(t, svc.MarkRead(n.ID))
	assert.Equal(t, 1, svc.UnreadCount())

	require.NoError(t, svc.MarkAllRead())
	assert.Zero(t, svc.UnreadCount())
}

func TestRemoveAndClear(t *testing.T) {
	svc := newNotificationService(t)

	n, err := svc.Push(7, NotificationTypeReputation, "Subiste de nivel", "")
	require.NoError(t, err)

	require.NoError(t, svc.Remove(n.ID))
	assert.Empty(t, svc.List())

	_, err = svc.Push(7, NotificationTypeWelcome, "Bienvenida", "")
	require.NoError(t, err)
	require.NoError(t, svc.Clear())
	assert.Empty(t, svc.List())
}
