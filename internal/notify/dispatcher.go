// Package notify доставляет уведомления: строка в БД, realtime-пуш,
// пересчёт непрочитанных. Всё после вставки — best-effort: ошибки пуша
// логируются и не всплывают к вызвавшей операции.
package notify

import (
	"context"
	"sync"

	"keel/internal/logs"
	"keel/internal/models"
	"keel/internal/repo"
)

// Pusher — то, что умеет хаб: доставка в комнату уведомлений пользователя.
type Pusher interface {
	PushNotification(userID uint, ev string, data any) bool
}

const (
	evNewNotification = "new-notification"
	evUnreadCount     = "unread-count-update"
)

type Dispatcher struct {
	store  *repo.NotificationStore
	pusher Pusher
}

func New(store *repo.NotificationStore, pusher Pusher) *Dispatcher {
	return &Dispatcher{store: store, pusher: pusher}
}

type CreateInput struct {
	Type    string
	Title   string
	Message string
	TaskID  *uint
}

// Create сохраняет уведомление и пушит его получателю. Сбой вставки —
// единственная ошибка, которую видит вызывающий; пуш и пересчёт счётчика
// после неё не выполняются вовсе.
func (d *Dispatcher) Create(ctx context.Context, recipientID uint, in CreateInput) (uint, error) {
	n := models.Notification{
		UserID:  recipientID,
		Type:    in.Type,
		Title:   in.Title,
		Message: in.Message,
		TaskID:  in.TaskID,
	}
	if err := d.store.Create(ctx, &n); err != nil {
		return 0, err
	}
	d.push(ctx, &n)
	return n.ID, nil
}

// push: перечитать с контекстом задачи/проекта, отдать в комнату, следом —
// свежий счётчик. Порядок фиксирован: new-notification раньше счётчика.
func (d *Dispatcher) push(ctx context.Context, n *models.Notification) {
	full, err := d.store.GetWithContext(ctx, n.ID)
	if err != nil {
		logs.Logger.Warnf("notify: reread %d failed: %v", n.ID, err)
		full = n
	}
	if !d.pusher.PushNotification(n.UserID, evNewNotification, full) {
		// получатель не подписан — счётчик пушить некому
		return
	}
	count, err := d.store.UnreadCount(ctx, n.UserID)
	if err != nil {
		logs.Logger.Warnf("notify: unread count for %d failed: %v", n.UserID, err)
		return
	}
	d.pusher.PushNotification(n.UserID, evUnreadCount, map[string]int64{"count": count})
}

// CreateBulk раздаёт уведомление каждому получателю независимо и
// конкурентно; сбой одного не мешает остальным (aggregate-and-continue).
func (d *Dispatcher) CreateBulk(ctx context.Context, recipientIDs []uint, in CreateInput) {
	var wg sync.WaitGroup
	for _, id := range recipientIDs {
		wg.Add(1)
		go func(recipient uint) {
			defer wg.Done()
			if _, err := d.Create(ctx, recipient, in); err != nil {
				logs.Logger.Warnf("notify: bulk delivery to %d failed: %v", recipient, err)
			}
		}(id)
	}
	wg.Wait()
}
