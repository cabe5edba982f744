package notify

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"keel/internal/models"
	"keel/internal/repo"
)

var dbSeq atomic.Int64

func testStore(t *testing.T) *repo.NotificationStore {
	t.Helper()
	dsn := fmt.Sprintf("file:notifytest%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Project{}, &models.Task{}, &models.Notification{},
	))
	return repo.NewNotificationStore(db)
}

type pushRecord struct {
	userID uint
	ev     string
}

// fakePusher пишет пуши по порядку; CreateBulk дергает его из разных горутин.
type fakePusher struct {
	mu         sync.Mutex
	pushes     []pushRecord
	subscribed bool
}

func (p *fakePusher) PushNotification(userID uint, ev string, _ any) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pushes = append(p.pushes, pushRecord{userID, ev})
	return p.subscribed
}

func (p *fakePusher) recorded() []pushRecord {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]pushRecord, len(p.pushes))
	copy(out, p.pushes)
	return out
}

func TestCreatePushOrder(t *testing.T) {
	store := testStore(t)
	pusher := &fakePusher{subscribed: true}
	d := New(store, pusher)
	ctx := context.Background()

	id, err := d.Create(ctx, 5, CreateInput{
		Type:  models.NotifyTaskAssigned,
		Title: "New task",
	})
	require.NoError(t, err)
	assert.NotZero(t, id)

	// строка реально в БД
	count, err := store.UnreadCount(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// порядок фиксирован: сначала уведомление, затем счётчик
	got := pusher.recorded()
	require.Len(t, got, 2)
	assert.Equal(t, pushRecord{5, "new-notification"}, got[0])
	assert.Equal(t, pushRecord{5, "unread-count-update"}, got[1])
}

func TestCreateSkipsCountWhenNotSubscribed(t *testing.T) {
	store := testStore(t)
	pusher := &fakePusher{subscribed: false}
	d := New(store, pusher)

	_, err := d.Create(context.Background(), 5, CreateInput{
		Type: models.NotifyTaskAssigned, Title: "x",
	})
	require.NoError(t, err)

	got := pusher.recorded()
	require.Len(t, got, 1)
	assert.Equal(t, "new-notification", got[0].ev)
}

func TestCreateBulkDeliversToEveryone(t *testing.T) {
	store := testStore(t)
	pusher := &fakePusher{subscribed: true}
	d := New(store, pusher)
	ctx := context.Background()

	recipients := []uint{1, 2, 3, 4, 5}
	d.CreateBulk(ctx, recipients, CreateInput{
		Type: models.NotifyTaskCompleted, Title: "done",
	})

	for _, id := range recipients {
		count, err := store.UnreadCount(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count, "recipient %d", id)
	}
	// по два пуша на получателя
	assert.Len(t, pusher.recorded(), len(recipients)*2)
}
