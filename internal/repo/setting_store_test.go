package repo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keel/internal/models"
)

func TestSettingUpsert(t *testing.T) {
	db := testDB(t)
	store := NewSettingStore(db)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "company_name", "Acme"))
	require.NoError(t, store.Set(ctx, "company_name", "Acme GmbH"))

	v, err := store.Get(ctx, "company_name")
	require.NoError(t, err)
	assert.Equal(t, "Acme GmbH", v)

	all, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, store.Set(ctx, "bad key!", "x"), ErrInvalidInput)
	assert.ErrorIs(t, store.Set(ctx, "1leading", "x"), ErrInvalidInput)

	require.NoError(t, store.Delete(ctx, "company_name"))
	assert.ErrorIs(t, store.Delete(ctx, "company_name"), ErrNotFound)
}

func TestEmailSettingsSnapshot(t *testing.T) {
	db := testDB(t)
	store := NewSettingStore(db)
	ctx := context.Background()

	// пустые настройки: включено, но без ключа — фактически выключено
	es, err := store.EmailSettings(ctx)
	require.NoError(t, err)
	assert.True(t, es.Disabled())
	// незаданные событийные тумблеры по умолчанию включены
	assert.True(t, es.EventOn(models.NotifyTaskAssigned))

	require.NoError(t, store.Set(ctx, models.SettingSendgridAPIKey, "SG.test"))
	require.NoError(t, store.Set(ctx, models.SettingNotifyTaskAssigned, "false"))
	require.NoError(t, store.Set(ctx, models.SettingNotifyTaskConfirmed, "true"))

	es, err = store.EmailSettings(ctx)
	require.NoError(t, err)
	assert.False(t, es.Disabled())
	assert.False(t, es.EventOn(models.NotifyTaskAssigned))
	// один тумблер закрывает оба исхода подтверждения
	assert.True(t, es.EventOn(models.NotifyTaskConfirmed))
	assert.True(t, es.EventOn(models.NotifyTaskRejected))

	// глобальный выключатель перекрывает всё
	require.NoError(t, store.Set(ctx, models.SettingEmailEnabled, "false"))
	es, err = store.EmailSettings(ctx)
	require.NoError(t, err)
	assert.True(t, es.Disabled())
}
