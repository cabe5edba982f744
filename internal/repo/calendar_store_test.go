package repo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventVisibility(t *testing.T) {
	db := testDB(t)
	store := NewCalendarStore(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice@example.com")
	bob := seedUser(t, db, "bob@example.com")
	eve := seedUser(t, db, "eve@example.com")

	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	e, err := store.Create(ctx, alice.ID, CreateEventInput{
		Title:          "standup",
		StartsAt:       start,
		EndsAt:         start.Add(30 * time.Minute),
		ParticipantIDs: []uint{bob.ID, alice.ID}, // создатель не дублируется
	})
	require.NoError(t, err)

	got, err := store.Get(ctx, e.ID, bob.ID)
	require.NoError(t, err)
	require.Len(t, got.Participants, 1)
	assert.Equal(t, bob.ID, got.Participants[0].UserID)

	_, err = store.Get(ctx, e.ID, eve.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	// мутирует только создатель
	_, err = store.Update(ctx, e.ID, bob.ID, CreateEventInput{
		Title: "x", StartsAt: start, EndsAt: start.Add(time.Hour),
	})
	assert.ErrorIs(t, err, ErrForbidden)
	assert.ErrorIs(t, store.Delete(ctx, e.ID, bob.ID), ErrForbidden)
}

func TestEventUpdateReplacesParticipants(t *testing.T) {
	db := testDB(t)
	store := NewCalendarStore(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice@example.com")
	bob := seedUser(t, db, "bob@example.com")
	carol := seedUser(t, db, "carol@example.com")

	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	e, err := store.Create(ctx, alice.ID, CreateEventInput{
		Title: "kickoff", StartsAt: start, EndsAt: start.Add(time.Hour),
		ParticipantIDs: []uint{bob.ID},
	})
	require.NoError(t, err)

	_, err = store.Update(ctx, e.ID, alice.ID, CreateEventInput{
		Title: "kickoff v2", StartsAt: start, EndsAt: start.Add(time.Hour),
		ParticipantIDs: []uint{carol.ID},
	})
	require.NoError(t, err)

	got, err := store.Get(ctx, e.ID, carol.ID)
	require.NoError(t, err)
	require.Len(t, got.Participants, 1)
	assert.Equal(t, carol.ID, got.Participants[0].UserID)

	// выбывший участник теряет доступ
	_, err = store.Get(ctx, e.ID, bob.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestEventListWindow(t *testing.T) {
	db := testDB(t)
	store := NewCalendarStore(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice@example.com")

	mk := func(title string, day int) {
		start := time.Date(2026, 3, day, 9, 0, 0, 0, time.UTC)
		_, err := store.Create(ctx, alice.ID, CreateEventInput{
			Title: title, StartsAt: start, EndsAt: start.Add(time.Hour),
		})
		require.NoError(t, err)
	}
	mk("early", 1)
	mk("mid", 10)
	mk("late", 20)

	from := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	out, err := store.List(ctx, alice.ID, &from, &to)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "mid", out[0].Title)
}
