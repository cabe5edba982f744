package mailer

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keel/internal/models"
)

func testMailer(endpoint string, attempts int) *Mailer {
	m := New("noreply@example.com", attempts)
	m.Endpoint = endpoint
	m.Backoff = func(int) time.Duration { return time.Millisecond }
	return m
}

func enabled() models.EmailSettings {
	return models.EmailSettings{APIKey: "SG.test", Enabled: true}
}

func TestSendDisabledShortCircuits(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()
	m := testMailer(srv.URL, 3)

	for _, s := range []models.EmailSettings{
		{APIKey: "", Enabled: true},      // нет ключа
		{APIKey: "SG.x", Enabled: false}, // выключено тумблером
	} {
		res := m.Send(context.Background(), s, Message{To: "a@b.c"})
		assert.True(t, res.Disabled)
		assert.False(t, res.Success)
	}
	// сеть не трогали
	assert.Zero(t, hits.Load())
}

func TestSendSuccess(t *testing.T) {
	var gotAuth string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	m := testMailer(srv.URL, 3)
	res := m.Send(context.Background(), enabled(), Message{
		To: "user@example.com", Subject: "hello", Body: "text",
	})
	require.True(t, res.Success)
	assert.Equal(t, 1, res.Attempts)
	assert.Equal(t, "Bearer SG.test", gotAuth)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(gotBody, &payload))
	assert.Equal(t, "hello", payload["subject"])
}

func TestSendRetriesTransientErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	m := testMailer(srv.URL, 5)
	res := m.Send(context.Background(), enabled(), Message{To: "a@b.c"})
	require.True(t, res.Success)
	assert.Equal(t, 3, res.Attempts)
}

func TestSendGivesUpAfterMaxAttempts(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	m := testMailer(srv.URL, 3)
	res := m.Send(context.Background(), enabled(), Message{To: "a@b.c"})
	assert.False(t, res.Success)
	assert.True(t, res.Retryable)
	assert.Equal(t, 3, res.Attempts)
	assert.Equal(t, int32(3), hits.Load())
}

func TestSendDoesNotRetryClientErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	m := testMailer(srv.URL, 5)
	res := m.Send(context.Background(), enabled(), Message{To: "a@b.c"})
	assert.False(t, res.Success)
	assert.False(t, res.Retryable)
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Equal(t, int32(1), hits.Load())
}

func TestSendHonorsRetryAfter(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if hits.Add(1) == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	m := testMailer(srv.URL, 3)
	start := time.Now()
	res := m.Send(context.Background(), enabled(), Message{To: "a@b.c"})
	require.True(t, res.Success)
	assert.Equal(t, 2, res.Attempts)
	// пауза взята из Retry-After, не из бэкоффа в 1мс
	assert.GreaterOrEqual(t, time.Since(start), time.Second)
}

func TestSendHonorsRetryAfterOnServerErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if hits.Add(1) == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	m := testMailer(srv.URL, 3)
	start := time.Now()
	res := m.Send(context.Background(), enabled(), Message{To: "a@b.c"})
	require.True(t, res.Success)
	assert.Equal(t, 2, res.Attempts)
	// заголовок уважается и на 5xx, не только на 429
	assert.GreaterOrEqual(t, time.Since(start), time.Second)
}

func TestSendStopsOnContextCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	m := testMailer(srv.URL, 10)
	m.Backoff = func(int) time.Duration { return time.Hour }

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	res := m.Send(ctx, enabled(), Message{To: "a@b.c"})
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "context deadline exceeded")
}
