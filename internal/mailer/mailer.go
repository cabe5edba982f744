// Package mailer шлёт транзакционные письма через SendGrid API.
// Контракт: никогда не паникует и не возвращает error наружу — только
// структурированный Result; транзиентные сбои ретраятся с экспоненциальной
// паузой и уважением Retry-After, клиентские ошибки не ретраятся.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"keel/internal/logs"
	"keel/internal/models"
)

const defaultEndpoint = "https://api.sendgrid.com/v3/mail/send"

type Result struct {
	Success   bool   `json:"success"`
	Disabled  bool   `json:"disabled,omitempty"`
	Error     string `json:"error,omitempty"`
	Code      int    `json:"code,omitempty"`
	Retryable bool   `json:"retryable"`
	Attempts  int    `json:"attempts"`

	// пауза из Retry-After; живёт только между попытками
	retryAfter time.Duration
}

type Mailer struct {
	From        string
	MaxAttempts int
	Endpoint    string
	Client      *http.Client
	// пауза перед ретраем n (с нуля); подменяется в тестах
	Backoff func(attempt int) time.Duration
}

func New(from string, maxAttempts int) *Mailer {
	return &Mailer{
		From:        from,
		MaxAttempts: maxAttempts,
		Endpoint:    defaultEndpoint,
		Client:      &http.Client{Timeout: 10 * time.Second},
		Backoff: func(attempt int) time.Duration {
			return time.Duration(1<<attempt) * 500 * time.Millisecond
		},
	}
}

type Message struct {
	To      string
	Subject string
	Body    string // text/plain; html-шаблоны вне зоны ответственности
}

type sendgridRequest struct {
	Personalizations []struct {
		To []map[string]string `json:"to"`
	} `json:"personalizations"`
	From    map[string]string `json:"from"`
	Subject string            `json:"subject"`
	Content []map[string]string `json:"content"`
}

// Send. Пустой ключ или выключенный тумблер — мгновенный Disabled без сети.
func (m *Mailer) Send(ctx context.Context, settings models.EmailSettings, msg Message) Result {
	if settings.Disabled() {
		return Result{Disabled: true, Retryable: false}
	}

	var req sendgridRequest
	req.Personalizations = append(req.Personalizations, struct {
		To []map[string]string `json:"to"`
	}{To: []map[string]string{{"email": msg.To}}})
	req.From = map[string]string{"email": m.From}
	req.Subject = msg.Subject
	req.Content = []map[string]string{{"type": "text/plain", "value": msg.Body}}
	payload, err := json.Marshal(req)
	if err != nil {
		return Result{Error: err.Error(), Retryable: false}
	}

	attempts := m.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	var last Result
	for i := 0; i < attempts; i++ {
		if i > 0 {
			wait := m.Backoff(i - 1)
			if last.retryAfter > 0 {
				wait = last.retryAfter
			}
			select {
			case <-ctx.Done():
				last.Error = ctx.Err().Error()
				last.Attempts = i
				return last
			case <-time.After(wait):
			}
		}
		last = m.attempt(ctx, payload, settings.APIKey)
		last.Attempts = i + 1
		if last.Success || !last.Retryable {
			return last
		}
		logs.Logger.Warnf("mailer: attempt %d failed (code=%d): %s", i+1, last.Code, last.Error)
	}
	return last
}

func (m *Mailer) attempt(ctx context.Context, payload []byte, apiKey string) Result {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return Result{Error: err.Error(), Retryable: false}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := m.Client.Do(req)
	if err != nil {
		// сетевые сбои считаем транзиентными
		return Result{Error: err.Error(), Retryable: true}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode < 300:
		return Result{Success: true}
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		r := Result{Error: http.StatusText(resp.StatusCode), Code: resp.StatusCode, Retryable: true}
		if ra := resp.Header.Get("Retry-After"); ra != "" {
			if secs, err := strconv.Atoi(ra); err == nil && secs > 0 {
				r.retryAfter = time.Duration(secs) * time.Second
			}
		}
		return r
	default:
		// 4xx (кроме 429): запрос плохой, повтор бессмыслен
		return Result{Error: http.StatusText(resp.StatusCode), Code: resp.StatusCode, Retryable: false}
	}
}
