package api

import (
	"context"
	"fmt"
	"time"

	"keel/internal/logs"
	"keel/internal/mailer"
	"keel/internal/models"
	"keel/internal/notify"
)

// Effect — отложенный побочный эффект (уведомление, письмо), выполняемый
// после коммита основной операции. Ошибки эффектов логируются и глотаются:
// успешная мутация никогда не превращается в ошибку ответа.
type Effect func(ctx context.Context)

// runEffects выполняет эффекты вне HTTP-пути: ответ клиенту их не ждёт.
func (a *API) runEffects(effects []Effect) {
	if len(effects) == 0 {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		for _, eff := range effects {
			func() {
				defer func() {
					if rec := recover(); rec != nil {
						logs.Logger.Errorf("effect panic: %v", rec)
					}
				}()
				eff(ctx)
			}()
		}
	}()
}

// notifyEffect — уведомление получателю через диспетчер.
func (a *API) notifyEffect(recipientID uint, in notify.CreateInput) Effect {
	return func(ctx context.Context) {
		if _, err := a.Dispatcher.Create(ctx, recipientID, in); err != nil {
			logs.Logger.Warnf("effect: notify %d failed: %v", recipientID, err)
		}
	}
}

// emailEffect — письмо получателю; снимок настроек берётся в момент
// выполнения, выключенная почта — тихий no-op.
func (a *API) emailEffect(event string, recipientID uint, subject, body string) Effect {
	return func(ctx context.Context) {
		settings, err := a.Settings.EmailSettings(ctx)
		if err != nil {
			logs.Logger.Warnf("effect: email settings: %v", err)
			return
		}
		if settings.Disabled() || !settings.EventOn(event) {
			return
		}
		u, err := a.Users.Get(ctx, recipientID)
		if err != nil {
			logs.Logger.Warnf("effect: email recipient %d: %v", recipientID, err)
			return
		}
		res := a.Mailer.Send(ctx, settings, mailer.Message{
			To:      u.Email,
			Subject: subject,
			Body:    body,
		})
		if !res.Success && !res.Disabled {
			logs.Logger.Warnf("effect: email to %s failed after %d attempts: %s",
				u.Email, res.Attempts, res.Error)
		}
	}
}

func taskAssignedEffects(a *API, t *models.Task) []Effect {
	if t.AssigneeID == nil || *t.AssigneeID == t.CreatedByID {
		return nil
	}
	assignee := *t.AssigneeID
	title := fmt.Sprintf("New task: %s", t.Title)
	return []Effect{
		a.notifyEffect(assignee, notify.CreateInput{
			Type:   models.NotifyTaskAssigned,
			Title:  title,
			TaskID: &t.ID,
		}),
		a.emailEffect(models.NotifyTaskAssigned, assignee, title,
			fmt.Sprintf("You have been assigned the task %q.", t.Title)),
	}
}

func taskConfirmedEffects(a *API, t *models.Task, accepted bool) []Effect {
	event := models.NotifyTaskConfirmed
	verb := "accepted"
	if !accepted {
		event = models.NotifyTaskRejected
		verb = "rejected"
	}
	title := fmt.Sprintf("Task %s: %s", verb, t.Title)
	return []Effect{
		a.notifyEffect(t.CreatedByID, notify.CreateInput{
			Type:   event,
			Title:  title,
			TaskID: &t.ID,
		}),
		a.emailEffect(event, t.CreatedByID, title,
			fmt.Sprintf("The task %q was %s by its assignee.", t.Title, verb)),
	}
}
