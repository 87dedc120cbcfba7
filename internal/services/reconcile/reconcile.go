// Package reconcile реализует ограниченный цикл сверки локальной
// подписки с каноническим состоянием платёжного провайдера.
//
// После возврата пользователя со страницы оплаты уведомление провайдера
// может запаздывать. Цикл перечитывает снапшот подписки с фиксированным
// интервалом и ограниченным числом попыток. Исход трёхзначный:
// Pending, Succeeded, Exhausted. Exhausted — не ошибка, а терминальное
// состояние «обновление ещё не дошло, деньги не списаны».
//
// Это сознательно polling, а не push: ценой задержки до шести секунд
// подсистема не требует обратного канала от провайдера к клиенту.
package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/saas-gatekeeper/internal/lib/sl"
	"github.com/magabrotheeeer/saas-gatekeeper/internal/models"
	"github.com/magabrotheeeer/saas-gatekeeper/internal/plans"
)

// Status исход одного шага сверки.
type Status string

// Трёхзначный исход сверки.
const (
	StatusPending   Status = "pending"
	StatusSucceeded Status = "succeeded"
	StatusExhausted Status = "exhausted"
)

// Бюджет повторов зафиксирован как продуктовое поведение: три попытки
// по 2000 мс без backoff и jitter. Он не претендует на универсальность
// для других задач опроса.
const (
	DefaultInterval    = 2000 * time.Millisecond
	DefaultMaxAttempts = 3
)

// SubscriptionReader возвращает свежий снапшот подписки пользователя.
type SubscriptionReader interface {
	Get(ctx context.Context, userUID string) (*models.Subscription, error)
}

// Poller выполняет ограниченный цикл сверки для одного пользователя.
type Poller struct {
	subs        SubscriptionReader
	log         *slog.Logger
	interval    time.Duration
	maxAttempts int
}

// New создаёт новый Poller. Нулевые interval и maxAttempts заменяются
// значениями по умолчанию.
func New(subs SubscriptionReader, log *slog.Logger, interval time.Duration, maxAttempts int) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Poller{
		subs:        subs,
		log:         log,
		interval:    interval,
		maxAttempts: maxAttempts,
	}
}

// StatusFor вычисляет исход сверки по снапшоту и числу сделанных попыток.
// Успех срабатывает независимо от числа попыток.
func StatusFor(planID string, attempts, maxAttempts int) Status {
	if planID != plans.PlanFree {
		return StatusSucceeded
	}
	if attempts >= maxAttempts {
		return StatusExhausted
	}
	return StatusPending
}

// Run выполняет цикл сверки до терминального состояния.
//
// На каждый тик приходится ровно одна загрузка снапшота: новый тик не
// планируется, пока не завершилась предыдущая загрузка, и ни один тик
// не срабатывает после Succeeded или Exhausted. observe (если задан)
// вызывается с исходом каждого тика. Отмена контекста останавливает
// цикл и освобождает таймер.
func (p *Poller) Run(ctx context.Context, userUID string, observe func(Status)) (Status, error) {
	const op = "reconcile.Run"

	timer := time.NewTimer(p.interval)
	defer timer.Stop()

	attempts := 0
	for {
		select {
		case <-ctx.Done():
			return StatusPending, fmt.Errorf("%s: %w", op, ctx.Err())
		case <-timer.C:
		}

		attempts++
		planID := plans.PlanFree
		sub, err := p.subs.Get(ctx, userUID)
		if err != nil {
			// Неудачная загрузка трактуется как «ещё free»: попытка потрачена.
			p.log.Error("failed to fetch subscription snapshot", sl.Err(err),
				slog.Int("attempt", attempts))
		} else {
			planID = sub.PlanID
		}

		status := StatusFor(planID, attempts, p.maxAttempts)
		p.log.Debug("reconcile tick",
			slog.Int("attempt", attempts),
			slog.String("status", string(status)),
		)
		if observe != nil {
			observe(status)
		}
		if status != StatusPending {
			return status, nil
		}
		timer.Reset(p.interval)
	}
}
