package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/saas-gatekeeper/internal/models"
)

// GetSubscription возвращает подписку пользователя.
//
// Отсутствие строки — ожидаемое состояние (пользователь на плане free),
// оно возвращается как ErrSubscriptionNotFound.
func (s *Storage) GetSubscription(ctx context.Context, userUID string) (*models.Subscription, error) {
	const op = "storage.GetSubscription"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT user_uid, plan_id, COALESCE(interval, ''), COALESCE(customer_id, ''),
			      current_period_end, cancel_at_period_end
			  FROM subscriptions
			  WHERE user_uid = $1`
	sub := &models.Subscription{}
	row := s.DB.QueryRowContext(ctx, query, userUID)
	if err := row.Scan(&sub.UserUID, &sub.PlanID, &sub.Interval, &sub.CustomerID,
		&sub.CurrentPeriodEnd, &sub.CancelAtPeriodEnd); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrSubscriptionNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sub, nil
}

// UpsertSubscription создаёт или обновляет запись подписки пользователя.
// Записи приходят только из уведомлений платёжного провайдера, обновления
// идемпотентны по принципу last-write-wins.
func (s *Storage) UpsertSubscription(ctx context.Context, sub models.Subscription) error {
	const op = "storage.UpsertSubscription"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO subscriptions (user_uid, plan_id, interval, customer_id,
			      current_period_end, cancel_at_period_end)
			  VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, $6)
			  ON CONFLICT (user_uid) DO UPDATE
			  SET plan_id = EXCLUDED.plan_id,
			      interval = EXCLUDED.interval,
			      customer_id = COALESCE(EXCLUDED.customer_id, subscriptions.customer_id),
			      current_period_end = EXCLUDED.current_period_end,
			      cancel_at_period_end = EXCLUDED.cancel_at_period_end`
	if _, err := s.DB.ExecContext(ctx, query,
		sub.UserUID, sub.PlanID, sub.Interval, sub.CustomerID,
		sub.CurrentPeriodEnd, sub.CancelAtPeriodEnd); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// DowngradeToFree переводит подписку пользователя обратно на план free.
// Строка не удаляется: сохраняется customer_id для будущих оплат.
func (s *Storage) DowngradeToFree(ctx context.Context, userUID string) error {
	const op = "storage.DowngradeToFree"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE subscriptions
			  SET plan_id = 'free',
			      interval = NULL,
			      current_period_end = 0,
			      cancel_at_period_end = FALSE
			  WHERE user_uid = $1`
	if _, err := s.DB.ExecContext(ctx, query, userUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
