// Package subscription содержит бизнес-логику чтения и обновления
// локальной копии подписки.
//
// Чтение работает по схеме cache-aside; запись приходит только из
// уведомлений платёжного провайдера и инвалидирует кеш, чтобы цикл
// сверки наблюдал свежий снапшот.
package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/saas-gatekeeper/internal/lib/sl"
	"github.com/magabrotheeeer/saas-gatekeeper/internal/models"
	"github.com/magabrotheeeer/saas-gatekeeper/internal/plans"
	"github.com/magabrotheeeer/saas-gatekeeper/internal/storage/repository"
)

const cacheTTL = time.Hour

// SubscriptionRepository определяет методы хранилища подписок.
type SubscriptionRepository interface {
	// GetSubscription возвращает подписку пользователя либо
	// repository.ErrSubscriptionNotFound.
	GetSubscription(ctx context.Context, userUID string) (*models.Subscription, error)
	// UpsertSubscription создаёт или обновляет запись подписки.
	UpsertSubscription(ctx context.Context, sub models.Subscription) error
	// DowngradeToFree переводит подписку обратно на план free.
	DowngradeToFree(ctx context.Context, userUID string) error
}

// Cache описывает методы для кэширования снапшотов.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// Service реализует работу со снапшотами подписки.
type Service struct {
	repo  SubscriptionRepository
	cache Cache
	log   *slog.Logger
}

// New создает новый Service.
func New(repo SubscriptionRepository, cache Cache, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

func cacheKey(userUID string) string {
	return fmt.Sprintf("subscription:%s", userUID)
}

// Get возвращает снапшот подписки пользователя.
//
// Отсутствие записи нормализуется в снапшот плана free: для
// вызывающего кода пользователь без строки подписки неотличим от
// пользователя на бесплатном плане.
func (s *Service) Get(ctx context.Context, userUID string) (*models.Subscription, error) {
	var result *models.Subscription
	key := cacheKey(userUID)
	found, err := s.cache.Get(key, &result)
	if err != nil {
		s.log.Warn("cache read failed", slog.String("key", key), sl.Err(err))
	}
	if found && result != nil {
		return result, nil
	}

	sub, err := s.repo.GetSubscription(ctx, userUID)
	if err != nil {
		if errors.Is(err, repository.ErrSubscriptionNotFound) {
			return models.FreeSubscription(userUID), nil
		}
		return nil, err
	}

	if err := s.cache.Set(key, sub, cacheTTL); err != nil {
		s.log.Warn("failed to cache subscription", slog.String("key", key), sl.Err(err))
	}
	return sub, nil
}

// Apply применяет уведомление провайдера к локальному состоянию.
//
// Обновления идемпотентны, последняя запись выигрывает. Кеш
// инвалидируется до записи, чтобы параллельное чтение не вернуло
// устаревший снапшот с новым TTL.
func (s *Service) Apply(ctx context.Context, sub models.Subscription) error {
	const op = "subscription.Apply"

	if _, ok := plans.ByID(sub.PlanID); !ok {
		return fmt.Errorf("%s: unknown plan %q", op, sub.PlanID)
	}

	key := cacheKey(sub.UserUID)
	if err := s.cache.Invalidate(key); err != nil {
		s.log.Warn("failed to invalidate cache", slog.String("key", key), sl.Err(err))
	}

	if sub.PlanID == plans.PlanFree {
		if err := s.repo.DowngradeToFree(ctx, sub.UserUID); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return nil
	}
	if err := s.repo.UpsertSubscription(ctx, sub); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
