// Package checkout реализует оркестрацию checkout- и portal-сессий
// у внешнего платёжного провайдера.
//
// Обе операции не меняют локального состояния: подписка обновляется
// только асинхронным уведомлением самого провайдера. Недоступность
// провайдера — ожидаемый исход (ErrProviderUnavailable), детали его
// ошибок никогда не пробрасываются клиенту.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/saas-gatekeeper/internal/billing"
	"github.com/magabrotheeeer/saas-gatekeeper/internal/lib/sl"
	"github.com/magabrotheeeer/saas-gatekeeper/internal/models"
	"github.com/magabrotheeeer/saas-gatekeeper/internal/plans"
)

// Типизированные ошибки оркестратора.
var (
	// ErrFreePlanCheckout попытка оплатить бесплатный план.
	ErrFreePlanCheckout = errors.New("cannot checkout the free plan")
	// ErrPlanNotFound план отсутствует в каталоге.
	ErrPlanNotFound = errors.New("plan not found")
	// ErrPriceNotFound у плана нет цены для такой пары (интервал, валюта).
	ErrPriceNotFound = errors.New("price not found")
	// ErrNoCustomer у пользователя ещё нет клиента у провайдера.
	ErrNoCustomer = errors.New("no billing customer")
	// ErrProviderUnavailable вызов провайдера не удался или истёк таймаут.
	// Для вызывающего это пустой результат, а не исключение.
	ErrProviderUnavailable = errors.New("billing provider unavailable")
)

// BillingClient описывает интерфейс клиента платёжного провайдера.
type BillingClient interface {
	CreateCustomer(ctx context.Context, req billing.CreateCustomerRequest) (*billing.Customer, error)
	CreateCheckoutSession(ctx context.Context, req billing.CreateCheckoutSessionRequest) (*billing.Session, error)
	CreatePortalSession(ctx context.Context, req billing.CreatePortalSessionRequest) (*billing.Session, error)
}

// SubscriptionReader возвращает снапшот подписки пользователя.
type SubscriptionReader interface {
	Get(ctx context.Context, userUID string) (*models.Subscription, error)
}

// Service оркестрирует сессии оплаты.
type Service struct {
	billing    BillingClient
	subs       SubscriptionReader
	log        *slog.Logger
	successURL string
	returnURL  string
}

// New создает новый Service.
func New(billingClient BillingClient, subs SubscriptionReader, log *slog.Logger, successURL, returnURL string) *Service {
	return &Service{
		billing:    billingClient,
		subs:       subs,
		log:        log,
		successURL: successURL,
		returnURL:  returnURL,
	}
}

// CreateCheckout создаёт checkout-сессию для разрешённого пользователя
// и возвращает URL для редиректа.
//
// План free отклоняется до любого обращения к провайдеру. Если у
// пользователя ещё нет customer_id, клиент создаётся на лету.
func (s *Service) CreateCheckout(ctx context.Context, user *models.User, planID string, interval plans.Interval, currency plans.Currency) (string, error) {
	const op = "checkout.CreateCheckout"

	if planID == plans.PlanFree {
		return "", fmt.Errorf("%s: %w", op, ErrFreePlanCheckout)
	}
	if _, ok := plans.ByID(planID); !ok {
		return "", fmt.Errorf("%s: %w", op, ErrPlanNotFound)
	}
	if _, ok := plans.PriceFor(planID, interval, currency); !ok {
		return "", fmt.Errorf("%s: %w", op, ErrPriceNotFound)
	}

	sub, err := s.subs.Get(ctx, user.UID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	customerID := sub.CustomerID
	if customerID == "" {
		customer, err := s.billing.CreateCustomer(ctx, billing.CreateCustomerRequest{Email: user.Email})
		if err != nil {
			s.log.Error("failed to create billing customer", sl.Err(err))
			return "", fmt.Errorf("%s: %w", op, ErrProviderUnavailable)
		}
		customerID = customer.ID
	}

	session, err := s.billing.CreateCheckoutSession(ctx, billing.CreateCheckoutSessionRequest{
		CustomerID: customerID,
		PriceRef:   plans.PriceRef(planID, interval, currency),
		SuccessURL: s.successURL,
		CancelURL:  s.returnURL,
	})
	if err != nil {
		s.log.Error("failed to create checkout session", sl.Err(err))
		return "", fmt.Errorf("%s: %w", op, ErrProviderUnavailable)
	}
	return session.URL, nil
}

// CreatePortalSession создаёт сессию портала управления подпиской.
// Требует уже существующего клиента у провайдера.
func (s *Service) CreatePortalSession(ctx context.Context, user *models.User) (string, error) {
	const op = "checkout.CreatePortalSession"

	sub, err := s.subs.Get(ctx, user.UID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if sub.CustomerID == "" {
		return "", fmt.Errorf("%s: %w", op, ErrNoCustomer)
	}

	session, err := s.billing.CreatePortalSession(ctx, billing.CreatePortalSessionRequest{
		CustomerID: sub.CustomerID,
		ReturnURL:  s.returnURL,
	})
	if err != nil {
		s.log.Error("failed to create portal session", sl.Err(err))
		return "", fmt.Errorf("%s: %w", op, ErrProviderUnavailable)
	}
	return session.URL, nil
}
