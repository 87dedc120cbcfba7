package subscriptionread

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/saas-gatekeeper/internal/http/middlewarectx"
	"github.com/magabrotheeeer/saas-gatekeeper/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Get(ctx context.Context, userUID string) (*models.Subscription, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

var testUser = &models.User{UID: "uid-1", Email: "user@example.com", Username: "testuser", Role: models.RoleUser}

func TestSubscriptionReadHandler(t *testing.T) {
	tests := []struct {
		name           string
		withUser       bool
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:     "paid subscription",
			withUser: true,
			setupMock: func(m *MockService) {
				m.On("Get", mock.Anything, "uid-1").Return(&models.Subscription{
					UserUID:          "uid-1",
					PlanID:           "pro",
					Interval:         "month",
					CustomerID:       "cus_42",
					CurrentPeriodEnd: 1767225600,
				}, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"plan_id":"pro"`,
		},
		{
			name:     "missing row reads as free plan",
			withUser: true,
			setupMock: func(m *MockService) {
				m.On("Get", mock.Anything, "uid-1").
					Return(models.FreeSubscription("uid-1"), nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"plan_id":"free"`,
		},
		{
			name:           "unauthorized without user in context",
			withUser:       false,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"unauthorized"`,
		},
		{
			name:     "service failure",
			withUser: true,
			setupMock: func(m *MockService) {
				m.On("Get", mock.Anything, "uid-1").
					Return(nil, errors.New("db error")).Once()
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"internal error"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(newNoopLogger(), mockService)

			req := httptest.NewRequest(http.MethodGet, "/billing/subscription", nil)
			if tt.withUser {
				req = req.WithContext(context.WithValue(req.Context(), middlewarectx.CtxUser, testUser))
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)

			if tt.expectedStatus == http.StatusOK {
				assert.NotContains(t, w.Body.String(), "cus_42", "customer id must not leak")
			}
			mockService.AssertExpectations(t)
		})
	}
}
