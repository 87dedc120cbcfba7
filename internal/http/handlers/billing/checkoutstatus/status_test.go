package checkoutstatus

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
	"github.com/magabrotheeeer/saas-gatekeeper/internal/services/reconcile"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Run(ctx context.Context, userUID string, observe func(reconcile.Status)) (reconcile.Status, error) {
	args := m.Called(ctx, userUID, observe)
	return args.Get(0).(reconcile.Status), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

var testUser = &models.User{UID: "uid-1", Email: "user@example.com", Username: "testuser", Role: models.RoleUser}

func TestCheckoutStatusHandler(t *testing.T) {
	tests := []struct {
		name           string
		withUser       bool
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:     "succeeded",
			withUser: true,
			setupMock: func(m *MockService) {
				m.On("Run", mock.Anything, "uid-1", mock.Anything).
					Return(reconcile.StatusSucceeded, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"status":"succeeded"`,
		},
		{
			name:     "exhausted is not an error",
			withUser: true,
			setupMock: func(m *MockService) {
				m.On("Run", mock.Anything, "uid-1", mock.Anything).
					Return(reconcile.StatusExhausted, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"status":"exhausted"`,
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
				m.On("Run", mock.Anything, "uid-1", mock.Anything).
					Return(reconcile.StatusPending, errors.New("db error")).Once()
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

			req := httptest.NewRequest(http.MethodGet, "/billing/checkout/status", nil)
			if tt.withUser {
				req = req.WithContext(context.WithValue(req.Context(), middlewarectx.CtxUser, testUser))
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}
