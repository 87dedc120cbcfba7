package check

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/saas-gatekeeper/internal/gate"
	"github.com/magabrotheeeer/saas-gatekeeper/internal/services/identity"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Evaluate(ctx context.Context, token string, area gate.Area, path string) (gate.Decision, error) {
	args := m.Called(ctx, token, area, path)
	return args.Get(0).(gate.Decision), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestCheckHandler(t *testing.T) {
	tests := []struct {
		name           string
		area           string
		url            string
		authHeader     string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:       "allowed",
			area:       "dashboard",
			url:        "/gate/dashboard?path=/dashboard/settings",
			authHeader: "Bearer token",
			setupMock: func(m *MockService) {
				m.On("Evaluate", mock.Anything, "token", gate.AreaDashboard, "/dashboard/settings").
					Return(gate.Allow(), nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"allowed":true`,
		},
		{
			name: "redirect without session",
			area: "dashboard",
			url:  "/gate/dashboard?path=/dashboard",
			setupMock: func(m *MockService) {
				m.On("Evaluate", mock.Anything, "", gate.AreaDashboard, "/dashboard").
					Return(gate.RedirectTo(gate.PathLogin), nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"location":"/auth/login"`,
		},
		{
			name:       "defaults path to area root",
			area:       "onboarding",
			url:        "/gate/onboarding",
			authHeader: "Bearer token",
			setupMock: func(m *MockService) {
				m.On("Evaluate", mock.Anything, "token", gate.AreaOnboarding, "/onboarding").
					Return(gate.RedirectTo(gate.PathOnboardingUsername), nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"location":"/onboarding/username"`,
		},
		{
			name:           "unknown area",
			area:           "billing",
			url:            "/gate/billing",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"unknown area"`,
		},
		{
			name:       "forbidden admin area is generic",
			area:       "admin",
			url:        "/gate/admin",
			authHeader: "Bearer token",
			setupMock: func(m *MockService) {
				m.On("Evaluate", mock.Anything, "token", gate.AreaAdmin, "/admin").
					Return(gate.Decision{}, identity.ErrForbidden).Once()
			},
			expectedStatus: http.StatusForbidden,
			expectedBody:   `{"status":"Error","error":"forbidden"}`,
		},
		{
			name:       "storage failure",
			area:       "dashboard",
			url:        "/gate/dashboard",
			authHeader: "Bearer token",
			setupMock: func(m *MockService) {
				m.On("Evaluate", mock.Anything, "token", gate.AreaDashboard, "/dashboard").
					Return(gate.Decision{}, errors.New("db error")).Once()
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

			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("area", tt.area)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}
