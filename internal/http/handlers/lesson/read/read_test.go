package read

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/talkwise/talkwise-backend/internal/entitlement"
	"github.com/talkwise/talkwise-backend/internal/http/middlewarectx"
	"github.com/talkwise/talkwise-backend/internal/models"
	"github.com/talkwise/talkwise-backend/internal/services/lesson"
)

// MockService реализует интерфейс read.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Read(ctx context.Context, userUID string, lessonNumber int) (*lesson.Gate, error) {
	args := m.Called(ctx, userUID, lessonNumber)
	if res := args.Get(0); res != nil {
		return res.(*lesson.Gate), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestReadHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		number         string
		userUID        string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:    "доступ разрешён",
			number:  "5",
			userUID: "uid-1",
			setupMock: func(m *MockService) {
				m.On("Read", mock.Anything, "uid-1", 5).Return(&lesson.Gate{
					Result:   entitlement.AccessGranted,
					Lesson:   &models.Lesson{LessonNumber: 5, Title: "Мелкая беседа"},
					DaysLeft: 12,
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"days_left":12`,
		},
		{
			name:    "премиальный урок на бесплатном тарифе",
			number:  "31",
			userUID: "uid-1",
			setupMock: func(m *MockService) {
				m.On("Read", mock.Anything, "uid-1", 31).Return(&lesson.Gate{
					Result: entitlement.AccessPaymentRequired,
				}, nil)
			},
			expectedStatus: http.StatusPaymentRequired,
			expectedBody:   `subscription required`,
		},
		{
			name:    "пробный период истёк",
			number:  "5",
			userUID: "uid-1",
			setupMock: func(m *MockService) {
				m.On("Read", mock.Anything, "uid-1", 5).Return(&lesson.Gate{
					Result: entitlement.AccessAccountExpired,
				}, nil)
			},
			expectedStatus: http.StatusForbidden,
			expectedBody:   `trial period expired`,
		},
		{
			name:    "урок не найден",
			number:  "999",
			userUID: "uid-1",
			setupMock: func(m *MockService) {
				m.On("Read", mock.Anything, "uid-1", 999).Return(nil, lesson.ErrLessonNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `lesson not found`,
		},
		{
			name:    "сбой хранилища урока даёт 500, а не 404",
			number:  "5",
			userUID: "uid-1",
			setupMock: func(m *MockService) {
				m.On("Read", mock.Anything, "uid-1", 5).Return(nil, assert.AnError)
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `could not load lesson`,
		},
		{
			name:    "ошибка загрузки пользователя закрывает гейт",
			number:  "5",
			userUID: "uid-1",
			setupMock: func(m *MockService) {
				m.On("Read", mock.Anything, "uid-1", 5).Return(&lesson.Gate{
					Result: entitlement.AccessNoUser,
				}, assert.AnError)
			},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `access denied`,
		},
		{
			name:           "нет идентификации пользователя",
			number:         "5",
			userUID:        "",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `user identification missing`,
		},
		{
			name:           "некорректный номер урока в URL",
			number:         "abc",
			userUID:        "uid-1",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusOK,
			expectedBody:   `failed to decode lesson number from url`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodGet, "/lessons/"+tt.number, nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("number", tt.number)
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			if tt.userUID != "" {
				ctx = context.WithValue(ctx, middlewarectx.UserUID, tt.userUID)
			}
			req = req.WithContext(ctx)

			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
