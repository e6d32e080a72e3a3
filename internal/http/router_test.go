package http

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/mock/gomock"

	"vault-assistant/internal/rag"
	"vault-assistant/internal/service"
	"vault-assistant/internal/service/mocks"
)

func TestNewRouter(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	router := NewRouter(&Deps{Assistant: mocks.NewMockAssistant(ctrl)})

	if router == nil {
		t.Fatal("NewRouter() returned nil")
	}
}

func TestRouter_Routes(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		mockSetup  func(*mocks.MockAssistant)
		wantStatus int
	}{
		{
			name:   "GET root serves HTML",
			method: http.MethodGet,
			path:   "/",
			mockSetup: func(m *mocks.MockAssistant) {
				m.EXPECT().Vaults(gomock.Any()).Return(nil)
				m.EXPECT().Models(gomock.Any()).Return([]string{"mistral"}, nil)
				m.EXPECT().Session().Return(service.SessionInfo{}, false)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "POST /initialize exists",
			method:     http.MethodPost,
			path:       "/initialize",
			body:       "{}",
			mockSetup:  func(m *mocks.MockAssistant) {},
			wantStatus: http.StatusBadRequest, // vault path missing, but route exists
		},
		{
			name:       "POST /api/initialize alias",
			method:     http.MethodPost,
			path:       "/api/initialize",
			body:       "{}",
			mockSetup:  func(m *mocks.MockAssistant) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "POST /query",
			method: http.MethodPost,
			path:   "/query",
			body:   `{"query":"red"}`,
			mockSetup: func(m *mocks.MockAssistant) {
				m.EXPECT().AnswerQuery(gomock.Any(), "red").Return(rag.Answer{Response: rag.NoMatchesResponse}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "POST /api/query alias",
			method: http.MethodPost,
			path:   "/api/query",
			body:   `{"query":"red"}`,
			mockSetup: func(m *mocks.MockAssistant) {
				m.EXPECT().AnswerQuery(gomock.Any(), "red").Return(rag.Answer{}, service.ErrNotInitialized)
			},
			wantStatus: http.StatusConflict,
		},
		{
			name:       "GET /query method not allowed",
			method:     http.MethodGet,
			path:       "/query",
			mockSetup:  func(m *mocks.MockAssistant) {},
			wantStatus: http.StatusMethodNotAllowed,
		},
		{
			name:   "GET /api/health",
			method: http.MethodGet,
			path:   "/api/health",
			mockSetup: func(m *mocks.MockAssistant) {
				m.EXPECT().Ping(gomock.Any()).Return(nil)
				m.EXPECT().Session().Return(service.SessionInfo{}, false)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "GET /notes without session",
			method: http.MethodGet,
			path:   "/notes/a.md",
			mockSetup: func(m *mocks.MockAssistant) {
				m.EXPECT().Session().Return(service.SessionInfo{}, false)
			},
			wantStatus: http.StatusConflict,
		},
		{
			name:       "unknown route",
			method:     http.MethodGet,
			path:       "/api/chat",
			mockSetup:  func(m *mocks.MockAssistant) {},
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockAssistant := mocks.NewMockAssistant(ctrl)
			tt.mockSetup(mockAssistant)
			router := NewRouter(&Deps{Assistant: mockAssistant, DefaultModel: "mistral"})

			req := httptest.NewRequest(tt.method, tt.path, bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("Router %s %s status = %v, want %v", tt.method, tt.path, w.Code, tt.wantStatus)
			}
		})
	}
}

func TestRouter_MiddlewareApplied(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	router := NewRouter(&Deps{Assistant: mocks.NewMockAssistant(ctrl)})

	req := httptest.NewRequest(http.MethodPost, "/initialize", bytes.NewBufferString("{}"))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	// Check CORS headers are present
	if w.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("Router should apply CORS middleware")
	}
}

func TestRouter_SingleStructuredRequestLog(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	var buf bytes.Buffer
	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(previous) })

	chiLogged := 0
	defaultLogger := middleware.DefaultLogger
	middleware.DefaultLogger = func(next http.Handler) http.Handler {
		chiLogged++
		return next
	}
	t.Cleanup(func() { middleware.DefaultLogger = defaultLogger })

	mockAssistant := mocks.NewMockAssistant(ctrl)
	mockAssistant.EXPECT().AnswerQuery(gomock.Any(), "red").Return(rag.Answer{Response: rag.NoMatchesResponse}, nil)
	router := NewRouter(&Deps{Assistant: mockAssistant})

	req := httptest.NewRequest(http.MethodPost, "/query", bytes.NewBufferString(`{"query":"red"}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %v, want %v", w.Code, http.StatusOK)
	}
	if chiLogged != 0 {
		t.Errorf("chi request logger installed %d times, want 0", chiLogged)
	}

	completed := 0
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("log line is not JSON: %q", line)
		}
		if entry["msg"] == "request completed" {
			completed++
		}
	}
	if completed != 1 {
		t.Errorf("request completed lines = %d, want 1:\n%s", completed, buf.String())
	}
}
