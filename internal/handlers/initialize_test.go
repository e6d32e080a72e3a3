package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/mock/gomock"

	"vault-assistant/internal/llm"
	"vault-assistant/internal/service"
	"vault-assistant/internal/service/mocks"
	"vault-assistant/internal/vault"
)

func TestInitializeHandler_ServeHTTP(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tests := []struct {
		name        string
		method      string
		body        interface{}
		mockSetup   func(*mocks.MockAssistant)
		wantStatus  int
		wantMessage string
		wantSession string
	}{
		{
			name:   "successful initialization",
			method: http.MethodPost,
			body:   InitializeRequest{VaultPath: "/vaults/work", ModelName: "llama3"},
			mockSetup: func(m *mocks.MockAssistant) {
				m.EXPECT().
					Initialize(gomock.Any(), "/vaults/work", "llama3").
					Return(service.SessionInfo{ID: "sess-1", VaultPath: "/vaults/work", Model: "llama3"}, nil)
			},
			wantStatus:  http.StatusOK,
			wantMessage: "Assistant initialized successfully",
			wantSession: "sess-1",
		},
		{
			name:   "model name is optional",
			method: http.MethodPost,
			body:   map[string]string{"vault_path": "/vaults/work"},
			mockSetup: func(m *mocks.MockAssistant) {
				m.EXPECT().
					Initialize(gomock.Any(), "/vaults/work", "").
					Return(service.SessionInfo{ID: "sess-2", VaultPath: "/vaults/work", Model: "mistral"}, nil)
			},
			wantStatus:  http.StatusOK,
			wantSession: "sess-2",
		},
		{
			name:        "missing vault path",
			method:      http.MethodPost,
			body:        map[string]string{"model_name": "mistral"},
			mockSetup:   func(m *mocks.MockAssistant) {},
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Vault path is required",
		},
		{
			name:        "empty body",
			method:      http.MethodPost,
			mockSetup:   func(m *mocks.MockAssistant) {},
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Vault path is required",
		},
		{
			name:        "invalid JSON body",
			method:      http.MethodPost,
			body:        "{",
			mockSetup:   func(m *mocks.MockAssistant) {},
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Invalid request body",
		},
		{
			name:        "method not allowed",
			method:      http.MethodGet,
			mockSetup:   func(m *mocks.MockAssistant) {},
			wantStatus:  http.StatusMethodNotAllowed,
			wantMessage: "Method not allowed",
		},
		{
			name:   "vault not found",
			method: http.MethodPost,
			body:   InitializeRequest{VaultPath: "/missing"},
			mockSetup: func(m *mocks.MockAssistant) {
				m.EXPECT().
					Initialize(gomock.Any(), "/missing", "").
					Return(service.SessionInfo{}, fmt.Errorf("vault /missing: %w", vault.ErrVaultNotFound))
			},
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Vault path does not exist or is not a directory",
		},
		{
			name:   "backend unreachable",
			method: http.MethodPost,
			body:   InitializeRequest{VaultPath: "/vaults/work"},
			mockSetup: func(m *mocks.MockAssistant) {
				m.EXPECT().
					Initialize(gomock.Any(), "/vaults/work", "").
					Return(service.SessionInfo{}, fmt.Errorf("x: %w: %w", service.ErrExternalService, llm.ErrBackendUnavailable))
			},
			wantStatus: http.StatusBadGateway,
		},
		{
			name:   "validation error",
			method: http.MethodPost,
			body:   InitializeRequest{VaultPath: "/vaults/work"},
			mockSetup: func(m *mocks.MockAssistant) {
				m.EXPECT().
					Initialize(gomock.Any(), "/vaults/work", "").
					Return(service.SessionInfo{}, &service.ValidationError{Field: "vault_path", Message: "is required"})
			},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockAssistant := mocks.NewMockAssistant(ctrl)
			tt.mockSetup(mockAssistant)

			handler := NewInitializeHandler(mockAssistant)
			req := newJSONRequest(t, tt.method, "/initialize", tt.body)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("ServeHTTP() status = %v, want %v (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}

			if tt.wantStatus != http.StatusOK {
				resp := decodeError(t, w)
				if tt.wantMessage != "" && resp.Message != tt.wantMessage {
					t.Errorf("message = %q, want %q", resp.Message, tt.wantMessage)
				}
				return
			}

			var resp InitializeResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp.Status != "success" {
				t.Errorf("status = %q, want success", resp.Status)
			}
			if tt.wantMessage != "" && resp.Message != tt.wantMessage {
				t.Errorf("message = %q, want %q", resp.Message, tt.wantMessage)
			}
			if resp.SessionID != tt.wantSession {
				t.Errorf("session_id = %q, want %q", resp.SessionID, tt.wantSession)
			}
		})
	}
}
