package terminal

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"vault-assistant/internal/rag"
	"vault-assistant/internal/service"
	"vault-assistant/internal/service/mocks"
)

func TestREPL_Run(t *testing.T) {
	ctrl := gomock.NewController(t)

	tests := []struct {
		name      string
		input     string
		vaultPath string
		model     string
		mockSetup func(*mocks.MockAssistant)
		wantOut   []string
	}{
		{
			name:  "select vault by number and default model",
			input: "2\n\nwhat is red\nexit\n",
			mockSetup: func(m *mocks.MockAssistant) {
				m.EXPECT().Vaults(gomock.Any()).Return([]string{"/v/one", "/v/two"})
				m.EXPECT().Initialize(gomock.Any(), "/v/two", "mistral").
					Return(service.SessionInfo{VaultPath: "/v/two", Model: "mistral"}, nil)
				m.EXPECT().AnswerQuery(gomock.Any(), "what is red").Return(rag.Answer{
					Response: "Apples are red.",
					Files:    []rag.CitedFile{{Name: "a.md", RelPath: "fruit/a.md"}},
					Matched:  1,
				}, nil)
			},
			wantOut: []string{"1. /v/one", "2. /v/two", "AI Response", "Apples are red.", "fruit/a.md"},
		},
		{
			name:  "default vault selection",
			input: "\nllama3\nEXIT\n",
			mockSetup: func(m *mocks.MockAssistant) {
				m.EXPECT().Vaults(gomock.Any()).Return([]string{"/v/one"})
				m.EXPECT().Initialize(gomock.Any(), "/v/one", "llama3").
					Return(service.SessionInfo{VaultPath: "/v/one", Model: "llama3"}, nil)
			},
			wantOut: []string{"Using vault /v/one with model llama3"},
		},
		{
			name:  "invalid choice falls back to typed path",
			input: "9\n/typed/vault\n\n",
			mockSetup: func(m *mocks.MockAssistant) {
				m.EXPECT().Vaults(gomock.Any()).Return([]string{"/v/one"})
				m.EXPECT().Initialize(gomock.Any(), "/typed/vault", "mistral").
					Return(service.SessionInfo{VaultPath: "/typed/vault", Model: "mistral"}, nil)
			},
			wantOut: []string{"Please enter the full path to your vault"},
		},
		{
			name:  "no vaults discovered",
			input: "/typed/vault\n\n",
			mockSetup: func(m *mocks.MockAssistant) {
				m.EXPECT().Vaults(gomock.Any()).Return([]string{})
				m.EXPECT().Initialize(gomock.Any(), "/typed/vault", "mistral").
					Return(service.SessionInfo{VaultPath: "/typed/vault", Model: "mistral"}, nil)
			},
			wantOut: []string{"No vaults found in common locations."},
		},
		{
			name:      "flags skip the prompts",
			input:     "purple\n  \nbroken\nexit\n",
			vaultPath: "/given",
			model:     "phi3",
			mockSetup: func(m *mocks.MockAssistant) {
				m.EXPECT().Initialize(gomock.Any(), "/given", "phi3").
					Return(service.SessionInfo{VaultPath: "/given", Model: "phi3"}, nil)
				m.EXPECT().AnswerQuery(gomock.Any(), "purple").Return(rag.Answer{Response: rag.NoMatchesResponse}, nil)
				m.EXPECT().AnswerQuery(gomock.Any(), "broken").Return(rag.Answer{}, errors.New("backend down"))
			},
			wantOut: []string{rag.NoMatchesResponse, "Error: backend down"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := mocks.NewMockAssistant(ctrl)
			tt.mockSetup(m)

			var out bytes.Buffer
			repl := NewREPL(m, strings.NewReader(tt.input), &out, "mistral")

			require.NoError(t, repl.Run(context.Background(), tt.vaultPath, tt.model))
			for _, want := range tt.wantOut {
				assert.Contains(t, out.String(), want)
			}
		})
	}
}

func TestREPL_Run_InitializeFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := mocks.NewMockAssistant(ctrl)
	m.EXPECT().Initialize(gomock.Any(), "/missing", "mistral").
		Return(service.SessionInfo{}, errors.New("vault not found"))

	var out bytes.Buffer
	err := NewREPL(m, strings.NewReader(""), &out, "").Run(context.Background(), "/missing", "mistral")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/missing")
}

func TestPrintAnswer(t *testing.T) {
	var out bytes.Buffer
	PrintAnswer(&out, NewStyles(&out), rag.Answer{Response: rag.NoMatchesResponse})
	assert.Equal(t, rag.NoMatchesResponse+"\n", out.String())

	out.Reset()
	PrintAnswer(&out, NewStyles(&out), rag.Answer{Response: "hello", Matched: 1})
	assert.Contains(t, out.String(), "AI Response")
	assert.Contains(t, out.String(), "╭")
	assert.NotContains(t, out.String(), "Sources:")
}

func TestAsk(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := mocks.NewMockAssistant(ctrl)
	gomock.InOrder(
		m.EXPECT().Initialize(gomock.Any(), "/v", "").Return(service.SessionInfo{}, nil),
		m.EXPECT().AnswerQuery(gomock.Any(), "what is red").Return(rag.Answer{Response: "Red things.", Matched: 2}, nil),
	)

	var out bytes.Buffer
	require.NoError(t, Ask(context.Background(), m, &out, "/v", "", "what is red"))
	assert.Contains(t, out.String(), "Red things.")
}

func TestPrintVaults(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := mocks.NewMockAssistant(ctrl)
	m.EXPECT().Vaults(gomock.Any()).Return([]string{"/a", "/b"})

	var out bytes.Buffer
	PrintVaults(context.Background(), m, &out)
	assert.Equal(t, "/a\n/b\n", out.String())
}
