package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"vault-assistant/internal/config"
	apphttp "vault-assistant/internal/http"
	"vault-assistant/internal/llm"
	"vault-assistant/internal/mcpserver"
	"vault-assistant/internal/service"
	"vault-assistant/internal/terminal"
)

const version = "1.0.0"

// app holds what every command needs.
type app struct {
	cfg       *config.Config
	assistant service.Assistant
}

// setup loads configuration, configures logging to logOut and builds the assistant.
func setup(cmd *cli.Command, logOut io.Writer) (*app, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == config.LogFormatJSON {
		handler = slog.NewJSONHandler(logOut, opts)
	} else {
		handler = slog.NewTextHandler(logOut, opts)
	}
	slog.SetDefault(slog.New(handler))
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	backend, err := llm.New(cfg.LLMOptions())
	if err != nil {
		return nil, err
	}
	slog.Debug("LLM configuration", "provider", cfg.LLMProvider, "base_url", cfg.LLMBaseURL, "model", cfg.LLMModelName)

	assistant := service.NewAssistant(backend, service.Options{
		DefaultModel: cfg.LLMModelName,
		Extension:    cfg.NoteExtension,
		SearchRoots:  cfg.VaultSearchRoots,
	})
	return &app{cfg: cfg, assistant: assistant}, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	a, err := setup(cmd, os.Stdout)
	if err != nil {
		return err
	}
	logger := slog.Default()

	if a.cfg.VaultPath != "" {
		if info, err := a.assistant.Initialize(ctx, a.cfg.VaultPath, a.cfg.LLMModelName); err != nil {
			logger.Warn("Startup vault initialization failed; initialize from the UI instead",
				slog.String("vault", a.cfg.VaultPath), slog.String("error", err.Error()))
		} else {
			logger.Info("Vault initialized at startup", slog.String("vault", info.VaultPath), slog.String("session_id", info.ID))
		}
	}

	router := apphttp.NewRouter(&apphttp.Deps{
		Assistant:    a.assistant,
		DefaultModel: a.cfg.LLMModelName,
	})

	httpServer := &http.Server{
		Addr:              a.cfg.Address(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting API server", slog.String("addr", a.cfg.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("Server stopped successfully")
	return nil
}

func ask(ctx context.Context, cmd *cli.Command) error {
	question := strings.Join(cmd.Args().Slice(), " ")
	if strings.TrimSpace(question) == "" {
		return errors.New("a question is required")
	}

	a, err := setup(cmd, os.Stderr)
	if err != nil {
		return err
	}

	vaultPath := or(cmd.String("vault"), a.cfg.VaultPath)
	if vaultPath == "" {
		return errors.New("a vault is required: pass --vault or set VAULT_PATH")
	}
	return terminal.Ask(ctx, a.assistant, os.Stdout, vaultPath, cmd.String("model"), question)
}

func repl(ctx context.Context, cmd *cli.Command) error {
	a, err := setup(cmd, os.Stderr)
	if err != nil {
		return err
	}

	r := terminal.NewREPL(a.assistant, os.Stdin, os.Stdout, a.cfg.LLMModelName)
	return r.Run(ctx, or(cmd.String("vault"), a.cfg.VaultPath), cmd.String("model"))
}

func vaults(ctx context.Context, cmd *cli.Command) error {
	a, err := setup(cmd, os.Stderr)
	if err != nil {
		return err
	}
	terminal.PrintVaults(ctx, a.assistant, os.Stdout)
	return nil
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	// stdout carries the protocol.
	a, err := setup(cmd, os.Stderr)
	if err != nil {
		return err
	}

	if a.cfg.VaultPath != "" {
		if _, err := a.assistant.Initialize(ctx, a.cfg.VaultPath, a.cfg.LLMModelName); err != nil {
			slog.Warn("Startup vault initialization failed", slog.String("vault", a.cfg.VaultPath), slog.String("error", err.Error()))
		}
	}

	slog.Info("Starting MCP server on stdio")
	return mcpserver.New(a.assistant, version).ServeStdio()
}

func or(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}

func sessionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "vault",
			Usage: "Path to the notes vault (defaults to VAULT_PATH)",
		},
		&cli.StringFlag{
			Name:    "model",
			Aliases: []string{"m"},
			Usage:   "Model used to answer questions (defaults to LLM_MODEL)",
		},
	}
}

func main() {
	cmd := &cli.Command{
		Name:    "vault-assistant",
		Usage:   "Answer questions from a folder of Markdown notes with a local language model",
		Version: version,
		Action:  serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to an optional YAML config file",
				Sources: cli.EnvVars("ASSISTANT_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the web UI and JSON API",
				Action: serve,
			},
			{
				Name:      "ask",
				Usage:     "Answer a single question and exit",
				ArgsUsage: "QUESTION...",
				Flags:     sessionFlags(),
				Action:    ask,
			},
			{
				Name:   "repl",
				Usage:  "Ask questions interactively",
				Flags:  sessionFlags(),
				Action: repl,
			},
			{
				Name:   "vaults",
				Usage:  "List vaults found in the search locations",
				Action: vaults,
			},
			{
				Name:   "mcp",
				Usage:  "Serve the assistant as MCP tools over stdio",
				Action: serveMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
