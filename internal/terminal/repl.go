package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"vault-assistant/internal/rag"
	"vault-assistant/internal/service"
)

const (
	responseTitle = "AI Response"
	exitCommand   = "exit"
)

// REPL runs the interactive question loop.
type REPL struct {
	assistant    service.Assistant
	in           *bufio.Scanner
	out          io.Writer
	styles       Styles
	defaultModel string
}

// NewREPL creates a REPL reading from in and writing to out.
func NewREPL(assistant service.Assistant, in io.Reader, out io.Writer, defaultModel string) *REPL {
	if defaultModel == "" {
		defaultModel = service.DefaultModel
	}
	return &REPL{
		assistant:    assistant,
		in:           bufio.NewScanner(in),
		out:          out,
		styles:       NewStyles(out),
		defaultModel: defaultModel,
	}
}

// Run selects a vault and model, unless given, then answers questions until
// the user types exit or input ends.
func (r *REPL) Run(ctx context.Context, vaultPath, model string) error {
	fmt.Fprintln(r.out, r.styles.Banner.Render("Vault Assistant"))

	var err error
	if vaultPath == "" {
		if vaultPath, err = r.chooseVault(ctx); err != nil {
			return err
		}
	}
	if model == "" {
		answer, err := r.prompt(fmt.Sprintf("Enter model name (default: %s): ", r.defaultModel))
		if err != nil {
			return err
		}
		model = answer
		if model == "" {
			model = r.defaultModel
		}
	}

	info, err := r.assistant.Initialize(ctx, vaultPath, model)
	if err != nil {
		return fmt.Errorf("initialize %s: %w", vaultPath, err)
	}
	fmt.Fprintln(r.out, r.styles.Muted.Render(fmt.Sprintf("Using vault %s with model %s", info.VaultPath, info.Model)))

	for {
		if ctx.Err() != nil {
			return nil
		}
		query, err := r.readLine("\nEnter your question (or 'exit' to quit): ")
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		trimmed := strings.TrimSpace(query)
		if strings.EqualFold(trimmed, exitCommand) {
			return nil
		}
		if trimmed == "" {
			continue
		}

		answer, err := r.assistant.AnswerQuery(ctx, query)
		if err != nil {
			fmt.Fprintln(r.out, r.styles.Error.Render("Error: "+err.Error()))
			continue
		}
		PrintAnswer(r.out, r.styles, answer)
	}
}

// chooseVault lists discovered vaults and reads a selection by number. Any
// other input, or an empty discovery, falls back to a typed path.
func (r *REPL) chooseVault(ctx context.Context) (string, error) {
	vaults := r.assistant.Vaults(ctx)
	if len(vaults) == 0 {
		fmt.Fprintln(r.out, r.styles.Error.Render("No vaults found in common locations."))
		return r.promptPath()
	}

	fmt.Fprintln(r.out, "\nAvailable vaults:")
	for i, v := range vaults {
		fmt.Fprintf(r.out, "%d. %s\n", i+1, v)
	}

	choice, err := r.prompt("Select a vault number (default: 1): ")
	if err != nil {
		return "", err
	}
	if choice == "" {
		return vaults[0], nil
	}
	if n, err := strconv.Atoi(choice); err == nil && n >= 1 && n <= len(vaults) {
		return vaults[n-1], nil
	}
	return r.promptPath()
}

func (r *REPL) promptPath() (string, error) {
	for {
		path, err := r.prompt("Please enter the full path to your vault: ")
		if err != nil {
			return "", err
		}
		if path != "" {
			return path, nil
		}
	}
}

// prompt writes label and reads one trimmed line.
func (r *REPL) prompt(label string) (string, error) {
	line, err := r.readLine(label)
	return strings.TrimSpace(line), err
}

// readLine writes label and reads one line as typed. io.EOF is returned when
// input is exhausted.
func (r *REPL) readLine(label string) (string, error) {
	fmt.Fprint(r.out, label)
	if !r.in.Scan() {
		if err := r.in.Err(); err != nil {
			return "", fmt.Errorf("read input: %w", err)
		}
		return "", io.EOF
	}
	return r.in.Text(), nil
}

// PrintAnswer writes answer framed for the terminal.
func PrintAnswer(w io.Writer, styles Styles, answer rag.Answer) {
	if !answer.Found() {
		fmt.Fprintln(w, styles.Warning.Render(answer.Response))
		return
	}

	fmt.Fprintln(w, styles.RenderPanel(responseTitle, answer.Response))
	if len(answer.Files) > 0 {
		fmt.Fprintln(w, styles.Muted.Render("Sources:"))
		for _, f := range answer.Files {
			fmt.Fprintln(w, styles.Muted.Render("  - "+f.RelPath))
		}
	}
}
