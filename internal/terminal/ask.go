package terminal

import (
	"context"
	"fmt"
	"io"

	"vault-assistant/internal/service"
)

// Ask initializes the assistant on vaultPath and answers a single question.
func Ask(ctx context.Context, assistant service.Assistant, out io.Writer, vaultPath, model, question string) error {
	if _, err := assistant.Initialize(ctx, vaultPath, model); err != nil {
		return fmt.Errorf("initialize %s: %w", vaultPath, err)
	}

	answer, err := assistant.AnswerQuery(ctx, question)
	if err != nil {
		return fmt.Errorf("answer query: %w", err)
	}

	PrintAnswer(out, NewStyles(out), answer)
	return nil
}

// PrintVaults writes one discovered vault per line.
func PrintVaults(ctx context.Context, assistant service.Assistant, out io.Writer) {
	vaults := assistant.Vaults(ctx)
	if len(vaults) == 0 {
		styles := NewStyles(out)
		fmt.Fprintln(out, styles.Error.Render("No vaults found in common locations."))
		return
	}
	for _, v := range vaults {
		fmt.Fprintln(out, v)
	}
}
