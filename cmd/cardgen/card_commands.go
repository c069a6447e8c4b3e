package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/heartmarshall/japanese-cards/internal/adapter/notify"
	"github.com/heartmarshall/japanese-cards/internal/service/card"
	"github.com/heartmarshall/japanese-cards/pkg/ctxutil"
)

type target struct {
	entry string
	page  string
}

func newVocabCommand(ctx *commandContext) *cobra.Command {
	return newEntryCommand(ctx, "vocab", "Turn an entry into a vocabulary card", card.CommandVocabulary)
}

func newGrammarCommand(ctx *commandContext) *cobra.Command {
	return newEntryCommand(ctx, "grammar", "Turn an entry into a grammar card", card.CommandGrammar)
}

func newTranslateCommand(ctx *commandContext) *cobra.Command {
	return newEntryCommand(ctx, "translate", "Attach pronunciation audio to an entry", card.CommandTranslate)
}

func newEntryCommand(ctx *commandContext, use, short, command string) *cobra.Command {
	var t target
	cmd := &cobra.Command{
		Use:   use + " --entry ID",
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.runCard(cmd, command, t)
		},
	}
	cmd.Flags().StringVar(&t.entry, "entry", "", "Entry (block) id")
	_ = cmd.MarkFlagRequired("entry")
	return cmd
}

func newGrammarPageCommand(ctx *commandContext) *cobra.Command {
	var t target
	cmd := &cobra.Command{
		Use:   "grammar-page --page ID",
		Short: "Turn every eligible entry of a page into a grammar card",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.runCard(cmd, card.CommandGrammarPage, t)
		},
	}
	cmd.Flags().StringVar(&t.page, "page", "", "Page id")
	cmd.Flags().StringVar(&t.entry, "entry", "", "Any entry of the page, used when --page is omitted")
	cmd.MarkFlagsOneRequired("page", "entry")
	return cmd
}

func (c *commandContext) runCard(cmd *cobra.Command, command string, t target) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}

	runCtx, err := withTarget(cmd.Context(), t)
	if err != nil {
		return err
	}
	runCtx, collector := notify.WithCollector(runCtx)

	registry, closeRegistry, err := c.open(runCtx, cfg, c.logger(cfg, cmd.ErrOrStderr()))
	if err != nil {
		return err
	}
	defer closeRegistry()

	res, runErr := registry.Run(runCtx, command)

	out := cmd.OutOrStdout()
	for _, msg := range collector.Messages() {
		fmt.Fprintln(out, msg)
	}
	if res != nil {
		printResult(out, res)
	}
	return runErr
}

func withTarget(ctx context.Context, t target) (context.Context, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if s := strings.TrimSpace(t.entry); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("--entry: %w", err)
		}
		ctx = ctxutil.WithEntryID(ctx, id)
	}
	if s := strings.TrimSpace(t.page); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("--page: %w", err)
		}
		ctx = ctxutil.WithPageID(ctx, id)
	}
	return ctx, nil
}

func printResult(out io.Writer, res *card.Result) {
	if res.CardID != nil {
		fmt.Fprintf(out, "Card: %s\n", res.CardID)
	}
	if res.AssetKey != "" {
		fmt.Fprintf(out, "Audio: %s\n", res.AssetKey)
	}
	if b := res.Batch; b != nil {
		for _, e := range b.Entries {
			line := fmt.Sprintf("  %-11s %s", e.State, e.Text)
			if e.Error != "" {
				line += "  (" + e.Error + ")"
			}
			fmt.Fprintln(out, line)
		}
	}
}
