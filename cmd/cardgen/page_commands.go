package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/heartmarshall/japanese-cards/internal/domain"
)

func newImportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Store a markdown outline as a new page (FILE may be - for stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			pages, release, err := ctx.pages(cmd)
			if err != nil {
				return err
			}
			defer release()

			res, err := pages.Import(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Page: %s (%d blocks)\n", res.PageID, res.Blocks)
			return nil
		},
	}
}

func newExportCommand(ctx *commandContext) *cobra.Command {
	var (
		pageFlag string
		render   bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print a page as a markdown outline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pageID, err := uuid.Parse(pageFlag)
			if err != nil {
				return fmt.Errorf("--page: %w", err)
			}

			pages, release, err := ctx.pages(cmd)
			if err != nil {
				return err
			}
			defer release()

			var buf bytes.Buffer
			if err := pages.Export(cmd.Context(), &buf, pageID); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !render && !isTerminal(out) {
				_, err := buf.WriteTo(out)
				return err
			}
			styled, err := glamour.Render(buf.String(), "auto")
			if err != nil {
				return fmt.Errorf("render outline: %w", err)
			}
			_, err = io.WriteString(out, styled)
			return err
		},
	}
	cmd.Flags().StringVar(&pageFlag, "page", "", "Page id")
	cmd.Flags().BoolVar(&render, "render", false, "Style the outline even when stdout is not a terminal")
	_ = cmd.MarkFlagRequired("page")
	return cmd
}

func newEntriesCommand(ctx *commandContext) *cobra.Command {
	var pageFlag string
	cmd := &cobra.Command{
		Use:   "entries",
		Short: "List the blocks of a page with their ids",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pageID, err := uuid.Parse(pageFlag)
			if err != nil {
				return fmt.Errorf("--page: %w", err)
			}

			pages, release, err := ctx.pages(cmd)
			if err != nil {
				return err
			}
			defer release()

			tree, err := pages.Tree(cmd.Context(), pageID)
			if err != nil {
				return err
			}

			var rows [][]string
			appendEntryRows(&rows, tree, 0)
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"ID", "Text", "Properties"}, rows))
			return nil
		},
	}
	cmd.Flags().StringVar(&pageFlag, "page", "", "Page id")
	_ = cmd.MarkFlagRequired("page")
	return cmd
}

// appendEntryRows flattens the tree depth first, indenting text by level.
func appendEntryRows(rows *[][]string, nodes []domain.BlockNode, depth int) {
	for _, n := range nodes {
		text, _, _ := strings.Cut(n.Text, "\n")
		*rows = append(*rows, []string{
			n.ID.String(),
			strings.Repeat("  ", depth) + text,
			formatProperties(n.Properties),
		})
		appendEntryRows(rows, n.Children, depth+1)
	}
}

func formatProperties(p domain.Properties) string {
	var b strings.Builder
	for _, k := range sortedKeys(p) {
		if b.Len() > 0 {
			b.WriteString(", ")
		}
		b.WriteString(k + "=" + p[k])
	}
	return b.String()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func (c *commandContext) pages(cmd *cobra.Command) (pageClient, func(), error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	return c.openPages(cmd.Context(), cfg, c.logger(cfg, cmd.ErrOrStderr()))
}
