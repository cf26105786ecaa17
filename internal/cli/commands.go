package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"askhr/internal/answer"
	"askhr/internal/domain"
	"askhr/internal/server"
	"askhr/internal/service"
	"askhr/internal/tui"
)

const previewRunes = 240

var (
	okText    = color.New(color.FgGreen).SprintFunc()
	warnText  = color.New(color.FgYellow).SprintFunc()
	errText   = color.New(color.FgRed, color.Bold).SprintFunc()
	dimText   = color.New(color.Faint).SprintFunc()
	titleText = color.New(color.FgCyan, color.Bold).SprintFunc()
)

func printError(w io.Writer, err error) {
	fmt.Fprintln(w, errText("error:"), err)
}

func newBuildCmd(current func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "build <file|dir|glob>...",
		Short: "Build the knowledge base from PDF, text or markdown files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := current()
			report, err := a.svc.IngestPaths(args)
			if err != nil && !errors.Is(err, domain.ErrPersistenceWrite) {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %d chunks from %d document(s)\n", okText("Indexed"), report.Chunks, len(report.Sources))
			for _, src := range report.Sources {
				fmt.Fprintf(out, "  - %s\n", src)
			}
			if report.Summary != "" {
				fmt.Fprintf(out, "\n%s\n%s\n", titleText("Overview"), report.Summary)
			}
			if err != nil {
				fmt.Fprintln(out, warnText("warning: knowledge base is active for this run but was not saved:"), err)
			}
			return nil
		},
	}
}

func newQueryCmd(current func() *app) *cobra.Command {
	var k int
	cmd := &cobra.Command{
		Use:   "query <text>",
		Short: "Show the passages most similar to a query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := strings.TrimSpace(strings.Join(args, " "))
			if q == "" {
				return domain.ErrEmptyQuery
			}
			results := current().svc.Query(q, k)
			out := cmd.OutOrStdout()
			if len(results) == 0 {
				fmt.Fprintln(out, warnText("No matching passages."))
				return nil
			}
			for i, r := range results {
				fmt.Fprintf(out, "%s %s %s\n", titleText(fmt.Sprintf("[%d]", i+1)),
					fmt.Sprintf("%s #%d", r.Source, r.ChunkID), dimText(fmt.Sprintf("score=%.3f", r.Score)))
				fmt.Fprintf(out, "    %s\n", answer.Preview(strings.Join(strings.Fields(r.Text), " "), previewRunes))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&k, "k", "k", 0, "number of passages (default retrieval.top_k)")
	return cmd
}

func newAskCmd(current func() *app) *cobra.Command {
	var k int
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer a question from the knowledge base",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ans, err := current().svc.Ask(strings.Join(args, " "), k)
			if err != nil {
				return err
			}
			printAnswer(cmd.OutOrStdout(), ans)
			return nil
		},
	}
	cmd.Flags().IntVarP(&k, "k", "k", 0, "number of passages to consider (default retrieval.top_k)")
	return cmd
}

func printAnswer(out io.Writer, ans service.Answer) {
	switch ans.Status {
	case service.StatusNoKnowledgeBase, service.StatusNoResults:
		fmt.Fprintln(out, warnText(ans.Text))
		return
	}
	fmt.Fprintln(out, ans.Text)
	fmt.Fprintln(out)
	fmt.Fprintln(out, titleText("Sources"))
	for _, r := range ans.Results {
		fmt.Fprintf(out, "  - %s #%d %s\n", r.Source, r.ChunkID, dimText(fmt.Sprintf("score=%.3f", r.Score)))
	}
}

func newClearCmd(current func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete the knowledge base and its saved record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := current().svc.Clear()
			if err != nil && !errors.Is(err, domain.ErrPersistenceWrite) {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, okText("Knowledge base cleared."))
			if err != nil {
				fmt.Fprintln(out, warnText("warning: the saved record could not be removed and will be reloaded next run:"), err)
			}
			return nil
		},
	}
}

func newDocsCmd(current func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "docs",
		Short: "List the indexed documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := current().svc
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, svc.Describe())
			counts := make(map[string]int)
			for _, c := range svc.Documents() {
				counts[c.Source]++
			}
			for _, src := range svc.Sources() {
				fmt.Fprintf(out, "  - %s %s\n", src, dimText(fmt.Sprintf("(%d chunks)", counts[src])))
			}
			return nil
		},
	}
}

func newChatCmd(current func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Ask questions interactively in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := current()
			m := tui.New(a.svc, a.cfg.Retrieval.TopK)
			_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
			return err
		},
	}
}

func newServeCmd(current func() *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the knowledge base over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := current()
			if addr == "" {
				addr = a.cfg.Server.Addr
			}
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			srv := server.New(a.svc, a.cfg.Server.MaxUploadMB, a.log)
			return srv.ListenAndServe(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default server.addr)")
	return cmd
}
