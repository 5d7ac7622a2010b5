// Command chat is the terminal client for the chat backend.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/suPer8Hu/bundle-chat/internal/config"
	"github.com/suPer8Hu/bundle-chat/internal/conversation"
	"github.com/suPer8Hu/bundle-chat/internal/dispatch"
	"github.com/suPer8Hu/bundle-chat/internal/logging"
	"github.com/suPer8Hu/bundle-chat/internal/transport"
	"github.com/suPer8Hu/bundle-chat/internal/tui"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(config.Load()).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

type app struct {
	cfg        config.Config
	noMarkdown bool
	log        *zap.Logger
}

func newRootCmd(cfg config.Config) *cobra.Command {
	a := &app{cfg: cfg, noMarkdown: !cfg.Markdown}

	root := &cobra.Command{
		Use:          "chat",
		Short:        "Chat with the assistant from the terminal",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI(cmd.Context())
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&a.cfg.APIBaseURL, "api", a.cfg.APIBaseURL, "chat API base URL")
	f.DurationVar(&a.cfg.RequestTimeout, "timeout", a.cfg.RequestTimeout, "request timeout, 0 waits for the server")
	f.StringVar(&a.cfg.Theme, "theme", a.cfg.Theme, "color theme (dark|light)")
	f.BoolVar(&a.noMarkdown, "no-markdown", a.noMarkdown, "show assistant replies as plain text")
	f.StringVar(&a.cfg.LogFile, "log-file", a.cfg.LogFile, "log file path")

	root.AddCommand(a.sendCmd(), a.showCmd(), a.deleteCmd(), a.uploadCmd())
	return root
}

func (a *app) setup() error {
	if a.cfg.Theme != "dark" && a.cfg.Theme != "light" {
		return fmt.Errorf("unknown theme %q", a.cfg.Theme)
	}
	a.cfg.Markdown = !a.noMarkdown

	// the terminal belongs to the UI, so logs only go to the file
	if a.cfg.LogFile == "" {
		a.log = zap.NewNop()
		return nil
	}
	log, err := logging.New(a.cfg.LogLevel, a.cfg.LogFile)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	a.log = log
	return nil
}

func (a *app) client() *transport.Client {
	return transport.NewClient(a.cfg.APIBaseURL, a.cfg.RequestTimeout)
}

func (a *app) dispatcher(store conversation.Container) *dispatch.Dispatcher {
	return dispatch.New(store, a.client(),
		dispatch.WithLogger(a.log),
		dispatch.WithErrorHistory(a.cfg.RecordErrors),
	)
}

func (a *app) runTUI(ctx context.Context) error {
	store := conversation.NewStore()
	m := tui.New(ctx, store, a.dispatcher(store), tui.Options{
		Theme:    a.cfg.Theme,
		Markdown: a.cfg.Markdown,
		Logger:   a.log,
	})

	a.log.Info("chat started", zap.String("api", a.cfg.APIBaseURL))
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}

func (a *app) sendCmd() *cobra.Command {
	var chatID string
	cmd := &cobra.Command{
		Use:   "send <message>",
		Short: "Send one message and print the reply",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if chatID != "" {
				resp, err := a.client().SendMessage(ctx, &chatID, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), resp.Response)
				return nil
			}

			res, err := a.dispatcher(conversation.NewStore()).Send(ctx, args[0])
			if err != nil {
				if res.Failed {
					fmt.Fprintln(cmd.ErrOrStderr(), res.Reply)
				}
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Reply)
			fmt.Fprintf(cmd.ErrOrStderr(), "chat: %s\n", res.ConversationID)
			return nil
		},
	}
	cmd.Flags().StringVar(&chatID, "chat", "", "continue an existing chat id")
	return cmd
}

func (a *app) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <chat-id>",
		Short: "Print a chat's history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client().GetChat(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, m := range c.Messages {
				fmt.Fprintf(out, "%s: %s\n", m.Role, m.Content)
			}
			return nil
		},
	}
}

func (a *app) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <chat-id>",
		Short: "Delete a chat on the server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := a.client().DeleteChat(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}
}

func (a *app) uploadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload <chat-id> <file.txt>...",
		Short: "Add text files to a chat as reference material",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			files := make([]transport.Upload, 0, len(args)-1)
			for _, p := range args[1:] {
				b, err := os.ReadFile(p)
				if err != nil {
					return err
				}
				files = append(files, transport.Upload{Name: filepath.Base(p), Data: b})
			}
			msg, err := a.client().UploadDocuments(cmd.Context(), args[0], files)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}
}
