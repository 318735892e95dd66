package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pesanmasa/chatbot/internal/model"
	"github.com/pesanmasa/chatbot/internal/pipeline"
	"github.com/pesanmasa/chatbot/internal/render"
)

const (
	prompt         = "Tulis pesan Anda: "
	historyCommand = "/riwayat"
	quitCommand    = "/keluar"
)

func newChatCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive conversation (default)",
		Long: "Reads one message per line and answers each. " +
			historyCommand + " shows the conversation, newest first; " +
			quitCommand + " ends it.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runChat(cmd)
		},
	}
}

func (a *app) runChat(cmd *cobra.Command) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bot, err := a.newBot()
	if err != nil {
		return err
	}
	defer bot.Close()

	transcript, err := buildTranscript(a.cfg.Transcript)
	if err != nil {
		return fmt.Errorf("transcript: %w", err)
	}
	session := pipeline.New(botHandler{bot: bot}, transcript)
	defer func() {
		if err := session.Close(); err != nil {
			slog.Warn("closing transcript", "error", err)
		}
	}()
	slog.Debug("session started", "session", session.ID())

	ui := a.ui(cmd)
	r := render.New(ui)
	fmt.Fprintln(ui, r.Title(title))
	fmt.Fprintf(ui, "Ketik %s untuk melihat percakapan, %s untuk keluar.\n\n", historyCommand, quitCommand)

	lines := readLines(ctx, cmd.InOrStdin())
	for {
		fmt.Fprint(ui, prompt)
		var line string
		select {
		case <-ctx.Done():
			fmt.Fprintln(ui)
			return nil
		case l, ok := <-lines:
			if !ok {
				fmt.Fprintln(ui)
				return nil
			}
			line = strings.TrimSpace(l)
		}

		switch line {
		case quitCommand:
			return nil
		case historyCommand:
			if err := r.Log(ui, session.Log()); err != nil {
				return err
			}
			continue
		}

		reply, ok, err := session.Submit(ctx, line)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		if err != nil {
			slog.Warn("transcript write failed", "error", err)
		}
		if ok {
			fmt.Fprintln(ui, r.Turn(model.BotTurn(reply)))
		}
	}
}

// readLines delivers input lines until EOF or ctx ends. A Scan blocked on a
// terminal cannot be interrupted, so after ctx ends the goroutine lingers
// until in returns; chat only stops reading right before the process exits.
func readLines(ctx context.Context, in io.Reader) <-chan string {
	ch := make(chan string)
	go func() {
		defer close(ch)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case ch <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}
