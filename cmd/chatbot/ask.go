package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pesanmasa/chatbot/internal/model"
	"github.com/pesanmasa/chatbot/internal/pipeline"
)

func newAskCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ask [text...]",
		Short: "Answer one question, or every line of stdin",
		Long: "With arguments, answers them as a single message and prints the reply.\n" +
			"Without arguments, treats each line of stdin as a message of one\n" +
			"conversation and prints one reply per line.",
		Example: `  chatbot ask jam buka kapan?
  printf 'halo\nberapa ongkir?\n' | chatbot ask --classifier keyword`,
		RunE: func(cmd *cobra.Command, args []string) error {
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

			ui := a.ui(cmd)
			if len(args) > 0 {
				err = askOnce(ctx, session, ui, strings.Join(args, " "))
			} else {
				err = session.Stream(ctx, readLines(ctx, cmd.InOrStdin()), func(_ model.ConversationLog, reply string) {
					fmt.Fprintln(ui, reply)
				})
			}
			if errors.Is(err, context.Canceled) {
				err = nil
			}
			return errors.Join(err, session.Close())
		},
	}
}

func askOnce(ctx context.Context, s *pipeline.Session, ui io.Writer, text string) error {
	reply, ok, err := s.Submit(ctx, text)
	if !ok && err == nil {
		return errors.New("nothing to ask: message is empty")
	}
	if ok {
		fmt.Fprintln(ui, reply)
	}
	return err
}
