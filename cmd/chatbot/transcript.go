package main

import (
	"github.com/pesanmasa/chatbot/internal/config"
	"github.com/pesanmasa/chatbot/internal/engine"
	"github.com/pesanmasa/chatbot/internal/model"
	"github.com/pesanmasa/chatbot/internal/output"
	"github.com/pesanmasa/chatbot/internal/output/file"
	"github.com/pesanmasa/chatbot/internal/output/multi"
	"github.com/pesanmasa/chatbot/internal/output/stdout"
	"github.com/pesanmasa/chatbot/internal/output/webhook"
	"github.com/pesanmasa/chatbot/pkg/chatbot"
)

// buildTranscript assembles the configured transcript sinks.
func buildTranscript(cfg config.TranscriptConfig) (output.Output, error) {
	verbosity, err := output.ParseVerbosity(cfg.Verbosity)
	if err != nil {
		return nil, err
	}

	var outs []output.Output
	for _, sink := range cfg.Sinks {
		switch sink {
		case config.SinkStdout:
			outs = append(outs, stdout.New(verbosity, cfg.Pretty))
		case config.SinkFile:
			f, err := file.New(cfg.Path, verbosity, file.WithMaxSize(cfg.MaxSize))
			if err != nil {
				multi.New(outs...).Close()
				return nil, err
			}
			outs = append(outs, f)
		case config.SinkWebhook:
			var opts []webhook.Option
			if cfg.WebhookToken != "" {
				opts = append(opts, webhook.WithToken(cfg.WebhookToken))
			}
			outs = append(outs, webhook.New(cfg.WebhookURL, verbosity, opts...))
		}
	}
	return multi.New(outs...), nil
}

// botHandler lets a session pipeline drive a chatbot.Bot.
type botHandler struct {
	bot *chatbot.Bot
}

func (h botHandler) Handle(log model.ConversationLog, text string) (model.ConversationLog, engine.Reply) {
	return h.bot.Reply(log, text)
}
