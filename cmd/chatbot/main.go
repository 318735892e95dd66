package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/pesanmasa/chatbot/internal/config"
	"github.com/pesanmasa/chatbot/internal/logging"
	"github.com/pesanmasa/chatbot/pkg/chatbot"
)

const title = "Chatbot Seputar PESANMASA"

// app carries state shared by all subcommands once flags and env are merged.
type app struct {
	cfg       config.Config
	logCloser io.Closer

	classifier string
	labels     string
	intents    string
	modelPath  string
	vocabPath  string
	threshold  float64
	transcript []string
	logLevel   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "chatbot",
		Short:         "FAQ chatbot for PESANMASA",
		Long:          title + ": answers customer questions by intent classification.",
		Version:       config.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logCloser != nil {
				a.logCloser.Close()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runChat(cmd)
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&a.classifier, "classifier", "", "classifier backend: bert or keyword (env CHATBOT_CLASSIFIER)")
	f.StringVar(&a.labels, "labels", "", "label vocabulary file (env CHATBOT_LABELS_PATH)")
	f.StringVar(&a.intents, "intents", "", "intent catalog file (env CHATBOT_INTENTS_PATH)")
	f.StringVar(&a.modelPath, "model", "", "ONNX model file (env CHATBOT_MODEL_PATH)")
	f.StringVar(&a.vocabPath, "vocab", "", "WordPiece vocabulary file (env CHATBOT_TOKENIZER_VOCAB_PATH)")
	f.Float64Var(&a.threshold, "threshold", 0, "minimum confidence, 0 disables (env CHATBOT_CONFIDENCE_THRESHOLD)")
	f.StringSliceVar(&a.transcript, "transcript", nil, "transcript sinks: none, stdout, file, webhook (env CHATBOT_TRANSCRIPT)")
	f.StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error (env CHATBOT_LOG_LEVEL)")

	root.AddCommand(newChatCmd(a), newAskCmd(a), newIntentsCmd(a))
	return root
}

// setup loads env config, applies explicitly set flags on top, validates
// and installs logging.
func (a *app) setup(cmd *cobra.Command) error {
	cfg := config.Load()
	flags := cmd.Flags()
	if flags.Changed("classifier") {
		cfg.Engine.Classifier = a.classifier
	}
	if flags.Changed("labels") {
		cfg.Data.LabelsPath = a.labels
	}
	if flags.Changed("intents") {
		cfg.Data.IntentsPath = a.intents
	}
	if flags.Changed("model") {
		cfg.Engine.ModelPath = a.modelPath
	}
	if flags.Changed("vocab") {
		cfg.Engine.VocabPath = a.vocabPath
	}
	if flags.Changed("threshold") {
		cfg.Engine.ConfidenceThreshold = a.threshold
	}
	if flags.Changed("transcript") {
		cfg.Transcript.Sinks = a.transcript
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = a.logLevel
	}
	if cmd.Name() == "intents" {
		// Listing the catalog needs no classifier.
		cfg.Engine.Classifier = config.BackendKeyword
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "invalid configuration:\n%v\n", err)
		return err
	}
	a.cfg = cfg
	a.logCloser = logging.Init(cfg.HasSink(config.SinkStdout), logging.ParseLevel(cfg.Log.Level), cfg.Log.File)
	return nil
}

func (a *app) newBot() (*chatbot.Bot, error) {
	e := a.cfg.Engine
	bot, err := chatbot.New(
		chatbot.WithBackend(e.Classifier),
		chatbot.WithModelPaths(e.ModelPath, e.VocabPath),
		chatbot.WithRuntimeLibrary(e.RuntimeLibPath),
		chatbot.WithTokenizerLowercase(e.Lowercase),
		chatbot.WithConfidenceThreshold(e.ConfidenceThreshold),
		chatbot.WithLabelsPath(a.cfg.Data.LabelsPath),
		chatbot.WithIntentsPath(a.cfg.Data.IntentsPath),
		chatbot.WithLogger(slog.Default()),
	)
	if err != nil {
		slog.Error("failed to start chatbot", "error", err)
		return nil, err
	}
	return bot, nil
}

// ui is where human-facing text goes. When transcripts use stdout, the
// conversation moves to stderr so stdout stays pure NDJSON.
func (a *app) ui(cmd *cobra.Command) io.Writer {
	if a.cfg.HasSink(config.SinkStdout) {
		return cmd.ErrOrStderr()
	}
	return cmd.OutOrStdout()
}
