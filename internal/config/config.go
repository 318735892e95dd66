package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Version is the chatbot release version.
const Version = "0.3.0"

// Classifier backends.
const (
	BackendBERT    = "bert"
	BackendKeyword = "keyword"
)

// Transcript sinks.
const (
	SinkNone    = "none"
	SinkStdout  = "stdout"
	SinkFile    = "file"
	SinkWebhook = "webhook"
)

// Config holds all chatbot configuration.
type Config struct {
	Engine     EngineConfig
	Data       DataConfig
	Transcript TranscriptConfig
	Log        LogConfig
}

// EngineConfig selects and configures the intent classifier.
type EngineConfig struct {
	Classifier          string // "bert" or "keyword"
	ModelPath           string
	VocabPath           string
	Lowercase           bool
	RuntimeLibPath      string // empty: libonnxruntime next to the model
	ConfidenceThreshold float64
}

// DataConfig points at the label vocabulary and intent catalog.
type DataConfig struct {
	LabelsPath  string
	IntentsPath string
}

// TranscriptConfig controls where exchanges are recorded.
type TranscriptConfig struct {
	Sinks        []string
	Path         string
	MaxSize      int64 // bytes, 0 = no rotation
	Verbosity    string
	Pretty       bool
	WebhookURL   string
	WebhookToken string
}

// LogConfig controls diagnostic logging.
type LogConfig struct {
	Level string
	File  string
}

// Load reads configuration from the environment, after loading a .env file
// from the working directory if there is one. Values already set in the
// environment win over .env.
func Load() Config {
	_ = godotenv.Load()
	return Config{
		Engine: EngineConfig{
			Classifier:          strings.ToLower(getenv("CHATBOT_CLASSIFIER", BackendBERT)),
			ModelPath:           getenv("CHATBOT_MODEL_PATH", "models/model.onnx"),
			VocabPath:           getenv("CHATBOT_TOKENIZER_VOCAB_PATH", "models/vocab.txt"),
			Lowercase:           getenvBool("CHATBOT_TOKENIZER_LOWERCASE", true),
			RuntimeLibPath:      os.Getenv("CHATBOT_ONNXRUNTIME_LIB"),
			ConfidenceThreshold: getenvFloat("CHATBOT_CONFIDENCE_THRESHOLD", 0),
		},
		Data: DataConfig{
			LabelsPath:  getenv("CHATBOT_LABELS_PATH", "data/labels.json"),
			IntentsPath: getenv("CHATBOT_INTENTS_PATH", "data/intents.json"),
		},
		Transcript: TranscriptConfig{
			Sinks:        getenvList("CHATBOT_TRANSCRIPT", []string{SinkNone}),
			Path:         getenv("CHATBOT_TRANSCRIPT_PATH", "transcripts/chat.jsonl"),
			MaxSize:      int64(getenvInt("CHATBOT_TRANSCRIPT_MAX_SIZE", 0)),
			Verbosity:    strings.ToLower(getenv("CHATBOT_TRANSCRIPT_VERBOSITY", "standard")),
			Pretty:       getenvBool("CHATBOT_TRANSCRIPT_PRETTY", false),
			WebhookURL:   os.Getenv("CHATBOT_WEBHOOK_URL"),
			WebhookToken: os.Getenv("CHATBOT_WEBHOOK_TOKEN"),
		},
		Log: LogConfig{
			Level: strings.ToLower(getenv("CHATBOT_LOG_LEVEL", "info")),
			File:  os.Getenv("CHATBOT_LOG_FILE"),
		},
	}
}

// HasSink reports whether the named transcript sink is enabled.
func (c Config) HasSink(name string) bool {
	return slices.Contains(c.Transcript.Sinks, name)
}

// Validate checks the configuration and reports every problem at once.
func (c Config) Validate() error {
	var errs []error

	switch c.Engine.Classifier {
	case BackendBERT:
		errs = append(errs, fileExists("model", c.Engine.ModelPath))
		errs = append(errs, fileExists("tokenizer vocab", c.Engine.VocabPath))
		if c.Engine.RuntimeLibPath != "" {
			errs = append(errs, fileExists("onnxruntime library", c.Engine.RuntimeLibPath))
		}
	case BackendKeyword:
	default:
		errs = append(errs, fmt.Errorf("classifier must be %q or %q, got %q", BackendBERT, BackendKeyword, c.Engine.Classifier))
	}

	if t := c.Engine.ConfidenceThreshold; t < 0 || t > 1 {
		errs = append(errs, fmt.Errorf("confidence threshold must be between 0 and 1, got %v", t))
	}

	errs = append(errs, fileExists("labels", c.Data.LabelsPath))
	errs = append(errs, fileExists("intents", c.Data.IntentsPath))

	errs = append(errs, c.validateTranscript()...)

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log level must be debug, info, warn or error, got %q", c.Log.Level))
	}

	return errors.Join(errs...)
}

func (c Config) validateTranscript() []error {
	var errs []error
	t := c.Transcript

	if len(t.Sinks) == 0 {
		errs = append(errs, errors.New("CHATBOT_TRANSCRIPT must name at least one sink"))
	}
	for _, s := range t.Sinks {
		switch s {
		case SinkStdout, SinkFile, SinkWebhook:
		case SinkNone:
			if len(t.Sinks) > 1 {
				errs = append(errs, errors.New(`transcript sink "none" cannot be combined with others`))
			}
		default:
			errs = append(errs, fmt.Errorf("unknown transcript sink %q", s))
		}
	}

	if t.Verbosity != "minimal" && t.Verbosity != "standard" {
		errs = append(errs, fmt.Errorf("transcript verbosity must be minimal or standard, got %q", t.Verbosity))
	}
	if t.MaxSize < 0 {
		errs = append(errs, fmt.Errorf("transcript max size must be >= 0, got %d", t.MaxSize))
	}
	if c.HasSink(SinkFile) && t.Path == "" {
		errs = append(errs, errors.New("CHATBOT_TRANSCRIPT_PATH is required for the file transcript"))
	}
	if c.HasSink(SinkWebhook) {
		u, err := url.Parse(t.WebhookURL)
		switch {
		case t.WebhookURL == "":
			errs = append(errs, errors.New("CHATBOT_WEBHOOK_URL is required for the webhook transcript"))
		case err != nil:
			errs = append(errs, fmt.Errorf("webhook url: %w", err))
		case u.Scheme != "http" && u.Scheme != "https", u.Host == "":
			errs = append(errs, fmt.Errorf("webhook url must be an absolute http(s) URL, got %q", t.WebhookURL))
		}
	}
	return errs
}

func fileExists(what, path string) error {
	if path == "" {
		return fmt.Errorf("%s path is empty", what)
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%s file: %w", what, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s file: %s is a directory", what, path)
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.ToLower(strings.TrimSpace(part)); p != "" && !slices.Contains(out, p) {
			out = append(out, p)
		}
	}
	return out
}

func getenvFloat(key string, fallback float64) float64 {
	f, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return fallback
	}
	return f
}

func getenvInt(key string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return n
}

func getenvBool(key string, fallback bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return b
}
