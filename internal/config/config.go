// Package config provides centralized configuration management for the
// bridge. Everything is resolved once at process start and injected into the
// components; nothing reads the environment after Load returns.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration parameters for the application.
type Config struct {
	Server     ServerConfig
	Zendesk    ZendeskConfig
	Glean      GleanConfig
	Routing    RoutingConfig
	Serializer SerializerConfig
	Note       NoteConfig
	Worker     WorkerConfig
	TokenStore TokenStoreConfig
	Log        LogConfig
	Debug      DebugConfig
}

// ServerConfig holds the webhook listener settings.
type ServerConfig struct {
	Port int
}

// ZendeskConfig holds ticket-store credentials and the per-call timeout.
type ZendeskConfig struct {
	Subdomain string
	Email     string
	APIToken  string
	Timeout   time.Duration
}

// GleanConfig holds answer-service endpoints and credentials. StreamTimeout
// covers full consumption of a streamed chat response.
type GleanConfig struct {
	ChatURL       string
	FeedbackURL   string
	Token         string
	Timeout       time.Duration
	StreamTimeout time.Duration
}

// RoutingConfig maps ticket form ids to Glean application ids.
type RoutingConfig struct {
	FormApplications     map[string]string
	DefaultApplicationID string
}

// SerializerConfig tunes thread serialization.
type SerializerConfig struct {
	ExcludedEmails []string
	Verbose        bool
	SystemPrompt   string
}

// NoteConfig tunes the posted internal note.
type NoteConfig struct {
	Banner string
	DryRun bool
}

// WorkerConfig sizes the pipeline worker pool.
type WorkerConfig struct {
	Count     int
	QueueSize int
}

// TokenStoreConfig selects and locates the tracking-token persistence.
type TokenStoreConfig struct {
	Backend string // "sqlite" or "csv"
	DataDir string
	CSVPath string
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string
}

// DebugConfig holds development toggles.
type DebugConfig struct {
	DumpDir string
}

// Load reads configuration from environment variables and validates it.
// Missing required credentials are fatal here, before any component starts.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.BindEnv("server.port", "SERVER_PORT")
	v.BindEnv("zendesk.subdomain", "ZENDESK_SUBDOMAIN")
	v.BindEnv("zendesk.email", "ZENDESK_EMAIL")
	v.BindEnv("zendesk.api_token", "ZENDESK_API_TOKEN")
	v.BindEnv("zendesk.timeout", "ZENDESK_API_TIMEOUT")
	v.BindEnv("glean.chat_url", "GLEAN_API_URL")
	v.BindEnv("glean.feedback_url", "GLEAN_FEEDBACK_URL")
	v.BindEnv("glean.token", "GLEAN_TOKEN")
	v.BindEnv("glean.timeout", "GLEAN_API_TIMEOUT")
	v.BindEnv("glean.stream_timeout", "GLEAN_STREAM_TIMEOUT")
	v.BindEnv("routing.form_applications", "FORM_APPLICATIONS")
	v.BindEnv("routing.default_application_id", "DEFAULT_GLEAN_APP_ID")
	v.BindEnv("serializer.excluded_emails", "IGNORE_COMMENT_EMAILS")
	v.BindEnv("serializer.verbose", "SERIALIZER_VERBOSE")
	v.BindEnv("serializer.system_prompt", "GLEAN_SYSTEM_PROMPT")
	v.BindEnv("note.banner", "NOTE_BANNER")
	v.BindEnv("note.dry_run", "NOTE_DRY_RUN")
	v.BindEnv("worker.count", "WORKER_COUNT")
	v.BindEnv("worker.queue_size", "WORKER_QUEUE_SIZE")
	v.BindEnv("tokenstore.backend", "TOKEN_STORE_BACKEND")
	v.BindEnv("tokenstore.data_dir", "DATA_DIR")
	v.BindEnv("tokenstore.csv_path", "TOKEN_CSV_PATH")
	v.BindEnv("log.level", "LOG_LEVEL")
	v.BindEnv("debug.dump_dir", "DEBUG_DUMP_DIR")

	v.SetDefault("server.port", 5001)
	v.SetDefault("zendesk.timeout", "10s")
	v.SetDefault("glean.timeout", "30s")
	v.SetDefault("glean.stream_timeout", "120s")
	v.SetDefault("serializer.excluded_emails", "")
	v.SetDefault("worker.count", 4)
	v.SetDefault("worker.queue_size", 64)
	v.SetDefault("tokenstore.backend", "sqlite")
	v.SetDefault("tokenstore.data_dir", defaultDataDir())
	v.SetDefault("log.level", "info")

	cfg := &Config{
		Server: ServerConfig{
			Port: v.GetInt("server.port"),
		},
		Zendesk: ZendeskConfig{
			Subdomain: v.GetString("zendesk.subdomain"),
			Email:     v.GetString("zendesk.email"),
			APIToken:  v.GetString("zendesk.api_token"),
			Timeout:   v.GetDuration("zendesk.timeout"),
		},
		Glean: GleanConfig{
			ChatURL:       v.GetString("glean.chat_url"),
			FeedbackURL:   v.GetString("glean.feedback_url"),
			Token:         v.GetString("glean.token"),
			Timeout:       v.GetDuration("glean.timeout"),
			StreamTimeout: v.GetDuration("glean.stream_timeout"),
		},
		Routing: RoutingConfig{
			FormApplications:     parsePairs(v.GetString("routing.form_applications")),
			DefaultApplicationID: v.GetString("routing.default_application_id"),
		},
		Serializer: SerializerConfig{
			ExcludedEmails: splitList(v.GetString("serializer.excluded_emails")),
			Verbose:        v.GetBool("serializer.verbose"),
			SystemPrompt:   v.GetString("serializer.system_prompt"),
		},
		Note: NoteConfig{
			Banner: v.GetString("note.banner"),
			DryRun: v.GetBool("note.dry_run"),
		},
		Worker: WorkerConfig{
			Count:     v.GetInt("worker.count"),
			QueueSize: v.GetInt("worker.queue_size"),
		},
		TokenStore: TokenStoreConfig{
			Backend: strings.ToLower(v.GetString("tokenstore.backend")),
			DataDir: v.GetString("tokenstore.data_dir"),
			CSVPath: v.GetString("tokenstore.csv_path"),
		},
		Log: LogConfig{
			Level: v.GetString("log.level"),
		},
		Debug: DebugConfig{
			DumpDir: v.GetString("debug.dump_dir"),
		},
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate ensures that all required configuration values are provided.
func validate(cfg *Config) error {
	var missing []string
	if cfg.Zendesk.Subdomain == "" {
		missing = append(missing, "ZENDESK_SUBDOMAIN")
	}
	if cfg.Zendesk.Email == "" {
		missing = append(missing, "ZENDESK_EMAIL")
	}
	if cfg.Zendesk.APIToken == "" {
		missing = append(missing, "ZENDESK_API_TOKEN")
	}
	if cfg.Glean.ChatURL == "" {
		missing = append(missing, "GLEAN_API_URL")
	}
	if cfg.Glean.FeedbackURL == "" {
		missing = append(missing, "GLEAN_FEEDBACK_URL")
	}
	if cfg.Glean.Token == "" {
		missing = append(missing, "GLEAN_TOKEN")
	}
	if cfg.Routing.DefaultApplicationID == "" {
		missing = append(missing, "DEFAULT_GLEAN_APP_ID")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	switch cfg.TokenStore.Backend {
	case "sqlite":
	case "csv":
		if cfg.TokenStore.CSVPath == "" {
			return fmt.Errorf("TOKEN_CSV_PATH is required when TOKEN_STORE_BACKEND=csv")
		}
	default:
		return fmt.Errorf("unknown token store backend %q (want \"sqlite\" or \"csv\")", cfg.TokenStore.Backend)
	}

	return nil
}

// parsePairs parses "formID=appID,formID=appID" into a routing map. Entries
// without "=" are ignored with the rest of the list still honored.
func parsePairs(raw string) map[string]string {
	pairs := make(map[string]string)
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		key, value, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if key != "" && value != "" {
			pairs[key] = value
		}
	}
	return pairs
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
