package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Profile is the configuration to start main server.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int
	// Data is the data directory
	Data string
	// DSN points to where eidos stores its own data
	DSN string
	// Driver is the database driver (sqlite or postgres)
	Driver string
	// Version is the current version of server
	Version string
	// Secret signs access tokens and module identity tokens.
	Secret string

	// AI Configuration
	AILLMProvider     string // EIDOS_AI_LLM_PROVIDER (default: deepseek)
	AILLMModel        string // EIDOS_AI_LLM_MODEL (default: deepseek-chat)
	AIDeepSeekAPIKey  string // EIDOS_AI_DEEPSEEK_API_KEY
	AIDeepSeekBaseURL string // EIDOS_AI_DEEPSEEK_BASE_URL (default: https://api.deepseek.com)
	AIOpenAIAPIKey    string // EIDOS_AI_OPENAI_API_KEY
	AIOpenAIBaseURL   string // EIDOS_AI_OPENAI_BASE_URL (default: https://api.openai.com/v1)

	// Assistant behaviour
	ModuleTimeout    time.Duration // EIDOS_MODULE_TIMEOUT (default: 30s)
	ContextTTL       time.Duration // EIDOS_CONTEXT_TTL (default: 1h)
	ChatHistoryLimit int           // EIDOS_CHAT_HISTORY_LIMIT (default: 10)
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsAIEnabled returns true if the configured LLM provider has credentials.
func (p *Profile) IsAIEnabled() bool {
	switch p.AILLMProvider {
	case "openai":
		return p.AIOpenAIAPIKey != ""
	default:
		return p.AIDeepSeekAPIKey != ""
	}
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnvOrDefault(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		slog.Warn("invalid duration in environment, using default",
			slog.String("key", key), slog.String("value", raw))
		return defaultValue
	}
	return d
}

func getIntEnvOrDefault(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		slog.Warn("invalid integer in environment, using default",
			slog.String("key", key), slog.String("value", raw))
		return defaultValue
	}
	return n
}

// FromEnv loads AI and assistant configuration from EIDOS_* environment variables.
// Fields already set (for example by CLI flags) are kept.
func (p *Profile) FromEnv() {
	keep := func(current, key, defaultValue string) string {
		if current != "" {
			return current
		}
		return getEnvOrDefault(key, defaultValue)
	}

	p.Secret = keep(p.Secret, "EIDOS_SECRET", "")
	p.AILLMProvider = keep(p.AILLMProvider, "EIDOS_AI_LLM_PROVIDER", "deepseek")
	p.AILLMModel = keep(p.AILLMModel, "EIDOS_AI_LLM_MODEL", "deepseek-chat")
	p.AIDeepSeekAPIKey = keep(p.AIDeepSeekAPIKey, "EIDOS_AI_DEEPSEEK_API_KEY", "")
	p.AIDeepSeekBaseURL = keep(p.AIDeepSeekBaseURL, "EIDOS_AI_DEEPSEEK_BASE_URL", "https://api.deepseek.com")
	p.AIOpenAIAPIKey = keep(p.AIOpenAIAPIKey, "EIDOS_AI_OPENAI_API_KEY", "")
	p.AIOpenAIBaseURL = keep(p.AIOpenAIBaseURL, "EIDOS_AI_OPENAI_BASE_URL", "https://api.openai.com/v1")

	if p.ModuleTimeout == 0 {
		p.ModuleTimeout = getDurationEnvOrDefault("EIDOS_MODULE_TIMEOUT", 30*time.Second)
	}
	if p.ContextTTL == 0 {
		p.ContextTTL = getDurationEnvOrDefault("EIDOS_CONTEXT_TTL", time.Hour)
	}
	if p.ChatHistoryLimit == 0 {
		p.ChatHistoryLimit = getIntEnvOrDefault("EIDOS_CHAT_HISTORY_LIMIT", 10)
	}
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}
	if p.Driver == "" {
		p.Driver = "sqlite"
	}
	if p.Driver != "sqlite" && p.Driver != "postgres" {
		return errors.Errorf("unsupported driver %q", p.Driver)
	}

	if p.Mode == "prod" && p.Data == "" {
		if runtime.GOOS == "windows" {
			p.Data = filepath.Join(os.Getenv("ProgramData"), "eidos")
		} else {
			p.Data = "/var/opt/eidos"
		}
		if _, err := os.Stat(p.Data); os.IsNotExist(err) {
			if err := os.MkdirAll(p.Data, 0770); err != nil {
				slog.Error("failed to create data directory", slog.String("data", p.Data), slog.String("error", err.Error()))
				return err
			}
		}
	}
	if p.Data == "" {
		p.Data = "."
	}

	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		slog.Error("failed to check dsn", slog.String("data", dataDir), slog.String("error", err.Error()))
		return err
	}

	p.Data = dataDir
	if p.Driver == "sqlite" && p.DSN == "" {
		dbFile := fmt.Sprintf("eidos_%s.db", p.Mode)
		p.DSN = filepath.Join(dataDir, dbFile)
	}
	if p.Driver == "postgres" && p.DSN == "" {
		return errors.New("dsn is required for postgres driver")
	}

	if p.Mode == "prod" && p.Secret == "" {
		return errors.New("secret is required in prod mode")
	}
	if p.Secret == "" {
		p.Secret = "eidos-" + p.Mode + "-secret"
	}
	return nil
}
