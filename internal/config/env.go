package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port           string        `yaml:"port"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	WebDir         string        `yaml:"web_dir"`
	JWTSecret      string        `yaml:"jwt_secret"`
	SessionTTL     time.Duration `yaml:"session_ttl"`
	MaxUploadMB    int           `yaml:"max_upload_mb"`
	MaxCharWarning int           `yaml:"max_char_warning"`
	Workers        int           `yaml:"workers"`

	GrammarBackend     string        `yaml:"grammar_backend"` // languagetool | gemini
	LanguageToolURL    string        `yaml:"languagetool_url"`
	LanguageToolUser   string        `yaml:"languagetool_username"`
	LanguageToolAPIKey string        `yaml:"languagetool_api_key"`
	Language           string        `yaml:"language"`
	CheckTimeout       time.Duration `yaml:"check_timeout"`
	CheckChunkChars    int           `yaml:"check_chunk_chars"`
	AIAPIKey           string        `yaml:"gemini_api_key"`
	GenModel           string        `yaml:"gen_model"`
	PDFBackend         string        `yaml:"pdf_backend"` // pdfcpu | docconv

	DatabaseURL  string `yaml:"database_url"`
	SslCertPath  string `yaml:"ssl_cert_path"`
	AwsAccessKey string `yaml:"aws_access_key"`
	AwsSecretKey string `yaml:"aws_secret_key"`
	AwsRegion    string `yaml:"aws_region"`
	BucketName   string `yaml:"bucket_name"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() *Config {
	return &Config{
		Port:            "8080",
		AllowedOrigins:  []string{"http://localhost:5173"},
		WebDir:          "./web",
		SessionTTL:      24 * time.Hour,
		MaxUploadMB:     20,
		MaxCharWarning:  19000,
		Workers:         4,
		GrammarBackend:  "languagetool",
		LanguageToolURL: "https://api.languagetoolplus.com/v2",
		Language:        "en-US",
		CheckTimeout:    60 * time.Second,
		GenModel:        "gemini-1.5-flash",
		PDFBackend:      "pdfcpu",
		AwsRegion:       "us-east-2",
		BucketName:      "doc-assistant-uploads",
	}
}

// LoadConfig loads .env, then the optional YAML file named by CONFIG_FILE,
// then environment variables. Later sources win.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := Defaults()
	if path := getEnv("CONFIG_FILE", ""); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}
	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.AllowedOrigins = getEnvList("ALLOWED_ORIGINS", cfg.AllowedOrigins)
	cfg.WebDir = getEnv("WEB_DIR", cfg.WebDir)
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.SessionTTL = getEnvDuration("SESSION_TTL", cfg.SessionTTL)
	cfg.MaxUploadMB = getEnvInt("MAX_UPLOAD_MB", cfg.MaxUploadMB)
	cfg.MaxCharWarning = getEnvInt("MAX_CHAR_WARNING", cfg.MaxCharWarning)
	cfg.Workers = getEnvInt("WORKERS", cfg.Workers)

	cfg.GrammarBackend = strings.ToLower(getEnv("GRAMMAR_BACKEND", cfg.GrammarBackend))
	cfg.LanguageToolURL = getEnv("LANGUAGETOOL_URL", cfg.LanguageToolURL)
	cfg.LanguageToolUser = getEnv("LANGUAGETOOL_USERNAME", cfg.LanguageToolUser)
	cfg.LanguageToolAPIKey = getEnv("LANGUAGETOOL_API_KEY", cfg.LanguageToolAPIKey)
	cfg.Language = getEnv("LANGUAGE", cfg.Language)
	cfg.CheckTimeout = getEnvDuration("CHECK_TIMEOUT", cfg.CheckTimeout)
	cfg.CheckChunkChars = getEnvInt("CHECK_CHUNK_CHARS", cfg.CheckChunkChars)
	cfg.AIAPIKey = getEnv("GEMINI_API_KEY", cfg.AIAPIKey)
	cfg.GenModel = getEnv("GEN_MODEL", cfg.GenModel)
	cfg.PDFBackend = strings.ToLower(getEnv("PDF_BACKEND", cfg.PDFBackend))

	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.SslCertPath = getEnv("SSL_CERT_PATH", cfg.SslCertPath)
	cfg.AwsAccessKey = getEnv("AWS_ACCESS_KEY", cfg.AwsAccessKey)
	cfg.AwsSecretKey = getEnv("AWS_SECRET_KEY", cfg.AwsSecretKey)
	cfg.AwsRegion = getEnv("AWS_REGION", cfg.AwsRegion)
	cfg.BucketName = getEnv("BUCKET_NAME", cfg.BucketName)
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET not set")
	}
	switch c.GrammarBackend {
	case "languagetool":
	case "gemini":
		if c.AIAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required for the gemini grammar backend")
		}
	default:
		return fmt.Errorf("unknown GRAMMAR_BACKEND %q", c.GrammarBackend)
	}
	switch c.PDFBackend {
	case "pdfcpu", "docconv":
	default:
		return fmt.Errorf("unknown PDF_BACKEND %q", c.PDFBackend)
	}
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("MAX_UPLOAD_MB must be positive")
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}
	return nil
}

// UsesObjectStorage reports whether S3 credentials are configured.
func (c *Config) UsesObjectStorage() bool {
	return c.AwsAccessKey != "" && c.AwsSecretKey != ""
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("config value is not an int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config value is not a duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func getEnvList(key string, def []string) []string {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
