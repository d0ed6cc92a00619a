package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Storage    StorageConfig
	Assembly   AssemblyAIConfig
	OpenAI     OpenAIConfig
	Groq       GroqConfig
	Perplexity PerplexityConfig
	Classifier ClassifierConfig
	Spoof      SpoofConfig
	Analysis   AnalysisConfig
	Risk       RiskConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string
	Host            string
	Environment     string
	AllowedOrigins  []string
	ShutdownTimeout int
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Enabled     bool
	Host        string
	Port        string
	User        string
	Password    string
	Name        string
	SSLMode     string
	MaxConns    int
	MinConns    int
	AutoMigrate bool
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
}

// JWTConfig holds API token configuration
type JWTConfig struct {
	Enabled bool
	Secret  string
	Expiry  time.Duration
	Issuer  string
}

// StorageConfig holds audio archive configuration
type StorageConfig struct {
	Enabled         bool
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	UseSSL          bool
}

// AssemblyAIConfig holds AssemblyAI transcription configuration
type AssemblyAIConfig struct {
	APIKey string
}

// OpenAIConfig holds configuration for the OpenAI API (whisper and embeddings)
type OpenAIConfig struct {
	APIKey         string
	BaseURL        string
	WhisperModel   string
	EmbeddingModel string
}

// GroqConfig holds configuration for the Groq chat API (zero-shot and translation)
type GroqConfig struct {
	APIKey          string
	BaseURL         string
	Model           string
	TranslateModel  string
	RequestTimeout  time.Duration
	ClassifierLabel string
}

// PerplexityConfig points at an OpenAI-compatible completions server that
// returns prompt logprobs (echo mode)
type PerplexityConfig struct {
	BaseURL string
	APIKey  string
	Model   string
}

// ClassifierConfig holds the supervised scam classifier configuration
type ClassifierConfig struct {
	WeightsPath string
}

// SpoofConfig holds the spoof model server configuration
type SpoofConfig struct {
	URL         string
	Timeout     time.Duration
	SampleRate  int
	SampleCount int
}

// AnalysisConfig holds pipeline runtime configuration
type AnalysisConfig struct {
	Transcriber    string // "assemblyai" or "whisper"
	Workers        int
	Timeout        time.Duration
	MaxUploadBytes int64
	CacheTTL       time.Duration
	FFmpegPath     string
	StoreHistory   bool
}

// RiskConfig holds fusion weights and thresholds, loaded with envconfig
// under the RISK_ prefix (e.g. RISK_SPOOF_WEIGHT)
type RiskConfig struct {
	SpoofWeight     float64 `envconfig:"SPOOF_WEIGHT" default:"0.4"`
	ScamWeight      float64 `envconfig:"SCAM_WEIGHT" default:"0.35"`
	BotWeight       float64 `envconfig:"BOT_WEIGHT" default:"0.15"`
	FlowHighBonus   float64 `envconfig:"FLOW_HIGH_BONUS" default:"0.1"`
	FlowMediumBonus float64 `envconfig:"FLOW_MEDIUM_BONUS" default:"0.05"`

	HighThreshold   float64 `envconfig:"HIGH_THRESHOLD" default:"0.7"`
	MediumThreshold float64 `envconfig:"MEDIUM_THRESHOLD" default:"0.4"`

	SpoofFactorThreshold float64 `envconfig:"SPOOF_FACTOR_THRESHOLD" default:"0.5"`
	ScamFactorThreshold  float64 `envconfig:"SCAM_FACTOR_THRESHOLD" default:"0.6"`

	SemanticWeight      float64 `envconfig:"SEMANTIC_WEIGHT" default:"0.4"`
	RuleWeight          float64 `envconfig:"RULE_WEIGHT" default:"0.6"`
	LearnedWeight       float64 `envconfig:"LEARNED_WEIGHT" default:"0.5"`
	ScamThreshold       float64 `envconfig:"SCAM_THRESHOLD" default:"0.4"`
	PerplexityThreshold float64 `envconfig:"PERPLEXITY_THRESHOLD" default:"20"`

	TurnGapSeconds float64 `envconfig:"TURN_GAP_SECONDS" default:"1.0"`
	TurnModulus    int     `envconfig:"TURN_MODULUS" default:"3"`
}

// DefaultRiskConfig returns the stock weights and thresholds
func DefaultRiskConfig() RiskConfig {
	return RiskConfig{
		SpoofWeight:          0.4,
		ScamWeight:           0.35,
		BotWeight:            0.15,
		FlowHighBonus:        0.1,
		FlowMediumBonus:      0.05,
		HighThreshold:        0.7,
		MediumThreshold:      0.4,
		SpoofFactorThreshold: 0.5,
		ScamFactorThreshold:  0.6,
		SemanticWeight:       0.4,
		RuleWeight:           0.6,
		LearnedWeight:        0.5,
		ScamThreshold:        0.4,
		PerplexityThreshold:  20,
		TurnGapSeconds:       1.0,
		TurnModulus:          3,
	}
}

// Load loads configuration from environment variables and validates it
func Load() (*Config, error) {
	config, err := LoadRaw()
	if err != nil {
		return nil, err
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// LoadRaw loads configuration without checking model credentials, for
// tooling that only needs part of it (migrations, token issuing)
func LoadRaw() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	config := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			Host:            getEnv("HOST", "0.0.0.0"),
			Environment:     getEnv("ENVIRONMENT", "development"),
			AllowedOrigins:  strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:3000"), ","),
			ShutdownTimeout: getEnvAsInt("SHUTDOWN_TIMEOUT", 10),
		},
		Database: DatabaseConfig{
			Enabled:     getEnvAsBool("DB_ENABLED", true),
			Host:        getEnv("DB_HOST", "localhost"),
			Port:        getEnv("DB_PORT", "5432"),
			User:        getEnv("DB_USER", "postgres"),
			Password:    getEnv("DB_PASSWORD", "postgres"),
			Name:        getEnv("DB_NAME", "voice_guard"),
			SSLMode:     getEnv("DB_SSLMODE", "disable"),
			MaxConns:    getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:    getEnvAsInt("DB_MIN_CONNS", 5),
			AutoMigrate: getEnvAsBool("DB_AUTO_MIGRATE", false),
		},
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", true),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Enabled: getEnvAsBool("AUTH_ENABLED", false),
			Secret:  getEnv("JWT_SECRET", "your-secret-change-in-production"),
			Expiry:  getEnvAsDuration("JWT_EXPIRY", "720h"),
			Issuer:  getEnv("JWT_ISSUER", "voice-guard"),
		},
		Storage: StorageConfig{
			Enabled:         getEnvAsBool("STORAGE_ENABLED", false),
			Endpoint:        getEnv("STORAGE_ENDPOINT", "localhost:9000"),
			AccessKeyID:     getEnv("STORAGE_ACCESS_KEY", "minioadmin"),
			SecretAccessKey: getEnv("STORAGE_SECRET_KEY", "minioadmin"),
			BucketName:      getEnv("STORAGE_BUCKET", "voice-guard"),
			UseSSL:          getEnvAsBool("STORAGE_USE_SSL", false),
		},
		Assembly: AssemblyAIConfig{
			APIKey: getEnv("ASSEMBLYAI_API_KEY", ""),
		},
		OpenAI: OpenAIConfig{
			APIKey:         getEnv("OPENAI_API_KEY", ""),
			BaseURL:        getEnv("OPENAI_BASE_URL", ""),
			WhisperModel:   getEnv("OPENAI_WHISPER_MODEL", "whisper-1"),
			EmbeddingModel: getEnv("OPENAI_EMBEDDING_MODEL", "text-embedding-3-small"),
		},
		Groq: GroqConfig{
			APIKey:          getEnv("GROQ_API_KEY", ""),
			BaseURL:         getEnv("GROQ_API_URL", "https://api.groq.com/openai/v1"),
			Model:           getEnv("GROQ_MODEL", "llama-3.1-8b-instant"),
			TranslateModel:  getEnv("GROQ_TRANSLATE_MODEL", "llama-3.1-8b-instant"),
			RequestTimeout:  getEnvAsDuration("GROQ_TIMEOUT", "30s"),
			ClassifierLabel: getEnv("GROQ_CLASSIFIER_LABEL", "scam"),
		},
		Perplexity: PerplexityConfig{
			BaseURL: getEnv("PERPLEXITY_BASE_URL", "http://localhost:8001/v1"),
			APIKey:  getEnv("PERPLEXITY_API_KEY", "none"),
			Model:   getEnv("PERPLEXITY_MODEL", "gpt2"),
		},
		Classifier: ClassifierConfig{
			WeightsPath: getEnv("SCAM_CLASSIFIER_WEIGHTS", "models/scam_logreg.json"),
		},
		Spoof: SpoofConfig{
			URL:         getEnv("SPOOF_MODEL_URL", "http://localhost:8002"),
			Timeout:     getEnvAsDuration("SPOOF_MODEL_TIMEOUT", "30s"),
			SampleRate:  getEnvAsInt("SPOOF_SAMPLE_RATE", 16000),
			SampleCount: getEnvAsInt("SPOOF_SAMPLE_COUNT", 64600),
		},
		Analysis: AnalysisConfig{
			Transcriber:    getEnv("TRANSCRIBER", "assemblyai"),
			Workers:        getEnvAsInt("ANALYSIS_WORKERS", 4),
			Timeout:        getEnvAsDuration("ANALYSIS_TIMEOUT", "5m"),
			MaxUploadBytes: int64(getEnvAsInt("MAX_UPLOAD_MB", 50)) * 1024 * 1024,
			CacheTTL:       getEnvAsDuration("RESULT_CACHE_TTL", "24h"),
			FFmpegPath:     getEnv("FFMPEG_PATH", "ffmpeg"),
			StoreHistory:   getEnvAsBool("STORE_HISTORY", true),
		},
	}

	if err := envconfig.Process("RISK", &config.Risk); err != nil {
		return nil, fmt.Errorf("failed to load risk configuration: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Analysis.Transcriber {
	case "assemblyai":
		if c.Assembly.APIKey == "" {
			return fmt.Errorf("ASSEMBLYAI_API_KEY is required when TRANSCRIBER=assemblyai")
		}
	case "whisper":
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when TRANSCRIBER=whisper")
		}
	default:
		return fmt.Errorf("unknown TRANSCRIBER %q", c.Analysis.Transcriber)
	}
	if c.Groq.APIKey == "" {
		return fmt.Errorf("GROQ_API_KEY is required")
	}
	if c.OpenAI.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required for scam classifier embeddings")
	}
	if c.Spoof.URL == "" {
		return fmt.Errorf("SPOOF_MODEL_URL is required")
	}
	if c.Analysis.Workers <= 0 {
		return fmt.Errorf("ANALYSIS_WORKERS must be positive")
	}
	return c.Risk.Validate()
}

// Validate checks thresholds are ordered and weights are in range
func (r RiskConfig) Validate() error {
	if r.MediumThreshold <= 0 || r.HighThreshold <= r.MediumThreshold || r.HighThreshold > 1 {
		return fmt.Errorf("risk thresholds must satisfy 0 < medium < high <= 1")
	}
	if r.TurnModulus <= 0 {
		return fmt.Errorf("RISK_TURN_MODULUS must be positive")
	}
	for name, w := range map[string]float64{
		"RISK_SPOOF_WEIGHT":    r.SpoofWeight,
		"RISK_SCAM_WEIGHT":     r.ScamWeight,
		"RISK_BOT_WEIGHT":      r.BotWeight,
		"RISK_SEMANTIC_WEIGHT": r.SemanticWeight,
		"RISK_RULE_WEIGHT":     r.RuleWeight,
		"RISK_LEARNED_WEIGHT":  r.LearnedWeight,
	} {
		if w < 0 || w > 1 {
			return fmt.Errorf("%s must be within [0,1]", name)
		}
	}
	return nil
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}
	return duration
}
