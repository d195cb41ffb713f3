package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is built once at startup and threaded through constructors; nothing
// in the core reads environment state after this point.
type Config struct {
	Env  string
	Port string

	DB        DBConfig
	Embedder  EmbedderConfig
	Augur     AugurConfig
	Retrieval RetrievalConfig
	Keyword   KeywordConfig

	OTelEnabled bool
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	MaxConns int
}

// EmbedderConfig configures the embedding capability. Dimension must match
// the vector column in the chunk store.
type EmbedderConfig struct {
	URL       string
	Model     string
	Dimension int
	Timeout   int // seconds
	RPS       float64
}

// AugurConfig configures the chat-style LLM used for classification and SQL
// generation.
type AugurConfig struct {
	URL     string
	Model   string
	Timeout int // seconds
	RPS     float64
}

type RetrievalConfig struct {
	DefaultTopK         int
	MaxTopK             int
	CandidateMultiplier int
	MinCandidates       int
	RRFK                float64
	Alpha               float64
	QueryTimeout        time.Duration
	ClassifierTimeout   time.Duration
	ClassifierCacheSize int
}

// KeywordConfig configures the BM25 index: its on-disk location, parameters,
// and the optional periodic rebuild.
type KeywordConfig struct {
	IndexPath       string
	K1              float64
	B               float64
	RebuildInterval time.Duration // 0 disables periodic rebuilds
}

func Load() *Config {
	return &Config{
		Env:  getEnv("ENV", "development"),
		Port: getEnv("PORT", "9020"),
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "finrag-db"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "finrag_user"),
			Password: getSecret("DB_PASSWORD", "DB_PASSWORD_FILE", "finrag_password"),
			Name:     getEnv("DB_NAME", "finrag_db"),
			MaxConns: getEnvInt("DB_MAX_CONNS", 10),
		},
		Embedder: EmbedderConfig{
			URL:       getEnv("EMBEDDER_URL", "http://augur-external:11434"),
			Model:     getEnv("EMBEDDING_MODEL", "embeddinggemma"),
			Dimension: getEnvInt("EMBEDDING_DIMENSION", 1024),
			Timeout:   getEnvInt("EMBEDDER_TIMEOUT", 30),
			RPS:       getEnvFloat("EMBEDDER_RPS", 0),
		},
		Augur: AugurConfig{
			URL:     getEnv("AUGUR_URL", "http://augur-external:11434"),
			Model:   getEnv("AUGUR_MODEL", "gpt-oss20b-cpu"),
			Timeout: getEnvInt("AUGUR_TIMEOUT", 30),
			RPS:     getEnvFloat("AUGUR_RPS", 0),
		},
		Retrieval: RetrievalConfig{
			DefaultTopK:         getEnvInt("RETRIEVAL_DEFAULT_TOP_K", 5),
			MaxTopK:             getEnvInt("RETRIEVAL_MAX_TOP_K", 50),
			CandidateMultiplier: getEnvInt("RETRIEVAL_CANDIDATE_MULTIPLIER", 4),
			MinCandidates:       getEnvInt("RETRIEVAL_MIN_CANDIDATES", 20),
			RRFK:                getEnvFloat("RETRIEVAL_RRF_K", 60.0),
			Alpha:               getEnvFloat("RETRIEVAL_ALPHA", 0.7),
			QueryTimeout:        time.Duration(getEnvInt("RETRIEVAL_QUERY_TIMEOUT", 30)) * time.Second,
			ClassifierTimeout:   time.Duration(getEnvInt("RETRIEVAL_CLASSIFIER_TIMEOUT", 10)) * time.Second,
			ClassifierCacheSize: getEnvInt("RETRIEVAL_CLASSIFIER_CACHE_SIZE", 256),
		},
		Keyword: KeywordConfig{
			IndexPath:       getEnv("KEYWORD_INDEX_PATH", "/var/lib/finrag/keyword.idx"),
			K1:              getEnvFloat("KEYWORD_BM25_K1", 1.2),
			B:               getEnvFloat("KEYWORD_BM25_B", 0.75),
			RebuildInterval: time.Duration(getEnvInt("KEYWORD_REBUILD_INTERVAL_MINUTES", 0)) * time.Minute,
		},
		OTelEnabled: getEnvBool("OTEL_ENABLED", false),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getSecret(envKey, fileEnvKey, fallback string) string {
	if value, ok := os.LookupEnv(envKey); ok {
		return value
	}
	if filePath, ok := os.LookupEnv(fileEnvKey); ok {
		content, err := os.ReadFile(filePath)
		if err == nil {
			return strings.TrimSpace(string(content))
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}
