package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Embedding EmbeddingConfig
	Recommend RecommendConfig
	Cluster   ClusterConfig
	Ingest    IngestConfig
}

type AppConfig struct {
	Name        string
	Version     string
	Environment string
}

type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type RedisConfig struct {
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
}

type EmbeddingConfig struct {
	BaseURL   string
	APIKey    string
	Model     string
	Dimension int
}

type RecommendConfig struct {
	MinScore     float64
	BatchSize    int
	CacheTTLSecs int
	LockTTLSecs  int
	DefaultLimit int
	// timeout ceiling for maintenance operations, seconds
	MaintenanceTimeoutSecs int
}

type ClusterConfig struct {
	TopK                int
	SimilarityThreshold float64
}

type IngestConfig struct {
	SourcesDir         string
	ResultsDir         string
	DefaultInstitution string
	TargetInstitution  string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, errors.New("invalid redis database number")
	}

	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Campus Events API"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			Environment: getEnv("APP_ENV", "development"),
		},
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "campus_events"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		Redis: RedisConfig{
			RedisHost:     getEnv("REDIS_HOST", "localhost"),
			RedisPort:     getEnv("REDIS_PORT", "6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       redisDB,
		},
		Embedding: EmbeddingConfig{
			BaseURL:   getEnv("EMBEDDING_BASE_URL", ""),
			APIKey:    getEnv("EMBEDDING_API_KEY", ""),
			Model:     getEnv("EMBEDDING_MODEL", "paraphrase-multilingual-MiniLM-L12-v2"),
			Dimension: getEnvInt("EMBEDDING_DIMENSION", 384),
		},
		Recommend: RecommendConfig{
			MinScore:               getEnvFloat("RECOMMEND_MIN_SCORE", 0.0),
			BatchSize:              getEnvInt("RECOMMEND_BATCH_SIZE", 1000),
			CacheTTLSecs:           getEnvInt("RECOMMEND_CACHE_TTL", 300),
			LockTTLSecs:            getEnvInt("RECOMMEND_LOCK_TTL", 120),
			DefaultLimit:           getEnvInt("RECOMMEND_DEFAULT_LIMIT", 10),
			MaintenanceTimeoutSecs: getEnvInt("MAINTENANCE_TIMEOUT", 600),
		},
		Cluster: ClusterConfig{
			TopK:                getEnvInt("CLUSTER_TOP_K", 3),
			SimilarityThreshold: getEnvFloat("CLUSTER_SIMILARITY_THRESHOLD", 0.35),
		},
		Ingest: IngestConfig{
			SourcesDir:         getEnv("INGEST_SOURCES_DIR", "data/sources"),
			ResultsDir:         getEnv("INGEST_RESULTS_DIR", "data/results"),
			DefaultInstitution: getEnv("INGEST_DEFAULT_INSTITUTION", "Университет"),
			TargetInstitution:  getEnv("INGEST_TARGET_INSTITUTION", "Университет"),
		},
	}

	if cfg.Database.Password == "" {
		return nil, errors.New("missing database password")
	}

	if cfg.Embedding.Dimension <= 0 {
		return nil, errors.New("embedding dimension must be positive")
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}

	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}

	return defaultVal
}
