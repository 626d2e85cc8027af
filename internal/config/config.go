package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	DatabaseURL string
	Server      ServerConfig
	Redis       RedisConfig
	LLM         LLMConfig
	Logger      LoggerConfig
	CORS        CORSConfig
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
	// ArticleTTL bounds how long a generated response stays in Redis.
	ArticleTTL time.Duration
}

type LLMConfig struct {
	Token   string
	BaseURL string
	Model   string
	Timeout time.Duration
}

type LoggerConfig struct {
	Level string
	Env   string
}

type CORSConfig struct {
	AllowOrigins string
}

const (
	defaultLLMBaseURL = "https://router.huggingface.co/v1"
	defaultLLMModel   = "meta-llama/Meta-Llama-3-8B-Instruct"
)

// LoadConfig reads the optional config.yaml and applies environment overrides.
// DATABASE_URL and HF_TOKEN have no sane defaults and abort startup when missing.
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 20)
	viper.SetDefault("server.write_timeout", 20)
	viper.SetDefault("redis.article_ttl", 3600)
	viper.SetDefault("llm.base_url", defaultLLMBaseURL)
	viper.SetDefault("llm.model", defaultLLMModel)
	viper.SetDefault("llm.timeout", 60)
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("cors.allow_origins", "http://localhost:5173")

	viper.AutomaticEnv()
	_ = viper.BindEnv("database_url", "DATABASE_URL")
	_ = viper.BindEnv("llm.token", "HF_TOKEN")
	_ = viper.BindEnv("redis.address", "REDIS_ADDRESS")
	_ = viper.BindEnv("redis.password", "REDIS_PASSWORD")
	_ = viper.BindEnv("server.port", "SERVER_PORT")
	_ = viper.BindEnv("logger.env", "ENV")

	if err := viper.ReadInConfig(); err != nil {
		// The yaml file is optional; only a malformed file is fatal.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{
		DatabaseURL: viper.GetString("database_url"),
		Server: ServerConfig{
			Port:         viper.GetInt("server.port"),
			ReadTimeout:  viper.GetDuration("server.read_timeout") * time.Second,
			WriteTimeout: viper.GetDuration("server.write_timeout") * time.Second,
		},
		Redis: RedisConfig{
			Address:    viper.GetString("redis.address"),
			Password:   viper.GetString("redis.password"),
			DB:         viper.GetInt("redis.db"),
			ArticleTTL: viper.GetDuration("redis.article_ttl") * time.Second,
		},
		LLM: LLMConfig{
			Token:   viper.GetString("llm.token"),
			BaseURL: viper.GetString("llm.base_url"),
			Model:   viper.GetString("llm.model"),
			Timeout: viper.GetDuration("llm.timeout") * time.Second,
		},
		Logger: LoggerConfig{
			Level: viper.GetString("logger.level"),
			Env:   viper.GetString("logger.env"),
		},
		CORS: CORSConfig{
			AllowOrigins: viper.GetString("cors.allow_origins"),
		},
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable not set")
	}
	if cfg.LLM.Token == "" {
		return nil, fmt.Errorf("HF_TOKEN environment variable not set")
	}

	return cfg, nil
}
