package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 應用配置
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	LLM       LLMConfig       `mapstructure:"llm"`
	ImageGen  ImageGenConfig  `mapstructure:"image_gen"`
	Retrieval RetrievalConfig `mapstructure:"retrieval"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Cache     CacheConfig     `mapstructure:"cache"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Pipeline  PipelineConfig  `mapstructure:"pipeline"`
	LogLevel  string          `mapstructure:"log_level"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env      string `mapstructure:"env"`
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
	Version  string `mapstructure:"version"`
	Name     string `mapstructure:"name"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// LLMConfig SiliconFlow 相容介面的對話模型配置
type LLMConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Temperature float64       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// Enabled 是否已配置對話模型。未配置時各階段走降級路徑，不發任何請求。
func (c LLMConfig) Enabled() bool {
	return c.APIKey != ""
}

// ImageGenConfig 生圖模型配置
type ImageGenConfig struct {
	Model          string        `mapstructure:"model"`
	ImageSize      string        `mapstructure:"image_size"`
	InferenceSteps int           `mapstructure:"inference_steps"`
	GuidanceScale  float64       `mapstructure:"guidance_scale"`
	MaxRetries     int           `mapstructure:"max_retries"`
	Timeout        time.Duration `mapstructure:"timeout"`
	// Cooldown 每次生圖呼叫後的強制冷卻，用於避開上游限流
	Cooldown time.Duration `mapstructure:"cooldown"`
}

// RetrievalConfig 向量檢索配置
type RetrievalConfig struct {
	QdrantURL      string        `mapstructure:"qdrant_url"`
	QdrantAPIKey   string        `mapstructure:"qdrant_api_key"`
	Collection     string        `mapstructure:"collection"`
	EmbeddingModel string        `mapstructure:"embedding_model"`
	Timeout        time.Duration `mapstructure:"timeout"`
	// CandidateMultiplier 召回倍數：去重前取 limit * multiplier 筆候選
	CandidateMultiplier int `mapstructure:"candidate_multiplier"`
}

// RedisConfig Redis 連線配置（回應快取與用戶偏好）
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// CacheConfig 回應快取配置
type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// PipelineConfig 結果組裝管線配置
type PipelineConfig struct {
	// HistoryWindow 顧問對話僅取最近 N 輪
	HistoryWindow int `mapstructure:"history_window"`
	// SelectTopK 單一最佳匹配路徑的召回數量
	SelectTopK int `mapstructure:"select_top_k"`
}

// LoadConfig 載入設定
func LoadConfig() (*Config, error) {
	// 加載 .env 文件（不存在時僅依賴環境變數）
	_ = godotenv.Load()

	setDefaults()

	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// 綁定環境變量
	viper.BindEnv("llm.api_key", "SILICONFLOW_API_KEY")
	viper.BindEnv("llm.base_url", "SILICONFLOW_BASE_URL")
	viper.BindEnv("llm.model", "SILICONFLOW_MODEL_NAME")
	viper.BindEnv("image_gen.model", "SILICONFLOW_IMAGE_MODEL")
	viper.BindEnv("retrieval.qdrant_url", "QDRANT_URL")
	viper.BindEnv("retrieval.qdrant_api_key", "QDRANT_API_KEY")
	viper.BindEnv("retrieval.collection", "QDRANT_COLLECTION")
	viper.BindEnv("redis.addr", "REDIS_ADDR")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("cache.enabled", "CACHE_ENABLED")
	viper.BindEnv("rate_limit.enabled", "RATE_LIMIT_ENABLED")
	viper.BindEnv("rate_limit.requests", "RATE_LIMIT_REQUESTS")
	viper.BindEnv("rate_limit.window", "RATE_LIMIT_WINDOW")
	viper.BindEnv("log_level", "LOG_LEVEL")

	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// 模型名稱允許帶行內註解（例如 "deepseek-v3 # free"），取 # 前段
	if model := viper.GetString("llm.model"); strings.Contains(model, "#") {
		viper.Set("llm.model", strings.TrimSpace(strings.SplitN(model, "#", 2)[0]))
	}

	fmt.Println("Loading configuration",
		"llm_api_key:", maskAPIKey(viper.GetString("llm.api_key")),
		"llm_model:", viper.GetString("llm.model"),
		"image_model:", viper.GetString("image_gen.model"),
	)

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// maskAPIKey 遮罩 API Key，只顯示前後各 4 個字符
func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// setDefaults 設定預設值
func setDefaults() {
	// 應用程式設定
	viper.SetDefault("app.env", "development")
	viper.SetDefault("app.debug", true)
	viper.SetDefault("app.log_level", "info")
	viper.SetDefault("app.version", "1.0.0")
	viper.SetDefault("app.name", "aichef-rag")

	// 伺服器設定
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")

	// 對話模型設定
	viper.SetDefault("llm.base_url", "https://api.siliconflow.cn/v1")
	viper.SetDefault("llm.model", "deepseek-ai/DeepSeek-V3")
	viper.SetDefault("llm.max_tokens", 1000)
	viper.SetDefault("llm.temperature", 0.7)
	viper.SetDefault("llm.timeout", "60s")

	// 生圖設定
	viper.SetDefault("image_gen.model", "Kwai-Kolors/Kolors")
	viper.SetDefault("image_gen.image_size", "1024x1024")
	viper.SetDefault("image_gen.inference_steps", 20)
	viper.SetDefault("image_gen.guidance_scale", 7.5)
	viper.SetDefault("image_gen.max_retries", 2)
	viper.SetDefault("image_gen.timeout", "60s")
	viper.SetDefault("image_gen.cooldown", "1500ms")

	// 檢索設定
	viper.SetDefault("retrieval.qdrant_url", "http://localhost:6333")
	viper.SetDefault("retrieval.collection", "recipe_collection_v3")
	viper.SetDefault("retrieval.embedding_model", "BAAI/bge-small-zh-v1.5")
	viper.SetDefault("retrieval.timeout", "15s")
	viper.SetDefault("retrieval.candidate_multiplier", 3)

	// Redis 設定
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.db", 0)

	// 快取設定
	viper.SetDefault("cache.enabled", true)
	viper.SetDefault("cache.ttl", "24h")

	// 限流設定
	viper.SetDefault("rate_limit.enabled", true)
	viper.SetDefault("rate_limit.requests", 100)
	viper.SetDefault("rate_limit.window", "1m")

	// 管線設定
	viper.SetDefault("pipeline.history_window", 4)
	viper.SetDefault("pipeline.select_top_k", 6)
}

// validateConfig 驗證設定
func validateConfig(config *Config) error {
	if config.Server.Port == 0 {
		return fmt.Errorf("server port is required")
	}

	if config.Retrieval.QdrantURL == "" {
		return fmt.Errorf("qdrant url is required")
	}
	if config.Retrieval.Collection == "" {
		return fmt.Errorf("qdrant collection is required")
	}
	if config.Retrieval.CandidateMultiplier <= 0 {
		return fmt.Errorf("invalid candidate multiplier")
	}

	if config.Cache.Enabled && config.Cache.TTL <= 0 {
		return fmt.Errorf("invalid cache ttl")
	}

	if config.ImageGen.Cooldown < 0 {
		return fmt.Errorf("invalid image cooldown")
	}
	if config.Pipeline.HistoryWindow <= 0 {
		return fmt.Errorf("invalid history window")
	}
	if config.Pipeline.SelectTopK <= 0 {
		return fmt.Errorf("invalid select top k")
	}

	return nil
}
