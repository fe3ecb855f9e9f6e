package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rushteam/tourkit/blend"
)

// AppConfig 是 tourd 服务的完整配置。
// 所有段都可缺省：零配置即可用内存后端跑起来。
type AppConfig struct {
	Server    ServerConfig    `yaml:"server"`
	Engine    EngineConfig    `yaml:"engine"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Redis     RedisConfig     `yaml:"redis"`
	Feast     FeastConfig     `yaml:"feast"`
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Addr string `yaml:"addr"` // 默认 ":8080"
}

// EngineConfig 引擎配置
type EngineConfig struct {
	// Weights 融合权重；零值段使用默认权重
	Weights blend.Weights `yaml:"weights"`

	// EmbeddingPath 向量索引 JSON 文件路径；为空或文件缺失则跳过相似度
	EmbeddingPath string `yaml:"embedding_path"`

	// Exclude 运营侧 CEL 硬排除表达式
	Exclude []string `yaml:"exclude"`

	// PipelinePath 本地打分链的 Pipeline 配置（YAML）；
	// 为空时引擎按默认链组装（过滤 → 规则分 → 相似度分）
	PipelinePath string `yaml:"pipeline_path"`

	// External 外部语义推荐服务
	External ExternalConfig `yaml:"external"`
}

// ExternalConfig 外部语义服务配置
type ExternalConfig struct {
	Endpoint       string `yaml:"endpoint"` // 为空则不启用外部信号
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout 返回外部调用超时；未配置时为 0，由引擎取默认值。
func (c ExternalConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	WindowSeconds int `yaml:"window_seconds"` // 默认 60
	Limit         int `yaml:"limit"`          // 默认 30
}

// Window 返回限流窗口；未配置时为 0，由限流器取默认值。
func (c RateLimitConfig) Window() time.Duration {
	return time.Duration(c.WindowSeconds) * time.Second
}

// RedisConfig Redis 配置；Addr 为空时使用内存后端。
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// FeastConfig 特征存储配置；Host 为空时不启用画像补全。
type FeastConfig struct {
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
	Project string `yaml:"project"`
}

// Load 从 YAML 文件加载配置并补齐默认值。
// 文件不存在时返回纯默认配置，不是错误。
func Load(path string) (*AppConfig, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

// Default 返回全默认配置。
func Default() *AppConfig {
	cfg := &AppConfig{}
	cfg.applyDefaults()
	return cfg
}

func (c *AppConfig) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	zero := blend.Regime{}
	if c.Engine.Weights.WithVector == zero {
		c.Engine.Weights.WithVector = blend.DefaultWeights().WithVector
	}
	if c.Engine.Weights.WithoutVector == zero {
		c.Engine.Weights.WithoutVector = blend.DefaultWeights().WithoutVector
	}
}
