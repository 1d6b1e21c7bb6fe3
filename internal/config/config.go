package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// 门限上限：只允许调低，否则穷举搜索会失控
const (
	MaxRemovalThreshold = 8
	MaxPlayThreshold    = 7
)

// 缓存后端
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

// Config 求解器配置
type Config struct {
	Search     SearchConfig     `yaml:"search"`
	Cache      CacheConfig      `yaml:"cache"`
	Redis      RedisConfig      `yaml:"redis"`
	Log        LogConfig        `yaml:"log"`
	Game       GameConfig       `yaml:"game"`
	Simulation SimulationConfig `yaml:"simulation"`
}

// SearchConfig 穷举搜索配置
type SearchConfig struct {
	RemovalThreshold int  `yaml:"removal_threshold"` // 最佳出牌为弃牌时，未发出的牌少于该值才搜索
	PlayThreshold    int  `yaml:"play_threshold"`    // 最佳出牌为三张牌时
	Workers          int  `yaml:"workers"`           // 并行分支数
	Timeout          int  `yaml:"timeout"`           // 单次搜索超时（秒）
	Async            bool `yaml:"async"`             // 在后台 goroutine 中搜索
}

// CacheConfig 搜索结果缓存配置
type CacheConfig struct {
	Backend string `yaml:"backend"`
	TTL     int    `yaml:"ttl"` // 分钟
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// LogConfig 日志配置
type LogConfig struct {
	Dir   string `yaml:"dir"`
	Debug bool   `yaml:"debug"`
}

// GameConfig 游戏配置
type GameConfig struct {
	TargetScore int `yaml:"target_score"` // 可达最高分低于该值时提示
}

// SimulationConfig 模拟对局配置
type SimulationConfig struct {
	Games  int    `yaml:"games"`
	Seed   uint64 `yaml:"seed"`   // 0 表示随机
	Record bool   `yaml:"record"` // 把结果写入 Redis 排行榜
}

// TimeoutDuration 返回搜索超时时长
func (c *SearchConfig) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// TTLDuration 返回缓存过期时长
func (c *CacheConfig) TTLDuration() time.Duration {
	return time.Duration(c.TTL) * time.Minute
}

// Load 加载配置文件
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults 设置默认值
func (c *Config) applyDefaults() {
	if c.Search.RemovalThreshold == 0 {
		c.Search.RemovalThreshold = MaxRemovalThreshold
	}
	if c.Search.PlayThreshold == 0 {
		c.Search.PlayThreshold = MaxPlayThreshold
	}
	if c.Search.Workers == 0 {
		c.Search.Workers = 4
	}
	if c.Search.Timeout == 0 {
		c.Search.Timeout = 30
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = CacheMemory
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = 60
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}
	if c.Game.TargetScore == 0 {
		c.Game.TargetScore = 300
	}
	if c.Simulation.Games == 0 {
		c.Simulation.Games = 1
	}
}

// Validate 检查配置是否合法
func (c *Config) Validate() error {
	if c.Search.RemovalThreshold < 0 || c.Search.RemovalThreshold > MaxRemovalThreshold {
		return fmt.Errorf("search.removal_threshold must be in [0, %d], got %d", MaxRemovalThreshold, c.Search.RemovalThreshold)
	}
	if c.Search.PlayThreshold < 0 || c.Search.PlayThreshold > MaxPlayThreshold {
		return fmt.Errorf("search.play_threshold must be in [0, %d], got %d", MaxPlayThreshold, c.Search.PlayThreshold)
	}
	if c.Search.Workers < 1 {
		return fmt.Errorf("search.workers must be positive, got %d", c.Search.Workers)
	}
	switch c.Cache.Backend {
	case CacheMemory, CacheRedis, CacheNone:
	default:
		return fmt.Errorf("unknown cache.backend %q", c.Cache.Backend)
	}
	return nil
}

// Default 返回默认配置
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}
