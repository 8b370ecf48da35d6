package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml"
)

// Config 为 config.toml 的完整结构
type Config struct {
	Server Server `toml:"server"`
	Client Client `toml:"client"`
}

// Server 服务端配置
type Server struct {
	Addr             string  `toml:"addr"`
	TickRate         int     `toml:"tick_rate"`         // 每秒 Tick 数
	MoveRate         float32 `toml:"move_rate"`         // 每秒移动单位
	SnapshotInterval int     `toml:"snapshot_interval"` // 每 N 个 Tick 广播一次快照
	BufferCapacity   int     `toml:"buffer_capacity"`   // 每个实体的命令环形缓冲容量
	SimulateDropProb float64 `toml:"simulate_drop_prob"`
	LogFile          string  `toml:"log_file"`
	LogLevel         string  `toml:"log_level"`
	SentryDSN        string  `toml:"sentry_dsn"`
	StatsviewAddr    string  `toml:"statsview_addr"`
}

// Client 客户端配置
type Client struct {
	URL            string `toml:"url"`
	Room           string `toml:"room"`
	LeadTicks      int    `toml:"lead_ticks"`      // 预测 Tick 领先最近快照的步数
	MaxDrift       int    `toml:"max_drift"`       // 超过 lead+max_drift 时回拉
	Redundancy     int    `toml:"redundancy"`      // 每次发送最近 N 条命令
	BufferCapacity int    `toml:"buffer_capacity"`
	Bot            bool   `toml:"bot"` // 使用脚本输入而不是终端键盘
	LogFile        string `toml:"log_file"`
	LogLevel       string `toml:"log_level"`
	SentryDSN      string `toml:"sentry_dsn"`
}

// Default 返回默认配置
func Default() Config {
	return Config{
		Server: Server{
			Addr:             ":7979",
			TickRate:         60,
			MoveRate:         1,
			SnapshotInterval: 1,
			BufferCapacity:   64,
			LogFile:          "server.log",
			LogLevel:         "info",
		},
		Client: Client{
			URL:            "ws://localhost:7979/ws",
			Room:           "room-1",
			LeadTicks:      2,
			MaxDrift:       8,
			Redundancy:     4,
			BufferCapacity: 64,
			LogFile:        "client.log",
			LogLevel:       "info",
		},
	}
}

// SaveDefault 写出默认配置文件；文件已存在时返回错误
func SaveDefault(path string) error {
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return errors.New("config file already exists")
	}
	data, err := toml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("encode default config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Load 读取配置文件；文件不存在时返回默认值。
// 文件中缺省的字段保持默认值。
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate 校验会破坏确定性或导致除零的取值
func (c Config) Validate() error {
	if c.Server.TickRate <= 0 {
		return fmt.Errorf("server.tick_rate must be positive, got %d", c.Server.TickRate)
	}
	if c.Server.SnapshotInterval <= 0 {
		return fmt.Errorf("server.snapshot_interval must be positive, got %d", c.Server.SnapshotInterval)
	}
	if c.Server.BufferCapacity <= 0 || c.Client.BufferCapacity <= 0 {
		return errors.New("buffer_capacity must be positive")
	}
	if c.Client.Redundancy <= 0 {
		return fmt.Errorf("client.redundancy must be positive, got %d", c.Client.Redundancy)
	}
	if c.Client.LeadTicks < 0 || c.Client.MaxDrift < 0 {
		return errors.New("client.lead_ticks and client.max_drift must not be negative")
	}
	return nil
}
