// Package config 加载 TOML 配置，支持多路径查找
package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

// MainConfig 主配置
type MainConfig struct {
	AppName  string `toml:"appName"`
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Mode     string `toml:"mode"`     // gin 运行模式：debug / release / test
	ForceTLS bool   `toml:"forceTLS"` // 是否强制跳转 HTTPS
}

// MysqlConfig MySQL 连接配置
type MysqlConfig struct {
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	User         string `toml:"user"`
	Password     string `toml:"password"`
	DatabaseName string `toml:"databaseName"`
	MaxIdleConns int    `toml:"maxIdleConns"`
	MaxOpenConns int    `toml:"maxOpenConns"`
}

// RedisConfig Redis 连接配置
type RedisConfig struct {
	Host       string `toml:"host"`
	Port       int    `toml:"port"`
	Password   string `toml:"password"`
	Db         int    `toml:"db"`
	Workers    int    `toml:"workers"`    // 异步缓存写入协程数
	QueueSize  int    `toml:"queueSize"`  // 异步任务队列长度
	ProfileTTL int    `toml:"profileTTL"` // 用户资料缓存有效期（分钟）
}

// LogConfig 日志配置，lumberjack 负责轮转
type LogConfig struct {
	LogPath    string `toml:"logPath"`
	FileName   string `toml:"fileName"`
	MaxSize    int    `toml:"maxSize"`    // MB
	MaxBackups int    `toml:"maxBackups"` // 保留个数
	MaxAge     int    `toml:"maxAge"`     // 天
	Level      string `toml:"level"`      // debug, info, warn, error
}

// KafkaConfig 跨实例推送使用的 Kafka 配置
type KafkaConfig struct {
	MessageMode string        `toml:"messageMode"` // "channel" 或 "kafka"
	HostPort    string        `toml:"hostPort"`    // 逗号分隔的 broker 地址
	ChatTopic   string        `toml:"chatTopic"`
	GroupID     string        `toml:"groupId"` // 消费组，每个实例需唯一才能各自收到全部事件
	Timeout     time.Duration `toml:"timeout"` // 写入超时（秒）
}

// FanoutConfig 实时推送总线配置
type FanoutConfig struct {
	Shards       int           `toml:"shards"`       // 分发协程数，同一群固定落在同一分片
	QueueSize    int           `toml:"queueSize"`    // 每个分片的队列长度，满时丢弃最旧事件
	SendBuffer   int           `toml:"sendBuffer"`   // 每个连接的发送缓冲
	WriteTimeout time.Duration `toml:"writeTimeout"` // websocket 写超时（秒）
}

// UploadConfig 本地文件存储配置
type UploadConfig struct {
	Dir          string        `toml:"dir"`          // 文件落盘目录
	BaseURL      string        `toml:"baseURL"`      // 对外访问前缀，如 http://localhost:8000
	MaxBytes     int64         `toml:"maxBytes"`     // 单文件大小上限
	Timeout      time.Duration `toml:"timeout"`      // 单次上传超时（秒）
	MaxFailures  uint32        `toml:"maxFailures"`  // 连续失败多少次后熔断
	OpenInterval time.Duration `toml:"openInterval"` // 熔断持续时间（秒）
}

// JWTConfig JWT 认证配置
type JWTConfig struct {
	Secret            string `toml:"secret"`
	AccessTokenExpiry int    `toml:"accessTokenExpiry"` // 分钟
}

// SnowflakeConfig 雪花算法配置
type SnowflakeConfig struct {
	MachineID int64 `toml:"machineId"` // 0-1023，多实例部署时需唯一
}

// Config 总配置
type Config struct {
	MainConfig      `toml:"mainConfig"`
	MysqlConfig     `toml:"mysqlConfig"`
	RedisConfig     `toml:"redisConfig"`
	LogConfig       `toml:"logConfig"`
	KafkaConfig     `toml:"kafkaConfig"`
	FanoutConfig    `toml:"fanoutConfig"`
	UploadConfig    `toml:"uploadConfig"`
	JWTConfig       `toml:"jwtConfig"`
	SnowflakeConfig `toml:"snowflakeConfig"`
}

var config *Config

var searchPaths = []string{
	"configs/config_local.toml",
	"configs/config.toml",
	"../../configs/config_local.toml",
	"../../configs/config.toml",
}

// LoadConfig 依次尝试候选路径，找到第一个可用的配置文件即停止
func LoadConfig() error {
	for _, path := range searchPaths {
		if _, err := toml.DecodeFile(path, config); err == nil {
			return nil
		}
	}
	return fmt.Errorf("could not find configuration file in any of the search paths")
}

// Load 解析指定文件并补齐默认值
func Load(path string) (*Config, error) {
	cfg := new(Config)
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

// GetConfig 全局配置单例，首次调用时加载
func GetConfig() *Config {
	if config == nil {
		config = new(Config)
		_ = LoadConfig() // 找不到文件时使用默认值
		config.applyDefaults()
	}
	return config
}

func (c *Config) applyDefaults() {
	if c.AppName == "" {
		c.AppName = "group_chat_server"
	}
	if c.MainConfig.Host == "" {
		c.MainConfig.Host = "0.0.0.0"
	}
	if c.MainConfig.Port == 0 {
		c.MainConfig.Port = 8000
	}
	if c.Mode == "" {
		c.Mode = "debug"
	}
	if c.MessageMode == "" {
		c.MessageMode = "channel"
	}
	if c.ChatTopic == "" {
		c.ChatTopic = "group_chat"
	}
	if c.KafkaConfig.Timeout == 0 {
		c.KafkaConfig.Timeout = 3
	}
	if c.Shards <= 0 {
		c.Shards = 8
	}
	if c.FanoutConfig.QueueSize <= 0 {
		c.FanoutConfig.QueueSize = 1024
	}
	if c.SendBuffer <= 0 {
		c.SendBuffer = 64
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 10
	}
	if c.RedisConfig.Workers <= 0 {
		c.RedisConfig.Workers = 4
	}
	if c.RedisConfig.QueueSize <= 0 {
		c.RedisConfig.QueueSize = 256
	}
	if c.ProfileTTL <= 0 {
		c.ProfileTTL = 30
	}
	if c.Dir == "" {
		c.Dir = "./static/files"
	}
	if c.MaxBytes <= 0 {
		c.MaxBytes = 5 << 20
	}
	if c.UploadConfig.Timeout == 0 {
		c.UploadConfig.Timeout = 10
	}
	if c.MaxFailures == 0 {
		c.MaxFailures = 5
	}
	if c.OpenInterval == 0 {
		c.OpenInterval = 30
	}
	if c.AccessTokenExpiry <= 0 {
		c.AccessTokenExpiry = 120
	}
}
