package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

// Config 应用配置结构
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Switch   SwitchConfig   `mapstructure:"switch"`
	Log      LogConfig      `mapstructure:"log"`
	Database DatabaseConfig `mapstructure:"database"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Archive  ArchiveConfig  `mapstructure:"archive"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	Mode           string        `mapstructure:"mode"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	SimulateEnable bool          `mapstructure:"simulate_enable"`
	SimulateConfig string        `mapstructure:"simulate_config"`
}

// SwitchConfig 被采集交换机的连接参数
type SwitchConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	// Timeout 单次读取超时；纯数字按秒解释
	Timeout time.Duration `mapstructure:"timeout"`
	// PollInterval 采集周期；纯数字按秒解释
	PollInterval time.Duration `mapstructure:"poll_interval"`
	// Platform 交互/采集插件名称（hp_v1910、h3c_s）
	Platform string `mapstructure:"platform"`
	// MaxPages 单条命令翻页上限，0 表示使用平台默认
	MaxPages int          `mapstructure:"max_pages"`
	Unlock   UnlockConfig `mapstructure:"unlock"`
}

// UnlockConfig 扩展命令集解锁；Command/Secret 为空时使用平台默认
type UnlockConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Command string `mapstructure:"command"`
	Secret  string `mapstructure:"secret"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	SQLite SQLiteConfig `mapstructure:"sqlite"`
}

// SQLiteConfig SQLite配置
type SQLiteConfig struct {
	Path            string        `mapstructure:"path"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	// HistoryLimit 保留的采集记录条数，0 表示不清理
	HistoryLimit int `mapstructure:"history_limit"`
}

// StorageConfig 对象存储配置
type StorageConfig struct {
	Minio MinioConfig `mapstructure:"minio"`
}

// MinioConfig 对象存储配置（原始回显归档）
type MinioConfig struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	Secure    bool   `mapstructure:"secure"`
}

// ArchiveConfig 原始回显归档
type ArchiveConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// Backend 存储后端：local | minio
	Backend string `mapstructure:"backend"`
	BaseDir string `mapstructure:"base_dir"`
	Prefix  string `mapstructure:"prefix"`
}

// RedisConfig 最新快照发布
type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Key      string        `mapstructure:"key"`
	Channel  string        `mapstructure:"channel"`
	TTL      time.Duration `mapstructure:"ttl"`
}

var (
	globalConfig *Config
	globalMu     sync.RWMutex
)

// Load 加载配置文件
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	// 设置默认值
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// 默认配置文件路径
		v.SetConfigName("config")
		v.AddConfigPath("./configs")
		v.AddConfigPath("../configs")
		v.AddConfigPath("../../configs")
	}

	// 设置环境变量前缀
	v.SetEnvPrefix("SWITCH_COLLECTOR")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 读取配置文件
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 纯数字的超时/周期按秒解释
	config.Switch.Timeout = normalizeSeconds(config.Switch.Timeout)
	config.Switch.PollInterval = normalizeSeconds(config.Switch.PollInterval)

	// 环境变量替换
	config = replaceEnvVars(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	globalMu.Lock()
	globalConfig = &config
	globalMu.Unlock()
	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	// 模拟交换机默认关闭
	v.SetDefault("server.simulate_enable", false)
	v.SetDefault("server.simulate_config", "simulate/simulate.yaml")

	v.SetDefault("switch.port", 23)
	v.SetDefault("switch.timeout", 10*time.Second)
	v.SetDefault("switch.poll_interval", 30*time.Second)
	v.SetDefault("switch.platform", "hp_v1910")
	v.SetDefault("switch.max_pages", 20)
	v.SetDefault("switch.unlock.enabled", true)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.output", "console")
	v.SetDefault("log.file_path", "./logs/switch-collector.log")
	v.SetDefault("log.max_size", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age", 30)

	v.SetDefault("database.sqlite.path", "./data/switch-collector.db")
	v.SetDefault("database.sqlite.max_idle_conns", 2)
	v.SetDefault("database.sqlite.max_open_conns", 1)
	v.SetDefault("database.sqlite.conn_max_lifetime", time.Hour)
	v.SetDefault("database.sqlite.history_limit", 2880)

	v.SetDefault("archive.enabled", false)
	v.SetDefault("archive.backend", "local")
	v.SetDefault("archive.base_dir", "./data/raw")
	v.SetDefault("archive.prefix", "polls")

	v.SetDefault("storage.minio.port", 9000)
	v.SetDefault("storage.minio.bucket", "switch-collector-raw")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.key", "switch_collector:snapshot")
	v.SetDefault("redis.channel", "switch_collector:updates")
	v.SetDefault("redis.ttl", 10*time.Minute)
}

// Validate 校验必填项与取值范围
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Switch.Host) == "" {
		errs = append(errs, errors.New("switch.host is required"))
	}
	if c.Switch.Port <= 0 || c.Switch.Port > 65535 {
		errs = append(errs, fmt.Errorf("switch.port %d out of range", c.Switch.Port))
	}
	if c.Switch.Timeout <= 0 {
		errs = append(errs, errors.New("switch.timeout must be positive"))
	}
	if c.Switch.PollInterval < time.Second {
		errs = append(errs, errors.New("switch.poll_interval must be at least 1s"))
	}
	if c.Switch.MaxPages < 0 {
		errs = append(errs, errors.New("switch.max_pages must not be negative"))
	}
	switch c.Archive.Backend {
	case "", "local", "minio":
	default:
		errs = append(errs, fmt.Errorf("archive.backend %q not supported", c.Archive.Backend))
	}
	return errors.Join(errs...)
}

// Get 获取全局配置
func Get() *Config {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalConfig
}

// normalizeSeconds YAML 中写成整数（如 timeout: 10）时 viper 解析为纳秒
func normalizeSeconds(d time.Duration) time.Duration {
	if d > 0 && d < time.Millisecond {
		return d * time.Second
	}
	return d
}

// replaceEnvVars 替换形如 ${VAR} 的敏感配置
func replaceEnvVars(config Config) Config {
	config.Switch.Password = expandEnv(config.Switch.Password)
	config.Switch.Unlock.Secret = expandEnv(config.Switch.Unlock.Secret)
	config.Storage.Minio.AccessKey = expandEnv(config.Storage.Minio.AccessKey)
	config.Storage.Minio.SecretKey = expandEnv(config.Storage.Minio.SecretKey)
	config.Redis.Password = expandEnv(config.Redis.Password)
	return config
}

func expandEnv(s string) string {
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		envVar := strings.TrimSuffix(strings.TrimPrefix(s, "${"), "}")
		if value := os.Getenv(envVar); value != "" {
			return value
		}
	}
	return s
}
