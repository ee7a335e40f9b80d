package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Zacy-Sokach/DayFlow/internal/utils"
)

const (
	DefaultAPIBaseURL     = "http://localhost:3000"
	DefaultSchedulePath   = "users/{uid}/schedule"
	DefaultPollSeconds    = 30
	DefaultColumnsPerHour = 12
)

type Config struct {
	APIBaseURL string         `yaml:"api_base_url"`
	UserID     string         `yaml:"user_id"`
	TimeZone   string         `yaml:"time_zone"`
	LogLevel   string         `yaml:"log_level"`
	Auth       AuthConfig     `yaml:"auth"`
	Firebase   FirebaseConfig `yaml:"firebase"`
	Timeline   TimelineConfig `yaml:"timeline"`
}

// AuthConfig 身份提供方配置
// TokenCommand 是一个外部命令（例如 gcloud auth print-access-token），标准输出即 bearer token
type AuthConfig struct {
	TokenCommand []string `yaml:"token_command"`
}

type FirebaseConfig struct {
	DatabaseURL         string `yaml:"database_url"`
	SchedulePath        string `yaml:"schedule_path"`
	PollIntervalSeconds int    `yaml:"poll_interval_seconds"`
}

type TimelineConfig struct {
	ColumnsPerHour int `yaml:"columns_per_hour"`
}

// PollInterval 返回活动轮询间隔
func (c FirebaseConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

// Default 返回一份带默认值的配置
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.APIBaseURL == "" {
		c.APIBaseURL = DefaultAPIBaseURL
	}
	if c.TimeZone == "" {
		c.TimeZone = localTimeZone()
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Firebase.SchedulePath == "" {
		c.Firebase.SchedulePath = DefaultSchedulePath
	}
	if c.Firebase.PollIntervalSeconds <= 0 {
		c.Firebase.PollIntervalSeconds = DefaultPollSeconds
	}
	if c.Timeline.ColumnsPerHour <= 0 {
		c.Timeline.ColumnsPerHour = DefaultColumnsPerHour
	}
}

// localTimeZone 返回本地 IANA 时区名，拿不到时回退到 UTC
func localTimeZone() string {
	if tz := os.Getenv("TZ"); tz != "" {
		if _, err := time.LoadLocation(tz); err == nil {
			return tz
		}
	}
	name := time.Local.String()
	if name == "" || name == "Local" {
		return "UTC"
	}
	return name
}

func LoadConfig() (*Config, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return Default(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}
	config.applyDefaults()

	if _, err := time.LoadLocation(config.TimeZone); err != nil {
		return nil, fmt.Errorf("无效的时区 %q: %w", config.TimeZone, err)
	}

	return &config, nil
}

func SaveConfig(config *Config) error {
	configPath, err := getConfigPath()
	if err != nil {
		return err
	}

	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("创建配置目录失败: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("序列化配置失败: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("写入配置文件失败: %w", err)
	}

	return nil
}

// Location 返回配置时区对应的 *time.Location
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.Local
	}
	return loc
}

func getConfigPath() (string, error) {
	path, err := utils.ConfigFile("config.yaml")
	if err != nil {
		return "", fmt.Errorf("获取配置目录失败: %w", err)
	}
	return path, nil
}
