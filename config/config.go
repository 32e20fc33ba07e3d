package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config 汇总整个服务的配置。Load 返回配置值本身，
// 由 main 显式传给各组件，不使用包级可变状态。
type Config struct {
	Listen    string   `yaml:"listen"`
	Password  string   `yaml:"password"`
	AlertDays int      `yaml:"alertDays"`
	AlertHour int      `yaml:"alertHour"`
	AlertMin  int      `yaml:"alertMin"`
	Site      Site     `yaml:"site"`
	Telegram  Telegram `yaml:"telegram"`
	Whois     Whois    `yaml:"whois"`
	Storage   Storage  `yaml:"storage"`
}

type Site struct {
	Name      string `yaml:"name"`
	Icon      string `yaml:"icon"`
	BgImg     string `yaml:"bgimg"`
	GithubURL string `yaml:"githubURL"`
	BlogURL   string `yaml:"blogURL"`
	BlogName  string `yaml:"blogName"`
}

type Telegram struct {
	BotToken string `yaml:"botToken"`
	ChatID   int64  `yaml:"chatID"`
}

// Whois 控制解析策略与上游地址。Source 可选 http / rdap / port43 / chain，
// chain 为 RDAP 优先、whois 兜底。
type Whois struct {
	Source     string        `yaml:"source"`
	APIURL     string        `yaml:"apiURL"`
	APIKey     string        `yaml:"apiKey"`
	Timeout    time.Duration `yaml:"timeout"`
	CacheHours int           `yaml:"cacheHours"`
}

// Storage 选择持久化后端：memory / file / cloudflarekv / redis。
type Storage struct {
	Backend    string     `yaml:"backend"`
	FileDir    string     `yaml:"fileDir"`
	RedisURL   string     `yaml:"redisURL"`
	Cloudflare Cloudflare `yaml:"cloudflare"`
}

type Cloudflare struct {
	APIToken    string `yaml:"apiToken"`
	AccountID   string `yaml:"accountID"`
	NamespaceID string `yaml:"namespaceID"`
}

func Load(path string) (Config, error) {
	cfg := defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("读取配置文件失败: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("解析配置失败: %w", err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

func defaults() Config {
	return Config{
		Listen:    ":8080",
		AlertDays: 30,
		AlertHour: 9,
		Site: Site{
			Name: "域名到期监控",
		},
		Whois: Whois{
			Source:     "http",
			APIURL:     "https://ip.sb/whois",
			Timeout:    8 * time.Second,
			CacheHours: 24,
		},
		Storage: Storage{
			Backend: "file",
			FileDir: "data",
		},
	}
}

// applyDefaults 补齐被 yaml 显式置空的字段，避免零值直接生效。
func (c *Config) applyDefaults() {
	if c.Listen == "" {
		c.Listen = ":8080"
	}
	if c.AlertDays <= 0 {
		c.AlertDays = 30
	}
	if c.Whois.Source == "" {
		c.Whois.Source = "http"
	}
	if c.Whois.APIURL == "" {
		c.Whois.APIURL = "https://ip.sb/whois"
	}
	if c.Whois.Timeout <= 0 {
		c.Whois.Timeout = 8 * time.Second
	}
	if c.Whois.CacheHours <= 0 {
		c.Whois.CacheHours = 24
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = "file"
	}
	if c.Storage.Backend == "file" && c.Storage.FileDir == "" {
		c.Storage.FileDir = "data"
	}
	if c.Site.Name == "" {
		c.Site.Name = "域名到期监控"
	}
}

// CacheMaxAge 返回 WHOIS 缓存的新鲜度窗口。
func (c Config) CacheMaxAge() time.Duration {
	return time.Duration(c.Whois.CacheHours) * time.Hour
}
