package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 全局配置结构体（完全匹配config.yaml）
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`   // 服务器配置
	Database DatabaseConfig `mapstructure:"database"` // 文档存储配置
	Log      LogConfig      `mapstructure:"log"`      // 日志配置
	Identity IdentityConfig `mapstructure:"identity"` // 身份提供方配置
	Avatar   AvatarConfig   `mapstructure:"avatar"`   // 头像对象存储配置
	Match    MatchConfig    `mapstructure:"match"`    // 比赛规则配置
	Tag      TagConfig      `mapstructure:"tag"`      // 昵称标签分配配置
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port        int      `mapstructure:"port"`         // 服务端口
	Mode        string   `mapstructure:"mode"`         // Gin运行模式：debug/release/test
	Pprof       bool     `mapstructure:"pprof"`        // 是否注册 pprof 路由
	CORSOrigins []string `mapstructure:"cors_origins"` // 允许跨域的前端地址
}

// DatabaseConfig 文档存储配置。driver=postgres 时使用 jsonb 文档表，driver=memory 仅用于本地调试
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`            // postgres/memory
	DSN             string        `mapstructure:"dsn"`               // 连接DSN
	MaxOpenConns    int           `mapstructure:"max_open_conns"`    // 最大打开连接数
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`    // 最大空闲连接数
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"` // 连接最大存活时间
	LogSQL          bool          `mapstructure:"log_sql"`           // 是否打印SQL
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `mapstructure:"level"`        // debug/info/warn/error
	Format     string `mapstructure:"format"`       // text/json
	File       string `mapstructure:"file"`         // 日志文件，空则只输出到stdout
	MaxSizeMB  int    `mapstructure:"max_size_mb"`  // 单文件最大体积
	MaxBackups int    `mapstructure:"max_backups"`  // 保留的旧文件数
	MaxAgeDays int    `mapstructure:"max_age_days"` // 旧文件保留天数
}

// IdentityConfig 身份提供方配置
type IdentityConfig struct {
	Provider        string `mapstructure:"provider"`         // local/firebase
	BaseURL         string `mapstructure:"base_url"`         // Identity Toolkit 地址
	APIKey          string `mapstructure:"api_key"`          // Firebase Web API Key
	AccessToken     string `mapstructure:"access_token"`     // 管理接口（lookup/delete）使用的 OAuth token
	Timeout         int    `mapstructure:"timeout"`          // 请求超时（秒）
	Proxy           string `mapstructure:"proxy"`            // 代理地址
	SyntheticDomain string `mapstructure:"synthetic_domain"` // 昵称账号的合成邮箱域名
	BcryptCost      int    `mapstructure:"bcrypt_cost"`      // local 模式密码哈希强度
}

// AvatarConfig S3 兼容对象存储配置（R2/MinIO/S3）
type AvatarConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	Endpoint        string `mapstructure:"endpoint"`          // 自定义 endpoint，空则使用 AWS 默认
	Region          string `mapstructure:"region"`            // 区域，R2 填 auto
	Bucket          string `mapstructure:"bucket"`            // 桶名
	AccessKeyID     string `mapstructure:"access_key_id"`     // 访问密钥
	AccessKeySecret string `mapstructure:"access_key_secret"` // 访问密钥 Secret
	PublicBaseURL   string `mapstructure:"public_base_url"`   // 对外访问前缀（CDN）
	MaxBytes        int64  `mapstructure:"max_bytes"`         // 上传大小上限
}

// MatchConfig 比赛配置
type MatchConfig struct {
	StrictTransitions bool `mapstructure:"strict_transitions"` // 只允许 scheduled→live→finished
	ListLimit         int  `mapstructure:"list_limit"`         // 列表默认返回条数
}

// TagConfig 标签分配配置
type TagConfig struct {
	MaxAttempts int `mapstructure:"max_attempts"` // 随机重试上限
}

// LoadConfig 加载配置文件（config/config.yaml），敏感项从 .env 覆盖（不提交 git）
func LoadConfig() (*Config, error) {
	// 1. 加载 .env（若存在），env 中的值会覆盖 config.yaml 中同名字段
	_ = godotenv.Load() // 忽略错误（.env 可不存在）
	return LoadConfigFrom("./config")
}

// LoadConfigFrom 从指定目录读取 config.yaml
func LoadConfigFrom(dir string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	setDefaults(v)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	v.SetTypeByDefaultValue(true)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	// 敏感字段：用 env 覆盖（优先级 env > yaml）
	overrideFromEnv(&cfg)
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.cors_origins", []string{"http://localhost:3000", "http://localhost:5173"})
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 7)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("identity.provider", "local")
	v.SetDefault("identity.base_url", "https://identitytoolkit.googleapis.com")
	v.SetDefault("identity.timeout", 10)
	v.SetDefault("identity.synthetic_domain", "nickname.penaltyhub.invalid")
	v.SetDefault("identity.bcrypt_cost", 10)
	v.SetDefault("avatar.region", "auto")
	v.SetDefault("avatar.max_bytes", 2<<20)
	v.SetDefault("match.list_limit", 100)
	v.SetDefault("tag.max_attempts", 50)
}

// overrideFromEnv 用环境变量覆盖敏感配置
func overrideFromEnv(cfg *Config) {
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("FIREBASE_API_KEY"); v != "" {
		cfg.Identity.APIKey = v
	}
	if v := os.Getenv("FIREBASE_ACCESS_TOKEN"); v != "" {
		cfg.Identity.AccessToken = v
	}
	if v := os.Getenv("IDENTITY_PROXY"); v != "" {
		cfg.Identity.Proxy = v
	}
	if v := os.Getenv("AVATAR_ACCESS_KEY_ID"); v != "" {
		cfg.Avatar.AccessKeyID = v
	}
	if v := os.Getenv("AVATAR_ACCESS_KEY_SECRET"); v != "" {
		cfg.Avatar.AccessKeySecret = v
	}
}
