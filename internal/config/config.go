package config

import (
	"fmt"

	"github.com/blues/dls/internal/logger"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Fee      FeeConfig      `mapstructure:"fee"`
	Withdraw WithdrawConfig `mapstructure:"withdraw"`
	Payment  PaymentConfig  `mapstructure:"payment"`
	Token    TokenConfig    `mapstructure:"token"`
	Task     TaskConfig     `mapstructure:"task"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// FeeConfig 费率配置，构造时注入费用策略组件
type FeeConfig struct {
	MaintenancePercent float64 `mapstructure:"maintenance_percent"` // 维护费百分比
	PerDonation        float64 `mapstructure:"per_donation"`        // 每笔已支付贡献的固定费
	WithdrawalFixed    float64 `mapstructure:"withdrawal_fixed"`    // 每笔提现的固定费
}

// WithdrawConfig 提现与贡献的金额门槛
type WithdrawConfig struct {
	MinAmount             float64 `mapstructure:"min_amount"`              // 最低提现金额
	MinContributionAmount float64 `mapstructure:"min_contribution_amount"` // 最低贡献金额
}

// PaymentConfig 支付网关配置
type PaymentConfig struct {
	BaseURL          string `mapstructure:"base_url"`          // 网关地址
	TimeoutSeconds   int    `mapstructure:"timeout_seconds"`   // 请求超时（秒）
	WebhookSecret    string `mapstructure:"webhook_secret"`    // 回调HMAC共享密钥
	WebhookTolerance int    `mapstructure:"webhook_tolerance"` // 回调时间戳容忍窗口（秒）
}

// TokenConfig 临时访问令牌配置
type TokenConfig struct {
	AuditSecret    string `mapstructure:"audit_secret"`     // 审计令牌签名密钥
	AuditTTLHours  int    `mapstructure:"audit_ttl_hours"`  // 审计令牌默认有效期（小时）
	PayoutExpHours int    `mapstructure:"payout_exp_hours"` // 提现令牌有效期（小时）
	PayoutMaxViews int    `mapstructure:"payout_max_views"` // 提现令牌最大查看次数
}

type TaskConfig struct {
	Interval int `mapstructure:"interval"` // 秒
	Workers  int `mapstructure:"workers"`  // 对账轮询协程池大小
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // 日志级别: debug, info, warn, error, fatal
	Output string `mapstructure:"output"` // 输出目标: stdout, stderr, file
	File   string `mapstructure:"file"`   // 日志文件路径（当output为file时使用）
}

// UseFile 是否输出到文件
func (l LogConfig) UseFile() bool {
	return l.Output == "file" && l.File != ""
}

// Validate 启动前的硬性校验
// 签名密钥没有默认值：空密钥等于不验签，缺失时必须拒绝启动
func (c *Config) Validate() error {
	if c.Payment.WebhookSecret == "" {
		return fmt.Errorf("payment.webhook_secret is required")
	}
	if c.Token.AuditSecret == "" {
		return fmt.Errorf("token.audit_secret is required")
	}
	return nil
}

func Load() *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/dls")

	// 设置默认值
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "")
	viper.SetDefault("database.dbname", "donation_ledger")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("fee.maintenance_percent", 4.99)
	viper.SetDefault("fee.per_donation", 0.49)
	viper.SetDefault("fee.withdrawal_fixed", 4.50)
	viper.SetDefault("withdraw.min_amount", 50.00)
	viper.SetDefault("withdraw.min_contribution_amount", 20.00)
	viper.SetDefault("payment.base_url", "http://localhost:9090")
	viper.SetDefault("payment.timeout_seconds", 10)
	viper.SetDefault("payment.webhook_tolerance", 300)
	viper.SetDefault("token.audit_ttl_hours", 168)
	viper.SetDefault("token.payout_exp_hours", 48)
	viper.SetDefault("token.payout_max_views", 5)
	viper.SetDefault("task.interval", 60)
	viper.SetDefault("task.workers", 8)
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.output", "stdout")
	viper.SetDefault("log.file", "logs/app.log")

	// 自动读取环境变量
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logger.Warn("Warning: Could not read config file: %v", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		logger.Fatal("Unable to decode config into struct: %v", err)
	}

	return &config
}
