package config

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "github.com/lib/pq"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App      AppConfig      `yaml:"app"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	SMTP     SMTPConfig     `yaml:"smtp"`
	Storage  StorageConfig  `yaml:"storage"`
	Payments PaymentsConfig `yaml:"payments"`
	Logging  LoggingConfig  `yaml:"logging"`

	DB *sql.DB `yaml:"-"`
}

type AppConfig struct {
	Name string `yaml:"name"`
	Env  string `yaml:"env"`
	// CampaignYear names the current intake; transcript sub-types for the
	// post-bac track are derived from it (attestation_<year>, releve_<year-1>...).
	CampaignYear int `yaml:"campaign_year"`
	BaseURL      string `yaml:"base_url"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`
}

type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

type StorageConfig struct {
	S3 S3Config `yaml:"s3"`
}

type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	UseSSL    bool   `yaml:"use_ssl"`
}

type PaymentsConfig struct {
	Stripe   StripeConfig   `yaml:"stripe"`
	CinetPay CinetPayConfig `yaml:"cinetpay"`
}

type StripeConfig struct {
	SecretKey     string `yaml:"secret_key"`
	WebhookSecret string `yaml:"webhook_secret"`
}

type CinetPayConfig struct {
	APIKey    string `yaml:"api_key"`
	SiteID    string `yaml:"site_id"`
	BaseURL   string `yaml:"base_url"`
	NotifyURL string `yaml:"notify_url"`
	ReturnURL string `yaml:"return_url"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

var AppCfg *Config

// Load reads config.yaml (or CONFIG_PATH) and applies environment overrides.
func Load() error {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Environment always wins for secrets.
	if v := os.Getenv("STRIPE_SECRET_KEY"); v != "" {
		cfg.Payments.Stripe.SecretKey = v
	}
	if v := os.Getenv("STRIPE_WEBHOOK_SECRET"); v != "" {
		cfg.Payments.Stripe.WebhookSecret = v
	}
	if v := os.Getenv("CINETPAY_API_KEY"); v != "" {
		cfg.Payments.CinetPay.APIKey = v
	}
	if v := os.Getenv("SMTP_PASSWORD"); v != "" {
		cfg.SMTP.Password = v
	}

	if cfg.App.CampaignYear == 0 {
		cfg.App.CampaignYear = 2025
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}

	AppCfg = &cfg
	return nil
}

// InitDB opens the Postgres pool. DATABASE_URL overrides the yaml block.
func InitDB() {
	var psqlInfo string
	if url := os.Getenv("DATABASE_URL"); url != "" {
		psqlInfo = url
		log.Println("Using DATABASE_URL for database connection")
	} else {
		d := AppCfg.Database
		sslmode := d.SSLMode
		if sslmode == "" {
			sslmode = "disable"
		}
		psqlInfo = fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s connect_timeout=60",
			d.Host, d.Port, d.User, d.Password, d.Name, sslmode)
		log.Printf("Connecting to database %s at %s:%d", d.Name, d.Host, d.Port)
	}

	db, err := sql.Open("postgres", psqlInfo)
	if err != nil {
		log.Fatal("Failed to open database connection:", err)
	}

	// Connection pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	if err = db.Ping(); err != nil {
		log.Fatal("Cannot establish database connection: ", err)
	}

	AppCfg.DB = db
	log.Println("Database connected successfully")
}

func GetDB() *sql.DB {
	return AppCfg.DB
}

func Get() *Config {
	return AppCfg
}
