package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	AppPort string

	DBDriver string

	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	PostgresDSN string
	SQLitePath  string

	RedisAddr     string
	RedisDB       int
	RedisPassword string

	IdempTTLSecs int

	JWTSecret     string
	JWTTTLMinutes int

	LogLevel  string
	LogFormat string

	NotifyDriver     string
	SMTPHost         string
	SMTPPort         int
	SMTPUser         string
	SMTPPassword     string
	SMTPFrom         string
	SMTPSSL          bool
	KafkaBrokers     []string
	KafkaNotifyTopic string

	DefaultLateFee   decimal.Decimal
	Timezone         string
	SweepGateSeconds int
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getint(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

// Load reads .env when present, then the process environment.
func Load() *Config {
	_ = godotenv.Load()

	c := &Config{
		AppPort:   getenv("APP_PORT", "8080"),
		DBDriver:  getenv("DB_DRIVER", "mysql"),
		MySQLHost: getenv("MYSQL_HOST", "mysql"),
		MySQLPort: getenv("MYSQL_PORT", "3306"),
		MySQLDB:   getenv("MYSQL_DB", "flexemi"),
		MySQLUser: getenv("MYSQL_USER", "flexemi"),
		MySQLPass: getenv("MYSQL_PASS", "flexemi"),

		PostgresDSN: os.Getenv("POSTGRES_DSN"),
		SQLitePath:  getenv("SQLITE_PATH", "flexemi.db"),

		RedisAddr:     getenv("REDIS_ADDR", "redis:6379"),
		RedisDB:       getint("REDIS_DB", 0),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		IdempTTLSecs:  getint("IDEMPOTENCY_TTL_SECONDS", 300),

		JWTSecret:     os.Getenv("JWT_SECRET"),
		JWTTTLMinutes: getint("JWT_TTL_MINUTES", 24*60),

		LogLevel:  getenv("LOG_LEVEL", "info"),
		LogFormat: getenv("LOG_FORMAT", "json"),

		NotifyDriver:     getenv("NOTIFY_DRIVER", "log"),
		SMTPHost:         os.Getenv("SMTP_HOST"),
		SMTPPort:         getint("SMTP_PORT", 587),
		SMTPUser:         os.Getenv("SMTP_USER"),
		SMTPPassword:     os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:         getenv("SMTP_FROM", "FlexEMI <no-reply@flexemi.local>"),
		SMTPSSL:          os.Getenv("SMTP_SSL") == "true",
		KafkaNotifyTopic: getenv("KAFKA_NOTIFY_TOPIC", "flexemi.notifications"),

		DefaultLateFee:   decimal.NewFromInt(500),
		Timezone:         getenv("TIMEZONE", "UTC"),
		SweepGateSeconds: getint("SWEEP_GATE_SECONDS", 60),
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		for _, b := range strings.Split(v, ",") {
			if b = strings.TrimSpace(b); b != "" {
				c.KafkaBrokers = append(c.KafkaBrokers, b)
			}
		}
	}
	if v := os.Getenv("DEFAULT_LATE_FEE"); v != "" {
		if d, err := decimal.NewFromString(v); err == nil {
			c.DefaultLateFee = d
		}
	}
	return c
}

func (c *Config) Validate() error {
	switch c.DBDriver {
	case "mysql":
		if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
			return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
		}
		// ensure port is valid
		if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
			return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
		}
	case "postgres":
		if c.PostgresDSN == "" {
			return errors.New("missing POSTGRES_DSN")
		}
	case "sqlite":
		if c.SQLitePath == "" {
			return errors.New("missing SQLITE_PATH")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	if c.JWTSecret == "" {
		return errors.New("missing JWT_SECRET")
	}
	if c.DefaultLateFee.IsNegative() {
		return errors.New("DEFAULT_LATE_FEE must not be negative")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	switch c.NotifyDriver {
	case "log":
	case "smtp":
		if c.SMTPHost == "" {
			return errors.New("NOTIFY_DRIVER=smtp needs SMTP_HOST")
		}
	case "kafka":
		if len(c.KafkaBrokers) == 0 {
			return errors.New("NOTIFY_DRIVER=kafka needs KAFKA_BROKERS")
		}
	default:
		return fmt.Errorf("unsupported NOTIFY_DRIVER %q", c.NotifyDriver)
	}
	return nil
}

// Location is the timezone "today" is computed in. Call after Validate.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// multiStatements=true is handy for migrations; parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?multiStatements=true&parseTime=true&loc=UTC&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}

// DSN returns the connection string for the selected driver.
func (c *Config) DSN() string {
	switch c.DBDriver {
	case "postgres":
		return c.PostgresDSN
	case "sqlite":
		return c.SQLitePath
	}
	return c.MySQLDSN()
}

func (c *Config) IdempotencyTTL() time.Duration { return time.Duration(c.IdempTTLSecs) * time.Second }

func (c *Config) JWTTTL() time.Duration { return time.Duration(c.JWTTTLMinutes) * time.Minute }

func (c *Config) SweepGateTTL() time.Duration { return time.Duration(c.SweepGateSeconds) * time.Second }
