package config

import (
	"fmt"
	"strings"
	"time"

	"book-my-session/core/constants"
	"book-my-session/core/utils"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	GoogleAPI GoogleAPIConfig `mapstructure:"google"`
	Mail      MailConfig      `mapstructure:"mail"`
	Booking   BookingConfig   `mapstructure:"booking"`
	Slots     SlotsConfig     `mapstructure:"slots"`
	Worker    WorkerConfig    `mapstructure:"worker"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"` // postgres | sqlite
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	Name            string `mapstructure:"name"`
	SSLMode         string `mapstructure:"sslmode"`
	Path            string `mapstructure:"path"` // sqlite file
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // in minutes
	AutoMigrate     bool   `mapstructure:"auto_migrate"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
}

type GoogleAPIConfig struct {
	ClientID        string `mapstructure:"client_id"`
	ClientSecret    string `mapstructure:"client_secret"`
	RedirectURI     string `mapstructure:"redirect_uri"`
	RefreshToken    string `mapstructure:"refresh_token"`
	CalendarBaseURL string `mapstructure:"calendar_base_url"`
	CalendarID      string `mapstructure:"calendar_id"`
}

type MailConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	SMTPHost string `mapstructure:"smtp_host"`
	SMTPPort int    `mapstructure:"smtp_port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	FromName string `mapstructure:"from_name"`
}

type BookingConfig struct {
	Policy           string        `mapstructure:"policy"`            // exclusive | shared
	AvailabilityView string        `mapstructure:"availability_view"` // free | occupancy
	RequestTimeout   time.Duration `mapstructure:"request_timeout"`
}

type SlotsConfig struct {
	WindowStart   string        `mapstructure:"window_start"`
	WindowEnd     string        `mapstructure:"window_end"`
	Duration      time.Duration `mapstructure:"duration"`
	DisplayOffset string        `mapstructure:"display_offset"`
	Days          int           `mapstructure:"days"`
	StartDate     string        `mapstructure:"start_date"` // YYYY-MM-DD, empty = tomorrow
	Regeneration  string        `mapstructure:"regeneration"`
}

type WorkerConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	Concurrency   int           `mapstructure:"concurrency"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
	MaxRetry      int           `mapstructure:"max_retry"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 7070)
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("database.driver", constants.DatabaseDriverPostgres)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "book_my_session")
	v.SetDefault("database.sslmode", constants.DatabaseSSLMode)
	v.SetDefault("database.path", "book_my_session.db")
	v.SetDefault("database.max_open_conns", constants.DatabaseMaxOpenConns)
	v.SetDefault("database.max_idle_conns", constants.DatabaseMaxIdleConns)
	v.SetDefault("database.conn_max_lifetime", constants.DatabaseConnMaxLifetime)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("redis.enabled", true)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("google.calendar_base_url", "https://www.googleapis.com/calendar/v3")
	v.SetDefault("google.calendar_id", "primary")

	v.SetDefault("mail.enabled", false)
	v.SetDefault("mail.smtp_port", 587)
	v.SetDefault("mail.from_name", "Book My Session")

	v.SetDefault("booking.policy", constants.BookingPolicyExclusive)
	v.SetDefault("booking.availability_view", constants.AvailabilityViewFree)
	v.SetDefault("booking.request_timeout", constants.DefaultRequestTimeout.String())

	v.SetDefault("slots.window_start", constants.DefaultSlotWindowStart)
	v.SetDefault("slots.window_end", constants.DefaultSlotWindowEnd)
	v.SetDefault("slots.duration", constants.DefaultSlotDuration.String())
	v.SetDefault("slots.display_offset", constants.DefaultDisplayOffset)
	v.SetDefault("slots.days", constants.DefaultSlotDays)
	v.SetDefault("slots.start_date", "")
	v.SetDefault("slots.regeneration", constants.RegenerationAppend)

	v.SetDefault("worker.enabled", true)
	v.SetDefault("worker.concurrency", 5)
	v.SetDefault("worker.sweep_interval", constants.DefaultNotifySweepPeriod.String())
	v.SetDefault("worker.max_retry", 3)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Load reads .env, an optional config file and BMS_* environment variables.
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("BMS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("config: jwt.secret is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port must be between 1 and 65535")
	}
	switch c.Database.Driver {
	case constants.DatabaseDriverPostgres, constants.DatabaseDriverSQLite:
	default:
		return fmt.Errorf("config: unsupported database.driver %q", c.Database.Driver)
	}
	switch c.Booking.Policy {
	case constants.BookingPolicyExclusive, constants.BookingPolicyShared:
	default:
		return fmt.Errorf("config: booking.policy must be %q or %q", constants.BookingPolicyExclusive, constants.BookingPolicyShared)
	}
	switch c.Booking.AvailabilityView {
	case constants.AvailabilityViewFree, constants.AvailabilityViewOccupancy:
	default:
		return fmt.Errorf("config: booking.availability_view must be %q or %q", constants.AvailabilityViewFree, constants.AvailabilityViewOccupancy)
	}
	switch c.Slots.Regeneration {
	case constants.RegenerationAppend, constants.RegenerationReject:
	default:
		return fmt.Errorf("config: slots.regeneration must be %q or %q", constants.RegenerationAppend, constants.RegenerationReject)
	}
	if c.Slots.Duration <= 0 {
		return fmt.Errorf("config: slots.duration must be positive")
	}
	if c.Slots.Days <= 0 {
		return fmt.Errorf("config: slots.days must be positive")
	}
	if _, err := utils.ParseOffset(c.Slots.DisplayOffset); err != nil {
		return fmt.Errorf("config: slots.display_offset: %w", err)
	}
	if _, err := utils.ParseClock(c.Slots.WindowStart); err != nil {
		return fmt.Errorf("config: slots.window_start: %w", err)
	}
	if _, err := utils.ParseClock(c.Slots.WindowEnd); err != nil {
		return fmt.Errorf("config: slots.window_end: %w", err)
	}
	if c.Slots.StartDate != "" {
		if _, err := time.Parse(time.DateOnly, c.Slots.StartDate); err != nil {
			return fmt.Errorf("config: slots.start_date: %w", err)
		}
	}
	return nil
}

// DisplayLocation is the fixed offset used for slot windows and API output.
func (s SlotsConfig) DisplayLocation() *time.Location {
	loc, err := utils.ParseOffset(s.DisplayOffset)
	if err != nil {
		return time.UTC
	}
	return loc
}
