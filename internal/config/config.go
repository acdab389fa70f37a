package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Server   ServerConfig
	Planner  PlannerConfig
	Google   GoogleConfig
	Slack    SlackConfig
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string //nolint:gosec // G117: DB connection config
	DBName   string
	SSLMode  string
	MaxConns int
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string //nolint:gosec // G117: Redis connection config
	DB       int
}

// JWTConfig holds JWT authentication settings.
type JWTConfig struct {
	Secret     string //nolint:gosec // G117: JWT signing secret config
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// PlannerConfig holds the view parameters the scheduling engine is invoked
// with. These are deployment configuration, not per-task data: daily capacity
// in minutes, the office-hours window shown on timelines, hour-slot
// granularity for the regular and condensed grids, and the weekday weeks
// start on.
type PlannerConfig struct {
	DayCapacityMinutes   int
	OfficeHoursStart     int
	OfficeHoursEnd       int
	SlotMinutes          int
	CondensedSlotMinutes int
	WeekStart            time.Weekday
	UndoLimit            int
}

// GoogleConfig holds the optional read-only calendar feed settings. The feed
// is disabled when CredentialsFile is empty.
type GoogleConfig struct {
	CredentialsFile string
	TokenFile       string
	CalendarID      string
}

// SlackConfig holds the optional capacity-alert notifier settings. Alerts are
// disabled when BotToken is empty.
type SlackConfig struct {
	BotToken string
	Channel  string
}

// Load reads configuration from environment variables.
// Defaults are safe for local development only. In production,
// sensitive values (JWT secret, DB password) must be set explicitly.
func Load() (*Config, error) {
	dbPort, err := getEnvInt("TEMPORA_DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	dbMaxConns, err := getEnvInt("TEMPORA_DB_MAX_CONNS", 25)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	redisDB, err := getEnvInt("TEMPORA_REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	accessTTL, err := getEnvDuration("TEMPORA_JWT_ACCESS_TTL", 15*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	refreshTTL, err := getEnvDuration("TEMPORA_JWT_REFRESH_TTL", 7*24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	readTimeout, err := getEnvDuration("TEMPORA_SERVER_READ_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	writeTimeout, err := getEnvDuration("TEMPORA_SERVER_WRITE_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	capacity, err := getEnvInt("TEMPORA_DAY_CAPACITY_MINUTES", 480)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	officeStart, err := getEnvInt("TEMPORA_OFFICE_HOURS_START", 8)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	officeEnd, err := getEnvInt("TEMPORA_OFFICE_HOURS_END", 18)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	slotMinutes, err := getEnvInt("TEMPORA_SLOT_MINUTES", 60)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	condensedSlotMinutes, err := getEnvInt("TEMPORA_CONDENSED_SLOT_MINUTES", 120)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	undoLimit, err := getEnvInt("TEMPORA_UNDO_LIMIT", 32)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	weekStart, err := getEnvWeekday("TEMPORA_WEEK_START", time.Monday)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	cfg := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("TEMPORA_DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("TEMPORA_DB_USER", "tempora"),
			Password: getEnv("TEMPORA_DB_PASSWORD", ""),
			DBName:   getEnv("TEMPORA_DB_NAME", "tempora_dev"),
			SSLMode:  getEnv("TEMPORA_DB_SSLMODE", "disable"),
			MaxConns: dbMaxConns,
		},
		Redis: RedisConfig{
			Addr:     getEnv("TEMPORA_REDIS_ADDR", "localhost:6379"),
			Password: getEnv("TEMPORA_REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		JWT: JWTConfig{
			Secret:     getEnv("TEMPORA_JWT_SECRET", ""),
			AccessTTL:  accessTTL,
			RefreshTTL: refreshTTL,
		},
		Server: ServerConfig{
			Addr:         getEnv("TEMPORA_SERVER_ADDR", ":8080"),
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
		},
		Planner: PlannerConfig{
			DayCapacityMinutes:   capacity,
			OfficeHoursStart:     officeStart,
			OfficeHoursEnd:       officeEnd,
			SlotMinutes:          slotMinutes,
			CondensedSlotMinutes: condensedSlotMinutes,
			WeekStart:            weekStart,
			UndoLimit:            undoLimit,
		},
		Google: GoogleConfig{
			CredentialsFile: getEnv("TEMPORA_GOOGLE_CREDENTIALS_FILE", ""),
			TokenFile:       getEnv("TEMPORA_GOOGLE_TOKEN_FILE", ""),
			CalendarID:      getEnv("TEMPORA_GOOGLE_CALENDAR_ID", "primary"),
		},
		Slack: SlackConfig{
			BotToken: getEnv("TEMPORA_SLACK_BOT_TOKEN", ""),
			Channel:  getEnv("TEMPORA_SLACK_CHANNEL", ""),
		},
	}

	err = cfg.validate()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	return cfg, nil
}

// validate checks required fields and value bounds.
func (c *Config) validate() error {
	// JWT secret is required (no insecure default).
	if c.JWT.Secret == "" {
		return errors.New("TEMPORA_JWT_SECRET is required")
	}
	if len(c.JWT.Secret) < 32 {
		return errors.New("TEMPORA_JWT_SECRET must be at least 32 characters")
	}

	if c.Database.SSLMode == "disable" {
		log.Warn().Msg("TEMPORA_DB_SSLMODE=disable is insecure for production; set to 'require' or 'verify-full'")
	}

	// Bounds checks.
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("TEMPORA_DB_PORT must be 1-65535, got %d", c.Database.Port)
	}
	if c.Database.MaxConns < 1 {
		return fmt.Errorf("TEMPORA_DB_MAX_CONNS must be >= 1, got %d", c.Database.MaxConns)
	}
	if c.JWT.AccessTTL <= 0 {
		return fmt.Errorf("TEMPORA_JWT_ACCESS_TTL must be positive, got %s", c.JWT.AccessTTL)
	}
	if c.JWT.RefreshTTL <= 0 {
		return fmt.Errorf("TEMPORA_JWT_REFRESH_TTL must be positive, got %s", c.JWT.RefreshTTL)
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("TEMPORA_SERVER_READ_TIMEOUT must be positive, got %s", c.Server.ReadTimeout)
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("TEMPORA_SERVER_WRITE_TIMEOUT must be positive, got %s", c.Server.WriteTimeout)
	}
	if c.Planner.DayCapacityMinutes < 0 {
		return fmt.Errorf("TEMPORA_DAY_CAPACITY_MINUTES must be >= 0, got %d", c.Planner.DayCapacityMinutes)
	}
	if c.Planner.OfficeHoursStart < 0 || c.Planner.OfficeHoursStart > 23 {
		return fmt.Errorf("TEMPORA_OFFICE_HOURS_START must be 0-23, got %d", c.Planner.OfficeHoursStart)
	}
	if c.Planner.OfficeHoursEnd < 1 || c.Planner.OfficeHoursEnd > 24 {
		return fmt.Errorf("TEMPORA_OFFICE_HOURS_END must be 1-24, got %d", c.Planner.OfficeHoursEnd)
	}
	if c.Planner.OfficeHoursEnd <= c.Planner.OfficeHoursStart {
		return fmt.Errorf("office hours window %d-%d is empty", c.Planner.OfficeHoursStart, c.Planner.OfficeHoursEnd)
	}
	if c.Planner.SlotMinutes < 1 {
		return fmt.Errorf("TEMPORA_SLOT_MINUTES must be >= 1, got %d", c.Planner.SlotMinutes)
	}
	if c.Planner.CondensedSlotMinutes < c.Planner.SlotMinutes {
		return fmt.Errorf("TEMPORA_CONDENSED_SLOT_MINUTES must be >= slot minutes, got %d", c.Planner.CondensedSlotMinutes)
	}
	if c.Planner.UndoLimit < 1 {
		return fmt.Errorf("TEMPORA_UNDO_LIMIT must be >= 1, got %d", c.Planner.UndoLimit)
	}

	return nil
}

// DSN returns the PostgreSQL connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as int: %w", key, v, err)
	}
	return n, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as duration: %w", key, v, err)
	}
	return d, nil
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

func getEnvWeekday(key string, fallback time.Weekday) (time.Weekday, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, ok := weekdays[v]
	if !ok {
		return 0, fmt.Errorf("parsing %s=%q as weekday: unknown weekday", key, v)
	}
	return d, nil
}
